package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadUploadRuntimeConfigDefaults(t *testing.T) {
	t.Setenv("APP_ENV", "")
	t.Setenv("ENV", "")
	t.Setenv("UPLOAD_MAX_FILE_SIZE", "")
	t.Setenv("UPLOAD_BLOCKED_EXTENSIONS", "")
	t.Setenv("UPLOAD_TMP_DIR", "")

	cfg, err := LoadUploadRuntimeConfig()
	require.NoError(t, err)
	assert.Equal(t, "dev", cfg.AppEnv)
	assert.Equal(t, filepath.Join(os.TempDir(), "uploadkit"), cfg.TmpDir)
	assert.EqualValues(t, 50_000_000, cfg.MaxFileSize)
	assert.Equal(t, time.Hour, cfg.TmpTTL)
	assert.Contains(t, cfg.BlockedExtensions, "php")
	assert.Equal(t, "/static/uploads", cfg.StaticBase)
	assert.Equal(t, cfg.MaxFileSize+1<<20, cfg.MaxBodySize())
}

func TestLoadUploadRuntimeConfigOverrides(t *testing.T) {
	t.Setenv("UPLOAD_MAX_FILE_SIZE", "2 MiB")
	t.Setenv("UPLOAD_BLOCKED_EXTENSIONS", " exe , ,bat")
	t.Setenv("UPLOAD_STATIC_BASE", "/files/")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://app.example.com")

	cfg, err := LoadUploadRuntimeConfig()
	require.NoError(t, err)
	assert.EqualValues(t, 2<<20, cfg.MaxFileSize)
	assert.Equal(t, []string{"exe", "bat"}, cfg.BlockedExtensions)
	assert.Equal(t, "/files", cfg.StaticBase)
	assert.Equal(t, []string{"https://app.example.com"}, cfg.CORSOrigins)
}

func TestLoadUploadRuntimeConfigRejectsInvalidValues(t *testing.T) {
	cases := map[string]string{
		"UPLOAD_MAX_FILE_SIZE": "lots",
		"UPLOAD_TMP_TTL":       "-1s",
		"JWT_TTL":              "soon",
		"UPLOAD_STATIC_BASE":   "static",
	}
	for name, value := range cases {
		t.Run(name, func(t *testing.T) {
			t.Setenv(name, value)
			_, err := LoadUploadRuntimeConfig()
			assert.Error(t, err)
		})
	}
}

func TestProdRequiresJWTSecret(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("JWT_SECRET", "")

	_, err := LoadUploadRuntimeConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")

	t.Setenv("JWT_SECRET", "a-real-secret")
	_, err = LoadUploadRuntimeConfig()
	assert.NoError(t, err)
}
