package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

const (
	defaultHTTPAddr          = ":8080"
	defaultDatabaseURL       = "uploads.db"
	defaultUploadDir         = "./uploads"
	defaultStaticBase        = "/static/uploads"
	defaultMaxFileSize       = "50MB"
	defaultMaxMemory         = "32MB"
	defaultBlockedExtensions = "php,phtml,phar,exe,sh,cgi"
	defaultTmpTTL            = "1h"
	defaultJWTTTL            = "24h"
	defaultJWTSecret         = "change-me-jwt-secret"
)

type UploadRuntimeConfig struct {
	AppEnv            string
	HTTPAddr          string
	DatabaseURL       string
	UploadDir         string
	TmpDir            string
	StaticBase        string
	MaxFileSize       int64
	MaxMemory         int64
	BlockedExtensions []string
	TmpTTL            time.Duration
	JWTSecret         string
	JWTTTL            time.Duration
	CORSOrigins       []string
}

// MaxBodySize is the request body cap: one file at the limit plus room for
// the multipart framing and small form fields.
func (cfg *UploadRuntimeConfig) MaxBodySize() int64 {
	return cfg.MaxFileSize + 1<<20
}

func LoadUploadRuntimeConfig() (*UploadRuntimeConfig, error) {
	cfg := &UploadRuntimeConfig{}
	appEnv := strings.TrimSpace(os.Getenv("APP_ENV"))
	if appEnv == "" {
		appEnv = strings.TrimSpace(os.Getenv("ENV"))
	}
	if appEnv == "" {
		appEnv = "dev"
	}
	cfg.AppEnv = strings.ToLower(appEnv)

	cfg.HTTPAddr = strings.TrimSpace(getEnv("HTTP_ADDR", defaultHTTPAddr))
	cfg.DatabaseURL = strings.TrimSpace(getEnv("DATABASE_URL", defaultDatabaseURL))
	cfg.UploadDir = strings.TrimSpace(getEnv("UPLOAD_DIR", defaultUploadDir))
	cfg.TmpDir = strings.TrimSpace(getEnv("UPLOAD_TMP_DIR", filepath.Join(os.TempDir(), "uploadkit")))
	cfg.StaticBase = strings.TrimRight(strings.TrimSpace(getEnv("UPLOAD_STATIC_BASE", defaultStaticBase)), "/")
	cfg.BlockedExtensions = parseListEnv("UPLOAD_BLOCKED_EXTENSIONS", defaultBlockedExtensions)
	cfg.CORSOrigins = parseListEnv("CORS_ALLOWED_ORIGINS", "")
	cfg.JWTSecret = strings.TrimSpace(getEnv("JWT_SECRET", defaultJWTSecret))

	var err error
	cfg.MaxFileSize, err = parseBytesEnv("UPLOAD_MAX_FILE_SIZE", defaultMaxFileSize)
	if err != nil {
		return nil, err
	}

	cfg.MaxMemory, err = parseBytesEnv("UPLOAD_MAX_MEMORY", defaultMaxMemory)
	if err != nil {
		return nil, err
	}

	cfg.TmpTTL, err = parseDurationEnv("UPLOAD_TMP_TTL", defaultTmpTTL)
	if err != nil {
		return nil, err
	}

	cfg.JWTTTL, err = parseDurationEnv("JWT_TTL", defaultJWTTTL)
	if err != nil {
		return nil, err
	}

	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	log.Printf("upload config: dir=%s tmp_dir=%s max_file_size=%s blocked=%s",
		cfg.UploadDir, cfg.TmpDir, humanize.IBytes(uint64(cfg.MaxFileSize)), strings.Join(cfg.BlockedExtensions, ","))

	return cfg, nil
}

func validateConfig(cfg *UploadRuntimeConfig) error {
	if cfg.UploadDir == "" {
		return fmt.Errorf("UPLOAD_DIR must not be empty")
	}
	if cfg.TmpDir == "" {
		return fmt.Errorf("UPLOAD_TMP_DIR must not be empty")
	}
	if cfg.StaticBase == "" || !strings.HasPrefix(cfg.StaticBase, "/") {
		return fmt.Errorf("UPLOAD_STATIC_BASE must be an absolute URL path")
	}
	if cfg.MaxFileSize <= 0 {
		return fmt.Errorf("UPLOAD_MAX_FILE_SIZE must be > 0")
	}
	if cfg.MaxMemory <= 0 {
		return fmt.Errorf("UPLOAD_MAX_MEMORY must be > 0")
	}
	if cfg.TmpTTL <= 0 {
		return fmt.Errorf("UPLOAD_TMP_TTL must be > 0")
	}
	if cfg.JWTTTL <= 0 {
		return fmt.Errorf("JWT_TTL must be > 0")
	}

	if isProdLike(cfg.AppEnv) && isEmptyOrDefault(cfg.JWTSecret, defaultJWTSecret) {
		return fmt.Errorf("in prod/release JWT_SECRET must be set and not default")
	}

	return nil
}

func isProdLike(env string) bool {
	env = strings.ToLower(strings.TrimSpace(env))
	return env == "prod" || env == "production" || env == "release"
}

func isEmptyOrDefault(v, def string) bool {
	trimmed := strings.TrimSpace(v)
	return trimmed == "" || trimmed == def
}

func parseDurationEnv(name, fallback string) (time.Duration, error) {
	value := strings.TrimSpace(getEnv(name, fallback))
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", name, value, err)
	}
	return d, nil
}

func parseBytesEnv(name, fallback string) (int64, error) {
	value := strings.TrimSpace(getEnv(name, fallback))
	n, err := humanize.ParseBytes(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", name, value, err)
	}
	if n > 1<<62 {
		return 0, fmt.Errorf("%s value %q is too large", name, value)
	}
	return int64(n), nil
}

func parseListEnv(name, fallback string) []string {
	var out []string
	for _, item := range strings.Split(getEnv(name, fallback), ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func getEnv(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}
