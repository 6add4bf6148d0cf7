package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"uploadkit/internal/pkg/jwt"
)

func protectedRouter(t *testing.T, tokens *jwt.Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(JWTAuth(tokens))
	router.GET("/protected", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"user_id": c.GetInt64("user_id"),
			"role":    c.GetString("role"),
		})
	})
	return router
}

func TestJWTAuth_ValidToken(t *testing.T) {
	tokens := jwt.New("test-secret-123", time.Hour)
	validToken, err := tokens.GenerateToken(42, "client")
	assert.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+validToken)
	protectedRouter(t, tokens).ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "42")
	assert.Contains(t, w.Body.String(), "client")
}

func TestJWTAuth_Rejections(t *testing.T) {
	tokens := jwt.New("secret", time.Hour)
	foreign, _ := jwt.New("other-secret", time.Hour).GenerateToken(42, "client")
	expired, _ := jwt.New("secret", -time.Minute).GenerateToken(42, "client")

	cases := []struct {
		name   string
		header string
		code   string
	}{
		{"no header", "", "UNAUTHORIZED"},
		{"wrong scheme", "Basic abc", "UNAUTHORIZED"},
		{"empty token", "Bearer ", "UNAUTHORIZED"},
		{"garbage", "Bearer invalid-jwt-here", "INVALID_TOKEN"},
		{"foreign secret", "Bearer " + foreign, "INVALID_TOKEN"},
		{"expired", "Bearer " + expired, "INVALID_TOKEN"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			protectedRouter(t, tokens).ServeHTTP(w, req)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Contains(t, w.Body.String(), tc.code)
		})
	}
}
