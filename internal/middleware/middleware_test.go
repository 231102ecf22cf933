package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/Dexter1636/vibe-ec-dashboard/internal/metrics"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func doRequest(r http.Handler, method, path string, header map[string]string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest(method, path, nil)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// ==================== 限流 ====================

func TestClientLimiter_Burst(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	l := NewClientLimiter(1, 2)
	l.now = func() time.Time { return now }

	assert.True(t, l.Check("a").Allowed)
	assert.True(t, l.Check("a").Allowed)

	denied := l.Check("a")
	assert.False(t, denied.Allowed)
	assert.InDelta(t, time.Second.Seconds(), denied.RetryAfter.Seconds(), 0.01)

	// 其他客户端不受影响
	assert.True(t, l.Check("b").Allowed)

	// 令牌恢复
	now = now.Add(time.Second)
	assert.True(t, l.Check("a").Allowed)
}

func TestClientLimiter_Disabled(t *testing.T) {
	l := NewClientLimiter(0, 0)
	for i := 0; i < 100; i++ {
		require.True(t, l.Check("a").Allowed)
	}
}

func TestClientLimiter_Sweep(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	l := NewClientLimiter(1, 1)
	l.now = func() time.Time { return now }

	l.Check("old")
	now = now.Add(time.Hour)
	l.Check("new")

	assert.Equal(t, 1, l.Sweep(30*time.Minute))
	assert.Equal(t, 0, l.Sweep(30*time.Minute))
}

func TestRateLimit_Middleware(t *testing.T) {
	router := gin.New()
	router.Use(RateLimit(NewClientLimiter(0.001, 1)))
	router.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusOK, doRequest(router, http.MethodGet, "/x", nil).Code)

	w := doRequest(router, http.MethodGet, "/x", nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
	assert.Contains(t, w.Body.String(), `"success":false`)
}

// ==================== 鉴权 ====================

func TestGenerateAndParseToken(t *testing.T) {
	cfg := JWTConfig{SecretKey: "s3cret", TokenTTL: time.Hour}

	token, err := GenerateToken(cfg, "alice")
	require.NoError(t, err)

	claims, err := ParseToken("s3cret", token)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Operator)
	assert.Equal(t, TokenIssuer, claims.Issuer)

	_, err = ParseToken("other", token)
	assert.Error(t, err)

	_, err = GenerateToken(JWTConfig{}, "alice")
	assert.Error(t, err)
}

func TestParseToken_Expired(t *testing.T) {
	token, err := GenerateToken(JWTConfig{SecretKey: "k", TokenTTL: -time.Minute}, "bob")
	require.NoError(t, err)

	_, err = ParseToken("k", token)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestGenerateToken_DefaultTTL(t *testing.T) {
	token, err := GenerateToken(JWTConfig{SecretKey: "k"}, "bob")
	require.NoError(t, err)

	claims, err := ParseToken("k", token)
	require.NoError(t, err)
	assert.Equal(t, 30*24*time.Hour, claims.ExpiresAt.Sub(claims.IssuedAt.Time))
}

func TestOperatorAuth(t *testing.T) {
	token, err := GenerateToken(JWTConfig{SecretKey: "k", TokenTTL: time.Hour}, "alice")
	require.NoError(t, err)

	var seen string
	router := gin.New()
	router.Use(OperatorAuth("k"))
	router.GET("/x", func(c *gin.Context) {
		seen = OperatorFromContext(c.Request.Context())
		c.String(http.StatusOK, GetOperator(c))
	})

	tests := []struct {
		name       string
		header     string
		wantStatus int
	}{
		{"缺少请求头", "", http.StatusUnauthorized},
		{"格式错误", "Token " + token, http.StatusUnauthorized},
		{"无效令牌", "Bearer not-a-jwt", http.StatusUnauthorized},
		{"合法令牌", "Bearer " + token, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(router, http.MethodGet, "/x", map[string]string{"Authorization": tt.header})
			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
	assert.Equal(t, "alice", seen)
}

func TestOperatorAuth_DisabledWithoutSecret(t *testing.T) {
	router := gin.New()
	router.Use(OperatorAuth(""))
	router.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusOK, doRequest(router, http.MethodGet, "/x", nil).Code)
}

func TestOperatorContext(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, OperatorFromContext(ctx))
	assert.Equal(t, ctx, WithOperator(ctx, ""))
	assert.Equal(t, "ops", OperatorFromContext(WithOperator(ctx, "ops")))
}

// ==================== 访问日志 ====================

func TestRequestLogger(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	collector := metrics.NewCollector()

	router := gin.New()
	router.Use(RequestLogger(zap.New(core), collector))
	router.GET("/ok/:id", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/bad", func(c *gin.Context) { c.Status(http.StatusBadRequest) })

	doRequest(router, http.MethodGet, "/ok/1", nil)
	doRequest(router, http.MethodGet, "/bad", nil)

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
	assert.Equal(t, "/ok/1", entries[0].ContextMap()["path"])
	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
}
