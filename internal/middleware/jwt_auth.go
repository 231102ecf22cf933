package middleware

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// ==================== JWT 配置 ====================

const TokenIssuer = "vibe-ec"

// JWTConfig JWT 配置
type JWTConfig struct {
	SecretKey string        // 签名密钥，为空时不鉴权
	TokenTTL  time.Duration // Token 有效期
}

// ==================== Claims 定义 ====================

// OperatorClaims 运营人员声明
type OperatorClaims struct {
	Operator string `json:"operator"`
	jwt.RegisteredClaims
}

// ==================== Token 生成 ====================

// GenerateToken 签发运营 Token
func GenerateToken(cfg JWTConfig, operator string) (string, error) {
	if cfg.SecretKey == "" {
		return "", errors.New("AUTH_JWT_SECRET is not configured")
	}
	// 未设置时默认 30 天，负值签发即过期的 Token
	if cfg.TokenTTL == 0 {
		cfg.TokenTTL = 30 * 24 * time.Hour
	}

	now := time.Now()
	claims := &OperatorClaims{
		Operator: operator,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    TokenIssuer,
			Subject:   operator,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(cfg.TokenTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(cfg.SecretKey))
}

// ==================== Token 解析 ====================

// ParseToken 解析 Token
func ParseToken(secret, tokenString string) (*OperatorClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &OperatorClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return []byte(secret), nil
	}, jwt.WithIssuer(TokenIssuer))

	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*OperatorClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, errors.New("invalid token")
}

// ==================== Gin 中间件 ====================

const ContextKeyOperator = "operator"

// OperatorAuth 运营鉴权中间件，secret 为空时直接放行
func OperatorAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if secret == "" {
			c.Next()
			return
		}

		// 解析 Bearer Token
		authHeader := c.GetHeader("Authorization")
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error":   "Missing or malformed Authorization header",
			})
			return
		}

		claims, err := ParseToken(secret, parts[1])
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error":   "Invalid or expired token",
			})
			return
		}

		// 注入运营人员到 Context
		c.Set(ContextKeyOperator, claims.Operator)
		c.Request = c.Request.WithContext(WithOperator(c.Request.Context(), claims.Operator))

		c.Next()
	}
}

// GetOperator 从 gin Context 获取运营人员
func GetOperator(c *gin.Context) string {
	return c.GetString(ContextKeyOperator)
}
