package middleware

import (
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"

	"github.com/libreclinica/api-gateway/internal/config"
	"github.com/libreclinica/api-gateway/internal/models"
	"github.com/libreclinica/api-gateway/internal/utils"
)

// Claims are the JWT claims the gateway issues and verifies
type Claims struct {
	UserID   int64  `json:"userId"`
	Username string `json:"username"`
	UserType int    `json:"userType"`
	jwt.RegisteredClaims
}

// JWTAuth verifies the bearer token and places the caller's identity into
// the request context. Tokens are HS256 signed with the configured secret.
func JWTAuth(cfg *config.JWTConfig, logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			utils.SendUnauthorizedError(c, "Authorization header is required")
			c.Abort()
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			utils.SendUnauthorizedError(c, "Authorization header must be a bearer token")
			c.Abort()
			return
		}

		claims := &Claims{}
		token, err := jwt.ParseWithClaims(parts[1], claims, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return []byte(cfg.Secret), nil
		}, jwt.WithIssuer(cfg.Issuer), jwt.WithExpirationRequired())
		if err != nil || !token.Valid {
			logger.WithError(err).Debug("Token verification failed")
			utils.SendUnauthorizedError(c, "Invalid or expired token")
			c.Abort()
			return
		}

		c.Set("userID", claims.UserID)
		c.Set("username", claims.Username)
		c.Set("userType", claims.UserType)
		c.Next()
	}
}

// RequireAdmin gates an endpoint to privileged user types
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !models.IsPrivilegedUserType(utils.GetUserTypeFromContext(c)) {
			utils.SendForbiddenError(c, "Administrator privileges required")
			c.Abort()
			return
		}
		c.Next()
	}
}

// GenerateToken issues a signed token for an authenticated user account
func GenerateToken(cfg *config.JWTConfig, user *models.UserAccount) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID:   user.UserID,
		Username: user.UserName,
		UserType: user.UserTypeID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    cfg.Issuer,
			Subject:   user.UserName,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(cfg.Expiry)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(cfg.Secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}
