package router

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/cuongbtq/email-verifier-be/internal/api/dto"
	"github.com/cuongbtq/email-verifier-be/internal/api/handler"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var ErrInvalidToken = errors.New("invalid token")

// Claims carries the authenticated user id
type Claims struct {
	jwt.RegisteredClaims
	UserID string `json:"user_id"`
}

// GenerateToken signs an HS256 token for userID
func GenerateToken(userID string, secret []byte, ttl time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
		},
		UserID: userID,
	})
	return token.SignedString(secret)
}

// ParseToken validates tokenString and returns its user id
func ParseToken(tokenString string, secret []byte) (string, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return "", err
	}

	if !token.Valid {
		return "", ErrInvalidToken
	}

	if _, err := uuid.Parse(claims.UserID); err != nil {
		return "", ErrInvalidToken
	}

	return claims.UserID, nil
}

// AuthMiddleware rejects requests without a valid bearer token
func AuthMiddleware(secret []byte, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		tokenString, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.Response{Message: "Missing bearer token"})
			return
		}

		userID, err := ParseToken(tokenString, secret)
		if err != nil {
			logger.Warn("Rejected token",
				slog.String("path", c.Request.URL.Path),
				slog.String("error", err.Error()),
			)
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.Response{Message: "Invalid token"})
			return
		}

		c.Set(handler.UserIDKey, userID)
		c.Next()
	}
}
