package devapi

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/makkenzo/license-admin-console/internal/ierr"
	"go.uber.org/zap"
)

const (
	authorizationHeader = "Authorization"
	bearerPrefix        = "Bearer "
	subjectContextKey   = "adminSubject"
	tokenIssuer         = "license-devapi"
)

type tokenSigner struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func (t *tokenSigner) issue(subject string) (string, error) {
	issuedAt := t.now()
	claims := jwt.RegisteredClaims{
		Issuer:    tokenIssuer,
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(issuedAt),
		ExpiresAt: jwt.NewNumericDate(issuedAt.Add(t.ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
}

func (t *tokenSigner) validate(raw string) (*jwt.RegisteredClaims, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (interface{}, error) {
		return t.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ierr.ErrInvalidToken, err)
	}
	return claims, nil
}

func (s *Server) authMiddleware() gin.HandlerFunc {
	log := s.logger.Named("AuthMiddleware")
	return func(c *gin.Context) {
		authHeader := c.GetHeader(authorizationHeader)
		if !strings.HasPrefix(authHeader, bearerPrefix) {
			log.Debug("Authorization header is missing or malformed")
			fail(c, http.StatusUnauthorized, "authentication required")
			return
		}

		tokenString := strings.TrimPrefix(authHeader, bearerPrefix)
		claims, err := s.tokens.validate(tokenString)
		if err != nil {
			log.Warn("Token validation failed", zap.Error(err))
			fail(c, http.StatusUnauthorized, "invalid or expired token")
			return
		}

		c.Set(subjectContextKey, claims.Subject)
		c.Next()
	}
}
