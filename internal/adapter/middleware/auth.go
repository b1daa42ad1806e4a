package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"medquote-backend/internal/infrastructure/logger"
	"medquote-backend/internal/infrastructure/metrics"
)

const identityKey = "identity"

// SetIdentity stores the authenticated external identity on the request.
func SetIdentity(c echo.Context, identity string) { c.Set(identityKey, identity) }

// Identity returns the caller's external identity, or "" when unauthenticated.
func Identity(c echo.Context) string {
	s, _ := c.Get(identityKey).(string)
	return s
}

// Auth validates an HS256 bearer token and takes the caller identity from
// its subject claim. The identity provider owns everything else about users.
func Auth(secret []byte, issuer string) echo.MiddlewareFunc {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired()}
	if issuer != "" {
		opts = append(opts, jwt.WithIssuer(issuer))
	}
	parser := jwt.NewParser(opts...)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			log := logger.FromContext(c)

			raw, err := bearer(c.Request().Header.Get(echo.HeaderAuthorization))
			if err != nil {
				metrics.AuthFailures.Inc()
				log.Warn("auth rejected", zap.Error(err))
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": err.Error()})
			}

			var claims jwt.RegisteredClaims
			_, err = parser.ParseWithClaims(raw, &claims, func(*jwt.Token) (any, error) { return secret, nil })
			if err == nil && strings.TrimSpace(claims.Subject) == "" {
				err = errors.New("token has no subject")
			}
			if err != nil {
				metrics.AuthFailures.Inc()
				log.Warn("invalid token", zap.Error(err))
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid or expired token"})
			}

			SetIdentity(c, claims.Subject)
			l := log.With(zap.String("identity", claims.Subject))
			c.Set("logger", l)
			c.SetRequest(c.Request().WithContext(logger.WithLogger(c.Request().Context(), l)))
			return next(c)
		}
	}
}

func bearer(h string) (string, error) {
	if h == "" {
		return "", errors.New("missing authorization token")
	}
	parts := strings.SplitN(h, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", errors.New("invalid authorization format, expected Bearer token")
	}
	return strings.TrimSpace(parts[1]), nil
}
