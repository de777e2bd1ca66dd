package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	apperrors "servicehub/pkg/errors"
	httputil "servicehub/pkg/http"
	"servicehub/pkg/logger"

	"github.com/golang-jwt/jwt/v5"
)

const (
	UserIDKey    contextKey = "user_id"
	UserIDHeader            = "X-User-ID"
	bearerPrefix            = "Bearer "
)

var ErrInvalidToken = errors.New("invalid token")

// Claims identify the acting user. The session service issuing the token
// lives outside this process; only verification happens here.
type Claims struct {
	Role string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

type AuthConfig struct {
	JWTSecret   string
	TrustHeader bool
}

// ParseToken validates an HS256 token and returns its claims.
func ParseToken(tokenStr, secret string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (any, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Subject == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// Authenticate resolves the acting user from a bearer token or, when
// TrustHeader is set (deployments behind a gateway), from X-User-ID.
func Authenticate(cfg AuthConfig, log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, err := resolveUser(r, cfg)
			if err != nil {
				log.Warn("Authentication failed",
					"request_id", RequestIDFromContext(r.Context()),
					"path", r.URL.Path,
					"error", err,
				)
				_ = httputil.WriteError(w, apperrors.Unauthorized("Authentication required"))
				return
			}

			ctx := context.WithValue(r.Context(), UserIDKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func resolveUser(r *http.Request, cfg AuthConfig) (string, error) {
	authHeader := r.Header.Get("Authorization")
	if strings.HasPrefix(authHeader, bearerPrefix) && cfg.JWTSecret != "" {
		claims, err := ParseToken(strings.TrimPrefix(authHeader, bearerPrefix), cfg.JWTSecret)
		if err != nil {
			return "", err
		}
		return claims.Subject, nil
	}

	if cfg.TrustHeader {
		if userID := strings.TrimSpace(r.Header.Get(UserIDHeader)); userID != "" {
			return userID, nil
		}
	}

	return "", ErrInvalidToken
}

// UserIDFromContext returns the authenticated user, or "" outside Authenticate.
func UserIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(UserIDKey).(string); ok {
		return id
	}
	return ""
}

// WithUserID is used by tests and internal callers to impersonate a user.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, UserIDKey, userID)
}
