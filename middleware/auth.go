package middleware

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/Dosada05/slot-arena/models"
	"github.com/golang-jwt/jwt/v4"
)

type contextKey string

const adminContextKey contextKey = "admin"

// TokenCookieName — HTTP-only cookie, в которой лежит JWT после логина.
const TokenCookieName = "token"

// Определяем константы для имен JWT claims
const (
	jwtClaimAdminID     = "admin_id"
	jwtClaimUsername    = "username"
	jwtClaimRole        = "role"
	jwtClaimPermissions = "permissions"
)

var (
	ErrTokenMissing = errors.New("authentication required")
	ErrTokenInvalid = errors.New("invalid or expired token")
)

// NewAdminClaims builds the claims signed at login.
func NewAdminClaims(admin *models.Admin, ttl time.Duration, now time.Time) jwt.MapClaims {
	perms := make([]string, 0, len(admin.Permissions))
	for _, p := range admin.Permissions {
		perms = append(perms, string(p))
	}
	return jwt.MapClaims{
		jwtClaimAdminID:     admin.ID,
		jwtClaimUsername:    admin.Username,
		jwtClaimRole:        string(admin.Role),
		jwtClaimPermissions: perms,
		"exp":               now.Add(ttl).Unix(),
		"iat":               now.Unix(),
	}
}

// Authenticate проверяет Bearer-токен или cookie и кладёт администратора в контекст.
func Authenticate(secret []byte, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString := tokenFromRequest(r)
			if tokenString == "" {
				writeError(w, http.StatusUnauthorized, ErrTokenMissing.Error())
				return
			}

			admin, err := parseToken(tokenString, secret)
			if err != nil {
				logger.DebugContext(r.Context(), "token rejected", slog.Any("error", err))
				writeError(w, http.StatusUnauthorized, ErrTokenInvalid.Error())
				return
			}

			ctx := context.WithValue(r.Context(), adminContextKey, admin)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequirePermission must be mounted after Authenticate.
func RequirePermission(p models.Permission) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			admin, err := GetAdminFromContext(r.Context())
			if err != nil {
				writeError(w, http.StatusUnauthorized, ErrTokenMissing.Error())
				return
			}
			if !admin.Can(p) {
				writeError(w, http.StatusForbidden, fmt.Sprintf("permission %q required", p))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func tokenFromRequest(r *http.Request) string {
	if header := r.Header.Get("Authorization"); header != "" {
		scheme, token, ok := strings.Cut(header, " ")
		if ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
		return ""
	}
	if cookie, err := r.Cookie(TokenCookieName); err == nil {
		return cookie.Value
	}
	return ""
}

func parseToken(tokenString string, secret []byte) (*AdminIdentity, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, ErrTokenInvalid
	}
	return identityFromClaims(claims)
}
