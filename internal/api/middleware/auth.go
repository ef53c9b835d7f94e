package middleware

import (
	"context"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/dom/cyprine-heroes/internal/service"
)

type contextKey string

const (
	SubjectKey contextKey = "subject"
)

// Auth rejects requests without a valid "Authorization: Bearer <token>" header.
func Auth(authService *service.AuthService, log *zap.SugaredLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				log.Warnw("[middleware.Auth] missing authorization header", "path", r.URL.Path)
				unauthorized(w, "Not authenticated")
				return
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				log.Warnw("[middleware.Auth] invalid authorization header format", "path", r.URL.Path)
				unauthorized(w, "Invalid authorization header")
				return
			}

			claims, err := authService.ValidateToken(parts[1])
			if err != nil {
				log.Warnw("[middleware.Auth] token validation failed", "error", err)
				unauthorized(w, "Could not validate credentials")
				return
			}

			subject, _ := claims.GetSubject()
			ctx := context.WithValue(r.Context(), SubjectKey, subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func GetSubject(ctx context.Context) (string, bool) {
	subject, ok := ctx.Value(SubjectKey).(string)
	return subject, ok
}

func unauthorized(w http.ResponseWriter, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("WWW-Authenticate", "Bearer")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"detail":"` + detail + `"}`))
}
