package middleware

import (
	"net/http"
	"strings"

	"github.com/bigbestmart/catalog-backend/api/responses"
	pkgAuth "github.com/bigbestmart/catalog-backend/pkg/auth"
	"github.com/bigbestmart/catalog-backend/pkg/config"
	pkgerrors "github.com/bigbestmart/catalog-backend/pkg/errors"
	"github.com/bigbestmart/catalog-backend/pkg/logger"
)

// AdminAuth validates a bearer token on admin writes and seeds the request
// context with its subject. With no secret configured it is a no-op.
func AdminAuth(cfg config.AuthConfig, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if !cfg.Enabled() {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r.Header.Get("Authorization"))
			if token == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			claims, err := pkgAuth.ParseAdminToken(cfg, token)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token"))
				return
			}
			if !claims.HasRole(cfg.RequiredRole) {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "admin role required"))
				return
			}

			role := claims.AppMetadata.Role
			if role == "" {
				role = claims.Role
			}
			ctx := withAdmin(r.Context(), claims.Subject, role)
			if logg != nil {
				ctx = logg.WithSubject(ctx, claims.Subject)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(raw string) string {
	token := strings.TrimSpace(raw)
	if strings.HasPrefix(strings.ToLower(token), "bearer ") {
		token = strings.TrimSpace(token[7:])
	}
	return token
}
