package middleware

import (
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/hr-portal-backend/internal/domain/permission"
	"github.com/cmlabs-hris/hr-portal-backend/internal/domain/user"
	"github.com/cmlabs-hris/hr-portal-backend/internal/handler/http/response"
	"github.com/cmlabs-hris/hr-portal-backend/internal/pkg/jwt"
)

// RequirePermission lets the request through when the caller holds any of perms.
// A failed permission lookup answers 500; the role alone is never trusted.
func RequirePermission(checker permission.Checker, perms ...user.Permission) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, err := jwt.ActorFromContext(r.Context())
			if err != nil {
				response.HandleError(w, err)
				return
			}

			for _, p := range perms {
				ok, err := checker.HasPermission(r.Context(), actor.UserID, actor.Role, p)
				if err != nil {
					slog.Error("Permission check error", "user_id", actor.UserID, "permission", p, "error", err)
					response.InternalServerError(w, "Failed to resolve permissions")
					return
				}
				if ok {
					next.ServeHTTP(w, r)
					return
				}
			}

			response.Forbidden(w, "Permission denied")
		})
	}
}
