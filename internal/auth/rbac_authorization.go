package auth

import (
	"context"
	"log/slog"
	"net/http"

	apperrors "github.com/frahmantamala/warehouse-management/internal"
	"github.com/frahmantamala/warehouse-management/internal/permission"
	"github.com/frahmantamala/warehouse-management/internal/transport"
)

type PermissionAuthorizer interface {
	Check(ctx context.Context, s *permission.Subject, p permission.Permission) (bool, error)
}

type RBACAuthorization struct {
	*transport.BaseHandler
	authorizer PermissionAuthorizer
}

func NewRBACAuthorization(authorizer PermissionAuthorizer, logger *slog.Logger) *RBACAuthorization {
	return &RBACAuthorization{
		BaseHandler: transport.NewBaseHandler(logger),
		authorizer:  authorizer,
	}
}

func (ra *RBACAuthorization) Check(next http.HandlerFunc, perm permission.Permission) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := UserFromContext(r.Context())
		if !ok || user == nil {
			ra.Logger.Warn("authorization check failed: user not found in context")
			ra.HandleServiceError(w, apperrors.ErrInvalidToken)
			return
		}

		hasAccess, err := ra.authorizer.Check(r.Context(), user.Subject(), perm)
		if err != nil {
			ra.Logger.ErrorContext(r.Context(), "authorization check failed", "error", err, "username", user.Username, "permission", perm)
			ra.HandleServiceError(w, apperrors.NewInternalError("authorization check failed", err))
			return
		}

		if !hasAccess {
			ra.Logger.WarnContext(r.Context(), "access denied: insufficient permissions",
				"username", user.Username,
				"role", user.Role,
				"required_permission", perm)
			ra.HandleServiceError(w, apperrors.ErrInsufficientPermission.WithMessage("missing permission "+string(perm)))
			return
		}

		next.ServeHTTP(w, r)
	}
}

func (ra *RBACAuthorization) Middleware(perm permission.Permission) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return ra.Check(next.ServeHTTP, perm)
	}
}

func (ra *RBACAuthorization) RequireAdmin() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := UserFromContext(r.Context())
			if !ok || user == nil {
				ra.HandleServiceError(w, apperrors.ErrInvalidToken)
				return
			}

			if !user.IsAdmin() {
				ra.Logger.WarnContext(r.Context(), "access denied: admin role required", "username", user.Username, "role", user.Role)
				ra.HandleServiceError(w, apperrors.ErrInsufficientPermission.WithMessage("admin role required"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
