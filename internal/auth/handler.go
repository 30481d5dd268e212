package auth

import (
	"context"
	"log/slog"
	"net/http"

	apperrors "github.com/frahmantamala/warehouse-management/internal"
	"github.com/frahmantamala/warehouse-management/internal/transport"
	"github.com/frahmantamala/warehouse-management/pkg/logger"
)

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(svc ServiceAPI) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     svc,
	}
}

// Login handles POST /api/login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var dto LoginDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	resp, err := h.Service.Authenticate(r.Context(), dto)
	if err != nil {
		h.Logger.Warn("Login: authentication failed", "error", err, "username", dto.Username)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, resp)
}

// Logout handles POST /api/logout
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	claims, ok := ClaimsFromContext(r.Context())
	if !ok {
		h.HandleServiceError(w, apperrors.ErrInvalidToken)
		return
	}

	if err := h.Service.Logout(r.Context(), claims); err != nil {
		h.Logger.Error("Logout: service error", "error", err, "username", claims.Username)
		h.HandleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Me handles GET /api/me
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok || user == nil {
		h.HandleServiceError(w, apperrors.ErrInvalidToken)
		return
	}
	h.WriteJSON(w, http.StatusOK, user)
}

func (h *Handler) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := h.ExtractTokenFromHeader(r)
		if token == "" {
			h.Logger.Warn("auth middleware: missing authorization token", "path", r.URL.Path)
			h.HandleServiceError(w, apperrors.ErrInvalidToken.WithMessage("missing authorization token"))
			return
		}

		claims, err := h.Service.ValidateAccessToken(r.Context(), token)
		if err != nil {
			h.Logger.Warn("token validation failed", "error", err, "path", r.URL.Path)
			h.HandleServiceError(w, err)
			return
		}

		// the stored user, not the token, is authoritative for role and store
		user, err := h.Service.GetUserWithPermissions(r.Context(), claims.Username)
		if err != nil {
			h.Logger.Warn("auth middleware: failed to load user", "username", claims.Username, "error", err)
			h.HandleServiceError(w, err)
			return
		}

		ctx := ContextWithUser(r.Context(), user)
		ctx = context.WithValue(ctx, ContextClaimsKey, claims)
		ctx = logger.With(ctx, "username", user.Username, "role", string(user.Role))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
