package activity

import (
	"context"
	"net/http"
	"strconv"

	apperrors "github.com/frahmantamala/warehouse-management/internal"
	"github.com/frahmantamala/warehouse-management/internal/auth"
	"github.com/frahmantamala/warehouse-management/internal/transport"
)

type ServiceAPI interface {
	List(ctx context.Context, actor *auth.User, storeID string, limit int) ([]*Entry, error)
	Clear(ctx context.Context, actor *auth.User) (int64, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(baseHandler *transport.BaseHandler, service ServiceAPI) *Handler {
	return &Handler{BaseHandler: baseHandler, Service: service}
}

func (h *Handler) ListActivity(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			h.HandleServiceError(w, apperrors.NewValidationFieldError("limit", "limit must be a number", apperrors.ErrCodeValidationFailed))
			return
		}
		limit = n
	}

	entries, err := h.Service.List(r.Context(), user, r.URL.Query().Get("storeId"), limit)
	if err != nil {
		h.Logger.Error("ListActivity: service error", "error", err, "username", user.Username)
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, entries)
}

func (h *Handler) ClearActivity(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	n, err := h.Service.Clear(r.Context(), user)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, map[string]int64{"cleared": n})
}
