package announcement

import (
	"context"
	"net/http"

	"github.com/frahmantamala/warehouse-management/internal/auth"
	"github.com/frahmantamala/warehouse-management/internal/transport"
	"github.com/go-chi/chi"
)

type ServiceAPI interface {
	List(ctx context.Context, actor *auth.User) ([]*Announcement, error)
	Get(ctx context.Context, actor *auth.User, id string) (*Announcement, error)
	Create(ctx context.Context, actor *auth.User, in Announcement) (*Announcement, error)
	Update(ctx context.Context, actor *auth.User, in Announcement) (*Announcement, error)
	Delete(ctx context.Context, actor *auth.User, id string) error
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(baseHandler *transport.BaseHandler, service ServiceAPI) *Handler {
	return &Handler{BaseHandler: baseHandler, Service: service}
}

func (h *Handler) ListAnnouncements(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	announcements, err := h.Service.List(r.Context(), user)
	if err != nil {
		h.Logger.Error("ListAnnouncements: service error", "error", err, "username", user.Username)
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, announcements)
}

func (h *Handler) GetAnnouncement(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	a, err := h.Service.Get(r.Context(), user, chi.URLParam(r, "id"))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, a)
}

func (h *Handler) CreateAnnouncement(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var in Announcement
	if err := h.DecodeJSON(r, &in); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	// store staff post to their own store; admin without a store broadcasts
	if in.StoreID == "" {
		in.StoreID = user.StoreID
	}

	created, err := h.Service.Create(r.Context(), user, in)
	if err != nil {
		h.Logger.Error("CreateAnnouncement: service error", "error", err, "store_id", in.StoreID)
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, created)
}

func (h *Handler) UpdateAnnouncement(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var in Announcement
	if err := h.DecodeJSON(r, &in); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	in.ID = chi.URLParam(r, "id")

	updated, err := h.Service.Update(r.Context(), user, in)
	if err != nil {
		h.Logger.Error("UpdateAnnouncement: service error", "error", err, "announcement_id", in.ID)
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, updated)
}

func (h *Handler) DeleteAnnouncement(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id := chi.URLParam(r, "id")
	if err := h.Service.Delete(r.Context(), user, id); err != nil {
		h.Logger.Error("DeleteAnnouncement: service error", "error", err, "announcement_id", id)
		h.HandleServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
