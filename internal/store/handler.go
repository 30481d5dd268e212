package store

import (
	"context"
	"net/http"

	"github.com/frahmantamala/warehouse-management/internal/auth"
	"github.com/frahmantamala/warehouse-management/internal/transport"
	"github.com/go-chi/chi"
)

type ServiceAPI interface {
	List(ctx context.Context, actor *auth.User) ([]*Store, error)
	Get(ctx context.Context, actor *auth.User, id string) (*Store, error)
	Create(ctx context.Context, actor *auth.User, in Store) (*Store, error)
	Update(ctx context.Context, actor *auth.User, in Store) (*Store, error)
	Delete(ctx context.Context, actor *auth.User, id string) error
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(baseHandler *transport.BaseHandler, service ServiceAPI) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Service:     service,
	}
}

func (h *Handler) ListStores(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	stores, err := h.Service.List(r.Context(), user)
	if err != nil {
		h.Logger.Error("ListStores: service error", "error", err, "username", user.Username)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, stores)
}

func (h *Handler) GetStore(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	s, err := h.Service.Get(r.Context(), user, chi.URLParam(r, "id"))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, s)
}

func (h *Handler) CreateStore(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var in Store
	if err := h.DecodeJSON(r, &in); err != nil {
		h.Logger.Warn("CreateStore: invalid request body", "error", err)
		h.HandleServiceError(w, err)
		return
	}

	created, err := h.Service.Create(r.Context(), user, in)
	if err != nil {
		h.Logger.Error("CreateStore: service error", "error", err, "store_id", in.ID)
		h.HandleServiceError(w, err)
		return
	}

	h.Logger.Info("CreateStore: store created", "store_id", created.ID, "username", user.Username)
	h.WriteJSON(w, http.StatusCreated, created)
}

func (h *Handler) UpdateStore(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var in Store
	if err := h.DecodeJSON(r, &in); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	in.ID = chi.URLParam(r, "id")

	updated, err := h.Service.Update(r.Context(), user, in)
	if err != nil {
		h.Logger.Error("UpdateStore: service error", "error", err, "store_id", in.ID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, updated)
}

func (h *Handler) DeleteStore(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id := chi.URLParam(r, "id")
	if err := h.Service.Delete(r.Context(), user, id); err != nil {
		h.Logger.Error("DeleteStore: service error", "error", err, "store_id", id)
		h.HandleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
