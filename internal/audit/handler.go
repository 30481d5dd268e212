package audit

import (
	"context"
	"net/http"

	"github.com/frahmantamala/warehouse-management/internal/auth"
	"github.com/frahmantamala/warehouse-management/internal/transport"
	"github.com/go-chi/chi"
)

type ServiceAPI interface {
	List(ctx context.Context, actor *auth.User, storeID string) ([]*Template, error)
	Get(ctx context.Context, actor *auth.User, id string) (*Template, error)
	Create(ctx context.Context, actor *auth.User, in Template) (*Template, error)
	Update(ctx context.Context, actor *auth.User, in Template) (*Template, error)
	Delete(ctx context.Context, actor *auth.User, id string) error
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(baseHandler *transport.BaseHandler, service ServiceAPI) *Handler {
	return &Handler{BaseHandler: baseHandler, Service: service}
}

func (h *Handler) ListTemplates(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	templates, err := h.Service.List(r.Context(), user, r.URL.Query().Get("storeId"))
	if err != nil {
		h.Logger.Error("ListTemplates: service error", "error", err, "username", user.Username)
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, templates)
}

func (h *Handler) GetTemplate(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	t, err := h.Service.Get(r.Context(), user, chi.URLParam(r, "id"))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, t)
}

func (h *Handler) CreateTemplate(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var in Template
	if err := h.DecodeJSON(r, &in); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	if in.StoreID == "" {
		in.StoreID = user.StoreID
	}

	created, err := h.Service.Create(r.Context(), user, in)
	if err != nil {
		h.Logger.Error("CreateTemplate: service error", "error", err, "store_id", in.StoreID)
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, created)
}

func (h *Handler) UpdateTemplate(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var in Template
	if err := h.DecodeJSON(r, &in); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	in.ID = chi.URLParam(r, "id")

	updated, err := h.Service.Update(r.Context(), user, in)
	if err != nil {
		h.Logger.Error("UpdateTemplate: service error", "error", err, "template_id", in.ID)
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, updated)
}

func (h *Handler) DeleteTemplate(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id := chi.URLParam(r, "id")
	if err := h.Service.Delete(r.Context(), user, id); err != nil {
		h.Logger.Error("DeleteTemplate: service error", "error", err, "template_id", id)
		h.HandleServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
