package rack

import (
	"context"
	"net/http"

	"github.com/frahmantamala/warehouse-management/internal/auth"
	"github.com/frahmantamala/warehouse-management/internal/transport"
	"github.com/go-chi/chi"
)

type ServiceAPI interface {
	List(ctx context.Context, actor *auth.User, storeID string) ([]*Rack, error)
	Get(ctx context.Context, actor *auth.User, id, storeID string) (*Rack, error)
	Create(ctx context.Context, actor *auth.User, in Rack) (*Rack, error)
	Update(ctx context.Context, actor *auth.User, id string, in Rack) (*Rack, error)
	Delete(ctx context.Context, actor *auth.User, id, storeID string) error
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(baseHandler *transport.BaseHandler, service ServiceAPI) *Handler {
	return &Handler{BaseHandler: baseHandler, Service: service}
}

// storeParam reads ?storeId= and falls back to the caller's own store.
func storeParam(r *http.Request, user *auth.User) string {
	if s := r.URL.Query().Get("storeId"); s != "" {
		return s
	}
	return user.StoreID
}

func (h *Handler) ListRacks(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	racks, err := h.Service.List(r.Context(), user, r.URL.Query().Get("storeId"))
	if err != nil {
		h.Logger.Error("ListRacks: service error", "error", err, "username", user.Username)
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, racks)
}

func (h *Handler) GetRack(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	rk, err := h.Service.Get(r.Context(), user, chi.URLParam(r, "id"), storeParam(r, user))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, rk)
}

func (h *Handler) CreateRack(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var in Rack
	if err := h.DecodeJSON(r, &in); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	if in.StoreID == "" {
		in.StoreID = user.StoreID
	}

	created, err := h.Service.Create(r.Context(), user, in)
	if err != nil {
		h.Logger.Error("CreateRack: service error", "error", err, "store_id", in.StoreID)
		h.HandleServiceError(w, err)
		return
	}

	h.Logger.Info("CreateRack: rack created", "rack_id", created.ID, "store_id", created.StoreID)
	h.WriteJSON(w, http.StatusCreated, created)
}

func (h *Handler) UpdateRack(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var in Rack
	if err := h.DecodeJSON(r, &in); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	if in.StoreID == "" {
		in.StoreID = storeParam(r, user)
	}

	updated, err := h.Service.Update(r.Context(), user, chi.URLParam(r, "id"), in)
	if err != nil {
		h.Logger.Error("UpdateRack: service error", "error", err, "rack_id", chi.URLParam(r, "id"))
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, updated)
}

func (h *Handler) DeleteRack(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id := chi.URLParam(r, "id")
	if err := h.Service.Delete(r.Context(), user, id, storeParam(r, user)); err != nil {
		h.Logger.Error("DeleteRack: service error", "error", err, "rack_id", id)
		h.HandleServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
