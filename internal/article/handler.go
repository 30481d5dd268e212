package article

import (
	"context"
	"net/http"
	"strconv"

	"github.com/frahmantamala/warehouse-management/internal/auth"
	"github.com/frahmantamala/warehouse-management/internal/transport"
	"github.com/go-chi/chi"
)

type ServiceAPI interface {
	List(ctx context.Context, actor *auth.User, filter ListFilter) ([]*Article, error)
	Get(ctx context.Context, actor *auth.User, id, storeID string) (*Article, error)
	Create(ctx context.Context, actor *auth.User, in Article) (*Article, error)
	Update(ctx context.Context, actor *auth.User, in Article) (*Article, error)
	Delete(ctx context.Context, actor *auth.User, id, storeID string) error

	ListGlobal(ctx context.Context, actor *auth.User) ([]*Article, error)
	GetGlobal(ctx context.Context, actor *auth.User, id string) (*Article, error)
	CreateGlobal(ctx context.Context, actor *auth.User, in Article) (*Article, error)
	UpdateGlobal(ctx context.Context, actor *auth.User, in Article) (*Article, error)
	DeleteGlobal(ctx context.Context, actor *auth.User, id string) error
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(baseHandler *transport.BaseHandler, service ServiceAPI) *Handler {
	return &Handler{BaseHandler: baseHandler, Service: service}
}

func (h *Handler) ListArticles(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	filter := ListFilter{StoreID: r.URL.Query().Get("storeId")}
	if v := r.URL.Query().Get("lowStock"); v != "" {
		low, err := strconv.ParseBool(v)
		if err != nil {
			h.WriteError(w, http.StatusBadRequest, "lowStock must be true or false")
			return
		}
		filter.LowStock = low
	}

	articles, err := h.Service.List(r.Context(), user, filter)
	if err != nil {
		h.Logger.Error("ListArticles: service error", "error", err, "username", user.Username, "store_id", filter.StoreID)
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, articles)
}

func (h *Handler) GetArticle(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	a, err := h.Service.Get(r.Context(), user, chi.URLParam(r, "id"), chi.URLParam(r, "storeId"))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, a)
}

func (h *Handler) CreateArticle(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var in Article
	if err := h.DecodeJSON(r, &in); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	if in.StoreID == "" {
		in.StoreID = user.StoreID
	}

	created, err := h.Service.Create(r.Context(), user, in)
	if err != nil {
		h.Logger.Error("CreateArticle: service error", "error", err, "article_id", in.ID, "store_id", in.StoreID)
		h.HandleServiceError(w, err)
		return
	}

	h.Logger.Info("CreateArticle: article created", "article_id", created.ID, "store_id", created.StoreID)
	h.WriteJSON(w, http.StatusCreated, created)
}

func (h *Handler) UpdateArticle(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var in Article
	if err := h.DecodeJSON(r, &in); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	in.ID = chi.URLParam(r, "id")
	in.StoreID = chi.URLParam(r, "storeId")

	updated, err := h.Service.Update(r.Context(), user, in)
	if err != nil {
		h.Logger.Error("UpdateArticle: service error", "error", err, "article_id", in.ID, "store_id", in.StoreID)
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, updated)
}

func (h *Handler) DeleteArticle(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, storeID := chi.URLParam(r, "id"), chi.URLParam(r, "storeId")
	if err := h.Service.Delete(r.Context(), user, id, storeID); err != nil {
		h.Logger.Error("DeleteArticle: service error", "error", err, "article_id", id, "store_id", storeID)
		h.HandleServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ListGlobalArticles(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	articles, err := h.Service.ListGlobal(r.Context(), user)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, articles)
}

func (h *Handler) GetGlobalArticle(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	a, err := h.Service.GetGlobal(r.Context(), user, chi.URLParam(r, "id"))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, a)
}

func (h *Handler) CreateGlobalArticle(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var in Article
	if err := h.DecodeJSON(r, &in); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	created, err := h.Service.CreateGlobal(r.Context(), user, in)
	if err != nil {
		h.Logger.Error("CreateGlobalArticle: service error", "error", err, "article_id", in.ID)
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, created)
}

func (h *Handler) UpdateGlobalArticle(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var in Article
	if err := h.DecodeJSON(r, &in); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	in.ID = chi.URLParam(r, "id")

	updated, err := h.Service.UpdateGlobal(r.Context(), user, in)
	if err != nil {
		h.Logger.Error("UpdateGlobalArticle: service error", "error", err, "article_id", in.ID)
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, updated)
}

func (h *Handler) DeleteGlobalArticle(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id := chi.URLParam(r, "id")
	if err := h.Service.DeleteGlobal(r.Context(), user, id); err != nil {
		h.Logger.Error("DeleteGlobalArticle: service error", "error", err, "article_id", id)
		h.HandleServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
