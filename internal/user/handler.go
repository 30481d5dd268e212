package user

import (
	"context"
	"net/http"

	"github.com/frahmantamala/warehouse-management/internal/auth"
	"github.com/frahmantamala/warehouse-management/internal/transport"
	"github.com/go-chi/chi"
)

type ServiceAPI interface {
	List(ctx context.Context, actor *auth.User) ([]*User, error)
	Get(ctx context.Context, actor *auth.User, username string) (*User, error)
	Create(ctx context.Context, actor *auth.User, dto CreateUserDTO) (*User, error)
	Update(ctx context.Context, actor *auth.User, in User) (*User, error)
	Delete(ctx context.Context, actor *auth.User, username string) error
	ChangePassword(ctx context.Context, actor *auth.User, username string, dto ChangePasswordDTO) error
	InitDB(ctx context.Context, username, password string) (*InitDBResponse, error)
}

// Bootstrap holds the credentials POST /api/init-db creates the first admin with.
type Bootstrap struct {
	Username string
	Password string
}

type Handler struct {
	*transport.BaseHandler
	Service   ServiceAPI
	bootstrap Bootstrap
}

func NewHandler(baseHandler *transport.BaseHandler, svc ServiceAPI, bootstrap Bootstrap) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Service:     svc,
		bootstrap:   bootstrap,
	}
}

func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	users, err := h.Service.List(r.Context(), user)
	if err != nil {
		h.Logger.Error("ListUsers: service error", "error", err, "username", user.Username)
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, users)
}

func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	u, err := h.Service.Get(r.Context(), user, chi.URLParam(r, "username"))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, u)
}

func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var dto CreateUserDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.Logger.Warn("CreateUser: invalid request body", "error", err)
		h.HandleServiceError(w, err)
		return
	}

	created, err := h.Service.Create(r.Context(), user, dto)
	if err != nil {
		h.Logger.Error("CreateUser: service error", "error", err, "username", dto.Username)
		h.HandleServiceError(w, err)
		return
	}

	h.Logger.Info("CreateUser: user created", "username", created.Username, "role", created.Role, "created_by", user.Username)
	h.WriteJSON(w, http.StatusCreated, created)
}

func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var in User
	if err := h.DecodeJSON(r, &in); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	in.Username = chi.URLParam(r, "username")

	updated, err := h.Service.Update(r.Context(), user, in)
	if err != nil {
		h.Logger.Error("UpdateUser: service error", "error", err, "username", in.Username)
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, updated)
}

func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	username := chi.URLParam(r, "username")
	if err := h.Service.Delete(r.Context(), user, username); err != nil {
		h.Logger.Warn("DeleteUser: service error", "error", err, "username", username, "requested_by", user.Username)
		h.HandleServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ChangePassword handles PUT /api/users/{username}/password
func (h *Handler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var dto ChangePasswordDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	username := chi.URLParam(r, "username")
	if err := h.Service.ChangePassword(r.Context(), user, username, dto); err != nil {
		h.Logger.Warn("ChangePassword: service error", "error", err, "username", username)
		h.HandleServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// InitDB handles POST /api/init-db. It is unauthenticated and only works once.
func (h *Handler) InitDB(w http.ResponseWriter, r *http.Request) {
	resp, err := h.Service.InitDB(r.Context(), h.bootstrap.Username, h.bootstrap.Password)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, resp)
}
