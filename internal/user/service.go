package user

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	apperrors "github.com/frahmantamala/warehouse-management/internal"
	"github.com/frahmantamala/warehouse-management/internal/auth"
	"github.com/frahmantamala/warehouse-management/internal/core/common/validation"
	userDatamodel "github.com/frahmantamala/warehouse-management/internal/core/datamodel/user"
	"github.com/frahmantamala/warehouse-management/internal/core/events"
	"github.com/frahmantamala/warehouse-management/internal/permission"
	"gorm.io/gorm"
)

type Repository interface {
	// List returns users of storeID, or every user when storeID is empty.
	List(ctx context.Context, storeID string) ([]*userDatamodel.User, error)
	GetByUsername(ctx context.Context, username string) (*userDatamodel.User, error)
	GetByEmail(ctx context.Context, email string) (*userDatamodel.User, error)
	GetPermissions(ctx context.Context, username string) ([]string, error)
	Create(ctx context.Context, u *userDatamodel.User, grants []string) error
	// Update saves the row and replaces the stored grants.
	Update(ctx context.Context, u *userDatamodel.User, grants []string) error
	UpdatePassword(ctx context.Context, username, passwordHash string) error
	Delete(ctx context.Context, username string) error
	Count(ctx context.Context) (int64, error)
}

type Service struct {
	repo       Repository
	policy     *auth.ABACPolicy
	publisher  events.Publisher
	bcryptCost int
	logger     *slog.Logger
}

func NewService(repo Repository, policy *auth.ABACPolicy, publisher events.Publisher, bcryptCost int, logger *slog.Logger) *Service {
	return &Service{
		repo:       repo,
		policy:     policy,
		publisher:  publisher,
		bcryptCost: bcryptCost,
		logger:     logger,
	}
}

var (
	errUserNotFound  = apperrors.NewNotFoundError("user not found", apperrors.ErrCodeUserNotFound)
	errStoreRequired = apperrors.NewValidationFieldError("storeId", "storeId is required for non-admin roles", apperrors.ErrCodeInvalidStore)
	errAdminGrant    = apperrors.ErrInsufficientPermission.WithMessage("only admin can assign the admin role")
	errStoreChange   = apperrors.ErrInsufficientPermission.WithMessage("only admin can move users between stores")
)

func grantStrings(perms []permission.Permission) []string {
	return permission.Strings(permission.Normalize(perms))
}

func (s *Service) load(ctx context.Context, username string) (*User, *userDatamodel.User, error) {
	row, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		return nil, nil, apperrors.NewInternalError("failed to get user", err)
	}
	if row == nil {
		return nil, nil, errUserNotFound
	}
	grants, err := s.repo.GetPermissions(ctx, username)
	if err != nil {
		return nil, nil, apperrors.NewInternalError("failed to get user permissions", err)
	}
	return FromDataModelWithPermissions(row, grants), row, nil
}

func (s *Service) List(ctx context.Context, actor *auth.User) ([]*User, error) {
	if err := s.policy.Authorize(actor, permission.UserView, ""); err != nil {
		return nil, err
	}

	scope := s.policy.StoreScope(actor)
	rows, err := s.repo.List(ctx, scope)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list users", err)
	}

	out := make([]*User, 0, len(rows))
	for _, row := range rows {
		grants, err := s.repo.GetPermissions(ctx, row.Username)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to get user permissions", err)
		}
		out = append(out, FromDataModelWithPermissions(row, grants))
	}
	return out, nil
}

// Get lets everyone read their own record; other users need user:view in the same store.
func (s *Service) Get(ctx context.Context, actor *auth.User, username string) (*User, error) {
	u, _, err := s.load(ctx, username)
	if err != nil {
		return nil, err
	}
	if actor == nil || actor.Username != username {
		if err := s.policy.Authorize(actor, permission.UserView, u.StoreID); err != nil {
			return nil, err
		}
	}
	return u, nil
}

func (s *Service) validate(u *User) error {
	if verr := validation.Struct(u); verr != nil {
		return verr
	}
	if !u.Role.Valid() {
		return apperrors.NewValidationFieldError("role", "unknown role", apperrors.ErrCodeInvalidRole)
	}
	if !u.IsAdmin() && u.StoreID == "" {
		return errStoreRequired
	}
	return nil
}

func (s *Service) Create(ctx context.Context, actor *auth.User, dto CreateUserDTO) (*User, error) {
	if verr := validation.Struct(dto); verr != nil {
		return nil, verr
	}
	in := dto.User()
	in.Normalize()

	if err := s.policy.Authorize(actor, permission.UserCreate, in.StoreID); err != nil {
		return nil, err
	}
	if in.IsAdmin() && !actor.IsAdmin() {
		return nil, errAdminGrant
	}
	if err := s.validate(&in); err != nil {
		return nil, err
	}

	if existing, err := s.repo.GetByUsername(ctx, in.Username); err != nil {
		return nil, apperrors.NewInternalError("failed to check username", err)
	} else if existing != nil {
		return nil, apperrors.ErrDuplicateKey.WithMessage("username " + in.Username + " is taken")
	}
	if existing, err := s.repo.GetByEmail(ctx, in.Email); err != nil {
		return nil, apperrors.NewInternalError("failed to check email", err)
	} else if existing != nil {
		return nil, apperrors.ErrDuplicateKey.WithMessage("email " + in.Email + " is already registered")
	}

	hash, err := auth.HashPassword(dto.Password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to hash password", err)
	}

	if err := s.repo.Create(ctx, ToDataModel(&in, hash), grantStrings(in.Permissions)); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.ErrDuplicateKey
		}
		return nil, apperrors.NewInternalError("failed to create user", err)
	}

	s.logger.Info("user created", "username", in.Username, "role", in.Role, "store_id", in.StoreID, "created_by", actor.Username)
	events.Emit(ctx, s.publisher, events.NewEntityChangedEvent(actor.Username, events.EntityUser, events.ActionCreated, in.Username, in.StoreID,
		"role="+string(in.Role)))
	return &in, nil
}

// Update changes email, role, store and stored grants. Non-admin callers can neither
// grant admin nor move a user to another store.
func (s *Service) Update(ctx context.Context, actor *auth.User, in User) (*User, error) {
	in.Normalize()

	current, row, err := s.load(ctx, in.Username)
	if err != nil {
		return nil, err
	}
	if err := s.policy.Authorize(actor, permission.UserUpdate, current.StoreID); err != nil {
		return nil, err
	}
	if !actor.IsAdmin() {
		if in.IsAdmin() || current.IsAdmin() {
			return nil, errAdminGrant
		}
		if in.StoreID != current.StoreID {
			return nil, errStoreChange
		}
	}
	if err := s.validate(&in); err != nil {
		return nil, err
	}

	if in.Email != current.Email {
		if other, err := s.repo.GetByEmail(ctx, in.Email); err != nil {
			return nil, apperrors.NewInternalError("failed to check email", err)
		} else if other != nil && other.Username != in.Username {
			return nil, apperrors.ErrDuplicateKey.WithMessage("email " + in.Email + " is already registered")
		}
	}

	in.FirstLogin = current.FirstLogin
	next := ToDataModel(&in, row.PasswordHash)
	next.CreatedAt = row.CreatedAt
	if err := s.repo.Update(ctx, next, grantStrings(in.Permissions)); err != nil {
		return nil, apperrors.NewInternalError("failed to update user", err)
	}

	s.logger.Info("user updated", "username", in.Username, "role", in.Role, "store_id", in.StoreID, "updated_by", actor.Username)
	events.Emit(ctx, s.publisher, events.NewEntityChangedEvent(actor.Username, events.EntityUser, events.ActionUpdated, in.Username, in.StoreID,
		"role="+string(in.Role)+" permissions="+strings.Join(grantStrings(in.Permissions), ",")))
	return &in, nil
}

// Delete rejects self-deletion before any permission check.
func (s *Service) Delete(ctx context.Context, actor *auth.User, username string) error {
	if actor != nil && actor.Username == username {
		return apperrors.ErrCannotDeleteSelf
	}

	current, _, err := s.load(ctx, username)
	if err != nil {
		return err
	}
	if err := s.policy.Authorize(actor, permission.UserDelete, current.StoreID); err != nil {
		return err
	}
	if current.IsAdmin() && !actor.IsAdmin() {
		return errAdminGrant
	}

	if err := s.repo.Delete(ctx, username); err != nil {
		return apperrors.NewInternalError("failed to delete user", err)
	}

	s.logger.Info("user deleted", "username", username, "deleted_by", actor.Username)
	events.Emit(ctx, s.publisher, events.NewEntityChangedEvent(actor.Username, events.EntityUser, events.ActionDeleted, username, current.StoreID, ""))
	return nil
}

// ChangePassword is allowed for the user themself (with the current password) and for admin.
// It always clears the first-login flag.
func (s *Service) ChangePassword(ctx context.Context, actor *auth.User, username string, dto ChangePasswordDTO) error {
	if verr := validation.Struct(dto); verr != nil {
		return verr
	}
	if actor == nil {
		return apperrors.ErrInvalidToken
	}

	_, row, err := s.load(ctx, username)
	if err != nil {
		return err
	}

	self := actor.Username == username
	if !self && !actor.IsAdmin() {
		return apperrors.ErrInsufficientPermission.WithMessage("only admin can change another user's password")
	}
	if self && !actor.IsAdmin() {
		if err := auth.VerifyPassword(row.PasswordHash, dto.CurrentPassword); err != nil {
			return apperrors.ErrInvalidCredentials.WithMessage("current password is wrong")
		}
	}

	hash, err := auth.HashPassword(dto.NewPassword, s.bcryptCost)
	if err != nil {
		return apperrors.NewInternalError("failed to hash password", err)
	}
	if err := s.repo.UpdatePassword(ctx, username, hash); err != nil {
		return apperrors.NewInternalError("failed to update password", err)
	}

	s.logger.Info("password changed", "username", username, "changed_by", actor.Username)
	events.Emit(ctx, s.publisher, events.NewEntityChangedEvent(actor.Username, events.EntityUser, events.ActionUpdated, username, row.StoreID, "password changed"))
	return nil
}

// InitDB creates the default admin on an empty users table.
func (s *Service) InitDB(ctx context.Context, username, password string) (*InitDBResponse, error) {
	n, err := s.repo.Count(ctx)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to count users", err)
	}
	if n > 0 {
		return nil, apperrors.ErrAlreadyBootstrap
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to hash password", err)
	}

	admin := User{Username: username, Email: username + "@localhost", Role: permission.RoleAdmin, FirstLogin: true}
	if err := s.repo.Create(ctx, ToDataModel(&admin, hash), nil); err != nil {
		return nil, apperrors.NewInternalError("failed to create admin", err)
	}

	s.logger.Warn("database initialized with default admin; change its password", "username", username)
	events.Emit(ctx, s.publisher, events.NewEntityChangedEvent(username, events.EntityUser, events.ActionCreated, username, "", "bootstrap"))
	return &InitDBResponse{Username: username, Message: "default admin created"}, nil
}
