package store

import (
	"context"
	"errors"
	"log/slog"

	apperrors "github.com/frahmantamala/warehouse-management/internal"
	"github.com/frahmantamala/warehouse-management/internal/auth"
	"github.com/frahmantamala/warehouse-management/internal/core/common/validation"
	storeDatamodel "github.com/frahmantamala/warehouse-management/internal/core/datamodel/store"
	"github.com/frahmantamala/warehouse-management/internal/core/events"
	"github.com/frahmantamala/warehouse-management/internal/permission"
	"gorm.io/gorm"
)

type RepositoryAPI interface {
	List(ctx context.Context) ([]*storeDatamodel.Store, error)
	GetByID(ctx context.Context, id string) (*storeDatamodel.Store, error)
	Create(ctx context.Context, s *storeDatamodel.Store) error
	Update(ctx context.Context, s *storeDatamodel.Store) error
	Delete(ctx context.Context, id string) error
	// CountDependents counts articles, racks and users that still reference the store.
	CountDependents(ctx context.Context, id string) (int64, error)
}

type Service struct {
	repo      RepositoryAPI
	policy    *auth.ABACPolicy
	publisher events.Publisher
	logger    *slog.Logger
}

func NewService(repo RepositoryAPI, policy *auth.ABACPolicy, publisher events.Publisher, logger *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		policy:    policy,
		publisher: publisher,
		logger:    logger,
	}
}

var errStoreNotFound = apperrors.NewNotFoundError("store not found", apperrors.ErrCodeStoreNotFound)

// List returns every store for admin and only the own store otherwise.
func (s *Service) List(ctx context.Context, actor *auth.User) ([]*Store, error) {
	if err := s.policy.Authorize(actor, permission.StoreView, ""); err != nil {
		return nil, err
	}

	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list stores", err)
	}

	out := make([]*Store, 0, len(rows))
	for _, row := range rows {
		if actor.CanAccessStore(row.ID) {
			out = append(out, FromDataModel(row))
		}
	}
	return out, nil
}

func (s *Service) Get(ctx context.Context, actor *auth.User, id string) (*Store, error) {
	if err := s.policy.Authorize(actor, permission.StoreView, id); err != nil {
		return nil, err
	}
	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get store", err)
	}
	if row == nil {
		return nil, errStoreNotFound
	}
	return FromDataModel(row), nil
}

func (s *Service) Create(ctx context.Context, actor *auth.User, in Store) (*Store, error) {
	if err := s.policy.Authorize(actor, permission.StoreCreate, ""); err != nil {
		return nil, err
	}

	in.Normalize()
	if verr := validation.Struct(in); verr != nil {
		return nil, verr
	}

	existing, err := s.repo.GetByID(ctx, in.ID)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to check store", err)
	}
	if existing != nil {
		return nil, apperrors.ErrDuplicateKey.WithMessage("store " + in.ID + " already exists")
	}

	row := ToDataModel(&in)
	if err := s.repo.Create(ctx, row); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.ErrDuplicateKey.WithMessage("store " + in.ID + " already exists")
		}
		return nil, apperrors.NewInternalError("failed to create store", err)
	}

	s.logger.Info("store created", "store_id", row.ID, "username", actor.Username)
	events.Emit(ctx, s.publisher, events.NewEntityChangedEvent(actor.Username, events.EntityStore, events.ActionCreated, row.ID, row.ID, row.Name))
	return FromDataModel(row), nil
}

func (s *Service) Update(ctx context.Context, actor *auth.User, in Store) (*Store, error) {
	if err := s.policy.Authorize(actor, permission.StoreUpdate, ""); err != nil {
		return nil, err
	}

	in.Normalize()
	if verr := validation.Struct(in); verr != nil {
		return nil, verr
	}

	existing, err := s.repo.GetByID(ctx, in.ID)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get store", err)
	}
	if existing == nil {
		return nil, errStoreNotFound
	}

	existing.Name = in.Name
	if err := s.repo.Update(ctx, existing); err != nil {
		return nil, apperrors.NewInternalError("failed to update store", err)
	}

	events.Emit(ctx, s.publisher, events.NewEntityChangedEvent(actor.Username, events.EntityStore, events.ActionUpdated, existing.ID, existing.ID, existing.Name))
	return FromDataModel(existing), nil
}

// Delete refuses while articles, racks or users still reference the store.
func (s *Service) Delete(ctx context.Context, actor *auth.User, id string) error {
	if err := s.policy.Authorize(actor, permission.StoreDelete, ""); err != nil {
		return err
	}

	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return apperrors.NewInternalError("failed to get store", err)
	}
	if existing == nil {
		return errStoreNotFound
	}

	n, err := s.repo.CountDependents(ctx, id)
	if err != nil {
		return apperrors.NewInternalError("failed to count store dependents", err)
	}
	if n > 0 {
		s.logger.Warn("store delete rejected: dependents exist", "store_id", id, "dependents", n)
		return apperrors.ErrHasDependents.WithDetails(map[string]int64{"dependents": n})
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return apperrors.NewInternalError("failed to delete store", err)
	}

	s.logger.Info("store deleted", "store_id", id, "username", actor.Username)
	events.Emit(ctx, s.publisher, events.NewEntityChangedEvent(actor.Username, events.EntityStore, events.ActionDeleted, id, id, existing.Name))
	return nil
}
