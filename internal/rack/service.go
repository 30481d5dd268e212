package rack

import (
	"context"
	"errors"
	"log/slog"
	"strconv"

	apperrors "github.com/frahmantamala/warehouse-management/internal"
	"github.com/frahmantamala/warehouse-management/internal/auth"
	"github.com/frahmantamala/warehouse-management/internal/core/common/validation"
	rackDatamodel "github.com/frahmantamala/warehouse-management/internal/core/datamodel/rack"
	"github.com/frahmantamala/warehouse-management/internal/core/events"
	"github.com/frahmantamala/warehouse-management/internal/permission"
	"gorm.io/gorm"
)

type RepositoryAPI interface {
	// List returns racks of storeID, or of every store when storeID is empty.
	List(ctx context.Context, storeID string) ([]*rackDatamodel.ShelfRack, error)
	GetByID(ctx context.Context, id, storeID string) (*rackDatamodel.ShelfRack, error)
	Create(ctx context.Context, r *rackDatamodel.ShelfRack) error
	Update(ctx context.Context, r *rackDatamodel.ShelfRack) error
	Delete(ctx context.Context, id, storeID string) error
	CountArticles(ctx context.Context, id, storeID string) (int64, error)
}

type Service struct {
	repo      RepositoryAPI
	policy    *auth.ABACPolicy
	publisher events.Publisher
	logger    *slog.Logger
}

func NewService(repo RepositoryAPI, policy *auth.ABACPolicy, publisher events.Publisher, logger *slog.Logger) *Service {
	return &Service{repo: repo, policy: policy, publisher: publisher, logger: logger}
}

var errRackNotFound = apperrors.NewNotFoundError("rack not found", apperrors.ErrCodeRackNotFound)

func (s *Service) List(ctx context.Context, actor *auth.User, storeID string) ([]*Rack, error) {
	if err := s.policy.Authorize(actor, permission.RackView, storeID); err != nil {
		return nil, err
	}
	if storeID == "" {
		storeID = s.policy.StoreScope(actor)
	}

	rows, err := s.repo.List(ctx, storeID)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list racks", err)
	}
	out := make([]*Rack, 0, len(rows))
	for _, row := range rows {
		out = append(out, FromDataModel(row))
	}
	return out, nil
}

func (s *Service) Get(ctx context.Context, actor *auth.User, id, storeID string) (*Rack, error) {
	if err := s.policy.Authorize(actor, permission.RackView, storeID); err != nil {
		return nil, err
	}
	row, err := s.repo.GetByID(ctx, id, storeID)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get rack", err)
	}
	if row == nil {
		return nil, errRackNotFound
	}
	return FromDataModel(row), nil
}

func (s *Service) Create(ctx context.Context, actor *auth.User, in Rack) (*Rack, error) {
	in.Normalize()
	if err := s.policy.Authorize(actor, permission.RackCreate, in.StoreID); err != nil {
		return nil, err
	}
	if verr := validation.Struct(in); verr != nil {
		return nil, verr
	}

	existing, err := s.repo.GetByID(ctx, in.ID, in.StoreID)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to check rack", err)
	}
	if existing != nil {
		return nil, apperrors.ErrDuplicateKey.WithMessage("rack " + in.ID + " already exists in store " + in.StoreID)
	}

	row := ToDataModel(&in)
	if err := s.repo.Create(ctx, row); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.ErrDuplicateKey
		}
		return nil, apperrors.NewInternalError("failed to create rack", err)
	}

	s.logger.Info("rack created", "rack_id", row.ID, "store_id", row.StoreID, "shelves", len(row.Shelves))
	events.Emit(ctx, s.publisher, events.NewEntityChangedEvent(actor.Username, events.EntityRack, events.ActionCreated, row.ID, row.StoreID,
		"shelves="+strconv.Itoa(len(row.Shelves))))
	return FromDataModel(row), nil
}

// Update replaces the shelf list of an existing rack. The key parts cannot change.
func (s *Service) Update(ctx context.Context, actor *auth.User, id string, in Rack) (*Rack, error) {
	in.Normalize()
	if err := s.policy.Authorize(actor, permission.RackUpdate, in.StoreID); err != nil {
		return nil, err
	}
	if in.ID != id {
		return nil, apperrors.NewValidationFieldError("rackId", "rowId and rackId cannot change", apperrors.ErrCodeValidationFailed)
	}
	if verr := validation.Struct(in); verr != nil {
		return nil, verr
	}

	existing, err := s.repo.GetByID(ctx, in.ID, in.StoreID)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get rack", err)
	}
	if existing == nil {
		return nil, errRackNotFound
	}

	row := ToDataModel(&in)
	row.CreatedAt = existing.CreatedAt
	if err := s.repo.Update(ctx, row); err != nil {
		return nil, apperrors.NewInternalError("failed to update rack", err)
	}

	events.Emit(ctx, s.publisher, events.NewEntityChangedEvent(actor.Username, events.EntityRack, events.ActionUpdated, row.ID, row.StoreID,
		"shelves="+strconv.Itoa(len(row.Shelves))))
	return FromDataModel(row), nil
}

// Delete refuses while articles are still placed on the rack.
func (s *Service) Delete(ctx context.Context, actor *auth.User, id, storeID string) error {
	if err := s.policy.Authorize(actor, permission.RackDelete, storeID); err != nil {
		return err
	}

	existing, err := s.repo.GetByID(ctx, id, storeID)
	if err != nil {
		return apperrors.NewInternalError("failed to get rack", err)
	}
	if existing == nil {
		return errRackNotFound
	}

	n, err := s.repo.CountArticles(ctx, id, storeID)
	if err != nil {
		return apperrors.NewInternalError("failed to count rack articles", err)
	}
	if n > 0 {
		return apperrors.ErrHasDependents.WithMessage("rack " + id + " still holds articles")
	}

	if err := s.repo.Delete(ctx, id, storeID); err != nil {
		return apperrors.NewInternalError("failed to delete rack", err)
	}

	s.logger.Info("rack deleted", "rack_id", id, "store_id", storeID)
	events.Emit(ctx, s.publisher, events.NewEntityChangedEvent(actor.Username, events.EntityRack, events.ActionDeleted, id, storeID, ""))
	return nil
}
