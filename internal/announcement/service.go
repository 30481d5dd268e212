package announcement

import (
	"context"
	"log/slog"
	"time"

	apperrors "github.com/frahmantamala/warehouse-management/internal"
	"github.com/frahmantamala/warehouse-management/internal/auth"
	"github.com/frahmantamala/warehouse-management/internal/core/common/validation"
	announcementDatamodel "github.com/frahmantamala/warehouse-management/internal/core/datamodel/announcement"
	"github.com/frahmantamala/warehouse-management/internal/core/events"
	"github.com/frahmantamala/warehouse-management/internal/permission"
	"github.com/google/uuid"
)

type RepositoryAPI interface {
	// List returns announcements of storeID plus broadcasts; an empty storeID returns everything.
	List(ctx context.Context, storeID string) ([]*announcementDatamodel.Announcement, error)
	GetByID(ctx context.Context, id string) (*announcementDatamodel.Announcement, error)
	Create(ctx context.Context, a *announcementDatamodel.Announcement) error
	Update(ctx context.Context, a *announcementDatamodel.Announcement) error
	Delete(ctx context.Context, id string) error
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

var (
	errAnnouncementNotFound = apperrors.NewNotFoundError("announcement not found", apperrors.ErrCodeAnnouncementNotFound)
	errBroadcastAdminOnly   = apperrors.ErrInsufficientPermission.WithMessage("only admin can address every store")
)

// authorize checks perm against the announcement's store. Broadcasts need admin
// for writes and nothing beyond perm for reads.
func (s *Service) authorize(actor *auth.User, perm permission.Permission, storeID string, write bool) error {
	if storeID == "" {
		if err := s.policy.Authorize(actor, perm, ""); err != nil {
			return err
		}
		if write && !actor.IsAdmin() {
			return errBroadcastAdminOnly
		}
		return nil
	}
	return s.policy.Authorize(actor, perm, storeID)
}

func (s *Service) List(ctx context.Context, actor *auth.User) ([]*Announcement, error) {
	if err := s.policy.Authorize(actor, permission.AnnouncementView, ""); err != nil {
		return nil, err
	}
	rows, err := s.repo.List(ctx, s.policy.StoreScope(actor))
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list announcements", err)
	}
	out := make([]*Announcement, 0, len(rows))
	for _, row := range rows {
		out = append(out, FromDataModel(row))
	}
	return out, nil
}

func (s *Service) load(ctx context.Context, id string) (*announcementDatamodel.Announcement, error) {
	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get announcement", err)
	}
	if row == nil {
		return nil, errAnnouncementNotFound
	}
	return row, nil
}

func (s *Service) Get(ctx context.Context, actor *auth.User, id string) (*Announcement, error) {
	row, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(actor, permission.AnnouncementView, row.StoreID, false); err != nil {
		return nil, err
	}
	return FromDataModel(row), nil
}

func (s *Service) Create(ctx context.Context, actor *auth.User, in Announcement) (*Announcement, error) {
	in.Normalize()
	if err := s.authorize(actor, permission.AnnouncementCreate, in.StoreID, true); err != nil {
		return nil, err
	}
	if verr := validation.Struct(in); verr != nil {
		return nil, verr
	}

	in.ID = uuid.NewString()
	in.CreatedBy = actor.Username
	in.CreatedAt = time.Now().UTC()

	row := ToDataModel(&in)
	if err := s.repo.Create(ctx, row); err != nil {
		return nil, apperrors.NewInternalError("failed to create announcement", err)
	}

	s.logger.Info("announcement created", "announcement_id", row.ID, "store_id", row.StoreID)
	events.Emit(ctx, s.publisher, events.NewEntityChangedEvent(actor.Username, events.EntityAnnouncement, events.ActionCreated, row.ID, row.StoreID, row.Title))
	return FromDataModel(row), nil
}

func (s *Service) Update(ctx context.Context, actor *auth.User, in Announcement) (*Announcement, error) {
	existing, err := s.load(ctx, in.ID)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(actor, permission.AnnouncementUpdate, existing.StoreID, true); err != nil {
		return nil, err
	}

	in.StoreID = existing.StoreID
	in.Normalize()
	if verr := validation.Struct(in); verr != nil {
		return nil, verr
	}
	in.CreatedBy = existing.CreatedBy
	in.CreatedAt = existing.CreatedAt

	row := ToDataModel(&in)
	if err := s.repo.Update(ctx, row); err != nil {
		return nil, apperrors.NewInternalError("failed to update announcement", err)
	}

	events.Emit(ctx, s.publisher, events.NewEntityChangedEvent(actor.Username, events.EntityAnnouncement, events.ActionUpdated, row.ID, row.StoreID, row.Title))
	return FromDataModel(row), nil
}

func (s *Service) Delete(ctx context.Context, actor *auth.User, id string) error {
	existing, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if err := s.authorize(actor, permission.AnnouncementDelete, existing.StoreID, true); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return apperrors.NewInternalError("failed to delete announcement", err)
	}

	events.Emit(ctx, s.publisher, events.NewEntityChangedEvent(actor.Username, events.EntityAnnouncement, events.ActionDeleted, id, existing.StoreID, existing.Title))
	return nil
}
