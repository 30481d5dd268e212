package audit

import (
	"context"
	"log/slog"
	"time"

	apperrors "github.com/frahmantamala/warehouse-management/internal"
	"github.com/frahmantamala/warehouse-management/internal/auth"
	"github.com/frahmantamala/warehouse-management/internal/core/common/validation"
	auditDatamodel "github.com/frahmantamala/warehouse-management/internal/core/datamodel/audit"
	"github.com/frahmantamala/warehouse-management/internal/core/events"
	"github.com/frahmantamala/warehouse-management/internal/permission"
	"github.com/google/uuid"
)

type RepositoryAPI interface {
	List(ctx context.Context, storeID string) ([]*auditDatamodel.Template, error)
	GetByID(ctx context.Context, id string) (*auditDatamodel.Template, error)
	Create(ctx context.Context, t *auditDatamodel.Template) error
	Update(ctx context.Context, t *auditDatamodel.Template) error
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

var errTemplateNotFound = apperrors.NewNotFoundError("audit template not found", apperrors.ErrCodeAuditNotFound)

func (s *Service) List(ctx context.Context, actor *auth.User, storeID string) ([]*Template, error) {
	if err := s.policy.Authorize(actor, permission.AuditView, storeID); err != nil {
		return nil, err
	}
	if storeID == "" {
		storeID = s.policy.StoreScope(actor)
	}
	rows, err := s.repo.List(ctx, storeID)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list audit templates", err)
	}
	out := make([]*Template, 0, len(rows))
	for _, row := range rows {
		out = append(out, FromDataModel(row))
	}
	return out, nil
}

func (s *Service) load(ctx context.Context, id string) (*auditDatamodel.Template, error) {
	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get audit template", err)
	}
	if row == nil {
		return nil, errTemplateNotFound
	}
	return row, nil
}

func (s *Service) Get(ctx context.Context, actor *auth.User, id string) (*Template, error) {
	row, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.policy.Authorize(actor, permission.AuditView, row.StoreID); err != nil {
		return nil, err
	}
	return FromDataModel(row), nil
}

func (s *Service) Create(ctx context.Context, actor *auth.User, in Template) (*Template, error) {
	if in.StoreID == "" && actor != nil {
		in.StoreID = actor.StoreID
	}
	in.Normalize()
	if err := s.policy.Authorize(actor, permission.AuditCreate, in.StoreID); err != nil {
		return nil, err
	}
	if verr := validation.Struct(in); verr != nil {
		return nil, verr
	}

	if in.ID == "" {
		in.ID = uuid.NewString()
	} else if existing, err := s.repo.GetByID(ctx, in.ID); err != nil {
		return nil, apperrors.NewInternalError("failed to check audit template", err)
	} else if existing != nil {
		return nil, apperrors.ErrDuplicateKey
	}
	in.CreatedBy = actor.Username
	in.CreatedAt = time.Now().UTC()

	row := ToDataModel(&in)
	if err := s.repo.Create(ctx, row); err != nil {
		return nil, apperrors.NewInternalError("failed to create audit template", err)
	}

	s.logger.Info("audit template created", "template_id", row.ID, "store_id", row.StoreID, "items", len(row.Items))
	events.Emit(ctx, s.publisher, events.NewEntityChangedEvent(actor.Username, events.EntityAudit, events.ActionCreated, row.ID, row.StoreID, row.Name))
	return FromDataModel(row), nil
}

// Update keeps the creator, creation time and store of the stored template.
func (s *Service) Update(ctx context.Context, actor *auth.User, in Template) (*Template, error) {
	existing, err := s.load(ctx, in.ID)
	if err != nil {
		return nil, err
	}
	if err := s.policy.Authorize(actor, permission.AuditUpdate, existing.StoreID); err != nil {
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
		return nil, apperrors.NewInternalError("failed to update audit template", err)
	}

	events.Emit(ctx, s.publisher, events.NewEntityChangedEvent(actor.Username, events.EntityAudit, events.ActionUpdated, row.ID, row.StoreID, row.Name))
	return FromDataModel(row), nil
}

func (s *Service) Delete(ctx context.Context, actor *auth.User, id string) error {
	existing, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if err := s.policy.Authorize(actor, permission.AuditDelete, existing.StoreID); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return apperrors.NewInternalError("failed to delete audit template", err)
	}

	events.Emit(ctx, s.publisher, events.NewEntityChangedEvent(actor.Username, events.EntityAudit, events.ActionDeleted, id, existing.StoreID, existing.Name))
	return nil
}
