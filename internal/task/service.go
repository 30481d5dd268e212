package task

import (
	"context"
	"log/slog"
	"time"

	apperrors "github.com/frahmantamala/warehouse-management/internal"
	"github.com/frahmantamala/warehouse-management/internal/auth"
	"github.com/frahmantamala/warehouse-management/internal/core/common/validation"
	taskDatamodel "github.com/frahmantamala/warehouse-management/internal/core/datamodel/task"
	"github.com/frahmantamala/warehouse-management/internal/core/events"
	"github.com/frahmantamala/warehouse-management/internal/permission"
	"github.com/google/uuid"
)

type RepositoryAPI interface {
	List(ctx context.Context, storeID string) ([]*taskDatamodel.Task, error)
	GetByID(ctx context.Context, id string) (*taskDatamodel.Task, error)
	Create(ctx context.Context, t *taskDatamodel.Task) error
	Update(ctx context.Context, t *taskDatamodel.Task) error
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

var errTaskNotFound = apperrors.NewNotFoundError("task not found", apperrors.ErrCodeTaskNotFound)

func (s *Service) List(ctx context.Context, actor *auth.User, storeID string) ([]*Task, error) {
	if err := s.policy.Authorize(actor, permission.TaskView, storeID); err != nil {
		return nil, err
	}
	if storeID == "" {
		storeID = s.policy.StoreScope(actor)
	}
	rows, err := s.repo.List(ctx, storeID)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list tasks", err)
	}
	out := make([]*Task, 0, len(rows))
	for _, row := range rows {
		out = append(out, FromDataModel(row))
	}
	return out, nil
}

func (s *Service) load(ctx context.Context, id string) (*taskDatamodel.Task, error) {
	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get task", err)
	}
	if row == nil {
		return nil, errTaskNotFound
	}
	return row, nil
}

func (s *Service) Get(ctx context.Context, actor *auth.User, id string) (*Task, error) {
	row, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.policy.Authorize(actor, permission.TaskView, row.StoreID); err != nil {
		return nil, err
	}
	return FromDataModel(row), nil
}

func (s *Service) Create(ctx context.Context, actor *auth.User, in Task) (*Task, error) {
	if in.StoreID == "" && actor != nil {
		in.StoreID = actor.StoreID
	}
	in.Normalize()
	if err := s.policy.Authorize(actor, permission.TaskCreate, in.StoreID); err != nil {
		return nil, err
	}
	if verr := validation.Struct(in); verr != nil {
		return nil, verr
	}

	if in.ID == "" {
		in.ID = uuid.NewString()
	} else if existing, err := s.repo.GetByID(ctx, in.ID); err != nil {
		return nil, apperrors.NewInternalError("failed to check task", err)
	} else if existing != nil {
		return nil, apperrors.ErrDuplicateKey
	}
	in.CreatedBy = actor.Username
	in.CreatedAt = time.Now().UTC()

	row := ToDataModel(&in)
	if err := s.repo.Create(ctx, row); err != nil {
		return nil, apperrors.NewInternalError("failed to create task", err)
	}

	s.logger.Info("task created", "task_id", row.ID, "store_id", row.StoreID, "assignee", row.Assignee)
	events.Emit(ctx, s.publisher, events.NewEntityChangedEvent(actor.Username, events.EntityTask, events.ActionCreated, row.ID, row.StoreID, row.Title))
	return FromDataModel(row), nil
}

// Update keeps the creator, creation time and store of the stored task.
func (s *Service) Update(ctx context.Context, actor *auth.User, in Task) (*Task, error) {
	existing, err := s.load(ctx, in.ID)
	if err != nil {
		return nil, err
	}
	if err := s.policy.Authorize(actor, permission.TaskUpdate, existing.StoreID); err != nil {
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
		return nil, apperrors.NewInternalError("failed to update task", err)
	}

	events.Emit(ctx, s.publisher, events.NewEntityChangedEvent(actor.Username, events.EntityTask, events.ActionUpdated, row.ID, row.StoreID,
		row.Title+" status="+row.Status))
	return FromDataModel(row), nil
}

func (s *Service) Delete(ctx context.Context, actor *auth.User, id string) error {
	existing, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if err := s.policy.Authorize(actor, permission.TaskDelete, existing.StoreID); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return apperrors.NewInternalError("failed to delete task", err)
	}

	events.Emit(ctx, s.publisher, events.NewEntityChangedEvent(actor.Username, events.EntityTask, events.ActionDeleted, id, existing.StoreID, existing.Title))
	return nil
}
