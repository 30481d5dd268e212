package activity

import (
	"context"
	"fmt"
	"log/slog"

	apperrors "github.com/frahmantamala/warehouse-management/internal"
	"github.com/frahmantamala/warehouse-management/internal/auth"
	activityDatamodel "github.com/frahmantamala/warehouse-management/internal/core/datamodel/activity"
	"github.com/frahmantamala/warehouse-management/internal/core/events"
	"github.com/frahmantamala/warehouse-management/internal/permission"
)

type RepositoryAPI interface {
	Insert(ctx context.Context, e *activityDatamodel.Entry) error
	List(ctx context.Context, storeID string, limit int) ([]*activityDatamodel.Entry, error)
	Clear(ctx context.Context) (int64, error)
}

// Service records entity change events and serves them back to log viewers.
type Service struct {
	repo   RepositoryAPI
	policy *auth.ABACPolicy
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, policy *auth.ABACPolicy, logger *slog.Logger) *Service {
	return &Service{repo: repo, policy: policy, logger: logger}
}

func (s *Service) HandleEntityChanged(ctx context.Context, event events.Event) error {
	changed, ok := event.(*events.EntityChangedEvent)
	if !ok {
		s.logger.Error("invalid event type for activity handler", "event_type", event.EventType())
		return fmt.Errorf("expected EntityChangedEvent, got %T", event)
	}

	row := &activityDatamodel.Entry{
		ID:         changed.EventID(),
		OccurredAt: changed.OccurredAt().UTC(),
		Username:   changed.Actor,
		Action:     changed.EventType(),
		Entity:     changed.Entity,
		EntityID:   changed.EntityID,
		StoreID:    changed.StoreID,
		Details:    changed.Details,
	}
	if err := s.repo.Insert(ctx, row); err != nil {
		return fmt.Errorf("failed to record activity %s: %w", row.Action, err)
	}
	return nil
}

func (s *Service) RegisterEventHandlers(eventBus *events.EventBus) {
	types := events.EventTypes()
	eventBus.SubscribeMany(types, s.HandleEntityChanged)

	s.logger.Info("activity event handlers registered", "handlers", len(types))
}

// List returns the newest entries first. Non-admin viewers only see their own store.
func (s *Service) List(ctx context.Context, actor *auth.User, storeID string, limit int) ([]*Entry, error) {
	if err := s.policy.Authorize(actor, permission.LogView, storeID); err != nil {
		return nil, err
	}
	if storeID == "" {
		storeID = s.policy.StoreScope(actor)
	}

	rows, err := s.repo.List(ctx, storeID, ClampLimit(limit))
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list activity", err)
	}
	out := make([]*Entry, 0, len(rows))
	for _, row := range rows {
		out = append(out, FromDataModel(row))
	}
	return out, nil
}

func (s *Service) Clear(ctx context.Context, actor *auth.User) (int64, error) {
	if err := s.policy.Authorize(actor, permission.LogClear, ""); err != nil {
		return 0, err
	}
	n, err := s.repo.Clear(ctx)
	if err != nil {
		return 0, apperrors.NewInternalError("failed to clear activity", err)
	}
	s.logger.Warn("activity log cleared", "username", actor.Username, "entries", n)
	return n, nil
}
