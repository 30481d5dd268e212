package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

const (
	EntityArticle       = "article"
	EntityGlobalArticle = "global_article"
	EntityStore         = "store"
	EntityRack          = "rack"
	EntityUser          = "user"
	EntityTask          = "task"
	EntityAnnouncement  = "announcement"
	EntityAudit         = "audit_template"
	EntitySession       = "session"
)

// EventTypes lists every entity change type the services publish.
func EventTypes() []string {
	entities := []string{
		EntityArticle, EntityGlobalArticle, EntityStore, EntityRack, EntityUser,
		EntityTask, EntityAnnouncement, EntityAudit,
	}
	actions := []string{ActionCreated, ActionUpdated, ActionDeleted}
	out := make([]string, 0, len(entities)*len(actions)+2)
	for _, e := range entities {
		for _, a := range actions {
			out = append(out, e+"."+a)
		}
	}
	return append(out, EntitySession+".login", EntitySession+".logout")
}

// EntityChangedEvent is published after a successful mutation.
type EntityChangedEvent struct {
	BaseEvent
	Actor    string `json:"actor"`
	Entity   string `json:"entity"`
	Action   string `json:"action"`
	EntityID string `json:"entity_id"`
	StoreID  string `json:"store_id"`
	Details  string `json:"details"`
}

func NewEntityChangedEvent(actor, entity, action, entityID, storeID, details string) *EntityChangedEvent {
	return &EntityChangedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      entity + "." + action,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"actor":     actor,
				"entity_id": entityID,
				"store_id":  storeID,
				"details":   details,
			},
		},
		Actor:    actor,
		Entity:   entity,
		Action:   action,
		EntityID: entityID,
		StoreID:  storeID,
		Details:  details,
	}
}

// Emit publishes through p when it is set; failures are only logged by the bus.
func Emit(ctx context.Context, p Publisher, event Event) {
	if p == nil {
		return
	}
	_ = p.Publish(ctx, event)
}
