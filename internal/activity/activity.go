package activity

import (
	"time"

	activityDatamodel "github.com/frahmantamala/warehouse-management/internal/core/datamodel/activity"
)

const (
	DefaultLimit = 100
	MaxLimit     = 1000
)

// Entry is one row of the server-side audit trail.
type Entry struct {
	ID         string    `json:"id"`
	OccurredAt time.Time `json:"timestamp"`
	Username   string    `json:"user"`
	Action     string    `json:"action"`
	Entity     string    `json:"entity"`
	EntityID   string    `json:"entityId"`
	StoreID    string    `json:"storeId,omitempty"`
	Details    string    `json:"details"`
}

func FromDataModel(e *activityDatamodel.Entry) *Entry {
	return &Entry{
		ID:         e.ID,
		OccurredAt: e.OccurredAt,
		Username:   e.Username,
		Action:     e.Action,
		Entity:     e.Entity,
		EntityID:   e.EntityID,
		StoreID:    e.StoreID,
		Details:    e.Details,
	}
}

// ClampLimit maps zero or negative to the default and caps large values.
func ClampLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}
