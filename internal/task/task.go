package task

import (
	"strings"
	"time"

	taskDatamodel "github.com/frahmantamala/warehouse-management/internal/core/datamodel/task"
)

type Status string

const (
	StatusOpen       Status = "open"
	StatusInProgress Status = "in_progress"
	StatusDone       Status = "done"
)

type Task struct {
	ID          string     `json:"id"`
	StoreID     string     `json:"storeId" validate:"required,store_id"`
	Title       string     `json:"title" validate:"required,max=200"`
	Description string     `json:"description" validate:"max=4000"`
	Assignee    string     `json:"assignee,omitempty" validate:"max=64"`
	Status      Status     `json:"status" validate:"oneof=open in_progress done"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
	CreatedBy   string     `json:"createdBy"`
	CreatedAt   time.Time  `json:"createdAt"`
}

func (t *Task) Normalize() {
	t.Title = strings.TrimSpace(t.Title)
	t.StoreID = strings.ToUpper(strings.TrimSpace(t.StoreID))
	if t.Status == "" {
		t.Status = StatusOpen
	}
}

// Overdue is true for unfinished tasks whose due date lies before now.
func (t *Task) Overdue(now time.Time) bool {
	return t.Status != StatusDone && t.DueDate != nil && t.DueDate.Before(now)
}

func ToDataModel(t *Task) *taskDatamodel.Task {
	return &taskDatamodel.Task{
		ID:          t.ID,
		StoreID:     t.StoreID,
		Title:       t.Title,
		Description: t.Description,
		Assignee:    t.Assignee,
		Status:      string(t.Status),
		DueDate:     t.DueDate,
		CreatedBy:   t.CreatedBy,
		CreatedAt:   t.CreatedAt,
	}
}

func FromDataModel(t *taskDatamodel.Task) *Task {
	return &Task{
		ID:          t.ID,
		StoreID:     t.StoreID,
		Title:       t.Title,
		Description: t.Description,
		Assignee:    t.Assignee,
		Status:      Status(t.Status),
		DueDate:     t.DueDate,
		CreatedBy:   t.CreatedBy,
		CreatedAt:   t.CreatedAt,
	}
}
