package audit

import (
	"strings"
	"time"

	auditDatamodel "github.com/frahmantamala/warehouse-management/internal/core/datamodel/audit"
)

type Item struct {
	Position int    `json:"position"`
	Question string `json:"question" validate:"required,max=500"`
}

// Template is a store's checklist for recurring audits.
type Template struct {
	ID        string    `json:"id"`
	StoreID   string    `json:"storeId" validate:"required,store_id"`
	Name      string    `json:"name" validate:"required,max=200"`
	Items     []Item    `json:"items" validate:"dive"`
	CreatedBy string    `json:"createdBy"`
	CreatedAt time.Time `json:"createdAt"`
}

// Normalize trims the name and renumbers items 1..n in their current order.
func (t *Template) Normalize() {
	t.Name = strings.TrimSpace(t.Name)
	t.StoreID = strings.ToUpper(strings.TrimSpace(t.StoreID))
	for i := range t.Items {
		t.Items[i].Position = i + 1
	}
}

func ToDataModel(t *Template) *auditDatamodel.Template {
	items := make([]auditDatamodel.Item, len(t.Items))
	for i, it := range t.Items {
		items[i] = auditDatamodel.Item{Position: it.Position, Question: it.Question}
	}
	return &auditDatamodel.Template{
		ID:        t.ID,
		StoreID:   t.StoreID,
		Name:      t.Name,
		Items:     items,
		CreatedBy: t.CreatedBy,
		CreatedAt: t.CreatedAt,
	}
}

func FromDataModel(t *auditDatamodel.Template) *Template {
	items := make([]Item, len(t.Items))
	for i, it := range t.Items {
		items[i] = Item{Position: it.Position, Question: it.Question}
	}
	return &Template{
		ID:        t.ID,
		StoreID:   t.StoreID,
		Name:      t.Name,
		Items:     items,
		CreatedBy: t.CreatedBy,
		CreatedAt: t.CreatedAt,
	}
}
