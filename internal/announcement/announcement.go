package announcement

import (
	"strings"
	"time"

	announcementDatamodel "github.com/frahmantamala/warehouse-management/internal/core/datamodel/announcement"
)

// Announcement with an empty StoreID is shown in every store.
type Announcement struct {
	ID        string    `json:"id"`
	StoreID   string    `json:"storeId,omitempty" validate:"omitempty,store_id"`
	Title     string    `json:"title" validate:"required,max=200"`
	Body      string    `json:"body" validate:"max=8000"`
	CreatedBy string    `json:"createdBy"`
	CreatedAt time.Time `json:"createdAt"`
}

func (a *Announcement) Normalize() {
	a.Title = strings.TrimSpace(a.Title)
	a.StoreID = strings.ToUpper(strings.TrimSpace(a.StoreID))
}

func (a *Announcement) IsBroadcast() bool { return a.StoreID == "" }

func ToDataModel(a *Announcement) *announcementDatamodel.Announcement {
	return &announcementDatamodel.Announcement{
		ID:        a.ID,
		StoreID:   a.StoreID,
		Title:     a.Title,
		Body:      a.Body,
		CreatedBy: a.CreatedBy,
		CreatedAt: a.CreatedAt,
	}
}

func FromDataModel(a *announcementDatamodel.Announcement) *Announcement {
	return &Announcement{
		ID:        a.ID,
		StoreID:   a.StoreID,
		Title:     a.Title,
		Body:      a.Body,
		CreatedBy: a.CreatedBy,
		CreatedAt: a.CreatedAt,
	}
}
