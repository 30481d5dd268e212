package announcement

import "time"

type Announcement struct {
	ID        string    `gorm:"column:id;primaryKey"`
	StoreID   string    `gorm:"column:store_id;index"`
	Title     string    `gorm:"column:title;not null"`
	Body      string    `gorm:"column:body"`
	CreatedBy string    `gorm:"column:created_by"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Announcement) TableName() string { return "announcements" }
