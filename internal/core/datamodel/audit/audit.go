package audit

import "time"

type Item struct {
	Position int    `json:"position"`
	Question string `json:"question"`
}

type Template struct {
	ID        string    `gorm:"column:id;primaryKey"`
	StoreID   string    `gorm:"column:store_id;index;not null"`
	Name      string    `gorm:"column:name;not null"`
	Items     []Item    `gorm:"column:items;type:jsonb;serializer:json"`
	CreatedBy string    `gorm:"column:created_by"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Template) TableName() string { return "audit_templates" }
