package rack

import "time"

type Shelf struct {
	ShelfNumber int    `json:"shelfNumber"`
	Description string `json:"description"`
}

type ShelfRack struct {
	ID        string    `gorm:"column:id;primaryKey"`
	StoreID   string    `gorm:"column:store_id;primaryKey"`
	RowID     string    `gorm:"column:row_id;not null"`
	RackID    string    `gorm:"column:rack_id;not null"`
	Shelves   []Shelf   `gorm:"column:shelves;type:jsonb;serializer:json"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (ShelfRack) TableName() string { return "shelf_racks" }
