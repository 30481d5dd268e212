package article

import "time"

type Article struct {
	ID                   string    `gorm:"column:id;primaryKey"`
	StoreID              string    `gorm:"column:store_id;primaryKey"`
	Name                 string    `gorm:"column:name;not null"`
	RackID               string    `gorm:"column:rack_id"`
	ShelfNumber          string    `gorm:"column:shelf_number"`
	Status               string    `gorm:"column:status"`
	Quantity             int       `gorm:"column:quantity;not null;default:0"`
	MinQuantity          *int      `gorm:"column:min_quantity"`
	ShopFloorStock       *int      `gorm:"column:shop_floor_stock"`
	ReplenishmentTrigger int       `gorm:"column:replenishment_trigger;default:0"`
	HasShopFloorStock    bool      `gorm:"column:has_shop_floor_stock;default:false"`
	CreatedAt            time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt            time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Article) TableName() string { return "articles" }
