package article

import (
	"strings"

	articleDatamodel "github.com/frahmantamala/warehouse-management/internal/core/datamodel/article"
)

const (
	// GlobalStoreID marks catalog entries that belong to no store.
	GlobalStoreID = "GLOBAL"
	// NoPlacement is used for rack and shelf when an article has not been placed yet.
	NoPlacement = "N/A"
)

type Article struct {
	ID                   string `json:"id" validate:"required,max=64"`
	Name                 string `json:"name" validate:"required,max=256"`
	StoreID              string `json:"storeId" validate:"required,store_id"`
	RackID               string `json:"rackId" validate:"max=64"`
	ShelfNumber          string `json:"shelfNumber" validate:"max=16"`
	Status               string `json:"status" validate:"max=32"`
	Quantity             int    `json:"quantity" validate:"gte=0"`
	MinQuantity          *int   `json:"minQuantity,omitempty" validate:"omitempty,gte=0"`
	ShopFloorStock       *int   `json:"shopFloorStock,omitempty" validate:"omitempty,gte=0"`
	ReplenishmentTrigger int    `json:"replenishmentTrigger" validate:"gte=0"`
	HasShopFloorStock    bool   `json:"hasShopFloorStock"`
}

func (a *Article) Normalize() {
	a.ID = strings.TrimSpace(a.ID)
	a.Name = strings.TrimSpace(a.Name)
	if a.RackID == "" {
		a.RackID = NoPlacement
	}
	if a.ShelfNumber == "" {
		a.ShelfNumber = NoPlacement
	}
}

func (a *Article) IsGlobal() bool { return a.StoreID == GlobalStoreID }

// IsLowStock reports a quantity below the configured minimum.
func (a *Article) IsLowStock() bool {
	return a.MinQuantity != nil && a.Quantity < *a.MinQuantity
}

// NeedsReplenishment is true when the shop floor has dropped to its trigger level.
func (a *Article) NeedsReplenishment() bool {
	return a.HasShopFloorStock && a.ShopFloorStock != nil && *a.ShopFloorStock <= a.ReplenishmentTrigger
}

// Key is the composite identity used by caches.
func (a *Article) Key() string { return a.StoreID + "/" + a.ID }

func ToDataModel(a *Article) *articleDatamodel.Article {
	return &articleDatamodel.Article{
		ID:                   a.ID,
		StoreID:              a.StoreID,
		Name:                 a.Name,
		RackID:               a.RackID,
		ShelfNumber:          a.ShelfNumber,
		Status:               a.Status,
		Quantity:             a.Quantity,
		MinQuantity:          a.MinQuantity,
		ShopFloorStock:       a.ShopFloorStock,
		ReplenishmentTrigger: a.ReplenishmentTrigger,
		HasShopFloorStock:    a.HasShopFloorStock,
	}
}

func FromDataModel(a *articleDatamodel.Article) *Article {
	return &Article{
		ID:                   a.ID,
		Name:                 a.Name,
		StoreID:              a.StoreID,
		RackID:               a.RackID,
		ShelfNumber:          a.ShelfNumber,
		Status:               a.Status,
		Quantity:             a.Quantity,
		MinQuantity:          a.MinQuantity,
		ShopFloorStock:       a.ShopFloorStock,
		ReplenishmentTrigger: a.ReplenishmentTrigger,
		HasShopFloorStock:    a.HasShopFloorStock,
	}
}
