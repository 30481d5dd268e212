package postgres

import (
	"context"
	"errors"

	rackDatamodel "github.com/frahmantamala/warehouse-management/internal/core/datamodel/rack"
	"github.com/frahmantamala/warehouse-management/internal/rack"
	"gorm.io/gorm"
)

type RackRepository struct {
	db *gorm.DB
}

func NewRackRepository(db *gorm.DB) rack.RepositoryAPI {
	return &RackRepository{db: db}
}

func (r *RackRepository) List(ctx context.Context, storeID string) ([]*rackDatamodel.ShelfRack, error) {
	var racks []*rackDatamodel.ShelfRack
	q := r.db.WithContext(ctx).Order("store_id ASC, id ASC")
	if storeID != "" {
		q = q.Where("store_id = ?", storeID)
	}
	err := q.Find(&racks).Error
	return racks, err
}

func (r *RackRepository) GetByID(ctx context.Context, id, storeID string) (*rackDatamodel.ShelfRack, error) {
	var rk rackDatamodel.ShelfRack
	err := r.db.WithContext(ctx).Where("id = ? AND store_id = ?", id, storeID).First(&rk).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &rk, nil
}

func (r *RackRepository) Create(ctx context.Context, rk *rackDatamodel.ShelfRack) error {
	return r.db.WithContext(ctx).Create(rk).Error
}

func (r *RackRepository) Update(ctx context.Context, rk *rackDatamodel.ShelfRack) error {
	return r.db.WithContext(ctx).Save(rk).Error
}

func (r *RackRepository) Delete(ctx context.Context, id, storeID string) error {
	return r.db.WithContext(ctx).Where("id = ? AND store_id = ?", id, storeID).Delete(&rackDatamodel.ShelfRack{}).Error
}

func (r *RackRepository) CountArticles(ctx context.Context, id, storeID string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Table("articles").Where("rack_id = ? AND store_id = ?", id, storeID).Count(&n).Error
	return n, err
}
