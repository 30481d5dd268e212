package postgres

import (
	"context"
	"errors"

	storeDatamodel "github.com/frahmantamala/warehouse-management/internal/core/datamodel/store"
	"github.com/frahmantamala/warehouse-management/internal/store"
	"gorm.io/gorm"
)

type StoreRepository struct {
	db *gorm.DB
}

func NewStoreRepository(db *gorm.DB) store.RepositoryAPI {
	return &StoreRepository{db: db}
}

func (r *StoreRepository) List(ctx context.Context) ([]*storeDatamodel.Store, error) {
	var stores []*storeDatamodel.Store
	err := r.db.WithContext(ctx).Order("id ASC").Find(&stores).Error
	return stores, err
}

func (r *StoreRepository) GetByID(ctx context.Context, id string) (*storeDatamodel.Store, error) {
	var s storeDatamodel.Store
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&s).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

func (r *StoreRepository) Create(ctx context.Context, s *storeDatamodel.Store) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *StoreRepository) Update(ctx context.Context, s *storeDatamodel.Store) error {
	return r.db.WithContext(ctx).Save(s).Error
}

func (r *StoreRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&storeDatamodel.Store{}).Error
}

func (r *StoreRepository) CountDependents(ctx context.Context, id string) (int64, error) {
	var total int64
	for _, table := range []string{"articles", "shelf_racks", "users"} {
		var n int64
		if err := r.db.WithContext(ctx).Table(table).Where("store_id = ?", id).Count(&n).Error; err != nil {
			return 0, err
		}
		total += n
	}
	return total, nil
}
