package postgres

import (
	"context"
	"errors"

	"github.com/frahmantamala/warehouse-management/internal/announcement"
	announcementDatamodel "github.com/frahmantamala/warehouse-management/internal/core/datamodel/announcement"
	"gorm.io/gorm"
)

type AnnouncementRepository struct {
	db *gorm.DB
}

func NewAnnouncementRepository(db *gorm.DB) announcement.RepositoryAPI {
	return &AnnouncementRepository{db: db}
}

func (r *AnnouncementRepository) List(ctx context.Context, storeID string) ([]*announcementDatamodel.Announcement, error) {
	var out []*announcementDatamodel.Announcement
	q := r.db.WithContext(ctx).Order("created_at DESC")
	if storeID != "" {
		q = q.Where("store_id = ? OR store_id = ''", storeID)
	}
	err := q.Find(&out).Error
	return out, err
}

func (r *AnnouncementRepository) GetByID(ctx context.Context, id string) (*announcementDatamodel.Announcement, error) {
	var a announcementDatamodel.Announcement
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&a).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &a, nil
}

func (r *AnnouncementRepository) Create(ctx context.Context, a *announcementDatamodel.Announcement) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *AnnouncementRepository) Update(ctx context.Context, a *announcementDatamodel.Announcement) error {
	return r.db.WithContext(ctx).Save(a).Error
}

func (r *AnnouncementRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&announcementDatamodel.Announcement{}).Error
}
