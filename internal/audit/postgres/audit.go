package postgres

import (
	"context"
	"errors"

	"github.com/frahmantamala/warehouse-management/internal/audit"
	auditDatamodel "github.com/frahmantamala/warehouse-management/internal/core/datamodel/audit"
	"gorm.io/gorm"
)

type TemplateRepository struct {
	db *gorm.DB
}

func NewTemplateRepository(db *gorm.DB) audit.RepositoryAPI {
	return &TemplateRepository{db: db}
}

func (r *TemplateRepository) List(ctx context.Context, storeID string) ([]*auditDatamodel.Template, error) {
	var templates []*auditDatamodel.Template
	q := r.db.WithContext(ctx).Order("name ASC")
	if storeID != "" {
		q = q.Where("store_id = ?", storeID)
	}
	err := q.Find(&templates).Error
	return templates, err
}

func (r *TemplateRepository) GetByID(ctx context.Context, id string) (*auditDatamodel.Template, error) {
	var t auditDatamodel.Template
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&t).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &t, nil
}

func (r *TemplateRepository) Create(ctx context.Context, t *auditDatamodel.Template) error {
	return r.db.WithContext(ctx).Create(t).Error
}

func (r *TemplateRepository) Update(ctx context.Context, t *auditDatamodel.Template) error {
	return r.db.WithContext(ctx).Save(t).Error
}

func (r *TemplateRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&auditDatamodel.Template{}).Error
}
