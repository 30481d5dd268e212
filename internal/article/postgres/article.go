package postgres

import (
	"context"
	"errors"

	"github.com/frahmantamala/warehouse-management/internal/article"
	articleDatamodel "github.com/frahmantamala/warehouse-management/internal/core/datamodel/article"
	"gorm.io/gorm"
)

type ArticleRepository struct {
	db *gorm.DB
}

func NewArticleRepository(db *gorm.DB) article.RepositoryAPI {
	return &ArticleRepository{db: db}
}

func (r *ArticleRepository) List(ctx context.Context, storeID string, lowStock bool) ([]*articleDatamodel.Article, error) {
	var articles []*articleDatamodel.Article
	q := r.db.WithContext(ctx).Order("store_id ASC, id ASC")
	if storeID != "" {
		q = q.Where("store_id = ?", storeID)
	} else {
		q = q.Where("store_id <> ?", article.GlobalStoreID)
	}
	if lowStock {
		q = q.Where("min_quantity IS NOT NULL AND quantity < min_quantity")
	}
	err := q.Find(&articles).Error
	return articles, err
}

func (r *ArticleRepository) GetByID(ctx context.Context, id, storeID string) (*articleDatamodel.Article, error) {
	var a articleDatamodel.Article
	err := r.db.WithContext(ctx).Where("id = ? AND store_id = ?", id, storeID).First(&a).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &a, nil
}

func (r *ArticleRepository) Create(ctx context.Context, a *articleDatamodel.Article) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *ArticleRepository) Update(ctx context.Context, a *articleDatamodel.Article) error {
	return r.db.WithContext(ctx).Save(a).Error
}

func (r *ArticleRepository) Delete(ctx context.Context, id, storeID string) error {
	return r.db.WithContext(ctx).Where("id = ? AND store_id = ?", id, storeID).Delete(&articleDatamodel.Article{}).Error
}
