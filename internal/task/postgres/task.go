package postgres

import (
	"context"
	"errors"

	taskDatamodel "github.com/frahmantamala/warehouse-management/internal/core/datamodel/task"
	"github.com/frahmantamala/warehouse-management/internal/task"
	"gorm.io/gorm"
)

type TaskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) task.RepositoryAPI {
	return &TaskRepository{db: db}
}

func (r *TaskRepository) List(ctx context.Context, storeID string) ([]*taskDatamodel.Task, error) {
	var tasks []*taskDatamodel.Task
	q := r.db.WithContext(ctx).Order("created_at DESC")
	if storeID != "" {
		q = q.Where("store_id = ?", storeID)
	}
	err := q.Find(&tasks).Error
	return tasks, err
}

func (r *TaskRepository) GetByID(ctx context.Context, id string) (*taskDatamodel.Task, error) {
	var t taskDatamodel.Task
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&t).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &t, nil
}

func (r *TaskRepository) Create(ctx context.Context, t *taskDatamodel.Task) error {
	return r.db.WithContext(ctx).Create(t).Error
}

func (r *TaskRepository) Update(ctx context.Context, t *taskDatamodel.Task) error {
	return r.db.WithContext(ctx).Save(t).Error
}

func (r *TaskRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&taskDatamodel.Task{}).Error
}
