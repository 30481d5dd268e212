package task

import "time"

type Task struct {
	ID          string     `gorm:"column:id;primaryKey"`
	StoreID     string     `gorm:"column:store_id;index;not null"`
	Title       string     `gorm:"column:title;not null"`
	Description string     `gorm:"column:description"`
	Assignee    string     `gorm:"column:assignee"`
	Status      string     `gorm:"column:status;not null"`
	DueDate     *time.Time `gorm:"column:due_date"`
	CreatedBy   string     `gorm:"column:created_by"`
	CreatedAt   time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

func (Task) TableName() string { return "tasks" }
