package user

import "time"

type User struct {
	Username     string    `gorm:"column:username;primaryKey"`
	Email        string    `gorm:"column:email;uniqueIndex;not null"`
	PasswordHash string    `gorm:"column:password_hash;not null"`
	Role         string    `gorm:"column:role;not null"`
	StoreID      string    `gorm:"column:store_id;index"`
	FirstLogin   bool      `gorm:"column:first_login;not null"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (User) TableName() string { return "users" }

// UserPermission is one stored grant on top of the role defaults.
type UserPermission struct {
	ID         int64     `gorm:"primaryKey"`
	Username   string    `gorm:"column:username;not null;uniqueIndex:idx_user_permission"`
	Permission string    `gorm:"column:permission;not null;uniqueIndex:idx_user_permission"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (UserPermission) TableName() string { return "user_permissions" }
