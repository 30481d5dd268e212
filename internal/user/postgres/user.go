package postgres

import (
	"context"
	"errors"

	userDatamodel "github.com/frahmantamala/warehouse-management/internal/core/datamodel/user"
	"github.com/frahmantamala/warehouse-management/internal/user"
	"gorm.io/gorm"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) user.Repository {
	return &UserRepository{db: db}
}

func (r *UserRepository) List(ctx context.Context, storeID string) ([]*userDatamodel.User, error) {
	var users []*userDatamodel.User
	q := r.db.WithContext(ctx).Order("username ASC")
	if storeID != "" {
		q = q.Where("store_id = ?", storeID)
	}
	err := q.Find(&users).Error
	return users, err
}

func (r *UserRepository) first(ctx context.Context, column, value string) (*userDatamodel.User, error) {
	var u userDatamodel.User
	err := r.db.WithContext(ctx).Where(column+" = ?", value).First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*userDatamodel.User, error) {
	return r.first(ctx, "username", username)
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*userDatamodel.User, error) {
	return r.first(ctx, "email", email)
}

func (r *UserRepository) GetPermissions(ctx context.Context, username string) ([]string, error) {
	var grants []string
	err := r.db.WithContext(ctx).Model(&userDatamodel.UserPermission{}).
		Where("username = ?", username).
		Order("permission ASC").
		Pluck("permission", &grants).Error
	return grants, err
}

func (r *UserRepository) Create(ctx context.Context, u *userDatamodel.User, grants []string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(u).Error; err != nil {
			return err
		}
		return insertGrants(tx, u.Username, grants)
	})
}

func (r *UserRepository) Update(ctx context.Context, u *userDatamodel.User, grants []string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(u).Error; err != nil {
			return err
		}
		if err := tx.Where("username = ?", u.Username).Delete(&userDatamodel.UserPermission{}).Error; err != nil {
			return err
		}
		return insertGrants(tx, u.Username, grants)
	})
}

func (r *UserRepository) UpdatePassword(ctx context.Context, username, passwordHash string) error {
	return r.db.WithContext(ctx).Model(&userDatamodel.User{}).
		Where("username = ?", username).
		Updates(map[string]interface{}{"password_hash": passwordHash, "first_login": false}).Error
}

func (r *UserRepository) Delete(ctx context.Context, username string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("username = ?", username).Delete(&userDatamodel.UserPermission{}).Error; err != nil {
			return err
		}
		return tx.Where("username = ?", username).Delete(&userDatamodel.User{}).Error
	})
}

func (r *UserRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&userDatamodel.User{}).Count(&n).Error
	return n, err
}

func insertGrants(tx *gorm.DB, username string, grants []string) error {
	if len(grants) == 0 {
		return nil
	}
	rows := make([]userDatamodel.UserPermission, 0, len(grants))
	for _, g := range grants {
		rows = append(rows, userDatamodel.UserPermission{Username: username, Permission: g})
	}
	return tx.Create(&rows).Error
}
