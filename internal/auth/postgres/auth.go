package postgres

import (
	"context"
	"errors"

	"github.com/frahmantamala/warehouse-management/internal/auth"
	userDatamodel "github.com/frahmantamala/warehouse-management/internal/core/datamodel/user"
	"github.com/frahmantamala/warehouse-management/internal/permission"
	"gorm.io/gorm"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) auth.RepositoryAPI {
	return &Repository{db: db}
}

func (r *Repository) GetPasswordHash(ctx context.Context, username string) (string, error) {
	var u userDatamodel.User
	err := r.db.WithContext(ctx).Select("password_hash").Where("username = ?", username).First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", auth.ErrUserNotFound
		}
		return "", err
	}
	return u.PasswordHash, nil
}

func (r *Repository) GetUserWithPermissions(ctx context.Context, username string) (*auth.User, error) {
	var u userDatamodel.User
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, auth.ErrUserNotFound
		}
		return nil, err
	}

	var grants []userDatamodel.UserPermission
	if err := r.db.WithContext(ctx).Where("username = ?", username).Order("permission ASC").Find(&grants).Error; err != nil {
		return nil, err
	}

	perms := make([]permission.Permission, 0, len(grants))
	for _, g := range grants {
		// grants that fell out of the vocabulary are ignored
		if p, err := permission.Parse(g.Permission); err == nil {
			perms = append(perms, p)
		}
	}

	return &auth.User{
		Username:    u.Username,
		Email:       u.Email,
		Role:        permission.Role(u.Role),
		StoreID:     u.StoreID,
		Permissions: perms,
		FirstLogin:  u.FirstLogin,
	}, nil
}
