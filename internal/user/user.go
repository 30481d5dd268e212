package user

import (
	"strings"

	userDatamodel "github.com/frahmantamala/warehouse-management/internal/core/datamodel/user"
	"github.com/frahmantamala/warehouse-management/internal/permission"
)

type User struct {
	Username    string                  `json:"username" validate:"required,min=3,max=64"`
	Email       string                  `json:"email" validate:"required,email"`
	Role        permission.Role         `json:"role" validate:"required"`
	StoreID     string                  `json:"storeId,omitempty" validate:"omitempty,store_id"`
	Permissions []permission.Permission `json:"permissions"`
	FirstLogin  bool                    `json:"firstLogin"`
}

func (u *User) Normalize() {
	u.Username = strings.TrimSpace(u.Username)
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	u.StoreID = strings.ToUpper(strings.TrimSpace(u.StoreID))
	u.Permissions = permission.Normalize(u.Permissions)
	if u.Role.IsAdmin() {
		u.StoreID = ""
	}
}

func (u *User) IsAdmin() bool { return u.Role.IsAdmin() }

func ToDataModel(u *User, passwordHash string) *userDatamodel.User {
	return &userDatamodel.User{
		Username:     u.Username,
		Email:        u.Email,
		PasswordHash: passwordHash,
		Role:         string(u.Role),
		StoreID:      u.StoreID,
		FirstLogin:   u.FirstLogin,
	}
}

func FromDataModel(u *userDatamodel.User) *User {
	return &User{
		Username:    u.Username,
		Email:       u.Email,
		Role:        permission.Role(u.Role),
		StoreID:     u.StoreID,
		FirstLogin:  u.FirstLogin,
		Permissions: []permission.Permission{},
	}
}

// FromDataModelWithPermissions drops stored grants that are no longer part of the vocabulary.
func FromDataModelWithPermissions(u *userDatamodel.User, grants []string) *User {
	domainUser := FromDataModel(u)
	for _, g := range grants {
		if p, err := permission.Parse(g); err == nil {
			domainUser.Permissions = append(domainUser.Permissions, p)
		}
	}
	domainUser.Permissions = permission.Normalize(domainUser.Permissions)
	return domainUser
}
