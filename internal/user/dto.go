package user

import "github.com/frahmantamala/warehouse-management/internal/permission"

// CreateUserDTO is the body of POST /api/users.
type CreateUserDTO struct {
	Username    string                  `json:"username" validate:"required,min=3,max=64"`
	Email       string                  `json:"email" validate:"required,email"`
	Password    string                  `json:"password" validate:"required,min=8,max=72"`
	Role        permission.Role         `json:"role" validate:"required"`
	StoreID     string                  `json:"storeId,omitempty" validate:"omitempty,store_id"`
	Permissions []permission.Permission `json:"permissions,omitempty"`
}

func (d CreateUserDTO) User() User {
	return User{
		Username:    d.Username,
		Email:       d.Email,
		Role:        d.Role,
		StoreID:     d.StoreID,
		Permissions: d.Permissions,
		FirstLogin:  true,
	}
}

// ChangePasswordDTO is the body of PUT /api/users/{username}/password.
// CurrentPassword is required when users change their own password.
type ChangePasswordDTO struct {
	CurrentPassword string `json:"currentPassword,omitempty"`
	NewPassword     string `json:"newPassword" validate:"required,min=8,max=72"`
}

// InitDBResponse is returned by POST /api/init-db.
type InitDBResponse struct {
	Username string `json:"username"`
	Message  string `json:"message"`
}
