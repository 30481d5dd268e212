package auth

import (
	"github.com/frahmantamala/warehouse-management/internal/permission"
	"golang.org/x/crypto/bcrypt"
)

// User is the authenticated principal as loaded from storage on every request.
type User struct {
	Username    string                  `json:"username"`
	Email       string                  `json:"email"`
	Role        permission.Role         `json:"role"`
	StoreID     string                  `json:"storeId,omitempty"`
	Permissions []permission.Permission `json:"permissions"`
	FirstLogin  bool                    `json:"firstLogin"`
}

func (u *User) Subject() *permission.Subject {
	if u == nil {
		return nil
	}
	return &permission.Subject{Role: u.Role, Permissions: u.Permissions}
}

func (u *User) IsAdmin() bool {
	return u != nil && u.Role.IsAdmin()
}

// CanAccessStore is true for admin and for the user's own store.
func (u *User) CanAccessStore(storeID string) bool {
	if u == nil {
		return false
	}
	return u.IsAdmin() || (u.StoreID != "" && u.StoreID == storeID)
}

func VerifyPassword(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}

func HashPassword(password string, cost int) (string, error) {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
