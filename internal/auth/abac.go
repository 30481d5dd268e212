package auth

import (
	"context"

	apperrors "github.com/frahmantamala/warehouse-management/internal"
	"github.com/frahmantamala/warehouse-management/internal/permission"
)

type ctxKey string

const (
	ContextUserKey   ctxKey = "user"
	ContextClaimsKey ctxKey = "claims"
)

func UserFromContext(ctx context.Context) (*User, bool) {
	u, ok := ctx.Value(ContextUserKey).(*User)
	return u, ok
}

func ClaimsFromContext(ctx context.Context) (*Claims, bool) {
	c, ok := ctx.Value(ContextClaimsKey).(*Claims)
	return c, ok
}

func ContextWithUser(ctx context.Context, u *User) context.Context {
	ctx = apperrors.ContextWithUsername(ctx, u.Username)
	ctx = apperrors.ContextWithStoreID(ctx, u.StoreID)
	return context.WithValue(ctx, ContextUserKey, u)
}

// ABACPolicy combines the capability check with the store attribute: a user may
// act on a record only when the oracle grants the permission and the record belongs
// to the user's store. Admin passes both checks.
type ABACPolicy struct {
	oracle *permission.Oracle
}

func NewABACPolicy(oracle *permission.Oracle) *ABACPolicy {
	return &ABACPolicy{oracle: oracle}
}

func (p *ABACPolicy) Oracle() *permission.Oracle { return p.oracle }

func (p *ABACPolicy) Can(u *User, perm permission.Permission) bool {
	return p.oracle.HasPermission(u.Subject(), perm)
}

// Authorize checks perm and, when storeID is non-empty, store ownership.
func (p *ABACPolicy) Authorize(u *User, perm permission.Permission, storeID string) error {
	if u == nil {
		return apperrors.ErrInvalidToken
	}
	if !p.Can(u, perm) {
		return apperrors.ErrInsufficientPermission.WithMessage("missing permission " + string(perm))
	}
	if storeID != "" && !u.CanAccessStore(storeID) {
		return apperrors.ErrForeignStore
	}
	return nil
}

// StoreScope returns the store a listing must be restricted to; "" means every store.
func (p *ABACPolicy) StoreScope(u *User) string {
	if u.IsAdmin() {
		return ""
	}
	if u.StoreID == "" {
		// a non-admin without a store sees nothing
		return "\x00"
	}
	return u.StoreID
}
