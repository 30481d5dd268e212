package permission

import (
	"fmt"
	"strings"
)

type Role string

const (
	RoleAdmin              Role = "admin"
	RoleStoreManager       Role = "store_manager"
	RoleDeputyStoreManager Role = "deputy_store_manager"
	RoleWarehouseWorker    Role = "warehouse_worker"
	RoleTrainee            Role = "trainee"
)

var roles = []Role{RoleAdmin, RoleStoreManager, RoleDeputyStoreManager, RoleWarehouseWorker, RoleTrainee}

func Roles() []Role {
	out := make([]Role, len(roles))
	copy(out, roles)
	return out
}

func (r Role) String() string { return string(r) }

func (r Role) Valid() bool {
	for _, known := range roles {
		if r == known {
			return true
		}
	}
	return false
}

func (r Role) IsAdmin() bool { return r == RoleAdmin }

func ParseRole(s string) (Role, error) {
	r := Role(strings.TrimSpace(s))
	if !r.Valid() {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return r, nil
}

func (r *Role) UnmarshalText(b []byte) error {
	parsed, err := ParseRole(string(b))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

func (r Role) MarshalText() ([]byte, error) {
	return []byte(r), nil
}

var viewAll = []Permission{
	ArticleView, RackView, StoreView, TaskView, AnnouncementView, AuditView,
}

// roleDefaults is the static role table. Admin is absent: the oracle grants it everything.
var roleDefaults = map[Role][]Permission{
	RoleStoreManager: append(append([]Permission{}, viewAll...),
		ArticleCreate, ArticleUpdate, ArticleDelete, ArticleCopy, ArticleTransfer,
		RackCreate, RackUpdate, RackDelete,
		UserView,
		TaskCreate, TaskUpdate, TaskDelete,
		AnnouncementCreate, AnnouncementUpdate, AnnouncementDelete,
		AuditCreate, AuditUpdate, AuditDelete,
		LogView,
	),
	RoleDeputyStoreManager: append(append([]Permission{}, viewAll...),
		ArticleCreate, ArticleUpdate, ArticleCopy, ArticleTransfer,
		RackCreate, RackUpdate,
		UserView,
		TaskCreate, TaskUpdate,
		AnnouncementCreate,
		AuditCreate, AuditUpdate,
		LogView,
	),
	RoleWarehouseWorker: append(append([]Permission{}, viewAll...),
		ArticleUpdate, ArticleTransfer,
		TaskUpdate,
	),
	RoleTrainee: {
		ArticleView, RackView, StoreView, TaskView, AnnouncementView,
	},
}

// Defaults returns the role's default permission set. Admin returns every permission.
func Defaults(r Role) []Permission {
	if r.IsAdmin() {
		return All()
	}
	return Normalize(roleDefaults[r])
}
