package workspace

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"

	"github.com/frahmantamala/warehouse-management/internal/announcement"
	"github.com/frahmantamala/warehouse-management/internal/article"
	"github.com/frahmantamala/warehouse-management/internal/audit"
	"github.com/frahmantamala/warehouse-management/internal/permission"
	"github.com/frahmantamala/warehouse-management/internal/rack"
	"github.com/frahmantamala/warehouse-management/internal/store"
	"github.com/frahmantamala/warehouse-management/internal/task"
	"github.com/frahmantamala/warehouse-management/internal/user"
)

var articleDescriptor = Descriptor[article.Article]{
	Entity: "article",
	Key:    func(a article.Article) Key { return Key{ID: a.ID, StoreID: a.StoreID} },
	Scope:  func(a article.Article) string { return a.StoreID },
	View:   permission.ArticleView,
	Create: permission.ArticleCreate,
	Update: permission.ArticleUpdate,
	Delete: permission.ArticleDelete,
	Describe: func(a article.Article) string {
		return fmt.Sprintf("%s %q store=%s rack=%s shelf=%s qty=%d", a.ID, a.Name, a.StoreID, a.RackID, a.ShelfNumber, a.Quantity)
	},
	Clone:      cloneArticle,
	PersistKey: KeyArticles,
}

var globalArticleDescriptor = Descriptor[article.Article]{
	Entity:    "global article",
	Key:       func(a article.Article) Key { return Key{ID: a.ID} },
	Scope:     func(article.Article) string { return "" },
	AdminOnly: true,
	View:      permission.ArticleView,
	Create:    permission.ArticleCreate,
	Update:    permission.ArticleUpdate,
	Delete:    permission.ArticleDelete,
	Describe: func(a article.Article) string {
		return fmt.Sprintf("%s %q", a.ID, a.Name)
	},
	Clone:      cloneArticle,
	PersistKey: KeyGlobalArticles,
}

var storeDescriptor = Descriptor[store.Store]{
	Entity:   "store",
	Key:      func(s store.Store) Key { return Key{ID: s.ID} },
	Scope:    func(s store.Store) string { return s.ID },
	View:     permission.StoreView,
	Create:   permission.StoreCreate,
	Update:   permission.StoreUpdate,
	Delete:   permission.StoreDelete,
	Describe: func(s store.Store) string { return fmt.Sprintf("%s %q", s.ID, s.Name) },
}

var rackDescriptor = Descriptor[rack.Rack]{
	Entity: "shelf rack",
	Key: func(r rack.Rack) Key {
		id := r.ID
		if r.RowID != "" && r.RackID != "" {
			id = rack.ComposeID(r.RowID, r.RackID)
		}
		return Key{ID: id, StoreID: r.StoreID}
	},
	Scope:  func(r rack.Rack) string { return r.StoreID },
	View:   permission.RackView,
	Create: permission.RackCreate,
	Update: permission.RackUpdate,
	Delete: permission.RackDelete,
	Describe: func(r rack.Rack) string {
		return fmt.Sprintf("%s store=%s shelves=%d", r.ID, r.StoreID, len(r.Shelves))
	},
	Clone:      func(r rack.Rack) rack.Rack { return r.Clone() },
	PersistKey: KeyShelfRacks,
}

var userDescriptor = Descriptor[user.User]{
	Entity: "user",
	Key:    func(u user.User) Key { return Key{ID: u.Username} },
	Scope:  func(u user.User) string { return u.StoreID },
	View:   permission.UserView,
	Create: permission.UserCreate,
	Update: permission.UserUpdate,
	Delete: permission.UserDelete,
	Describe: func(u user.User) string {
		return fmt.Sprintf("%s role=%s store=%s permissions=%d", u.Username, u.Role, u.StoreID, len(u.Permissions))
	},
	Clone: func(u user.User) user.User {
		u.Permissions = append(u.Permissions[:0:0], u.Permissions...)
		return u
	},
}

var taskDescriptor = Descriptor[task.Task]{
	Entity: "task",
	Key:    func(t task.Task) Key { return Key{ID: t.ID} },
	Scope:  func(t task.Task) string { return t.StoreID },
	View:   permission.TaskView,
	Create: permission.TaskCreate,
	Update: permission.TaskUpdate,
	Delete: permission.TaskDelete,
	Describe: func(t task.Task) string {
		return fmt.Sprintf("%q store=%s status=%s assignee=%s", t.Title, t.StoreID, t.Status, t.Assignee)
	},
}

var announcementDescriptor = Descriptor[announcement.Announcement]{
	Entity:    "announcement",
	Key:       func(a announcement.Announcement) Key { return Key{ID: a.ID} },
	Scope:     func(a announcement.Announcement) string { return a.StoreID },
	Broadcast: true,
	View:      permission.AnnouncementView,
	Create:    permission.AnnouncementCreate,
	Update:    permission.AnnouncementUpdate,
	Delete:    permission.AnnouncementDelete,
	Describe: func(a announcement.Announcement) string {
		if a.StoreID == "" {
			return fmt.Sprintf("%q to all stores", a.Title)
		}
		return fmt.Sprintf("%q to %s", a.Title, a.StoreID)
	},
}

var auditDescriptor = Descriptor[audit.Template]{
	Entity: "audit template",
	Key:    func(t audit.Template) Key { return Key{ID: t.ID} },
	Scope:  func(t audit.Template) string { return t.StoreID },
	View:   permission.AuditView,
	Create: permission.AuditCreate,
	Update: permission.AuditUpdate,
	Delete: permission.AuditDelete,
	Describe: func(t audit.Template) string {
		return fmt.Sprintf("%q store=%s items=%d", t.Name, t.StoreID, len(t.Items))
	},
	Clone: func(t audit.Template) audit.Template {
		t.Items = append(t.Items[:0:0], t.Items...)
		return t
	},
}

func cloneArticle(a article.Article) article.Article {
	if a.MinQuantity != nil {
		v := *a.MinQuantity
		a.MinQuantity = &v
	}
	if a.ShopFloorStock != nil {
		v := *a.ShopFloorStock
		a.ShopFloorStock = &v
	}
	return a
}

type Articles struct {
	*Repository[article.Article]
}

// LowStock lists visible articles below their minimum quantity.
func (a *Articles) LowStock() []article.Article {
	return a.filter(func(it *article.Article) bool { return it.IsLowStock() })
}

func (a *Articles) NeedsReplenishment() []article.Article {
	return a.filter(func(it *article.Article) bool { return it.NeedsReplenishment() })
}

// InStore lists the visible articles of one store.
func (a *Articles) InStore(storeID string) []article.Article {
	return a.filter(func(it *article.Article) bool { return it.StoreID == storeID })
}

func (a *Articles) filter(keep func(*article.Article) bool) []article.Article {
	var out []article.Article
	for _, it := range a.List() {
		if keep(&it) {
			out = append(out, it)
		}
	}
	return out
}

type Racks struct {
	*Repository[rack.Rack]
}

func (r *Racks) AddShelf(ctx context.Context, id, storeID, description string) (rack.Rack, error) {
	rk, err := r.Get(id, storeID)
	if err != nil {
		return rack.Rack{}, err
	}
	rk.AddShelf(description)
	return r.Update(ctx, rk)
}

// RemoveShelf drops one shelf and renumbers the rest, keeping their order.
func (r *Racks) RemoveShelf(ctx context.Context, id, storeID string, number int) (rack.Rack, error) {
	rk, err := r.Get(id, storeID)
	if err != nil {
		return rack.Rack{}, err
	}
	if err := rk.RemoveShelf(number); err != nil {
		return rack.Rack{}, fmt.Errorf("%w: shelf %d of %s", ErrNotFound, number, id)
	}
	return r.Update(ctx, rk)
}

// FirstPlacement is the lowest rack with a shelf in storeID, or N/A for both.
func (r *Racks) FirstPlacement(storeID string) (rackID, shelf string) {
	var racks []rack.Rack
	for _, rk := range r.snapshot() {
		if rk.StoreID == storeID && len(rk.Shelves) > 0 {
			racks = append(racks, rk)
		}
	}
	if len(racks) == 0 {
		return article.NoPlacement, article.NoPlacement
	}
	sort.Slice(racks, func(i, j int) bool { return racks[i].ID < racks[j].ID })
	n, _ := racks[0].FirstShelf()
	return racks[0].ID, strconv.Itoa(n)
}

// UserRemote is the server side of the user collection. Creating a user needs
// an initial password, so it takes the DTO instead of the entity.
type UserRemote interface {
	List(ctx context.Context) ([]user.User, error)
	Create(ctx context.Context, dto user.CreateUserDTO) (user.User, error)
	Update(ctx context.Context, u user.User) (user.User, error)
	Delete(ctx context.Context, u user.User) error
}

var errPasswordRequired = errors.New("users are created with an initial password")

type userRemote struct {
	UserRemote
}

func (userRemote) Create(context.Context, user.User) (user.User, error) {
	return user.User{}, errPasswordRequired
}

type Users struct {
	*Repository[user.User]
	remote UserRemote
}

func (u *Users) Create(ctx context.Context, dto user.CreateUserDTO) (user.User, error) {
	item := user.User{
		Username:    dto.Username,
		Email:       dto.Email,
		Role:        dto.Role,
		StoreID:     dto.StoreID,
		Permissions: dto.Permissions,
		FirstLogin:  true,
	}
	return u.create(ctx, item, func(ctx context.Context) (user.User, error) {
		return u.remote.Create(ctx, dto)
	})
}
