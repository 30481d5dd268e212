package client

import (
	"context"
	"net/http"
	"net/url"

	"github.com/frahmantamala/warehouse-management/internal/announcement"
	"github.com/frahmantamala/warehouse-management/internal/article"
	"github.com/frahmantamala/warehouse-management/internal/audit"
	"github.com/frahmantamala/warehouse-management/internal/rack"
	"github.com/frahmantamala/warehouse-management/internal/store"
	"github.com/frahmantamala/warehouse-management/internal/task"
)

// Resource is one REST collection. keyPath returns the item's path below base,
// including any query string.
type Resource[T any] struct {
	c       *Client
	base    string
	keyPath func(T) string
}

func NewResource[T any](c *Client, base string, keyPath func(T) string) *Resource[T] {
	return &Resource[T]{c: c, base: base, keyPath: keyPath}
}

func (r *Resource[T]) List(ctx context.Context) ([]T, error) {
	var out []T
	if err := r.c.Do(ctx, http.MethodGet, r.base, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Resource[T]) Get(ctx context.Context, key T) (T, error) {
	var out T
	err := r.c.Do(ctx, http.MethodGet, r.base+r.keyPath(key), nil, &out)
	return out, err
}

func (r *Resource[T]) Create(ctx context.Context, item T) (T, error) {
	var out T
	err := r.c.Do(ctx, http.MethodPost, r.base, item, &out)
	return out, err
}

func (r *Resource[T]) Update(ctx context.Context, item T) (T, error) {
	var out T
	err := r.c.Do(ctx, http.MethodPut, r.base+r.keyPath(item), item, &out)
	return out, err
}

func (r *Resource[T]) Delete(ctx context.Context, item T) error {
	return r.c.Do(ctx, http.MethodDelete, r.base+r.keyPath(item), nil, nil)
}

func seg(s string) string { return "/" + url.PathEscape(s) }

func (c *Client) Articles() *Resource[article.Article] {
	return NewResource(c, "/api/articles", func(a article.Article) string {
		return seg(a.ID) + seg(a.StoreID)
	})
}

func (c *Client) GlobalArticles() *Resource[article.Article] {
	return NewResource(c, "/api/global-articles", func(a article.Article) string {
		return seg(a.ID)
	})
}

func (c *Client) Stores() *Resource[store.Store] {
	return NewResource(c, "/api/stores", func(s store.Store) string {
		return seg(s.ID)
	})
}

func (c *Client) Racks() *Resource[rack.Rack] {
	return NewResource(c, "/api/racks", func(r rack.Rack) string {
		id := r.ID
		if id == "" {
			id = rack.ComposeID(r.RowID, r.RackID)
		}
		return seg(id) + "?storeId=" + url.QueryEscape(r.StoreID)
	})
}

func (c *Client) Tasks() *Resource[task.Task] {
	return NewResource(c, "/api/tasks", func(t task.Task) string {
		return seg(t.ID)
	})
}

func (c *Client) Announcements() *Resource[announcement.Announcement] {
	return NewResource(c, "/api/announcements", func(a announcement.Announcement) string {
		return seg(a.ID)
	})
}

func (c *Client) AuditTemplates() *Resource[audit.Template] {
	return NewResource(c, "/api/audit-templates", func(t audit.Template) string {
		return seg(t.ID)
	})
}
