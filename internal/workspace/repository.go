package workspace

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/frahmantamala/warehouse-management/internal/permission"
)

// Remote is the server side of one collection. client.Resource implements it.
type Remote[T any] interface {
	List(ctx context.Context) ([]T, error)
	Create(ctx context.Context, item T) (T, error)
	Update(ctx context.Context, item T) (T, error)
	Delete(ctx context.Context, item T) error
}

// Key identifies a cached entity. StoreID is empty for entities keyed by ID alone.
type Key struct {
	ID      string
	StoreID string
}

func (k Key) String() string {
	if k.StoreID == "" {
		return k.ID
	}
	return k.ID + "@" + k.StoreID
}

// Descriptor tells a Repository how to key, scope and describe its entity.
type Descriptor[T any] struct {
	Entity string
	Key    func(T) Key
	// Scope is the owning store, "" for store-less items.
	Scope func(T) string
	// Broadcast makes store-less items visible to every store.
	Broadcast bool
	// AdminOnly restricts the whole collection to admin sessions.
	AdminOnly bool

	View, Create, Update, Delete permission.Permission

	Describe   func(T) string
	Clone      func(T) T
	PersistKey string
}

// Repository caches one collection and gates every mutation.
type Repository[T any] struct {
	d      Descriptor[T]
	remote Remote[T]
	g      *guard
	store  Persistence

	mu    sync.RWMutex
	items []T

	// preDelete runs before the permission check.
	preDelete func(Session, Key) error
	// dependents runs after the lookup and before the remote delete.
	dependents  func(T) error
	afterUpdate func(Session, T)
}

func newRepository[T any](d Descriptor[T], remote Remote[T], g *guard, store Persistence) *Repository[T] {
	if d.Clone == nil {
		d.Clone = func(v T) T { return v }
	}
	if d.Describe == nil {
		d.Describe = func(v T) string { return d.Key(v).String() }
	}
	return &Repository[T]{d: d, remote: remote, g: g, store: store}
}

func (r *Repository[T]) Entity() string { return r.d.Entity }

// Fetch replaces the cache with the server's view.
func (r *Repository[T]) Fetch(ctx context.Context) error {
	s, err := r.g.begin()
	if err != nil {
		return err
	}
	if err := r.canList(s); err != nil {
		return err
	}
	items, err := r.remote.List(ctx)
	if err != nil {
		return r.g.fail(s, "fetch", r.d.Entity, "", err)
	}

	r.mu.Lock()
	r.items = items
	r.mu.Unlock()
	r.persist()

	r.g.logger.Debug("cache refreshed", "entity", r.d.Entity, "count", len(items))
	return nil
}

// List returns the items visible to the current session. It is empty without one.
func (r *Repository[T]) List() []T {
	s, ok := r.g.sessions.Touch()
	if !ok || r.canList(s) != nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]T, 0, len(r.items))
	for _, it := range r.items {
		if r.visible(s, it) {
			out = append(out, r.d.Clone(it))
		}
	}
	return out
}

func (r *Repository[T]) Get(id, storeID string) (T, error) {
	var zero T
	s, err := r.g.begin()
	if err != nil {
		return zero, err
	}
	it, ok := r.find(Key{ID: id, StoreID: storeID})
	if !ok || r.canList(s) != nil || !r.visible(s, it) {
		return zero, fmt.Errorf("%w: %s %s", ErrNotFound, r.d.Entity, Key{ID: id, StoreID: storeID})
	}
	return it, nil
}

func (r *Repository[T]) Create(ctx context.Context, item T) (T, error) {
	return r.create(ctx, item, func(ctx context.Context) (T, error) {
		return r.remote.Create(ctx, item)
	})
}

func (r *Repository[T]) create(ctx context.Context, item T, call func(context.Context) (T, error)) (T, error) {
	var zero T
	s, err := r.g.begin()
	if err != nil {
		return zero, err
	}
	key := r.d.Key(item)
	subject := key.String()

	if err := r.authorizeItem(s, r.d.Create, item); err != nil {
		return zero, r.g.deny(s, "create", r.d.Entity, subject, err)
	}
	if key.ID != "" {
		if _, exists := r.find(key); exists {
			err := fmt.Errorf("%w: %s %s", ErrConflict, r.d.Entity, subject)
			return zero, r.g.reject(s, "create", r.d.Entity, subject, err, msgExists, r.g.notes.tr.T(r.d.Entity), subject)
		}
	}

	created, err := call(ctx)
	if err != nil {
		return zero, r.g.fail(s, "create", r.d.Entity, subject, err)
	}

	r.mu.Lock()
	if i := r.indexLocked(r.d.Key(created)); i >= 0 {
		r.items[i] = created
	} else {
		r.items = append(r.items, created)
	}
	r.mu.Unlock()
	r.persist()

	r.g.succeed(s, "create", r.d.Entity, r.d.Key(created).String(), r.d.Describe(created))
	return r.d.Clone(created), nil
}

func (r *Repository[T]) Update(ctx context.Context, item T) (T, error) {
	var zero T
	s, err := r.g.begin()
	if err != nil {
		return zero, err
	}
	key := r.d.Key(item)
	subject := key.String()

	if err := r.authorizeItem(s, r.d.Update, item); err != nil {
		return zero, r.g.deny(s, "update", r.d.Entity, subject, err)
	}
	cached, ok := r.find(key)
	if !ok {
		err := fmt.Errorf("%w: %s %s", ErrNotFound, r.d.Entity, subject)
		return zero, r.g.reject(s, "update", r.d.Entity, subject, err, msgNotFound, r.g.notes.tr.T(r.d.Entity), subject)
	}
	if err := r.authorizeItem(s, r.d.Update, cached); err != nil {
		return zero, r.g.deny(s, "update", r.d.Entity, subject, err)
	}

	updated, err := r.remote.Update(ctx, item)
	if err != nil {
		return zero, r.g.fail(s, "update", r.d.Entity, subject, err)
	}

	r.mu.Lock()
	if i := r.indexLocked(key); i >= 0 {
		r.items[i] = updated
	} else {
		r.items = append(r.items, updated)
	}
	r.mu.Unlock()
	r.persist()

	r.g.succeed(s, "update", r.d.Entity, subject, r.d.Describe(updated))
	if r.afterUpdate != nil {
		r.afterUpdate(s, updated)
	}
	return r.d.Clone(updated), nil
}

func (r *Repository[T]) Delete(ctx context.Context, id, storeID string) error {
	s, err := r.g.begin()
	if err != nil {
		return err
	}
	key := Key{ID: id, StoreID: storeID}
	subject := key.String()

	if r.preDelete != nil {
		if err := r.preDelete(s, key); err != nil {
			if errors.Is(err, ErrCannotDeleteSelf) {
				return r.g.reject(s, "delete", r.d.Entity, subject, err, msgCannotSelf)
			}
			return r.g.deny(s, "delete", r.d.Entity, subject, err)
		}
	}
	if err := r.g.authorize(s, r.d.Delete, ""); err != nil {
		return r.g.deny(s, "delete", r.d.Entity, subject, err)
	}
	item, ok := r.find(key)
	if !ok {
		err := fmt.Errorf("%w: %s %s", ErrNotFound, r.d.Entity, subject)
		return r.g.reject(s, "delete", r.d.Entity, subject, err, msgNotFound, r.g.notes.tr.T(r.d.Entity), subject)
	}
	if err := r.authorizeItem(s, r.d.Delete, item); err != nil {
		return r.g.deny(s, "delete", r.d.Entity, subject, err)
	}
	if r.dependents != nil {
		if err := r.dependents(item); err != nil {
			return r.g.reject(s, "delete", r.d.Entity, subject, err, msgHasDependents, r.g.notes.tr.T(r.d.Entity), subject)
		}
	}

	if err := r.remote.Delete(ctx, item); err != nil {
		return r.g.fail(s, "delete", r.d.Entity, subject, err)
	}

	r.mu.Lock()
	if i := r.indexLocked(key); i >= 0 {
		r.items = append(r.items[:i:i], r.items[i+1:]...)
	}
	r.mu.Unlock()
	r.persist()

	r.g.succeed(s, "delete", r.d.Entity, subject, r.d.Describe(item))
	return nil
}

func (r *Repository[T]) canList(s Session) error {
	if r.d.AdminOnly && !s.IsAdmin() {
		return fmt.Errorf("%w: %s is admin only", ErrForbidden, r.d.Entity)
	}
	if !r.g.allowed(s, r.d.View) {
		return fmt.Errorf("%w: missing %s", ErrForbidden, r.d.View)
	}
	return nil
}

func (r *Repository[T]) authorizeItem(s Session, p permission.Permission, item T) error {
	if r.d.AdminOnly && !s.IsAdmin() {
		return fmt.Errorf("%w: %s is admin only", ErrForbidden, r.d.Entity)
	}
	scope := r.d.Scope(item)
	if scope == "" && r.d.Broadcast && !s.IsAdmin() {
		return fmt.Errorf("%w: only admins address every store", ErrForbidden)
	}
	return r.g.authorize(s, p, scope)
}

func (r *Repository[T]) visible(s Session, item T) bool {
	if s.IsAdmin() {
		return true
	}
	scope := r.d.Scope(item)
	if scope == "" {
		return r.d.Broadcast
	}
	return scope == s.User.StoreID
}

func (r *Repository[T]) find(k Key) (T, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if i := r.indexLocked(k); i >= 0 {
		return r.d.Clone(r.items[i]), true
	}
	var zero T
	return zero, false
}

func (r *Repository[T]) indexLocked(k Key) int {
	for i, it := range r.items {
		if r.d.Key(it) == k {
			return i
		}
	}
	return -1
}

// snapshot returns every cached item regardless of scope.
func (r *Repository[T]) snapshot() []T {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]T, len(r.items))
	for i, it := range r.items {
		out[i] = r.d.Clone(it)
	}
	return out
}

func (r *Repository[T]) anyMatch(match func(T) bool) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, it := range r.items {
		if match(it) {
			return true
		}
	}
	return false
}

func (r *Repository[T]) persist() {
	if r.d.PersistKey == "" {
		return
	}
	items := r.snapshot()
	if err := r.store.Save(r.d.PersistKey, items); err != nil {
		r.g.logger.Warn("failed to persist cache", "entity", r.d.Entity, "error", err)
	}
}

func (r *Repository[T]) restore() {
	if r.d.PersistKey == "" {
		return
	}
	var items []T
	if err := r.store.Load(r.d.PersistKey, &items); err != nil {
		if !errors.Is(err, ErrNoState) {
			r.g.logger.Warn("failed to restore cache", "entity", r.d.Entity, "error", err)
		}
		return
	}
	r.mu.Lock()
	r.items = items
	r.mu.Unlock()
}

func (r *Repository[T]) reset() {
	r.mu.Lock()
	r.items = nil
	r.mu.Unlock()
	if r.d.PersistKey == "" {
		return
	}
	if err := r.store.Remove(r.d.PersistKey); err != nil {
		r.g.logger.Warn("failed to remove cache", "entity", r.d.Entity, "error", err)
	}
}

func (r *Repository[T]) listable(s Session) bool { return r.canList(s) == nil }
