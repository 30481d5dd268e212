package workspace

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	apperrors "github.com/frahmantamala/warehouse-management/internal"
	"github.com/frahmantamala/warehouse-management/internal/announcement"
	"github.com/frahmantamala/warehouse-management/internal/article"
	"github.com/frahmantamala/warehouse-management/internal/audit"
	"github.com/frahmantamala/warehouse-management/internal/auth"
	"github.com/frahmantamala/warehouse-management/internal/permission"
	"github.com/frahmantamala/warehouse-management/internal/rack"
	"github.com/frahmantamala/warehouse-management/internal/store"
	"github.com/frahmantamala/warehouse-management/internal/task"
	"github.com/frahmantamala/warehouse-management/internal/user"
)

type Config struct {
	InactivityTimeout time.Duration
	Locale            string
	PermissionModel   permission.Model
}

// Authenticator opens and closes the server session. client.Client implements it.
type Authenticator interface {
	Login(ctx context.Context, username, password string) (*auth.LoginResponse, error)
	Logout(ctx context.Context) error
}

type Remotes struct {
	Articles       Remote[article.Article]
	GlobalArticles Remote[article.Article]
	Stores         Remote[store.Store]
	Racks          Remote[rack.Rack]
	Users          UserRemote
	Tasks          Remote[task.Task]
	Announcements  Remote[announcement.Announcement]
	AuditTemplates Remote[audit.Template]
}

type cache interface {
	Entity() string
	Fetch(ctx context.Context) error
	listable(s Session) bool
	restore()
	reset()
}

// Workspace is the client-side view of one user's session: gated repositories,
// the activity log, notifications and the cross-store workflows.
type Workspace struct {
	Sessions *SessionManager
	Log      *ActivityLog
	Notifier *Notifier
	Oracle   *permission.Oracle

	Articles       *Articles
	GlobalArticles *Repository[article.Article]
	Stores         *Repository[store.Store]
	Racks          *Racks
	Users          *Users
	Tasks          *Repository[task.Task]
	Announcements  *Repository[announcement.Announcement]
	AuditTemplates *Repository[audit.Template]
	Workflows      *Workflows

	auth   Authenticator
	g      *guard
	caches []cache
	logger *slog.Logger

	mu       sync.Mutex
	lastUser string
}

func New(cfg Config, authn Authenticator, remotes Remotes, state Persistence, logger *slog.Logger) *Workspace {
	oracle := permission.NewOracle(cfg.PermissionModel)
	sessions := NewSessionManager(cfg.InactivityTimeout, logger)
	g := &guard{
		sessions: sessions,
		oracle:   oracle,
		log:      NewActivityLog(state, logger),
		notes:    NewNotifier(NewTranslator(cfg.Locale), state, logger),
		logger:   logger,
	}

	w := &Workspace{
		Sessions:       sessions,
		Log:            g.log,
		Notifier:       g.notes,
		Oracle:         oracle,
		Articles:       &Articles{newRepository(articleDescriptor, remotes.Articles, g, state)},
		GlobalArticles: newRepository(globalArticleDescriptor, remotes.GlobalArticles, g, state),
		Stores:         newRepository(storeDescriptor, remotes.Stores, g, state),
		Racks:          &Racks{newRepository(rackDescriptor, remotes.Racks, g, state)},
		Users: &Users{
			Repository: newRepository[user.User](userDescriptor, userRemote{remotes.Users}, g, state),
			remote:     remotes.Users,
		},
		Tasks:          newRepository(taskDescriptor, remotes.Tasks, g, state),
		Announcements:  newRepository(announcementDescriptor, remotes.Announcements, g, state),
		AuditTemplates: newRepository(auditDescriptor, remotes.AuditTemplates, g, state),
		auth:           authn,
		g:              g,
		logger:         logger,
	}
	w.Workflows = &Workflows{
		articles: w.Articles,
		global:   w.GlobalArticles,
		racks:    w.Racks,
		stores:   w.Stores,
		g:        g,
		logger:   logger,
	}
	w.caches = []cache{
		w.Stores, w.Racks, w.Articles, w.GlobalArticles,
		w.Users, w.Tasks, w.Announcements, w.AuditTemplates,
	}

	w.Users.preDelete = func(s Session, k Key) error {
		if k.ID == s.User.Username {
			return ErrCannotDeleteSelf
		}
		return nil
	}
	w.Users.afterUpdate = func(s Session, u user.User) {
		if u.Username != s.User.Username {
			return
		}
		w.Sessions.Refresh(auth.User{
			Username:    u.Username,
			Email:       u.Email,
			Role:        u.Role,
			StoreID:     u.StoreID,
			Permissions: u.Permissions,
			FirstLogin:  u.FirstLogin,
		})
	}
	w.Stores.dependents = func(st store.Store) error {
		inUse := w.Articles.anyMatch(func(a article.Article) bool { return a.StoreID == st.ID }) ||
			w.Racks.anyMatch(func(r rack.Rack) bool { return r.StoreID == st.ID }) ||
			w.Users.anyMatch(func(u user.User) bool { return u.StoreID == st.ID })
		if inUse {
			return fmt.Errorf("%w: store %s still has dependents", ErrConflict, st.ID)
		}
		return nil
	}
	w.Racks.dependents = func(r rack.Rack) error {
		if w.Articles.anyMatch(func(a article.Article) bool { return a.StoreID == r.StoreID && a.RackID == r.ID }) {
			return fmt.Errorf("%w: rack %s still holds articles", ErrConflict, r.ID)
		}
		return nil
	}

	sessions.OnChange(w.sessionChanged)
	return w
}

func (w *Workspace) sessionChanged(s *Session, reason string) {
	switch {
	case s != nil && reason == ReasonLogin:
		for _, c := range w.caches {
			c.restore()
		}
	case s == nil:
		for _, c := range w.caches {
			c.reset()
		}
		if reason == ReasonExpired {
			w.expired()
		}
	}
}

func (w *Workspace) expired() {
	w.mu.Lock()
	username := w.lastUser
	w.mu.Unlock()

	ctx, cancel := apperrors.WithTimeout(context.Background(), 0)
	defer cancel()
	if err := w.auth.Logout(ctx); err != nil {
		w.logger.Warn("server logout after inactivity failed", "username", username, "error", err)
	}
	w.Log.Append(username, "session expired", "inactivity timeout")
	w.Notifier.Notify(LevelWarning, msgExpired)
}

// Login authenticates against the server and starts a fresh session, ending
// any previous one first.
func (w *Workspace) Login(ctx context.Context, username, password string) (Session, error) {
	resp, err := w.auth.Login(ctx, username, password)
	if err != nil {
		re := classifyRemote(err)
		w.Log.Append(username, "login failed", re.Error())
		if re.Message != "" {
			w.Notifier.Notify(LevelError, msgServerError, re.Message)
		} else {
			w.Notifier.Notify(LevelError, msgUnreachable)
		}
		return Session{}, re
	}
	if resp.User == nil {
		return Session{}, fmt.Errorf("%w: login response without user", ErrRemote)
	}

	w.Sessions.End(ReasonLogout)
	w.mu.Lock()
	w.lastUser = resp.User.Username
	w.mu.Unlock()

	s := w.Sessions.Start(*resp.User, resp.Token)
	w.Log.Append(s.User.Username, "login", fmt.Sprintf("role=%s store=%s", s.User.Role, s.User.StoreID))
	w.Notifier.Notify(LevelInfo, msgWelcome, s.User.Username)
	return s, nil
}

// Logout ends the local session even when the server call fails.
func (w *Workspace) Logout(ctx context.Context) error {
	s, ok := w.Sessions.Current()
	if !ok {
		return ErrNoSession
	}
	var remoteErr error
	if err := w.auth.Logout(ctx); err != nil {
		w.logger.Warn("server logout failed", "username", s.User.Username, "error", err)
		remoteErr = classifyRemote(err)
	}
	w.Sessions.End(ReasonLogout)
	w.Log.Append(s.User.Username, "logout", "")
	return remoteErr
}

// Sync fetches every collection the session may list.
func (w *Workspace) Sync(ctx context.Context) error {
	s, err := w.g.begin()
	if err != nil {
		return err
	}
	var errs []error
	for _, c := range w.caches {
		if !c.listable(s) {
			continue
		}
		if err := c.Fetch(ctx); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", c.Entity(), err))
		}
	}
	return errors.Join(errs...)
}

func (w *Workspace) HasPermission(p permission.Permission) bool {
	s, ok := w.Sessions.Current()
	if !ok {
		return false
	}
	return w.g.allowed(s, p)
}

// ClearLog empties the local activity log. Only log:clear holders may do it.
func (w *Workspace) ClearLog() (int, error) {
	s, err := w.g.begin()
	if err != nil {
		return 0, err
	}
	if err := w.g.authorize(s, permission.LogClear, ""); err != nil {
		return 0, w.g.deny(s, "clear", "activity log", "", err)
	}
	n := w.Log.clear()
	w.Log.Append(s.User.Username, "clear activity log", fmt.Sprintf("removed=%d", n))
	w.Notifier.Notify(LevelInfo, msgLogCleared)
	return n, nil
}
