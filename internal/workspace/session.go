package workspace

import (
	"log/slog"
	"sync"
	"time"

	"github.com/frahmantamala/warehouse-management/internal/auth"
)

// Reasons passed to session listeners.
const (
	ReasonLogin   = "login"
	ReasonLogout  = "logout"
	ReasonExpired = "expired"
	ReasonRefresh = "refresh"
)

type Session struct {
	User      auth.User
	Token     string
	StartedAt time.Time
}

func (s Session) IsAdmin() bool { return s.User.Role.IsAdmin() }

// Listener receives the new session, or nil once it ended.
type Listener func(s *Session, reason string)

// SessionManager owns the current session and logs it out after a period
// without any Touch.
type SessionManager struct {
	mu        sync.Mutex
	current   *Session
	timeout   time.Duration
	timer     *time.Timer
	gen       uint64
	listeners []Listener
	now       func() time.Time
	logger    *slog.Logger
}

// NewSessionManager disables the inactivity timeout when timeout <= 0.
func NewSessionManager(timeout time.Duration, logger *slog.Logger) *SessionManager {
	return &SessionManager{timeout: timeout, now: time.Now, logger: logger}
}

func (m *SessionManager) OnChange(l Listener) {
	m.mu.Lock()
	m.listeners = append(m.listeners, l)
	m.mu.Unlock()
}

func (m *SessionManager) Start(user auth.User, token string) Session {
	m.mu.Lock()
	s := Session{User: cloneUser(user), Token: token, StartedAt: m.now()}
	m.current = &s
	m.armLocked()
	m.mu.Unlock()

	m.logger.Info("session started", "username", user.Username, "role", user.Role, "store_id", user.StoreID)
	m.emit(&s, ReasonLogin)
	return s
}

// End clears the session. It reports false when there was none.
func (m *SessionManager) End(reason string) bool {
	m.mu.Lock()
	if m.current == nil {
		m.mu.Unlock()
		return false
	}
	username := m.clearLocked()
	m.mu.Unlock()

	m.ended(username, reason)
	return true
}

func (m *SessionManager) Current() (Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil {
		return Session{}, false
	}
	s := *m.current
	s.User = cloneUser(s.User)
	return s, true
}

// Touch records activity and restarts the inactivity timer.
func (m *SessionManager) Touch() (Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil {
		return Session{}, false
	}
	m.armLocked()
	s := *m.current
	s.User = cloneUser(s.User)
	return s, true
}

// Refresh replaces the session user when it is the same account.
func (m *SessionManager) Refresh(user auth.User) bool {
	m.mu.Lock()
	if m.current == nil || m.current.User.Username != user.Username {
		m.mu.Unlock()
		return false
	}
	m.current.User = cloneUser(user)
	s := *m.current
	m.mu.Unlock()

	m.emit(&s, ReasonRefresh)
	return true
}

func (m *SessionManager) armLocked() {
	m.gen++
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
	if m.timeout <= 0 {
		return
	}
	gen := m.gen
	m.timer = time.AfterFunc(m.timeout, func() { m.expire(gen) })
}

// expire ends the session only if no Touch re-armed the timer after gen.
func (m *SessionManager) expire(gen uint64) {
	m.mu.Lock()
	if m.current == nil || gen != m.gen {
		m.mu.Unlock()
		return
	}
	username := m.clearLocked()
	m.mu.Unlock()

	m.ended(username, ReasonExpired)
}

func (m *SessionManager) clearLocked() string {
	username := m.current.User.Username
	m.current = nil
	m.gen++
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
	return username
}

func (m *SessionManager) ended(username, reason string) {
	m.logger.Info("session ended", "username", username, "reason", reason)
	m.emit(nil, reason)
}

func (m *SessionManager) emit(s *Session, reason string) {
	m.mu.Lock()
	ls := append([]Listener(nil), m.listeners...)
	m.mu.Unlock()
	for _, l := range ls {
		l(s, reason)
	}
}

func cloneUser(u auth.User) auth.User {
	u.Permissions = append(u.Permissions[:0:0], u.Permissions...)
	return u
}
