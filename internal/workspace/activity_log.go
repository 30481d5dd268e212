package workspace

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

type LogEntry struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	User      string    `json:"user"`
	Action    string    `json:"action"`
	Details   string    `json:"details"`
}

// ActivityLog is the append-only local journal of workspace actions.
type ActivityLog struct {
	mu      sync.RWMutex
	entries []LogEntry
	store   Persistence
	now     func() time.Time
	logger  *slog.Logger
}

func NewActivityLog(store Persistence, logger *slog.Logger) *ActivityLog {
	l := &ActivityLog{store: store, now: time.Now, logger: logger}
	var entries []LogEntry
	if err := store.Load(KeyActivityLog, &entries); err != nil {
		if !errors.Is(err, ErrNoState) {
			logger.Warn("failed to load activity log", "error", err)
		}
		return l
	}
	l.entries = entries
	return l
}

// Append never fails; a persistence error is only logged.
func (l *ActivityLog) Append(user, action, details string) LogEntry {
	e := LogEntry{
		ID:        uuid.NewString(),
		Timestamp: l.now().UTC(),
		User:      user,
		Action:    action,
		Details:   details,
	}

	l.mu.Lock()
	l.entries = append(l.entries, e)
	snapshot := append([]LogEntry(nil), l.entries...)
	l.mu.Unlock()

	if err := l.store.Save(KeyActivityLog, snapshot); err != nil {
		l.logger.Warn("failed to persist activity log", "error", err)
	}
	return e
}

func (l *ActivityLog) Entries() []LogEntry {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]LogEntry(nil), l.entries...)
}

func (l *ActivityLog) clear() int {
	l.mu.Lock()
	n := len(l.entries)
	l.entries = nil
	l.mu.Unlock()

	if err := l.store.Remove(KeyActivityLog); err != nil {
		l.logger.Warn("failed to remove activity log", "error", err)
	}
	return n
}
