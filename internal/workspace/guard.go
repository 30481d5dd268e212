package workspace

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/frahmantamala/warehouse-management/internal/permission"
)

// guard is shared by every repository: it resolves the session, asks the oracle
// and writes the log entry and notification for each outcome.
type guard struct {
	sessions *SessionManager
	oracle   *permission.Oracle
	log      *ActivityLog
	notes    *Notifier
	logger   *slog.Logger
}

func (g *guard) begin() (Session, error) {
	s, ok := g.sessions.Touch()
	if !ok {
		return Session{}, ErrNoSession
	}
	return s, nil
}

func (g *guard) allowed(s Session, p permission.Permission) bool {
	u := s.User
	return g.oracle.HasPermission(u.Subject(), p)
}

// authorize also pins non-admins to their own store when storeID is set.
func (g *guard) authorize(s Session, p permission.Permission, storeID string) error {
	if !g.allowed(s, p) {
		return fmt.Errorf("%w: missing %s", ErrForbidden, p)
	}
	if storeID != "" && !s.IsAdmin() && storeID != s.User.StoreID {
		return fmt.Errorf("%w: store %s is not yours", ErrForbidden, storeID)
	}
	return nil
}

func (g *guard) deny(s Session, verb, entity, subject string, err error) error {
	g.logger.Warn("action denied", "username", s.User.Username, "action", verb, "entity", entity, "key", subject, "error", err)
	g.log.Append(s.User.Username, verb+" "+entity+" denied", describeFailure(subject, err))
	g.notes.Notify(LevelError, msgDenied, g.notes.tr.T(verb), g.label(entity, subject))
	return err
}

// reject records a failure found locally, before any remote call.
func (g *guard) reject(s Session, verb, entity, subject string, err error, key string, args ...interface{}) error {
	g.log.Append(s.User.Username, verb+" "+entity+" failed", describeFailure(subject, err))
	g.notes.Notify(LevelError, key, args...)
	return err
}

// fail classifies a remote error, records it and returns the classified error.
func (g *guard) fail(s Session, verb, entity, subject string, err error) error {
	re := classifyRemote(err)
	g.logger.Warn("remote call failed", "username", s.User.Username, "action", verb, "entity", entity, "key", subject, "status", re.Status, "error", err)
	g.log.Append(s.User.Username, verb+" "+entity+" failed", describeFailure(subject, re))

	switch {
	case re.Message != "":
		g.notes.Notify(LevelError, msgServerError, re.Message)
	case errors.Is(re, ErrConflict):
		g.notes.Notify(LevelError, msgExists, g.notes.tr.T(entity), subject)
	case errors.Is(re, ErrNotFound):
		g.notes.Notify(LevelError, msgNotFound, g.notes.tr.T(entity), subject)
	case errors.Is(re, ErrForbidden):
		g.notes.Notify(LevelError, msgDenied, g.notes.tr.T(verb), g.label(entity, subject))
	default:
		g.notes.Notify(LevelError, msgUnreachable)
	}
	return re
}

func (g *guard) succeed(s Session, verb, entity, subject, details string) {
	g.log.Append(s.User.Username, verb+" "+entity, details)
	switch verb {
	case "create":
		g.notes.Notify(LevelSuccess, msgCreated, g.notes.tr.T(entity), subject)
	case "update":
		g.notes.Notify(LevelSuccess, msgUpdated, g.notes.tr.T(entity), subject)
	case "delete":
		g.notes.Notify(LevelSuccess, msgDeleted, g.notes.tr.T(entity), subject)
	}
}

func (g *guard) label(entity, subject string) string {
	if subject == "" {
		return g.notes.tr.T(entity)
	}
	return g.notes.tr.T(entity) + " " + subject
}

func describeFailure(subject string, err error) string {
	if subject == "" {
		return err.Error()
	}
	return subject + ": " + err.Error()
}
