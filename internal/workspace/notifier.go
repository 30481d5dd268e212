package workspace

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// Message keys. The English text doubles as the key.
const (
	msgCreated       = "%[1]s %[2]s created"
	msgUpdated       = "%[1]s %[2]s updated"
	msgDeleted       = "%[1]s %[2]s deleted"
	msgDenied        = "You are not allowed to %[1]s: %[2]s"
	msgExists        = "%[1]s %[2]s already exists"
	msgNotFound      = "%[1]s %[2]s not found"
	msgHasDependents = "%[1]s %[2]s is still in use"
	msgServerError   = "Server error: %[1]s"
	msgUnreachable   = "The server could not be reached"
	msgCannotSelf    = "You cannot delete your own account"
	msgCopied        = "Copied %[1]d, skipped %[2]d, failed %[3]d"
	msgTransferred   = "Transferred %[1]d x %[2]s from %[3]s to %[4]s"
	msgInsufficient  = "Not enough stock of %[1]s: %[2]d available"
	msgStepFailed    = "Step %[1]s failed: %[2]s"
	msgExpired       = "Session expired after inactivity"
	msgWelcome       = "Welcome, %[1]s"
	msgLogCleared    = "Activity log cleared"
	msgSameStore     = "Source and target store must differ"
	msgBadQuantity   = "Quantity must be greater than zero"
	msgStoreCreated  = "Store %[1]s created with %[2]d of %[3]d default articles"
)

var german = map[string]string{
	msgCreated:       "%[1]s %[2]s angelegt",
	msgUpdated:       "%[1]s %[2]s aktualisiert",
	msgDeleted:       "%[1]s %[2]s gelöscht",
	msgDenied:        "Keine Berechtigung für %[1]s: %[2]s",
	msgExists:        "%[1]s %[2]s existiert bereits",
	msgNotFound:      "%[1]s %[2]s nicht gefunden",
	msgHasDependents: "%[1]s %[2]s wird noch verwendet",
	msgServerError:   "Serverfehler: %[1]s",
	msgUnreachable:   "Der Server ist nicht erreichbar",
	msgCannotSelf:    "Das eigene Konto kann nicht gelöscht werden",
	msgCopied:        "%[1]d kopiert, %[2]d übersprungen, %[3]d fehlgeschlagen",
	msgTransferred:   "%[1]d x %[2]s von %[3]s nach %[4]s umgebucht",
	msgInsufficient:  "Zu wenig Bestand von %[1]s: %[2]d verfügbar",
	msgStepFailed:    "Schritt %[1]s fehlgeschlagen: %[2]s",
	msgExpired:       "Sitzung wegen Inaktivität beendet",
	msgWelcome:       "Willkommen, %[1]s",
	msgLogCleared:    "Aktivitätsprotokoll geleert",
	msgSameStore:     "Quell- und Zielfiliale müssen verschieden sein",
	msgBadQuantity:   "Die Menge muss größer als null sein",
	msgStoreCreated:  "Filiale %[1]s mit %[2]d von %[3]d Standardartikeln angelegt",

	"article":        "Artikel",
	"global article": "Katalogartikel",
	"store":          "Filiale",
	"shelf rack":     "Regal",
	"user":           "Benutzer",
	"task":           "Aufgabe",
	"announcement":   "Mitteilung",
	"audit template": "Prüfvorlage",
	"create":         "anlegen",
	"update":         "ändern",
	"delete":         "löschen",
	"view":           "ansehen",
	"copy":           "kopieren",
	"transfer":       "umbuchen",
	"clear":          "leeren",
}

var messages = newCatalog()

func newCatalog() *catalog.Builder {
	b := catalog.NewBuilder(catalog.Fallback(language.English))
	for key, de := range german {
		_ = b.SetString(language.English, key, key)
		_ = b.SetString(language.German, key, de)
	}
	return b
}

// Translator renders notification texts in the configured locale.
type Translator struct {
	mu  sync.Mutex
	tag language.Tag
	p   *message.Printer
}

// NewTranslator falls back to English for unknown locales.
func NewTranslator(locale string) *Translator {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.English
	}
	return &Translator{tag: tag, p: message.NewPrinter(tag, message.Catalog(messages))}
}

func (t *Translator) Locale() language.Tag { return t.tag }

func (t *Translator) T(key string, args ...interface{}) string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.p.Sprintf(key, args...)
}

type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

type Notification struct {
	ID        string    `json:"id"`
	Level     Level     `json:"level"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
	Read      bool      `json:"read"`
}

const maxNotifications = 200

// Notifier keeps the most recent notifications and fans them out to subscribers.
type Notifier struct {
	mu     sync.Mutex
	items  []Notification
	subs   []func(Notification)
	tr     *Translator
	store  Persistence
	now    func() time.Time
	logger *slog.Logger
}

func NewNotifier(tr *Translator, store Persistence, logger *slog.Logger) *Notifier {
	n := &Notifier{tr: tr, store: store, now: time.Now, logger: logger}
	var items []Notification
	if err := store.Load(KeyNotifications, &items); err != nil {
		if !errors.Is(err, ErrNoState) {
			logger.Warn("failed to load notifications", "error", err)
		}
		return n
	}
	n.items = items
	return n
}

func (n *Notifier) Subscribe(fn func(Notification)) {
	n.mu.Lock()
	n.subs = append(n.subs, fn)
	n.mu.Unlock()
}

// Notify translates key with args and records the result.
func (n *Notifier) Notify(level Level, key string, args ...interface{}) Notification {
	item := Notification{
		ID:        uuid.NewString(),
		Level:     level,
		Message:   n.tr.T(key, args...),
		CreatedAt: n.now().UTC(),
	}

	n.mu.Lock()
	n.items = append(n.items, item)
	if len(n.items) > maxNotifications {
		n.items = append([]Notification(nil), n.items[len(n.items)-maxNotifications:]...)
	}
	snapshot := append([]Notification(nil), n.items...)
	subs := append(([]func(Notification))(nil), n.subs...)
	n.mu.Unlock()

	n.persist(snapshot)
	for _, fn := range subs {
		fn(item)
	}
	return item
}

func (n *Notifier) List() []Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]Notification(nil), n.items...)
}

func (n *Notifier) Unread() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	count := 0
	for _, it := range n.items {
		if !it.Read {
			count++
		}
	}
	return count
}

func (n *Notifier) MarkAllRead() {
	n.mu.Lock()
	for i := range n.items {
		n.items[i].Read = true
	}
	snapshot := append([]Notification(nil), n.items...)
	n.mu.Unlock()
	n.persist(snapshot)
}

func (n *Notifier) persist(items []Notification) {
	if err := n.store.Save(KeyNotifications, items); err != nil {
		n.logger.Warn("failed to persist notifications", "error", err)
	}
}
