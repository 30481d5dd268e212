package workspace_test

import (
	"context"
	"os"
	"path/filepath"

	"github.com/frahmantamala/warehouse-management/internal/workspace"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("FileStore", func() {
	var (
		dir string
		fs  *workspace.FileStore
	)

	BeforeEach(func() {
		dir = GinkgoT().TempDir()
		var err error
		fs, err = workspace.NewFileStore(dir, quietLogger())
		Expect(err).NotTo(HaveOccurred())
	})

	It("should save and load by key", func() {
		Expect(fs.Save(workspace.KeyArticles, []string{"A1", "A2"})).To(Succeed())

		var got []string
		Expect(fs.Load(workspace.KeyArticles, &got)).To(Succeed())
		Expect(got).To(Equal([]string{"A1", "A2"}))
		Expect(filepath.Join(dir, "articles.json")).To(BeAnExistingFile())
	})

	It("should report missing keys as ErrNoState", func() {
		var got []string
		Expect(fs.Load(workspace.KeyShelfRacks, &got)).To(MatchError(workspace.ErrNoState))
	})

	It("should discard corrupted files", func() {
		// Given
		path := filepath.Join(dir, "activityLog.json")
		Expect(os.WriteFile(path, []byte("{not json"), 0o600)).To(Succeed())

		// When
		var got []workspace.LogEntry
		err := fs.Load(workspace.KeyActivityLog, &got)

		// Then
		Expect(err).To(MatchError(workspace.ErrNoState))
		Expect(got).To(BeEmpty())
		Expect(path).NotTo(BeAnExistingFile())
	})

	It("should reject keys that escape the directory", func() {
		Expect(fs.Save("../outside", 1)).To(HaveOccurred())
	})

	It("should ignore removing an absent key", func() {
		Expect(fs.Remove(workspace.KeyNotifications)).To(Succeed())
	})
})

var _ = Describe("Persisted workspace state", func() {
	It("should start with an empty log when the stored log is corrupted", func() {
		// Given
		state := workspace.NewMemoryStore()
		state.Put(workspace.KeyActivityLog, []byte(`[{"id":`))

		// When
		log := workspace.NewActivityLog(state, quietLogger())

		// Then
		Expect(log.Entries()).To(BeEmpty())
		Expect(state.Has(workspace.KeyActivityLog)).To(BeFalse())
	})

	It("should drop a log whose entries have the wrong field types", func() {
		// Given
		state := workspace.NewMemoryStore()
		state.Put(workspace.KeyActivityLog, []byte(`[{"id":"a","user":"ghost","action":"x"},{"id":5}]`))

		// When
		log := workspace.NewActivityLog(state, quietLogger())

		// Then
		Expect(log.Entries()).To(BeEmpty())
		Expect(state.Has(workspace.KeyActivityLog)).To(BeFalse())
	})

	It("should drop notifications whose fields have the wrong types", func() {
		// Given
		state := workspace.NewMemoryStore()
		state.Put(workspace.KeyNotifications, []byte(`[{"id":"n","message":"stale"},{"read":"yes"}]`))

		// When
		notes := workspace.NewNotifier(workspace.NewTranslator("en"), state, quietLogger())

		// Then
		Expect(notes.List()).To(BeEmpty())
		Expect(notes.Unread()).To(Equal(0))
		Expect(state.Has(workspace.KeyNotifications)).To(BeFalse())
	})

	It("should deliver each notification to every subscriber", func() {
		notes := workspace.NewNotifier(workspace.NewTranslator("en"), workspace.NewMemoryStore(), quietLogger())
		var first, second []string
		notes.Subscribe(func(n workspace.Notification) { first = append(first, n.Message) })
		notes.Subscribe(func(n workspace.Notification) { second = append(second, n.Message) })

		notes.Notify(workspace.LevelInfo, "Activity log cleared")

		Expect(first).To(Equal([]string{"Activity log cleared"}))
		Expect(second).To(Equal(first))
	})

	It("should keep log entries across workspaces", func() {
		state := workspace.NewMemoryStore()
		first := workspace.NewActivityLog(state, quietLogger())
		first.Append("mia", "create article", "A1")

		second := workspace.NewActivityLog(state, quietLogger())

		Expect(second.Entries()).To(HaveLen(1))
		Expect(second.Entries()[0].User).To(Equal("mia"))
	})
})

var _ = Describe("Notifier", func() {
	It("should translate notifications into German", func() {
		// Given
		e := newEnv(traineeUser, workspace.Config{Locale: "de"})
		e.login()

		// When
		err := e.ws.Articles.Delete(context.Background(), "A1", "T508")

		// Then
		Expect(err).To(MatchError(workspace.ErrForbidden))
		Expect(lastNotification(e.ws).Message).To(Equal("Keine Berechtigung für löschen: Artikel A1@T508"))
	})

	It("should fall back to English for unknown locales", func() {
		tr := workspace.NewTranslator("xx-invalid-")
		Expect(tr.T("Session expired after inactivity")).To(Equal("Session expired after inactivity"))
	})

	It("should keep unread counts and notify subscribers", func() {
		state := workspace.NewMemoryStore()
		n := workspace.NewNotifier(workspace.NewTranslator("en"), state, quietLogger())
		var seen []string
		n.Subscribe(func(item workspace.Notification) { seen = append(seen, item.Message) })

		n.Notify(workspace.LevelInfo, "Welcome, %[1]s", "mia")
		n.Notify(workspace.LevelInfo, "Activity log cleared")

		Expect(seen).To(Equal([]string{"Welcome, mia", "Activity log cleared"}))
		Expect(n.Unread()).To(Equal(2))
		n.MarkAllRead()
		Expect(n.Unread()).To(Equal(0))
		Expect(state.Has(workspace.KeyNotifications)).To(BeTrue())
	})
})
