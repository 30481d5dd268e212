package workspace_test

import (
	"context"
	"time"

	apperrors "github.com/frahmantamala/warehouse-management/internal"
	"github.com/frahmantamala/warehouse-management/internal/article"
	"github.com/frahmantamala/warehouse-management/internal/workspace"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Sessions", func() {
	ctx := context.Background()

	It("should log the user out after inactivity and wipe local caches", func() {
		// Given
		e := newEnv(workerUser, workspace.Config{InactivityTimeout: 50 * time.Millisecond})
		e.login()
		Expect(e.state.Has(workspace.KeyArticles)).To(BeTrue())

		// When
		Eventually(func() bool {
			_, ok := e.ws.Sessions.Current()
			return ok
		}).WithTimeout(2 * time.Second).Should(BeFalse())

		// Then
		Eventually(e.auth.logoutCount).Should(Equal(1))
		Expect(e.ws.Articles.List()).To(BeEmpty())
		Expect(e.state.Has(workspace.KeyArticles)).To(BeFalse())
		Expect(e.state.Has(workspace.KeyShelfRacks)).To(BeFalse())
		Eventually(func() string { return lastNotification(e.ws).Message }).Should(Equal("Session expired after inactivity"))
	})

	It("should keep an active session alive", func() {
		e := newEnv(workerUser, workspace.Config{InactivityTimeout: 300 * time.Millisecond})
		e.login()

		for i := 0; i < 4; i++ {
			time.Sleep(100 * time.Millisecond)
			e.ws.Articles.List()
		}

		_, ok := e.ws.Sessions.Current()
		Expect(ok).To(BeTrue())
	})

	It("should not expire a session touched after the timer was armed", func() {
		// Given
		m := workspace.NewSessionManager(0, quietLogger())
		m.Start(managerUser, "token")
		armed := m.Generation()
		var reasons []string
		m.OnChange(func(_ *workspace.Session, reason string) { reasons = append(reasons, reason) })

		// When
		_, ok := m.Touch()
		Expect(ok).To(BeTrue())
		m.ExpireGeneration(armed)

		// Then
		_, ok = m.Current()
		Expect(ok).To(BeTrue())
		Expect(reasons).To(BeEmpty())
	})

	It("should expire a session left idle since the timer was armed", func() {
		m := workspace.NewSessionManager(0, quietLogger())
		m.Start(managerUser, "token")
		var reasons []string
		m.OnChange(func(_ *workspace.Session, reason string) { reasons = append(reasons, reason) })

		m.ExpireGeneration(m.Generation())

		_, ok := m.Current()
		Expect(ok).To(BeFalse())
		Expect(reasons).To(Equal([]string{workspace.ReasonExpired}))
	})

	It("should clear caches on logout but keep the activity log", func() {
		e := newEnv(managerUser, workspace.Config{})
		e.login()

		Expect(e.ws.Logout(ctx)).To(Succeed())

		Expect(e.auth.logoutCount()).To(Equal(1))
		Expect(e.state.Has(workspace.KeyArticles)).To(BeFalse())
		Expect(lastEntry(e.ws).Action).To(Equal("logout"))
		Expect(e.ws.Logout(ctx)).To(MatchError(workspace.ErrNoSession))
	})

	It("should refuse mutations without a session", func() {
		e := newEnv(managerUser, workspace.Config{})

		_, err := e.ws.Articles.Create(ctx, article.Article{ID: "A9", StoreID: "T508"})

		Expect(err).To(MatchError(workspace.ErrNoSession))
		Expect(e.articles.calls()).To(Equal(0))
	})

	It("should report failed logins", func() {
		e := newEnv(managerUser, workspace.Config{})
		e.auth.err = apperrors.ErrInvalidCredentials.WithMessage("invalid username or password")

		_, err := e.ws.Login(ctx, "mia", "wrong")

		Expect(err).To(MatchError(apperrors.ErrInvalidCredentials))
		Expect(lastEntry(e.ws).Action).To(Equal("login failed"))
		_, ok := e.ws.Sessions.Current()
		Expect(ok).To(BeFalse())
	})

	It("should restore persisted caches on the next login", func() {
		// Given
		e := newEnv(managerUser, workspace.Config{})
		e.login()
		next := workspace.New(workspace.Config{}, e.auth, workspace.Remotes{}, e.state, quietLogger())

		// When
		_, err := next.Login(ctx, "mia", "password123")

		// Then
		Expect(err).NotTo(HaveOccurred())
		Expect(next.Articles.List()).To(HaveLen(2))
		Expect(next.Log.Entries()).NotTo(BeEmpty())
	})
})
