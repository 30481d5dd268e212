package workspace_test

import (
	"context"
	"errors"

	apperrors "github.com/frahmantamala/warehouse-management/internal"
	"github.com/frahmantamala/warehouse-management/internal/article"
	"github.com/frahmantamala/warehouse-management/internal/permission"
	"github.com/frahmantamala/warehouse-management/internal/rack"
	"github.com/frahmantamala/warehouse-management/internal/store"
	"github.com/frahmantamala/warehouse-management/internal/task"
	"github.com/frahmantamala/warehouse-management/internal/user"
	"github.com/frahmantamala/warehouse-management/internal/workspace"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Repository", func() {
	ctx := context.Background()

	Describe("scoping", func() {
		It("should list only the session's store for non-admins", func() {
			// Given
			e := newEnv(workerUser, workspace.Config{})
			e.login()

			// When
			items := e.ws.Articles.List()

			// Then
			Expect(items).To(HaveLen(2))
			for _, a := range items {
				Expect(a.StoreID).To(Equal("T508"))
			}
			Expect(e.ws.Stores.List()).To(ConsistOf(store.Store{ID: "T508", Name: "Aarhus"}))
		})

		It("should list every store's items for admin", func() {
			e := newEnv(adminUser, workspace.Config{})
			e.login()

			Expect(e.ws.Articles.List()).To(HaveLen(3))
			Expect(e.ws.Stores.List()).To(HaveLen(2))
			Expect(e.ws.GlobalArticles.List()).To(HaveLen(1))
		})

		It("should keep the global catalog away from non-admins", func() {
			e := newEnv(managerUser, workspace.Config{})
			e.login()

			Expect(e.ws.GlobalArticles.List()).To(BeEmpty())
			_, err := e.ws.GlobalArticles.Get("G1", "")
			Expect(err).To(MatchError(workspace.ErrNotFound))
		})

		It("should list nothing without a session", func() {
			e := newEnv(adminUser, workspace.Config{})
			Expect(e.ws.Articles.List()).To(BeEmpty())
			_, err := e.ws.Articles.Get("A1", "T508")
			Expect(err).To(MatchError(workspace.ErrNoSession))
		})
	})

	Describe("HasPermission", func() {
		It("should grant everything to admin regardless of stored grants", func() {
			e := newEnv(adminUser, workspace.Config{PermissionModel: permission.ModelRoleTable})
			e.login()

			for _, p := range permission.All() {
				Expect(e.ws.HasPermission(p)).To(BeTrue(), string(p))
			}
		})

		It("should deny everything without a session", func() {
			e := newEnv(adminUser, workspace.Config{})
			Expect(e.ws.HasPermission(permission.ArticleView)).To(BeFalse())
		})
	})

	Describe("Create", func() {
		It("should return the entity as sent through Get", func() {
			// Given
			e := newEnv(managerUser, workspace.Config{})
			e.login()
			minQty := 5
			in := article.Article{ID: "A9", Name: "Blanket", StoreID: "T508", RackID: "A-1", ShelfNumber: "3", Quantity: 7, MinQuantity: &minQty}

			// When
			_, err := e.ws.Articles.Create(ctx, in)

			// Then
			Expect(err).NotTo(HaveOccurred())
			got, err := e.ws.Articles.Get("A9", "T508")
			Expect(err).NotTo(HaveOccurred())
			Expect(got).To(Equal(in))
			Expect(lastEntry(e.ws).Action).To(Equal("create article"))
			Expect(lastNotification(e.ws).Level).To(Equal(workspace.LevelSuccess))
		})

		It("should reject an existing key without calling the server", func() {
			e := newEnv(managerUser, workspace.Config{})
			e.login()

			_, err := e.ws.Articles.Create(ctx, article.Article{ID: "A1", Name: "Pillow", StoreID: "T508"})

			Expect(err).To(MatchError(workspace.ErrConflict))
			Expect(e.articles.calls()).To(Equal(0))
			Expect(e.ws.Articles.List()).To(HaveLen(2))
		})

		It("should reject a missing permission without calling the server or touching the cache", func() {
			// Given
			e := newEnv(traineeUser, workspace.Config{})
			e.login()
			before := e.ws.Articles.List()

			// When
			_, err := e.ws.Articles.Create(ctx, article.Article{ID: "A9", Name: "Blanket", StoreID: "T508"})

			// Then
			Expect(err).To(MatchError(workspace.ErrForbidden))
			Expect(e.articles.calls()).To(Equal(0))
			Expect(e.ws.Articles.List()).To(Equal(before))
			Expect(lastEntry(e.ws).Action).To(Equal("create article denied"))
			Expect(lastNotification(e.ws).Message).To(ContainSubstring("You are not allowed to create"))
		})

		It("should reject a foreign store for non-admins", func() {
			e := newEnv(managerUser, workspace.Config{})
			e.login()

			_, err := e.ws.Articles.Create(ctx, article.Article{ID: "A9", Name: "Blanket", StoreID: "T600"})

			Expect(err).To(MatchError(workspace.ErrForbidden))
			Expect(e.articles.calls()).To(Equal(0))
		})

		It("should surface a server conflict and leave the cache unchanged", func() {
			// Given
			e := newEnv(managerUser, workspace.Config{})
			e.login()
			e.articles.setFail(apperrors.NewConflictError("article A9 already exists in T508", apperrors.ErrCodeDuplicateKey))

			// When
			_, err := e.ws.Articles.Create(ctx, article.Article{ID: "A9", Name: "Blanket", StoreID: "T508"})

			// Then
			Expect(err).To(MatchError(workspace.ErrConflict))
			var re *workspace.RemoteError
			Expect(errors.As(err, &re)).To(BeTrue())
			Expect(re.Message).To(Equal("article A9 already exists in T508"))
			_, getErr := e.ws.Articles.Get("A9", "T508")
			Expect(getErr).To(MatchError(workspace.ErrNotFound))
			Expect(lastEntry(e.ws).Action).To(Equal("create article failed"))
			Expect(lastNotification(e.ws).Message).To(Equal("Server error: article A9 already exists in T508"))
		})

		It("should map transport failures to ErrRemote with a generic notice", func() {
			e := newEnv(managerUser, workspace.Config{})
			e.login()
			e.tasks.setFail(errors.New("connection refused"))

			_, err := e.ws.Tasks.Create(ctx, task.Task{StoreID: "T508", Title: "Count pillows"})

			Expect(err).To(MatchError(workspace.ErrRemote))
			Expect(lastNotification(e.ws).Message).To(Equal("The server could not be reached"))
			Expect(e.ws.Tasks.List()).To(BeEmpty())
		})

		It("should create users from the DTO", func() {
			e := newEnv(adminUser, workspace.Config{})
			e.login()

			created, err := e.ws.Users.Create(ctx, user.CreateUserDTO{
				Username: "nina", Email: "nina@example.com", Password: "password123",
				Role: permission.RoleWarehouseWorker, StoreID: "T600",
			})

			Expect(err).NotTo(HaveOccurred())
			Expect(created.FirstLogin).To(BeTrue())
			got, err := e.ws.Users.Get("nina", "")
			Expect(err).NotTo(HaveOccurred())
			Expect(got.StoreID).To(Equal("T600"))
		})
	})

	Describe("Update", func() {
		It("should replace the cached entity in place", func() {
			e := newEnv(workerUser, workspace.Config{})
			e.login()
			a, err := e.ws.Articles.Get("A2", "T508")
			Expect(err).NotTo(HaveOccurred())
			a.Quantity = 12

			_, err = e.ws.Articles.Update(ctx, a)

			Expect(err).NotTo(HaveOccurred())
			Expect(e.ws.Articles.List()[1].Quantity).To(Equal(12))
			Expect(lastEntry(e.ws).Details).To(ContainSubstring("qty=12"))
		})

		It("should return ErrNotFound for uncached entities without calling the server", func() {
			e := newEnv(workerUser, workspace.Config{})
			e.login()

			_, err := e.ws.Articles.Update(ctx, article.Article{ID: "ZZ", StoreID: "T508"})

			Expect(err).To(MatchError(workspace.ErrNotFound))
			Expect(e.articles.calls()).To(Equal(0))
		})

		It("should refresh the session when the current user is updated", func() {
			// Given
			e := newEnv(adminUser, workspace.Config{})
			e.login()
			var reasons []string
			e.ws.Sessions.OnChange(func(_ *workspace.Session, reason string) { reasons = append(reasons, reason) })

			// When
			_, err := e.ws.Users.Update(ctx, user.User{Username: "admin", Email: "root@example.com", Role: permission.RoleAdmin})

			// Then
			Expect(err).NotTo(HaveOccurred())
			s, ok := e.ws.Sessions.Current()
			Expect(ok).To(BeTrue())
			Expect(s.User.Email).To(Equal("root@example.com"))
			Expect(reasons).To(Equal([]string{workspace.ReasonRefresh}))
		})
	})

	Describe("Delete", func() {
		It("should reject deleting yourself before the permission check", func() {
			for _, u := range []struct {
				name string
				env  *env
			}{
				{"admin", newEnv(adminUser, workspace.Config{})},
				{"trainee", newEnv(traineeUser, workspace.Config{})},
			} {
				u.env.login()
				err := u.env.ws.Users.Delete(ctx, u.env.auth.user.Username, "")
				Expect(err).To(MatchError(workspace.ErrCannotDeleteSelf), u.name)
				Expect(u.env.users.calls()).To(Equal(0), u.name)
				Expect(lastNotification(u.env.ws).Message).To(Equal("You cannot delete your own account"))
			}
		})

		It("should delete another user as admin", func() {
			e := newEnv(adminUser, workspace.Config{})
			e.login()

			Expect(e.ws.Users.Delete(ctx, "tom", "")).To(Succeed())

			_, err := e.ws.Users.Get("tom", "")
			Expect(err).To(MatchError(workspace.ErrNotFound))
			Expect(e.users.calls()).To(Equal(1))
		})

		It("should refuse to delete a store that still has dependents", func() {
			e := newEnv(adminUser, workspace.Config{})
			e.login()

			err := e.ws.Stores.Delete(ctx, "T508", "")

			Expect(err).To(MatchError(workspace.ErrConflict))
			Expect(e.stores.calls()).To(Equal(0))
			Expect(e.ws.Stores.List()).To(HaveLen(2))
		})

		It("should refuse to delete a rack that still holds articles", func() {
			e := newEnv(managerUser, workspace.Config{})
			e.login()

			err := e.ws.Racks.Delete(ctx, "A-1", "T508")

			Expect(err).To(MatchError(workspace.ErrConflict))
			Expect(e.racks.calls()).To(Equal(0))
		})

		It("should deny trainees without calling the server", func() {
			e := newEnv(traineeUser, workspace.Config{})
			e.login()

			err := e.ws.Articles.Delete(ctx, "A1", "T508")

			Expect(err).To(MatchError(workspace.ErrForbidden))
			Expect(e.articles.calls()).To(Equal(0))
			Expect(e.ws.Articles.List()).To(HaveLen(2))
		})
	})

	Describe("Racks", func() {
		It("should renumber the remaining shelves in order after removing one", func() {
			// Given
			e := newEnv(managerUser, workspace.Config{})
			e.login()

			// When
			rk, err := e.ws.Racks.RemoveShelf(ctx, "A-1", "T508", 2)

			// Then
			Expect(err).NotTo(HaveOccurred())
			Expect(rk.Shelves).To(HaveLen(2))
			Expect(rk.Shelves[0].ShelfNumber).To(Equal(1))
			Expect(rk.Shelves[0].Description).To(Equal("top"))
			Expect(rk.Shelves[1].ShelfNumber).To(Equal(2))
			Expect(rk.Shelves[1].Description).To(Equal("bottom"))
			cached, _ := e.ws.Racks.Get("A-1", "T508")
			Expect(cached.Shelves).To(Equal(rk.Shelves))
		})

		It("should reject a rack whose row and rack differ from an existing one only by case", func() {
			e := newEnv(managerUser, workspace.Config{})
			e.login()

			_, err := e.ws.Racks.Create(ctx, rack.Rack{ID: "a-1", RowID: "a", RackID: "1", StoreID: "T508", Shelves: []rack.Shelf{{ShelfNumber: 1}}})

			Expect(err).To(MatchError(workspace.ErrConflict))
			Expect(e.racks.calls()).To(Equal(0))
			Expect(e.ws.Racks.List()).To(HaveLen(1))
		})

		It("should report a missing shelf as not found", func() {
			e := newEnv(managerUser, workspace.Config{})
			e.login()

			_, err := e.ws.Racks.RemoveShelf(ctx, "A-1", "T508", 7)

			Expect(err).To(MatchError(workspace.ErrNotFound))
			Expect(e.racks.calls()).To(Equal(0))
		})
	})

	Describe("Articles", func() {
		It("should list low stock articles", func() {
			e := newEnv(managerUser, workspace.Config{})
			e.login()
			a, _ := e.ws.Articles.Get("A2", "T508")
			minQty := 5
			a.MinQuantity = &minQty
			_, err := e.ws.Articles.Update(ctx, a)
			Expect(err).NotTo(HaveOccurred())

			low := e.ws.Articles.LowStock()

			Expect(low).To(HaveLen(1))
			Expect(low[0].ID).To(Equal("A2"))
		})
	})

	Describe("ClearLog", func() {
		It("should require log:clear", func() {
			e := newEnv(managerUser, workspace.Config{})
			e.login()
			before := len(e.ws.Log.Entries())

			_, err := e.ws.ClearLog()

			Expect(err).To(MatchError(workspace.ErrForbidden))
			Expect(len(e.ws.Log.Entries())).To(Equal(before + 1))
		})

		It("should empty the log for admin and record the clear", func() {
			e := newEnv(adminUser, workspace.Config{})
			e.login()

			n, err := e.ws.ClearLog()

			Expect(err).NotTo(HaveOccurred())
			Expect(n).To(BeNumerically(">", 0))
			entries := e.ws.Log.Entries()
			Expect(entries).To(HaveLen(1))
			Expect(entries[0].Action).To(Equal("clear activity log"))
		})
	})
})
