package workspace_test

import (
	"context"

	"github.com/frahmantamala/warehouse-management/internal/article"
	"github.com/frahmantamala/warehouse-management/internal/store"
	"github.com/frahmantamala/warehouse-management/internal/workspace"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Workflows", func() {
	var (
		ctx context.Context
		e   *env
	)

	BeforeEach(func() {
		ctx = context.Background()
		e = newEnv(adminUser, workspace.Config{})
		e.login()
	})

	Describe("TransferStock", func() {
		It("should move stock into a newly created target article", func() {
			// When
			saga, err := e.ws.Workflows.TransferStock(ctx, "T508", "T700", "A1", 3)

			// Then
			Expect(err).NotTo(HaveOccurred())
			src, _ := e.ws.Articles.Get("A1", "T508")
			Expect(src.Quantity).To(Equal(7))
			dst, err := e.ws.Articles.Get("A1", "T700")
			Expect(err).NotTo(HaveOccurred())
			Expect(dst.Quantity).To(Equal(3))
			Expect(dst.RackID).To(Equal(article.NoPlacement))
			Expect(dst.ShelfNumber).To(Equal(article.NoPlacement))
			Expect(saga.Count(workspace.StepDone)).To(Equal(2))
			Expect(lastNotification(e.ws).Message).To(Equal("Transferred 3 x A1 from T508 to T700"))
		})

		It("should increment an existing target article", func() {
			_, err := e.ws.Workflows.TransferStock(ctx, "T508", "T600", "A1", 4)

			Expect(err).NotTo(HaveOccurred())
			dst, _ := e.ws.Articles.Get("A1", "T600")
			Expect(dst.Quantity).To(Equal(103))
			Expect(dst.RackID).To(Equal("C-9"))
			Expect(e.articles.creates).To(Equal(0))
		})

		It("should reject more than the source holds without touching anything", func() {
			// When
			saga, err := e.ws.Workflows.TransferStock(ctx, "T508", "T700", "A1", 11)

			// Then
			Expect(err).To(MatchError(workspace.ErrInsufficientStock))
			Expect(saga).To(BeNil())
			Expect(e.articles.calls()).To(Equal(0))
			src, _ := e.ws.Articles.Get("A1", "T508")
			Expect(src.Quantity).To(Equal(10))
			Expect(lastNotification(e.ws).Message).To(Equal("Not enough stock of A1: 10 available"))
		})

		It("should validate quantity and stores", func() {
			_, err := e.ws.Workflows.TransferStock(ctx, "T508", "T600", "A1", 0)
			Expect(err).To(MatchError(workspace.ErrInvalidQuantity))

			_, err = e.ws.Workflows.TransferStock(ctx, "T508", "T508", "A1", 1)
			Expect(err).To(MatchError(workspace.ErrSameStore))

			_, err = e.ws.Workflows.TransferStock(ctx, "T508", "T600", "NOPE", 1)
			Expect(err).To(MatchError(workspace.ErrNotFound))

			Expect(e.articles.calls()).To(Equal(0))
		})

		It("should deny a worker moving stock out of their store", func() {
			w := newEnv(workerUser, workspace.Config{})
			w.login()

			_, err := w.ws.Workflows.TransferStock(ctx, "T508", "T600", "A1", 1)

			Expect(err).To(MatchError(workspace.ErrForbidden))
			Expect(w.articles.calls()).To(Equal(0))
		})

		It("should undo a finished transfer when compensated", func() {
			// Given
			saga, err := e.ws.Workflows.TransferStock(ctx, "T508", "T700", "A2", 1)
			Expect(err).NotTo(HaveOccurred())
			Expect(saga.Count(workspace.StepDone)).To(Equal(2))

			// When
			Expect(saga.Compensate(ctx)).To(Succeed())

			// Then
			src, _ := e.ws.Articles.Get("A2", "T508")
			Expect(src.Quantity).To(Equal(4))
			_, err = e.ws.Articles.Get("A2", "T700")
			Expect(err).To(MatchError(workspace.ErrNotFound))
			Expect(saga.Count(workspace.StepCompensated)).To(Equal(2))
		})
	})

	Describe("CopyArticles", func() {
		It("should skip existing target articles when not overwriting", func() {
			// When
			res, _, err := e.ws.Workflows.CopyArticles(ctx, "T508", "T600", false)

			// Then
			Expect(err).NotTo(HaveOccurred())
			Expect(res).To(Equal(workspace.CopyResult{Copied: 1, Skipped: 1, Failed: 0}))
			existing, _ := e.ws.Articles.Get("A1", "T600")
			Expect(existing.Name).To(Equal("Pillow (old)"))
			Expect(existing.Quantity).To(Equal(99))
			copied, err := e.ws.Articles.Get("A2", "T600")
			Expect(err).NotTo(HaveOccurred())
			Expect(copied.RackID).To(Equal("A-4"))
			Expect(copied.ShelfNumber).To(Equal("1"))
			Expect(lastNotification(e.ws).Message).To(Equal("Copied 1, skipped 1, failed 0"))
		})

		It("should overwrite existing target articles but keep their placement", func() {
			res, _, err := e.ws.Workflows.CopyArticles(ctx, "T508", "T600", true)

			Expect(err).NotTo(HaveOccurred())
			Expect(res.Copied).To(Equal(2))
			Expect(res.Skipped).To(Equal(0))
			updated, _ := e.ws.Articles.Get("A1", "T600")
			Expect(updated.Name).To(Equal("Pillow"))
			Expect(updated.Quantity).To(Equal(10))
			Expect(updated.RackID).To(Equal("C-9"))
		})

		It("should place copies at N/A when the target has no racks", func() {
			_, _, err := e.ws.Workflows.CopyArticles(ctx, "T508", "T700", false)

			Expect(err).NotTo(HaveOccurred())
			copied, _ := e.ws.Articles.Get("A2", "T700")
			Expect(copied.RackID).To(Equal(article.NoPlacement))
			Expect(copied.ShelfNumber).To(Equal(article.NoPlacement))
		})

		It("should count failures and retry them", func() {
			// Given
			e.articles.setFail(errTemporary)

			// When
			res, saga, err := e.ws.Workflows.CopyArticles(ctx, "T508", "T700", false)

			// Then
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Failed).To(Equal(2))
			Expect(lastNotification(e.ws).Level).To(Equal(workspace.LevelWarning))

			e.articles.setFail(nil)
			Expect(saga.Retry(ctx)).To(Succeed())
			Expect(saga.Count(workspace.StepDone)).To(Equal(2))
			Expect(e.ws.Articles.InStore("T700")).To(HaveLen(2))
		})

		It("should deny a manager copying articles out of another store", func() {
			// Given
			m := newEnv(managerUser, workspace.Config{})
			m.login()

			// When
			res, saga, err := m.ws.Workflows.CopyArticles(ctx, "T600", "T508", false)

			// Then
			Expect(err).To(MatchError(workspace.ErrForbidden))
			Expect(saga).To(BeNil())
			Expect(res).To(Equal(workspace.CopyResult{}))
			Expect(m.articles.calls()).To(Equal(0))
		})

		It("should reject copying a store onto itself", func() {
			_, _, err := e.ws.Workflows.CopyArticles(ctx, "T508", "T508", false)
			Expect(err).To(MatchError(workspace.ErrSameStore))
		})
	})

	Describe("AddArticles", func() {
		It("should create each article independently", func() {
			res, _, err := e.ws.Workflows.AddArticles(ctx, []article.Article{
				{ID: "B1", Name: "Sheet", StoreID: "T508", Quantity: 2},
				{ID: "A1", Name: "Pillow", StoreID: "T508"},
				{ID: "B2", Name: "Towel", StoreID: "T600", Quantity: 1},
			})

			Expect(err).NotTo(HaveOccurred())
			Expect(res).To(Equal(workspace.BulkResult{Created: 2, Failed: 1}))
			b1, _ := e.ws.Articles.Get("B1", "T508")
			Expect(b1.RackID).To(Equal(article.NoPlacement))
		})
	})

	Describe("CreateStoreWithDefaults", func() {
		It("should create the store and seed catalog articles", func() {
			// When
			saga, err := e.ws.Workflows.CreateStoreWithDefaults(ctx, store.Store{ID: "t700", Name: "Vejle"}, []string{"G1", "MISSING"})

			// Then
			Expect(err).NotTo(HaveOccurred())
			_, err = e.ws.Stores.Get("T700", "")
			Expect(err).NotTo(HaveOccurred())
			seeded, err := e.ws.Articles.Get("G1", "T700")
			Expect(err).NotTo(HaveOccurred())
			Expect(seeded.Name).To(Equal("Mattress"))
			Expect(seeded.Quantity).To(Equal(0))
			Expect(saga.Count(workspace.StepFailed)).To(Equal(1))
			Expect(lastNotification(e.ws).Message).To(Equal("Store T700 created with 1 of 2 default articles"))
		})

		It("should stop when the store cannot be created", func() {
			saga, err := e.ws.Workflows.CreateStoreWithDefaults(ctx, store.Store{ID: "T508", Name: "Dup"}, []string{"G1"})

			Expect(err).To(MatchError(workspace.ErrConflict))
			Expect(saga.Count(workspace.StepPending)).To(Equal(1))
		})
	})
})
