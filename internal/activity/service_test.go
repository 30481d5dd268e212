package activity_test

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"sync"
	"testing"
	"time"

	apperrors "github.com/frahmantamala/warehouse-management/internal"
	"github.com/frahmantamala/warehouse-management/internal/activity"
	"github.com/frahmantamala/warehouse-management/internal/auth"
	activityDatamodel "github.com/frahmantamala/warehouse-management/internal/core/datamodel/activity"
	"github.com/frahmantamala/warehouse-management/internal/core/events"
	"github.com/frahmantamala/warehouse-management/internal/permission"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestActivity(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Activity Suite")
}

type mockRepository struct {
	mu         sync.Mutex
	entries    []*activityDatamodel.Entry
	listStore  string
	listLimit  int
	clearCalls int
	shouldFail bool
}

func (m *mockRepository) Insert(_ context.Context, e *activityDatamodel.Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.shouldFail {
		return errors.New("database error")
	}
	m.entries = append(m.entries, e)
	return nil
}

func (m *mockRepository) List(_ context.Context, storeID string, limit int) ([]*activityDatamodel.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listStore = storeID
	m.listLimit = limit
	if m.shouldFail {
		return nil, errors.New("database error")
	}
	return m.entries, nil
}

func (m *mockRepository) Clear(_ context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clearCalls++
	n := int64(len(m.entries))
	m.entries = nil
	return n, nil
}

func (m *mockRepository) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

var _ = Describe("Activity Service", func() {
	var (
		repo    *mockRepository
		service *activity.Service
		ctx     context.Context
		slogger *slog.Logger
		admin   *auth.User
		manager *auth.User
		worker  *auth.User
	)

	BeforeEach(func() {
		ctx = context.Background()
		repo = &mockRepository{}
		slogger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		policy := auth.NewABACPolicy(permission.NewOracle(permission.ModelStored))
		service = activity.NewService(repo, policy, slogger)

		admin = &auth.User{Username: "root", Role: permission.RoleAdmin}
		manager = &auth.User{Username: "lisa", Role: permission.RoleStoreManager, StoreID: "T508"}
		worker = &auth.User{Username: "tom", Role: permission.RoleWarehouseWorker, StoreID: "T508"}
	})

	Describe("HandleEntityChanged", func() {
		It("should store one entry per event", func() {
			// Given
			event := events.NewEntityChangedEvent("lisa", events.EntityArticle, events.ActionCreated, "A1", "T508", "Pallet")

			// When
			err := service.HandleEntityChanged(ctx, event)

			// Then
			Expect(err).NotTo(HaveOccurred())
			Expect(repo.entries).To(HaveLen(1))
			Expect(repo.entries[0].Action).To(Equal("article.created"))
			Expect(repo.entries[0].Username).To(Equal("lisa"))
			Expect(repo.entries[0].ID).To(Equal(event.EventID()))
		})

		It("should reject foreign event types", func() {
			err := service.HandleEntityChanged(ctx, events.BaseEvent{ID: "x", Type: "article.created"})
			Expect(err).To(HaveOccurred())
		})

		It("should receive events published on the bus", func() {
			bus := events.NewEventBus(slogger)
			service.RegisterEventHandlers(bus)

			events.Emit(ctx, bus, events.NewEntityChangedEvent("root", events.EntityStore, events.ActionDeleted, "T100", "T100", ""))

			drainCtx, cancel := context.WithTimeout(ctx, time.Second)
			defer cancel()
			Expect(bus.Drain(drainCtx)).To(Succeed())
			Expect(repo.count()).To(Equal(1))
		})
	})

	Describe("List", func() {
		It("should scope a manager to their store and clamp the limit", func() {
			_, err := service.List(ctx, manager, "", 0)

			Expect(err).NotTo(HaveOccurred())
			Expect(repo.listStore).To(Equal("T508"))
			Expect(repo.listLimit).To(Equal(activity.DefaultLimit))
		})

		It("should let admin see every store", func() {
			_, err := service.List(ctx, admin, "", 5000)

			Expect(err).NotTo(HaveOccurred())
			Expect(repo.listStore).To(Equal(""))
			Expect(repo.listLimit).To(Equal(activity.MaxLimit))
		})

		It("should deny viewers without log:view", func() {
			_, err := service.List(ctx, worker, "", 0)
			Expect(errors.Is(err, apperrors.ErrInsufficientPermission)).To(BeTrue())
		})

		It("should deny a manager asking for another store", func() {
			_, err := service.List(ctx, manager, "T100", 0)
			Expect(errors.Is(err, apperrors.ErrForeignStore)).To(BeTrue())
		})
	})

	Describe("Clear", func() {
		It("should be reserved to admin", func() {
			_, err := service.Clear(ctx, manager)

			Expect(errors.Is(err, apperrors.ErrInsufficientPermission)).To(BeTrue())
			Expect(repo.clearCalls).To(Equal(0))
		})

		It("should clear for admin", func() {
			repo.entries = []*activityDatamodel.Entry{{ID: "e-1"}, {ID: "e-2"}}

			n, err := service.Clear(ctx, admin)

			Expect(err).NotTo(HaveOccurred())
			Expect(n).To(Equal(int64(2)))
		})
	})
})
