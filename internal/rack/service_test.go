package rack_test

import (
	"context"
	"errors"
	"log/slog"
	"os"

	apperrors "github.com/frahmantamala/warehouse-management/internal"
	"github.com/frahmantamala/warehouse-management/internal/auth"
	rackDatamodel "github.com/frahmantamala/warehouse-management/internal/core/datamodel/rack"
	"github.com/frahmantamala/warehouse-management/internal/permission"
	"github.com/frahmantamala/warehouse-management/internal/rack"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type MockRepository struct {
	racks       map[string]*rackDatamodel.ShelfRack
	articles    map[string]int64
	createCalls int
	deleteCalls int
}

func NewMockRepository() *MockRepository {
	return &MockRepository{
		racks:    make(map[string]*rackDatamodel.ShelfRack),
		articles: make(map[string]int64),
	}
}

func key(id, storeID string) string { return storeID + "/" + id }

func (m *MockRepository) List(_ context.Context, storeID string) ([]*rackDatamodel.ShelfRack, error) {
	var out []*rackDatamodel.ShelfRack
	for _, r := range m.racks {
		if storeID == "" || r.StoreID == storeID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *MockRepository) GetByID(_ context.Context, id, storeID string) (*rackDatamodel.ShelfRack, error) {
	return m.racks[key(id, storeID)], nil
}

func (m *MockRepository) Create(_ context.Context, r *rackDatamodel.ShelfRack) error {
	m.createCalls++
	m.racks[key(r.ID, r.StoreID)] = r
	return nil
}

func (m *MockRepository) Update(_ context.Context, r *rackDatamodel.ShelfRack) error {
	m.racks[key(r.ID, r.StoreID)] = r
	return nil
}

func (m *MockRepository) Delete(_ context.Context, id, storeID string) error {
	m.deleteCalls++
	delete(m.racks, key(id, storeID))
	return nil
}

func (m *MockRepository) CountArticles(_ context.Context, id, storeID string) (int64, error) {
	return m.articles[key(id, storeID)], nil
}

var _ = Describe("Rack Service", func() {
	var (
		repo    *MockRepository
		service *rack.Service
		ctx     context.Context
		manager *auth.User
		trainee *auth.User
	)

	BeforeEach(func() {
		ctx = context.Background()
		repo = NewMockRepository()
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service = rack.NewService(repo, auth.NewABACPolicy(permission.NewOracle(permission.ModelStored)), nil, logger)

		manager = &auth.User{Username: "lisa", Role: permission.RoleStoreManager, StoreID: "T508"}
		trainee = &auth.User{Username: "tom", Role: permission.RoleTrainee, StoreID: "T508"}

		repo.racks[key("A-1", "T508")] = &rackDatamodel.ShelfRack{ID: "A-1", RowID: "A", RackID: "1", StoreID: "T508"}
		repo.racks[key("A-1", "T601")] = &rackDatamodel.ShelfRack{ID: "A-1", RowID: "A", RackID: "1", StoreID: "T601"}
	})

	It("should scope the list to the manager's store", func() {
		racks, err := service.List(ctx, manager, "")

		Expect(err).NotTo(HaveOccurred())
		Expect(racks).To(HaveLen(1))
		Expect(racks[0].StoreID).To(Equal("T508"))
	})

	It("should forbid listing another store", func() {
		_, err := service.List(ctx, manager, "T601")

		Expect(errors.Is(err, apperrors.ErrForeignStore)).To(BeTrue())
	})

	It("should create a rack with a composed id and renumbered shelves", func() {
		// Given
		in := rack.Rack{RowID: "b", RackID: "2", StoreID: "T508", Shelves: []rack.Shelf{{Description: "one"}, {Description: "two"}}}

		// When
		created, err := service.Create(ctx, manager, in)

		// Then
		Expect(err).NotTo(HaveOccurred())
		Expect(created.ID).To(Equal("B-2"))
		Expect(created.Shelves[1].ShelfNumber).To(Equal(2))
	})

	It("should reject a duplicate rack", func() {
		_, err := service.Create(ctx, manager, rack.Rack{RowID: "A", RackID: "1", StoreID: "T508"})

		Expect(errors.Is(err, apperrors.ErrDuplicateKey)).To(BeTrue())
		Expect(repo.createCalls).To(Equal(0))
	})

	It("should forbid a trainee from creating racks", func() {
		_, err := service.Create(ctx, trainee, rack.Rack{RowID: "C", RackID: "1", StoreID: "T508"})

		Expect(errors.Is(err, apperrors.ErrInsufficientPermission)).To(BeTrue())
	})

	It("should refuse to delete a rack that holds articles", func() {
		repo.articles[key("A-1", "T508")] = 2

		err := service.Delete(ctx, manager, "A-1", "T508")

		Expect(errors.Is(err, apperrors.ErrHasDependents)).To(BeTrue())
		Expect(repo.deleteCalls).To(Equal(0))
	})

	It("should not let the key change on update", func() {
		_, err := service.Update(ctx, manager, "A-1", rack.Rack{RowID: "Z", RackID: "9", StoreID: "T508"})

		appErr, ok := apperrors.IsAppError(err)
		Expect(ok).To(BeTrue())
		Expect(appErr.Type).To(Equal(apperrors.ErrorTypeValidation))
	})
})
