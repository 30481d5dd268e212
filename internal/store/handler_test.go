package store_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"

	"github.com/frahmantamala/warehouse-management/internal/auth"
	storeDatamodel "github.com/frahmantamala/warehouse-management/internal/core/datamodel/store"
	"github.com/frahmantamala/warehouse-management/internal/permission"
	"github.com/frahmantamala/warehouse-management/internal/store"
	storePostgres "github.com/frahmantamala/warehouse-management/internal/store/postgres"
	"github.com/frahmantamala/warehouse-management/internal/transport"
	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var _ = Describe("Store Handler Integration", func() {
	var (
		db      *gorm.DB
		handler *store.Handler
		admin   *auth.User
	)

	withUser := func(r *http.Request, u *auth.User) *http.Request {
		return r.WithContext(auth.ContextWithUser(r.Context(), u))
	}

	withID := func(r *http.Request, id string) *http.Request {
		rctx := chi.NewRouteContext()
		rctx.URLParams.Add("id", id)
		return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
	}

	BeforeEach(func() {
		var err error
		slogger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

		db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(db.AutoMigrate(&storeDatamodel.Store{})).To(Succeed())
		Expect(db.Exec("CREATE TABLE articles (id TEXT, store_id TEXT)").Error).To(Succeed())
		Expect(db.Exec("CREATE TABLE shelf_racks (id TEXT, store_id TEXT)").Error).To(Succeed())
		Expect(db.Exec("CREATE TABLE users (username TEXT, store_id TEXT)").Error).To(Succeed())

		repo := storePostgres.NewStoreRepository(db)
		policy := auth.NewABACPolicy(permission.NewOracle(permission.ModelStored))
		service := store.NewService(repo, policy, nil, slogger)
		handler = store.NewHandler(&transport.BaseHandler{Logger: slogger}, service)
		admin = &auth.User{Username: "admin", Role: permission.RoleAdmin}
	})

	It("should create a store and list it", func() {
		// Given
		body := strings.NewReader(`{"id":"T508","name":"Hamburg"}`)
		req := withUser(httptest.NewRequest(http.MethodPost, "/api/stores", body), admin)
		w := httptest.NewRecorder()

		// When
		handler.CreateStore(w, req)

		// Then
		Expect(w.Code).To(Equal(http.StatusCreated))

		w = httptest.NewRecorder()
		handler.ListStores(w, withUser(httptest.NewRequest(http.MethodGet, "/api/stores", nil), admin))
		Expect(w.Code).To(Equal(http.StatusOK))

		var stores []store.Store
		Expect(json.NewDecoder(w.Body).Decode(&stores)).To(Succeed())
		Expect(stores).To(Equal([]store.Store{{ID: "T508", Name: "Hamburg"}}))
	})

	It("should answer 409 when the store still has articles", func() {
		// Given
		Expect(db.Create(&storeDatamodel.Store{ID: "T508", Name: "Hamburg"}).Error).To(Succeed())
		Expect(db.Exec("INSERT INTO articles (id, store_id) VALUES ('A1', 'T508')").Error).To(Succeed())

		req := withID(withUser(httptest.NewRequest(http.MethodDelete, "/api/stores/T508", nil), admin), "T508")
		w := httptest.NewRecorder()

		// When
		handler.DeleteStore(w, req)

		// Then
		Expect(w.Code).To(Equal(http.StatusConflict))
		Expect(w.Body.String()).To(ContainSubstring("HAS_DEPENDENTS"))
	})

	It("should answer 403 when a manager creates a store", func() {
		manager := &auth.User{Username: "lisa", Role: permission.RoleStoreManager, StoreID: "T508"}
		req := withUser(httptest.NewRequest(http.MethodPost, "/api/stores", strings.NewReader(`{"id":"T9","name":"X"}`)), manager)
		w := httptest.NewRecorder()

		handler.CreateStore(w, req)

		Expect(w.Code).To(Equal(http.StatusForbidden))
	})

	It("should answer 401 without a user", func() {
		w := httptest.NewRecorder()

		handler.ListStores(w, httptest.NewRequest(http.MethodGet, "/api/stores", nil))

		Expect(w.Code).To(Equal(http.StatusUnauthorized))
	})
})
