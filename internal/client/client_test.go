package client_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	apperrors "github.com/frahmantamala/warehouse-management/internal"
	"github.com/frahmantamala/warehouse-management/internal/article"
	"github.com/frahmantamala/warehouse-management/internal/auth"
	"github.com/frahmantamala/warehouse-management/internal/client"
	"github.com/frahmantamala/warehouse-management/internal/permission"
	"github.com/frahmantamala/warehouse-management/internal/rack"
	"github.com/frahmantamala/warehouse-management/pkg/logger"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestClient(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Client Suite")
}

type recorded struct {
	method string
	uri    string
	auth   string
	body   map[string]interface{}
}

var _ = Describe("Client", func() {
	var (
		server  *httptest.Server
		c       *client.Client
		ctx     context.Context
		last    recorded
		handler http.HandlerFunc
	)

	BeforeEach(func() {
		ctx = context.Background()
		last = recorded{}
		handler = func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusNoContent) }
		server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			last = recorded{method: r.Method, uri: r.URL.RequestURI(), auth: r.Header.Get("Authorization")}
			if r.Body != nil {
				_ = json.NewDecoder(r.Body).Decode(&last.body)
			}
			handler(w, r)
		}))
		c = client.New(client.Config{BaseURL: server.URL + "/", Timeout: time.Second}, logger.Discard())
	})

	AfterEach(func() {
		server.Close()
	})

	respond := func(status int, body string) {
		handler = func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(status)
			_, _ = w.Write([]byte(body))
		}
	}

	Describe("Login", func() {
		It("should keep the token for later calls", func() {
			// Given
			respond(http.StatusOK, `{"token":"jwt-1","user":{"username":"lisa","role":"store_manager","storeId":"T508","permissions":[]}}`)

			// When
			resp, err := c.Login(ctx, "lisa", "secret123")

			// Then
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.User.Role).To(Equal(permission.RoleStoreManager))
			Expect(c.Token()).To(Equal("jwt-1"))
			Expect(last.body["username"]).To(Equal("lisa"))

			respond(http.StatusOK, `[]`)
			_, err = c.Articles().List(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(last.auth).To(Equal("Bearer jwt-1"))
		})

		It("should surface invalid credentials as an AppError", func() {
			respond(http.StatusUnauthorized, `{"error":{"type":"UNAUTHORIZED","code":"INVALID_CREDENTIALS","message":"Invalid username or password"}}`)

			_, err := c.Login(ctx, "lisa", "nope")

			Expect(errors.Is(err, apperrors.ErrInvalidCredentials)).To(BeTrue())
			Expect(client.StatusOf(err)).To(Equal(http.StatusUnauthorized))
			Expect(c.Token()).To(BeEmpty())
		})
	})

	Describe("error decoding", func() {
		It("should keep the server's code and message", func() {
			respond(http.StatusConflict, `{"error":{"type":"CONFLICT","code":"DUPLICATE_KEY","message":"article A1 already exists in T508"}}`)

			_, err := c.Articles().Create(ctx, article.Article{ID: "A1", StoreID: "T508"})

			appErr, ok := apperrors.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(apperrors.ErrCodeDuplicateKey))
			Expect(appErr.Message).To(Equal("article A1 already exists in T508"))
			Expect(appErr.StatusCode).To(Equal(http.StatusConflict))
		})

		It("should fall back to the status when the body is not an envelope", func() {
			respond(http.StatusBadGateway, `upstream down`)

			_, err := c.Stores().List(ctx)

			appErr, ok := apperrors.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.StatusCode).To(Equal(http.StatusBadGateway))
			Expect(appErr.Message).To(Equal("upstream down"))
		})

		It("should report transport failures as unavailable", func() {
			server.Close()

			_, err := c.Stores().List(ctx)

			Expect(errors.Is(err, client.ErrUnavailable)).To(BeTrue())
			Expect(client.StatusOf(err)).To(Equal(0))
		})
	})

	Describe("resource paths", func() {
		It("should address articles by id and store", func() {
			respond(http.StatusOK, `{"id":"A 1","storeId":"T508","name":"Pallet","quantity":3}`)

			out, err := c.Articles().Update(ctx, article.Article{ID: "A 1", StoreID: "T508", Name: "Pallet", Quantity: 3})

			Expect(err).NotTo(HaveOccurred())
			Expect(out.Quantity).To(Equal(3))
			Expect(last.method).To(Equal(http.MethodPut))
			Expect(last.uri).To(Equal("/api/articles/A%201/T508"))
		})

		It("should address racks by composed id with the store as query", func() {
			Expect(c.Racks().Delete(ctx, rack.Rack{RowID: "a", RackID: "3", StoreID: "T508"})).To(Succeed())

			Expect(last.method).To(Equal(http.MethodDelete))
			Expect(last.uri).To(Equal("/api/racks/A-3?storeId=T508"))
		})

		It("should clear the token on logout", func() {
			c.SetToken("jwt-1")

			Expect(c.Logout(ctx)).To(Succeed())

			Expect(last.uri).To(Equal("/api/logout"))
			Expect(c.Token()).To(BeEmpty())
		})

		It("should decode the current user", func() {
			respond(http.StatusOK, `{"username":"root","role":"admin","permissions":[]}`)

			u, err := c.Me(ctx)

			Expect(err).NotTo(HaveOccurred())
			Expect(u).To(Equal(&auth.User{Username: "root", Role: permission.RoleAdmin, Permissions: []permission.Permission{}}))
		})
	})
})
