package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"
	"time"

	apperrors "github.com/frahmantamala/warehouse-management/internal"
	"github.com/frahmantamala/warehouse-management/internal/core/events"
	"github.com/frahmantamala/warehouse-management/internal/permission"
	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"
)

func TestAuth(t *testing.T) {
	gomega.RegisterFailHandler(ginkgo.Fail)
	ginkgo.RunSpecs(t, "Auth Module Suite")
}

// Mock UserRepository for testing
type mockUserRepository struct {
	hashes        map[string]string
	users         map[string]*User
	returnError   bool
	errorToReturn error
}

func newMockUserRepository() *mockUserRepository {
	hashedPassword, _ := bcrypt.GenerateFromPassword([]byte("correct_password"), bcrypt.MinCost)

	return &mockUserRepository{
		hashes: map[string]string{
			"admin":  string(hashedPassword),
			"worker": string(hashedPassword),
		},
		users: map[string]*User{
			"admin":  {Username: "admin", Email: "admin@example.com", Role: permission.RoleAdmin},
			"worker": {Username: "worker", Email: "worker@example.com", Role: permission.RoleWarehouseWorker, StoreID: "S1"},
		},
	}
}

func (m *mockUserRepository) GetPasswordHash(_ context.Context, username string) (string, error) {
	if m.returnError {
		return "", m.errorToReturn
	}
	if hash, ok := m.hashes[username]; ok {
		return hash, nil
	}
	return "", ErrUserNotFound
}

func (m *mockUserRepository) GetUserWithPermissions(_ context.Context, username string) (*User, error) {
	if m.returnError {
		return nil, m.errorToReturn
	}
	if u, ok := m.users[username]; ok {
		return u, nil
	}
	return nil, ErrUserNotFound
}

func (m *mockUserRepository) setError(err error) {
	m.returnError = true
	m.errorToReturn = err
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(_ context.Context, e events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.EventType())
	}
	return out
}

var _ = ginkgo.Describe("AuthService", func() {
	var (
		service   *Service
		mockRepo  *mockUserRepository
		tokenGen  *JWTTokenGenerator
		revoker   *MemoryRevoker
		publisher *recordingPublisher
		ctx       context.Context
	)

	ginkgo.BeforeEach(func() {
		ctx = context.Background()
		mockRepo = newMockUserRepository()
		tokenGen = NewJWTTokenGenerator("test-access-secret-with-enough-bytes", 15*time.Minute)
		revoker = NewMemoryRevoker()
		publisher = &recordingPublisher{}
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service = NewService(mockRepo, tokenGen, revoker, publisher, logger)
	})

	ginkgo.Describe("Authenticate", func() {
		ginkgo.Context("when credentials are valid", func() {
			ginkgo.It("should return a token and the stored user", func() {
				// Given
				dto := LoginDTO{Username: "worker", Password: "correct_password"}

				// When
				resp, err := service.Authenticate(ctx, dto)

				// Then
				gomega.Expect(err).ToNot(gomega.HaveOccurred())
				gomega.Expect(resp.Token).ToNot(gomega.BeEmpty())
				gomega.Expect(resp.User.StoreID).To(gomega.Equal("S1"))
				gomega.Expect(resp.ExpiresAt).To(gomega.BeTemporally(">", time.Now()))
			})

			ginkgo.It("should issue a token that validates back to the same user", func() {
				// Given
				resp, err := service.Authenticate(ctx, LoginDTO{Username: "admin", Password: "correct_password"})
				gomega.Expect(err).ToNot(gomega.HaveOccurred())

				// When
				claims, err := service.ValidateAccessToken(ctx, resp.Token)

				// Then
				gomega.Expect(err).ToNot(gomega.HaveOccurred())
				gomega.Expect(claims.Username).To(gomega.Equal("admin"))
				gomega.Expect(claims.ID).ToNot(gomega.BeEmpty())
			})

			ginkgo.It("should publish a session login event", func() {
				_, err := service.Authenticate(ctx, LoginDTO{Username: "worker", Password: "correct_password"})

				gomega.Expect(err).ToNot(gomega.HaveOccurred())
				gomega.Expect(publisher.types()).To(gomega.ContainElement("session.login"))
			})
		})

		ginkgo.Context("when credentials are invalid", func() {
			ginkgo.It("should reject an unknown username", func() {
				resp, err := service.Authenticate(ctx, LoginDTO{Username: "ghost", Password: "any_password"})

				gomega.Expect(resp).To(gomega.BeNil())
				gomega.Expect(errors.Is(err, apperrors.ErrInvalidCredentials)).To(gomega.BeTrue())
			})

			ginkgo.It("should reject a wrong password", func() {
				resp, err := service.Authenticate(ctx, LoginDTO{Username: "worker", Password: "wrong_password"})

				gomega.Expect(resp).To(gomega.BeNil())
				gomega.Expect(errors.Is(err, apperrors.ErrInvalidCredentials)).To(gomega.BeTrue())
				gomega.Expect(publisher.types()).To(gomega.BeEmpty())
			})
		})

		ginkgo.Context("when input validation fails", func() {
			ginkgo.It("should return a validation error for an empty username", func() {
				_, err := service.Authenticate(ctx, LoginDTO{Username: "", Password: "password"})

				appErr, ok := apperrors.IsAppError(err)
				gomega.Expect(ok).To(gomega.BeTrue())
				gomega.Expect(appErr.Type).To(gomega.Equal(apperrors.ErrorTypeValidation))
			})
		})

		ginkgo.Context("when the repository fails", func() {
			ginkgo.It("should return an internal error", func() {
				mockRepo.setError(errors.New("database down"))

				_, err := service.Authenticate(ctx, LoginDTO{Username: "worker", Password: "correct_password"})

				appErr, ok := apperrors.IsAppError(err)
				gomega.Expect(ok).To(gomega.BeTrue())
				gomega.Expect(appErr.Type).To(gomega.Equal(apperrors.ErrorTypeInternal))
			})
		})
	})

	ginkgo.Describe("ValidateAccessToken", func() {
		ginkgo.It("should reject a malformed token", func() {
			_, err := service.ValidateAccessToken(ctx, "not-a-token")

			gomega.Expect(errors.Is(err, apperrors.ErrInvalidToken)).To(gomega.BeTrue())
		})

		ginkgo.It("should reject a token signed with another secret", func() {
			other := NewJWTTokenGenerator("a-completely-different-secret-value", time.Minute)
			token, _, err := other.GenerateAccessToken(&User{Username: "admin", Role: permission.RoleAdmin})
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			_, err = service.ValidateAccessToken(ctx, token)

			gomega.Expect(errors.Is(err, apperrors.ErrInvalidToken)).To(gomega.BeTrue())
		})

		ginkgo.It("should report expired tokens", func() {
			expired := NewJWTTokenGenerator("test-access-secret-with-enough-bytes", time.Minute)
			expired.AccessTokenTTL = -time.Minute
			token, _, err := expired.GenerateAccessToken(&User{Username: "worker"})
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			_, err = service.ValidateAccessToken(ctx, token)

			gomega.Expect(errors.Is(err, apperrors.ErrTokenExpired)).To(gomega.BeTrue())
		})
	})

	ginkgo.Describe("Logout", func() {
		ginkgo.It("should revoke the token so it no longer validates", func() {
			// Given
			resp, err := service.Authenticate(ctx, LoginDTO{Username: "worker", Password: "correct_password"})
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			claims, err := service.ValidateAccessToken(ctx, resp.Token)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			// When
			err = service.Logout(ctx, claims)

			// Then
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			_, err = service.ValidateAccessToken(ctx, resp.Token)
			gomega.Expect(errors.Is(err, apperrors.ErrTokenRevoked)).To(gomega.BeTrue())
			gomega.Expect(publisher.types()).To(gomega.ContainElement("session.logout"))
		})

		ginkgo.It("should reject missing claims", func() {
			err := service.Logout(ctx, nil)

			gomega.Expect(errors.Is(err, apperrors.ErrInvalidToken)).To(gomega.BeTrue())
		})
	})

	ginkgo.Describe("GetUserWithPermissions", func() {
		ginkgo.It("should treat a deleted user as an invalid token", func() {
			_, err := service.GetUserWithPermissions(ctx, "ghost")

			gomega.Expect(errors.Is(err, apperrors.ErrInvalidToken)).To(gomega.BeTrue())
		})
	})
})

var _ = ginkgo.Describe("MemoryRevoker", func() {
	ginkgo.It("should forget entries once their ttl has passed", func() {
		// Given
		now := time.Now()
		r := NewMemoryRevoker()
		r.now = func() time.Time { return now }
		gomega.Expect(r.Revoke(context.Background(), "jti-1", time.Minute)).To(gomega.Succeed())

		// When
		revoked, _ := r.IsRevoked(context.Background(), "jti-1")
		gomega.Expect(revoked).To(gomega.BeTrue())
		now = now.Add(2 * time.Minute)

		// Then
		revoked, _ = r.IsRevoked(context.Background(), "jti-1")
		gomega.Expect(revoked).To(gomega.BeFalse())
	})
})

var _ = ginkgo.Describe("ABACPolicy", func() {
	var policy *ABACPolicy

	ginkgo.BeforeEach(func() {
		policy = NewABACPolicy(permission.NewOracle(permission.ModelStored))
	})

	ginkgo.It("should let admin act on any store", func() {
		admin := &User{Username: "admin", Role: permission.RoleAdmin}

		gomega.Expect(policy.Authorize(admin, permission.StoreDelete, "S9")).To(gomega.Succeed())
		gomega.Expect(policy.StoreScope(admin)).To(gomega.BeEmpty())
	})

	ginkgo.It("should forbid a foreign store even with the permission", func() {
		worker := &User{Username: "w", Role: permission.RoleWarehouseWorker, StoreID: "S1"}

		err := policy.Authorize(worker, permission.ArticleView, "S2")

		gomega.Expect(errors.Is(err, apperrors.ErrForeignStore)).To(gomega.BeTrue())
	})

	ginkgo.It("should forbid a missing permission in the own store", func() {
		trainee := &User{Username: "t", Role: permission.RoleTrainee, StoreID: "S1"}

		err := policy.Authorize(trainee, permission.ArticleCreate, "S1")

		gomega.Expect(errors.Is(err, apperrors.ErrInsufficientPermission)).To(gomega.BeTrue())
	})
})

var _ = ginkgo.Describe("RBACAuthorization", func() {
	var rbac *RBACAuthorization

	serve := func(mw func(http.Handler) http.Handler, u *User) int {
		h := mw(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		}))
		req := httptest.NewRequest(http.MethodGet, "/api/activity", nil)
		if u != nil {
			req = req.WithContext(ContextWithUser(req.Context(), u))
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	ginkgo.BeforeEach(func() {
		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
		rbac = NewRBACAuthorization(permission.NewOracle(permission.ModelStored), logger)
	})

	ginkgo.It("should pass a user holding the permission", func() {
		manager := &User{Username: "mia", Role: permission.RoleStoreManager, StoreID: "S1"}
		gomega.Expect(serve(rbac.Middleware(permission.LogView), manager)).To(gomega.Equal(http.StatusNoContent))
	})

	ginkgo.It("should answer 403 without the permission", func() {
		trainee := &User{Username: "tom", Role: permission.RoleTrainee, StoreID: "S1"}
		gomega.Expect(serve(rbac.Middleware(permission.LogView), trainee)).To(gomega.Equal(http.StatusForbidden))
	})

	ginkgo.It("should answer 401 when no user is bound", func() {
		gomega.Expect(serve(rbac.Middleware(permission.LogView), nil)).To(gomega.Equal(http.StatusUnauthorized))
	})

	ginkgo.It("should reserve admin routes for admins", func() {
		manager := &User{Username: "mia", Role: permission.RoleStoreManager, StoreID: "S1"}
		admin := &User{Username: "admin", Role: permission.RoleAdmin}

		gomega.Expect(serve(rbac.RequireAdmin(), manager)).To(gomega.Equal(http.StatusForbidden))
		gomega.Expect(serve(rbac.RequireAdmin(), admin)).To(gomega.Equal(http.StatusNoContent))
	})
})
