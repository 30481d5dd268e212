package postgres_test

import (
	"context"
	"testing"

	authPostgres "github.com/frahmantamala/warehouse-management/internal/auth/postgres"
	userDatamodel "github.com/frahmantamala/warehouse-management/internal/core/datamodel/user"
	"github.com/frahmantamala/warehouse-management/internal/permission"
	"github.com/frahmantamala/warehouse-management/internal/user"
	userPostgres "github.com/frahmantamala/warehouse-management/internal/user/postgres"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestUserPostgres(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "User Postgres Suite")
}

var _ = Describe("User PostgreSQL Repository", func() {
	var (
		db   *gorm.DB
		repo user.Repository
		ctx  context.Context
	)

	BeforeEach(func() {
		var err error
		ctx = context.Background()
		db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(db.AutoMigrate(&userDatamodel.User{}, &userDatamodel.UserPermission{})).To(Succeed())

		repo = userPostgres.NewUserRepository(db)
		Expect(repo.Create(ctx, &userDatamodel.User{
			Username: "tom", Email: "tom@example.com", PasswordHash: "x", Role: "trainee", StoreID: "T508", FirstLogin: true,
		}, []string{"task:create", "article:create"})).To(Succeed())
	})

	It("should store grants alongside the user", func() {
		grants, err := repo.GetPermissions(ctx, "tom")

		Expect(err).NotTo(HaveOccurred())
		Expect(grants).To(Equal([]string{"article:create", "task:create"}))
	})

	It("should replace grants on update", func() {
		u, err := repo.GetByUsername(ctx, "tom")
		Expect(err).NotTo(HaveOccurred())
		u.Role = "warehouse_worker"

		Expect(repo.Update(ctx, u, []string{"log:view"})).To(Succeed())

		grants, err := repo.GetPermissions(ctx, "tom")
		Expect(err).NotTo(HaveOccurred())
		Expect(grants).To(Equal([]string{"log:view"}))
	})

	It("should clear first login when the password changes", func() {
		Expect(repo.UpdatePassword(ctx, "tom", "y")).To(Succeed())

		u, err := repo.GetByUsername(ctx, "tom")
		Expect(err).NotTo(HaveOccurred())
		Expect(u.PasswordHash).To(Equal("y"))
		Expect(u.FirstLogin).To(BeFalse())
	})

	It("should remove grants with the user", func() {
		Expect(repo.Delete(ctx, "tom")).To(Succeed())

		u, err := repo.GetByUsername(ctx, "tom")
		Expect(err).NotTo(HaveOccurred())
		Expect(u).To(BeNil())

		var n int64
		Expect(db.Model(&userDatamodel.UserPermission{}).Count(&n).Error).To(Succeed())
		Expect(n).To(BeZero())
	})

	It("should reject a duplicate email", func() {
		err := repo.Create(ctx, &userDatamodel.User{Username: "tim", Email: "tom@example.com", PasswordHash: "x", Role: "trainee"}, nil)

		Expect(err).To(HaveOccurred())
	})

	It("should serve the auth principal with parsed grants", func() {
		authRepo := authPostgres.NewRepository(db)

		u, err := authRepo.GetUserWithPermissions(ctx, "tom")

		Expect(err).NotTo(HaveOccurred())
		Expect(u.Role).To(Equal(permission.RoleTrainee))
		Expect(u.Permissions).To(ConsistOf(permission.ArticleCreate, permission.TaskCreate))
		Expect(u.FirstLogin).To(BeTrue())

		hash, err := authRepo.GetPasswordHash(ctx, "tom")
		Expect(err).NotTo(HaveOccurred())
		Expect(hash).To(Equal("x"))
	})
})
