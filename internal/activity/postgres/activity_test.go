package postgres_test

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/frahmantamala/warehouse-management/internal/activity"
	"github.com/frahmantamala/warehouse-management/internal/activity/postgres"
	activityDatamodel "github.com/frahmantamala/warehouse-management/internal/core/datamodel/activity"
	"github.com/jmoiron/sqlx"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestActivityPostgres(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Activity Repository Suite")
}

var _ = Describe("ActivityRepository", func() {
	var (
		mock sqlmock.Sqlmock
		repo activity.RepositoryAPI
		ctx  context.Context
		cols = []string{"id", "occurred_at", "username", "action", "entity", "entity_id", "store_id", "details"}
	)

	BeforeEach(func() {
		ctx = context.Background()
		mockDB, m, err := sqlmock.New()
		Expect(err).NotTo(HaveOccurred())
		mock = m
		repo = postgres.NewActivityRepository(sqlx.NewDb(mockDB, "pgx"))
	})

	AfterEach(func() {
		Expect(mock.ExpectationsWereMet()).To(Succeed())
	})

	It("should insert an entry with named parameters", func() {
		// Given
		at := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
		entry := &activityDatamodel.Entry{
			ID: "e-1", OccurredAt: at, Username: "lisa", Action: "article.created",
			Entity: "article", EntityID: "A1", StoreID: "T508", Details: "Pallet",
		}
		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO activity_log")).
			WithArgs("e-1", at, "lisa", "article.created", "article", "A1", "T508", "Pallet").
			WillReturnResult(sqlmock.NewResult(0, 1))

		// When
		err := repo.Insert(ctx, entry)

		// Then
		Expect(err).NotTo(HaveOccurred())
	})

	It("should list every store newest first when no store is given", func() {
		at := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
		mock.ExpectQuery(regexp.QuoteMeta("FROM activity_log ORDER BY occurred_at DESC LIMIT $1")).
			WithArgs(50).
			WillReturnRows(sqlmock.NewRows(cols).
				AddRow("e-2", at.Add(time.Minute), "tom", "rack.deleted", "rack", "R1-A", "T100", "").
				AddRow("e-1", at, "lisa", "article.created", "article", "A1", "T508", "Pallet"))

		rows, err := repo.List(ctx, "", 50)

		Expect(err).NotTo(HaveOccurred())
		Expect(rows).To(HaveLen(2))
		Expect(rows[0].ID).To(Equal("e-2"))
		Expect(rows[1].StoreID).To(Equal("T508"))
	})

	It("should filter by store", func() {
		mock.ExpectQuery(regexp.QuoteMeta("WHERE store_id = $1 ORDER BY occurred_at DESC LIMIT $2")).
			WithArgs("T508", 10).
			WillReturnRows(sqlmock.NewRows(cols))

		rows, err := repo.List(ctx, "T508", 10)

		Expect(err).NotTo(HaveOccurred())
		Expect(rows).To(BeEmpty())
	})

	It("should report how many entries were cleared", func() {
		mock.ExpectExec(regexp.QuoteMeta("DELETE FROM activity_log")).
			WillReturnResult(sqlmock.NewResult(0, 7))

		n, err := repo.Clear(ctx)

		Expect(err).NotTo(HaveOccurred())
		Expect(n).To(Equal(int64(7)))
	})
})
