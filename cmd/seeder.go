package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/frahmantamala/warehouse-management/internal/article"
	"github.com/frahmantamala/warehouse-management/internal/auth"
	articleDatamodel "github.com/frahmantamala/warehouse-management/internal/core/datamodel/article"
	rackDatamodel "github.com/frahmantamala/warehouse-management/internal/core/datamodel/rack"
	storeDatamodel "github.com/frahmantamala/warehouse-management/internal/core/datamodel/store"
	userDatamodel "github.com/frahmantamala/warehouse-management/internal/core/datamodel/user"
	"github.com/frahmantamala/warehouse-management/internal/permission"
	"github.com/frahmantamala/warehouse-management/internal/rack"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample data",
	Long:  `Seed the database with demo stores, racks, a global catalog, store articles and one user per role.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig(configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		lg := initLogger(cfg)

		db, err := initDB(cfg.Database)
		if err != nil {
			return fmt.Errorf("failed to init db: %w", err)
		}
		defer db.Close()

		gdb, err := initGorm(db)
		if err != nil {
			return fmt.Errorf("failed to init gorm: %w", err)
		}

		return seed(cmd.Context(), gdb, cfg.Security.BCryptCost, clearData, lg)
	},
}

const seedPassword = "password"

var seedStores = []storeDatamodel.Store{
	{ID: "T508", Name: "Berlin Mitte"},
	{ID: "T600", Name: "Hamburg Altona"},
}

var seedRacks = []rackDatamodel.ShelfRack{
	{StoreID: "T508", RowID: "A", RackID: "1", Shelves: []rackDatamodel.Shelf{
		{ShelfNumber: 1, Description: "top"}, {ShelfNumber: 2, Description: "middle"}, {ShelfNumber: 3, Description: "bottom"},
	}},
	{StoreID: "T508", RowID: "B", RackID: "2", Shelves: []rackDatamodel.Shelf{{ShelfNumber: 1, Description: "bulk"}}},
	{StoreID: "T600", RowID: "A", RackID: "1", Shelves: []rackDatamodel.Shelf{
		{ShelfNumber: 1, Description: "top"}, {ShelfNumber: 2, Description: "bottom"},
	}},
}

var seedCatalog = []articleDatamodel.Article{
	{ID: "G-1001", Name: "Mattress 90x200"},
	{ID: "G-1002", Name: "Pillow 40x80"},
	{ID: "G-1003", Name: "Duvet 135x200"},
	{ID: "G-1004", Name: "Bed linen set"},
}

func seedArticles() []articleDatamodel.Article {
	qty := func(n int) *int { return &n }
	return []articleDatamodel.Article{
		{ID: "G-1001", StoreID: "T508", Name: "Mattress 90x200", RackID: "A-1", ShelfNumber: "1", Quantity: 12, MinQuantity: qty(4), ReplenishmentTrigger: 5},
		{ID: "G-1002", StoreID: "T508", Name: "Pillow 40x80", RackID: "A-1", ShelfNumber: "2", Quantity: 3, MinQuantity: qty(10), ReplenishmentTrigger: 8},
		{ID: "G-1003", StoreID: "T508", Name: "Duvet 135x200", RackID: "B-2", ShelfNumber: "1", Quantity: 20, HasShopFloorStock: true, ShopFloorStock: qty(2)},
		{ID: "G-1001", StoreID: "T600", Name: "Mattress 90x200", RackID: "A-1", ShelfNumber: "1", Quantity: 7, MinQuantity: qty(2)},
		{ID: "G-1004", StoreID: "T600", Name: "Bed linen set", RackID: "A-1", ShelfNumber: "2", Quantity: 0, MinQuantity: qty(5)},
	}
}

var seedUsers = []struct {
	Username string
	Email    string
	Role     permission.Role
	StoreID  string
}{
	{"admin", "admin@warehouse.local", permission.RoleAdmin, ""},
	{"mia", "mia@warehouse.local", permission.RoleStoreManager, "T508"},
	{"dan", "dan@warehouse.local", permission.RoleDeputyStoreManager, "T508"},
	{"wanda", "wanda@warehouse.local", permission.RoleWarehouseWorker, "T508"},
	{"tom", "tom@warehouse.local", permission.RoleTrainee, "T508"},
	{"hanna", "hanna@warehouse.local", permission.RoleStoreManager, "T600"},
}

func seed(ctx context.Context, db *gorm.DB, bcryptCost int, clear bool, lg *slog.Logger) error {
	if ctx == nil {
		ctx = context.Background()
	}
	hash, err := auth.HashPassword(seedPassword, bcryptCost)
	if err != nil {
		return fmt.Errorf("failed to hash seed password: %w", err)
	}

	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if clear {
			for _, table := range []string{"user_permissions", "users", "articles", "shelf_racks", "stores", "activity_log"} {
				if err := tx.Exec("DELETE FROM " + table).Error; err != nil {
					return fmt.Errorf("failed to clear %s: %w", table, err)
				}
			}
			lg.Info("cleared existing data")
		}

		skipExisting := tx.Clauses(clause.OnConflict{DoNothing: true})

		if err := skipExisting.Create(&seedStores).Error; err != nil {
			return fmt.Errorf("failed to seed stores: %w", err)
		}

		racks := make([]rackDatamodel.ShelfRack, len(seedRacks))
		copy(racks, seedRacks)
		for i := range racks {
			racks[i].ID = rack.ComposeID(racks[i].RowID, racks[i].RackID)
		}
		if err := skipExisting.Create(&racks).Error; err != nil {
			return fmt.Errorf("failed to seed racks: %w", err)
		}

		catalog := make([]articleDatamodel.Article, len(seedCatalog))
		copy(catalog, seedCatalog)
		for i := range catalog {
			catalog[i].StoreID = article.GlobalStoreID
			catalog[i].RackID = article.NoPlacement
			catalog[i].ShelfNumber = article.NoPlacement
		}
		if err := skipExisting.Create(&catalog).Error; err != nil {
			return fmt.Errorf("failed to seed global catalog: %w", err)
		}

		stock := seedArticles()
		if err := skipExisting.Create(&stock).Error; err != nil {
			return fmt.Errorf("failed to seed articles: %w", err)
		}

		for _, u := range seedUsers {
			row := userDatamodel.User{
				Username:     u.Username,
				Email:        u.Email,
				PasswordHash: hash,
				Role:         string(u.Role),
				StoreID:      u.StoreID,
				FirstLogin:   true,
			}
			res := skipExisting.Create(&row)
			if res.Error != nil {
				return fmt.Errorf("failed to seed user %s: %w", u.Username, res.Error)
			}
			if res.RowsAffected == 0 {
				lg.Info("user already exists", "username", u.Username)
				continue
			}
			lg.Info("seeded user", "username", u.Username, "role", u.Role, "store_id", u.StoreID)
		}

		grant := userDatamodel.UserPermission{Username: "tom", Permission: string(permission.AuditView)}
		if err := skipExisting.Create(&grant).Error; err != nil {
			return fmt.Errorf("failed to seed permission grant: %w", err)
		}

		lg.Info("seed complete",
			"stores", len(seedStores),
			"racks", len(racks),
			"catalog", len(catalog),
			"articles", len(stock),
			"users", len(seedUsers),
			"password", seedPassword)
		return nil
	})
}
