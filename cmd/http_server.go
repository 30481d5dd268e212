package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/frahmantamala/warehouse-management/internal"
	"github.com/frahmantamala/warehouse-management/internal/activity"
	activityPostgres "github.com/frahmantamala/warehouse-management/internal/activity/postgres"
	"github.com/frahmantamala/warehouse-management/internal/announcement"
	announcementPostgres "github.com/frahmantamala/warehouse-management/internal/announcement/postgres"
	"github.com/frahmantamala/warehouse-management/internal/article"
	articlePostgres "github.com/frahmantamala/warehouse-management/internal/article/postgres"
	"github.com/frahmantamala/warehouse-management/internal/audit"
	auditPostgres "github.com/frahmantamala/warehouse-management/internal/audit/postgres"
	"github.com/frahmantamala/warehouse-management/internal/auth"
	authPostgres "github.com/frahmantamala/warehouse-management/internal/auth/postgres"
	"github.com/frahmantamala/warehouse-management/internal/core/events"
	"github.com/frahmantamala/warehouse-management/internal/permission"
	"github.com/frahmantamala/warehouse-management/internal/rack"
	rackPostgres "github.com/frahmantamala/warehouse-management/internal/rack/postgres"
	"github.com/frahmantamala/warehouse-management/internal/store"
	storePostgres "github.com/frahmantamala/warehouse-management/internal/store/postgres"
	"github.com/frahmantamala/warehouse-management/internal/task"
	taskPostgres "github.com/frahmantamala/warehouse-management/internal/task/postgres"
	"github.com/frahmantamala/warehouse-management/internal/transport"
	"github.com/frahmantamala/warehouse-management/internal/transport/middleware"
	"github.com/frahmantamala/warehouse-management/internal/transport/rest"
	"github.com/frahmantamala/warehouse-management/internal/transport/swagger"
	"github.com/frahmantamala/warehouse-management/internal/user"
	userPostgres "github.com/frahmantamala/warehouse-management/internal/user/postgres"

	"github.com/go-chi/chi"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

type Dependencies struct {
	Config  *internal.Config
	DB      *sqlx.DB
	Gorm    *gorm.DB
	Router  *chi.Mux
	Bus     *events.EventBus
	Revoker auth.TokenRevoker
	Logger  *slog.Logger
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	if err := setupRoutes(deps); err != nil {
		deps.Logger.Error("failed to set up routes", "error", err)
		os.Exit(1)
	}

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	deps.Logger.Info("Starting HTTP server", "address", addr)

	server := &http.Server{
		Addr:              addr,
		Handler:           deps.Router,
		ReadHeaderTimeout: deps.Config.Server.ReadHeaderTimeout,
		ReadTimeout:       deps.Config.Server.ReadTimeout,
		WriteTimeout:      deps.Config.Server.WriteTimeout,
		IdleTimeout:       deps.Config.Server.IdleTimeout,
	}

	// Signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		deps.Logger.Info("Received signal, shutting down...", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			deps.Logger.Error("Server shutdown error", "error", err)
		}
		if err := deps.Bus.Drain(ctx); err != nil {
			deps.Logger.Error("Event bus drain error", "error", err)
		}
		if closer, ok := deps.Revoker.(*auth.RedisRevoker); ok {
			_ = closer.Close()
		}
		if err := deps.DB.Close(); err != nil {
			deps.Logger.Error("Database close error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			deps.Logger.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}

	deps.Logger.Info("Server stopped")
}

func setupRoutes(deps *Dependencies) error {
	cfg := deps.Config
	log := deps.Logger

	oracle := permission.NewOracle(permission.Model(cfg.Permissions.Model))
	policy := auth.NewABACPolicy(oracle)
	base := transport.NewBaseHandler(log)

	authService := auth.NewService(
		authPostgres.NewRepository(deps.Gorm),
		auth.NewJWTTokenGenerator(cfg.Security.JWTSecret, cfg.Security.AccessTokenDuration),
		deps.Revoker, deps.Bus, log,
	)
	userService := user.NewService(userPostgres.NewUserRepository(deps.Gorm), policy, deps.Bus, cfg.Security.BCryptCost, log)
	storeService := store.NewService(storePostgres.NewStoreRepository(deps.Gorm), policy, deps.Bus, log)
	rackService := rack.NewService(rackPostgres.NewRackRepository(deps.Gorm), policy, deps.Bus, log)
	articleService := article.NewService(articlePostgres.NewArticleRepository(deps.Gorm), policy, deps.Bus, log)
	taskService := task.NewService(taskPostgres.NewTaskRepository(deps.Gorm), policy, deps.Bus, log)
	announcementService := announcement.NewService(announcementPostgres.NewAnnouncementRepository(deps.Gorm), policy, deps.Bus, log)
	auditService := audit.NewService(auditPostgres.NewTemplateRepository(deps.Gorm), policy, deps.Bus, log)
	activityService := activity.NewService(activityPostgres.NewActivityRepository(deps.DB), policy, log)
	activityService.RegisterEventHandlers(deps.Bus)

	health := rest.NewHealthHandler(deps.DB.DB)
	if redisRevoker, ok := deps.Revoker.(*auth.RedisRevoker); ok {
		health.AddCheck("redis", redisRevoker)
	}

	opts := rest.Options{
		AllowedOrigins: cfg.Server.AllowedOrigins,
	}
	if cfg.Security.LoginRateLimit > 0 {
		opts.LoginLimiter = middleware.NewRateLimiter(cfg.Security.LoginRateLimit, cfg.Security.LoginRateBurst)
	}
	if cfg.Observability.Metrics.Enabled {
		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		opts.Metrics = middleware.NewMetrics(reg)
		opts.MetricsPath = cfg.Observability.Metrics.Path
		opts.MetricsHandler = promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
	}
	if cfg.Server.OpenAPIPath != "" {
		doc, err := swagger.LoadSpec(context.Background(), cfg.Server.OpenAPIPath)
		if err != nil {
			return fmt.Errorf("failed to load openapi document: %w", err)
		}
		opts.OpenAPI = doc
	}

	rest.RegisterAllRoutes(deps.Router, rest.Handlers{
		Health: health,
		Auth:   auth.NewHandler(authService),
		RBAC:   auth.NewRBACAuthorization(oracle, log),
		User: user.NewHandler(base, userService, user.Bootstrap{
			Username: cfg.Security.DefaultAdminUsername,
			Password: cfg.Security.DefaultAdminPassword,
		}),
		Store:        store.NewHandler(base, storeService),
		Rack:         rack.NewHandler(base, rackService),
		Article:      article.NewHandler(base, articleService),
		Task:         task.NewHandler(base, taskService),
		Announcement: announcement.NewHandler(base, announcementService),
		Audit:        audit.NewHandler(base, auditService),
		Activity:     activity.NewHandler(base, activityService),
	}, opts, log)
	return nil
}

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	log := initLogger(config)

	db, err := initDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	gdb, err := initGorm(db)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize gorm: %w", err)
	}

	var revoker auth.TokenRevoker = auth.NewMemoryRevoker()
	if config.Redis.Enabled {
		rr, err := auth.NewRedisRevoker(config.Redis)
		if err != nil {
			_ = db.Close()
			return nil, err
		}
		revoker = rr
	} else {
		log.Warn("redis disabled; token revocation is kept in memory")
	}

	return &Dependencies{
		Config:  config,
		Logger:  log,
		DB:      db,
		Gorm:    gdb,
		Router:  chi.NewRouter(),
		Bus:     events.NewEventBus(log),
		Revoker: revoker,
	}, nil
}

// initDB initializes the database connection
func initDB(cfg internal.DatabaseConfig) (*sqlx.DB, error) {
	const driver = "pgx"

	dbConn, err := sqlx.Connect(driver, cfg.Source)
	if err != nil {
		return nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	dbConn.SetMaxIdleConns(cfg.MaxIdleConns)
	dbConn.SetMaxOpenConns(cfg.MaxOpenConns)
	dbConn.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	dbConn.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	// verify connection; close underlying *sql.DB on failure
	if err := dbConn.Ping(); err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return dbConn, nil
}

// initGorm shares the sqlx pool with gorm so both see the same connections.
func initGorm(db *sqlx.DB) (*gorm.DB, error) {
	return gorm.Open(postgres.New(postgres.Config{Conn: db.DB}), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Warn),
		TranslateError: true,
	})
}
