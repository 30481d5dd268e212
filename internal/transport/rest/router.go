package rest

import (
	"log/slog"
	"net/http"

	"github.com/frahmantamala/warehouse-management/internal/activity"
	"github.com/frahmantamala/warehouse-management/internal/announcement"
	"github.com/frahmantamala/warehouse-management/internal/article"
	"github.com/frahmantamala/warehouse-management/internal/audit"
	"github.com/frahmantamala/warehouse-management/internal/auth"
	"github.com/frahmantamala/warehouse-management/internal/permission"
	"github.com/frahmantamala/warehouse-management/internal/rack"
	"github.com/frahmantamala/warehouse-management/internal/store"
	"github.com/frahmantamala/warehouse-management/internal/task"
	"github.com/frahmantamala/warehouse-management/internal/transport/middleware"
	"github.com/frahmantamala/warehouse-management/internal/transport/swagger"
	"github.com/frahmantamala/warehouse-management/internal/user"
	"github.com/go-chi/chi"
)

// Handlers groups everything RegisterAllRoutes mounts. Nil members are skipped.
type Handlers struct {
	Health       *HealthHandler
	Auth         *auth.Handler
	RBAC         *auth.RBACAuthorization
	User         *user.Handler
	Store        *store.Handler
	Rack         *rack.Handler
	Article      *article.Handler
	Task         *task.Handler
	Announcement *announcement.Handler
	Audit        *audit.Handler
	Activity     *activity.Handler
}

// Options carries the cross-cutting pieces the router wires in front of handlers.
type Options struct {
	AllowedOrigins string
	LoginLimiter   *middleware.RateLimiter
	Metrics        *middleware.Metrics
	MetricsPath    string
	MetricsHandler http.Handler
	OpenAPI        *swagger.Document
}

func RegisterAllRoutes(router *chi.Mux, h Handlers, opts Options, logger *slog.Logger) {
	router.Use(middleware.RequestID)
	router.Use(middleware.RecoveryMiddleware(logger))
	router.Use(middleware.CORS(opts.AllowedOrigins))
	if opts.Metrics != nil {
		router.Use(opts.Metrics.Middleware)
	}
	router.Use(middleware.LoggingMiddleware(logger))

	if opts.OpenAPI != nil {
		router.Method(http.MethodGet, swagger.SpecPath, opts.OpenAPI)
		router.Handle("/swagger/*", swagger.Handler())
	}
	if opts.MetricsHandler != nil {
		router.Method(http.MethodGet, opts.MetricsPath, opts.MetricsHandler)
	}

	if h.Health != nil {
		router.Get("/health", h.Health.healthCheckHandler)
		router.Get("/ping", h.Health.pingHandler)
	}

	router.Route("/api", func(r chi.Router) {
		// public, throttled per client IP
		r.Group(func(pub chi.Router) {
			if opts.LoginLimiter != nil {
				pub.Use(middleware.RateLimit(opts.LoginLimiter))
			}
			if h.Auth != nil {
				pub.Post("/login", h.Auth.Login)
			}
			if h.User != nil {
				pub.Post("/init-db", h.User.InitDB)
			}
		})

		if h.Auth == nil {
			return
		}

		r.Group(func(pr chi.Router) {
			pr.Use(h.Auth.AuthMiddleware)
			pr.Use(middleware.UserContext)

			pr.Post("/logout", h.Auth.Logout)
			pr.Get("/me", h.Auth.Me)

			if h.User != nil {
				pr.Route("/users", func(ur chi.Router) {
					ur.Get("/", h.User.ListUsers)
					ur.Post("/", h.User.CreateUser)
					ur.Get("/{username}", h.User.GetUser)
					ur.Put("/{username}", h.User.UpdateUser)
					ur.Delete("/{username}", h.User.DeleteUser)
					ur.Put("/{username}/password", h.User.ChangePassword)
				})
			}

			if h.Store != nil {
				pr.Route("/stores", func(sr chi.Router) {
					sr.Get("/", h.Store.ListStores)
					sr.Post("/", h.Store.CreateStore)
					sr.Get("/{id}", h.Store.GetStore)
					sr.Put("/{id}", h.Store.UpdateStore)
					sr.Delete("/{id}", h.Store.DeleteStore)
				})
			}

			if h.Rack != nil {
				pr.Route("/racks", func(rr chi.Router) {
					rr.Get("/", h.Rack.ListRacks)
					rr.Post("/", h.Rack.CreateRack)
					rr.Get("/{id}", h.Rack.GetRack)
					rr.Put("/{id}", h.Rack.UpdateRack)
					rr.Delete("/{id}", h.Rack.DeleteRack)
				})
			}

			if h.Article != nil {
				pr.Route("/articles", func(ar chi.Router) {
					ar.Get("/", h.Article.ListArticles)
					ar.Post("/", h.Article.CreateArticle)
					ar.Get("/{id}/{storeId}", h.Article.GetArticle)
					ar.Put("/{id}/{storeId}", h.Article.UpdateArticle)
					ar.Delete("/{id}/{storeId}", h.Article.DeleteArticle)
				})
				pr.Route("/global-articles", func(gr chi.Router) {
					gr.Get("/", h.Article.ListGlobalArticles)
					gr.Post("/", h.Article.CreateGlobalArticle)
					gr.Get("/{id}", h.Article.GetGlobalArticle)
					gr.Put("/{id}", h.Article.UpdateGlobalArticle)
					gr.Delete("/{id}", h.Article.DeleteGlobalArticle)
				})
			}

			if h.Task != nil {
				pr.Route("/tasks", func(tr chi.Router) {
					tr.Get("/", h.Task.ListTasks)
					tr.Post("/", h.Task.CreateTask)
					tr.Get("/{id}", h.Task.GetTask)
					tr.Put("/{id}", h.Task.UpdateTask)
					tr.Delete("/{id}", h.Task.DeleteTask)
				})
			}

			if h.Announcement != nil {
				pr.Route("/announcements", func(nr chi.Router) {
					nr.Get("/", h.Announcement.ListAnnouncements)
					nr.Post("/", h.Announcement.CreateAnnouncement)
					nr.Get("/{id}", h.Announcement.GetAnnouncement)
					nr.Put("/{id}", h.Announcement.UpdateAnnouncement)
					nr.Delete("/{id}", h.Announcement.DeleteAnnouncement)
				})
			}

			if h.Audit != nil {
				pr.Route("/audit-templates", func(ar chi.Router) {
					ar.Get("/", h.Audit.ListTemplates)
					ar.Post("/", h.Audit.CreateTemplate)
					ar.Get("/{id}", h.Audit.GetTemplate)
					ar.Put("/{id}", h.Audit.UpdateTemplate)
					ar.Delete("/{id}", h.Audit.DeleteTemplate)
				})
			}

			if h.Activity != nil {
				if h.RBAC != nil {
					pr.With(h.RBAC.Middleware(permission.LogView)).Get("/activity", h.Activity.ListActivity)
					pr.With(h.RBAC.RequireAdmin()).Delete("/activity", h.Activity.ClearActivity)
				} else {
					pr.Get("/activity", h.Activity.ListActivity)
					pr.Delete("/activity", h.Activity.ClearActivity)
				}
			}
		})
	})
}
