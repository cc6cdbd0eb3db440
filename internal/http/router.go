package http

import (
	"context"
	"log/slog"
	"time"

	"github.com/geocoder89/planhub/internal/auth"
	"github.com/geocoder89/planhub/internal/config"
	"github.com/geocoder89/planhub/internal/http/handlers"
	"github.com/geocoder89/planhub/internal/http/middlewares"
	"github.com/geocoder89/planhub/internal/observability"
	"github.com/geocoder89/planhub/internal/wizard"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

// Deps is everything the router wires into handlers. Pool may be nil in
// dev mode when the in-memory planner backs the wizard.
type Deps struct {
	Log       *slog.Logger
	Cfg       config.Config
	Pool      *pgxpool.Pool
	Sessions  *wizard.SessionManager
	Locations handlers.LocationsReader
	Users     handlers.StaffDirectory
	AuthUsers handlers.UserReader
	JWT       *auth.Manager
	Auth      *middlewares.AuthMiddleware
	Prom      *observability.Prom
	Registry  *prometheus.Registry
	PingDraft func() error
}

const maxBodyBytes = 1 << 20 // 1 MiB

func NewRouter(deps Deps) *gin.Engine {
	if deps.Cfg.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// middleware

	r.Use(gin.Recovery())
	r.Use(middlewares.RequestID())
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddleware(deps.Cfg.AllowedOrigins))
	r.Use(middlewares.RequestLogger())
	r.Use(otelgin.Middleware("planhub-api"))

	if deps.Prom != nil {
		r.Use(deps.Prom.GinHandleMiddleware())
	}

	// health

	pingDB := func() error {
		if deps.Pool == nil {
			return nil
		}

		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
		defer cancel()

		return deps.Pool.Ping(ctx)
	}

	h := handlers.NewHealthHandler(pingDB, deps.PingDraft)
	r.GET("/healthz", h.Healthz)
	r.GET("/readyz", h.Readyz)

	if deps.Registry != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{})))
	}

	// wire up handlers

	wizardHandler := handlers.NewWizardHandler(deps.Sessions, deps.Prom)
	locationsHandler := handlers.NewLocationsHandler(deps.Locations)
	usersHandler := handlers.NewUsersHandler(deps.Users)

	limiter := middlewares.NewRateLimiter(30, time.Minute)

	authHandler := handlers.NewAuthHandler(deps.AuthUsers, deps.JWT)
	r.POST("/auth/login",
		middlewares.RequireJSON(),
		middlewares.MaxBodyBytes(maxBodyBytes),
		limiter.RateLimiterMiddleware(middlewares.KeyByIP),
		authHandler.Login)

	api := r.Group("/")
	api.Use(deps.Auth.RequireAuth())
	api.Use(middlewares.MaxBodyBytes(maxBodyBytes))
	api.Use(middlewares.RequireJSON())

	api.POST("/wizard", limiter.RateLimiterMiddleware(middlewares.KeyByUserOrIP), wizardHandler.Open)
	api.GET("/wizard/:id", wizardHandler.Get)
	api.DELETE("/wizard/:id", wizardHandler.Discard)

	api.PUT("/wizard/:id/main-event", wizardHandler.SaveMainEvent)

	api.POST("/wizard/:id/sub-events", wizardHandler.AddSubEvent)
	api.PUT("/wizard/:id/sub-events/:index", wizardHandler.UpdateSubEvent)
	api.DELETE("/wizard/:id/sub-events/:index", wizardHandler.DeleteSubEvent)
	api.POST("/wizard/:id/conflict-check", wizardHandler.CheckConflict)

	api.PUT("/wizard/:id/resources", wizardHandler.SaveResources)
	api.PUT("/wizard/:id/tasks", wizardHandler.SaveTasks)

	api.GET("/wizard/:id/review", wizardHandler.Review)
	api.POST("/wizard/:id/next", wizardHandler.Next)
	api.POST("/wizard/:id/prev", wizardHandler.Prev)
	api.POST("/wizard/:id/goto", wizardHandler.Jump)
	api.POST("/wizard/:id/submit", wizardHandler.Submit)

	api.GET("/locations/available", locationsHandler.GetAvailable)
	api.GET("/locations/:id", locationsHandler.Get)

	api.GET("/users", usersHandler.List)
	api.GET("/users/:id", usersHandler.Get)

	return r
}
