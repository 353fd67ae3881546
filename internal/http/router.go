package http

import (
	"log/slog"
	"net/http"
	"sync/atomic"

	"github.com/geocoder89/eventreg/internal/config"
	"github.com/geocoder89/eventreg/internal/http/handlers"
	"github.com/geocoder89/eventreg/internal/http/middlewares"
	"github.com/geocoder89/eventreg/internal/observability"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

// Service is everything the routes call into; *service.EventService satisfies it.
type Service interface {
	handlers.EventsService
	handlers.RegistrationService
}

type Dependencies struct {
	Service Service
	// Prom and Gatherer are optional; without them /metrics is not mounted.
	Prom     *observability.Prom
	Gatherer prometheus.Gatherer
	// Limiter guards the write routes; nil disables rate limiting.
	Limiter middlewares.Limiter
	// Ready lists what /readyz pings.
	Ready map[string]handlers.Pinger
	// Draining, once set, makes /readyz report 503.
	Draining *atomic.Bool
}

func NewRouter(cfg config.Config, log *slog.Logger, deps Dependencies) *gin.Engine {
	r := gin.New()

	// middleware
	r.Use(gin.CustomRecovery(func(c *gin.Context, recovered any) {
		log.ErrorContext(c.Request.Context(), "panic recovered",
			"panic", recovered,
			"request_id", middlewares.RequestIDFrom(c),
		)
		handlers.RespondError(c, http.StatusInternalServerError, "internal_error", "internal error", nil)
	}))
	r.Use(otelgin.Middleware(cfg.ServiceName))
	r.Use(middlewares.RequestID())
	r.Use(middlewares.RequestLogger(log))
	if deps.Prom != nil {
		r.Use(deps.Prom.GinHandleMiddleware())
	}
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddleware(cfg.CORSAllowedOrigins))
	r.Use(middlewares.Timeout(cfg.RequestTimeout))
	r.Use(middlewares.MaxBodyBytes(cfg.MaxBodyBytes))
	r.Use(middlewares.RequireJSON())

	r.NoRoute(func(c *gin.Context) {
		handlers.RespondError(c, http.StatusNotFound, "route_not_found", "Route not found", nil)
	})

	// health
	h := handlers.NewHealthHandler(deps.Ready, deps.Draining)
	r.GET("/healthz", h.Healthz)
	r.GET("/readyz", h.Readyz)

	if deps.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})))
	}

	// writes are rate limited per client IP
	write := []gin.HandlerFunc{}
	if deps.Limiter != nil {
		write = append(write, middlewares.RateLimit(deps.Limiter, deps.Prom, log, middlewares.KeyByIP))
	}

	// Wire up handlers
	eventsHandler := handlers.NewEventsHandler(deps.Service)
	registrationHandler := handlers.NewRegistrationHandler(deps.Service, deps.Prom)

	events := r.Group("/events")
	events.POST("", append(write, eventsHandler.CreateEvent)...)
	events.GET("", eventsHandler.ListEvents)
	events.GET("/:id", eventsHandler.GetEventByID)
	events.GET("/:id/stats", eventsHandler.Stats)
	events.POST("/:id/cancel", append(write, eventsHandler.CancelEvent)...)
	// event registration route
	events.POST("/:id/register", append(write, registrationHandler.Register)...)

	return r
}
