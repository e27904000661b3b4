package api

import (
	"context"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	swagger "github.com/go-swagno/swagno-fiber/swagger"

	"github.com/saturnino-fabrica-de-software/presenca/internal/api/docs"
	"github.com/saturnino-fabrica-de-software/presenca/internal/api/handler"
	"github.com/saturnino-fabrica-de-software/presenca/internal/api/middleware"
	"github.com/saturnino-fabrica-de-software/presenca/internal/ws"
)

type Dependencies struct {
	Service handler.AttendanceService
	// Store backs the readiness probe. Nil is always ready.
	Store handler.Pinger
	// Hub serves the operator feed. The router runs it until Shutdown.
	Hub *ws.Hub
	// CaptureRateLimit is the number of capture requests per minute and
	// client IP. Zero uses the middleware default.
	CaptureRateLimit int
}

type Router struct {
	app         *fiber.App
	logger      *slog.Logger
	deps        *Dependencies
	rateLimiter *middleware.RateLimiter
	cancelHub   context.CancelFunc
}

func NewRouter(logger *slog.Logger, deps *Dependencies) *Router {
	app := fiber.New(fiber.Config{
		ErrorHandler: middleware.ErrorHandler(logger),
		AppName:      "Presenca API",
	})

	return &Router{
		app:    app,
		logger: logger,
		deps:   deps,
	}
}

func (r *Router) Setup() {
	r.app.Use(requestid.New())
	r.app.Use(middleware.Logger(r.logger))
	r.app.Use(middleware.Recover(r.logger))
	r.app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept",
	}))

	sw := docs.NewSwagger()
	swagger.SwaggerHandler(r.app, sw.MustToJson())

	var store handler.Pinger
	if r.deps != nil {
		store = r.deps.Store
	}
	healthHandler := handler.NewHealthHandler(store)
	r.app.Get("/health", healthHandler.Health)
	r.app.Get("/ready", healthHandler.Ready)

	if r.deps == nil {
		return
	}

	v1 := r.app.Group("/v1")

	limiterConfig := middleware.DefaultRateLimiterConfig()
	if r.deps.CaptureRateLimit > 0 {
		limiterConfig.Max = r.deps.CaptureRateLimit
	}
	limiterConfig.Window = time.Minute
	r.rateLimiter = middleware.NewRateLimiter(limiterConfig)
	limitCaptures := r.rateLimiter.Handler()

	h := handler.NewAttendanceHandler(r.deps.Service, r.logger)

	v1.Post("/users", limitCaptures, h.Register)
	v1.Get("/users", h.ListUsers)
	v1.Get("/users/:key", h.GetUser)

	v1.Post("/attendance", limitCaptures, h.Mark)
	v1.Get("/attendance", h.Records)
	v1.Get("/attendance/summary", h.Summary)

	if r.deps.Hub != nil {
		hubCtx, hubCancel := context.WithCancel(context.Background())
		r.cancelHub = hubCancel
		go r.deps.Hub.Run(hubCtx)

		v1.Get("/ws", ws.UpgradeMiddleware(), ws.Handler(r.deps.Hub, r.logger))
	}
}

func (r *Router) App() *fiber.App {
	return r.app
}

func (r *Router) Listen(addr string) error {
	return r.app.Listen(addr)
}

func (r *Router) Shutdown() error {
	if r.cancelHub != nil {
		r.cancelHub()
	}

	if r.rateLimiter != nil {
		r.rateLimiter.Stop()
	}

	return r.app.Shutdown()
}
