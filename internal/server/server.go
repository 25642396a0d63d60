// Package server assembles the Fiber application: global middleware, the
// AI routes, storyboard jobs, the job WebSocket and the metrics endpoint.
package server

import (
	"errors"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/storyboarder/ai-service/internal/config"
	"github.com/storyboarder/ai-service/internal/handler"
	"github.com/storyboarder/ai-service/internal/middleware"
	ws "github.com/storyboarder/ai-service/internal/websocket"
	"github.com/storyboarder/ai-service/pkg/response"
)

// Deps are the collaborators the routes are wired to. Auth may be nil, in
// which case every route is open.
type Deps struct {
	Config      *config.Config
	AI          *handler.AIHandler
	Storyboards *handler.StoryboardHandler
	Health      *handler.HealthHandler
	Auth        *middleware.AuthMiddleware
	RateLimiter *middleware.RateLimiter
	Hub         *ws.Hub
}

// New builds the application.
func New(d Deps) *fiber.App {
	cfg := d.Config

	app := fiber.New(fiber.Config{
		ErrorHandler: customErrorHandler,
		BodyLimit:    cfg.Server.BodyLimit,
	})

	app.Use(recover.New())
	app.Use(requestid.New())
	logFormat := "[${time}] ${locals:requestid} ${status} - ${latency} ${method} ${path}\n"
	if cfg.Logger.Level == "debug" {
		logFormat = "[${time}] ${locals:requestid} ${status} - ${latency} ${method} ${path} ${queryParams} ${body}\n"
	}
	app.Use(logger.New(logger.Config{
		Format: logFormat,
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization",
	}))
	app.Use(middleware.Metrics())

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"timestamp": time.Now().Unix(),
		})
	})
	app.Get("/health", d.Health.Health)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	var authenticate []fiber.Handler
	if d.Auth != nil {
		authenticate = append(authenticate, d.Auth.Authenticate())
	}
	guarded := func(handlers ...fiber.Handler) []fiber.Handler {
		return append(append([]fiber.Handler{}, authenticate...), handlers...)
	}

	rl := d.RateLimiter
	app.Post("/suggest-shots", guarded(rl.SuggestLimit(cfg.RateLimit.SuggestPerMin), d.AI.SuggestShots)...)
	app.Post("/generate-panel", guarded(rl.PanelLimit(cfg.RateLimit.PanelPerMin), d.AI.GeneratePanel)...)
	app.Post("/refine-panel", guarded(rl.PanelLimit(cfg.RateLimit.PanelPerMin), d.AI.RefinePanel)...)

	app.Post("/storyboards", guarded(rl.StoryboardLimit(cfg.RateLimit.StoryboardPerHour), d.Storyboards.Start)...)
	app.Get("/storyboards/:jobId", guarded(d.Storyboards.Status)...)
	app.Get("/storyboards/:jobId/result", guarded(d.Storyboards.Result)...)
	app.Post("/storyboards/:jobId/cancel", guarded(d.Storyboards.Cancel)...)

	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/jobs/:jobId", websocket.New(func(c *websocket.Conn) {
		d.Hub.HandleConnection(c, c.Params("jobId"))
	}))

	return app
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
		message = e.Message
	}

	return response.Error(c, code, response.CodeServiceError, message, nil)
}
