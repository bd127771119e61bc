// Package main provides the Conveyor API server implementation.
package main

import (
	"log/slog"
	"strconv"
	"time"

	"github.com/calheira/conveyor/pkg/eventbus"
	"github.com/calheira/conveyor/pkg/persistence"
	"github.com/calheira/conveyor/pkg/registry"
	"github.com/calheira/conveyor/pkg/services"
	"github.com/calheira/conveyor/pkg/web"
	"github.com/calheira/conveyor/pkg/workflow"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	"github.com/gofiber/fiber/v3/middleware/logger"
	"go.opentelemetry.io/otel/trace"
)

type API struct {
	logger      *slog.Logger
	persistence persistence.Persistence
	registry    *registry.Registry
	eventBus    eventbus.EventBus

	// Deadline bounds every execution's wall-clock time; zero disables it.
	Deadline time.Duration

	// Tracer, when set, produces spans per execution and per node.
	Tracer trace.Tracer
}

func NewAPI(
	logger *slog.Logger,
	persistence persistence.Persistence,
	registry *registry.Registry,
	eventBus eventbus.EventBus,
) *API {
	return &API{
		logger:      logger,
		persistence: persistence,
		registry:    registry,
		eventBus:    eventBus,
	}
}

func (a *API) App() *fiber.App {
	opts := []workflow.ExecutorOption{
		workflow.WithEventPublisher(a.eventBus),
	}

	if a.Deadline > 0 {
		opts = append(opts, workflow.WithDeadline(a.Deadline))
	}

	if a.Tracer != nil {
		opts = append(opts, workflow.WithTracer(a.Tracer))
	}

	executor := workflow.NewExecutor(a.registry, a.logger, opts...)
	service := services.NewService(a.persistence, a.registry, executor, a.logger)
	handlers := web.NewAPIHandlers(service)

	app := fiber.New()
	app.Use(cors.New())
	app.Use(logger.New(logger.Config{
		DisableColors: true,
	}))

	app.Get(healthcheck.DefaultLivenessEndpoint, healthcheck.NewHealthChecker())
	app.Get(healthcheck.DefaultReadinessEndpoint, healthcheck.NewHealthChecker())

	app.Get("/", func(c fiber.Ctx) error {
		return c.SendString("Conveyor API")
	})

	handlers.RegisterRoutes(app)

	app.Get("/health", func(c fiber.Ctx) error {
		message, healthy := service.HealthCheck(c.Context())
		if !healthy {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": message})
		}

		return c.JSON(fiber.Map{"status": message})
	})

	return app
}

func (a *API) Start(port int) error {
	app := a.App()

	return app.Listen(":" + strconv.Itoa(port))
}
