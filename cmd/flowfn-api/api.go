// Package main provides the flowfn HTTP API server.
package main

import (
	"log/slog"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	"github.com/gofiber/fiber/v3/middleware/logger"

	"github.com/flowfn/flowfn/pkg/persistence"
	"github.com/flowfn/flowfn/pkg/registry"
	"github.com/flowfn/flowfn/pkg/runner"
	"github.com/flowfn/flowfn/pkg/web"
)

type API struct {
	logger   *slog.Logger
	registry *registry.Registry
	runner   *runner.Runner
	flows    persistence.FlowRepository
	validate *validator.Validate
}

func NewAPI(
	logger *slog.Logger,
	reg *registry.Registry,
	run *runner.Runner,
	flows persistence.FlowRepository,
) *API {
	return &API{
		logger:   logger,
		registry: reg,
		runner:   run,
		flows:    flows,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (a *API) App() *fiber.App {
	handlers := web.NewAPIHandlers(a.logger, a.registry, a.runner, a.flows, a.validate)

	app := fiber.New()
	app.Use(cors.New())
	app.Use(logger.New(logger.Config{
		DisableColors: true,
	}))

	app.Get(healthcheck.DefaultLivenessEndpoint, healthcheck.NewHealthChecker())
	app.Get(healthcheck.DefaultReadinessEndpoint, healthcheck.NewHealthChecker())

	app.Get("/", func(c fiber.Ctx) error {
		return c.SendString("flowfn API")
	})

	handlers.Register(app)

	return app
}

func (a *API) Start(port int) error {
	return a.App().Listen(":" + strconv.Itoa(port))
}
