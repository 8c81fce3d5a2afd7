// Package main provides the TabFlow API server implementation.
package main

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	"github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/tabflow/tabflow/pkg/eventbus"
	"github.com/tabflow/tabflow/pkg/flow"
	"github.com/tabflow/tabflow/pkg/history"
	"github.com/tabflow/tabflow/pkg/persistence"
	"github.com/tabflow/tabflow/pkg/services"
	"github.com/tabflow/tabflow/pkg/store"
	"github.com/tabflow/tabflow/pkg/web"
)

type API struct {
	logger       *slog.Logger
	persistence  persistence.Persistence
	historyLimit int
	debounce     time.Duration
}

func NewAPI(
	logger *slog.Logger,
	persistence persistence.Persistence,
	historyLimit int,
	debounce time.Duration,
) *API {
	return &API{
		logger:       logger,
		persistence:  persistence,
		historyLimit: historyLimit,
		debounce:     debounce,
	}
}

func (a *API) App(ctx context.Context) (*fiber.App, error) {
	dataStore := store.NewStore(a.persistence, a.logger)
	dataStore.Load(ctx)

	bus := eventbus.NewGoChannelEventBus(a.logger)
	board := flow.NewBoard(a.logger, bus)

	manager := history.NewManager(a.historyLimit, a.debounce)
	manager.Bind(bus)

	if err := bus.Subscribe(ctx); err != nil {
		return nil, err
	}

	tableService := services.NewTables(dataStore)
	flowService := services.NewFlows(board, manager)
	transferService := services.NewTransfer(dataStore, board)

	handlers := web.NewAPIHandlers(tableService, flowService, transferService)

	app := fiber.New()
	app.Use(cors.New())
	app.Use(logger.New(logger.Config{
		DisableColors: true,
	}))

	app.Get(healthcheck.DefaultLivenessEndpoint, healthcheck.NewHealthChecker())
	app.Get(healthcheck.DefaultReadinessEndpoint, healthcheck.NewHealthChecker())

	app.Get("/", func(c fiber.Ctx) error {
		return c.SendString("TabFlow API")
	})

	t := app.Group("/tables")
	t.Get("/", handlers.GetTables)
	t.Post("/", handlers.CreateTable)
	t.Get("/:id", handlers.GetTable)
	t.Patch("/:id", handlers.UpdateTable)
	t.Delete("/:id", handlers.DeleteTable)

	t.Post("/:id/rows", handlers.AddRow)
	t.Patch("/:id/rows/:rowId", handlers.UpdateRow)
	t.Delete("/:id/rows/:rowId", handlers.DeleteRow)

	t.Get("/:id/export.csv", handlers.ExportCSV)
	t.Post("/:id/import.csv", handlers.ImportCSV)

	r := app.Group("/relationships")
	r.Get("/", handlers.GetRelationships)
	r.Post("/", handlers.CreateRelationship)
	r.Delete("/:id", handlers.DeleteRelationship)

	tb := app.Group("/tabs")
	tb.Get("/", handlers.GetTabs)
	tb.Post("/", handlers.CreateTab)
	tb.Patch("/:id", handlers.RenameTab)
	tb.Delete("/:id", handlers.DeleteTab)
	tb.Post("/:id/activate", handlers.ActivateTab)

	tb.Post("/:id/nodes", handlers.AddNode)
	tb.Patch("/:id/nodes/:nodeId", handlers.UpdateNode)
	tb.Patch("/:id/nodes/:nodeId/position", handlers.MoveNode)
	tb.Delete("/:id/nodes/:nodeId", handlers.DeleteNode)
	tb.Post("/:id/nodes/:nodeId/script", handlers.GenerateScript)

	tb.Post("/:id/edges", handlers.Connect)
	tb.Delete("/:id/edges/:edgeId", handlers.DeleteEdge)

	tb.Post("/:id/undo", handlers.Undo)
	tb.Post("/:id/redo", handlers.Redo)

	app.Get("/export", handlers.Export)
	app.Post("/import", handlers.Import)

	app.Get("/health", handlers.HealthCheck)

	return app, nil
}

func (a *API) Start(ctx context.Context, port int) error {
	app, err := a.App(ctx)
	if err != nil {
		return err
	}

	return app.Listen(":" + strconv.Itoa(port))
}
