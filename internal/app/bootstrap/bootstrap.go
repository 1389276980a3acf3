package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	escrowservice "covenant/contexts/finance-core/escrow-service"
	"covenant/contexts/finance-core/escrow-service/adapters/memory"
	postgresadapter "covenant/contexts/finance-core/escrow-service/adapters/postgres"
	"covenant/contexts/finance-core/escrow-service/application/workers"
	"covenant/contexts/finance-core/escrow-service/domain/entities"
	contractsv1 "covenant/contracts/gen/events/v1"
	"covenant/internal/platform/config"
	"covenant/internal/platform/db"
	"covenant/internal/platform/httpserver"
	"covenant/internal/platform/messaging"
)

// Package bootstrap is the composition root.
// Keep construction/wiring here so module code stays framework-agnostic.

const auditConsumerGroup = "escrow-audit-cg"

type APIApp struct {
	server       *httpserver.Server
	database     *db.Database
	bus          *messaging.Bus
	outboxRelay  *workers.OutboxRelay
	pollInterval time.Duration
	logger       *slog.Logger
}

type WorkerApp struct {
	database     *db.Database
	bus          *messaging.Bus
	outboxRelay  workers.OutboxRelay
	pollInterval time.Duration
	logger       *slog.Logger
}

// escrowRuntime is one wired escrow module plus what it runs on.
type escrowRuntime struct {
	module   escrowservice.Module
	database *db.Database
}

func BuildAPI() (*APIApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("service", cfg.ServiceName, "process", "api")
	runtime, err := buildEscrowRuntime(context.Background(), cfg, logger)
	if err != nil {
		return nil, err
	}

	app := &APIApp{
		server:       httpserver.New(runtime.module, logger, normalizeAddr(cfg.HTTPPort)),
		database:     runtime.database,
		pollInterval: cfg.Outbox.PollInterval,
		logger:       logger,
	}
	// The memory outbox is private to this process, so the API relays it.
	if runtime.database == nil {
		bus := messaging.NewBus(cfg.KafkaBrokers, logger)
		relay := runtime.module.OutboxRelay
		relay.Publisher = bus
		app.bus = bus
		app.outboxRelay = &relay
	}
	return app, nil
}

func BuildWorker() (*WorkerApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("service", cfg.ServiceName, "process", "worker")
	if cfg.StoreBackend == config.StoreMemory {
		return nil, errors.New("worker needs a shared store: set STORE_BACKEND to postgres or mysql")
	}

	runtime, err := buildEscrowRuntime(context.Background(), cfg, logger)
	if err != nil {
		return nil, err
	}

	bus := messaging.NewBus(cfg.KafkaBrokers, logger)
	relay := runtime.module.OutboxRelay
	relay.Publisher = bus
	return &WorkerApp{
		database:     runtime.database,
		bus:          bus,
		outboxRelay:  relay,
		pollInterval: cfg.Outbox.PollInterval,
		logger:       logger,
	}, nil
}

// OpenRepository connects the configured SQL store for operator commands.
func OpenRepository(cfg config.Config, logger *slog.Logger) (*postgresadapter.Repository, *db.Database, error) {
	var dsn string
	switch cfg.StoreBackend {
	case config.StorePostgres:
		dsn = cfg.PostgresDSN
	case config.StoreMySQL:
		dsn = cfg.MySQLDSN
	default:
		return nil, nil, fmt.Errorf("store backend %q has no database", cfg.StoreBackend)
	}

	database, err := db.Connect(cfg.StoreBackend, dsn)
	if err != nil {
		return nil, nil, err
	}
	return postgresadapter.NewRepository(database.DB, logger), database, nil
}

func buildEscrowRuntime(ctx context.Context, cfg config.Config, logger *slog.Logger) (escrowRuntime, error) {
	seed := ProjectsFromConfig(cfg.Projects)

	if cfg.StoreBackend == config.StoreMemory {
		store := memory.NewStore(seed)
		module := escrowservice.NewModule(escrowservice.Dependencies{
			Escrows:            store,
			Projects:           store,
			Outbox:             store,
			Clock:              store,
			IDGenerator:        store,
			DefaultCurrency:    cfg.Escrow.DefaultCurrency,
			MilestoneDueWindow: cfg.Escrow.MilestoneDueWindow,
			OutboxBatchSize:    cfg.Outbox.BatchSize,
			Logger:             logger,
		})
		module.Store = store
		return escrowRuntime{module: module}, nil
	}

	repo, database, err := OpenRepository(cfg, logger)
	if err != nil {
		return escrowRuntime{}, err
	}
	for _, project := range seed {
		if err := repo.UpsertProject(ctx, project); err != nil {
			_ = database.Close()
			return escrowRuntime{}, fmt.Errorf("seed project %s: %w", project.ProjectID, err)
		}
	}

	module := escrowservice.NewModule(escrowservice.Dependencies{
		Escrows:            repo,
		Projects:           repo,
		Outbox:             repo,
		Clock:              postgresadapter.SystemClock{},
		IDGenerator:        postgresadapter.UUIDGenerator{},
		DefaultCurrency:    cfg.Escrow.DefaultCurrency,
		MilestoneDueWindow: cfg.Escrow.MilestoneDueWindow,
		OutboxBatchSize:    cfg.Outbox.BatchSize,
		Logger:             logger,
	})
	return escrowRuntime{module: module, database: database}, nil
}

func ProjectsFromConfig(seeds []config.ProjectSeed) []entities.Project {
	projects := make([]entities.Project, 0, len(seeds))
	for _, seed := range seeds {
		projects = append(projects, entities.Project{
			ProjectID:      strings.TrimSpace(seed.ProjectID),
			ClientID:       strings.TrimSpace(seed.ClientID),
			WorkerID:       strings.TrimSpace(seed.WorkerID),
			BudgetCurrency: strings.ToUpper(strings.TrimSpace(seed.BudgetCurrency)),
		})
	}
	return projects
}

func (a *APIApp) Run(ctx context.Context) error {
	a.logger.Info("api app started",
		"event", "bootstrap_api_started",
		"module", "internal/app/bootstrap",
		"layer", "platform",
	)
	if a.outboxRelay != nil {
		if err := a.bus.Subscribe(ctx, workers.EscrowEventsTopic, auditConsumerGroup, auditEscrowEvent(a.logger)); err != nil {
			return err
		}
		go runRelayLoop(ctx, *a.outboxRelay, a.pollInterval, a.logger)
	}
	return a.server.Start(ctx)
}

func (a *APIApp) Close() error {
	return a.database.Close()
}

func (w *WorkerApp) Run(ctx context.Context) error {
	if err := w.bus.Subscribe(ctx, workers.EscrowEventsTopic, auditConsumerGroup, auditEscrowEvent(w.logger)); err != nil {
		return err
	}

	w.logger.Info("worker app started",
		"event", "bootstrap_worker_started",
		"module", "internal/app/bootstrap",
		"layer", "platform",
		"poll_interval", w.pollInterval.String(),
	)
	runRelayLoop(ctx, w.outboxRelay, w.pollInterval, w.logger)
	return nil
}

func (w *WorkerApp) Close() error {
	return w.database.Close()
}

// auditEscrowEvent records every escrow transition that reached the bus.
func auditEscrowEvent(logger *slog.Logger) func(context.Context, contractsv1.Envelope) error {
	return func(_ context.Context, event contractsv1.Envelope) error {
		var data struct {
			Status  string `json:"status"`
			Version int64  `json:"version"`
			ActorID string `json:"actor_id"`
		}
		if err := event.DecodeData(&data); err != nil {
			logger.Warn("escrow event payload unreadable",
				"event", "escrow_event_payload_invalid",
				"module", "internal/app/bootstrap",
				"layer", "platform",
				"event_id", event.EventID,
				"error", err.Error(),
			)
			return nil
		}
		logger.Info("escrow event relayed",
			"event", "escrow_event_relayed",
			"module", "internal/app/bootstrap",
			"layer", "platform",
			"event_id", event.EventID,
			"event_type", event.EventType,
			"escrow_id", event.PartitionKey,
			"escrow_status", data.Status,
			"escrow_version", data.Version,
			"actor_id", data.ActorID,
		)
		return nil
	}
}

// runRelayLoop drains the outbox every interval. A failed cycle is logged by
// the relay and retried on the next tick.
func runRelayLoop(ctx context.Context, relay workers.OutboxRelay, interval time.Duration, logger *slog.Logger) {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if _, err := relay.RunOnce(ctx); err != nil && ctx.Err() == nil {
			logger.Warn("outbox relay cycle failed",
				"event", "bootstrap_outbox_cycle_failed",
				"module", "internal/app/bootstrap",
				"layer", "platform",
				"error", err.Error(),
			)
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func normalizeAddr(port string) string {
	value := strings.TrimSpace(port)
	if value == "" {
		return ":8080"
	}
	if strings.HasPrefix(value, ":") {
		return value
	}
	return ":" + value
}
