package escrowservice

import (
	"log/slog"
	"time"

	httpadapter "covenant/contexts/finance-core/escrow-service/adapters/http"
	"covenant/contexts/finance-core/escrow-service/adapters/memory"
	"covenant/contexts/finance-core/escrow-service/application/commands"
	"covenant/contexts/finance-core/escrow-service/application/queries"
	"covenant/contexts/finance-core/escrow-service/application/workers"
	"covenant/contexts/finance-core/escrow-service/domain/entities"
	"covenant/contexts/finance-core/escrow-service/ports"
)

type Module struct {
	Handler     httpadapter.Handler
	OutboxRelay workers.OutboxRelay
	Store       *memory.Store
}

type Dependencies struct {
	Escrows            ports.EscrowStore
	Projects           ports.ProjectDirectory
	Outbox             ports.OutboxRepository
	Publisher          ports.EventPublisher
	Clock              ports.Clock
	IDGenerator        ports.IDGenerator
	DefaultCurrency    string
	MilestoneDueWindow time.Duration
	OutboxBatchSize    int
	Logger             *slog.Logger
}

func NewModule(deps Dependencies) Module {
	createEscrow := commands.CreateEscrowUseCase{
		Escrows:            deps.Escrows,
		Projects:           deps.Projects,
		Clock:              deps.Clock,
		IDGenerator:        deps.IDGenerator,
		DefaultCurrency:    deps.DefaultCurrency,
		MilestoneDueWindow: deps.MilestoneDueWindow,
		Logger:             deps.Logger,
	}
	fundMilestone := commands.FundMilestoneUseCase{
		Escrows:     deps.Escrows,
		Clock:       deps.Clock,
		IDGenerator: deps.IDGenerator,
		Logger:      deps.Logger,
	}
	approveRelease := commands.ApproveReleaseUseCase{
		Escrows:     deps.Escrows,
		Clock:       deps.Clock,
		IDGenerator: deps.IDGenerator,
		Logger:      deps.Logger,
	}
	raiseDispute := commands.RaiseDisputeUseCase{
		Escrows:     deps.Escrows,
		Clock:       deps.Clock,
		IDGenerator: deps.IDGenerator,
		Logger:      deps.Logger,
	}

	return Module{
		Handler: httpadapter.Handler{
			CreateEscrow:       createEscrow,
			FundMilestone:      fundMilestone,
			ApproveRelease:     approveRelease,
			RaiseDispute:       raiseDispute,
			GetEscrow:          queries.GetEscrowUseCase{Escrows: deps.Escrows, Logger: deps.Logger},
			GetEscrowByProject: queries.GetEscrowByProjectUseCase{Escrows: deps.Escrows, Logger: deps.Logger},
			ListEscrows:        queries.ListEscrowsUseCase{Escrows: deps.Escrows, Logger: deps.Logger},
			Logger:             deps.Logger,
		},
		OutboxRelay: workers.OutboxRelay{
			Outbox:    deps.Outbox,
			Publisher: deps.Publisher,
			Clock:     deps.Clock,
			Topic:     workers.EscrowEventsTopic,
			BatchSize: deps.OutboxBatchSize,
			Logger:    deps.Logger,
		},
	}
}

// NewInMemoryModule wires every port to one memory store seeded with projects.
// The relay has no publisher until the caller sets one.
func NewInMemoryModule(seed []entities.Project, logger *slog.Logger) Module {
	store := memory.NewStore(seed)
	module := NewModule(Dependencies{
		Escrows:            store,
		Projects:           store,
		Outbox:             store,
		Clock:              store,
		IDGenerator:        store,
		DefaultCurrency:    "INR",
		MilestoneDueWindow: 30 * 24 * time.Hour,
		OutboxBatchSize:    100,
		Logger:             logger,
	})
	module.Store = store
	return module
}
