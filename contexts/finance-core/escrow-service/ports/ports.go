package ports

import (
	"context"
	"time"

	"covenant/contexts/finance-core/escrow-service/domain/entities"
	contractsv1 "covenant/contracts/gen/events/v1"
)

// Clock abstracts current time for deterministic tests.
type Clock interface {
	Now() time.Time
}

// IDGenerator abstracts UUID generation for escrows, milestones, and outbox rows.
type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}

// EscrowFilter narrows ListEscrows to escrows the actor participates in.
// An empty Role matches either side; an empty Status matches any status.
type EscrowFilter struct {
	ActorID string
	Role    entities.Role
	Status  entities.EscrowStatus
}

// EscrowStore is the durable boundary for escrow aggregates.
// Create and Commit persist the aggregate together with its outbox envelopes.
type EscrowStore interface {
	Create(ctx context.Context, escrow entities.Escrow, events []EventEnvelope) error
	GetByID(ctx context.Context, escrowID string) (entities.Escrow, error)
	GetByProject(ctx context.Context, projectID string) (entities.Escrow, error)
	List(ctx context.Context, filter EscrowFilter) ([]entities.Escrow, error)

	// LoadForUpdate returns a private copy plus the version Commit must match.
	LoadForUpdate(ctx context.Context, escrowID string) (entities.Escrow, int64, error)
	// Commit fails with ErrStaleVersion when another writer committed first.
	Commit(ctx context.Context, escrow entities.Escrow, expectedVersion int64, events []EventEnvelope) error
}

// ProjectDirectory is the read-only view of the external project lifecycle.
type ProjectDirectory interface {
	GetProject(ctx context.Context, projectID string) (entities.Project, error)
	LinkEscrow(ctx context.Context, projectID string, escrowID string) error
}

// ProjectRegistry feeds the directory read model from project lifecycle sync.
type ProjectRegistry interface {
	UpsertProject(ctx context.Context, project entities.Project) error
}

type EventEnvelope = contractsv1.Envelope

type OutboxMessage struct {
	OutboxID     string
	EventType    string
	PartitionKey string
	Payload      []byte
	CreatedAt    time.Time
}

type OutboxRepository interface {
	ListPendingOutbox(ctx context.Context, limit int) ([]OutboxMessage, error)
	MarkOutboxPublished(ctx context.Context, outboxID string, publishedAt time.Time) error
}

type EventPublisher interface {
	Publish(ctx context.Context, topic string, event EventEnvelope) error
}
