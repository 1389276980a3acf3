package queries

import (
	"context"
	"log/slog"
	"strings"

	application "covenant/contexts/finance-core/escrow-service/application"
	"covenant/contexts/finance-core/escrow-service/domain/entities"
	domainerrors "covenant/contexts/finance-core/escrow-service/domain/errors"
	"covenant/contexts/finance-core/escrow-service/domain/services"
	"covenant/contexts/finance-core/escrow-service/ports"
)

type GetEscrowQuery struct {
	EscrowID string
	ActorID  string
}

type GetEscrowUseCase struct {
	Escrows ports.EscrowStore
	Logger  *slog.Logger
}

func (uc GetEscrowUseCase) Execute(ctx context.Context, query GetEscrowQuery) (entities.Escrow, error) {
	actorID := strings.TrimSpace(query.ActorID)
	escrowID := strings.TrimSpace(query.EscrowID)
	if actorID == "" {
		return entities.Escrow{}, domainerrors.ErrInvalidActorID
	}
	if escrowID == "" {
		return entities.Escrow{}, domainerrors.ErrInvalidEscrowID
	}

	escrow, err := uc.Escrows.GetByID(ctx, escrowID)
	if err != nil {
		return entities.Escrow{}, err
	}
	return authorizeRead(uc.Logger, escrow, actorID)
}

type GetEscrowByProjectQuery struct {
	ProjectID string
	ActorID   string
}

type GetEscrowByProjectUseCase struct {
	Escrows ports.EscrowStore
	Logger  *slog.Logger
}

func (uc GetEscrowByProjectUseCase) Execute(ctx context.Context, query GetEscrowByProjectQuery) (entities.Escrow, error) {
	actorID := strings.TrimSpace(query.ActorID)
	projectID := strings.TrimSpace(query.ProjectID)
	if actorID == "" {
		return entities.Escrow{}, domainerrors.ErrInvalidActorID
	}
	if projectID == "" {
		return entities.Escrow{}, domainerrors.ErrInvalidProjectID
	}

	escrow, err := uc.Escrows.GetByProject(ctx, projectID)
	if err != nil {
		return entities.Escrow{}, err
	}
	return authorizeRead(uc.Logger, escrow, actorID)
}

func authorizeRead(logger *slog.Logger, escrow entities.Escrow, actorID string) (entities.Escrow, error) {
	if err := services.Authorize(services.OperationRead, actorID, escrow); err != nil {
		application.ResolveLogger(logger).Warn("escrow read denied",
			"event", "escrow_read_denied",
			"module", "finance-core/escrow-service",
			"layer", "application",
			"escrow_id", escrow.EscrowID,
			"actor_id", actorID,
		)
		return entities.Escrow{}, err
	}
	return escrow, nil
}
