package commands

import (
	"context"
	"log/slog"
	"strings"
	"time"

	application "covenant/contexts/finance-core/escrow-service/application"
	"covenant/contexts/finance-core/escrow-service/domain/entities"
	domainerrors "covenant/contexts/finance-core/escrow-service/domain/errors"
	"covenant/contexts/finance-core/escrow-service/domain/services"
	"covenant/contexts/finance-core/escrow-service/ports"
)

type RaiseDisputeCommand struct {
	EscrowID string
	ActorID  string
	Reason   string
}

type RaiseDisputeUseCase struct {
	Escrows     ports.EscrowStore
	Clock       ports.Clock
	IDGenerator ports.IDGenerator
	Logger      *slog.Logger
}

func (uc RaiseDisputeUseCase) Execute(ctx context.Context, cmd RaiseDisputeCommand) (entities.Escrow, error) {
	logger := application.ResolveLogger(uc.Logger)

	escrowID := strings.TrimSpace(cmd.EscrowID)
	actorID := strings.TrimSpace(cmd.ActorID)
	reason := strings.TrimSpace(cmd.Reason)
	if actorID == "" {
		return entities.Escrow{}, domainerrors.ErrInvalidActorID
	}
	if escrowID == "" {
		return entities.Escrow{}, domainerrors.ErrInvalidEscrowID
	}
	if reason == "" {
		return entities.Escrow{}, domainerrors.ErrDisputeReasonMissing
	}

	mutator := escrowMutator{
		Escrows:     uc.Escrows,
		Clock:       uc.Clock,
		IDGenerator: uc.IDGenerator,
		Logger:      uc.Logger,
	}
	escrow, _, err := mutator.apply(ctx, escrowID, func(escrow *entities.Escrow, now time.Time) ([]escrowEvent, bool, error) {
		if err := services.Authorize(services.OperationRaiseDispute, actorID, *escrow); err != nil {
			return nil, false, err
		}
		if escrow.HasActiveDispute() || escrow.Status == entities.EscrowStatusDisputed {
			return nil, false, domainerrors.ErrDisputeActive
		}

		escrow.Dispute = &entities.Dispute{
			RaisedBy: actorID,
			Reason:   reason,
			Status:   entities.DisputeStatusPending,
			RaisedAt: now,
		}
		escrow.Status = services.EffectiveStatus(*escrow)
		return []escrowEvent{{
			Type: EventEscrowDisputed,
			Data: map[string]any{
				"raised_by": actorID,
				"reason":    reason,
				"raised_at": now.Format(time.RFC3339),
			},
		}}, true, nil
	})
	if err != nil {
		return entities.Escrow{}, err
	}

	logger.Info("escrow dispute raised",
		"event", "escrow_disputed",
		"module", "finance-core/escrow-service",
		"layer", "application",
		"escrow_id", escrow.EscrowID,
		"raised_by", actorID,
	)
	return escrow, nil
}
