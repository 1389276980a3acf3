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

type FundMilestoneCommand struct {
	EscrowID    string
	MilestoneID string
	ActorID     string
}

type FundMilestoneUseCase struct {
	Escrows     ports.EscrowStore
	Clock       ports.Clock
	IDGenerator ports.IDGenerator
	Logger      *slog.Logger
}

func (uc FundMilestoneUseCase) Execute(ctx context.Context, cmd FundMilestoneCommand) (entities.Escrow, error) {
	logger := application.ResolveLogger(uc.Logger)

	escrowID := strings.TrimSpace(cmd.EscrowID)
	milestoneID := strings.TrimSpace(cmd.MilestoneID)
	actorID := strings.TrimSpace(cmd.ActorID)
	if actorID == "" {
		return entities.Escrow{}, domainerrors.ErrInvalidActorID
	}
	if escrowID == "" {
		return entities.Escrow{}, domainerrors.ErrInvalidEscrowID
	}
	if milestoneID == "" {
		return entities.Escrow{}, domainerrors.ErrInvalidMilestoneID
	}

	mutator := escrowMutator{
		Escrows:     uc.Escrows,
		Clock:       uc.Clock,
		IDGenerator: uc.IDGenerator,
		Logger:      uc.Logger,
	}
	escrow, _, err := mutator.apply(ctx, escrowID, func(escrow *entities.Escrow, _ time.Time) ([]escrowEvent, bool, error) {
		if err := services.Authorize(services.OperationFund, actorID, *escrow); err != nil {
			return nil, false, err
		}
		if escrow.HasActiveDispute() {
			return nil, false, domainerrors.ErrEscrowFrozen
		}
		index := escrow.MilestoneIndex(milestoneID)
		if index < 0 {
			return nil, false, domainerrors.ErrMilestoneNotFound
		}
		if escrow.Milestones[index].Status != entities.MilestoneStatusPending {
			return nil, false, domainerrors.ErrMilestoneNotPending
		}

		escrow.Milestones[index].Status = entities.MilestoneStatusFunded
		escrow.Status = services.EffectiveStatus(*escrow)
		return []escrowEvent{{
			Type: EventMilestoneFunded,
			Data: milestoneEventData(escrow.Milestones[index], actorID),
		}}, true, nil
	})
	if err != nil {
		return entities.Escrow{}, err
	}

	logger.Info("escrow milestone funded",
		"event", "escrow_milestone_funded",
		"module", "finance-core/escrow-service",
		"layer", "application",
		"escrow_id", escrow.EscrowID,
		"milestone_id", milestoneID,
		"status", string(escrow.Status),
	)
	return escrow, nil
}
