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

type ApproveReleaseCommand struct {
	EscrowID    string
	MilestoneID string
	ActorID     string
}

type ApproveReleaseResult struct {
	Escrow            entities.Escrow
	Role              entities.Role
	MilestoneReleased bool
	// Changed is false when the same party approved again.
	Changed bool
}

type ApproveReleaseUseCase struct {
	Escrows     ports.EscrowStore
	Clock       ports.Clock
	IDGenerator ports.IDGenerator
	Logger      *slog.Logger
}

func (uc ApproveReleaseUseCase) Execute(ctx context.Context, cmd ApproveReleaseCommand) (ApproveReleaseResult, error) {
	logger := application.ResolveLogger(uc.Logger)

	escrowID := strings.TrimSpace(cmd.EscrowID)
	milestoneID := strings.TrimSpace(cmd.MilestoneID)
	actorID := strings.TrimSpace(cmd.ActorID)
	if actorID == "" {
		return ApproveReleaseResult{}, domainerrors.ErrInvalidActorID
	}
	if escrowID == "" {
		return ApproveReleaseResult{}, domainerrors.ErrInvalidEscrowID
	}
	if milestoneID == "" {
		return ApproveReleaseResult{}, domainerrors.ErrInvalidMilestoneID
	}

	var (
		role     entities.Role
		released bool
	)
	mutator := escrowMutator{
		Escrows:     uc.Escrows,
		Clock:       uc.Clock,
		IDGenerator: uc.IDGenerator,
		Logger:      uc.Logger,
	}
	escrow, changed, err := mutator.apply(ctx, escrowID, func(escrow *entities.Escrow, now time.Time) ([]escrowEvent, bool, error) {
		// Reset per attempt; a retry recomputes from fresh state.
		role, released = "", false

		if err := services.Authorize(services.OperationApproveRelease, actorID, *escrow); err != nil {
			return nil, false, err
		}
		role, _ = services.ResolveRole(*escrow, actorID)
		if escrow.HasActiveDispute() {
			return nil, false, domainerrors.ErrEscrowFrozen
		}
		index := escrow.MilestoneIndex(milestoneID)
		if index < 0 {
			return nil, false, domainerrors.ErrMilestoneNotFound
		}
		milestone := &escrow.Milestones[index]
		if milestone.Status != entities.MilestoneStatusFunded {
			return nil, false, domainerrors.ErrMilestoneNotFunded
		}
		if milestone.ApprovedBy(role) {
			return nil, false, nil
		}

		switch role {
		case entities.RoleClient:
			milestone.ClientApproval = true
		case entities.RoleWorker:
			milestone.WorkerApproval = true
		}

		if !milestone.BothApproved() {
			data := milestoneEventData(*milestone, actorID)
			data["approved_by_role"] = string(role)
			return []escrowEvent{{Type: EventReleaseApproved, Data: data}}, true, nil
		}

		completedAt := now
		milestone.Status = entities.MilestoneStatusReleased
		milestone.CompletedAt = &completedAt
		escrow.Status = services.EffectiveStatus(*escrow)
		released = true

		events := []escrowEvent{{
			Type: EventMilestoneReleased,
			Data: milestoneEventData(*milestone, actorID),
		}}
		if escrow.Status == entities.EscrowStatusReleased {
			events = append(events, escrowEvent{
				Type: EventEscrowReleased,
				Data: map[string]any{"actor_id": actorID},
			})
		}
		return events, true, nil
	})
	if err != nil {
		return ApproveReleaseResult{}, err
	}

	if released {
		logger.Info("escrow milestone released",
			"event", "escrow_milestone_released",
			"module", "finance-core/escrow-service",
			"layer", "application",
			"escrow_id", escrow.EscrowID,
			"milestone_id", milestoneID,
			"status", string(escrow.Status),
		)
	} else if changed {
		logger.Info("escrow release approved",
			"event", "escrow_release_approved",
			"module", "finance-core/escrow-service",
			"layer", "application",
			"escrow_id", escrow.EscrowID,
			"milestone_id", milestoneID,
			"role", string(role),
		)
	}
	return ApproveReleaseResult{
		Escrow:            escrow,
		Role:              role,
		MilestoneReleased: released,
		Changed:           changed,
	}, nil
}
