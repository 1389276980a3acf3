package commands

import (
	"context"
	"time"

	"covenant/contexts/finance-core/escrow-service/domain/entities"
	"covenant/contexts/finance-core/escrow-service/ports"
	contractsv1 "covenant/contracts/gen/events/v1"
)

const sourceService = "escrow-service"

const (
	EventEscrowCreated     = "escrow.created"
	EventMilestoneFunded   = "escrow.milestone_funded"
	EventReleaseApproved   = "escrow.release_approved"
	EventMilestoneReleased = "escrow.milestone_released"
	EventEscrowReleased    = "escrow.released"
	EventEscrowDisputed    = "escrow.disputed"
)

type escrowEvent struct {
	Type string
	Data map[string]any
}

func buildEnvelopes(
	ctx context.Context,
	idGen ports.IDGenerator,
	escrow entities.Escrow,
	occurredAt time.Time,
	events []escrowEvent,
) ([]ports.EventEnvelope, error) {
	envelopes := make([]ports.EventEnvelope, 0, len(events))
	for _, event := range events {
		eventID, err := idGen.NewID(ctx)
		if err != nil {
			return nil, err
		}
		data := escrowEventData(escrow)
		for key, value := range event.Data {
			data[key] = value
		}
		envelope, err := contractsv1.New(eventID, event.Type, sourceService, "escrow_id", escrow.EscrowID, occurredAt, data)
		if err != nil {
			return nil, err
		}
		envelopes = append(envelopes, envelope)
	}
	return envelopes, nil
}

func escrowEventData(escrow entities.Escrow) map[string]any {
	return map[string]any{
		"escrow_id":    escrow.EscrowID,
		"project_id":   escrow.ProjectID,
		"client_id":    escrow.ClientID,
		"worker_id":    escrow.WorkerID,
		"total_amount": escrow.TotalAmount.String(),
		"currency":     escrow.Currency,
		"status":       string(escrow.Status),
		"version":      escrow.Version,
	}
}

func milestoneEventData(milestone entities.Milestone, actorID string) map[string]any {
	return map[string]any{
		"milestone_id":     milestone.MilestoneID,
		"milestone_title":  milestone.Title,
		"milestone_amount": milestone.Amount.String(),
		"milestone_status": string(milestone.Status),
		"actor_id":         actorID,
	}
}
