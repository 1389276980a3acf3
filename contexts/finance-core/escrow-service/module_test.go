package escrowservice

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"covenant/contexts/finance-core/escrow-service/domain/entities"
	domainerrors "covenant/contexts/finance-core/escrow-service/domain/errors"
	httptransport "covenant/contexts/finance-core/escrow-service/transport/http"

	"github.com/shopspring/decimal"
)

func newTestModule() Module {
	return NewInMemoryModule([]entities.Project{
		{ProjectID: "project-1", ClientID: "client-1", WorkerID: "worker-1"},
	}, slog.Default())
}

func TestModuleEscrowFlow(t *testing.T) {
	module := newTestModule()
	ctx := context.Background()

	created, err := module.Handler.CreateEscrowHandler(ctx, "client-1", "project-1", httptransport.CreateEscrowRequest{
		Milestones: []httptransport.MilestoneRequest{
			{Title: "Wireframes", Amount: decimal.RequireFromString("1500.25"), DueDate: "2026-12-01"},
			{Title: "Delivery", Amount: decimal.RequireFromString("499.75")},
		},
	})
	if err != nil {
		t.Fatalf("create escrow failed: %v", err)
	}
	if created.Escrow.TotalAmount != "2000" {
		t.Fatalf("expected total 2000, got %s", created.Escrow.TotalAmount)
	}
	if created.Escrow.Currency != "INR" {
		t.Fatalf("expected INR, got %s", created.Escrow.Currency)
	}
	if created.Escrow.Milestones[0].DueDate != "2026-12-01T00:00:00Z" {
		t.Fatalf("expected explicit due date kept, got %s", created.Escrow.Milestones[0].DueDate)
	}

	escrowID := created.Escrow.EscrowID
	for _, milestone := range created.Escrow.Milestones {
		if _, err := module.Handler.FundMilestoneHandler(ctx, "client-1", escrowID, milestone.MilestoneID); err != nil {
			t.Fatalf("fund failed: %v", err)
		}
		if _, err := module.Handler.ApproveReleaseHandler(ctx, "client-1", escrowID, milestone.MilestoneID); err != nil {
			t.Fatalf("client approve failed: %v", err)
		}
		repeat, err := module.Handler.ApproveReleaseHandler(ctx, "client-1", escrowID, milestone.MilestoneID)
		if err != nil {
			t.Fatalf("repeat approve failed: %v", err)
		}
		if repeat.Message != "Release already approved" {
			t.Fatalf("expected idempotent message, got %q", repeat.Message)
		}
		released, err := module.Handler.ApproveReleaseHandler(ctx, "worker-1", escrowID, milestone.MilestoneID)
		if err != nil {
			t.Fatalf("worker approve failed: %v", err)
		}
		if !released.MilestoneReleased || released.ApprovedAs != "worker" {
			t.Fatalf("expected worker release, got %+v", released)
		}
	}

	final, err := module.Handler.GetEscrowHandler(ctx, "worker-1", escrowID)
	if err != nil {
		t.Fatalf("get escrow failed: %v", err)
	}
	if final.Escrow.Status != "released" {
		t.Fatalf("expected released, got %s", final.Escrow.Status)
	}
	for _, milestone := range final.Escrow.Milestones {
		if milestone.CompletedAt == "" {
			t.Fatalf("expected completed_at on %s", milestone.MilestoneID)
		}
	}

	var types []string
	for _, event := range module.Store.OutboxEvents() {
		types = append(types, event.EventType)
	}
	want := []string{
		"escrow.created",
		"escrow.milestone_funded", "escrow.release_approved", "escrow.milestone_released",
		"escrow.milestone_funded", "escrow.release_approved", "escrow.milestone_released", "escrow.released",
	}
	if len(types) != len(want) {
		t.Fatalf("expected events %v, got %v", want, types)
	}
	for i := range want {
		if types[i] != want[i] {
			t.Fatalf("expected events %v, got %v", want, types)
		}
	}
}

func TestModuleRejectsInvalidDueDate(t *testing.T) {
	module := newTestModule()
	_, err := module.Handler.CreateEscrowHandler(context.Background(), "client-1", "project-1", httptransport.CreateEscrowRequest{
		Milestones: []httptransport.MilestoneRequest{{Title: "A", Amount: decimal.NewFromInt(1), DueDate: "next week"}},
	})
	if !errors.Is(err, domainerrors.ErrInvalidDueDate) || !errors.Is(err, domainerrors.ErrValidation) {
		t.Fatalf("expected invalid due date error, got %v", err)
	}
	if !strings.Contains(err.Error(), "due date") {
		t.Fatalf("expected due date reason, got %q", err.Error())
	}
}
