package postgresadapter

import (
	"context"
	"errors"
	"testing"
	"time"

	"covenant/contexts/finance-core/escrow-service/domain/entities"
	domainerrors "covenant/contexts/finance-core/escrow-service/domain/errors"
	"covenant/contexts/finance-core/escrow-service/ports"

	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func testRepository(t *testing.T) *Repository {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	// Every :memory: connection is a separate database.
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	repo := NewRepository(db, nil)
	if err := repo.Migrate(context.Background()); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return repo
}

func repoEscrow(escrowID string, projectID string, createdAt time.Time) entities.Escrow {
	return entities.Escrow{
		EscrowID:    escrowID,
		ProjectID:   projectID,
		ClientID:    "client-1",
		WorkerID:    "worker-1",
		TotalAmount: decimal.RequireFromString("1250.50"),
		Currency:    "USD",
		Status:      entities.EscrowStatusPending,
		Milestones: []entities.Milestone{
			{
				MilestoneID: "m-1",
				Title:       "Design",
				Amount:      decimal.RequireFromString("1250.50"),
				DueDate:     createdAt.Add(24 * time.Hour),
				Status:      entities.MilestoneStatusPending,
			},
		},
		Version:   1,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
}

func TestRepositoryCreateAndRead(t *testing.T) {
	repo := testRepository(t)
	ctx := context.Background()
	createdAt := time.Date(2026, 4, 2, 10, 0, 0, 0, time.UTC)

	events := []ports.EventEnvelope{{EventID: "evt-1", EventType: "escrow.created", PartitionKey: "esc-1", OccurredAt: createdAt}}
	if err := repo.Create(ctx, repoEscrow("esc-1", "project-1", createdAt), events); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	loaded, err := repo.GetByProject(ctx, "project-1")
	if err != nil {
		t.Fatalf("get by project failed: %v", err)
	}
	if loaded.EscrowID != "esc-1" || loaded.Version != 1 {
		t.Fatalf("unexpected escrow %+v", loaded)
	}
	if !loaded.TotalAmount.Equal(decimal.RequireFromString("1250.50")) {
		t.Fatalf("expected exact total, got %s", loaded.TotalAmount)
	}
	if len(loaded.Milestones) != 1 || !loaded.Milestones[0].Amount.Equal(decimal.RequireFromString("1250.50")) {
		t.Fatalf("unexpected milestones %+v", loaded.Milestones)
	}
	if !loaded.CreatedAt.Equal(createdAt) {
		t.Fatalf("expected created_at %s, got %s", createdAt, loaded.CreatedAt)
	}

	if _, err := repo.GetByID(ctx, "missing"); !errors.Is(err, domainerrors.ErrEscrowNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	duplicate := repoEscrow("esc-2", "project-1", createdAt)
	if err := repo.Create(ctx, duplicate, nil); !errors.Is(err, domainerrors.ErrEscrowExists) {
		t.Fatalf("expected escrow exists, got %v", err)
	}
}

func TestRepositoryCommitIsCompareAndSwap(t *testing.T) {
	repo := testRepository(t)
	ctx := context.Background()
	createdAt := time.Date(2026, 4, 2, 10, 0, 0, 0, time.UTC)
	if err := repo.Create(ctx, repoEscrow("esc-1", "project-1", createdAt), nil); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	escrow, version, err := repo.LoadForUpdate(ctx, "esc-1")
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	escrow.Milestones[0].Status = entities.MilestoneStatusFunded
	escrow.Status = entities.EscrowStatusFunded
	escrow.UpdatedAt = createdAt.Add(time.Minute)
	escrow.Dispute = &entities.Dispute{RaisedBy: "worker-1", Reason: "late", Status: entities.DisputeStatusPending, RaisedAt: createdAt}

	events := []ports.EventEnvelope{{EventID: "evt-2", EventType: "escrow.milestone_funded", PartitionKey: "esc-1", OccurredAt: escrow.UpdatedAt}}
	if err := repo.Commit(ctx, escrow, version, events); err != nil {
		t.Fatalf("commit failed: %v", err)
	}
	if err := repo.Commit(ctx, escrow, version, nil); !errors.Is(err, domainerrors.ErrStaleVersion) {
		t.Fatalf("expected stale version, got %v", err)
	}
	missing := escrow
	missing.EscrowID = "esc-404"
	if err := repo.Commit(ctx, missing, 1, nil); !errors.Is(err, domainerrors.ErrEscrowNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	stored, err := repo.GetByID(ctx, "esc-1")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if stored.Version != version+1 || stored.Status != entities.EscrowStatusFunded {
		t.Fatalf("unexpected committed escrow %+v", stored)
	}
	if stored.Milestones[0].Status != entities.MilestoneStatusFunded {
		t.Fatalf("expected funded milestone, got %s", stored.Milestones[0].Status)
	}
	if stored.Dispute == nil || stored.Dispute.Reason != "late" {
		t.Fatalf("expected dispute persisted, got %+v", stored.Dispute)
	}

	pending, err := repo.ListPendingOutbox(ctx, 10)
	if err != nil {
		t.Fatalf("list outbox failed: %v", err)
	}
	if len(pending) != 1 || pending[0].OutboxID != "evt-2" {
		t.Fatalf("expected single outbox row from the winning commit, got %+v", pending)
	}
	if err := repo.MarkOutboxPublished(ctx, "evt-2", createdAt.Add(time.Hour)); err != nil {
		t.Fatalf("mark published failed: %v", err)
	}
	pending, _ = repo.ListPendingOutbox(ctx, 10)
	if len(pending) != 0 {
		t.Fatalf("expected empty outbox, got %d", len(pending))
	}
	if err := repo.MarkOutboxPublished(ctx, "evt-missing", createdAt); err == nil {
		t.Fatalf("expected error for unknown outbox row")
	}
}

func TestRepositoryListFilters(t *testing.T) {
	repo := testRepository(t)
	ctx := context.Background()
	base := time.Date(2026, 4, 2, 10, 0, 0, 0, time.UTC)

	first := repoEscrow("esc-1", "project-1", base)
	second := repoEscrow("esc-2", "project-2", base.Add(time.Hour))
	second.ClientID = "client-2"
	second.WorkerID = "client-1"
	second.Status = entities.EscrowStatusFunded
	other := repoEscrow("esc-3", "project-3", base.Add(2*time.Hour))
	other.ClientID = "client-3"
	other.WorkerID = "worker-3"
	for _, escrow := range []entities.Escrow{first, second, other} {
		if err := repo.Create(ctx, escrow, nil); err != nil {
			t.Fatalf("create %s failed: %v", escrow.EscrowID, err)
		}
	}

	all, err := repo.List(ctx, ports.EscrowFilter{ActorID: "client-1"})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(all) != 2 || all[0].EscrowID != "esc-2" || all[1].EscrowID != "esc-1" {
		t.Fatalf("expected esc-2 then esc-1, got %+v", all)
	}

	asWorker, _ := repo.List(ctx, ports.EscrowFilter{ActorID: "client-1", Role: entities.RoleWorker})
	if len(asWorker) != 1 || asWorker[0].EscrowID != "esc-2" {
		t.Fatalf("expected only esc-2 as worker, got %+v", asWorker)
	}

	pending, _ := repo.List(ctx, ports.EscrowFilter{ActorID: "client-1", Status: entities.EscrowStatusPending})
	if len(pending) != 1 || pending[0].EscrowID != "esc-1" {
		t.Fatalf("expected only esc-1 pending, got %+v", pending)
	}
}

func TestRepositoryProjectDirectory(t *testing.T) {
	repo := testRepository(t)
	ctx := context.Background()

	if err := repo.UpsertProject(ctx, entities.Project{ProjectID: "project-1", ClientID: "client-1", WorkerID: "worker-1", BudgetCurrency: "usd"}); err != nil {
		t.Fatalf("upsert failed: %v", err)
	}
	if err := repo.LinkEscrow(ctx, "project-1", "esc-1"); err != nil {
		t.Fatalf("link failed: %v", err)
	}
	if err := repo.UpsertProject(ctx, entities.Project{ProjectID: "project-1", ClientID: "client-1", WorkerID: "worker-2", BudgetCurrency: "eur"}); err != nil {
		t.Fatalf("second upsert failed: %v", err)
	}

	project, err := repo.GetProject(ctx, "project-1")
	if err != nil {
		t.Fatalf("get project failed: %v", err)
	}
	if project.WorkerID != "worker-2" || project.BudgetCurrency != "EUR" || project.EscrowID != "esc-1" {
		t.Fatalf("unexpected project %+v", project)
	}
	if _, err := repo.GetProject(ctx, "missing"); !errors.Is(err, domainerrors.ErrProjectNotFound) {
		t.Fatalf("expected project not found, got %v", err)
	}
	if err := repo.LinkEscrow(ctx, "missing", "esc-1"); !errors.Is(err, domainerrors.ErrProjectNotFound) {
		t.Fatalf("expected project not found on link, got %v", err)
	}
}

func TestRepositoryOutboxKeepsCommitOrderOnEqualTimestamps(t *testing.T) {
	repo := testRepository(t)
	ctx := context.Background()
	createdAt := time.Date(2026, 4, 2, 10, 0, 0, 0, time.UTC)
	if err := repo.Create(ctx, repoEscrow("esc-1", "project-1", createdAt), nil); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	escrow, version, err := repo.LoadForUpdate(ctx, "esc-1")
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	releasedAt := createdAt.Add(time.Minute)
	escrow.UpdatedAt = releasedAt
	events := []ports.EventEnvelope{
		{EventID: "evt-z", EventType: "escrow.milestone_released", PartitionKey: "esc-1", OccurredAt: releasedAt},
		{EventID: "evt-m", EventType: "escrow.released", PartitionKey: "esc-1", OccurredAt: releasedAt},
		{EventID: "evt-a", EventType: "escrow.audit_marker", PartitionKey: "esc-1", OccurredAt: releasedAt},
	}
	if err := repo.Commit(ctx, escrow, version, events); err != nil {
		t.Fatalf("commit failed: %v", err)
	}

	pending, err := repo.ListPendingOutbox(ctx, 10)
	if err != nil {
		t.Fatalf("list outbox failed: %v", err)
	}
	if len(pending) != 3 {
		t.Fatalf("expected 3 pending rows, got %d", len(pending))
	}
	for i, want := range []string{"evt-z", "evt-m", "evt-a"} {
		if pending[i].OutboxID != want {
			t.Fatalf("expected %s at %d, got %s", want, i, pending[i].OutboxID)
		}
	}
}

func TestNextOutboxSequenceIsStrictlyIncreasing(t *testing.T) {
	previous := nextOutboxSequence()
	for i := 0; i < 10000; i++ {
		next := nextOutboxSequence()
		if next <= previous {
			t.Fatalf("sequence went from %d to %d", previous, next)
		}
		previous = next
	}
}
