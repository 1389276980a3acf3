package queries

import (
	"context"
	"errors"
	"testing"
	"time"

	"covenant/contexts/finance-core/escrow-service/adapters/memory"
	"covenant/contexts/finance-core/escrow-service/domain/entities"
	domainerrors "covenant/contexts/finance-core/escrow-service/domain/errors"

	"github.com/shopspring/decimal"
)

func seedStore(t *testing.T) *memory.Store {
	t.Helper()
	store := memory.NewStore(nil)
	base := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
	items := []entities.Escrow{
		{EscrowID: "esc-a", ProjectID: "p-a", ClientID: "alice", WorkerID: "bob", Status: entities.EscrowStatusPending, CreatedAt: base},
		{EscrowID: "esc-b", ProjectID: "p-b", ClientID: "carol", WorkerID: "alice", Status: entities.EscrowStatusFunded, CreatedAt: base.Add(time.Hour)},
		{EscrowID: "esc-c", ProjectID: "p-c", ClientID: "alice", WorkerID: "dave", Status: entities.EscrowStatusFunded, CreatedAt: base.Add(time.Hour)},
		{EscrowID: "esc-d", ProjectID: "p-d", ClientID: "carol", WorkerID: "dave", Status: entities.EscrowStatusPending, CreatedAt: base.Add(2 * time.Hour)},
	}
	for _, item := range items {
		item.Currency = "INR"
		item.TotalAmount = decimal.NewFromInt(100)
		item.Version = 1
		item.UpdatedAt = item.CreatedAt
		if err := store.Create(context.Background(), item, nil); err != nil {
			t.Fatalf("seed escrow %s failed: %v", item.EscrowID, err)
		}
	}
	return store
}

func ids(items []entities.Escrow) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, item.EscrowID)
	}
	return out
}

func equalIDs(got []string, want ...string) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if got[i] != want[i] {
			return false
		}
	}
	return true
}

func TestListEscrowsFiltersAndOrders(t *testing.T) {
	store := seedStore(t)
	uc := ListEscrowsUseCase{Escrows: store}

	tests := []struct {
		name  string
		query ListEscrowsQuery
		want  []string
	}{
		{name: "either role newest first", query: ListEscrowsQuery{ActorID: "alice"}, want: []string{"esc-b", "esc-c", "esc-a"}},
		{name: "client only", query: ListEscrowsQuery{ActorID: "alice", Role: "client"}, want: []string{"esc-c", "esc-a"}},
		{name: "worker only", query: ListEscrowsQuery{ActorID: "alice", Role: "worker"}, want: []string{"esc-b"}},
		{name: "freelancer alias", query: ListEscrowsQuery{ActorID: "alice", Role: "freelancer"}, want: []string{"esc-b"}},
		{name: "status filter", query: ListEscrowsQuery{ActorID: "alice", Status: "funded"}, want: []string{"esc-b", "esc-c"}},
		{name: "no participation", query: ListEscrowsQuery{ActorID: "erin"}, want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := uc.Execute(context.Background(), tt.query)
			if err != nil {
				t.Fatalf("list failed: %v", err)
			}
			if got := ids(result.Items); !equalIDs(got, tt.want...) {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}
			if result.Count != len(tt.want) {
				t.Fatalf("expected count %d, got %d", len(tt.want), result.Count)
			}
		})
	}
}

func TestListEscrowsRejectsBadFilters(t *testing.T) {
	uc := ListEscrowsUseCase{Escrows: seedStore(t)}

	if _, err := uc.Execute(context.Background(), ListEscrowsQuery{ActorID: "alice", Status: "closed"}); !errors.Is(err, domainerrors.ErrInvalidListFilter) {
		t.Fatalf("expected invalid status rejected, got %v", err)
	}
	if _, err := uc.Execute(context.Background(), ListEscrowsQuery{ActorID: "alice", Role: "admin"}); !errors.Is(err, domainerrors.ErrInvalidListFilter) {
		t.Fatalf("expected invalid role rejected, got %v", err)
	}
	if _, err := uc.Execute(context.Background(), ListEscrowsQuery{}); !errors.Is(err, domainerrors.ErrInvalidActorID) {
		t.Fatalf("expected missing actor rejected, got %v", err)
	}
}

func TestGetEscrowRequiresParticipant(t *testing.T) {
	store := seedStore(t)
	byID := GetEscrowUseCase{Escrows: store}
	byProject := GetEscrowByProjectUseCase{Escrows: store}

	escrow, err := byID.Execute(context.Background(), GetEscrowQuery{EscrowID: "esc-a", ActorID: "bob"})
	if err != nil {
		t.Fatalf("worker read failed: %v", err)
	}
	if escrow.ProjectID != "p-a" {
		t.Fatalf("expected project p-a, got %s", escrow.ProjectID)
	}

	if _, err := byID.Execute(context.Background(), GetEscrowQuery{EscrowID: "esc-a", ActorID: "erin"}); !errors.Is(err, domainerrors.ErrNotParticipant) {
		t.Fatalf("expected third party denied, got %v", err)
	}
	if _, err := byID.Execute(context.Background(), GetEscrowQuery{EscrowID: "esc-z", ActorID: "alice"}); !errors.Is(err, domainerrors.ErrEscrowNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	escrow, err = byProject.Execute(context.Background(), GetEscrowByProjectQuery{ProjectID: "p-d", ActorID: "carol"})
	if err != nil {
		t.Fatalf("project lookup failed: %v", err)
	}
	if escrow.EscrowID != "esc-d" {
		t.Fatalf("expected esc-d, got %s", escrow.EscrowID)
	}
	if _, err := byProject.Execute(context.Background(), GetEscrowByProjectQuery{ProjectID: "p-d", ActorID: "alice"}); !errors.Is(err, domainerrors.ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
	if _, err := byProject.Execute(context.Background(), GetEscrowByProjectQuery{ProjectID: "p-x", ActorID: "alice"}); !errors.Is(err, domainerrors.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
