package queries

import (
	"context"
	"log/slog"
	"sort"
	"strings"

	application "covenant/contexts/finance-core/escrow-service/application"
	"covenant/contexts/finance-core/escrow-service/domain/entities"
	domainerrors "covenant/contexts/finance-core/escrow-service/domain/errors"
	"covenant/contexts/finance-core/escrow-service/ports"
)

type ListEscrowsQuery struct {
	ActorID string
	Status  string
	Role    string
}

type ListEscrowsResult struct {
	Items []entities.Escrow
	Count int
}

type ListEscrowsUseCase struct {
	Escrows ports.EscrowStore
	Logger  *slog.Logger
}

func (uc ListEscrowsUseCase) Execute(ctx context.Context, query ListEscrowsQuery) (ListEscrowsResult, error) {
	logger := application.ResolveLogger(uc.Logger)

	filter := ports.EscrowFilter{ActorID: strings.TrimSpace(query.ActorID)}
	if filter.ActorID == "" {
		return ListEscrowsResult{}, domainerrors.ErrInvalidActorID
	}
	if raw := strings.TrimSpace(query.Status); raw != "" {
		status, ok := entities.ParseEscrowStatus(raw)
		if !ok {
			return ListEscrowsResult{}, domainerrors.ErrInvalidListFilter
		}
		filter.Status = status
	}
	if raw := strings.TrimSpace(query.Role); raw != "" {
		role, ok := entities.ParseRole(raw)
		if !ok {
			return ListEscrowsResult{}, domainerrors.ErrInvalidListFilter
		}
		filter.Role = role
	}

	items, err := uc.Escrows.List(ctx, filter)
	if err != nil {
		return ListEscrowsResult{}, err
	}
	sort.SliceStable(items, func(i, j int) bool {
		if !items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].CreatedAt.After(items[j].CreatedAt)
		}
		return items[i].EscrowID < items[j].EscrowID
	})

	logger.Debug("escrows listed",
		"event", "escrows_listed",
		"module", "finance-core/escrow-service",
		"layer", "application",
		"actor_id", filter.ActorID,
		"count", len(items),
	)
	return ListEscrowsResult{Items: items, Count: len(items)}, nil
}
