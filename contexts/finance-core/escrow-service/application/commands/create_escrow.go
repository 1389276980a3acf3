package commands

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	application "covenant/contexts/finance-core/escrow-service/application"
	"covenant/contexts/finance-core/escrow-service/domain/entities"
	domainerrors "covenant/contexts/finance-core/escrow-service/domain/errors"
	"covenant/contexts/finance-core/escrow-service/domain/services"
	"covenant/contexts/finance-core/escrow-service/ports"
)

const (
	fallbackCurrency          = "INR"
	defaultMilestoneDueWindow = 30 * 24 * time.Hour
)

type CreateEscrowCommand struct {
	ProjectID  string
	ActorID    string
	Milestones []entities.MilestoneSpec
}

type CreateEscrowUseCase struct {
	Escrows            ports.EscrowStore
	Projects           ports.ProjectDirectory
	Clock              ports.Clock
	IDGenerator        ports.IDGenerator
	DefaultCurrency    string
	MilestoneDueWindow time.Duration
	Logger             *slog.Logger
}

func (uc CreateEscrowUseCase) Execute(ctx context.Context, cmd CreateEscrowCommand) (entities.Escrow, error) {
	logger := application.ResolveLogger(uc.Logger)

	actorID := strings.TrimSpace(cmd.ActorID)
	projectID := strings.TrimSpace(cmd.ProjectID)
	if actorID == "" {
		return entities.Escrow{}, domainerrors.ErrInvalidActorID
	}
	if projectID == "" {
		return entities.Escrow{}, domainerrors.ErrInvalidProjectID
	}
	if err := services.ValidateMilestoneSpecs(cmd.Milestones); err != nil {
		return entities.Escrow{}, err
	}

	project, err := uc.Projects.GetProject(ctx, projectID)
	if err != nil {
		return entities.Escrow{}, err
	}
	if err := services.AuthorizeCreate(project, actorID); err != nil {
		return entities.Escrow{}, err
	}
	if _, err := uc.Escrows.GetByProject(ctx, projectID); err == nil {
		return entities.Escrow{}, domainerrors.ErrEscrowExists
	} else if !errors.Is(err, domainerrors.ErrEscrowNotFound) {
		return entities.Escrow{}, err
	}

	escrowID, err := uc.IDGenerator.NewID(ctx)
	if err != nil {
		return entities.Escrow{}, err
	}
	now := uc.now()

	milestones := make([]entities.Milestone, 0, len(cmd.Milestones))
	for _, spec := range cmd.Milestones {
		milestoneID, err := uc.IDGenerator.NewID(ctx)
		if err != nil {
			return entities.Escrow{}, err
		}
		dueDate := now.Add(uc.dueWindow())
		if spec.DueDate != nil && !spec.DueDate.IsZero() {
			dueDate = spec.DueDate.UTC()
		}
		milestones = append(milestones, entities.Milestone{
			MilestoneID: strings.TrimSpace(milestoneID),
			Title:       strings.TrimSpace(spec.Title),
			Description: strings.TrimSpace(spec.Description),
			Amount:      spec.Amount,
			DueDate:     dueDate,
			Status:      entities.MilestoneStatusPending,
		})
	}

	escrow := entities.Escrow{
		EscrowID:    strings.TrimSpace(escrowID),
		ProjectID:   project.ProjectID,
		ClientID:    project.ClientID,
		WorkerID:    project.WorkerID,
		TotalAmount: services.TotalAmount(milestones),
		Currency:    uc.resolveCurrency(project),
		Milestones:  milestones,
		Version:     1,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	escrow.Status = services.EffectiveStatus(escrow)

	envelopes, err := buildEnvelopes(ctx, uc.IDGenerator, escrow, now, []escrowEvent{{
		Type: EventEscrowCreated,
		Data: map[string]any{
			"milestone_count": len(milestones),
			"actor_id":        actorID,
		},
	}})
	if err != nil {
		return entities.Escrow{}, err
	}
	if err := uc.Escrows.Create(ctx, escrow, envelopes); err != nil {
		return entities.Escrow{}, err
	}

	if err := uc.Projects.LinkEscrow(ctx, escrow.ProjectID, escrow.EscrowID); err != nil {
		logger.Warn("project escrow link failed",
			"event", "escrow_project_link_failed",
			"module", "finance-core/escrow-service",
			"layer", "application",
			"escrow_id", escrow.EscrowID,
			"project_id", escrow.ProjectID,
			"error", err.Error(),
		)
	}

	logger.Info("escrow created",
		"event", "escrow_created",
		"module", "finance-core/escrow-service",
		"layer", "application",
		"escrow_id", escrow.EscrowID,
		"project_id", escrow.ProjectID,
		"client_id", escrow.ClientID,
		"total_amount", escrow.TotalAmount.String(),
		"currency", escrow.Currency,
		"milestone_count", len(escrow.Milestones),
	)
	return escrow, nil
}

func (uc CreateEscrowUseCase) resolveCurrency(project entities.Project) string {
	if currency := strings.ToUpper(strings.TrimSpace(project.BudgetCurrency)); currency != "" {
		return currency
	}
	if currency := strings.ToUpper(strings.TrimSpace(uc.DefaultCurrency)); currency != "" {
		return currency
	}
	return fallbackCurrency
}

func (uc CreateEscrowUseCase) dueWindow() time.Duration {
	if uc.MilestoneDueWindow <= 0 {
		return defaultMilestoneDueWindow
	}
	return uc.MilestoneDueWindow
}

func (uc CreateEscrowUseCase) now() time.Time {
	if uc.Clock != nil {
		return uc.Clock.Now().UTC()
	}
	return time.Now().UTC()
}
