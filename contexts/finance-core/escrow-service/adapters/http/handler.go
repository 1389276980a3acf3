package httpadapter

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	application "covenant/contexts/finance-core/escrow-service/application"
	"covenant/contexts/finance-core/escrow-service/application/commands"
	"covenant/contexts/finance-core/escrow-service/application/queries"
	"covenant/contexts/finance-core/escrow-service/domain/entities"
	domainerrors "covenant/contexts/finance-core/escrow-service/domain/errors"
	httptransport "covenant/contexts/finance-core/escrow-service/transport/http"
)

type Handler struct {
	CreateEscrow       commands.CreateEscrowUseCase
	FundMilestone      commands.FundMilestoneUseCase
	ApproveRelease     commands.ApproveReleaseUseCase
	RaiseDispute       commands.RaiseDisputeUseCase
	GetEscrow          queries.GetEscrowUseCase
	GetEscrowByProject queries.GetEscrowByProjectUseCase
	ListEscrows        queries.ListEscrowsUseCase
	Logger             *slog.Logger
}

// CreateEscrowHandler godoc
// @Summary Create project escrow
// @Description Opens an escrow for a project with its milestone plan. Only the project client may call it; the total is the sum of milestone amounts.
// @Tags escrow
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param X-Request-Id header string true "Request correlation id"
// @Param X-User-Id header string true "Authenticated user id"
// @Param project_id path string true "Project id"
// @Param request body httptransport.CreateEscrowRequest true "Milestone plan"
// @Success 201 {object} httptransport.EscrowResponse
// @Failure 400 {object} httptransport.ErrorResponse
// @Failure 401 {object} httptransport.ErrorResponse
// @Failure 403 {object} httptransport.ErrorResponse
// @Failure 404 {object} httptransport.ErrorResponse
// @Failure 409 {object} httptransport.ErrorResponse
// @Failure 500 {object} httptransport.ErrorResponse
// @Router /v1/projects/{project_id}/escrow [post]
func (h Handler) CreateEscrowHandler(
	ctx context.Context,
	userID string,
	projectID string,
	req httptransport.CreateEscrowRequest,
) (httptransport.EscrowResponse, error) {
	specs := make([]entities.MilestoneSpec, 0, len(req.Milestones))
	for _, item := range req.Milestones {
		dueDate, err := parseDueDate(item.DueDate)
		if err != nil {
			return httptransport.EscrowResponse{}, domainerrors.ErrInvalidDueDate
		}
		specs = append(specs, entities.MilestoneSpec{
			Title:       item.Title,
			Description: item.Description,
			Amount:      item.Amount,
			DueDate:     dueDate,
		})
	}
	escrow, err := h.CreateEscrow.Execute(ctx, commands.CreateEscrowCommand{
		ProjectID:  projectID,
		ActorID:    userID,
		Milestones: specs,
	})
	if err != nil {
		return httptransport.EscrowResponse{}, err
	}
	return httptransport.EscrowResponse{Escrow: mapEscrow(escrow)}, nil
}

// GetEscrowByProjectHandler godoc
// @Summary Get project escrow
// @Description Returns the escrow attached to a project. Visible to its client and worker only.
// @Tags escrow
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param X-Request-Id header string true "Request correlation id"
// @Param X-User-Id header string true "Authenticated user id"
// @Param project_id path string true "Project id"
// @Success 200 {object} httptransport.EscrowResponse
// @Failure 401 {object} httptransport.ErrorResponse
// @Failure 403 {object} httptransport.ErrorResponse
// @Failure 404 {object} httptransport.ErrorResponse
// @Failure 500 {object} httptransport.ErrorResponse
// @Router /v1/projects/{project_id}/escrow [get]
func (h Handler) GetEscrowByProjectHandler(ctx context.Context, userID string, projectID string) (httptransport.EscrowResponse, error) {
	escrow, err := h.GetEscrowByProject.Execute(ctx, queries.GetEscrowByProjectQuery{
		ProjectID: projectID,
		ActorID:   userID,
	})
	if err != nil {
		return httptransport.EscrowResponse{}, err
	}
	return httptransport.EscrowResponse{Escrow: mapEscrow(escrow)}, nil
}

// GetEscrowHandler godoc
// @Summary Get escrow
// @Description Returns one escrow by id. Visible to its client and worker only.
// @Tags escrow
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param X-Request-Id header string true "Request correlation id"
// @Param X-User-Id header string true "Authenticated user id"
// @Param escrow_id path string true "Escrow id"
// @Success 200 {object} httptransport.EscrowResponse
// @Failure 401 {object} httptransport.ErrorResponse
// @Failure 403 {object} httptransport.ErrorResponse
// @Failure 404 {object} httptransport.ErrorResponse
// @Failure 500 {object} httptransport.ErrorResponse
// @Router /v1/escrows/{escrow_id} [get]
func (h Handler) GetEscrowHandler(ctx context.Context, userID string, escrowID string) (httptransport.EscrowResponse, error) {
	escrow, err := h.GetEscrow.Execute(ctx, queries.GetEscrowQuery{
		EscrowID: escrowID,
		ActorID:  userID,
	})
	if err != nil {
		return httptransport.EscrowResponse{}, err
	}
	return httptransport.EscrowResponse{Escrow: mapEscrow(escrow)}, nil
}

// ListEscrowsHandler godoc
// @Summary List my escrows
// @Description Returns escrows where the caller is client or worker, newest first.
// @Tags escrow
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param X-Request-Id header string true "Request correlation id"
// @Param X-User-Id header string true "Authenticated user id"
// @Param status query string false "Escrow status: pending,funded,partially-released,released,refunded,disputed"
// @Param role query string false "Caller role: client,worker"
// @Success 200 {object} httptransport.ListEscrowsResponse
// @Failure 400 {object} httptransport.ErrorResponse
// @Failure 401 {object} httptransport.ErrorResponse
// @Failure 500 {object} httptransport.ErrorResponse
// @Router /v1/escrows [get]
func (h Handler) ListEscrowsHandler(
	ctx context.Context,
	userID string,
	status string,
	role string,
) (httptransport.ListEscrowsResponse, error) {
	result, err := h.ListEscrows.Execute(ctx, queries.ListEscrowsQuery{
		ActorID: userID,
		Status:  status,
		Role:    role,
	})
	if err != nil {
		return httptransport.ListEscrowsResponse{}, err
	}
	items := make([]httptransport.EscrowDTO, 0, len(result.Items))
	for _, item := range result.Items {
		items = append(items, mapEscrow(item))
	}
	return httptransport.ListEscrowsResponse{Items: items, Count: result.Count}, nil
}

// FundMilestoneHandler godoc
// @Summary Fund milestone
// @Description Marks a pending milestone as funded. Client only.
// @Tags escrow
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param X-Request-Id header string true "Request correlation id"
// @Param X-User-Id header string true "Authenticated user id"
// @Param escrow_id path string true "Escrow id"
// @Param milestone_id path string true "Milestone id"
// @Success 200 {object} httptransport.EscrowResponse
// @Failure 400 {object} httptransport.ErrorResponse
// @Failure 401 {object} httptransport.ErrorResponse
// @Failure 403 {object} httptransport.ErrorResponse
// @Failure 404 {object} httptransport.ErrorResponse
// @Failure 409 {object} httptransport.ErrorResponse
// @Failure 500 {object} httptransport.ErrorResponse
// @Router /v1/escrows/{escrow_id}/milestones/{milestone_id}/fund [post]
func (h Handler) FundMilestoneHandler(
	ctx context.Context,
	userID string,
	escrowID string,
	milestoneID string,
) (httptransport.EscrowResponse, error) {
	escrow, err := h.FundMilestone.Execute(ctx, commands.FundMilestoneCommand{
		EscrowID:    escrowID,
		MilestoneID: milestoneID,
		ActorID:     userID,
	})
	if err != nil {
		return httptransport.EscrowResponse{}, err
	}
	return httptransport.EscrowResponse{Escrow: mapEscrow(escrow)}, nil
}

// ApproveReleaseHandler godoc
// @Summary Approve milestone release
// @Description Records the caller's release approval on a funded milestone. The milestone is released once client and worker have both approved.
// @Tags escrow
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param X-Request-Id header string true "Request correlation id"
// @Param X-User-Id header string true "Authenticated user id"
// @Param escrow_id path string true "Escrow id"
// @Param milestone_id path string true "Milestone id"
// @Success 200 {object} httptransport.ApproveReleaseResponse
// @Failure 400 {object} httptransport.ErrorResponse
// @Failure 401 {object} httptransport.ErrorResponse
// @Failure 403 {object} httptransport.ErrorResponse
// @Failure 404 {object} httptransport.ErrorResponse
// @Failure 409 {object} httptransport.ErrorResponse
// @Failure 500 {object} httptransport.ErrorResponse
// @Router /v1/escrows/{escrow_id}/milestones/{milestone_id}/release [post]
func (h Handler) ApproveReleaseHandler(
	ctx context.Context,
	userID string,
	escrowID string,
	milestoneID string,
) (httptransport.ApproveReleaseResponse, error) {
	result, err := h.ApproveRelease.Execute(ctx, commands.ApproveReleaseCommand{
		EscrowID:    escrowID,
		MilestoneID: milestoneID,
		ActorID:     userID,
	})
	if err != nil {
		return httptransport.ApproveReleaseResponse{}, err
	}

	message := "Release approved, waiting for the other party"
	switch {
	case result.MilestoneReleased:
		message = "Milestone released"
	case !result.Changed:
		message = "Release already approved"
	}
	return httptransport.ApproveReleaseResponse{
		Escrow:            mapEscrow(result.Escrow),
		ApprovedAs:        string(result.Role),
		MilestoneReleased: result.MilestoneReleased,
		Message:           message,
	}, nil
}

// RaiseDisputeHandler godoc
// @Summary Raise escrow dispute
// @Description Records a dispute and freezes the escrow. Client or worker only.
// @Tags escrow
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param X-Request-Id header string true "Request correlation id"
// @Param X-User-Id header string true "Authenticated user id"
// @Param escrow_id path string true "Escrow id"
// @Param request body httptransport.RaiseDisputeRequest true "Dispute payload"
// @Success 200 {object} httptransport.EscrowResponse
// @Failure 400 {object} httptransport.ErrorResponse
// @Failure 401 {object} httptransport.ErrorResponse
// @Failure 403 {object} httptransport.ErrorResponse
// @Failure 404 {object} httptransport.ErrorResponse
// @Failure 409 {object} httptransport.ErrorResponse
// @Failure 500 {object} httptransport.ErrorResponse
// @Router /v1/escrows/{escrow_id}/dispute [post]
func (h Handler) RaiseDisputeHandler(
	ctx context.Context,
	userID string,
	escrowID string,
	req httptransport.RaiseDisputeRequest,
) (httptransport.EscrowResponse, error) {
	logger := application.ResolveLogger(h.Logger)
	escrow, err := h.RaiseDispute.Execute(ctx, commands.RaiseDisputeCommand{
		EscrowID: escrowID,
		ActorID:  userID,
		Reason:   req.Reason,
	})
	if err != nil {
		return httptransport.EscrowResponse{}, err
	}
	logger.Debug("escrow dispute accepted",
		"event", "escrow_dispute_accepted",
		"module", "finance-core/escrow-service",
		"layer", "transport",
		"escrow_id", escrow.EscrowID,
	)
	return httptransport.EscrowResponse{Escrow: mapEscrow(escrow)}, nil
}

func mapEscrow(item entities.Escrow) httptransport.EscrowDTO {
	milestones := make([]httptransport.MilestoneDTO, 0, len(item.Milestones))
	for _, milestone := range item.Milestones {
		dto := httptransport.MilestoneDTO{
			MilestoneID:    milestone.MilestoneID,
			Title:          milestone.Title,
			Description:    milestone.Description,
			Amount:         milestone.Amount.String(),
			DueDate:        milestone.DueDate.UTC().Format(time.RFC3339),
			Status:         string(milestone.Status),
			ClientApproval: milestone.ClientApproval,
			WorkerApproval: milestone.WorkerApproval,
		}
		if milestone.CompletedAt != nil {
			dto.CompletedAt = milestone.CompletedAt.UTC().Format(time.RFC3339)
		}
		milestones = append(milestones, dto)
	}

	result := httptransport.EscrowDTO{
		EscrowID:    item.EscrowID,
		ProjectID:   item.ProjectID,
		ClientID:    item.ClientID,
		WorkerID:    item.WorkerID,
		TotalAmount: item.TotalAmount.String(),
		Currency:    item.Currency,
		Status:      string(item.Status),
		Milestones:  milestones,
		Version:     item.Version,
		CreatedAt:   item.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:   item.UpdatedAt.UTC().Format(time.RFC3339),
	}
	if item.Dispute != nil {
		dispute := &httptransport.DisputeDTO{
			RaisedBy:   item.Dispute.RaisedBy,
			Reason:     item.Dispute.Reason,
			Status:     string(item.Dispute.Status),
			Resolution: item.Dispute.Resolution,
			RaisedAt:   item.Dispute.RaisedAt.UTC().Format(time.RFC3339),
		}
		if item.Dispute.ResolvedAt != nil {
			dispute.ResolvedAt = item.Dispute.ResolvedAt.UTC().Format(time.RFC3339)
		}
		result.Dispute = dispute
	}
	return result
}

func parseDueDate(raw string) (*time.Time, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}
	parsed, err := time.Parse(time.RFC3339, value)
	if err != nil {
		if parsed, err = time.Parse("2006-01-02", value); err != nil {
			return nil, fmt.Errorf("parse due date: %w", err)
		}
	}
	utc := parsed.UTC()
	return &utc, nil
}
