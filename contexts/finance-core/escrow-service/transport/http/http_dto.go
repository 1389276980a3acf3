package http

import "github.com/shopspring/decimal"

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// MilestoneRequest accepts the amount as a decimal string ("2500.00") or a
// JSON number. Strings avoid float rounding.
type MilestoneRequest struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount" swaggertype:"string" example:"2500.00"`
	DueDate     string          `json:"due_date" example:"2026-12-01T00:00:00Z"`
}

type CreateEscrowRequest struct {
	Milestones []MilestoneRequest `json:"milestones"`
}

type RaiseDisputeRequest struct {
	Reason string `json:"reason"`
}

type MilestoneDTO struct {
	MilestoneID    string `json:"milestone_id"`
	Title          string `json:"title"`
	Description    string `json:"description,omitempty"`
	Amount         string `json:"amount"`
	DueDate        string `json:"due_date"`
	Status         string `json:"status"`
	ClientApproval bool   `json:"client_approval"`
	WorkerApproval bool   `json:"worker_approval"`
	CompletedAt    string `json:"completed_at,omitempty"`
}

type DisputeDTO struct {
	RaisedBy   string `json:"raised_by"`
	Reason     string `json:"reason"`
	Status     string `json:"status"`
	Resolution string `json:"resolution,omitempty"`
	RaisedAt   string `json:"raised_at"`
	ResolvedAt string `json:"resolved_at,omitempty"`
}

type EscrowDTO struct {
	EscrowID    string         `json:"escrow_id"`
	ProjectID   string         `json:"project_id"`
	ClientID    string         `json:"client_id"`
	WorkerID    string         `json:"worker_id"`
	TotalAmount string         `json:"total_amount"`
	Currency    string         `json:"currency"`
	Status      string         `json:"status"`
	Milestones  []MilestoneDTO `json:"milestones"`
	Dispute     *DisputeDTO    `json:"dispute,omitempty"`
	Version     int64          `json:"version"`
	CreatedAt   string         `json:"created_at"`
	UpdatedAt   string         `json:"updated_at"`
}

type EscrowResponse struct {
	Escrow EscrowDTO `json:"escrow"`
}

type ApproveReleaseResponse struct {
	Escrow            EscrowDTO `json:"escrow"`
	ApprovedAs        string    `json:"approved_as"`
	MilestoneReleased bool      `json:"milestone_released"`
	Message           string    `json:"message"`
}

type ListEscrowsResponse struct {
	Items []EscrowDTO `json:"items"`
	Count int         `json:"count"`
}
