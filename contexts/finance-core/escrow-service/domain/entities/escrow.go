package entities

import (
	"time"

	"github.com/shopspring/decimal"
)

type EscrowStatus string

const (
	EscrowStatusPending           EscrowStatus = "pending"
	EscrowStatusFunded            EscrowStatus = "funded"
	EscrowStatusPartiallyReleased EscrowStatus = "partially-released"
	EscrowStatusReleased          EscrowStatus = "released"
	EscrowStatusRefunded          EscrowStatus = "refunded"
	EscrowStatusDisputed          EscrowStatus = "disputed"
)

// ParseEscrowStatus maps a wire value to the closed status set.
func ParseEscrowStatus(raw string) (EscrowStatus, bool) {
	switch status := EscrowStatus(raw); status {
	case EscrowStatusPending,
		EscrowStatusFunded,
		EscrowStatusPartiallyReleased,
		EscrowStatusReleased,
		EscrowStatusRefunded,
		EscrowStatusDisputed:
		return status, true
	default:
		return "", false
	}
}

type MilestoneStatus string

const (
	MilestoneStatusPending  MilestoneStatus = "pending"
	MilestoneStatusFunded   MilestoneStatus = "funded"
	MilestoneStatusReleased MilestoneStatus = "released"
	MilestoneStatusDisputed MilestoneStatus = "disputed"
)

type DisputeStatus string

const (
	DisputeStatusPending  DisputeStatus = "pending"
	DisputeStatusResolved DisputeStatus = "resolved"
)

// Role is the party a principal plays on an escrow.
type Role string

const (
	RoleClient Role = "client"
	RoleWorker Role = "worker"
)

// roleFreelancer is the legacy name for the worker party on list filters.
const roleFreelancer = "freelancer"

func ParseRole(raw string) (Role, bool) {
	switch role := Role(raw); role {
	case RoleClient, RoleWorker:
		return role, true
	case roleFreelancer:
		return RoleWorker, true
	default:
		return "", false
	}
}

type Milestone struct {
	MilestoneID    string          `json:"milestone_id"`
	Title          string          `json:"title"`
	Description    string          `json:"description,omitempty"`
	Amount         decimal.Decimal `json:"amount"`
	DueDate        time.Time       `json:"due_date"`
	Status         MilestoneStatus `json:"status"`
	ClientApproval bool            `json:"client_approval"`
	WorkerApproval bool            `json:"worker_approval"`
	CompletedAt    *time.Time      `json:"completed_at,omitempty"`
}

// BothApproved reports whether the dual-approval condition holds.
func (m Milestone) BothApproved() bool {
	return m.ClientApproval && m.WorkerApproval
}

// ApprovedBy reports whether the given party already approved release.
func (m Milestone) ApprovedBy(role Role) bool {
	switch role {
	case RoleClient:
		return m.ClientApproval
	case RoleWorker:
		return m.WorkerApproval
	default:
		return false
	}
}

// MilestoneSpec is caller input for one milestone at escrow creation.
type MilestoneSpec struct {
	Title       string
	Description string
	Amount      decimal.Decimal
	DueDate     *time.Time
}

type Dispute struct {
	RaisedBy   string        `json:"raised_by"`
	Reason     string        `json:"reason"`
	Status     DisputeStatus `json:"status"`
	Resolution string        `json:"resolution,omitempty"`
	RaisedAt   time.Time     `json:"raised_at"`
	ResolvedAt *time.Time    `json:"resolved_at,omitempty"`
}

// Escrow is the aggregate root. Milestones are owned by value and addressed by
// MilestoneID; callers receive copies from stores, never shared references.
type Escrow struct {
	EscrowID    string
	ProjectID   string
	ClientID    string
	WorkerID    string
	TotalAmount decimal.Decimal
	Currency    string
	Status      EscrowStatus
	Milestones  []Milestone
	Dispute     *Dispute
	Version     int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// MilestoneIndex returns the position of milestoneID, or -1.
func (e Escrow) MilestoneIndex(milestoneID string) int {
	for i := range e.Milestones {
		if e.Milestones[i].MilestoneID == milestoneID {
			return i
		}
	}
	return -1
}

// HasActiveDispute is true while a raised dispute has not been resolved.
func (e Escrow) HasActiveDispute() bool {
	return e.Dispute != nil && e.Dispute.Status == DisputeStatusPending
}

// Clone returns a deep copy so mutations never leak into a stored snapshot.
func (e Escrow) Clone() Escrow {
	out := e
	out.Milestones = make([]Milestone, len(e.Milestones))
	for i, milestone := range e.Milestones {
		if milestone.CompletedAt != nil {
			completedAt := *milestone.CompletedAt
			milestone.CompletedAt = &completedAt
		}
		out.Milestones[i] = milestone
	}
	if e.Dispute != nil {
		dispute := *e.Dispute
		if dispute.ResolvedAt != nil {
			resolvedAt := *dispute.ResolvedAt
			dispute.ResolvedAt = &resolvedAt
		}
		out.Dispute = &dispute
	}
	return out
}

// Project is the read-only view of a project supplied by the project directory.
type Project struct {
	ProjectID      string
	ClientID       string
	WorkerID       string
	BudgetCurrency string
	EscrowID       string
}
