package services

import (
	"strings"

	"covenant/contexts/finance-core/escrow-service/domain/entities"
	domainerrors "covenant/contexts/finance-core/escrow-service/domain/errors"

	"github.com/shopspring/decimal"
)

// AmountScale is the number of decimal places stored for money amounts.
const AmountScale = 4

// ValidateMilestoneSpecs rejects empty sets, blank titles, non-positive
// amounts and amounts finer than AmountScale.
func ValidateMilestoneSpecs(specs []entities.MilestoneSpec) error {
	if len(specs) == 0 {
		return domainerrors.ErrNoMilestones
	}
	for _, spec := range specs {
		if strings.TrimSpace(spec.Title) == "" {
			return domainerrors.ErrInvalidMilestone
		}
		if !spec.Amount.IsPositive() {
			return domainerrors.ErrNonPositiveAmount
		}
		if !spec.Amount.Equal(spec.Amount.Round(AmountScale)) {
			return domainerrors.ErrAmountPrecision
		}
	}
	return nil
}

// TotalAmount is the authoritative escrow total: the exact sum of milestone amounts.
func TotalAmount(milestones []entities.Milestone) decimal.Decimal {
	total := decimal.Zero
	for _, milestone := range milestones {
		total = total.Add(milestone.Amount)
	}
	return total
}

// DeriveStatus computes the aggregate escrow status from milestone statuses only.
// It depends on the multiset of statuses, never on order or on a previous value.
func DeriveStatus(milestones []entities.Milestone) entities.EscrowStatus {
	if len(milestones) == 0 {
		return entities.EscrowStatusPending
	}
	released, funded := 0, 0
	for _, milestone := range milestones {
		switch milestone.Status {
		case entities.MilestoneStatusReleased:
			released++
		case entities.MilestoneStatusFunded:
			funded++
		}
	}
	switch {
	case released == len(milestones):
		return entities.EscrowStatusReleased
	case released > 0:
		return entities.EscrowStatusPartiallyReleased
	case funded > 0:
		return entities.EscrowStatusFunded
	default:
		return entities.EscrowStatusPending
	}
}

// EffectiveStatus applies the dispute freeze on top of derivation.
func EffectiveStatus(escrow entities.Escrow) entities.EscrowStatus {
	if escrow.HasActiveDispute() {
		return entities.EscrowStatusDisputed
	}
	return DeriveStatus(escrow.Milestones)
}
