package errors

import (
	"errors"
	"fmt"
)

// Kind sentinels. Every specific error below wraps exactly one of them so the
// transport edge can pick a status with errors.Is.
var (
	ErrValidation = errors.New("validation error")
	ErrNotFound   = errors.New("not found")
	ErrForbidden  = errors.New("authorization error")
	ErrConflict   = errors.New("conflict")
)

var (
	ErrInvalidProjectID     = fmt.Errorf("%w: valid project id is required", ErrValidation)
	ErrInvalidEscrowID      = fmt.Errorf("%w: valid escrow id is required", ErrValidation)
	ErrInvalidMilestoneID   = fmt.Errorf("%w: valid milestone id is required", ErrValidation)
	ErrInvalidActorID       = fmt.Errorf("%w: authenticated actor id is required", ErrValidation)
	ErrNoMilestones         = fmt.Errorf("%w: at least one milestone is required", ErrValidation)
	ErrInvalidMilestone     = fmt.Errorf("%w: milestone title is required", ErrValidation)
	ErrNonPositiveAmount    = fmt.Errorf("%w: milestone amount must be greater than zero", ErrValidation)
	ErrAmountPrecision      = fmt.Errorf("%w: milestone amount supports at most 4 decimal places", ErrValidation)
	ErrInvalidDueDate       = fmt.Errorf("%w: milestone due date must be RFC3339 or YYYY-MM-DD", ErrValidation)
	ErrDisputeReasonMissing = fmt.Errorf("%w: dispute reason is required", ErrValidation)
	ErrInvalidListFilter    = fmt.Errorf("%w: invalid list filter", ErrValidation)

	ErrProjectNotFound   = fmt.Errorf("%w: project not found", ErrNotFound)
	ErrEscrowNotFound    = fmt.Errorf("%w: escrow not found", ErrNotFound)
	ErrMilestoneNotFound = fmt.Errorf("%w: milestone not found", ErrNotFound)

	ErrNotProjectClient = fmt.Errorf("%w: only the project client can create an escrow", ErrForbidden)
	ErrNotEscrowClient  = fmt.Errorf("%w: only the client can fund milestones", ErrForbidden)
	ErrNotParticipant   = fmt.Errorf("%w: actor is not a participant of this escrow", ErrForbidden)

	ErrEscrowExists        = fmt.Errorf("%w: an escrow already exists for this project", ErrConflict)
	ErrMilestoneNotPending = fmt.Errorf("%w: only pending milestones can be funded", ErrConflict)
	ErrMilestoneNotFunded  = fmt.Errorf("%w: only funded milestones can be released", ErrConflict)
	ErrDisputeActive       = fmt.Errorf("%w: a dispute is already active for this escrow", ErrConflict)
	ErrEscrowFrozen        = fmt.Errorf("%w: escrow is frozen by an active dispute", ErrConflict)

	ErrConcurrentModification = fmt.Errorf("%w: escrow was modified concurrently, retry the request", ErrConflict)
)

// ErrStaleVersion is returned by stores when an optimistic commit loses the
// race. Commands reload and retry; it only escapes as ErrConcurrentModification.
var ErrStaleVersion = errors.New("stale escrow version")

// KindOf returns the taxonomy name of err, or "internal" when it carries none.
func KindOf(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrValidation):
		return "validation"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrForbidden):
		return "authorization"
	case errors.Is(err, ErrConflict):
		return "conflict"
	default:
		return "internal"
	}
}
