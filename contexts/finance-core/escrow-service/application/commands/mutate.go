package commands

import (
	"context"
	"errors"
	"log/slog"
	"math/rand/v2"
	"time"

	application "covenant/contexts/finance-core/escrow-service/application"
	"covenant/contexts/finance-core/escrow-service/domain/entities"
	domainerrors "covenant/contexts/finance-core/escrow-service/domain/errors"
	"covenant/contexts/finance-core/escrow-service/ports"
)

const (
	maxCommitAttempts = 5
	commitBackoffBase = 2 * time.Millisecond
)

// mutation applies one command to a private copy of the escrow. It reports
// false when the command is a no-op, in which case nothing is committed.
type mutation func(escrow *entities.Escrow, now time.Time) ([]escrowEvent, bool, error)

type escrowMutator struct {
	Escrows     ports.EscrowStore
	Clock       ports.Clock
	IDGenerator ports.IDGenerator
	Logger      *slog.Logger
}

// apply runs load, mutate, commit under optimistic versioning. A stale commit
// backs off, reloads and recomputes from the fresh state.
func (m escrowMutator) apply(ctx context.Context, escrowID string, mutate mutation) (entities.Escrow, bool, error) {
	logger := application.ResolveLogger(m.Logger)
	unlock := escrowLocks.lock(escrowID)
	defer unlock()

	for attempt := 1; attempt <= maxCommitAttempts; attempt++ {
		escrow, version, err := m.Escrows.LoadForUpdate(ctx, escrowID)
		if err != nil {
			return entities.Escrow{}, false, err
		}

		now := m.now()
		events, changed, err := mutate(&escrow, now)
		if err != nil {
			return entities.Escrow{}, false, err
		}
		if !changed {
			return escrow, false, nil
		}

		escrow.UpdatedAt = now
		escrow.Version = version + 1
		envelopes, err := buildEnvelopes(ctx, m.IDGenerator, escrow, now, events)
		if err != nil {
			return entities.Escrow{}, false, err
		}

		err = m.Escrows.Commit(ctx, escrow, version, envelopes)
		if err == nil {
			return escrow, true, nil
		}
		if !errors.Is(err, domainerrors.ErrStaleVersion) {
			return entities.Escrow{}, false, err
		}
		logger.Debug("escrow commit lost version race",
			"event", "escrow_commit_stale_version",
			"module", "finance-core/escrow-service",
			"layer", "application",
			"escrow_id", escrowID,
			"expected_version", version,
			"attempt", attempt,
		)
		if attempt < maxCommitAttempts {
			if err := sleepBackoff(ctx, attempt); err != nil {
				return entities.Escrow{}, false, err
			}
		}
	}

	logger.Warn("escrow commit retries exhausted",
		"event", "escrow_commit_retries_exhausted",
		"module", "finance-core/escrow-service",
		"layer", "application",
		"escrow_id", escrowID,
		"attempts", maxCommitAttempts,
	)
	return entities.Escrow{}, false, domainerrors.ErrConcurrentModification
}

// sleepBackoff waits a jittered, linearly growing delay before the next attempt.
func sleepBackoff(ctx context.Context, attempt int) error {
	delay := commitBackoffBase*time.Duration(attempt) + rand.N(commitBackoffBase)
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (m escrowMutator) now() time.Time {
	if m.Clock != nil {
		return m.Clock.Now().UTC()
	}
	return time.Now().UTC()
}
