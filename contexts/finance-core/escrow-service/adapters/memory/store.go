package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"covenant/contexts/finance-core/escrow-service/domain/entities"
	domainerrors "covenant/contexts/finance-core/escrow-service/domain/errors"
	"covenant/contexts/finance-core/escrow-service/ports"

	"github.com/google/uuid"
)

// escrowRecord serializes writers of a single escrow. Different escrows never
// share a record lock.
type escrowRecord struct {
	mu     sync.Mutex
	escrow entities.Escrow
}

type outboxRow struct {
	message     ports.OutboxMessage
	publishedAt *time.Time
}

type Store struct {
	// mu guards the index maps only; it is never held while waiting on a record.
	mu        sync.RWMutex
	escrows   map[string]*escrowRecord
	byProject map[string]string
	projects  map[string]entities.Project

	outboxMu sync.Mutex
	outbox   []outboxRow
}

func NewStore(seed []entities.Project) *Store {
	projects := make(map[string]entities.Project, len(seed))
	for _, project := range seed {
		projects[strings.TrimSpace(project.ProjectID)] = project
	}
	return &Store{
		escrows:   make(map[string]*escrowRecord),
		byProject: make(map[string]string),
		projects:  projects,
		outbox:    make([]outboxRow, 0),
	}
}

// UpsertProject registers or refreshes a project in the directory view,
// keeping any escrow back-reference already linked.
func (s *Store) UpsertProject(_ context.Context, project entities.Project) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	project.ProjectID = strings.TrimSpace(project.ProjectID)
	if existing, ok := s.projects[project.ProjectID]; ok {
		project.EscrowID = existing.EscrowID
	}
	s.projects[project.ProjectID] = project
	return nil
}

func (s *Store) GetProject(_ context.Context, projectID string) (entities.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	project, exists := s.projects[strings.TrimSpace(projectID)]
	if !exists {
		return entities.Project{}, domainerrors.ErrProjectNotFound
	}
	return project, nil
}

func (s *Store) LinkEscrow(_ context.Context, projectID string, escrowID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	project, exists := s.projects[strings.TrimSpace(projectID)]
	if !exists {
		return domainerrors.ErrProjectNotFound
	}
	project.EscrowID = strings.TrimSpace(escrowID)
	s.projects[project.ProjectID] = project
	return nil
}

func (s *Store) Create(_ context.Context, escrow entities.Escrow, events []ports.EventEnvelope) error {
	rows, err := outboxRowsFromEnvelopes(events)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byProject[escrow.ProjectID]; exists {
		return domainerrors.ErrEscrowExists
	}
	if _, exists := s.escrows[escrow.EscrowID]; exists {
		return domainerrors.ErrEscrowExists
	}
	s.escrows[escrow.EscrowID] = &escrowRecord{escrow: escrow.Clone()}
	s.byProject[escrow.ProjectID] = escrow.EscrowID
	s.appendOutbox(rows)
	return nil
}

func (s *Store) GetByID(_ context.Context, escrowID string) (entities.Escrow, error) {
	record, ok := s.record(strings.TrimSpace(escrowID))
	if !ok {
		return entities.Escrow{}, domainerrors.ErrEscrowNotFound
	}
	record.mu.Lock()
	defer record.mu.Unlock()

	return record.escrow.Clone(), nil
}

func (s *Store) GetByProject(ctx context.Context, projectID string) (entities.Escrow, error) {
	s.mu.RLock()
	escrowID, exists := s.byProject[strings.TrimSpace(projectID)]
	s.mu.RUnlock()
	if !exists {
		return entities.Escrow{}, domainerrors.ErrEscrowNotFound
	}
	return s.GetByID(ctx, escrowID)
}

func (s *Store) List(_ context.Context, filter ports.EscrowFilter) ([]entities.Escrow, error) {
	s.mu.RLock()
	records := make([]*escrowRecord, 0, len(s.escrows))
	for _, record := range s.escrows {
		records = append(records, record)
	}
	s.mu.RUnlock()

	actorID := strings.TrimSpace(filter.ActorID)
	items := make([]entities.Escrow, 0)
	for _, record := range records {
		record.mu.Lock()
		escrow := record.escrow.Clone()
		record.mu.Unlock()

		if !matchesRole(escrow, actorID, filter.Role) {
			continue
		}
		if filter.Status != "" && escrow.Status != filter.Status {
			continue
		}
		items = append(items, escrow)
	}
	sort.Slice(items, func(i, j int) bool {
		if !items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].CreatedAt.After(items[j].CreatedAt)
		}
		return items[i].EscrowID < items[j].EscrowID
	})
	return items, nil
}

func (s *Store) LoadForUpdate(_ context.Context, escrowID string) (entities.Escrow, int64, error) {
	record, ok := s.record(strings.TrimSpace(escrowID))
	if !ok {
		return entities.Escrow{}, 0, domainerrors.ErrEscrowNotFound
	}
	record.mu.Lock()
	defer record.mu.Unlock()

	return record.escrow.Clone(), record.escrow.Version, nil
}

func (s *Store) Commit(
	_ context.Context,
	escrow entities.Escrow,
	expectedVersion int64,
	events []ports.EventEnvelope,
) error {
	rows, err := outboxRowsFromEnvelopes(events)
	if err != nil {
		return err
	}
	record, ok := s.record(escrow.EscrowID)
	if !ok {
		return domainerrors.ErrEscrowNotFound
	}

	record.mu.Lock()
	defer record.mu.Unlock()

	if record.escrow.Version != expectedVersion {
		return domainerrors.ErrStaleVersion
	}
	next := escrow.Clone()
	next.Version = expectedVersion + 1
	record.escrow = next
	s.appendOutbox(rows)
	return nil
}

func (s *Store) ListPendingOutbox(_ context.Context, limit int) ([]ports.OutboxMessage, error) {
	s.outboxMu.Lock()
	defer s.outboxMu.Unlock()

	if limit <= 0 {
		limit = 100
	}
	items := make([]ports.OutboxMessage, 0, limit)
	for _, row := range s.outbox {
		if row.publishedAt != nil {
			continue
		}
		message := row.message
		message.Payload = append([]byte(nil), row.message.Payload...)
		items = append(items, message)
		if len(items) == limit {
			break
		}
	}
	return items, nil
}

func (s *Store) MarkOutboxPublished(_ context.Context, outboxID string, publishedAt time.Time) error {
	s.outboxMu.Lock()
	defer s.outboxMu.Unlock()

	for i := range s.outbox {
		if s.outbox[i].message.OutboxID == strings.TrimSpace(outboxID) {
			timestamp := publishedAt.UTC()
			s.outbox[i].publishedAt = &timestamp
			return nil
		}
	}
	return fmt.Errorf("escrow outbox row %q not found", outboxID)
}

// OutboxEvents returns every envelope written so far, in commit order.
func (s *Store) OutboxEvents() []ports.EventEnvelope {
	s.outboxMu.Lock()
	defer s.outboxMu.Unlock()

	items := make([]ports.EventEnvelope, 0, len(s.outbox))
	for _, row := range s.outbox {
		var envelope ports.EventEnvelope
		if err := json.Unmarshal(row.message.Payload, &envelope); err != nil {
			continue
		}
		items = append(items, envelope)
	}
	return items
}

func (s *Store) Now() time.Time {
	return time.Now().UTC()
}

func (s *Store) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}

func (s *Store) record(escrowID string) (*escrowRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.escrows[escrowID]
	return record, ok
}

func (s *Store) appendOutbox(rows []outboxRow) {
	s.outboxMu.Lock()
	defer s.outboxMu.Unlock()

	s.outbox = append(s.outbox, rows...)
}

func outboxRowsFromEnvelopes(events []ports.EventEnvelope) ([]outboxRow, error) {
	rows := make([]outboxRow, 0, len(events))
	for _, event := range events {
		payload, err := json.Marshal(event)
		if err != nil {
			return nil, err
		}
		outboxID := strings.TrimSpace(event.EventID)
		if outboxID == "" {
			outboxID = uuid.NewString()
		}
		createdAt := event.OccurredAt.UTC()
		if createdAt.IsZero() {
			createdAt = time.Now().UTC()
		}
		rows = append(rows, outboxRow{message: ports.OutboxMessage{
			OutboxID:     outboxID,
			EventType:    event.EventType,
			PartitionKey: event.PartitionKey,
			Payload:      payload,
			CreatedAt:    createdAt,
		}})
	}
	return rows, nil
}

func matchesRole(escrow entities.Escrow, actorID string, role entities.Role) bool {
	if actorID == "" {
		return false
	}
	switch role {
	case entities.RoleClient:
		return escrow.ClientID == actorID
	case entities.RoleWorker:
		return escrow.WorkerID == actorID
	default:
		return escrow.ClientID == actorID || escrow.WorkerID == actorID
	}
}
