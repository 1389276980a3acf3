package postgresadapter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"covenant/contexts/finance-core/escrow-service/domain/entities"
	domainerrors "covenant/contexts/finance-core/escrow-service/domain/errors"
	"covenant/contexts/finance-core/escrow-service/ports"

	mysqldriver "github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	outboxStatusPending   = "pending"
	outboxStatusPublished = "published"
)

// Repository implements the escrow store, the project directory read model,
// and the outbox on one gorm connection. Queries stay dialect neutral so the
// same code serves postgres and mysql.
type Repository struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewRepository(db *gorm.DB, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// Migrate creates or updates the escrow tables.
func (r *Repository) Migrate(ctx context.Context) error {
	if err := r.db.WithContext(ctx).AutoMigrate(&escrowModel{}, &projectModel{}, &outboxModel{}); err != nil {
		return fmt.Errorf("migrate escrow schema: %w", err)
	}
	r.logger.Info("escrow schema migrated",
		"event", "escrow_schema_migrated",
		"module", "finance-core/escrow-service",
		"layer", "adapter",
	)
	return nil
}

func (r *Repository) Create(ctx context.Context, escrow entities.Escrow, events []ports.EventEnvelope) error {
	row := escrowModelFromEntity(escrow)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&row).Error; err != nil {
			if isUniqueViolation(err) {
				return domainerrors.ErrEscrowExists
			}
			return err
		}
		for _, envelope := range events {
			if err := insertOutboxEnvelopeTx(tx, envelope); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *Repository) GetByID(ctx context.Context, escrowID string) (entities.Escrow, error) {
	return r.first(r.db.WithContext(ctx).Where("escrow_id = ?", strings.TrimSpace(escrowID)))
}

func (r *Repository) GetByProject(ctx context.Context, projectID string) (entities.Escrow, error) {
	return r.first(r.db.WithContext(ctx).Where("project_id = ?", strings.TrimSpace(projectID)))
}

func (r *Repository) List(ctx context.Context, filter ports.EscrowFilter) ([]entities.Escrow, error) {
	actorID := strings.TrimSpace(filter.ActorID)
	if actorID == "" {
		return []entities.Escrow{}, nil
	}

	tx := r.db.WithContext(ctx).Model(&escrowModel{})
	switch filter.Role {
	case entities.RoleClient:
		tx = tx.Where("client_id = ?", actorID)
	case entities.RoleWorker:
		tx = tx.Where("worker_id = ?", actorID)
	default:
		tx = tx.Where("client_id = ? OR worker_id = ?", actorID, actorID)
	}
	if filter.Status != "" {
		tx = tx.Where("status = ?", string(filter.Status))
	}

	var rows []escrowModel
	if err := tx.Order("created_at DESC").Order("escrow_id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}

	items := make([]entities.Escrow, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) LoadForUpdate(ctx context.Context, escrowID string) (entities.Escrow, int64, error) {
	escrow, err := r.GetByID(ctx, escrowID)
	if err != nil {
		return entities.Escrow{}, 0, err
	}
	return escrow, escrow.Version, nil
}

// Commit is a compare-and-swap on the version column. The escrow row and its
// outbox rows land in the same transaction.
func (r *Repository) Commit(
	ctx context.Context,
	escrow entities.Escrow,
	expectedVersion int64,
	events []ports.EventEnvelope,
) error {
	row := escrowModelFromEntity(escrow)
	row.Version = expectedVersion + 1

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&escrowModel{}).
			Where("escrow_id = ? AND version = ?", row.EscrowID, expectedVersion).
			Select("status", "milestones", "dispute", "version", "updated_at").
			Updates(&row)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			var count int64
			if err := tx.Model(&escrowModel{}).Where("escrow_id = ?", row.EscrowID).Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				return domainerrors.ErrEscrowNotFound
			}
			return domainerrors.ErrStaleVersion
		}
		for _, envelope := range events {
			if err := insertOutboxEnvelopeTx(tx, envelope); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *Repository) GetProject(ctx context.Context, projectID string) (entities.Project, error) {
	var row projectModel
	err := r.db.WithContext(ctx).
		Where("project_id = ?", strings.TrimSpace(projectID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Project{}, domainerrors.ErrProjectNotFound
		}
		return entities.Project{}, err
	}
	return row.toEntity(), nil
}

func (r *Repository) LinkEscrow(ctx context.Context, projectID string, escrowID string) error {
	result := r.db.WithContext(ctx).
		Model(&projectModel{}).
		Where("project_id = ?", strings.TrimSpace(projectID)).
		Updates(map[string]any{
			"escrow_id":  strings.TrimSpace(escrowID),
			"updated_at": time.Now().UTC(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrProjectNotFound
	}
	return nil
}

// UpsertProject refreshes the directory read model from the project lifecycle.
// An existing escrow back-reference is preserved.
func (r *Repository) UpsertProject(ctx context.Context, project entities.Project) error {
	row := projectModel{
		ProjectID:      strings.TrimSpace(project.ProjectID),
		ClientID:       strings.TrimSpace(project.ClientID),
		WorkerID:       strings.TrimSpace(project.WorkerID),
		BudgetCurrency: strings.ToUpper(strings.TrimSpace(project.BudgetCurrency)),
		UpdatedAt:      time.Now().UTC(),
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "project_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"client_id", "worker_id", "budget_currency", "updated_at"}),
		}).
		Create(&row).
		Error
}

func (r *Repository) ListPendingOutbox(ctx context.Context, limit int) ([]ports.OutboxMessage, error) {
	if limit <= 0 {
		limit = 100
	}

	var rows []outboxModel
	if err := r.db.WithContext(ctx).
		Where("status = ?", outboxStatusPending).
		Order("created_at ASC").
		Order("sequence ASC").
		Limit(limit).
		Find(&rows).
		Error; err != nil {
		return nil, err
	}

	items := make([]ports.OutboxMessage, 0, len(rows))
	for _, row := range rows {
		items = append(items, ports.OutboxMessage{
			OutboxID:     row.OutboxID,
			EventType:    row.EventType,
			PartitionKey: row.PartitionKey,
			Payload:      append([]byte(nil), row.Payload...),
			CreatedAt:    row.CreatedAt.UTC(),
		})
	}
	return items, nil
}

func (r *Repository) MarkOutboxPublished(ctx context.Context, outboxID string, publishedAt time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&outboxModel{}).
		Where("outbox_id = ?", strings.TrimSpace(outboxID)).
		Updates(map[string]any{
			"status":       outboxStatusPublished,
			"published_at": publishedAt.UTC(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("escrow outbox row %q not found", outboxID)
	}
	return nil
}

func (r *Repository) first(query *gorm.DB) (entities.Escrow, error) {
	var row escrowModel
	if err := query.First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Escrow{}, domainerrors.ErrEscrowNotFound
		}
		return entities.Escrow{}, err
	}
	return row.toEntity(), nil
}

func insertOutboxEnvelopeTx(tx *gorm.DB, envelope ports.EventEnvelope) error {
	payload, err := json.Marshal(envelope)
	if err != nil {
		return err
	}
	row := outboxModel{
		OutboxID:     strings.TrimSpace(envelope.EventID),
		EventType:    strings.TrimSpace(envelope.EventType),
		PartitionKey: strings.TrimSpace(envelope.PartitionKey),
		Payload:      payload,
		Status:       outboxStatusPending,
		Sequence:     nextOutboxSequence(),
		CreatedAt:    envelope.OccurredAt.UTC(),
	}
	if row.OutboxID == "" {
		row.OutboxID = uuid.NewString()
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "outbox_id"}},
		DoNothing: true,
	}).Create(&row).Error
}

var lastOutboxSequence atomic.Int64

// nextOutboxSequence is strictly increasing within the process. It follows the
// wall clock so rows from separate processes interleave roughly by time.
func nextOutboxSequence() int64 {
	for {
		last := lastOutboxSequence.Load()
		next := time.Now().UnixNano()
		if next <= last {
			next = last + 1
		}
		if lastOutboxSequence.CompareAndSwap(last, next) {
			return next
		}
	}
}

type escrowModel struct {
	EscrowID    string               `gorm:"column:escrow_id;primaryKey;size:64"`
	ProjectID   string               `gorm:"column:project_id;size:64;uniqueIndex"`
	ClientID    string               `gorm:"column:client_id;size:64;index"`
	WorkerID    string               `gorm:"column:worker_id;size:64;index"`
	TotalAmount decimal.Decimal      `gorm:"column:total_amount;type:numeric(20,4)"`
	Currency    string               `gorm:"column:currency;size:8"`
	Status      string               `gorm:"column:status;size:32;index"`
	Milestones  []entities.Milestone `gorm:"column:milestones;type:text;serializer:json"`
	Dispute     *entities.Dispute    `gorm:"column:dispute;type:text;serializer:json"`
	Version     int64                `gorm:"column:version"`
	CreatedAt   time.Time            `gorm:"column:created_at;autoCreateTime:false"`
	UpdatedAt   time.Time            `gorm:"column:updated_at;autoUpdateTime:false"`
}

func (escrowModel) TableName() string {
	return "escrows"
}

func escrowModelFromEntity(item entities.Escrow) escrowModel {
	clone := item.Clone()
	return escrowModel{
		EscrowID:    strings.TrimSpace(item.EscrowID),
		ProjectID:   strings.TrimSpace(item.ProjectID),
		ClientID:    strings.TrimSpace(item.ClientID),
		WorkerID:    strings.TrimSpace(item.WorkerID),
		TotalAmount: item.TotalAmount,
		Currency:    strings.TrimSpace(item.Currency),
		Status:      string(item.Status),
		Milestones:  clone.Milestones,
		Dispute:     clone.Dispute,
		Version:     item.Version,
		CreatedAt:   item.CreatedAt.UTC(),
		UpdatedAt:   item.UpdatedAt.UTC(),
	}
}

func (m escrowModel) toEntity() entities.Escrow {
	milestones := m.Milestones
	if milestones == nil {
		milestones = []entities.Milestone{}
	}
	return entities.Escrow{
		EscrowID:    m.EscrowID,
		ProjectID:   m.ProjectID,
		ClientID:    m.ClientID,
		WorkerID:    m.WorkerID,
		TotalAmount: m.TotalAmount,
		Currency:    m.Currency,
		Status:      entities.EscrowStatus(m.Status),
		Milestones:  milestones,
		Dispute:     m.Dispute,
		Version:     m.Version,
		CreatedAt:   m.CreatedAt.UTC(),
		UpdatedAt:   m.UpdatedAt.UTC(),
	}
}

type projectModel struct {
	ProjectID      string    `gorm:"column:project_id;primaryKey;size:64"`
	ClientID       string    `gorm:"column:client_id;size:64"`
	WorkerID       string    `gorm:"column:worker_id;size:64"`
	BudgetCurrency string    `gorm:"column:budget_currency;size:8"`
	EscrowID       string    `gorm:"column:escrow_id;size:64"`
	UpdatedAt      time.Time `gorm:"column:updated_at;autoUpdateTime:false"`
}

func (projectModel) TableName() string {
	return "escrow_projects"
}

func (m projectModel) toEntity() entities.Project {
	return entities.Project{
		ProjectID:      m.ProjectID,
		ClientID:       m.ClientID,
		WorkerID:       m.WorkerID,
		BudgetCurrency: m.BudgetCurrency,
		EscrowID:       m.EscrowID,
	}
}

type outboxModel struct {
	OutboxID     string     `gorm:"column:outbox_id;primaryKey;size:64"`
	EventType    string     `gorm:"column:event_type;size:64"`
	PartitionKey string     `gorm:"column:partition_key;size:64"`
	Payload      []byte     `gorm:"column:payload"`
	Status       string     `gorm:"column:status;size:16;index"`
	Sequence     int64      `gorm:"column:sequence"`
	CreatedAt    time.Time  `gorm:"column:created_at;autoCreateTime:false"`
	PublishedAt  *time.Time `gorm:"column:published_at"`
}

func (outboxModel) TableName() string {
	return "escrow_outbox"
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	var mysqlErr *mysqldriver.MySQLError
	return errors.As(err, &mysqlErr) && mysqlErr.Number == 1062
}
