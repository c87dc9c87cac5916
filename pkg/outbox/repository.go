package outbox

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/vora-labs/gogo-admin/pkg/db/models"
	"github.com/vora-labs/gogo-admin/pkg/enums"
)

const maxLastErrorLen = 1024

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Insert(tx *gorm.DB, event *models.OutboxEvent) error {
	if tx == nil {
		return errors.New("transaction required")
	}
	return tx.Create(event).Error
}

// FetchUnpublishedForPublish claims due events. Rows younger than
// createdBefore are left alone so the inline sync gets the first attempt.
func (r *Repository) FetchUnpublishedForPublish(tx *gorm.DB, limit, maxAttempts int, createdBefore time.Time) ([]models.OutboxEvent, error) {
	if tx == nil {
		return nil, errors.New("transaction required")
	}
	now := time.Now().UTC()
	query := tx.Where("published_at IS NULL AND dead_lettered_at IS NULL").
		Where("attempt_count < ?", maxAttempts).
		Where("created_at <= ?", createdBefore).
		Where("(next_attempt_at IS NULL OR next_attempt_at <= ?)", now).
		Order("created_at ASC").
		Order("id ASC").
		Limit(limit)
	if tx.Dialector.Name() == "postgres" {
		query = query.Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"})
	}
	var rows []models.OutboxEvent
	err := query.Find(&rows).Error
	return rows, err
}

func (r *Repository) MarkPublishedTx(tx *gorm.DB, id uuid.UUID) error {
	return tx.Model(&models.OutboxEvent{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"published_at": time.Now().UTC(),
		}).Error
}

// MarkAggregatePublishedTx settles the live events of one aggregate queued
// for upToVersion or earlier. A sync that read upToVersion covers those edits;
// events for later versions stay pending.
func (r *Repository) MarkAggregatePublishedTx(tx *gorm.DB, eventType enums.OutboxEventType, aggregateType enums.OutboxAggregateType, aggregateID uuid.UUID, upToVersion int) (int64, error) {
	res := tx.Model(&models.OutboxEvent{}).
		Where("event_type = ? AND aggregate_type = ? AND aggregate_id = ?", eventType, aggregateType, aggregateID).
		Where("published_at IS NULL AND dead_lettered_at IS NULL").
		Where("aggregate_version <= ?", upToVersion).
		Updates(map[string]any{
			"published_at": time.Now().UTC(),
		})
	return res.RowsAffected, res.Error
}

func (r *Repository) MarkAggregatePublished(ctx context.Context, eventType enums.OutboxEventType, aggregateType enums.OutboxAggregateType, aggregateID uuid.UUID, upToVersion int) (int64, error) {
	return r.MarkAggregatePublishedTx(r.db.WithContext(ctx), eventType, aggregateType, aggregateID, upToVersion)
}

func (r *Repository) MarkFailedTx(tx *gorm.DB, id uuid.UUID, err error, nextAttemptAt time.Time) error {
	return tx.Model(&models.OutboxEvent{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"last_error":      truncateError(err),
			"attempt_count":   gorm.Expr("attempt_count + 1"),
			"next_attempt_at": nextAttemptAt.UTC(),
		}).Error
}

// MarkTerminalTx stamps dead_lettered_at and pins attempt_count at
// terminalAttempts. The row stops blocking new events for its aggregate.
func (r *Repository) MarkTerminalTx(tx *gorm.DB, id uuid.UUID, err error, terminalAttempts int) error {
	return tx.Model(&models.OutboxEvent{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"last_error":       truncateError(err),
			"attempt_count":    terminalAttempts,
			"dead_lettered_at": time.Now().UTC(),
		}).Error
}

// ExistsPendingTx reports whether the aggregate has an event that is neither
// published nor dead-lettered.
func (r *Repository) ExistsPendingTx(tx *gorm.DB, eventType enums.OutboxEventType, aggregateType enums.OutboxAggregateType, aggregateID uuid.UUID) (bool, error) {
	var count int64
	err := tx.Model(&models.OutboxEvent{}).
		Where("event_type = ? AND aggregate_type = ? AND aggregate_id = ?", eventType, aggregateType, aggregateID).
		Where("published_at IS NULL AND dead_lettered_at IS NULL").
		Count(&count).Error
	return count > 0, err
}

// DeletePublishedBefore prunes settled and dead-lettered events older than
// cutoff. Dead-lettered payloads survive in outbox_dlq.
func (r *Repository) DeletePublishedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	cutoff = cutoff.UTC()
	res := r.db.WithContext(ctx).
		Where("(published_at IS NOT NULL AND published_at < ?) OR (dead_lettered_at IS NOT NULL AND dead_lettered_at < ?)", cutoff, cutoff).
		Delete(&models.OutboxEvent{})
	return res.RowsAffected, res.Error
}

func truncateError(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	if len(msg) > maxLastErrorLen {
		return msg[:maxLastErrorLen]
	}
	return msg
}
