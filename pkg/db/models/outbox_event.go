package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vora-labs/gogo-admin/pkg/enums"
	"github.com/vora-labs/gogo-admin/pkg/types"
)

// OutboxEvent represents an append-only event emitted via the outbox pattern.
// AggregateVersion is the aggregate version the event was queued for.
// DeadLetteredAt is set once the row is copied to outbox_dlq; such rows are
// never fetched, settled or counted as pending again.
type OutboxEvent struct {
	ID               uuid.UUID                 `gorm:"column:id;type:uuid;primaryKey"`
	EventType        enums.OutboxEventType     `gorm:"column:event_type;type:event_type_enum;not null"`
	AggregateType    enums.OutboxAggregateType `gorm:"column:aggregate_type;type:aggregate_type_enum;not null"`
	AggregateID      uuid.UUID                 `gorm:"column:aggregate_id;type:uuid;not null;index:idx_outbox_events_aggregate"`
	AggregateVersion int                       `gorm:"column:aggregate_version;not null;default:0"`
	Payload          types.RawJSON             `gorm:"column:payload;type:jsonb;not null"`
	CreatedAt        time.Time                 `gorm:"column:created_at;autoCreateTime"`
	PublishedAt      *time.Time                `gorm:"column:published_at"`
	AttemptCount     int                       `gorm:"column:attempt_count;not null"`
	NextAttemptAt    *time.Time                `gorm:"column:next_attempt_at"`
	LastError        *string                   `gorm:"column:last_error"`
	DeadLetteredAt   *time.Time                `gorm:"column:dead_lettered_at"`
}

func (OutboxEvent) TableName() string { return "outbox_events" }

func (e *OutboxEvent) BeforeCreate(*gorm.DB) error {
	ensureID(&e.ID)
	return nil
}
