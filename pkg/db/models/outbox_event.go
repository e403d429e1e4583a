package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/simasosial/simasosial-backend/pkg/enums"
)

// OutboxEvent is a domain event awaiting publication to Pub/Sub.
type OutboxEvent struct {
	ID            uuid.UUID                 `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	EventType     enums.OutboxEventType     `gorm:"column:event_type;type:text;not null;index"`
	AggregateType enums.OutboxAggregateType `gorm:"column:aggregate_type;type:text;not null"`
	AggregateID   uuid.UUID                 `gorm:"column:aggregate_id;type:uuid;not null"`
	Payload       json.RawMessage           `gorm:"column:payload;type:jsonb;not null"`
	AttemptCount  int                       `gorm:"column:attempt_count;not null;default:0"`
	LastError     *string                   `gorm:"column:last_error;type:text"`
	PublishedAt   *time.Time                `gorm:"column:published_at;type:timestamptz"`
	CreatedAt     time.Time                 `gorm:"column:created_at;type:timestamptz;default:now()"`
}
