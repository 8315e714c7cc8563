package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/wastetrack/backend/internal/domain/event"
)

// EventModel is the persistence model for the append-only event log.
// Seq is the append-order key; within a stream it is the only ordering
// the fold relies on. Rows are inserted once and never updated or
// deleted.
type EventModel struct {
	Seq        int64     `gorm:"primaryKey;autoIncrement"`
	ID         uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"`
	StreamID   string    `gorm:"type:varchar(64);not null;index"`
	Type       string    `gorm:"type:varchar(64);not null"`
	Actor      string    `gorm:"type:varchar(64);not null"`
	Data       []byte    `gorm:"type:jsonb;not null"`
	OccurredAt time.Time `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (EventModel) TableName() string {
	return "events"
}

// ToDomain converts the persistence model to a domain event
func (m *EventModel) ToDomain() (*event.Event, error) {
	var data event.Payload
	if len(m.Data) > 0 {
		if err := json.Unmarshal(m.Data, &data); err != nil {
			return nil, fmt.Errorf("failed to unmarshal event %s payload: %w", m.ID, err)
		}
	}
	return &event.Event{
		ID:         m.ID,
		StreamID:   m.StreamID,
		Type:       m.Type,
		Actor:      m.Actor,
		Data:       data,
		OccurredAt: m.OccurredAt,
		Seq:        m.Seq,
	}, nil
}

// EventModelFromDomain creates a persistence model from a domain event
func EventModelFromDomain(e *event.Event) (*EventModel, error) {
	data, err := json.Marshal(e.Data)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event payload: %w", err)
	}
	occurredAt := e.OccurredAt
	if occurredAt.IsZero() {
		occurredAt = time.Now()
	}
	id := e.ID
	if id == uuid.Nil {
		id = uuid.New()
	}
	return &EventModel{
		ID:         id,
		StreamID:   e.StreamID,
		Type:       e.Type,
		Actor:      e.Actor,
		Data:       data,
		OccurredAt: occurredAt,
	}, nil
}
