package persistence

import (
	"context"

	"github.com/wastetrack/backend/internal/domain/event"
	"github.com/wastetrack/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormEventStore implements event.Store on the shared Postgres
// database. The table is append-only: this store never updates or
// deletes rows, so readers need no locking discipline; a bounded read
// simply sees whatever prefix of the stream existed at query time.
type GormEventStore struct {
	db *gorm.DB
}

// NewGormEventStore creates a new GormEventStore
func NewGormEventStore(db *gorm.DB) *GormEventStore {
	return &GormEventStore{db: db}
}

// WithTx returns a store bound to the given transaction.
func (s *GormEventStore) WithTx(tx *gorm.DB) *GormEventStore {
	return &GormEventStore{db: tx}
}

// Append durably persists one event. It never reorders or
// deduplicates; the caller is responsible for not double-appending.
func (s *GormEventStore) Append(ctx context.Context, evt *event.Event) error {
	model, err := models.EventModelFromDomain(evt)
	if err != nil {
		return &event.StorageError{Op: "append", Err: err}
	}
	if err := s.db.WithContext(ctx).Create(model).Error; err != nil {
		return &event.StorageError{Op: "append", Err: err}
	}
	// Reflect the store-assigned ordering key and timestamp back so
	// the caller sees the event exactly as persisted.
	evt.ID = model.ID
	evt.Seq = model.Seq
	evt.OccurredAt = model.OccurredAt
	return nil
}

// ReadStream returns the ordered, finite stream for an identifier,
// optionally truncated at an instant (inclusive). An unknown stream
// yields an empty slice.
func (s *GormEventStore) ReadStream(ctx context.Context, streamID string, opts ...event.ReadOption) ([]event.Event, error) {
	options := event.NewReadOptions(opts)

	query := s.db.WithContext(ctx).Where("stream_id = ?", streamID)
	if options.Until != nil {
		query = query.Where("occurred_at <= ?", *options.Until)
	}

	var eventModels []models.EventModel
	if err := query.Order("seq ASC").Find(&eventModels).Error; err != nil {
		return nil, &event.StorageError{Op: "read", Err: err}
	}

	events := make([]event.Event, 0, len(eventModels))
	for i := range eventModels {
		evt, err := eventModels[i].ToDomain()
		if err != nil {
			return nil, &event.StorageError{Op: "read", Err: err}
		}
		events = append(events, *evt)
	}
	return events, nil
}
