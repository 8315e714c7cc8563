package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wastetrack/backend/internal/domain/event"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupEventTestDB creates an in-memory SQLite database for testing
func setupEventTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.Exec(`
		CREATE TABLE events (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL UNIQUE,
			stream_id TEXT NOT NULL,
			type TEXT NOT NULL,
			actor TEXT NOT NULL DEFAULT '',
			data BLOB NOT NULL,
			occurred_at DATETIME NOT NULL
		)
	`).Error
	require.NoError(t, err)

	return db
}

func TestGormEventStore_AppendAndReadStream(t *testing.T) {
	db := setupEventTestDB(t)
	store := NewGormEventStore(db)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	types := []string{"BsdaCreated", "BsdaUpdated", "BsdaSigned"}
	for i, typ := range types {
		evt := event.New("BSDA-20260301-0A1B2C3D", typ, "user-1", event.Payload{"step": float64(i)})
		evt.OccurredAt = base.Add(time.Duration(i) * time.Hour)
		require.NoError(t, store.Append(ctx, evt))
		assert.NotZero(t, evt.Seq)
	}

	events, err := store.ReadStream(ctx, "BSDA-20260301-0A1B2C3D")
	require.NoError(t, err)
	require.Len(t, events, 3)

	for i, evt := range events {
		assert.Equal(t, types[i], evt.Type)
		assert.Equal(t, "user-1", evt.Actor)
		assert.Equal(t, float64(i), evt.Data["step"])
		assert.NotEqual(t, uuid.Nil, evt.ID)
		if i > 0 {
			assert.Greater(t, evt.Seq, events[i-1].Seq)
		}
	}
}

func TestGormEventStore_ReadStreamUntil(t *testing.T) {
	db := setupEventTestDB(t)
	store := NewGormEventStore(db)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	for i, typ := range []string{"BsffCreated", "BsffUpdated", "BsffSigned"} {
		evt := event.New("BSFF-20260301-11112222", typ, "user-1", nil)
		evt.OccurredAt = base.Add(time.Duration(i) * time.Hour)
		require.NoError(t, store.Append(ctx, evt))
	}

	// The bound is inclusive: an event stamped exactly at the bound
	// is part of the replay.
	events, err := store.ReadStream(ctx, "BSFF-20260301-11112222", event.Until(base.Add(time.Hour)))
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "BsffCreated", events[0].Type)
	assert.Equal(t, "BsffUpdated", events[1].Type)

	// A bound before the first event yields an empty stream.
	events, err = store.ReadStream(ctx, "BSFF-20260301-11112222", event.Until(base.Add(-time.Minute)))
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestGormEventStore_ReadStreamUnknown(t *testing.T) {
	db := setupEventTestDB(t)
	store := NewGormEventStore(db)

	events, err := store.ReadStream(context.Background(), "BSDD-19990101-DEADBEEF")
	require.NoError(t, err)
	assert.NotNil(t, events)
	assert.Empty(t, events)
}

func TestGormEventStore_StreamsAreIsolated(t *testing.T) {
	db := setupEventTestDB(t)
	store := NewGormEventStore(db)
	ctx := context.Background()

	require.NoError(t, store.Append(ctx, event.New("BSVHU-20260301-AAAA0001", "BsvhuCreated", "u", nil)))
	require.NoError(t, store.Append(ctx, event.New("BSVHU-20260301-AAAA0002", "BsvhuCreated", "u", nil)))

	events, err := store.ReadStream(ctx, "BSVHU-20260301-AAAA0001")
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "BSVHU-20260301-AAAA0001", events[0].StreamID)
}

func TestGormEventStore_AppendAssignsDefaults(t *testing.T) {
	db := setupEventTestDB(t)
	store := NewGormEventStore(db)

	evt := &event.Event{StreamID: "BSDASRI-20260301-00FF00FF", Type: "BsdasriCreated"}
	require.NoError(t, store.Append(context.Background(), evt))
	assert.NotEqual(t, uuid.Nil, evt.ID)
	assert.False(t, evt.OccurredAt.IsZero())
	assert.NotZero(t, evt.Seq)
}

// setupMockDB wires gorm onto a sqlmock connection for failure-path tests.
func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{
		Conn:                 sqlDB,
		PreferSimpleProtocol: true,
	}), &gorm.Config{})
	require.NoError(t, err)

	return db, mock
}

func TestGormEventStore_AppendStorageError(t *testing.T) {
	db, mock := setupMockDB(t)
	store := NewGormEventStore(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "events"`).WillReturnError(assert.AnError)
	mock.ExpectRollback()

	err := store.Append(context.Background(), event.New("BSDD-20260301-01020304", "BsddCreated", "u", nil))
	require.Error(t, err)

	var storageErr *event.StorageError
	require.ErrorAs(t, err, &storageErr)
	assert.Equal(t, "append", storageErr.Op)
	assert.ErrorIs(t, err, assert.AnError)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormEventStore_ReadStreamStorageError(t *testing.T) {
	db, mock := setupMockDB(t)
	store := NewGormEventStore(db)

	mock.ExpectQuery(`SELECT \* FROM "events"`).WillReturnError(assert.AnError)

	events, err := store.ReadStream(context.Background(), "BSDD-20260301-01020304")
	require.Error(t, err)
	assert.Nil(t, events)

	var storageErr *event.StorageError
	require.ErrorAs(t, err, &storageErr)
	assert.Equal(t, "read", storageErr.Op)
	assert.NoError(t, mock.ExpectationsWereMet())
}
