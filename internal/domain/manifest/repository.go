package manifest

import (
	"context"

	"github.com/google/uuid"
	"github.com/wastetrack/backend/internal/domain/event"
)

// Repository persists the relational current-state rows.
type Repository interface {
	Save(ctx context.Context, m *Manifest) error
	FindByID(ctx context.Context, family Family, id string) (*Manifest, error)
	FindAll(ctx context.Context, family Family, includeDeleted bool) ([]Manifest, error)
}

// RevisionRepository persists correction requests and their immutable
// baseline snapshots.
type RevisionRepository interface {
	Create(ctx context.Context, r *RevisionRequest) error
	Update(ctx context.Context, r *RevisionRequest) error
	FindByID(ctx context.Context, id uuid.UUID) (*RevisionRequest, error)
	FindByManifest(ctx context.Context, family Family, manifestID string) ([]RevisionRequest, error)
	// FindWithoutSnapshot returns requests whose baseline snapshot has
	// not been written yet, oldest first, for sequential backfill.
	FindWithoutSnapshot(ctx context.Context, limit int) ([]RevisionRequest, error)
}

// TxStores groups the stores participating in one mutation. The event
// table and the current-state rows share a database, so the dual write
// runs atomically inside one transaction.
type TxStores struct {
	Events    event.Store
	Manifests Repository
	Revisions RevisionRepository
}

// UnitOfWork runs fn inside a single storage transaction; the stores
// handed to fn share that transaction.
type UnitOfWork interface {
	Execute(ctx context.Context, fn func(stores TxStores) error) error
}
