package persistence

import (
	"context"

	"github.com/wastetrack/backend/internal/domain/manifest"
	"gorm.io/gorm"
)

// GormUnitOfWork implements manifest.UnitOfWork. Because the event log
// and the current-state rows share one database, a mutation's dual
// write (row update + event append) commits or rolls back as a unit.
type GormUnitOfWork struct {
	db *gorm.DB
}

// NewGormUnitOfWork creates a new GormUnitOfWork
func NewGormUnitOfWork(db *gorm.DB) *GormUnitOfWork {
	return &GormUnitOfWork{db: db}
}

// Execute runs fn inside a single transaction; all stores handed to fn
// are bound to that transaction.
func (u *GormUnitOfWork) Execute(ctx context.Context, fn func(stores manifest.TxStores) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(manifest.TxStores{
			Events:    NewGormEventStore(tx),
			Manifests: NewGormManifestRepository(tx),
			Revisions: NewGormRevisionRepository(tx),
		})
	})
}
