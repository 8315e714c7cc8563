package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/wastetrack/backend/internal/domain/manifest"
	"github.com/wastetrack/backend/internal/domain/shared"
	"github.com/wastetrack/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormRevisionRepository implements manifest.RevisionRepository using GORM
type GormRevisionRepository struct {
	db *gorm.DB
}

// NewGormRevisionRepository creates a new GormRevisionRepository
func NewGormRevisionRepository(db *gorm.DB) *GormRevisionRepository {
	return &GormRevisionRepository{db: db}
}

// WithTx returns a repository bound to the given transaction.
func (r *GormRevisionRepository) WithTx(tx *gorm.DB) *GormRevisionRepository {
	return &GormRevisionRepository{db: tx}
}

// Create persists a new revision request
func (r *GormRevisionRepository) Create(ctx context.Context, req *manifest.RevisionRequest) error {
	model, err := models.RevisionRequestModelFromDomain(req)
	if err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("failed to create revision request: %w", err)
	}
	return nil
}

// Update persists changes to a revision request
func (r *GormRevisionRepository) Update(ctx context.Context, req *manifest.RevisionRequest) error {
	model, err := models.RevisionRequestModelFromDomain(req)
	if err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Save(model).Error; err != nil {
		return fmt.Errorf("failed to update revision request %s: %w", req.ID, err)
	}
	return nil
}

// FindByID finds a revision request by id
func (r *GormRevisionRepository) FindByID(ctx context.Context, id uuid.UUID) (*manifest.RevisionRequest, error) {
	var model models.RevisionRequestModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain()
}

// FindByManifest finds all revision requests for a manifest
func (r *GormRevisionRepository) FindByManifest(ctx context.Context, family manifest.Family, manifestID string) ([]manifest.RevisionRequest, error) {
	var revisionModels []models.RevisionRequestModel
	if err := r.db.WithContext(ctx).
		Where("family = ? AND manifest_id = ?", string(family), manifestID).
		Order("created_at ASC").
		Find(&revisionModels).Error; err != nil {
		return nil, err
	}
	return toDomainRevisions(revisionModels)
}

// FindWithoutSnapshot returns requests missing a baseline snapshot,
// oldest first.
func (r *GormRevisionRepository) FindWithoutSnapshot(ctx context.Context, limit int) ([]manifest.RevisionRequest, error) {
	var revisionModels []models.RevisionRequestModel
	query := r.db.WithContext(ctx).
		Where("initial IS NULL").
		Order("created_at ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&revisionModels).Error; err != nil {
		return nil, err
	}
	return toDomainRevisions(revisionModels)
}

func toDomainRevisions(revisionModels []models.RevisionRequestModel) ([]manifest.RevisionRequest, error) {
	revisions := make([]manifest.RevisionRequest, 0, len(revisionModels))
	for i := range revisionModels {
		rev, err := revisionModels[i].ToDomain()
		if err != nil {
			return nil, err
		}
		revisions = append(revisions, *rev)
	}
	return revisions, nil
}
