package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/wastetrack/backend/internal/domain/manifest"
	"github.com/wastetrack/backend/internal/domain/shared"
	"github.com/wastetrack/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormManifestRepository implements manifest.Repository using GORM
type GormManifestRepository struct {
	db *gorm.DB
}

// NewGormManifestRepository creates a new GormManifestRepository
func NewGormManifestRepository(db *gorm.DB) *GormManifestRepository {
	return &GormManifestRepository{db: db}
}

// WithTx returns a repository bound to the given transaction.
func (r *GormManifestRepository) WithTx(tx *gorm.DB) *GormManifestRepository {
	return &GormManifestRepository{db: tx}
}

// Save upserts the current-state row.
func (r *GormManifestRepository) Save(ctx context.Context, m *manifest.Manifest) error {
	model, err := models.ManifestModelFromDomain(m)
	if err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Save(model).Error; err != nil {
		return fmt.Errorf("failed to save manifest %s: %w", m.ID, err)
	}
	return nil
}

// FindByID finds a manifest row by family and id
func (r *GormManifestRepository) FindByID(ctx context.Context, family manifest.Family, id string) (*manifest.Manifest, error) {
	var model models.ManifestModel
	if err := r.db.WithContext(ctx).
		Where("family = ? AND id = ?", string(family), id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain()
}

// FindAll finds all manifest rows of a family
func (r *GormManifestRepository) FindAll(ctx context.Context, family manifest.Family, includeDeleted bool) ([]manifest.Manifest, error) {
	query := r.db.WithContext(ctx).Where("family = ?", string(family))
	if !includeDeleted {
		query = query.Where("is_deleted = ?", false)
	}

	var manifestModels []models.ManifestModel
	if err := query.Order("created_at DESC").Find(&manifestModels).Error; err != nil {
		return nil, err
	}

	manifests := make([]manifest.Manifest, 0, len(manifestModels))
	for i := range manifestModels {
		m, err := manifestModels[i].ToDomain()
		if err != nil {
			return nil, err
		}
		manifests = append(manifests, *m)
	}
	return manifests, nil
}
