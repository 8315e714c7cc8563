package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/wastetrack/backend/internal/domain/event"
	"github.com/wastetrack/backend/internal/domain/manifest"
)

// ManifestModel is the persistence model for the relational
// current-state row: a materialized cache of the latest fold plus
// fields that are not event-sourced.
type ManifestModel struct {
	ID        string    `gorm:"type:varchar(64);primaryKey"`
	Family    string    `gorm:"type:varchar(16);not null;index:idx_manifests_family_status,priority:1"`
	Status    string    `gorm:"type:varchar(32);not null;index:idx_manifests_family_status,priority:2"`
	IsDeleted bool      `gorm:"not null;default:false"`
	Fields    []byte    `gorm:"type:jsonb;not null"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (ManifestModel) TableName() string {
	return "manifests"
}

// ToDomain converts the persistence model to a domain manifest
func (m *ManifestModel) ToDomain() (*manifest.Manifest, error) {
	var fields event.State
	if len(m.Fields) > 0 {
		if err := json.Unmarshal(m.Fields, &fields); err != nil {
			return nil, fmt.Errorf("failed to unmarshal manifest %s fields: %w", m.ID, err)
		}
	}
	return &manifest.Manifest{
		ID:        m.ID,
		Family:    manifest.Family(m.Family),
		Status:    m.Status,
		IsDeleted: m.IsDeleted,
		Fields:    fields,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}, nil
}

// ManifestModelFromDomain creates a persistence model from a domain manifest
func ManifestModelFromDomain(d *manifest.Manifest) (*ManifestModel, error) {
	fields, err := json.Marshal(d.Fields)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal manifest fields: %w", err)
	}
	return &ManifestModel{
		ID:        d.ID,
		Family:    string(d.Family),
		Status:    d.Status,
		IsDeleted: d.IsDeleted,
		Fields:    fields,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}, nil
}
