package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/wastetrack/backend/internal/domain/manifest"
)

// RevisionRequestModel is the persistence model for correction
// requests. Initial is the immutable baseline snapshot written at
// request creation; NULL means the snapshot has not been backfilled.
type RevisionRequestModel struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey"`
	ManifestID     string    `gorm:"type:varchar(64);not null;index:idx_revisions_manifest"`
	Family         string    `gorm:"type:varchar(16);not null"`
	AuthoringSiret string    `gorm:"type:varchar(14)"`
	Comment        string    `gorm:"type:text"`
	Status         string    `gorm:"type:varchar(16);not null;default:PENDING;index"`
	Content        []byte    `gorm:"type:jsonb;not null"`
	Initial        []byte    `gorm:"type:jsonb"`
	CreatedAt      time.Time `gorm:"not null"`
	UpdatedAt      time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (RevisionRequestModel) TableName() string {
	return "revision_requests"
}

// ToDomain converts the persistence model to a domain revision request
func (m *RevisionRequestModel) ToDomain() (*manifest.RevisionRequest, error) {
	var content, initial map[string]any
	if len(m.Content) > 0 {
		if err := json.Unmarshal(m.Content, &content); err != nil {
			return nil, fmt.Errorf("failed to unmarshal revision %s content: %w", m.ID, err)
		}
	}
	if len(m.Initial) > 0 {
		if err := json.Unmarshal(m.Initial, &initial); err != nil {
			return nil, fmt.Errorf("failed to unmarshal revision %s snapshot: %w", m.ID, err)
		}
	}
	return &manifest.RevisionRequest{
		ID:             m.ID,
		ManifestID:     m.ManifestID,
		Family:         manifest.Family(m.Family),
		AuthoringSiret: m.AuthoringSiret,
		Comment:        m.Comment,
		Status:         manifest.RevisionStatus(m.Status),
		Content:        content,
		Initial:        initial,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}, nil
}

// RevisionRequestModelFromDomain creates a persistence model from a domain revision request
func RevisionRequestModelFromDomain(r *manifest.RevisionRequest) (*RevisionRequestModel, error) {
	content, err := json.Marshal(r.Content)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal revision content: %w", err)
	}
	var initial []byte
	if r.Initial != nil {
		initial, err = json.Marshal(r.Initial)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal revision snapshot: %w", err)
		}
	}
	return &RevisionRequestModel{
		ID:             r.ID,
		ManifestID:     r.ManifestID,
		Family:         string(r.Family),
		AuthoringSiret: r.AuthoringSiret,
		Comment:        r.Comment,
		Status:         string(r.Status),
		Content:        content,
		Initial:        initial,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}, nil
}
