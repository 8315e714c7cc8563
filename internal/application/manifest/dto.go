package manifest

import (
	"time"

	"github.com/google/uuid"
	"github.com/wastetrack/backend/internal/domain/event"
	"github.com/wastetrack/backend/internal/domain/manifest"
)

// CreateManifestRequest represents a request to create a new manifest
type CreateManifestRequest struct {
	Fields map[string]any `json:"fields" binding:"required"`
}

// UpdateManifestRequest represents a request to update a manifest
type UpdateManifestRequest struct {
	Fields map[string]any `json:"fields" binding:"required"`
}

// SignManifestRequest represents a request to sign a manifest
type SignManifestRequest struct {
	SignatureType string `json:"signature_type" binding:"required,min=1,max=32"`
}

// CreateRevisionRequest represents a request to open a correction on a manifest
type CreateRevisionRequest struct {
	AuthoringSiret string         `json:"authoring_siret" binding:"required,len=14"`
	Comment        string         `json:"comment" binding:"max=500"`
	Content        map[string]any `json:"content" binding:"required"`
}

// ManifestResponse represents a manifest in API responses
type ManifestResponse struct {
	ID        string         `json:"id"`
	Family    string         `json:"family"`
	Status    string         `json:"status"`
	IsDeleted bool           `json:"is_deleted"`
	Fields    map[string]any `json:"fields"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// StateResponse represents a replayed manifest state in API responses
type StateResponse struct {
	ID     string         `json:"id"`
	Family string         `json:"family"`
	At     *time.Time     `json:"at,omitempty"`
	State  map[string]any `json:"state"`
}

// EventResponse represents one stream event in API responses
type EventResponse struct {
	ID         uuid.UUID      `json:"id"`
	Type       string         `json:"type"`
	Actor      string         `json:"actor"`
	Data       map[string]any `json:"data"`
	OccurredAt time.Time      `json:"occurred_at"`
	Seq        int64          `json:"seq"`
}

// RevisionResponse represents a correction request in API responses
type RevisionResponse struct {
	ID             uuid.UUID      `json:"id"`
	ManifestID     string         `json:"manifest_id"`
	Family         string         `json:"family"`
	AuthoringSiret string         `json:"authoring_siret"`
	Comment        string         `json:"comment"`
	Status         string         `json:"status"`
	Content        map[string]any `json:"content"`
	Initial        map[string]any `json:"initial,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

// ToManifestResponse converts a domain manifest to a response DTO
func ToManifestResponse(m *manifest.Manifest) ManifestResponse {
	return ManifestResponse{
		ID:        m.ID,
		Family:    string(m.Family),
		Status:    m.Status,
		IsDeleted: m.IsDeleted,
		Fields:    m.Fields,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

// ToManifestResponses converts a slice of domain manifests to response DTOs
func ToManifestResponses(manifests []manifest.Manifest) []ManifestResponse {
	responses := make([]ManifestResponse, len(manifests))
	for i := range manifests {
		responses[i] = ToManifestResponse(&manifests[i])
	}
	return responses
}

// ToEventResponse converts a domain event to a response DTO
func ToEventResponse(evt *event.Event) EventResponse {
	return EventResponse{
		ID:         evt.ID,
		Type:       evt.Type,
		Actor:      evt.Actor,
		Data:       evt.Data,
		OccurredAt: evt.OccurredAt,
		Seq:        evt.Seq,
	}
}

// ToEventResponses converts a slice of domain events to response DTOs
func ToEventResponses(events []event.Event) []EventResponse {
	responses := make([]EventResponse, len(events))
	for i := range events {
		responses[i] = ToEventResponse(&events[i])
	}
	return responses
}

// ToRevisionResponse converts a domain revision request to a response DTO
func ToRevisionResponse(r *manifest.RevisionRequest) RevisionResponse {
	return RevisionResponse{
		ID:             r.ID,
		ManifestID:     r.ManifestID,
		Family:         string(r.Family),
		AuthoringSiret: r.AuthoringSiret,
		Comment:        r.Comment,
		Status:         string(r.Status),
		Content:        r.Content,
		Initial:        r.Initial,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
}

// ToRevisionResponses converts a slice of domain revision requests to response DTOs
func ToRevisionResponses(revisions []manifest.RevisionRequest) []RevisionResponse {
	responses := make([]RevisionResponse, len(revisions))
	for i := range revisions {
		responses[i] = ToRevisionResponse(&revisions[i])
	}
	return responses
}
