package manifest

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/wastetrack/backend/internal/domain/event"
)

// Manifest is the relational "current state" row: a materialized,
// queryable cache of the latest fold. It is kept in sync by the
// mutation path that also appends the event. The event stream, not
// this row, is the system of record.
type Manifest struct {
	ID        string
	Family    Family
	Status    string
	IsDeleted bool
	// Fields holds the document's field values, including
	// relational-only fields that are not event-sourced.
	Fields    event.State
	CreatedAt time.Time
	UpdatedAt time.Time
}

// RevisionStatus is the lifecycle of a correction request.
type RevisionStatus string

const (
	RevisionPending  RevisionStatus = "PENDING"
	RevisionAccepted RevisionStatus = "ACCEPTED"
	RevisionRefused  RevisionStatus = "REFUSED"
)

// RevisionRequest is a proposed correction to a manifest. Initial
// captures the values the manifest held at the moment the request was
// filed, computed by replaying the stream at that instant; once
// written it is immutable and serves only as the diff baseline.
type RevisionRequest struct {
	ID             uuid.UUID
	ManifestID     string
	Family         Family
	AuthoringSiret string
	Comment        string
	Status         RevisionStatus
	Content        map[string]any
	Initial        map[string]any
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// NewManifestID builds a readable document identifier, e.g.
// BSDA-20260831-7F3A91C2. Identifiers are assigned at creation and
// reused by every subsequent event for the document.
func NewManifestID(family Family, now time.Time) string {
	buf := make([]byte, 4)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand never fails on supported platforms; fall back to
		// a uuid fragment rather than panic in the mutation path.
		return fmt.Sprintf("%s-%s-%s", family, now.Format("20060102"), uuid.NewString()[:8])
	}
	return fmt.Sprintf("%s-%s-%s", family, now.Format("20060102"), strings.ToUpper(hex.EncodeToString(buf)))
}
