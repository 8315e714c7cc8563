package manifest

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/wastetrack/backend/internal/domain/event"
	"github.com/wastetrack/backend/internal/domain/manifest"
	"github.com/wastetrack/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// RevisionService handles the correction workflow: a third party files
// a proposed change against a manifest, and on acceptance the change is
// folded into the stream as a revision-applied event.
type RevisionService struct {
	uow       manifest.UnitOfWork
	manifests manifest.Repository
	revisions manifest.RevisionRepository
	events    event.Store
	logger    *zap.Logger
	clock     func() time.Time
}

// NewRevisionService creates a new RevisionService
func NewRevisionService(uow manifest.UnitOfWork, manifests manifest.Repository, revisions manifest.RevisionRepository, events event.Store, logger *zap.Logger) *RevisionService {
	return &RevisionService{
		uow:       uow,
		manifests: manifests,
		revisions: revisions,
		events:    events,
		logger:    logger,
		clock:     time.Now,
	}
}

// Create files a correction request against a manifest. The manifest's
// state at filing time is replayed and frozen as the request's baseline
// snapshot, so reviewers can always see exactly what the author was
// looking at, regardless of later edits.
func (s *RevisionService) Create(ctx context.Context, family manifest.Family, manifestID string, req CreateRevisionRequest) (*RevisionResponse, error) {
	descriptor, err := manifest.ForFamily(family)
	if err != nil {
		return nil, shared.NewDomainError("INVALID_INPUT", err.Error())
	}

	target, err := s.manifests.FindByID(ctx, family, manifestID)
	if err != nil {
		return nil, err
	}
	if target.IsDeleted {
		return nil, shared.ErrInvalidState
	}

	now := s.clock()
	snapshot, err := s.snapshotAt(ctx, descriptor, manifestID, now)
	if err != nil {
		return nil, err
	}

	revision := &manifest.RevisionRequest{
		ID:             uuid.New(),
		ManifestID:     manifestID,
		Family:         family,
		AuthoringSiret: req.AuthoringSiret,
		Comment:        req.Comment,
		Status:         manifest.RevisionPending,
		Content:        req.Content,
		Initial:        snapshot,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.revisions.Create(ctx, revision); err != nil {
		return nil, err
	}

	s.logger.Info("revision request filed",
		zap.String("manifest_id", manifestID),
		zap.String("revision_id", revision.ID.String()),
		zap.String("authoring_siret", req.AuthoringSiret),
	)

	response := ToRevisionResponse(revision)
	return &response, nil
}

// Accept approves a pending revision: the approved content is appended
// to the stream as a revision-applied event and the current-state row
// is re-materialized, atomically with the status change.
func (s *RevisionService) Accept(ctx context.Context, id uuid.UUID, actor string) (*RevisionResponse, error) {
	var accepted *manifest.RevisionRequest
	err := s.uow.Execute(ctx, func(stores manifest.TxStores) error {
		revision, err := stores.Revisions.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if revision.Status != manifest.RevisionPending {
			return shared.ErrInvalidState
		}

		descriptor, err := manifest.ForFamily(revision.Family)
		if err != nil {
			return err
		}
		current, err := stores.Manifests.FindByID(ctx, revision.Family, revision.ManifestID)
		if err != nil {
			return err
		}

		now := s.clock()
		evt := event.New(revision.ManifestID, descriptor.RevisionAppliedType, actor, event.Payload{
			"content":    revision.Content,
			"revisionId": revision.ID.String(),
		})
		evt.OccurredAt = now
		if err := stores.Events.Append(ctx, evt); err != nil {
			return err
		}

		events, err := stores.Events.ReadStream(ctx, revision.ManifestID)
		if err != nil {
			return err
		}
		state, err := event.Aggregate(events, descriptor.Reducer(), nil)
		if err != nil {
			return err
		}
		if err := stores.Manifests.Save(ctx, materialize(revision.Family, revision.ManifestID, state, current.CreatedAt, now)); err != nil {
			return err
		}

		revision.Status = manifest.RevisionAccepted
		revision.UpdatedAt = now
		if err := stores.Revisions.Update(ctx, revision); err != nil {
			return err
		}
		accepted = revision
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("revision accepted",
		zap.String("revision_id", id.String()),
		zap.String("manifest_id", accepted.ManifestID),
	)

	response := ToRevisionResponse(accepted)
	return &response, nil
}

// Refuse rejects a pending revision. Nothing reaches the stream.
func (s *RevisionService) Refuse(ctx context.Context, id uuid.UUID) (*RevisionResponse, error) {
	revision, err := s.revisions.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if revision.Status != manifest.RevisionPending {
		return nil, shared.ErrInvalidState
	}

	revision.Status = manifest.RevisionRefused
	revision.UpdatedAt = s.clock()
	if err := s.revisions.Update(ctx, revision); err != nil {
		return nil, err
	}

	response := ToRevisionResponse(revision)
	return &response, nil
}

// Get retrieves a revision request by id
func (s *RevisionService) Get(ctx context.Context, id uuid.UUID) (*RevisionResponse, error) {
	revision, err := s.revisions.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToRevisionResponse(revision)
	return &response, nil
}

// ListByManifest retrieves all revision requests filed against a
// manifest, oldest first
func (s *RevisionService) ListByManifest(ctx context.Context, family manifest.Family, manifestID string) ([]RevisionResponse, error) {
	revisions, err := s.revisions.FindByManifest(ctx, family, manifestID)
	if err != nil {
		return nil, err
	}
	return ToRevisionResponses(revisions), nil
}

// BackfillSnapshots computes and stores the missing baseline snapshot
// for up to limit requests created before snapshots were recorded. Each
// snapshot is the replay of the manifest's stream at the request's
// creation instant. Requests are processed one at a time: a failure
// stops the run and reports how many were completed.
func (s *RevisionService) BackfillSnapshots(ctx context.Context, limit int) (int, error) {
	pending, err := s.revisions.FindWithoutSnapshot(ctx, limit)
	if err != nil {
		return 0, err
	}

	done := 0
	for i := range pending {
		revision := &pending[i]
		descriptor, err := manifest.ForFamily(revision.Family)
		if err != nil {
			return done, err
		}
		snapshot, err := s.snapshotAt(ctx, descriptor, revision.ManifestID, revision.CreatedAt)
		if err != nil {
			return done, err
		}
		revision.Initial = snapshot
		revision.UpdatedAt = s.clock()
		if err := s.revisions.Update(ctx, revision); err != nil {
			return done, err
		}
		done++
	}

	if done > 0 {
		s.logger.Info("revision snapshots backfilled", zap.Int("count", done))
	}
	return done, nil
}

// snapshotAt replays the manifest's stream at an instant for use as a
// revision baseline.
func (s *RevisionService) snapshotAt(ctx context.Context, descriptor *manifest.Descriptor, manifestID string, at time.Time) (map[string]any, error) {
	events, err := s.events.ReadStream(ctx, manifestID, event.Until(at))
	if err != nil {
		return nil, err
	}
	if len(events) == 0 {
		return nil, shared.ErrNotFound
	}
	state, err := event.Aggregate(events, descriptor.Reducer(), nil)
	if err != nil {
		return nil, err
	}
	return state, nil
}
