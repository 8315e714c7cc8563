package manifest

import (
	"context"
	"time"

	"github.com/wastetrack/backend/internal/domain/event"
	"github.com/wastetrack/backend/internal/domain/manifest"
	"github.com/wastetrack/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// ManifestService handles manifest lifecycle mutations. Every mutation
// is a dual write: the event is appended to the stream and the
// current-state row is re-materialized from the full fold, inside one
// transaction, so the row can never drift from the log it caches.
type ManifestService struct {
	uow       manifest.UnitOfWork
	manifests manifest.Repository
	events    event.Store
	logger    *zap.Logger
	clock     func() time.Time
}

// NewManifestService creates a new ManifestService
func NewManifestService(uow manifest.UnitOfWork, manifests manifest.Repository, events event.Store, logger *zap.Logger) *ManifestService {
	return &ManifestService{
		uow:       uow,
		manifests: manifests,
		events:    events,
		logger:    logger,
		clock:     time.Now,
	}
}

// Create creates a new manifest and appends its creation event
func (s *ManifestService) Create(ctx context.Context, family manifest.Family, actor string, req CreateManifestRequest) (*ManifestResponse, error) {
	descriptor, err := manifest.ForFamily(family)
	if err != nil {
		return nil, shared.NewDomainError("INVALID_INPUT", err.Error())
	}

	now := s.clock()
	id := manifest.NewManifestID(family, now)

	var created *manifest.Manifest
	err = s.uow.Execute(ctx, func(stores manifest.TxStores) error {
		evt := event.New(id, descriptor.CreatedType, actor, req.Fields)
		evt.OccurredAt = now
		if err := stores.Events.Append(ctx, evt); err != nil {
			return err
		}

		state, err := event.Aggregate([]event.Event{*evt}, descriptor.Reducer(), nil)
		if err != nil {
			return err
		}

		created = materialize(family, id, state, now, now)
		return stores.Manifests.Save(ctx, created)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("manifest created",
		zap.String("family", string(family)),
		zap.String("manifest_id", id),
		zap.String("actor", actor),
	)

	response := ToManifestResponse(created)
	return &response, nil
}

// Update applies a partial field update to a manifest
func (s *ManifestService) Update(ctx context.Context, family manifest.Family, id, actor string, req UpdateManifestRequest) (*ManifestResponse, error) {
	descriptor, err := manifest.ForFamily(family)
	if err != nil {
		return nil, shared.NewDomainError("INVALID_INPUT", err.Error())
	}

	updated, err := s.mutate(ctx, descriptor, id, func(current *manifest.Manifest) (*event.Event, error) {
		return event.New(id, descriptor.UpdatedType, actor, req.Fields), nil
	})
	if err != nil {
		return nil, err
	}

	response := ToManifestResponse(updated)
	return &response, nil
}

// Sign records a signature on a manifest, transitioning its status
func (s *ManifestService) Sign(ctx context.Context, family manifest.Family, id, actor string, req SignManifestRequest) (*ManifestResponse, error) {
	descriptor, err := manifest.ForFamily(family)
	if err != nil {
		return nil, shared.NewDomainError("INVALID_INPUT", err.Error())
	}

	status, err := descriptor.StatusFor(req.SignatureType)
	if err != nil {
		return nil, shared.NewDomainError("INVALID_INPUT", err.Error())
	}

	signed, err := s.mutate(ctx, descriptor, id, func(current *manifest.Manifest) (*event.Event, error) {
		// The event carries the signature type for audit, but only the
		// status-bearing fields reach the folded state.
		return event.New(id, descriptor.SignedType, actor, event.Payload{
			manifest.FieldStatus: status,
			"signatureType":      req.SignatureType,
		}), nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("manifest signed",
		zap.String("family", string(family)),
		zap.String("manifest_id", id),
		zap.String("signature_type", req.SignatureType),
		zap.String("status", status),
	)

	response := ToManifestResponse(signed)
	return &response, nil
}

// Delete soft-deletes a manifest. History is preserved: the tombstone
// is just one more event in the stream.
func (s *ManifestService) Delete(ctx context.Context, family manifest.Family, id, actor string) error {
	descriptor, err := manifest.ForFamily(family)
	if err != nil {
		return shared.NewDomainError("INVALID_INPUT", err.Error())
	}

	_, err = s.mutate(ctx, descriptor, id, func(current *manifest.Manifest) (*event.Event, error) {
		return event.New(id, descriptor.DeletedType, actor, nil), nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("manifest deleted",
		zap.String("family", string(family)),
		zap.String("manifest_id", id),
		zap.String("actor", actor),
	)
	return nil
}

// Get retrieves a manifest's current-state row
func (s *ManifestService) Get(ctx context.Context, family manifest.Family, id string) (*ManifestResponse, error) {
	m, err := s.manifests.FindByID(ctx, family, id)
	if err != nil {
		return nil, err
	}
	response := ToManifestResponse(m)
	return &response, nil
}

// List retrieves all manifests of a family
func (s *ManifestService) List(ctx context.Context, family manifest.Family, includeDeleted bool) ([]ManifestResponse, error) {
	manifests, err := s.manifests.FindAll(ctx, family, includeDeleted)
	if err != nil {
		return nil, err
	}
	return ToManifestResponses(manifests), nil
}

// GetEvents returns a manifest's full event stream, oldest first
func (s *ManifestService) GetEvents(ctx context.Context, family manifest.Family, id string) ([]EventResponse, error) {
	if _, err := s.manifests.FindByID(ctx, family, id); err != nil {
		return nil, err
	}
	events, err := s.events.ReadStream(ctx, id)
	if err != nil {
		return nil, err
	}
	return ToEventResponses(events), nil
}

// mutate runs the shared dual-write path: validate the target, append
// the event produced by buildEvent, re-fold the whole stream and save
// the materialized row, all in one transaction.
func (s *ManifestService) mutate(ctx context.Context, descriptor *manifest.Descriptor, id string, buildEvent func(current *manifest.Manifest) (*event.Event, error)) (*manifest.Manifest, error) {
	var result *manifest.Manifest
	err := s.uow.Execute(ctx, func(stores manifest.TxStores) error {
		current, err := stores.Manifests.FindByID(ctx, descriptor.Family, id)
		if err != nil {
			return err
		}
		if current.IsDeleted {
			return shared.ErrInvalidState
		}

		evt, err := buildEvent(current)
		if err != nil {
			return err
		}
		evt.OccurredAt = s.clock()
		if err := stores.Events.Append(ctx, evt); err != nil {
			return err
		}

		events, err := stores.Events.ReadStream(ctx, id)
		if err != nil {
			return err
		}
		state, err := event.Aggregate(events, descriptor.Reducer(), nil)
		if err != nil {
			return err
		}

		result = materialize(descriptor.Family, id, state, current.CreatedAt, s.clock())
		return stores.Manifests.Save(ctx, result)
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// materialize builds the current-state row from a folded state.
func materialize(family manifest.Family, id string, state event.State, createdAt, updatedAt time.Time) *manifest.Manifest {
	status, _ := state[manifest.FieldStatus].(string)
	deleted, _ := state[manifest.FieldIsDeleted].(bool)
	return &manifest.Manifest{
		ID:        id,
		Family:    family,
		Status:    status,
		IsDeleted: deleted,
		Fields:    state,
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
	}
}
