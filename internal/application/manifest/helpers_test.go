package manifest

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/wastetrack/backend/internal/domain/event"
	"github.com/wastetrack/backend/internal/domain/manifest"
	"github.com/wastetrack/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// memEventStore is an in-memory event.Store preserving append order.
type memEventStore struct {
	mu      sync.Mutex
	seq     int64
	streams map[string][]event.Event
}

func newMemEventStore() *memEventStore {
	return &memEventStore{streams: make(map[string][]event.Event)}
}

func (s *memEventStore) Append(ctx context.Context, evt *event.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	evt.Seq = s.seq
	if evt.ID == uuid.Nil {
		evt.ID = uuid.New()
	}
	if evt.OccurredAt.IsZero() {
		evt.OccurredAt = time.Now()
	}
	s.streams[evt.StreamID] = append(s.streams[evt.StreamID], *evt)
	return nil
}

func (s *memEventStore) ReadStream(ctx context.Context, streamID string, opts ...event.ReadOption) ([]event.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	options := event.NewReadOptions(opts)
	out := make([]event.Event, 0)
	for _, evt := range s.streams[streamID] {
		if options.Until != nil && evt.OccurredAt.After(*options.Until) {
			continue
		}
		out = append(out, evt)
	}
	return out, nil
}

func (s *memEventStore) snapshot() map[string][]event.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string][]event.Event, len(s.streams))
	for id, events := range s.streams {
		out[id] = append([]event.Event(nil), events...)
	}
	return out
}

func (s *memEventStore) restore(snap map[string][]event.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.streams = snap
}

// memManifestRepo is an in-memory manifest.Repository.
type memManifestRepo struct {
	mu   sync.Mutex
	rows map[string]manifest.Manifest
}

func newMemManifestRepo() *memManifestRepo {
	return &memManifestRepo{rows: make(map[string]manifest.Manifest)}
}

func rowKey(family manifest.Family, id string) string {
	return fmt.Sprintf("%s/%s", family, id)
}

func (r *memManifestRepo) Save(ctx context.Context, m *manifest.Manifest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows[rowKey(m.Family, m.ID)] = *m
	return nil
}

func (r *memManifestRepo) FindByID(ctx context.Context, family manifest.Family, id string) (*manifest.Manifest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.rows[rowKey(family, id)]
	if !ok {
		return nil, shared.ErrNotFound
	}
	copied := m
	copied.Fields = m.Fields.Clone()
	return &copied, nil
}

func (r *memManifestRepo) FindAll(ctx context.Context, family manifest.Family, includeDeleted bool) ([]manifest.Manifest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]manifest.Manifest, 0)
	for _, m := range r.rows {
		if m.Family != family {
			continue
		}
		if m.IsDeleted && !includeDeleted {
			continue
		}
		out = append(out, m)
	}
	return out, nil
}

func (r *memManifestRepo) snapshot() map[string]manifest.Manifest {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]manifest.Manifest, len(r.rows))
	for k, v := range r.rows {
		out[k] = v
	}
	return out
}

func (r *memManifestRepo) restore(snap map[string]manifest.Manifest) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows = snap
}

// memRevisionRepo is an in-memory manifest.RevisionRepository.
type memRevisionRepo struct {
	mu    sync.Mutex
	order []uuid.UUID
	rows  map[uuid.UUID]manifest.RevisionRequest
}

func newMemRevisionRepo() *memRevisionRepo {
	return &memRevisionRepo{rows: make(map[uuid.UUID]manifest.RevisionRequest)}
}

func (r *memRevisionRepo) Create(ctx context.Context, req *manifest.RevisionRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows[req.ID] = *req
	r.order = append(r.order, req.ID)
	return nil
}

func (r *memRevisionRepo) Update(ctx context.Context, req *manifest.RevisionRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[req.ID]; !ok {
		return shared.ErrNotFound
	}
	r.rows[req.ID] = *req
	return nil
}

func (r *memRevisionRepo) FindByID(ctx context.Context, id uuid.UUID) (*manifest.RevisionRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	req, ok := r.rows[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return &req, nil
}

func (r *memRevisionRepo) FindByManifest(ctx context.Context, family manifest.Family, manifestID string) ([]manifest.RevisionRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]manifest.RevisionRequest, 0)
	for _, id := range r.order {
		req := r.rows[id]
		if req.Family == family && req.ManifestID == manifestID {
			out = append(out, req)
		}
	}
	return out, nil
}

func (r *memRevisionRepo) FindWithoutSnapshot(ctx context.Context, limit int) ([]manifest.RevisionRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]manifest.RevisionRequest, 0)
	for _, id := range r.order {
		req := r.rows[id]
		if req.Initial == nil {
			out = append(out, req)
			if limit > 0 && len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

// memUnitOfWork hands out the shared in-memory stores and restores
// their state when fn fails, mimicking a rollback.
type memUnitOfWork struct {
	events    *memEventStore
	manifests *memManifestRepo
	revisions *memRevisionRepo
}

func (u *memUnitOfWork) Execute(ctx context.Context, fn func(stores manifest.TxStores) error) error {
	eventSnap := u.events.snapshot()
	rowSnap := u.manifests.snapshot()
	err := fn(manifest.TxStores{
		Events:    u.events,
		Manifests: u.manifests,
		Revisions: u.revisions,
	})
	if err != nil {
		u.events.restore(eventSnap)
		u.manifests.restore(rowSnap)
	}
	return err
}

// fixture wires the services over the in-memory stores with a fixed
// clock.
type fixture struct {
	events    *memEventStore
	manifests *memManifestRepo
	revisions *memRevisionRepo
	now       time.Time
	svc       *ManifestService
	streams   *StreamService
	revsvc    *RevisionService
}

func newFixture() *fixture {
	f := &fixture{
		events:    newMemEventStore(),
		manifests: newMemManifestRepo(),
		revisions: newMemRevisionRepo(),
		now:       time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
	}
	uow := &memUnitOfWork{events: f.events, manifests: f.manifests, revisions: f.revisions}
	log := zap.NewNop()

	f.svc = NewManifestService(uow, f.manifests, f.events, log)
	f.svc.clock = f.clock
	f.streams = NewStreamService(f.events, f.manifests, nil, log)
	f.revsvc = NewRevisionService(uow, f.manifests, f.revisions, f.events, log)
	f.revsvc.clock = f.clock
	return f
}

func (f *fixture) clock() time.Time {
	return f.now
}

// advance moves the fixture clock forward.
func (f *fixture) advance(d time.Duration) {
	f.now = f.now.Add(d)
}
