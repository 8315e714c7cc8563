package manifest

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wastetrack/backend/internal/domain/event"
	"github.com/wastetrack/backend/internal/domain/manifest"
	"github.com/wastetrack/backend/internal/domain/shared"
	"go.uber.org/zap"
)

func TestStreamService_StateAt(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	t0 := f.now
	created, err := f.svc.Create(ctx, manifest.FamilyBSDA, "user-1", CreateManifestRequest{
		Fields: map[string]any{"emitterSiret": "12345678901234", "wasteCode": "17 06 05*"},
	})
	require.NoError(t, err)

	f.advance(time.Hour)
	t1 := f.now
	_, err = f.svc.Update(ctx, manifest.FamilyBSDA, created.ID, "user-1", UpdateManifestRequest{
		Fields: map[string]any{"wasteCode": "17 06 04"},
	})
	require.NoError(t, err)

	f.advance(time.Hour)
	_, err = f.svc.Sign(ctx, manifest.FamilyBSDA, created.ID, "user-1", SignManifestRequest{SignatureType: "EMISSION"})
	require.NoError(t, err)

	// Between creation and update: the original waste code, no status.
	resp, err := f.streams.StateAt(ctx, manifest.FamilyBSDA, created.ID, t0.Add(30*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, "17 06 05*", resp.State["wasteCode"])
	assert.NotContains(t, resp.State, "status")

	// The bound is inclusive: replaying at exactly the update instant
	// sees the update.
	resp, err = f.streams.StateAt(ctx, manifest.FamilyBSDA, created.ID, t1)
	require.NoError(t, err)
	assert.Equal(t, "17 06 04", resp.State["wasteCode"])
	assert.NotContains(t, resp.State, "status")

	// At the present: everything, including the signature transition.
	resp, err = f.streams.StateAt(ctx, manifest.FamilyBSDA, created.ID, f.now)
	require.NoError(t, err)
	assert.Equal(t, "SIGNED_BY_PRODUCER", resp.State["status"])
}

func TestStreamService_StateAtBeforeCreation(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	created, err := f.svc.Create(ctx, manifest.FamilyBSDA, "user-1", CreateManifestRequest{
		Fields: map[string]any{},
	})
	require.NoError(t, err)

	// The manifest does not exist yet at an instant before its creation.
	_, err = f.streams.StateAt(ctx, manifest.FamilyBSDA, created.ID, f.now.Add(-time.Minute))
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestStreamService_StateAtUnknownManifest(t *testing.T) {
	f := newFixture()

	_, err := f.streams.StateAt(context.Background(), manifest.FamilyBSDA, "BSDA-19990101-DEADBEEF", f.now)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

type fakeCache struct {
	entries map[string]event.State
	sets    int
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: make(map[string]event.State)}
}

func cacheKey(streamID string, at time.Time) string {
	return fmt.Sprintf("%s@%d", streamID, at.UnixNano())
}

func (c *fakeCache) Get(ctx context.Context, streamID string, at time.Time) (event.State, bool) {
	state, ok := c.entries[cacheKey(streamID, at)]
	return state, ok
}

func (c *fakeCache) Set(ctx context.Context, streamID string, at time.Time, state event.State) {
	c.entries[cacheKey(streamID, at)] = state
	c.sets++
}

func TestStreamService_StateAtPopulatesCache(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	cache := newFakeCache()
	streams := NewStreamService(f.events, f.manifests, cache, zap.NewNop())

	created, err := f.svc.Create(ctx, manifest.FamilyBSDA, "user-1", CreateManifestRequest{
		Fields: map[string]any{"wasteCode": "17 06 05*"},
	})
	require.NoError(t, err)

	_, err = streams.StateAt(ctx, manifest.FamilyBSDA, created.ID, f.now)
	require.NoError(t, err)
	assert.Equal(t, 1, cache.sets)

	// Second query is served from the cache, not another replay.
	_, err = streams.StateAt(ctx, manifest.FamilyBSDA, created.ID, f.now)
	require.NoError(t, err)
	assert.Equal(t, 1, cache.sets)
}

func TestStreamService_StateAtRenormalizesCacheHit(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	cache := newFakeCache()
	streams := NewStreamService(f.events, f.manifests, cache, zap.NewNop())

	at := f.now
	// A cache entry that round-tripped through JSON: typed values
	// degraded to strings.
	cache.Set(ctx, "BSDA-20260301-0A1B2C3D", at, event.State{
		"id":                       "BSDA-20260301-0A1B2C3D",
		"weightValue":              "1.5",
		"destinationReceptionDate": "2026-03-01T09:00:00Z",
	})
	cache.sets = 0

	resp, err := streams.StateAt(ctx, manifest.FamilyBSDA, "BSDA-20260301-0A1B2C3D", at)
	require.NoError(t, err)
	assert.Equal(t, decimal.RequireFromString("1.5"), resp.State["weightValue"])
	assert.Equal(t, time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC), resp.State["destinationReceptionDate"])
	assert.Equal(t, 0, cache.sets)
}

func TestStreamService_CurrentStateMergesRowFields(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	created, err := f.svc.Create(ctx, manifest.FamilyBSDA, "user-1", CreateManifestRequest{
		Fields: map[string]any{"wasteCode": "17 06 05*"},
	})
	require.NoError(t, err)

	// Plant a relational-only field that no event carries.
	row, err := f.manifests.FindByID(ctx, manifest.FamilyBSDA, created.ID)
	require.NoError(t, err)
	row.Fields["transporterPlate"] = "AB-123-CD"
	require.NoError(t, f.manifests.Save(ctx, row))

	resp, err := f.streams.CurrentState(ctx, manifest.FamilyBSDA, created.ID)
	require.NoError(t, err)
	assert.Nil(t, resp.At)
	assert.Equal(t, "17 06 05*", resp.State["wasteCode"])
	assert.Equal(t, "AB-123-CD", resp.State["transporterPlate"])
}

func TestStreamService_CurrentStateUnknownManifest(t *testing.T) {
	f := newFixture()

	_, err := f.streams.CurrentState(context.Background(), manifest.FamilyBSDA, "BSDA-19990101-DEADBEEF")
	assert.ErrorIs(t, err, shared.ErrNotFound)
}
