package manifest

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wastetrack/backend/internal/domain/event"
	"github.com/wastetrack/backend/internal/domain/manifest"
	"github.com/wastetrack/backend/internal/domain/shared"
)

func TestManifestService_Create(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	resp, err := f.svc.Create(ctx, manifest.FamilyBSDA, "user-1", CreateManifestRequest{
		Fields: map[string]any{
			"emitterSiret":                 "12345678901234",
			"wasteCode":                    "17 06 05*",
			"weightValue":                  "1.5",
			"emitterEmissionSignatureDate": "2026-03-01T09:00:00Z",
			"grouping":                     []any{"BSDA-1"},
		},
	})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(resp.ID, "BSDA-20260301-"))
	assert.Equal(t, "BSDA", resp.Family)
	assert.False(t, resp.IsDeleted)
	assert.Equal(t, resp.ID, resp.Fields["id"])
	assert.Equal(t, "12345678901234", resp.Fields["emitterSiret"])

	// Normalization runs on the way in: quantities become decimals,
	// dates become timestamps, derived fields are stripped.
	assert.Equal(t, decimal.RequireFromString("1.5"), resp.Fields["weightValue"])
	assert.Equal(t, time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC), resp.Fields["emitterEmissionSignatureDate"])
	assert.NotContains(t, resp.Fields, "grouping")

	events, err := f.events.ReadStream(ctx, resp.ID)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "BsdaCreated", events[0].Type)
	assert.Equal(t, "user-1", events[0].Actor)

	row, err := f.manifests.FindByID(ctx, manifest.FamilyBSDA, resp.ID)
	require.NoError(t, err)
	assert.Equal(t, "17 06 05*", row.Fields["wasteCode"])
}

func TestManifestService_CreateUnknownFamily(t *testing.T) {
	f := newFixture()

	_, err := f.svc.Create(context.Background(), manifest.Family("NOPE"), "user-1", CreateManifestRequest{
		Fields: map[string]any{},
	})
	require.Error(t, err)

	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INVALID_INPUT", domainErr.Code)
}

func TestManifestService_CreateMalformedPayload(t *testing.T) {
	f := newFixture()

	_, err := f.svc.Create(context.Background(), manifest.FamilyBSDA, "user-1", CreateManifestRequest{
		Fields: map[string]any{"weightValue": "not-a-number"},
	})
	require.Error(t, err)

	var malformed *event.MalformedPayloadError
	assert.ErrorAs(t, err, &malformed)
}

func TestManifestService_Update(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	created, err := f.svc.Create(ctx, manifest.FamilyBSDA, "user-1", CreateManifestRequest{
		Fields: map[string]any{"emitterSiret": "12345678901234", "wasteCode": "17 06 05*"},
	})
	require.NoError(t, err)

	f.advance(time.Hour)
	updated, err := f.svc.Update(ctx, manifest.FamilyBSDA, created.ID, "user-2", UpdateManifestRequest{
		Fields: map[string]any{"wasteCode": "17 06 04", "destinationSiret": "98765432109876"},
	})
	require.NoError(t, err)

	// Last write wins per field; untouched fields survive.
	assert.Equal(t, "17 06 04", updated.Fields["wasteCode"])
	assert.Equal(t, "98765432109876", updated.Fields["destinationSiret"])
	assert.Equal(t, "12345678901234", updated.Fields["emitterSiret"])
	assert.Equal(t, created.CreatedAt, updated.CreatedAt)
	assert.True(t, updated.UpdatedAt.After(created.UpdatedAt))
}

func TestManifestService_UpdateNotFound(t *testing.T) {
	f := newFixture()

	_, err := f.svc.Update(context.Background(), manifest.FamilyBSDA, "BSDA-19990101-DEADBEEF", "u", UpdateManifestRequest{
		Fields: map[string]any{"wasteCode": "17 06 04"},
	})
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestManifestService_UpdateMalformedPayloadRollsBack(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	created, err := f.svc.Create(ctx, manifest.FamilyBSDA, "user-1", CreateManifestRequest{
		Fields: map[string]any{"wasteCode": "17 06 05*"},
	})
	require.NoError(t, err)

	_, err = f.svc.Update(ctx, manifest.FamilyBSDA, created.ID, "user-1", UpdateManifestRequest{
		Fields: map[string]any{"destinationReceptionDate": "not-a-date"},
	})
	require.Error(t, err)

	// The failed mutation left no trace: no event, no row change.
	events, err := f.events.ReadStream(ctx, created.ID)
	require.NoError(t, err)
	assert.Len(t, events, 1)

	row, err := f.manifests.FindByID(ctx, manifest.FamilyBSDA, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "17 06 05*", row.Fields["wasteCode"])
	assert.NotContains(t, row.Fields, "destinationReceptionDate")
}

func TestManifestService_Sign(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	created, err := f.svc.Create(ctx, manifest.FamilyBSDA, "user-1", CreateManifestRequest{
		Fields: map[string]any{"emitterSiret": "12345678901234"},
	})
	require.NoError(t, err)

	f.advance(time.Hour)
	signed, err := f.svc.Sign(ctx, manifest.FamilyBSDA, created.ID, "user-1", SignManifestRequest{SignatureType: "EMISSION"})
	require.NoError(t, err)

	assert.Equal(t, "SIGNED_BY_PRODUCER", signed.Status)
	assert.Equal(t, "SIGNED_BY_PRODUCER", signed.Fields["status"])
	// Signing touches the status only.
	assert.Equal(t, "12345678901234", signed.Fields["emitterSiret"])
	assert.NotContains(t, signed.Fields, "signatureType")
}

func TestManifestService_SignUnknownSignatureType(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	created, err := f.svc.Create(ctx, manifest.FamilyBSVHU, "user-1", CreateManifestRequest{
		Fields: map[string]any{},
	})
	require.NoError(t, err)

	// BSVHU has no worker step.
	_, err = f.svc.Sign(ctx, manifest.FamilyBSVHU, created.ID, "user-1", SignManifestRequest{SignatureType: "WORK"})
	require.Error(t, err)

	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INVALID_INPUT", domainErr.Code)

	events, readErr := f.events.ReadStream(ctx, created.ID)
	require.NoError(t, readErr)
	assert.Len(t, events, 1)
}

func TestManifestService_Delete(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	created, err := f.svc.Create(ctx, manifest.FamilyBSFF, "user-1", CreateManifestRequest{
		Fields: map[string]any{"wasteCode": "14 06 01*"},
	})
	require.NoError(t, err)

	f.advance(time.Hour)
	require.NoError(t, f.svc.Delete(ctx, manifest.FamilyBSFF, created.ID, "user-1"))

	row, err := f.manifests.FindByID(ctx, manifest.FamilyBSFF, created.ID)
	require.NoError(t, err)
	assert.True(t, row.IsDeleted)
	// The tombstone does not erase fields.
	assert.Equal(t, "14 06 01*", row.Fields["wasteCode"])

	// A deleted manifest accepts no further mutations.
	_, err = f.svc.Update(ctx, manifest.FamilyBSFF, created.ID, "user-1", UpdateManifestRequest{
		Fields: map[string]any{"wasteCode": "x"},
	})
	assert.ErrorIs(t, err, shared.ErrInvalidState)
}

func TestManifestService_List(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	first, err := f.svc.Create(ctx, manifest.FamilyBSDD, "u", CreateManifestRequest{Fields: map[string]any{}})
	require.NoError(t, err)
	_, err = f.svc.Create(ctx, manifest.FamilyBSDD, "u", CreateManifestRequest{Fields: map[string]any{}})
	require.NoError(t, err)
	require.NoError(t, f.svc.Delete(ctx, manifest.FamilyBSDD, first.ID, "u"))

	visible, err := f.svc.List(ctx, manifest.FamilyBSDD, false)
	require.NoError(t, err)
	assert.Len(t, visible, 1)

	all, err := f.svc.List(ctx, manifest.FamilyBSDD, true)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestManifestService_GetEvents(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	created, err := f.svc.Create(ctx, manifest.FamilyBSDA, "user-1", CreateManifestRequest{
		Fields: map[string]any{},
	})
	require.NoError(t, err)
	f.advance(time.Hour)
	_, err = f.svc.Update(ctx, manifest.FamilyBSDA, created.ID, "user-2", UpdateManifestRequest{
		Fields: map[string]any{"wasteCode": "17 06 05*"},
	})
	require.NoError(t, err)

	events, err := f.svc.GetEvents(ctx, manifest.FamilyBSDA, created.ID)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "BsdaCreated", events[0].Type)
	assert.Equal(t, "BsdaUpdated", events[1].Type)
	assert.Less(t, events[0].Seq, events[1].Seq)

	_, err = f.svc.GetEvents(ctx, manifest.FamilyBSDA, "BSDA-19990101-DEADBEEF")
	assert.ErrorIs(t, err, shared.ErrNotFound)
}
