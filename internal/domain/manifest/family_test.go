package manifest

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFamily(t *testing.T) {
	cases := []struct {
		in      string
		want    Family
		wantErr bool
	}{
		{"BSDA", FamilyBSDA, false},
		{"bsda", FamilyBSDA, false},
		{" bsdasri ", FamilyBSDASRI, false},
		{"BSDX", "", true},
		{"", "", true},
	}
	for _, tc := range cases {
		got, err := ParseFamily(tc.in)
		if tc.wantErr {
			assert.Error(t, err, tc.in)
			continue
		}
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got)
	}
}

func TestForFamily_CoversAllFamilies(t *testing.T) {
	for _, f := range Families {
		desc, err := ForFamily(f)
		require.NoError(t, err)
		assert.Equal(t, f, desc.Family)
	}

	_, err := ForFamily(Family("BSDX"))
	assert.Error(t, err)
}

func TestDescriptors_DeclareCompleteEventGrammar(t *testing.T) {
	for _, f := range Families {
		desc, err := ForFamily(f)
		require.NoError(t, err)

		types := desc.EventTypes()
		assert.Len(t, types, 5, "family %s", f)
		seen := map[string]bool{}
		for _, et := range types {
			assert.NotEmpty(t, et, "family %s has an empty event type", f)
			assert.False(t, seen[et], "family %s declares %s twice", f, et)
			seen[et] = true
		}

		assert.NotEmpty(t, desc.Signatures, "family %s has no signature transitions", f)
		assert.Contains(t, desc.StatusFields, "status")
	}
}

func TestStatusFor(t *testing.T) {
	status, err := BSDA.StatusFor("WORK")
	require.NoError(t, err)
	assert.Equal(t, "SIGNED_BY_WORKER", status)

	_, err = BSVHU.StatusFor("WORK")
	assert.Error(t, err, "BSVHU has no worker step")
}

func TestNewManifestID(t *testing.T) {
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)

	id := NewManifestID(FamilyBSDA, now)
	other := NewManifestID(FamilyBSDA, now)

	assert.Regexp(t, `^BSDA-20260831-[0-9A-F]{8}$`, id)
	assert.NotEqual(t, id, other)
}
