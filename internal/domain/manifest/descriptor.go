package manifest

import (
	"fmt"

	"github.com/wastetrack/backend/internal/domain/event"
)

// Descriptor declares one family's event grammar and field-transform
// table. Per-family normalization knowledge (which fields are dates,
// which are decimal quantities, which are derived projections owned by
// other subsystems) lives in the table; the merge mechanics are shared
// by the generic reducer in reducer.go.
type Descriptor struct {
	Family Family

	// Closed, exhaustive set of event types for the family. A stream
	// event carrying any other type aborts the fold.
	CreatedType         string
	UpdatedType         string
	SignedType          string
	DeletedType         string
	RevisionAppliedType string

	// DateFields are wire-format date strings coerced to time.Time
	// when present.
	DateFields []string
	// DecimalFields are numeric-as-string or float quantities coerced
	// to decimal.Decimal when present.
	DecimalFields []string
	// DerivedFields are stripped before merging: related-entity id
	// arrays, access-control projections and nested relations that are
	// reconstructed by other subsystems, not from this stream.
	DerivedFields []string
	// StatusFields are the only payload fields a signature event may
	// overwrite.
	StatusFields []string

	// Signatures maps a signature type to the status it transitions
	// the manifest into.
	Signatures map[string]string

	dateSet    map[string]struct{}
	decimalSet map[string]struct{}
	derivedSet map[string]struct{}
}

// compile precomputes the lookup sets. Called once per descriptor at
// package init.
func (d *Descriptor) compile() *Descriptor {
	d.dateSet = toSet(d.DateFields)
	d.decimalSet = toSet(d.DecimalFields)
	d.derivedSet = toSet(d.DerivedFields)
	return d
}

func toSet(fields []string) map[string]struct{} {
	s := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		s[f] = struct{}{}
	}
	return s
}

// EventTypes returns the family's closed event type set.
func (d *Descriptor) EventTypes() []string {
	return []string{
		d.CreatedType,
		d.UpdatedType,
		d.SignedType,
		d.DeletedType,
		d.RevisionAppliedType,
	}
}

// StatusFor resolves a signature type to the resulting status.
func (d *Descriptor) StatusFor(signatureType string) (string, error) {
	status, ok := d.Signatures[signatureType]
	if !ok {
		return "", fmt.Errorf("family %s does not accept signature type %q", d.Family, signatureType)
	}
	return status, nil
}

// Normalize applies the family's field-transform table to a payload:
// derived fields are dropped, date and decimal fields are coerced.
// Absent fields stay absent, never defaulted to nil, which
// would mask genuinely-unset data during partial folds. Normalization
// is idempotent: an already-coerced value passes through unchanged.
func (d *Descriptor) Normalize(payload event.Payload) (event.State, error) {
	out := make(event.State, len(payload))
	for field, value := range payload {
		if _, derived := d.derivedSet[field]; derived {
			continue
		}
		if value == nil {
			out[field] = nil
			continue
		}
		if _, isDate := d.dateSet[field]; isDate {
			t, err := coerceDate(field, value)
			if err != nil {
				return nil, err
			}
			out[field] = t
			continue
		}
		if _, isDecimal := d.decimalSet[field]; isDecimal {
			dec, err := coerceDecimal(field, value)
			if err != nil {
				return nil, err
			}
			out[field] = dec
			continue
		}
		out[field] = value
	}
	return out, nil
}
