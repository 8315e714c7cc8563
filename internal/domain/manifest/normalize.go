package manifest

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/wastetrack/backend/internal/domain/event"
)

// Accepted wire formats for date-like fields, tried in order.
var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02",
}

// coerceDate converts a wire-format date value to time.Time. A value
// that is already a time.Time passes through unchanged.
func coerceDate(field string, value any) (time.Time, error) {
	switch v := value.(type) {
	case time.Time:
		return v, nil
	case *time.Time:
		if v == nil {
			return time.Time{}, &event.MalformedPayloadError{Field: field, Value: value, Err: fmt.Errorf("nil date pointer")}
		}
		return *v, nil
	case string:
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, v); err == nil {
				return t, nil
			}
		}
		return time.Time{}, &event.MalformedPayloadError{Field: field, Value: value, Err: fmt.Errorf("unparseable date %q", v)}
	default:
		return time.Time{}, &event.MalformedPayloadError{Field: field, Value: value, Err: fmt.Errorf("unsupported date type %T", value)}
	}
}

// coerceDecimal converts a wire-format quantity to decimal.Decimal.
// Quantities arrive as JSON numbers, numeric strings, or (when the
// value has already been normalized once) decimals; all converge to
// the same representation.
func coerceDecimal(field string, value any) (decimal.Decimal, error) {
	switch v := value.(type) {
	case decimal.Decimal:
		return v, nil
	case string:
		d, err := decimal.NewFromString(v)
		if err != nil {
			return decimal.Decimal{}, &event.MalformedPayloadError{Field: field, Value: value, Err: err}
		}
		return d, nil
	case json.Number:
		d, err := decimal.NewFromString(v.String())
		if err != nil {
			return decimal.Decimal{}, &event.MalformedPayloadError{Field: field, Value: value, Err: err}
		}
		return d, nil
	case float64:
		return decimal.NewFromFloat(v), nil
	case float32:
		return decimal.NewFromFloat32(v), nil
	case int:
		return decimal.NewFromInt(int64(v)), nil
	case int64:
		return decimal.NewFromInt(v), nil
	default:
		return decimal.Decimal{}, &event.MalformedPayloadError{Field: field, Value: value, Err: fmt.Errorf("unsupported quantity type %T", value)}
	}
}
