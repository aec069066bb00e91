package types

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// TypedValue holds the four typed slots of a cell or multiline entry.
// Exactly one slot is populated for text/number/date/boolean values; all
// four are nil for empty values and for multiline/file anchor cells.
type TypedValue struct {
	Text    *string
	Number  *float64
	Date    *time.Time
	Boolean *bool
}

// IsEmpty reports whether no typed slot is populated.
func (v TypedValue) IsEmpty() bool {
	return v.Text == nil && v.Number == nil && v.Date == nil && v.Boolean == nil
}

// Decode returns the display value for the given data type, or nil when the
// corresponding slot is empty. Slots left over from a prior data type are
// ignored: only the slot matching dataType is consulted.
func (v TypedValue) Decode(dataType string) any {
	switch dataType {
	case DataTypeText, DataTypeSelect:
		if v.Text == nil {
			return nil
		}
		return *v.Text
	case DataTypeNumber:
		if v.Number == nil {
			return nil
		}
		return *v.Number
	case DataTypeDate:
		if v.Date == nil {
			return nil
		}
		return *v.Date
	case DataTypeBoolean:
		if v.Boolean == nil {
			return nil
		}
		return *v.Boolean
	default:
		return nil
	}
}

// dateLayouts are the accepted textual date forms, tried in order.
var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04",
	"2006-01-02",
}

// EncodeValue converts raw user input into the typed storage slots for the
// given data type. Writing any slot leaves the other three nil, so stale
// values from a prior data type never leak through a retyped column.
//
// A nil raw value (or empty string) encodes as the empty TypedValue for
// every data type. Invalid input returns an error wrapping ErrValidation.
// For select columns, options is the configured option list; values outside
// it are rejected. Multiline and file types accept only nil: their cells are
// anchors and never carry a value.
func EncodeValue(dataType string, options []string, raw any) (TypedValue, error) {
	if !IsValidDataType(dataType) {
		return TypedValue{}, ErrInvalidDataType
	}
	if raw == nil {
		return TypedValue{}, nil
	}
	if s, ok := raw.(string); ok && s == "" && dataType != DataTypeText {
		return TypedValue{}, nil
	}

	switch dataType {
	case DataTypeText:
		s, err := encodeText(raw)
		if err != nil {
			return TypedValue{}, err
		}
		return TypedValue{Text: &s}, nil

	case DataTypeSelect:
		s, err := encodeText(raw)
		if err != nil {
			return TypedValue{}, err
		}
		if !containsOption(options, s) {
			return TypedValue{}, fmt.Errorf("%w: %q is not a configured option", ErrValidation, s)
		}
		return TypedValue{Text: &s}, nil

	case DataTypeNumber:
		n, err := encodeNumber(raw)
		if err != nil {
			return TypedValue{}, err
		}
		return TypedValue{Number: &n}, nil

	case DataTypeDate:
		t, err := encodeDate(raw)
		if err != nil {
			return TypedValue{}, err
		}
		return TypedValue{Date: &t}, nil

	case DataTypeBoolean:
		b := encodeBoolean(raw)
		return TypedValue{Boolean: &b}, nil

	default: // multiline, file
		return TypedValue{}, fmt.Errorf("%w: %s cells carry no direct value", ErrValidation, dataType)
	}
}

func encodeText(raw any) (string, error) {
	switch s := raw.(type) {
	case string:
		return s, nil
	case fmt.Stringer:
		return s.String(), nil
	default:
		return "", fmt.Errorf("%w: expected text, got %T", ErrValidation, raw)
	}
}

func encodeNumber(raw any) (float64, error) {
	switch n := raw.(type) {
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return 0, fmt.Errorf("%w: number is not finite", ErrValidation)
		}
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %q is not a number", ErrValidation, n)
		}
		return f, nil
	default:
		return 0, fmt.Errorf("%w: expected number, got %T", ErrValidation, raw)
	}
}

func encodeDate(raw any) (time.Time, error) {
	switch d := raw.(type) {
	case time.Time:
		return d.UTC(), nil
	case string:
		s := strings.TrimSpace(d)
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t.UTC(), nil
			}
		}
		return time.Time{}, fmt.Errorf("%w: %q is not a date", ErrValidation, d)
	default:
		return time.Time{}, fmt.Errorf("%w: expected date, got %T", ErrValidation, raw)
	}
}

// encodeBoolean coerces any truthy UI signal to a strict boolean.
// Unrecognized input coerces to false rather than erroring.
func encodeBoolean(raw any) bool {
	switch b := raw.(type) {
	case bool:
		return b
	case string:
		switch strings.ToLower(strings.TrimSpace(b)) {
		case "true", "1", "yes", "on", "checked":
			return true
		}
		return false
	case int:
		return b != 0
	case int64:
		return b != 0
	case float64:
		return b != 0
	default:
		return false
	}
}

func containsOption(options []string, s string) bool {
	for _, o := range options {
		if o == s {
			return true
		}
	}
	return false
}
