// Conversion helpers between entity fields and their SQLite column
// representations: typed value slots, permission maps, and column config.
package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/datanorth/gestiondrive/pkg/types"
)

// typedSlots is the nullable column form of a TypedValue.
type typedSlots struct {
	text    sql.NullString
	number  sql.NullFloat64
	date    sql.NullString
	boolean sql.NullInt64
}

// slotsFromValue maps a TypedValue onto nullable columns. Unpopulated
// slots map to NULL, so writing a value always resets the other three.
func slotsFromValue(v types.TypedValue) typedSlots {
	var s typedSlots
	if v.Text != nil {
		s.text = sql.NullString{String: *v.Text, Valid: true}
	}
	if v.Number != nil {
		s.number = sql.NullFloat64{Float64: *v.Number, Valid: true}
	}
	if v.Date != nil {
		s.date = sql.NullString{String: formatTime(*v.Date), Valid: true}
	}
	if v.Boolean != nil {
		n := int64(0)
		if *v.Boolean {
			n = 1
		}
		s.boolean = sql.NullInt64{Int64: n, Valid: true}
	}
	return s
}

// valueFromSlots rebuilds a TypedValue from scanned nullable columns.
func valueFromSlots(s typedSlots) types.TypedValue {
	var v types.TypedValue
	if s.text.Valid {
		t := s.text.String
		v.Text = &t
	}
	if s.number.Valid {
		n := s.number.Float64
		v.Number = &n
	}
	if s.date.Valid {
		d := parseTime(s.date.String)
		v.Date = &d
	}
	if s.boolean.Valid {
		b := s.boolean.Int64 != 0
		v.Boolean = &b
	}
	return v
}

func marshalPermissions(p types.Permissions) (string, error) {
	if p == nil {
		p = types.Permissions{}
	}
	data, err := json.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("marshaling permissions: %w", err)
	}
	return string(data), nil
}

func unmarshalPermissions(s string) (types.Permissions, error) {
	var p types.Permissions
	if err := json.Unmarshal([]byte(s), &p); err != nil {
		return nil, fmt.Errorf("parsing permissions: %w", err)
	}
	return p, nil
}

func marshalConfig(c types.ColumnConfig) (string, error) {
	data, err := json.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("marshaling column config: %w", err)
	}
	return string(data), nil
}

func unmarshalConfig(s string) (types.ColumnConfig, error) {
	var c types.ColumnConfig
	if err := json.Unmarshal([]byte(s), &c); err != nil {
		return types.ColumnConfig{}, fmt.Errorf("parsing column config: %w", err)
	}
	return c, nil
}
