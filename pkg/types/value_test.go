package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeValue(t *testing.T) {
	tests := []struct {
		name     string
		dataType string
		options  []string
		raw      any
		check    func(t *testing.T, v TypedValue, err error)
	}{
		{
			name:     "text stored as-is",
			dataType: DataTypeText,
			raw:      "Paris",
			check: func(t *testing.T, v TypedValue, err error) {
				require.NoError(t, err)
				require.NotNil(t, v.Text)
				assert.Equal(t, "Paris", *v.Text)
				assert.Nil(t, v.Number)
				assert.Nil(t, v.Date)
				assert.Nil(t, v.Boolean)
			},
		},
		{
			name:     "number from string",
			dataType: DataTypeNumber,
			raw:      "42",
			check: func(t *testing.T, v TypedValue, err error) {
				require.NoError(t, err)
				require.NotNil(t, v.Number)
				assert.Equal(t, float64(42), *v.Number)
			},
		},
		{
			name:     "number from int",
			dataType: DataTypeNumber,
			raw:      7,
			check: func(t *testing.T, v TypedValue, err error) {
				require.NoError(t, err)
				require.NotNil(t, v.Number)
				assert.Equal(t, float64(7), *v.Number)
			},
		},
		{
			name:     "invalid number rejected before storage",
			dataType: DataTypeNumber,
			raw:      "not-a-number",
			check: func(t *testing.T, v TypedValue, err error) {
				assert.ErrorIs(t, err, ErrValidation)
			},
		},
		{
			name:     "empty input encodes as null",
			dataType: DataTypeNumber,
			raw:      "",
			check: func(t *testing.T, v TypedValue, err error) {
				require.NoError(t, err)
				assert.True(t, v.IsEmpty())
			},
		},
		{
			name:     "nil input encodes as null",
			dataType: DataTypeDate,
			raw:      nil,
			check: func(t *testing.T, v TypedValue, err error) {
				require.NoError(t, err)
				assert.True(t, v.IsEmpty())
			},
		},
		{
			name:     "date normalized to UTC instant",
			dataType: DataTypeDate,
			raw:      "2024-03-01T10:30:00+02:00",
			check: func(t *testing.T, v TypedValue, err error) {
				require.NoError(t, err)
				require.NotNil(t, v.Date)
				want := time.Date(2024, 3, 1, 8, 30, 0, 0, time.UTC)
				assert.True(t, v.Date.Equal(want), "got %v", *v.Date)
				assert.Equal(t, time.UTC, v.Date.Location())
			},
		},
		{
			name:     "bare date accepted",
			dataType: DataTypeDate,
			raw:      "2024-03-01",
			check: func(t *testing.T, v TypedValue, err error) {
				require.NoError(t, err)
				require.NotNil(t, v.Date)
				assert.Equal(t, 2024, v.Date.Year())
			},
		},
		{
			name:     "garbage date rejected",
			dataType: DataTypeDate,
			raw:      "next tuesday",
			check: func(t *testing.T, v TypedValue, err error) {
				assert.ErrorIs(t, err, ErrValidation)
			},
		},
		{
			name:     "boolean coerces truthy string",
			dataType: DataTypeBoolean,
			raw:      "yes",
			check: func(t *testing.T, v TypedValue, err error) {
				require.NoError(t, err)
				require.NotNil(t, v.Boolean)
				assert.True(t, *v.Boolean)
			},
		},
		{
			name:     "boolean coerces unknown string to false",
			dataType: DataTypeBoolean,
			raw:      "maybe",
			check: func(t *testing.T, v TypedValue, err error) {
				require.NoError(t, err)
				require.NotNil(t, v.Boolean)
				assert.False(t, *v.Boolean)
			},
		},
		{
			name:     "select validates option membership",
			dataType: DataTypeSelect,
			options:  []string{"A", "B"},
			raw:      "A",
			check: func(t *testing.T, v TypedValue, err error) {
				require.NoError(t, err)
				require.NotNil(t, v.Text)
				assert.Equal(t, "A", *v.Text)
			},
		},
		{
			name:     "select rejects non-member",
			dataType: DataTypeSelect,
			options:  []string{"A", "B"},
			raw:      "C",
			check: func(t *testing.T, v TypedValue, err error) {
				assert.ErrorIs(t, err, ErrValidation)
			},
		},
		{
			name:     "multiline cells carry no direct value",
			dataType: DataTypeMultiline,
			raw:      "anything",
			check: func(t *testing.T, v TypedValue, err error) {
				assert.ErrorIs(t, err, ErrValidation)
			},
		},
		{
			name:     "file anchor accepts nil",
			dataType: DataTypeFile,
			raw:      nil,
			check: func(t *testing.T, v TypedValue, err error) {
				require.NoError(t, err)
				assert.True(t, v.IsEmpty())
			},
		},
		{
			name:     "unknown data type",
			dataType: "geometry",
			raw:      "x",
			check: func(t *testing.T, v TypedValue, err error) {
				assert.ErrorIs(t, err, ErrInvalidDataType)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := EncodeValue(tt.dataType, tt.options, tt.raw)
			tt.check(t, v, err)
		})
	}
}

func TestDecodeRoundTrip(t *testing.T) {
	// decode(encode(x)) reproduces x for text/number/boolean; a date
	// round-trips to the same absolute instant.
	text, err := EncodeValue(DataTypeText, nil, "hello")
	require.NoError(t, err)
	assert.Equal(t, "hello", text.Decode(DataTypeText))

	num, err := EncodeValue(DataTypeNumber, nil, 42.5)
	require.NoError(t, err)
	assert.Equal(t, 42.5, num.Decode(DataTypeNumber))

	boolean, err := EncodeValue(DataTypeBoolean, nil, true)
	require.NoError(t, err)
	assert.Equal(t, true, boolean.Decode(DataTypeBoolean))

	in := time.Date(2024, 6, 15, 12, 0, 0, 0, time.FixedZone("CEST", 2*3600))
	date, err := EncodeValue(DataTypeDate, nil, in)
	require.NoError(t, err)
	got, ok := date.Decode(DataTypeDate).(time.Time)
	require.True(t, ok)
	assert.True(t, got.Equal(in), "instant must survive the round trip")
}

func TestDecodeIgnoresStaleSlots(t *testing.T) {
	// A value carrying a leftover text slot decodes as empty for a
	// number column: only the matching slot is consulted.
	stale := "old"
	v := TypedValue{Text: &stale}
	assert.Nil(t, v.Decode(DataTypeNumber))
	assert.Nil(t, v.Decode(DataTypeBoolean))
	assert.Equal(t, "old", v.Decode(DataTypeText))
}
