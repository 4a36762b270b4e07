package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseProductID(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want ProductID
	}{
		{"plain integer", "5", "5"},
		{"leading zero", "05", "5"},
		{"trailing fraction zero", "5.0", "5"},
		{"surrounding whitespace", "  5  ", "5"},
		{"fraction", "2.50", "2.5"},
		{"negative zero", "-0", "0"},
		{"scientific", "1e3", "1000"},
		{"large integer is exact", "9007199254740993", "9007199254740993"},
		{"opaque text", "sku-42", "sku-42"},
		{"opaque text trimmed", " sku-42 ", "sku-42"},
		{"hex stays opaque", "0x10", "0x10"},
		{"huge exponent stays opaque", "1e999999", "1e999999"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseProductID(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseProductID_Empty(t *testing.T) {
	for _, in := range []string{"", "   ", "\t\n"} {
		_, err := ParseProductID(in)
		assert.ErrorIs(t, err, ErrEmptyProductID)
	}
}

func TestMustParseProductID_Panics(t *testing.T) {
	assert.Panics(t, func() { MustParseProductID(" ") })
}

func TestProductID_NumberAndStringAreEquivalent(t *testing.T) {
	var fromNumber, fromString ProductID
	require.NoError(t, json.Unmarshal([]byte(`5`), &fromNumber))
	require.NoError(t, json.Unmarshal([]byte(`"5"`), &fromString))

	assert.Equal(t, fromNumber, fromString)
}

func TestProductID_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		in   string
		want ProductID
	}{
		{`7`, "7"},
		{`7.00`, "7"},
		{`"007"`, "7"},
		{`"abc"`, "abc"},
		{`null`, ""},
		{`""`, ""},
		{`"  "`, ""},
	}
	for _, tt := range tests {
		var id ProductID
		require.NoError(t, json.Unmarshal([]byte(tt.in), &id), tt.in)
		assert.Equal(t, tt.want, id, tt.in)
	}
}

func TestProductID_UnmarshalJSON_RejectsOtherTypes(t *testing.T) {
	for _, in := range []string{`true`, `{"id":1}`, `[1]`} {
		var id ProductID
		assert.Error(t, json.Unmarshal([]byte(in), &id), in)
	}
}

func TestProductID_MarshalJSON(t *testing.T) {
	data, err := json.Marshal(MustParseProductID("5.0"))
	require.NoError(t, err)
	assert.JSONEq(t, `5`, string(data))

	data, err = json.Marshal(MustParseProductID("sku-1"))
	require.NoError(t, err)
	assert.JSONEq(t, `"sku-1"`, string(data))

	data, err = json.Marshal(MustParseProductID("1e999999"))
	require.NoError(t, err)
	assert.JSONEq(t, `"1e999999"`, string(data))
}

func TestProductID_RoundTripStable(t *testing.T) {
	for _, in := range []string{"5", "2.5", "sku-1", "1e999999", "0x10"} {
		id := MustParseProductID(in)
		data, err := json.Marshal(id)
		require.NoError(t, err)

		var back ProductID
		require.NoError(t, json.Unmarshal(data, &back))
		assert.Equal(t, id, back, in)
	}
}

func TestProductID_IsNumeric(t *testing.T) {
	assert.True(t, MustParseProductID("5").IsNumeric())
	assert.True(t, MustParseProductID("-2.5").IsNumeric())
	assert.False(t, MustParseProductID("sku").IsNumeric())
	assert.False(t, ProductID("").IsNumeric())
	assert.True(t, ProductID("").IsZero())
}
