package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoerceQuantity(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{``, 1},
		{`null`, 1},
		{`3`, 3},
		{`"3"`, 3},
		{`" 4 "`, 4},
		{`2.9`, 2},
		{`0`, 1},
		{`-2`, 1},
		{`0.5`, 1},
		{`"abc"`, 1},
		{`true`, 1},
		{`{}`, 1},
		{`10000`, MaxItemQuantity},
		{`1e9`, MaxItemQuantity + 1},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CoerceQuantity(json.RawMessage(tt.in)), "input %q", tt.in)
	}
}

func TestParseQuantity_Valid(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{`1`, 1},
		{`6`, 6},
		{`2.0`, 2},
		{`0`, 0},
		{`-3`, -3},
		{`-1e9`, 0},
		{`1e9`, MaxItemQuantity + 1},
	}
	for _, tt := range tests {
		got, err := ParseQuantity(json.RawMessage(tt.in))
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestParseQuantity_Invalid(t *testing.T) {
	for _, in := range []string{``, `null`, `"3"`, `2.5`, `true`, `[1]`, `{}`} {
		_, err := ParseQuantity(json.RawMessage(in))
		assert.ErrorIs(t, err, ErrInvalidQuantity, "input %q", in)
	}
}

func TestQuantity_ExtremeExponentsAreRejectedQuickly(t *testing.T) {
	inputs := []string{`0e-9999999`, `1e-9999999`, `"0e-9999999"`, `5e99999999`, `-7E+99999999`, `1e65`, `1e-65`}

	start := time.Now()
	for _, in := range inputs {
		assert.Equal(t, 1, CoerceQuantity(json.RawMessage(in)), in)

		_, err := ParseQuantity(json.RawMessage(in))
		assert.ErrorIs(t, err, ErrInvalidQuantity, in)
	}
	assert.Less(t, time.Since(start), time.Second)

	q, err := ParseQuantity(json.RawMessage(`1e3`))
	require.NoError(t, err)
	assert.Equal(t, 1000, q)
	assert.Equal(t, 20, CoerceQuantity(json.RawMessage(`"2e1"`)))
}
