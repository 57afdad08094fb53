package core

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in  string
		out string
		ok  bool
	}{
		{"1", "1", true},
		{"1.0", "1", true},
		{"12.34", "12.34", true},
		{"12,5", "12.5", true},
		{" 2.50 ", "2.5", true},
		{"-3", "-3", true},
		{"0", "0", true},
		{"abc", "", false},
		{"1.2.3", "", false},
		{"1,2,3", "", false},
		{"", "", false},
		{"999999999999999.99", "999999999999999.99", true},
		{"1e14", "100000000000000", true},
		{"0e20000000", "0", true},
		{"1e15", "", false},
		{"1e400", "", false},
		{"-1e400", "", false},
		{"1e20000000", "", false},
		{"1e-400", "", false},
		{"0.000000000000000000001", "", false},
		{strings.Repeat("9", 70), "", false},
	}
	for _, tc := range cases {
		got, err := ParseAmount(tc.in)
		if !tc.ok {
			assert.ErrorIs(t, err, ErrInvalidAmount, "input %q", tc.in)
			continue
		}
		require.NoError(t, err, "input %q", tc.in)
		assert.Equal(t, tc.out, got.String(), "input %q", tc.in)
	}
}

func TestSumAmounts(t *testing.T) {
	assert.Equal(t, 0.3, SumAmounts(0.1, 0.2))
	assert.Equal(t, 0.0, SumAmounts())
	assert.Equal(t, -5.0, SumAmounts(10, -15))
}

func TestPercent(t *testing.T) {
	assert.Equal(t, 0.0, Percent(10, 0))
	assert.Equal(t, 50.0, Percent(100, 200))
	assert.Equal(t, 33.33, Percent(1, 3))
	assert.Equal(t, 125.0, Percent(250, 200))
}
