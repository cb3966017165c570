package extract

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToNumeric(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want float64
		ok   bool
	}{
		{"float passthrough", 0.7, 0.7, true},
		{"int passthrough", 12000, 12000, true},
		{"nan is absent", math.NaN(), 0, false},
		{"nil is absent", nil, 0, false},
		{"thousands separators", "12,500", 12500, true},
		{"surrounding whitespace", "  6.2 ", 6.2, true},
		{"trailing percent", "45%", 45, true},
		{"percent with space", "45 %", 45, true},
		{"negative", "-83.93", -83.93, true},
		{"malformed", "six", 0, false},
		{"empty", "", 0, false},
		{"nan string", "NaN", 0, false},
		{"unsupported type", struct{}{}, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ToNumeric(tt.in)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.InDelta(t, tt.want, got, 1e-9)
			}
		})
	}
}

func TestToInteger_TruncatesTowardZero(t *testing.T) {
	n, ok := ToInteger("12.9")
	assert.True(t, ok)
	assert.Equal(t, int64(12), n)

	n, ok = ToInteger(-3.7)
	assert.True(t, ok)
	assert.Equal(t, int64(-3), n)

	_, ok = ToInteger("n/a")
	assert.False(t, ok)

	_, ok = ToInteger(math.Inf(1))
	assert.False(t, ok)
}
