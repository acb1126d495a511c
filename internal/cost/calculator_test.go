package cost

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSearch(t *testing.T) {
	t.Parallel()
	calc := NewCalculator(Rates{Google: GoogleRate{PerQuery: 0.005}})

	tests := []struct {
		name  string
		calls int
		want  float64
	}{
		{"none", 0, 0},
		{"negative", -3, 0},
		{"one", 1, 0.005},
		{"full screening", 22, 0.11},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.InDelta(t, tt.want, calc.Search(tt.calls), 1e-9)
		})
	}
}

func TestDefaultRates(t *testing.T) {
	t.Parallel()
	assert.InDelta(t, 0.005, DefaultRates().Google.PerQuery, 1e-9)
}

func TestSearch_ZeroRate(t *testing.T) {
	t.Parallel()
	assert.Zero(t, NewCalculator(Rates{}).Search(10))
}
