// Package cost estimates search-provider spend for a screening.
package cost

// Rates holds per-provider pricing configuration.
type Rates struct {
	Google GoogleRate `yaml:"google" mapstructure:"google"`
}

// GoogleRate holds Custom Search pricing.
type GoogleRate struct {
	PerQuery float64 `yaml:"per_query" mapstructure:"per_query"`
}

// Calculator computes costs for API usage.
type Calculator struct {
	rates Rates
}

// NewCalculator creates a Calculator with the given rates.
func NewCalculator(rates Rates) *Calculator {
	return &Calculator{rates: rates}
}

// Search returns the cost of calls live Custom Search requests. Cached pages
// are free and should not be counted.
func (c *Calculator) Search(calls int) float64 {
	if calls <= 0 {
		return 0
	}
	return float64(calls) * c.rates.Google.PerQuery
}

// DefaultRates returns the default pricing rates: $5 per 1000 queries.
func DefaultRates() Rates {
	return Rates{
		Google: GoogleRate{PerQuery: 0.005},
	}
}
