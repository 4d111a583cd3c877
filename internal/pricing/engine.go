package pricing

import (
	"fmt"

	"github.com/wonny/srm-sim/internal/contracts"
)

// Reputation price factor endpoints: score 0 → 1.10×, score 100 → 0.95×
const (
	MaxMarkup   = 1.10
	FactorRange = 0.15
)

// Config holds the daily surge parameters
type Config struct {
	SurgeProbability float64 // daily chance per volatile supplier
	SurgeMultiplier  float64
}

// DefaultConfig returns the standard surge parameters (5%, ×1.5)
func DefaultConfig() Config {
	return Config{
		SurgeProbability: 0.05,
		SurgeMultiplier:  1.5,
	}
}

// Engine recomputes daily spot prices
// ⭐ SSOT: 일별 시장가 계산은 여기서만
type Engine struct {
	config Config
}

// NewEngine creates a pricing engine
func NewEngine(config Config) *Engine {
	return &Engine{config: config}
}

// ReputationFactor maps a relationship score to a price multiplier
func ReputationFactor(score float64) float64 {
	return MaxMarkup - (score/100)*FactorRange
}

// Baseline returns the reputation-adjusted price before any random swing
func Baseline(s *contracts.Supplier) float64 {
	return s.QuotedPrice * ReputationFactor(s.RelationshipScore)
}

// Recompute sets today's price for every supplier and returns notable events.
// Suppliers with zero volatility sit exactly on the baseline.
func (e *Engine) Recompute(suppliers []*contracts.Supplier, rng contracts.Rand) []string {
	var events []string

	for _, s := range suppliers {
		s.PreviousPrice = s.CurrentPrice

		price := Baseline(s)
		if s.TruePriceVolatility > 0 {
			swing := contracts.Uniform(rng, -s.TruePriceVolatility, s.TruePriceVolatility)
			price *= 1 + swing

			if contracts.Chance(rng, e.config.SurgeProbability) {
				price *= e.config.SurgeMultiplier
				events = append(events, fmt.Sprintf("📈 PRICE SURGE: %s spot price jumped to $%.2f", s.Name, price))
			}
		}

		s.CurrentPrice = price
	}

	return events
}
