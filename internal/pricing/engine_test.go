package pricing

import (
	"math/rand"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wonny/srm-sim/internal/contracts"
)

type stubRand struct{ f float64 }

func (r stubRand) Float64() float64 { return r.f }
func (r stubRand) Intn(n int) int   { return 0 }

func TestReputationFactor(t *testing.T) {
	assert.InDelta(t, 1.10, ReputationFactor(0), 1e-12)
	assert.InDelta(t, 1.025, ReputationFactor(50), 1e-12)
	assert.InDelta(t, 0.95, ReputationFactor(100), 1e-12)
}

func TestRecomputeSavesPreviousPrice(t *testing.T) {
	s := &contracts.Supplier{Name: "A", QuotedPrice: 10, CurrentPrice: 12.5, RelationshipScore: 50}

	NewEngine(DefaultConfig()).Recompute([]*contracts.Supplier{s}, stubRand{f: 0.9})

	assert.Equal(t, 12.5, s.PreviousPrice)
	assert.Equal(t, 10*ReputationFactor(50), s.CurrentPrice)
}

func TestRecomputeSurge(t *testing.T) {
	s := &contracts.Supplier{Name: "Spot", QuotedPrice: 10, CurrentPrice: 10, RelationshipScore: 50, TruePriceVolatility: 0.1}

	// Float64 = 0 gives the lowest swing and always rolls the surge
	events := NewEngine(DefaultConfig()).Recompute([]*contracts.Supplier{s}, stubRand{f: 0})

	require.Len(t, events, 1)
	assert.Contains(t, events[0], "PRICE SURGE")
	assert.InDelta(t, 10*1.025*0.9*1.5, s.CurrentPrice, 1e-9)
}

func TestRecomputeSwingBounds(t *testing.T) {
	engine := NewEngine(Config{SurgeProbability: 0, SurgeMultiplier: 1.5})
	rng := rand.New(rand.NewSource(7))
	s := &contracts.Supplier{Name: "Spot", QuotedPrice: 12, CurrentPrice: 12, RelationshipScore: 50, TruePriceVolatility: 0.15}

	for day := 0; day < 200; day++ {
		events := engine.Recompute([]*contracts.Supplier{s}, rng)
		assert.Empty(t, events)

		base := Baseline(s)
		assert.GreaterOrEqual(t, s.CurrentPrice, base*0.85-1e-9)
		assert.LessOrEqual(t, s.CurrentPrice, base*1.15+1e-9)
	}
}

func TestZeroVolatilityHoldsBaseline(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	engine := NewEngine(DefaultConfig())

	properties.Property("price equals quoted × reputation factor every day", prop.ForAll(
		func(quoted, score float64, seed int64, days int) bool {
			s := &contracts.Supplier{QuotedPrice: quoted, CurrentPrice: quoted, RelationshipScore: score}
			rng := rand.New(rand.NewSource(seed))

			for d := 0; d < days; d++ {
				engine.Recompute([]*contracts.Supplier{s}, rng)
				if s.CurrentPrice != quoted*ReputationFactor(score) {
					return false
				}
			}
			return true
		},
		gen.Float64Range(0.01, 1000),
		gen.Float64Range(0, 100),
		gen.Int64(),
		gen.IntRange(1, 30),
	))

	properties.TestingRun(t)
}
