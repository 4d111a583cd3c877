package inventory

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

func TestConsume(t *testing.T) {
	remaining, shortfall := Consume(100, 120)
	assert.Equal(t, 0, remaining)
	assert.Equal(t, 20, shortfall)

	remaining, shortfall = Consume(500, 120)
	assert.Equal(t, 380, remaining)
	assert.Zero(t, shortfall)
}

func TestStockoutPenalty(t *testing.T) {
	rates := Rates{StockoutPenalty: 25, StoragePerDay: 0.1}
	l := NewLedger(rates, []int{0, 120}, 100, 1000)

	events := l.RunProduction(1)

	require.Len(t, events, 1)
	assert.Contains(t, events[0], "LINE STOPPAGE")
	assert.Equal(t, 0, l.OnHand())
	assert.Equal(t, 1000-20*25.0, l.Cash())

	// Storage on an empty warehouse costs nothing
	assert.Zero(t, l.ChargeStorage())

	var k contracts.KPISnapshot
	l.Fill(&k)
	assert.Equal(t, 500.0, k.StockoutPenalty)
	assert.Equal(t, -500.0, k.Profit)
}

func TestStorageOnRemainingStock(t *testing.T) {
	l := NewLedger(Rates{StoragePerDay: 0.1}, []int{0, 100}, 500, 0)

	l.RunProduction(1)
	cost := l.ChargeStorage()

	assert.InDelta(t, 40.0, cost, 1e-9)
	assert.InDelta(t, -40.0, l.Cash(), 1e-9)
}

func TestReceiveAndSpend(t *testing.T) {
	l := NewLedger(Rates{}, nil, 0, 10000)

	l.RecordSpend(14000)
	l.Receive(contracts.Delivery{QtyGood: 980, QtyDefective: 20, ReworkCost: 400})

	assert.Equal(t, 980, l.OnHand())
	assert.Equal(t, 9600.0, l.Cash())

	l.Pay(14000)
	assert.Equal(t, -4400.0, l.Cash())

	var k contracts.KPISnapshot
	l.Fill(&k)
	assert.Equal(t, 14400.0, k.TotalCost())
	assert.Equal(t, -14400.0, k.Profit)
}

func TestUnitRevenue(t *testing.T) {
	l := NewLedger(Rates{UnitRevenue: 30}, []int{0, 50}, 40, 0)
	l.RunProduction(1)

	var k contracts.KPISnapshot
	l.Fill(&k)
	assert.Equal(t, 1200.0, k.Revenue)
}

func TestDemandOutsideHorizon(t *testing.T) {
	l := NewLedger(Rates{}, []int{0, 10}, 0, 0)
	assert.Equal(t, 10, l.Demand(1))
	assert.Zero(t, l.Demand(0))
	assert.Zero(t, l.Demand(2))
}

func TestBuildScheduleShape(t *testing.T) {
	cfg := DefaultScheduleConfig()
	cfg.Noise = 0

	schedule := BuildSchedule(30, cfg, rand.New(rand.NewSource(1)))

	require.Len(t, schedule, 32)
	assert.Equal(t, 100, schedule[1])
	assert.Equal(t, 150, schedule[7])
	assert.Equal(t, 150, schedule[14])
	assert.Equal(t, 100, schedule[19])
	assert.Equal(t, 120, schedule[22])
	assert.Equal(t, 180, schedule[28])
}

func TestBuildScheduleNoiseBounded(t *testing.T) {
	cfg := DefaultScheduleConfig()
	cfg.BaseDemand = 5

	schedule := BuildSchedule(60, cfg, rand.New(rand.NewSource(3)))
	for day := 1; day < len(schedule); day++ {
		assert.GreaterOrEqual(t, schedule[day], 0)
		assert.LessOrEqual(t, schedule[day], 5*2+cfg.Noise)
	}
}

func TestInventoryNeverNegative(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("on-hand stock is never negative", prop.ForAll(
		func(start int, demand []int, receipts []int) bool {
			schedule := append([]int{0}, demand...)
			l := NewLedger(Rates{StockoutPenalty: 25, StoragePerDay: 0.1}, schedule, start, 0)

			for day := 1; day < len(schedule); day++ {
				l.RunProduction(day)
				l.ChargeStorage()
				if day-1 < len(receipts) {
					l.Receive(contracts.Delivery{QtyGood: receipts[day-1]})
				}
				if l.OnHand() < 0 {
					return false
				}
			}
			return true
		},
		gen.IntRange(0, 2000),
		gen.SliceOf(gen.IntRange(0, 400)),
		gen.SliceOf(gen.IntRange(0, 1500)),
	))

	properties.TestingRun(t)
}
