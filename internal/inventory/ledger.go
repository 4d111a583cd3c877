package inventory

import (
	"fmt"
	"math"

	"github.com/wonny/srm-sim/internal/contracts"
)

// ScheduleConfig shapes the production demand curve
type ScheduleConfig struct {
	BaseDemand      int
	SurgeEvery      int     // every Nth day is a surge day
	SurgeMultiplier float64 // applied on surge days
	RampFraction    float64 // ramp-up starts after this fraction of the horizon
	RampMultiplier  float64
	Noise           int // ± units of uniform noise
}

// DefaultScheduleConfig returns the standard demand curve
func DefaultScheduleConfig() ScheduleConfig {
	return ScheduleConfig{
		BaseDemand:      100,
		SurgeEvery:      7,
		SurgeMultiplier: 1.5,
		RampFraction:    2.0 / 3.0,
		RampMultiplier:  1.2,
		Noise:           15,
	}
}

// BuildSchedule precomputes demand for days 1..maxDays+1.
// Index 0 is unused so that schedule[day] reads naturally.
func BuildSchedule(maxDays int, config ScheduleConfig, rng contracts.Rand) []int {
	schedule := make([]int, maxDays+2)
	rampStart := float64(maxDays) * config.RampFraction

	for day := 1; day <= maxDays+1; day++ {
		demand := float64(config.BaseDemand)
		if config.SurgeEvery > 0 && day%config.SurgeEvery == 0 {
			demand *= config.SurgeMultiplier
		}
		if float64(day) > rampStart {
			demand *= config.RampMultiplier
		}

		units := int(math.Round(demand)) + contracts.UniformInt(rng, -config.Noise, config.Noise)
		if units < 0 {
			units = 0
		}
		schedule[day] = units
	}

	return schedule
}

// Consume takes demand out of on-hand stock.
// Returns the remaining stock and the unmet shortfall; remaining is never negative.
func Consume(onHand, demand int) (remaining, shortfall int) {
	if demand <= onHand {
		return onHand - demand, 0
	}
	return 0, demand - onHand
}

// StorageCost is the holding cost of the stock left after consumption
func StorageCost(onHand int, ratePerUnit float64) float64 {
	if onHand <= 0 {
		return 0
	}
	return float64(onHand) * ratePerUnit
}

// Rates holds the per-unit penalty rates
type Rates struct {
	StockoutPenalty float64 // per unit short
	StoragePerDay   float64 // per unit held overnight
	UnitRevenue     float64 // revenue proxy per unit consumed (0 disables)
}

// Ledger tracks on-hand stock and the cost totals of a session
// ⭐ SSOT: 재고 수량과 누적 비용 (재고는 절대 음수 불가)
type Ledger struct {
	rates    Rates
	schedule []int

	onHand int
	cash   float64

	revenue         float64
	spend           float64
	reworkCost      float64
	stockoutPenalty float64
	storageCost     float64
}

// NewLedger opens a ledger with the starting stock and cash
func NewLedger(rates Rates, schedule []int, onHand int, cash float64) *Ledger {
	if onHand < 0 {
		panic(fmt.Sprintf("inventory: negative opening stock %d", onHand))
	}
	return &Ledger{
		rates:    rates,
		schedule: schedule,
		onHand:   onHand,
		cash:     cash,
	}
}

// Demand returns the scheduled demand for a day (0 outside the horizon)
func (l *Ledger) Demand(day int) int {
	if day < 1 || day >= len(l.schedule) {
		return 0
	}
	return l.schedule[day]
}

// Schedule returns a copy of the demand schedule
func (l *Ledger) Schedule() []int {
	out := make([]int, len(l.schedule))
	copy(out, l.schedule)
	return out
}

// RunProduction consumes the day's demand and charges the stockout penalty
func (l *Ledger) RunProduction(day int) []string {
	demand := l.Demand(day)
	remaining, shortfall := Consume(l.onHand, demand)
	consumed := l.onHand - remaining
	l.onHand = remaining

	if l.rates.UnitRevenue > 0 {
		income := float64(consumed) * l.rates.UnitRevenue
		l.revenue += income
		l.cash += income
	}

	if shortfall == 0 {
		return nil
	}

	penalty := float64(shortfall) * l.rates.StockoutPenalty
	l.stockoutPenalty += penalty
	l.cash -= penalty

	return []string{fmt.Sprintf("🛑 LINE STOPPAGE: short %d units (demand %d), penalty $%.2f", shortfall, demand, penalty)}
}

// ChargeStorage applies today's holding cost on the remaining stock
func (l *Ledger) ChargeStorage() float64 {
	cost := StorageCost(l.onHand, l.rates.StoragePerDay)
	l.storageCost += cost
	l.cash -= cost
	return cost
}

// Receive books a delivery: good units go on hand, rework is charged
func (l *Ledger) Receive(d contracts.Delivery) {
	if d.QtyGood < 0 || d.QtyDefective < 0 {
		panic(fmt.Sprintf("inventory: delivery for order %d with negative quantity", d.OrderID))
	}
	l.onHand += d.QtyGood
	l.reworkCost += d.ReworkCost
	l.cash -= d.ReworkCost
}

// RecordSpend recognises committed procurement spend (cash is untouched)
func (l *Ledger) RecordSpend(amount float64) {
	l.spend += amount
}

// Pay takes cash out for a settled invoice
func (l *Ledger) Pay(amount float64) {
	l.cash -= amount
}

// OnHand returns current stock
func (l *Ledger) OnHand() int {
	return l.onHand
}

// Cash returns the cash balance (may be negative)
func (l *Ledger) Cash() float64 {
	return l.cash
}

// Fill writes the stock, cash and cost totals into a KPI snapshot
func (l *Ledger) Fill(k *contracts.KPISnapshot) {
	k.Inventory = l.onHand
	k.Cash = l.cash
	k.Revenue = l.revenue
	k.Spend = l.spend
	k.ReworkCost = l.reworkCost
	k.StockoutPenalty = l.stockoutPenalty
	k.StorageCost = l.storageCost
	k.Profit = l.revenue - k.TotalCost()
}
