package engine

import (
	"github.com/wonny/srm-sim/internal/inventory"
	"github.com/wonny/srm-sim/internal/pricing"
	"github.com/wonny/srm-sim/internal/procurement"
	"github.com/wonny/srm-sim/internal/reputation"
	"github.com/wonny/srm-sim/pkg/config"
)

// Config holds everything a session needs besides its suppliers
type Config struct {
	MaxDays           int
	StartingCash      float64
	StartingInventory int

	Rates       inventory.Rates
	Demand      inventory.ScheduleConfig
	Pricing     pricing.Config
	Reputation  reputation.Config
	Procurement procurement.Config
}

// DefaultConfig returns the standard 30-day game
func DefaultConfig() Config {
	return Config{
		MaxDays:           30,
		StartingCash:      50000,
		StartingInventory: 500,
		Rates: inventory.Rates{
			StockoutPenalty: 25,
			StoragePerDay:   0.10,
		},
		Demand:      inventory.DefaultScheduleConfig(),
		Pricing:     pricing.DefaultConfig(),
		Reputation:  reputation.DefaultConfig(),
		Procurement: procurement.DefaultConfig(),
	}
}

// FromSim overlays the environment simulation settings on the defaults
func FromSim(sim config.SimConfig) Config {
	cfg := DefaultConfig()
	cfg.MaxDays = sim.MaxDays
	cfg.StartingCash = sim.StartingCash
	cfg.StartingInventory = sim.StartingInventory
	cfg.Rates.StockoutPenalty = sim.StockoutPenalty
	cfg.Rates.StoragePerDay = sim.StoragePerDay
	cfg.Rates.UnitRevenue = sim.UnitRevenue
	cfg.Procurement.ReworkCostPerUnit = sim.ReworkPerUnit
	return cfg
}
