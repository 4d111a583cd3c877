package scenario

import (
	"github.com/wonny/srm-sim/internal/contracts"
	"github.com/wonny/srm-sim/internal/engine"
)

// Config는 시뮬레이션 시나리오 전체 설정 (공급사 + 경제 파라미터)
type Config struct {
	Meta      Meta          `yaml:"meta" json:"meta"`
	Horizon   Horizon       `yaml:"horizon" json:"horizon"`
	Demand    Demand        `yaml:"demand" json:"demand"`
	Costs     Costs         `yaml:"costs" json:"costs"`
	Market    Market        `yaml:"market" json:"market"`
	Suppliers []SupplierDef `yaml:"suppliers" json:"suppliers"`
}

// Meta 메타 정보
type Meta struct {
	ScenarioID  string `yaml:"scenario_id" json:"scenario_id"`
	Version     string `yaml:"version" json:"version"`
	Description string `yaml:"description" json:"description"`
}

// Horizon 게임 기간과 시작 상태
type Horizon struct {
	MaxDays           int     `yaml:"max_days" json:"max_days"`
	StartingCash      float64 `yaml:"starting_cash" json:"starting_cash"`
	StartingInventory int     `yaml:"starting_inventory" json:"starting_inventory"`
}

// Demand 생산 수요 곡선
type Demand struct {
	Base            int     `yaml:"base" json:"base"`
	SurgeEvery      int     `yaml:"surge_every" json:"surge_every"`
	SurgeMultiplier float64 `yaml:"surge_multiplier" json:"surge_multiplier"`
	RampFraction    float64 `yaml:"ramp_fraction" json:"ramp_fraction"`
	RampMultiplier  float64 `yaml:"ramp_multiplier" json:"ramp_multiplier"`
	Noise           int     `yaml:"noise" json:"noise"`
}

// Costs 단위당 비용
type Costs struct {
	StockoutPenalty float64 `yaml:"stockout_penalty" json:"stockout_penalty"`
	StoragePerDay   float64 `yaml:"storage_per_day" json:"storage_per_day"`
	ReworkPerUnit   float64 `yaml:"rework_per_unit" json:"rework_per_unit"`
	UnitRevenue     float64 `yaml:"unit_revenue" json:"unit_revenue"`
}

// Market 가격 급등 규칙
type Market struct {
	SurgeProbability float64 `yaml:"surge_probability" json:"surge_probability"`
	SurgeMultiplier  float64 `yaml:"surge_multiplier" json:"surge_multiplier"`
}

// SupplierDef is a supplier as written in the scenario file.
// Hidden truths are part of the hash, unlike the API view of a supplier.
type SupplierDef struct {
	ID              string  `yaml:"id" json:"id"`
	Name            string  `yaml:"name" json:"name"`
	Category        string  `yaml:"category" json:"category"`
	Description     string  `yaml:"description" json:"description"`
	QuotedPrice     float64 `yaml:"quoted_price" json:"quoted_price"`
	QuotedLeadTime  int     `yaml:"quoted_lead_time" json:"quoted_lead_time"`
	MinOrderQty     int     `yaml:"min_order_qty" json:"min_order_qty"`
	Reliability     float64 `yaml:"true_reliability" json:"true_reliability"`
	DefectRate      float64 `yaml:"true_defect_rate" json:"true_defect_rate"`
	LeadTimeVar     int     `yaml:"true_lead_time_var" json:"true_lead_time_var"`
	PriceVolatility float64 `yaml:"true_price_volatility" json:"true_price_volatility"`
}

// SupplierDefs converts the scenario suppliers to catalog definitions
func (c *Config) SupplierDefs() []contracts.Supplier {
	defs := make([]contracts.Supplier, len(c.Suppliers))
	for i, s := range c.Suppliers {
		defs[i] = contracts.Supplier{
			ID:                  contracts.SupplierID(s.ID),
			Name:                s.Name,
			Category:            s.Category,
			Description:         s.Description,
			QuotedPrice:         s.QuotedPrice,
			QuotedLeadTime:      s.QuotedLeadTime,
			MinOrderQty:         s.MinOrderQty,
			TrueReliability:     s.Reliability,
			TrueDefectRate:      s.DefectRate,
			TrueLeadTimeVar:     s.LeadTimeVar,
			TruePriceVolatility: s.PriceVolatility,
		}
	}
	return defs
}

// Apply overlays the scenario on an engine configuration
func (c *Config) Apply(base engine.Config) engine.Config {
	cfg := base

	cfg.MaxDays = c.Horizon.MaxDays
	cfg.StartingCash = c.Horizon.StartingCash
	cfg.StartingInventory = c.Horizon.StartingInventory

	cfg.Demand.BaseDemand = c.Demand.Base
	cfg.Demand.SurgeEvery = c.Demand.SurgeEvery
	cfg.Demand.SurgeMultiplier = c.Demand.SurgeMultiplier
	cfg.Demand.RampFraction = c.Demand.RampFraction
	cfg.Demand.RampMultiplier = c.Demand.RampMultiplier
	cfg.Demand.Noise = c.Demand.Noise

	cfg.Rates.StockoutPenalty = c.Costs.StockoutPenalty
	cfg.Rates.StoragePerDay = c.Costs.StoragePerDay
	cfg.Rates.UnitRevenue = c.Costs.UnitRevenue
	cfg.Procurement.ReworkCostPerUnit = c.Costs.ReworkPerUnit

	cfg.Pricing.SurgeProbability = c.Market.SurgeProbability
	cfg.Pricing.SurgeMultiplier = c.Market.SurgeMultiplier

	return cfg
}

// Options returns the session options the scenario implies
func (c *Config) Options() []engine.Option {
	return []engine.Option{engine.WithSuppliers(c.SupplierDefs())}
}
