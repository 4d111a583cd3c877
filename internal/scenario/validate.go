package scenario

import (
	"fmt"
)

// ValidationError 검증 실패 (시나리오 거부)
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate checks all required constraints
func Validate(cfg *Config) error {
	// === Meta ===
	if cfg.Meta.ScenarioID == "" {
		return ValidationError{"meta.scenario_id", "required"}
	}

	// === Horizon ===
	if cfg.Horizon.MaxDays < 1 {
		return ValidationError{"horizon.max_days", "must be >= 1"}
	}
	if cfg.Horizon.StartingInventory < 0 {
		return ValidationError{"horizon.starting_inventory", "must be >= 0"}
	}

	// === Demand ===
	if cfg.Demand.Base < 0 {
		return ValidationError{"demand.base", "must be >= 0"}
	}
	if cfg.Demand.SurgeEvery < 0 {
		return ValidationError{"demand.surge_every", "must be >= 0"}
	}
	if cfg.Demand.SurgeMultiplier < 1 {
		return ValidationError{"demand.surge_multiplier", "must be >= 1"}
	}
	if cfg.Demand.RampFraction <= 0 || cfg.Demand.RampFraction > 1 {
		return ValidationError{"demand.ramp_fraction", "must be in (0, 1]"}
	}
	if cfg.Demand.RampMultiplier < 1 {
		return ValidationError{"demand.ramp_multiplier", "must be >= 1"}
	}
	if cfg.Demand.Noise < 0 {
		return ValidationError{"demand.noise", "must be >= 0"}
	}

	// === Costs ===
	if cfg.Costs.StockoutPenalty < 0 {
		return ValidationError{"costs.stockout_penalty", "must be >= 0"}
	}
	if cfg.Costs.StoragePerDay < 0 {
		return ValidationError{"costs.storage_per_day", "must be >= 0"}
	}
	if cfg.Costs.ReworkPerUnit < 0 {
		return ValidationError{"costs.rework_per_unit", "must be >= 0"}
	}
	if cfg.Costs.UnitRevenue < 0 {
		return ValidationError{"costs.unit_revenue", "must be >= 0"}
	}

	// === Market ===
	if cfg.Market.SurgeProbability < 0 || cfg.Market.SurgeProbability > 1 {
		return ValidationError{"market.surge_probability", "must be in [0, 1]"}
	}
	if cfg.Market.SurgeMultiplier < 1 {
		return ValidationError{"market.surge_multiplier", "must be >= 1"}
	}

	// === Suppliers ===
	if len(cfg.Suppliers) == 0 {
		return ValidationError{"suppliers", "at least one supplier required"}
	}
	seen := make(map[string]bool, len(cfg.Suppliers))
	for i, s := range cfg.Suppliers {
		if err := validateSupplier(s); err != nil {
			err.Field = fmt.Sprintf("suppliers[%d].%s", i, err.Field)
			return *err
		}
		if seen[s.ID] {
			return ValidationError{fmt.Sprintf("suppliers[%d].id", i), fmt.Sprintf("duplicate id %q", s.ID)}
		}
		seen[s.ID] = true
	}

	return nil
}

func validateSupplier(s SupplierDef) *ValidationError {
	switch {
	case s.ID == "":
		return &ValidationError{"id", "required"}
	case s.Name == "":
		return &ValidationError{"name", "required"}
	case s.QuotedPrice <= 0:
		return &ValidationError{"quoted_price", "must be > 0"}
	case s.QuotedLeadTime < 1:
		return &ValidationError{"quoted_lead_time", "must be >= 1"}
	case s.MinOrderQty < 1:
		return &ValidationError{"min_order_qty", "must be >= 1"}
	case s.Reliability < 0 || s.Reliability > 1:
		return &ValidationError{"true_reliability", "must be in [0, 1]"}
	case s.DefectRate < 0 || s.DefectRate > 0.5:
		return &ValidationError{"true_defect_rate", "must be in [0, 0.5]"}
	case s.LeadTimeVar < 0:
		return &ValidationError{"true_lead_time_var", "must be >= 0"}
	case s.PriceVolatility < 0 || s.PriceVolatility >= 1:
		return &ValidationError{"true_price_volatility", "must be in [0, 1)"}
	}
	return nil
}
