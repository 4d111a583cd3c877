package catalog

import "github.com/wonny/srm-sim/internal/contracts"

// Defaults returns the built-in supplier definitions.
// 공개 조건과 실제 성능이 다르게 설계됨 (싼 곳은 품질/납기가 나쁨)
func Defaults() []contracts.Supplier {
	return []contracts.Supplier{
		{
			ID:                  "V-LOW",
			Name:                "Budget Metals Co",
			Category:            "Raw Materials",
			Description:         "Cheapest quote on the market. Long lead time, large minimum batch.",
			QuotedPrice:         10.0,
			QuotedLeadTime:      7,
			MinOrderQty:         500,
			TrueReliability:     0.70,
			TrueDefectRate:      0.08,
			TrueLeadTimeVar:     4,
			TruePriceVolatility: 0.03,
		},
		{
			ID:                  "V-STD",
			Name:                "Reliable Industrial",
			Category:            "Components",
			Description:         "Fixed-price contract supplier. Steady quality, mid-range lead time.",
			QuotedPrice:         14.0,
			QuotedLeadTime:      5,
			MinOrderQty:         200,
			TrueReliability:     0.95,
			TrueDefectRate:      0.02,
			TrueLeadTimeVar:     2,
			TruePriceVolatility: 0,
		},
		{
			ID:                  "V-FAST",
			Name:                "Express Components",
			Category:            "Components",
			Description:         "Next-day express delivery at a premium price.",
			QuotedPrice:         18.0,
			QuotedLeadTime:      1,
			MinOrderQty:         50,
			TrueReliability:     0.98,
			TrueDefectRate:      0.01,
			TrueLeadTimeVar:     1,
			TruePriceVolatility: 0.02,
		},
		{
			ID:                  "V-VOL",
			Name:                "Spot Market Traders",
			Category:            "Raw Materials",
			Description:         "Spot-market broker. Price moves every day, sometimes sharply.",
			QuotedPrice:         12.0,
			QuotedLeadTime:      3,
			MinOrderQty:         100,
			TrueReliability:     0.85,
			TrueDefectRate:      0.04,
			TrueLeadTimeVar:     3,
			TruePriceVolatility: 0.15,
		},
	}
}
