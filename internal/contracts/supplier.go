package contracts

// SupplierID identifies a supplier in the catalog (e.g. "V-LOW")
type SupplierID string

// Supplier is a vendor the buyer can source from.
// ⭐ SSOT: 공급사 정의 (공개 조건 + 숨겨진 실제 성능)
//
// Visible terms are what the buyer sees on the procurement desk. The True*
// fields are the supplier's real performance and are only observable through
// the delivery log.
type Supplier struct {
	ID          SupplierID `json:"id" yaml:"id"`
	Name        string     `json:"name" yaml:"name"`
	Category    string     `json:"category" yaml:"category"`
	Description string     `json:"description" yaml:"description"`

	// Visible commercial terms
	QuotedPrice    float64 `json:"quoted_price" yaml:"quoted_price"`
	CurrentPrice   float64 `json:"current_price" yaml:"-"`
	PreviousPrice  float64 `json:"previous_price" yaml:"-"`
	QuotedLeadTime int     `json:"quoted_lead_time" yaml:"quoted_lead_time"` // days
	MinOrderQty    int     `json:"min_order_qty" yaml:"min_order_qty"`

	// Hidden performance truths
	TrueReliability     float64 `json:"-" yaml:"true_reliability"`      // P(on-time ship)
	TrueDefectRate      float64 `json:"-" yaml:"true_defect_rate"`      // fraction of units defective
	TrueLeadTimeVar     int     `json:"-" yaml:"true_lead_time_var"`    // max extra days when late
	TruePriceVolatility float64 `json:"-" yaml:"true_price_volatility"` // ± fractional daily swing

	// Relationship
	RelationshipScore float64 `json:"relationship_score" yaml:"-"` // [0, 100]
	Blocked           bool    `json:"blocked" yaml:"-"`
}

// PriceChangePct returns the day-over-day spot price change in percent
func (s *Supplier) PriceChangePct() float64 {
	if s.PreviousPrice == 0 {
		return 0
	}
	return (s.CurrentPrice - s.PreviousPrice) / s.PreviousPrice * 100
}

// QuoteDeltaPct returns how far the spot price is from the quoted price, in percent
func (s *Supplier) QuoteDeltaPct() float64 {
	if s.QuotedPrice == 0 {
		return 0
	}
	return (s.CurrentPrice - s.QuotedPrice) / s.QuotedPrice * 100
}
