package catalog

import (
	"fmt"

	"github.com/wonny/srm-sim/internal/contracts"
)

// InitialRelationshipScore is where every buyer–supplier relationship starts
const InitialRelationshipScore = 50.0

// Catalog holds the suppliers of one session, in a stable order
// ⭐ SSOT: 세션별 공급사 목록 - 생성 후 삭제 없음, 제자리 갱신만
type Catalog struct {
	byID  map[contracts.SupplierID]*contracts.Supplier
	order []contracts.SupplierID
}

// New builds a catalog from supplier definitions.
// Definitions are copied, so the same slice can seed many sessions.
func New(defs []contracts.Supplier) (*Catalog, error) {
	if len(defs) == 0 {
		return nil, fmt.Errorf("catalog: no suppliers")
	}

	c := &Catalog{
		byID:  make(map[contracts.SupplierID]*contracts.Supplier, len(defs)),
		order: make([]contracts.SupplierID, 0, len(defs)),
	}

	for i := range defs {
		def := defs[i]
		if err := validate(&def); err != nil {
			return nil, fmt.Errorf("catalog: supplier %q: %w", def.ID, err)
		}
		if _, exists := c.byID[def.ID]; exists {
			return nil, fmt.Errorf("catalog: duplicate supplier id %q", def.ID)
		}

		def.CurrentPrice = def.QuotedPrice
		def.PreviousPrice = def.QuotedPrice
		def.RelationshipScore = InitialRelationshipScore
		def.Blocked = false

		c.byID[def.ID] = &def
		c.order = append(c.order, def.ID)
	}

	return c, nil
}

// MustDefault returns a fresh catalog of the built-in suppliers
func MustDefault() *Catalog {
	c, err := New(Defaults())
	if err != nil {
		panic(err)
	}
	return c
}

// Get looks up a supplier
func (c *Catalog) Get(id contracts.SupplierID) (*contracts.Supplier, bool) {
	s, ok := c.byID[id]
	return s, ok
}

// All returns the live suppliers in catalog order
func (c *Catalog) All() []*contracts.Supplier {
	out := make([]*contracts.Supplier, len(c.order))
	for i, id := range c.order {
		out[i] = c.byID[id]
	}
	return out
}

// IDs returns supplier ids in catalog order
func (c *Catalog) IDs() []contracts.SupplierID {
	ids := make([]contracts.SupplierID, len(c.order))
	copy(ids, c.order)
	return ids
}

// Len returns the number of suppliers
func (c *Catalog) Len() int {
	return len(c.order)
}

// Snapshot returns value copies, safe to hand to callers
func (c *Catalog) Snapshot() []contracts.Supplier {
	out := make([]contracts.Supplier, len(c.order))
	for i, id := range c.order {
		out[i] = *c.byID[id]
	}
	return out
}

func validate(s *contracts.Supplier) error {
	switch {
	case s.ID == "":
		return fmt.Errorf("id is required")
	case s.QuotedPrice <= 0:
		return fmt.Errorf("quoted_price must be > 0")
	case s.QuotedLeadTime < 1:
		return fmt.Errorf("quoted_lead_time must be >= 1")
	case s.MinOrderQty < 1:
		return fmt.Errorf("min_order_qty must be >= 1")
	case s.TrueReliability < 0 || s.TrueReliability > 1:
		return fmt.Errorf("true_reliability must be in [0, 1]")
	case s.TrueDefectRate < 0 || s.TrueDefectRate > 0.5:
		return fmt.Errorf("true_defect_rate must be in [0, 0.5]")
	case s.TrueLeadTimeVar < 0:
		return fmt.Errorf("true_lead_time_var must be >= 0")
	case s.TruePriceVolatility < 0 || s.TruePriceVolatility >= 1:
		return fmt.Errorf("true_price_volatility must be in [0, 1)")
	}
	return nil
}
