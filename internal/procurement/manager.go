package procurement

import (
	"fmt"
	"math"

	"github.com/wonny/srm-sim/internal/billing"
	"github.com/wonny/srm-sim/internal/contracts"
)

// Config holds the receiving and quality rules
type Config struct {
	DefectExcursionChance     float64 // chance a delivery runs at a worse defect rate
	DefectExcursionMultiplier float64
	ReworkCostPerUnit         float64
	DockDays                  int // days between Processing and stock availability
}

// DefaultConfig returns the standard receiving rules
func DefaultConfig() Config {
	return Config{
		DefectExcursionChance:     0.20,
		DefectExcursionMultiplier: 2.0,
		ReworkCostPerUnit:         20.0,
		DockDays:                  1,
	}
}

// SupplierLookup resolves a supplier by id
type SupplierLookup interface {
	Get(id contracts.SupplierID) (*contracts.Supplier, bool)
}

// Manager owns the active purchase orders of a session
// ⭐ SSOT: 구매 주문 상태 전이는 여기서만 (외부는 생성/확정만 가능)
type Manager struct {
	config Config
	book   *billing.Book
	active []*contracts.PurchaseOrder
	nextID contracts.OrderID
}

// NewManager creates an order manager that invoices through book
func NewManager(config Config, book *billing.Book) *Manager {
	return &Manager{
		config: config,
		book:   book,
		nextID: 1,
	}
}

// Create validates and registers a new order in Draft status.
// Callers that want a committed order follow up with Commit.
func (m *Manager) Create(s *contracts.Supplier, qty int, currentDay int) (*contracts.PurchaseOrder, error) {
	if qty < s.MinOrderQty {
		return nil, fmt.Errorf("%s: qty %d < min %d: %w", s.ID, qty, s.MinOrderQty, contracts.ErrBelowMinimumOrder)
	}
	if s.Blocked {
		return nil, fmt.Errorf("%s: %w", s.ID, contracts.ErrSupplierBlocked)
	}

	order := &contracts.PurchaseOrder{
		ID:             m.nextID,
		SupplierID:     s.ID,
		DayPlaced:      currentDay,
		Qty:            qty,
		QuotedLeadTime: s.QuotedLeadTime,
		ExpectedDay:    currentDay + s.QuotedLeadTime,
		Status:         contracts.OrderStatusDraft,
	}
	m.nextID++
	m.active = append(m.active, order)

	return order, nil
}

// Commit moves a Draft to Open, fixes the unit price at today's spot price
// and raises its invoice. Cash is untouched.
func (m *Manager) Commit(order *contracts.PurchaseOrder, s *contracts.Supplier, currentDay int) *contracts.Invoice {
	if order.Status != contracts.OrderStatusDraft {
		panic(fmt.Sprintf("procurement: commit of order %d in status %s", order.ID, order.Status))
	}

	order.UnitPrice = s.CurrentPrice
	order.Status = contracts.OrderStatusOpen
	return m.book.Issue(order, currentDay)
}

// CommitDrafts commits every Draft and returns the committed orders
func (m *Manager) CommitDrafts(suppliers SupplierLookup, currentDay int) []*contracts.PurchaseOrder {
	var committed []*contracts.PurchaseOrder
	for _, order := range m.active {
		if !order.IsDraft() {
			continue
		}
		m.Commit(order, mustSupplier(suppliers, order), currentDay)
		committed = append(committed, order)
	}
	return committed
}

// CancelDrafts drops every Draft and returns how many were removed.
// Drafts have no invoice, so nothing else needs unwinding.
func (m *Manager) CancelDrafts() int {
	kept := m.active[:0]
	removed := 0
	for _, order := range m.active {
		if order.IsDraft() {
			removed++
			continue
		}
		kept = append(kept, order)
	}
	clearTail(m.active, len(kept))
	m.active = kept
	return removed
}

// CheckDelays runs the one-shot lateness draw for Open orders due tomorrow
func (m *Manager) CheckDelays(currentDay int, suppliers SupplierLookup, rng contracts.Rand) []string {
	var events []string

	for _, order := range m.active {
		if order.Status != contracts.OrderStatusOpen || order.DelayChecked {
			continue
		}
		if currentDay != order.ExpectedDay-1 {
			continue
		}

		order.DelayChecked = true
		s := mustSupplier(suppliers, order)

		if !contracts.Chance(rng, 1-s.TrueReliability) {
			continue
		}

		maxExtra := s.TrueLeadTimeVar
		if maxExtra < 1 {
			maxExtra = 1
		}
		extra := contracts.UniformInt(rng, 1, maxExtra)
		order.ExpectedDay += extra
		order.Delayed = true

		events = append(events, fmt.Sprintf("🚚 DELAY NOTICE: PO #%d from %s slips %d day(s), now expected Day %d",
			order.ID, s.Name, extra, order.ExpectedDay))
	}

	return events
}

// Advance moves Processing orders to Received and then Open orders due
// tomorrow to Processing. Received orders leave the active set and come back
// as deliveries.
func (m *Manager) Advance(currentDay int, suppliers SupplierLookup, rng contracts.Rand) ([]contracts.Delivery, []string) {
	var (
		deliveries []contracts.Delivery
		events     []string
	)

	// 1. Processing → Received (goods staged yesterday)
	kept := m.active[:0]
	for _, order := range m.active {
		if order.Status != contracts.OrderStatusProcessing {
			kept = append(kept, order)
			continue
		}

		d := m.receive(order, mustSupplier(suppliers, order), currentDay, rng)
		deliveries = append(deliveries, d)

		events = append(events, fmt.Sprintf("📦 RECEIVED: PO #%d from %s, %d good units", order.ID, d.SupplierName, d.QtyGood))
		if d.QtyDefective > 0 {
			events = append(events, fmt.Sprintf("🔧 Defective units: %d from %s, rework $%.2f", d.QtyDefective, d.SupplierName, d.ReworkCost))
		}
	}
	clearTail(m.active, len(kept))
	m.active = kept

	// 2. Open → Processing (arrives on the next day boundary)
	for _, order := range m.active {
		if order.Status == contracts.OrderStatusOpen && currentDay+1 >= order.ExpectedDay {
			order.Status = contracts.OrderStatusProcessing
		}
	}

	return deliveries, events
}

func (m *Manager) receive(order *contracts.PurchaseOrder, s *contracts.Supplier, currentDay int, rng contracts.Rand) contracts.Delivery {
	if _, ok := m.book.ForOrder(order.ID); !ok {
		panic(fmt.Sprintf("procurement: order %d received without an invoice", order.ID))
	}

	rate := s.TrueDefectRate
	if contracts.Chance(rng, m.config.DefectExcursionChance) {
		rate *= m.config.DefectExcursionMultiplier
	}
	if rate > 1 {
		rate = 1
	}

	defective := int(math.Floor(float64(order.Qty) * rate))
	good := order.Qty - defective

	dayArrived := currentDay + m.config.DockDays
	actualLead := dayArrived - order.DayPlaced - m.config.DockDays

	order.Status = contracts.OrderStatusReceived

	return contracts.Delivery{
		OrderID:        order.ID,
		SupplierID:     s.ID,
		SupplierName:   s.Name,
		DayPlaced:      order.DayPlaced,
		DayArrived:     dayArrived,
		QtyGood:        good,
		QtyDefective:   defective,
		ReworkCost:     float64(defective) * m.config.ReworkCostPerUnit,
		UnitPrice:      order.UnitPrice,
		QuotedLeadTime: order.QuotedLeadTime,
		ActualLeadTime: actualLead,
		DaysLate:       actualLead - order.QuotedLeadTime,
	}
}

// Active returns live pointers to the active orders (package-internal use)
func (m *Manager) Active() []*contracts.PurchaseOrder {
	return m.active
}

// Get finds an active order
func (m *Manager) Get(id contracts.OrderID) (*contracts.PurchaseOrder, bool) {
	for _, order := range m.active {
		if order.ID == id {
			return order, true
		}
	}
	return nil, false
}

// Snapshot returns value copies of the active orders
func (m *Manager) Snapshot() []contracts.PurchaseOrder {
	out := make([]contracts.PurchaseOrder, len(m.active))
	for i, order := range m.active {
		out[i] = *order
	}
	return out
}

// Pipeline summarises committed inbound orders
func (m *Manager) Pipeline() (open, processing, incomingQty int) {
	for _, order := range m.active {
		switch order.Status {
		case contracts.OrderStatusOpen:
			open++
			incomingQty += order.Qty
		case contracts.OrderStatusProcessing:
			processing++
			incomingQty += order.Qty
		}
	}
	return open, processing, incomingQty
}

func mustSupplier(suppliers SupplierLookup, order *contracts.PurchaseOrder) *contracts.Supplier {
	s, ok := suppliers.Get(order.SupplierID)
	if !ok {
		panic(fmt.Sprintf("procurement: order %d references unknown supplier %q", order.ID, order.SupplierID))
	}
	return s
}

// clearTail nils out dropped pointers so they can be collected
func clearTail(orders []*contracts.PurchaseOrder, from int) {
	for i := from; i < len(orders); i++ {
		orders[i] = nil
	}
}
