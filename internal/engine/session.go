package engine

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/wonny/srm-sim/internal/billing"
	"github.com/wonny/srm-sim/internal/catalog"
	"github.com/wonny/srm-sim/internal/contracts"
	"github.com/wonny/srm-sim/internal/inventory"
	"github.com/wonny/srm-sim/internal/pricing"
	"github.com/wonny/srm-sim/internal/procurement"
	"github.com/wonny/srm-sim/internal/reputation"
	"github.com/wonny/srm-sim/pkg/logger"
)

// Session is one independent game: suppliers, orders, invoices, stock and cash.
// ⭐ SSOT: 세션 상태는 이 구조체가 소유 (전역 상태 없음)
//
// A Session is not safe for concurrent use. Callers hosting sessions behind a
// server must serialise access themselves.
type Session struct {
	id       string
	cfg      Config
	seed     int64
	rng      contracts.Rand
	logger   *logger.Logger
	recorder contracts.Recorder

	defs     []contracts.Supplier
	schedule []int

	catalog    *catalog.Catalog
	pricing    *pricing.Engine
	reputation *reputation.Ledger
	book       *billing.Book
	orders     *procurement.Manager
	stock      *inventory.Ledger

	deliveries []contracts.Delivery
	history    []contracts.KPISnapshot

	currentDay int
	gameOver   bool
}

// NewSession initialises a fresh game on day 1
func NewSession(cfg Config, opts ...Option) (*Session, error) {
	if cfg.MaxDays < 1 {
		return nil, fmt.Errorf("session: max days must be at least 1, got %d", cfg.MaxDays)
	}
	if cfg.StartingInventory < 0 {
		return nil, fmt.Errorf("session: negative starting inventory %d", cfg.StartingInventory)
	}

	s := &Session{
		cfg:        cfg,
		logger:     logger.Nop(),
		recorder:   contracts.NopRecorder{},
		defs:       catalog.Defaults(),
		currentDay: 1,
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.id == "" {
		s.id = uuid.NewString()
	}
	if s.rng == nil {
		s.seed = time.Now().UnixNano()
		s.rng = rand.New(rand.NewSource(s.seed))
	}

	cat, err := catalog.New(s.defs)
	if err != nil {
		return nil, fmt.Errorf("session: %w", err)
	}
	s.catalog = cat

	if s.schedule == nil {
		s.schedule = inventory.BuildSchedule(cfg.MaxDays, cfg.Demand, s.rng)
	}

	s.pricing = pricing.NewEngine(cfg.Pricing)
	s.reputation = reputation.NewLedger(cfg.Reputation)
	s.book = billing.NewBook()
	s.orders = procurement.NewManager(cfg.Procurement, s.book)
	s.stock = inventory.NewLedger(cfg.Rates, s.schedule, cfg.StartingInventory, cfg.StartingCash)
	s.logger = s.logger.WithField("session", s.id)

	s.logger.WithFields(map[string]interface{}{
		"seed":      s.seed,
		"max_days":  cfg.MaxDays,
		"suppliers": cat.Len(),
	}).Debug("Session initialised")

	return s, nil
}

// PlaceOrder creates an order; committed orders skip the Draft stage and are
// invoiced immediately. Rejected orders leave no trace.
func (s *Session) PlaceOrder(supplierID contracts.SupplierID, qty int, committed bool) (contracts.OrderID, error) {
	if s.gameOver {
		return 0, contracts.ErrSessionOver
	}

	sup, ok := s.catalog.Get(supplierID)
	if !ok {
		err := fmt.Errorf("place order %q: %w", supplierID, contracts.ErrInvalidSupplier)
		s.recorder.OrderRejected(supplierID, err)
		return 0, err
	}

	order, err := s.orders.Create(sup, qty, s.currentDay)
	if err != nil {
		s.recorder.OrderRejected(supplierID, err)
		s.logger.WithError(err).Debug("Order rejected")
		return 0, fmt.Errorf("place order: %w", err)
	}

	if committed {
		s.commit(order, sup)
	}

	s.recorder.OrderPlaced(supplierID, order.Status, qty)
	s.logger.WithFields(map[string]interface{}{
		"order":    order.ID,
		"supplier": supplierID,
		"qty":      qty,
		"status":   order.Status,
	}).Debug("Order placed")

	return order.ID, nil
}

func (s *Session) commit(order *contracts.PurchaseOrder, sup *contracts.Supplier) {
	inv := s.orders.Commit(order, sup, s.currentDay)
	s.stock.RecordSpend(inv.Amount)
}

// CommitDrafts commits every Draft now and returns how many were committed
func (s *Session) CommitDrafts() (int, error) {
	if s.gameOver {
		return 0, contracts.ErrSessionOver
	}
	return len(s.commitDrafts()), nil
}

func (s *Session) commitDrafts() []*contracts.PurchaseOrder {
	committed := s.orders.CommitDrafts(s.catalog, s.currentDay)
	for _, order := range committed {
		s.stock.RecordSpend(order.TotalCost())
	}
	return committed
}

// CancelDrafts discards every Draft and returns how many were removed
func (s *Session) CancelDrafts() (int, error) {
	if s.gameOver {
		return 0, contracts.ErrSessionOver
	}
	return s.orders.CancelDrafts(), nil
}

// PayInvoice settles an invoice in full. Paying twice returns ErrAlreadyPaid
// and leaves cash untouched.
func (s *Session) PayInvoice(id contracts.InvoiceID) error {
	if s.gameOver {
		return contracts.ErrSessionOver
	}

	inv, err := s.book.Pay(id, s.currentDay)
	if err != nil {
		return fmt.Errorf("pay invoice: %w", err)
	}

	sup, ok := s.catalog.Get(inv.SupplierID)
	if !ok {
		panic(fmt.Sprintf("engine: invoice %d references unknown supplier %q", inv.ID, inv.SupplierID))
	}

	s.stock.Pay(inv.Amount)
	delta := s.reputation.ApplyPayment(sup, inv, s.currentDay)
	for _, ev := range s.reputation.RefreshBlocking(s.currentDay, s.book.All(), s.catalog) {
		s.logger.Debug(ev)
	}

	s.recorder.InvoicePaid(sup.ID, inv.Amount, inv.DueDay-s.currentDay)
	s.logger.WithFields(map[string]interface{}{
		"invoice":      inv.ID,
		"supplier":     sup.ID,
		"amount":       inv.Amount,
		"score_delta":  delta,
		"relationship": sup.RelationshipScore,
	}).Debug("Invoice paid")

	return nil
}

// AdvanceTurn simulates the current day as one atomic batch and moves to the next.
func (s *Session) AdvanceTurn() (*contracts.TurnReport, error) {
	if s.gameOver {
		return nil, contracts.ErrSessionOver
	}

	day := s.currentDay
	var events []string

	// 1. Lingering drafts are committed (no draft outlives a turn)
	for _, order := range s.commitDrafts() {
		events = append(events, fmt.Sprintf("📝 AUTO-COMMIT: Draft PO #%d committed at $%.2f/unit", order.ID, order.UnitPrice))
	}

	// 2. Blocking, then prices
	events = append(events, s.reputation.RefreshBlocking(day, s.book.All(), s.catalog)...)
	events = append(events, s.pricing.Recompute(s.catalog.All(), s.rng)...)

	// 3. Invoice aging
	events = append(events, s.reputation.ApplyAging(day, s.book.All(), s.catalog, s.rng)...)

	// 4. Predictive delay (Open orders due tomorrow)
	events = append(events, s.orders.CheckDelays(day, s.catalog, s.rng)...)

	// 5. Production
	events = append(events, s.stock.RunProduction(day)...)

	// 6. Storage on what is left
	s.stock.ChargeStorage()

	// 7. Received first, then Processing
	deliveries, orderEvents := s.orders.Advance(day, s.catalog, s.rng)
	for _, d := range deliveries {
		s.stock.Receive(d)
		s.deliveries = append(s.deliveries, d)
	}
	events = append(events, orderEvents...)

	// 8-9. Next day, horizon check
	s.currentDay++
	s.gameOver = s.currentDay > s.cfg.MaxDays
	if s.gameOver {
		events = append(events, fmt.Sprintf("🏁 GAME OVER after %d days", s.cfg.MaxDays))
	} else {
		// 10. 새 날짜 기준으로 차단 재평가 (aging 반영)
		events = append(events, s.reputation.RefreshBlocking(s.currentDay, s.book.All(), s.catalog)...)
	}

	kpis := s.snapshot(day)
	s.history = append(s.history, kpis)

	report := &contracts.TurnReport{
		Day:      day,
		Events:   events,
		KPIs:     kpis,
		GameOver: s.gameOver,
	}

	s.recorder.TurnAdvanced(report)
	s.logger.WithFields(map[string]interface{}{
		"day":       day,
		"events":    len(events),
		"inventory": kpis.Inventory,
		"cash":      kpis.Cash,
	}).Debug("Turn advanced")

	return report, nil
}

// snapshot builds the KPI view labelled with the given day
func (s *Session) snapshot(day int) contracts.KPISnapshot {
	k := contracts.KPISnapshot{Day: day}
	s.stock.Fill(&k)

	open, processing, incoming := s.orders.Pipeline()
	received := len(s.deliveries)

	k.OpenOrders = open + processing
	k.IncomingQty = incoming
	// 출하 = Processing(도크 대기) 또는 Received. Open은 아직 공급사에 있음
	k.FillRate = 100
	if committed := open + processing + received; committed > 0 {
		k.FillRate = float64(processing+received) / float64(committed) * 100
	}

	return k
}
