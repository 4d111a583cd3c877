package reputation

import (
	"fmt"

	"github.com/wonny/srm-sim/internal/contracts"
)

// Score bounds
const (
	MinScore = 0.0
	MaxScore = 100.0
)

// Config holds the relationship scoring rules
type Config struct {
	AgingPenalty       float64 // per overdue invoice per day
	AgingEventChance   float64 // chance an aging hit is surfaced in the event log
	EarlyPaymentDays   int     // pay at least this many days before due for the bonus
	EarlyPaymentBonus  float64
	OnTimePaymentBonus float64
	LatePaymentPenalty float64
	BlockScore         float64 // blocked below this score
	BlockOverdueDays   int     // blocked when an unpaid invoice is more than this many days past due
}

// DefaultConfig returns the standard scoring rules
func DefaultConfig() Config {
	return Config{
		AgingPenalty:       2.0,
		AgingEventChance:   0.20,
		EarlyPaymentDays:   2,
		EarlyPaymentBonus:  5.0,
		OnTimePaymentBonus: 1.0,
		LatePaymentPenalty: 10.0,
		BlockScore:         20.0,
		BlockOverdueDays:   5,
	}
}

// SupplierLookup resolves a supplier by id
type SupplierLookup interface {
	Get(id contracts.SupplierID) (*contracts.Supplier, bool)
	All() []*contracts.Supplier
}

// Ledger mutates buyer–supplier relationship scores
// ⭐ SSOT: 관계 점수 변경은 이 원장에서만 (노화, 결제 시점, 클램프)
type Ledger struct {
	config Config
}

// NewLedger creates a reputation ledger
func NewLedger(config Config) *Ledger {
	return &Ledger{config: config}
}

// Clamp bounds a score to [0, 100]
func Clamp(score float64) float64 {
	if score < MinScore {
		return MinScore
	}
	if score > MaxScore {
		return MaxScore
	}
	return score
}

// Adjust applies delta to the supplier's score and clamps
func (l *Ledger) Adjust(s *contracts.Supplier, delta float64) {
	s.RelationshipScore = Clamp(s.RelationshipScore + delta)
}

// ApplyAging penalises suppliers for every unpaid invoice past its due day.
// Each hit is applied; only a random share is surfaced so the log stays readable.
func (l *Ledger) ApplyAging(currentDay int, invoices []*contracts.Invoice, suppliers SupplierLookup, rng contracts.Rand) []string {
	var events []string

	for _, inv := range invoices {
		if inv.DaysOverdue(currentDay) == 0 {
			continue
		}

		s, ok := suppliers.Get(inv.SupplierID)
		if !ok {
			panic(fmt.Sprintf("reputation: invoice %d references unknown supplier %q", inv.ID, inv.SupplierID))
		}

		l.Adjust(s, -l.config.AgingPenalty)

		if contracts.Chance(rng, l.config.AgingEventChance) {
			events = append(events, fmt.Sprintf("⏰ OVERDUE: Invoice #%d to %s is %d days late. Relationship now %.0f",
				inv.ID, s.Name, inv.DaysOverdue(currentDay), s.RelationshipScore))
		}
	}

	return events
}

// PaymentDelta returns the score change for paying on payDay against dueDay
func (l *Ledger) PaymentDelta(dueDay, payDay int) float64 {
	switch {
	case dueDay-payDay >= l.config.EarlyPaymentDays:
		return l.config.EarlyPaymentBonus
	case payDay > dueDay:
		return -l.config.LatePaymentPenalty
	default:
		return l.config.OnTimePaymentBonus
	}
}

// ApplyPayment rewards or penalises payment timing and returns the applied delta
func (l *Ledger) ApplyPayment(s *contracts.Supplier, inv *contracts.Invoice, payDay int) float64 {
	delta := l.PaymentDelta(inv.DueDay, payDay)
	l.Adjust(s, delta)
	return delta
}

// IsBlocked evaluates the blocking rule for one supplier
func (l *Ledger) IsBlocked(s *contracts.Supplier, invoices []*contracts.Invoice, currentDay int) bool {
	if s.RelationshipScore < l.config.BlockScore {
		return true
	}
	for _, inv := range invoices {
		if inv.SupplierID == s.ID && inv.DaysOverdue(currentDay) > l.config.BlockOverdueDays {
			return true
		}
	}
	return false
}

// RefreshBlocking recomputes the blocked flag for every supplier.
// Blocking is not sticky: it clears as soon as the condition resolves.
func (l *Ledger) RefreshBlocking(currentDay int, invoices []*contracts.Invoice, suppliers SupplierLookup) []string {
	var events []string

	for _, s := range suppliers.All() {
		was := s.Blocked
		s.Blocked = l.IsBlocked(s, invoices, currentDay)

		switch {
		case s.Blocked && !was:
			events = append(events, fmt.Sprintf("🚫 BLOCKED: %s refuses new orders (relationship %.0f)", s.Name, s.RelationshipScore))
		case !s.Blocked && was:
			events = append(events, fmt.Sprintf("🤝 UNBLOCKED: %s accepts orders again", s.Name))
		}
	}

	return events
}
