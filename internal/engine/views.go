package engine

import (
	"fmt"

	"github.com/wonny/srm-sim/internal/contracts"
)

// Read-only views. Everything returned here is a copy; mutating it does not
// touch the session.

// ID returns the session id
func (s *Session) ID() string { return s.id }

// Seed returns the seed the session was started with (0 for injected sources)
func (s *Session) Seed() int64 { return s.seed }

// Day returns the day about to be simulated
func (s *Session) Day() int { return s.currentDay }

// MaxDays returns the horizon
func (s *Session) MaxDays() int { return s.cfg.MaxDays }

// GameOver reports whether the horizon has been played out
func (s *Session) GameOver() bool { return s.gameOver }

// KPIs returns the current dashboard state
func (s *Session) KPIs() contracts.KPISnapshot {
	return s.snapshot(s.currentDay)
}

// History returns one KPI snapshot per completed turn
func (s *Session) History() []contracts.KPISnapshot {
	out := make([]contracts.KPISnapshot, len(s.history))
	copy(out, s.history)
	return out
}

// Suppliers returns the catalog in display order
func (s *Session) Suppliers() []contracts.Supplier {
	return s.catalog.Snapshot()
}

// Supplier returns one supplier
func (s *Session) Supplier(id contracts.SupplierID) (contracts.Supplier, bool) {
	sup, ok := s.catalog.Get(id)
	if !ok {
		return contracts.Supplier{}, false
	}
	return *sup, true
}

// Orders returns active orders (drafts and inbound)
func (s *Session) Orders() []contracts.PurchaseOrder {
	return s.orders.Snapshot()
}

// Invoices returns every invoice in issue order
func (s *Session) Invoices() []contracts.Invoice {
	return s.book.Snapshot()
}

// Outstanding returns the total owed on unpaid invoices
func (s *Session) Outstanding() float64 {
	return s.book.Outstanding()
}

// Deliveries returns the delivery log
func (s *Session) Deliveries() []contracts.Delivery {
	out := make([]contracts.Delivery, len(s.deliveries))
	copy(out, s.deliveries)
	return out
}

// TodayDemand returns the production target of the day about to be simulated
func (s *Session) TodayDemand() int {
	return s.stock.Demand(s.currentDay)
}

// ShortageRisk reports whether on-hand stock cannot cover today's target
func (s *Session) ShortageRisk() bool {
	return s.TodayDemand() > s.stock.OnHand()
}

// SupplierView derives performance stats from the delivery log
func (s *Session) SupplierView(id contracts.SupplierID) (contracts.SupplierStats, error) {
	if _, ok := s.catalog.Get(id); !ok {
		return contracts.SupplierStats{}, fmt.Errorf("supplier view %q: %w", id, contracts.ErrInvalidSupplier)
	}

	stats := contracts.SupplierStats{SupplierID: id}
	var total, defective, onTime int

	for i := range s.deliveries {
		d := &s.deliveries[i]
		if d.SupplierID != id {
			continue
		}
		stats.Deliveries++
		total += d.QtyTotal()
		defective += d.QtyDefective
		stats.TotalRework += d.ReworkCost
		if d.IsOnTime() {
			onTime++
		}
	}

	if stats.Deliveries == 0 {
		return stats, nil
	}

	stats.HasHistory = true
	stats.OnTimeRate = float64(onTime) / float64(stats.Deliveries) * 100
	if total > 0 {
		stats.DefectRate = float64(defective) / float64(total) * 100
	}

	return stats, nil
}

// ExportTransactions returns one row per delivery, oldest first
func (s *Session) ExportTransactions() []contracts.TransactionRow {
	rows := make([]contracts.TransactionRow, len(s.deliveries))
	for i := range s.deliveries {
		d := &s.deliveries[i]
		rows[i] = contracts.TransactionRow{
			DayPlaced:      d.DayPlaced,
			DayArrived:     d.DayArrived,
			Supplier:       d.SupplierName,
			QtyGood:        d.QtyGood,
			QtyDefective:   d.QtyDefective,
			UnitPrice:      d.UnitPrice,
			ReworkCost:     d.ReworkCost,
			Status:         d.Status(),
			QuotedLeadTime: d.QuotedLeadTime,
			ActualLeadTime: d.ActualLeadTime,
		}
	}
	return rows
}
