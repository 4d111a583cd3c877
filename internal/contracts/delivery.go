package contracts

import "fmt"

// Delivery is the append-only record of a received order
// ⭐ SSOT: 입고 이력 (감사 추적용, 수정 불가)
type Delivery struct {
	OrderID        OrderID    `json:"order_id"`
	SupplierID     SupplierID `json:"supplier_id"`
	SupplierName   string     `json:"supplier_name"`
	DayPlaced      int        `json:"day_placed"`
	DayArrived     int        `json:"day_arrived"` // first day the stock is usable
	QtyGood        int        `json:"qty_good"`
	QtyDefective   int        `json:"qty_defective"`
	ReworkCost     float64    `json:"rework_cost"`
	UnitPrice      float64    `json:"unit_price"`
	QuotedLeadTime int        `json:"quoted_lead_time"`
	ActualLeadTime int        `json:"actual_lead_time"`
	DaysLate       int        `json:"days_late"`
}

// IsOnTime checks if the delivery met its quoted lead time
func (d *Delivery) IsOnTime() bool {
	return d.DaysLate <= 0
}

// Status returns "On Time" or "Late (+N days)"
func (d *Delivery) Status() string {
	if d.IsOnTime() {
		return "On Time"
	}
	return fmt.Sprintf("Late (+%d days)", d.DaysLate)
}

// QtyTotal returns good + defective units
func (d *Delivery) QtyTotal() int {
	return d.QtyGood + d.QtyDefective
}
