package contracts

// OrderID identifies a purchase order within a session
type OrderID int

// OrderStatus is the purchase order lifecycle state
type OrderStatus string

const (
	OrderStatusDraft      OrderStatus = "Draft"
	OrderStatusOpen       OrderStatus = "Open"
	OrderStatusProcessing OrderStatus = "Processing"
	OrderStatusReceived   OrderStatus = "Received"
)

// PurchaseOrder represents an order placed with a supplier
// ⭐ SSOT: 구매 주문 (Draft → Open → Processing → Received)
type PurchaseOrder struct {
	ID             OrderID     `json:"id"`
	SupplierID     SupplierID  `json:"supplier_id"`
	DayPlaced      int         `json:"day_placed"`
	Qty            int         `json:"qty"`
	QuotedLeadTime int         `json:"quoted_lead_time"`
	ExpectedDay    int         `json:"expected_arrival_day"` // pushed later by predictive delay
	Status         OrderStatus `json:"status"`

	// Fixed at commit (Draft → Open)
	UnitPrice float64   `json:"unit_price"`
	InvoiceID InvoiceID `json:"invoice_id,omitempty"`

	// One-shot predictive delay check
	DelayChecked bool `json:"delay_checked"`
	Delayed      bool `json:"delayed"`
}

// IsDraft checks if the order has not been committed yet
func (o *PurchaseOrder) IsDraft() bool {
	return o.Status == OrderStatusDraft
}

// IsInbound checks if the order is committed and still on its way
func (o *PurchaseOrder) IsInbound() bool {
	return o.Status == OrderStatusOpen || o.Status == OrderStatusProcessing
}

// TotalCost returns qty × committed unit price (0 for drafts)
func (o *PurchaseOrder) TotalCost() float64 {
	return float64(o.Qty) * o.UnitPrice
}

// MonitorLabel returns the inbound monitor label for the given day
func (o *PurchaseOrder) MonitorLabel(currentDay int) string {
	switch o.Status {
	case OrderStatusDraft:
		return "Pending (Draft)"
	case OrderStatusProcessing:
		return "Processing"
	case OrderStatusReceived:
		return "Received"
	}
	if currentDay > o.ExpectedDay {
		return "Late"
	}
	return "In Transit"
}
