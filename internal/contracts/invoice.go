package contracts

// InvoiceID identifies an invoice within a session
type InvoiceID int

// InvoiceStatus represents invoice payment state
type InvoiceStatus string

const (
	InvoiceStatusUnpaid InvoiceStatus = "Unpaid"
	InvoiceStatusPaid   InvoiceStatus = "Paid"
)

// Invoice is the bill raised when an order is committed
// ⭐ SSOT: 주문 확정 시 발행되는 청구서 (결제는 별도)
type Invoice struct {
	ID         InvoiceID     `json:"id"`
	OrderID    OrderID       `json:"order_id"`
	SupplierID SupplierID    `json:"supplier_id"`
	Amount     float64       `json:"amount"`
	IssuedDay  int           `json:"issued_day"`
	DueDay     int           `json:"due_day"` // original expected arrival, never shifted
	Status     InvoiceStatus `json:"status"`
	PaidDay    int           `json:"paid_day,omitempty"`
}

// IsPaid checks if the invoice has been settled
func (i *Invoice) IsPaid() bool {
	return i.Status == InvoiceStatusPaid
}

// DaysOverdue returns how many days past due the invoice is on the given day.
// Paid invoices and invoices not yet due return 0.
func (i *Invoice) DaysOverdue(currentDay int) int {
	if i.IsPaid() || currentDay <= i.DueDay {
		return 0
	}
	return currentDay - i.DueDay
}
