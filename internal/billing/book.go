package billing

import (
	"fmt"

	"github.com/wonny/srm-sim/internal/contracts"
)

// Book stores the invoices of one session
// ⭐ SSOT: 청구서 발행/결제 상태는 여기서만
//
// Issuing an invoice never touches cash; settlement happens through Pay.
type Book struct {
	invoices []*contracts.Invoice
	byID     map[contracts.InvoiceID]*contracts.Invoice
	byOrder  map[contracts.OrderID]*contracts.Invoice
	nextID   contracts.InvoiceID
}

// NewBook creates an empty invoice book
func NewBook() *Book {
	return &Book{
		byID:    make(map[contracts.InvoiceID]*contracts.Invoice),
		byOrder: make(map[contracts.OrderID]*contracts.Invoice),
		nextID:  1,
	}
}

// Issue raises the invoice for a just-committed order.
// Due day is the order's expected arrival at this moment and never moves afterwards.
func (b *Book) Issue(order *contracts.PurchaseOrder, currentDay int) *contracts.Invoice {
	if order.Status != contracts.OrderStatusOpen {
		panic(fmt.Sprintf("billing: invoice for order %d in status %s", order.ID, order.Status))
	}
	if _, exists := b.byOrder[order.ID]; exists {
		panic(fmt.Sprintf("billing: order %d already invoiced", order.ID))
	}

	inv := &contracts.Invoice{
		ID:         b.nextID,
		OrderID:    order.ID,
		SupplierID: order.SupplierID,
		Amount:     order.TotalCost(),
		IssuedDay:  currentDay,
		DueDay:     order.ExpectedDay,
		Status:     contracts.InvoiceStatusUnpaid,
	}
	b.nextID++

	b.invoices = append(b.invoices, inv)
	b.byID[inv.ID] = inv
	b.byOrder[order.ID] = inv
	order.InvoiceID = inv.ID

	return inv
}

// Pay marks the invoice paid in full. A second call returns ErrAlreadyPaid
// and changes nothing.
func (b *Book) Pay(id contracts.InvoiceID, payDay int) (*contracts.Invoice, error) {
	inv, ok := b.byID[id]
	if !ok {
		return nil, fmt.Errorf("invoice %d: %w", id, contracts.ErrInvoiceNotFound)
	}
	if inv.IsPaid() {
		return inv, fmt.Errorf("invoice %d: %w", id, contracts.ErrAlreadyPaid)
	}

	inv.Status = contracts.InvoiceStatusPaid
	inv.PaidDay = payDay
	return inv, nil
}

// Get looks up an invoice
func (b *Book) Get(id contracts.InvoiceID) (*contracts.Invoice, bool) {
	inv, ok := b.byID[id]
	return inv, ok
}

// ForOrder returns the invoice raised for an order
func (b *Book) ForOrder(id contracts.OrderID) (*contracts.Invoice, bool) {
	inv, ok := b.byOrder[id]
	return inv, ok
}

// All returns every invoice in issue order (live pointers, package-internal use)
func (b *Book) All() []*contracts.Invoice {
	return b.invoices
}

// Unpaid returns outstanding invoices in issue order
func (b *Book) Unpaid() []*contracts.Invoice {
	out := make([]*contracts.Invoice, 0)
	for _, inv := range b.invoices {
		if !inv.IsPaid() {
			out = append(out, inv)
		}
	}
	return out
}

// Outstanding returns the total amount still owed
func (b *Book) Outstanding() float64 {
	total := 0.0
	for _, inv := range b.invoices {
		if !inv.IsPaid() {
			total += inv.Amount
		}
	}
	return total
}

// Snapshot returns value copies of all invoices
func (b *Book) Snapshot() []contracts.Invoice {
	out := make([]contracts.Invoice, len(b.invoices))
	for i, inv := range b.invoices {
		out[i] = *inv
	}
	return out
}

// Overdue returns unpaid invoices past their due day
func (b *Book) Overdue(currentDay int) []*contracts.Invoice {
	var out []*contracts.Invoice
	for _, inv := range b.invoices {
		if inv.DaysOverdue(currentDay) > 0 {
			out = append(out, inv)
		}
	}
	return out
}
