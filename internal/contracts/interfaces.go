package contracts

// Recorder observes engine activity (metrics, audit).
// ⭐ SSOT: 엔진 관측 인터페이스 - 엔진은 구현체를 모름
type Recorder interface {
	TurnAdvanced(report *TurnReport)
	OrderPlaced(supplier SupplierID, status OrderStatus, qty int)
	OrderRejected(supplier SupplierID, reason error)
	InvoicePaid(supplier SupplierID, amount float64, daysEarly int)
}

// NopRecorder discards everything
type NopRecorder struct{}

func (NopRecorder) TurnAdvanced(*TurnReport) {}
func (NopRecorder) OrderPlaced(SupplierID, OrderStatus, int) {}
func (NopRecorder) OrderRejected(SupplierID, error) {}
func (NopRecorder) InvoicePaid(SupplierID, float64, int) {}
