package metrics

import (
	"errors"

	"github.com/wonny/srm-sim/internal/contracts"
)

// RejectReason maps an order rejection to a low-cardinality label
func RejectReason(err error) string {
	switch {
	case errors.Is(err, contracts.ErrBelowMinimumOrder):
		return "below_minimum"
	case errors.Is(err, contracts.ErrSupplierBlocked):
		return "blocked"
	case errors.Is(err, contracts.ErrInvalidSupplier):
		return "invalid_supplier"
	case errors.Is(err, contracts.ErrSessionOver):
		return "session_over"
	default:
		return "other"
	}
}
