package contracts

import "errors"

// Order placement rejections
var (
	ErrBelowMinimumOrder = errors.New("quantity below supplier minimum order")
	ErrSupplierBlocked   = errors.New("supplier is blocked")
	ErrInvalidSupplier   = errors.New("unknown supplier")
)

// Invoice payment rejections
var (
	ErrAlreadyPaid     = errors.New("invoice already paid")
	ErrInvoiceNotFound = errors.New("invoice not found")
)

// ErrSessionOver is returned by mutating calls once the horizon has been played out
var ErrSessionOver = errors.New("session is over")
