package campaign

import (
	"fmt"
	"time"

	"github.com/wonny/srm-sim/internal/contracts"
	"github.com/wonny/srm-sim/internal/engine"
)

// PayPolicy decides when the bot settles invoices
type PayPolicy string

const (
	PayEarly PayPolicy = "early"  // pay as soon as the invoice exists
	PayOnDue PayPolicy = "on_due" // pay on the due day
	PayNever PayPolicy = "never"  // let invoices age
)

// ParsePayPolicy validates a policy name
func ParsePayPolicy(s string) (PayPolicy, error) {
	switch p := PayPolicy(s); p {
	case PayEarly, PayOnDue, PayNever:
		return p, nil
	}
	return "", fmt.Errorf("unknown pay policy %q (want early, on_due or never)", s)
}

// Config holds campaign settings
type Config struct {
	ID           string
	Runs         int
	BaseSeed     int64 // run i plays with BaseSeed+i
	Workers      int
	ReorderPoint int // reorder when inventory drops below
	ReorderQty   int // ordered quantity, raised to the supplier minimum
	PayPolicy    PayPolicy

	Session   engine.Config
	Suppliers []contracts.Supplier // nil = built-in catalog
}

// DefaultConfig returns the reorder-point bot used by the simulate command
func DefaultConfig() Config {
	return Config{
		Runs:         10,
		BaseSeed:     1,
		Workers:      4,
		ReorderPoint: 200,
		ReorderQty:   300,
		PayPolicy:    PayOnDue,
		Session:      engine.DefaultConfig(),
	}
}

// RunResult is the outcome of one bot session
type RunResult struct {
	Run             int                       `json:"run"`
	Seed            int64                     `json:"seed"`
	Final           contracts.KPISnapshot     `json:"final"`
	OrdersPlaced    int                       `json:"orders_placed"`
	OrdersRejected  int                       `json:"orders_rejected"`
	InvoicesPaid    int                       `json:"invoices_paid"`
	Deliveries      int                       `json:"deliveries"`
	LateDeliveries  int                       `json:"late_deliveries"`
	MaxCashDrawdown float64                   `json:"max_cash_drawdown"`
	Suppliers       []contracts.SupplierStats `json:"suppliers"`
}

// TotalCost returns the run's spend plus penalties
func (r RunResult) TotalCost() float64 {
	return r.Final.TotalCost()
}

// Summary aggregates all runs of a campaign
type Summary struct {
	ID        string        `json:"id"`
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration"`
	PayPolicy PayPolicy     `json:"pay_policy"`
	BaseSeed  int64         `json:"base_seed"`
	MaxDays   int           `json:"max_days"`

	Runs []RunResult `json:"runs"`

	MeanTotalCost   float64  `json:"mean_total_cost"`
	StdDevTotalCost float64  `json:"stddev_total_cost"`
	MeanFinalCash   float64  `json:"mean_final_cash"`
	MeanStockout    float64  `json:"mean_stockout_penalty"`
	MeanFillRate    float64  `json:"mean_fill_rate"`
	WorstDrawdown   float64  `json:"worst_cash_drawdown"`
	Tail            TailCost `json:"tail"`
}
