package contracts

import "strconv"

// KPISnapshot is the end-of-turn dashboard state
// ⭐ SSOT: 턴 종료 시점 KPI
type KPISnapshot struct {
	Day         int     `json:"day"`
	Inventory   int     `json:"inventory"`
	Cash        float64 `json:"cash"`
	Profit      float64 `json:"profit"`    // revenue proxy - spend - rework - stockout - storage
	FillRate    float64 `json:"fill_rate"` // % of committed orders shipped or arrived
	OpenOrders  int     `json:"open_orders"`
	IncomingQty int     `json:"incoming_qty"`

	// Cost breakdown (cumulative)
	Revenue         float64 `json:"revenue"`
	Spend           float64 `json:"spend"`
	ReworkCost      float64 `json:"rework_cost"`
	StockoutPenalty float64 `json:"stockout_penalty"`
	StorageCost     float64 `json:"storage_cost"`
}

// TotalCost returns spend + rework + stockout + storage
func (k *KPISnapshot) TotalCost() float64 {
	return k.Spend + k.ReworkCost + k.StockoutPenalty + k.StorageCost
}

// TurnReport is what one call to AdvanceTurn produces
type TurnReport struct {
	Day      int         `json:"day"` // the day that was simulated
	Events   []string    `json:"events"`
	KPIs     KPISnapshot `json:"kpis"`
	GameOver bool        `json:"game_over"`
}

// SupplierStats is the read-only performance view derived from the delivery log
type SupplierStats struct {
	SupplierID  SupplierID `json:"supplier_id"`
	Deliveries  int        `json:"deliveries"`
	DefectRate  float64    `json:"defect_rate"`  // %
	OnTimeRate  float64    `json:"on_time_rate"` // %
	TotalRework float64    `json:"total_rework"`
	HasHistory  bool       `json:"has_history"`
}

// TransactionRow is one exported row per delivery
type TransactionRow struct {
	DayPlaced      int     `json:"day_placed"`
	DayArrived     int     `json:"day_arrived"`
	Supplier       string  `json:"supplier"`
	QtyGood        int     `json:"qty_good"`
	QtyDefective   int     `json:"qty_defective"`
	UnitPrice      float64 `json:"unit_price"`
	ReworkCost     float64 `json:"rework_cost"`
	Status         string  `json:"status"`
	QuotedLeadTime int     `json:"quoted_lead_time"`
	ActualLeadTime int     `json:"actual_lead_time"`
}

// TransactionHeader is the column order used by Record
var TransactionHeader = []string{
	"Day Placed", "Day Arrived", "Supplier", "Qty Good", "Qty Defective",
	"Unit Price", "Rework Cost", "Status", "Quoted Lead Time", "Actual Lead Time",
}

// Record flattens the row in TransactionHeader order
func (r TransactionRow) Record() []string {
	return []string{
		strconv.Itoa(r.DayPlaced),
		strconv.Itoa(r.DayArrived),
		r.Supplier,
		strconv.Itoa(r.QtyGood),
		strconv.Itoa(r.QtyDefective),
		strconv.FormatFloat(r.UnitPrice, 'f', 2, 64),
		strconv.FormatFloat(r.ReworkCost, 'f', 2, 64),
		r.Status,
		strconv.Itoa(r.QuotedLeadTime),
		strconv.Itoa(r.ActualLeadTime),
	}
}
