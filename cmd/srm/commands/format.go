package commands

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/wonny/srm-sim/internal/contracts"
)

// ═══════════════════════════════════════════════════════════
// Common Formatting Utilities
// 모든 커맨드가 동일한 출력 포맷을 사용하도록 통일
// ═══════════════════════════════════════════════════════════

const (
	doubleLine = "═══════════════════════════════════════════════════════════"
	singleLine = "───────────────────────────────────────────────────────────"
)

// printHeader prints a boxed title
func printHeader(w io.Writer, title string) {
	fmt.Fprintln(w, doubleLine)
	fmt.Fprintf(w, "  %s\n", title)
	fmt.Fprintln(w, singleLine)
}

// printKPIs prints the dashboard metrics of a snapshot
func printKPIs(w io.Writer, k contracts.KPISnapshot) {
	fmt.Fprintf(w, "  Day %-3d  Inventory %6d   Cash $%11.2f   Profit $%11.2f\n", k.Day, k.Inventory, k.Cash, k.Profit)
	fmt.Fprintf(w, "  Fill %5.1f%%  Open POs %3d  Incoming %6d\n", k.FillRate, k.OpenOrders, k.IncomingQty)
	fmt.Fprintf(w, "  Cost: spend $%.2f  rework $%.2f  stockout $%.2f  storage $%.2f  (total $%.2f)\n",
		k.Spend, k.ReworkCost, k.StockoutPenalty, k.StorageCost, k.TotalCost())
}

// printEvents prints turn events, one per line
func printEvents(w io.Writer, events []string) {
	if len(events) == 0 {
		fmt.Fprintln(w, "  (no events)")
		return
	}
	for _, e := range events {
		fmt.Fprintf(w, "  %s\n", e)
	}
}

// printSuppliers prints the procurement desk table. reveal adds the hidden truths.
func printSuppliers(w io.Writer, suppliers []contracts.Supplier, reveal bool) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if reveal {
		fmt.Fprintln(tw, "ID\tNAME\tPRICE\tLEAD\tMOQ\tRELIABILITY\tDEFECT\tLEAD VAR\tVOLATILITY")
		for _, s := range suppliers {
			fmt.Fprintf(tw, "%s\t%s\t$%.2f\t%dd\t%d\t%.0f%%\t%.1f%%\t+%dd\t±%.0f%%\n",
				s.ID, s.Name, s.QuotedPrice, s.QuotedLeadTime, s.MinOrderQty,
				s.TrueReliability*100, s.TrueDefectRate*100, s.TrueLeadTimeVar, s.TruePriceVolatility*100)
		}
	} else {
		fmt.Fprintln(tw, "ID\tNAME\tPRICE\tΔ DAY\tLEAD\tMOQ\tSCORE\tSTATUS")
		for i := range suppliers {
			s := &suppliers[i]
			status := "OK"
			if s.Blocked {
				status = "BLOCKED"
			}
			fmt.Fprintf(tw, "%s\t%s\t$%.2f\t%+.1f%%\t%dd\t%d\t%.0f\t%s\n",
				s.ID, s.Name, s.CurrentPrice, s.PriceChangePct(), s.QuotedLeadTime, s.MinOrderQty,
				s.RelationshipScore, status)
		}
	}
	tw.Flush()
}
