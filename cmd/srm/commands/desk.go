package commands

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/wonny/srm-sim/internal/contracts"
	"github.com/wonny/srm-sim/internal/engine"
	"github.com/wonny/srm-sim/internal/export"
)

// errQuit ends an interactive game
var errQuit = errors.New("quit")

const deskHelp = `Commands:
  status                      dashboard (KPIs, today's target)
  suppliers                   procurement desk
  order <supplier> <qty> [draft]  place an order (committed unless "draft")
  commit | cancel             commit or discard all drafts
  orders                      inbound monitor
  invoices                    accounts payable
  pay <invoice>               pay an invoice
  view <supplier>             supplier scorecard from deliveries
  next [n]                    advance n days (default 1)
  history                     KPI history
  export <file.csv>           write the delivery log
  quit`

// desk interprets procurement desk commands against one session
type desk struct {
	s *engine.Session
}

// Exec runs one command line. It returns errQuit when the player leaves.
func (d *desk) Exec(line string, w io.Writer) error {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}

	cmd, args := strings.ToLower(fields[0]), fields[1:]
	switch cmd {
	case "help", "?":
		fmt.Fprintln(w, deskHelp)
	case "status", "s":
		d.status(w)
	case "suppliers", "desk":
		printSuppliers(w, d.s.Suppliers(), false)
	case "order", "o":
		return d.order(w, args)
	case "commit":
		n, err := d.s.CommitDrafts()
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "✅ %d draft(s) committed\n", n)
	case "cancel":
		n, err := d.s.CancelDrafts()
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "🗑  %d draft(s) cancelled\n", n)
	case "orders":
		d.orders(w)
	case "invoices", "ap":
		d.invoices(w)
	case "pay", "p":
		return d.pay(w, args)
	case "view", "v":
		return d.view(w, args)
	case "next", "n":
		return d.next(w, args)
	case "history":
		d.history(w)
	case "export":
		return d.export(w, args)
	case "quit", "exit", "q":
		return errQuit
	default:
		return fmt.Errorf("unknown command %q (try help)", cmd)
	}
	return nil
}

func (d *desk) status(w io.Writer) {
	printHeader(w, fmt.Sprintf("Day %d / %d", d.s.Day(), d.s.MaxDays()))
	printKPIs(w, d.s.KPIs())
	fmt.Fprintf(w, "  Today's production target: %d units\n", d.s.TodayDemand())
	if d.s.ShortageRisk() {
		fmt.Fprintln(w, "  ⚠️  SHORTAGE RISK: stock does not cover today's target")
	}
	if out := d.s.Outstanding(); out > 0 {
		fmt.Fprintf(w, "  Outstanding payables: $%.2f\n", out)
	}
	if d.s.GameOver() {
		fmt.Fprintln(w, "  🏁 Game over")
	}
}

func (d *desk) order(w io.Writer, args []string) error {
	if len(args) < 2 {
		return errors.New("usage: order <supplier> <qty> [draft]")
	}
	qty, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("invalid quantity %q", args[1])
	}
	committed := !(len(args) > 2 && strings.EqualFold(args[2], "draft"))

	id, err := d.s.PlaceOrder(contracts.SupplierID(strings.ToUpper(args[0])), qty, committed)
	if err != nil {
		return err
	}
	if committed {
		fmt.Fprintf(w, "✅ PO #%d committed\n", id)
	} else {
		fmt.Fprintf(w, "📝 PO #%d saved as draft\n", id)
	}
	return nil
}

func (d *desk) orders(w io.Writer) {
	day := d.s.Day()
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "PO\tSUPPLIER\tQTY\tPRICE\tPLACED\tETA\tSTATUS")
	orders := d.s.Orders()
	for i := range orders {
		o := &orders[i]
		if o.Status == contracts.OrderStatusReceived {
			continue
		}
		fmt.Fprintf(tw, "#%d\t%s\t%d\t$%.2f\t%d\t%d\t%s\n",
			o.ID, o.SupplierID, o.Qty, o.UnitPrice, o.DayPlaced, o.ExpectedDay, o.MonitorLabel(day))
	}
	tw.Flush()
}

func (d *desk) invoices(w io.Writer) {
	day := d.s.Day()
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "INV\tPO\tSUPPLIER\tAMOUNT\tDUE\tSTATUS")
	for _, inv := range d.s.Invoices() {
		status := string(inv.Status)
		if overdue := inv.DaysOverdue(day); overdue > 0 {
			status = fmt.Sprintf("OVERDUE %dd", overdue)
		}
		fmt.Fprintf(tw, "#%d\t#%d\t%s\t$%.2f\t%d\t%s\n",
			inv.ID, inv.OrderID, inv.SupplierID, inv.Amount, inv.DueDay, status)
	}
	tw.Flush()
}

func (d *desk) pay(w io.Writer, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: pay <invoice>")
	}
	id, err := strconv.Atoi(strings.TrimPrefix(args[0], "#"))
	if err != nil {
		return fmt.Errorf("invalid invoice id %q", args[0])
	}
	if err := d.s.PayInvoice(contracts.InvoiceID(id)); err != nil {
		return err
	}
	fmt.Fprintf(w, "💸 Invoice #%d paid, cash $%.2f\n", id, d.s.KPIs().Cash)
	return nil
}

func (d *desk) view(w io.Writer, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: view <supplier>")
	}
	stats, err := d.s.SupplierView(contracts.SupplierID(strings.ToUpper(args[0])))
	if err != nil {
		return err
	}
	if !stats.HasHistory {
		fmt.Fprintf(w, "%s: no deliveries yet\n", stats.SupplierID)
		return nil
	}
	fmt.Fprintf(w, "%s: %d deliveries, on-time %.1f%%, defects %.2f%%, rework $%.2f\n",
		stats.SupplierID, stats.Deliveries, stats.OnTimeRate, stats.DefectRate, stats.TotalRework)
	return nil
}

func (d *desk) next(w io.Writer, args []string) error {
	n := 1
	if len(args) > 0 {
		v, err := strconv.Atoi(args[0])
		if err != nil || v < 1 {
			return fmt.Errorf("invalid day count %q", args[0])
		}
		n = v
	}

	for i := 0; i < n; i++ {
		report, err := d.s.AdvanceTurn()
		if err != nil {
			return err
		}
		printHeader(w, fmt.Sprintf("Day %d report", report.Day))
		printEvents(w, report.Events)
		fmt.Fprintln(w, singleLine)
		printKPIs(w, report.KPIs)
		if report.GameOver {
			break
		}
	}
	return nil
}

func (d *desk) history(w io.Writer) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "DAY\tINVENTORY\tCASH\tPROFIT\tFILL")
	for _, k := range d.s.History() {
		fmt.Fprintf(tw, "%d\t%d\t$%.2f\t$%.2f\t%.1f%%\n", k.Day, k.Inventory, k.Cash, k.Profit, k.FillRate)
	}
	tw.Flush()
}

func (d *desk) export(w io.Writer, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: export <file.csv>")
	}
	f, err := os.Create(args[0])
	if err != nil {
		return fmt.Errorf("create %s: %w", args[0], err)
	}
	defer f.Close()

	rows := d.s.ExportTransactions()
	if err := export.WriteTransactions(f, rows); err != nil {
		return err
	}
	fmt.Fprintf(w, "📄 %d deliveries written to %s\n", len(rows), args[0])
	return nil
}
