package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/srm-sim/internal/contracts"
	"github.com/wonny/srm-sim/internal/engine"
)

func newDesk(t *testing.T) *desk {
	t.Helper()
	s, err := engine.NewSession(engine.DefaultConfig(), engine.WithSeed(11))
	require.NoError(t, err)
	return &desk{s: s}
}

func exec(t *testing.T, d *desk, line string) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, d.Exec(line, &buf))
	return buf.String()
}

func TestDesk_OrderAndPay(t *testing.T) {
	d := newDesk(t)

	out := exec(t, d, "order v-std 200")
	assert.Contains(t, out, "PO #1 committed")

	out = exec(t, d, "invoices")
	assert.Contains(t, out, "V-STD")
	assert.Contains(t, out, "Unpaid")

	out = exec(t, d, "pay #1")
	assert.Contains(t, out, "Invoice #1 paid")

	var buf bytes.Buffer
	err := d.Exec("pay 1", &buf)
	assert.ErrorIs(t, err, contracts.ErrAlreadyPaid)
}

func TestDesk_Drafts(t *testing.T) {
	d := newDesk(t)

	assert.Contains(t, exec(t, d, "order V-FAST 50 draft"), "saved as draft")
	assert.Contains(t, exec(t, d, "orders"), "Pending (Draft)")
	assert.Contains(t, exec(t, d, "cancel"), "1 draft(s) cancelled")

	exec(t, d, "order V-FAST 50 draft")
	assert.Contains(t, exec(t, d, "commit"), "1 draft(s) committed")
}

func TestDesk_NextAndHistory(t *testing.T) {
	d := newDesk(t)

	out := exec(t, d, "next 3")
	assert.Contains(t, out, "Day 1 report")
	assert.Contains(t, out, "Day 3 report")
	assert.Equal(t, 4, d.s.Day())

	out = exec(t, d, "history")
	assert.Equal(t, 4, strings.Count(out, "\n"), "header plus three days")
}

func TestDesk_Errors(t *testing.T) {
	d := newDesk(t)

	tests := []struct {
		line string
		want error
	}{
		{"order V-STD 10", contracts.ErrBelowMinimumOrder},
		{"order NOPE 1000", contracts.ErrInvalidSupplier},
		{"pay 42", contracts.ErrInvoiceNotFound},
		{"view NOPE", contracts.ErrInvalidSupplier},
	}
	for _, tt := range tests {
		var buf bytes.Buffer
		assert.ErrorIs(t, d.Exec(tt.line, &buf), tt.want, tt.line)
	}

	for _, line := range []string{"order", "order V-STD abc", "pay", "next 0", "bogus"} {
		var buf bytes.Buffer
		assert.Error(t, d.Exec(line, &buf), line)
	}

	var buf bytes.Buffer
	assert.ErrorIs(t, d.Exec("quit", &buf), errQuit)
	assert.NoError(t, d.Exec("   ", &buf))
}

func TestDesk_GameOver(t *testing.T) {
	d := newDesk(t)

	out := exec(t, d, "next 100")
	assert.Contains(t, out, "GAME OVER")
	assert.True(t, d.s.GameOver())

	var buf bytes.Buffer
	assert.ErrorIs(t, d.Exec("next", &buf), contracts.ErrSessionOver)
	assert.Contains(t, exec(t, d, "status"), "Game over")
}

func TestDesk_Export(t *testing.T) {
	d := newDesk(t)
	exec(t, d, "order V-FAST 100")
	exec(t, d, "next 10")

	path := filepath.Join(t.TempDir(), "tx.csv")
	out := exec(t, d, "export "+path)
	assert.Contains(t, out, "written to")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	assert.Equal(t, "Day Placed,Day Arrived,Supplier,Qty Good,Qty Defective,Unit Price,Rework Cost,Status,Quoted Lead Time,Actual Lead Time", lines[0])
	assert.Len(t, lines, len(d.s.Deliveries())+1)
}

func TestRunPlain(t *testing.T) {
	d := newDesk(t)
	in := strings.NewReader("suppliers\norder V-STD 5\nnext\nquit\nnext\n")

	var out bytes.Buffer
	require.NoError(t, runPlain(d, in, &out))

	text := out.String()
	assert.Contains(t, text, "seed 11")
	assert.Contains(t, text, "V-LOW")
	assert.Contains(t, text, "❌")
	assert.Equal(t, 2, d.s.Day(), "commands after quit are ignored")
}
