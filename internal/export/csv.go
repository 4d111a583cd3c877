package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/wonny/srm-sim/internal/contracts"
)

// WriteTransactions writes the delivery log as CSV with a header row
func WriteTransactions(w io.Writer, rows []contracts.TransactionRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(contracts.TransactionHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for i, row := range rows {
		if err := cw.Write(row.Record()); err != nil {
			return fmt.Errorf("write csv row %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
