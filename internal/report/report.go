// Package report renders the final account snapshots.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"

	"txreplay/internal/amount"
	"txreplay/internal/ledger"
)

var csvHeader = []string{"client", "available", "held", "total", "locked"}

// WriteCSV renders the summary as CSV. The header row is always present;
// with zero clients the output is exactly the header with no trailing
// newline. Rows keep the caller's ordering (ascending client id from
// Engine.Summary).
func WriteCSV(w io.Writer, snaps []ledger.Snapshot) error {
	if len(snaps) == 0 {
		_, err := io.WriteString(w, "client,available,held,total,locked")
		return err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for _, s := range snaps {
		record := []string{
			strconv.FormatUint(uint64(s.Client), 10),
			amount.String(s.AvailableUnits),
			amount.String(s.HeldUnits),
			amount.String(s.TotalUnits),
			strconv.FormatBool(s.Locked),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write summary row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteTable renders the summary as a human-readable table.
func WriteTable(w io.Writer, snaps []ledger.Snapshot) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Client", "Available", "Held", "Total", "Locked"})

	for _, s := range snaps {
		table.Append([]string{
			strconv.FormatUint(uint64(s.Client), 10),
			amount.String(s.AvailableUnits),
			amount.String(s.HeldUnits),
			amount.String(s.TotalUnits),
			strconv.FormatBool(s.Locked),
		})
	}

	table.Render()
}
