package core

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
)

// ExportFilename is the attachment name of the CSV download.
const ExportFilename = "pk_expenses.csv"

var exportHeader = []string{"Title", "Category", "Amount", "Date"}

// WriteExpensesCSV writes one row per expense in the order given.
func WriteExpensesCSV(w io.Writer, expenses []Expense) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(exportHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, e := range expenses {
		row := []string{e.Title, string(e.Category), strconv.FormatInt(e.Amount, 10), e.Date.String()}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row %d: %w", e.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
