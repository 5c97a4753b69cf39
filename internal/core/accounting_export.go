package core

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"
)

// Accounting export: one fixed-column row per issued invoice in the format
// accounting software imports (freee 取引データ). Fields containing commas,
// quotes or newlines are quoted by the CSV writer.
var accountingHeader = []string{
	"収支区分", "管理番号", "発生日", "決済期日", "取引先",
	"勘定科目", "税区分", "金額", "税計算区分", "税額", "備考",
}

// WriteAccountingCSV writes the export for the given (typically filtered)
// invoice set, oldest invoice first. A UTF-8 BOM leads the stream so
// spreadsheet tools pick the right encoding.
func WriteAccountingCSV(w io.Writer, invoices []Invoice) error {
	if _, err := w.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
		return fmt.Errorf("failed to write BOM: %w", err)
	}

	sorted := append([]Invoice(nil), invoices...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].InvoiceDate < sorted[j].InvoiceDate })

	cw := csv.NewWriter(w)
	if err := cw.Write(accountingHeader); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, inv := range sorted {
		row := []string{
			"収入",
			inv.InvoiceNumber,
			inv.InvoiceDate,
			inv.DueDate,
			inv.CustomerName,
			"売上高",
			"課税売上10%",
			strconv.FormatInt(inv.Subtotal, 10),
			"税込",
			strconv.FormatInt(inv.Tax, 10),
			inv.Subject,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write row for %s: %w", inv.InvoiceNumber, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
