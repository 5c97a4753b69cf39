package core

import (
	"fmt"
	"strconv"
	"strings"
)

// NextInvoiceNumber derives the next invoice number for a calendar date:
// the date as YYYYMMDD followed by a per-date sequence counter, zero-padded
// to three digits (20250115001, 20250115002, ...). The counter is one past
// the highest suffix among existing invoices sharing the date prefix, so
// gaps left by deleted invoices are tolerated and never reused downward.
//
// Uniqueness is best-effort only: two replicas issuing on the same date
// before a sync round-trip can derive the same number. Accepted limitation
// for the single-user deployment this targets.
func NextInvoiceNumber(invoices []Invoice, date string) string {
	prefix := strings.ReplaceAll(date, "-", "")

	var maxSeq int64
	for _, inv := range invoices {
		if !strings.HasPrefix(inv.InvoiceNumber, prefix) || len(inv.InvoiceNumber) <= len(prefix) {
			continue
		}
		seq, err := strconv.ParseInt(inv.InvoiceNumber[len(prefix):], 10, 64)
		if err != nil {
			continue
		}
		if seq > maxSeq {
			maxSeq = seq
		}
	}

	return fmt.Sprintf("%s%03d", prefix, maxSeq+1)
}
