package core_test

import (
	"testing"

	"invoice-system/internal/core"
)

func TestNextInvoiceNumber(t *testing.T) {
	tests := []struct {
		name     string
		existing []string
		date     string
		want     string
	}{
		{
			name: "first of the day",
			date: "2025-01-15",
			want: "20250115001",
		},
		{
			name:     "increments past highest",
			existing: []string{"20250115001", "20250115002"},
			date:     "2025-01-15",
			want:     "20250115003",
		},
		{
			name:     "gaps are not reused",
			existing: []string{"20250115001", "20250115005"},
			date:     "2025-01-15",
			want:     "20250115006",
		},
		{
			name:     "other dates do not interfere",
			existing: []string{"20250114009", "20250116002"},
			date:     "2025-01-15",
			want:     "20250115001",
		},
		{
			name:     "hundredth invoice keeps three digits",
			existing: []string{"20250115099"},
			date:     "2025-01-15",
			want:     "20250115100",
		},
		{
			name:     "non-numeric suffix ignored",
			existing: []string{"20250115-draft", "20250115001"},
			date:     "2025-01-15",
			want:     "20250115002",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			invoices := make([]core.Invoice, len(tt.existing))
			for i, num := range tt.existing {
				invoices[i] = core.Invoice{InvoiceNumber: num}
			}
			if got := core.NextInvoiceNumber(invoices, tt.date); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNextInvoiceNumber_SequenceNeverRepeats(t *testing.T) {
	var invoices []core.Invoice
	seen := map[string]bool{}
	for i := 0; i < 150; i++ {
		num := core.NextInvoiceNumber(invoices, "2025-03-01")
		if seen[num] {
			t.Fatalf("number %q issued twice", num)
		}
		seen[num] = true
		invoices = append(invoices, core.Invoice{InvoiceNumber: num})
	}
}
