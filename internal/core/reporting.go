package core

import "sort"

// Reporting is pure and derived: every query walks the invoice collection
// fresh. No caching: datasets are small enough that recomputing wins over
// invalidation bookkeeping.

// Filter narrows an invoice set. Zero values mean "no bound". Date bounds
// are inclusive and compared as ISO strings; CustomerName is an exact match.
// All set predicates combine with AND.
type Filter struct {
	From         string // YYYY-MM-DD
	To           string
	CustomerName string
}

// MonthlyGroup is one row of the monthly sales rollup.
type MonthlyGroup struct {
	Month    string // YYYY-MM
	Count    int
	Subtotal int64
	Tax      int64
	Total    int64
}

// CustomerGroup is one row of the per-customer rollup.
type CustomerGroup struct {
	CustomerName string
	Count        int
	Total        int64
}

// SalesSummary aggregates a filtered invoice set.
type SalesSummary struct {
	Count    int
	Subtotal int64
	Tax      int64
	Total    int64
}

// FilterInvoices returns the invoices satisfying every set predicate.
func FilterInvoices(invoices []Invoice, f Filter) []Invoice {
	var matched []Invoice
	for _, inv := range invoices {
		if f.CustomerName != "" && inv.CustomerName != f.CustomerName {
			continue
		}
		if f.From != "" && inv.InvoiceDate < f.From {
			continue
		}
		if f.To != "" && inv.InvoiceDate > f.To {
			continue
		}
		matched = append(matched, inv)
	}
	return matched
}

// MonthlyRollup groups invoices by invoice-date year-month, newest month
// first. Invoices without a usable date are left out.
func MonthlyRollup(invoices []Invoice) []MonthlyGroup {
	byMonth := make(map[string]*MonthlyGroup)
	for _, inv := range invoices {
		if len(inv.InvoiceDate) < 7 {
			continue
		}
		month := inv.InvoiceDate[:7]
		g, ok := byMonth[month]
		if !ok {
			g = &MonthlyGroup{Month: month}
			byMonth[month] = g
		}
		g.Count++
		g.Subtotal += inv.Subtotal
		g.Tax += inv.Tax
		g.Total += inv.Total
	}

	groups := make([]MonthlyGroup, 0, len(byMonth))
	for _, g := range byMonth {
		groups = append(groups, *g)
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].Month > groups[j].Month })
	return groups
}

// CustomerRollup groups invoices by customer, largest total first.
func CustomerRollup(invoices []Invoice) []CustomerGroup {
	byCustomer := make(map[string]*CustomerGroup)
	for _, inv := range invoices {
		g, ok := byCustomer[inv.CustomerName]
		if !ok {
			g = &CustomerGroup{CustomerName: inv.CustomerName}
			byCustomer[inv.CustomerName] = g
		}
		g.Count++
		g.Total += inv.Total
	}

	groups := make([]CustomerGroup, 0, len(byCustomer))
	for _, g := range byCustomer {
		groups = append(groups, *g)
	}
	sort.Slice(groups, func(i, j int) bool {
		if groups[i].Total != groups[j].Total {
			return groups[i].Total > groups[j].Total
		}
		return groups[i].CustomerName < groups[j].CustomerName
	})
	return groups
}

// Summarize totals a (typically pre-filtered) invoice set.
func Summarize(invoices []Invoice) SalesSummary {
	s := SalesSummary{Count: len(invoices)}
	for _, inv := range invoices {
		s.Subtotal += inv.Subtotal
		s.Tax += inv.Tax
		s.Total += inv.Total
	}
	return s
}
