package app

import "invoice-system/internal/core"

// DashboardResult is returned by Dashboard.
type DashboardResult struct {
	InvoiceCount   int
	InventoryCount int
	CustomerCount  int
	Month          string // YYYY-MM
	MonthCount     int    // invoices issued this month
	MonthRevenue   int64  // tax-inclusive revenue this month
	LowStock       []core.InventoryItem
	SyncState      string
}

// InvoiceResult is returned by single-invoice operations.
type InvoiceResult struct {
	Invoice *core.Invoice
}

// InvoiceListResult is returned by ListInvoices and SearchInvoices.
type InvoiceListResult struct {
	Invoices []core.Invoice
}

// InventoryItemResult is returned by item create/update operations.
type InventoryItemResult struct {
	Item *core.InventoryItem
}

// InventoryListResult is returned by inventory listing operations.
type InventoryListResult struct {
	Items []core.InventoryItem
}

// ImportCSVResult is returned by ImportInventoryCSV.
type ImportCSVResult struct {
	Imported int
	Skipped  int
}

// CustomerListResult is returned by ListCustomers.
type CustomerListResult struct {
	Customers []string
}

// SettingsResult is returned by settings operations.
type SettingsResult struct {
	Settings core.Settings
}

// MonthlyReportResult is returned by MonthlyReport.
type MonthlyReportResult struct {
	Groups  []core.MonthlyGroup
	Summary core.SalesSummary
}

// CustomerReportResult is returned by CustomerReport.
type CustomerReportResult struct {
	Groups  []core.CustomerGroup
	Summary core.SalesSummary
}

// SummaryResult is returned by SalesSummary.
type SummaryResult struct {
	Summary core.SalesSummary
}
