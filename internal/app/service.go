package app

import (
	"context"
	"io"

	"invoice-system/internal/core"
)

// ApplicationService is the single interface all UI adapters (REPL, CLI)
// call. It decouples presentation from business logic. Implementations must
// contain no fmt.Println, no ANSI codes, and no display logic of any kind.
//
// Methods that only touch local state take no context; the store is
// in-memory with best-effort file persistence. Only the sync operations
// reach the network.
type ApplicationService interface {
	// Dashboard returns the at-a-glance numbers the start screen shows.
	Dashboard() *DashboardResult

	// IssueInvoice validates and issues a new invoice, deducting stock,
	// reconciling inventory prices and registering the customer.
	IssueInvoice(req IssueInvoiceRequest) (*InvoiceResult, error)

	// ListInvoices returns all invoices, newest first.
	ListInvoices() *InvoiceListResult

	// SearchInvoices filters invoices by customer, subject or number.
	SearchInvoices(query string) *InvoiceListResult

	// GetInvoice returns a single invoice by ID.
	GetInvoice(id string) (*InvoiceResult, error)

	// DeleteInvoice removes an invoice. Stock is not restored.
	DeleteInvoice(id string) error

	// ListInventory returns the item catalog.
	ListInventory() *InventoryListResult

	// SearchInventory filters items by name substring.
	SearchInventory(query string) *InventoryListResult

	// AddInventoryItem creates a catalog item.
	AddInventoryItem(req InventoryItemRequest) (*InventoryItemResult, error)

	// UpdateInventoryItem replaces an item's editable fields.
	UpdateInventoryItem(id string, req InventoryItemRequest) (*InventoryItemResult, error)

	// DeleteInventoryItem removes an item from the catalog.
	DeleteInventoryItem(id string) error

	// ImportInventoryCSV bulk-merges items from CSV data.
	ImportInventoryCSV(r io.Reader) (*ImportCSVResult, error)

	// LowStockItems returns items at or below the restock threshold.
	LowStockItems(threshold int64) *InventoryListResult

	// ListCustomers returns the known customer names.
	ListCustomers() *CustomerListResult

	// AddCustomer registers a customer name without issuing an invoice.
	AddCustomer(name string) error

	// RemoveCustomer drops a name from the customer list. Issued invoices
	// keep their customer snapshot.
	RemoveCustomer(name string) error

	// GetSettings returns the issuer settings.
	GetSettings() *SettingsResult

	// UpdateSettings replaces the issuer profile fields and tax rate.
	// Bank accounts and the logo are managed separately.
	UpdateSettings(req UpdateSettingsRequest) (*SettingsResult, error)

	// AddBankAccount appends a payee account to the settings.
	AddBankAccount(req BankAccountRequest) (*SettingsResult, error)

	// UpdateBankAccount replaces an existing payee account by ID.
	UpdateBankAccount(id string, req BankAccountRequest) (*SettingsResult, error)

	// DeleteBankAccount removes a payee account by ID.
	DeleteBankAccount(id string) (*SettingsResult, error)

	// MonthlyReport groups the filtered invoices by year-month.
	MonthlyReport(filter core.Filter) *MonthlyReportResult

	// CustomerReport groups the filtered invoices by customer.
	CustomerReport(filter core.Filter) *CustomerReportResult

	// SalesSummary totals the filtered invoices.
	SalesSummary(filter core.Filter) *SummaryResult

	// ExportBackup renders the full dataset as an indented JSON snapshot.
	ExportBackup() ([]byte, error)

	// ImportBackup replaces the dataset from a snapshot; all-or-nothing.
	ImportBackup(data []byte) error

	// ExportAccountingCSV writes the filtered invoices in the fixed-column
	// format accounting software imports.
	ExportAccountingCSV(w io.Writer, filter core.Filter) error

	// SyncState reports the sync engine's connection state.
	SyncState() string

	// FlushSync pushes pending local changes immediately, bypassing the
	// debounce window. Used on shutdown.
	FlushSync(ctx context.Context)
}
