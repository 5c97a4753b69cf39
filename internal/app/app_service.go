package app

import (
	"context"
	"io"
	"sort"
	"strings"
	"time"

	"invoice-system/internal/cloud"
	"invoice-system/internal/core"
	"invoice-system/pkg/apperror"
)

type appService struct {
	store            *core.Store
	invoiceService   core.InvoiceService
	inventoryService core.InventoryService
	engine           *cloud.Engine // nil when sync is not configured
}

// NewAppService constructs an appService that satisfies ApplicationService.
// engine may be nil when no remote backend is configured.
func NewAppService(
	store *core.Store,
	invoiceService core.InvoiceService,
	inventoryService core.InventoryService,
	engine *cloud.Engine,
) ApplicationService {
	return &appService{
		store:            store,
		invoiceService:   invoiceService,
		inventoryService: inventoryService,
		engine:           engine,
	}
}

// lowStockThreshold matches the dashboard restock alert cutoff.
const lowStockThreshold = 3

func (s *appService) Dashboard() *DashboardResult {
	month := time.Now().Format("2006-01")
	monthly := core.Summarize(core.FilterInvoices(s.store.Invoices(), core.Filter{
		From: month + "-01",
		To:   month + "-31",
	}))
	return &DashboardResult{
		InvoiceCount:   len(s.store.Invoices()),
		InventoryCount: len(s.store.Inventory()),
		CustomerCount:  len(s.store.Customers()),
		Month:          month,
		MonthCount:     monthly.Count,
		MonthRevenue:   monthly.Total,
		LowStock:       s.inventoryService.LowStock(lowStockThreshold),
		SyncState:      s.SyncState(),
	}
}

// ── Invoices ──────────────────────────────────────────────────────────────

func (s *appService) IssueInvoice(req IssueInvoiceRequest) (*InvoiceResult, error) {
	items := make([]core.LineItemInput, len(req.Items))
	for i, it := range req.Items {
		items[i] = core.LineItemInput{
			Description:     it.Description,
			Quantity:        it.Quantity,
			Unit:            it.Unit,
			UnitPrice:       it.UnitPrice,
			InventoryItemID: it.InventoryItemID,
		}
	}
	inv, err := s.invoiceService.Issue(core.IssueInvoiceRequest{
		CustomerName: req.CustomerName,
		Subject:      req.Subject,
		InvoiceDate:  req.InvoiceDate,
		DueDate:      req.DueDate,
		Notes:        req.Notes,
		Items:        items,
	})
	if err != nil {
		return nil, err
	}
	return &InvoiceResult{Invoice: inv}, nil
}

func (s *appService) ListInvoices() *InvoiceListResult {
	return &InvoiceListResult{Invoices: s.invoiceService.List()}
}

func (s *appService) SearchInvoices(query string) *InvoiceListResult {
	return &InvoiceListResult{Invoices: s.invoiceService.Search(query)}
}

func (s *appService) GetInvoice(id string) (*InvoiceResult, error) {
	inv, err := s.invoiceService.Get(id)
	if err != nil {
		return nil, err
	}
	return &InvoiceResult{Invoice: inv}, nil
}

func (s *appService) DeleteInvoice(id string) error {
	return s.invoiceService.Delete(id)
}

// ── Inventory ─────────────────────────────────────────────────────────────

func (s *appService) ListInventory() *InventoryListResult {
	return &InventoryListResult{Items: s.inventoryService.List()}
}

func (s *appService) SearchInventory(query string) *InventoryListResult {
	return &InventoryListResult{Items: s.inventoryService.Search(query)}
}

func (s *appService) AddInventoryItem(req InventoryItemRequest) (*InventoryItemResult, error) {
	item, err := s.inventoryService.Add(core.InventoryItemInput(req))
	if err != nil {
		return nil, err
	}
	return &InventoryItemResult{Item: item}, nil
}

func (s *appService) UpdateInventoryItem(id string, req InventoryItemRequest) (*InventoryItemResult, error) {
	item, err := s.inventoryService.Update(id, core.InventoryItemInput(req))
	if err != nil {
		return nil, err
	}
	return &InventoryItemResult{Item: item}, nil
}

func (s *appService) DeleteInventoryItem(id string) error {
	return s.inventoryService.Delete(id)
}

func (s *appService) ImportInventoryCSV(r io.Reader) (*ImportCSVResult, error) {
	res, err := s.inventoryService.ImportCSV(r)
	if err != nil {
		return nil, err
	}
	return &ImportCSVResult{Imported: res.Imported, Skipped: res.Skipped}, nil
}

func (s *appService) LowStockItems(threshold int64) *InventoryListResult {
	return &InventoryListResult{Items: s.inventoryService.LowStock(threshold)}
}

// ── Customers ─────────────────────────────────────────────────────────────

func (s *appService) ListCustomers() *CustomerListResult {
	return &CustomerListResult{Customers: s.store.Customers()}
}

func (s *appService) AddCustomer(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return apperror.Validation("customer name is required")
	}
	customers := s.store.Customers()
	for _, c := range customers {
		if c == name {
			return nil
		}
	}
	customers = append(customers, name)
	sort.Strings(customers)
	s.store.SetCustomers(customers)
	return nil
}

func (s *appService) RemoveCustomer(name string) error {
	customers := s.store.Customers()
	kept := customers[:0:0]
	for _, c := range customers {
		if c != name {
			kept = append(kept, c)
		}
	}
	if len(kept) == len(customers) {
		return apperror.NotFound("customer " + name)
	}
	s.store.SetCustomers(kept)
	return nil
}

// ── Settings ──────────────────────────────────────────────────────────────

func (s *appService) GetSettings() *SettingsResult {
	return &SettingsResult{Settings: s.store.Settings()}
}

func (s *appService) UpdateSettings(req UpdateSettingsRequest) (*SettingsResult, error) {
	if strings.TrimSpace(req.CompanyName) == "" {
		return nil, apperror.Validation("company name is required")
	}
	settings := s.store.Settings()
	settings.CompanyName = req.CompanyName
	settings.RepresentativeName = req.RepresentativeName
	settings.PostalCode = req.PostalCode
	settings.Address = req.Address
	settings.RegistrationNumber = req.RegistrationNumber
	settings.TaxRate = core.NormalizeTaxRate(req.TaxRate)
	s.store.SetSettings(settings)
	return &SettingsResult{Settings: settings}, nil
}

func (s *appService) AddBankAccount(req BankAccountRequest) (*SettingsResult, error) {
	if strings.TrimSpace(req.BankName) == "" {
		return nil, apperror.Validation("bank name is required")
	}
	settings := s.store.Settings()
	settings.BankAccounts = append(settings.BankAccounts, core.BankAccount{
		ID:            core.NewID(),
		BankName:      req.BankName,
		BranchName:    req.BranchName,
		AccountType:   req.AccountType,
		AccountNumber: req.AccountNumber,
		AccountHolder: req.AccountHolder,
	})
	s.store.SetSettings(settings)
	return &SettingsResult{Settings: settings}, nil
}

func (s *appService) UpdateBankAccount(id string, req BankAccountRequest) (*SettingsResult, error) {
	settings := s.store.Settings()
	for i, acct := range settings.BankAccounts {
		if acct.ID == id {
			settings.BankAccounts[i] = core.BankAccount{
				ID:            id,
				BankName:      req.BankName,
				BranchName:    req.BranchName,
				AccountType:   req.AccountType,
				AccountNumber: req.AccountNumber,
				AccountHolder: req.AccountHolder,
			}
			s.store.SetSettings(settings)
			return &SettingsResult{Settings: settings}, nil
		}
	}
	return nil, apperror.NotFound("bank account " + id)
}

func (s *appService) DeleteBankAccount(id string) (*SettingsResult, error) {
	settings := s.store.Settings()
	kept := settings.BankAccounts[:0:0]
	for _, acct := range settings.BankAccounts {
		if acct.ID != id {
			kept = append(kept, acct)
		}
	}
	if len(kept) == len(settings.BankAccounts) {
		return nil, apperror.NotFound("bank account " + id)
	}
	settings.BankAccounts = kept
	s.store.SetSettings(settings)
	return &SettingsResult{Settings: settings}, nil
}

// ── Reports ───────────────────────────────────────────────────────────────

func (s *appService) MonthlyReport(filter core.Filter) *MonthlyReportResult {
	matched := core.FilterInvoices(s.store.Invoices(), filter)
	return &MonthlyReportResult{
		Groups:  core.MonthlyRollup(matched),
		Summary: core.Summarize(matched),
	}
}

func (s *appService) CustomerReport(filter core.Filter) *CustomerReportResult {
	matched := core.FilterInvoices(s.store.Invoices(), filter)
	return &CustomerReportResult{
		Groups:  core.CustomerRollup(matched),
		Summary: core.Summarize(matched),
	}
}

func (s *appService) SalesSummary(filter core.Filter) *SummaryResult {
	matched := core.FilterInvoices(s.store.Invoices(), filter)
	return &SummaryResult{Summary: core.Summarize(matched)}
}

// ── Data exchange ─────────────────────────────────────────────────────────

func (s *appService) ExportBackup() ([]byte, error) {
	return core.ExportBackupJSON(s.store)
}

func (s *appService) ImportBackup(data []byte) error {
	return core.ImportBackup(s.store, data)
}

func (s *appService) ExportAccountingCSV(w io.Writer, filter core.Filter) error {
	return core.WriteAccountingCSV(w, core.FilterInvoices(s.store.Invoices(), filter))
}

// ── Sync ──────────────────────────────────────────────────────────────────

func (s *appService) SyncState() string {
	if s.engine == nil {
		return "disabled"
	}
	return s.engine.State().String()
}

func (s *appService) FlushSync(ctx context.Context) {
	if s.engine != nil {
		s.engine.Flush(ctx)
	}
}
