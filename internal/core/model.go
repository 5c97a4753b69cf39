package core

import "github.com/google/uuid"

// InventoryItem is one sellable product. Quantity never goes negative:
// deductions clamp at zero.
type InventoryItem struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Quantity  int64  `json:"quantity"`
	Unit      string `json:"unit,omitempty"`
	UnitPrice int64  `json:"unitPrice"` // yen, no fractional unit
}

// LineItem is one row on an invoice. Amount is always derived as
// Quantity × UnitPrice; a stored value is never trusted.
// InventoryItemID is a weak back-reference: the invoice keeps its own copy
// of description and price even if the inventory item later changes.
type LineItem struct {
	Description     string `json:"description"`
	Quantity        int64  `json:"quantity"`
	Unit            string `json:"unit,omitempty"`
	UnitPrice       int64  `json:"unitPrice"`
	Amount          int64  `json:"amount"`
	InventoryItemID string `json:"inventoryItemId,omitempty"`
}

// Invoice is a point-in-time snapshot: Subtotal, TaxRate, Tax and Total are
// fixed at issuance and never recomputed, even if settings change later.
type Invoice struct {
	ID            string     `json:"id"`
	InvoiceNumber string     `json:"invoiceNumber"`
	CustomerName  string     `json:"customerName"`
	Subject       string     `json:"subject"`
	InvoiceDate   string     `json:"invoiceDate"` // YYYY-MM-DD
	DueDate       string     `json:"dueDate,omitempty"`
	Items         []LineItem `json:"items"`
	Subtotal      int64      `json:"subtotal"`
	TaxRate       float64    `json:"taxRate"` // fraction, e.g. 0.1
	Tax           int64      `json:"tax"`
	Total         int64      `json:"total"`
	Notes         string     `json:"notes,omitempty"`
	CreatedAt     int64      `json:"createdAt"` // unix milliseconds, recency sort key
}

// BankAccount is one payee account shown on issued invoices.
type BankAccount struct {
	ID            string `json:"id"`
	BankName      string `json:"bankName"`
	BranchName    string `json:"branchName"`
	AccountType   string `json:"accountType"`
	AccountNumber string `json:"accountNumber"`
	AccountHolder string `json:"accountHolder"`
}

// Settings is the singleton issuer record. LogoImage is device-local and is
// never replicated to the remote document.
type Settings struct {
	CompanyName        string        `json:"companyName"`
	RepresentativeName string        `json:"representativeName"`
	PostalCode         string        `json:"postalCode"`
	Address            string        `json:"address"`
	RegistrationNumber string        `json:"registrationNumber"`
	BankAccounts       []BankAccount `json:"bankAccounts"`
	TaxRate            int           `json:"taxRate"` // integer percent
	LogoImage          string        `json:"logoImage,omitempty"`
}

// DefaultTaxRatePercent applies when settings were never saved or carry a
// zero rate.
const DefaultTaxRatePercent = 10

// DefaultSettings returns the settings used before the user saves any.
func DefaultSettings() Settings {
	return Settings{TaxRate: DefaultTaxRatePercent}
}

// Snapshot is a full copy of the four collections, used by sync, backup and
// file save/load. Slices are fresh copies; mutating a Snapshot never touches
// store state.
type Snapshot struct {
	Inventory []InventoryItem `json:"inventory"`
	Invoices  []Invoice       `json:"invoices"`
	Customers []string        `json:"customers"`
	Settings  Settings        `json:"settings"`
}

// NewID returns an opaque unique entity ID.
func NewID() string {
	return uuid.NewString()
}
