package app

// LineItemInput is a single row within an IssueInvoiceRequest.
type LineItemInput struct {
	Description     string
	Quantity        int64
	Unit            string
	UnitPrice       int64
	InventoryItemID string // empty for manually typed rows
}

// IssueInvoiceRequest is the input for issuing a new invoice.
type IssueInvoiceRequest struct {
	CustomerName string
	Subject      string
	InvoiceDate  string // YYYY-MM-DD
	DueDate      string
	Notes        string
	Items        []LineItemInput
}

// InventoryItemRequest is the input for creating or updating a catalog item.
type InventoryItemRequest struct {
	Name      string
	Quantity  int64
	Unit      string
	UnitPrice int64
}

// UpdateSettingsRequest replaces the issuer profile. TaxRate is an integer
// percent; zero or negative falls back to the default rate.
type UpdateSettingsRequest struct {
	CompanyName        string
	RepresentativeName string
	PostalCode         string
	Address            string
	RegistrationNumber string
	TaxRate            int
}

// BankAccountRequest is the input for adding or updating a payee account.
type BankAccountRequest struct {
	BankName      string
	BranchName    string
	AccountType   string
	AccountNumber string
	AccountHolder string
}
