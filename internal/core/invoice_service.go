package core

import (
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"invoice-system/pkg/apperror"
)

// LineItemInput is one requested invoice row. Amount is intentionally absent:
// it is always derived by the calculator.
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

// InvoiceService issues and manages invoices. Issuing is atomic with the
// inventory reconciliation and customer registration it implies: every
// derived value is computed before the first collection write, so a
// validation failure leaves no partial mutation.
type InvoiceService interface {
	Issue(req IssueInvoiceRequest) (*Invoice, error)
	List() []Invoice
	Search(query string) []Invoice
	Get(id string) (*Invoice, error)
	Delete(id string) error
}

type invoiceService struct {
	store *Store
	log   zerolog.Logger
}

func NewInvoiceService(store *Store, log zerolog.Logger) InvoiceService {
	return &invoiceService{store: store, log: log}
}

func (s *invoiceService) Issue(req IssueInvoiceRequest) (*Invoice, error) {
	customerName := strings.TrimSpace(req.CustomerName)
	if customerName == "" {
		return nil, apperror.Validation("customer name is required")
	}
	if req.InvoiceDate == "" {
		return nil, apperror.Validation("invoice date is required")
	}
	if _, err := time.Parse("2006-01-02", req.InvoiceDate); err != nil {
		return nil, apperror.Validation("invoice date must be YYYY-MM-DD")
	}
	if len(req.Items) == 0 {
		return nil, apperror.Validation("invoice needs at least one line item")
	}
	for _, item := range req.Items {
		if strings.TrimSpace(item.Description) == "" {
			return nil, apperror.Validation("line item description must not be blank")
		}
	}

	settings := s.store.Settings()
	ratePercent := NormalizeTaxRate(settings.TaxRate)

	items := make([]LineItem, 0, len(req.Items))
	for _, in := range req.Items {
		items = append(items, LineItem{
			Description:     in.Description,
			Quantity:        in.Quantity,
			Unit:            in.Unit,
			UnitPrice:       in.UnitPrice,
			Amount:          LineAmount(in.Quantity, in.UnitPrice),
			InventoryItemID: in.InventoryItemID,
		})
	}
	totals := ComputeTotals(items, ratePercent)

	invoices := s.store.Invoices()
	invoice := Invoice{
		ID:            NewID(),
		InvoiceNumber: NextInvoiceNumber(invoices, req.InvoiceDate),
		CustomerName:  customerName,
		Subject:       strings.TrimSpace(req.Subject),
		InvoiceDate:   req.InvoiceDate,
		DueDate:       req.DueDate,
		Items:         items,
		Subtotal:      totals.Subtotal,
		TaxRate:       TaxRateFraction(ratePercent),
		Tax:           totals.Tax,
		Total:         totals.Total,
		Notes:         strings.TrimSpace(req.Notes),
		CreatedAt:     time.Now().UnixMilli(),
	}

	// All derived state is ready; apply the three collection writes together.
	s.store.SetInvoices(append(invoices, invoice))
	s.registerCustomer(customerName)
	s.store.SetInventory(reconcileInventory(s.store.Inventory(), items))

	s.log.Info().
		Str("invoice_number", invoice.InvoiceNumber).
		Str("customer", invoice.CustomerName).
		Int64("total", invoice.Total).
		Msg("invoice issued")

	return &invoice, nil
}

// registerCustomer adds a name to the deduplicated, sorted customer list.
func (s *invoiceService) registerCustomer(name string) {
	customers := s.store.Customers()
	for _, c := range customers {
		if c == name {
			return
		}
	}
	customers = append(customers, name)
	sort.Strings(customers)
	s.store.SetCustomers(customers)
}

// reconcileInventory applies an issued invoice's stock effects:
//
//   - A line linked to an inventory item deducts its quantity, floored at
//     zero; excess demand is absorbed, never rejected. The invoice is
//     authoritative for price and unit going forward.
//   - An unlinked line with a non-blank description updates the item with
//     the exact same name, or auto-registers a new item with quantity zero
//     so it seeds future selection without claiming stock was held.
//   - Blank descriptions are a no-op.
func reconcileInventory(inventory []InventoryItem, items []LineItem) []InventoryItem {
	for _, line := range items {
		if line.InventoryItemID != "" {
			for i := range inventory {
				if inventory[i].ID != line.InventoryItemID {
					continue
				}
				inventory[i].Quantity -= line.Quantity
				if inventory[i].Quantity < 0 {
					inventory[i].Quantity = 0
				}
				if line.UnitPrice > 0 {
					inventory[i].UnitPrice = line.UnitPrice
				}
				if line.Unit != "" {
					inventory[i].Unit = line.Unit
				}
				break
			}
			continue
		}

		name := strings.TrimSpace(line.Description)
		if name == "" {
			continue
		}
		found := false
		for i := range inventory {
			if inventory[i].Name != name {
				continue
			}
			if line.UnitPrice > 0 {
				inventory[i].UnitPrice = line.UnitPrice
			}
			if line.Unit != "" {
				inventory[i].Unit = line.Unit
			}
			found = true
			break
		}
		if !found {
			inventory = append(inventory, InventoryItem{
				ID:        NewID(),
				Name:      name,
				Quantity:  0,
				Unit:      line.Unit,
				UnitPrice: line.UnitPrice,
			})
		}
	}
	return inventory
}

func (s *invoiceService) List() []Invoice {
	invoices := s.store.Invoices()
	sort.Slice(invoices, func(i, j int) bool {
		return invoices[i].CreatedAt > invoices[j].CreatedAt
	})
	return invoices
}

func (s *invoiceService) Search(query string) []Invoice {
	if strings.TrimSpace(query) == "" {
		return s.List()
	}
	q := strings.ToLower(query)
	var matched []Invoice
	for _, inv := range s.List() {
		if strings.Contains(strings.ToLower(inv.CustomerName), q) ||
			strings.Contains(strings.ToLower(inv.Subject), q) ||
			strings.Contains(inv.InvoiceNumber, query) {
			matched = append(matched, inv)
		}
	}
	return matched
}

func (s *invoiceService) Get(id string) (*Invoice, error) {
	for _, inv := range s.store.Invoices() {
		if inv.ID == id {
			return &inv, nil
		}
	}
	return nil, apperror.NotFound("invoice " + id)
}

func (s *invoiceService) Delete(id string) error {
	invoices := s.store.Invoices()
	kept := invoices[:0:0]
	for _, inv := range invoices {
		if inv.ID != id {
			kept = append(kept, inv)
		}
	}
	if len(kept) == len(invoices) {
		return apperror.NotFound("invoice " + id)
	}
	s.store.SetInvoices(kept)
	return nil
}
