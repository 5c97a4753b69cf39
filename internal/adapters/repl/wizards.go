package repl

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"
	"time"

	"invoice-system/internal/app"
)

// handleNewInvoice runs an interactive invoice creation session.
func handleNewInvoice(reader *bufio.Reader, svc app.ApplicationService, customerName string) {
	fmt.Printf("Creating invoice for: %s\n", customerName)

	subject := prompt(reader, "Subject (optional): ")
	date := prompt(reader, fmt.Sprintf("Invoice date [%s]: ", time.Now().Format("2006-01-02")))
	if date == "" {
		date = time.Now().Format("2006-01-02")
	}
	dueDate := prompt(reader, "Due date (optional): ")

	fmt.Println("Enter line items. Type 'done' when finished, 'cancel' to abort.")
	fmt.Println("Format per line: <description> <quantity> <unit-price> [unit]")
	fmt.Println("  Example: Widget 10 1500")
	fmt.Println("  Example: Consulting 3 50000 hours")

	items := readLineItems(reader, svc)
	if items == nil {
		fmt.Println("Invoice creation cancelled.")
		return
	}
	if len(items) == 0 {
		fmt.Println("No line items entered; nothing issued.")
		return
	}

	notes := prompt(reader, "Notes (optional): ")

	result, err := svc.IssueInvoice(app.IssueInvoiceRequest{
		CustomerName: customerName,
		Subject:      subject,
		InvoiceDate:  date,
		DueDate:      dueDate,
		Notes:        notes,
		Items:        items,
	})
	if err != nil {
		fmt.Printf("Failed to issue invoice: %v\n", err)
		return
	}
	fmt.Printf("Invoice issued: %s (total %s yen)\n",
		result.Invoice.InvoiceNumber, yen(result.Invoice.Total))
}

// readLineItems collects line rows until 'done'. Returns nil on 'cancel'.
// Rows matching an inventory item name by exact match are linked to it so
// issuing deducts stock.
func readLineItems(reader *bufio.Reader, svc app.ApplicationService) []app.LineItemInput {
	var items []app.LineItemInput
	lineNum := 1
	for {
		raw := prompt(reader, fmt.Sprintf("  Line %d: ", lineNum))
		switch strings.ToLower(raw) {
		case "cancel":
			return nil
		case "done":
			return items
		case "":
			continue
		}

		parts := strings.Fields(raw)
		if len(parts) < 3 {
			fmt.Println("  Invalid format. Use: <description> <quantity> <unit-price> [unit]")
			continue
		}
		// Description may contain spaces; quantity and price are the first
		// two numeric fields from the right, an optional unit follows them.
		unit := ""
		qtyIdx := len(parts) - 2
		priceIdx := len(parts) - 1
		if _, err := strconv.ParseInt(parts[priceIdx], 10, 64); err != nil && len(parts) >= 4 {
			unit = parts[len(parts)-1]
			qtyIdx = len(parts) - 3
			priceIdx = len(parts) - 2
		}
		qty, err := strconv.ParseInt(parts[qtyIdx], 10, 64)
		if err != nil || qty <= 0 {
			fmt.Println("  Invalid quantity.")
			continue
		}
		price, err := strconv.ParseInt(parts[priceIdx], 10, 64)
		if err != nil || price < 0 {
			fmt.Println("  Invalid unit price.")
			continue
		}
		description := strings.Join(parts[:qtyIdx], " ")

		item := app.LineItemInput{
			Description: description,
			Quantity:    qty,
			Unit:        unit,
			UnitPrice:   price,
		}
		for _, existing := range svc.ListInventory().Items {
			if existing.Name == description {
				item.InventoryItemID = existing.ID
				if item.Unit == "" {
					item.Unit = existing.Unit
				}
				break
			}
		}
		items = append(items, item)
		lineNum++
	}
}

// handleAddBank runs an interactive bank account entry session.
func handleAddBank(reader *bufio.Reader, svc app.ApplicationService) {
	req := app.BankAccountRequest{
		BankName:      prompt(reader, "Bank name: "),
		BranchName:    prompt(reader, "Branch name: "),
		AccountType:   prompt(reader, "Account type: "),
		AccountNumber: prompt(reader, "Account number: "),
		AccountHolder: prompt(reader, "Account holder: "),
	}
	result, err := svc.AddBankAccount(req)
	if err != nil {
		fmt.Printf("Failed to add bank account: %v\n", err)
		return
	}
	fmt.Printf("Bank account added (%d registered).\n", len(result.Settings.BankAccounts))
}

// handleEditSettings runs an interactive issuer profile edit. Empty input
// keeps the current value.
func handleEditSettings(reader *bufio.Reader, svc app.ApplicationService) {
	current := svc.GetSettings().Settings
	req := app.UpdateSettingsRequest{
		CompanyName:        promptDefault(reader, "Company name", current.CompanyName),
		RepresentativeName: promptDefault(reader, "Representative", current.RepresentativeName),
		PostalCode:         promptDefault(reader, "Postal code", current.PostalCode),
		Address:            promptDefault(reader, "Address", current.Address),
		RegistrationNumber: promptDefault(reader, "Registration number", current.RegistrationNumber),
		TaxRate:            current.TaxRate,
	}
	if raw := prompt(reader, fmt.Sprintf("Tax rate %% [%d]: ", current.TaxRate)); raw != "" {
		if rate, err := strconv.Atoi(raw); err == nil {
			req.TaxRate = rate
		} else {
			fmt.Println("Invalid tax rate, keeping current value.")
		}
	}
	result, err := svc.UpdateSettings(req)
	if err != nil {
		fmt.Printf("Failed to save settings: %v\n", err)
		return
	}
	printSettings(result)
}

func prompt(reader *bufio.Reader, label string) string {
	fmt.Print(label)
	raw, _ := reader.ReadString('\n')
	return strings.TrimSpace(raw)
}

func promptDefault(reader *bufio.Reader, label, current string) string {
	raw := prompt(reader, fmt.Sprintf("%s [%s]: ", label, current))
	if raw == "" {
		return current
	}
	return raw
}
