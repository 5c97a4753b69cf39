package repl

import (
	"fmt"
	"strconv"
	"strings"

	"invoice-system/internal/app"
	"invoice-system/internal/core"
)

// yen renders an amount with thousands separators, e.g. 1234567 → "1,234,567".
func yen(amount int64) string {
	s := strconv.FormatInt(amount, 10)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	var b strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}

func printDashboard(result *app.DashboardResult) {
	fmt.Println()
	fmt.Println(strings.Repeat("=", 62))
	fmt.Printf("  %-58s\n", "DASHBOARD")
	fmt.Println(strings.Repeat("=", 62))
	fmt.Printf("  Invoices  : %d\n", result.InvoiceCount)
	fmt.Printf("  Items     : %d\n", result.InventoryCount)
	fmt.Printf("  Customers : %d\n", result.CustomerCount)
	fmt.Printf("  This month: %s (%d invoices, %s yen)\n",
		result.Month, result.MonthCount, yen(result.MonthRevenue))
	fmt.Printf("  Sync      : %s\n", result.SyncState)
	if len(result.LowStock) > 0 {
		fmt.Println(strings.Repeat("-", 62))
		fmt.Println("  LOW STOCK:")
		for _, item := range result.LowStock {
			fmt.Printf("    %-30s %6d %s\n", item.Name, item.Quantity, item.Unit)
		}
	}
	fmt.Println(strings.Repeat("=", 62))
}

func printInvoices(result *app.InvoiceListResult) {
	fmt.Println()
	fmt.Println(strings.Repeat("=", 78))
	fmt.Printf("  INVOICES (%d)\n", len(result.Invoices))
	fmt.Println(strings.Repeat("=", 78))
	if len(result.Invoices) == 0 {
		fmt.Println("  No invoices found.")
		fmt.Println(strings.Repeat("=", 78))
		return
	}
	fmt.Printf("  %-14s %-12s %-22s %12s  %s\n", "NUMBER", "DATE", "CUSTOMER", "TOTAL", "ID")
	fmt.Println(strings.Repeat("-", 78))
	for _, inv := range result.Invoices {
		fmt.Printf("  %-14s %-12s %-22s %12s  %s\n",
			inv.InvoiceNumber, inv.InvoiceDate, inv.CustomerName, yen(inv.Total), inv.ID)
	}
	fmt.Println(strings.Repeat("=", 78))
}

func printInvoiceDetail(inv *core.Invoice) {
	fmt.Println()
	fmt.Println(strings.Repeat("=", 70))
	fmt.Printf("  INVOICE %s\n", inv.InvoiceNumber)
	fmt.Println(strings.Repeat("=", 70))
	fmt.Printf("  Customer : %s\n", inv.CustomerName)
	if inv.Subject != "" {
		fmt.Printf("  Subject  : %s\n", inv.Subject)
	}
	fmt.Printf("  Date     : %s", inv.InvoiceDate)
	if inv.DueDate != "" {
		fmt.Printf("   Due: %s", inv.DueDate)
	}
	fmt.Println()
	fmt.Println(strings.Repeat("-", 70))
	fmt.Printf("  %-30s %8s %-6s %10s %10s\n", "DESCRIPTION", "QTY", "UNIT", "PRICE", "AMOUNT")
	for _, item := range inv.Items {
		fmt.Printf("  %-30s %8d %-6s %10s %10s\n",
			item.Description, item.Quantity, item.Unit, yen(item.UnitPrice), yen(item.Amount))
	}
	fmt.Println(strings.Repeat("-", 70))
	fmt.Printf("  %46s %10s\n", "Subtotal:", yen(inv.Subtotal))
	fmt.Printf("  %46s %10s\n", fmt.Sprintf("Tax (%.0f%%):", inv.TaxRate*100), yen(inv.Tax))
	fmt.Printf("  %46s %10s\n", "Total:", yen(inv.Total))
	if inv.Notes != "" {
		fmt.Println(strings.Repeat("-", 70))
		fmt.Printf("  Notes: %s\n", inv.Notes)
	}
	fmt.Println(strings.Repeat("=", 70))
}

func printInventory(result *app.InventoryListResult) {
	fmt.Println()
	fmt.Println(strings.Repeat("=", 78))
	fmt.Printf("  INVENTORY (%d)\n", len(result.Items))
	fmt.Println(strings.Repeat("=", 78))
	if len(result.Items) == 0 {
		fmt.Println("  No items found.")
		fmt.Println(strings.Repeat("=", 78))
		return
	}
	fmt.Printf("  %-30s %8s %-6s %10s  %s\n", "NAME", "QTY", "UNIT", "PRICE", "ID")
	fmt.Println(strings.Repeat("-", 78))
	for _, item := range result.Items {
		fmt.Printf("  %-30s %8d %-6s %10s  %s\n",
			item.Name, item.Quantity, item.Unit, yen(item.UnitPrice), item.ID)
	}
	fmt.Println(strings.Repeat("=", 78))
}

func printCustomers(result *app.CustomerListResult) {
	fmt.Println()
	fmt.Println(strings.Repeat("=", 50))
	fmt.Printf("  CUSTOMERS (%d)\n", len(result.Customers))
	fmt.Println(strings.Repeat("=", 50))
	if len(result.Customers) == 0 {
		fmt.Println("  No customers registered.")
	}
	for _, name := range result.Customers {
		fmt.Printf("  %s\n", name)
	}
	fmt.Println(strings.Repeat("=", 50))
}

func printSettings(result *app.SettingsResult) {
	s := result.Settings
	fmt.Println()
	fmt.Println(strings.Repeat("=", 62))
	fmt.Printf("  %-58s\n", "SETTINGS")
	fmt.Println(strings.Repeat("=", 62))
	fmt.Printf("  Company        : %s\n", s.CompanyName)
	fmt.Printf("  Representative : %s\n", s.RepresentativeName)
	fmt.Printf("  Postal code    : %s\n", s.PostalCode)
	fmt.Printf("  Address        : %s\n", s.Address)
	fmt.Printf("  Registration   : %s\n", s.RegistrationNumber)
	fmt.Printf("  Tax rate       : %d%%\n", s.TaxRate)
	if len(s.BankAccounts) > 0 {
		fmt.Println(strings.Repeat("-", 62))
		fmt.Println("  BANK ACCOUNTS:")
		for _, acct := range s.BankAccounts {
			fmt.Printf("    %s %s %s %s (%s)  [%s]\n",
				acct.BankName, acct.BranchName, acct.AccountType,
				acct.AccountNumber, acct.AccountHolder, acct.ID)
		}
	}
	fmt.Println(strings.Repeat("=", 62))
}

func printMonthlyReport(result *app.MonthlyReportResult) {
	fmt.Println()
	fmt.Println(strings.Repeat("=", 66))
	fmt.Printf("  %-62s\n", "MONTHLY SALES")
	fmt.Println(strings.Repeat("=", 66))
	if len(result.Groups) == 0 {
		fmt.Println("  No invoices in range.")
		fmt.Println(strings.Repeat("=", 66))
		return
	}
	fmt.Printf("  %-10s %6s %12s %10s %12s\n", "MONTH", "COUNT", "SUBTOTAL", "TAX", "TOTAL")
	fmt.Println(strings.Repeat("-", 66))
	for _, g := range result.Groups {
		fmt.Printf("  %-10s %6d %12s %10s %12s\n",
			g.Month, g.Count, yen(g.Subtotal), yen(g.Tax), yen(g.Total))
	}
	fmt.Println(strings.Repeat("-", 66))
	fmt.Printf("  %-10s %6d %12s %10s %12s\n", "TOTAL",
		result.Summary.Count, yen(result.Summary.Subtotal),
		yen(result.Summary.Tax), yen(result.Summary.Total))
	fmt.Println(strings.Repeat("=", 66))
}

func printCustomerReport(result *app.CustomerReportResult) {
	fmt.Println()
	fmt.Println(strings.Repeat("=", 62))
	fmt.Printf("  %-58s\n", "SALES BY CUSTOMER")
	fmt.Println(strings.Repeat("=", 62))
	if len(result.Groups) == 0 {
		fmt.Println("  No invoices in range.")
		fmt.Println(strings.Repeat("=", 62))
		return
	}
	fmt.Printf("  %-30s %6s %14s\n", "CUSTOMER", "COUNT", "TOTAL")
	fmt.Println(strings.Repeat("-", 62))
	for _, g := range result.Groups {
		fmt.Printf("  %-30s %6d %14s\n", g.CustomerName, g.Count, yen(g.Total))
	}
	fmt.Println(strings.Repeat("=", 62))
}

func printSummary(result *app.SummaryResult) {
	s := result.Summary
	fmt.Println()
	fmt.Printf("  Invoices: %d   Subtotal: %s   Tax: %s   Total: %s\n",
		s.Count, yen(s.Subtotal), yen(s.Tax), yen(s.Total))
}
