// Package cli is the one-shot command adapter: each invocation performs one
// operation and exits. Display logic lives here, not in the service.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"

	"invoice-system/internal/app"
	"invoice-system/internal/core"
)

// Run executes a one-shot CLI command and exits.
// args is os.Args[1:], the first element is the subcommand name.
func Run(ctx context.Context, svc app.ApplicationService, args []string) {
	switch args[0] {
	case "dashboard", "dash":
		result := svc.Dashboard()
		fmt.Printf("Invoices: %d  Items: %d  Customers: %d\n",
			result.InvoiceCount, result.InventoryCount, result.CustomerCount)
		fmt.Printf("This month (%s): %d invoices, %d yen\n",
			result.Month, result.MonthCount, result.MonthRevenue)
		for _, item := range result.LowStock {
			fmt.Printf("LOW STOCK: %s (%d %s)\n", item.Name, item.Quantity, item.Unit)
		}

	case "invoices", "inv":
		printInvoiceTable(svc.ListInvoices().Invoices)

	case "search":
		if len(args) < 2 {
			log.Fatal("Usage: app search <query>")
		}
		printInvoiceTable(svc.SearchInvoices(strings.Join(args[1:], " ")).Invoices)

	case "invoice":
		if len(args) < 2 {
			log.Fatal("Usage: app invoice <id>")
		}
		result, err := svc.GetInvoice(args[1])
		if err != nil {
			log.Fatalf("Failed to load invoice: %v", err)
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		enc.Encode(result.Invoice)

	case "issue":
		// Reads an IssueInvoiceRequest as JSON from stdin, prints the
		// issued invoice as JSON. Scriptable counterpart of /new-invoice.
		var req app.IssueInvoiceRequest
		if err := json.NewDecoder(os.Stdin).Decode(&req); err != nil {
			log.Fatalf("Invalid JSON: %v", err)
		}
		result, err := svc.IssueInvoice(req)
		if err != nil {
			log.Fatalf("Failed to issue invoice: %v", err)
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		enc.Encode(result.Invoice)

	case "inventory", "items", "stock":
		printItemTable(svc.ListInventory().Items)

	case "low-stock":
		printItemTable(svc.LowStockItems(3).Items)

	case "import-csv":
		if len(args) < 2 {
			log.Fatal("Usage: app import-csv <file>")
		}
		f, err := os.Open(args[1])
		if err != nil {
			log.Fatalf("Failed to open %s: %v", args[1], err)
		}
		defer f.Close()
		result, err := svc.ImportInventoryCSV(f)
		if err != nil {
			log.Fatalf("Import failed: %v", err)
		}
		fmt.Printf("Imported %d rows, skipped %d.\n", result.Imported, result.Skipped)

	case "report":
		kind := "monthly"
		rest := args[1:]
		if len(rest) > 0 {
			kind = rest[0]
			rest = rest[1:]
		}
		filter := filterFrom(rest)
		switch kind {
		case "monthly", "month":
			for _, g := range svc.MonthlyReport(filter).Groups {
				fmt.Printf("%s  %4d invoices  subtotal %12d  tax %10d  total %12d\n",
					g.Month, g.Count, g.Subtotal, g.Tax, g.Total)
			}
		case "customers", "customer":
			for _, g := range svc.CustomerReport(filter).Groups {
				fmt.Printf("%-30s  %4d invoices  total %12d\n", g.CustomerName, g.Count, g.Total)
			}
		default:
			log.Fatalf("Unknown report: %s (monthly, customers)", kind)
		}

	case "summary":
		s := svc.SalesSummary(filterFrom(args[1:])).Summary
		fmt.Printf("Invoices: %d  Subtotal: %d  Tax: %d  Total: %d\n",
			s.Count, s.Subtotal, s.Tax, s.Total)

	case "export-backup":
		data, err := svc.ExportBackup()
		if err != nil {
			log.Fatalf("Export failed: %v", err)
		}
		os.Stdout.Write(data)
		fmt.Println()

	case "import-backup":
		if len(args) < 2 {
			log.Fatal("Usage: app import-backup <file>")
		}
		data, err := os.ReadFile(args[1])
		if err != nil {
			log.Fatalf("Failed to read %s: %v", args[1], err)
		}
		if err := svc.ImportBackup(data); err != nil {
			log.Fatalf("Import failed: %v", err)
		}
		svc.FlushSync(ctx)
		fmt.Println("Backup restored.")

	case "export-accounting":
		if err := svc.ExportAccountingCSV(os.Stdout, filterFrom(args[1:])); err != nil {
			log.Fatalf("Export failed: %v", err)
		}

	case "sync":
		fmt.Println("Sync:", svc.SyncState())

	default:
		log.Fatalf("Unknown command: %s\nAvailable: dashboard, invoices, invoice, search, issue, "+
			"inventory, low-stock, import-csv, report, summary, export-backup, import-backup, "+
			"export-accounting, sync", args[0])
	}
}

func printInvoiceTable(invoices []core.Invoice) {
	for _, inv := range invoices {
		fmt.Printf("%-14s %-12s %-24s %12d  %s\n",
			inv.InvoiceNumber, inv.InvoiceDate, inv.CustomerName, inv.Total, inv.ID)
	}
}

func printItemTable(items []core.InventoryItem) {
	for _, item := range items {
		fmt.Printf("%-30s %8d %-6s %10d  %s\n",
			item.Name, item.Quantity, item.Unit, item.UnitPrice, item.ID)
	}
}

func filterFrom(args []string) core.Filter {
	var f core.Filter
	if len(args) > 0 {
		f.From = args[0]
	}
	if len(args) > 1 {
		f.To = args[1]
	}
	return f
}
