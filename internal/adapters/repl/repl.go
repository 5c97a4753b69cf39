// Package repl is the interactive adapter. All display logic lives here;
// the application service stays print-free.
package repl

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"invoice-system/internal/app"
	"invoice-system/internal/core"
)

// Run starts the interactive loop. Slash commands dispatch deterministically;
// bare input is treated as an invoice search.
func Run(ctx context.Context, svc app.ApplicationService, reader *bufio.Reader) {
	fmt.Println("Invoice System")
	fmt.Printf("Sync: %s\n", svc.SyncState())
	fmt.Println("Type /help for commands. Bare text searches invoices.")
	fmt.Println(strings.Repeat("-", 70))

	errExit := fmt.Errorf("exit")

	dispatchSlash := func(input string) error {
		tokens := strings.Fields(strings.TrimPrefix(input, "/"))
		if len(tokens) == 0 {
			return nil
		}
		cmd := strings.ToLower(tokens[0])
		args := tokens[1:]

		switch cmd {
		case "help", "h":
			printHelp()

		case "dashboard", "dash":
			printDashboard(svc.Dashboard())

		case "invoices", "inv":
			printInvoices(svc.ListInvoices())

		case "invoice":
			if len(args) < 1 {
				fmt.Println("Usage: /invoice <id>")
				return nil
			}
			result, err := svc.GetInvoice(args[0])
			if err != nil {
				return err
			}
			printInvoiceDetail(result.Invoice)

		case "new-invoice", "new":
			if len(args) < 1 {
				fmt.Println("Usage: /new-invoice <customer-name>")
				return nil
			}
			handleNewInvoice(reader, svc, strings.Join(args, " "))

		case "delete-invoice":
			if len(args) < 1 {
				fmt.Println("Usage: /delete-invoice <id>")
				return nil
			}
			if err := svc.DeleteInvoice(args[0]); err != nil {
				return err
			}
			fmt.Println("Invoice deleted. Stock is not restored.")

		case "inventory", "items", "stock":
			printInventory(svc.ListInventory())

		case "add-item":
			if len(args) < 3 {
				fmt.Println("Usage: /add-item <name> <quantity> <unit-price> [unit]")
				return nil
			}
			req, err := parseItemArgs(args)
			if err != nil {
				return err
			}
			result, err := svc.AddInventoryItem(req)
			if err != nil {
				return err
			}
			fmt.Printf("Item added: %s (id %s)\n", result.Item.Name, result.Item.ID)

		case "update-item":
			if len(args) < 4 {
				fmt.Println("Usage: /update-item <id> <name> <quantity> <unit-price> [unit]")
				return nil
			}
			req, err := parseItemArgs(args[1:])
			if err != nil {
				return err
			}
			result, err := svc.UpdateInventoryItem(args[0], req)
			if err != nil {
				return err
			}
			fmt.Printf("Item updated: %s\n", result.Item.Name)

		case "delete-item":
			if len(args) < 1 {
				fmt.Println("Usage: /delete-item <id>")
				return nil
			}
			if err := svc.DeleteInventoryItem(args[0]); err != nil {
				return err
			}
			fmt.Println("Item deleted.")

		case "import-csv":
			if len(args) < 1 {
				fmt.Println("Usage: /import-csv <file>")
				return nil
			}
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			result, err := svc.ImportInventoryCSV(f)
			if err != nil {
				return err
			}
			fmt.Printf("Imported %d rows, skipped %d.\n", result.Imported, result.Skipped)

		case "low-stock":
			printInventory(svc.LowStockItems(3))

		case "customers":
			printCustomers(svc.ListCustomers())

		case "add-customer":
			if len(args) < 1 {
				fmt.Println("Usage: /add-customer <name>")
				return nil
			}
			if err := svc.AddCustomer(strings.Join(args, " ")); err != nil {
				return err
			}
			fmt.Println("Customer registered.")

		case "remove-customer":
			if len(args) < 1 {
				fmt.Println("Usage: /remove-customer <name>")
				return nil
			}
			if err := svc.RemoveCustomer(strings.Join(args, " ")); err != nil {
				return err
			}
			fmt.Println("Customer removed.")

		case "settings":
			printSettings(svc.GetSettings())

		case "edit-settings":
			handleEditSettings(reader, svc)

		case "add-bank":
			handleAddBank(reader, svc)

		case "delete-bank":
			if len(args) < 1 {
				fmt.Println("Usage: /delete-bank <id>")
				return nil
			}
			if _, err := svc.DeleteBankAccount(args[0]); err != nil {
				return err
			}
			fmt.Println("Bank account deleted.")

		case "report":
			kind := "monthly"
			rest := args
			if len(rest) > 0 {
				kind = strings.ToLower(rest[0])
				rest = rest[1:]
			}
			filter := parseFilterArgs(rest)
			switch kind {
			case "monthly", "month":
				printMonthlyReport(svc.MonthlyReport(filter))
			case "customers", "customer":
				printCustomerReport(svc.CustomerReport(filter))
			default:
				fmt.Println("Usage: /report monthly|customers [from] [to]")
			}

		case "summary":
			printSummary(svc.SalesSummary(parseFilterArgs(args)))

		case "export-backup":
			if len(args) < 1 {
				fmt.Println("Usage: /export-backup <file>")
				return nil
			}
			data, err := svc.ExportBackup()
			if err != nil {
				return err
			}
			if err := os.WriteFile(args[0], data, 0o644); err != nil {
				return err
			}
			fmt.Printf("Backup written to %s.\n", args[0])

		case "import-backup":
			if len(args) < 1 {
				fmt.Println("Usage: /import-backup <file>")
				return nil
			}
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			if err := svc.ImportBackup(data); err != nil {
				return err
			}
			fmt.Println("Backup restored.")

		case "export-accounting":
			if len(args) < 1 {
				fmt.Println("Usage: /export-accounting <file> [from] [to]")
				return nil
			}
			f, err := os.Create(args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			if err := svc.ExportAccountingCSV(f, parseFilterArgs(args[1:])); err != nil {
				return err
			}
			fmt.Printf("Accounting CSV written to %s.\n", args[0])

		case "sync":
			fmt.Printf("Sync: %s\n", svc.SyncState())

		case "flush":
			svc.FlushSync(ctx)
			fmt.Println("Pushed local changes.")

		case "quit", "exit", "q":
			return errExit

		default:
			fmt.Printf("Unknown command: /%s (try /help)\n", cmd)
		}
		return nil
	}

	for {
		fmt.Print("> ")
		input, err := reader.ReadString('\n')
		if err != nil {
			fmt.Println()
			return
		}
		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}

		if strings.HasPrefix(input, "/") {
			if err := dispatchSlash(input); err != nil {
				if err == errExit {
					return
				}
				fmt.Printf("Error: %v\n", err)
			}
			continue
		}

		printInvoices(svc.SearchInvoices(input))
	}
}

// parseItemArgs parses "<name> <quantity> <unit-price> [unit]" where name may
// contain spaces.
func parseItemArgs(args []string) (app.InventoryItemRequest, error) {
	unit := ""
	qtyIdx := len(args) - 2
	priceIdx := len(args) - 1
	if _, err := strconv.ParseInt(args[priceIdx], 10, 64); err != nil && len(args) >= 4 {
		unit = args[len(args)-1]
		qtyIdx = len(args) - 3
		priceIdx = len(args) - 2
	}
	if qtyIdx < 1 {
		return app.InventoryItemRequest{}, fmt.Errorf("expected <name> <quantity> <unit-price> [unit]")
	}
	qty, errQty := strconv.ParseInt(args[qtyIdx], 10, 64)
	price, errPrice := strconv.ParseInt(args[priceIdx], 10, 64)
	if errQty != nil || errPrice != nil {
		return app.InventoryItemRequest{}, fmt.Errorf("expected <name> <quantity> <unit-price> [unit]")
	}
	return app.InventoryItemRequest{
		Name:      strings.Join(args[:qtyIdx], " "),
		Quantity:  qty,
		UnitPrice: price,
		Unit:      unit,
	}, nil
}

// parseFilterArgs reads optional [from] [to] date bounds.
func parseFilterArgs(args []string) core.Filter {
	var f core.Filter
	if len(args) > 0 {
		f.From = args[0]
	}
	if len(args) > 1 {
		f.To = args[1]
	}
	return f
}

func printHelp() {
	fmt.Println(`Commands:
  /dashboard                      at-a-glance numbers
  /invoices                       list invoices (newest first)
  /invoice <id>                   show one invoice
  /new-invoice <customer>         issue an invoice interactively
  /delete-invoice <id>            delete an invoice
  /inventory                      list catalog items
  /add-item <name> <qty> <price> [unit]
  /update-item <id> <name> <qty> <price> [unit]
  /delete-item <id>               remove an item
  /import-csv <file>              bulk-merge items from CSV
  /low-stock                      items needing restock
  /customers                      list customer names
  /add-customer <name>            register a customer
  /remove-customer <name>         drop a customer
  /settings                       show issuer settings
  /edit-settings                  edit issuer profile interactively
  /add-bank                       add a payee bank account
  /delete-bank <id>               remove a payee bank account
  /report monthly|customers [from] [to]
  /summary [from] [to]            totals for a date range
  /export-backup <file>           write full JSON snapshot
  /import-backup <file>           restore from snapshot
  /export-accounting <file> [from] [to]
  /sync                           show sync state
  /flush                          push pending changes now
  /quit                           exit
Bare text searches invoices by customer, subject or number.`)
}
