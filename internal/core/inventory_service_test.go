package core_test

import (
	"strings"
	"testing"

	"invoice-system/internal/core"
	"invoice-system/pkg/apperror"

	"github.com/rs/zerolog"
)

func newInventoryService(t *testing.T) (core.InventoryService, *core.Store) {
	t.Helper()
	store := newTestStore(t)
	return core.NewInventoryService(store, zerolog.Nop()), store
}

func TestInventory_AddUpdateDelete(t *testing.T) {
	svc, _ := newInventoryService(t)

	item, err := svc.Add(core.InventoryItemInput{Name: "Widget", Quantity: 5, Unit: "pcs", UnitPrice: 1200})
	if err != nil {
		t.Fatalf("add failed: %v", err)
	}
	if item.ID == "" {
		t.Error("added item must get an ID")
	}

	updated, err := svc.Update(item.ID, core.InventoryItemInput{Name: "Widget Pro", Quantity: 7, UnitPrice: 1500})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if updated.Name != "Widget Pro" || updated.Quantity != 7 || updated.UnitPrice != 1500 {
		t.Errorf("update not applied: %+v", updated)
	}

	if err := svc.Delete(item.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if len(svc.List()) != 0 {
		t.Error("expected empty catalog after delete")
	}
}

func TestInventory_BlankNameRejected(t *testing.T) {
	svc, _ := newInventoryService(t)
	if _, err := svc.Add(core.InventoryItemInput{Name: "   "}); !apperror.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestInventory_UpdateUnknownID(t *testing.T) {
	svc, _ := newInventoryService(t)
	if _, err := svc.Update("missing", core.InventoryItemInput{Name: "X"}); !apperror.IsKind(err, apperror.KindNotFound) {
		t.Fatalf("expected not-found error, got %v", err)
	}
}

func TestInventory_Search(t *testing.T) {
	svc, _ := newInventoryService(t)
	svc.Add(core.InventoryItemInput{Name: "Blue Widget"})
	svc.Add(core.InventoryItemInput{Name: "Red Gadget"})

	if got := svc.Search("widget"); len(got) != 1 || got[0].Name != "Blue Widget" {
		t.Errorf("case-insensitive search failed: %+v", got)
	}
	if got := svc.Search(""); len(got) != 2 {
		t.Errorf("empty query should return all, got %d", len(got))
	}
}

func TestInventory_LowStock(t *testing.T) {
	svc, _ := newInventoryService(t)
	svc.Add(core.InventoryItemInput{Name: "Plenty", Quantity: 10})
	svc.Add(core.InventoryItemInput{Name: "Low", Quantity: 3})
	svc.Add(core.InventoryItemInput{Name: "Out", Quantity: 0})

	low := svc.LowStock(3)
	if len(low) != 2 {
		t.Fatalf("expected 2 low-stock items, got %d", len(low))
	}
}

func TestImportCSV_MergesByExactName(t *testing.T) {
	svc, store := newInventoryService(t)
	store.SetInventory([]core.InventoryItem{
		{ID: "i1", Name: "Widget", Quantity: 3, Unit: "pcs", UnitPrice: 500},
	})

	csv := "Widget,2,600\nGadget,4,250,box\n"
	result, err := svc.ImportCSV(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("import failed: %v", err)
	}
	if result.Imported != 2 || result.Skipped != 0 {
		t.Errorf("expected 2 imported / 0 skipped, got %d/%d", result.Imported, result.Skipped)
	}

	items := store.Inventory()
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	widget := items[0]
	if widget.Quantity != 5 {
		t.Errorf("quantities must sum on merge: got %d, want 5", widget.Quantity)
	}
	if widget.UnitPrice != 600 {
		t.Errorf("positive imported price must overwrite: got %d", widget.UnitPrice)
	}
	gadget := items[1]
	if gadget.Name != "Gadget" || gadget.Quantity != 4 || gadget.Unit != "box" {
		t.Errorf("new item not appended correctly: %+v", gadget)
	}
}

func TestImportCSV_ZeroPriceDoesNotOverwrite(t *testing.T) {
	svc, store := newInventoryService(t)
	store.SetInventory([]core.InventoryItem{
		{ID: "i1", Name: "Widget", Quantity: 1, UnitPrice: 500},
	})

	if _, err := svc.ImportCSV(strings.NewReader("Widget,1,0\n")); err != nil {
		t.Fatalf("import failed: %v", err)
	}
	if got := store.Inventory()[0].UnitPrice; got != 500 {
		t.Errorf("zero price must not overwrite, got %d", got)
	}
}

func TestImportCSV_HeaderRowSkipped(t *testing.T) {
	svc, store := newInventoryService(t)

	tests := []string{
		"商品名,数量,単価\nWidget,1,100\n",
		"Name,Qty,Price\nWidget,1,100\n",
		"名前,数,値段\nWidget,1,100\n",
	}
	for _, csv := range tests {
		store.SetInventory(nil)
		result, err := svc.ImportCSV(strings.NewReader(csv))
		if err != nil {
			t.Fatalf("import failed: %v", err)
		}
		if result.Imported != 1 {
			t.Errorf("header not skipped for %q: imported %d", csv[:10], result.Imported)
		}
		if len(store.Inventory()) != 1 {
			t.Errorf("expected 1 item after import, got %d", len(store.Inventory()))
		}
	}
}

func TestImportCSV_FirstRowWithoutHeaderIsData(t *testing.T) {
	svc, store := newInventoryService(t)

	result, err := svc.ImportCSV(strings.NewReader("Widget,1,100\n"))
	if err != nil {
		t.Fatalf("import failed: %v", err)
	}
	if result.Imported != 1 || len(store.Inventory()) != 1 {
		t.Errorf("data first row must import: %+v", result)
	}
}

func TestImportCSV_MalformedRowsSkipped(t *testing.T) {
	svc, store := newInventoryService(t)

	csv := "Widget,1,100\nonly-two,5\n,3,200\nGadget,2,abc\n"
	result, err := svc.ImportCSV(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("import failed: %v", err)
	}
	// only-two: fewer than 3 columns. Blank name: skipped. "abc" price: row
	// imports with price zero rather than failing.
	if result.Imported != 2 || result.Skipped != 2 {
		t.Errorf("expected 2 imported / 2 skipped, got %d/%d", result.Imported, result.Skipped)
	}
	items := store.Inventory()
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if items[1].Name != "Gadget" || items[1].UnitPrice != 0 {
		t.Errorf("lenient numeric parse should yield zero price: %+v", items[1])
	}
}
