package core

import (
	"encoding/csv"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"invoice-system/pkg/apperror"
)

// InventoryItemInput carries the editable fields of an inventory item.
type InventoryItemInput struct {
	Name      string
	Quantity  int64
	Unit      string
	UnitPrice int64
}

// ImportResult summarizes a bulk CSV import. Imported counts rows applied
// (merged or appended); Skipped counts malformed or unusable rows.
type ImportResult struct {
	Imported int
	Skipped  int
}

// InventoryService manages the sellable item catalog and stock counts.
type InventoryService interface {
	List() []InventoryItem
	Search(query string) []InventoryItem
	Add(input InventoryItemInput) (*InventoryItem, error)
	Update(id string, input InventoryItemInput) (*InventoryItem, error)
	Delete(id string) error

	// LowStock returns items at or below the threshold, for restock alerts.
	LowStock(threshold int64) []InventoryItem

	// ImportCSV reads rows of name, quantity, unitPrice, unit? and merges
	// them into the catalog. A heading row is auto-detected and skipped.
	// Existing items are matched by exact name: quantities are summed, the
	// price is overwritten only when the imported price is positive, the
	// unit only when non-empty. Malformed rows are skipped, not fatal.
	ImportCSV(r io.Reader) (*ImportResult, error)
}

type inventoryService struct {
	store *Store
	log   zerolog.Logger
}

func NewInventoryService(store *Store, log zerolog.Logger) InventoryService {
	return &inventoryService{store: store, log: log}
}

func (s *inventoryService) List() []InventoryItem {
	return s.store.Inventory()
}

func (s *inventoryService) Search(query string) []InventoryItem {
	if strings.TrimSpace(query) == "" {
		return s.List()
	}
	q := strings.ToLower(query)
	var matched []InventoryItem
	for _, item := range s.store.Inventory() {
		if strings.Contains(strings.ToLower(item.Name), q) {
			matched = append(matched, item)
		}
	}
	return matched
}

func (s *inventoryService) Add(input InventoryItemInput) (*InventoryItem, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperror.Validation("item name is required")
	}

	item := InventoryItem{
		ID:        NewID(),
		Name:      name,
		Quantity:  input.Quantity,
		Unit:      strings.TrimSpace(input.Unit),
		UnitPrice: input.UnitPrice,
	}
	s.store.SetInventory(append(s.store.Inventory(), item))
	return &item, nil
}

func (s *inventoryService) Update(id string, input InventoryItemInput) (*InventoryItem, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperror.Validation("item name is required")
	}

	inventory := s.store.Inventory()
	for i := range inventory {
		if inventory[i].ID != id {
			continue
		}
		inventory[i].Name = name
		inventory[i].Quantity = input.Quantity
		inventory[i].Unit = strings.TrimSpace(input.Unit)
		inventory[i].UnitPrice = input.UnitPrice
		s.store.SetInventory(inventory)
		updated := inventory[i]
		return &updated, nil
	}
	return nil, apperror.NotFound("inventory item " + id)
}

func (s *inventoryService) Delete(id string) error {
	inventory := s.store.Inventory()
	kept := inventory[:0:0]
	for _, item := range inventory {
		if item.ID != id {
			kept = append(kept, item)
		}
	}
	if len(kept) == len(inventory) {
		return apperror.NotFound("inventory item " + id)
	}
	s.store.SetInventory(kept)
	return nil
}

func (s *inventoryService) LowStock(threshold int64) []InventoryItem {
	var low []InventoryItem
	for _, item := range s.store.Inventory() {
		if item.Quantity <= threshold {
			low = append(low, item)
		}
	}
	return low
}

// headerPattern matches the common first-column labels of a heading row.
var headerPattern = regexp.MustCompile(`(?i)^(商品名|名前|name|品名)`)

func (s *inventoryService) ImportCSV(r io.Reader) (*ImportResult, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	inventory := s.store.Inventory()
	result := &ImportResult{}
	first := true

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// Malformed row: skip it, keep importing.
			result.Skipped++
			first = false
			continue
		}
		if first {
			first = false
			if len(record) > 0 && headerPattern.MatchString(strings.TrimSpace(record[0])) {
				continue
			}
		}
		if len(record) < 3 {
			result.Skipped++
			continue
		}

		name := strings.TrimSpace(record[0])
		if name == "" {
			result.Skipped++
			continue
		}
		quantity := parseIntField(record[1])
		unitPrice := parseIntField(record[2])
		unit := ""
		if len(record) > 3 {
			unit = strings.TrimSpace(record[3])
		}

		merged := false
		for i := range inventory {
			if inventory[i].Name != name {
				continue
			}
			inventory[i].Quantity += quantity
			if unitPrice > 0 {
				inventory[i].UnitPrice = unitPrice
			}
			if unit != "" {
				inventory[i].Unit = unit
			}
			merged = true
			break
		}
		if !merged {
			inventory = append(inventory, InventoryItem{
				ID:        NewID(),
				Name:      name,
				Quantity:  quantity,
				Unit:      unit,
				UnitPrice: unitPrice,
			})
		}
		result.Imported++
	}

	s.store.SetInventory(inventory)
	s.log.Info().Int("imported", result.Imported).Int("skipped", result.Skipped).Msg("inventory CSV import finished")
	return result, nil
}

// parseIntField mirrors lenient numeric parsing: unparsable values count as
// zero rather than failing the row.
func parseIntField(field string) int64 {
	n, err := strconv.ParseInt(strings.TrimSpace(field), 10, 64)
	if err != nil {
		return 0
	}
	return n
}
