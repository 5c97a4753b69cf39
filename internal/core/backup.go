package core

import (
	"encoding/json"
	"time"

	"invoice-system/pkg/apperror"
)

// backupVersion tags exported snapshots. The importer accepts any version
// whose required sections are present.
const backupVersion = 2

// Backup is the full-dataset snapshot used by file save/load and
// backup/restore. Unlike the sync envelope, collections are stored in
// directly readable form, not string-encoded.
type Backup struct {
	Version    int             `json:"version"`
	ExportedAt string          `json:"exportedAt"`
	Inventory  []InventoryItem `json:"inventory"`
	Invoices   []Invoice       `json:"invoices"`
	Customers  []string        `json:"customers"`
	Settings   *Settings       `json:"settings"`
}

// ExportBackup captures the current dataset.
func ExportBackup(store *Store) Backup {
	snap := store.Snapshot()
	settings := snap.Settings
	return Backup{
		Version:    backupVersion,
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
		Inventory:  snap.Inventory,
		Invoices:   snap.Invoices,
		Customers:  snap.Customers,
		Settings:   &settings,
	}
}

// ExportBackupJSON renders the backup as indented JSON.
func ExportBackupJSON(store *Store) ([]byte, error) {
	return json.MarshalIndent(ExportBackup(store), "", "  ")
}

// ImportBackup replaces the dataset with a previously exported snapshot.
// Inventory, invoices and settings sections must be present or the import
// is rejected with zero collections mutated; customers are optional.
// Writes go through the normal setters, so a restore replicates to the
// remote like any other edit.
func ImportBackup(store *Store, data []byte) error {
	var raw struct {
		Version   int              `json:"version"`
		Inventory *json.RawMessage `json:"inventory"`
		Invoices  *json.RawMessage `json:"invoices"`
		Customers []string         `json:"customers"`
		Settings  *Settings        `json:"settings"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return apperror.Import("backup file is not valid JSON")
	}
	if raw.Inventory == nil || raw.Invoices == nil || raw.Settings == nil {
		return apperror.Import("backup file is missing inventory, invoices or settings")
	}

	var inventory []InventoryItem
	if err := json.Unmarshal(*raw.Inventory, &inventory); err != nil {
		return apperror.Import("backup inventory section is malformed")
	}
	var invoices []Invoice
	if err := json.Unmarshal(*raw.Invoices, &invoices); err != nil {
		return apperror.Import("backup invoices section is malformed")
	}

	store.SetInventory(inventory)
	store.SetInvoices(invoices)
	store.SetSettings(*raw.Settings)
	if raw.Customers != nil {
		store.SetCustomers(raw.Customers)
	}
	return nil
}
