package core

import (
	"encoding/json"
	"sync"

	"github.com/rs/zerolog"

	"invoice-system/internal/storage"
)

// Local storage keys, byte-compatible with earlier releases.
const (
	keyInventory = "invoice_sys_inventory"
	keyInvoices  = "invoice_sys_invoices"
	keyCustomers = "invoice_sys_customers"
	keySettings  = "invoice_sys_settings"
	keySavedAt   = "invoice_sys_savedAt"
)

// Store owns the four persisted collections plus the sync watermark. All
// access in the process goes through it; the sync engine never holds its own
// copy across calls.
//
// Every setter fires the registered change listeners, which is how the sync
// engine schedules its debounced push. Writes arriving from the remote go
// through ApplyRemote instead, which fires no listeners; that is the
// re-entrancy guard keeping an inbound application from triggering an
// outbound echo push.
//
// A failed local write is logged as a warning and does not fail the caller:
// the in-memory state stays authoritative and a later write retries the file.
type Store struct {
	mu        sync.Mutex
	backend   storage.Backend
	log       zerolog.Logger
	listeners []func()

	inventory []InventoryItem
	invoices  []Invoice
	customers []string
	settings  *Settings // nil until first written; reads fall back to defaults
	savedAt   string
}

// NewStore loads all collections from the backend. A missing key yields the
// documented default; an unreadable document is logged and treated as unset
// rather than aborting startup.
func NewStore(backend storage.Backend, log zerolog.Logger) *Store {
	s := &Store{backend: backend, log: log}
	loadJSON(s, keyInventory, &s.inventory)
	loadJSON(s, keyInvoices, &s.invoices)
	loadJSON(s, keyCustomers, &s.customers)

	var settings Settings
	if loadJSON(s, keySettings, &settings) {
		s.settings = &settings
	}
	if data, ok, err := backend.Load(keySavedAt); err == nil && ok {
		s.savedAt = string(data)
	}
	return s
}

func loadJSON[T any](s *Store, key string, dst *T) bool {
	data, ok, err := s.backend.Load(key)
	if err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("failed to load collection")
		return false
	}
	if !ok {
		return false
	}
	if err := json.Unmarshal(data, dst); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("ignoring corrupt collection document")
		return false
	}
	return true
}

// Subscribe registers a listener invoked after every local mutation.
func (s *Store) Subscribe(fn func()) {
	s.mu.Lock()
	s.listeners = append(s.listeners, fn)
	s.mu.Unlock()
}

// ── Collection accessors ──────────────────────────────────────────────────────

func (s *Store) Inventory() []InventoryItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]InventoryItem(nil), s.inventory...)
}

func (s *Store) SetInventory(items []InventoryItem) {
	s.mu.Lock()
	s.inventory = append([]InventoryItem(nil), items...)
	s.persist(keyInventory, s.inventory)
	fns := s.snapshotListeners()
	s.mu.Unlock()
	notify(fns)
}

func (s *Store) Invoices() []Invoice {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Invoice(nil), s.invoices...)
}

func (s *Store) SetInvoices(invoices []Invoice) {
	s.mu.Lock()
	s.invoices = append([]Invoice(nil), invoices...)
	s.persist(keyInvoices, s.invoices)
	fns := s.snapshotListeners()
	s.mu.Unlock()
	notify(fns)
}

func (s *Store) Customers() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.customers...)
}

func (s *Store) SetCustomers(customers []string) {
	s.mu.Lock()
	s.customers = append([]string(nil), customers...)
	s.persist(keyCustomers, s.customers)
	fns := s.snapshotListeners()
	s.mu.Unlock()
	notify(fns)
}

// Settings returns the singleton settings record, or the defaults when none
// were ever saved.
func (s *Store) Settings() Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settingsLocked()
}

func (s *Store) settingsLocked() Settings {
	if s.settings == nil {
		return DefaultSettings()
	}
	cp := *s.settings
	cp.BankAccounts = append([]BankAccount(nil), s.settings.BankAccounts...)
	return cp
}

func (s *Store) SetSettings(settings Settings) {
	s.mu.Lock()
	cp := settings
	cp.BankAccounts = append([]BankAccount(nil), settings.BankAccounts...)
	s.settings = &cp
	s.persist(keySettings, s.settings)
	fns := s.snapshotListeners()
	s.mu.Unlock()
	notify(fns)
}

// ── Sync support ──────────────────────────────────────────────────────────────

// SavedAt returns the local watermark: the savedAt of the last envelope this
// device pushed or applied. Empty before the first sync.
func (s *Store) SavedAt() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.savedAt
}

// SetSavedAt advances the watermark. Not a mutation of the ledger itself, so
// it fires no change listeners.
func (s *Store) SetSavedAt(savedAt string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.savedAt = savedAt
	if err := s.backend.Save(keySavedAt, []byte(savedAt)); err != nil {
		s.log.Warn().Err(err).Msg("failed to persist sync watermark")
	}
}

// Snapshot returns a copy of all four collections.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		Inventory: append([]InventoryItem(nil), s.inventory...),
		Invoices:  append([]Invoice(nil), s.invoices...),
		Customers: append([]string(nil), s.customers...),
		Settings:  s.settingsLocked(),
	}
}

// HasData reports whether the device holds any inventory or invoices,
// used to decide whether a first-time push should bootstrap the remote.
func (s *Store) HasData() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.inventory) > 0 || len(s.invoices) > 0
}

// ApplyRemote overwrites all collections with a remote snapshot and advances
// the watermark. The locally-held logo survives the overwrite because it is
// never part of the remote envelope. No change listeners fire.
func (s *Store) ApplyRemote(snap Snapshot, savedAt string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.settings != nil && s.settings.LogoImage != "" {
		snap.Settings.LogoImage = s.settings.LogoImage
	}

	s.inventory = append([]InventoryItem(nil), snap.Inventory...)
	s.invoices = append([]Invoice(nil), snap.Invoices...)
	s.customers = append([]string(nil), snap.Customers...)
	settings := snap.Settings
	s.settings = &settings
	s.savedAt = savedAt

	s.persist(keyInventory, s.inventory)
	s.persist(keyInvoices, s.invoices)
	s.persist(keyCustomers, s.customers)
	s.persist(keySettings, s.settings)
	if err := s.backend.Save(keySavedAt, []byte(savedAt)); err != nil {
		s.log.Warn().Err(err).Msg("failed to persist sync watermark")
	}
}

// ── internals ─────────────────────────────────────────────────────────────────

func (s *Store) persist(key string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("failed to encode collection")
		return
	}
	if err := s.backend.Save(key, data); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("failed to persist collection; in-memory state is ahead of disk")
	}
}

func (s *Store) snapshotListeners() []func() {
	return append(([]func())(nil), s.listeners...)
}

func notify(fns []func()) {
	for _, fn := range fns {
		fn()
	}
}
