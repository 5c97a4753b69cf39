// Package cloud replicates the ledger store to a shared remote document:
// debounced last-writer-wins pushes, a standing change subscription, and a
// one-shot reconciliation on startup.
package cloud

import (
	"encoding/json"
	"fmt"
	"time"

	"invoice-system/internal/core"
)

// EnvelopeVersion tags pushed documents. The decoder accepts any version.
const EnvelopeVersion = 3

// Envelope is the wire format of the remote document. savedAt is the sole
// ordering key; ISO-8601 UTC timestamps compare correctly as plain strings.
//
// Each collection is serialized to an opaque JSON-string blob to sidestep
// the remote store's limits on deeply nested values. Older documents stored
// the collections structurally; the decoder accepts both shapes.
type Envelope struct {
	Version   int             `json:"version"`
	SavedAt   string          `json:"savedAt"`
	Inventory json.RawMessage `json:"inventory,omitempty"`
	Invoices  json.RawMessage `json:"invoices,omitempty"`
	Customers json.RawMessage `json:"customers,omitempty"`
	Settings  json.RawMessage `json:"settings,omitempty"`
}

// savedAtLayout is RFC3339 with fixed millisecond precision in UTC, the
// same shape JavaScript's toISOString produces, so timestamps from old and
// new clients stay mutually comparable.
const savedAtLayout = "2006-01-02T15:04:05.000Z"

// Stamp formats a push timestamp.
func Stamp(t time.Time) string {
	return t.UTC().Format(savedAtLayout)
}

// EncodeEnvelope serializes a snapshot for pushing. The logo image never
// leaves the device: it is stripped before encoding.
func EncodeEnvelope(snap core.Snapshot, savedAt string) (*Envelope, error) {
	snap.Settings.LogoImage = ""

	env := &Envelope{Version: EnvelopeVersion, SavedAt: savedAt}
	var err error
	if env.Inventory, err = encodeBlob(snap.Inventory); err != nil {
		return nil, fmt.Errorf("failed to encode inventory: %w", err)
	}
	if env.Invoices, err = encodeBlob(snap.Invoices); err != nil {
		return nil, fmt.Errorf("failed to encode invoices: %w", err)
	}
	if env.Customers, err = encodeBlob(snap.Customers); err != nil {
		return nil, fmt.Errorf("failed to encode customers: %w", err)
	}
	if env.Settings, err = encodeBlob(snap.Settings); err != nil {
		return nil, fmt.Errorf("failed to encode settings: %w", err)
	}
	return env, nil
}

// DecodeEnvelope recovers a snapshot from a remote document. A missing
// settings blob yields the default settings rather than a zeroed record.
func DecodeEnvelope(env *Envelope) (core.Snapshot, error) {
	var snap core.Snapshot
	if err := decodeBlob(env.Inventory, &snap.Inventory); err != nil {
		return snap, fmt.Errorf("malformed inventory blob: %w", err)
	}
	if err := decodeBlob(env.Invoices, &snap.Invoices); err != nil {
		return snap, fmt.Errorf("malformed invoices blob: %w", err)
	}
	if err := decodeBlob(env.Customers, &snap.Customers); err != nil {
		return snap, fmt.Errorf("malformed customers blob: %w", err)
	}
	if isEmptyBlob(env.Settings) {
		snap.Settings = core.DefaultSettings()
		return snap, nil
	}
	if err := decodeBlob(env.Settings, &snap.Settings); err != nil {
		return snap, fmt.Errorf("malformed settings blob: %w", err)
	}
	return snap, nil
}

func encodeBlob(v any) (json.RawMessage, error) {
	inner, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return json.Marshal(string(inner))
}

// decodeBlob handles both envelope shapes: a JSON string holding encoded
// JSON (current) and a directly structured value (legacy documents).
func decodeBlob(raw json.RawMessage, dst any) error {
	if isEmptyBlob(raw) {
		return nil
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return err
		}
		if s == "" {
			return nil
		}
		return json.Unmarshal([]byte(s), dst)
	}
	return json.Unmarshal(raw, dst)
}

func isEmptyBlob(raw json.RawMessage) bool {
	return len(raw) == 0 || string(raw) == "null"
}
