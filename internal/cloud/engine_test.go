package cloud_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"invoice-system/internal/cloud"
	"invoice-system/internal/core"
	"invoice-system/internal/storage"

	"github.com/rs/zerolog"
)

// fakeRemote is an in-memory Remote. Unlike the real backends it does not
// echo its own saves into the subscription channel; tests feed inbound
// envelopes explicitly via deliver.
type fakeRemote struct {
	mu       sync.Mutex
	env      *cloud.Envelope
	saves    int
	failSave bool
	ch       chan cloud.Envelope
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{ch: make(chan cloud.Envelope, 8)}
}

func (r *fakeRemote) Fetch(ctx context.Context) (*cloud.Envelope, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.env == nil {
		return nil, nil
	}
	cp := *r.env
	return &cp, nil
}

func (r *fakeRemote) Save(ctx context.Context, env *cloud.Envelope) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failSave {
		return errors.New("remote unavailable")
	}
	cp := *env
	r.env = &cp
	r.saves++
	return nil
}

func (r *fakeRemote) Subscribe(ctx context.Context) (<-chan cloud.Envelope, error) {
	return r.ch, nil
}

func (r *fakeRemote) Close() error { return nil }

func (r *fakeRemote) saveCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.saves
}

func (r *fakeRemote) setFailSave(fail bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failSave = fail
}

func (r *fakeRemote) deliver(env cloud.Envelope) {
	r.ch <- env
}

func (r *fakeRemote) lastEnvelope() *cloud.Envelope {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.env == nil {
		return nil
	}
	cp := *r.env
	return &cp
}

func newSyncedStore(t *testing.T) *core.Store {
	t.Helper()
	backend, err := storage.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create backend: %v", err)
	}
	return core.NewStore(backend, zerolog.Nop())
}

const testDebounce = 20 * time.Millisecond

// waitFor polls until cond holds or the deadline passes.
func waitFor(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal(msg)
}

func TestEngine_DebouncedPushCoalesces(t *testing.T) {
	store := newSyncedStore(t)
	remote := newFakeRemote()
	engine := cloud.NewEngine(store, remote, zerolog.Nop(), cloud.Options{Debounce: testDebounce})
	if err := engine.Start(context.Background()); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	defer engine.Stop()

	// A burst of mutations inside the debounce window.
	for i := 0; i < 5; i++ {
		store.SetInventory([]core.InventoryItem{{ID: "i1", Name: "Widget", Quantity: int64(i)}})
	}

	waitFor(t, func() bool { return remote.saveCount() >= 1 }, "debounced push never fired")
	time.Sleep(4 * testDebounce)
	if got := remote.saveCount(); got != 1 {
		t.Errorf("burst must coalesce into one push, got %d", got)
	}

	env := remote.lastEnvelope()
	snap, err := cloud.DecodeEnvelope(env)
	if err != nil {
		t.Fatalf("pushed envelope does not decode: %v", err)
	}
	if len(snap.Inventory) != 1 || snap.Inventory[0].Quantity != 4 {
		t.Errorf("push must carry the final state, got %+v", snap.Inventory)
	}
	if store.SavedAt() != env.SavedAt {
		t.Error("watermark must advance to the pushed savedAt")
	}
}

func TestEngine_InitialSyncPullsNewerRemote(t *testing.T) {
	store := newSyncedStore(t)
	remote := newFakeRemote()
	env, err := cloud.EncodeEnvelope(sampleSnapshot(), "2025-01-15T10:00:00.000Z")
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	remote.env = env

	applied := make(chan struct{}, 1)
	engine := cloud.NewEngine(store, remote, zerolog.Nop(), cloud.Options{
		Debounce: testDebounce,
		OnApply:  func() { applied <- struct{}{} },
	})
	if err := engine.Start(context.Background()); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	defer engine.Stop()

	select {
	case <-applied:
	default:
		t.Fatal("OnApply should fire during initial pull")
	}
	if got := store.Inventory(); len(got) != 1 || got[0].Name != "Widget" {
		t.Errorf("remote snapshot not applied: %+v", got)
	}
	if store.SavedAt() != "2025-01-15T10:00:00.000Z" {
		t.Errorf("watermark not advanced: %q", store.SavedAt())
	}

	// Applying the pull must not trigger an echo push.
	time.Sleep(4 * testDebounce)
	if got := remote.saveCount(); got != 0 {
		t.Errorf("initial pull must not push back, got %d saves", got)
	}
}

func TestEngine_InitialSyncBootstrapsEmptyRemote(t *testing.T) {
	store := newSyncedStore(t)
	store.SetInventory([]core.InventoryItem{{ID: "i1", Name: "Widget", Quantity: 5}})

	remote := newFakeRemote()
	engine := cloud.NewEngine(store, remote, zerolog.Nop(), cloud.Options{Debounce: testDebounce})
	if err := engine.Start(context.Background()); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	defer engine.Stop()

	if got := remote.saveCount(); got != 1 {
		t.Fatalf("local data must bootstrap an empty remote, got %d saves", got)
	}
	if store.SavedAt() == "" {
		t.Error("bootstrap push must set the watermark")
	}
}

func TestEngine_InitialSyncPushesWhenLocalNewer(t *testing.T) {
	store := newSyncedStore(t)
	store.SetInventory([]core.InventoryItem{{ID: "i1", Name: "Local", Quantity: 1}})
	store.SetSavedAt("2025-06-01T00:00:00.000Z")

	remote := newFakeRemote()
	stale, err := cloud.EncodeEnvelope(sampleSnapshot(), "2025-01-01T00:00:00.000Z")
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	remote.env = stale

	engine := cloud.NewEngine(store, remote, zerolog.Nop(), cloud.Options{Debounce: testDebounce})
	if err := engine.Start(context.Background()); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	defer engine.Stop()

	if got := store.Inventory(); len(got) != 1 || got[0].Name != "Local" {
		t.Errorf("stale remote must not overwrite local data: %+v", got)
	}
	if got := remote.saveCount(); got != 1 {
		t.Errorf("local-newer must push to recover the remote, got %d saves", got)
	}
}

func TestEngine_AppliesNewerRemoteChange(t *testing.T) {
	store := newSyncedStore(t)
	remote := newFakeRemote()

	applied := make(chan struct{}, 1)
	engine := cloud.NewEngine(store, remote, zerolog.Nop(), cloud.Options{
		Debounce: testDebounce,
		OnApply:  func() { applied <- struct{}{} },
	})
	if err := engine.Start(context.Background()); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	defer engine.Stop()

	env, err := cloud.EncodeEnvelope(sampleSnapshot(), "2025-03-01T00:00:00.000Z")
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	remote.deliver(*env)

	select {
	case <-applied:
	case <-time.After(2 * time.Second):
		t.Fatal("inbound change was not applied")
	}
	if got := store.Customers(); len(got) != 1 || got[0] != "Acme" {
		t.Errorf("remote change not applied: %+v", got)
	}

	// The apply path bypasses listeners, so no push may follow.
	time.Sleep(4 * testDebounce)
	if got := remote.saveCount(); got != 0 {
		t.Errorf("applying a remote change must not echo a push, got %d saves", got)
	}
}

func TestEngine_IgnoresStaleAndSelfEchoes(t *testing.T) {
	store := newSyncedStore(t)
	store.SetInventory([]core.InventoryItem{{ID: "i1", Name: "Local", Quantity: 1}})

	remote := newFakeRemote()
	applied := make(chan struct{}, 4)
	engine := cloud.NewEngine(store, remote, zerolog.Nop(), cloud.Options{
		Debounce: testDebounce,
		OnApply:  func() { applied <- struct{}{} },
	})
	if err := engine.Start(context.Background()); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	defer engine.Stop()

	// Bootstrap push happened; echo it back the way a shared channel would.
	own := remote.lastEnvelope()
	if own == nil {
		t.Fatal("expected a bootstrap push")
	}
	remote.deliver(*own)

	// A snapshot older than the watermark must also be ignored.
	stale, err := cloud.EncodeEnvelope(sampleSnapshot(), "2020-01-01T00:00:00.000Z")
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	remote.deliver(*stale)

	time.Sleep(4 * testDebounce)
	if len(applied) != 0 {
		t.Errorf("echoes and stale snapshots must not apply, got %d applies", len(applied))
	}
	if got := store.Inventory(); len(got) != 1 || got[0].Name != "Local" {
		t.Errorf("local data must be untouched: %+v", got)
	}
}

func TestEngine_RemoteFailureIsNotFatal(t *testing.T) {
	store := newSyncedStore(t)
	store.SetInventory([]core.InventoryItem{{ID: "i1", Name: "Local", Quantity: 1}})

	remote := newFakeRemote()
	remote.setFailSave(true)

	var mu sync.Mutex
	var lastErr error
	engine := cloud.NewEngine(store, remote, zerolog.Nop(), cloud.Options{
		Debounce: testDebounce,
		OnStatus: func(st cloud.Status) {
			mu.Lock()
			if st.Err != nil {
				lastErr = st.Err
			}
			mu.Unlock()
		},
	})
	if err := engine.Start(context.Background()); err != nil {
		t.Fatalf("start must succeed despite push failure: %v", err)
	}
	defer engine.Stop()

	if engine.State() != cloud.StateListening {
		t.Errorf("engine must keep listening after a failed push, state %v", engine.State())
	}
	mu.Lock()
	if lastErr == nil {
		t.Error("failed push must surface through OnStatus")
	}
	mu.Unlock()

	// Once the remote recovers, the next mutation pushes the full state.
	remote.setFailSave(false)
	store.SetInventory([]core.InventoryItem{{ID: "i1", Name: "Local", Quantity: 2}})
	waitFor(t, func() bool { return remote.saveCount() == 1 }, "recovery push never fired")
}

func TestEngine_StopDisablesPushes(t *testing.T) {
	store := newSyncedStore(t)
	remote := newFakeRemote()
	engine := cloud.NewEngine(store, remote, zerolog.Nop(), cloud.Options{Debounce: testDebounce})
	if err := engine.Start(context.Background()); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	engine.Stop()

	if engine.State() != cloud.StateDisconnected {
		t.Errorf("expected disconnected after Stop, got %v", engine.State())
	}
	store.SetInventory([]core.InventoryItem{{ID: "i1", Name: "Widget", Quantity: 1}})
	time.Sleep(4 * testDebounce)
	if got := remote.saveCount(); got != 0 {
		t.Errorf("no push may fire after Stop, got %d", got)
	}
}

func TestEngine_FlushBypassesDebounce(t *testing.T) {
	store := newSyncedStore(t)
	remote := newFakeRemote()
	engine := cloud.NewEngine(store, remote, zerolog.Nop(), cloud.Options{Debounce: time.Hour})
	if err := engine.Start(context.Background()); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	defer engine.Stop()

	store.SetInventory([]core.InventoryItem{{ID: "i1", Name: "Widget", Quantity: 1}})
	if remote.saveCount() != 0 {
		t.Fatal("push should still be pending behind the debounce")
	}
	engine.Flush(context.Background())
	if remote.saveCount() != 1 {
		t.Errorf("flush must push immediately, got %d saves", remote.saveCount())
	}
}

func TestEngine_TwoDevicesConverge(t *testing.T) {
	// Two engines sharing one remote: a push from device A delivered to
	// device B leaves both stores identical.
	storeA := newSyncedStore(t)
	storeB := newSyncedStore(t)
	remote := newFakeRemote()

	engineA := cloud.NewEngine(storeA, remote, zerolog.Nop(), cloud.Options{Debounce: testDebounce})
	if err := engineA.Start(context.Background()); err != nil {
		t.Fatalf("start A failed: %v", err)
	}
	defer engineA.Stop()

	storeA.SetInventory([]core.InventoryItem{{ID: "i1", Name: "Widget", Quantity: 9}})
	waitFor(t, func() bool { return remote.saveCount() >= 1 }, "device A never pushed")

	// Device B comes online later and pulls during initial sync.
	engineB := cloud.NewEngine(storeB, remote, zerolog.Nop(), cloud.Options{Debounce: testDebounce})
	if err := engineB.Start(context.Background()); err != nil {
		t.Fatalf("start B failed: %v", err)
	}
	defer engineB.Stop()

	gotA, gotB := storeA.Inventory(), storeB.Inventory()
	if len(gotB) != 1 || gotB[0] != gotA[0] {
		t.Errorf("devices did not converge: A=%+v B=%+v", gotA, gotB)
	}
	if storeA.SavedAt() != storeB.SavedAt() {
		t.Errorf("watermarks differ: %q vs %q", storeA.SavedAt(), storeB.SavedAt())
	}
}
