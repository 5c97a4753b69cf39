package cloud

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"invoice-system/internal/core"
	"invoice-system/pkg/apperror"
)

// State describes the engine's connection to the remote document.
type State int

const (
	StateDisconnected State = iota
	StateConnecting
	StateListening
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateListening:
		return "listening"
	default:
		return "disconnected"
	}
}

// Status is reported to the UI indicator after every sync attempt.
// Err holds the most recent transient failure and is nil when healthy.
type Status struct {
	State State
	Err   error
}

// Options tunes the engine. Zero values get sensible defaults.
type Options struct {
	// Debounce is the quiet period after the last local mutation before a
	// push fires. Defaults to 1500ms.
	Debounce time.Duration

	// OnApply runs after a remote snapshot has been applied locally, so
	// the UI can re-render from the store.
	OnApply func()

	// OnStatus receives connection state and transient error updates.
	OnStatus func(Status)
}

const defaultDebounce = 1500 * time.Millisecond

// Engine keeps the local store and the remote document converged.
// Local mutations schedule a debounced push; remote changes stream in via
// the subscription and are applied when strictly newer than the local
// watermark. Remote failures are logged and surfaced through OnStatus but
// never abort the engine: local operation continues and the next push
// carries the full current state.
type Engine struct {
	store  *core.Store
	remote Remote
	log    zerolog.Logger
	opts   Options

	mu       sync.Mutex
	state    State
	enabled  bool
	selfMark string
	timer    *time.Timer
	runCtx   context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
}

// NewEngine wires an engine to the store. The store subscription is
// registered immediately but pushes only fire between Start and Stop.
func NewEngine(store *core.Store, remote Remote, log zerolog.Logger, opts Options) *Engine {
	if opts.Debounce <= 0 {
		opts.Debounce = defaultDebounce
	}
	e := &Engine{store: store, remote: remote, log: log, opts: opts}
	store.Subscribe(e.schedulePush)
	return e
}

// Start reconciles with the remote once, then begins listening for remote
// changes. An initial-sync failure is transient and does not prevent the
// subscription; a subscription failure returns an error and leaves the
// engine disconnected.
func (e *Engine) Start(ctx context.Context) error {
	e.mu.Lock()
	if e.enabled {
		e.mu.Unlock()
		return nil
	}
	runCtx, cancel := context.WithCancel(ctx)
	e.enabled = true
	e.state = StateConnecting
	e.runCtx = runCtx
	e.cancel = cancel
	e.mu.Unlock()

	if err := e.initialSync(runCtx); err != nil {
		e.reportError("initial sync failed", err)
	}

	ch, err := e.remote.Subscribe(runCtx)
	if err != nil {
		cancel()
		e.mu.Lock()
		e.enabled = false
		e.state = StateDisconnected
		e.runCtx = nil
		e.cancel = nil
		e.mu.Unlock()
		return apperror.Sync("failed to subscribe to remote changes", err)
	}

	e.mu.Lock()
	e.state = StateListening
	e.mu.Unlock()
	e.reportOK()
	e.log.Info().Msg("sync engine listening for remote changes")

	e.wg.Add(1)
	go e.listen(runCtx, ch)
	return nil
}

// Stop cancels the subscription and disables further pushes. A pending
// debounced push is dropped; call Flush first to force it out.
func (e *Engine) Stop() {
	e.mu.Lock()
	if !e.enabled {
		e.mu.Unlock()
		return
	}
	e.enabled = false
	e.state = StateDisconnected
	if e.timer != nil {
		e.timer.Stop()
		e.timer = nil
	}
	cancel := e.cancel
	e.runCtx = nil
	e.cancel = nil
	e.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	e.wg.Wait()
	e.log.Info().Msg("sync engine stopped")
}

// State returns the current connection state.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Flush pushes immediately, bypassing the debounce window.
func (e *Engine) Flush(ctx context.Context) {
	e.mu.Lock()
	if e.timer != nil {
		e.timer.Stop()
		e.timer = nil
	}
	e.mu.Unlock()
	e.push(ctx)
}

// schedulePush arms (or re-arms) the debounce timer. Rapid successive
// mutations therefore coalesce into one remote write.
func (e *Engine) schedulePush() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.enabled {
		return
	}
	if e.timer != nil {
		e.timer.Stop()
	}
	ctx := e.runCtx
	e.timer = time.AfterFunc(e.opts.Debounce, func() { e.push(ctx) })
}

// push serializes the full current dataset and overwrites the remote
// document. Content is never merged; savedAt ordering decides everything.
func (e *Engine) push(ctx context.Context) {
	e.mu.Lock()
	enabled := e.enabled
	e.mu.Unlock()
	if !enabled || ctx == nil || ctx.Err() != nil {
		return
	}

	env, err := EncodeEnvelope(e.store.Snapshot(), Stamp(time.Now()))
	if err != nil {
		e.reportError("failed to encode sync envelope", err)
		return
	}
	if err := e.remote.Save(ctx, env); err != nil {
		e.reportError("failed to push to remote", err)
		return
	}

	e.mu.Lock()
	e.selfMark = env.SavedAt
	e.mu.Unlock()
	e.store.SetSavedAt(env.SavedAt)
	e.log.Debug().Str("saved_at", env.SavedAt).Msg("pushed snapshot to remote")
	e.reportOK()
}

// initialSync reconciles once at startup: pull if the remote is strictly
// newer, otherwise push local data so a fresh or stale remote catches up.
func (e *Engine) initialSync(ctx context.Context) error {
	env, err := e.remote.Fetch(ctx)
	if err != nil {
		return err
	}
	if env == nil {
		if e.store.HasData() {
			e.push(ctx)
		}
		return nil
	}
	if env.SavedAt > e.store.SavedAt() {
		snap, err := DecodeEnvelope(env)
		if err != nil {
			return err
		}
		e.store.ApplyRemote(snap, env.SavedAt)
		e.log.Info().Str("saved_at", env.SavedAt).Msg("pulled newer remote snapshot")
		if e.opts.OnApply != nil {
			e.opts.OnApply()
		}
		return nil
	}
	if e.store.HasData() {
		e.push(ctx)
	}
	return nil
}

func (e *Engine) listen(ctx context.Context, ch <-chan Envelope) {
	defer e.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case env, ok := <-ch:
			if !ok {
				e.log.Warn().Msg("remote subscription closed")
				e.mu.Lock()
				if e.enabled {
					e.state = StateDisconnected
				}
				e.mu.Unlock()
				e.reportError("remote subscription closed", nil)
				return
			}
			e.handleRemote(&env)
		}
	}
}

// handleRemote applies an inbound document change. Echoes of our own push
// and snapshots not strictly newer than the watermark are ignored, which
// breaks the apply/persist/push feedback loop between devices.
func (e *Engine) handleRemote(env *Envelope) {
	e.mu.Lock()
	selfMark := e.selfMark
	e.mu.Unlock()

	if env.SavedAt != "" && env.SavedAt == selfMark {
		e.log.Debug().Str("saved_at", env.SavedAt).Msg("ignoring echo of own push")
		return
	}
	if env.SavedAt <= e.store.SavedAt() {
		e.log.Debug().Str("saved_at", env.SavedAt).Msg("ignoring stale remote snapshot")
		return
	}

	snap, err := DecodeEnvelope(env)
	if err != nil {
		e.reportError("malformed remote envelope", err)
		return
	}
	e.store.ApplyRemote(snap, env.SavedAt)
	e.log.Info().Str("saved_at", env.SavedAt).Msg("applied remote snapshot")
	if e.opts.OnApply != nil {
		e.opts.OnApply()
	}
	e.reportOK()
}

func (e *Engine) reportError(msg string, err error) {
	e.log.Warn().Err(err).Msg(msg)
	if e.opts.OnStatus != nil {
		e.opts.OnStatus(Status{State: e.State(), Err: apperror.Sync(msg, err)})
	}
}

func (e *Engine) reportOK() {
	if e.opts.OnStatus != nil {
		e.opts.OnStatus(Status{State: e.State()})
	}
}
