package moderation

import (
	"context"
	"sync"
	"time"
)

// DefaultPollInterval is how often a session re-validates its account
// status when no interval option is given.
const DefaultPollInterval = 30 * time.Second

// PollerState is the client-side enforcement state machine.
type PollerState string

const (
	// PollerStateIdle between ticks, no network call in flight
	PollerStateIdle PollerState = "idle"
	// PollerStateChecking a status fetch is in flight
	PollerStateChecking PollerState = "checking"
	// PollerStateBlocked terminal for the session, credentials cleared
	PollerStateBlocked PollerState = "blocked"
)

// Blocked carries what the blocked view needs to render. SuspensionEnd is
// only set for an unexpired suspension.
type Blocked struct {
	Status        AccountStatus `json:"status"`
	Reason        string        `json:"reason,omitempty"`
	SuspensionEnd *time.Time    `json:"suspension_end,omitempty"`
}

// BlockHandler navigates the session to the blocked view. Invoked at most
// once per poller, after credentials have been cleared.
type BlockHandler interface {
	HandleBlocked(ctx context.Context, blocked Blocked)
}

// BlockHandlerFunc adapts a function to the BlockHandler interface.
type BlockHandlerFunc func(ctx context.Context, blocked Blocked)

func (f BlockHandlerFunc) HandleBlocked(ctx context.Context, blocked Blocked) {
	if f != nil {
		f(ctx, blocked)
	}
}

// PollerOption customizes poller construction.
type PollerOption func(*StatusPoller)

// WithPollInterval sets the tick period.
func WithPollInterval(d time.Duration) PollerOption {
	return func(p *StatusPoller) {
		if d > 0 {
			p.interval = d
		}
	}
}

// WithPollerClock injects a custom clock for expiry resolution.
func WithPollerClock(clock func() time.Time) PollerOption {
	return func(p *StatusPoller) {
		if clock != nil {
			p.now = clock
		}
	}
}

// WithPollerLogger overrides the logger used for failed ticks.
func WithPollerLogger(logger Logger) PollerOption {
	return func(p *StatusPoller) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithPollerActivitySink records a session-blocked audit event when the
// poller forces a logout.
func WithPollerActivitySink(sink ActivitySink) PollerOption {
	return func(p *StatusPoller) {
		p.sink = normalizeActivitySink(sink)
	}
}

// StatusPoller periodically re-validates an authenticated session against
// the principal's effective account status and forces a logout when the
// account is no longer active. One poller per session: app-wide and
// per-dashboard checkers share this instance instead of racing their own
// timers.
//
// Enforcement is fail-open: a tick that cannot reach the server logs the
// error and leaves the session alone. A principal may therefore remain
// logged in for up to one interval after an admin action (bounded
// staleness), and indefinitely while the backend is unreachable.
type StatusPoller struct {
	ref         PrincipalRef
	fetcher     StatusFetcher
	credentials CredentialStore
	handler     BlockHandler

	interval time.Duration
	now      func() time.Time
	logger   Logger
	sink     ActivitySink

	mu     sync.Mutex
	state  PollerState
	cancel context.CancelFunc
	done   chan struct{}
}

// NewStatusPoller wires a poller for one authenticated principal. The
// fetcher is the transport back to the status endpoint, credentials is the
// local session storage to clear, handler is the navigation to the blocked
// view.
func NewStatusPoller(ref PrincipalRef, fetcher StatusFetcher, credentials CredentialStore, handler BlockHandler, opts ...PollerOption) *StatusPoller {
	p := &StatusPoller{
		ref:         ref,
		fetcher:     fetcher,
		credentials: credentials,
		handler:     handler,
		interval:    DefaultPollInterval,
		now:         time.Now,
		logger:      defLogger{},
		sink:        noopActivitySink{},
		state:       PollerStateIdle,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}

	return p
}

// State returns the current enforcement state.
func (p *StatusPoller) State() PollerState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Start launches the tick loop. It returns immediately; the loop runs until
// the context is cancelled, Stop is called, or the session is blocked.
func (p *StatusPoller) Start(ctx context.Context) error {
	p.mu.Lock()
	if p.state == PollerStateBlocked {
		p.mu.Unlock()
		return ErrPollerStopped
	}
	if p.cancel != nil {
		p.mu.Unlock()
		return nil // already running
	}

	ctx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.done = make(chan struct{})
	done := p.done
	p.mu.Unlock()

	go p.run(ctx, done)

	return nil
}

// Stop tears the timer down and waits for the loop to exit. Safe to call
// multiple times and from any goroutine; required on unmount/logout so no
// orphaned tick acts on a stale identity.
func (p *StatusPoller) Stop() {
	p.mu.Lock()
	cancel := p.cancel
	done := p.done
	p.cancel = nil
	p.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
}

func (p *StatusPoller) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if blocked := p.CheckNow(ctx); blocked {
				return
			}
		}
	}
}

// CheckNow performs a single enforcement tick and reports whether the
// session was blocked. Exposed so hosts can validate immediately after
// mount instead of waiting a full interval.
func (p *StatusPoller) CheckNow(ctx context.Context) bool {
	p.mu.Lock()
	if p.state == PollerStateBlocked {
		p.mu.Unlock()
		return true
	}
	p.state = PollerStateChecking
	p.mu.Unlock()

	projection, err := p.fetcher.FetchStatus(ctx, p.ref)
	if err != nil {
		// fail-open: never force a logout because the check itself failed
		p.logger.Error("status poll failed for %s: %v", p.ref, err)
		p.setState(PollerStateIdle)
		return false
	}

	effective := projection.Resolve(p.now())
	if effective == StatusActive {
		p.setState(PollerStateIdle)
		return false
	}

	blocked := Blocked{
		Status: effective,
		Reason: projection.Reason(),
	}
	if effective == StatusSuspended {
		blocked.SuspensionEnd = projection.SuspensionEnd
	}

	if p.credentials != nil {
		if err := p.credentials.Clear(ctx); err != nil {
			p.logger.Error("clearing session credentials for %s: %v", p.ref, err)
		}
	}

	if p.handler != nil {
		p.handler.HandleBlocked(ctx, blocked)
	}

	p.setState(PollerStateBlocked)

	if err := p.sink.Record(ctx, ActivityEvent{
		EventType: ActivityEventSessionBlocked,
		Principal: p.ref,
		ToStatus:  effective,
		Metadata: map[string]any{
			"reason": blocked.Reason,
		},
		OccurredAt: p.now(),
	}); err != nil {
		p.logger.Error("session blocked activity sink error: %v", err)
	}

	return true
}

func (p *StatusPoller) setState(s PollerState) {
	p.mu.Lock()
	p.state = s
	p.mu.Unlock()
}
