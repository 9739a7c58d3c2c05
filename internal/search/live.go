package search

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/aanand-mishra/student-directory/internal/aggregate"
	"github.com/aanand-mishra/student-directory/internal/match"
)

var (
	// ErrClosed is returned when submitting to a closed live session or
	// opening one on a closed registry.
	ErrClosed = errors.New("live session closed")

	// ErrTooManySessions is returned by Open when the registry is full.
	ErrTooManySessions = errors.New("too many open live sessions")
)

// Delay is the minimum latency a live session waits before it publishes
// a result.
type Delay struct {
	Min time.Duration
}

// Wait blocks for d.Min or until ctx is done, whichever comes first.
// It returns ctx.Err() when the wait was cut short.
func (d Delay) Wait(ctx context.Context) error {
	if d.Min <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d.Min)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Combiner runs a combined search.
type Combiner interface {
	Combined(c match.Criteria) aggregate.Result
}

// Snapshot is what a live session currently shows.
type Snapshot struct {
	// Seq is the submission the published result belongs to.
	Seq uint64 `json:"seq"`
	// Submitted is the newest submission; Pending is true until it publishes.
	Submitted uint64            `json:"submitted"`
	Pending   bool              `json:"pending"`
	Result    *aggregate.Result `json:"result,omitempty"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// Live is one type-ahead search session.
//
// Every Submit gets the next sequence number and cancels the search still
// waiting out its delay. A finished search publishes only if its sequence
// number is still the newest, so an older search can never overwrite the
// result of a newer one.
type Live struct {
	id    string
	svc   Combiner
	delay Delay

	ctx  context.Context
	stop context.CancelFunc
	wg   sync.WaitGroup

	now func() time.Time

	mu        sync.Mutex
	seq       uint64
	cancel    context.CancelFunc
	published Snapshot
	closed    bool
	used      time.Time
}

func newLive(id string, svc Combiner, delay Delay, now func() time.Time) *Live {
	ctx, stop := context.WithCancel(context.Background())
	return &Live{id: id, svc: svc, delay: delay, ctx: ctx, stop: stop, now: now, used: now()}
}

// ID returns the session id.
func (l *Live) ID() string {
	return l.id
}

// Submit queues a search and returns its sequence number.
// An empty query clears the view at once without waiting.
func (l *Live) Submit(c match.Criteria) (uint64, error) {
	c = c.Normalize()

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return 0, ErrClosed
	}
	l.used = l.now()
	if l.cancel != nil {
		l.cancel()
		l.cancel = nil
	}
	l.seq++
	seq := l.seq

	if c.Empty() {
		res := l.svc.Combined(c)
		l.publish(seq, res)
		return seq, nil
	}

	ctx, cancel := context.WithCancel(l.ctx)
	l.cancel = cancel
	l.wg.Add(1)
	go l.run(ctx, cancel, seq, c)

	return seq, nil
}

func (l *Live) run(ctx context.Context, cancel context.CancelFunc, seq uint64, c match.Criteria) {
	defer l.wg.Done()
	defer cancel()

	if err := l.delay.Wait(ctx); err != nil {
		return
	}

	res := l.svc.Combined(c)

	l.mu.Lock()
	defer l.mu.Unlock()
	if seq != l.seq || l.closed {
		return
	}
	l.publish(seq, res)
}

// publish must be called with l.mu held.
func (l *Live) publish(seq uint64, res aggregate.Result) {
	l.published = Snapshot{Seq: seq, Result: &res, UpdatedAt: time.Now()}
}

// Latest returns the published snapshot.
func (l *Live) Latest() Snapshot {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.used = l.now()
	snap := l.published
	snap.Submitted = l.seq
	snap.Pending = snap.Seq < l.seq
	return snap
}

// idleSince reports when the session was last submitted to or read.
func (l *Live) idleSince() time.Time {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.used
}

// Close cancels any pending search and waits for it to exit.
func (l *Live) Close() {
	l.mu.Lock()
	l.closed = true
	l.stop()
	l.mu.Unlock()

	l.wg.Wait()
}

// Limits bound the registry. A zero MaxOpen leaves the number of open
// sessions uncapped; a zero IdleTTL never evicts.
type Limits struct {
	MaxOpen int
	IdleTTL time.Duration
}

// Registry owns the open live sessions. Sessions left idle for longer than
// IdleTTL are closed by a sweeper goroutine that runs until CloseAll.
type Registry struct {
	svc    Combiner
	delay  Delay
	limits Limits
	now    func() time.Time

	done chan struct{}
	wg   sync.WaitGroup

	mu       sync.Mutex
	sessions map[string]*Live
	closed   bool
}

// NewRegistry returns an empty registry whose sessions search through svc.
// Call CloseAll to stop it.
func NewRegistry(svc Combiner, delay Delay, limits Limits) *Registry {
	return newRegistry(svc, delay, limits, time.Now)
}

func newRegistry(svc Combiner, delay Delay, limits Limits, now func() time.Time) *Registry {
	r := &Registry{
		svc:      svc,
		delay:    delay,
		limits:   limits,
		now:      now,
		done:     make(chan struct{}),
		sessions: make(map[string]*Live),
	}
	if limits.IdleTTL > 0 {
		every := limits.IdleTTL / 2
		if every < time.Millisecond {
			every = time.Millisecond
		}
		r.wg.Add(1)
		go r.sweepEvery(every)
	}
	return r
}

// Open starts a new live session. It fails with ErrTooManySessions when
// MaxOpen sessions are already open, and with ErrClosed after CloseAll.
func (r *Registry) Open() (*Live, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil, ErrClosed
	}
	if r.limits.MaxOpen > 0 && len(r.sessions) >= r.limits.MaxOpen {
		return nil, ErrTooManySessions
	}

	l := newLive(uuid.NewString(), r.svc, r.delay, r.now)
	r.sessions[l.id] = l
	return l, nil
}

// Get returns the open session with id.
func (r *Registry) Get(id string) (*Live, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.sessions[id]
	return l, ok
}

// Close closes and forgets the session with id. It reports whether the
// session existed.
func (r *Registry) Close(id string) bool {
	r.mu.Lock()
	l, ok := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()

	if ok {
		l.Close()
	}
	return ok
}

// Len returns the number of open sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// CloseAll stops the sweeper and closes every session. Used on shutdown.
// Open fails afterwards.
func (r *Registry) CloseAll() {
	r.mu.Lock()
	if !r.closed {
		r.closed = true
		close(r.done)
	}
	open := make([]*Live, 0, len(r.sessions))
	for id, l := range r.sessions {
		open = append(open, l)
		delete(r.sessions, id)
	}
	r.mu.Unlock()

	r.wg.Wait()
	for _, l := range open {
		l.Close()
	}
}

func (r *Registry) sweepEvery(every time.Duration) {
	defer r.wg.Done()

	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-r.done:
			return
		case <-t.C:
			r.sweep()
		}
	}
}

// sweep closes the sessions idle for longer than IdleTTL and returns how
// many it closed.
func (r *Registry) sweep() int {
	cutoff := r.now().Add(-r.limits.IdleTTL)

	r.mu.Lock()
	idle := make([]*Live, 0)
	for id, l := range r.sessions {
		if l.idleSince().Before(cutoff) {
			idle = append(idle, l)
			delete(r.sessions, id)
		}
	}
	r.mu.Unlock()

	for _, l := range idle {
		l.Close()
	}
	return len(idle)
}
