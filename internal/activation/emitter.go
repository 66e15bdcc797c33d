package activation

import (
	"context"
	"sync"
	"time"

	"github.com/VivekBose50/ClinicalNoteTool/internal/redact"
)

// Sink consumes activation events (file, webhook, etc.).
type Sink interface {
	Name() string
	Deliver(context.Context, *Event) error
	Close(context.Context) error
}

// Stats counts delivery outcomes.
type Stats struct {
	Enqueued    uint64
	Dropped     uint64
	SinkSuccess map[string]uint64
	SinkFailure map[string]uint64
}

// Emitter buffers and delivers activation events to sinks off the request path.
type Emitter struct {
	queue           chan *Event
	sinks           []Sink
	shutdownTimeout time.Duration

	mu      sync.RWMutex
	statsMu sync.Mutex
	stats   Stats
	closed  bool
	wg      sync.WaitGroup
}

// EmitterConfig controls worker and queue sizing.
type EmitterConfig struct {
	QueueSize       int
	Workers         int
	ShutdownTimeout time.Duration
}

// NewEmitter starts background workers to deliver events to the provided sinks.
func NewEmitter(cfg EmitterConfig, sinks []Sink) *Emitter {
	queueSize := cfg.QueueSize
	if queueSize <= 0 {
		queueSize = 1000
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = 1
	}
	shutdownTimeout := cfg.ShutdownTimeout
	if shutdownTimeout <= 0 {
		shutdownTimeout = 2 * time.Second
	}

	em := &Emitter{
		queue:           make(chan *Event, queueSize),
		sinks:           sinks,
		shutdownTimeout: shutdownTimeout,
		stats: Stats{
			SinkSuccess: make(map[string]uint64, len(sinks)),
			SinkFailure: make(map[string]uint64, len(sinks)),
		},
	}

	for i := 0; i < workers; i++ {
		em.wg.Add(1)
		go em.worker()
	}

	return em
}

// Emit attempts to enqueue the event without blocking the request path.
// A full queue drops the event.
func (e *Emitter) Emit(ctx context.Context, ev *Event) {
	if e == nil || ev == nil {
		return
	}

	e.mu.RLock()
	defer e.mu.RUnlock()

	if e.closed {
		e.statsMu.Lock()
		e.stats.Dropped++
		e.statsMu.Unlock()
		return
	}

	select {
	case e.queue <- ev:
		e.statsMu.Lock()
		e.stats.Enqueued++
		e.statsMu.Unlock()
	default:
		e.statsMu.Lock()
		e.stats.Dropped++
		e.statsMu.Unlock()
	}
}

// Close stops accepting new events and waits briefly to drain the queue.
func (e *Emitter) Close(ctx context.Context) {
	if e == nil {
		return
	}
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.closed = true
	close(e.queue)
	e.mu.Unlock()

	done := make(chan struct{})
	go func() {
		e.wg.Wait()
		close(done)
	}()

	waitCtx := ctx
	if waitCtx == nil {
		waitCtx = context.Background()
	}
	var cancel context.CancelFunc
	waitCtx, cancel = context.WithTimeout(waitCtx, e.shutdownTimeout)
	defer cancel()

	select {
	case <-done:
	case <-waitCtx.Done():
	}

	for _, s := range e.sinks {
		if err := s.Close(waitCtx); err != nil {
			redact.Logf("activation: sink %s close error: %v", s.Name(), err)
		}
	}
}

// StatsSnapshot safely copies current counters.
func (e *Emitter) StatsSnapshot() Stats {
	if e == nil {
		return Stats{}
	}
	e.statsMu.Lock()
	defer e.statsMu.Unlock()
	out := Stats{
		Enqueued:    e.stats.Enqueued,
		Dropped:     e.stats.Dropped,
		SinkSuccess: make(map[string]uint64, len(e.stats.SinkSuccess)),
		SinkFailure: make(map[string]uint64, len(e.stats.SinkFailure)),
	}
	for k, v := range e.stats.SinkSuccess {
		out.SinkSuccess[k] = v
	}
	for k, v := range e.stats.SinkFailure {
		out.SinkFailure[k] = v
	}
	return out
}

func (e *Emitter) worker() {
	defer e.wg.Done()
	for ev := range e.queue {
		e.deliver(ev)
	}
}

func (e *Emitter) deliver(ev *Event) {
	for _, s := range e.sinks {
		if err := s.Deliver(context.Background(), ev); err != nil {
			redact.Logf("activation: sink %s failed: %v", s.Name(), err)
			e.statsMu.Lock()
			e.stats.SinkFailure[s.Name()]++
			e.statsMu.Unlock()
			continue
		}
		e.statsMu.Lock()
		e.stats.SinkSuccess[s.Name()]++
		e.statsMu.Unlock()
	}
}
