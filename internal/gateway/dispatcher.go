package gateway

import (
	"context"
	"encoding/json"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"
)

// Event is a decoded DISPATCH frame handed to handlers.
type Event struct {
	Name string
	Seq  int64
	Data json.RawMessage
}

// Handler processes one event. Handlers run on the dispatcher's worker
// goroutine in arrival order; anything slow should spawn its own work.
type Handler func(ctx context.Context, ev Event)

const (
	dispatchQueueSize = 256
	dedupeTTL         = 5 * time.Minute
)

// Dispatcher routes gateway events to registered handlers. Events are
// queued from the read loop and processed in order on a single worker, so
// a slow handler never stalls the connection's reads or heartbeats. A
// panicking handler is logged and skipped; replayed events (same name and
// sequence within the dedupe window) are dropped before handlers run.
type Dispatcher struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
	catchAll []Handler

	queue  chan Event
	dedupe *dedupeCache
	log    *slog.Logger
}

func NewDispatcher(log *slog.Logger) *Dispatcher {
	if log == nil {
		log = slog.Default()
	}
	return &Dispatcher{
		handlers: make(map[string][]Handler),
		queue:    make(chan Event, dispatchQueueSize),
		dedupe:   newDedupeCache(dedupeTTL),
		log:      log,
	}
}

// On registers a handler for the named event.
func (d *Dispatcher) On(event string, h Handler) {
	d.mu.Lock()
	d.handlers[event] = append(d.handlers[event], h)
	d.mu.Unlock()
}

// OnAny registers a handler called for every event, after the named
// handlers.
func (d *Dispatcher) OnAny(h Handler) {
	d.mu.Lock()
	d.catchAll = append(d.catchAll, h)
	d.mu.Unlock()
}

// Run processes the queue until ctx is cancelled. Call it once, from its
// own goroutine.
func (d *Dispatcher) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-d.queue:
			d.deliver(ctx, ev)
		}
	}
}

// enqueue hands an event from the read loop to the worker. If the queue is
// full the event is dropped with a log line rather than blocking the read
// loop; a blocked reader would stall heartbeat ACK processing.
func (d *Dispatcher) enqueue(ev Event) {
	if d.dedupe.check(ev.Name, ev.Seq) {
		d.log.Debug("gateway: duplicate event dropped", "event", ev.Name, "seq", ev.Seq)
		return
	}
	select {
	case d.queue <- ev:
	default:
		d.log.Warn("gateway: dispatch queue full, dropping event",
			"event", ev.Name, "seq", ev.Seq)
	}
}

func (d *Dispatcher) deliver(ctx context.Context, ev Event) {
	d.mu.RLock()
	named := d.handlers[ev.Name]
	catchAll := d.catchAll
	d.mu.RUnlock()

	for _, h := range named {
		d.invoke(ctx, h, ev)
	}
	for _, h := range catchAll {
		d.invoke(ctx, h, ev)
	}
}

// invoke runs one handler with panic isolation. One broken handler must
// not take down the session or starve the others.
func (d *Dispatcher) invoke(ctx context.Context, h Handler, ev Event) {
	defer func() {
		if r := recover(); r != nil {
			d.log.Error("gateway: handler panic",
				"event", ev.Name, "seq", ev.Seq,
				"panic", r, "stack", string(debug.Stack()))
		}
	}()
	h(ctx, ev)
}
