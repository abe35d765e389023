package events

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Dispatcher fans events out to subscribers on a fixed pool of workers.
// Publish never blocks: when the queue is full the event is dropped.
type Dispatcher struct {
	workerCount int
	queue       chan Event
	handlers    map[Type][]Handler
	mu          sync.RWMutex
	wg          sync.WaitGroup
	ctx         context.Context
	cancel      context.CancelFunc
	closed      bool
	closeMux    sync.Mutex
	logger      *slog.Logger
}

func NewDispatcher(workerCount, queueSize int, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Dispatcher{
		workerCount: workerCount,
		queue:       make(chan Event, queueSize),
		handlers:    make(map[Type][]Handler),
		ctx:         ctx,
		cancel:      cancel,
		logger:      logger,
	}
}

// Subscribe registers h for the given event types. Call before Start.
func (d *Dispatcher) Subscribe(h Handler, types ...Type) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, t := range types {
		d.handlers[t] = append(d.handlers[t], h)
	}
}

// Start launches worker goroutines
func (d *Dispatcher) Start() {
	for i := 0; i < d.workerCount; i++ {
		d.wg.Add(1)
		go d.worker(i)
	}
	d.logger.Info("event_dispatcher_started", "workers", d.workerCount, "queue_size", cap(d.queue))
}

func (d *Dispatcher) Publish(e Event) {
	if e.OccurredAt.IsZero() {
		e.OccurredAt = time.Now().UTC()
	}

	d.closeMux.Lock()
	defer d.closeMux.Unlock()
	if d.closed {
		d.logger.Warn("event_dropped_dispatcher_closed", "type", e.Type, "review_id", e.ReviewID)
		return
	}

	select {
	case d.queue <- e:
	default:
		d.logger.Warn("event_dropped_queue_full",
			"type", e.Type,
			"review_id", e.ReviewID,
			"queue_depth", len(d.queue),
		)
	}
}

// Close stops accepting events and waits for queued ones to drain
func (d *Dispatcher) Close() {
	d.closeMux.Lock()
	if !d.closed {
		close(d.queue)
		d.closed = true
	}
	d.closeMux.Unlock()

	d.wg.Wait()
	d.logger.Info("event_dispatcher_stopped")
}

// Shutdown cancels in-flight handlers, then drains like Close
func (d *Dispatcher) Shutdown() {
	d.cancel()
	d.Close()
}

func (d *Dispatcher) worker(id int) {
	defer d.wg.Done()

	for e := range d.queue {
		d.mu.RLock()
		handlers := d.handlers[e.Type]
		d.mu.RUnlock()

		for _, h := range handlers {
			if err := h(d.ctx, e); err != nil {
				d.logger.Error("event_handler_failed",
					"worker", id,
					"type", e.Type,
					"review_id", e.ReviewID,
					"error", err,
				)
			}
		}
	}
}
