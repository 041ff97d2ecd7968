package events

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Common errors returned by the AsyncDispatcher
var (
	ErrQueueFull         = errors.New("event queue is full")
	ErrDispatcherStopped = errors.New("event dispatcher is stopped")
)

// DispatcherConfig holds configuration for the async dispatcher
type DispatcherConfig struct {
	// WorkerCount determines how many goroutines deliver events concurrently.
	// If zero or negative, defaults to 1
	WorkerCount int

	// QueueSize is the buffer size of the in-memory event queue
	QueueSize int

	// DeliveryTimeout bounds a single delivery to the wrapped handler.
	// If zero, defaults to 5 seconds
	DeliveryTimeout time.Duration
}

// DefaultDispatcherConfig returns a DispatcherConfig with reasonable defaults
func DefaultDispatcherConfig() DispatcherConfig {
	return DispatcherConfig{
		WorkerCount:     2,
		QueueSize:       256,
		DeliveryTimeout: 5 * time.Second,
	}
}

// AsyncDispatcher is an EventHandler that queues events and delivers them to
// a wrapped handler from a pool of worker goroutines, so that slow sinks such
// as a message broker stay off the request path.
type AsyncDispatcher struct {
	next   EventHandler
	queue  chan queuedEvent
	config DispatcherConfig
	logger *slog.Logger

	mu      sync.RWMutex
	started bool
	stopped bool
	wg      sync.WaitGroup
}

type queuedEvent struct {
	ctx   context.Context
	event *TaskEvent
}

var _ EventHandler = (*AsyncDispatcher)(nil)

// NewAsyncDispatcher creates a dispatcher delivering to next. Call Start
// before emitting and Stop on shutdown.
func NewAsyncDispatcher(next EventHandler, config DispatcherConfig, logger *slog.Logger) *AsyncDispatcher {
	if next == nil {
		panic("next handler cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.String("component", "event_dispatcher"))

	if config.WorkerCount <= 0 {
		logger.Warn("invalid worker count specified, using default",
			slog.Int("specified_count", config.WorkerCount),
			slog.Int("default_count", 1))
		config.WorkerCount = 1
	}
	if config.QueueSize < 0 {
		config.QueueSize = 0
	}
	if config.DeliveryTimeout <= 0 {
		config.DeliveryTimeout = 5 * time.Second
	}

	return &AsyncDispatcher{
		next:   next,
		queue:  make(chan queuedEvent, config.QueueSize),
		config: config,
		logger: logger,
	}
}

// Start launches the worker goroutines. Calling Start twice is a no-op.
func (d *AsyncDispatcher) Start() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.started || d.stopped {
		return
	}
	d.started = true

	for i := 0; i < d.config.WorkerCount; i++ {
		d.wg.Add(1)
		go d.worker(i)
	}
	d.logger.Debug("event dispatcher started",
		slog.Int("worker_count", d.config.WorkerCount),
		slog.Int("queue_size", d.config.QueueSize))
}

// HandleEvent enqueues the event without waiting for delivery. It returns
// ErrQueueFull when the buffer is exhausted and ErrDispatcherStopped after
// Stop.
func (d *AsyncDispatcher) HandleEvent(ctx context.Context, event *TaskEvent) error {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.stopped {
		return ErrDispatcherStopped
	}

	// Delivery outlives the request; keep its values, drop its cancellation.
	item := queuedEvent{ctx: context.WithoutCancel(ctx), event: event}
	select {
	case d.queue <- item:
		return nil
	default:
		d.logger.Warn("dropping task event, queue is full",
			slog.String("event_id", event.ID.String()),
			slog.String("event_type", string(event.Type)),
			slog.Int("queue_cap", cap(d.queue)))
		return fmt.Errorf("%w: capacity %d reached", ErrQueueFull, cap(d.queue))
	}
}

// Stop rejects new events, lets the workers drain the queue and waits for
// them until ctx is done.
func (d *AsyncDispatcher) Stop(ctx context.Context) error {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return nil
	}
	d.stopped = true
	close(d.queue)
	started := d.started
	d.mu.Unlock()

	if !started {
		if n := len(d.queue); n > 0 {
			d.logger.Warn("event dispatcher stopped before start, discarding events", slog.Int("count", n))
		}
		return nil
	}

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		d.logger.Debug("event dispatcher stopped")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("event dispatcher did not drain: %w", ctx.Err())
	}
}

// worker delivers queued events until the queue is closed and empty
func (d *AsyncDispatcher) worker(id int) {
	defer d.wg.Done()

	for item := range d.queue {
		d.deliver(item, id)
	}
	d.logger.Debug("event queue closed, stopping worker", slog.Int("worker_id", id))
}

func (d *AsyncDispatcher) deliver(item queuedEvent, workerID int) {
	ctx, cancel := context.WithTimeout(item.ctx, d.config.DeliveryTimeout)
	defer cancel()

	if err := d.next.HandleEvent(ctx, item.event); err != nil {
		d.logger.Error("event delivery failed",
			slog.String("error", err.Error()),
			slog.Int("worker_id", workerID),
			slog.String("event_id", item.event.ID.String()),
			slog.String("event_type", string(item.event.Type)),
			slog.Int64("task_id", item.event.TaskID))
	}
}
