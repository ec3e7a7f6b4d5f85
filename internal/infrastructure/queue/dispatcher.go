package queue

import (
	"context"
	"hash/fnv"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/bluecarbon/registry/internal/api/metrics"
	"github.com/bluecarbon/registry/internal/core/domain"
	"github.com/bluecarbon/registry/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
	recordTimeout  = 5 * time.Second
)

// Dispatcher routes auth audit events to a fixed set of workers using
// consistent hashing on the email, so events for one account are recorded in
// the order they happened. It implements ports.AuditSink.
type Dispatcher struct {
	workers []chan domain.AuthEvent
	service ports.AuditService
	log     zerolog.Logger

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, service ports.AuditService, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan domain.AuthEvent, numWorkers),
		service: service,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan domain.AuthEvent, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers exit once Close has been
// called and their channel is drained.
func (d *Dispatcher) Start() {
	for i, ch := range d.workers {
		d.wg.Add(1)
		go d.runWorker(i, ch)
	}
}

// Enqueue hands an event to the worker responsible for its email. It never
// blocks the request path: when the worker's buffer is full, or the
// dispatcher is closed, the event is dropped and logged.
func (d *Dispatcher) Enqueue(event domain.AuthEvent) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		d.drop(event, "dispatcher closed")
		return
	}

	idx := d.shardIndex(event.Email)
	select {
	case d.workers[idx] <- event:
		metrics.AuditQueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(d.workers[idx])))
	default:
		d.drop(event, "queue full")
	}
}

// Close stops accepting events and waits until every queued event has been
// recorded or ctx expires.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		for _, ch := range d.workers {
			close(ch)
		}
	}
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// shardIndex maps an email deterministically to a worker index.
func (d *Dispatcher) shardIndex(email string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(email))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) drop(event domain.AuthEvent, reason string) {
	metrics.AuditEventsTotal.WithLabelValues(string(event.Type), "dropped").Inc()
	d.log.Warn().
		Str("type", string(event.Type)).
		Str("email", event.Email).
		Str("reason", reason).
		Msg("audit event dropped")
}

func (d *Dispatcher) runWorker(id int, ch <-chan domain.AuthEvent) {
	defer d.wg.Done()
	label := strconv.Itoa(id)

	for event := range ch {
		metrics.AuditQueueDepth.WithLabelValues(label).Set(float64(len(ch)))

		start := time.Now()
		ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
		err := d.service.Record(ctx, event)
		cancel()
		metrics.AuditRecordDuration.Observe(time.Since(start).Seconds())

		if err != nil {
			metrics.AuditEventsTotal.WithLabelValues(string(event.Type), "failed").Inc()
			d.log.Error().Err(err).
				Str("type", string(event.Type)).
				Str("email", event.Email).
				Int("worker_id", id).
				Msg("audit event recording failed")
			continue
		}
		metrics.AuditEventsTotal.WithLabelValues(string(event.Type), "recorded").Inc()
	}
}
