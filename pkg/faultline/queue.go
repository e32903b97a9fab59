// queue.go holds captured items and drives batched delivery to the
// transport. The dispatcher owns the pending queue exclusively: the capture
// API appends, only a flush removes, in FIFO order.

package faultline

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// ErrClosed is returned when capturing after Close.
var ErrClosed = errors.New("faultline: client is closed")

// pendingItem pairs a queued item with its caller's completion callback.
type pendingItem struct {
	item *Item
	cb   func(error)
}

// dispatcher is goroutine-safe; all queue and mode state is guarded by mu.
// The flushing flag enforces at-most-one flush in flight: concurrent flush
// requests return immediately and the running loop picks up their items.
type dispatcher struct {
	mu        sync.Mutex
	queue     []pendingItem
	mode      HandlerMode
	interval  time.Duration
	batchSize int
	transport Transport
	log       zerolog.Logger
	flushing  bool
	closed    bool
	tickStop  chan struct{}
}

func newDispatcher(cfg *Config, transport Transport, log zerolog.Logger) *dispatcher {
	d := &dispatcher{
		mode:      cfg.Handler,
		interval:  cfg.HandlerInterval,
		batchSize: cfg.BatchSize,
		transport: transport,
		log:       log,
	}
	if d.mode == HandlerTimer {
		d.startTickerLocked()
	}
	return d
}

// enqueue appends the item and applies the current handler mode. In inline
// mode the flush result is returned; in deferred and timer modes delivery
// happens later and the item's callback receives the result.
func (d *dispatcher) enqueue(ctx context.Context, item *Item, cb func(error)) error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		if cb != nil {
			cb(ErrClosed)
		}
		return ErrClosed
	}
	d.queue = append(d.queue, pendingItem{item: item, cb: cb})
	mode := d.mode
	d.mu.Unlock()

	d.log.Debug().
		Str("uuid", item.UUID).
		Str("fingerprint", shortHash(item.Fingerprint)).
		Str("level", string(item.Level)).
		Msg("item queued")

	switch mode {
	case HandlerInline:
		return d.flush(ctx)
	case HandlerDeferred:
		// Runs after the current call unwinds, never inside it.
		go func() { _ = d.flush(context.Background()) }()
	}
	return nil
}

// flush drains the queue into sequential transport batches. The loop
// re-checks queue length each iteration, so items enqueued mid-flush are
// delivered by the same loop. On a transport error the entire remaining
// queue is dropped: delivery is at-most-once, nothing is requeued.
func (d *dispatcher) flush(ctx context.Context) error {
	d.mu.Lock()
	if d.flushing {
		// Another flush is draining; it will pick up our items.
		d.mu.Unlock()
		return nil
	}
	d.flushing = true

	var err error
	for len(d.queue) > 0 {
		n := d.batchSize
		if n > len(d.queue) {
			n = len(d.queue)
		}
		batch := d.queue[:n:n]
		d.queue = d.queue[n:]
		d.mu.Unlock()

		items := make([]*Item, len(batch))
		for i, p := range batch {
			items[i] = p.item
		}
		_, err = d.transport.PostBatch(ctx, items)
		notifyAll(batch, err)

		d.mu.Lock()
		if err != nil {
			dropped := d.queue
			d.queue = nil
			d.mu.Unlock()
			d.log.Warn().
				Err(err).
				Int("sent_attempted", len(batch)).
				Int("dropped", len(dropped)).
				Msg("transport failed, aborting flush")
			notifyAll(dropped, err)
			d.mu.Lock()
			break
		}
	}

	d.flushing = false
	d.mu.Unlock()
	return err
}

// notifyAll invokes each pending callback with the delivery result.
// Callback panics must not poison the flush loop.
func notifyAll(items []pendingItem, err error) {
	for _, p := range items {
		if p.cb == nil {
			continue
		}
		func() {
			defer func() { _ = recover() }()
			p.cb(err)
		}()
	}
}

// setHandler switches the flush policy. Any existing recurring ticker is
// always stopped before a new one is installed, so mode flapping never
// leaves two tickers running.
func (d *dispatcher) setHandler(mode HandlerMode) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopTickerLocked()
	d.mode = mode
	if mode == HandlerTimer && !d.closed {
		d.startTickerLocked()
	}
}

func (d *dispatcher) startTickerLocked() {
	stop := make(chan struct{})
	d.tickStop = stop
	go d.tickLoop(d.interval, stop)
}

func (d *dispatcher) stopTickerLocked() {
	if d.tickStop != nil {
		close(d.tickStop)
		d.tickStop = nil
	}
}

// tickLoop fires flushes until its stop channel closes. Each mode change
// gets a fresh loop bound to its own stop channel.
func (d *dispatcher) tickLoop(interval time.Duration, stop chan struct{}) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-stop:
			return
		case <-t.C:
			_ = d.flush(context.Background())
		}
	}
}

// queueLen reports the current queue depth.
func (d *dispatcher) queueLen() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.queue)
}

// close forces inline mode, cancels any timer, and performs one final flush
// of everything queued. Safe to call more than once.
func (d *dispatcher) close(ctx context.Context) error {
	d.mu.Lock()
	d.stopTickerLocked()
	d.mode = HandlerInline
	d.closed = true
	d.mu.Unlock()
	return d.flush(ctx)
}
