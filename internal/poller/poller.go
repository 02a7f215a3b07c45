// Package poller provides a cancellable periodic task that never overlaps
// itself: a tick arriving while a fetch is still in flight is skipped, and
// each fetch carries a monotonic sequence number so consumers can discard
// results that arrive out of order.
package poller

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// FetchFunc performs one fetch. seq is strictly increasing across fetches of
// the same poller; implementations should refuse to apply a result whose seq
// is lower than the last one they applied.
type FetchFunc func(ctx context.Context, seq uint64)

// Poller runs a FetchFunc on a fixed interval.
type Poller struct {
	name     string
	interval time.Duration
	fetch    FetchFunc

	seq      atomic.Uint64
	inflight atomic.Bool
	skipped  atomic.Int64

	trigger chan struct{}

	cancel    context.CancelFunc
	closeOnce sync.Once
	wg        sync.WaitGroup
}

// New creates a poller. It does nothing until Start.
func New(name string, interval time.Duration, fetch FetchFunc) *Poller {
	return &Poller{
		name:     name,
		interval: interval,
		fetch:    fetch,
		trigger:  make(chan struct{}, 1),
	}
}

// Start launches the poll loop. The first fetch fires immediately. The loop
// context is derived from ctx and is also cancelled by Stop, which aborts any
// in-flight request.
func (p *Poller) Start(ctx context.Context) {
	ctx, p.cancel = context.WithCancel(ctx)
	p.wg.Add(1)
	go p.run(ctx)
}

// Trigger requests an immediate out-of-band fetch. Never blocks; coalesces
// with a pending trigger.
func (p *Poller) Trigger() {
	select {
	case p.trigger <- struct{}{}:
	default:
	}
}

// Stop cancels the loop and waits for it and any in-flight fetch to finish.
// Safe to call more than once.
func (p *Poller) Stop() {
	p.closeOnce.Do(func() {
		if p.cancel != nil {
			p.cancel()
		}
	})
	p.wg.Wait()
}

// Skipped returns how many ticks were dropped because a fetch was in flight.
func (p *Poller) Skipped() int64 {
	return p.skipped.Load()
}

// Name returns the poller's name.
func (p *Poller) Name() string {
	return p.name
}

func (p *Poller) run(ctx context.Context) {
	defer p.wg.Done()

	p.launch(ctx)

	t := time.NewTicker(p.interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			p.launch(ctx)
		case <-p.trigger:
			p.launch(ctx)
		}
	}
}

func (p *Poller) launch(ctx context.Context) {
	if !p.inflight.CompareAndSwap(false, true) {
		p.skipped.Add(1)
		return
	}
	seq := p.seq.Add(1)

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		defer p.inflight.Store(false)
		p.fetch(ctx, seq)
	}()
}
