package poller

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestPollerFiresImmediatelyAndPeriodically(t *testing.T) {
	var count atomic.Int64
	p := New("test", 20*time.Millisecond, func(ctx context.Context, seq uint64) {
		count.Add(1)
	})
	p.Start(context.Background())
	defer p.Stop()

	time.Sleep(110 * time.Millisecond)
	got := count.Load()
	if got < 3 {
		t.Fatalf("expected at least 3 fetches, got %d", got)
	}
}

func TestPollerSkipsOverlappingTicks(t *testing.T) {
	release := make(chan struct{})
	var count atomic.Int64
	p := New("slow", 10*time.Millisecond, func(ctx context.Context, seq uint64) {
		count.Add(1)
		select {
		case <-release:
		case <-ctx.Done():
		}
	})
	p.Start(context.Background())

	// The first fetch blocks; subsequent ticks must be skipped, not stacked.
	time.Sleep(80 * time.Millisecond)
	if got := count.Load(); got != 1 {
		t.Fatalf("expected 1 in-flight fetch, got %d", got)
	}
	if p.Skipped() == 0 {
		t.Error("expected skipped ticks while fetch in flight")
	}

	close(release)
	p.Stop()
}

func TestPollerSequenceIsMonotonic(t *testing.T) {
	var mu sync.Mutex
	var seqs []uint64
	p := New("seq", 5*time.Millisecond, func(ctx context.Context, seq uint64) {
		mu.Lock()
		seqs = append(seqs, seq)
		mu.Unlock()
	})
	p.Start(context.Background())
	time.Sleep(60 * time.Millisecond)
	p.Stop()

	mu.Lock()
	defer mu.Unlock()
	if len(seqs) < 2 {
		t.Fatalf("expected multiple fetches, got %d", len(seqs))
	}
	for i := 1; i < len(seqs); i++ {
		if seqs[i] <= seqs[i-1] {
			t.Fatalf("sequence not strictly increasing: %v", seqs)
		}
	}
}

func TestTriggerRunsOutOfBandFetch(t *testing.T) {
	var count atomic.Int64
	p := New("trigger", time.Hour, func(ctx context.Context, seq uint64) {
		count.Add(1)
	})
	p.Start(context.Background())
	defer p.Stop()

	waitFor(t, func() bool { return count.Load() == 1 })
	time.Sleep(10 * time.Millisecond) // let the first fetch fully retire

	p.Trigger()
	waitFor(t, func() bool { return count.Load() == 2 })
}

func TestStopCancelsInFlightFetch(t *testing.T) {
	started := make(chan struct{})
	cancelled := make(chan struct{})
	p := New("cancel", time.Hour, func(ctx context.Context, seq uint64) {
		close(started)
		<-ctx.Done()
		close(cancelled)
	})
	p.Start(context.Background())

	<-started
	done := make(chan struct{})
	go func() {
		p.Stop()
		close(done)
	}()

	select {
	case <-cancelled:
	case <-time.After(time.Second):
		t.Fatal("in-flight fetch was not cancelled by Stop")
	}
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Stop did not return")
	}

	// Idempotent.
	p.Stop()
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatal("condition not met within deadline")
}
