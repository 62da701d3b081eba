package async

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestGroupBoundsConcurrency(t *testing.T) {
	grp := NewGroup(context.Background(), 2)
	var running, peak atomic.Int64
	for i := 0; i < 6; i++ {
		grp.Go(func(ctx context.Context) error {
			n := running.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			time.Sleep(10 * time.Millisecond)
			running.Add(-1)
			return nil
		})
	}
	if err := grp.Wait(); err != nil {
		t.Fatalf("Wait error: %v", err)
	}
	if got := peak.Load(); got > 2 {
		t.Fatalf("expected at most 2 concurrent tasks, saw %d", got)
	}
	if grp.QueueDepth() != 0 {
		t.Fatalf("expected depth 0 after Wait, got %d", grp.QueueDepth())
	}
}

func TestGroupReturnsFirstErrorAfterAllTasks(t *testing.T) {
	grp := NewGroup(context.Background(), 0)
	var done atomic.Int64
	boom := errors.New("boom")
	grp.Go(func(ctx context.Context) error { return boom })
	grp.Go(func(ctx context.Context) error {
		time.Sleep(10 * time.Millisecond)
		done.Add(1)
		return nil
	})
	if err := grp.Wait(); !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if done.Load() != 1 {
		t.Fatal("the slow task must still complete")
	}
}

func TestRunOverrideRunsInline(t *testing.T) {
	RunOverride = func(fn func()) { fn() }
	t.Cleanup(func() { RunOverride = nil })

	grp := NewGroup(context.Background(), 1)
	ran := false
	grp.Go(func(ctx context.Context) error {
		ran = true
		return nil
	})
	if !ran {
		t.Fatal("task should have run before Go returned")
	}
	if err := grp.Wait(); err != nil {
		t.Fatalf("Wait error: %v", err)
	}
}
