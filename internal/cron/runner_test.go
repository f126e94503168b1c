package cronrunner

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

func TestRunnerRunsJobs(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var runs atomic.Int32
	r := New(ctx, nil)
	if _, err := r.Add("tick", "@every 1s", func(context.Context) { runs.Add(1) }); err != nil {
		t.Fatalf("Add: %v", err)
	}
	r.Start()

	deadline := time.Now().Add(3 * time.Second)
	for runs.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(20 * time.Millisecond)
	}
	r.Stop()
	if runs.Load() == 0 {
		t.Fatal("job never ran")
	}
}

func TestRunnerRejectsBadSpec(t *testing.T) {
	r := New(context.Background(), nil)
	if _, err := r.Add("bad", "every now and then", func(context.Context) {}); err == nil {
		t.Fatal("expected parse error")
	}
}
