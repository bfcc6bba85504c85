package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/philipp-eisen/song-game/internal/models"
	"github.com/philipp-eisen/song-game/internal/shared"
)

// countingRunner decrements a per-playlist pending counter by batchSize on
// every run, mimicking the coordinator's drain behavior.
type countingRunner struct {
	mu        sync.Mutex
	batchSize int
	pending   map[string]int
	runs      map[string]int
	fail      bool
}

func newCountingRunner(batchSize int) *countingRunner {
	return &countingRunner{
		batchSize: batchSize,
		pending:   make(map[string]int),
		runs:      make(map[string]int),
	}
}

func (r *countingRunner) seed(playlistID string, pending int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pending[playlistID] = pending
}

func (r *countingRunner) ProcessBatch(ctx context.Context, playlistID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.fail {
		return 0, fmt.Errorf("boom")
	}

	r.runs[playlistID]++
	remaining := r.pending[playlistID] - r.batchSize
	if remaining < 0 {
		remaining = 0
	}
	r.pending[playlistID] = remaining
	return remaining, nil
}

func (r *countingRunner) runCount(playlistID string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.runs[playlistID]
}

func TestWorkerPool(t *testing.T) {
	t.Run("drains a playlist across chained runs", func(t *testing.T) {
		runner := newCountingRunner(10)
		runner.seed("pl1", 25)

		pool := NewWorkerPool(runner, 2, 16, nil)
		pool.Start(context.Background())
		defer pool.Stop()

		if err := pool.Enqueue("pl1"); err != nil {
			t.Fatalf("Enqueue failed: %v", err)
		}
		pool.Drain()

		if got := runner.runCount("pl1"); got != 3 {
			t.Errorf("expected 3 chained runs, got %d", got)
		}
	})

	t.Run("interleaves multiple playlists", func(t *testing.T) {
		runner := newCountingRunner(10)
		runner.seed("pl1", 30)
		runner.seed("pl2", 20)

		pool := NewWorkerPool(runner, 1, 16, nil)
		pool.Start(context.Background())
		defer pool.Stop()

		if err := pool.Enqueue("pl1"); err != nil {
			t.Fatalf("Enqueue failed: %v", err)
		}
		if err := pool.Enqueue("pl2"); err != nil {
			t.Fatalf("Enqueue failed: %v", err)
		}
		pool.Drain()

		if got := runner.runCount("pl1"); got != 3 {
			t.Errorf("expected 3 runs for pl1, got %d", got)
		}
		if got := runner.runCount("pl2"); got != 2 {
			t.Errorf("expected 2 runs for pl2, got %d", got)
		}
	})

	t.Run("rejects work after stop", func(t *testing.T) {
		runner := newCountingRunner(10)
		pool := NewWorkerPool(runner, 1, 16, nil)
		pool.Start(context.Background())
		pool.Stop()

		err := pool.Enqueue("pl1")
		if !errors.Is(err, shared.ErrQueueStopped) {
			t.Errorf("expected ErrQueueStopped, got %v", err)
		}
	})

	t.Run("rejects work when the queue is full", func(t *testing.T) {
		runner := newCountingRunner(10)
		pool := NewWorkerPool(runner, 1, 2, nil)
		// Not started: nothing drains the queue.

		if err := pool.Enqueue("pl1"); err != nil {
			t.Fatalf("Enqueue failed: %v", err)
		}
		if err := pool.Enqueue("pl2"); err != nil {
			t.Fatalf("Enqueue failed: %v", err)
		}

		err := pool.Enqueue("pl3")
		if !errors.Is(err, shared.ErrQueueFull) {
			t.Errorf("expected ErrQueueFull, got %v", err)
		}
	})

	t.Run("a failed run does not wedge the pool", func(t *testing.T) {
		runner := newCountingRunner(10)
		runner.fail = true

		pool := NewWorkerPool(runner, 1, 16, nil)
		pool.Start(context.Background())
		defer pool.Stop()

		if err := pool.Enqueue("pl1"); err != nil {
			t.Fatalf("Enqueue failed: %v", err)
		}

		done := make(chan struct{})
		go func() {
			pool.Drain()
			close(done)
		}()

		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("Drain did not return after a failed run")
		}
	})
}

func TestAggregatorSerializesPerPlaylist(t *testing.T) {
	env := setupEnv(t, 10)
	playlist := env.seedPlaylist(t, 5, true)

	agg := NewAggregator(env.playlists, nil)

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := agg.Recalculate(playlist.ID); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("concurrent recalculate failed: %v", err)
	}

	updated, err := env.playlists.Get(playlist.ID)
	if err != nil {
		t.Fatalf("failed to get playlist: %v", err)
	}
	if updated.Status != models.PlaylistProcessing {
		t.Errorf("expected status processing, got %s", updated.Status)
	}
}

func TestAggregatorLockStriping(t *testing.T) {
	agg := NewAggregator(nil, nil)

	if agg.lockFor("pl1") != agg.lockFor("pl1") {
		t.Error("expected the same playlist to map to the same lock")
	}

	// The pool is fixed; every id lands on one of its stripes.
	for i := 0; i < 100; i++ {
		if agg.lockFor(fmt.Sprintf("pl%d", i)) == nil {
			t.Fatal("expected a lock from the pool")
		}
	}
}
