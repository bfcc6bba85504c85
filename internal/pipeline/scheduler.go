package pipeline

import (
	"context"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/philipp-eisen/song-game/internal/shared"
)

// DefaultQueueBacklog is the default capacity of the work queue.
const DefaultQueueBacklog = 64

// Scheduler enqueues a playlist for one batch run. Enqueue returns
// immediately; it never blocks on the run itself.
type Scheduler interface {
	Enqueue(playlistID string) error
}

// BatchRunner processes one batch for a playlist and reports how many
// tracks remain pending. Implemented by [Coordinator].
type BatchRunner interface {
	ProcessBatch(ctx context.Context, playlistID string) (int, error)
}

// WorkerPool is a bounded-queue [Scheduler] implementation.
//
// A fixed set of workers drains the queue; each dequeued playlist gets one
// batch run, and a run that leaves tracks pending re-enqueues the playlist
// behind whatever else is waiting. Interleaving between playlists falls out
// of the queue order.
type WorkerPool struct {
	runner  BatchRunner
	workers int
	queue   chan string
	logger  *log.Logger

	mu      sync.Mutex
	started bool
	stopped bool
	cancel  context.CancelFunc

	inflight sync.WaitGroup
	done     sync.WaitGroup
}

// NewWorkerPool creates a WorkerPool with the given worker count and queue
// capacity. Workers defaults to 1 and backlog to [DefaultQueueBacklog].
func NewWorkerPool(runner BatchRunner, workers, backlog int, logger *log.Logger) *WorkerPool {
	if workers <= 0 {
		workers = 1
	}
	if backlog <= 0 {
		backlog = DefaultQueueBacklog
	}
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &WorkerPool{
		runner:  runner,
		workers: workers,
		queue:   make(chan string, backlog),
		logger:  logger,
	}
}

// Start launches the workers. The pool runs until Stop is called or ctx is
// cancelled. Calling Start twice is a no-op.
func (p *WorkerPool) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.started {
		return
	}
	p.started = true

	ctx, p.cancel = context.WithCancel(ctx)

	for i := 0; i < p.workers; i++ {
		p.done.Add(1)
		go p.work(ctx)
	}

	p.logger.Debug("worker pool started", "workers", p.workers, "backlog", cap(p.queue))
}

// Enqueue schedules one batch run for the playlist. It fails fast when the
// pool has stopped or the queue is full rather than blocking the caller.
func (p *WorkerPool) Enqueue(playlistID string) error {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return shared.ErrQueueStopped
	}
	p.inflight.Add(1)
	p.mu.Unlock()

	select {
	case p.queue <- playlistID:
		return nil
	default:
		p.inflight.Done()
		return fmt.Errorf("%w: backlog %d", shared.ErrQueueFull, cap(p.queue))
	}
}

// Drain blocks until every enqueued run, including re-enqueued successors,
// has finished. New work may still be enqueued afterwards.
func (p *WorkerPool) Drain() {
	p.inflight.Wait()
}

// Stop rejects further work, waits for in-flight runs to finish, then shuts
// the workers down.
func (p *WorkerPool) Stop() {
	p.mu.Lock()
	if p.stopped || !p.started {
		p.stopped = true
		p.mu.Unlock()
		return
	}
	p.stopped = true
	p.mu.Unlock()

	p.inflight.Wait()
	p.cancel()
	p.done.Wait()

	p.logger.Debug("worker pool stopped")
}

func (p *WorkerPool) work(ctx context.Context) {
	defer p.done.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case playlistID := <-p.queue:
			p.run(ctx, playlistID)
		}
	}
}

// run executes one batch and re-enqueues the playlist when pending tracks
// remain. The re-enqueue happens before this run is marked finished so
// Drain cannot observe an empty queue between chained runs.
func (p *WorkerPool) run(ctx context.Context, playlistID string) {
	defer p.inflight.Done()

	pending, err := p.runner.ProcessBatch(ctx, playlistID)
	if err != nil {
		p.logger.Error("batch run failed", "playlist", playlistID, "err", err)
		return
	}

	if pending > 0 {
		if err := p.Enqueue(playlistID); err != nil {
			p.logger.Error("failed to schedule next batch", "playlist", playlistID, "err", err)
		}
	}
}
