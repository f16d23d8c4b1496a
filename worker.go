package storefront

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"gofalre.io/storefront/models"
)

const workerQueueSize = 1000

type SnapshotProcessor interface {
	ProcessSnapshot(ctx context.Context, event *models.CartSnapshotEvent) error
}

// WorkerPool applies received cart snapshots off the NATS callback goroutine.
type WorkerPool struct {
	tasks     chan func()
	wg        sync.WaitGroup
	mu        sync.RWMutex
	closed    bool
	logger    *zap.Logger
	processor SnapshotProcessor
}

func NewWorkerPool(size int, processor SnapshotProcessor, logger *zap.Logger) *WorkerPool {
	if size < 1 {
		size = 1
	}

	wp := &WorkerPool{
		tasks:     make(chan func(), workerQueueSize),
		logger:    logger,
		processor: processor,
	}

	wp.wg.Add(size)
	for i := 0; i < size; i++ {
		go wp.worker()
	}

	return wp
}

func (wp *WorkerPool) worker() {
	defer wp.wg.Done()

	for task := range wp.tasks {
		task()
	}
}

// Submit queues event for processing. It reports false once the pool is shut down.
func (wp *WorkerPool) Submit(ctx context.Context, event *models.CartSnapshotEvent) bool {
	wp.mu.RLock()
	defer wp.mu.RUnlock()

	if wp.closed {
		wp.logger.Warn("Worker pool closed, dropping snapshot", zap.String("event_id", event.ID))
		return false
	}

	wp.tasks <- func() {
		if err := wp.processor.ProcessSnapshot(ctx, event); err != nil {
			wp.logger.Error("Failed to process snapshot",
				zap.Error(err),
				zap.String("event_id", event.ID),
				zap.String("origin", event.Origin))
		}
	}
	return true
}

// Shutdown stops accepting work, drains the queue and waits for every worker to exit.
func (wp *WorkerPool) Shutdown() {
	wp.mu.Lock()
	if wp.closed {
		wp.mu.Unlock()
		return
	}
	wp.closed = true
	close(wp.tasks)
	wp.mu.Unlock()

	wp.wg.Wait()
}
