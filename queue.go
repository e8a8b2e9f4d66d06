package taptempo

import (
	"context"
	"io"
	"sync"
	"sync/atomic"
)

// Queue is a Sampler fed by a push based source, such as a subscription
// callback. Batches offered while the queue is full are dropped.
type Queue struct {
	queue chan []int16
	done  chan struct{}
	once  sync.Once

	dropped atomic.Int64
}

// NewQueue returns a queue holding up to depth batches.
func NewQueue(depth int) *Queue {
	if depth < 1 {
		depth = 1
	}
	return &Queue{
		queue: make(chan []int16, depth),
		done:  make(chan struct{}),
	}
}

// Offer queues a batch without blocking. It reports false when the batch
// was dropped because the queue is full or closed.
func (q *Queue) Offer(batch []int16) bool {
	select {
	case <-q.done:
		return false
	default:
	}

	select {
	case q.queue <- batch:
		return true
	default:
		q.dropped.Add(1)
		return false
	}
}

// Batch returns the next queued batch. It returns io.EOF once the queue is
// closed and drained.
func (q *Queue) Batch(ctx context.Context) ([]int16, error) {
	select {
	case b := <-q.queue:
		return b, nil
	default:
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case b := <-q.queue:
		return b, nil
	case <-q.done:
		return nil, io.EOF
	}
}

// Dropped returns the number of batches dropped because the queue was full.
func (q *Queue) Dropped() int64 {
	return q.dropped.Load()
}

// Close stops accepting batches. Queued batches are still returned by Batch.
func (q *Queue) Close() {
	q.once.Do(func() {
		close(q.done)
	})
}
