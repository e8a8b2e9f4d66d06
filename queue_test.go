package taptempo

import (
	"context"
	"errors"
	"io"
	"testing"
)

func TestQueue(t *testing.T) {
	q := NewQueue(2)
	if !q.Offer([]int16{1}) || !q.Offer([]int16{2}) {
		t.Fatal("Offer() should accept batches while there is room")
	}
	if q.Offer([]int16{3}) {
		t.Fatal("Offer() should drop batches when full")
	}
	if n := q.Dropped(); n != 1 {
		t.Fatalf("Dropped() = %d, want 1", n)
	}

	ctx := context.Background()
	if b, err := q.Batch(ctx); err != nil || b[0] != 1 {
		t.Fatalf("Batch() = %v, %v, want [1]", b, err)
	}

	q.Close()
	q.Close()
	if q.Offer([]int16{4}) {
		t.Fatal("Offer() should refuse batches after Close")
	}
	if b, err := q.Batch(ctx); err != nil || b[0] != 2 {
		t.Fatalf("Batch() = %v, %v, want [2]", b, err)
	}
	if _, err := q.Batch(ctx); !errors.Is(err, io.EOF) {
		t.Fatalf("Batch() error = %v, want io.EOF", err)
	}
}

func TestQueueCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := NewQueue(1).Batch(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("Batch() error = %v, want %v", err, context.Canceled)
	}
}
