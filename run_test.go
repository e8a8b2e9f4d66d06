package taptempo

import (
	"context"
	"errors"
	"io"
	"testing"
)

type batches struct {
	s    []int16
	size int
	err  error
}

func (b *batches) Batch(ctx context.Context) ([]int16, error) {
	if len(b.s) == 0 {
		if b.err != nil {
			return nil, b.err
		}
		return nil, io.EOF
	}
	n := b.size
	if n > len(b.s) {
		n = len(b.s)
	}
	batch := b.s[:n]
	b.s = b.s[n:]
	return batch, nil
}

func TestRun(t *testing.T) {
	src := &batches{s: train(DefaultCapacity, 20, 200), size: DefaultBatchSize}

	var readings []Reading
	sink := SinkFunc(func(ctx context.Context, r Reading) error {
		readings = append(readings, r)
		return nil
	})

	if err := Run(context.Background(), New(), src, sink); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if n := len(readings); n != DefaultCapacity/DefaultBatchSize {
		t.Fatalf("got %d readings, want %d", n, DefaultCapacity/DefaultBatchSize)
	}
	if first := readings[0]; first.Valid || first.String() != "-- bpm" {
		t.Fatalf("first reading = %v (valid %v), want an invalid reading", first, first.Valid)
	}
	last := readings[len(readings)-1]
	if !last.Valid || last.BPM != 300 {
		t.Fatalf("last reading = %+v, want 300 bpm", last)
	}
	if last.String() != "300 bpm" {
		t.Fatalf("String() = %q, want %q", last.String(), "300 bpm")
	}
	if last.Sensitivity != DefaultSensitivity || last.Samples != DefaultBatchSize {
		t.Fatalf("last reading = %+v, want sensitivity %d and %d samples", last, DefaultSensitivity, DefaultBatchSize)
	}
}

func TestRunSamplerError(t *testing.T) {
	errBroken := errors.New("broken")
	src := &batches{err: errBroken}

	err := Run(context.Background(), New(), src)
	if !errors.Is(err, errBroken) {
		t.Fatalf("Run() error = %v, want %v", err, errBroken)
	}
}

func TestRunSinkError(t *testing.T) {
	errFull := errors.New("full")
	src := &batches{s: []int16{1, 2, 3}, size: 1}
	sink := SinkFunc(func(ctx context.Context, r Reading) error {
		return errFull
	})

	err := Run(context.Background(), New(), src, sink)
	if !errors.Is(err, errFull) {
		t.Fatalf("Run() error = %v, want %v", err, errFull)
	}
}

func TestRunCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	src := &batches{s: []int16{1, 2, 3}, size: 1}
	if err := Run(ctx, New(), src); !errors.Is(err, context.Canceled) {
		t.Fatalf("Run() error = %v, want %v", err, context.Canceled)
	}
}
