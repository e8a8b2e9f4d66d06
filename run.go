package taptempo

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"
)

// Sampler delivers batches of raw samples at a fixed rate. Batch blocks
// until the next batch is available. A sampler that runs out of data returns
// io.EOF.
type Sampler interface {
	Batch(ctx context.Context) ([]int16, error)
}

// Sink receives one reading per processed batch.
type Sink interface {
	Report(ctx context.Context, r Reading) error
}

// SinkFunc adapts a function to a Sink.
type SinkFunc func(ctx context.Context, r Reading) error

// Report calls f(ctx, r).
func (f SinkFunc) Report(ctx context.Context, r Reading) error {
	return f(ctx, r)
}

// Reading is the result of a processed batch.
type Reading struct {
	BPM     int  `json:"bpm"`
	Clamped bool `json:"clamped,omitempty"`
	// Valid is false when no rate could be measured. BPM is 0 then and must
	// not be shown as a measured rate.
	Valid       bool      `json:"valid"`
	Sensitivity uint      `json:"sensitivity"`
	Samples     int       `json:"samples"`
	At          time.Time `json:"at"`
}

func (r Reading) String() string {
	if !r.Valid {
		return "-- bpm"
	}
	return fmt.Sprintf("%d bpm", r.BPM)
}

// Feed processes one batch and builds its reading. ErrNoRate is reported as
// an invalid reading, not as an error.
func (t *Tracker) Feed(batch []int16) Reading {
	bpm, sensitivity, err := t.process(batch)
	r := Reading{
		Sensitivity: sensitivity,
		Samples:     len(batch),
		At:          time.Now(),
	}
	if err != nil {
		return r
	}
	r.BPM = bpm.Value
	r.Clamped = bpm.Clamped
	r.Valid = true

	return r
}

// Run reads batches from src, feeds them to t and reports every reading to
// the sinks, until ctx is done or src fails. It returns nil when src reports
// io.EOF.
func Run(ctx context.Context, t *Tracker, src Sampler, sinks ...Sink) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		batch, err := src.Batch(ctx)
		if errors.Is(err, io.EOF) {
			return nil
		} else if err != nil {
			return fmt.Errorf("taptempo: could not get samples: %w", err)
		}

		r := t.Feed(batch)
		for _, s := range sinks {
			if err := s.Report(ctx, r); err != nil {
				return fmt.Errorf("taptempo: could not report reading: %w", err)
			}
		}
	}
}
