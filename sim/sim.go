// Package sim generates accelerometer readings of a hand tapping at a steady
// rate, for demos and tests without a sensor.
package sim

import (
	"context"
	"io"
	"math"
	"math/rand"
	"time"
)

// Tapper simulates one accelerometer axis, in milli-g, of a device resting
// under gravity that is tapped at a fixed rate. Each tap pushes the reading
// away from the baseline for a few samples.
type Tapper struct {
	rate  int
	bpm   float64
	base  int
	amp   int
	width int
	noise int

	batch    int
	limit    int
	realtime bool

	rng    *rand.Rand
	n      int
	next   float64
	hold   int
	ticker *time.Ticker
}

// New returns a Tapper sampled at rate Hz tapping at bpm beats per minute.
// By default it rests at 1000 mg, taps are 800 mg high and 3 samples wide,
// the noise is ±8 mg and batches hold 25 samples.
func New(rate int, bpm float64, options ...Option) *Tapper {
	if rate < 1 {
		rate = 1
	}
	t := &Tapper{
		rate:  rate,
		bpm:   bpm,
		base:  1000,
		amp:   800,
		width: 3,
		noise: 8,
		batch: 25,
		rng:   rand.New(rand.NewSource(1)),
	}
	t.Options(options...)

	return t
}

// Options applies the options in order and returns the restoring option of
// the last one.
func (t *Tapper) Options(options ...Option) Option {
	var old Option
	for _, opt := range options {
		old = opt(t)
	}
	return old
}

// Period returns the number of samples between two taps, or 0 when the
// tapper does not tap.
func (t *Tapper) Period() float64 {
	if t.bpm <= 0 {
		return 0
	}
	return 60 * float64(t.rate) / t.bpm
}

// Next returns the next reading.
func (t *Tapper) Next() int16 {
	if p := t.Period(); p > 0 && float64(t.n) >= t.next {
		t.hold = t.width
		t.next += p
	}
	t.n++

	v := t.base
	if t.hold > 0 {
		v += t.amp
		t.hold--
	}
	if t.noise > 0 {
		v += t.rng.Intn(2*t.noise+1) - t.noise
	}

	if v > math.MaxInt16 {
		v = math.MaxInt16
	}
	if v < math.MinInt16 {
		v = math.MinInt16
	}
	return int16(v)
}

// Batch returns the next batch of readings. In realtime mode it waits for
// the time the batch takes to be sampled. It returns io.EOF once the limit
// is reached.
func (t *Tapper) Batch(ctx context.Context) ([]int16, error) {
	n := t.batch
	if t.limit > 0 {
		if left := t.limit - t.n; left < n {
			n = left
		}
		if n <= 0 {
			return nil, io.EOF
		}
	}

	if t.realtime {
		if t.ticker == nil {
			t.ticker = time.NewTicker(time.Duration(t.batch) * time.Second / time.Duration(t.rate))
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-t.ticker.C:
		}
	} else {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
	}

	out := make([]int16, n)
	for i := range out {
		out[i] = t.Next()
	}
	return out, nil
}

// Stop releases the realtime ticker.
func (t *Tapper) Stop() {
	if t.ticker != nil {
		t.ticker.Stop()
	}
}
