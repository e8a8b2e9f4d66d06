// Package taptempo estimates a tap rate, in beats per minute, from a single
// axis of accelerometer samples delivered in batches.
package taptempo

import "fmt"

// Tracker keeps the most recent samples of an accelerometer axis and
// estimates the tap rate each time a batch arrives.
//
// A Tracker is safe for concurrent use. Pushing a batch and copying the
// samples out happen while holding the tracker, the estimate is computed on
// the copy.
type Tracker struct {
	ring   *Ring
	readCh chan struct{}

	sensitivity uint
	rate        int
	shift       uint
}

// New returns a Tracker with a 300 sample ring, a 100 Hz sample rate and a
// sensitivity of 60.
func New(options ...Option) *Tracker {
	t := &Tracker{
		ring:        NewRing(DefaultCapacity),
		readCh:      make(chan struct{}, 1),
		sensitivity: DefaultSensitivity,
		rate:        DefaultSampleRate,
	}
	t.readCh <- struct{}{}
	t.Options(options...)

	return t
}

func (t *Tracker) lock() {
	<-t.readCh
}

func (t *Tracker) unlock() {
	t.readCh <- struct{}{}
}

// Process pushes a batch of raw samples and returns the rate measured over
// the whole ring. It returns ErrNoRate when fewer than two taps are found.
func (t *Tracker) Process(batch []int16) (BPM, error) {
	bpm, _, err := t.process(batch)
	return bpm, err
}

func (t *Tracker) process(batch []int16) (BPM, uint, error) {
	samples, sensitivity, rate := t.absorb(batch)

	bpm, err := Estimate(samples, sensitivity, rate)
	if err != nil {
		return BPM{}, sensitivity, fmt.Errorf("taptempo: could not estimate rate: %w", err)
	}

	return bpm, sensitivity, nil
}

// absorb pushes the batch and returns a copy of the ring together with the
// settings the copy must be read with.
func (t *Tracker) absorb(batch []int16) ([]int16, uint, int) {
	t.lock()
	defer t.unlock()

	for _, v := range batch {
		t.ring.Push(v >> t.shift)
	}
	if !t.ring.Initialized() {
		return nil, t.sensitivity, t.rate
	}

	return t.ring.Snapshot(nil), t.sensitivity, t.rate
}

// Reset discards every stored sample. The next batch primes the ring again,
// so the rate reads as undefined until new taps arrive.
func (t *Tracker) Reset() {
	t.lock()
	defer t.unlock()

	t.ring.Reset()
}

// SetSensitivity changes the tap threshold and resets the tracker. Samples
// taken with the old threshold are not reused.
func (t *Tracker) SetSensitivity(s uint) {
	t.lock()
	defer t.unlock()

	t.sensitivity = s
	t.ring.Reset()
}

// Sensitivity returns the current tap threshold.
func (t *Tracker) Sensitivity() uint {
	t.lock()
	defer t.unlock()

	return t.sensitivity
}

// SampleRate returns the sample rate, in Hz, the tracker assumes.
func (t *Tracker) SampleRate() int {
	t.lock()
	defer t.unlock()

	return t.rate
}
