package taptempo

import (
	"errors"
	"fmt"
)

var (
	// ErrNoRate is returned when the samples hold fewer than two accepted
	// taps, so no interval between taps can be measured. It is not a zero
	// rate: callers should show a neutral reading.
	ErrNoRate = errors.New("no tap rate detected")
)

// BPM is a tap rate in beats per minute.
type BPM struct {
	Value int
	// Clamped is set when the measured rate was above MaxBPM.
	Clamped bool
}

func (b BPM) String() string {
	return fmt.Sprintf("%d bpm", b.Value)
}

// Estimate averages the time between taps found in samples, ordered oldest
// first, and returns it as beats per minute for a signal sampled at
// sampleRate Hz.
//
// A tap is a jump between two consecutive samples larger than sensitivity.
// The last sample is compared against the first one too, so the samples are
// treated as circular. The first tap only marks a starting point; every later
// tap more than 10 samples after the previous accepted one closes an
// interval. Closer taps are ignored as jitter.
func Estimate(samples []int16, sensitivity uint, sampleRate int) (BPM, error) {
	n := len(samples)
	last := -1
	var total, count int

	for i := 0; i < n; i++ {
		delta := int32(samples[(i+1)%n]) - int32(samples[i])
		if delta < 0 {
			delta = -delta
		}
		if uint(delta) <= sensitivity {
			continue
		}

		if last < 0 {
			last = i
			continue
		}
		if i-last > debounce {
			total += i - last
			last = i
			count++
		}
	}

	if count == 0 || total == 0 {
		return BPM{}, ErrNoRate
	}

	bpm := BPM{Value: 60 * sampleRate * count / total}
	if bpm.Value > MaxBPM {
		bpm.Value = MaxBPM
		bpm.Clamped = true
	}

	return bpm, nil
}
