package taptempo

// An Option configures a tracker and returns an option that restores the
// previous value.
type Option func(t *Tracker) Option

// Options applies the options in order and returns the restoring option of
// the last one.
func (t *Tracker) Options(options ...Option) Option {
	t.lock()
	defer t.unlock()

	var old Option
	for _, opt := range options {
		old = opt(t)
	}

	return old
}

// Capacity sets the number of samples kept by the tracker. The stored
// samples are discarded. Values smaller than 1 are raised to 1.
func Capacity(n int) Option {
	return func(t *Tracker) Option {
		old := t.ring.Len()
		t.ring = NewRing(n)
		return Capacity(old)
	}
}

// SampleRate sets the rate, in Hz, at which samples are delivered. Values
// smaller than 1 are ignored.
func SampleRate(hz int) Option {
	return func(t *Tracker) Option {
		old := t.rate
		if hz > 0 {
			t.rate = hz
		}
		return SampleRate(old)
	}
}

// Sensitivity sets the tap threshold. A jump between two consecutive
// samples must be larger than s to count as a tap. Changing it resets the
// stored samples.
func Sensitivity(s uint) Option {
	return func(t *Tracker) Option {
		old := t.sensitivity
		t.sensitivity = s
		t.ring.Reset()
		return Sensitivity(old)
	}
}

// Shift sets an arithmetic right shift applied to every raw sample before
// it is stored. Some motion services report readings that are always a
// multiple of 8; a shift of 3 drops those unused bits.
func Shift(bits uint) Option {
	return func(t *Tracker) Option {
		old := t.shift
		if bits > 15 {
			bits = 15
		}
		t.shift = bits
		return Shift(old)
	}
}
