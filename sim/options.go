package sim

// An Option configures a tapper and returns an option that restores the
// previous value.
type Option func(t *Tapper) Option

// BPM sets the tap rate. A rate of 0 stops tapping.
func BPM(bpm float64) Option {
	return func(t *Tapper) Option {
		old := t.bpm
		t.bpm = bpm
		t.next = float64(t.n)
		return BPM(old)
	}
}

// Baseline sets the resting reading.
func Baseline(v int) Option {
	return func(t *Tapper) Option {
		old := t.base
		t.base = v
		return Baseline(old)
	}
}

// Amplitude sets how far a tap moves the reading from the baseline.
func Amplitude(v int) Option {
	return func(t *Tapper) Option {
		old := t.amp
		t.amp = v
		return Amplitude(old)
	}
}

// Width sets the number of samples a tap lasts.
func Width(n int) Option {
	return func(t *Tapper) Option {
		old := t.width
		if n < 1 {
			n = 1
		}
		t.width = n
		return Width(old)
	}
}

// Noise sets the maximum random deviation added to every reading.
func Noise(v int) Option {
	return func(t *Tapper) Option {
		old := t.noise
		if v < 0 {
			v = 0
		}
		t.noise = v
		return Noise(old)
	}
}

// Seed reseeds the noise generator.
func Seed(seed int64) Option {
	return func(t *Tapper) Option {
		t.rng.Seed(seed)
		return Seed(1)
	}
}

// BatchSize sets the number of samples returned by Batch.
func BatchSize(n int) Option {
	return func(t *Tapper) Option {
		old := t.batch
		if n < 1 {
			n = 1
		}
		t.batch = n
		return BatchSize(old)
	}
}

// Limit ends the stream after n samples. 0 means no limit.
func Limit(n int) Option {
	return func(t *Tapper) Option {
		old := t.limit
		t.limit = n
		return Limit(old)
	}
}

// Realtime paces Batch at the sample rate instead of returning immediately.
func Realtime(on bool) Option {
	return func(t *Tapper) Option {
		old := t.realtime
		t.realtime = on
		return Realtime(old)
	}
}
