package taptempo

// Ring is a fixed size rotating buffer of single axis acceleration samples.
// Every push overwrites the oldest sample.
type Ring struct {
	buffer []int16
	pos    int

	initialized bool
}

// NewRing returns an empty ring holding size samples. Sizes smaller than 1
// are raised to 1.
func NewRing(size int) *Ring {
	if size < 1 {
		size = 1
	}
	return &Ring{
		buffer: make([]int16, size),
	}
}

// Push writes each entry over the oldest sample. The first entry after
// NewRing or Reset fills the whole ring with its value so the jump from an
// empty buffer to the first reading is not seen as a tap.
func (r *Ring) Push(entries ...int16) {
	for _, e := range entries {
		if !r.initialized {
			r.prime(e)
		}
		r.buffer[r.pos] = e
		r.pos++
		r.pos %= len(r.buffer)
	}
}

func (r *Ring) prime(v int16) {
	for i := range r.buffer {
		r.buffer[i] = v
	}
	r.pos = 0
	r.initialized = true
}

// Reset marks the ring as uninitialized. The next push primes it again.
func (r *Ring) Reset() {
	r.initialized = false
}

// Initialized reports whether the ring has been primed.
func (r *Ring) Initialized() bool {
	return r.initialized
}

// Len returns the capacity of the ring.
func (r *Ring) Len() int {
	return len(r.buffer)
}

// Snapshot copies the samples into dst in chronological order, oldest
// first, and returns it. dst is reallocated when it is too small.
func (r *Ring) Snapshot(dst []int16) []int16 {
	if cap(dst) < len(r.buffer) {
		dst = make([]int16, len(r.buffer))
	}
	dst = dst[:len(r.buffer)]
	n := copy(dst, r.buffer[r.pos:])
	copy(dst[n:], r.buffer[:r.pos])

	return dst
}
