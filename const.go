package taptempo

// Defaults match a 100 Hz accelerometer delivering 25 samples per batch,
// which refreshes the BPM four times per second.
const (
	DefaultCapacity    = 300 // 3 seconds at 100 Hz
	DefaultSampleRate  = 100
	DefaultBatchSize   = 25
	DefaultSensitivity = 60
)

const (
	// debounce is the number of samples that must be exceeded between two
	// accepted taps. 10 samples at 100 Hz limits the reading to 600 bpm.
	debounce = 10

	// MaxBPM is the largest value Estimate reports.
	MaxBPM = 999
)
