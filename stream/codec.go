package stream

import (
	"encoding/binary"
	"fmt"
)

// Encode packs samples as little-endian 16 bit integers.
func Encode(samples []int16) []byte {
	out := make([]byte, 2*len(samples))
	for i, v := range samples {
		binary.LittleEndian.PutUint16(out[i*2:], uint16(v))
	}
	return out
}

// Decode unpacks little-endian 16 bit samples.
func Decode(b []byte) ([]int16, error) {
	if len(b)%2 != 0 {
		return nil, fmt.Errorf("stream: batch of %d bytes is not a whole number of samples", len(b))
	}
	out := make([]int16, len(b)/2)
	for i := range out {
		out[i] = int16(binary.LittleEndian.Uint16(b[i*2:]))
	}
	return out, nil
}
