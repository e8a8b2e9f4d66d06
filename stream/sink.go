package stream

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/cgxeiji/taptempo"
)

// Sink publishes readings as JSON.
type Sink struct {
	p       Publisher
	subject string
}

// NewSink returns a sink publishing to subject.
func NewSink(p Publisher, subject string) *Sink {
	return &Sink{p: p, subject: subject}
}

// Report publishes r.
func (s *Sink) Report(ctx context.Context, r taptempo.Reading) error {
	b, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("stream: could not encode reading: %w", err)
	}
	if err := s.p.Publish(s.subject, b); err != nil {
		return fmt.Errorf("stream: could not publish reading: %w", err)
	}
	return nil
}

// Forward reads batches from src and publishes them to subject until ctx is
// done or src ends. It returns the number of samples sent.
func Forward(ctx context.Context, src taptempo.Sampler, p Publisher, subject string) (int, error) {
	sent := 0
	for {
		batch, err := src.Batch(ctx)
		if err != nil {
			return sent, err
		}
		if err := p.Publish(subject, Encode(batch)); err != nil {
			return sent, fmt.Errorf("stream: could not publish batch: %w", err)
		}
		sent += len(batch)
	}
}
