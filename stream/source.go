package stream

import (
	"sync/atomic"

	"github.com/nats-io/nats.go"

	"github.com/cgxeiji/taptempo"
)

// Source receives sample batches published on a subject. Batches arriving
// while the queue is full are dropped.
type Source struct {
	*taptempo.Queue
	sub *nats.Subscription

	invalid atomic.Int64
}

func newSource(depth int) *Source {
	return &Source{Queue: taptempo.NewQueue(depth)}
}

// Subscribe returns a source queueing up to depth batches from subject.
func Subscribe(nc *nats.Conn, subject string, depth int) (*Source, error) {
	s := newSource(depth)

	sub, err := nc.Subscribe(subject, s.handle)
	if err != nil {
		return nil, err
	}
	s.sub = sub

	return s, nil
}

func (s *Source) handle(msg *nats.Msg) {
	batch, err := Decode(msg.Data)
	if err != nil {
		s.invalid.Add(1)
		return
	}
	s.Offer(batch)
}

// Invalid returns the number of messages that could not be decoded.
func (s *Source) Invalid() int64 {
	return s.invalid.Load()
}

// Close unsubscribes. Batch returns io.EOF once the queue is empty.
func (s *Source) Close() error {
	s.Queue.Close()
	if s.sub != nil {
		return s.sub.Unsubscribe()
	}
	return nil
}
