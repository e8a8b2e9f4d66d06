// Package stream carries sample batches and readings over NATS.
package stream

import (
	"time"

	"github.com/nats-io/nats.go"
)

// Connect connects to a NATS server and keeps reconnecting for as long as
// the connection is used.
func Connect(url, name string) (*nats.Conn, error) {
	return nats.Connect(
		url,
		nats.Name(name),
		nats.Timeout(3*time.Second),
		nats.ReconnectWait(500*time.Millisecond),
		nats.MaxReconnects(-1),
	)
}

// Publisher is the part of a NATS connection used to send messages.
type Publisher interface {
	Publish(subject string, data []byte) error
}
