package stream

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/nats-io/nats.go"
)

// Controller is the part of a tracker that can be driven remotely.
type Controller interface {
	Reset()
	SetSensitivity(s uint)
	Sensitivity() uint
}

// Control subscribes to "<prefix>.reset", which resets c, and
// "<prefix>.sensitivity", which sets the sensitivity from a decimal payload
// or, with an empty payload, replies with the current one. Requests with a
// reply subject get "ok", the sensitivity, or an error text back.
func Control(nc *nats.Conn, prefix string, c Controller) ([]*nats.Subscription, error) {
	handlers := map[string]func([]byte) (string, error){
		prefix + ".reset": func([]byte) (string, error) {
			c.Reset()
			return "ok", nil
		},
		prefix + ".sensitivity": func(data []byte) (string, error) {
			return sensitivity(c, data)
		},
	}

	var subs []*nats.Subscription
	for subject, h := range handlers {
		h := h
		sub, err := nc.Subscribe(subject, func(msg *nats.Msg) {
			out, err := h(msg.Data)
			if err != nil {
				out = err.Error()
			}
			if msg.Reply != "" {
				msg.Respond([]byte(out))
			}
		})
		if err != nil {
			for _, s := range subs {
				s.Unsubscribe()
			}
			return nil, fmt.Errorf("stream: could not subscribe to %s: %w", subject, err)
		}
		subs = append(subs, sub)
	}

	return subs, nil
}

func sensitivity(c Controller, data []byte) (string, error) {
	text := strings.TrimSpace(string(data))
	if text == "" {
		return strconv.FormatUint(uint64(c.Sensitivity()), 10), nil
	}

	s, err := strconv.ParseUint(text, 10, 32)
	if err != nil {
		return "", fmt.Errorf("stream: invalid sensitivity %q", text)
	}
	c.SetSensitivity(uint(s))

	return "ok", nil
}
