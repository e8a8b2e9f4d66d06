// Package ble receives accelerometer sample batches from a Bluetooth Low
// Energy peripheral that notifies them on a GATT characteristic.
package ble

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"tinygo.org/x/bluetooth"

	"github.com/cgxeiji/taptempo"
	"github.com/cgxeiji/taptempo/stream"
)

var (
	// ErrNotFound is returned when the peripheral is not seen before the
	// scan timeout.
	ErrNotFound = errors.New("ble: device not found")
	// ErrNoCharacteristic is returned when the peripheral does not expose
	// the requested service or characteristic.
	ErrNoCharacteristic = errors.New("ble: characteristic not found")
)

// Source queues the batches notified by a peripheral. Each notification is
// one batch of little-endian 16 bit samples.
type Source struct {
	*taptempo.Queue
	once sync.Once

	disconnect func() error

	invalid atomic.Int64
}

func newSource(depth int) *Source {
	return &Source{Queue: taptempo.NewQueue(depth)}
}

// Config selects the peripheral and characteristic to read from.
type Config struct {
	// MAC is the address of the peripheral, as printed by a scanner.
	MAC            string
	Service        string
	Characteristic string
	// ScanTimeout bounds the search for the peripheral. 0 means 10s.
	ScanTimeout time.Duration
	// Depth is the number of batches queued before new ones are dropped.
	Depth int
}

// Connect enables the adapter, scans for the peripheral, connects to it and
// subscribes to the characteristic notifications.
func Connect(ctx context.Context, adapter *bluetooth.Adapter, cfg Config) (*Source, error) {
	svcUUID, err := bluetooth.ParseUUID(cfg.Service)
	if err != nil {
		return nil, fmt.Errorf("ble: invalid service UUID %q: %w", cfg.Service, err)
	}
	charUUID, err := bluetooth.ParseUUID(cfg.Characteristic)
	if err != nil {
		return nil, fmt.Errorf("ble: invalid characteristic UUID %q: %w", cfg.Characteristic, err)
	}

	if err := adapter.Enable(); err != nil {
		return nil, fmt.Errorf("ble: could not enable adapter: %w (try running with sudo or setcap cap_net_admin+ep)", err)
	}

	addr, err := find(ctx, adapter, cfg.MAC, cfg.ScanTimeout)
	if err != nil {
		return nil, err
	}

	device, err := adapter.Connect(addr, bluetooth.ConnectionParams{})
	if err != nil {
		return nil, fmt.Errorf("ble: could not connect to %s: %w", cfg.MAC, err)
	}

	services, err := device.DiscoverServices([]bluetooth.UUID{svcUUID})
	if err != nil || len(services) == 0 {
		device.Disconnect()
		return nil, fmt.Errorf("ble: service %s: %w", cfg.Service, ErrNoCharacteristic)
	}
	chars, err := services[0].DiscoverCharacteristics([]bluetooth.UUID{charUUID})
	if err != nil || len(chars) == 0 {
		device.Disconnect()
		return nil, fmt.Errorf("ble: characteristic %s: %w", cfg.Characteristic, ErrNoCharacteristic)
	}

	s := newSource(cfg.Depth)
	s.disconnect = device.Disconnect
	if err := chars[0].EnableNotifications(s.handle); err != nil {
		device.Disconnect()
		return nil, fmt.Errorf("ble: could not enable notifications: %w", err)
	}

	return s, nil
}

// find scans until a device with the given MAC shows up.
func find(ctx context.Context, adapter *bluetooth.Adapter, mac string, timeout time.Duration) (bluetooth.Address, error) {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	found := make(chan bluetooth.Address, 1)
	go func() {
		_ = adapter.Scan(func(adapter *bluetooth.Adapter, result bluetooth.ScanResult) {
			if !strings.EqualFold(result.Address.String(), mac) {
				return
			}
			select {
			case found <- result.Address:
			default:
			}
			_ = adapter.StopScan()
		})
	}()

	select {
	case addr := <-found:
		return addr, nil
	case <-ctx.Done():
		_ = adapter.StopScan()
		var zero bluetooth.Address
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return zero, fmt.Errorf("ble: %s: %w", mac, ErrNotFound)
		}
		return zero, ctx.Err()
	}
}

func (s *Source) handle(buf []byte) {
	batch, err := stream.Decode(buf)
	if err != nil {
		s.invalid.Add(1)
		return
	}
	s.Offer(batch)
}

// Invalid returns the number of notifications that could not be decoded.
func (s *Source) Invalid() int64 {
	return s.invalid.Load()
}

// Close disconnects from the peripheral.
func (s *Source) Close() error {
	var err error
	s.once.Do(func() {
		s.Queue.Close()
		if s.disconnect != nil {
			err = s.disconnect()
		}
	})
	return err
}
