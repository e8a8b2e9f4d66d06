// Package mpu6050 reads a single accelerometer axis from an MPU-6050 over
// I²C, in batches taken from the chip FIFO.
package mpu6050

import (
	"context"
	"errors"
	"fmt"
	"time"

	"periph.io/x/periph/conn/i2c"
	"periph.io/x/periph/conn/i2c/i2creg"
	"periph.io/x/periph/host"
)

var (
	// ErrNotDevice throws an error when the WHO_AM_I register does not match
	// an MPU-6050 signature (0x68).
	ErrNotDevice error = errors.New("mpu6050: WHO_AM_I does not match (0x68)")
	// ErrOverflow is returned by Batch when the FIFO filled up before it was
	// read. The FIFO is emptied and the samples are lost.
	ErrOverflow error = errors.New("mpu6050: FIFO overflow")
)

// Device defines an MPU-6050 device.
type Device struct {
	dev *i2c.Dev
	bus i2c.BusCloser

	axis Axis
	rate int
}

// New returns a new MPU-6050 device. By default, this samples the Z axis at
// 100 samples/s with a ±2g range and a 44 Hz low pass filter, and queues the
// samples in the FIFO.
//
// Argument "busName" can be used to specify the exact bus to use ("/dev/i2c-1", "I2C1", "1").
// Argument "addr" can be used to specify alternative address if default (0x68) is unavailable and changed.
// If "busName" argument is specified as an empty string "" the first available bus will be used.
func New(busName string, addr uint16, options ...Option) (*Device, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("mpu6050: could not initialize host: %w", err)
	}

	bus, err := i2creg.Open(busName)
	if err != nil {
		return nil, fmt.Errorf("mpu6050: could not open I2C bus: %w", err)
	}

	d, err := NewI2C(bus, addr, options...)
	if err != nil {
		bus.Close()
		return nil, err
	}
	d.bus = bus

	return d, nil
}

// NewI2C returns a new MPU-6050 device on an already opened bus. The bus is
// not closed by Close.
func NewI2C(bus i2c.Bus, addr uint16, options ...Option) (*Device, error) {
	if addr == 0 {
		addr = Addr
	}

	d := &Device{
		dev: &i2c.Dev{
			Addr: addr,
			Bus:  bus,
		},
		axis: Z,
		rate: 100,
	}

	id, err := d.Read(RegWhoAmI)
	if err != nil {
		return nil, fmt.Errorf("mpu6050: could not get WHO_AM_I: %w", err)
	}
	if id != WhoAmI {
		return nil, ErrNotDevice
	}

	if err := d.Reset(); err != nil {
		return nil, fmt.Errorf("mpu6050: could not reset device: %w", err)
	}
	defaults := []Option{
		Clock(ClockPLLX),
		LowPass(DLPF44),
		SampleRate(100),
		Range(FS2G),
	}
	if _, err := d.Options(append(defaults, options...)...); err != nil {
		return nil, fmt.Errorf("mpu6050: could not initialize device: %w", err)
	}
	if err := d.Write(FIFOEn, AccelFIFO); err != nil {
		return nil, fmt.Errorf("mpu6050: could not enable FIFO: %w", err)
	}
	if err := d.resetFIFO(); err != nil {
		return nil, fmt.Errorf("mpu6050: could not enable FIFO: %w", err)
	}

	return d, nil
}

// Close puts the device to sleep and closes the bus opened by New.
func (d *Device) Close() error {
	err := d.Shutdown()
	if d.bus != nil {
		if cerr := d.bus.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

// SampleRate returns the configured sample rate in samples/s.
func (d *Device) SampleRate() int {
	return d.rate
}

func (d *Device) waitUntil(reg, flag byte, bit byte) error {
	switch bit {
	case 1:
		for {
			state, err := d.Read(reg)
			if err != nil {
				return fmt.Errorf("could not wait for %v in %v to be %v", flag, reg, bit)
			} else if state&flag != 0 {
				return nil
			}
		}
	case 0:
		for {
			if state, err := d.Read(reg); err != nil {
				return fmt.Errorf("could not wait for %v in %v to be %v", flag, reg, bit)
			} else if state&flag == 0 {
				return nil
			}
		}
	}

	return fmt.Errorf("invalid bit %v, it should be 1 or 0", bit)
}

// Read reads a single byte from a register.
func (d *Device) Read(reg byte) (byte, error) {
	b := make([]byte, 1)
	if err := d.dev.Tx([]byte{reg}, b); err != nil {
		return 0, fmt.Errorf("mpu6050: could not read byte: %w", err)
	}

	return b[0], nil
}

// ReadBytes read n bytes from a register.
func (d *Device) ReadBytes(reg byte, n int) ([]byte, error) {
	b := make([]byte, n)
	if err := d.dev.Tx([]byte{reg}, b); err != nil {
		return nil, fmt.Errorf("mpu6050: could not read %d bytes: %w", n, err)
	}

	return b, nil
}

// Write writes a byte to a register.
func (d *Device) Write(reg, data byte) error {
	n, err := d.dev.Write([]byte{reg, data})
	if err != nil {
		return err
	}
	n-- // remove register write
	if n != 1 {
		return fmt.Errorf("write: wrong number of bytes written: want %d, got %d", 1, n)
	}

	return nil
}

// Reset resets the device. All registers are reset to their power-on state
// and the device is left sleeping.
func (d *Device) Reset() error {
	if err := d.Write(PwrMgmt1, DeviceReset); err != nil {
		return fmt.Errorf("mpu6050: could not reset: %w", err)
	}
	if err := d.waitUntil(PwrMgmt1, DeviceReset, 0); err != nil {
		return fmt.Errorf("mpu6050: could not reset: %w", err)
	}

	return nil
}

// Accel returns the current raw reading of each axis.
func (d *Device) Accel() (x, y, z int16, err error) {
	b, err := d.ReadBytes(AccelXOutH, sampleSize)
	if err != nil {
		return 0, 0, 0, err
	}

	return word(b[0:]), word(b[2:]), word(b[4:]), nil
}

// Batch waits until n samples are queued in the FIFO and returns the
// configured axis of each one, oldest first.
func (d *Device) Batch(ctx context.Context, n int) ([]int16, error) {
	want := n * sampleSize
	if want > fifoSize {
		return nil, fmt.Errorf("mpu6050: batch of %d samples does not fit in the FIFO", n)
	}

	for {
		count, err := d.available()
		if err != nil {
			return nil, fmt.Errorf("mpu6050: error reading available data: %w", err)
		}
		if count >= fifoSize {
			if err := d.resetFIFO(); err != nil {
				return nil, fmt.Errorf("mpu6050: could not empty FIFO: %w", err)
			}
			return nil, ErrOverflow
		}
		if count >= want {
			break
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(time.Second / time.Duration(d.rate)):
		}
	}

	bytes, err := d.ReadBytes(FIFORW, want)
	if err != nil {
		return nil, err
	}

	samples := make([]int16, n)
	for i := range samples {
		samples[i] = word(bytes[i*sampleSize+2*int(d.axis):])
	}

	return samples, nil
}

func (d *Device) available() (int, error) {
	b, err := d.ReadBytes(FIFOCountH, 2)
	if err != nil {
		return 0, err
	}

	return int(b[0])<<8 | int(b[1]), nil
}

func (d *Device) resetFIFO() error {
	if err := d.Write(UserCtrl, FIFOReset); err != nil {
		return err
	}
	return d.Write(UserCtrl, FIFOEnable)
}

// Shutdown sets the device into sleep mode.
func (d *Device) Shutdown() error {
	_, err := d.config(PwrMgmt1, ^Sleep, Sleep)

	return err
}

// Startup wakes the device from sleep mode.
func (d *Device) Startup() error {
	_, err := d.config(PwrMgmt1, ^Sleep, 0)

	return err
}

func word(b []byte) int16 {
	return int16(uint16(b[0])<<8 | uint16(b[1]))
}

// Stream reads batches of n samples from a device.
type Stream struct {
	d *Device
	n int
}

// Stream returns a sampler delivering n samples per batch.
func (d *Device) Stream(n int) *Stream {
	return &Stream{d: d, n: n}
}

// Batch returns the next n samples.
func (s *Stream) Batch(ctx context.Context) ([]int16, error) {
	return s.d.Batch(ctx, s.n)
}
