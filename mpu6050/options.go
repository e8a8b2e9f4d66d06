package mpu6050

import "fmt"

// Axis selects which accelerometer axis is sampled.
type Axis int

// Axes, in the order they are stored in the FIFO.
const (
	X Axis = iota
	Y
	Z
)

func (a Axis) String() string {
	switch a {
	case X:
		return "x"
	case Y:
		return "y"
	case Z:
		return "z"
	}
	return fmt.Sprintf("Axis(%d)", int(a))
}

// Option defines a functional option for the device.
type Option func(d *Device) (Option, error)

// Options set different configuration options and returns the previous value
// of the last option passed.
func (d *Device) Options(options ...Option) (Option, error) {
	var old Option
	var err error
	for _, opt := range options {
		old, err = opt(d)
		if err != nil {
			return nil, err
		}
	}

	return old, nil
}

func (d *Device) config(reg, mask, flag byte) (byte, error) {
	cfg, err := d.Read(reg)
	if err != nil {
		return 0, fmt.Errorf("could not get %v from %v: %w", mask, reg, err)
	}
	old := cfg &^ mask
	cfg &= mask
	cfg |= flag
	if err := d.Write(reg, cfg); err != nil {
		return 0, fmt.Errorf("could not set %v in %v: %w", flag, reg, err)
	}

	return old, nil
}

// OnAxis selects the axis returned by Batch. By default, the Z axis is used.
func OnAxis(a Axis) Option {
	return func(d *Device) (Option, error) {
		if a < X || a > Z {
			return nil, fmt.Errorf("mpu6050: invalid axis %v", a)
		}
		old := d.axis
		d.axis = a
		return OnAxis(old), nil
	}
}

// Clock selects the clock source. Clearing the register also wakes the
// device from sleep.
func Clock(src byte) Option {
	return func(d *Device) (Option, error) {
		old, err := d.config(PwrMgmt1, 0, src&^clockMask)
		if err != nil {
			return nil, fmt.Errorf("mpu6050: could not configure clock: %w", err)
		}

		return Clock(old), nil
	}
}

// LowPass sets the digital low pass filter of the device.
func LowPass(cfg byte) Option {
	return func(d *Device) (Option, error) {
		old, err := d.config(Config, dlpfMask, cfg&^dlpfMask)
		if err != nil {
			return nil, fmt.Errorf("mpu6050: could not configure low pass filter: %w", err)
		}

		return LowPass(old), nil
	}
}

// SampleRate sets the sample rate in samples/s. It accepts values from 4 to
// 1000 and is rounded to the nearest rate the divider can produce.
func SampleRate(hz int) Option {
	return func(d *Device) (Option, error) {
		if hz > baseRate {
			hz = baseRate
		}
		if hz < 4 {
			hz = 4
		}
		div := byte((baseRate+hz/2)/hz - 1)

		old, err := d.config(SmplrtDiv, 0, div)
		if err != nil {
			return nil, fmt.Errorf("mpu6050: could not configure sample rate: %w", err)
		}
		d.rate = baseRate / (int(div) + 1)

		return SampleRate(baseRate / (int(old) + 1)), nil
	}
}

// Range sets the full scale range of the accelerometer.
func Range(fs byte) Option {
	return func(d *Device) (Option, error) {
		old, err := d.config(AccelConfig, fsMask, fs&^fsMask)
		if err != nil {
			return nil, fmt.Errorf("mpu6050: could not configure range: %w", err)
		}

		return Range(old), nil
	}
}
