package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/cgxeiji/taptempo"
	"github.com/cgxeiji/taptempo/mpu6050"
)

// Config holds the configuration of the command.
type Config struct {
	Source   string
	LogLevel string

	// Tracker
	Sensitivity uint
	Shift       int
	Rate        int
	Batch       int
	Capacity    int

	// I2C accelerometer
	Bus  string
	Addr uint16
	Axis string

	// NATS
	NATSURL string
	Subject string
	Results string
	Control string
	Publish bool

	// Simulator
	SimBPM   float64
	SimLimit int

	// Bluetooth LE peripheral
	BLEMAC            string
	BLEService        string
	BLECharacteristic string
}

// Load returns the defaults overridden by a .env file, if any, and then by
// TAPTEMPO_* environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		Source:      "sim",
		LogLevel:    "info",
		Sensitivity: taptempo.DefaultSensitivity,
		Shift:       -1,
		Rate:        taptempo.DefaultSampleRate,
		Batch:       taptempo.DefaultBatchSize,
		Capacity:    taptempo.DefaultCapacity,
		Addr:        mpu6050.Addr,
		Axis:        "z",
		NATSURL:     "nats://127.0.0.1:4222",
		Subject:     "taptempo.samples",
		Results:     "taptempo.bpm",
		Control:     "taptempo",
		SimBPM:      120,
	}

	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to load .env file: %w", err)
		}
	}

	cfg.Source = getEnv("TAPTEMPO_SOURCE", cfg.Source)
	cfg.LogLevel = getEnv("TAPTEMPO_LOG_LEVEL", cfg.LogLevel)
	cfg.Bus = getEnv("TAPTEMPO_I2C_BUS", cfg.Bus)
	cfg.Axis = getEnv("TAPTEMPO_AXIS", cfg.Axis)
	cfg.NATSURL = getEnv("TAPTEMPO_NATS_URL", cfg.NATSURL)
	cfg.Subject = getEnv("TAPTEMPO_SUBJECT", cfg.Subject)
	cfg.Results = getEnv("TAPTEMPO_RESULTS", cfg.Results)
	cfg.Control = getEnv("TAPTEMPO_CONTROL", cfg.Control)
	cfg.BLEMAC = getEnv("TAPTEMPO_BLE_MAC", cfg.BLEMAC)
	cfg.BLEService = getEnv("TAPTEMPO_BLE_SERVICE", cfg.BLEService)
	cfg.BLECharacteristic = getEnv("TAPTEMPO_BLE_CHARACTERISTIC", cfg.BLECharacteristic)

	var err error
	if cfg.Sensitivity, err = getEnvUint("TAPTEMPO_SENSITIVITY", cfg.Sensitivity); err != nil {
		return nil, err
	}
	if cfg.Shift, err = getEnvInt("TAPTEMPO_SHIFT", cfg.Shift); err != nil {
		return nil, err
	}
	if cfg.Rate, err = getEnvInt("TAPTEMPO_RATE", cfg.Rate); err != nil {
		return nil, err
	}
	if cfg.Batch, err = getEnvInt("TAPTEMPO_BATCH", cfg.Batch); err != nil {
		return nil, err
	}
	if cfg.Capacity, err = getEnvInt("TAPTEMPO_CAPACITY", cfg.Capacity); err != nil {
		return nil, err
	}
	if cfg.SimLimit, err = getEnvInt("TAPTEMPO_SIM_LIMIT", cfg.SimLimit); err != nil {
		return nil, err
	}
	if v := getEnv("TAPTEMPO_I2C_ADDR", ""); v != "" {
		addr, err := strconv.ParseUint(v, 0, 16)
		if err != nil {
			return nil, fmt.Errorf("invalid TAPTEMPO_I2C_ADDR %q: %w", v, err)
		}
		cfg.Addr = uint16(addr)
	}
	if v := getEnv("TAPTEMPO_PUBLISH", ""); v != "" {
		if cfg.Publish, err = strconv.ParseBool(v); err != nil {
			return nil, fmt.Errorf("invalid TAPTEMPO_PUBLISH %q: %w", v, err)
		}
	}
	if v := getEnv("TAPTEMPO_SIM_BPM", ""); v != "" {
		if cfg.SimBPM, err = strconv.ParseFloat(v, 64); err != nil {
			return nil, fmt.Errorf("invalid TAPTEMPO_SIM_BPM %q: %w", v, err)
		}
	}

	return cfg, nil
}

// Bind registers the configuration as persistent flags of cmd, using the
// loaded values as defaults.
func (c *Config) Bind(cmd *cobra.Command) {
	f := cmd.PersistentFlags()
	f.StringVar(&c.Source, "source", c.Source, "Sample source: sim, i2c, nats or ble")
	f.StringVar(&c.LogLevel, "log-level", c.LogLevel, "Log level")

	f.UintVar(&c.Sensitivity, "sensitivity", c.Sensitivity, "Jump between two samples above which a tap is detected")
	f.IntVar(&c.Shift, "shift", c.Shift, "Right shift applied to raw samples (-1 picks one for the source)")
	f.IntVar(&c.Rate, "rate", c.Rate, "Sample rate in Hz")
	f.IntVar(&c.Batch, "batch", c.Batch, "Samples per batch")
	f.IntVar(&c.Capacity, "capacity", c.Capacity, "Samples kept for the estimate")

	f.StringVar(&c.Bus, "bus", c.Bus, "I2C bus (empty selects the first one)")
	f.Uint16Var(&c.Addr, "addr", c.Addr, "I2C address of the MPU-6050")
	f.StringVar(&c.Axis, "axis", c.Axis, "Accelerometer axis: x, y or z")

	f.StringVar(&c.NATSURL, "nats", c.NATSURL, "NATS server URL")
	f.StringVar(&c.Subject, "subject", c.Subject, "NATS subject of sample batches")
	f.StringVar(&c.Results, "results", c.Results, "NATS subject readings are published to")
	f.StringVar(&c.Control, "control", c.Control, "NATS subject prefix of the reset and sensitivity controls")
	f.BoolVar(&c.Publish, "publish", c.Publish, "Publish readings to NATS")

	f.Float64Var(&c.SimBPM, "sim-bpm", c.SimBPM, "Tap rate of the simulator")
	f.IntVar(&c.SimLimit, "sim-limit", c.SimLimit, "Samples generated by the simulator (0 runs forever)")

	f.StringVar(&c.BLEMAC, "ble-mac", c.BLEMAC, "Address of the Bluetooth LE peripheral")
	f.StringVar(&c.BLEService, "ble-service", c.BLEService, "Service UUID of the peripheral")
	f.StringVar(&c.BLECharacteristic, "ble-characteristic", c.BLECharacteristic, "Notifying characteristic UUID")
}

// Validate checks the configuration once flags are parsed.
func (c *Config) Validate() error {
	switch c.Source {
	case "sim", "i2c", "nats":
	case "ble":
		if c.BLEMAC == "" || c.BLEService == "" || c.BLECharacteristic == "" {
			return fmt.Errorf("source ble requires --ble-mac, --ble-service and --ble-characteristic")
		}
	default:
		return fmt.Errorf("invalid source: %s (must be sim, i2c, nats or ble)", c.Source)
	}

	if c.Rate <= 0 {
		return fmt.Errorf("invalid rate: %d", c.Rate)
	}
	if c.Batch <= 0 {
		return fmt.Errorf("invalid batch size: %d", c.Batch)
	}
	if c.Capacity <= c.Batch {
		return fmt.Errorf("capacity (%d) must be larger than the batch size (%d)", c.Capacity, c.Batch)
	}
	if c.Shift < -1 || c.Shift > 15 {
		return fmt.Errorf("invalid shift: %d", c.Shift)
	}
	if _, err := c.axis(); err != nil {
		return err
	}

	return nil
}

// ShiftBits returns the shift to apply. Readings of the simulator and of
// remote sources are in milli-g like the ones of the reference watch, which
// drops 3 bits; a ±2g MPU-6050 reads 16384 per g and drops 7.
func (c *Config) ShiftBits() uint {
	if c.Shift >= 0 {
		return uint(c.Shift)
	}
	if c.Source == "i2c" {
		return 7
	}
	return 3
}

func (c *Config) axis() (mpu6050.Axis, error) {
	switch c.Axis {
	case "x":
		return mpu6050.X, nil
	case "y":
		return mpu6050.Y, nil
	case "z":
		return mpu6050.Z, nil
	}
	return 0, fmt.Errorf("invalid axis: %s (must be x, y or z)", c.Axis)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return n, nil
}

func getEnvUint(key string, defaultValue uint) (uint, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue, nil
	}
	n, err := strconv.ParseUint(v, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return uint(n), nil
}
