package main

import (
	"context"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"

	"github.com/cgxeiji/taptempo"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Source != "sim" || cfg.Sensitivity != taptempo.DefaultSensitivity || cfg.Batch != taptempo.DefaultBatchSize {
		t.Fatalf("Load() = %+v, want defaults", cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
}

func TestLoadEnv(t *testing.T) {
	t.Setenv("TAPTEMPO_SOURCE", "i2c")
	t.Setenv("TAPTEMPO_SENSITIVITY", "80")
	t.Setenv("TAPTEMPO_I2C_ADDR", "0x69")
	t.Setenv("TAPTEMPO_PUBLISH", "true")
	t.Setenv("TAPTEMPO_SIM_BPM", "90.5")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Source != "i2c" || cfg.Sensitivity != 80 || cfg.Addr != 0x69 || !cfg.Publish || cfg.SimBPM != 90.5 {
		t.Fatalf("Load() = %+v, want values from the environment", cfg)
	}
}

func TestLoadInvalidEnv(t *testing.T) {
	t.Setenv("TAPTEMPO_RATE", "fast")
	if _, err := Load(); err == nil {
		t.Fatal("Load() should fail on an invalid rate")
	}
}

func TestFlagsOverrideEnv(t *testing.T) {
	t.Setenv("TAPTEMPO_SENSITIVITY", "80")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	cmd := newRootCmd(cfg)
	if err := cmd.ParseFlags([]string{"--sensitivity", "25", "--axis", "x"}); err != nil {
		t.Fatalf("ParseFlags() error = %v", err)
	}
	if cfg.Sensitivity != 25 || cfg.Axis != "x" {
		t.Fatalf("flags not applied: %+v", cfg)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(c *Config)
	}{
		{"source", func(c *Config) { c.Source = "usb" }},
		{"ble without peripheral", func(c *Config) { c.Source = "ble" }},
		{"rate", func(c *Config) { c.Rate = 0 }},
		{"batch", func(c *Config) { c.Batch = 0 }},
		{"capacity", func(c *Config) { c.Capacity = c.Batch }},
		{"shift", func(c *Config) { c.Shift = 16 }},
		{"axis", func(c *Config) { c.Axis = "w" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load()
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			tt.modify(cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("Validate() should fail")
			}
		})
	}
}

func TestShiftBits(t *testing.T) {
	cfg := &Config{Source: "sim", Shift: -1}
	if s := cfg.ShiftBits(); s != 3 {
		t.Fatalf("ShiftBits() = %d, want 3", s)
	}
	cfg.Source = "i2c"
	if s := cfg.ShiftBits(); s != 7 {
		t.Fatalf("ShiftBits() = %d, want 7", s)
	}
	cfg.Shift = 0
	if s := cfg.ShiftBits(); s != 0 {
		t.Fatalf("ShiftBits() = %d, want 0", s)
	}
}

func TestLogSink(t *testing.T) {
	log, hook := test.NewNullLogger()
	log.SetLevel(logrus.DebugLevel)
	sink := logSink(log)

	if err := sink.Report(context.Background(), taptempo.Reading{Sensitivity: 60}); err != nil {
		t.Fatalf("Report() error = %v", err)
	}
	if e := hook.LastEntry(); e.Level != logrus.DebugLevel || e.Message != "-- bpm" {
		t.Fatalf("logged %v %q, want debug \"-- bpm\"", e.Level, e.Message)
	}

	if err := sink.Report(context.Background(), taptempo.Reading{BPM: 118, Valid: true}); err != nil {
		t.Fatalf("Report() error = %v", err)
	}
	e := hook.LastEntry()
	if e.Level != logrus.InfoLevel || e.Message != "118 bpm" || e.Data["bpm"] != 118 {
		t.Fatalf("logged %v %q %v, want info \"118 bpm\"", e.Level, e.Message, e.Data)
	}
}

func TestRunSimulated(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	cfg.SimLimit = cfg.Batch * 2
	cfg.Rate = 1000

	log, hook := test.NewNullLogger()
	if err := estimate(context.Background(), cfg, log); err != nil {
		t.Fatalf("estimate() error = %v", err)
	}
	if e := hook.LastEntry(); e == nil || e.Message != "stopped" {
		t.Fatalf("last log entry = %v, want \"stopped\"", e)
	}
}
