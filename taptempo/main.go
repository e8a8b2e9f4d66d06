package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/nats-io/nats.go"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"tinygo.org/x/bluetooth"

	"github.com/cgxeiji/taptempo"
	"github.com/cgxeiji/taptempo/ble"
	"github.com/cgxeiji/taptempo/mpu6050"
	"github.com/cgxeiji/taptempo/sim"
	"github.com/cgxeiji/taptempo/stream"
)

// Log categories.
const (
	categoryApp     = "App"
	categoryTracker = "Tracker"
	categoryNATS    = "NATS"
)

func main() {
	cfg, err := Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(cfg).ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func newRootCmd(cfg *Config) *cobra.Command {
	log := logrus.New()

	root := &cobra.Command{
		Use:   "taptempo",
		Short: "taptempo - measure a tap rate from an accelerometer",
		Long: `taptempo samples one accelerometer axis, detects taps as sharp jumps
between consecutive samples and reports the rate between them in beats per
minute, four times per second.

Samples come from a simulator, an MPU-6050 on an I2C bus, a NATS subject or a
Bluetooth LE peripheral.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.Validate(); err != nil {
				return err
			}
			level, err := logrus.ParseLevel(cfg.LogLevel)
			if err != nil {
				return fmt.Errorf("invalid log level: %w", err)
			}
			log.SetLevel(level)
			log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
			return nil
		},
	}
	cfg.Bind(root)

	root.AddCommand(&cobra.Command{
		Use:   "run",
		Short: "Estimate the tap rate from the selected source",
		RunE: func(cmd *cobra.Command, args []string) error {
			return estimate(cmd.Context(), cfg, log)
		},
	})
	root.AddCommand(&cobra.Command{
		Use:   "publish",
		Short: "Publish sample batches from the selected source to NATS",
		RunE: func(cmd *cobra.Command, args []string) error {
			return publish(cmd.Context(), cfg, log)
		},
	})

	return root
}

// estimate runs a tracker over the configured source until it ends or the
// command is interrupted.
func estimate(ctx context.Context, cfg *Config, log *logrus.Logger) error {
	var nc *nats.Conn
	if cfg.Source == "nats" || cfg.Publish {
		var err error
		nc, err = stream.Connect(cfg.NATSURL, "taptempo")
		if err != nil {
			return fmt.Errorf("could not connect to NATS: %w", err)
		}
		defer nc.Drain()
	}

	src, rate, closeSrc, err := openSource(ctx, cfg, nc)
	if err != nil {
		return err
	}
	defer closeSrc()

	tr := taptempo.New(
		taptempo.Capacity(cfg.Capacity),
		taptempo.SampleRate(rate),
		taptempo.Sensitivity(cfg.Sensitivity),
		taptempo.Shift(cfg.ShiftBits()),
	)

	sinks := []taptempo.Sink{logSink(log)}
	if nc != nil {
		if cfg.Publish {
			sinks = append(sinks, stream.NewSink(nc, cfg.Results))
		}
		subs, err := stream.Control(nc, cfg.Control, tr)
		if err != nil {
			return err
		}
		defer func() {
			for _, s := range subs {
				s.Unsubscribe()
			}
		}()
		log.WithFields(logrus.Fields{
			"category": categoryNATS,
			"reset":    cfg.Control + ".reset",
			"set":      cfg.Control + ".sensitivity",
		}).Info("listening for controls")
	}

	log.WithFields(logrus.Fields{
		"category":    categoryApp,
		"source":      cfg.Source,
		"rate":        rate,
		"capacity":    cfg.Capacity,
		"sensitivity": cfg.Sensitivity,
		"shift":       cfg.ShiftBits(),
	}).Info("tracking taps")

	err = taptempo.Run(ctx, tr, src, sinks...)
	if errors.Is(err, context.Canceled) {
		err = nil
	}
	log.WithField("category", categoryApp).Info("stopped")
	return err
}

// publish forwards batches of a local source to NATS, to be estimated by a
// "run --source nats" elsewhere.
func publish(ctx context.Context, cfg *Config, log *logrus.Logger) error {
	if cfg.Source == "nats" {
		return errors.New("publish needs a local source: sim, i2c or ble")
	}

	nc, err := stream.Connect(cfg.NATSURL, "taptempo-publisher")
	if err != nil {
		return fmt.Errorf("could not connect to NATS: %w", err)
	}
	defer nc.Drain()

	src, rate, closeSrc, err := openSource(ctx, cfg, nil)
	if err != nil {
		return err
	}
	defer closeSrc()

	log.WithFields(logrus.Fields{
		"category": categoryNATS,
		"source":   cfg.Source,
		"rate":     rate,
		"subject":  cfg.Subject,
	}).Info("publishing samples")

	sent, err := stream.Forward(ctx, src, nc, cfg.Subject)
	log.WithFields(logrus.Fields{
		"category": categoryNATS,
		"samples":  sent,
	}).Info("stopped")
	if errors.Is(err, io.EOF) || errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// openSource opens the configured sampler and returns it with its actual
// sample rate and a function releasing it.
func openSource(ctx context.Context, cfg *Config, nc *nats.Conn) (taptempo.Sampler, int, func(), error) {
	switch cfg.Source {
	case "sim":
		tp := sim.New(cfg.Rate, cfg.SimBPM,
			sim.BatchSize(cfg.Batch),
			sim.Limit(cfg.SimLimit),
			sim.Realtime(true),
		)
		return tp, cfg.Rate, tp.Stop, nil

	case "i2c":
		axis, err := cfg.axis()
		if err != nil {
			return nil, 0, nil, err
		}
		d, err := mpu6050.New(cfg.Bus, cfg.Addr,
			mpu6050.SampleRate(cfg.Rate),
			mpu6050.OnAxis(axis),
		)
		if err != nil {
			return nil, 0, nil, err
		}
		return d.Stream(cfg.Batch), d.SampleRate(), func() { d.Close() }, nil

	case "nats":
		s, err := stream.Subscribe(nc, cfg.Subject, 16)
		if err != nil {
			return nil, 0, nil, fmt.Errorf("could not subscribe to %s: %w", cfg.Subject, err)
		}
		return s, cfg.Rate, func() { s.Close() }, nil

	case "ble":
		s, err := ble.Connect(ctx, bluetooth.DefaultAdapter, ble.Config{
			MAC:            cfg.BLEMAC,
			Service:        cfg.BLEService,
			Characteristic: cfg.BLECharacteristic,
			Depth:          16,
		})
		if err != nil {
			return nil, 0, nil, err
		}
		return s, cfg.Rate, func() { s.Close() }, nil
	}

	return nil, 0, nil, fmt.Errorf("invalid source: %s", cfg.Source)
}

// logSink logs every reading. Readings without a rate are logged at debug
// level so a quiet sensor does not flood the output.
func logSink(log logrus.FieldLogger) taptempo.Sink {
	return taptempo.SinkFunc(func(ctx context.Context, r taptempo.Reading) error {
		entry := log.WithFields(logrus.Fields{
			"category":    categoryTracker,
			"sensitivity": r.Sensitivity,
		})
		if !r.Valid {
			entry.Debug(r.String())
			return nil
		}
		entry.WithFields(logrus.Fields{
			"bpm":     r.BPM,
			"clamped": r.Clamped,
		}).Info(r.String())
		return nil
	})
}
