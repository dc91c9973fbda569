package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/phsym/console-slog"
	"github.com/sweeney/irrigator/internal/dht"
	"github.com/sweeney/irrigator/internal/gpio"
	"github.com/sweeney/irrigator/internal/logic"
)

type config struct {
	chip           string
	backend        gpio.Backend
	pinSensor      int
	pinValve       int
	valveActiveLow bool

	model  dht.Model
	timing dht.Timing
	poll   time.Duration

	policy logic.Policy

	broker     string
	heartbeat  time.Duration
	httpAddr   string
	statusFile string

	logFormat    string
	logLevel     slog.Level
	printReading bool
}

// parseFlags parses and validates the command line. Timing overrides left
// at zero keep the model's datasheet value.
func parseFlags(args []string, output io.Writer) (config, error) {
	fs := flag.NewFlagSet("irrigator", flag.ContinueOnError)
	fs.SetOutput(output)

	def := logic.DefaultPolicy()

	chip := fs.String("chip", gpio.DefaultChip, "GPIO character device (cdev backend)")
	backend := fs.String("backend", string(gpio.BackendCdev), `GPIO backend for the sensor line: "cdev" or "rpio"`)
	pinSensor := fs.Int("pin-sensor", gpio.DefaultPinSensor, "BCM pin number of the sensor data line")
	pinValve := fs.Int("pin-valve", gpio.DefaultPinValve, "BCM pin number of the valve relay")
	valveActiveLow := fs.Bool("valve-active-low", false, "Relay board opens the valve on a low output")
	model := fs.String("model", "dht11", "Sensor model: dht11, dht22 or am2302")
	poll := fs.Duration("poll", 2*time.Second, "Interval between sensor reads")
	startLow := fs.Duration("start-low", 0, "Override host start signal length (0 = model default)")
	responseTimeout := fs.Duration("response-timeout", 0, "Override sensor response timeout (0 = model default)")
	bitThreshold := fs.Duration("bit-threshold", 0, "Override 0/1 bit threshold (0 = model default)")
	maxHumidity := fs.Float64("max-humidity", def.MaxHumidity, "Water only below this relative humidity (%RH)")
	minTemperature := fs.Float64("min-temperature", def.MinTemperature, "Never water at or below this temperature (°C)")
	waterFor := fs.Duration("water-for", def.WaterFor, "How long the valve stays open per watering")
	cooldown := fs.Duration("cooldown", def.Cooldown, "Minimum time between closing the valve and opening it again")
	broker := fs.String("broker", "tcp://192.168.1.200:1883", "MQTT broker address (empty to disable)")
	heartbeat := fs.Duration("heartbeat", 15*time.Minute, "Heartbeat interval (0 to disable)")
	httpAddr := fs.String("http", ":80", "HTTP status address (empty to disable)")
	statusFile := fs.String("status-file", "/run/irrigator.status", "Status line file (empty to disable)")
	logFormat := fs.String("log-format", "console", `Log format: "console" or "json"`)
	logLevel := fs.String("log-level", "info", "Log level: debug, info, warn or error")
	printReading := fs.Bool("print-reading", false, "Read the sensor once, print the result and exit")

	if err := fs.Parse(args); err != nil {
		return config{}, err
	}
	if fs.NArg() > 0 {
		return config{}, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}

	cfg := config{
		chip:           *chip,
		pinSensor:      *pinSensor,
		pinValve:       *pinValve,
		valveActiveLow: *valveActiveLow,
		poll:           *poll,
		policy: logic.Policy{
			MaxHumidity:    *maxHumidity,
			MinTemperature: *minTemperature,
			WaterFor:       *waterFor,
			Cooldown:       *cooldown,
		},
		broker:       *broker,
		heartbeat:    *heartbeat,
		httpAddr:     *httpAddr,
		statusFile:   *statusFile,
		logFormat:    *logFormat,
		printReading: *printReading,
	}

	var errs []error
	var err error

	if cfg.backend, err = gpio.ParseBackend(*backend); err != nil {
		errs = append(errs, err)
	}
	if cfg.model, err = dht.ParseModel(*model); err != nil {
		errs = append(errs, err)
	}
	if cfg.pinSensor == cfg.pinValve {
		errs = append(errs, fmt.Errorf("sensor and valve share pin %d", cfg.pinSensor))
	}

	cfg.timing = dht.DefaultTiming(cfg.model)
	if *startLow != 0 {
		cfg.timing.StartLow = *startLow
	}
	if *responseTimeout != 0 {
		cfg.timing.ResponseTimeout = *responseTimeout
	}
	if *bitThreshold != 0 {
		cfg.timing.BitThreshold = *bitThreshold
	}
	if err := cfg.timing.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("timing: %w", err))
	}
	if cfg.poll < cfg.timing.MinInterval {
		errs = append(errs, fmt.Errorf("poll %v is shorter than the %v minimum for %v", cfg.poll, cfg.timing.MinInterval, cfg.model))
	}

	if err := cfg.policy.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("policy: %w", err))
	}
	if cfg.heartbeat < 0 {
		errs = append(errs, errors.New("heartbeat must not be negative"))
	}

	if cfg.logFormat != "console" && cfg.logFormat != "json" {
		errs = append(errs, fmt.Errorf("unknown log format %q", cfg.logFormat))
	}
	if err := cfg.logLevel.UnmarshalText([]byte(*logLevel)); err != nil {
		errs = append(errs, fmt.Errorf("log level: %w", err))
	}

	if err := errors.Join(errs...); err != nil {
		return config{}, err
	}
	return cfg, nil
}

// newLogger builds the process logger. Console output is for a terminal
// or journald; json is for log shippers.
func newLogger(w io.Writer, format string, level slog.Level) *slog.Logger {
	var handler slog.Handler
	if strings.EqualFold(format, "json") {
		handler = slog.NewJSONHandler(w, &slog.HandlerOptions{
			Level: level,
			ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
				if a.Key == slog.TimeKey {
					a.Key = "ts"
				}
				return a
			},
		})
	} else {
		handler = console.NewHandler(w, &console.HandlerOptions{Level: level})
	}
	return slog.New(handler)
}
