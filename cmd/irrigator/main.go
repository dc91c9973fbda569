// Command irrigator reads a DHT11/DHT22 sensor on a single GPIO line, opens
// the irrigation valve when the garden is warm and dry, and publishes
// readings and valve changes to MQTT.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sweeney/irrigator/internal/dht"
	"github.com/sweeney/irrigator/internal/gpio"
	"github.com/sweeney/irrigator/internal/logic"
	"github.com/sweeney/irrigator/internal/mqtt"
	"github.com/sweeney/irrigator/internal/status"
	"github.com/sweeney/irrigator/internal/valve"
	"github.com/sweeney/irrigator/internal/web"
)

func main() {
	cfg, err := parseFlags(os.Args[1:], os.Stderr)
	if errors.Is(err, flag.ErrHelp) {
		os.Exit(0)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "irrigator: %v\n", err)
		os.Exit(2)
	}

	slog.SetDefault(newLogger(os.Stderr, cfg.logFormat, cfg.logLevel))

	if err := run(cfg); err != nil {
		slog.Error("fatal", "err", err)
		os.Exit(1)
	}
}

// sensorReader is the part of dht.Sensor the loop needs.
type sensorReader interface {
	Read() (dht.Reading, error)
}

func openSensor(cfg config) (*dht.Sensor, *gpio.OpenDrainLine, error) {
	pin, err := gpio.OpenPin(cfg.backend, cfg.chip, cfg.pinSensor)
	if err != nil {
		return nil, nil, fmt.Errorf("open sensor pin: %w", err)
	}
	line, err := gpio.NewOpenDrainLine(pin)
	if err != nil {
		pin.Close()
		return nil, nil, fmt.Errorf("init sensor line: %w", err)
	}
	sensor, err := dht.NewSensor(line, dht.NewSpinClock(), cfg.model, cfg.timing)
	if err != nil {
		line.Close()
		return nil, nil, err
	}
	return sensor, line, nil
}

func run(cfg config) error {
	sensor, line, err := openSensor(cfg)
	if err != nil {
		return err
	}
	defer line.Close()

	if cfg.printReading {
		return printReading(sensor, sensor.Model())
	}

	v, err := valve.NewCdevValve(cfg.chip, cfg.pinValve, cfg.valveActiveLow)
	if err != nil {
		return fmt.Errorf("init valve: %w", err)
	}
	defer v.Close()

	publisher, err := newPublisher(cfg.broker)
	if err != nil {
		return err
	}
	defer publisher.Close()

	// Tracker first so the STARTUP payload carries a snapshot.
	tracker := status.NewTracker(time.Now(), status.Config{
		Model:          sensor.Model().String(),
		Backend:        string(cfg.backend),
		PinSensor:      cfg.pinSensor,
		PinValve:       cfg.pinValve,
		PollMs:         cfg.poll.Milliseconds(),
		HeartbeatMs:    cfg.heartbeat.Milliseconds(),
		MaxHumidity:    cfg.policy.MaxHumidity,
		MinTemperature: cfg.policy.MinTemperature,
		WaterForMs:     cfg.policy.WaterFor.Milliseconds(),
		CooldownMs:     cfg.policy.Cooldown.Milliseconds(),
		Broker:         cfg.broker,
		HTTPPort:       cfg.httpAddr,
	})
	if net := readNetworkInfo(); net != nil {
		tracker.SetNetwork(net)
	}
	tracker.SetMQTTConnected(publisher.IsConnected())

	snap := tracker.Snapshot()
	startupEvent := mqtt.SystemEvent{
		Timestamp:  snap.Now,
		Event:      "STARTUP",
		Retained:   true,
		RawPayload: status.FormatStatusEvent(snap, "STARTUP", ""),
	}
	if err := publisher.PublishSystem(startupEvent); err != nil {
		slog.Warn("failed to publish startup event", "err", err)
	}

	if cfg.httpAddr != "" {
		srv := web.New(cfg.httpAddr, tracker)
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				slog.Error("http server error", "err", err)
			}
		}()
		defer srv.Shutdown(context.Background())
		slog.Info("http status server listening", "addr", cfg.httpAddr)
	}

	timing := sensor.Timing()
	slog.Info("started",
		"model", sensor.Model(),
		"backend", cfg.backend,
		"pin_sensor", cfg.pinSensor,
		"pin_valve", cfg.pinValve,
		"poll", cfg.poll,
		"start_low", timing.StartLow,
		"bit_threshold", timing.BitThreshold,
		"broker", cfg.broker,
		"heartbeat", cfg.heartbeat,
	)

	ticker := time.NewTicker(cfg.poll)
	defer ticker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	return runLoop(loopDeps{
		sensor:     sensor,
		valve:      v,
		publisher:  publisher,
		mqttStatus: publisher,
		tracker:    tracker,
		policy:     cfg.policy,
		heartbeat:  cfg.heartbeat,
		statusFile: cfg.statusFile,
	}, time.Now, ticker.C, sigCh)
}

type publisherWithStatus interface {
	mqtt.Publisher
	mqtt.ConnectionStatus
}

func newPublisher(broker string) (publisherWithStatus, error) {
	if broker == "" {
		slog.Info("mqtt disabled")
		return mqtt.NopPublisher{}, nil
	}
	host, _ := os.Hostname()
	p, err := mqtt.NewRealPublisher(broker, "irrigator-"+host)
	if err != nil {
		return nil, fmt.Errorf("init mqtt: %w", err)
	}
	return p, nil
}

func printReading(sensor sensorReader, model dht.Model) error {
	r, err := sensor.Read()
	if err != nil {
		return fmt.Errorf("read %v: %w", model, err)
	}
	fmt.Printf("Temperature: %.1f°C, Humidity: %.1f%%\n", r.Temperature, r.Humidity)
	return nil
}

// loopDeps is everything runLoop drives. publisher and tracker are
// required; the rest may be zero.
type loopDeps struct {
	sensor     sensorReader
	valve      valve.Valve
	publisher  mqtt.Publisher
	mqttStatus mqtt.ConnectionStatus
	tracker    *status.Tracker
	policy     logic.Policy
	heartbeat  time.Duration
	statusFile string
}

func runLoop(d loopDeps, now func() time.Time, tick <-chan time.Time, sig <-chan os.Signal) error {
	startTime := now()
	ctrl := logic.NewController(d.policy, startTime)

	for {
		select {
		case s := <-sig:
			slog.Info("shutting down", "signal", s)
			signalName := "UNKNOWN"
			if s == syscall.SIGINT {
				signalName = "SIGINT"
			} else if s == syscall.SIGTERM {
				signalName = "SIGTERM"
			}

			t := now()
			if ev := ctrl.ForceClose(t); ev != nil {
				setValve(d.valve, false)
				d.publishEvents([]logic.Event{*ev})
				d.tracker.Apply([]logic.Event{*ev}, ctrl.Counts())
			}

			d.refreshMQTT()
			snap := d.tracker.Snapshot()
			event := mqtt.SystemEvent{
				Timestamp:  t,
				Event:      "SHUTDOWN",
				Reason:     signalName,
				Retained:   true,
				RawPayload: status.FormatStatusEvent(snap, "SHUTDOWN", signalName),
			}
			if err := d.publisher.PublishSystem(event); err != nil {
				slog.Warn("failed to publish shutdown event", "err", err)
			}
			d.writeStatusLine(snap)
			return nil

		case <-tick:
			t := now()
			events := d.cycle(ctrl, t)
			d.publishEvents(events)
			d.tracker.Apply(events, ctrl.Counts())
			d.refreshMQTT()

			if hb := ctrl.CheckHeartbeat(t, d.heartbeat); hb != nil {
				slog.Info("heartbeat",
					"uptime", hb.Uptime.Truncate(time.Second),
					"readings", hb.Counts.Readings,
					"read_errors", hb.Counts.ReadErrors,
					"waterings", hb.Counts.Waterings,
				)
				if net := readNetworkInfo(); net != nil {
					d.tracker.SetNetwork(net)
				}
				snap := d.tracker.Snapshot()
				hbEvent := mqtt.SystemEvent{
					Timestamp:  hb.Timestamp,
					Event:      "HEARTBEAT",
					RawPayload: status.FormatStatusEvent(snap, "HEARTBEAT", ""),
				}
				if err := d.publisher.PublishSystem(hbEvent); err != nil {
					slog.Warn("heartbeat publish error", "err", err)
				}
			}

			d.writeStatusLine(d.tracker.Snapshot())
		}
	}
}

// cycle reads the sensor once, runs the controller and drives the valve.
// It returns the events that actually happened: a valve open that the
// relay refused is replaced by a close.
func (d loopDeps) cycle(ctrl *logic.Controller, t time.Time) []logic.Event {
	in := logic.Input{Time: t}
	r, err := d.sensor.Read()
	if err != nil {
		in.Err = err
		in.ErrKind = dht.KindOf(err)
		slog.Warn("sensor read failed", "kind", in.ErrKind, "err", err)
	} else {
		in.Reading = logic.Reading(r)
		slog.Debug("reading", "temperature", r.Temperature, "humidity", r.Humidity)
	}

	var out []logic.Event
	for _, ev := range ctrl.Process(in) {
		switch ev.Type {
		case logic.EventValveOpen:
			if err := setValve(d.valve, true); err != nil {
				closeEv := ctrl.AbortOpen(t)
				setValve(d.valve, false)
				if closeEv != nil {
					out = append(out, *closeEv)
				}
				continue
			}
		case logic.EventValveClose:
			setValve(d.valve, false)
		}
		out = append(out, ev)
	}
	return out
}

func setValve(v valve.Valve, open bool) error {
	if v == nil {
		return nil
	}
	if err := v.Set(open); err != nil {
		slog.Error("valve error", "open", open, "err", err)
		return err
	}
	slog.Info("valve", "state", valve.State(v))
	return nil
}

func (d loopDeps) publishEvents(events []logic.Event) {
	for _, ev := range events {
		if ev.Type != logic.EventReading {
			slog.Info("event", "type", ev.Type, "valve_open", ev.ValveOpen)
		}
		if err := d.publisher.Publish(ev); err != nil {
			// Don't stop watering decisions on a broker outage.
			slog.Warn("publish error", "event", ev.Type, "err", err)
		}
	}
}

func (d loopDeps) refreshMQTT() {
	if d.mqttStatus != nil {
		d.tracker.SetMQTTConnected(d.mqttStatus.IsConnected())
	}
}

func (d loopDeps) writeStatusLine(snap status.Snapshot) {
	if d.statusFile == "" {
		return
	}
	if err := status.WriteLine(d.statusFile, snap); err != nil {
		slog.Warn("status file error", "path", d.statusFile, "err", err)
	}
}

// pi-helper env var names (written to /run/pi-helper.env).
const (
	envNetworkType       = "NETWORK_TYPE"
	envNetworkIP         = "NETWORK_IP"
	envNetworkStatus     = "NETWORK_STATUS"
	envNetworkGateway    = "NETWORK_GATEWAY"
	envNetworkWifiStatus = "NETWORK_WIFI_STATUS"
	envNetworkWifiSSID   = "NETWORK_WIFI_SSID"
)

func readNetworkInfo() *status.NetworkInfo {
	s := os.Getenv(envNetworkStatus)
	if s == "" {
		return nil
	}
	return &status.NetworkInfo{
		Type:       os.Getenv(envNetworkType),
		IP:         os.Getenv(envNetworkIP),
		Status:     s,
		Gateway:    os.Getenv(envNetworkGateway),
		WifiStatus: os.Getenv(envNetworkWifiStatus),
		SSID:       os.Getenv(envNetworkWifiSSID),
	}
}
