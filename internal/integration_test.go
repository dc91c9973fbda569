package internal

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/sweeney/irrigator/internal/dht"
	"github.com/sweeney/irrigator/internal/gpio"
	"github.com/sweeney/irrigator/internal/logic"
	"github.com/sweeney/irrigator/internal/mqtt"
	"github.com/sweeney/irrigator/internal/status"
	"github.com/sweeney/irrigator/internal/valve"
)

// pipeline wires a simulated sensor through every layer the daemon uses,
// without the signal and ticker plumbing of cmd/irrigator.
type pipeline struct {
	sim       *dht.SimSensor
	line      *gpio.OpenDrainLine
	sensor    *dht.Sensor
	ctrl      *logic.Controller
	valve     *valve.FakeValve
	publisher *mqtt.FakePublisher
	tracker   *status.Tracker
}

func newPipeline(t *testing.T, f dht.Frame, policy logic.Policy, start time.Time) *pipeline {
	t.Helper()
	sim := dht.NewSimSensor(f)
	line, err := gpio.NewOpenDrainLine(sim)
	if err != nil {
		t.Fatalf("open line: %v", err)
	}
	sensor, err := dht.NewSensor(line, sim, dht.DHT11, dht.DefaultTiming(dht.DHT11))
	if err != nil {
		t.Fatalf("new sensor: %v", err)
	}
	return &pipeline{
		sim:       sim,
		line:      line,
		sensor:    sensor,
		ctrl:      logic.NewController(policy, start),
		valve:     valve.NewFakeValve(),
		publisher: mqtt.NewFakePublisher(),
		tracker:   status.NewTracker(start, status.Config{Model: "DHT11"}),
	}
}

// step runs one control cycle at now.
func (p *pipeline) step(t *testing.T, now time.Time) []logic.Event {
	t.Helper()
	in := logic.Input{Time: now}
	r, err := p.sensor.Read()
	if err != nil {
		in.Err = err
		in.ErrKind = dht.KindOf(err)
	} else {
		in.Reading = logic.Reading(r)
	}

	events := p.ctrl.Process(in)
	for _, ev := range events {
		switch ev.Type {
		case logic.EventValveOpen:
			p.valve.Set(true)
		case logic.EventValveClose:
			p.valve.Set(false)
		}
		if err := p.publisher.Publish(ev); err != nil {
			t.Logf("publish: %v", err)
		}
	}
	p.tracker.Apply(events, p.ctrl.Counts())

	if p.line.Direction() != gpio.Input {
		t.Fatalf("line left driven after cycle at %v", now)
	}
	return events
}

var start = time.Date(2026, 6, 14, 6, 0, 0, 0, time.UTC)

func policy() logic.Policy {
	return logic.Policy{MaxHumidity: 40, MinTemperature: 4, WaterFor: 30 * time.Second, Cooldown: 10 * time.Minute}
}

func TestIntegrationFullWateringCycle(t *testing.T) {
	p := newPipeline(t, dht.NewFrame(35, 0, 23, 0), policy(), start)

	// Dry and warm: opens on the first read, closes after 30s, then the
	// cooldown holds it shut even though it is still dry.
	for i := 1; i <= 10; i++ {
		p.step(t, start.Add(time.Duration(i)*5*time.Second))
	}

	want := []logic.EventType{logic.EventReading, logic.EventValveOpen}
	for i := 2; i <= 6; i++ {
		want = append(want, logic.EventReading)
	}
	want = append(want, logic.EventValveClose)
	for i := 7; i <= 10; i++ {
		want = append(want, logic.EventReading)
	}

	got := p.publisher.EventTypes()
	if len(got) != len(want) {
		t.Fatalf("events:\ngot:  %v\nwant: %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("event %d: got %s, want %s", i, got[i], want[i])
		}
	}
	if len(p.valve.Sets) != 2 {
		t.Errorf("valve sets: got %v, want [true false]", p.valve.Sets)
	}
	if p.sim.Starts != 10 {
		t.Errorf("expected 10 transactions, got %d", p.sim.Starts)
	}
}

func TestIntegrationPayloadCarriesDecodedReading(t *testing.T) {
	p := newPipeline(t, dht.NewFrame(48, 7, 19, 4), policy(), start)
	p.step(t, start.Add(time.Second))

	if len(p.publisher.Payloads) != 1 {
		t.Fatalf("expected 1 payload, got %d", len(p.publisher.Payloads))
	}

	var parsed mqtt.Payload
	if err := json.Unmarshal(p.publisher.Payloads[0], &parsed); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if parsed.Irrigation.Event != "READING" {
		t.Errorf("event: got %s", parsed.Irrigation.Event)
	}
	if parsed.Irrigation.Humidity == nil || *parsed.Irrigation.Humidity < 48.69 || *parsed.Irrigation.Humidity > 48.71 {
		t.Errorf("humidity: got %v", parsed.Irrigation.Humidity)
	}
	if parsed.Irrigation.Temperature == nil || *parsed.Irrigation.Temperature < 19.39 || *parsed.Irrigation.Temperature > 19.41 {
		t.Errorf("temperature: got %v", parsed.Irrigation.Temperature)
	}
}

func TestIntegrationCorruptFrameNeverWaters(t *testing.T) {
	bad := dht.NewFrame(35, 0, 23, 0)
	bad[4]++
	p := newPipeline(t, bad, policy(), start)

	for i := 1; i <= 3; i++ {
		p.step(t, start.Add(time.Duration(i)*2*time.Second))
	}

	for i, ev := range p.publisher.Events {
		if ev.Type != logic.EventReadError {
			t.Errorf("event %d: got %s, want READ_ERROR", i, ev.Type)
		}
		if ev.ErrorKind != "ChecksumMismatch" {
			t.Errorf("event %d: kind %q", i, ev.ErrorKind)
		}
	}
	if len(p.valve.Sets) != 0 {
		t.Errorf("valve moved on corrupt data: %v", p.valve.Sets)
	}
}

func TestIntegrationSensorRecovers(t *testing.T) {
	p := newPipeline(t, dht.NewFrame(65, 0, 22, 0), policy(), start)

	p.sim.Silent = true
	events := p.step(t, start.Add(2*time.Second))
	if events[0].Type != logic.EventReadError || events[0].ErrorKind != "NoResponse" {
		t.Fatalf("expected NoResponse, got %+v", events[0])
	}

	p.sim.Silent = false
	events = p.step(t, start.Add(4*time.Second))
	if events[0].Type != logic.EventReading {
		t.Fatalf("expected a reading after recovery, got %s", events[0].Type)
	}

	snap := p.tracker.Snapshot()
	if snap.Counts.Readings != 1 || snap.Counts.ReadErrors != 1 {
		t.Errorf("unexpected counts: %+v", snap.Counts)
	}
	if snap.LastReading == nil || snap.LastReading.Humidity != 65 {
		t.Errorf("last reading: %+v", snap.LastReading)
	}
	line := status.FormatLine(snap)
	if strings.Contains(line, "last_error") {
		t.Errorf("recovered status line still shows the error: %s", line)
	}
}

func TestIntegrationReadWhileDrivenIsRejected(t *testing.T) {
	p := newPipeline(t, dht.NewFrame(65, 0, 22, 0), policy(), start)

	if err := p.line.DriveLow(); err != nil {
		t.Fatalf("drive low: %v", err)
	}
	if _, err := p.line.ReadLevel(); !errors.Is(err, gpio.ErrLineDriven) {
		t.Errorf("expected ErrLineDriven, got %v", err)
	}

	// A full read releases the line itself and succeeds.
	if _, err := p.sensor.Read(); err != nil {
		t.Errorf("read after drive: %v", err)
	}
}

func TestIntegrationPublishFailureDoesNotStopWatering(t *testing.T) {
	p := newPipeline(t, dht.NewFrame(35, 0, 23, 0), policy(), start)
	p.publisher.PublishError = errors.New("broker down")

	p.step(t, start.Add(time.Second))

	if !p.valve.Open {
		t.Error("valve should open even when publishing fails")
	}
	if len(p.publisher.Events) != 0 {
		t.Errorf("no events should be recorded, got %d", len(p.publisher.Events))
	}
}
