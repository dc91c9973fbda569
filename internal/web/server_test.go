package web

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sweeney/irrigator/internal/logic"
	"github.com/sweeney/irrigator/internal/status"
)

func newTestServer(t *testing.T) (*httptest.Server, *status.Tracker) {
	t.Helper()
	start := time.Date(2026, 6, 14, 6, 0, 0, 0, time.UTC)
	cfg := status.Config{
		Model:          "DHT11",
		Backend:        "cdev",
		PinSensor:      24,
		PinValve:       23,
		PollMs:         2000,
		HeartbeatMs:    900000,
		MaxHumidity:    40,
		MinTemperature: 4,
		WaterForMs:     30000,
		CooldownMs:     1800000,
		Broker:         "tcp://192.168.1.200:1883",
		HTTPPort:       ":80",
	}
	tr := status.NewTracker(start, cfg)
	srv := New(":0", tr)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts, tr
}

func applyReading(tr *status.Tracker, temp, hum float64, open bool) {
	tr.Apply([]logic.Event{{
		Timestamp: time.Now(),
		Type:      logic.EventReading,
		Reading:   &logic.Reading{Temperature: temp, Humidity: hum},
		ValveOpen: open,
	}}, logic.Counts{Readings: 1})
}

func getJSON(t *testing.T, url string) status.StatusJSON {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()

	var sj status.StatusJSON
	if err := json.NewDecoder(resp.Body).Decode(&sj); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return sj
}

func getBody(t *testing.T, url string) (*http.Response, string) {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp, string(body)
}

func TestJSONEndpoint(t *testing.T) {
	ts, tr := newTestServer(t)
	applyReading(tr, 23, 35, true)
	tr.SetMQTTConnected(true)

	resp, err := http.Get(ts.URL + "/index.json")
	if err != nil {
		t.Fatalf("GET /index.json: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		t.Errorf("status: got %d, want 200", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type: got %q, want application/json", ct)
	}

	var sj status.StatusJSON
	if err := json.NewDecoder(resp.Body).Decode(&sj); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if sj.Status.Valve != "OPEN" {
		t.Errorf("Valve: got %q, want OPEN", sj.Status.Valve)
	}
	if sj.Status.Reading == nil || sj.Status.Reading.Temperature != 23 {
		t.Errorf("Reading: got %+v", sj.Status.Reading)
	}
	if !sj.Status.MQTT.Connected {
		t.Error("expected MQTT connected")
	}
	if sj.Status.Config.PinSensor != 24 {
		t.Errorf("Config.PinSensor: got %d, want 24", sj.Status.Config.PinSensor)
	}
}

func TestJSONBeforeFirstReading(t *testing.T) {
	ts, _ := newTestServer(t)

	sj := getJSON(t, ts.URL+"/index.json")
	if sj.Status.Reading != nil {
		t.Errorf("expected no reading, got %+v", sj.Status.Reading)
	}
	if sj.Status.Valve != "CLOSED" {
		t.Errorf("Valve: got %q, want CLOSED", sj.Status.Valve)
	}
}

func TestJSONNetworkInfo(t *testing.T) {
	ts, tr := newTestServer(t)
	tr.SetNetwork(&status.NetworkInfo{Type: "wifi", IP: "192.168.1.42", Status: "connected", SSID: "Garden"})

	sj := getJSON(t, ts.URL+"/index.json")
	if sj.Status.Network == nil {
		t.Fatal("expected network info")
	}
	if sj.Status.Network.IP != "192.168.1.42" {
		t.Errorf("Network.IP: got %q", sj.Status.Network.IP)
	}
}

func TestHTMLEndpointRoot(t *testing.T) {
	ts, tr := newTestServer(t)
	applyReading(tr, 23, 35, false)

	resp, body := getBody(t, ts.URL+"/")
	if resp.StatusCode != 200 {
		t.Errorf("status: got %d, want 200", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("Content-Type: got %q, want text/html", ct)
	}
	for _, want := range []string{"Irrigator", "CLOSED", "°C", "DHT11 on GPIO24"} {
		if !strings.Contains(body, want) {
			t.Errorf("body missing %q", want)
		}
	}
}

func TestHTMLBeforeFirstReading(t *testing.T) {
	ts, _ := newTestServer(t)

	_, body := getBody(t, ts.URL+"/index.html")
	if !strings.Contains(body, "none yet") {
		t.Error("expected placeholder for missing reading")
	}
}

func TestHTMLShowsLastError(t *testing.T) {
	ts, tr := newTestServer(t)
	tr.Apply([]logic.Event{{
		Timestamp: time.Now(),
		Type:      logic.EventReadError,
		Error:     "dht: checksum mismatch in validating",
		ErrorKind: "ChecksumMismatch",
	}}, logic.Counts{ReadErrors: 1})

	_, body := getBody(t, ts.URL+"/")
	if !strings.Contains(body, "ChecksumMismatch") {
		t.Error("expected error kind on page")
	}
}

func TestHTMLEndpointIndexHTML(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, _ := getBody(t, ts.URL+"/index.html")
	if resp.StatusCode != 200 {
		t.Errorf("status: got %d, want 200", resp.StatusCode)
	}
}

func TestNotFoundForUnknownPath(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, _ := getBody(t, ts.URL+"/nonexistent")
	if resp.StatusCode != 404 {
		t.Errorf("status: got %d, want 404", resp.StatusCode)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Post(ts.URL+"/index.json", "application/json", strings.NewReader("{}"))
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("status: got %d, want 405", resp.StatusCode)
	}
}

func TestStateChangesReflectedInResponse(t *testing.T) {
	ts, tr := newTestServer(t)

	if sj := getJSON(t, ts.URL+"/index.json"); sj.Status.MQTT.Connected {
		t.Error("expected MQTT disconnected initially")
	}

	applyReading(tr, 21, 30, true)
	tr.SetMQTTConnected(true)

	sj := getJSON(t, ts.URL+"/index.json")
	if sj.Status.Valve != "OPEN" {
		t.Errorf("Valve: got %q, want OPEN", sj.Status.Valve)
	}
	if !sj.Status.MQTT.Connected {
		t.Error("expected MQTT connected after update")
	}
}
