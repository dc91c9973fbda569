package status

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sweeney/irrigator/internal/logic"
)

func TestFormatLine(t *testing.T) {
	r := logic.Reading{Temperature: 23, Humidity: 35}
	snap := Snapshot{
		LastReading:   &r,
		LastReadingAt: t0,
		Counts:        logic.Counts{Readings: 12, ReadErrors: 1},
		Now:           t0.Add(time.Second),
		MQTTConnected: true,
	}

	want := "2026-06-14T06:00:01Z valve=CLOSED temp=23.0C hum=35.0% readings=12 errors=1 waterings=0 mqtt=up"
	if got := FormatLine(snap); got != want {
		t.Errorf("FormatLine:\ngot:  %s\nwant: %s", got, want)
	}
}

func TestFormatLineNoReading(t *testing.T) {
	snap := Snapshot{Now: t0, ValveOpen: true}

	want := "2026-06-14T06:00:00Z valve=OPEN temp=- hum=- readings=0 errors=0 waterings=0 mqtt=down"
	if got := FormatLine(snap); got != want {
		t.Errorf("FormatLine:\ngot:  %s\nwant: %s", got, want)
	}
}

func TestFormatLineShowsRecentError(t *testing.T) {
	r := logic.Reading{Temperature: 20, Humidity: 50}
	snap := Snapshot{
		LastReading:   &r,
		LastReadingAt: t0,
		LastError:     "dht: checksum mismatch",
		LastErrorKind: "ChecksumMismatch",
		LastErrorAt:   t0.Add(2 * time.Second),
		Now:           t0.Add(2 * time.Second),
	}
	if got := FormatLine(snap); !strings.Contains(got, " last_error=ChecksumMismatch ") {
		t.Errorf("expected last_error in %q", got)
	}

	// A later good reading hides the stale error.
	snap.LastReadingAt = t0.Add(4 * time.Second)
	if got := FormatLine(snap); strings.Contains(got, "last_error") {
		t.Errorf("stale error shown in %q", got)
	}
}

func TestWriteLine(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "irrigator.status")

	snap := Snapshot{Now: t0}
	if err := WriteLine(path, snap); err != nil {
		t.Fatalf("WriteLine: %v", err)
	}

	r := logic.Reading{Temperature: 18.5, Humidity: 61}
	snap.LastReading = &r
	if err := WriteLine(path, snap); err != nil {
		t.Fatalf("WriteLine: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != FormatLine(snap)+"\n" {
		t.Errorf("file content: got %q", data)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("readdir: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("temp files left behind: %d entries", len(entries))
	}
}

func TestWriteLineMissingDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nope", "irrigator.status")
	if err := WriteLine(path, Snapshot{Now: t0}); err == nil {
		t.Error("expected error for missing directory")
	}
}
