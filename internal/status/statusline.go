package status

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// FormatLine renders the snapshot as a single human-readable line, e.g.
//
//	2026-06-14T06:30:00Z valve=CLOSED temp=23.0C hum=35.0% readings=12 errors=1 waterings=0 mqtt=up
//
// The last error kind is appended while the most recent cycle failed.
func FormatLine(snap Snapshot) string {
	var b strings.Builder
	b.WriteString(snap.Now.UTC().Format(time.RFC3339))
	fmt.Fprintf(&b, " valve=%s", snap.Valve())
	if snap.LastReading != nil {
		fmt.Fprintf(&b, " temp=%.1fC hum=%.1f%%", snap.LastReading.Temperature, snap.LastReading.Humidity)
	} else {
		b.WriteString(" temp=- hum=-")
	}
	fmt.Fprintf(&b, " readings=%d errors=%d waterings=%d",
		snap.Counts.Readings, snap.Counts.ReadErrors, snap.Counts.Waterings)
	if snap.LastError != "" && snap.LastErrorAt.After(snap.LastReadingAt) {
		fmt.Fprintf(&b, " last_error=%s", snap.LastErrorKind)
	}
	if snap.MQTTConnected {
		b.WriteString(" mqtt=up")
	} else {
		b.WriteString(" mqtt=down")
	}
	return b.String()
}

// WriteLine replaces the file at path with FormatLine(snap). Readers never
// see a partial line: the content goes to a temp file in the same
// directory which is then renamed over path.
func WriteLine(path string, snap Snapshot) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("create temp status file: %w", err)
	}
	defer os.Remove(tmp.Name()) // no-op after a successful rename

	if _, err := tmp.WriteString(FormatLine(snap) + "\n"); err != nil {
		tmp.Close()
		return fmt.Errorf("write status file: %w", err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return fmt.Errorf("chmod status file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close status file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace status file: %w", err)
	}
	return nil
}
