package web

import (
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/sweeney/irrigator/internal/dht"
	"github.com/sweeney/irrigator/internal/logic"
	"github.com/sweeney/irrigator/internal/status"
	"periph.io/x/conn/v3/physic"
)

var indexTmpl = template.Must(template.New("index").Funcs(template.FuncMap{
	"uptime": func(d time.Duration) string {
		d = d.Truncate(time.Second)
		days := int(d.Hours()) / 24
		h := int(d.Hours()) % 24
		m := int(d.Minutes()) % 60
		s := int(d.Seconds()) % 60
		if days > 0 {
			return fmt.Sprintf("%dd %dh %dm %ds", days, h, m, s)
		}
		if h > 0 {
			return fmt.Sprintf("%dh %dm %ds", h, m, s)
		}
		if m > 0 {
			return fmt.Sprintf("%dm %ds", m, s)
		}
		return fmt.Sprintf("%ds", s)
	},
	"ms": func(ms int64) string {
		return (time.Duration(ms) * time.Millisecond).String()
	},
	"ago": func(now, then time.Time) string {
		return now.Sub(then).Truncate(time.Second).String() + " ago"
	},
}).Parse(indexHTML))

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<meta http-equiv="refresh" content="10">
<title>Irrigator</title>
<style>
body { font-family: monospace; max-width: 600px; margin: 2em auto; padding: 0 1em; }
h1 { font-size: 1.4em; }
table { border-collapse: collapse; width: 100%; margin: 1em 0; }
td, th { text-align: left; padding: 4px 8px; border-bottom: 1px solid #ddd; }
th { width: 40%; }
.open { color: #06c; font-weight: bold; }
.closed { color: #888; }
.error { color: red; }
.connected { color: green; }
.disconnected { color: red; }
</style>
</head>
<body>
<h1>Irrigator</h1>

<h2>Garden</h2>
<table>
<tr><th>Valve</th><td id="valve" class="{{if .ValveOpen}}open{{else}}closed{{end}}">{{.Valve}}</td></tr>
{{if .Env}}<tr><th>Temperature</th><td id="temperature">{{.Env.Temperature}}</td></tr>
<tr><th>Humidity</th><td id="humidity">{{.Env.Humidity}}</td></tr>
<tr><th>Read</th><td>{{ago .Now .LastReadingAt}}</td></tr>
{{else}}<tr><th>Reading</th><td>none yet</td></tr>{{end}}
{{if .LastError}}<tr><th>Last error</th><td class="error">{{.LastErrorKind}}: {{.LastError}} ({{ago .Now .LastErrorAt}})</td></tr>{{end}}
</table>

<h2>Policy</h2>
<table>
<tr><th>Water below</th><td>{{.Config.MaxHumidity}}%RH</td></tr>
<tr><th>Only above</th><td>{{.Config.MinTemperature}}°C</td></tr>
<tr><th>Water for</th><td>{{ms .Config.WaterForMs}}</td></tr>
<tr><th>Cooldown</th><td>{{ms .Config.CooldownMs}}</td></tr>
</table>

<h2>Connectivity</h2>
<table>
<tr><th>MQTT</th><td class="{{if .MQTTConnected}}connected{{else}}disconnected{{end}}">{{if .MQTTConnected}}connected{{else}}disconnected{{end}}</td></tr>
<tr><th>Broker</th><td>{{if .Config.Broker}}{{.Config.Broker}}{{else}}disabled{{end}}</td></tr>
{{if .Network}}<tr><th>Network</th><td>{{.Network.Status}} ({{.Network.Type}}{{if .Network.SSID}}, {{.Network.SSID}}{{end}})</td></tr>
<tr><th>IP</th><td>{{.Network.IP}}</td></tr>{{end}}
</table>

<h2>Counts</h2>
<table>
<tr><th>Readings</th><td>{{.Counts.Readings}}</td></tr>
<tr><th>Read errors</th><td>{{.Counts.ReadErrors}}</td></tr>
{{range .ErrorKinds}}<tr><th>&nbsp;&nbsp;{{.Kind}}</th><td>{{.Count}}</td></tr>
{{end}}<tr><th>Waterings</th><td>{{.Counts.Waterings}}</td></tr>
</table>

<h2>System</h2>
<table>
<tr><th>Uptime</th><td>{{uptime .Uptime}}</td></tr>
<tr><th>Started</th><td>{{.StartTime.UTC.Format "2006-01-02T15:04:05Z"}}</td></tr>
<tr><th>Sensor</th><td>{{.Config.Model}} on GPIO{{.Config.PinSensor}} ({{.Config.Backend}})</td></tr>
<tr><th>Valve pin</th><td>GPIO{{.Config.PinValve}}</td></tr>
<tr><th>Poll</th><td>{{ms .Config.PollMs}}</td></tr>
<tr><th>Heartbeat</th><td>{{if eq .Config.HeartbeatMs 0}}disabled{{else}}{{ms .Config.HeartbeatMs}}{{end}}</td></tr>
<tr><th>HTTP</th><td>{{.Config.HTTPPort}}</td></tr>
</table>

<p><a href="/index.json">JSON</a></p>
</body>
</html>
`

// envOf converts a reading to physical units for display.
func envOf(r *logic.Reading) *physic.Env {
	if r == nil {
		return nil
	}
	env := dht.Reading(*r).Env()
	return &env
}

func renderHTML(w io.Writer, snap status.Snapshot) {
	// Snapshot has methods but the template wants plain fields.
	data := struct {
		status.Snapshot
		Uptime time.Duration
		Env    *physic.Env
	}{
		Snapshot: snap,
		Uptime:   snap.Uptime(),
		Env:      envOf(snap.LastReading),
	}
	indexTmpl.Execute(w, data)
}
