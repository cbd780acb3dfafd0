package web

import (
	"fmt"
	"html/template"
	"io"
	"strings"
	"time"

	"github.com/sweeney/shiftio/internal/logic"
	"github.com/sweeney/shiftio/internal/status"
)

var indexTmpl = template.Must(template.New("index").Funcs(template.FuncMap{
	"uptime": formatUptime,
	"state": status.StateLabel,
	"class": func(p status.Pin) string {
		switch p.State {
		case "ON":
			return "on"
		case "OFF":
			return "off"
		}
		return "unknown"
	},
	"count": func(counts []logic.Counts, i int) string {
		if i >= len(counts) {
			return "-"
		}
		return fmt.Sprintf("%d / %d", counts[i].On, counts[i].Off)
	},
}).Parse(indexHTML))

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>shiftio</title>
<style>
body { font: 14px/1.4 ui-monospace, monospace; margin: 1.5em; max-width: 44em; }
h1 { font-size: 1.3em; margin-bottom: 0; }
h2 { font-size: 1.05em; margin: 1.5em 0 0.3em; }
table { border-collapse: collapse; width: 100%; }
th, td { padding: 3px 6px; text-align: left; border-bottom: 1px solid #e4e4e4; }
th { font-weight: normal; color: #555; width: 35%; }
form { display: inline; }
button { font: inherit; padding: 0 0.6em; }
.on, .connected { color: #1a7f37; font-weight: bold; }
.off { color: #999; }
.unknown { color: #b35900; }
.disconnected { color: #c62828; }
</style>
</head>
<body>
<h1>shiftio: {{.Config.Chips}} x {{.Config.Mode}}</h1>
{{if .Inputs}}
<h2>Inputs</h2>
<table>
<tr><th>Pin</th><td>State</td><td>ON / OFF</td></tr>
{{range $i, $p := .Inputs}}<tr><th>{{$p.Index}} {{$p.Name}}</th><td class="{{class $p}}">{{state $p}}</td><td>{{count $.Counts $i}}</td></tr>
{{end}}<tr><th>Ready</th><td colspan="2">{{if .Baselined}}yes{{else}}no{{end}}</td></tr>
</table>
{{end}}{{if .Outputs}}
<h2>Outputs</h2>
<table>
{{range .Outputs}}<tr><th>{{.Index}} {{.Name}}</th><td class="{{class .}}">{{state .}}</td><td>{{if $.Writable}}<form method="post" action="/outputs"><input type="hidden" name="pin" value="{{.Index}}"><button name="state" value="ON">on</button><button name="state" value="OFF">off</button></form>{{end}}</td></tr>
{{end}}</table>
{{end}}
<h2>Chain</h2>
<table>
<tr><th>Updates</th><td>{{.Updates}}</td></tr>
<tr><th>Failures</th><td>{{.Failures}}</td></tr>
{{if .LastError}}<tr><th>Last error</th><td>{{.LastError}} ({{.LastErrorTime.UTC.Format "2006-01-02T15:04:05Z"}})</td></tr>{{end}}
<tr><th>Backend</th><td>{{.Config.Backend}}</td></tr>
<tr><th>Pulse width</th><td>{{.Config.PulseWidthUs}}us</td></tr>
</table>

<h2>Connectivity</h2>
<table>
<tr><th>MQTT</th><td class="{{if .MQTTConnected}}connected{{else}}disconnected{{end}}">{{if .MQTTConnected}}connected{{else}}disconnected{{end}}</td></tr>
<tr><th>Broker</th><td>{{.Config.Broker}}</td></tr>
<tr><th>Topics</th><td>{{.Config.TopicPrefix}}/events, /system, /set</td></tr>
{{if .Network}}<tr><th>Network</th><td>{{.Network.Status}} ({{.Network.Type}}{{if .Network.SSID}}: {{.Network.SSID}}{{end}})</td></tr>
<tr><th>IP</th><td>{{.Network.IP}}</td></tr>{{end}}
</table>

<h2>System</h2>
<table>
<tr><th>Uptime</th><td>{{uptime .Uptime}}</td></tr>
<tr><th>Started</th><td>{{.StartTime.UTC.Format "2006-01-02T15:04:05Z"}}</td></tr>
<tr><th>Poll</th><td>{{.Config.PollMs}}ms</td></tr>
<tr><th>Debounce</th><td>{{.Config.DebounceMs}}ms</td></tr>
<tr><th>Heartbeat</th><td>{{if eq .Config.HeartbeatMs 0}}disabled{{else}}{{.Config.HeartbeatMs}}ms{{end}}</td></tr>
<tr><th>HTTP</th><td>{{.Config.HTTPAddr}}</td></tr>
</table>

<p><a href="/index.json">JSON</a></p>
</body>
</html>
`

// formatUptime renders d from its largest non-zero unit down to seconds,
// e.g. "3h 0m 5s".
func formatUptime(d time.Duration) string {
	total := int64(d / time.Second)
	parts := []struct {
		n    int64
		unit string
	}{
		{total / 86400, "d"},
		{total / 3600 % 24, "h"},
		{total / 60 % 60, "m"},
		{total % 60, "s"},
	}
	var b strings.Builder
	for _, p := range parts {
		if p.n == 0 && b.Len() == 0 && p.unit != "s" {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		fmt.Fprintf(&b, "%d%s", p.n, p.unit)
	}
	return b.String()
}

func renderHTML(w io.Writer, snap status.Snapshot, writable bool) error {
	data := struct {
		status.Snapshot
		Uptime   time.Duration
		Writable bool
	}{
		Snapshot: snap,
		Uptime:   snap.Uptime(),
		Writable: writable,
	}
	return indexTmpl.Execute(w, data)
}
