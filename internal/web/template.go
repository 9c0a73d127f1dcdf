package web

import (
	"fmt"
	"html/template"
	"time"
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
	"stateOrUnknown": func(s string) string {
		if s == "" {
			return "UNKNOWN"
		}
		return s
	},
	"lampClass": func(on bool) string {
		if on {
			return "lamp on"
		}
		return "lamp"
	},
}).Parse(indexHTML))

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<meta http-equiv="refresh" content="2">
<title>Traffic Light</title>
<style>
body { font-family: monospace; max-width: 600px; margin: 2em auto; padding: 0 1em; }
h1 { font-size: 1.4em; }
table { border-collapse: collapse; width: 100%; margin: 1em 0; }
td, th { text-align: left; padding: 4px 8px; border-bottom: 1px solid #ddd; }
th { width: 40%; }
.housing { background: #222; border-radius: 12px; width: 72px; padding: 12px 0; margin: 1em 0; }
.lamp { width: 44px; height: 44px; border-radius: 50%; margin: 10px auto; background: #3a3a3a; }
.lamp.on.red { background: #e33; box-shadow: 0 0 18px #e33; }
.lamp.on.yellow { background: #fc3; box-shadow: 0 0 18px #fc3; }
.lamp.on.green { background: #3c3; box-shadow: 0 0 18px #3c3; }
.connected { color: green; }
.disconnected { color: red; }
</style>
</head>
<body>
<h1>Traffic Light</h1>
<div class="housing">
<div class="{{lampClass .Outputs.Red}} red"></div>
<div class="{{lampClass .Outputs.Yellow}} yellow"></div>
<div class="{{lampClass .Outputs.Green}} green"></div>
</div>
<table>
<tr><th>State</th><td>{{stateOrUnknown (printf "%s" .State)}}</td></tr>
<tr><th>Variant</th><td>{{.Config.Variant}}</td></tr>
<tr><th>Transitions</th><td>{{.Transitions}}</td></tr>
<tr><th>Cycles</th><td>{{.Cycles}}</td></tr>
{{if not .LastChange.IsZero}}<tr><th>Last change</th><td>{{.LastChange.UTC.Format "2006-01-02 15:04:05"}} UTC</td></tr>{{end}}
<tr><th>Uptime</th><td>{{uptime .Uptime}}</td></tr>
<tr><th>MQTT</th><td><span class="{{if .MQTTConnected}}connected{{else}}disconnected{{end}}">{{if .MQTTConnected}}connected{{else}}disconnected{{end}}</span> ({{.Config.Broker}})</td></tr>
{{with .Network}}<tr><th>Network</th><td>{{.Type}} {{.IP}} ({{.Status}})</td></tr>{{end}}
</table>
<p><a href="/index.json">JSON</a></p>
</body>
</html>
`
