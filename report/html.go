package report

import (
	"fmt"
	"html/template"
	"io"
	"strconv"

	"github.com/hasbyte1/hash-audit/benchmark"
)

//nolint:gochecknoglobals
var page = template.Must(template.New("report").Funcs(template.FuncMap{
	"rate":    formatRate,
	"seconds": formatFloatSeconds,
}).Parse(`<!doctype html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>hash-audit: {{.Algorithm}}</title>
<style>
body{font-family:system-ui,sans-serif;margin:2rem;color:#222}
table{border-collapse:collapse;margin-top:1rem}
th,td{border:1px solid #ccc;padding:.4rem .8rem;text-align:left}
th{background:#f4f4f4}
td.num{text-align:right;font-variant-numeric:tabular-nums}
.cached{color:#8a6d3b}
</style>
</head>
<body>
<h1>Hash throughput: {{.Algorithm}}</h1>
<table>
<tr><th>Salt mode</th><td>{{.SaltMode}}</td></tr>
<tr><th>Salt length</th><td class="num">{{.SaltLen}}</td></tr>
<tr><th>Requested duration</th><td class="num">{{seconds .DurationSeconds}}</td></tr>
<tr><th>Elapsed</th><td class="num">{{seconds .ElapsedSeconds}}</td></tr>
<tr><th>Hashes computed</th><td class="num">{{.HashesComputed}}</td></tr>
<tr><th>Hashes per second</th><td class="num">{{rate .HashesPerSecond}}</td></tr>
<tr><th>Run</th><td>{{.RunID}}{{if .Cached}} <span class="cached">(cached)</span>{{end}}</td></tr>
</table>
<h2>Exhaustive search estimates</h2>
<table>
<tr><th>Policy</th><th>Keyspace</th><th>Full search</th><th>Average search</th></tr>
{{- range .Estimates}}
<tr><td>{{.Policy}}</td><td class="num">{{.Keyspace}}</td><td class="num">{{.TimeFullSearchHuman}}</td><td class="num">{{.TimeAvgSearchHuman}}</td></tr>
{{- end}}
</table>
</body>
</html>
`))

func writeHTML(w io.Writer, r *benchmark.Result) error {
	if err := page.Execute(w, r); err != nil {
		return fmt.Errorf("report: render html: %w", err)
	}
	return nil
}

func formatRate(hps float64) string {
	return strconv.FormatFloat(hps, 'f', 0, 64)
}

func formatFloatSeconds(s float64) string {
	return strconv.FormatFloat(s, 'f', 3, 64) + "s"
}
