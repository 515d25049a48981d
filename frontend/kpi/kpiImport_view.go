package kpi

import (
	"html/template"

	"github.com/a-h/templ"

	"dockboard/frontend/shared/html"
)

var kpiTmpl = template.Must(template.New("kpi").Parse(`
{{define "kpi"}}
<section class="kpi">
  <h1>KPI</h1>
  <form method="post" action="/tasker/kpi" enctype="multipart/form-data">
    <input type="file" name="file" accept=".xlsx,.csv" required>
    <button type="submit">Upload</button>
  </form>
  <p class="hint">Columns: timestamp, user_email, shift, loads_count.</p>
  {{with .Report}}
  <p class="kpi-summary">{{.FileName}}: {{.Rows}} rows, {{.Dropped}} dropped</p>
  <div class="kpi-tables">
    <table class="by-shift">
      <thead><tr><th>Shift</th><th>Total loads</th></tr></thead>
      <tbody>{{range .ByShift}}<tr><td>{{.Key}}</td><td>{{.TotalText}}</td></tr>{{end}}</tbody>
    </table>
    <table class="by-user">
      <thead><tr><th>User</th><th>Total loads</th></tr></thead>
      <tbody>{{range .ByUser}}<tr><td>{{.Key}}</td><td>{{.TotalText}}</td></tr>{{end}}</tbody>
    </table>
  </div>
  {{end}}
</section>
{{end}}
`))

// KPIPage renders the upload form and, after an upload, the report.
func KPIPage(data PageData, meta html.PageMeta) templ.Component {
	meta.Nav = data.Nav
	meta.Title = "KPI"
	return html.Page(meta, html.Template(kpiTmpl, "kpi", data))
}
