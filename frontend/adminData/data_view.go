package admindata

import (
	"html/template"

	"github.com/a-h/templ"

	"dockboard/frontend/shared/html"
)

var dataTmpl = template.Must(template.New("data").Parse(`
{{define "data"}}
<section class="admin-data">
  <h1>Data</h1>
  <dl class="counts">
    <dt>Loads</dt><dd>{{.Counts.Loads}} in {{.Counts.Slots}} time slots</dd>
    <dt>Users</dt><dd>{{.Counts.Users}}</dd>
    <dt>Exports</dt><dd>{{.Counts.ExportRuns}}</dd>
    <dt>KPI uploads</dt><dd>{{.Counts.KPIRuns}}</dd>
  </dl>
  <div class="actions">
    <form method="post" action="/tasker/admin/data/demo" class="inline">
      <button type="submit">Load demo board</button>
    </form>
    <form method="post" action="/tasker/admin/data/clear" class="inline" data-confirm="Delete every load on every time slot?">
      <button type="submit" class="danger">Clear all loads</button>
    </form>
  </div>

  <h2>Recent activity</h2>
  <table class="audit">
    <thead><tr><th>When</th><th>Who</th><th>Action</th><th>Entity</th><th>Details</th></tr></thead>
    <tbody>
    {{range .Audit}}
      <tr><td>{{.CreatedAt}}</td><td>{{.Actor}}</td><td>{{.Action}}</td><td>{{.EntityType}} {{.EntityID}}</td><td><code>{{.AfterJSON}}</code></td></tr>
    {{else}}
      <tr><td colspan="5">No activity yet.</td></tr>
    {{end}}
    </tbody>
  </table>
</section>
{{end}}
`))

func DataPage(data PageData, meta html.PageMeta) templ.Component {
	meta.Nav = data.Nav
	meta.Title = "Data"
	return html.Page(meta, html.Template(dataTmpl, "data", data))
}
