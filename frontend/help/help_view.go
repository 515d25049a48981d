package help

import (
	"html/template"

	"github.com/a-h/templ"

	"dockboard/frontend/shared/html"
	"dockboard/frontend/shared/nav"
)

type LegendEntry struct {
	Code  string
	Label string
	Text  string
}

type PageData struct {
	Nav          nav.TopNavData
	IsAdmin      bool
	CanEdit      bool
	Statuses     []LegendEntry
	RowColours   []LegendEntry
	ManageableBy []string
}

var helpTmpl = template.Must(template.New("help").Parse(`
{{define "help"}}
<section class="help">
  <h1>Help</h1>
  <h2>Lane status</h2>
  <table class="legend">
    {{range .Statuses}}<tr><td><strong>{{.Code}}</strong></td><td>{{.Label}}</td><td>{{.Text}}</td></tr>{{end}}
  </table>
  <h2>Row colours</h2>
  <table class="legend">
    {{range .RowColours}}<tr class="{{.Code}}"><td>{{.Label}}</td><td>{{.Text}}</td></tr>{{end}}
  </table>
  <p>Flags refresh on their own a moment after quantities change; status and lane changes show at once.</p>
  {{if .CanEdit}}
  <h2>Editing</h2>
  <p>Cells save about a second after you stop typing. The loading sheet PDF prints the lane with its trailer barcode.</p>
  {{else}}
  <p>Your account can view the board but not change it.</p>
  {{end}}
  {{if .ManageableBy}}
  <p>You can add users with roles: {{range $i, $r := .ManageableBy}}{{if $i}}, {{end}}{{$r}}{{end}}.</p>
  {{end}}
  {{if .IsAdmin}}
  <p>The Data page can load a demo board into an empty database or clear every load.</p>
  {{end}}
</section>
{{end}}
`))

func HelpPage(data PageData) templ.Component {
	return html.Page(html.PageMeta{Title: "Help", Nav: data.Nav}, html.Template(helpTmpl, "help", data))
}
