package html

import (
	"bytes"
	"context"
	"html/template"
	"io"

	"github.com/a-h/templ"

	"dockboard/frontend/shared/nav"
)

var layoutTmpl = template.Must(template.New("layout").Parse(`<!doctype html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}} · Dockboard</title>
<link rel="stylesheet" href="/assets/app.css">
</head>
<body>
{{if .Nav.Role}}<header class="topnav">
  <a class="brand" href="/">Dockboard</a>
  <nav>{{range .Nav.Links}}<a href="{{.Href}}">{{.Label}}</a>{{end}}</nav>
  <span class="who">{{.Nav.DisplayName}} ({{.Nav.Role}})</span>
  <form method="post" action="/logout" class="inline"><button type="submit">Log out</button></form>
</header>{{end}}
{{if .Status}}<p class="flash flash-ok">{{.Status}}</p>{{end}}
{{if .Error}}<p class="flash flash-error">{{.Error}}</p>{{end}}
<main>{{.Body}}</main>
{{.CSRF}}
</body>
</html>`))

// PageMeta carries the chrome around a page body.
type PageMeta struct {
	Title  string
	Nav    nav.TopNavData
	Status string
	Error  string
}

// Page wraps body in the shared layout.
func Page(meta PageMeta, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var buf bytes.Buffer
		if body != nil {
			if err := body.Render(ctx, &buf); err != nil {
				return err
			}
		}
		return layoutTmpl.Execute(w, struct {
			PageMeta
			Body template.HTML
			CSRF template.HTML
		}{
			PageMeta: meta,
			Body:     template.HTML(buf.String()),
			CSRF:     template.HTML(CSRFFormScript()),
		})
	})
}

// Template renders the named template of t with data as a component.
func Template(t *template.Template, name string, data any) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		return t.ExecuteTemplate(w, name, data)
	})
}
