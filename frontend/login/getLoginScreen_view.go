package login

import (
	"html/template"

	"github.com/a-h/templ"

	"dockboard/frontend/shared/html"
)

var loginTmpl = template.Must(template.New("login").Parse(`
{{define "login"}}
<section class="login">
  <h1>Dockboard</h1>
  <form method="post" action="/login">
    <label>Email <input type="email" name="email" value="{{.Email}}" autocomplete="username" required{{if not .Email}} autofocus{{end}}></label>
    <label>Password <input type="password" name="password" autocomplete="current-password" required{{if .Email}} autofocus{{end}}></label>
    <button type="submit">Log in</button>
  </form>
</section>
{{end}}
`))

// ScreenData is what the login form shows after a redirect.
type ScreenData struct {
	Email  string
	Status string
	Error  string
}

func GetLoginScreen(data ScreenData) templ.Component {
	meta := html.PageMeta{Title: "Log in", Status: data.Status, Error: data.Error}
	return html.Page(meta, html.Template(loginTmpl, "login", data))
}
