package adminusers

import (
	"html/template"

	"github.com/a-h/templ"

	"dockboard/frontend/shared/html"
)

var usersTmpl = template.Must(template.New("users").Parse(`
{{define "users"}}
<section class="admin-users">
  <h1>Users</h1>
  <table>
    <thead><tr><th>Email</th><th>Name</th><th>Role</th>{{if .CanManage}}<th>Edit</th><th>Password</th><th></th>{{end}}</tr></thead>
    <tbody>
    {{range .Users}}
      <tr data-user-id="{{.ID}}">
        <td>{{.Email}}</td>
        <td>{{.FullName}}</td>
        <td>{{.Role}}</td>
        {{if $.CanManage}}
        <td>
          <form method="post" action="/tasker/admin/users/{{.ID}}/edit" class="inline">
            <input type="email" name="email" value="{{.Email}}" required>
            <input name="full_name" value="{{.FullName}}">
            {{$role := .Role}}
            <select name="role">{{range $.AssignableRoles}}<option value="{{.}}"{{if eq . $role}} selected{{end}}>{{.}}</option>{{end}}</select>
            <button type="submit">Save</button>
          </form>
        </td>
        <td>
          <form method="post" action="/tasker/admin/users/{{.ID}}/password" class="inline">
            <input type="password" name="password" autocomplete="new-password" required minlength="6">
            <button type="submit">Set</button>
          </form>
        </td>
        <td>
          {{if ne .ID $.SelfID}}
          <form method="post" action="/tasker/admin/users/{{.ID}}/delete" class="inline" data-confirm="Delete {{.Email}}?">
            <button type="submit">Delete</button>
          </form>
          {{end}}
        </td>
        {{end}}
      </tr>
    {{end}}
    </tbody>
  </table>

  <h2>Add user</h2>
  <form method="post" action="/tasker/admin/users" class="add-user">
    <input type="email" name="email" placeholder="email" required>
    <input name="full_name" placeholder="full name">
    <select name="role">{{range .AssignableRoles}}<option value="{{.}}">{{.}}</option>{{end}}</select>
    <input type="password" name="password" placeholder="password" autocomplete="new-password" required minlength="6">
    <button type="submit">Add</button>
  </form>
  <p class="hint">Passwords need at least 6 characters and one upper-case letter.</p>
</section>
{{end}}
`))

// UsersListPage renders the user administration page.
func UsersListPage(data PageData, meta html.PageMeta) templ.Component {
	meta.Nav = data.Nav
	meta.Title = "Users"
	return html.Page(meta, html.Template(usersTmpl, "users", data))
}
