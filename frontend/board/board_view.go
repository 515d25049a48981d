package board

import (
	"html/template"

	"github.com/a-h/templ"

	"dockboard/frontend/shared/html"
)

var boardTmpl = template.Must(template.New("board").Funcs(template.FuncMap{
	"slotCtx": func(p PageData, s Slot) slotContext { return slotContext{Page: p, Slot: s} },
	"laneCtx": func(p PageData, l Lane) laneContext { return laneContext{Page: p, Lane: l} },
}).Parse(`
{{define "board"}}
<div id="board" data-filter="{{.Filter}}" data-debounce-ms="{{.DebounceMS}}" data-can-edit="{{.CanEdit}}">
  <form class="board-filter" method="get" action="/tasker/loads">
    <label>Time slot <input name="time_slot" value="{{.Filter}}" placeholder="all"></label>
    <button type="submit">Show</button>
    {{if .Filter}}<a href="/tasker/loads">All slots</a>{{end}}
  </form>
  {{range .Board.Slots}}{{template "slot" (slotCtx $ .)}}{{end}}
  {{if .CanEdit}}{{template "create" .}}{{end}}
</div>
<script src="/assets/dashboard.js" defer></script>
{{end}}

{{define "slot"}}
<section class="slot" data-time-slot="{{.Slot.TimeSlot}}">
  <h2>{{.Slot.TimeSlot}} <small>trailers: {{.Slot.TrailerText}}</small>{{if .Slot.ShipDate}} <small>ship {{.Slot.ShipDate}}</small>{{end}}</h2>
  <p class="slot-summary">picking {{.Slot.Summary.PickingActive}} · completed {{.Slot.Summary.Completed}} · conflicts <span class="conflict-count">{{.Slot.Summary.Conflicted}}</span></p>
  <div class="lanes">
  {{range .Slot.Lanes}}{{template "lane" (laneCtx $.Page .)}}{{end}}
  </div>
</section>
{{end}}

{{define "lane"}}
<article class="lane-card" data-lane="{{.Lane.Name}}" data-status="{{.Lane.Status}}">
  <form class="lane-header" method="post" action="/tasker/loads/update-header">
    <input type="hidden" name="orig_time_slot" value="{{.Lane.TimeSlot}}">
    <input type="hidden" name="lane" value="{{.Lane.Name}}">
    <strong>{{.Lane.Name}}</strong>
    <input name="trailer_no" value="{{.Lane.TrailerNo}}" aria-label="trailer" {{if not .Page.CanEdit}}disabled{{end}}>
    <input name="time_slot" value="{{.Lane.TimeSlot}}" size="5" aria-label="time" {{if not .Page.CanEdit}}disabled{{end}}>
    <input name="ship_date" value="{{.Lane.ShipDate}}" size="10" aria-label="ship date" {{if not .Page.CanEdit}}disabled{{end}}>
    <select name="status" class="lane-status status-{{.Lane.Status}}" {{if not .Page.CanEdit}}disabled{{end}}>
      {{$cur := .Lane.Status}}{{range .Page.Statuses}}<option value="{{.}}"{{if eq . $cur}} selected{{end}}>{{.}}</option>{{end}}
    </select>
    {{if .Page.CanEdit}}<button type="submit">Save</button>{{end}}
  </form>
  <table class="rows">
    <thead><tr><th>Seq</th><th>Planned</th><th>Done</th><th>LO</th><th>Picker</th><th></th></tr></thead>
    <tbody>
    {{range .Lane.Rows}}
      <tr class="{{.Class}}" data-load-id="{{.ID}}">
        <td><input form="row-{{.ID}}" name="seq" value="{{.SeqText}}" size="3" inputmode="numeric" {{if not $.Page.CanEdit}}disabled{{end}}></td>
        <td><input form="row-{{.ID}}" name="planned" value="{{.PlannedText}}" size="4" inputmode="numeric" {{if not $.Page.CanEdit}}disabled{{end}}></td>
        <td><input form="row-{{.ID}}" name="done" value="{{.DoneText}}" size="4" inputmode="numeric" {{if not $.Page.CanEdit}}disabled{{end}}></td>
        <td><input form="row-{{.ID}}" name="lo_code" value="{{.LOCode}}" size="6" {{if not $.Page.CanEdit}}disabled{{end}}></td>
        <td><input form="row-{{.ID}}" name="picker" value="{{.Picker}}" size="10" {{if not $.Page.CanEdit}}disabled{{end}}></td>
        <td>
          {{if $.Page.CanEdit}}
          <form id="row-{{.ID}}" class="row-form" method="post" action="/tasker/loads/{{.ID}}/edit" data-autosave></form>
          <form method="post" action="/tasker/loads/{{.ID}}/delete" class="inline" data-confirm="Delete this row?"><button type="submit">✕</button></form>
          {{end}}
        </td>
      </tr>
    {{end}}
    </tbody>
  </table>
  <p class="lane-actions">
    <a href="/tasker/loads/sheet.pdf?time_slot={{.Lane.TimeSlot}}&amp;lane={{.Lane.Name}}">Sheet</a>
    {{if .Page.CanEdit}}
    <form method="post" action="/tasker/loads/clear-lane" class="inline" data-confirm="Clear planned, done, LO and picker on {{.Lane.Name}}?">
      <input type="hidden" name="time_slot" value="{{.Lane.TimeSlot}}">
      <input type="hidden" name="lane" value="{{.Lane.Name}}">
      <button type="submit">Clear lane</button>
    </form>
    {{end}}
  </p>
</article>
{{end}}

{{define "create"}}
<section class="create-load">
  <h3>Add row</h3>
  <form method="post" action="/tasker/loads">
    <input name="time_slot" placeholder="17:00" size="5" value="{{.Filter}}">
    <select name="lane">{{range .LaneNames}}<option value="{{.}}">{{.}}</option>{{end}}</select>
    <input name="trailer_no" placeholder="trailer">
    <select name="status">{{range .Statuses}}<option value="{{.}}">{{.}}</option>{{end}}</select>
    <input name="ship_date" placeholder="ship date" size="10">
    <input name="area" placeholder="area" size="4">
    <input name="seq" placeholder="seq" size="3">
    <input name="planned" placeholder="planned" size="4">
    <input name="done" placeholder="done" size="4">
    <input name="lo_code" placeholder="LO" size="6">
    <input name="picker" placeholder="picker">
    <select name="shift"><option>A</option><option>B</option><option>C</option></select>
    <button type="submit">Add</button>
  </form>
</section>
{{end}}
`))

type slotContext struct {
	Page PageData
	Slot Slot
}

type laneContext struct {
	Page PageData
	Lane Lane
}

// BoardPage renders the loading board.
func BoardPage(data PageData, meta html.PageMeta) templ.Component {
	meta.Nav = data.Nav
	if meta.Title == "" {
		meta.Title = "Loading board"
	}
	return html.Page(meta, html.Template(boardTmpl, "board", data))
}
