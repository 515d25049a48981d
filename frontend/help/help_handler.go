package help

import (
	"net/http"

	sessioncontext "dockboard/frontend/shared/context"
	"dockboard/frontend/shared/nav"
	"dockboard/infrastructure/conflict"
	"dockboard/infrastructure/rbac"
)

func HelpPageQueryHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, ok := sessioncontext.GetSessionFromContext(r.Context())
		if !ok {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}

		data := PageData{
			Nav:          nav.BuildTopNavData(session),
			IsAdmin:      session.User.Role == rbac.RoleAdmin,
			CanEdit:      rbac.CanEditLoads(session.User.Role),
			Statuses:     statusLegend,
			RowColours:   colourLegend,
			ManageableBy: rbac.AssignableRoles(session.User.Role),
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := HelpPage(data).Render(r.Context(), w); err != nil {
			http.Error(w, "failed to render help page", http.StatusInternalServerError)
			return
		}
	}
}

var statusLegend = []LegendEntry{
	{Code: conflict.StatusPlanned.String(), Label: "Planned", Text: "Trailer is scheduled; rows are waiting to be picked. An empty status counts as planned."},
	{Code: conflict.StatusPickingActive.String(), Label: "Picking active", Text: "Pickers are working the lane. Open rows here lock the same sequence on planned lanes."},
	{Code: conflict.StatusLoadout.String(), Label: "Loadout", Text: "Trailer is being loaded and takes no part in conflict checks."},
}

var colourLegend = []LegendEntry{
	{Code: conflict.ClassPickingActive, Label: "Yellow", Text: "Row is being picked on an active lane (planned above zero, done below planned)."},
	{Code: conflict.ClassCompleted, Label: "Green", Text: "Row on an active lane is complete (done reached planned)."},
	{Code: conflict.ClassConflict, Label: "Red", Text: "Planned row shares its sequence with a row still being picked elsewhere."},
}
