package nav

import (
	"dockboard/models"
)

// Link is one top navigation entry. Code is the RBAC resource that must be
// granted for the link to show.
type Link struct {
	Label string
	Href  string
	Code  string
}

var links = []Link{
	{Label: "Board", Href: "/tasker/loads", Code: "BOARD_VIEW"},
	{Label: "KPI", Href: "/tasker/kpi", Code: "KPI_VIEW"},
	{Label: "Exports", Href: "/tasker/exports/loads.csv", Code: "EXPORT_LOADS"},
	{Label: "Users", Href: "/tasker/admin/users", Code: "ADMIN_USERS_LIST_VIEW"},
	{Label: "Data", Href: "/tasker/admin/data", Code: "ADMIN_DATA_VIEW"},
	{Label: "Help", Href: "/tasker/help", Code: "HELP_VIEW"},
}

// TopNavData is shared with page renderers.
type TopNavData struct {
	Email    string
	FullName string
	Role     string
	Links    []Link
}

func BuildTopNavData(session models.Session) TopNavData {
	data := TopNavData{
		Email:    session.User.Email,
		FullName: session.User.FullName,
		Role:     session.User.Role,
	}
	for _, l := range links {
		if session.ScreenPermissions[l.Code] == 1 {
			data.Links = append(data.Links, l)
		}
	}
	return data
}

// DisplayName prefers the full name.
func (d TopNavData) DisplayName() string {
	if d.FullName != "" {
		return d.FullName
	}
	return d.Email
}
