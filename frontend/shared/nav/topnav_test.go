package nav

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"dockboard/models"
)

func TestBuildTopNavData_FiltersByPermission(t *testing.T) {
	session := models.Session{
		User:              models.User{Email: "sup@dock.test", Role: "supervisor"},
		ScreenPermissions: map[string]int{"BOARD_VIEW": 1, "KPI_VIEW": 1},
	}

	data := BuildTopNavData(session)

	assert.Equal(t, "sup@dock.test", data.DisplayName())
	assert.Equal(t, "supervisor", data.Role)
	if assert.Len(t, data.Links, 2) {
		assert.Equal(t, "/tasker/loads", data.Links[0].Href)
		assert.Equal(t, "/tasker/kpi", data.Links[1].Href)
	}
}

func TestDisplayNamePrefersFullName(t *testing.T) {
	assert.Equal(t, "Anna Nowak", TopNavData{Email: "a@dock.test", FullName: "Anna Nowak"}.DisplayName())
}
