package help

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	sessioncontext "dockboard/frontend/shared/context"
	"dockboard/models"
)

func TestHelpPage_ShowsLegendPerRole(t *testing.T) {
	for _, tc := range []struct {
		role    string
		want    string
		notWant string
	}{
		{role: "admin", want: "demo board", notWant: "not change it"},
		{role: "user", want: "not change it", notWant: "demo board"},
	} {
		session := models.Session{UserID: 1, User: models.User{ID: 1, Email: "x@dock.test", Role: tc.role}}
		req := httptest.NewRequest(http.MethodGet, "/tasker/help", nil)
		req = req.WithContext(sessioncontext.NewContextWithSession(req.Context(), session))
		rec := httptest.NewRecorder()
		HelpPageQueryHandler().ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("%s: status %d", tc.role, rec.Code)
		}
		body := rec.Body.String()
		if !strings.Contains(body, "conflict-row") || !strings.Contains(body, "Picking active") {
			t.Fatalf("%s: legend missing", tc.role)
		}
		if !strings.Contains(body, tc.want) || strings.Contains(body, tc.notWant) {
			t.Fatalf("%s: unexpected role text", tc.role)
		}
	}
}

func TestHelpPage_RequiresSession(t *testing.T) {
	rec := httptest.NewRecorder()
	HelpPageQueryHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/tasker/help", nil))
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected redirect, got %d", rec.Code)
	}
}
