package board

import (
	"bufio"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sessioncontext "dockboard/frontend/shared/context"
	"dockboard/infrastructure/hub"
	"dockboard/models"
)

func withSession(r *http.Request, role string) *http.Request {
	session := models.Session{
		ID:                "tok",
		UserID:            1,
		User:              models.User{ID: 1, Email: "u@dock.test", Role: role},
		UserRoles:         []string{role},
		ScreenPermissions: map[string]int{"BOARD_VIEW": 1},
	}
	return r.WithContext(sessioncontext.NewContextWithSession(r.Context(), session))
}

func TestBoardPage_RendersFlagsAndNoCache(t *testing.T) {
	db := openBoardTestDB(t)
	insertLoads(t, db,
		models.Load{TimeSlot: "17:00", Lane: str("L01"), Status: str("PA"), Seq: num(10), Planned: num(5)},
		models.Load{TimeSlot: "17:00", Lane: str("L02"), Status: str("PL"), Seq: num(10), Planned: num(3)},
	)

	rec := httptest.NewRecorder()
	req := withSession(httptest.NewRequest(http.MethodGet, "/tasker/loads", nil), "supervisor")
	BoardPageQueryHandler(db, Options{}, 500*time.Millisecond)(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "no-cache, no-store, must-revalidate, private", rec.Header().Get("Cache-Control"))
	assert.NotEmpty(t, rec.Header().Get("ETag"))
	body := rec.Body.String()
	assert.Contains(t, body, `class="conflict-row"`)
	assert.Contains(t, body, `class="picking-active-row"`)
	assert.Contains(t, body, `data-debounce-ms="500"`)
	assert.Contains(t, body, `action="/tasker/loads/update-header"`)
	assert.Contains(t, body, "data-autosave")
}

func TestBoardPage_UserIsReadOnly(t *testing.T) {
	db := openBoardTestDB(t)
	insertLoads(t, db, models.Load{TimeSlot: "17:00", Lane: str("L01"), Seq: num(1), Planned: num(2)})

	rec := httptest.NewRecorder()
	req := withSession(httptest.NewRequest(http.MethodGet, "/tasker/loads", nil), "user")
	BoardPageQueryHandler(db, Options{}, time.Second)(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.NotContains(t, body, "data-autosave")
	assert.NotContains(t, body, "Clear lane")
	assert.Contains(t, body, "disabled")
}

func TestBoardPage_RequiresSession(t *testing.T) {
	db := openBoardTestDB(t)
	rec := httptest.NewRecorder()
	BoardPageQueryHandler(db, Options{}, time.Second)(rec, httptest.NewRequest(http.MethodGet, "/tasker/loads", nil))
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))
}

func TestFlagsQueryHandler(t *testing.T) {
	db := openBoardTestDB(t)
	insertLoads(t, db,
		models.Load{TimeSlot: "17:00", Lane: str("L01"), Status: str("PA"), Seq: num(10), Planned: num(5), Done: num(5)},
		models.Load{TimeSlot: "17:00", Lane: str("L02"), Status: str("PL"), Seq: num(10), Planned: num(3)},
	)

	rec := httptest.NewRecorder()
	FlagsQueryHandler(db, Options{})(rec, httptest.NewRequest(http.MethodGet, "/tasker/api/board/flags?time_slot=17:00", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var got FlagsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got.Slots, 1)
	flags := got.Slots[0].Flags
	assert.True(t, flags["1"].Completed)
	assert.False(t, flags["2"].Conflicted)
}

func TestStreamHandler_SendsInitialAndPushedEvents(t *testing.T) {
	db := openBoardTestDB(t)
	insertLoads(t, db,
		models.Load{TimeSlot: "17:00", Lane: str("L01"), Status: str("PA"), Seq: num(10), Planned: num(5)},
		models.Load{TimeSlot: "17:00", Lane: str("L02"), Status: str("PL"), Seq: num(10), Planned: num(3)},
	)

	h := hub.New(ScanSlot(db, Options{}), 10*time.Millisecond)
	defer h.Close()

	srv := httptest.NewServer(StreamHandler(db, Options{}, h))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"?time_slot=17:00", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	reader := bufio.NewReader(resp.Body)
	first := readEvent(t, reader)
	assert.True(t, first.Flags["2"].Conflicted)

	require.Eventually(t, func() bool { return h.Subscribers("17:00") == 1 }, time.Second, 5*time.Millisecond)
	h.Notify("17:00", true)
	second := readEvent(t, reader)
	assert.Equal(t, "17:00", second.TimeSlot)
	assert.Equal(t, 1, second.Summary.Conflicted)
}

func readEvent(t *testing.T, r *bufio.Reader) hub.Event {
	t.Helper()
	for {
		line, err := r.ReadString('\n')
		require.NoError(t, err)
		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		var ev hub.Event
		require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(strings.TrimSpace(line), "data: ")), &ev))
		return ev
	}
}
