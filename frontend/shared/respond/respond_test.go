package respond

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOKAndFail(t *testing.T) {
	rec := httptest.NewRecorder()
	OK(rec, "saved")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))

	var got Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, Result{Success: true, Message: "saved"}, got)

	rec = httptest.NewRecorder()
	Fail(rec, http.StatusNotFound, "load not found")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"success":false,"error":"load not found"}`, rec.Body.String())
}

func TestNoCacheAndAJAX(t *testing.T) {
	rec := httptest.NewRecorder()
	NoCache(rec)
	assert.Equal(t, "no-cache, no-store, must-revalidate, private", rec.Header().Get("Cache-Control"))
	assert.Equal(t, "0", rec.Header().Get("Expires"))

	r := httptest.NewRequest(http.MethodPost, "/", nil)
	assert.False(t, IsAJAX(r))
	r.Header.Set("X-Requested-With", "XMLHttpRequest")
	assert.True(t, IsAJAX(r))
}
