// Package respond writes JSON and cache headers for handlers.
package respond

import (
	"log/slog"
	"net/http"

	"github.com/goccy/go-json"
)

// JSON writes v with status. Encoding errors are logged; the header is
// already sent by then.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("write json response failed", slog.Any("err", err))
	}
}

// Result is the autosave reply shape.
type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// OK writes {"success": true, "message": msg}.
func OK(w http.ResponseWriter, msg string) {
	JSON(w, http.StatusOK, Result{Success: true, Message: msg})
}

// Fail writes {"success": false, "error": msg} with status.
func Fail(w http.ResponseWriter, status int, msg string) {
	JSON(w, status, Result{Success: false, Error: msg})
}

// NoCache marks a response as never cacheable so boards always show fresh data.
func NoCache(w http.ResponseWriter) {
	h := w.Header()
	h.Set("Cache-Control", "no-cache, no-store, must-revalidate, private")
	h.Set("Pragma", "no-cache")
	h.Set("Expires", "0")
	h.Set("Last-Modified", "Thu, 01 Jan 1970 00:00:00 GMT")
	h.Set("Vary", "Accept-Encoding")
}

// IsAJAX reports whether the request came from the board's autosave script.
func IsAJAX(r *http.Request) bool {
	return r.Header.Get("X-Requested-With") == "XMLHttpRequest"
}
