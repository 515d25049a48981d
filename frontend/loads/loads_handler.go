package loads

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	sessioncontext "dockboard/frontend/shared/context"
	"dockboard/frontend/shared/respond"
	"dockboard/infrastructure/audit"
	"dockboard/infrastructure/rbac"
	"dockboard/infrastructure/sqlite"
	"dockboard/models"
)

func boardURL(timeSlot, key, msg string) string {
	q := url.Values{}
	if timeSlot != "" {
		q.Set("time_slot", timeSlot)
	}
	if msg != "" {
		q.Set(key, msg)
	}
	if len(q) == 0 {
		return "/tasker/loads"
	}
	return "/tasker/loads?" + q.Encode()
}

func editorSession(w http.ResponseWriter, r *http.Request) (models.Session, bool) {
	session, ok := sessioncontext.GetSessionFromContext(r.Context())
	if !ok {
		if respond.IsAJAX(r) {
			respond.Fail(w, http.StatusUnauthorized, "login required")
		} else {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
		}
		return models.Session{}, false
	}
	if !rbac.CanEditLoads(session.User.Role) {
		if respond.IsAJAX(r) {
			respond.Fail(w, http.StatusForbidden, ErrForbidden.Error())
		} else {
			http.Redirect(w, r, boardURL("", "error", ErrForbidden.Error()), http.StatusSeeOther)
		}
		return models.Session{}, false
	}
	return session, true
}

// CreateLoadCommandHandler adds a row from the board form.
func CreateLoadCommandHandler(db *sqlite.DB, auditSvc *audit.Service, notifier Notifier) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, ok := editorSession(w, r)
		if !ok {
			return
		}
		if err := r.ParseForm(); err != nil {
			http.Redirect(w, r, boardURL("", "error", "invalid form data"), http.StatusSeeOther)
			return
		}

		in := CreateInput{
			TimeSlot:  strings.TrimSpace(r.FormValue("time_slot")),
			Lane:      r.FormValue("lane"),
			Area:      r.FormValue("area"),
			TrailerNo: r.FormValue("trailer_no"),
			Status:    r.FormValue("status"),
			ShipDate:  r.FormValue("ship_date"),
			Seq:       parseDigits(r.FormValue("seq")),
			Planned:   parseDigits(r.FormValue("planned")),
			Done:      parseDigits(r.FormValue("done")),
			LOCode:    r.FormValue("lo_code"),
			Picker:    r.FormValue("picker"),
			Shift:     r.FormValue("shift"),
		}
		load, err := CreateLoad(r.Context(), db, auditSvc, session.UserID, in)
		if err != nil {
			if errors.Is(err, ErrInvalidStatus) || errors.Is(err, ErrInvalidShift) {
				http.Redirect(w, r, boardURL(in.TimeSlot, "error", err.Error()), http.StatusSeeOther)
				return
			}
			slog.Error("loads: create failed", slog.Any("err", err))
			http.Redirect(w, r, boardURL(in.TimeSlot, "error", "failed to add row"), http.StatusSeeOther)
			return
		}

		notifier.Notify(load.TimeSlot, true)
		http.Redirect(w, r, boardURL(load.TimeSlot, "", ""), http.StatusSeeOther)
	}
}

// EditLoadCommandHandler is the autosave endpoint. AJAX callers get JSON,
// form posts get a redirect back to the board.
func EditLoadCommandHandler(db *sqlite.DB, auditSvc *audit.Service, notifier Notifier) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, ok := editorSession(w, r)
		if !ok {
			return
		}
		ajax := respond.IsAJAX(r)
		fail := func(status int, msg string) {
			if ajax {
				respond.Fail(w, status, msg)
				return
			}
			http.Redirect(w, r, boardURL("", "error", msg), http.StatusSeeOther)
		}

		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil || id <= 0 {
			fail(http.StatusBadRequest, "invalid load id")
			return
		}
		if err := r.ParseForm(); err != nil {
			fail(http.StatusBadRequest, "invalid form data")
			return
		}
		patch, err := PatchFromForm(r.PostForm)
		if err != nil {
			fail(http.StatusBadRequest, err.Error())
			return
		}

		before, after, err := UpdateLoad(r.Context(), db, auditSvc, session.UserID, id, patch)
		if err != nil {
			if errors.Is(err, ErrLoadNotFound) {
				fail(http.StatusNotFound, err.Error())
				return
			}
			slog.Error("loads: update failed", slog.Int64("load_id", id), slog.Any("err", err))
			fail(http.StatusInternalServerError, "failed to save")
			return
		}

		if changed := ChangedFields(before, after); len(changed) > 0 {
			notifier.Notify(after.TimeSlot, !changed.QuantitiesOnly())
			if before.TimeSlot != after.TimeSlot {
				notifier.Notify(before.TimeSlot, true)
			}
		}

		if ajax {
			respond.NoCache(w)
			respond.OK(w, "saved")
			return
		}
		http.Redirect(w, r, boardURL(after.TimeSlot, "", ""), http.StatusSeeOther)
	}
}

// DeleteLoadCommandHandler removes one row.
func DeleteLoadCommandHandler(db *sqlite.DB, auditSvc *audit.Service, notifier Notifier) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, ok := editorSession(w, r)
		if !ok {
			return
		}
		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil || id <= 0 {
			http.Redirect(w, r, boardURL("", "error", "invalid load id"), http.StatusSeeOther)
			return
		}

		load, err := DeleteLoad(r.Context(), db, auditSvc, session.UserID, id)
		if err != nil {
			if errors.Is(err, ErrLoadNotFound) {
				http.Redirect(w, r, boardURL("", "error", err.Error()), http.StatusSeeOther)
				return
			}
			slog.Error("loads: delete failed", slog.Int64("load_id", id), slog.Any("err", err))
			http.Redirect(w, r, boardURL("", "error", "failed to delete row"), http.StatusSeeOther)
			return
		}

		notifier.Notify(load.TimeSlot, true)
		http.Redirect(w, r, boardURL("", "status", "row deleted"), http.StatusSeeOther)
	}
}

// UpdateHeaderCommandHandler applies a lane card header to all its rows.
func UpdateHeaderCommandHandler(db *sqlite.DB, auditSvc *audit.Service, notifier Notifier) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, ok := editorSession(w, r)
		if !ok {
			return
		}
		if err := r.ParseForm(); err != nil {
			http.Redirect(w, r, boardURL("", "error", "invalid form data"), http.StatusSeeOther)
			return
		}

		in := HeaderInput{
			OrigTimeSlot: strings.TrimSpace(r.FormValue("orig_time_slot")),
			Lane:         strings.TrimSpace(r.FormValue("lane")),
			TimeSlot:     strings.TrimSpace(r.FormValue("time_slot")),
			TrailerNo:    strings.TrimSpace(r.FormValue("trailer_no")),
			Status:       strings.TrimSpace(r.FormValue("status")),
			ShipDate:     strings.TrimSpace(r.FormValue("ship_date")),
		}
		if in.Lane == "" {
			in.Lane = "L01"
		}
		n, err := UpdateHeader(r.Context(), db, auditSvc, session.UserID, in)
		switch {
		case errors.Is(err, ErrHeaderIncomplete), errors.Is(err, ErrInvalidStatus):
			http.Redirect(w, r, boardURL(in.OrigTimeSlot, "error", err.Error()), http.StatusSeeOther)
			return
		case errors.Is(err, ErrNoRowsOnLane):
			http.Redirect(w, r, boardURL(in.OrigTimeSlot, "error", fmt.Sprintf("no rows to update on %s", strings.ToUpper(in.Lane))), http.StatusSeeOther)
			return
		case err != nil:
			slog.Error("loads: update header failed", slog.String("lane", in.Lane), slog.Any("err", err))
			http.Redirect(w, r, boardURL(in.OrigTimeSlot, "error", "failed to update header"), http.StatusSeeOther)
			return
		}

		notifier.Notify(in.OrigTimeSlot, true)
		if in.TargetSlot() != in.OrigTimeSlot {
			notifier.Notify(in.TargetSlot(), true)
		}
		respond.NoCache(w)
		msg := fmt.Sprintf("updated header of %s (%d rows)", strings.ToUpper(in.Lane), n)
		http.Redirect(w, r, boardURL(in.TargetSlot(), "status", msg), http.StatusSeeOther)
	}
}

// ClearLaneCommandHandler empties quantities, LO codes and pickers of a lane.
func ClearLaneCommandHandler(db *sqlite.DB, auditSvc *audit.Service, notifier Notifier) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, ok := editorSession(w, r)
		if !ok {
			return
		}
		if err := r.ParseForm(); err != nil {
			http.Redirect(w, r, boardURL("", "error", "invalid form data"), http.StatusSeeOther)
			return
		}
		timeSlot := strings.TrimSpace(r.FormValue("time_slot"))
		lane := strings.ToUpper(strings.TrimSpace(r.FormValue("lane")))

		n, err := ClearLane(r.Context(), db, auditSvc, session.UserID, timeSlot, lane)
		switch {
		case errors.Is(err, ErrHeaderIncomplete):
			http.Redirect(w, r, boardURL("", "error", err.Error()), http.StatusSeeOther)
			return
		case errors.Is(err, ErrNoRowsOnLane):
			http.Redirect(w, r, boardURL(timeSlot, "error", "nothing to clear on "+lane), http.StatusSeeOther)
			return
		case err != nil:
			slog.Error("loads: clear lane failed", slog.String("lane", lane), slog.Any("err", err))
			http.Redirect(w, r, boardURL(timeSlot, "error", "failed to clear lane"), http.StatusSeeOther)
			return
		}

		notifier.Notify(timeSlot, true)
		http.Redirect(w, r, boardURL(timeSlot, "status", fmt.Sprintf("cleared %s (%d rows)", lane, n)), http.StatusSeeOther)
	}
}
