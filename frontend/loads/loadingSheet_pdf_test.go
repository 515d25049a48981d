package loads

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"dockboard/frontend/board"
	"dockboard/infrastructure/conflict"
)

func itoa(n int64) string { return strconv.FormatInt(n, 10) }

func TestRenderLoadingSheetPDF_GeneratesPDF(t *testing.T) {
	t.Parallel()

	pdf, err := renderLoadingSheetPDF(SheetData{
		TimeSlot: "17:00",
		Lane: board.Lane{
			Name:      "L01",
			TrailerNo: "TR001",
			Status:    "PA",
			Rows: []board.Row{
				{ID: 1, Seq: num(1), Planned: num(5), Done: num(5), Flags: conflict.Flags{Completed: true}},
				{ID: 2, Seq: num(2), Planned: num(5), Flags: conflict.Flags{PickingActive: true}},
			},
		},
		PrintedAt: time.Date(2026, 2, 20, 8, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("renderLoadingSheetPDF returned error: %v", err)
	}
	if !bytes.HasPrefix(pdf, []byte("%PDF")) {
		t.Fatalf("expected pdf header")
	}
}

func TestRenderLoadingSheetPDF_EmptyLaneUsesDefaultTrailer(t *testing.T) {
	t.Parallel()

	pdf, err := renderLoadingSheetPDF(SheetData{TimeSlot: "17:00", Lane: board.Lane{Name: "L02"}, PrintedAt: time.Now()})
	if err != nil {
		t.Fatalf("renderLoadingSheetPDF returned error: %v", err)
	}
	if len(pdf) == 0 {
		t.Fatalf("expected non-empty pdf bytes")
	}
}

func TestLoadingSheetQueryHandler(t *testing.T) {
	db := openLoadsTestDB(t)
	mustCreate(t, db, CreateInput{Lane: "L01", TrailerNo: "TR5", Seq: num(1), Planned: num(3)})
	h := LoadingSheetQueryHandler(db, board.Options{})

	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodGet, "/tasker/loads/sheet.pdf?time_slot=17:00&lane=l01", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/pdf" {
		t.Fatalf("unexpected content type %q", ct)
	}

	rec = httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodGet, "/tasker/loads/sheet.pdf?time_slot=17:00", nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without lane, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodGet, "/tasker/loads/sheet.pdf?time_slot=17:00&lane=L09", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown lane, got %d", rec.Code)
	}
}
