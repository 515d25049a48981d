package kpi

import (
	"errors"
	"strconv"

	"dockboard/frontend/shared/nav"
)

var (
	ErrNoFile         = errors.New("add an Excel or CSV file")
	ErrEmptySheet     = errors.New("the file has no rows")
	ErrMissingColumns = errors.New("missing required columns: timestamp, user_email, shift, loads_count")
)

// RequiredColumns are matched case-insensitively after trimming.
var RequiredColumns = []string{"timestamp", "user_email", "shift", "loads_count"}

// Total is one aggregated line of the report.
type Total struct {
	Key        string
	TotalLoads float64
}

func (t Total) TotalText() string {
	return strconv.FormatFloat(t.TotalLoads, 'f', -1, 64)
}

// Report is the result of one uploaded sheet.
type Report struct {
	FileName string
	Rows     int
	Dropped  int
	ByShift  []Total
	ByUser   []Total
}

type PageData struct {
	Nav    nav.TopNavData
	Report *Report
}
