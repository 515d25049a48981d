package kpi

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/uptrace/bun"
	"github.com/xuri/excelize/v2"

	"dockboard/infrastructure/audit"
	"dockboard/infrastructure/sqlite"
	"dockboard/models"
)

// ReadRows returns the rows of an uploaded sheet. Files ending in .csv are
// read as CSV; everything else must be an .xlsx workbook, whose first sheet
// is used.
func ReadRows(fileName string, r io.Reader) ([][]string, error) {
	if strings.EqualFold(filepath.Ext(fileName), ".csv") {
		cr := csv.NewReader(r)
		cr.TrimLeadingSpace = true
		cr.FieldsPerRecord = -1
		rows, err := cr.ReadAll()
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}
		return rows, nil
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrEmptySheet
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheets[0], err)
	}
	return rows, nil
}

// Aggregate sums loads_count by shift and by user. Shifts other than A, B
// and C, rows without an email and rows with a non-numeric count are
// dropped.
func Aggregate(rows [][]string) (Report, error) {
	if len(rows) == 0 {
		return Report{}, ErrEmptySheet
	}
	index := make(map[string]int, len(rows[0]))
	for i, h := range rows[0] {
		key := strings.ToLower(strings.TrimSpace(h))
		if _, seen := index[key]; !seen {
			index[key] = i
		}
	}
	for _, col := range RequiredColumns {
		if _, ok := index[col]; !ok {
			return Report{}, ErrMissingColumns
		}
	}

	cell := func(row []string, col string) string {
		i := index[col]
		if i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	byShift := map[string]float64{}
	byUser := map[string]float64{}
	var report Report
	for _, row := range rows[1:] {
		if isBlank(row) {
			continue
		}
		report.Rows++
		email := cell(row, "user_email")
		shift := strings.ToUpper(cell(row, "shift"))
		if email == "" || (shift != "A" && shift != "B" && shift != "C") {
			report.Dropped++
			continue
		}
		count, err := strconv.ParseFloat(cell(row, "loads_count"), 64)
		if err != nil {
			report.Dropped++
			continue
		}
		byShift[shift] += count
		byUser[email] += count
	}

	report.ByShift = totals(byShift)
	sort.Slice(report.ByShift, func(i, j int) bool { return report.ByShift[i].Key < report.ByShift[j].Key })
	report.ByUser = totals(byUser)
	sort.Slice(report.ByUser, func(i, j int) bool {
		a, b := report.ByUser[i], report.ByUser[j]
		if a.TotalLoads != b.TotalLoads {
			return a.TotalLoads > b.TotalLoads
		}
		return a.Key < b.Key
	})
	return report, nil
}

func totals(m map[string]float64) []Total {
	out := make([]Total, 0, len(m))
	for k, v := range m {
		out = append(out, Total{Key: k, TotalLoads: v})
	}
	return out
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// Import reads, aggregates and records one upload.
func Import(ctx context.Context, db *sqlite.DB, auditSvc *audit.Service, userID int64, fileName string, r io.Reader) (Report, error) {
	rows, err := ReadRows(fileName, r)
	if err != nil {
		return Report{}, err
	}
	report, err := Aggregate(rows)
	if err != nil {
		return Report{}, err
	}
	report.FileName = fileName

	err = db.WithWriteTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		run := &models.KPIImportRun{UserID: userID, FileName: fileName, RowCount: report.Rows, Dropped: report.Dropped}
		if _, err := tx.NewInsert().Model(run).Exec(ctx); err != nil {
			return fmt.Errorf("record kpi import: %w", err)
		}
		if auditSvc != nil {
			after := map[string]any{"file": fileName, "rows": report.Rows, "dropped": report.Dropped}
			return auditSvc.Write(ctx, tx, userID, audit.ActionKPIImport, "kpi_import_runs", strconv.FormatInt(run.ID, 10), nil, after)
		}
		return nil
	})
	return report, err
}
