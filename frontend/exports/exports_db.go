package exports

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"

	"github.com/uptrace/bun"
	"github.com/xuri/excelize/v2"

	"dockboard/frontend/board"
	"dockboard/infrastructure/sqlite"
)

// loadRecords flattens a scanned board into export rows in board order.
func loadRecords(b board.Board) [][]string {
	records := make([][]string, 0)
	for _, slot := range b.Slots {
		for _, lane := range slot.Lanes {
			for _, row := range lane.Rows {
				records = append(records, []string{
					slot.TimeSlot,
					lane.Name,
					lane.TrailerNo,
					lane.Status,
					lane.ShipDate,
					row.SeqText(),
					row.PlannedText(),
					row.DoneText(),
					row.LOCode,
					row.Picker,
					row.Area,
					row.Class(),
				})
			}
		}
	}
	return records
}

func writeLoadsCSV(w io.Writer, b board.Board) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	if err := writer.Write(loadsHeader); err != nil {
		return err
	}
	for _, record := range loadRecords(b) {
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func writeLoadsXLSX(w io.Writer, b board.Board) error {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Loads"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return err
	}
	rows := append([][]string{loadsHeader}, loadRecords(b)...)
	for i, record := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		values := make([]any, len(record))
		for j, v := range record {
			values[j] = v
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}
	_, err := f.WriteTo(w)
	return err
}

func recordExportRun(ctx context.Context, db *sqlite.DB, userID *int64, exportType string) error {
	return db.WithWriteTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		var uid any
		if userID != nil {
			uid = *userID
		}
		_, err := tx.ExecContext(ctx, `INSERT INTO export_runs (user_id, export_type, created_at) VALUES (?, ?, CURRENT_TIMESTAMP)`, uid, exportType)
		return err
	})
}

// CountExportRuns returns how many exports of exportType were recorded.
func CountExportRuns(ctx context.Context, db *sqlite.DB, exportType string) (int, error) {
	var count int
	err := db.WithReadTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		return tx.NewRaw(`SELECT COUNT(1) FROM export_runs WHERE export_type = ?`, exportType).Scan(ctx, &count)
	})
	return count, err
}
