package admindata

import (
	"context"
	"strings"

	"github.com/uptrace/bun"

	"dockboard/infrastructure/sqlite"
)

// AuditLimit caps the activity list on the data page.
const AuditLimit = 50

func LoadDataPageData(ctx context.Context, db *sqlite.DB) (PageData, error) {
	data := PageData{Audit: make([]AuditRow, 0)}
	err := db.WithReadTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		if err := tx.NewRaw(`
SELECT
	(SELECT COUNT(1) FROM loads),
	(SELECT COUNT(DISTINCT time_slot) FROM loads),
	(SELECT COUNT(1) FROM users),
	(SELECT COUNT(1) FROM export_runs),
	(SELECT COUNT(1) FROM kpi_import_runs)`).
			Scan(ctx, &data.Counts.Loads, &data.Counts.Slots, &data.Counts.Users, &data.Counts.ExportRuns, &data.Counts.KPIRuns); err != nil {
			return err
		}

		type row struct {
			CreatedAt  string `bun:"created_at_local"`
			Actor      string `bun:"actor"`
			Action     string `bun:"action"`
			EntityType string `bun:"entity_type"`
			EntityID   string `bun:"entity_id"`
			AfterJSON  string `bun:"after_json"`
		}
		rows := make([]row, 0)
		if err := tx.NewRaw(`
SELECT
	COALESCE(strftime('%d.%m.%Y %H:%M', al.created_at), '') AS created_at_local,
	COALESCE(u.email, '-') AS actor,
	al.action,
	al.entity_type,
	COALESCE(al.entity_id, '') AS entity_id,
	COALESCE(al.after_json, '') AS after_json
FROM audit_logs al
LEFT JOIN users u ON u.id = al.user_id
ORDER BY al.created_at DESC, al.id DESC
LIMIT ?`, AuditLimit).Scan(ctx, &rows); err != nil {
			return err
		}
		for _, r := range rows {
			data.Audit = append(data.Audit, AuditRow{
				CreatedAt:  strings.TrimSpace(r.CreatedAt),
				Actor:      strings.TrimSpace(r.Actor),
				Action:     strings.TrimSpace(r.Action),
				EntityType: strings.TrimSpace(r.EntityType),
				EntityID:   strings.TrimSpace(r.EntityID),
				AfterJSON:  strings.TrimSpace(r.AfterJSON),
			})
		}
		return nil
	})
	return data, err
}
