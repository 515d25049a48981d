package loads

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"slices"
	"strconv"

	"github.com/uptrace/bun"

	"dockboard/infrastructure/audit"
	"dockboard/infrastructure/sqlite"
	"dockboard/models"
)

// CreateLoad inserts a row and returns it with its ID.
func CreateLoad(ctx context.Context, db *sqlite.DB, auditSvc *audit.Service, userID int64, in CreateInput) (models.Load, error) {
	status, err := normalizeStatus(in.Status)
	if err != nil {
		return models.Load{}, err
	}
	shift, err := normalizeShift(in.Shift)
	if err != nil {
		return models.Load{}, err
	}
	timeSlot := in.TimeSlot
	if timeSlot == "" {
		timeSlot = "17:00"
	}
	lane := normalizeLane(in.Lane)

	load := models.Load{
		TimeSlot:    timeSlot,
		Lane:        &lane,
		Area:        nullable(in.Area),
		TrailerNo:   nullable(in.TrailerNo),
		Status:      nullable(status),
		ShipDate:    nullable(in.ShipDate),
		Seq:         in.Seq,
		Planned:     in.Planned,
		Done:        in.Done,
		LOCode:      nullable(in.LOCode),
		Picker:      nullable(in.Picker),
		Shift:       shift,
		CreatedByID: userID,
	}
	err = db.WithWriteTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewInsert().Model(&load).Exec(ctx); err != nil {
			return fmt.Errorf("insert load: %w", err)
		}
		return auditSvc.Write(ctx, tx, userID, audit.ActionLoadCreate, "load", strconv.FormatInt(load.ID, 10), nil, load)
	})
	if err != nil {
		return models.Load{}, err
	}
	return load, nil
}

// GetLoad returns one row.
func GetLoad(ctx context.Context, db *sqlite.DB, id int64) (models.Load, error) {
	var load models.Load
	err := db.WithReadTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		return tx.NewSelect().Model(&load).Where("l.id = ?", id).Limit(1).Scan(ctx)
	})
	if errors.Is(err, sql.ErrNoRows) {
		return models.Load{}, ErrLoadNotFound
	}
	return load, err
}

// PatchFromForm collects the editable fields present in form. Quantities
// and seq parse as integers or become NULL; empty strings become NULL.
func PatchFromForm(form url.Values) (Patch, error) {
	p := Patch{}
	for _, field := range EditableFields {
		values, ok := form[field]
		if !ok {
			continue
		}
		raw := ""
		if len(values) > 0 {
			raw = values[0]
		}
		switch field {
		case "seq", "planned", "done":
			p[field] = parseInteger(raw)
		case "status":
			s, err := normalizeStatus(raw)
			if err != nil {
				return nil, err
			}
			p[field] = nullable(s)
		case "lane":
			if v := nullable(raw); v != nil {
				lane := normalizeLane(*v)
				p[field] = &lane
			} else {
				p[field] = nil
			}
		case "time_slot":
			// time_slot is NOT NULL; an empty value leaves it unchanged.
			if v := nullable(raw); v != nil {
				p[field] = *v
			}
		default:
			p[field] = nullable(raw)
		}
	}
	return p, nil
}

// UpdateLoad applies patch to one row and returns the row before and after.
func UpdateLoad(ctx context.Context, db *sqlite.DB, auditSvc *audit.Service, userID, id int64, patch Patch) (before, after models.Load, err error) {
	err = db.WithWriteTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		if err := tx.NewSelect().Model(&before).Where("l.id = ?", id).Limit(1).Scan(ctx); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrLoadNotFound
			}
			return fmt.Errorf("load row: %w", err)
		}
		if len(patch) > 0 {
			q := tx.NewUpdate().Model((*models.Load)(nil)).Where("id = ?", id)
			for _, field := range EditableFields {
				if v, ok := patch[field]; ok {
					q = q.Set("? = ?", bun.Ident(field), v)
				}
			}
			if _, err := q.Exec(ctx); err != nil {
				return fmt.Errorf("update load: %w", err)
			}
		}
		if err := tx.NewSelect().Model(&after).Where("l.id = ?", id).Limit(1).Scan(ctx); err != nil {
			return fmt.Errorf("reload row: %w", err)
		}
		return auditSvc.Write(ctx, tx, userID, audit.ActionLoadUpdate, "load", strconv.FormatInt(id, 10), before, after)
	})
	return before, after, err
}

// ChangedFields compares the editable fields of two versions of a row. The
// autosave form posts every input of a row, so the patch alone does not say
// what the user touched.
func ChangedFields(before, after models.Load) Changes {
	var out Changes
	add := func(field string, same bool) {
		if !same {
			out = append(out, field)
		}
	}
	add("seq", sameInt(before.Seq, after.Seq))
	add("planned", sameInt(before.Planned, after.Planned))
	add("done", sameInt(before.Done, after.Done))
	add("lo_code", sameText(before.LOCode, after.LOCode))
	add("picker", sameText(before.Picker, after.Picker))
	add("status", sameText(before.Status, after.Status))
	add("time_slot", before.TimeSlot == after.TimeSlot)
	add("lane", sameText(before.Lane, after.Lane))
	add("trailer_no", sameText(before.TrailerNo, after.TrailerNo))
	add("ship_date", sameText(before.ShipDate, after.ShipDate))
	return out
}

func sameInt(a, b *int64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func sameText(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// DeleteLoad removes one row and returns it.
func DeleteLoad(ctx context.Context, db *sqlite.DB, auditSvc *audit.Service, userID, id int64) (models.Load, error) {
	var load models.Load
	err := db.WithWriteTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		if err := tx.NewSelect().Model(&load).Where("l.id = ?", id).Limit(1).Scan(ctx); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrLoadNotFound
			}
			return err
		}
		if _, err := tx.NewDelete().Model((*models.Load)(nil)).Where("id = ?", id).Exec(ctx); err != nil {
			return fmt.Errorf("delete load: %w", err)
		}
		return auditSvc.Write(ctx, tx, userID, audit.ActionLoadDelete, "load", strconv.FormatInt(id, 10), load, nil)
	})
	return load, err
}

// UpdateHeader applies the non-empty header fields to every row of the lane
// card (orig time slot, lane). It returns the number of rows changed.
func UpdateHeader(ctx context.Context, db *sqlite.DB, auditSvc *audit.Service, userID int64, in HeaderInput) (int, error) {
	if in.OrigTimeSlot == "" || in.Lane == "" {
		return 0, ErrHeaderIncomplete
	}
	status, err := normalizeStatus(in.Status)
	if err != nil {
		return 0, err
	}
	in.Lane = normalizeLane(in.Lane)

	var n int
	err = db.WithWriteTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		q := tx.NewUpdate().Model((*models.Load)(nil)).
			Where("time_slot = ?", in.OrigTimeSlot).
			Where("lane = ?", in.Lane)
		changes := 0
		if in.TrailerNo != "" {
			q = q.Set("trailer_no = ?", in.TrailerNo)
			changes++
		}
		if in.TimeSlot != "" {
			q = q.Set("time_slot = ?", in.TimeSlot)
			changes++
		}
		if status != "" {
			q = q.Set("status = ?", status)
			changes++
		}
		if in.ShipDate != "" {
			q = q.Set("ship_date = ?", in.ShipDate)
			changes++
		}

		count, err := tx.NewSelect().Model((*models.Load)(nil)).
			Where("time_slot = ?", in.OrigTimeSlot).
			Where("lane = ?", in.Lane).
			Count(ctx)
		if err != nil {
			return fmt.Errorf("count lane rows: %w", err)
		}
		if count == 0 {
			return ErrNoRowsOnLane
		}
		n = count
		if changes == 0 {
			return nil
		}
		if _, err := q.Exec(ctx); err != nil {
			return fmt.Errorf("update header: %w", err)
		}
		return auditSvc.Write(ctx, tx, userID, audit.ActionLaneHeader, "lane", in.OrigTimeSlot+"/"+in.Lane, nil, in)
	})
	return n, err
}

// ClearLane nulls planned, done, LO code and picker on every row of the lane
// card and returns the number of rows cleared.
func ClearLane(ctx context.Context, db *sqlite.DB, auditSvc *audit.Service, userID int64, timeSlot, lane string) (int, error) {
	if timeSlot == "" || lane == "" {
		return 0, ErrHeaderIncomplete
	}
	lane = normalizeLane(lane)

	var n int
	err := db.WithWriteTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		res, err := tx.NewUpdate().Model((*models.Load)(nil)).
			Set("planned = NULL").
			Set("done = NULL").
			Set("lo_code = NULL").
			Set("picker = NULL").
			Where("time_slot = ?", timeSlot).
			Where("lane = ?", lane).
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("clear lane: %w", err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if affected == 0 {
			return ErrNoRowsOnLane
		}
		n = int(affected)
		return auditSvc.Write(ctx, tx, userID, audit.ActionLaneClear, "lane", timeSlot+"/"+lane, nil, map[string]any{"rows": n})
	})
	return n, err
}

// ClearAll deletes every load and returns the affected time slots.
func ClearAll(ctx context.Context, db *sqlite.DB, auditSvc *audit.Service, userID int64) (int, []string, error) {
	var n int
	var slots []string
	err := db.WithWriteTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		if err := tx.NewSelect().Model((*models.Load)(nil)).Distinct().Column("time_slot").Scan(ctx, &slots); err != nil {
			return fmt.Errorf("list slots: %w", err)
		}
		res, err := tx.NewDelete().Model((*models.Load)(nil)).Where("1 = 1").Exec(ctx)
		if err != nil {
			return fmt.Errorf("delete loads: %w", err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return err
		}
		n = int(affected)
		return auditSvc.Write(ctx, tx, userID, audit.ActionLoadsClear, "load", "*", nil, map[string]any{"rows": n})
	})
	return n, slots, err
}

// DemoLoads returns the sample board used for demos and training.
func DemoLoads(userID int64) []models.Load {
	s := func(v string) *string { return &v }
	i := func(v int64) *int64 { return &v }
	return []models.Load{
		{TimeSlot: "17:00", Lane: s("L01"), TrailerNo: s("TR001"), Status: s("PL"), ShipDate: s("04.10.2025"), Area: s("J01"), Seq: i(1), Planned: i(100), Done: i(0), LOCode: s("LO001"), Picker: s("Jan Kowalski"), Shift: "A", CreatedByID: userID},
		{TimeSlot: "17:00", Lane: s("L01"), TrailerNo: s("TR001"), Status: s("PL"), ShipDate: s("04.10.2025"), Area: s("J02"), Seq: i(2), Planned: i(50), Done: i(0), LOCode: s("LO002"), Picker: s("Anna Nowak"), Shift: "A", CreatedByID: userID},
		{TimeSlot: "17:00", Lane: s("L02"), TrailerNo: s("TR002"), Status: s("PA"), ShipDate: s("04.10.2025"), Area: s("J03"), Seq: i(1), Planned: i(75), Done: i(25), LOCode: s("LO003"), Picker: s("Piotr Wiśniewski"), Shift: "A", CreatedByID: userID},
		{TimeSlot: "18:00", Lane: s("L01"), TrailerNo: s("TR003"), Status: s("PL"), ShipDate: s("05.10.2025"), Area: s("J01"), Seq: i(1), Planned: i(200), Done: i(0), LOCode: s("LO004"), Picker: s("Maria Kowalczyk"), Shift: "B", CreatedByID: userID},
	}
}

// InsertDemo seeds the demo board when no loads exist. It returns the number
// of rows inserted and the affected slots.
func InsertDemo(ctx context.Context, db *sqlite.DB, auditSvc *audit.Service, userID int64) (int, []string, error) {
	demo := DemoLoads(userID)
	var slots []string
	err := db.WithWriteTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		existing, err := tx.NewSelect().Model((*models.Load)(nil)).Count(ctx)
		if err != nil {
			return fmt.Errorf("count loads: %w", err)
		}
		if existing > 0 {
			return fmt.Errorf("%w: %d rows", ErrBoardNotEmpty, existing)
		}
		if _, err := tx.NewInsert().Model(&demo).Exec(ctx); err != nil {
			return fmt.Errorf("insert demo loads: %w", err)
		}
		for _, l := range demo {
			if !slices.Contains(slots, l.TimeSlot) {
				slots = append(slots, l.TimeSlot)
			}
		}
		return auditSvc.Write(ctx, tx, userID, audit.ActionLoadsDemo, "load", "*", nil, map[string]any{"rows": len(demo)})
	})
	if err != nil {
		return 0, nil, err
	}
	return len(demo), slots, nil
}
