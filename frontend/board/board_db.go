package board

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/uptrace/bun"

	"dockboard/infrastructure/conflict"
	"dockboard/infrastructure/hub"
	"dockboard/infrastructure/sqlite"
	"dockboard/models"
)

// Options controls how loads are grouped.
type Options struct {
	Lanes           []string
	DefaultTimeSlot string
}

func (o Options) lanes() []string {
	if len(o.Lanes) == 0 {
		return []string{"L01", "L02", "L03"}
	}
	return o.Lanes
}

func (o Options) defaultSlot() string {
	if o.DefaultTimeSlot == "" {
		return "17:00"
	}
	return o.DefaultTimeSlot
}

// ListLoads returns loads ordered by time slot, lane and seq, optionally
// restricted to one time slot.
func ListLoads(ctx context.Context, db *sqlite.DB, timeSlot string) ([]models.Load, error) {
	loads := make([]models.Load, 0)
	err := db.WithReadTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		q := tx.NewSelect().Model(&loads).OrderExpr("l.time_slot ASC, l.lane ASC, l.seq ASC, l.id ASC")
		if timeSlot != "" {
			q = q.Where("l.time_slot = ?", timeSlot)
		}
		return q.Scan(ctx)
	})
	if err != nil {
		return nil, fmt.Errorf("list loads: %w", err)
	}
	return loads, nil
}

// LoadBoard reads loads, groups them and runs the scanner per slot.
func LoadBoard(ctx context.Context, db *sqlite.DB, timeSlot string, opts Options) (Board, error) {
	loads, err := ListLoads(ctx, db, timeSlot)
	if err != nil {
		return Board{}, err
	}
	b := Build(loads, opts)
	ApplyFlags(&b)
	return b, nil
}

// Build groups loads into slots and fixed lane cards. Slots keep first-seen
// order, which is time slot order for ListLoads output. Rows on lanes outside
// the configured set are not shown.
func Build(loads []models.Load, opts Options) Board {
	type slotAcc struct {
		shipDate    string
		hasShipDate bool
		trailers    map[string]struct{}
		rows        map[string][]models.Load
	}

	order := make([]string, 0)
	acc := make(map[string]*slotAcc)
	for _, l := range loads {
		ts := strings.TrimSpace(l.TimeSlot)
		if ts == "" {
			ts = "-"
		}
		a, ok := acc[ts]
		if !ok {
			a = &slotAcc{trailers: make(map[string]struct{}), rows: make(map[string][]models.Load)}
			acc[ts] = a
			order = append(order, ts)
		}
		ship := deref(l.ShipDate)
		if !a.hasShipDate || (ship != "" && a.shipDate == "") {
			a.shipDate = ship
			a.hasShipDate = true
		}
		if t := deref(l.TrailerNo); t != "" {
			a.trailers[t] = struct{}{}
		}
		lane := strings.ToUpper(strings.TrimSpace(deref(l.Lane)))
		if lane == "" {
			lane = "L01"
		}
		a.rows[lane] = append(a.rows[lane], l)
	}

	if len(order) == 0 {
		slot := opts.defaultSlot()
		order = append(order, slot)
		acc[slot] = &slotAcc{trailers: map[string]struct{}{}, rows: map[string][]models.Load{}}
	}

	b := Board{Slots: make([]Slot, 0, len(order))}
	for _, ts := range order {
		a := acc[ts]
		slot := Slot{TimeSlot: ts, ShipDate: a.shipDate, TrailerText: trailerText(a.trailers)}
		for _, name := range opts.lanes() {
			slot.Lanes = append(slot.Lanes, buildLane(name, ts, a.shipDate, a.rows[name]))
		}
		b.Slots = append(b.Slots, slot)
	}
	return b
}

func buildLane(name, slot, slotShipDate string, loads []models.Load) Lane {
	lane := Lane{Name: name, TimeSlot: slot, TrailerNo: DefaultTrailer, Status: string(conflict.StatusPlanned), ShipDate: slotShipDate}
	if len(loads) > 0 {
		first := loads[0]
		if t := deref(first.TrailerNo); t != "" {
			lane.TrailerNo = t
		}
		if s := deref(first.Status); s != "" {
			lane.Status = s
		}
		if first.TimeSlot != "" {
			lane.TimeSlot = first.TimeSlot
		}
		lane.ShipDate = deref(first.ShipDate)
	}

	sorted := make([]models.Load, len(loads))
	copy(sorted, loads)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i].Seq, sorted[j].Seq
		switch {
		case a == nil && b == nil:
			return false
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return *a < *b
		}
	})

	for _, l := range sorted {
		lane.Rows = append(lane.Rows, Row{
			ID:      l.ID,
			Seq:     l.Seq,
			Planned: l.Planned,
			Done:    l.Done,
			LOCode:  deref(l.LOCode),
			Picker:  deref(l.Picker),
			Area:    deref(l.Area),
		})
	}
	return lane
}

func trailerText(set map[string]struct{}) string {
	if len(set) == 0 {
		return DefaultTrailer
	}
	out := make([]string, 0, len(set))
	for t := range set {
		out = append(out, t)
	}
	sort.Strings(out)
	return strings.Join(out, ", ")
}

// Snapshot converts a slot's lane cards into scanner input. Quantities go
// through the same text parsing the board inputs use.
func Snapshot(slot Slot) []conflict.Lane {
	lanes := make([]conflict.Lane, len(slot.Lanes))
	for i, l := range slot.Lanes {
		lanes[i] = conflict.Lane{
			Name:   l.Name,
			Status: conflict.ParseStatus(l.Status),
			Rows:   make([]conflict.Row, len(l.Rows)),
		}
		for j, r := range l.Rows {
			lanes[i].Rows[j] = conflict.Row{
				Key:        strconv.FormatInt(r.ID, 10),
				Seq:        r.SeqText(),
				PlannedQty: conflict.ParseQty(r.PlannedText()),
				DoneQty:    conflict.ParseQty(r.DoneText()),
			}
		}
	}
	return lanes
}

// ApplyFlags scans every slot and stores the flags on its rows.
func ApplyFlags(b *Board) {
	for si := range b.Slots {
		slot := &b.Slots[si]
		res := conflict.Scan(Snapshot(*slot))
		for li := range slot.Lanes {
			for ri := range slot.Lanes[li].Rows {
				slot.Lanes[li].Rows[ri].Flags = res.Get(li, ri)
			}
		}
		slot.Summary = res.Summary()
	}
}

// Flags returns the per-slot flag maps of a scanned board.
func Flags(b Board) FlagsResponse {
	out := FlagsResponse{Slots: make([]SlotFlags, 0, len(b.Slots))}
	for _, slot := range b.Slots {
		sf := SlotFlags{TimeSlot: slot.TimeSlot, Flags: make(map[string]conflict.Flags), Summary: slot.Summary}
		for _, lane := range slot.Lanes {
			for _, r := range lane.Rows {
				sf.Flags[strconv.FormatInt(r.ID, 10)] = r.Flags
			}
		}
		out.Slots = append(out.Slots, sf)
	}
	return out
}

// ScanSlot is the hub rescan for one time slot.
func ScanSlot(db *sqlite.DB, opts Options) hub.ScanFunc {
	return func(ctx context.Context, timeSlot string) (hub.Event, error) {
		b, err := LoadBoard(ctx, db, timeSlot, opts)
		if err != nil {
			return hub.Event{}, err
		}
		ev := hub.Event{TimeSlot: timeSlot, Flags: map[string]conflict.Flags{}}
		for _, sf := range Flags(b).Slots {
			if sf.TimeSlot != timeSlot {
				continue
			}
			ev.Flags = sf.Flags
			ev.Summary = sf.Summary
		}
		return ev, nil
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}
