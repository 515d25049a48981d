// Package conflict classifies lane rows for the loading board: rows being
// picked, rows whose planned quantity is fully done, and planned rows whose
// seq is still being picked on an active lane.
//
// Scan is a pure function of its input. Every call rebuilds the result from
// scratch, so callers re-run it on each trigger instead of patching state.
package conflict

import (
	"strconv"
	"strings"
)

// Status is the scheduling state of a lane card.
type Status string

const (
	StatusPlanned       Status = "PL"
	StatusPickingActive Status = "PA"
	StatusLoadout       Status = "LO"
)

// ParseStatus normalizes a stored or submitted status. Empty and unknown
// values fall back to Planned, which is what an unset card shows.
func ParseStatus(raw string) Status {
	switch Status(strings.ToUpper(strings.TrimSpace(raw))) {
	case StatusPickingActive:
		return StatusPickingActive
	case StatusLoadout:
		return StatusLoadout
	default:
		return StatusPlanned
	}
}

// Valid reports whether s is one of the three known statuses.
func (s Status) Valid() bool {
	return s == StatusPlanned || s == StatusPickingActive || s == StatusLoadout
}

func (s Status) String() string {
	return string(s)
}

// Row is one unit of work on a lane. Key is an opaque caller identifier used
// only to address results.
type Row struct {
	Key        string
	Seq        string
	PlannedQty int
	DoneQty    int
}

func (r Row) seq() string {
	return strings.TrimSpace(r.Seq)
}

func (r Row) completed() bool {
	return r.PlannedQty > 0 && r.DoneQty > 0 && r.PlannedQty == r.DoneQty
}

// Lane is a lane card with its status and ordered rows.
type Lane struct {
	Name   string
	Status Status
	Rows   []Row
}

func (l Lane) status() Status {
	if l.Status == "" {
		return StatusPlanned
	}
	return l.Status
}

// Flags are the derived display classifications of a row.
type Flags struct {
	PickingActive bool `json:"picking_active"`
	Completed     bool `json:"completed"`
	Conflicted    bool `json:"conflicted"`
}

// Row style classes consumed by the board markup.
const (
	ClassPickingActive = "picking-active-row"
	ClassCompleted     = "completed-row"
	ClassConflict      = "conflict-row"
)

// Class returns the row style for the flags, or "" when no flag is set.
func (f Flags) Class() string {
	switch {
	case f.Conflicted:
		return ClassConflict
	case f.Completed:
		return ClassCompleted
	case f.PickingActive:
		return ClassPickingActive
	default:
		return ""
	}
}

// Any reports whether at least one flag is set.
func (f Flags) Any() bool {
	return f.PickingActive || f.Completed || f.Conflicted
}

// Result holds flags indexed [lane][row], parallel to the scanned input.
type Result struct {
	Lanes [][]Flags
}

// Get returns the flags for lane i, row j; out of range yields zero flags.
func (r Result) Get(i, j int) Flags {
	if i < 0 || i >= len(r.Lanes) || j < 0 || j >= len(r.Lanes[i]) {
		return Flags{}
	}
	return r.Lanes[i][j]
}

// Summary counts rows per flag.
type Summary struct {
	PickingActive int `json:"picking_active"`
	Completed     int `json:"completed"`
	Conflicted    int `json:"conflicted"`
}

// Summary counts flagged rows across all lanes.
func (r Result) Summary() Summary {
	var s Summary
	for _, lane := range r.Lanes {
		for _, f := range lane {
			if f.PickingActive {
				s.PickingActive++
			}
			if f.Completed {
				s.Completed++
			}
			if f.Conflicted {
				s.Conflicted++
			}
		}
	}
	return s
}

// ByKey maps row keys to flags. Rows with an empty key are skipped; when
// keys repeat, the last row wins.
func ByKey(lanes []Lane, res Result) map[string]Flags {
	out := make(map[string]Flags)
	for i, lane := range lanes {
		for j, row := range lane.Rows {
			if row.Key == "" {
				continue
			}
			out[row.Key] = res.Get(i, j)
		}
	}
	return out
}

// ParseQty reads a quantity the way the board inputs are read: leading
// whitespace is skipped and the leading run of digits is used. Empty,
// non-numeric and negative input yields 0.
func ParseQty(raw string) int {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0
	}
	neg := false
	switch s[0] {
	case '+':
		s = s[1:]
	case '-':
		neg = true
		s = s[1:]
	}
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == 0 || neg {
		return 0
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		// Overflow: the digits are valid, the value is just huge.
		return int(^uint(0) >> 1)
	}
	return n
}

// Scan classifies every row of every lane.
//
// Conflicts are only raised on Planned lanes, for rows whose seq is still
// open on a Picking Active lane. Rows on Picking Active lanes are marked
// completed or picking. Loadout lanes take no part in conflict analysis.
func Scan(lanes []Lane, opts ...Option) Result {
	cfg := newOptions(opts)

	res := Result{Lanes: make([][]Flags, len(lanes))}
	for i, lane := range lanes {
		res.Lanes[i] = make([]Flags, len(lane.Rows))
	}

	var active, planned []int
	for i, lane := range lanes {
		switch lane.status() {
		case StatusPickingActive:
			active = append(active, i)
		case StatusPlanned:
			planned = append(planned, i)
		}
	}

	if len(active) > 0 && len(planned) > 0 {
		markConflicts(lanes, active, planned, res, cfg)
	}
	if len(active) > 0 && len(planned) > 1 {
		retractConflicts(lanes, active, planned, res, cfg)
	}

	for i, lane := range lanes {
		if lane.status() != StatusPickingActive {
			continue
		}
		for j, row := range lane.Rows {
			if row.PlannedQty <= 0 {
				continue
			}
			if row.completed() {
				res.Lanes[i][j].Completed = true
			} else {
				res.Lanes[i][j].PickingActive = true
			}
		}
	}

	return res
}

func markConflicts(lanes []Lane, active, planned []int, res Result, cfg options) {
	for _, ai := range active {
		for aj, ar := range lanes[ai].Rows {
			seq := ar.seq()
			if seq == "" || ar.PlannedQty <= 0 || ar.DoneQty >= ar.PlannedQty {
				continue
			}
			for _, pi := range planned {
				for pj, pr := range lanes[pi].Rows {
					if pr.PlannedQty <= 0 || pr.seq() != seq {
						continue
					}
					res.Lanes[pi][pj].Conflicted = true
					cfg.emit(TraceEvent{
						Kind:        TraceConflict,
						Seq:         seq,
						ActiveLane:  lanes[ai].Name,
						ActiveRow:   aj,
						PlannedLane: lanes[pi].Name,
						PlannedRow:  pj,
					})
				}
			}
		}
	}
}

// retractConflicts clears conflicts for the seq of a completed active row
// when no planned row still carries a quantity for that seq.
func retractConflicts(lanes []Lane, active, planned []int, res Result, cfg options) {
	for _, ai := range active {
		for aj, ar := range lanes[ai].Rows {
			seq := ar.seq()
			if seq == "" || !ar.completed() {
				continue
			}

			contended := false
			for _, pi := range planned {
				for _, pr := range lanes[pi].Rows {
					if pr.seq() == seq && pr.PlannedQty > 0 {
						contended = true
					}
				}
			}

			ev := TraceEvent{Kind: TraceKeep, Seq: seq, ActiveLane: lanes[ai].Name, ActiveRow: aj, PlannedRow: -1}
			if !contended {
				ev.Kind = TraceRetract
				for _, pi := range planned {
					for pj, pr := range lanes[pi].Rows {
						if pr.seq() == seq {
							res.Lanes[pi][pj].Conflicted = false
						}
					}
				}
			}
			cfg.emit(ev)
		}
	}
}
