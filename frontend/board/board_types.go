package board

import (
	"strconv"

	"dockboard/frontend/shared/nav"
	"dockboard/infrastructure/conflict"
)

// DefaultTrailer is shown when no trailer number is set.
const DefaultTrailer = "00000000"

// Row is one load as shown on a lane card.
type Row struct {
	ID      int64
	Seq     *int64
	Planned *int64
	Done    *int64
	LOCode  string
	Picker  string
	Area    string
	Flags   conflict.Flags
}

func (r Row) SeqText() string     { return intText(r.Seq) }
func (r Row) PlannedText() string { return intText(r.Planned) }
func (r Row) DoneText() string    { return intText(r.Done) }

// Class is the row style for the current flags.
func (r Row) Class() string { return r.Flags.Class() }

func intText(v *int64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatInt(*v, 10)
}

// Lane is a lane card. Header values come from its first row.
type Lane struct {
	Name      string
	TimeSlot  string
	TrailerNo string
	Status    string
	ShipDate  string
	Rows      []Row
}

// Slot groups the lane cards of one time slot.
type Slot struct {
	TimeSlot    string
	ShipDate    string
	TrailerText string
	Lanes       []Lane
	Summary     conflict.Summary
}

// Board is the whole loading board.
type Board struct {
	Slots []Slot
}

// FlagsResponse is returned by the flags endpoint.
type FlagsResponse struct {
	Slots []SlotFlags `json:"slots"`
}

// SlotFlags is the scan result of one slot keyed by load ID.
type SlotFlags struct {
	TimeSlot string                    `json:"time_slot"`
	Flags    map[string]conflict.Flags `json:"flags"`
	Summary  conflict.Summary          `json:"summary"`
}

// PageData feeds the board page.
type PageData struct {
	Nav        nav.TopNavData
	Board      Board
	Filter     string
	CanEdit    bool
	IsAdmin    bool
	Statuses   []string
	LaneNames  []string
	DebounceMS int64
}
