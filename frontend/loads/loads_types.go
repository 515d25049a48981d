package loads

import (
	"errors"
	"strconv"
	"strings"
)

var (
	ErrLoadNotFound      = errors.New("load not found")
	ErrForbidden         = errors.New("you are not allowed to edit loads")
	ErrHeaderIncomplete  = errors.New("time slot and lane are required")
	ErrInvalidStatus     = errors.New("status must be PL, PA or LO")
	ErrInvalidShift      = errors.New("shift must be A, B or C")
	ErrNoRowsOnLane      = errors.New("no rows on this lane")
	ErrBoardNotEmpty     = errors.New("loads table is not empty")
	ErrSheetLaneRequired = errors.New("time slot and lane are required for a sheet")
)

// Notifier receives the time slots whose board changed.
type Notifier interface {
	Notify(timeSlot string, immediate bool)
}

// CreateInput holds a new row as submitted by the add form.
type CreateInput struct {
	TimeSlot  string
	Lane      string
	Area      string
	TrailerNo string
	Status    string
	ShipDate  string
	Seq       *int64
	Planned   *int64
	Done      *int64
	LOCode    string
	Picker    string
	Shift     string
}

// EditableFields lists the row fields the autosave form may change.
var EditableFields = []string{"seq", "planned", "done", "lo_code", "picker", "status", "time_slot", "lane", "trailer_no", "ship_date"}

// Patch is a partial row update. Only present fields change; a nil value
// stores NULL.
type Patch map[string]any

// Changes names the row fields an update actually modified.
type Changes []string

// QuantitiesOnly reports whether nothing but planned and done changed; such
// edits are rescanned after the debounce period.
func (c Changes) QuantitiesOnly() bool {
	if len(c) == 0 {
		return false
	}
	for _, f := range c {
		if f != "planned" && f != "done" {
			return false
		}
	}
	return true
}

// HeaderInput updates every row of one lane card.
type HeaderInput struct {
	OrigTimeSlot string
	Lane         string
	TimeSlot     string
	TrailerNo    string
	Status       string
	ShipDate     string
}

// TargetSlot is the slot to show after the update.
func (h HeaderInput) TargetSlot() string {
	if h.TimeSlot != "" {
		return h.TimeSlot
	}
	return h.OrigTimeSlot
}

// parseDigits accepts only an all-digit value; anything else is NULL.
func parseDigits(raw string) *int64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	for _, c := range raw {
		if c < '0' || c > '9' {
			return nil
		}
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil
	}
	return &n
}

// parseInteger accepts a signed integer; anything else is NULL.
func parseInteger(raw string) *int64 {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "None" {
		return nil
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil
	}
	return &n
}

func nullable(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func normalizeLane(raw string) string {
	lane := strings.ToUpper(strings.TrimSpace(raw))
	if lane == "" {
		return "L01"
	}
	return lane
}

func normalizeStatus(raw string) (string, error) {
	s := strings.ToUpper(strings.TrimSpace(raw))
	switch s {
	case "", "PL", "PA", "LO":
		return s, nil
	default:
		return "", ErrInvalidStatus
	}
}

func normalizeShift(raw string) (string, error) {
	s := strings.ToUpper(strings.TrimSpace(raw))
	switch s {
	case "":
		return "A", nil
	case "A", "B", "C":
		return s, nil
	default:
		return "", ErrInvalidShift
	}
}
