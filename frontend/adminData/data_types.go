package admindata

import "dockboard/frontend/shared/nav"

// Notifier receives the time slots whose board changed.
type Notifier interface {
	Notify(timeSlot string, immediate bool)
}

type Counts struct {
	Loads      int
	Slots      int
	Users      int
	ExportRuns int
	KPIRuns    int
}

type AuditRow struct {
	CreatedAt  string
	Actor      string
	Action     string
	EntityType string
	EntityID   string
	AfterJSON  string
}

type PageData struct {
	Nav    nav.TopNavData
	Counts Counts
	Audit  []AuditRow
}
