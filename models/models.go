package models

import (
	"time"

	"github.com/uptrace/bun"
)

// User represents an authenticated dock user.
type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID           int64     `bun:"id,pk,autoincrement"`
	Email        string    `bun:"email,unique,notnull"`
	FullName     string    `bun:"full_name,notnull"`
	PasswordHash string    `bun:"password_hash,notnull"`
	Role         string    `bun:"role,notnull"`
	IsActive     bool      `bun:"is_active,notnull,default:true"`
	CreatedAt    time.Time `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt    time.Time `bun:"updated_at,notnull,default:current_timestamp"`
}

// Session is used by middleware and auth handlers.
type Session struct {
	bun.BaseModel `bun:"table:sessions,alias:s"`

	ID                string         `bun:"id,pk"`
	UserID            int64          `bun:"user_id,notnull"`
	User              User           `bun:"rel:belongs-to,join:user_id=id"`
	UserRoles         []string       `bun:"-"`
	ScreenPermissions map[string]int `bun:"-"`
	ExpiresAt         time.Time      `bun:"expires_at,notnull"`
	CreatedAt         time.Time      `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt         time.Time      `bun:"updated_at,notnull,default:current_timestamp"`
}

// Expired returns true when the session expiry time has passed.
func (s Session) Expired() bool {
	return time.Now().After(s.ExpiresAt)
}

// Load is one planned row on a lane card. Lane cards are identified by
// (time_slot, lane); header fields are repeated on every row of the card.
type Load struct {
	bun.BaseModel `bun:"table:loads,alias:l"`

	ID          int64     `bun:"id,pk,autoincrement"`
	TimeSlot    string    `bun:"time_slot,notnull,default:'17:00'"`
	TrailerNo   *string   `bun:"trailer_no"`
	Lane        *string   `bun:"lane"`
	Seq         *int64    `bun:"seq"`
	Planned     *int64    `bun:"planned"`
	Done        *int64    `bun:"done"`
	LOCode      *string   `bun:"lo_code"`
	Picker      *string   `bun:"picker"`
	Status      *string   `bun:"status"`
	Confirmed   *int64    `bun:"confirmed"`
	VehicleNo   string    `bun:"vehicle_no,notnull,default:''"`
	OrderNo     string    `bun:"order_no,notnull,default:''"`
	PayloadTons float64   `bun:"payload_tons,notnull,default:0"`
	Notes       *string   `bun:"notes"`
	ShipDate    *string   `bun:"ship_date"`
	Area        *string   `bun:"area"`
	Shift       string    `bun:"shift,notnull"`
	CreatedByID int64     `bun:"created_by_id,notnull"`
	CreatedAt   time.Time `bun:"created_at,notnull,default:current_timestamp"`
}

// AuditLog captures immutable change history for key operations.
type AuditLog struct {
	bun.BaseModel `bun:"table:audit_logs,alias:al"`

	ID         int64     `bun:"id,pk,autoincrement"`
	UserID     int64     `bun:"user_id,notnull"`
	Action     string    `bun:"action,notnull"`
	EntityType string    `bun:"entity_type,notnull"`
	EntityID   string    `bun:"entity_id,notnull"`
	BeforeJSON string    `bun:"before_json"`
	AfterJSON  string    `bun:"after_json"`
	CreatedAt  time.Time `bun:"created_at,notnull,default:current_timestamp"`
}

// KPIImportRun records one uploaded KPI sheet.
type KPIImportRun struct {
	bun.BaseModel `bun:"table:kpi_import_runs,alias:kr"`

	ID        int64     `bun:"id,pk,autoincrement"`
	UserID    int64     `bun:"user_id,notnull"`
	FileName  string    `bun:"file_name,notnull"`
	RowCount  int       `bun:"row_count,notnull"`
	Dropped   int       `bun:"dropped_count,notnull"`
	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp"`
}
