package audit

import (
	"context"
	"fmt"

	"github.com/goccy/go-json"
	"github.com/uptrace/bun"

	"dockboard/models"
)

// Actions recorded against loads and users.
const (
	ActionLoadCreate   = "load.create"
	ActionLoadUpdate   = "load.update"
	ActionLoadDelete   = "load.delete"
	ActionLaneHeader   = "lane.header"
	ActionLaneClear    = "lane.clear"
	ActionLoadsClear   = "loads.clear"
	ActionLoadsDemo    = "loads.demo"
	ActionUserCreate   = "user.create"
	ActionUserUpdate   = "user.update"
	ActionUserPassword = "user.password"
	ActionUserDelete   = "user.delete"
	ActionKPIImport    = "kpi.import"
)

// Service writes audit records inside the caller transaction.
type Service struct{}

func NewService() *Service {
	return &Service{}
}

func (s *Service) Write(ctx context.Context, tx bun.Tx, userID int64, action, entityType, entityID string, before, after any) error {
	beforeJSON, err := marshal(before)
	if err != nil {
		return fmt.Errorf("audit before: %w", err)
	}
	afterJSON, err := marshal(after)
	if err != nil {
		return fmt.Errorf("audit after: %w", err)
	}
	log := &models.AuditLog{
		UserID:     userID,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		BeforeJSON: beforeJSON,
		AfterJSON:  afterJSON,
	}
	_, err = tx.NewInsert().Model(log).Exec(ctx)
	return err
}

func marshal(v any) (string, error) {
	if v == nil {
		return "", nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
