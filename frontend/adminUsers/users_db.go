package adminusers

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/uptrace/bun"

	"dockboard/frontend/login"
	"dockboard/infrastructure/audit"
	"dockboard/infrastructure/password"
	"dockboard/infrastructure/rbac"
	"dockboard/infrastructure/sqlite"
	"dockboard/models"
)

func LoadUsersPageData(ctx context.Context, db *sqlite.DB) ([]UserView, error) {
	users := make([]UserView, 0)
	err := db.WithReadTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		return tx.NewRaw("SELECT id, email, full_name, role, is_active FROM users ORDER BY email ASC").Scan(ctx, &users)
	})
	return users, err
}

// GetUser loads one user by ID.
func GetUser(ctx context.Context, db *sqlite.DB, id int64) (models.User, error) {
	var user models.User
	err := db.WithReadTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		return tx.NewSelect().Model(&user).Where("u.id = ?", id).Limit(1).Scan(ctx)
	})
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, ErrUserNotFound
	}
	return user, err
}

func emailTaken(ctx context.Context, tx bun.Tx, email string, exceptID int64) (bool, error) {
	return tx.NewSelect().Model((*models.User)(nil)).
		Where("u.email = ?", email).
		Where("u.id != ?", exceptID).
		Exists(ctx)
}

func validateRole(actorRole, role string) error {
	if !rbac.ValidRole(role) {
		return ErrInvalidRole
	}
	if !slices.Contains(rbac.AssignableRoles(actorRole), role) {
		return ErrRoleNotAllowed
	}
	return nil
}

// CreateUser adds a user. Supervisors may only create plain users.
func CreateUser(ctx context.Context, db *sqlite.DB, auditSvc *audit.Service, actor models.User, in UserInput) (models.User, error) {
	email := login.NormalizeEmail(in.Email)
	if email == "" {
		return models.User{}, ErrEmailRequired
	}
	role := strings.ToLower(strings.TrimSpace(in.Role))
	if err := validateRole(actor.Role, role); err != nil {
		return models.User{}, err
	}
	if err := login.ValidatePasswordPolicy(in.Password); err != nil {
		return models.User{}, err
	}
	hash, err := password.Hash(in.Password, password.DefaultParams)
	if err != nil {
		return models.User{}, err
	}
	fullName := strings.TrimSpace(in.FullName)
	if fullName == "" {
		fullName = email
	}

	user := models.User{Email: email, FullName: fullName, PasswordHash: hash, Role: role, IsActive: true}
	err = db.WithWriteTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		taken, err := emailTaken(ctx, tx, email, 0)
		if err != nil {
			return err
		}
		if taken {
			return ErrEmailExists
		}
		if _, err := tx.NewInsert().Model(&user).Exec(ctx); err != nil {
			return fmt.Errorf("insert user: %w", err)
		}
		return auditSvc.Write(ctx, tx, actor.ID, audit.ActionUserCreate, "user", strconv.FormatInt(user.ID, 10), nil, auditView(user))
	})
	if err != nil {
		return models.User{}, err
	}
	return user, nil
}

// UpdateUser changes email, full name and role. It returns the user before
// the change so callers can drop cached state under the old email.
func UpdateUser(ctx context.Context, db *sqlite.DB, auditSvc *audit.Service, actor models.User, id int64, in UserInput) (before, after models.User, err error) {
	email := login.NormalizeEmail(in.Email)
	if email == "" {
		return before, after, ErrEmailRequired
	}
	role := strings.ToLower(strings.TrimSpace(in.Role))
	if err := validateRole(actor.Role, role); err != nil {
		return before, after, err
	}

	err = db.WithWriteTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		if err := tx.NewSelect().Model(&before).Where("u.id = ?", id).Limit(1).Scan(ctx); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrUserNotFound
			}
			return err
		}
		taken, err := emailTaken(ctx, tx, email, id)
		if err != nil {
			return err
		}
		if taken {
			return ErrEmailExists
		}
		after = before
		after.Email = email
		if name := strings.TrimSpace(in.FullName); name != "" {
			after.FullName = name
		}
		after.Role = role
		if _, err := tx.NewUpdate().Model((*models.User)(nil)).
			Set("email = ?", after.Email).
			Set("full_name = ?", after.FullName).
			Set("role = ?", after.Role).
			Set("updated_at = CURRENT_TIMESTAMP").
			Where("id = ?", id).
			Exec(ctx); err != nil {
			return fmt.Errorf("update user: %w", err)
		}
		return auditSvc.Write(ctx, tx, actor.ID, audit.ActionUserUpdate, "user", strconv.FormatInt(id, 10), auditView(before), auditView(after))
	})
	return before, after, err
}

// ChangePassword sets a new password after checking the policy.
func ChangePassword(ctx context.Context, db *sqlite.DB, auditSvc *audit.Service, actor models.User, id int64, rawPassword string) error {
	if err := login.ValidatePasswordPolicy(rawPassword); err != nil {
		return err
	}
	hash, err := password.Hash(rawPassword, password.DefaultParams)
	if err != nil {
		return err
	}
	return db.WithWriteTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		res, err := tx.NewUpdate().Model((*models.User)(nil)).
			Set("password_hash = ?", hash).
			Set("updated_at = CURRENT_TIMESTAMP").
			Where("id = ?", id).
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("update password: %w", err)
		}
		if n, err := res.RowsAffected(); err != nil {
			return err
		} else if n == 0 {
			return ErrUserNotFound
		}
		return auditSvc.Write(ctx, tx, actor.ID, audit.ActionUserPassword, "user", strconv.FormatInt(id, 10), nil, nil)
	})
}

// DeleteUser removes a user and its sessions. Loads the user created are
// handed over to the acting user.
func DeleteUser(ctx context.Context, db *sqlite.DB, auditSvc *audit.Service, actor models.User, id int64) (models.User, error) {
	if id == actor.ID {
		return models.User{}, ErrCannotDeleteSelf
	}
	var user models.User
	err := db.WithWriteTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		if err := tx.NewSelect().Model(&user).Where("u.id = ?", id).Limit(1).Scan(ctx); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrUserNotFound
			}
			return err
		}
		if _, err := tx.NewUpdate().Model((*models.Load)(nil)).
			Set("created_by_id = ?", actor.ID).
			Where("created_by_id = ?", id).
			Exec(ctx); err != nil {
			return fmt.Errorf("reassign loads: %w", err)
		}
		if _, err := tx.NewDelete().Model((*models.User)(nil)).Where("id = ?", id).Exec(ctx); err != nil {
			return fmt.Errorf("delete user: %w", err)
		}
		return auditSvc.Write(ctx, tx, actor.ID, audit.ActionUserDelete, "user", strconv.FormatInt(id, 10), auditView(user), nil)
	})
	return user, err
}

func auditView(u models.User) map[string]any {
	return map[string]any{"id": u.ID, "email": u.Email, "full_name": u.FullName, "role": u.Role}
}
