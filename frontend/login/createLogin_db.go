package login

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/uptrace/bun"

	"dockboard/infrastructure/password"
	"dockboard/infrastructure/rbac"
	"dockboard/infrastructure/sqlite"
	"dockboard/models"
)

// ErrInvalidCredentials hides whether the email or the password was wrong.
var ErrInvalidCredentials = errors.New("invalid email or password")

// NormalizeEmail is the stored and compared form of an email.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func findUserByEmail(ctx context.Context, tx bun.Tx, email string) (models.User, error) {
	var user models.User
	err := tx.NewSelect().
		Model(&user).
		Where("u.email = ?", NormalizeEmail(email)).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return models.User{}, err
	}
	return user, nil
}

func authenticateUser(ctx context.Context, db *sqlite.DB, email, rawPassword string) (models.User, error) {
	var user models.User
	err := db.WithReadTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		var err error
		user, err = findUserByEmail(ctx, tx, email)
		return err
	})
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, ErrInvalidCredentials
	}
	if err != nil {
		return models.User{}, err
	}
	if !user.IsActive {
		return models.User{}, ErrInvalidCredentials
	}

	ok, err := password.Verify(rawPassword, user.PasswordHash)
	if err != nil {
		return models.User{}, err
	}
	if !ok {
		return models.User{}, ErrInvalidCredentials
	}

	if password.NeedsRehash(user.PasswordHash) {
		if err := rehash(ctx, db, &user, rawPassword); err != nil {
			slog.Warn("login: rehash failed", slog.Int64("user_id", user.ID), slog.Any("err", err))
		}
	}
	return user, nil
}

// rehash replaces a legacy or outdated hash after a successful login.
func rehash(ctx context.Context, db *sqlite.DB, user *models.User, rawPassword string) error {
	hash, err := password.Hash(rawPassword, password.DefaultParams)
	if err != nil {
		return err
	}
	err = db.WithWriteTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		_, err := tx.NewUpdate().Model((*models.User)(nil)).
			Set("password_hash = ?", hash).
			Set("updated_at = CURRENT_TIMESTAMP").
			Where("id = ?", user.ID).
			Exec(ctx)
		return err
	})
	if err != nil {
		return err
	}
	user.PasswordHash = hash
	return nil
}

func persistSession(ctx context.Context, db *sqlite.DB, session models.Session) error {
	return db.WithWriteTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		_, err := tx.NewInsert().Model(&models.Session{
			ID:        session.ID,
			UserID:    session.UserID,
			ExpiresAt: session.ExpiresAt,
		}).Exec(ctx)
		return err
	})
}

func DeleteSessionByToken(ctx context.Context, db *sqlite.DB, token string) error {
	if strings.TrimSpace(token) == "" {
		return nil
	}
	return db.WithWriteTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		_, err := tx.NewDelete().Model((*models.Session)(nil)).Where("id = ?", token).Exec(ctx)
		return err
	})
}

// DeleteSessionsByUserID logs a user out everywhere.
func DeleteSessionsByUserID(ctx context.Context, db *sqlite.DB, userID int64) error {
	return db.WithWriteTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		_, err := tx.NewDelete().Model((*models.Session)(nil)).Where("user_id = ?", userID).Exec(ctx)
		return err
	})
}

// DeleteExpiredSessions removes sessions past their expiry and returns how
// many were removed.
func DeleteExpiredSessions(ctx context.Context, db *sqlite.DB, now time.Time) (int, error) {
	var n int
	err := db.WithWriteTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		res, err := tx.NewDelete().Model((*models.Session)(nil)).Where("expires_at < ?", now).Exec(ctx)
		if err != nil {
			return err
		}
		affected, err := res.RowsAffected()
		n = int(affected)
		return err
	})
	return n, err
}

func LoadSessionByToken(ctx context.Context, db *sqlite.DB, token string) (models.Session, error) {
	var session models.Session
	err := db.WithReadTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		if err := tx.NewSelect().
			Model(&session).
			Relation("User").
			Where("s.id = ?", token).
			Limit(1).
			Scan(ctx); err != nil {
			return err
		}
		session.UserRoles = []string{session.User.Role}
		return nil
	})
	if err != nil {
		return models.Session{}, err
	}
	if session.Expired() || !session.User.IsActive {
		_ = DeleteSessionByToken(ctx, db, token)
		return models.Session{}, sql.ErrNoRows
	}
	return session, nil
}

// UpsertUser creates the user or resets its name, role and password. It is
// used to seed the bootstrap administrator.
func UpsertUser(ctx context.Context, db *sqlite.DB, email, fullName, role, rawPassword string) error {
	email = NormalizeEmail(email)
	if email == "" {
		return errors.New("email is required")
	}
	if !rbac.ValidRole(role) {
		return fmt.Errorf("invalid role %q", role)
	}
	if err := ValidatePasswordPolicy(rawPassword); err != nil {
		return err
	}
	hash, err := password.Hash(rawPassword, password.DefaultParams)
	if err != nil {
		return err
	}
	if strings.TrimSpace(fullName) == "" {
		fullName = email
	}

	now := time.Now()
	return db.WithWriteTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		_, err := tx.ExecContext(ctx, `
INSERT INTO users (email, full_name, password_hash, role, is_active, created_at, updated_at)
VALUES (?, ?, ?, ?, 1, ?, ?)
ON CONFLICT(email) DO UPDATE SET
  full_name = excluded.full_name,
  password_hash = excluded.password_hash,
  role = excluded.role,
  is_active = 1,
  updated_at = excluded.updated_at`, email, strings.TrimSpace(fullName), hash, role, now, now)
		return err
	})
}

// EnsureUser creates the user only when the email is unknown. It reports
// whether a row was inserted.
func EnsureUser(ctx context.Context, db *sqlite.DB, email, fullName, role, rawPassword string) (bool, error) {
	var exists bool
	err := db.WithReadTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		var err error
		exists, err = tx.NewSelect().Model((*models.User)(nil)).Where("u.email = ?", NormalizeEmail(email)).Exists(ctx)
		return err
	})
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}
	if err := UpsertUser(ctx, db, email, fullName, role, rawPassword); err != nil {
		return false, err
	}
	return true, nil
}

// UserIDByEmail returns the id of an active user.
func UserIDByEmail(ctx context.Context, db *sqlite.DB, email string) (int64, error) {
	var user models.User
	err := db.WithReadTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		var err error
		user, err = findUserByEmail(ctx, tx, NormalizeEmail(email))
		return err
	})
	if err != nil {
		return 0, err
	}
	if !user.IsActive {
		return 0, fmt.Errorf("user %s is inactive", user.Email)
	}
	return user.ID, nil
}
