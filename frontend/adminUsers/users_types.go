package adminusers

import (
	"errors"

	"dockboard/frontend/shared/nav"
)

var (
	ErrEmailRequired    = errors.New("email is required")
	ErrEmailExists      = errors.New("a user with this email already exists")
	ErrInvalidRole      = errors.New("invalid role")
	ErrRoleNotAllowed   = errors.New("you may not assign this role")
	ErrUserNotFound     = errors.New("user not found")
	ErrCannotDeleteSelf = errors.New("you cannot delete your own account")
)

type UserView struct {
	ID       int64  `bun:"id"`
	Email    string `bun:"email"`
	FullName string `bun:"full_name"`
	Role     string `bun:"role"`
	IsActive bool   `bun:"is_active"`
}

// UserInput is the add/edit form.
type UserInput struct {
	Email    string
	FullName string
	Role     string
	Password string
}

type PageData struct {
	Nav             nav.TopNavData
	Users           []UserView
	AssignableRoles []string
	CanManage       bool
	SelfID          int64
}
