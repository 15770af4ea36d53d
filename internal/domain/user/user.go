package user

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Role determines which abilities apply to a user.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
)

// User is an account holder. PasswordHash is a bcrypt digest and never
// leaves the server.
type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// ErrInvalid marks input faults so handlers can map them to client errors.
var ErrInvalid = errors.New("invalid user")

// New creates a user with basic field validation. Password hashing happens
// in the auth service before this is called.
func New(email, username, passwordHash string, role Role) (*User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	username = strings.TrimSpace(username)

	if email == "" || !strings.Contains(email, "@") {
		return nil, fmt.Errorf("%w: invalid email %q", ErrInvalid, email)
	}
	if len(username) < 3 {
		return nil, fmt.Errorf("%w: username must be at least 3 characters", ErrInvalid)
	}
	if passwordHash == "" {
		return nil, fmt.Errorf("%w: password hash cannot be empty", ErrInvalid)
	}
	if role == "" {
		role = RoleMember
	}

	now := time.Now()
	return &User{
		Email:        email,
		Username:     username,
		PasswordHash: passwordHash,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool { return u.Role == RoleAdmin }
