package models

import (
	"time"
)

// Role is a user's privilege level
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// ValidRoles defines allowed user roles
var ValidRoles = map[Role]bool{
	RoleUser:  true,
	RoleAdmin: true,
}

// UserStatus is the account lifecycle state
type UserStatus string

const (
	UserStatusActive    UserStatus = "active"
	UserStatusSuspended UserStatus = "suspended"
	UserStatusDeleted   UserStatus = "deleted"
)

// User represents an account known to the interaction subsystem
type User struct {
	ID             string     `json:"id" db:"id"`
	Username       string     `json:"username" db:"username"`
	Role           Role       `json:"role" db:"role"`
	Status         UserStatus `json:"status" db:"status"`
	SuspendedUntil *time.Time `json:"suspended_until,omitempty" db:"suspended_until"`
	DeletedAt      *time.Time `json:"deleted_at,omitempty" db:"deleted_at"`
	CreatedAt      time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at" db:"updated_at"`
}

// CanAct reports whether the account may perform mutations at time now
func (u *User) CanAct(now time.Time) bool {
	switch u.Status {
	case UserStatusActive:
		return true
	case UserStatusSuspended:
		return u.SuspendedUntil != nil && now.After(*u.SuspendedUntil)
	default:
		return false
	}
}

// Identity is the authenticated principal behind a request
type Identity struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Role     Role   `json:"role"`
}

// IsAdmin reports whether the principal holds the admin role
func (i Identity) IsAdmin() bool {
	return i.Role == RoleAdmin
}

// AccountInput is an account record delivered by the identity provider
type AccountInput struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Role     Role   `json:"role"`
}

// DeletionReport summarizes a permanent account deletion
type DeletionReport struct {
	UserID          string `json:"user_id"`
	Username        string `json:"username"`
	ArticlesTouched int    `json:"articles_touched"`
	PostsAnonymized int    `json:"posts_anonymized"`
}
