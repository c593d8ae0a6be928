package domain

import "time"

// UserStatus represents lifecycle states for an account.
type UserStatus string

const (
	UserStatusPending   UserStatus = "pending"
	UserStatusActive    UserStatus = "active"
	UserStatusApproved  UserStatus = "approved"
	UserStatusSuspended UserStatus = "suspended"
	UserStatusRejected  UserStatus = "rejected"
)

// Valid reports whether s is a known status.
func (s UserStatus) Valid() bool {
	switch s {
	case UserStatusPending, UserStatusActive, UserStatusApproved, UserStatusSuspended, UserStatusRejected:
		return true
	}
	return false
}

// CanLogin reports whether accounts in this state may open sessions.
func (s UserStatus) CanLogin() bool {
	return s == UserStatusActive || s == UserStatusApproved
}

// Role gates access to protected routes.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleUser    Role = "user"
	RoleStudent Role = "student"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleUser, RoleStudent:
		return true
	}
	return false
}

// User is a credential record shared by both portals.
type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
	DisplayName  string
	Role         Role
	Status       UserStatus
	PhotoKey     string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
