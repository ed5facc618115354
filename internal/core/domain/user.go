package domain

import "time"

type UserID string

type UserRole string

const (
	RoleAdmin   UserRole = "admin"
	RoleCreator UserRole = "creator"
	RoleViewer  UserRole = "viewer"
)

// Roles lists every role in descending privilege.
var Roles = []UserRole{RoleAdmin, RoleCreator, RoleViewer}

func (r UserRole) Valid() bool {
	switch r {
	case RoleAdmin, RoleCreator, RoleViewer:
		return true
	}
	return false
}

// User is the public account record. It never carries the password.
type User struct {
	ID        UserID    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Avatar    string    `json:"avatar"`
	Role      UserRole  `json:"role"`
	Premium   bool      `json:"premium"`
	CreatedAt time.Time `json:"createdAt"`
}

// Account pairs a user with the bcrypt hash of their password.
type Account struct {
	User         User
	PasswordHash []byte
}

type SessionID string

// Session is the stored record of a signed-in user.
type Session struct {
	ID        SessionID `json:"id"`
	User      User      `json:"user"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && now.After(s.ExpiresAt)
}
