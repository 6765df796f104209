package domain

import (
	"net/mail"
	"strings"
	"time"
)

// User represents a registered account
type User struct {
	ID           int64
	Username     string
	Email        string
	PasswordHash string
	IsAdmin      bool
	Groups       []string
	CreatedAt    time.Time
}

// Role returns the user's effective role
func (u *User) Role() Role {
	return ResolveRole(u.IsAdmin, u.Groups)
}

// Actor converts the user into the caller identity used by the services
func (u *User) Actor() Actor {
	return Actor{UserID: u.ID, Username: u.Username, Role: u.Role()}
}

// NewUser validates registration input. The password is hashed by the caller.
func NewUser(username, email, password string) (*User, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)

	if username == "" {
		return nil, NewValidationError("username", "username is required")
	}
	if len(username) > 150 {
		return nil, NewValidationError("username", "username must not exceed 150 characters")
	}
	if strings.ContainsAny(username, " \t\n") {
		return nil, NewValidationError("username", "username must not contain whitespace")
	}
	if password == "" {
		return nil, NewValidationError("password", "password is required")
	}
	if email != "" {
		if _, err := mail.ParseAddress(email); err != nil {
			return nil, NewValidationError("email", "enter a valid email address")
		}
	}

	return &User{
		Username:  username,
		Email:     email,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// AuthToken is an issued login token; only the hash is persisted.
type AuthToken struct {
	Hash      string
	UserID    int64
	CreatedAt time.Time
}
