// Package models holds the persisted entities of the user directory.
//
// Naming convention: SQL columns are snake_case (is_admin, created_at),
// JSON on the wire is camelCase, Go fields are exported Go names. The
// mapping happens once, in the repositories and the HTTP DTOs.
package models

import "time"

// User is a directory account. Password always holds a bcrypt digest,
// never the plaintext. Email doubles as the authentication principal and
// is cleared when the account is soft-deleted.
type User struct {
	ID             string
	Name           string
	Email          string
	Password       string
	EmailConfirmed bool
	IsAdmin        bool
	IsDeleted      bool
	CredentialsID  string
	CreatedAt      time.Time
	UpdatedAt      time.Time

	// Credentials is populated only when the caller asked for the
	// credentials projection; nil otherwise.
	Credentials *Credentials
}

// Credentials is a secondary secret record owned by exactly one user.
// Hash carries an algorithm tag (e.g. "HS256"), not a password digest.
type Credentials struct {
	ID   string
	Hash string
}

// Clone returns a deep copy, so stores can hand out rows without aliasing
// their internal state.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	c := *u
	if u.Credentials != nil {
		creds := *u.Credentials
		c.Credentials = &creds
	}
	return &c
}
