package models

import "time"

// User is an account. Salt and Verifier come from cryptox; the password
// itself is never stored.
type User struct {
	ID        string
	UserName  string
	Salt      []byte
	Verifier  []byte
	CreatedAt time.Time
}
