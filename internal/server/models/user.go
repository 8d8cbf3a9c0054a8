package models

import "time"

// User is an account record. HashedPassword holds a bcrypt digest, never the
// plaintext. CreatedAt and UpdatedAt are set by the database.
type User struct {
	ID             int64
	Login          string
	HashedPassword string
	FirstName      string
	LastName       string
	SecondName     string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
