package models

import "time"

// PrimaryToken is a static service credential accepted in the X-API-KEY header.
type PrimaryToken struct {
	ID        int64
	Token     string
	Name      string
	CreatedAt time.Time
}
