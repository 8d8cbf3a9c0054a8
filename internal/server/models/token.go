// Package models defines server-side data models persisted in the database
// and the value objects returned alongside them.
package models

import "time"

// Token is a signed token string and the instant it stops being valid.
type Token struct {
	Token     string
	ExpiredAt time.Time
}
