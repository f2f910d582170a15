package domain

import "time"

// Account is an operator login stored by the embedded Postgres backend.
type Account struct {
	ID           string
	Username     string
	PasswordHash string
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
