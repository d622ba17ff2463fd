package domain

import "time"

type User struct {
	ID           string
	Email        string // stored lowercased
	FirstName    string
	LastName     string
	PhoneNumber  *string
	PasswordHash string // argon2 encoded
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
