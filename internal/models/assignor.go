package models

import "time"

// Assignor is a directory entry whose email and phone are gated behind the
// rate-limited contact-reveal endpoint.
type Assignor struct {
	ID           string    `json:"id" db:"id"`
	Name         string    `json:"name" db:"name"`
	Organization string    `json:"organization" db:"organization"`
	Email        string    `json:"-" db:"email"`
	Phone        string    `json:"-" db:"phone"`
	Region       string    `json:"region" db:"region"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" db:"updated_at"`
}

// RevealedContact is the unmasked contact payload returned by a reveal.
type RevealedContact struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}
