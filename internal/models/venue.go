package models

import "time"

// Venue represents a physical location. Two venues are duplicates when their
// address fingerprint matches; the fingerprint column carries a unique index
// so dedup happens at the store, not client-side.
type Venue struct {
	ID                 string    `json:"id" db:"id"`
	Name               string    `json:"name" db:"name"`
	Street             string    `json:"street" db:"street"`
	City               string    `json:"city" db:"city"`
	State              string    `json:"state" db:"state"`
	Zip                string    `json:"zip" db:"zip"`
	Latitude           *float64  `json:"latitude,omitempty" db:"latitude"`
	Longitude          *float64  `json:"longitude,omitempty" db:"longitude"`
	AddressFingerprint string    `json:"addressFingerprint" db:"address_fingerprint"`
	CreatedAt          time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt          time.Time `json:"updatedAt" db:"updated_at"`
}

// VenueHistory is an auxiliary audit record referencing a venue. During venue
// merges these are re-pointed best-effort; losing one is acceptable.
type VenueHistory struct {
	ID           string    `json:"id" db:"id"`
	VenueID      string    `json:"venueId" db:"venue_id"`
	TournamentID *string   `json:"tournamentId,omitempty" db:"tournament_id"`
	Note         string    `json:"note" db:"note"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
}
