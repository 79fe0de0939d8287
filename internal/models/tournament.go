package models

import (
	"time"
)

// Tournament represents one real-world event occurrence discovered from a
// listing source. Rows are never hard-deleted, only status-transitioned.
type Tournament struct {
	ID                       string     `json:"id" db:"id"`
	Name                     string     `json:"name" db:"name"`
	Sport                    string     `json:"sport" db:"sport"`
	StartDate                *time.Time `json:"startDate,omitempty" db:"start_date"`
	EndDate                  *time.Time `json:"endDate,omitempty" db:"end_date"`
	OfficialWebsiteURL       *string    `json:"officialWebsiteUrl,omitempty" db:"official_website_url"`
	SourceURL                *string    `json:"sourceUrl,omitempty" db:"source_url"` // canonical originating listing URL
	TournamentDirector       *string    `json:"tournamentDirector,omitempty" db:"tournament_director"`
	TournamentDirectorEmail  *string    `json:"tournamentDirectorEmail,omitempty" db:"tournament_director_email"`
	DoNotContact             bool       `json:"doNotContact" db:"do_not_contact"`
	DoNotContactReason       *string    `json:"doNotContactReason,omitempty" db:"do_not_contact_reason"`
	DoNotContactAt           *time.Time `json:"doNotContactAt,omitempty" db:"do_not_contact_at"`
	EnrichmentPaused         bool       `json:"enrichmentPaused" db:"enrichment_paused"`
	Status                   string     `json:"status" db:"status"`
	CreatedAt                time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt                time.Time  `json:"updatedAt" db:"updated_at"`
}

// SourceRecord is the ingestion input shape for one discovered tournament
// listing. URLs arrive raw and are normalized before any storage or comparison.
type SourceRecord struct {
	Name          string     `json:"name"`
	Sport         string     `json:"sport"`
	StartDate     *time.Time `json:"startDate,omitempty"`
	EndDate       *time.Time `json:"endDate,omitempty"`
	SourceURL     string     `json:"sourceUrl"`
	WebsiteURL    string     `json:"websiteUrl,omitempty"`
	DirectorName  string     `json:"directorName,omitempty"`
	DirectorEmail string     `json:"directorEmail,omitempty"`
	VenueName     string     `json:"venueName,omitempty"`
	VenueStreet   string     `json:"venueStreet,omitempty"`
	VenueCity     string     `json:"venueCity,omitempty"`
	VenueState    string     `json:"venueState,omitempty"`
	VenueZip      string     `json:"venueZip,omitempty"`
}
