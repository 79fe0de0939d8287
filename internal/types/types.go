// Package types defines shared enums and the structured error shape used
// across the service, storage, and API layers.
package types

// OutreachStatus represents the lifecycle state of an outreach row.
type OutreachStatus string

const (
	// OutreachDraft is a planned contact attempt awaiting manual research or send.
	OutreachDraft OutreachStatus = "draft"
	// OutreachSent is a terminal state for a delivered contact attempt.
	OutreachSent OutreachStatus = "sent"
	// OutreachSuppressed is a terminal state for rows cancelled by do-not-contact.
	OutreachSuppressed OutreachStatus = "suppressed"
)

// IsTerminal reports whether the status accepts no further transitions.
func (s OutreachStatus) IsTerminal() bool {
	return s == OutreachSent || s == OutreachSuppressed
}

// SuggestionStatus represents the review state of a URL suggestion.
type SuggestionStatus string

const (
	SuggestionPending  SuggestionStatus = "pending"
	SuggestionApproved SuggestionStatus = "approved"
	SuggestionRejected SuggestionStatus = "rejected"
)

// SuggestionSource identifies who proposed a URL correction.
type SuggestionSource string

const (
	// SuggestionSourcePublic marks suggestions submitted through the open endpoint.
	SuggestionSourcePublic SuggestionSource = "public"
	// SuggestionSourceEnrichment marks suggestions produced by automated discovery.
	SuggestionSourceEnrichment SuggestionSource = "enrichment"
)

// UserRole represents the caller's role for authorization checks.
type UserRole string

const (
	RoleAdmin  UserRole = "admin"
	RoleMember UserRole = "member"
)

// ServiceError represents a structured error response
type ServiceError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

func (e *ServiceError) Error() string {
	return e.Message
}
