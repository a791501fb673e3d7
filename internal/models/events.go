package models

import "time"

// Event types
const (
	EventTypeMemberSearched = "MEMBER_SEARCHED"
)

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
}

// MemberSearchedEvent records a staff lookup for the audit trail.
// Criteria holds the names of the fields that were supplied, not their values.
type MemberSearchedEvent struct {
	BaseEvent
	Criteria       []string `json:"criteria"`
	CustomerRef    string   `json:"customer_ref,omitempty"`
	CandidateCount int      `json:"candidate_count"`
	MigratedOnly   bool     `json:"migrated_only"`
	ClientIP       string   `json:"client_ip,omitempty"`
}
