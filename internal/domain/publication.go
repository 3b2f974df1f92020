package domain

import "time"

type PublicationStatus string

const (
	PublicationSuccess   PublicationStatus = "success"
	PublicationError     PublicationStatus = "error"
	PublicationWithdrawn PublicationStatus = "withdrawn"
)

func (s PublicationStatus) Valid() bool {
	return s == PublicationSuccess || s == PublicationError || s == PublicationWithdrawn
}

// Operation names recorded in log metadata.
const (
	OpPublish  = "publish"
	OpUpdate   = "update"
	OpWithdraw = "withdraw"
)

type PublicationMetadata struct {
	Operation string   `json:"operation,omitempty"`
	Warnings  []string `json:"warnings,omitempty"`
}

// PublicationLog is the latest attempt for one (event, organizer, platform).
// Rows are replaced in place; there is never more than one per key.
type PublicationLog struct {
	ID               string
	EventID          string
	OrganizerID      string
	Platform         Platform
	Status           PublicationStatus
	PlatformEventID  string
	PlatformEventURL string
	ErrorMessage     string
	Metadata         PublicationMetadata
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// PublicationResult is the outcome of one platform attempt, as returned to callers.
type PublicationResult struct {
	Platform         Platform `json:"platform"`
	Success          bool     `json:"success"`
	PlatformEventID  string   `json:"platform_event_id,omitempty"`
	PlatformEventURL string   `json:"platform_event_url,omitempty"`
	Error            string   `json:"error,omitempty"`
	Warnings         []string `json:"warnings,omitempty"`
	LogID            string   `json:"log_id,omitempty"`
}

type PublicationSummary struct {
	EventID      string              `json:"event_id"`
	Results      []PublicationResult `json:"results"`
	TotalSuccess int                 `json:"total_success"`
	TotalErrors  int                 `json:"total_errors"`
}

// NewSummary counts results in the order given.
func NewSummary(eventID string, results []PublicationResult) *PublicationSummary {
	s := &PublicationSummary{EventID: eventID, Results: results}
	for _, r := range results {
		if r.Success {
			s.TotalSuccess++
		} else {
			s.TotalErrors++
		}
	}
	return s
}

// ToLog projects a result onto the log row for (eventID, organizerID).
func (r PublicationResult) ToLog(eventID, organizerID, operation string, now time.Time) *PublicationLog {
	status := PublicationSuccess
	if !r.Success {
		status = PublicationError
	}
	return &PublicationLog{
		ID:               r.LogID,
		EventID:          eventID,
		OrganizerID:      organizerID,
		Platform:         r.Platform,
		Status:           status,
		PlatformEventID:  r.PlatformEventID,
		PlatformEventURL: r.PlatformEventURL,
		ErrorMessage:     r.Error,
		Metadata: PublicationMetadata{
			Operation: operation,
			Warnings:  r.Warnings,
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
}
