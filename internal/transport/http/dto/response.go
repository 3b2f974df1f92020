package dto

import "time"

// PublicationResp is the API view of a publication log row.
type PublicationResp struct {
	ID       string `json:"id"`
	EventID  string `json:"event_id"`
	Platform string `json:"platform"`
	Status   string `json:"status"`

	PlatformEventID  string `json:"platform_event_id,omitempty"`
	PlatformEventURL string `json:"platform_event_url,omitempty"`
	ErrorMessage     string `json:"error_message,omitempty"`

	Operation string   `json:"operation,omitempty"`
	Warnings  []string `json:"warnings"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Derived: the event currently exists on the platform
	Live bool `json:"live"`
}

type ListResp[T any] struct {
	Items []T `json:"items"`
	Total int `json:"total"`
}
