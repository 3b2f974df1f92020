// Package universal holds the platform-agnostic event representation that every
// validator and publisher consumes.
package universal

import (
	"time"
	_ "time/tzdata"
)

// Home carries the operator defaults applied when a stored event leaves a field empty.
type Home struct {
	Timezone string
	Currency string
	Region   string
}

// DefaultHome is used when no override is configured.
var DefaultHome = Home{
	Timezone: "America/Toronto",
	Currency: "CAD",
	Region:   "QC",
}

const SourceInternal = "INTERNAL"

type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type Venue struct {
	Name        string       `json:"name"`
	Address     string       `json:"address,omitempty"`
	City        string       `json:"city,omitempty"`
	PostalCode  string       `json:"postal_code,omitempty"`
	Country     string       `json:"country,omitempty"`
	Coordinates *Coordinates `json:"coordinates,omitempty"`
}

// Event is built fresh for every publish attempt and never stored.
type Event struct {
	Title           string `json:"title"`
	Description     string `json:"description"`
	LongDescription string `json:"long_description,omitempty"`

	StartDate time.Time  `json:"start_date"`
	EndDate   *time.Time `json:"end_date,omitempty"`
	Timezone  string     `json:"timezone"`

	Venue Venue `json:"venue"`

	Category    string   `json:"category,omitempty"`
	SubCategory string   `json:"sub_category,omitempty"`
	Genres      []string `json:"genres,omitempty"`
	Styles      []string `json:"styles,omitempty"`
	EventType   string   `json:"event_type,omitempty"`
	Ambiances   []string `json:"ambiances,omitempty"`

	TicketURL string `json:"ticket_url,omitempty"`
	ImageURL  string `json:"image_url,omitempty"`
	// Prices are in minor units (cents). Ignored by publishers when IsFree is set.
	PriceMin *int64 `json:"price_min,omitempty"`
	PriceMax *int64 `json:"price_max,omitempty"`
	Currency string `json:"currency"`
	IsFree   bool   `json:"is_free"`

	AgeRestriction string   `json:"age_restriction,omitempty"`
	TargetAudience []string `json:"target_audience,omitempty"`

	Lineup []string `json:"lineup,omitempty"`
	Tags   []string `json:"tags,omitempty"`

	OrganizerID   string `json:"organizer_id"`
	OrganizerName string `json:"organizer_name,omitempty"`
	Source        string `json:"source"`
}

// PrimaryGenre is the first genre, used by exporters that accept exactly one.
func (e Event) PrimaryGenre() string {
	if len(e.Genres) == 0 {
		return ""
	}
	return e.Genres[0]
}

// IsPaid is true when the event is not free. Price fields may still be absent.
func (e Event) IsPaid() bool { return !e.IsFree }

// HasCoordinates reports whether the venue carries GPS coordinates.
func (e Event) HasCoordinates() bool { return e.Venue.Coordinates != nil }

// Location resolves the event timezone, falling back to UTC for unknown zone ids.
func (e Event) Location() *time.Location {
	if e.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(e.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// BestDescription prefers the long description when there is one.
func (e Event) BestDescription() string {
	if e.LongDescription != "" {
		return e.LongDescription
	}
	return e.Description
}
