package domain

import (
	"strings"
	"time"
)

// TagCategory classifies an event tag.
type TagCategory string

const (
	TagType     TagCategory = "type"
	TagGenre    TagCategory = "genre"
	TagStyle    TagCategory = "style"
	TagAmbiance TagCategory = "ambiance"
	TagPublic   TagCategory = "public"
)

type Tag struct {
	Category TagCategory
	Value    string
}

type Venue struct {
	Name       string
	Address    string
	City       string
	PostalCode string
	Country    string
	Latitude   *float64
	Longitude  *float64
}

// HasCoordinates is true only when both latitude and longitude are known.
func (v *Venue) HasCoordinates() bool {
	return v != nil && v.Latitude != nil && v.Longitude != nil
}

// Features holds the feature-store overrides attached to an event.
// They are not columns of the event itself.
type Features struct {
	LongDescription string
	Lineup          []string
}

// Event is the stored event record as read from event-service's tables.
// This service never writes it.
type Event struct {
	ID            string
	OrganizerID   string
	OrganizerName string

	Title            string
	Description      string
	ShortDescription string

	StartTime time.Time
	EndTime   *time.Time
	Timezone  string

	Venue *Venue

	Category    string
	SubCategory string

	// Price is the display amount in major currency units.
	Price    float64
	Currency string
	IsFree   bool

	TicketURL      string
	ImageURL       string
	AgeRestriction string
	FreeTags       []string
	Source         string

	Tags     []Tag
	Features *Features

	CreatedAt time.Time
	UpdatedAt time.Time
}

// OwnedBy reports whether organizerID owns the event.
func (e *Event) OwnedBy(organizerID string) bool {
	organizerID = strings.TrimSpace(organizerID)
	return organizerID != "" && e.OrganizerID == organizerID
}
