// Package validation checks a universal event against each platform's constraints.
// Errors block publication on that platform; warnings are only reported.
package validation

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/baechuer/real-time-ressys/services/syndication-service/internal/application/universal"
	"github.com/baechuer/real-time-ressys/services/syndication-service/internal/domain"
)

const (
	minTitleLen       = 3
	minDescriptionLen = 10

	facebookMaxTitle     = 75
	facebookShortDescLen = 100
	eventbriteMaxTitle   = 140
)

type Result struct {
	Valid    bool     `json:"valid"`
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

// Message joins the blocking errors into one line for the publication log.
func (r Result) Message() string {
	return strings.Join(r.Errors, "; ")
}

// Err is nil for a valid result, otherwise a validation error naming the platform.
func (r Result) Err(p domain.Platform) error {
	if r.Valid {
		return nil
	}
	return domain.ErrValidationMeta(r.Message(), map[string]string{"platform": string(p)})
}

type checker struct {
	errors   []string
	warnings []string
}

func (c *checker) fail(msg string) { c.errors = append(c.errors, msg) }
func (c *checker) warn(msg string) { c.warnings = append(c.warnings, msg) }

func (c *checker) result() Result {
	return Result{
		Valid:    len(c.errors) == 0,
		Errors:   nonNil(c.errors),
		Warnings: nonNil(c.warnings),
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func runes(s string) int { return utf8.RuneCountInString(strings.TrimSpace(s)) }

// baseline applies the checks every platform shares.
func baseline(ev universal.Event) *checker {
	c := &checker{}
	title := runes(ev.Title)
	switch {
	case title == 0:
		c.fail("title is required")
	case title < minTitleLen:
		c.fail("title must be at least 3 characters")
	}
	if runes(ev.Description) < minDescriptionLen {
		c.fail("description must be at least 10 characters")
	}
	if ev.StartDate.IsZero() {
		c.fail("start date is required")
	}
	if strings.TrimSpace(ev.Venue.Name) == "" {
		c.fail("venue name is required")
	}
	return c
}

func ForFacebook(ev universal.Event, now time.Time) Result {
	c := baseline(ev)
	if runes(ev.Title) > facebookMaxTitle {
		c.fail("title must be at most 75 characters for Facebook")
	}
	if !ev.StartDate.IsZero() && ev.StartDate.Before(now) {
		c.fail("start date cannot be in the past for Facebook")
	}
	if !ev.HasCoordinates() {
		c.fail("venue GPS coordinates are required for Facebook")
	}
	if strings.TrimSpace(ev.ImageURL) == "" {
		c.warn("no cover image: Facebook events without a cover get less reach")
	}
	if runes(ev.Description) < facebookShortDescLen && strings.TrimSpace(ev.LongDescription) == "" {
		c.warn("description is shorter than 100 characters and there is no long description")
	}
	return c.result()
}

func ForEventbrite(ev universal.Event) Result {
	c := baseline(ev)
	if runes(ev.Title) > eventbriteMaxTitle {
		c.fail("title must be at most 140 characters for Eventbrite")
	}
	if strings.TrimSpace(ev.Venue.Address) == "" {
		c.fail("venue address is required for Eventbrite")
	}
	if strings.TrimSpace(ev.Venue.City) == "" {
		c.fail("venue city is required for Eventbrite")
	}
	if ev.IsPaid() {
		if strings.TrimSpace(ev.TicketURL) == "" {
			c.warn("paid event without a ticket URL")
		}
		if ev.PriceMin == nil {
			c.warn("paid event without a minimum price")
		}
	}
	return c.result()
}

func ForResidentAdvisor(ev universal.Event) Result {
	c := baseline(ev)
	if len(ev.Lineup) == 0 {
		c.fail("lineup is required for Resident Advisor")
	}
	if len(ev.Genres) == 0 {
		c.fail("at least one genre is required for Resident Advisor")
	}
	if strings.TrimSpace(ev.Description) == "" {
		c.warn("no description")
	}
	if strings.TrimSpace(ev.TicketURL) == "" {
		c.warn("no ticket URL")
	}
	return c.result()
}

func ForBandsintown(ev universal.Event) Result {
	c := baseline(ev)
	if len(ev.Lineup) == 0 {
		c.fail("lineup is required for Bandsintown")
	}
	if !ev.HasCoordinates() {
		c.warn("no GPS coordinates: Bandsintown cannot place the event on a map")
	}
	if strings.TrimSpace(ev.TicketURL) == "" {
		c.warn("no ticket URL")
	}
	return c.result()
}

// For validates against a single platform. ok is false for unknown platforms.
func For(p domain.Platform, ev universal.Event, now time.Time) (Result, bool) {
	switch p {
	case domain.PlatformFacebook:
		return ForFacebook(ev, now), true
	case domain.PlatformEventbrite:
		return ForEventbrite(ev), true
	case domain.PlatformResidentAdvisor:
		return ForResidentAdvisor(ev), true
	case domain.PlatformBandsintown:
		return ForBandsintown(ev), true
	}
	return Result{}, false
}

// ForAllPlatforms runs every validator once.
func ForAllPlatforms(ev universal.Event, now time.Time) map[domain.Platform]Result {
	out := make(map[domain.Platform]Result, len(domain.Platforms))
	for _, p := range domain.Platforms {
		out[p], _ = For(p, ev, now)
	}
	return out
}
