package universal

import (
	"math"
	"slices"
	"strings"

	"github.com/baechuer/real-time-ressys/services/syndication-service/internal/domain"
)

// audienceTags are the free-form tags promoted to TargetAudience.
var audienceTags = []string{"tout_public", "18_plus", "famille"}

// Convert maps a stored event and its tags onto the universal representation.
// It never fails: missing values fall back to home defaults or empty values.
func Convert(ev *domain.Event, tags []domain.Tag, home Home) Event {
	if home.Timezone == "" {
		home.Timezone = DefaultHome.Timezone
	}
	if home.Currency == "" {
		home.Currency = DefaultHome.Currency
	}

	out := Event{
		Title:          strings.TrimSpace(ev.Title),
		Description:    firstNonEmpty(ev.Description, ev.ShortDescription),
		StartDate:      ev.StartTime,
		Timezone:       firstNonEmpty(ev.Timezone, home.Timezone),
		Category:       ev.Category,
		SubCategory:    ev.SubCategory,
		TicketURL:      strings.TrimSpace(ev.TicketURL),
		ImageURL:       strings.TrimSpace(ev.ImageURL),
		Currency:       strings.ToUpper(firstNonEmpty(ev.Currency, home.Currency)),
		IsFree:         ev.IsFree,
		AgeRestriction: strings.TrimSpace(ev.AgeRestriction),
		Tags:           slices.Clone(ev.FreeTags),
		OrganizerID:    ev.OrganizerID,
		OrganizerName:  ev.OrganizerName,
		Source:         firstNonEmpty(ev.Source, SourceInternal),
	}

	if ev.EndTime != nil && !ev.EndTime.IsZero() {
		end := *ev.EndTime
		out.EndDate = &end
	}

	if ev.Venue != nil {
		out.Venue = Venue{
			Name:       strings.TrimSpace(ev.Venue.Name),
			Address:    strings.TrimSpace(ev.Venue.Address),
			City:       strings.TrimSpace(ev.Venue.City),
			PostalCode: strings.TrimSpace(ev.Venue.PostalCode),
			Country:    strings.TrimSpace(ev.Venue.Country),
		}
		if ev.Venue.HasCoordinates() {
			out.Venue.Coordinates = &Coordinates{Lat: *ev.Venue.Latitude, Lng: *ev.Venue.Longitude}
		}
	}

	if ev.Price != 0 {
		cents := int64(math.Round(ev.Price * 100))
		lo, hi := cents, cents
		out.PriceMin = &lo
		out.PriceMax = &hi
	}

	if ev.Features != nil {
		out.LongDescription = strings.TrimSpace(ev.Features.LongDescription)
		out.Lineup = cleanList(ev.Features.Lineup)
	}

	for _, t := range tags {
		v := strings.TrimSpace(t.Value)
		if v == "" {
			continue
		}
		switch t.Category {
		case domain.TagGenre:
			out.Genres = append(out.Genres, v)
		case domain.TagStyle:
			out.Styles = append(out.Styles, v)
		case domain.TagType:
			if out.EventType == "" {
				out.EventType = v
			}
		case domain.TagAmbiance:
			out.Ambiances = append(out.Ambiances, v)
		case domain.TagPublic:
			out.TargetAudience = addAudience(out.TargetAudience, v)
		}
	}
	for _, v := range ev.FreeTags {
		out.TargetAudience = addAudience(out.TargetAudience, v)
	}

	return out
}

func addAudience(list []string, tag string) []string {
	v := strings.ToLower(strings.TrimSpace(tag))
	if !slices.Contains(audienceTags, v) || slices.Contains(list, v) {
		return list
	}
	return append(list, v)
}

func cleanList(in []string) []string {
	var out []string
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
