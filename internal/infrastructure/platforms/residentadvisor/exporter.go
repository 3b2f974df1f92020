// Package residentadvisor renders events in the shapes Resident Advisor's
// manual submission flow accepts. There is no remote API to call.
package residentadvisor

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/baechuer/real-time-ressys/services/syndication-service/internal/application/publish"
	"github.com/baechuer/real-time-ressys/services/syndication-service/internal/application/universal"
	"github.com/baechuer/real-time-ressys/services/syndication-service/internal/application/validation"
	"github.com/baechuer/real-time-ressys/services/syndication-service/internal/domain"
)

// ManualExportID is reported as the remote id since RA never assigns one.
const ManualExportID = "ra-manual-export"

const ManualActionWarning = "Resident Advisor has no publishing API: submit the event manually using the export"

const (
	FormatJSON = "json"
	FormatCSV  = "csv"
	FormatText = "text"

	dateLayout = "2006-01-02"
	timeLayout = "15:04"
	listSep    = ", "
)

var csvHeader = []string{
	"Title", "Date", "Time", "Venue", "Address", "City", "Lineup",
	"Genre", "Genres", "Description", "Ticket URL", "Image URL", "Age Restriction",
}

// Record is one event in RA's submission shape.
type Record struct {
	Title          string   `json:"title"`
	Date           string   `json:"date"`
	Time           string   `json:"time"`
	Venue          string   `json:"venue"`
	Address        string   `json:"address,omitempty"`
	City           string   `json:"city,omitempty"`
	Lineup         []string `json:"lineup"`
	Genre          string   `json:"genre"`
	Genres         []string `json:"genres"`
	Description    string   `json:"description,omitempty"`
	TicketURL      string   `json:"ticket_url,omitempty"`
	ImageURL       string   `json:"image_url,omitempty"`
	AgeRestriction string   `json:"age_restriction,omitempty"`
}

// FromEvent splits the start instant into date and time in the event's timezone.
func FromEvent(ev universal.Event) Record {
	start := ev.StartDate.In(ev.Location())
	return Record{
		Title:          ev.Title,
		Date:           start.Format(dateLayout),
		Time:           start.Format(timeLayout),
		Venue:          ev.Venue.Name,
		Address:        ev.Venue.Address,
		City:           ev.Venue.City,
		Lineup:         nonNil(ev.Lineup),
		Genre:          strings.ToLower(ev.PrimaryGenre()),
		Genres:         nonNil(ev.Genres),
		Description:    ev.BestDescription(),
		TicketURL:      ev.TicketURL,
		ImageURL:       ev.ImageURL,
		AgeRestriction: ev.AgeRestriction,
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func JSON(records []Record) ([]byte, error) {
	if records == nil {
		records = []Record{}
	}
	return json.MarshalIndent(records, "", "  ")
}

// CSV writes a header plus one row per record, quoting fields as RFC 4180 requires.
func CSV(records []Record) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(csvHeader); err != nil {
		return nil, err
	}
	for _, r := range records {
		row := []string{
			r.Title, r.Date, r.Time, r.Venue, r.Address, r.City,
			strings.Join(r.Lineup, listSep),
			r.Genre,
			strings.Join(r.Genres, listSep),
			r.Description, r.TicketURL, r.ImageURL, r.AgeRestriction,
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Text is a copy-paste block for RA's submission form. Empty optional fields are omitted.
func Text(r Record) string {
	var b strings.Builder
	line := func(label, value string, always bool) {
		if value == "" && !always {
			return
		}
		fmt.Fprintf(&b, "%s: %s\n", label, value)
	}
	line("Title", r.Title, true)
	line("Date", r.Date, true)
	line("Time", r.Time, true)
	line("Venue", r.Venue, true)
	line("Address", r.Address, false)
	line("City", r.City, false)
	line("Lineup", strings.Join(r.Lineup, listSep), true)
	line("Genre", r.Genre, true)
	line("Genres", strings.Join(r.Genres, listSep), false)
	line("Ticket URL", r.TicketURL, false)
	line("Image URL", r.ImageURL, false)
	line("Age Restriction", r.AgeRestriction, false)
	if r.Description != "" {
		b.WriteString("\nDescription:\n")
		b.WriteString(r.Description)
		b.WriteString("\n")
	}
	return b.String()
}

// Exporter is the Resident Advisor entry in the publisher registry.
type Exporter struct{}

func New() *Exporter { return &Exporter{} }

func (*Exporter) Platform() domain.Platform { return domain.PlatformResidentAdvisor }

// Publish only validates; the outcome always carries the manual-export sentinel.
func (*Exporter) Publish(ctx context.Context, ev universal.Event, conn domain.Connection) (publish.Outcome, error) {
	if err := validation.ForResidentAdvisor(ev).Err(domain.PlatformResidentAdvisor); err != nil {
		return publish.Outcome{}, err
	}
	return publish.Outcome{
		ID:       ManualExportID,
		Warnings: []string{ManualActionWarning},
	}, nil
}

func (*Exporter) Delete(ctx context.Context, remoteID string, conn domain.Connection) error {
	return domain.ErrUnsupported("Resident Advisor events must be removed manually")
}

func (*Exporter) Export(ev universal.Event, format string) (publish.Export, error) {
	rec := FromEvent(ev)
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", FormatJSON:
		body, err := JSON([]Record{rec})
		if err != nil {
			return publish.Export{}, err
		}
		return publish.Export{ContentType: "application/json", Filename: "resident-advisor.json", Body: body}, nil
	case FormatCSV:
		body, err := CSV([]Record{rec})
		if err != nil {
			return publish.Export{}, err
		}
		return publish.Export{ContentType: "text/csv; charset=utf-8", Filename: "resident-advisor.csv", Body: body}, nil
	case FormatText:
		return publish.Export{ContentType: "text/plain; charset=utf-8", Filename: "resident-advisor.txt", Body: []byte(Text(rec))}, nil
	}
	return publish.Export{}, domain.ErrValidationMeta("unsupported export format", map[string]string{"format": format})
}
