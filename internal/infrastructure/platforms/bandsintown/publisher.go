// Package bandsintown publishes events to an artist's Bandsintown page.
package bandsintown

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/baechuer/real-time-ressys/services/syndication-service/internal/application/publish"
	"github.com/baechuer/real-time-ressys/services/syndication-service/internal/application/universal"
	"github.com/baechuer/real-time-ressys/services/syndication-service/internal/application/validation"
	"github.com/baechuer/real-time-ressys/services/syndication-service/internal/domain"
	"github.com/baechuer/real-time-ressys/services/syndication-service/internal/infrastructure/downstream"
)

const (
	DefaultAPIURL = "https://rest.bandsintown.com"
	eventURLBase  = "https://www.bandsintown.com/e/"
	platformName  = string(domain.PlatformBandsintown)

	// Bandsintown takes venue-local wall time.
	localLayout = "2006-01-02T15:04:05"
)

type Config struct {
	APIURL string
	// Region is sent as the venue region (province or state code).
	Region string
	HTTP   downstream.ClientConfig
}

type Publisher struct {
	api     *downstream.Client
	baseURL string
	region  string
}

func New(cfg Config, httpClient *http.Client) *Publisher {
	if cfg.APIURL == "" {
		cfg.APIURL = DefaultAPIURL
	}
	return &Publisher{
		api:     downstream.NewClient(platformName, httpClient, cfg.HTTP, errorMessage),
		baseURL: strings.TrimRight(cfg.APIURL, "/"),
		region:  cfg.Region,
	}
}

func (p *Publisher) Platform() domain.Platform { return domain.PlatformBandsintown }

// errorMessage reads {"message":...} or {"errors":[...]}.
func errorMessage(body []byte) string {
	var env struct {
		Message string   `json:"message"`
		Errors  []string `json:"errors"`
	}
	if json.Unmarshal(body, &env) != nil {
		return ""
	}
	if env.Message != "" {
		return env.Message
	}
	return strings.Join(env.Errors, "; ")
}

type venuePayload struct {
	Name      string   `json:"name"`
	City      string   `json:"city,omitempty"`
	Region    string   `json:"region,omitempty"`
	Country   string   `json:"country,omitempty"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
}

type offer struct {
	Type string `json:"type"`
	URL  string `json:"url"`
}

type eventPayload struct {
	Title       string       `json:"title"`
	Datetime    string       `json:"datetime"`
	EndDatetime string       `json:"end_datetime,omitempty"`
	Description string       `json:"description,omitempty"`
	Venue       venuePayload `json:"venue"`
	Lineup      []string     `json:"lineup"`
	Offers      []offer      `json:"offers,omitempty"`
}

type eventResponse struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

func (p *Publisher) buildPayload(ev universal.Event) eventPayload {
	loc := ev.Location()
	out := eventPayload{
		Title:       ev.Title,
		Datetime:    ev.StartDate.In(loc).Format(localLayout),
		Description: ev.BestDescription(),
		Venue: venuePayload{
			Name:    ev.Venue.Name,
			City:    ev.Venue.City,
			Region:  p.region,
			Country: ev.Venue.Country,
		},
		Lineup: ev.Lineup,
	}
	if ev.EndDate != nil {
		out.EndDatetime = ev.EndDate.In(loc).Format(localLayout)
	}
	if c := ev.Venue.Coordinates; c != nil {
		lat, lng := c.Lat, c.Lng
		out.Venue.Latitude = &lat
		out.Venue.Longitude = &lng
	}
	if ev.TicketURL != "" {
		out.Offers = []offer{{Type: "Tickets", URL: ev.TicketURL}}
	}
	return out
}

// artist checks credentials and returns the artist id the events belong to.
func artist(conn domain.Connection) (string, error) {
	if conn.AccessToken == "" {
		return "", downstream.NewConfigError(platformName, "missing API key")
	}
	cfg, ok := conn.Config.(domain.BandsintownConfig)
	if !ok || cfg.ArtistID == "" {
		return "", downstream.NewConfigError(platformName, "missing artist id")
	}
	return cfg.ArtistID, nil
}

func (p *Publisher) endpoint(conn domain.Connection, artistID, eventID string) string {
	u := p.baseURL + "/artists/" + url.PathEscape(artistID) + "/events"
	if eventID != "" {
		u += "/" + url.PathEscape(eventID)
	}
	return u + "?" + url.Values{"app_id": {conn.AccessToken}}.Encode()
}

func outcome(resp eventResponse) publish.Outcome {
	u := resp.URL
	if u == "" {
		u = eventURLBase + resp.ID
	}
	return publish.Outcome{ID: resp.ID, URL: u}
}

func (p *Publisher) Publish(ctx context.Context, ev universal.Event, conn domain.Connection) (publish.Outcome, error) {
	if err := validation.ForBandsintown(ev).Err(domain.PlatformBandsintown); err != nil {
		return publish.Outcome{}, err
	}
	artistID, err := artist(conn)
	if err != nil {
		return publish.Outcome{}, err
	}

	var resp eventResponse
	if err := p.api.JSON(ctx, http.MethodPost, p.endpoint(conn, artistID, ""), nil, p.buildPayload(ev), &resp); err != nil {
		return publish.Outcome{}, err
	}
	if resp.ID == "" {
		return publish.Outcome{}, fmt.Errorf("bandsintown: response carried no event id")
	}
	return outcome(resp), nil
}

func (p *Publisher) Update(ctx context.Context, remoteID string, ev universal.Event, conn domain.Connection) (publish.Outcome, error) {
	if err := validation.ForBandsintown(ev).Err(domain.PlatformBandsintown); err != nil {
		return publish.Outcome{}, err
	}
	artistID, err := artist(conn)
	if err != nil {
		return publish.Outcome{}, err
	}

	var resp eventResponse
	if err := p.api.JSON(ctx, http.MethodPut, p.endpoint(conn, artistID, remoteID), nil, p.buildPayload(ev), &resp); err != nil {
		return publish.Outcome{}, err
	}
	if resp.ID == "" {
		resp.ID = remoteID
	}
	return outcome(resp), nil
}

func (p *Publisher) Delete(ctx context.Context, remoteID string, conn domain.Connection) error {
	artistID, err := artist(conn)
	if err != nil {
		return err
	}
	return p.api.JSON(ctx, http.MethodDelete, p.endpoint(conn, artistID, remoteID), nil, nil, nil)
}
