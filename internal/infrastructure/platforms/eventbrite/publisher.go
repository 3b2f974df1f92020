// Package eventbrite publishes events through the Eventbrite v3 API.
package eventbrite

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/baechuer/real-time-ressys/services/syndication-service/internal/application/publish"
	"github.com/baechuer/real-time-ressys/services/syndication-service/internal/application/universal"
	"github.com/baechuer/real-time-ressys/services/syndication-service/internal/application/validation"
	"github.com/baechuer/real-time-ressys/services/syndication-service/internal/domain"
	"github.com/baechuer/real-time-ressys/services/syndication-service/internal/infrastructure/downstream"
	"github.com/baechuer/real-time-ressys/services/syndication-service/internal/metrics"
)

const (
	DefaultAPIURL = "https://www.eventbriteapi.com/v3"
	eventURLBase  = "https://www.eventbrite.com/e/"
	platformName  = string(domain.PlatformEventbrite)

	// defaultDuration applies when the event has no end date.
	defaultDuration = 3 * time.Hour
	utcLayout       = "2006-01-02T15:04:05Z"
)

type Config struct {
	APIURL   string
	CacheTTL time.Duration
	// Region fills the venue address region when creating a venue.
	Region string
	HTTP   downstream.ClientConfig
}

type Publisher struct {
	api      *downstream.Client
	baseURL  string
	region   string
	cache    downstream.Cache
	cacheTTL time.Duration
}

// New builds the publisher. cache may be nil.
func New(cfg Config, httpClient *http.Client, cache downstream.Cache) *Publisher {
	if cfg.APIURL == "" {
		cfg.APIURL = DefaultAPIURL
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 10 * time.Minute
	}
	return &Publisher{
		api:      downstream.NewClient(platformName, httpClient, cfg.HTTP, errorMessage),
		baseURL:  strings.TrimRight(cfg.APIURL, "/"),
		region:   cfg.Region,
		cache:    cache,
		cacheTTL: cfg.CacheTTL,
	}
}

func (p *Publisher) Platform() domain.Platform { return domain.PlatformEventbrite }

// errorMessage reads {"error":"CODE","error_description":"..."}.
func errorMessage(body []byte) string {
	var env struct {
		Error       string `json:"error"`
		Description string `json:"error_description"`
	}
	if json.Unmarshal(body, &env) != nil {
		return ""
	}
	if env.Description != "" {
		return env.Description
	}
	return env.Error
}

func authHeaders(token string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + token}
}

// organization returns the pinned organization or the first one the token belongs to.
func (p *Publisher) organization(ctx context.Context, conn domain.Connection) (string, error) {
	if cfg, ok := conn.Config.(domain.EventbriteConfig); ok && cfg.OrganizationID != "" {
		return cfg.OrganizationID, nil
	}

	hit := true
	orgID, err := downstream.Cached(ctx, p.cache, downstream.TokenKey("eb:org", conn.AccessToken), p.cacheTTL, func() (string, error) {
		hit = false
		var resp struct {
			Organizations []struct {
				ID string `json:"id"`
			} `json:"organizations"`
		}
		if err := p.api.JSON(ctx, http.MethodGet, p.baseURL+"/users/me/organizations/", authHeaders(conn.AccessToken), nil, &resp); err != nil {
			return "", err
		}
		if len(resp.Organizations) == 0 {
			return "", downstream.NewConfigError(platformName, "no Eventbrite organization available for this connection")
		}
		return resp.Organizations[0].ID, nil
	})
	if err != nil {
		return "", err
	}
	metrics.RecordIdentityLookup(platformName, hit)
	return orgID, nil
}

type venueAddress struct {
	Address1   string `json:"address_1,omitempty"`
	City       string `json:"city,omitempty"`
	Region     string `json:"region,omitempty"`
	PostalCode string `json:"postal_code,omitempty"`
	Country    string `json:"country,omitempty"`
	Latitude   string `json:"latitude,omitempty"`
	Longitude  string `json:"longitude,omitempty"`
}

type venue struct {
	ID      string       `json:"id,omitempty"`
	Name    string       `json:"name"`
	Address venueAddress `json:"address"`
}

// maxVenuePages bounds the venue search for organizations with very large venue lists.
const maxVenuePages = 20

type venuePage struct {
	Venues     []venue `json:"venues"`
	Pagination struct {
		HasMoreItems bool   `json:"has_more_items"`
		Continuation string `json:"continuation"`
	} `json:"pagination"`
}

// ensureVenue reuses an organization venue with the same name and city, or creates one.
func (p *Publisher) ensureVenue(ctx context.Context, orgID, token string, ev universal.Event) (string, error) {
	base := p.baseURL + "/organizations/" + url.PathEscape(orgID) + "/venues/"

	continuation := ""
	for range maxVenuePages {
		u := base
		if continuation != "" {
			u += "?" + url.Values{"continuation": {continuation}}.Encode()
		}
		var list venuePage
		if err := p.api.JSON(ctx, http.MethodGet, u, authHeaders(token), nil, &list); err != nil {
			return "", err
		}
		for _, v := range list.Venues {
			if domain.SameVenue(v.Name, v.Address.City, ev.Venue.Name, ev.Venue.City) {
				return v.ID, nil
			}
		}
		if !list.Pagination.HasMoreItems || list.Pagination.Continuation == "" {
			break
		}
		continuation = list.Pagination.Continuation
	}

	addr := venueAddress{
		Address1:   ev.Venue.Address,
		City:       ev.Venue.City,
		Region:     p.region,
		PostalCode: ev.Venue.PostalCode,
		Country:    ev.Venue.Country,
	}
	if c := ev.Venue.Coordinates; c != nil {
		addr.Latitude = fmt.Sprintf("%f", c.Lat)
		addr.Longitude = fmt.Sprintf("%f", c.Lng)
	}
	req := struct {
		Venue venue `json:"venue"`
	}{Venue: venue{Name: ev.Venue.Name, Address: addr}}

	var created venue
	if err := p.api.JSON(ctx, http.MethodPost, base, authHeaders(token), req, &created); err != nil {
		return "", err
	}
	if created.ID == "" {
		return "", fmt.Errorf("eventbrite: venue response carried no id")
	}
	return created.ID, nil
}

type htmlText struct {
	HTML string `json:"html"`
}

type dateTime struct {
	Timezone string `json:"timezone"`
	UTC      string `json:"utc"`
}

type ticketAvailability struct {
	IsFree bool `json:"is_free"`
}

type eventBody struct {
	Name               htmlText           `json:"name"`
	Description        htmlText           `json:"description"`
	Start              dateTime           `json:"start"`
	End                dateTime           `json:"end"`
	Currency           string             `json:"currency"`
	VenueID            string             `json:"venue_id,omitempty"`
	OnlineEvent        bool               `json:"online_event"`
	TicketAvailability ticketAvailability `json:"ticket_availability"`
}

type eventRequest struct {
	Event eventBody `json:"event"`
}

type eventResponse struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// toHTML escapes text and turns blank-line separated blocks into paragraphs.
func toHTML(s string) string {
	var b strings.Builder
	for _, para := range strings.Split(strings.TrimSpace(s), "\n\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		b.WriteString("<p>")
		b.WriteString(strings.ReplaceAll(html.EscapeString(para), "\n", "<br>"))
		b.WriteString("</p>")
	}
	return b.String()
}

func buildEvent(ev universal.Event, venueID string) eventRequest {
	end := ev.StartDate.Add(defaultDuration)
	if ev.EndDate != nil {
		end = *ev.EndDate
	}
	tz := ev.Location().String()
	return eventRequest{Event: eventBody{
		Name:               htmlText{HTML: html.EscapeString(ev.Title)},
		Description:        htmlText{HTML: toHTML(ev.BestDescription())},
		Start:              dateTime{Timezone: tz, UTC: ev.StartDate.UTC().Format(utcLayout)},
		End:                dateTime{Timezone: tz, UTC: end.UTC().Format(utcLayout)},
		Currency:           ev.Currency,
		VenueID:            venueID,
		TicketAvailability: ticketAvailability{IsFree: ev.IsFree},
	}}
}

func outcome(resp eventResponse) publish.Outcome {
	u := resp.URL
	if u == "" {
		u = eventURLBase + resp.ID
	}
	return publish.Outcome{ID: resp.ID, URL: u}
}

// prepare validates, resolves the organization and the venue.
func (p *Publisher) prepare(ctx context.Context, ev universal.Event, conn domain.Connection) (orgID, venueID string, err error) {
	if err := validation.ForEventbrite(ev).Err(domain.PlatformEventbrite); err != nil {
		return "", "", err
	}
	if conn.AccessToken == "" {
		return "", "", downstream.NewConfigError(platformName, "missing access token")
	}
	if orgID, err = p.organization(ctx, conn); err != nil {
		return "", "", err
	}
	if venueID, err = p.ensureVenue(ctx, orgID, conn.AccessToken, ev); err != nil {
		return "", "", err
	}
	return orgID, venueID, nil
}

// Publish creates the event. Paid ticket classes are not created.
// TODO: create a ticket class from PriceMin/PriceMax for paid events.
func (p *Publisher) Publish(ctx context.Context, ev universal.Event, conn domain.Connection) (publish.Outcome, error) {
	orgID, venueID, err := p.prepare(ctx, ev, conn)
	if err != nil {
		return publish.Outcome{}, err
	}

	var resp eventResponse
	u := p.baseURL + "/organizations/" + url.PathEscape(orgID) + "/events/"
	if err := p.api.JSON(ctx, http.MethodPost, u, authHeaders(conn.AccessToken), buildEvent(ev, venueID), &resp); err != nil {
		return publish.Outcome{}, err
	}
	if resp.ID == "" {
		return publish.Outcome{}, fmt.Errorf("eventbrite: response carried no event id")
	}
	return outcome(resp), nil
}

func (p *Publisher) Update(ctx context.Context, remoteID string, ev universal.Event, conn domain.Connection) (publish.Outcome, error) {
	_, venueID, err := p.prepare(ctx, ev, conn)
	if err != nil {
		return publish.Outcome{}, err
	}

	var resp eventResponse
	u := p.baseURL + "/events/" + url.PathEscape(remoteID) + "/"
	if err := p.api.JSON(ctx, http.MethodPost, u, authHeaders(conn.AccessToken), buildEvent(ev, venueID), &resp); err != nil {
		return publish.Outcome{}, err
	}
	if resp.ID == "" {
		resp.ID = remoteID
	}
	return outcome(resp), nil
}

func (p *Publisher) Delete(ctx context.Context, remoteID string, conn domain.Connection) error {
	if conn.AccessToken == "" {
		return downstream.NewConfigError(platformName, "missing access token")
	}
	u := p.baseURL + "/events/" + url.PathEscape(remoteID) + "/"
	return p.api.JSON(ctx, http.MethodDelete, u, authHeaders(conn.AccessToken), nil, nil)
}
