// Package facebook publishes events to a Facebook page through the Graph API.
package facebook

import (
	"context"
	"encoding/json"
	"fmt"
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
	DefaultGraphURL = "https://graph.facebook.com/v19.0"
	eventURLBase    = "https://www.facebook.com/events/"
	platformName    = string(domain.PlatformFacebook)
)

type Config struct {
	GraphURL string
	// CacheTTL bounds how long a resolved page id is reused.
	CacheTTL time.Duration
	HTTP     downstream.ClientConfig
}

type Publisher struct {
	api      *downstream.Client
	graphURL string
	cache    downstream.Cache
	cacheTTL time.Duration
	clock    publish.Clock
}

// New builds the publisher. cache may be nil.
func New(cfg Config, httpClient *http.Client, cache downstream.Cache, clock publish.Clock) *Publisher {
	if cfg.GraphURL == "" {
		cfg.GraphURL = DefaultGraphURL
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 10 * time.Minute
	}
	return &Publisher{
		api:      downstream.NewClient(platformName, httpClient, cfg.HTTP, errorMessage),
		graphURL: strings.TrimRight(cfg.GraphURL, "/"),
		cache:    cache,
		cacheTTL: cfg.CacheTTL,
		clock:    clock,
	}
}

func (p *Publisher) Platform() domain.Platform { return domain.PlatformFacebook }

// errorMessage reads {"error":{"message":...}}.
func errorMessage(body []byte) string {
	var env struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if json.Unmarshal(body, &env) != nil {
		return ""
	}
	return env.Error.Message
}

type page struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	AccessToken string `json:"access_token"`
}

func (p *Publisher) endpoint(path, token string, query url.Values) string {
	if query == nil {
		query = url.Values{}
	}
	query.Set("access_token", token)
	return p.graphURL + path + "?" + query.Encode()
}

// pageRef is the cached part of a resolved page. Page tokens never enter the cache.
type pageRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// resolvePage picks the pinned page, or the first page the token manages.
func (p *Publisher) resolvePage(ctx context.Context, conn domain.Connection) (page, error) {
	if conn.AccessToken == "" {
		return page{}, downstream.NewConfigError(platformName, "missing access token")
	}
	cfg, _ := conn.Config.(domain.FacebookConfig)

	var fresh *page
	key := downstream.TokenKey("fb:page", conn.AccessToken, cfg.PageID)
	ref, err := downstream.Cached(ctx, p.cache, key, p.cacheTTL, func() (pageRef, error) {
		pg, err := p.lookupPage(ctx, conn.AccessToken, cfg.PageID)
		if err != nil {
			return pageRef{}, err
		}
		fresh = &pg
		return pageRef{ID: pg.ID, Name: pg.Name}, nil
	})
	if err != nil {
		return page{}, err
	}
	metrics.RecordIdentityLookup(platformName, fresh == nil)

	pg := page{ID: ref.ID, Name: ref.Name}
	if fresh != nil {
		pg = *fresh
	} else if pg.AccessToken, err = p.pageToken(ctx, conn.AccessToken, ref.ID); err != nil {
		return page{}, err
	}
	if pg.AccessToken == "" {
		pg.AccessToken = conn.AccessToken
	}
	return pg, nil
}

// pageToken exchanges the user token for the page token of a known page.
func (p *Publisher) pageToken(ctx context.Context, token, pageID string) (string, error) {
	var resp struct {
		AccessToken string `json:"access_token"`
	}
	u := p.endpoint("/"+url.PathEscape(pageID), token, url.Values{"fields": {"access_token"}})
	if err := p.api.JSON(ctx, http.MethodGet, u, nil, nil, &resp); err != nil {
		return "", err
	}
	return resp.AccessToken, nil
}

func (p *Publisher) lookupPage(ctx context.Context, token, pinned string) (page, error) {
	var resp struct {
		Data []page `json:"data"`
	}
	u := p.endpoint("/me/accounts", token, url.Values{"fields": {"id,name,access_token"}})
	if err := p.api.JSON(ctx, http.MethodGet, u, nil, nil, &resp); err != nil {
		return page{}, err
	}

	if pinned != "" {
		for _, pg := range resp.Data {
			if pg.ID == pinned {
				return pg, nil
			}
		}
		return page{}, downstream.NewConfigError(platformName, fmt.Sprintf("page %s is not managed by this connection", pinned))
	}
	if len(resp.Data) == 0 {
		return page{}, downstream.NewConfigError(platformName, "no Facebook page available for this connection")
	}
	return resp.Data[0], nil
}

type location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Street    string  `json:"street,omitempty"`
	City      string  `json:"city,omitempty"`
	Zip       string  `json:"zip,omitempty"`
	Country   string  `json:"country,omitempty"`
}

type place struct {
	Name     string    `json:"name"`
	Location *location `json:"location,omitempty"`
}

type eventPayload struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time,omitempty"`
	Timezone    string `json:"timezone,omitempty"`
	Place       place  `json:"place"`
	CoverURL    string `json:"cover_url,omitempty"`
	TicketURI   string `json:"ticket_uri,omitempty"`
}

func buildPayload(ev universal.Event) eventPayload {
	loc := ev.Location()
	out := eventPayload{
		Name:        ev.Title,
		Description: ev.BestDescription(),
		StartTime:   ev.StartDate.In(loc).Format(time.RFC3339),
		Timezone:    ev.Timezone,
		Place:       place{Name: ev.Venue.Name},
		CoverURL:    ev.ImageURL,
		TicketURI:   ev.TicketURL,
	}
	if ev.EndDate != nil {
		out.EndTime = ev.EndDate.In(loc).Format(time.RFC3339)
	}
	if c := ev.Venue.Coordinates; c != nil {
		out.Place.Location = &location{
			Latitude:  c.Lat,
			Longitude: c.Lng,
			Street:    ev.Venue.Address,
			City:      ev.Venue.City,
			Zip:       ev.Venue.PostalCode,
			Country:   ev.Venue.Country,
		}
	}
	return out
}

func (p *Publisher) validate(ev universal.Event) error {
	return validation.ForFacebook(ev, p.clock.Now()).Err(domain.PlatformFacebook)
}

func (p *Publisher) Publish(ctx context.Context, ev universal.Event, conn domain.Connection) (publish.Outcome, error) {
	if err := p.validate(ev); err != nil {
		return publish.Outcome{}, err
	}
	pg, err := p.resolvePage(ctx, conn)
	if err != nil {
		return publish.Outcome{}, err
	}

	var resp struct {
		ID string `json:"id"`
	}
	u := p.endpoint("/"+url.PathEscape(pg.ID)+"/events", pg.AccessToken, nil)
	if err := p.api.JSON(ctx, http.MethodPost, u, nil, buildPayload(ev), &resp); err != nil {
		return publish.Outcome{}, err
	}
	if resp.ID == "" {
		return publish.Outcome{}, fmt.Errorf("facebook: response carried no event id")
	}
	return publish.Outcome{ID: resp.ID, URL: eventURLBase + resp.ID}, nil
}

func (p *Publisher) Update(ctx context.Context, remoteID string, ev universal.Event, conn domain.Connection) (publish.Outcome, error) {
	if err := p.validate(ev); err != nil {
		return publish.Outcome{}, err
	}
	pg, err := p.resolvePage(ctx, conn)
	if err != nil {
		return publish.Outcome{}, err
	}

	u := p.endpoint("/"+url.PathEscape(remoteID), pg.AccessToken, nil)
	if err := p.api.JSON(ctx, http.MethodPost, u, nil, buildPayload(ev), nil); err != nil {
		return publish.Outcome{}, err
	}
	return publish.Outcome{ID: remoteID, URL: eventURLBase + remoteID}, nil
}

func (p *Publisher) Delete(ctx context.Context, remoteID string, conn domain.Connection) error {
	pg, err := p.resolvePage(ctx, conn)
	if err != nil {
		return err
	}
	u := p.endpoint("/"+url.PathEscape(remoteID), pg.AccessToken, nil)
	return p.api.JSON(ctx, http.MethodDelete, u, nil, nil, nil)
}
