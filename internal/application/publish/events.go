package publish

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	zlog "github.com/rs/zerolog/log"

	"github.com/baechuer/real-time-ressys/services/syndication-service/internal/domain"
	"github.com/baechuer/real-time-ressys/services/syndication-service/internal/metrics"
	appCtx "github.com/baechuer/real-time-ressys/services/syndication-service/internal/pkg/context"
)

const (
	EventVersion  = 1
	EventProducer = "syndication-service"

	RKSyndicated          = "event.syndicated"
	RKSyndicationUpdated  = "event.syndication_updated"
	RKSyndicationWithdraw = "event.syndication_withdrawn"
)

// DomainEventEnvelope is the contract shared with the other services on the exchange.
type DomainEventEnvelope[T any] struct {
	Version    int       `json:"version"`
	Producer   string    `json:"producer"`
	MessageID  string    `json:"message_id"`
	TraceID    string    `json:"trace_id,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
	Payload    T         `json:"payload"`
}

// SyndicationPayload is the payload for every event.syndication* routing key.
type SyndicationPayload struct {
	EventID      string            `json:"event_id"`
	OrganizerID  string            `json:"organizer_id"`
	Operation    string            `json:"operation"`
	TotalSuccess int               `json:"total_success"`
	TotalErrors  int               `json:"total_errors"`
	Platforms    []PlatformOutcome `json:"platforms"`
}

type PlatformOutcome struct {
	Platform         domain.Platform `json:"platform"`
	Success          bool            `json:"success"`
	PlatformEventID  string          `json:"platform_event_id,omitempty"`
	PlatformEventURL string          `json:"platform_event_url,omitempty"`
}

func newPayload(organizerID, operation string, summary *domain.PublicationSummary) SyndicationPayload {
	p := SyndicationPayload{
		EventID:      summary.EventID,
		OrganizerID:  organizerID,
		Operation:    operation,
		TotalSuccess: summary.TotalSuccess,
		TotalErrors:  summary.TotalErrors,
		Platforms:    make([]PlatformOutcome, 0, len(summary.Results)),
	}
	for _, r := range summary.Results {
		p.Platforms = append(p.Platforms, PlatformOutcome{
			Platform:         r.Platform,
			Success:          r.Success,
			PlatformEventID:  r.PlatformEventID,
			PlatformEventURL: r.PlatformEventURL,
		})
	}
	return p
}

// emit is best-effort: failures are logged and counted, never returned.
func (s *Service) emit(ctx context.Context, routingKey string, payload SyndicationPayload) {
	if s.events == nil {
		return
	}
	env := DomainEventEnvelope[SyndicationPayload]{
		Version:    EventVersion,
		Producer:   EventProducer,
		MessageID:  uuid.NewString(),
		TraceID:    appCtx.GetRequestID(ctx),
		OccurredAt: s.clock.Now().UTC(),
		Payload:    payload,
	}
	body, err := json.Marshal(env)
	if err == nil {
		err = s.events.PublishEvent(appCtx.Detach(ctx), routingKey, env.MessageID, body)
	}
	metrics.RecordDomainEvent(routingKey, err)
	if err != nil {
		zlog.Error().
			Err(err).
			Str("rk", routingKey).
			Str("event_id", payload.EventID).
			Msg("publish domain event failed")
	}
}
