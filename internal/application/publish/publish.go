package publish

import (
	"context"
	"fmt"
	"time"

	"github.com/baechuer/real-time-ressys/services/syndication-service/internal/application/universal"
	"github.com/baechuer/real-time-ressys/services/syndication-service/internal/application/validation"
	"github.com/baechuer/real-time-ressys/services/syndication-service/internal/domain"
	"github.com/baechuer/real-time-ressys/services/syndication-service/internal/metrics"
)

// PublishEverywhere publishes the event on every platform the organizer has connected.
// Only the ownership and connection preconditions are returned as errors; every
// per-platform failure is captured in the summary.
func (s *Service) PublishEverywhere(ctx context.Context, eventID, organizerID string) (*domain.PublicationSummary, error) {
	ev, err := s.loadOwned(ctx, eventID, organizerID)
	if err != nil {
		return nil, err
	}

	conns, err := s.repo.ListConnections(ctx, organizerID)
	if err != nil {
		return nil, err
	}
	if len(conns) == 0 {
		return nil, domain.ErrInvalidState("organizer has no platform connections")
	}

	uev := s.universalEvent(ev)
	checks := validation.ForAllPlatforms(uev, s.clock.Now())

	results := s.fanOut(ctx, len(conns),
		func(pctx context.Context, i int) domain.PublicationResult {
			start := time.Now()
			res := s.publishOne(pctx, uev, checks, conns[i])
			metrics.RecordAttempt(string(res.Platform), domain.OpPublish, res.Success, time.Since(start))

			l := res.ToLog(eventID, organizerID, domain.OpPublish, s.clock.Now().UTC())
			s.persist(ctx, l, s.repo.UpsertLog)
			res.LogID = l.ID
			return res
		})

	summary := domain.NewSummary(eventID, results)
	logSummary(domain.OpPublish, organizerID, summary)
	s.emit(ctx, RKSyndicated, newPayload(organizerID, domain.OpPublish, summary))
	return summary, nil
}

func (s *Service) publishOne(ctx context.Context, ev universal.Event, checks map[domain.Platform]validation.Result, conn domain.Connection) domain.PublicationResult {
	res := domain.PublicationResult{Platform: conn.Platform}

	pub, ok := s.registry.Get(conn.Platform)
	check, known := checks[conn.Platform]
	if !ok || !known {
		res.Error = fmt.Sprintf("unsupported platform: %s", conn.Platform)
		return res
	}
	res.Warnings = check.Warnings

	if !check.Valid {
		res.Error = check.Message()
		return res
	}
	if conn.ConfigErr != nil {
		res.Error = errorMessage(conn.ConfigErr)
		return res
	}

	out, err := call(conn.Platform, func() (Outcome, error) { return pub.Publish(ctx, ev, conn) })
	if err != nil {
		res.Error = errorMessage(err)
		return res
	}

	res.Success = true
	res.PlatformEventID = out.ID
	res.PlatformEventURL = out.URL
	res.Warnings = mergeWarnings(check.Warnings, out.Warnings)
	return res
}
