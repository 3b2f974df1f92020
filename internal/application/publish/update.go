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

// UpdateEverywhere pushes the current state of the event to every platform it
// was successfully published on. Each attempt rewrites that platform's row in place.
func (s *Service) UpdateEverywhere(ctx context.Context, eventID, organizerID string) (*domain.PublicationSummary, error) {
	ev, err := s.loadOwned(ctx, eventID, organizerID)
	if err != nil {
		return nil, err
	}

	prior, err := s.successfulLogs(ctx, eventID, organizerID)
	if err != nil {
		return nil, err
	}
	if len(prior) == 0 {
		return nil, domain.ErrInvalidState("event has no successful publications to update")
	}

	conns, err := s.repo.ListConnections(ctx, organizerID)
	if err != nil {
		return nil, err
	}
	byPlatform := connectionsByPlatform(conns)

	uev := s.universalEvent(ev)
	checks := validation.ForAllPlatforms(uev, s.clock.Now())

	results := s.fanOut(ctx, len(prior),
		func(pctx context.Context, i int) domain.PublicationResult {
			row := prior[i]
			conn, hasConn := byPlatform[row.Platform]

			start := time.Now()
			res := s.updateOne(pctx, uev, checks, row, conn, hasConn)
			metrics.RecordAttempt(string(res.Platform), domain.OpUpdate, res.Success, time.Since(start))

			l := res.ToLog(eventID, organizerID, domain.OpUpdate, s.clock.Now().UTC())
			l.CreatedAt = row.CreatedAt
			s.persist(ctx, l, s.repo.UpdateLog)
			return res
		})

	summary := domain.NewSummary(eventID, results)
	logSummary(domain.OpUpdate, organizerID, summary)
	s.emit(ctx, RKSyndicationUpdated, newPayload(organizerID, domain.OpUpdate, summary))
	return summary, nil
}

func (s *Service) successfulLogs(ctx context.Context, eventID, organizerID string) ([]domain.PublicationLog, error) {
	logs, err := s.repo.ListSuccessfulLogs(ctx, eventID)
	if err != nil {
		return nil, err
	}
	out := make([]domain.PublicationLog, 0, len(logs))
	for _, l := range logs {
		if l.OrganizerID == organizerID {
			out = append(out, l)
		}
	}
	return out, nil
}

func (s *Service) updateOne(ctx context.Context, ev universal.Event, checks map[domain.Platform]validation.Result, row domain.PublicationLog, conn domain.Connection, hasConn bool) domain.PublicationResult {
	res := domain.PublicationResult{
		Platform:         row.Platform,
		PlatformEventID:  row.PlatformEventID,
		PlatformEventURL: row.PlatformEventURL,
		LogID:            row.ID,
	}

	var upd Updater
	if pub, ok := s.registry.Get(row.Platform); ok && s.updatable[row.Platform] {
		upd, _ = pub.(Updater)
	}
	if upd == nil {
		res.Error = fmt.Sprintf("update is not supported for %s", row.Platform)
		return res
	}
	if !hasConn {
		res.Error = fmt.Sprintf("no %s connection for organizer", row.Platform)
		return res
	}
	if conn.ConfigErr != nil {
		res.Error = errorMessage(conn.ConfigErr)
		return res
	}

	check := checks[row.Platform]
	res.Warnings = check.Warnings
	if !check.Valid {
		res.Error = check.Message()
		return res
	}

	out, err := call(row.Platform, func() (Outcome, error) { return upd.Update(ctx, row.PlatformEventID, ev, conn) })
	if err != nil {
		res.Error = errorMessage(err)
		return res
	}

	res.Success = true
	if out.ID != "" {
		res.PlatformEventID = out.ID
	}
	if out.URL != "" {
		res.PlatformEventURL = out.URL
	}
	res.Warnings = mergeWarnings(check.Warnings, out.Warnings)
	return res
}
