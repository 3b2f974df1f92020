package publish

import (
	"context"
	"fmt"
	"time"

	zlog "github.com/rs/zerolog/log"

	"github.com/baechuer/real-time-ressys/services/syndication-service/internal/domain"
	"github.com/baechuer/real-time-ressys/services/syndication-service/internal/metrics"
)

// Withdraw deletes the remote event on one platform and marks its row withdrawn.
// Any row that still holds a remote id can be withdrawn, whatever its last attempt did.
// A failed remote delete leaves the row untouched and is reported in the result.
// Platforms without a delete API (Resident Advisor) return ErrUnsupported.
func (s *Service) Withdraw(ctx context.Context, eventID, organizerID string, platform domain.Platform) (*domain.PublicationResult, error) {
	if _, err := s.loadOwned(ctx, eventID, organizerID); err != nil {
		return nil, err
	}

	row, err := s.liveLog(ctx, eventID, organizerID, platform)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, domain.ErrInvalidState(fmt.Sprintf("event is not published on %s", platform))
	}

	pub, ok := s.registry.Get(platform)
	if !ok {
		return nil, domain.ErrUnsupported(fmt.Sprintf("unsupported platform: %s", platform))
	}

	conns, err := s.repo.ListConnections(ctx, organizerID)
	if err != nil {
		return nil, err
	}
	conn, ok := connectionsByPlatform(conns)[platform]
	if !ok {
		return nil, domain.ErrInvalidState(fmt.Sprintf("no %s connection for organizer", platform))
	}

	res := &domain.PublicationResult{
		Platform:         platform,
		PlatformEventID:  row.PlatformEventID,
		PlatformEventURL: row.PlatformEventURL,
		LogID:            row.ID,
	}

	pctx, cancel := context.WithTimeout(ctx, s.platformTimeout)
	defer cancel()

	if conn.ConfigErr != nil {
		res.Error = errorMessage(conn.ConfigErr)
		return res, nil
	}

	start := time.Now()
	_, err = call(platform, func() (Outcome, error) {
		return Outcome{}, pub.Delete(pctx, row.PlatformEventID, conn)
	})
	if domain.HasCode(err, domain.CodeUnsupported) {
		return nil, err
	}
	metrics.RecordAttempt(string(platform), domain.OpWithdraw, err == nil, time.Since(start))
	if err != nil {
		res.Error = errorMessage(err)
		zlog.Warn().
			Err(err).
			Str("event_id", eventID).
			Str("platform", string(platform)).
			Msg("withdraw failed")
		return res, nil
	}
	res.Success = true

	now := s.clock.Now().UTC()
	l := *row
	l.Status = domain.PublicationWithdrawn
	l.ErrorMessage = ""
	l.Metadata = domain.PublicationMetadata{Operation: domain.OpWithdraw}
	l.UpdatedAt = now
	s.persist(ctx, &l, s.repo.UpdateLog)

	summary := domain.NewSummary(eventID, []domain.PublicationResult{*res})
	s.emit(ctx, RKSyndicationWithdraw, newPayload(organizerID, domain.OpWithdraw, summary))
	return res, nil
}

// liveLog returns the row for platform that still points at a remote event, or nil.
func (s *Service) liveLog(ctx context.Context, eventID, organizerID string, platform domain.Platform) (*domain.PublicationLog, error) {
	logs, err := s.repo.ListLogs(ctx, eventID)
	if err != nil {
		return nil, err
	}
	for i := range logs {
		l := logs[i]
		if l.OrganizerID == organizerID && l.Platform == platform &&
			l.PlatformEventID != "" && l.Status != domain.PublicationWithdrawn {
			return &l, nil
		}
	}
	return nil, nil
}
