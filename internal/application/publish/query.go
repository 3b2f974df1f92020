package publish

import (
	"context"

	"github.com/baechuer/real-time-ressys/services/syndication-service/internal/application/validation"
	"github.com/baechuer/real-time-ressys/services/syndication-service/internal/domain"
)

// ListPublications returns the organizer's log rows for the event, one per platform.
func (s *Service) ListPublications(ctx context.Context, eventID, organizerID string) ([]domain.PublicationLog, error) {
	if _, err := s.loadOwned(ctx, eventID, organizerID); err != nil {
		return nil, err
	}
	logs, err := s.repo.ListLogs(ctx, eventID)
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

// ExportResidentAdvisor renders the event for manual upload to Resident Advisor.
// The event must pass the Resident Advisor checks.
func (s *Service) ExportResidentAdvisor(ctx context.Context, eventID, organizerID, format string) (*Export, error) {
	ev, err := s.loadOwned(ctx, eventID, organizerID)
	if err != nil {
		return nil, err
	}

	pub, ok := s.registry.Get(domain.PlatformResidentAdvisor)
	if !ok {
		return nil, domain.ErrUnsupported("resident advisor export is not configured")
	}
	exp, ok := pub.(Exporter)
	if !ok {
		return nil, domain.ErrUnsupported("resident advisor export is not configured")
	}

	uev := s.universalEvent(ev)
	check := validation.ForResidentAdvisor(uev)
	if err := check.Err(domain.PlatformResidentAdvisor); err != nil {
		return nil, err
	}

	out, err := exp.Export(uev, format)
	if err != nil {
		return nil, err
	}
	out.Warnings = mergeWarnings(check.Warnings, out.Warnings)
	return &out, nil
}
