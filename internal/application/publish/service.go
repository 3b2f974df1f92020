package publish

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	zlog "github.com/rs/zerolog/log"

	"github.com/baechuer/real-time-ressys/services/syndication-service/internal/application/universal"
	"github.com/baechuer/real-time-ressys/services/syndication-service/internal/domain"
	"github.com/baechuer/real-time-ressys/services/syndication-service/internal/metrics"
	appCtx "github.com/baechuer/real-time-ressys/services/syndication-service/internal/pkg/context"
)

const (
	DefaultParallelism     = 4
	DefaultPlatformTimeout = 20 * time.Second
)

// DefaultUpdatePlatforms are the platforms UpdateEverywhere routes to.
var DefaultUpdatePlatforms = []domain.Platform{domain.PlatformFacebook, domain.PlatformEventbrite}

type Service struct {
	repo     Repo
	registry *Registry
	clock    Clock
	events   EventPublisher
	home     universal.Home

	parallelism     int
	platformTimeout time.Duration
	updatable       map[domain.Platform]bool
}

type Option func(*Service)

func WithEvents(p EventPublisher) Option { return func(s *Service) { s.events = p } }
func WithHome(h universal.Home) Option  { return func(s *Service) { s.home = h } }

func WithParallelism(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.parallelism = n
		}
	}
}

func WithPlatformTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.platformTimeout = d
		}
	}
}

// WithUpdatePlatforms replaces the update allow-list.
func WithUpdatePlatforms(platforms ...domain.Platform) Option {
	return func(s *Service) {
		s.updatable = make(map[domain.Platform]bool, len(platforms))
		for _, p := range platforms {
			s.updatable[p] = true
		}
	}
}

func New(repo Repo, registry *Registry, clock Clock, opts ...Option) *Service {
	s := &Service{
		repo:            repo,
		registry:        registry,
		clock:           clock,
		home:            universal.DefaultHome,
		parallelism:     DefaultParallelism,
		platformTimeout: DefaultPlatformTimeout,
	}
	WithUpdatePlatforms(DefaultUpdatePlatforms...)(s)
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// loadOwned fetches the event and enforces that organizerID owns it.
func (s *Service) loadOwned(ctx context.Context, eventID, organizerID string) (*domain.Event, error) {
	ev, err := s.repo.GetEventForPublication(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if ev == nil {
		return nil, domain.ErrNotFound("event not found")
	}
	if !ev.OwnedBy(organizerID) {
		return nil, domain.ErrForbidden("event does not belong to organizer")
	}
	return ev, nil
}

func (s *Service) universalEvent(ev *domain.Event) universal.Event {
	return universal.Convert(ev, ev.Tags, s.home)
}

// connectionsByPlatform keeps the first connection per platform.
func connectionsByPlatform(conns []domain.Connection) map[domain.Platform]domain.Connection {
	out := make(map[domain.Platform]domain.Connection, len(conns))
	for _, c := range conns {
		if _, ok := out[c.Platform]; !ok {
			out[c.Platform] = c
		}
	}
	return out
}

// fanOut runs attempt for 0..n-1 with at most s.parallelism in flight.
// Each attempt gets its own platform timeout. Results keep index order.
func (s *Service) fanOut(ctx context.Context, n int, attempt func(ctx context.Context, i int) domain.PublicationResult) []domain.PublicationResult {
	results := make([]domain.PublicationResult, n)
	sem := make(chan struct{}, s.parallelism)
	var wg sync.WaitGroup

	for i := 0; i < n; i++ {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int) {
			defer wg.Done()
			defer func() { <-sem }()

			pctx, cancel := context.WithTimeout(ctx, s.platformTimeout)
			defer cancel()
			results[i] = attempt(pctx, i)
		}(i)
	}
	wg.Wait()
	return results
}

// call runs a publisher operation, turning a panic into an error.
func call(p domain.Platform, fn func() (Outcome, error)) (out Outcome, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			zlog.Error().Interface("panic", rec).Str("platform", string(p)).Msg("publisher panicked")
			err = fmt.Errorf("internal error: %v", rec)
		}
	}()
	return fn()
}

// errorMessage flattens err into the text stored on the log row.
func errorMessage(err error) string {
	var ae *domain.AppError
	if errors.As(err, &ae) {
		if reason := ae.Meta["reason"]; reason != "" {
			return ae.Message + ": " + reason
		}
		return ae.Message
	}
	return err.Error()
}

func mergeWarnings(a, b []string) []string {
	if len(a) == 0 && len(b) == 0 {
		return nil
	}
	out := make([]string, 0, len(a)+len(b))
	out = append(out, a...)
	return append(out, b...)
}

// persist writes the attempt with a context detached from the caller, so a
// client disconnect does not drop the record of a remote side effect.
func (s *Service) persist(ctx context.Context, l *domain.PublicationLog, write func(context.Context, *domain.PublicationLog) error) {
	if err := write(appCtx.Detach(ctx), l); err != nil {
		metrics.RecordLogWriteFailure(string(l.Platform))
		zlog.Error().
			Err(err).
			Str("event_id", l.EventID).
			Str("platform", string(l.Platform)).
			Msg("write publication log failed")
	}
}

func logSummary(op, organizerID string, sum *domain.PublicationSummary) {
	zlog.Info().
		Str("op", op).
		Str("event_id", sum.EventID).
		Str("organizer_id", organizerID).
		Int("total_success", sum.TotalSuccess).
		Int("total_errors", sum.TotalErrors).
		Msg("syndication finished")
}
