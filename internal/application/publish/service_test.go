package publish

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baechuer/real-time-ressys/services/syndication-service/internal/application/universal"
	"github.com/baechuer/real-time-ressys/services/syndication-service/internal/domain"
)

// --- Fakes & Helpers ---

type fakeClock struct{ t time.Time }

func (c fakeClock) Now() time.Time { return c.t }

var now = time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)

type memRepo struct {
	mu     sync.Mutex
	events map[string]*domain.Event
	conns  map[string][]domain.Connection
	logs   map[string]*domain.PublicationLog
	seq    int
}

func newMemRepo() *memRepo {
	return &memRepo{
		events: map[string]*domain.Event{},
		conns:  map[string][]domain.Connection{},
		logs:   map[string]*domain.PublicationLog{},
	}
}

func (m *memRepo) GetEventForPublication(ctx context.Context, id string) (*domain.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ev, ok := m.events[id]
	if !ok {
		return nil, domain.ErrNotFound("event not found")
	}
	return ev, nil
}

func (m *memRepo) ListConnections(ctx context.Context, organizerID string) ([]domain.Connection, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.conns[organizerID], nil
}

func (m *memRepo) ListLogs(ctx context.Context, eventID string) ([]domain.PublicationLog, error) {
	return m.list(eventID, func(domain.PublicationLog) bool { return true }), nil
}

func (m *memRepo) ListSuccessfulLogs(ctx context.Context, eventID string) ([]domain.PublicationLog, error) {
	return m.list(eventID, func(l domain.PublicationLog) bool { return l.Status == domain.PublicationSuccess }), nil
}

func (m *memRepo) list(eventID string, keep func(domain.PublicationLog) bool) []domain.PublicationLog {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.PublicationLog
	for _, l := range m.logs {
		if l.EventID == eventID && keep(*l) {
			out = append(out, *l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Platform < out[j].Platform })
	return out
}

func (m *memRepo) UpsertLog(ctx context.Context, l *domain.PublicationLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, existing := range m.logs {
		if existing.EventID == l.EventID && existing.OrganizerID == l.OrganizerID && existing.Platform == l.Platform {
			l.ID = id
			l.CreatedAt = existing.CreatedAt
			cp := *l
			if cp.Status != domain.PublicationSuccess {
				cp.PlatformEventID = existing.PlatformEventID
				cp.PlatformEventURL = existing.PlatformEventURL
			}
			m.logs[id] = &cp
			return nil
		}
	}
	m.seq++
	l.ID = fmt.Sprintf("log-%d", m.seq)
	cp := *l
	m.logs[l.ID] = &cp
	return nil
}

func (m *memRepo) UpdateLog(ctx context.Context, l *domain.PublicationLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.logs[l.ID]; !ok {
		return domain.ErrNotFound("log not found")
	}
	cp := *l
	m.logs[l.ID] = &cp
	return nil
}

func (m *memRepo) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.logs)
}

type fakePublisher struct {
	platform domain.Platform
	publish  func(ev universal.Event) (Outcome, error)
	del      func(remoteID string) error
	deleted  []string
	mu       sync.Mutex
}

func (f *fakePublisher) Platform() domain.Platform { return f.platform }

func (f *fakePublisher) Publish(ctx context.Context, ev universal.Event, conn domain.Connection) (Outcome, error) {
	if f.publish != nil {
		return f.publish(ev)
	}
	return Outcome{ID: string(f.platform) + "-1", URL: "https://example.com/" + string(f.platform)}, nil
}

func (f *fakePublisher) Delete(ctx context.Context, remoteID string, conn domain.Connection) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.del != nil {
		return f.del(remoteID)
	}
	f.deleted = append(f.deleted, remoteID)
	return nil
}

type fakeUpdater struct {
	fakePublisher
	update func(remoteID string) (Outcome, error)
}

func (f *fakeUpdater) Update(ctx context.Context, remoteID string, ev universal.Event, conn domain.Connection) (Outcome, error) {
	if f.update != nil {
		return f.update(remoteID)
	}
	return Outcome{ID: remoteID}, nil
}

type fakeExporter struct {
	fakePublisher
}

func (f *fakeExporter) Export(ev universal.Event, format string) (Export, error) {
	if format != "json" {
		return Export{}, domain.ErrValidation("unsupported format")
	}
	return Export{ContentType: "application/json", Body: []byte(`[{"title":"` + ev.Title + `"}]`)}, nil
}

type recordingEvents struct {
	mu   sync.Mutex
	keys []string
	err  error
}

func (r *recordingEvents) PublishEvent(ctx context.Context, routingKey, messageID string, body []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.keys = append(r.keys, routingKey)
	return r.err
}

func fptr(v float64) *float64 { return &v }

func storedEvent() *domain.Event {
	end := now.Add(75 * time.Hour)
	return &domain.Event{
		ID:          "evt-1",
		OrganizerID: "org-1",
		Title:       "Warehouse Session",
		Description: "Deep sounds all night long in the old warehouse by the canal.",
		StartTime:   now.Add(72 * time.Hour),
		EndTime:     &end,
		Timezone:    "America/Toronto",
		Venue: &domain.Venue{
			Name:      "Le Belmont",
			Address:   "4483 Boul. Saint-Laurent",
			City:      "Montréal",
			Latitude:  fptr(45.52),
			Longitude: fptr(-73.58),
		},
		Price:     20,
		TicketURL: "https://tickets.example.com/ws",
		ImageURL:  "https://img.example.com/ws.jpg",
		Tags:      []domain.Tag{{Category: domain.TagGenre, Value: "Techno"}},
		Features:  &domain.Features{Lineup: []string{"DJ One"}},
	}
}

func conn(p domain.Platform, metadata string) domain.Connection {
	return domain.NewConnection("conn-"+string(p), "org-1", string(p), "token", []byte(metadata))
}

func newService(repo *memRepo, pubs ...Publisher) *Service {
	return New(repo, NewRegistry(pubs...), fakeClock{t: now})
}

// --- PublishEverywhere ---

func TestPublishEverywhere_PartialFailure(t *testing.T) {
	repo := newMemRepo()
	repo.events["evt-1"] = storedEvent()
	repo.conns["org-1"] = []domain.Connection{
		conn(domain.PlatformFacebook, `{}`),
		conn(domain.PlatformEventbrite, `{}`),
	}

	fb := &fakePublisher{platform: domain.PlatformFacebook}
	eb := &fakePublisher{platform: domain.PlatformEventbrite, publish: func(universal.Event) (Outcome, error) {
		return Outcome{}, errors.New("eventbrite API error (400): INVALID_VENUE")
	}}
	events := &recordingEvents{}
	svc := New(repo, NewRegistry(fb, eb), fakeClock{t: now}, WithEvents(events))

	sum, err := svc.PublishEverywhere(context.Background(), "evt-1", "org-1")
	require.NoError(t, err)

	assert.Equal(t, 1, sum.TotalSuccess)
	assert.Equal(t, 1, sum.TotalErrors)
	require.Len(t, sum.Results, 2)
	assert.Equal(t, domain.PlatformFacebook, sum.Results[0].Platform)
	assert.True(t, sum.Results[0].Success)
	assert.Equal(t, "facebook-1", sum.Results[0].PlatformEventID)
	assert.Equal(t, domain.PlatformEventbrite, sum.Results[1].Platform)
	assert.Contains(t, sum.Results[1].Error, "INVALID_VENUE")
	assert.NotEmpty(t, sum.Results[1].LogID)

	assert.Equal(t, 2, repo.count())
	assert.Equal(t, []string{RKSyndicated}, events.keys)
}

func TestPublishEverywhere_Preconditions(t *testing.T) {
	t.Run("no_connections", func(t *testing.T) {
		repo := newMemRepo()
		repo.events["evt-1"] = storedEvent()
		svc := newService(repo)

		_, err := svc.PublishEverywhere(context.Background(), "evt-1", "org-1")
		assert.True(t, domain.HasCode(err, domain.CodeInvalidState))
		assert.Equal(t, 0, repo.count())
	})

	t.Run("not_owner", func(t *testing.T) {
		repo := newMemRepo()
		repo.events["evt-1"] = storedEvent()
		repo.conns["org-2"] = []domain.Connection{conn(domain.PlatformFacebook, `{}`)}
		svc := newService(repo, &fakePublisher{platform: domain.PlatformFacebook})

		_, err := svc.PublishEverywhere(context.Background(), "evt-1", "org-2")
		assert.True(t, domain.HasCode(err, domain.CodeForbidden))
		assert.Equal(t, 0, repo.count())
	})

	t.Run("missing_event", func(t *testing.T) {
		svc := newService(newMemRepo())
		_, err := svc.PublishEverywhere(context.Background(), "nope", "org-1")
		assert.True(t, domain.HasCode(err, domain.CodeNotFound))
	})
}

func TestPublishEverywhere_CapturedFailures(t *testing.T) {
	repo := newMemRepo()
	ev := storedEvent()
	ev.Features = nil // no lineup: RA and Bandsintown fail validation
	repo.events["evt-1"] = ev
	repo.conns["org-1"] = []domain.Connection{
		conn(domain.PlatformResidentAdvisor, `{}`),
		domain.NewConnection("c-x", "org-1", "myspace", "token", nil),
		conn(domain.PlatformBandsintown, `{"artist_id":"a1"}`),
		conn(domain.PlatformEventbrite, `{}`),
	}

	panicky := &fakePublisher{platform: domain.PlatformEventbrite, publish: func(universal.Event) (Outcome, error) {
		panic("boom")
	}}
	ra := &fakePublisher{platform: domain.PlatformResidentAdvisor}
	bit := &fakePublisher{platform: domain.PlatformBandsintown}
	svc := newService(repo, panicky, ra, bit)

	sum, err := svc.PublishEverywhere(context.Background(), "evt-1", "org-1")
	require.NoError(t, err)
	require.Len(t, sum.Results, 4)
	assert.Equal(t, 0, sum.TotalSuccess)
	assert.Equal(t, 4, sum.TotalErrors)

	assert.Contains(t, sum.Results[0].Error, "lineup")
	assert.Contains(t, sum.Results[1].Error, "unsupported platform")
	assert.Contains(t, sum.Results[2].Error, "lineup")
	assert.Contains(t, sum.Results[3].Error, "internal error")
	assert.Equal(t, 4, repo.count())
}

func TestPublishEverywhere_InvalidConnectionConfig(t *testing.T) {
	repo := newMemRepo()
	repo.events["evt-1"] = storedEvent()
	repo.conns["org-1"] = []domain.Connection{conn(domain.PlatformBandsintown, `{}`)}

	called := false
	bit := &fakePublisher{platform: domain.PlatformBandsintown, publish: func(universal.Event) (Outcome, error) {
		called = true
		return Outcome{}, nil
	}}
	sum, err := newService(repo, bit).PublishEverywhere(context.Background(), "evt-1", "org-1")
	require.NoError(t, err)
	assert.False(t, called)
	assert.Equal(t, 1, sum.TotalErrors)
	assert.Contains(t, sum.Results[0].Error, "invalid connection config")
}

func TestPublishEverywhere_RepublishReplacesRow(t *testing.T) {
	repo := newMemRepo()
	repo.events["evt-1"] = storedEvent()
	repo.conns["org-1"] = []domain.Connection{conn(domain.PlatformFacebook, `{}`)}
	svc := newService(repo, &fakePublisher{platform: domain.PlatformFacebook})

	first, err := svc.PublishEverywhere(context.Background(), "evt-1", "org-1")
	require.NoError(t, err)
	second, err := svc.PublishEverywhere(context.Background(), "evt-1", "org-1")
	require.NoError(t, err)

	assert.Equal(t, first.Results[0].LogID, second.Results[0].LogID)
	assert.Equal(t, 1, repo.count())
}

func TestPublishEverywhere_EventFailureIsBestEffort(t *testing.T) {
	repo := newMemRepo()
	repo.events["evt-1"] = storedEvent()
	repo.conns["org-1"] = []domain.Connection{conn(domain.PlatformFacebook, `{}`)}
	events := &recordingEvents{err: errors.New("broker down")}
	svc := New(repo, NewRegistry(&fakePublisher{platform: domain.PlatformFacebook}), fakeClock{t: now}, WithEvents(events))

	sum, err := svc.PublishEverywhere(context.Background(), "evt-1", "org-1")
	require.NoError(t, err)
	assert.Equal(t, 1, sum.TotalSuccess)
}

func TestPublishEverywhere_RespectsParallelism(t *testing.T) {
	repo := newMemRepo()
	repo.events["evt-1"] = storedEvent()

	var mu sync.Mutex
	inFlight, peak := 0, 0
	slow := func(universal.Event) (Outcome, error) {
		mu.Lock()
		inFlight++
		if inFlight > peak {
			peak = inFlight
		}
		mu.Unlock()
		time.Sleep(20 * time.Millisecond)
		mu.Lock()
		inFlight--
		mu.Unlock()
		return Outcome{ID: "x"}, nil
	}

	var pubs []Publisher
	for _, p := range []domain.Platform{domain.PlatformFacebook, domain.PlatformEventbrite, domain.PlatformBandsintown} {
		pubs = append(pubs, &fakePublisher{platform: p, publish: slow})
	}
	repo.conns["org-1"] = []domain.Connection{
		conn(domain.PlatformFacebook, `{}`),
		conn(domain.PlatformEventbrite, `{}`),
		conn(domain.PlatformBandsintown, `{"artist_id":"a"}`),
	}

	svc := New(repo, NewRegistry(pubs...), fakeClock{t: now}, WithParallelism(1))
	sum, err := svc.PublishEverywhere(context.Background(), "evt-1", "org-1")
	require.NoError(t, err)
	assert.Equal(t, 3, sum.TotalSuccess)
	assert.Equal(t, 1, peak)
}

func TestPublishEverywhere_PlatformTimeout(t *testing.T) {
	repo := newMemRepo()
	repo.events["evt-1"] = storedEvent()
	repo.conns["org-1"] = []domain.Connection{conn(domain.PlatformFacebook, `{}`)}

	svc := New(repo, NewRegistry(&ctxPublisher{}), fakeClock{t: now}, WithPlatformTimeout(10*time.Millisecond))
	sum, err := svc.PublishEverywhere(context.Background(), "evt-1", "org-1")
	require.NoError(t, err)
	assert.Equal(t, 1, sum.TotalErrors)
	assert.Contains(t, sum.Results[0].Error, "deadline")
}

// ctxPublisher blocks until its context ends.
type ctxPublisher struct{ fakePublisher }

func (*ctxPublisher) Platform() domain.Platform { return domain.PlatformFacebook }
func (*ctxPublisher) Publish(ctx context.Context, ev universal.Event, conn domain.Connection) (Outcome, error) {
	<-ctx.Done()
	return Outcome{}, ctx.Err()
}

// --- UpdateEverywhere ---

func publishedRepo(t *testing.T, svc func(*memRepo) *Service) (*memRepo, *Service) {
	t.Helper()
	repo := newMemRepo()
	repo.events["evt-1"] = storedEvent()
	repo.conns["org-1"] = []domain.Connection{
		conn(domain.PlatformFacebook, `{}`),
		conn(domain.PlatformBandsintown, `{"artist_id":"a1"}`),
	}
	s := svc(repo)
	_, err := s.PublishEverywhere(context.Background(), "evt-1", "org-1")
	require.NoError(t, err)
	return repo, s
}

func TestUpdateEverywhere_UpdatesRowsInPlace(t *testing.T) {
	fb := &fakeUpdater{fakePublisher: fakePublisher{platform: domain.PlatformFacebook}}
	bit := &fakeUpdater{fakePublisher: fakePublisher{platform: domain.PlatformBandsintown}}
	repo, svc := publishedRepo(t, func(r *memRepo) *Service { return newService(r, fb, bit) })
	before, _ := repo.ListLogs(context.Background(), "evt-1")

	sum, err := svc.UpdateEverywhere(context.Background(), "evt-1", "org-1")
	require.NoError(t, err)
	assert.Equal(t, 2, repo.count())
	require.Len(t, sum.Results, 2)

	byPlatform := map[domain.Platform]domain.PublicationResult{}
	for _, r := range sum.Results {
		byPlatform[r.Platform] = r
	}
	assert.True(t, byPlatform[domain.PlatformFacebook].Success)
	assert.Equal(t, "facebook-1", byPlatform[domain.PlatformFacebook].PlatformEventID)
	assert.False(t, byPlatform[domain.PlatformBandsintown].Success)
	assert.Contains(t, byPlatform[domain.PlatformBandsintown].Error, "not supported")

	after, _ := repo.ListLogs(context.Background(), "evt-1")
	for i := range before {
		assert.Equal(t, before[i].ID, after[i].ID)
		assert.Equal(t, domain.OpUpdate, after[i].Metadata.Operation)
	}
}

func TestUpdateEverywhere_AllowList(t *testing.T) {
	fb := &fakeUpdater{fakePublisher: fakePublisher{platform: domain.PlatformFacebook}}
	bit := &fakeUpdater{fakePublisher: fakePublisher{platform: domain.PlatformBandsintown}}
	_, svc := publishedRepo(t, func(r *memRepo) *Service {
		return New(r, NewRegistry(fb, bit), fakeClock{t: now},
			WithUpdatePlatforms(domain.PlatformFacebook, domain.PlatformBandsintown))
	})

	sum, err := svc.UpdateEverywhere(context.Background(), "evt-1", "org-1")
	require.NoError(t, err)
	assert.Equal(t, 2, sum.TotalSuccess)
}

func TestUpdateEverywhere_NothingToUpdate(t *testing.T) {
	repo := newMemRepo()
	repo.events["evt-1"] = storedEvent()
	repo.conns["org-1"] = []domain.Connection{conn(domain.PlatformFacebook, `{}`)}
	svc := newService(repo, &fakeUpdater{fakePublisher: fakePublisher{platform: domain.PlatformFacebook}})

	_, err := svc.UpdateEverywhere(context.Background(), "evt-1", "org-1")
	assert.True(t, domain.HasCode(err, domain.CodeInvalidState))
	assert.Equal(t, 0, repo.count())
}

func TestUpdateEverywhere_MissingConnection(t *testing.T) {
	fb := &fakeUpdater{fakePublisher: fakePublisher{platform: domain.PlatformFacebook}}
	repo, svc := publishedRepo(t, func(r *memRepo) *Service { return newService(r, fb) })
	repo.conns["org-1"] = nil

	sum, err := svc.UpdateEverywhere(context.Background(), "evt-1", "org-1")
	require.NoError(t, err)
	require.Len(t, sum.Results, 1)
	assert.Contains(t, sum.Results[0].Error, "no facebook connection")
}

// --- Withdraw / List / Export ---

func TestWithdraw(t *testing.T) {
	fb := &fakePublisher{platform: domain.PlatformFacebook}
	repo, svc := publishedRepo(t, func(r *memRepo) *Service { return newService(r, fb) })

	res, err := svc.Withdraw(context.Background(), "evt-1", "org-1", domain.PlatformFacebook)
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, []string{"facebook-1"}, fb.deleted)

	logs, _ := repo.ListLogs(context.Background(), "evt-1")
	for _, l := range logs {
		if l.Platform == domain.PlatformFacebook {
			assert.Equal(t, domain.PublicationWithdrawn, l.Status)
		}
	}

	_, err = svc.Withdraw(context.Background(), "evt-1", "org-1", domain.PlatformFacebook)
	assert.True(t, domain.HasCode(err, domain.CodeInvalidState))
}

func TestWithdraw_RemoteFailures(t *testing.T) {
	t.Run("failed_delete_keeps_the_row_live", func(t *testing.T) {
		fb := &fakePublisher{platform: domain.PlatformFacebook}
		repo, svc := publishedRepo(t, func(r *memRepo) *Service { return newService(r, fb) })
		fb.del = func(string) error { return errors.New("Facebook API error (400): event already deleted") }

		res, err := svc.Withdraw(context.Background(), "evt-1", "org-1", domain.PlatformFacebook)
		require.NoError(t, err)
		assert.False(t, res.Success)
		assert.Contains(t, res.Error, "already deleted")

		ok, _ := repo.ListSuccessfulLogs(context.Background(), "evt-1")
		require.Len(t, ok, 1)
		assert.Equal(t, domain.PlatformFacebook, ok[0].Platform)
	})

	t.Run("platform_without_delete_is_unsupported", func(t *testing.T) {
		fb := &fakePublisher{platform: domain.PlatformFacebook}
		_, svc := publishedRepo(t, func(r *memRepo) *Service { return newService(r, fb) })
		fb.del = func(string) error { return domain.ErrUnsupported("manual removal required") }

		res, err := svc.Withdraw(context.Background(), "evt-1", "org-1", domain.PlatformFacebook)
		assert.Nil(t, res)
		assert.True(t, domain.HasCode(err, domain.CodeUnsupported))
	})
}

func TestWithdraw_AfterUnsupportedUpdate(t *testing.T) {
	fb := &fakeUpdater{fakePublisher: fakePublisher{platform: domain.PlatformFacebook}}
	bit := &fakeUpdater{fakePublisher: fakePublisher{platform: domain.PlatformBandsintown}}
	repo, svc := publishedRepo(t, func(r *memRepo) *Service { return newService(r, fb, bit) })

	sum, err := svc.UpdateEverywhere(context.Background(), "evt-1", "org-1")
	require.NoError(t, err)
	assert.Equal(t, 1, sum.TotalErrors)

	res, err := svc.Withdraw(context.Background(), "evt-1", "org-1", domain.PlatformBandsintown)
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, []string{"bandsintown-1"}, bit.deleted)

	logs, _ := repo.ListLogs(context.Background(), "evt-1")
	for _, l := range logs {
		if l.Platform == domain.PlatformBandsintown {
			assert.Equal(t, domain.PublicationWithdrawn, l.Status)
		}
	}
}

func TestPublishEverywhere_FailedRepublishKeepsRemoteID(t *testing.T) {
	fb := &fakeUpdater{fakePublisher: fakePublisher{platform: domain.PlatformFacebook}}
	repo, svc := publishedRepo(t, func(r *memRepo) *Service { return newService(r, fb) })

	fb.publish = func(universal.Event) (Outcome, error) {
		return Outcome{}, errors.New("Facebook API error (500): unknown error")
	}
	sum, err := svc.PublishEverywhere(context.Background(), "evt-1", "org-1")
	require.NoError(t, err)
	assert.Equal(t, 0, sum.TotalSuccess)

	logs, _ := repo.ListLogs(context.Background(), "evt-1")
	var row domain.PublicationLog
	for _, l := range logs {
		if l.Platform == domain.PlatformFacebook {
			row = l
		}
	}
	assert.Equal(t, domain.PublicationError, row.Status)
	assert.Equal(t, "facebook-1", row.PlatformEventID)
	assert.Equal(t, "https://example.com/facebook", row.PlatformEventURL)

	res, err := svc.Withdraw(context.Background(), "evt-1", "org-1", domain.PlatformFacebook)
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, []string{"facebook-1"}, fb.deleted)
}

func TestListPublications(t *testing.T) {
	fb := &fakePublisher{platform: domain.PlatformFacebook}
	_, svc := publishedRepo(t, func(r *memRepo) *Service { return newService(r, fb) })

	logs, err := svc.ListPublications(context.Background(), "evt-1", "org-1")
	require.NoError(t, err)
	assert.Len(t, logs, 2)

	_, err = svc.ListPublications(context.Background(), "evt-1", "org-2")
	assert.True(t, domain.HasCode(err, domain.CodeForbidden))
}

func TestExportResidentAdvisor(t *testing.T) {
	repo := newMemRepo()
	repo.events["evt-1"] = storedEvent()
	ra := &fakeExporter{fakePublisher: fakePublisher{platform: domain.PlatformResidentAdvisor}}
	svc := newService(repo, ra)

	out, err := svc.ExportResidentAdvisor(context.Background(), "evt-1", "org-1", "json")
	require.NoError(t, err)
	assert.Contains(t, string(out.Body), "Warehouse Session")

	_, err = svc.ExportResidentAdvisor(context.Background(), "evt-1", "org-1", "xml")
	assert.True(t, domain.HasCode(err, domain.CodeValidation))

	repo.events["evt-1"].Features = nil
	_, err = svc.ExportResidentAdvisor(context.Background(), "evt-1", "org-1", "json")
	assert.True(t, domain.HasCode(err, domain.CodeValidation))

	_, err = newService(repo).ExportResidentAdvisor(context.Background(), "evt-1", "org-1", "json")
	assert.True(t, domain.HasCode(err, domain.CodeUnsupported))
}
