package publish

import (
	"context"
	"time"

	"github.com/baechuer/real-time-ressys/services/syndication-service/internal/application/universal"
	"github.com/baechuer/real-time-ressys/services/syndication-service/internal/domain"
)

type Clock interface {
	Now() time.Time
}

// Repo is the record store the orchestrator reads from and writes its log to.
type Repo interface {
	// GetEventForPublication loads the event with venue, tags and feature overrides.
	GetEventForPublication(ctx context.Context, id string) (*domain.Event, error)
	ListConnections(ctx context.Context, organizerID string) ([]domain.Connection, error)

	ListLogs(ctx context.Context, eventID string) ([]domain.PublicationLog, error)
	ListSuccessfulLogs(ctx context.Context, eventID string) ([]domain.PublicationLog, error)

	// UpsertLog creates the row for (event, organizer, platform) or replaces the existing one.
	// l.ID is set to the row id.
	UpsertLog(ctx context.Context, l *domain.PublicationLog) error
	// UpdateLog rewrites the row with id l.ID.
	UpdateLog(ctx context.Context, l *domain.PublicationLog) error
}

// Outcome is what a platform reports back after a create or update.
type Outcome struct {
	ID       string
	URL      string
	Warnings []string
}

// Publisher creates and removes an event on one platform.
type Publisher interface {
	Platform() domain.Platform
	Publish(ctx context.Context, ev universal.Event, conn domain.Connection) (Outcome, error)
	Delete(ctx context.Context, remoteID string, conn domain.Connection) error
}

// Updater is implemented by publishers that can change an existing remote event.
type Updater interface {
	Update(ctx context.Context, remoteID string, ev universal.Event, conn domain.Connection) (Outcome, error)
}

// EventPublisher emits domain events (RabbitMQ in production).
type EventPublisher interface {
	PublishEvent(ctx context.Context, routingKey, messageID string, body []byte) error
}

// Exporter is implemented by publishers that render a file for manual upload.
type Exporter interface {
	Export(ev universal.Event, format string) (Export, error)
}

type Export struct {
	ContentType string
	Filename    string
	Body        []byte
	Warnings    []string
}
