package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/baechuer/real-time-ressys/services/syndication-service/internal/domain"
)

type Repo struct {
	db *sql.DB
}

func New(db *sql.DB) *Repo { return &Repo{db: db} }

// GetEventForPublication loads the event with its venue, tags and feature overrides.
func (r *Repo) GetEventForPublication(ctx context.Context, id string) (*domain.Event, error) {
	var ev *domain.Event
	err := r.readTx(ctx, func(tx *sql.Tx) error {
		var err error
		if ev, err = scanEvent(tx.QueryRowContext(ctx, getEventSQL, id)); err != nil {
			return err
		}
		if ev.Tags, err = listTags(ctx, tx, id); err != nil {
			return err
		}
		ev.Features, err = getFeatures(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return ev, nil
}

func scanEvent(row *sql.Row) (*domain.Event, error) {
	var (
		e        domain.Event
		endTime  sql.NullTime
		freeTags pq.StringArray

		venueName, venueAddress, venueCity sql.NullString
		venuePostal, venueCountry          sql.NullString
		lat, lng                           sql.NullFloat64
	)
	err := row.Scan(
		&e.ID, &e.OrganizerID, &e.OrganizerName,
		&e.Title, &e.Description, &e.ShortDescription,
		&e.StartTime, &endTime, &e.Timezone,
		&e.Category, &e.SubCategory,
		&e.Price, &e.Currency, &e.IsFree,
		&e.TicketURL, &e.ImageURL, &e.AgeRestriction,
		&freeTags, &e.Source, &e.CreatedAt, &e.UpdatedAt,
		&venueName, &venueAddress, &venueCity, &venuePostal, &venueCountry, &lat, &lng,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound("event not found")
	}
	if err != nil {
		return nil, err
	}

	if endTime.Valid {
		t := endTime.Time
		e.EndTime = &t
	}
	e.FreeTags = []string(freeTags)

	if venueName.Valid {
		e.Venue = &domain.Venue{
			Name:       venueName.String,
			Address:    venueAddress.String,
			City:       venueCity.String,
			PostalCode: venuePostal.String,
			Country:    venueCountry.String,
		}
		if lat.Valid && lng.Valid {
			la, ln := lat.Float64, lng.Float64
			e.Venue.Latitude = &la
			e.Venue.Longitude = &ln
		}
	}
	return &e, nil
}

func listTags(ctx context.Context, tx *sql.Tx, eventID string) ([]domain.Tag, error) {
	rows, err := tx.QueryContext(ctx, listEventTagsSQL, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Tag
	for rows.Next() {
		var category, value string
		if err := rows.Scan(&category, &value); err != nil {
			return nil, err
		}
		out = append(out, domain.Tag{Category: domain.TagCategory(category), Value: value})
	}
	return out, rows.Err()
}

func getFeatures(ctx context.Context, tx *sql.Tx, eventID string) (*domain.Features, error) {
	var (
		f      domain.Features
		lineup pq.StringArray
	)
	err := tx.QueryRowContext(ctx, getEventFeaturesSQL, eventID).Scan(&f.LongDescription, &lineup)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	f.Lineup = []string(lineup)
	return &f, nil
}

// ListConnections returns every connection of the organizer. A row whose
// metadata cannot be decoded is still returned, carrying ConfigErr.
func (r *Repo) ListConnections(ctx context.Context, organizerID string) ([]domain.Connection, error) {
	rows, err := r.db.QueryContext(ctx, listConnectionsSQL, organizerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Connection
	for rows.Next() {
		var (
			id, orgID, platform string
			token               sql.NullString
			metadata            []byte
		)
		if err := rows.Scan(&id, &orgID, &platform, &token, &metadata); err != nil {
			return nil, err
		}
		out = append(out, domain.NewConnection(id, orgID, platform, token.String, metadata))
	}
	return out, rows.Err()
}

func (r *Repo) ListLogs(ctx context.Context, eventID string) ([]domain.PublicationLog, error) {
	return r.queryLogs(ctx, listLogsSQL, eventID)
}

func (r *Repo) ListSuccessfulLogs(ctx context.Context, eventID string) ([]domain.PublicationLog, error) {
	return r.queryLogs(ctx, listSuccessfulLogsSQL, eventID)
}

func (r *Repo) queryLogs(ctx context.Context, query, eventID string) ([]domain.PublicationLog, error) {
	rows, err := r.db.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.PublicationLog
	for rows.Next() {
		var (
			l                domain.PublicationLog
			platform, status string
			metadata         []byte
		)
		if err := rows.Scan(
			&l.ID, &l.EventID, &l.OrganizerID, &platform, &status,
			&l.PlatformEventID, &l.PlatformEventURL, &l.ErrorMessage, &metadata,
			&l.CreatedAt, &l.UpdatedAt,
		); err != nil {
			return nil, err
		}
		l.Platform = domain.Platform(platform)
		l.Status = domain.PublicationStatus(status)
		if !l.Status.Valid() {
			return nil, domain.ErrInvalidState("invalid publication status in db")
		}
		if len(metadata) > 0 {
			if err := json.Unmarshal(metadata, &l.Metadata); err != nil {
				return nil, fmt.Errorf("decode log metadata %s: %w", l.ID, err)
			}
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// UpsertLog writes the attempt for (event, organizer, platform), replacing any
// previous row for the same key. l.ID and l.CreatedAt are set from the stored row.
func (r *Repo) UpsertLog(ctx context.Context, l *domain.PublicationLog) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	metadata, err := json.Marshal(l.Metadata)
	if err != nil {
		return err
	}
	return r.db.QueryRowContext(ctx, upsertLogSQL,
		l.ID, l.EventID, l.OrganizerID, string(l.Platform), string(l.Status),
		l.PlatformEventID, l.PlatformEventURL, l.ErrorMessage, string(metadata),
		l.CreatedAt, l.UpdatedAt,
	).Scan(&l.ID, &l.CreatedAt)
}

// UpdateLog rewrites the row with id l.ID in place.
func (r *Repo) UpdateLog(ctx context.Context, l *domain.PublicationLog) error {
	metadata, err := json.Marshal(l.Metadata)
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, updateLogSQL,
		l.ID, string(l.Status), l.PlatformEventID, l.PlatformEventURL,
		l.ErrorMessage, string(metadata), l.UpdatedAt,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return domain.ErrNotFound("publication log not found")
	}
	return nil
}
