package postgres

const getEventSQL = `
SELECT e.id, e.owner_id, COALESCE(e.organizer_name, ''),
       e.title, COALESCE(e.description, ''), COALESCE(e.short_description, ''),
       e.start_time, e.end_time, COALESCE(e.timezone, ''),
       COALESCE(e.category, ''), COALESCE(e.sub_category, ''),
       COALESCE(e.price, 0), COALESCE(e.currency, ''), e.is_free,
       COALESCE(e.ticket_url, ''), COALESCE(e.image_url, ''), COALESCE(e.age_restriction, ''),
       e.free_tags, COALESCE(e.source, ''), e.created_at, e.updated_at,
       v.name, v.address, v.city, v.postal_code, v.country, v.latitude, v.longitude
FROM events e
LEFT JOIN venues v ON v.id = e.venue_id
WHERE e.id = $1
`

const listEventTagsSQL = `
SELECT category, value
FROM event_tags
WHERE event_id = $1
ORDER BY position ASC, value ASC
`

const getEventFeaturesSQL = `
SELECT COALESCE(long_description, ''), lineup
FROM event_features
WHERE event_id = $1
`

const listConnectionsSQL = `
SELECT id, organizer_id, platform, access_token, metadata
FROM platform_connections
WHERE organizer_id = $1
ORDER BY created_at ASC, id ASC
`

const logColumns = `
id, event_id, organizer_id, platform, status,
platform_event_id, platform_event_url, error_message, metadata,
created_at, updated_at
`

const listLogsSQL = `SELECT ` + logColumns + `
FROM publication_logs
WHERE event_id = $1
ORDER BY platform ASC
`

const listSuccessfulLogsSQL = `SELECT ` + logColumns + `
FROM publication_logs
WHERE event_id = $1 AND status = 'success'
ORDER BY platform ASC
`

// upsertLogSQL keeps one row per (event, organizer, platform); a later attempt replaces it.
// A failed attempt keeps the remote id and url of the event that is already live.
const upsertLogSQL = `
INSERT INTO publication_logs (` + logColumns + `)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9::jsonb,$10,$11)
ON CONFLICT (event_id, organizer_id, platform) DO UPDATE SET
  status = EXCLUDED.status,
  platform_event_id = CASE WHEN EXCLUDED.status = 'success'
    THEN EXCLUDED.platform_event_id ELSE publication_logs.platform_event_id END,
  platform_event_url = CASE WHEN EXCLUDED.status = 'success'
    THEN EXCLUDED.platform_event_url ELSE publication_logs.platform_event_url END,
  error_message = EXCLUDED.error_message,
  metadata = EXCLUDED.metadata,
  updated_at = EXCLUDED.updated_at
RETURNING id, created_at
`

const updateLogSQL = `
UPDATE publication_logs SET
  status=$2, platform_event_id=$3, platform_event_url=$4,
  error_message=$5, metadata=$6::jsonb, updated_at=$7
WHERE id=$1
`

const createLogsTableSQL = `
CREATE TABLE IF NOT EXISTS publication_logs (
  id                 UUID PRIMARY KEY,
  event_id           TEXT NOT NULL,
  organizer_id       TEXT NOT NULL,
  platform           TEXT NOT NULL,
  status             TEXT NOT NULL CHECK (status IN ('success', 'error', 'withdrawn')),
  platform_event_id  TEXT NOT NULL DEFAULT '',
  platform_event_url TEXT NOT NULL DEFAULT '',
  error_message      TEXT NOT NULL DEFAULT '',
  metadata           JSONB NOT NULL DEFAULT '{}'::jsonb,
  created_at         TIMESTAMPTZ NOT NULL DEFAULT NOW(),
  updated_at         TIMESTAMPTZ NOT NULL DEFAULT NOW(),
  UNIQUE (event_id, organizer_id, platform)
)
`

const createLogsEventIndexSQL = `
CREATE INDEX IF NOT EXISTS idx_publication_logs_event_status
  ON publication_logs (event_id, status)
`
