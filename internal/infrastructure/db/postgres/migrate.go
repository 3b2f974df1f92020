package postgres

import (
	"context"
	"fmt"
)

// Migrate creates the tables this service owns. Event, venue, tag, feature and
// connection tables belong to other services and are only read.
func (r *Repo) Migrate(ctx context.Context) error {
	for _, stmt := range []string{createLogsTableSQL, createLogsEventIndexSQL} {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate publication_logs: %w", err)
		}
	}
	return nil
}
