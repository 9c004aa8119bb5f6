package pgstore

import (
	"context"
	"fmt"
)

// Optional media fields are stored as '' or 0 and surface as nil.
var migrations = []string{
	`
      CREATE TABLE IF NOT EXISTS media_items (
          id          TEXT PRIMARY KEY,
          seq         BIGSERIAL,
          title       TEXT NOT NULL,
          url         TEXT NOT NULL,
          media_type  TEXT NOT NULL,
          category    TEXT NOT NULL,
          thumbnail   TEXT NOT NULL DEFAULT '',
          description TEXT NOT NULL DEFAULT '',
          duration    INT NOT NULL DEFAULT 0,
          quality     TEXT NOT NULL DEFAULT '',
          created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
      )
    `,
	`CREATE UNIQUE INDEX IF NOT EXISTS media_items_category_url_idx ON media_items (category, url)`,
	`CREATE INDEX IF NOT EXISTS media_items_seq_idx ON media_items (seq)`,
	`
      CREATE TABLE IF NOT EXISTS custom_lists (
          id          TEXT PRIMARY KEY,
          seq         BIGSERIAL,
          name        TEXT NOT NULL,
          description TEXT NOT NULL DEFAULT '',
          items       TEXT[] NOT NULL DEFAULT '{}',
          created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
          updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
      )
    `,
}

func AutoMigrate(ctx context.Context, db DB) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migrate catalog step %d: %w", i+1, err)
		}
	}
	return nil
}
