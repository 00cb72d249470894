package postgres

import (
	"context"
	"fmt"
)

func (c *Client) EnsureSchema(ctx context.Context) error {
	// All statements run in one implicit transaction.
	ddl := `
CREATE TABLE IF NOT EXISTS entities (
    entity_id    BIGINT PRIMARY KEY,
    entity_type  TEXT NOT NULL,
    primary_name TEXT NOT NULL DEFAULT '',
    remarks      TEXT,
    payload      JSONB NOT NULL,
    loaded_at    TIMESTAMPTZ DEFAULT now()
);

CREATE TABLE IF NOT EXISTS aliases (
    entity_id       BIGINT NOT NULL REFERENCES entities(entity_id) ON DELETE CASCADE,
    position        INTEGER NOT NULL,
    full_name       TEXT NOT NULL,
    normalized_name TEXT NOT NULL,
    is_primary      BOOLEAN NOT NULL DEFAULT FALSE,
    type_id         TEXT NOT NULL DEFAULT '',
    PRIMARY KEY (entity_id, position)
);

CREATE TABLE IF NOT EXISTS programs (
    entity_id BIGINT NOT NULL REFERENCES entities(entity_id) ON DELETE CASCADE,
    program   TEXT NOT NULL,
    PRIMARY KEY (entity_id, program)
);

CREATE INDEX IF NOT EXISTS idx_entities_type ON entities (entity_type);
CREATE INDEX IF NOT EXISTS idx_aliases_normalized ON aliases (normalized_name);
CREATE INDEX IF NOT EXISTS idx_programs_program ON programs (program);
`

	if _, err := c.pool.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("ensuring schema: %w", err)
	}
	return nil
}
