package sqlite

import (
	"context"
	"fmt"
	"strings"
)

func (c *Client) EnsureSchema(ctx context.Context) error {
	ddl := `
	CREATE TABLE IF NOT EXISTS entities (
		entity_id    INTEGER PRIMARY KEY,
		entity_type  TEXT NOT NULL,
		primary_name TEXT NOT NULL DEFAULT '',
		remarks      TEXT,
		payload      TEXT NOT NULL,
		loaded_at    TEXT DEFAULT (datetime('now'))
	);

	CREATE TABLE IF NOT EXISTS aliases (
		entity_id       INTEGER NOT NULL REFERENCES entities(entity_id) ON DELETE CASCADE,
		position        INTEGER NOT NULL,
		full_name       TEXT NOT NULL,
		normalized_name TEXT NOT NULL,
		is_primary      INTEGER NOT NULL DEFAULT 0,
		type_id         TEXT NOT NULL DEFAULT '',
		PRIMARY KEY (entity_id, position)
	);

	CREATE TABLE IF NOT EXISTS programs (
		entity_id INTEGER NOT NULL REFERENCES entities(entity_id) ON DELETE CASCADE,
		program   TEXT NOT NULL,
		PRIMARY KEY (entity_id, program)
	);

	-- Lookups for ad-hoc SQL; matching itself happens in the application.
	CREATE INDEX IF NOT EXISTS idx_entities_type ON entities (entity_type);
	CREATE INDEX IF NOT EXISTS idx_aliases_normalized ON aliases (normalized_name);
	CREATE INDEX IF NOT EXISTS idx_programs_program ON programs (program);
	`

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	statements := splitStatements(ddl)
	for _, stmt := range statements {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("executing DDL: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing schema transaction: %w", err)
	}

	return nil
}

func splitStatements(ddl string) []string {
	var statements []string
	var current strings.Builder

	for _, line := range strings.Split(ddl, "\n") {
		stripped := strings.TrimSpace(line)
		if strings.HasPrefix(stripped, "--") {
			continue
		}
		current.WriteString(line)
		current.WriteString("\n")

		if strings.HasSuffix(stripped, ";") {
			statements = append(statements, current.String())
			current.Reset()
		}
	}

	if current.Len() > 0 {
		statements = append(statements, current.String())
	}

	return statements
}
