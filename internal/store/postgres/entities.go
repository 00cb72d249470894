package postgres

import (
	"context"
	"errors"
	"fmt"
	"iter"

	"github.com/jackc/pgx/v5"

	"sdnscreen/internal/model"
	"sdnscreen/internal/store"
)

type batch struct {
	entities [][]any
	aliases  [][]any
	programs [][]any
}

func (b *batch) add(e model.Entity) error {
	payload, err := store.EncodePayload(e)
	if err != nil {
		return err
	}
	b.entities = append(b.entities, []any{e.EntityID, string(e.Type), e.PrimaryName(), e.Remarks, payload})
	for i, alias := range e.Names {
		b.aliases = append(b.aliases, []any{e.EntityID, int32(i), alias.FullName, alias.NormalizedName, alias.IsPrimary, alias.TypeID})
	}
	seen := make(map[string]struct{}, len(e.Programs))
	for _, program := range e.Programs {
		if _, dup := seen[program]; dup {
			continue
		}
		seen[program] = struct{}{}
		b.programs = append(b.programs, []any{e.EntityID, program})
	}
	return nil
}

func (b *batch) flush(ctx context.Context, tx pgx.Tx) error {
	if len(b.entities) == 0 {
		return nil
	}
	copies := []struct {
		table   string
		columns []string
		rows    [][]any
	}{
		{"entities", []string{"entity_id", "entity_type", "primary_name", "remarks", "payload"}, b.entities},
		{"aliases", []string{"entity_id", "position", "full_name", "normalized_name", "is_primary", "type_id"}, b.aliases},
		{"programs", []string{"entity_id", "program"}, b.programs},
	}
	for _, cp := range copies {
		if len(cp.rows) == 0 {
			continue
		}
		if _, err := tx.CopyFrom(ctx, pgx.Identifier{cp.table}, cp.columns, pgx.CopyFromRows(cp.rows)); err != nil {
			return fmt.Errorf("copying %s: %w", cp.table, err)
		}
	}
	b.entities, b.aliases, b.programs = b.entities[:0], b.aliases[:0], b.programs[:0]
	return nil
}

// ReplaceEntities truncates the corpus tables and copies entities in batches,
// all inside one transaction.
func (c *Client) ReplaceEntities(ctx context.Context, entities iter.Seq2[model.Entity, error]) (int64, error) {
	tx, err := c.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `TRUNCATE programs, aliases, entities`); err != nil {
		return 0, fmt.Errorf("truncating entities: %w", err)
	}

	var (
		b       batch
		written int64
	)
	for e, err := range entities {
		if err != nil {
			return 0, fmt.Errorf("reading entities: %w", err)
		}
		if err := b.add(e.Normalized()); err != nil {
			return 0, err
		}
		written++
		if len(b.entities) >= store.BatchSize {
			if err := b.flush(ctx, tx); err != nil {
				return 0, err
			}
		}
	}
	if err := b.flush(ctx, tx); err != nil {
		return 0, err
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("committing entities: %w", err)
	}
	return written, nil
}

func (c *Client) GetEntity(ctx context.Context, id int64) (*model.Entity, error) {
	var payload []byte
	err := c.pool.QueryRow(ctx, `SELECT payload FROM entities WHERE entity_id = $1`, id).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting entity: %w", err)
	}

	e, err := store.DecodePayload(payload)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (c *Client) ListEntities(ctx context.Context, filter store.Filter) ([]model.Entity, error) {
	query := `
SELECT e.payload
FROM entities e
WHERE ($1::text = '' OR e.entity_type = $1)
  AND ($2::text = '' OR EXISTS (
      SELECT 1 FROM programs p WHERE p.entity_id = e.entity_id AND p.program = $2
  ))
ORDER BY e.entity_id
`

	rows, err := c.pool.Query(ctx, query, string(filter.Type), filter.Program)
	if err != nil {
		return nil, fmt.Errorf("listing entities: %w", err)
	}
	defer rows.Close()

	entities := make([]model.Entity, 0)
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scanning entity: %w", err)
		}
		e, err := store.DecodePayload(payload)
		if err != nil {
			return nil, err
		}
		entities = append(entities, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating entities: %w", err)
	}

	return entities, nil
}

func (c *Client) CountEntities(ctx context.Context) (int64, error) {
	var n int64
	if err := c.pool.QueryRow(ctx, `SELECT count(*) FROM entities`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting entities: %w", err)
	}
	return n, nil
}
