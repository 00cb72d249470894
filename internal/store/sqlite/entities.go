package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"iter"

	"sdnscreen/internal/model"
	"sdnscreen/internal/store"
)

// ReplaceEntities deletes every stored entity and writes entities in one
// transaction.
func (c *Client) ReplaceEntities(ctx context.Context, entities iter.Seq2[model.Entity, error]) (int64, error) {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"programs", "aliases", "entities"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return 0, fmt.Errorf("clearing %s: %w", table, err)
		}
	}

	insertEntity, err := tx.PrepareContext(ctx, `
	INSERT INTO entities (entity_id, entity_type, primary_name, remarks, payload)
	VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("preparing entity insert: %w", err)
	}
	defer insertEntity.Close()

	insertAlias, err := tx.PrepareContext(ctx, `
	INSERT INTO aliases (entity_id, position, full_name, normalized_name, is_primary, type_id)
	VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("preparing alias insert: %w", err)
	}
	defer insertAlias.Close()

	insertProgram, err := tx.PrepareContext(ctx, `
	INSERT OR IGNORE INTO programs (entity_id, program) VALUES (?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("preparing program insert: %w", err)
	}
	defer insertProgram.Close()

	var written int64
	for e, err := range entities {
		if err != nil {
			return 0, fmt.Errorf("reading entities: %w", err)
		}
		e = e.Normalized()

		payload, err := store.EncodePayload(e)
		if err != nil {
			return 0, err
		}
		if _, err := insertEntity.ExecContext(ctx, e.EntityID, string(e.Type), e.PrimaryName(), e.Remarks, string(payload)); err != nil {
			return 0, fmt.Errorf("inserting entity %d: %w", e.EntityID, err)
		}
		for i, alias := range e.Names {
			if _, err := insertAlias.ExecContext(ctx, e.EntityID, i, alias.FullName, alias.NormalizedName, alias.IsPrimary, alias.TypeID); err != nil {
				return 0, fmt.Errorf("inserting alias %d of entity %d: %w", i, e.EntityID, err)
			}
		}
		for _, program := range e.Programs {
			if _, err := insertProgram.ExecContext(ctx, e.EntityID, program); err != nil {
				return 0, fmt.Errorf("inserting program of entity %d: %w", e.EntityID, err)
			}
		}
		written++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing entities: %w", err)
	}
	return written, nil
}

func (c *Client) GetEntity(ctx context.Context, id int64) (*model.Entity, error) {
	var payload string
	err := c.db.QueryRowContext(ctx, `SELECT payload FROM entities WHERE entity_id = ?`, id).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting entity: %w", err)
	}

	e, err := store.DecodePayload([]byte(payload))
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (c *Client) ListEntities(ctx context.Context, filter store.Filter) ([]model.Entity, error) {
	query := `
	SELECT payload
	FROM entities e
	WHERE (? = '' OR e.entity_type = ?)
	  AND (? = '' OR EXISTS (
		SELECT 1 FROM programs p WHERE p.entity_id = e.entity_id AND p.program = ?
	  ))
	ORDER BY e.entity_id
	`

	entityType := string(filter.Type)
	rows, err := c.db.QueryContext(ctx, query, entityType, entityType, filter.Program, filter.Program)
	if err != nil {
		return nil, fmt.Errorf("listing entities: %w", err)
	}
	defer rows.Close()

	entities := make([]model.Entity, 0)
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scanning entity: %w", err)
		}
		e, err := store.DecodePayload([]byte(payload))
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
	if err := c.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM entities`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting entities: %w", err)
	}
	return n, nil
}
