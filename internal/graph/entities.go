package graph

import (
	"context"
	"fmt"
	"iter"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"sdnscreen/internal/model"
	"sdnscreen/internal/store"
)

const (
	createEntitiesQuery = `
UNWIND $rows AS row
CREATE (:SanctionedEntity {
    entity_id: row.entity_id,
    type: row.type,
    primary_name: row.primary_name,
    remarks: row.remarks,
    payload: row.payload
})`

	createAliasesQuery = `
UNWIND $rows AS row
MATCH (e:SanctionedEntity {entity_id: row.entity_id})
UNWIND row.aliases AS alias
CREATE (e)-[:HAS_ALIAS {position: alias.position}]->(:Alias {
    full_name: alias.full_name,
    normalized_name: alias.normalized_name,
    is_primary: alias.is_primary,
    type_id: alias.type_id
})`

	linkProgramsQuery = `
UNWIND $rows AS row
MATCH (e:SanctionedEntity {entity_id: row.entity_id})
UNWIND row.programs AS program
MERGE (p:Program {name: program})
MERGE (e)-[:LISTED_UNDER]->(p)`
)

func entityRow(e model.Entity) (map[string]any, error) {
	payload, err := store.EncodePayload(e)
	if err != nil {
		return nil, err
	}

	aliases := make([]any, 0, len(e.Names))
	for i, alias := range e.Names {
		aliases = append(aliases, map[string]any{
			"position":        int64(i),
			"full_name":       alias.FullName,
			"normalized_name": alias.NormalizedName,
			"is_primary":      alias.IsPrimary,
			"type_id":         alias.TypeID,
		})
	}
	programs := make([]any, 0, len(e.Programs))
	for _, program := range e.Programs {
		programs = append(programs, program)
	}

	var remarks any
	if e.Remarks != nil {
		remarks = *e.Remarks
	}

	return map[string]any{
		"entity_id":    e.EntityID,
		"type":         string(e.Type),
		"primary_name": e.PrimaryName(),
		"remarks":      remarks,
		"payload":      string(payload),
		"aliases":      aliases,
		"programs":     programs,
	}, nil
}

// ReplaceEntities removes every corpus node and writes entities in batches.
// Each batch is its own transaction, so a failed load leaves a partial graph;
// rerunning the load replaces it.
func (c *Client) ReplaceEntities(ctx context.Context, entities iter.Seq2[model.Entity, error]) (int64, error) {
	session := c.session(ctx)
	defer session.Close(ctx)

	if _, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		_, err := tx.Run(ctx, `
MATCH (n)
WHERE n:SanctionedEntity OR n:Alias OR n:Program
DETACH DELETE n`, nil)
		return nil, err
	}); err != nil {
		return 0, fmt.Errorf("clearing corpus: %w", err)
	}

	write := func(rows []any) error {
		params := map[string]any{"rows": rows}
		_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
			for _, query := range []string{createEntitiesQuery, createAliasesQuery, linkProgramsQuery} {
				if _, err := tx.Run(ctx, query, params); err != nil {
					return nil, err
				}
			}
			return nil, nil
		})
		return err
	}

	var (
		rows    []any
		written int64
	)
	for e, err := range entities {
		if err != nil {
			return written, fmt.Errorf("reading entities: %w", err)
		}
		row, err := entityRow(e.Normalized())
		if err != nil {
			return written, err
		}
		rows = append(rows, row)
		if len(rows) >= store.BatchSize {
			if err := write(rows); err != nil {
				return written, fmt.Errorf("writing entities: %w", err)
			}
			written += int64(len(rows))
			rows = rows[:0]
		}
	}
	if len(rows) > 0 {
		if err := write(rows); err != nil {
			return written, fmt.Errorf("writing entities: %w", err)
		}
		written += int64(len(rows))
	}

	return written, nil
}

func (c *Client) GetEntity(ctx context.Context, id int64) (*model.Entity, error) {
	payloads, err := c.readPayloads(ctx, `
MATCH (e:SanctionedEntity {entity_id: $id})
RETURN e.payload AS payload`, map[string]any{"id": id})
	if err != nil {
		return nil, fmt.Errorf("getting entity: %w", err)
	}
	if len(payloads) == 0 {
		return nil, store.ErrNotFound
	}

	e, err := store.DecodePayload([]byte(payloads[0]))
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (c *Client) ListEntities(ctx context.Context, filter store.Filter) ([]model.Entity, error) {
	payloads, err := c.readPayloads(ctx, `
MATCH (e:SanctionedEntity)
WHERE ($type = '' OR e.type = $type)
  AND ($program = '' OR EXISTS { MATCH (e)-[:LISTED_UNDER]->(:Program {name: $program}) })
RETURN e.payload AS payload
ORDER BY e.entity_id`, map[string]any{
		"type":    string(filter.Type),
		"program": filter.Program,
	})
	if err != nil {
		return nil, fmt.Errorf("listing entities: %w", err)
	}

	entities := make([]model.Entity, 0, len(payloads))
	for _, payload := range payloads {
		e, err := store.DecodePayload([]byte(payload))
		if err != nil {
			return nil, err
		}
		entities = append(entities, e)
	}
	return entities, nil
}

func (c *Client) CountEntities(ctx context.Context) (int64, error) {
	session := c.session(ctx)
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, `MATCH (e:SanctionedEntity) RETURN count(e) AS n`, nil)
		if err != nil {
			return nil, err
		}
		record, err := res.Single(ctx)
		if err != nil {
			return nil, err
		}
		n, _, err := neo4j.GetRecordValue[int64](record, "n")
		return n, err
	})
	if err != nil {
		return 0, fmt.Errorf("counting entities: %w", err)
	}
	return result.(int64), nil
}

func (c *Client) readPayloads(ctx context.Context, query string, params map[string]any) ([]string, error) {
	session := c.session(ctx)
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, query, params)
		if err != nil {
			return nil, err
		}
		payloads := make([]string, 0)
		for res.Next(ctx) {
			payload, _, err := neo4j.GetRecordValue[string](res.Record(), "payload")
			if err != nil {
				return nil, err
			}
			payloads = append(payloads, payload)
		}
		if err := res.Err(); err != nil {
			return nil, err
		}
		return payloads, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]string), nil
}
