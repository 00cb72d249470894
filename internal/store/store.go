package store

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"strings"

	"sdnscreen/internal/model"
)

var ErrNotFound = errors.New("entity not found")

// Store is dumb persistence for entity records. Writes replace the whole
// corpus; matching never happens inside a store.
type Store interface {
	Close(ctx context.Context) error
	EnsureSchema(ctx context.Context) error

	ReplaceEntities(ctx context.Context, entities iter.Seq2[model.Entity, error]) (int64, error)

	GetEntity(ctx context.Context, id int64) (*model.Entity, error)
	ListEntities(ctx context.Context, filter Filter) ([]model.Entity, error)
	CountEntities(ctx context.Context) (int64, error)
}

// SQLRunner is implemented by stores that accept raw SQL.
type SQLRunner interface {
	RunSQL(ctx context.Context, query string, params map[string]any) ([]map[string]any, error)
}

// CypherRunner is implemented by stores that accept raw Cypher.
type CypherRunner interface {
	RunCypher(ctx context.Context, query string, params map[string]any) ([]map[string]any, error)
}

var ErrWriteQuery = errors.New("only read-only queries are allowed")

// CheckReadOnly rejects statements that do not start with SELECT, WITH,
// EXPLAIN, MATCH or RETURN. The corpus is only ever written by a full
// replace.
func CheckReadOnly(query string) error {
	fields := strings.Fields(query)
	if len(fields) == 0 {
		return fmt.Errorf("empty query")
	}
	switch strings.ToUpper(fields[0]) {
	case "SELECT", "WITH", "EXPLAIN", "MATCH", "RETURN":
	default:
		return fmt.Errorf("%w: %s", ErrWriteQuery, fields[0])
	}
	for _, keyword := range []string{"CREATE", "MERGE", "DELETE", "DETACH", "SET", "REMOVE", "INSERT", "UPDATE", "DROP"} {
		for _, f := range fields {
			if strings.EqualFold(f, keyword) {
				return fmt.Errorf("%w: %s", ErrWriteQuery, keyword)
			}
		}
	}
	return nil
}
