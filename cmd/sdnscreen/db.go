package main

import (
	"context"
	"fmt"

	"sdnscreen/internal/config"
	"sdnscreen/internal/graph"
	"sdnscreen/internal/store"
	"sdnscreen/internal/store/file"
	"sdnscreen/internal/store/postgres"
	"sdnscreen/internal/store/sqlite"
)

func openDB(ctx context.Context, cfg *config.ProjectConfig) (store.Store, error) {
	switch cfg.Store.Driver {
	case "file":
		return file.New(cfg.Store.DSN)
	case "sqlite":
		return sqlite.New(ctx, cfg.Store.DSN)
	case "postgres":
		return postgres.New(ctx, cfg.Store.DSN)
	case "neo4j":
		return graph.NewClient(ctx, cfg.Neo4j.URI, cfg.Neo4j.Username, cfg.Neo4j.Password, cfg.Neo4j.Database)
	default:
		return nil, fmt.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
}
