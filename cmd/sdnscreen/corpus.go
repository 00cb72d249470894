package main

import (
	"context"

	"sdnscreen/internal/config"
	"sdnscreen/internal/corpus"
	"sdnscreen/internal/model"
	"sdnscreen/internal/store"
)

// loadEntities reads the search snapshot from a JSONL file when input is set,
// otherwise from the configured store.
func loadEntities(ctx context.Context, cfg *config.ProjectConfig, input string) ([]model.Entity, error) {
	if input != "" {
		return corpus.Collect(corpus.ReadFile(input))
	}

	db, err := openDB(ctx, cfg)
	if err != nil {
		return nil, err
	}
	defer db.Close(ctx)

	return db.ListEntities(ctx, store.Filter{})
}
