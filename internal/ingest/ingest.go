// Package ingest loads a corpus of entity records into a store, replacing
// whatever the store held before.
package ingest

import (
	"context"
	"fmt"
	"iter"
	"log/slog"

	"sdnscreen/internal/model"
	"sdnscreen/internal/store"
)

type Result struct {
	EntitiesLoaded int64
	RecordsSkipped int
	Errors         []error
}

type Options struct {
	// DryRun checks records without writing them.
	DryRun bool
	Logger *slog.Logger
}

// Run writes records to db with a full replace. Records without a positive
// entity id and repeats of an id already seen are skipped and reported in
// Result.Errors; a read error from records aborts the load.
func Run(ctx context.Context, db store.Store, records iter.Seq2[model.Entity, error], options Options) (*Result, error) {
	logger := options.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	result := &Result{}
	checked := accept(records, result, logger)

	if options.DryRun {
		for _, err := range checked {
			if err != nil {
				return result, fmt.Errorf("reading records: %w", err)
			}
			result.EntitiesLoaded++
		}
		return result, nil
	}

	if err := db.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	n, err := db.ReplaceEntities(ctx, checked)
	if err != nil {
		return result, fmt.Errorf("replacing entities: %w", err)
	}
	result.EntitiesLoaded = n
	logger.Info("load complete", "entities", n, "skipped", result.RecordsSkipped)
	return result, nil
}

func accept(records iter.Seq2[model.Entity, error], result *Result, logger *slog.Logger) iter.Seq2[model.Entity, error] {
	return func(yield func(model.Entity, error) bool) {
		seen := make(map[int64]struct{})
		for e, err := range records {
			if err != nil {
				yield(model.Entity{}, err)
				return
			}
			if e.EntityID <= 0 {
				result.RecordsSkipped++
				result.Errors = append(result.Errors, fmt.Errorf("record with primary name %q has invalid entity id %d", e.PrimaryName(), e.EntityID))
				continue
			}
			if _, dup := seen[e.EntityID]; dup {
				result.RecordsSkipped++
				result.Errors = append(result.Errors, fmt.Errorf("duplicate entity id %d", e.EntityID))
				continue
			}
			seen[e.EntityID] = struct{}{}
			if len(e.Names) == 0 {
				logger.Debug("entity has no names", "entity_id", e.EntityID)
			}
			if !yield(e, nil) {
				return
			}
		}
	}
}
