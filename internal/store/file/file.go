// Package file stores the corpus as a single JSON lines file. Reads load
// the whole file; writes replace it atomically.
package file

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"iter"
	"os"
	"slices"
	"sync"

	"sdnscreen/internal/corpus"
	"sdnscreen/internal/model"
	"sdnscreen/internal/store"
)

var _ store.Store = (*Client)(nil)

type Client struct {
	path string

	mu     sync.Mutex
	loaded []model.Entity
	byID   map[int64]int
}

func New(path string) (*Client, error) {
	if path == "" {
		return nil, fmt.Errorf("file store path is required")
	}
	return &Client{path: path}, nil
}

func (c *Client) Close(ctx context.Context) error {
	return nil
}

func (c *Client) EnsureSchema(ctx context.Context) error {
	return nil
}

func (c *Client) ReplaceEntities(ctx context.Context, entities iter.Seq2[model.Entity, error]) (int64, error) {
	var written int64
	err := corpus.WriteFile(c.path, func(w *corpus.Writer) error {
		for e, err := range entities {
			if err != nil {
				return fmt.Errorf("reading entities: %w", err)
			}
			if err := w.Emit(ctx, e); err != nil {
				return err
			}
			written++
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("replacing entities: %w", err)
	}

	c.mu.Lock()
	c.loaded, c.byID = nil, nil
	c.mu.Unlock()
	return written, nil
}

func (c *Client) load() ([]model.Entity, map[int64]int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.loaded != nil {
		return c.loaded, c.byID, nil
	}

	entities, err := corpus.Collect(corpus.ReadFile(c.path))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []model.Entity{}, map[int64]int{}, nil
		}
		return nil, nil, fmt.Errorf("loading corpus: %w", err)
	}
	if entities == nil {
		entities = []model.Entity{}
	}
	slices.SortStableFunc(entities, func(a, b model.Entity) int {
		return cmp.Compare(a.EntityID, b.EntityID)
	})

	byID := make(map[int64]int, len(entities))
	for i, e := range entities {
		byID[e.EntityID] = i
	}
	c.loaded, c.byID = entities, byID
	return entities, byID, nil
}

func (c *Client) GetEntity(ctx context.Context, id int64) (*model.Entity, error) {
	entities, byID, err := c.load()
	if err != nil {
		return nil, err
	}
	i, ok := byID[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	e := entities[i]
	return &e, nil
}

func (c *Client) ListEntities(ctx context.Context, filter store.Filter) ([]model.Entity, error) {
	entities, _, err := c.load()
	if err != nil {
		return nil, err
	}
	out := make([]model.Entity, 0, len(entities))
	for _, e := range entities {
		if filter.Match(e) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (c *Client) CountEntities(ctx context.Context) (int64, error) {
	entities, _, err := c.load()
	if err != nil {
		return 0, err
	}
	return int64(len(entities)), nil
}

// Exists reports whether the corpus file has been written.
func (c *Client) Exists() bool {
	_, err := os.Stat(c.path)
	return err == nil
}
