package file

import (
	"context"
	"errors"
	"iter"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sdnscreen/internal/model"
	"sdnscreen/internal/store"
)

func seq(entities ...model.Entity) iter.Seq2[model.Entity, error] {
	return func(yield func(model.Entity, error) bool) {
		for _, e := range entities {
			if !yield(e, nil) {
				return
			}
		}
	}
}

func TestClient_ReplaceAndRead(t *testing.T) {
	ctx := context.Background()
	client, err := New(filepath.Join(t.TempDir(), "corpus.jsonl"))
	require.NoError(t, err)

	n, err := client.CountEntities(ctx)
	require.NoError(t, err)
	assert.Zero(t, n, "missing file is an empty corpus")

	written, err := client.ReplaceEntities(ctx, seq(
		model.Entity{EntityID: 36, Type: model.TypeEntity, Programs: []string{"CUBA"}},
		model.Entity{EntityID: 23665, Type: model.TypeIndividual, Programs: []string{"UKRAINE-EO13660"}},
	))
	require.NoError(t, err)
	assert.Equal(t, int64(2), written)
	assert.True(t, client.Exists())

	e, err := client.GetEntity(ctx, 23665)
	require.NoError(t, err)
	assert.Equal(t, model.TypeIndividual, e.Type)

	_, err = client.GetEntity(ctx, 404)
	assert.ErrorIs(t, err, store.ErrNotFound)

	listed, err := client.ListEntities(ctx, store.Filter{Program: "CUBA"})
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, int64(36), listed[0].EntityID)

	written, err = client.ReplaceEntities(ctx, seq(model.Entity{EntityID: 8255}))
	require.NoError(t, err)
	assert.Equal(t, int64(1), written)

	n, err = client.CountEntities(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n, "replace drops the previous corpus")
}

func TestClient_ReplaceFailureKeepsCorpus(t *testing.T) {
	ctx := context.Background()
	client, err := New(filepath.Join(t.TempDir(), "corpus.jsonl"))
	require.NoError(t, err)

	_, err = client.ReplaceEntities(ctx, seq(model.Entity{EntityID: 1}))
	require.NoError(t, err)

	broken := func(yield func(model.Entity, error) bool) {
		if !yield(model.Entity{EntityID: 2}, nil) {
			return
		}
		yield(model.Entity{}, errors.New("truncated input"))
	}
	_, err = client.ReplaceEntities(ctx, broken)
	require.Error(t, err)

	listed, err := client.ListEntities(ctx, store.Filter{})
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, int64(1), listed[0].EntityID)
}

func TestClient_ListOrderedByEntityID(t *testing.T) {
	ctx := context.Background()
	client, err := New(filepath.Join(t.TempDir(), "corpus.jsonl"))
	require.NoError(t, err)

	_, err = client.ReplaceEntities(ctx, seq(
		model.Entity{EntityID: 23665, Type: model.TypeIndividual},
		model.Entity{EntityID: 36, Type: model.TypeEntity},
		model.Entity{EntityID: 8255, Type: model.TypeEntity},
	))
	require.NoError(t, err)

	listed, err := client.ListEntities(ctx, store.Filter{})
	require.NoError(t, err)
	got := make([]int64, 0, len(listed))
	for _, e := range listed {
		got = append(got, e.EntityID)
	}
	assert.Equal(t, []int64{36, 8255, 23665}, got)

	e, err := client.GetEntity(ctx, 8255)
	require.NoError(t, err)
	assert.Equal(t, int64(8255), e.EntityID)
}

func TestNew_RequiresPath(t *testing.T) {
	_, err := New("")
	require.Error(t, err)
}
