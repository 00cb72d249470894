package search

import (
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/agnivade/levenshtein"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sdnscreen/internal/model"
	"sdnscreen/internal/normalize"
)

func alias(name string, primary bool) model.Alias {
	norm, _ := normalize.Name(name)
	return model.Alias{FullName: name, NormalizedName: norm, IsPrimary: primary, TypeID: "1403"}
}

func entity(id int64, names ...model.Alias) model.Entity {
	return model.Entity{EntityID: id, Type: model.TypeEntity, Names: names}.Normalized()
}

func corpus() []model.Entity {
	return []model.Entity{
		entity(23665, alias("Caribbean Aero Holdings", true)),
		entity(36,
			alias("AERO-CARIBBEAN", false),
			alias("AEROCARIBBEAN AIRLINES", true),
		),
		entity(8255, alias("Ascent General Insurance Company", true)),
		entity(1200, alias("Smith Brothers", true)),
		entity(1300, alias("Company of Heroes", true)),
		entity(1400, alias("Hital Exchange", true), alias("Hital Exchange Center", false)),
	}
}

func ids(entities []model.Entity) []int64 {
	out := make([]int64, 0, len(entities))
	for _, e := range entities {
		out = append(out, e.EntityID)
	}
	return out
}

func TestSearch_AeroCaribbean(t *testing.T) {
	engine := New(corpus())

	got := ids(engine.Search("AEROCARIBBEAN", 2))
	assert.Contains(t, got, int64(36))

	got = ids(engine.Search("AERO-CARIBBEAN", 0))
	assert.Equal(t, []int64{36}, got)
}

func TestSearch_NormalizationBridgesAbbreviations(t *testing.T) {
	engine := New(corpus())

	raw := levenshtein.ComputeDistance("ASCENT GENERAL INSURANCE COMPANY", "ASCENT GENERAL INSURANCE CO")
	require.Greater(t, raw, 2)

	matches := engine.SearchWithOptions("Ascent General Insurance Co", Options{Threshold: 2})
	require.Len(t, matches, 1)
	assert.Equal(t, int64(8255), matches[0].Entity.EntityID)
	assert.Equal(t, 0, matches[0].Rank)
	assert.Equal(t, SignalExactNormalized, matches[0].Signal)
}

func TestSearch_OrderedByEntityID(t *testing.T) {
	engine := New([]model.Entity{
		entity(23665, alias("Global Trading", true)),
		entity(36, alias("Global Tradinx", true)),
		entity(8255, alias("Global Trading Corporation", true)),
	})

	matches := engine.SearchWithOptions("Global Trading", Options{Threshold: 1})
	got := make([]int64, 0, len(matches))
	for _, m := range matches {
		got = append(got, m.Entity.EntityID)
	}
	assert.Equal(t, []int64{36, 8255, 23665}, got)
	assert.Equal(t, 1, matches[0].Rank, "fuzzy match comes first despite its rank")
}

func TestSearch_ExactAliasAlwaysFound(t *testing.T) {
	engine := New(corpus())

	for _, e := range corpus() {
		for _, a := range e.Names {
			for _, threshold := range []int{0, 1, 2, 5} {
				for _, q := range []string{a.FullName, strings.ToLower(a.FullName), "  " + a.FullName + " "} {
					got := ids(engine.Search(q, threshold))
					assert.Contains(t, got, e.EntityID, "query %q threshold %d", q, threshold)
				}
			}
		}
	}
}

func TestSearch_MonotonicWidening(t *testing.T) {
	engine := New(corpus())

	for _, q := range []string{"AEROCARIBEAN", "Smith Brother", "Hital Exchang", "Ascent Genral Insurance", "Heroes"} {
		var previous []int64
		for threshold := 0; threshold <= 6; threshold++ {
			got := ids(engine.Search(q, threshold))
			for _, id := range previous {
				assert.Contains(t, got, id, "query %q threshold %d dropped %d", q, threshold, id)
			}
			previous = got
		}
	}
}

func TestSearch_FuzzyRank(t *testing.T) {
	engine := New(corpus())

	matches := engine.SearchWithOptions("Hital Exchnage", Options{Threshold: 2})
	require.Len(t, matches, 1)
	assert.Equal(t, int64(1400), matches[0].Entity.EntityID)
	assert.Equal(t, SignalFuzzy, matches[0].Signal)
	assert.Equal(t, levenshtein.ComputeDistance("HITAL EXCHANGE", "HITAL EXCHNAGE"), matches[0].Rank)
	assert.Equal(t, "Hital Exchange", matches[0].Alias.FullName)

	assert.Empty(t, engine.Search("Hital Exchnage", 1))
}

func TestSearch_DedupesByMinimumRank(t *testing.T) {
	engine := New([]model.Entity{
		entity(7, alias("Alpha Omegx", true), alias("Alpha Omega", false)),
	})

	matches := engine.SearchWithOptions("Alpha Omegz", Options{Threshold: 2})
	require.Len(t, matches, 1)
	assert.Equal(t, 1, matches[0].Rank)

	matches = engine.SearchWithOptions("Alpha Omega", Options{Threshold: 2})
	require.Len(t, matches, 1)
	assert.Equal(t, 0, matches[0].Rank)
	assert.Equal(t, "Alpha Omega", matches[0].Alias.FullName)
}

func TestSearch_WholeWordOnly(t *testing.T) {
	engine := New(corpus())

	assert.Empty(t, engine.Search("HITA", 0))
	assert.Equal(t, []int64{1400}, ids(engine.Search("hital", 0)))
	assert.Equal(t, []int64{1300, 8255}, ids(engine.Search("Company", 0)))
}

func TestSearch_EmptyQuery(t *testing.T) {
	engine := New(corpus())

	assert.Empty(t, engine.Search("", 2))
	assert.Empty(t, engine.Search("   ", 2))
}

func TestSearch_QueryWithoutNormalizedForm(t *testing.T) {
	engine := New([]model.Entity{
		entity(1, alias("Hyphen - Holdings", true)),
		entity(2, alias("XY", true)),
	})

	// "-" normalizes to "", leaving only the raw whole-word test.
	assert.Equal(t, []int64{1}, ids(engine.Search("-", 5)))
	assert.Empty(t, engine.Search("...", 5))
}

func TestSearch_RegexMetacharactersAreLiteral(t *testing.T) {
	engine := New([]model.Entity{
		entity(1, alias("A+B (Trading)", true)),
	})

	assert.NotPanics(t, func() {
		engine.Search("(((", 2)
		engine.Search("[a-z]*", 2)
	})
	assert.Equal(t, []int64{1}, ids(engine.Search("(Trading)", 0)))
}

func TestSearch_NegativeThreshold(t *testing.T) {
	engine := New(corpus())

	assert.Equal(t, ids(engine.Search("Smith Brothers", 0)), ids(engine.Search("Smith Brothers", -3)))
	assert.Empty(t, engine.Search("Hital Exchnage", -1))
}

func TestSearch_Limit(t *testing.T) {
	engine := New([]model.Entity{
		entity(50, alias("Delta Shipping", true)),
		entity(10, alias("Delta Shippinx", true)),
		entity(30, alias("Delta Shipping Lines", true)),
		entity(20, alias("Delta Shipxinx", true)),
	})

	matches := engine.SearchWithOptions("Delta Shipping", Options{Threshold: 2, Limit: 3})
	got := make([]int64, 0, len(matches))
	for _, m := range matches {
		got = append(got, m.Entity.EntityID)
	}
	assert.Equal(t, []int64{10, 30, 50}, got)

	all := engine.SearchWithOptions("Delta Shipping", Options{Threshold: 2})
	assert.Len(t, all, 4)
}

func TestSearch_ConcurrentReaders(t *testing.T) {
	engine := New(corpus())

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			q := fmt.Sprintf("AEROCARIBBEAN%s", strings.Repeat(" ", i))
			assert.Contains(t, ids(engine.Search(q, 2)), int64(36))
		}(i)
	}
	wg.Wait()
}

func TestNew_CopiesInput(t *testing.T) {
	entities := corpus()
	engine := New(entities)
	entities[0] = entity(99, alias("Replaced", true))

	assert.Empty(t, engine.Search("Replaced", 0))
	assert.Equal(t, len(corpus()), engine.Len())
}
