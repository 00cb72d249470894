package mcp

import (
	"context"
	"testing"

	"sdnscreen/internal/model"
	"sdnscreen/internal/search"
	"sdnscreen/internal/store"
)

type mockStore struct {
	entities []model.Entity

	lastGetID  int64
	lastFilter store.Filter
}

func (m *mockStore) GetEntity(ctx context.Context, id int64) (*model.Entity, error) {
	m.lastGetID = id
	for _, e := range m.entities {
		if e.EntityID == id {
			return &e, nil
		}
	}
	return nil, store.ErrNotFound
}

func (m *mockStore) ListEntities(ctx context.Context, filter store.Filter) ([]model.Entity, error) {
	m.lastFilter = filter
	var out []model.Entity
	for _, e := range m.entities {
		if filter.Match(e) {
			out = append(out, e)
		}
	}
	return out, nil
}

func testEntities() []model.Entity {
	return []model.Entity{
		{
			EntityID: 36,
			Type:     model.TypeEntity,
			Names: []model.Alias{
				{FullName: "AERO-CARIBBEAN", NormalizedName: "AEROCARIBBEAN"},
				{FullName: "AEROCARIBBEAN AIRLINES", NormalizedName: "AEROCARIBBEAN AIRLINES", IsPrimary: true},
			},
			Programs: []string{"CUBA"},
		},
		{
			EntityID: 8255,
			Type:     model.TypeEntity,
			Names: []model.Alias{
				{FullName: "Ascent General Insurance Company", NormalizedName: "ASCENT GENERAL INSURANCE CO", IsPrimary: true},
			},
			Programs: []string{"SDGT", "IRAN"},
		},
		{
			EntityID: 15001,
			Type:     model.TypeVessel,
			Names:    []model.Alias{{FullName: "SEA PTE SHIPPING", NormalizedName: "SEA PVT SHIPPING", IsPrimary: true}},
			Programs: []string{"CUBA"},
		},
	}
}

func newTestServer(db *mockStore) *Server {
	return NewServer(search.New(db.entities), db, Options{Threshold: 2}, "test")
}

func TestSearchEntities(t *testing.T) {
	server := newTestServer(&mockStore{entities: testEntities()})

	_, output, err := server.handleSearchEntities(context.Background(), nil, SearchEntitiesInput{Query: "AeroCaribbean"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(output.Matches) != 1 || output.Matches[0].EntityID != 36 {
		t.Fatalf("unexpected search output: %+v", output)
	}
	if output.Matches[0].PrimaryName != "AEROCARIBBEAN AIRLINES" || output.Matches[0].Rank != 0 {
		t.Fatalf("unexpected match: %+v", output.Matches[0])
	}
}

func TestSearchEntities_NormalizedQuery(t *testing.T) {
	server := newTestServer(&mockStore{entities: testEntities()})

	zero := 0
	_, output, err := server.handleSearchEntities(context.Background(), nil, SearchEntitiesInput{Query: "Ascent General Insurance Co.", Threshold: &zero})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(output.Matches) != 1 || output.Matches[0].EntityID != 8255 {
		t.Fatalf("unexpected search output: %+v", output)
	}
}

func TestSearchEntities_EmptyQuery(t *testing.T) {
	server := newTestServer(&mockStore{entities: testEntities()})

	if _, _, err := server.handleSearchEntities(context.Background(), nil, SearchEntitiesInput{Query: "  "}); err == nil {
		t.Fatalf("expected error")
	}
}

func TestSearchEntities_NoMatches(t *testing.T) {
	server := newTestServer(&mockStore{entities: testEntities()})

	_, output, err := server.handleSearchEntities(context.Background(), nil, SearchEntitiesInput{Query: "Nonexistent Holdings"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if output.Matches == nil || len(output.Matches) != 0 {
		t.Fatalf("expected empty, non-nil matches: %+v", output)
	}
}

func TestGetEntity(t *testing.T) {
	db := &mockStore{entities: testEntities()}
	server := newTestServer(db)

	_, output, err := server.handleGetEntity(context.Background(), nil, GetEntityInput{EntityID: 8255})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if output.Entity.EntityID != 8255 || db.lastGetID != 8255 {
		t.Fatalf("unexpected entity output: %+v", output)
	}
	if output.Entity.Addresses == nil {
		t.Fatalf("expected empty address list, got nil")
	}
}

func TestGetEntity_NotFound(t *testing.T) {
	server := newTestServer(&mockStore{})

	if _, _, err := server.handleGetEntity(context.Background(), nil, GetEntityInput{EntityID: 99}); err == nil {
		t.Fatalf("expected error")
	}
	if _, _, err := server.handleGetEntity(context.Background(), nil, GetEntityInput{}); err == nil {
		t.Fatalf("expected error for missing id")
	}
}

func TestListEntities(t *testing.T) {
	db := &mockStore{entities: testEntities()}
	server := newTestServer(db)

	_, output, err := server.handleListEntities(context.Background(), nil, ListEntitiesInput{Type: "Vessel", Program: "CUBA"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(output.Entities) != 1 || output.Entities[0].EntityID != 15001 {
		t.Fatalf("unexpected list output: %+v", output)
	}
	if db.lastFilter.Type != model.TypeVessel || db.lastFilter.Program != "CUBA" {
		t.Fatalf("unexpected list params: %+v", db.lastFilter)
	}
}

func TestNormalizeName(t *testing.T) {
	server := newTestServer(&mockStore{})

	_, output, err := server.handleNormalizeName(context.Background(), nil, NormalizeNameInput{Name: "Sea Pte. Limited"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !output.OK || output.Normalized != "SEA PVT LTD" {
		t.Fatalf("unexpected normalize output: %+v", output)
	}

	_, output, _ = server.handleNormalizeName(context.Background(), nil, NormalizeNameInput{})
	if output.OK {
		t.Fatalf("expected no normalized form for empty input")
	}
}
