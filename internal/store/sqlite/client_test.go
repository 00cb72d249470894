package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"iter"
	"path/filepath"
	"testing"

	"sdnscreen/internal/model"
	"sdnscreen/internal/store"
)

func testClient(t *testing.T) *Client {
	t.Helper()
	ctx := context.Background()
	client, err := New(ctx, "sqlite://:memory:")
	if err != nil {
		t.Fatalf("opening sqlite: %v", err)
	}
	t.Cleanup(func() { _ = client.Close(ctx) })
	if err := client.EnsureSchema(ctx); err != nil {
		t.Fatalf("ensure schema: %v", err)
	}
	return client
}

func entities(list ...model.Entity) iter.Seq2[model.Entity, error] {
	return func(yield func(model.Entity, error) bool) {
		for _, e := range list {
			if !yield(e, nil) {
				return
			}
		}
	}
}

func aeroCaribbean() model.Entity {
	return model.Entity{
		EntityID: 36,
		Type:     model.TypeEntity,
		Names: []model.Alias{
			{FullName: "AERO-CARIBBEAN", NormalizedName: "AEROCARIBBEAN", TypeID: "1400"},
			{FullName: "AEROCARIBBEAN AIRLINES", NormalizedName: "AEROCARIBBEAN AIRLINES", IsPrimary: true, TypeID: "1403"},
		},
		Programs: []string{"CUBA"},
		Addresses: []model.Address{
			{City: model.StringPtr("Havana"), Country: model.StringPtr("Cuba"), CountryISO2: model.StringPtr("CU")},
		},
	}
}

func TestEnsureSchema_Idempotent(t *testing.T) {
	client := testClient(t)
	if err := client.EnsureSchema(context.Background()); err != nil {
		t.Fatalf("second ensure schema: %v", err)
	}
}

func TestReplaceEntities_RoundTrip(t *testing.T) {
	ctx := context.Background()
	client := testClient(t)

	remarks := "Individual born 1970."
	individual := model.Entity{
		EntityID: 23665,
		Type:     model.TypeIndividual,
		Names:    []model.Alias{{FullName: "Ivan PETROV", NormalizedName: "IVAN PETROV", IsPrimary: true, TypeID: "1403"}},
		Programs: []string{"UKRAINE-EO13660"},
		Remarks:  &remarks,
	}

	n, err := client.ReplaceEntities(ctx, entities(aeroCaribbean(), individual))
	if err != nil {
		t.Fatalf("replace entities: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 written, got %d", n)
	}

	got, err := client.GetEntity(ctx, 36)
	if err != nil {
		t.Fatalf("get entity: %v", err)
	}
	if got.PrimaryName() != "AEROCARIBBEAN AIRLINES" {
		t.Fatalf("unexpected primary name %q", got.PrimaryName())
	}
	if len(got.Names) != 2 || got.Names[0].NormalizedName != "AEROCARIBBEAN" {
		t.Fatalf("unexpected names: %+v", got.Names)
	}
	if got.Remarks != nil {
		t.Fatalf("expected null remarks, got %q", *got.Remarks)
	}
	if model.Deref(got.Addresses[0].CountryISO2) != "CU" {
		t.Fatalf("unexpected address: %+v", got.Addresses[0])
	}
	if got.Addresses[0].AddressLine != nil {
		t.Fatalf("expected null address line")
	}

	got, err = client.GetEntity(ctx, 23665)
	if err != nil {
		t.Fatalf("get entity: %v", err)
	}
	if got.Remarks == nil || *got.Remarks != remarks {
		t.Fatalf("unexpected remarks: %v", got.Remarks)
	}
	if got.Addresses == nil {
		t.Fatalf("expected empty address list, got nil")
	}
}

func TestReplaceEntities_FullReplace(t *testing.T) {
	ctx := context.Background()
	client := testClient(t)

	if _, err := client.ReplaceEntities(ctx, entities(aeroCaribbean(), model.Entity{EntityID: 8255, Type: model.TypeEntity})); err != nil {
		t.Fatalf("first replace: %v", err)
	}
	if _, err := client.ReplaceEntities(ctx, entities(model.Entity{EntityID: 15001, Type: model.TypeVessel})); err != nil {
		t.Fatalf("second replace: %v", err)
	}

	count, err := client.CountEntities(ctx)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 entity after replace, got %d", count)
	}
	if _, err := client.GetEntity(ctx, 36); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	rows, err := client.RunSQL(ctx, "SELECT COUNT(*) AS n FROM aliases", nil)
	if err != nil {
		t.Fatalf("run sql: %v", err)
	}
	if rows[0]["n"] != int64(0) {
		t.Fatalf("expected aliases cleared, got %v", rows[0]["n"])
	}
}

func TestReplaceEntities_ErrorRollsBack(t *testing.T) {
	ctx := context.Background()
	client := testClient(t)

	if _, err := client.ReplaceEntities(ctx, entities(aeroCaribbean())); err != nil {
		t.Fatalf("seed: %v", err)
	}

	failing := func(yield func(model.Entity, error) bool) {
		if !yield(model.Entity{EntityID: 1}, nil) {
			return
		}
		yield(model.Entity{}, errors.New("corpus truncated"))
	}
	if _, err := client.ReplaceEntities(ctx, failing); err == nil {
		t.Fatalf("expected error")
	}

	if _, err := client.GetEntity(ctx, 36); err != nil {
		t.Fatalf("expected previous corpus to survive, got %v", err)
	}
	count, err := client.CountEntities(ctx)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 entity, got %d", count)
	}
}

func TestReplaceEntities_DuplicateID(t *testing.T) {
	ctx := context.Background()
	client := testClient(t)

	if _, err := client.ReplaceEntities(ctx, entities(aeroCaribbean(), aeroCaribbean())); err == nil {
		t.Fatalf("expected duplicate entity id to fail")
	}
}

func TestListEntities_Filter(t *testing.T) {
	ctx := context.Background()
	client := testClient(t)

	vessel := model.Entity{EntityID: 15001, Type: model.TypeVessel, Programs: []string{"CUBA", "SDGT"}}
	if _, err := client.ReplaceEntities(ctx, entities(vessel, aeroCaribbean())); err != nil {
		t.Fatalf("replace: %v", err)
	}

	tests := []struct {
		name   string
		filter store.Filter
		want   []int64
	}{
		{name: "all", filter: store.Filter{}, want: []int64{36, 15001}},
		{name: "by type", filter: store.Filter{Type: model.TypeVessel}, want: []int64{15001}},
		{name: "by program", filter: store.Filter{Program: "CUBA"}, want: []int64{36, 15001}},
		{name: "type and program", filter: store.Filter{Type: model.TypeEntity, Program: "SDGT"}, want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := client.ListEntities(ctx, tt.filter)
			if err != nil {
				t.Fatalf("list: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("expected %d entities, got %d", len(tt.want), len(got))
			}
			for i, id := range tt.want {
				if got[i].EntityID != id {
					t.Fatalf("position %d: expected %d, got %d", i, id, got[i].EntityID)
				}
			}
		})
	}
}

func TestRunSQL(t *testing.T) {
	ctx := context.Background()
	client := testClient(t)

	if _, err := client.ReplaceEntities(ctx, entities(aeroCaribbean())); err != nil {
		t.Fatalf("replace: %v", err)
	}

	rows, err := client.RunSQL(ctx, "SELECT full_name FROM aliases WHERE entity_id = ? AND is_primary = 1", map[string]any{"1": 36})
	if err != nil {
		t.Fatalf("run sql: %v", err)
	}
	if len(rows) != 1 || rows[0]["full_name"] != "AEROCARIBBEAN AIRLINES" {
		t.Fatalf("unexpected rows: %v", rows)
	}

	if _, err := client.RunSQL(ctx, "DELETE FROM entities", nil); !errors.Is(err, store.ErrWriteQuery) {
		t.Fatalf("expected write query rejection, got %v", err)
	}
}

func TestNew_PragmasOnEveryConnection(t *testing.T) {
	ctx := context.Background()
	client, err := New(ctx, "sqlite://"+filepath.Join(t.TempDir(), "sdn.db"))
	if err != nil {
		t.Fatalf("opening sqlite: %v", err)
	}
	t.Cleanup(func() { _ = client.Close(ctx) })

	// Hold the first connection so the pool has to open a second one.
	first, err := client.db.Conn(ctx)
	if err != nil {
		t.Fatalf("first conn: %v", err)
	}
	defer first.Close()
	second, err := client.db.Conn(ctx)
	if err != nil {
		t.Fatalf("second conn: %v", err)
	}
	defer second.Close()

	for i, conn := range []*sql.Conn{first, second} {
		var busy, fk int
		if err := conn.QueryRowContext(ctx, "PRAGMA busy_timeout").Scan(&busy); err != nil {
			t.Fatalf("conn %d busy_timeout: %v", i, err)
		}
		if err := conn.QueryRowContext(ctx, "PRAGMA foreign_keys").Scan(&fk); err != nil {
			t.Fatalf("conn %d foreign_keys: %v", i, err)
		}
		if busy != 30000 || fk != 1 {
			t.Fatalf("conn %d: busy_timeout=%d foreign_keys=%d", i, busy, fk)
		}
	}
}
