package store

import (
	"encoding/json"
	"fmt"
	"slices"

	"sdnscreen/internal/model"
)

// Filter narrows ListEntities. Zero values match everything.
type Filter struct {
	Type    model.EntityType
	Program string
}

func (f Filter) Match(e model.Entity) bool {
	if f.Type != "" && e.Type != f.Type {
		return false
	}
	if f.Program != "" && !slices.Contains(e.Programs, f.Program) {
		return false
	}
	return true
}

// BatchSize bounds the rows written per statement or transaction chunk.
const BatchSize = 500

// EncodePayload is the JSON document stored alongside the indexed columns.
func EncodePayload(e model.Entity) ([]byte, error) {
	payload, err := json.Marshal(e.Normalized())
	if err != nil {
		return nil, fmt.Errorf("marshaling entity %d: %w", e.EntityID, err)
	}
	return payload, nil
}

func DecodePayload(payload []byte) (model.Entity, error) {
	var e model.Entity
	if err := json.Unmarshal(payload, &e); err != nil {
		return model.Entity{}, fmt.Errorf("unmarshaling entity: %w", err)
	}
	return e.Normalized(), nil
}
