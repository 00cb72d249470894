// Package extract turns DistinctParty records into flat entity records,
// joining each one against tables built by package resolve.
package extract

import (
	"context"
	"encoding/xml"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"sdnscreen/internal/model"
	"sdnscreen/internal/normalize"
	"sdnscreen/internal/resolve"
	"sdnscreen/internal/sdnxml"
)

// FeatureTypeLocation marks a profile feature that points at a Location.
const FeatureTypeLocation = "25"

var partySubTypes = map[string]model.EntityType{
	"1": model.TypeVessel,
	"2": model.TypeAircraft,
	"3": model.TypeEntity,
	"4": model.TypeIndividual,
}

// Emitter receives entities as they are built. Entities arrive in document
// order.
type Emitter interface {
	Emit(ctx context.Context, e model.Entity) error
}

// EmitterFunc adapts a plain function to Emitter.
type EmitterFunc func(ctx context.Context, e model.Entity) error

func (f EmitterFunc) Emit(ctx context.Context, e model.Entity) error {
	return f(ctx, e)
}

type Result struct {
	EntitiesEmitted     int
	PartiesSkipped      int
	AliasesDropped      int
	LocationsUnresolved int
	ByType              map[model.EntityType]int
}

// Run streams src once and emits one entity per party that has an integer
// FixedRef and a Profile. tables must come from a completed resolve.Build.
func Run(ctx context.Context, src sdnxml.Source, tables *resolve.Tables, out Emitter, logger *slog.Logger) (*Result, error) {
	if tables == nil {
		return nil, fmt.Errorf("extracting entities: reference tables are required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	result := &Result{ByType: make(map[model.EntityType]int)}

	err := sdnxml.Walk(ctx, src, "DistinctParty", func(d *xml.Decoder, start xml.StartElement) error {
		var party sdnxml.DistinctParty
		if err := d.DecodeElement(&party, &start); err != nil {
			return fmt.Errorf("decoding party: %w", err)
		}

		entity, ok := buildEntity(party, tables, result, logger)
		if !ok {
			result.PartiesSkipped++
			return nil
		}

		if err := out.Emit(ctx, entity); err != nil {
			return fmt.Errorf("emitting entity %d: %w", entity.EntityID, err)
		}
		result.EntitiesEmitted++
		result.ByType[entity.Type]++
		return nil
	})
	if err != nil {
		return result, fmt.Errorf("extracting entities: %w", err)
	}

	logger.Info("entities extracted",
		"emitted", result.EntitiesEmitted,
		"skipped", result.PartiesSkipped,
		"aliases_dropped", result.AliasesDropped,
		"locations_unresolved", result.LocationsUnresolved,
	)
	return result, nil
}

func buildEntity(party sdnxml.DistinctParty, tables *resolve.Tables, result *Result, logger *slog.Logger) (model.Entity, bool) {
	ref := strings.TrimSpace(party.FixedRef)
	if ref == "" || party.Profile == nil {
		logger.Debug("skipping party", "fixed_ref", ref, "has_profile", party.Profile != nil)
		return model.Entity{}, false
	}
	id, err := strconv.ParseInt(ref, 10, 64)
	if err != nil {
		logger.Debug("skipping party with non-numeric id", "fixed_ref", ref)
		return model.Entity{}, false
	}

	profile := party.Profile
	entity := model.Entity{
		EntityID:  id,
		Type:      EntityType(profile.PartySubTypeID),
		Names:     []model.Alias{},
		Programs:  tables.Programs(profile.ID),
		Addresses: []model.Address{},
	}

	if profile.Identity != nil {
		for _, alias := range profile.Identity.Aliases {
			built, ok := buildAlias(alias)
			if !ok {
				result.AliasesDropped++
				continue
			}
			entity.Names = append(entity.Names, built)
		}
	}

	for _, feature := range profile.Features {
		if feature.FeatureTypeID != FeatureTypeLocation {
			continue
		}
		locationID := feature.FirstLocationID()
		if locationID == "" {
			continue
		}
		addr, ok := tables.Location(locationID)
		if !ok {
			result.LocationsUnresolved++
			continue
		}
		entity.Addresses = append(entity.Addresses, addr)
	}

	if party.Comment != nil {
		if remarks := strings.TrimSpace(*party.Comment); remarks != "" {
			entity.Remarks = &remarks
		}
	}

	return entity, true
}

func buildAlias(alias sdnxml.Alias) (model.Alias, bool) {
	name, ok := alias.FirstName()
	if !ok {
		return model.Alias{}, false
	}

	parts := make([]string, 0, len(name.Parts))
	for _, part := range name.Parts {
		if text := part.Text(); text != "" {
			parts = append(parts, text)
		}
	}
	fullName := strings.Join(parts, " ")
	if fullName == "" {
		return model.Alias{}, false
	}

	normalized, _ := normalize.Name(fullName)
	return model.Alias{
		FullName:       fullName,
		NormalizedName: normalized,
		IsPrimary:      alias.Primary == "true",
		TypeID:         alias.AliasTypeID,
	}, true
}

// EntityType maps a PartySubTypeID to its entity type.
func EntityType(subTypeID string) model.EntityType {
	if t, ok := partySubTypes[strings.TrimSpace(subTypeID)]; ok {
		return t
	}
	return model.TypeUnknown
}
