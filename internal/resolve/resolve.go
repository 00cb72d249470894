// Package resolve builds the reference tables an entity record is joined
// against: countries, locations and the programs attached to each profile.
package resolve

import (
	"context"
	"encoding/xml"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"golang.org/x/sync/errgroup"

	"sdnscreen/internal/config"
	"sdnscreen/internal/model"
	"sdnscreen/internal/sdnxml"
)

// Location part type codes.
const (
	partAddress1   = "1451"
	partAddress2   = "1452"
	partAddress3   = "1453"
	partCity       = "1454"
	partState      = "1455"
	partPostalCode = "1456"
)

type Options struct {
	CountryCodes config.CountryCodes
	Logger       *slog.Logger
}

type Country struct {
	Name *string
	ISO2 string
}

// Tables holds the resolved reference data. It is only produced by Build and
// never changes afterwards.
type Tables struct {
	countries map[string]Country
	locations map[string]model.Address
	programs  map[string][]string
}

func (t *Tables) Country(id string) (Country, bool) {
	c, ok := t.countries[id]
	return c, ok
}

// Location returns a copy of the address for id.
func (t *Tables) Location(id string) (model.Address, bool) {
	addr, ok := t.locations[id]
	return addr, ok
}

// Programs returns the sorted program names for a profile, or an empty slice.
func (t *Tables) Programs(profileID string) []string {
	programs := t.programs[profileID]
	if len(programs) == 0 {
		return []string{}
	}
	return slices.Clone(programs)
}

func (t *Tables) CountryCount() int  { return len(t.countries) }
func (t *Tables) LocationCount() int { return len(t.locations) }
func (t *Tables) ProfileCount() int  { return len(t.programs) }

// Build streams src three times: countries then locations on one goroutine,
// sanctions entries on another. It returns only when every table is complete.
func Build(ctx context.Context, src sdnxml.Source, opts Options) (*Tables, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	var (
		countries map[string]Country
		locations map[string]model.Address
		programs  map[string][]string
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		countries, err = buildCountries(gctx, src, logger)
		if err != nil {
			return err
		}
		locations, err = buildLocations(gctx, src, countries, opts.CountryCodes, logger)
		return err
	})
	g.Go(func() error {
		var err error
		programs, err = buildPrograms(gctx, src, logger)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &Tables{countries: countries, locations: locations, programs: programs}, nil
}

func buildCountries(ctx context.Context, src sdnxml.Source, logger *slog.Logger) (map[string]Country, error) {
	countries := make(map[string]Country)
	skipped := 0

	err := sdnxml.Walk(ctx, src, "Country", func(d *xml.Decoder, start xml.StartElement) error {
		var el sdnxml.Country
		if err := d.DecodeElement(&el, &start); err != nil {
			return fmt.Errorf("decoding country: %w", err)
		}
		if el.ID == "" {
			skipped++
			return nil
		}
		c := Country{ISO2: strings.TrimSpace(el.ISO2)}
		if name := strings.TrimSpace(el.Text); name != "" {
			c.Name = &name
		}
		countries[el.ID] = c
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("building country table: %w", err)
	}

	logger.Debug("country table built", "countries", len(countries), "skipped", skipped)
	return countries, nil
}

func buildLocations(ctx context.Context, src sdnxml.Source, countries map[string]Country, codes config.CountryCodes, logger *slog.Logger) (map[string]model.Address, error) {
	locations := make(map[string]model.Address)
	skipped := 0
	unknownCountry := 0

	err := sdnxml.Walk(ctx, src, "Location", func(d *xml.Decoder, start xml.StartElement) error {
		var el sdnxml.Location
		if err := d.DecodeElement(&el, &start); err != nil {
			return fmt.Errorf("decoding location: %w", err)
		}
		if el.ID == "" {
			skipped++
			return nil
		}

		var addr model.Address
		var lines []string
		for _, part := range el.Parts {
			value := part.Text()
			if value == "" {
				continue
			}
			switch part.TypeID {
			case partAddress1, partAddress2, partAddress3:
				lines = append(lines, value)
			case partCity:
				addr.City = model.StringPtr(value)
			case partState:
				addr.State = model.StringPtr(value)
			case partPostalCode:
				addr.PostalCode = model.StringPtr(value)
			}
		}
		if len(lines) > 0 {
			addr.AddressLine = model.StringPtr(strings.Join(lines, ", "))
		}

		if el.Country != nil && el.Country.CountryID != "" {
			if c, ok := countries[el.Country.CountryID]; ok {
				addr.Country = c.Name
				addr.CountryISO2 = countryISO2(c, codes)
			} else {
				unknownCountry++
			}
		}

		locations[el.ID] = addr
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("building location table: %w", err)
	}

	logger.Debug("location table built", "locations", len(locations), "skipped", skipped, "unknown_country", unknownCountry)
	return locations, nil
}

func countryISO2(c Country, codes config.CountryCodes) *string {
	if c.ISO2 != "" {
		return model.StringPtr(c.ISO2)
	}
	if c.Name == nil {
		return nil
	}
	if code, ok := codes.Lookup(*c.Name); ok {
		return model.StringPtr(code)
	}
	return nil
}

func buildPrograms(ctx context.Context, src sdnxml.Source, logger *slog.Logger) (map[string][]string, error) {
	sets := make(map[string]map[string]struct{})
	entries := 0
	skipped := 0

	err := sdnxml.Walk(ctx, src, "SanctionsEntry", func(d *xml.Decoder, start xml.StartElement) error {
		entries++
		var el sdnxml.SanctionsEntry
		if err := d.DecodeElement(&el, &start); err != nil {
			return fmt.Errorf("decoding sanctions entry: %w", err)
		}
		if el.ProfileID == "" {
			skipped++
			return nil
		}

		set, ok := sets[el.ProfileID]
		if !ok {
			set = make(map[string]struct{})
			sets[el.ProfileID] = set
		}
		for _, measure := range el.Measures {
			if measure.Comment == nil {
				continue
			}
			if program := strings.TrimSpace(*measure.Comment); program != "" {
				set[program] = struct{}{}
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("building program table: %w", err)
	}

	if entries == 0 {
		logger.Warn("no SanctionsEntry elements found; entities will carry no programs")
	}

	programs := make(map[string][]string, len(sets))
	for profileID, set := range sets {
		names := make([]string, 0, len(set))
		for name := range set {
			names = append(names, name)
		}
		slices.Sort(names)
		programs[profileID] = names
	}

	logger.Debug("program table built", "profiles", len(programs), "entries", entries, "skipped", skipped)
	return programs, nil
}
