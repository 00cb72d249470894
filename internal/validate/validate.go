// Package validate reports data quality problems in a loaded corpus.
package validate

import (
	"context"
	"fmt"

	"sdnscreen/internal/model"
	"sdnscreen/internal/store"
)

type Severity string

const (
	SeverityError Severity = "error"
	SeverityWarn  Severity = "warning"
)

const (
	codeDuplicateID     = "duplicate_entity_id"
	codeNoNames         = "entity_without_names"
	codeMissingPrimary  = "missing_primary_alias"
	codeMultiplePrimary = "multiple_primary_aliases"
	codeEmptyNormalized = "alias_without_normalized_name"
	codeUnmappedCountry = "address_country_without_iso2"
	codeNoPrograms      = "entity_without_programs"
)

type Issue struct {
	Severity Severity
	Code     string
	Message  string
	EntityID int64
	Name     string
}

type Report struct {
	Issues []Issue
}

func (r *Report) Count(severity Severity) int {
	n := 0
	for _, issue := range r.Issues {
		if issue.Severity == severity {
			n++
		}
	}
	return n
}

type EntityLister interface {
	ListEntities(ctx context.Context, filter store.Filter) ([]model.Entity, error)
}

func Run(ctx context.Context, db EntityLister) (*Report, error) {
	if db == nil {
		return nil, fmt.Errorf("store is required")
	}
	entities, err := db.ListEntities(ctx, store.Filter{})
	if err != nil {
		return nil, fmt.Errorf("list entities: %w", err)
	}
	return Entities(entities), nil
}

// Entities checks records in the order given.
func Entities(entities []model.Entity) *Report {
	issues := make([]Issue, 0)
	seen := make(map[int64]struct{}, len(entities))

	for _, e := range entities {
		if _, dup := seen[e.EntityID]; dup {
			issues = append(issues, issueFor(e, SeverityError, codeDuplicateID, "entity id appears more than once"))
		}
		seen[e.EntityID] = struct{}{}

		issues = append(issues, validateNames(e)...)
		issues = append(issues, validateAddresses(e)...)

		if len(e.Programs) == 0 {
			issues = append(issues, issueFor(e, SeverityWarn, codeNoPrograms, "entity is not listed under any program"))
		}
	}

	return &Report{Issues: issues}
}

func validateNames(e model.Entity) []Issue {
	if len(e.Names) == 0 {
		return []Issue{issueFor(e, SeverityError, codeNoNames, "entity has no names and can never match a search")}
	}

	var issues []Issue
	primaries := 0
	for _, alias := range e.Names {
		if alias.IsPrimary {
			primaries++
		}
		if alias.NormalizedName == "" {
			issues = append(issues, issueFor(e, SeverityWarn, codeEmptyNormalized,
				fmt.Sprintf("alias %q has no normalized form", alias.FullName)))
		}
	}
	switch {
	case primaries == 0:
		issues = append(issues, issueFor(e, SeverityWarn, codeMissingPrimary, "no alias is marked primary"))
	case primaries > 1:
		issues = append(issues, issueFor(e, SeverityWarn, codeMultiplePrimary,
			fmt.Sprintf("%d aliases are marked primary", primaries)))
	}
	return issues
}

func validateAddresses(e model.Entity) []Issue {
	var issues []Issue
	for _, addr := range e.Addresses {
		if addr.Country != nil && addr.CountryISO2 == nil {
			issues = append(issues, issueFor(e, SeverityWarn, codeUnmappedCountry,
				fmt.Sprintf("no ISO2 code for country %q", *addr.Country)))
		}
	}
	return issues
}

func issueFor(e model.Entity, severity Severity, code, message string) Issue {
	return Issue{
		Severity: severity,
		Code:     code,
		Message:  message,
		EntityID: e.EntityID,
		Name:     e.PrimaryName(),
	}
}
