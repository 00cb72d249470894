package mcp

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"sdnscreen/internal/model"
	"sdnscreen/internal/normalize"
	"sdnscreen/internal/search"
	"sdnscreen/internal/store"
)

type SearchEntitiesInput struct {
	Query     string `json:"query" jsonschema:"name to screen"`
	Threshold *int   `json:"threshold,omitempty" jsonschema:"largest accepted edit distance between normalized names"`
	Limit     int    `json:"limit,omitempty" jsonschema:"keep only the best N matches"`
}

type GetEntityInput struct {
	EntityID int64 `json:"entity_id" jsonschema:"entity id (FixedRef)"`
}

type ListEntitiesInput struct {
	Type    string `json:"type,omitempty" jsonschema:"Individual, Entity, Vessel, Aircraft or Unknown"`
	Program string `json:"program,omitempty" jsonschema:"sanctions program code"`
}

type NormalizeNameInput struct {
	Name string `json:"name" jsonschema:"name to normalize"`
}

type MatchOutput struct {
	EntityID     int64    `json:"entity_id"`
	Type         string   `json:"type"`
	PrimaryName  string   `json:"primary_name"`
	MatchedAlias string   `json:"matched_alias"`
	Signal       string   `json:"signal"`
	Rank         int      `json:"rank"`
	Programs     []string `json:"programs"`
}

type SearchEntitiesOutput struct {
	Matches []MatchOutput `json:"matches"`
}

type GetEntityOutput struct {
	Entity model.Entity `json:"entity"`
}

type EntitySummaryOutput struct {
	EntityID    int64    `json:"entity_id"`
	Type        string   `json:"type"`
	PrimaryName string   `json:"primary_name"`
	Programs    []string `json:"programs"`
}

type ListEntitiesOutput struct {
	Entities []EntitySummaryOutput `json:"entities"`
}

type NormalizeNameOutput struct {
	Normalized string `json:"normalized"`
	OK         bool   `json:"ok"`
}

func (s *Server) registerTools() {
	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "search_entities",
		Description: "Screen a name against the sanctions list; results are ordered by entity id",
	}, s.handleSearchEntities)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "get_entity",
		Description: "Retrieve one sanctioned entity with all names, programs and addresses",
	}, s.handleGetEntity)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "list_entities",
		Description: "List entities with optional type and program filters",
	}, s.handleListEntities)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "normalize_name",
		Description: "Show the normalized form used for fuzzy comparison",
	}, s.handleNormalizeName)
}

func (s *Server) handleSearchEntities(ctx context.Context, req *sdk.CallToolRequest, input SearchEntitiesInput) (*sdk.CallToolResult, SearchEntitiesOutput, error) {
	if strings.TrimSpace(input.Query) == "" {
		return nil, SearchEntitiesOutput{}, fmt.Errorf("query is required")
	}
	opts := search.Options{Threshold: s.options.Threshold, Limit: s.options.Limit}
	if input.Threshold != nil {
		opts.Threshold = *input.Threshold
	}
	if input.Limit > 0 {
		opts.Limit = input.Limit
	}

	start := time.Now()
	matches := s.engine.SearchWithOptions(input.Query, opts)
	s.options.Metrics.ObserveSearch(time.Since(start), len(matches))

	output := make([]MatchOutput, 0, len(matches))
	for _, m := range matches {
		output = append(output, MatchOutput{
			EntityID:     m.Entity.EntityID,
			Type:         string(m.Entity.Type),
			PrimaryName:  m.Entity.PrimaryName(),
			MatchedAlias: m.Alias.FullName,
			Signal:       string(m.Signal),
			Rank:         m.Rank,
			Programs:     m.Entity.Normalized().Programs,
		})
	}
	return nil, SearchEntitiesOutput{Matches: output}, nil
}

func (s *Server) handleGetEntity(ctx context.Context, req *sdk.CallToolRequest, input GetEntityInput) (*sdk.CallToolResult, GetEntityOutput, error) {
	if input.EntityID <= 0 {
		return nil, GetEntityOutput{}, fmt.Errorf("entity_id is required")
	}
	entity, err := s.db.GetEntity(ctx, input.EntityID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, GetEntityOutput{}, fmt.Errorf("entity %d not found", input.EntityID)
	}
	if err != nil {
		return nil, GetEntityOutput{}, err
	}
	return nil, GetEntityOutput{Entity: entity.Normalized()}, nil
}

func (s *Server) handleListEntities(ctx context.Context, req *sdk.CallToolRequest, input ListEntitiesInput) (*sdk.CallToolResult, ListEntitiesOutput, error) {
	items, err := s.db.ListEntities(ctx, store.Filter{Type: model.EntityType(input.Type), Program: input.Program})
	if err != nil {
		return nil, ListEntitiesOutput{}, err
	}

	output := make([]EntitySummaryOutput, 0, len(items))
	for _, item := range items {
		output = append(output, EntitySummaryOutput{
			EntityID:    item.EntityID,
			Type:        string(item.Type),
			PrimaryName: item.PrimaryName(),
			Programs:    item.Normalized().Programs,
		})
	}
	return nil, ListEntitiesOutput{Entities: output}, nil
}

func (s *Server) handleNormalizeName(ctx context.Context, req *sdk.CallToolRequest, input NormalizeNameInput) (*sdk.CallToolResult, NormalizeNameOutput, error) {
	normalized, ok := normalize.Name(input.Name)
	return nil, NormalizeNameOutput{Normalized: normalized, OK: ok}, nil
}
