package mcp

import (
	"context"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"sdnscreen/internal/metrics"
	"sdnscreen/internal/model"
	"sdnscreen/internal/search"
	"sdnscreen/internal/store"
)

// EntityReader is the read side of store.Store.
type EntityReader interface {
	GetEntity(ctx context.Context, id int64) (*model.Entity, error)
	ListEntities(ctx context.Context, filter store.Filter) ([]model.Entity, error)
}

type Options struct {
	Threshold int
	Limit     int
	Metrics   *metrics.Metrics
}

type Server struct {
	engine  *search.Engine
	db      EntityReader
	options Options
	mcp     *sdk.Server
}

// NewServer serves searches from engine and record lookups from db.
func NewServer(engine *search.Engine, db EntityReader, options Options, version string) *Server {
	s := &Server{
		engine:  engine,
		db:      db,
		options: options,
		mcp: sdk.NewServer(&sdk.Implementation{
			Name:    "sdnscreen",
			Version: version,
		}, nil),
	}
	s.registerTools()
	return s
}

func (s *Server) Run(ctx context.Context, transport sdk.Transport) error {
	return s.mcp.Run(ctx, transport)
}
