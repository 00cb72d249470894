package main

import (
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"sdnscreen/internal/mcp"
	"sdnscreen/internal/metrics"
	"sdnscreen/internal/search"
	"sdnscreen/internal/store"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
)

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server over stdio",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}
	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(cfg)
	m := metrics.New()

	db, err := openDB(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close(ctx)

	entities, err := db.ListEntities(ctx, store.Filter{})
	if err != nil {
		return err
	}
	engine := search.New(entities)
	logger.Info("search snapshot loaded", "entities", engine.Len(), "driver", cfg.Store.Driver)

	if cfg.Metrics.ListenAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", m.Handler())
		srv := &http.Server{Addr: cfg.Metrics.ListenAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("metrics listener stopped", "error", err)
			}
		}()
		defer srv.Close()
		logger.Info("serving metrics", "addr", cfg.Metrics.ListenAddr)
	}

	server := mcp.NewServer(engine, db, mcp.Options{
		Threshold: cfg.Threshold(),
		Limit:     cfg.Search.Limit,
		Metrics:   m,
	}, version)
	return server.Run(ctx, &sdk.StdioTransport{})
}
