package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"sdnscreen/internal/store"
)

func queryCypherCmd() *cobra.Command {
	var paramPairs []string
	cmd := &cobra.Command{
		Use:   "cypher <query>",
		Short: "Execute a read-only Cypher query (neo4j store)",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.Join(args, " ")
			params, err := parseParams(paramPairs)
			if err != nil {
				return err
			}
			return runCypher(cmd, query, params)
		},
	}
	cmd.Flags().StringArrayVar(&paramPairs, "param", nil, "Query parameter as key=value (repeatable)")
	return cmd
}

func runCypher(cmd *cobra.Command, query string, params map[string]any) error {
	ctx := cmd.Context()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	db, err := openDB(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close(ctx)

	runner, ok := db.(store.CypherRunner)
	if !ok {
		return fmt.Errorf("store driver %s does not support Cypher", cfg.Store.Driver)
	}

	rows, err := runner.RunCypher(ctx, query, params)
	if err != nil {
		return err
	}
	return printRows(rows)
}
