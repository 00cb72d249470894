package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"sdnscreen/internal/metrics"
	"sdnscreen/internal/search"
)

func searchCmd() *cobra.Command {
	var (
		threshold int
		limit     int
		input     string
		explain   bool
	)
	cmd := &cobra.Command{
		Use:   "search <term>",
		Short: "Screen a name against the sanctions list",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			term := strings.Join(args, " ")
			return runSearch(cmd, term, threshold, limit, input, explain)
		},
	}
	cmd.Flags().IntVar(&threshold, "threshold", 0, "Maximum allowed typo distance (defaults to search.threshold)")
	cmd.Flags().IntVar(&limit, "limit", 0, "Keep only the best N matches (defaults to search.limit)")
	cmd.Flags().StringVar(&input, "input", "", "Search a JSONL corpus instead of the store")
	cmd.Flags().BoolVar(&explain, "explain", false, "Print the matched alias, signal and rank instead of full records")
	return cmd
}

func runSearch(cmd *cobra.Command, term string, threshold, limit int, input string, explain bool) error {
	ctx := cmd.Context()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	opts := search.Options{Threshold: cfg.Threshold(), Limit: cfg.Search.Limit}
	if cmd.Flags().Changed("threshold") {
		opts.Threshold = threshold
	}
	if cmd.Flags().Changed("limit") {
		opts.Limit = limit
	}

	entities, err := loadEntities(ctx, cfg, input)
	if err != nil {
		return err
	}
	engine := search.New(entities)

	fmt.Fprintf(os.Stderr, "Searching for '%s' with threshold %d...\n", term, opts.Threshold)
	m := metrics.New()
	matches := screen(engine, term, opts, m)
	if err := m.WriteTextfile(cfg.Metrics.Textfile); err != nil {
		return err
	}
	if len(matches) == 0 {
		fmt.Fprintln(os.Stdout, "No matching entities found.")
		return nil
	}

	for _, m := range matches {
		if explain {
			fmt.Fprintf(os.Stdout, "%d %s [%s] rank=%d alias=%q\n", m.Entity.EntityID, m.Entity.PrimaryName(), m.Signal, m.Rank, m.Alias.FullName)
			continue
		}
		payload, err := json.MarshalIndent(m.Entity.Normalized(), "", "  ")
		if err != nil {
			return fmt.Errorf("encoding result: %w", err)
		}
		fmt.Fprintln(os.Stdout, string(payload))
	}
	return nil
}

func screen(engine *search.Engine, term string, opts search.Options, m *metrics.Metrics) []search.Match {
	start := time.Now()
	matches := engine.SearchWithOptions(term, opts)
	m.ObserveSearch(time.Since(start), len(matches))
	return matches
}
