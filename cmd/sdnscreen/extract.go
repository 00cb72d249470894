package main

import (
	"fmt"
	"os"
	"slices"
	"time"

	"github.com/spf13/cobra"

	"sdnscreen/internal/config"
	"sdnscreen/internal/corpus"
	"sdnscreen/internal/extract"
	"sdnscreen/internal/metrics"
	"sdnscreen/internal/model"
	"sdnscreen/internal/resolve"
	"sdnscreen/internal/sdnxml"
)

func extractCmd() *cobra.Command {
	var (
		source    string
		out       string
		countries string
	)
	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Flatten the SDN advanced XML into JSON lines entity records",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExtract(cmd, source, out, countries)
		},
	}
	cmd.Flags().StringVar(&source, "source", "", "Source XML file (defaults to source.path)")
	cmd.Flags().StringVar(&out, "out", "", "Output JSONL file (defaults to output.path)")
	cmd.Flags().StringVar(&countries, "countries", "", "Country name to ISO2 table (defaults to country_codes)")
	return cmd
}

func runExtract(cmd *cobra.Command, source, out, countries string) error {
	ctx := cmd.Context()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(cfg)
	m := metrics.New()

	if source == "" {
		source = cfg.Source.Path
	}
	if out == "" {
		out = cfg.Output.Path
	}
	if countries == "" {
		countries = cfg.CountryCodes
	}

	codes, err := config.LoadCountryCodes(countries)
	if err != nil {
		return err
	}

	src := sdnxml.FileSource(source)
	start := time.Now()

	tables, err := resolve.Build(ctx, src, resolve.Options{CountryCodes: codes, Logger: logger})
	if err != nil {
		m.StageDone("extract", time.Since(start), err)
		return err
	}

	var result *extract.Result
	err = corpus.WriteFile(out, func(w *corpus.Writer) error {
		var runErr error
		result, runErr = extract.Run(ctx, src, tables, w, logger)
		return runErr
	})
	m.StageDone("extract", time.Since(start), err)
	if err != nil {
		return err
	}
	m.ObserveExtract(result)
	if err := m.WriteTextfile(cfg.Metrics.Textfile); err != nil {
		return err
	}

	fmt.Fprintln(os.Stdout, "Extraction complete.")
	fmt.Fprintf(os.Stdout, "  Entities written:     %d\n", result.EntitiesEmitted)
	types := make([]model.EntityType, 0, len(result.ByType))
	for t := range result.ByType {
		types = append(types, t)
	}
	slices.Sort(types)
	for _, t := range types {
		fmt.Fprintf(os.Stdout, "    %-18s %d\n", string(t)+":", result.ByType[t])
	}
	fmt.Fprintf(os.Stdout, "  Parties skipped:      %d\n", result.PartiesSkipped)
	fmt.Fprintf(os.Stdout, "  Aliases dropped:      %d\n", result.AliasesDropped)
	fmt.Fprintf(os.Stdout, "  Unresolved locations: %d\n", result.LocationsUnresolved)
	fmt.Fprintf(os.Stdout, "  Output:               %s\n", out)
	return nil
}
