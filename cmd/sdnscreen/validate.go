package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"sdnscreen/internal/corpus"
	"sdnscreen/internal/validate"
)

func validateCmd() *cobra.Command {
	var input string
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Run data quality checks against the corpus",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd, input)
		},
	}
	cmd.Flags().StringVar(&input, "input", "", "Check a JSONL corpus instead of the store")
	return cmd
}

func runValidate(cmd *cobra.Command, input string) error {
	ctx := cmd.Context()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	var report *validate.Report
	if input != "" {
		entities, err := corpus.Collect(corpus.ReadFile(input))
		if err != nil {
			return err
		}
		report = validate.Entities(entities)
	} else {
		db, err := openDB(ctx, cfg)
		if err != nil {
			return err
		}
		defer db.Close(ctx)

		report, err = validate.Run(ctx, db)
		if err != nil {
			return err
		}
	}

	var errorIssues []validate.Issue
	var warnIssues []validate.Issue
	for _, issue := range report.Issues {
		switch issue.Severity {
		case validate.SeverityError:
			errorIssues = append(errorIssues, issue)
		case validate.SeverityWarn:
			warnIssues = append(warnIssues, issue)
		}
	}

	if len(errorIssues) == 0 && len(warnIssues) == 0 {
		fmt.Fprintln(os.Stdout, "No issues found.")
		return nil
	}

	if len(errorIssues) > 0 {
		fmt.Fprintf(os.Stdout, "Errors (%d):\n", len(errorIssues))
		printIssues(os.Stdout, errorIssues)
	}
	if len(warnIssues) > 0 {
		if len(errorIssues) > 0 {
			fmt.Fprintln(os.Stdout, "")
		}
		fmt.Fprintf(os.Stdout, "Warnings (%d):\n", len(warnIssues))
		printIssues(os.Stdout, warnIssues)
	}

	if len(errorIssues) > 0 {
		return fmt.Errorf("validation found errors")
	}
	return nil
}

func printIssues(out io.Writer, issues []validate.Issue) {
	for _, issue := range issues {
		location := fmt.Sprintf("%d", issue.EntityID)
		if issue.Name != "" {
			location = fmt.Sprintf("%d %s", issue.EntityID, issue.Name)
		}
		fmt.Fprintf(out, "  - %s: %s (%s)\n", location, issue.Message, issue.Code)
	}
}
