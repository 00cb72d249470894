package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"sdnscreen/internal/normalize"
)

func normalizeCmd() *cobra.Command {
	var verbose bool
	cmd := &cobra.Command{
		Use:   "normalize <name>",
		Short: "Print the normalized form of a name",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runNormalize(strings.Join(args, " "), verbose)
		},
	}
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Show the text after each rule")
	return cmd
}

func runNormalize(name string, verbose bool) error {
	if verbose {
		text := strings.TrimSpace(strings.ToUpper(name))
		for _, rule := range normalize.Rules {
			next := rule.Pattern.ReplaceAllLiteralString(text, rule.Replacement)
			if next != text {
				fmt.Fprintf(os.Stdout, "%-18s %q\n", rule.Name, next)
			}
			text = next
		}
	}

	norm, ok := normalize.Name(name)
	if !ok {
		return fmt.Errorf("name is empty")
	}
	fmt.Fprintln(os.Stdout, norm)
	return nil
}
