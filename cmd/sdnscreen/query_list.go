package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"sdnscreen/internal/model"
	"sdnscreen/internal/store"
)

func queryListCmd() *cobra.Command {
	var entityType string
	var program string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List entities in the store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQueryList(cmd, entityType, program)
		},
	}
	cmd.Flags().StringVar(&entityType, "type", "", "Entity type to filter (Individual, Entity, Vessel, Aircraft, Unknown)")
	cmd.Flags().StringVar(&program, "program", "", "Program to filter")
	return cmd
}

func runQueryList(cmd *cobra.Command, entityType, program string) error {
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

	entities, err := db.ListEntities(ctx, store.Filter{Type: model.EntityType(entityType), Program: program})
	if err != nil {
		return err
	}
	if len(entities) == 0 {
		fmt.Fprintln(os.Stdout, "No entities found.")
		return nil
	}

	for _, entity := range entities {
		fmt.Fprintf(os.Stdout, "%d %s (%s) [%s]\n", entity.EntityID, entity.PrimaryName(), entity.Type, strings.Join(entity.Programs, ", "))
	}
	return nil
}
