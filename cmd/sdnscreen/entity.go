package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"sdnscreen/internal/store"
)

func entityCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "entity <id>",
		Short: "Display one stored entity record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil || id <= 0 {
				return fmt.Errorf("invalid entity id %q", args[0])
			}
			return runEntity(cmd, id)
		},
	}
}

func runEntity(cmd *cobra.Command, id int64) error {
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

	entity, err := db.GetEntity(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		fmt.Fprintf(os.Stdout, "Entity %d not found.\n", id)
		return nil
	}
	if err != nil {
		return err
	}

	payload, err := json.MarshalIndent(entity.Normalized(), "", "  ")
	if err != nil {
		return fmt.Errorf("encoding entity: %w", err)
	}
	fmt.Fprintln(os.Stdout, string(payload))
	return nil
}
