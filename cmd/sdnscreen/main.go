package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"sdnscreen/internal/config"
)

var configPath string

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

	root := &cobra.Command{
		Use:          "sdnscreen",
		Short:        "Extract, load and screen names against the OFAC SDN list",
		SilenceUsage: true,
	}
	root.Version = version
	root.SetVersionTemplate("{{.Version}}\n")
	root.PersistentFlags().StringVar(&configPath, "config", config.DefaultFileName, "Project config file")
	root.AddCommand(fetchCmd())
	root.AddCommand(extractCmd())
	root.AddCommand(loadCmd())
	root.AddCommand(searchCmd())
	root.AddCommand(entityCmd())
	root.AddCommand(normalizeCmd())
	root.AddCommand(validateCmd())
	root.AddCommand(queryCmd())
	root.AddCommand(serveCmd())
	root.AddCommand(initCmd())
	root.AddCommand(versionCmd())
	root.SetContext(ctx)

	err := root.Execute()
	stop()
	if err != nil {
		os.Exit(1)
	}
}
