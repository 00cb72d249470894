package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

func initCmd() *cobra.Command {
	var projectName string
	var driver string
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Scaffold a new sdnscreen project file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(projectName) == "" {
				return fmt.Errorf("--name is required")
			}
			return runInit(configPath, projectName, driver)
		},
	}
	cmd.Flags().StringVar(&projectName, "name", "", "Project name")
	cmd.Flags().StringVar(&driver, "driver", "file", "Store driver (file, sqlite, postgres, neo4j)")
	return cmd
}

func runInit(path, projectName, driver string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists", path)
	}

	var storeBlock string
	switch driver {
	case "file":
		storeBlock = "store:\n  driver: file\n  dsn: ./data/sdn_entities.jsonl\n"
	case "sqlite":
		storeBlock = "store:\n  driver: sqlite\n  dsn: sqlite://./data/sdn.db\n"
	case "postgres":
		storeBlock = "store:\n  driver: postgres\n  dsn: ${SDNSCREEN_POSTGRES_DSN}\n"
	case "neo4j":
		storeBlock = "store:\n  driver: neo4j\n\nneo4j:\n  uri: bolt://localhost:7687\n  username: neo4j\n  password: ${SDNSCREEN_NEO4J_PASSWORD}\n  database: neo4j\n"
	default:
		return fmt.Errorf("unsupported store driver: %s", driver)
	}

	contents := fmt.Sprintf(`project: %s
version: 1

source:
  url: https://sanctionslistservice.ofac.treas.gov/api/publicationpreview/exports/sdn_advanced.xml
  path: ./data/sdn_advanced.xml

output:
  path: ./data/sdn_entities.jsonl

%s
search:
  threshold: 2

logging:
  level: info
  format: text
`, projectName, storeBlock)

	if err := os.WriteFile(path, []byte(contents), 0o600); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
