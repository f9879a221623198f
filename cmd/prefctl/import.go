package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import a JSON backup produced by export",
	Long: `Import a JSON backup, committing every surviving entry in a
single transaction.

Examples:
  prefctl import backup.json
  prefctl import --private --app-state full-backup.json
  prefctl import --map settings.json`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	importCmd.Flags().Bool("private", false, "Allow importing private keys (overrides the config default)")
	importCmd.Flags().Bool("app-state", false, "Allow importing app-state keys (overrides the config default)")
	importCmd.Flags().Bool("map", false, "Parse the file as the free-form map[string]any format")
}

func runImport(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read %s: %w", args[0], err)
	}

	ds, err := openDatastore(loadedConfig)
	if err != nil {
		return fmt.Errorf("open datastore: %w", err)
	}
	defer ds.Close()

	importPrivate := loadedConfig.ExportPrivate
	if cmd.Flags().Changed("private") {
		importPrivate, _ = cmd.Flags().GetBool("private")
	}
	importAppState := loadedConfig.ExportAppState
	if cmd.Flags().Changed("app-state") {
		importAppState, _ = cmd.Flags().GetBool("app-state")
	}
	asMap, _ := cmd.Flags().GetBool("map")

	ctx := context.Background()
	if asMap {
		var m map[string]any
		if err := json.Unmarshal(data, &m); err != nil {
			return fmt.Errorf("parse %s: %w", args[0], err)
		}
		return ds.ImportMap(ctx, m, importPrivate, importAppState)
	}
	return ds.Import(ctx, data, importPrivate, importAppState)
}
