package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export preferences as a JSON backup",
	Long: `Export every preference passing the configured classifier to
stdout (or --out) as the tagged-JSON backup format, or as a free-form
JSON object with --map.

Examples:
  prefctl export > backup.json
  prefctl export --private --app-state --out full-backup.json
  prefctl export --map`,
	RunE: runExport,
}

func init() {
	exportCmd.Flags().String("out", "", "Write to this file instead of stdout")
	exportCmd.Flags().Bool("private", false, "Include private keys (overrides the config default)")
	exportCmd.Flags().Bool("app-state", false, "Include app-state keys (overrides the config default)")
	exportCmd.Flags().Bool("map", false, "Use the free-form map[string]any format instead of tagged JSON")
}

func runExport(cmd *cobra.Command, args []string) error {
	ds, err := openDatastore(loadedConfig)
	if err != nil {
		return fmt.Errorf("open datastore: %w", err)
	}
	defer ds.Close()

	exportPrivate := loadedConfig.ExportPrivate
	if cmd.Flags().Changed("private") {
		exportPrivate, _ = cmd.Flags().GetBool("private")
	}
	exportAppState := loadedConfig.ExportAppState
	if cmd.Flags().Changed("app-state") {
		exportAppState, _ = cmd.Flags().GetBool("app-state")
	}
	asMap, _ := cmd.Flags().GetBool("map")

	var data []byte
	if asMap {
		data, err = json.MarshalIndent(ds.ExportMap(exportPrivate, exportAppState), "", "  ")
	} else {
		var raw []byte
		raw, err = ds.Export(exportPrivate, exportAppState)
		if err == nil {
			var buf map[string]any
			if jerr := json.Unmarshal(raw, &buf); jerr == nil {
				data, err = json.MarshalIndent(buf, "", "  ")
			} else {
				data = raw
			}
		}
	}
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}

	out, _ := cmd.Flags().GetString("out")
	if out == "" {
		fmt.Println(string(data))
		return nil
	}
	return os.WriteFile(out, data, 0o644)
}
