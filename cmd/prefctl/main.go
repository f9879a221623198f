package main

import (
	"fmt"
	"os"

	"github.com/cuemby/prefstore/pkg/log"
	"github.com/spf13/cobra"
)

var (
	// Version information (set via ldflags during build)
	Version = "dev"
	Commit  = "unknown"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "prefctl",
	Short: "prefctl - inspect and edit a prefstore preferences database",
	Long: `prefctl is a thin command-line client over the prefstore
preference store. It reads its data directory and default export flags
from a YAML config file (prefctl.yaml by default) and never links
against anything under pkg/ beyond the public datastore API.`,
	Version:           Version,
	PersistentPreRunE: loadConfigAndLogging,
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf("prefctl version %s\nCommit: %s\n", Version, Commit))

	rootCmd.PersistentFlags().String("config", "prefctl.yaml", "Path to prefctl config file")
	rootCmd.PersistentFlags().String("data-dir", "", "Override the config file's data directory")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().Bool("log-json", false, "Output logs in JSON format")

	rootCmd.AddCommand(getCmd)
	rootCmd.AddCommand(setCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
}

var loadedConfig *Config

func loadConfigAndLogging(cmd *cobra.Command, args []string) error {
	logLevel, _ := cmd.Flags().GetString("log-level")
	logJSON, _ := cmd.Flags().GetBool("log-json")
	log.Init(log.Config{Level: log.Level(logLevel), JSONOutput: logJSON})

	path, _ := cmd.Flags().GetString("config")
	cfg, err := LoadConfig(path)
	if err != nil {
		return err
	}
	if override, _ := cmd.Flags().GetString("data-dir"); override != "" {
		cfg.DataDir = override
	}
	loadedConfig = cfg
	return nil
}
