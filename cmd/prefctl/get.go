package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var getCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Read one preference value",
	Long: `Read a single preference value by key.

Examples:
  prefctl get username
  prefctl get --type bool dark_mode
  prefctl get --type int retry_count`,
	Args: cobra.ExactArgs(1),
	RunE: runGet,
}

func init() {
	getCmd.Flags().String("type", "string", "Cell type: string, bool, int, int64, float, float64")
	getCmd.Flags().String("default", "", "Default value if the cell is absent (parsed per --type)")
}

func runGet(cmd *cobra.Command, args []string) error {
	key := args[0]
	cellType, _ := cmd.Flags().GetString("type")
	defStr, _ := cmd.Flags().GetString("default")

	ds, err := openDatastore(loadedConfig)
	if err != nil {
		return fmt.Errorf("open datastore: %w", err)
	}
	defer ds.Close()

	ctx := context.Background()
	switch cellType {
	case "string":
		v, err := ds.String(key, defStr).Get(ctx)
		if err != nil {
			return err
		}
		fmt.Println(v)
	case "bool":
		def, _ := strconv.ParseBool(orDefault(defStr, "false"))
		v, err := ds.Bool(key, def).Get(ctx)
		if err != nil {
			return err
		}
		fmt.Println(v)
	case "int":
		def, _ := strconv.ParseInt(orDefault(defStr, "0"), 10, 32)
		v, err := ds.Int32(key, int32(def)).Get(ctx)
		if err != nil {
			return err
		}
		fmt.Println(v)
	case "int64":
		def, _ := strconv.ParseInt(orDefault(defStr, "0"), 10, 64)
		v, err := ds.Int64(key, def).Get(ctx)
		if err != nil {
			return err
		}
		fmt.Println(v)
	case "float":
		def, _ := strconv.ParseFloat(orDefault(defStr, "0"), 32)
		v, err := ds.Float32(key, float32(def)).Get(ctx)
		if err != nil {
			return err
		}
		fmt.Println(v)
	case "float64":
		def, _ := strconv.ParseFloat(orDefault(defStr, "0"), 64)
		v, err := ds.Float64(key, def).Get(ctx)
		if err != nil {
			return err
		}
		fmt.Println(v)
	default:
		return fmt.Errorf("unsupported --type %q", cellType)
	}
	return nil
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
