package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var setCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Write one preference value",
	Long: `Write a single preference value by key, durably committing it
before returning.

Examples:
  prefctl set username ada
  prefctl set --type bool dark_mode true
  prefctl set --type int retry_count 5`,
	Args: cobra.ExactArgs(2),
	RunE: runSet,
}

func init() {
	setCmd.Flags().String("type", "string", "Cell type: string, bool, int, int64, float, float64")
}

func runSet(cmd *cobra.Command, args []string) error {
	key, raw := args[0], args[1]
	cellType, _ := cmd.Flags().GetString("type")

	ds, err := openDatastore(loadedConfig)
	if err != nil {
		return fmt.Errorf("open datastore: %w", err)
	}
	defer ds.Close()

	ctx := context.Background()
	switch cellType {
	case "string":
		return ds.String(key, "").Set(ctx, raw)
	case "bool":
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return fmt.Errorf("parse bool %q: %w", raw, err)
		}
		return ds.Bool(key, false).Set(ctx, v)
	case "int":
		v, err := strconv.ParseInt(raw, 10, 32)
		if err != nil {
			return fmt.Errorf("parse int %q: %w", raw, err)
		}
		return ds.Int32(key, 0).Set(ctx, int32(v))
	case "int64":
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return fmt.Errorf("parse int64 %q: %w", raw, err)
		}
		return ds.Int64(key, 0).Set(ctx, v)
	case "float":
		v, err := strconv.ParseFloat(raw, 32)
		if err != nil {
			return fmt.Errorf("parse float %q: %w", raw, err)
		}
		return ds.Float32(key, 0).Set(ctx, float32(v))
	case "float64":
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return fmt.Errorf("parse float64 %q: %w", raw, err)
		}
		return ds.Float64(key, 0).Set(ctx, v)
	default:
		return fmt.Errorf("unsupported --type %q", cellType)
	}
}
