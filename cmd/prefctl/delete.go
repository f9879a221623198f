package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var deleteCmd = &cobra.Command{
	Use:   "delete <key>",
	Short: "Remove a preference cell, restoring its default on next read",
	Args:  cobra.ExactArgs(1),
	RunE:  runDelete,
}

func runDelete(cmd *cobra.Command, args []string) error {
	key := args[0]

	ds, err := openDatastore(loadedConfig)
	if err != nil {
		return fmt.Errorf("open datastore: %w", err)
	}
	defer ds.Close()

	// Deleting a cell doesn't depend on its stored type: any handle's
	// RemoveTxn just deletes the key.
	return ds.String(key, "").Delete(context.Background())
}
