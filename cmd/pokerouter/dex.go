// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/pokerouter/internal/dex"
	"github.com/pdiddy/pokerouter/internal/lookup"
	"github.com/pdiddy/pokerouter/pkg/types"
)

var dexCmd = &cobra.Command{
	Use:   "dex",
	Short: "Manage the offline Pokemon dex (import, pull, show, list, export)",
	Long: `Dex manages a local SQLite dataset of Pokemon records. With
lookup.backend set to "dex" or "chain" the router reads from it instead of,
or before, PokeAPI.`,
}

var dexImportCmd = &cobra.Command{
	Use:   "import <file.yaml>",
	Short: "Import records from a YAML seed file",
	Long: `Import reads a YAML file with a top-level "pokemon" list and upserts
every complete record. Records without a name or missing a base stat are
skipped.`,
	Args: cobra.ExactArgs(1),
	RunE: runDexImport,
}

func runDexImport(cmd *cobra.Command, args []string) error {
	records, err := dex.LoadYAML(args[0])
	if err != nil {
		return err
	}
	return withDex(func(store *dex.Store) error {
		summary, err := store.Import(context.Background(), records, os.Stdout)
		if err != nil {
			return err
		}
		fmt.Printf("\n%d added, %d updated, %d skipped\n", summary.Inserted, summary.Updated, summary.Skipped)
		return nil
	})
}

var dexPullCmd = &cobra.Command{
	Use:   "pull <name>...",
	Short: "Fetch records from PokeAPI and store them in the dex",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runDexPull,
}

func runDexPull(cmd *cobra.Command, args []string) error {
	api := lookup.NewPokeAPI(cfg.Lookup)
	ctx := context.Background()

	var records []types.EntityRecord
	var failed []string
	for _, name := range args {
		rec, err := api.Fetch(ctx, name)
		if err != nil {
			logger.Warn("pull failed", "name", name, "not_found", errors.Is(err, lookup.ErrNotFound), "error", err)
			failed = append(failed, name)
			continue
		}
		records = append(records, *rec)
	}

	err := withDex(func(store *dex.Store) error {
		_, err := store.Import(ctx, records, os.Stdout)
		return err
	})
	if err != nil {
		return err
	}
	if len(failed) > 0 {
		return fmt.Errorf("%d name(s) could not be fetched: %s", len(failed), strings.Join(failed, ", "))
	}
	return nil
}

var dexShowCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Print one stored record as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDex(func(store *dex.Store) error {
			rec, err := store.Fetch(context.Background(), args[0])
			if err != nil {
				return err
			}
			return printJSON(rec)
		})
	},
}

var dexListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored records, optionally filtered by type",
	RunE: func(cmd *cobra.Command, args []string) error {
		typ, _ := cmd.Flags().GetString("type")
		return withDex(func(store *dex.Store) error {
			records, err := store.List(context.Background(), typ)
			if err != nil {
				return err
			}
			if len(records) == 0 {
				fmt.Println("No records found.")
				return nil
			}
			fmt.Printf("%-16s  %-20s  %s\n", "Name", "Types", "HP/Atk/Def/SpA/SpD/Spe")
			fmt.Println(strings.Repeat("-", 64))
			for _, r := range records {
				stats := make([]string, len(types.StatKeys))
				for i, k := range types.StatKeys {
					stats[i] = fmt.Sprint(r.BaseStats[k])
				}
				fmt.Printf("%-16s  %-20s  %s\n", r.Name, strings.Join(r.Types, ","), strings.Join(stats, "/"))
			}
			fmt.Printf("\n%d records\n", len(records))
			return nil
		})
	},
}

var dexExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write every stored record to stdout as a YAML seed file",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDex(func(store *dex.Store) error {
			return store.ExportYAML(context.Background(), os.Stdout)
		})
	},
}

func withDex(fn func(*dex.Store) error) error {
	path := cfg.Lookup.DexPath
	if path == "" {
		return fmt.Errorf("lookup.dex_path is not set")
	}
	store, err := dex.Open(path)
	if err != nil {
		return err
	}
	defer store.Close()
	return fn(store)
}

func init() {
	dexListCmd.Flags().String("type", "", "only list records of this type")

	dexCmd.AddCommand(dexImportCmd)
	dexCmd.AddCommand(dexPullCmd)
	dexCmd.AddCommand(dexShowCmd)
	dexCmd.AddCommand(dexListCmd)
	dexCmd.AddCommand(dexExportCmd)

	rootCmd.AddCommand(dexCmd)
}
