// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/pdiddy/pokerouter/internal/secrets"
	"github.com/pdiddy/pokerouter/pkg/types"
)

var battleCmd = &cobra.Command{
	Use:   "battle <first> <second>",
	Short: "Compare two Pokemon",
	Long: `Battle looks up and enriches both Pokemon, then asks the analyst who
would win. It fails if either Pokemon cannot be found.`,
	Args: cobra.ExactArgs(2),
	RunE: runBattle,
}

func runBattle(cmd *cobra.Command, args []string) error {
	if missing := secrets.Missing(cfg); len(missing) > 0 {
		return fmt.Errorf("missing API keys: %v", missing)
	}
	rt, closeFn, err := newRouter()
	if err != nil {
		return err
	}
	defer closeFn()

	resp, err := rt.Compare(context.Background(), args[0], args[1])
	if err != nil {
		return err
	}

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		return printJSON(resp)
	}
	printBattle(resp)
	return nil
}

func printBattle(resp *types.CompareResponse) {
	bold := color.New(color.Bold).SprintFunc()
	for _, rec := range []types.EntityRecord{resp.First, resp.Second} {
		fmt.Printf("%s  types=%v  ", bold(types.DisplayName(rec.Name)), rec.Types)
		for _, k := range types.StatKeys {
			fmt.Printf("%s=%d ", k, rec.BaseStats[k])
		}
		fmt.Println()
	}
	fmt.Println()

	c := resp.Comparison
	if c.Failed() {
		color.Red("%s", c.Error)
		return
	}
	fmt.Println(c.Analysis)
	fmt.Println()
	fmt.Println(c.Reasoning)
	fmt.Println()
	color.Green("Winner: %s", types.DisplayName(c.Outcome))
}

func init() {
	battleCmd.Flags().Bool("json", false, "output the response as JSON")
	rootCmd.AddCommand(battleCmd)
}
