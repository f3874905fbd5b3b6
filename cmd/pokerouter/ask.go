// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/pokerouter/internal/router"
	"github.com/pdiddy/pokerouter/internal/secrets"
)

var askCmd = &cobra.Command{
	Use:   "ask <message>",
	Short: "Answer one message and print the response as JSON",
	Long: `Ask routes a single message exactly as the chat endpoint does and
prints the response to stdout. Use --trace to print the visited routing
states to stderr.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func runAsk(cmd *cobra.Command, args []string) error {
	if missing := secrets.Missing(cfg); len(missing) > 0 {
		return fmt.Errorf("missing API keys: %v", missing)
	}
	rt, closeFn, err := newRouter()
	if err != nil {
		return err
	}
	defer closeFn()

	message := strings.Join(args, " ")
	resp, trace, err := rt.Trace(context.Background(), message)
	if err != nil {
		return err
	}

	if show, _ := cmd.Flags().GetBool("trace"); show {
		fmt.Fprintln(os.Stderr, "states:", formatTrace(trace))
	}
	return printJSON(resp)
}

func formatTrace(states []router.State) string {
	parts := make([]string, len(states))
	for i, s := range states {
		parts[i] = s.String()
	}
	return strings.Join(parts, " -> ")
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func init() {
	askCmd.Flags().Bool("trace", false, "print the routing states to stderr")
	rootCmd.AddCommand(askCmd)
}
