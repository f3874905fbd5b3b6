// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/pdiddy/pokerouter/internal/secrets"
	"github.com/pdiddy/pokerouter/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the HTTP API",
	Long: `Serve starts the HTTP API on the configured address:

  POST /api/v1/pokemon/chat     {"message": "..."}
  GET  /api/v1/pokemon/battle   ?pokemon1=...&pokemon2=...
  GET  /api/v1/pokemon/health

The server shuts down gracefully on SIGINT or SIGTERM.`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
		cfg.Server.Addr = addr
	}
	if missing := secrets.Missing(cfg); len(missing) > 0 {
		return fmt.Errorf("missing API keys: %v (set them in .secrets/, .env, or the environment)", missing)
	}

	rt, closeFn, err := newRouter()
	if err != nil {
		return err
	}
	defer closeFn()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("starting", "version", version, "lookup", cfg.Lookup.Backend, "model", cfg.AI.Model)
	return server.New(cfg.Server, rt, logger).ListenAndServe(ctx)
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (overrides server.addr)")
	rootCmd.AddCommand(serveCmd)
}
