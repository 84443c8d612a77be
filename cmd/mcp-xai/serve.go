package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/golovatskygroup/mcp-xai/internal/audit"
	"github.com/golovatskygroup/mcp-xai/internal/router"
	"github.com/golovatskygroup/mcp-xai/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the MCP server on stdin/stdout",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, store, err := setup()
	if err != nil {
		return err
	}

	var opts []router.Option
	if cfg.AuditDB != "" {
		auditLog, err := audit.Open(cfg.AuditDB)
		if err != nil {
			return err
		}
		defer auditLog.Close()
		opts = append(opts, router.WithRecorder(auditLog))
		log.Info().Str("path", cfg.AuditDB).Msg("audit log enabled")
	}

	r, err := newRouter(store, opts...)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	srv := server.New(store, r, os.Stdin, os.Stdout,
		server.WithName(cfg.ServerName),
		server.WithLogger(log.Logger.With().Str("component", "server").Logger()),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		// Input closing ends the session; stop the signal watcher too.
		defer cancel()
		return srv.Run(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("shutting down MCP server")
		return nil
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
