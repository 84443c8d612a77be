// Package main provides the mcp-xai entry point.
package main

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/golovatskygroup/mcp-xai/internal/catalog"
	"github.com/golovatskygroup/mcp-xai/internal/config"
	"github.com/golovatskygroup/mcp-xai/internal/router"
	"github.com/golovatskygroup/mcp-xai/internal/server"
	"github.com/golovatskygroup/mcp-xai/internal/tools"
)

var (
	configPath string
	debug      bool
)

var rootCmd = &cobra.Command{
	Use:   "mcp-xai",
	Short: "MCP server for an explainable-AI benchmark catalog",
	Long: `mcp-xai serves a fixed catalog of datasets, models, explanation methods and
evaluation metrics over the Model Context Protocol (stdio).

Running without a subcommand starts the server.`,
	Version:       server.Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runServe,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file (YAML)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")
}

func main() {
	// stdout carries the protocol, so logs go to stderr
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, NoColor: true})

	if err := rootCmd.Execute(); err != nil {
		log.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}

// setup loads config, configures logging and opens the catalog
func setup() (config.Config, *catalog.Store, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return config.Config{}, nil, err
	}

	lvl, _ := cfg.Level()
	if debug {
		lvl = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(lvl)

	store, err := openCatalog(cfg)
	if err != nil {
		return config.Config{}, nil, err
	}
	return cfg, store, nil
}

func openCatalog(cfg config.Config) (*catalog.Store, error) {
	if cfg.CatalogPath != "" {
		log.Debug().Str("path", cfg.CatalogPath).Msg("loading catalog override")
		return catalog.LoadFile(cfg.CatalogPath)
	}
	return catalog.Default()
}

func newRouter(store *catalog.Store, opts ...router.Option) (*router.Router, error) {
	opts = append([]router.Option{router.WithLogger(log.Logger.With().Str("component", "router").Logger())}, opts...)
	r := router.New(opts...)
	if err := tools.NewHandler(store, log.Logger).Register(r); err != nil {
		return nil, err
	}
	return r, nil
}
