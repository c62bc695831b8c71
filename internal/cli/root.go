// Package cli implements the membank CLI commands. Every memory operation
// is a subcommand generated from the dispatch operation table, so the CLI
// and the MCP server expose the same contract.
package cli

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/rcliao/membank/internal/config"
	"github.com/rcliao/membank/internal/dispatch"
	"github.com/rcliao/membank/internal/engine"
	"github.com/rcliao/membank/internal/mirror"
	"github.com/rcliao/membank/internal/store"
)

// Version is set at build time via ldflags.
var Version = "dev"

var (
	dbPath  string
	verbose bool
)

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:   "membank",
	Short: "Persistent project memory for AI agents",
	Long: "membank stores decisions, error solutions, context, learnings, and sessions\n" +
		"per project in a local SQLite database, with an optional best-effort cloud mirror.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		setupLogging()
	},
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&dbPath, "db", "d", "", "Database path (default: $MEMBANK_DB or ~/.membank/membank.db)")
	RootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
}

// setupLogging sends all diagnostics to stderr. Operation results are the
// only thing written to stdout.
func setupLogging() {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

func getDBPath() string {
	if dbPath != "" {
		return dbPath
	}
	if env := os.Getenv("MEMBANK_DB"); env != "" {
		return env
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".membank", "membank.db")
}

// syncConfigured reports whether the config file enables the cloud mirror.
// It decides which commands exist; actual connectivity is resolved when a
// command opens the engine.
func syncConfigured() bool {
	cfg, err := config.Load(config.DefaultPath())
	return err == nil && cfg != nil && cfg.Sync.Enabled
}

// openDispatcher wires store, optional mirror, engine, and dispatcher. The
// returned cleanup closes everything and is always safe to call.
func openDispatcher() (*dispatch.Dispatcher, func(), error) {
	logger := slog.Default()

	s, err := store.NewSQLiteStore(getDBPath(), logger)
	if err != nil {
		return nil, func() {}, fmt.Errorf("open store: %w", err)
	}

	var mir *mirror.Mirror
	cfg, err := config.Load(config.DefaultPath())
	if err != nil {
		logger.Warn("config unreadable, cloud mirror disabled", "error", err)
	} else if cfg != nil && cfg.Sync.Enabled {
		mir, err = mirror.New(cfg.Sync, logger)
		if err != nil {
			logger.Warn("cloud mirror unreachable, continuing without it", "error", err)
			mir = nil
		}
	}

	eng := engine.New(s, mir, logger)
	cleanup := func() {
		if mir != nil {
			mir.Close()
		}
		s.Close()
	}
	return dispatch.New(eng, logger), cleanup, nil
}

func exitErr(msg string, err error) {
	fmt.Fprintf(os.Stderr, "error: %s: %v\n", msg, err)
	os.Exit(1)
}
