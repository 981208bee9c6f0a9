package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"treecopy/config"
	"treecopy/internal/driveclient"
	"treecopy/internal/remote"
	"treecopy/internal/s3client"
)

var (
	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "treecopy",
	Short: "Replicate a cloud storage folder tree into a new destination",
	Long: `treecopy duplicates a folder tree from one cloud storage location into a
staging folder, then relocates the staged copy into a final destination.

Individual file copy failures do not stop the run; they are collected and
written to a failed_copies_log_<timestamp>.csv report.
Configuration is loaded from .env, config.yaml or environment variables`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// newStorage builds the remote backend for cfg. Tests replace it.
var newStorage = func(ctx context.Context, cfg *config.Config) (remote.Storage, error) {
	switch cfg.Backend {
	case config.BackendDrive:
		return driveclient.New(ctx, cfg)
	case config.BackendS3:
		return s3client.New(cfg)
	default:
		return nil, fmt.Errorf("unknown backend %q", cfg.Backend)
	}
}

func Execute(config *config.Config) error {
	cfg = config
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(replicateCmd)
	rootCmd.AddCommand(stageCmd)
	rootCmd.AddCommand(treeCmd)

	rootCmd.PersistentFlags().StringP("backend", "B", "", "Override storage backend from config (drive or s3)")
	rootCmd.PersistentFlags().StringP("source", "s", "", "Override source folder id from config")
	rootCmd.PersistentFlags().Int("max-depth", -1, "Override maximum folder depth from config (0 = unlimited)")
	rootCmd.PersistentFlags().Int("timeout", 0, "Timeout in seconds for the whole operation (0 = none)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output")
}

// effectiveConfig returns a copy of the loaded config with persistent flag
// overrides applied.
func effectiveConfig(cmd *cobra.Command) config.Config {
	c := *cfg
	if backend, _ := cmd.Flags().GetString("backend"); backend != "" {
		c.Backend = backend
	}
	if source, _ := cmd.Flags().GetString("source"); source != "" {
		c.SourceFolderID = source
	}
	if depth, _ := cmd.Flags().GetInt("max-depth"); depth >= 0 {
		c.MaxDepth = depth
	}
	return c
}

func isVerbose(cmd *cobra.Command) bool {
	verbose, _ := cmd.Flags().GetBool("verbose")
	return verbose
}

func newLogger(cmd *cobra.Command) *slog.Logger {
	level := slog.LevelWarn
	if isVerbose(cmd) {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
}

func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	timeout, _ := cmd.Flags().GetInt("timeout")
	if timeout > 0 {
		return context.WithTimeout(ctx, time.Duration(timeout)*time.Second)
	}
	return context.WithCancel(ctx)
}

var errSourceRequired = errors.New("a folder id argument or source_folder_id is required")
