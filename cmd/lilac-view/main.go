// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/lilacml/lilac-view/internal/config"
	"github.com/lilacml/lilac-view/internal/dataset"
	"github.com/lilacml/lilac-view/internal/payload/decoders"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

var (
	// Global flags
	verbose    bool
	configPath string
	dataDir    string
	namespace  string

	logger *zap.Logger
	cfg    config.Config
)

var rootCmd = &cobra.Command{
	Use:   "lilac-view",
	Short: "Browse annotated datasets and render their signal spans",
	Long: `lilac-view reads datasets whose rows carry signal output under the
__lilac__ annotation tree, merges that output into the source fields and
renders text fields as highlighted fragments and snippets.

A dataset is a directory <data-dir>/<namespace>/<name> holding a schema file
(schema.yaml or schema.json) and a rows file (rows.jsonl, rows.yaml, ...).`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		if dataDir != "" {
			cfg.DataDir = dataDir
		}
		if namespace != "" {
			cfg.Namespace = namespace
		}

		zcfg := zap.NewProductionConfig()
		// Logs go to stderr so stdout stays free for output and the stdio transport.
		zcfg.OutputPaths = []string{"stderr"}
		level, err := zapcore.ParseLevel(cfg.LogLevel)
		if err != nil {
			return fmt.Errorf("invalid log level: %w", err)
		}
		zcfg.Level = zap.NewAtomicLevelAt(level)
		if verbose {
			zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		logger, err = zcfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to a YAML config file")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "Dataset root directory (overrides config)")
	rootCmd.PersistentFlags().StringVarP(&namespace, "namespace", "n", "", "Dataset namespace (overrides config)")

	rootCmd.AddCommand(renderCmd)
	rootCmd.AddCommand(schemaCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newFetcher() *dataset.DirFetcher {
	return dataset.NewDirFetcher(cfg.DataDir, decoders.NewDefaultPipeline(), logger)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), version)
	},
}
