// Package commands provides the CLI commands for assistd.
package commands

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/assistd-ai/assistd/internal/config"
	"github.com/assistd-ai/assistd/internal/logging"
	"github.com/assistd-ai/assistd/pkg/types"
)

var (
	// Version information set at build time
	Version   = "0.1.0"
	BuildTime = "dev"
)

// Global flags
var (
	configDir string
	logLevel  string
)

var rootCmd = &cobra.Command{
	Use:   "assistd",
	Short: "assistd - local AI assistant backend",
	Long: `assistd is the backend for a local AI assistant. It manages chat
sessions against an Ollama-compatible inference backend and mediates a
set of sandboxed tools the model can request through its replies.

Run 'assistd serve' to start the HTTP API.`,
	Version: Version,
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "", "Configuration directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug|info|warn|error)")

	rootCmd.SetVersionTemplate(fmt.Sprintf("assistd %s (%s)\n", Version, BuildTime))

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(modelsCmd)
	rootCmd.AddCommand(toolsCmd)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// loadConfig loads configuration and applies global flag overrides. A
// .env file in the working directory is honored before env overrides run.
func loadConfig() (*types.Config, error) {
	godotenv.Load()

	cfg, err := config.Load(configDir)
	if err != nil {
		return nil, err
	}

	if logLevel != "" {
		cfg.Log.Level = logLevel
	}

	logging.Init(logging.Config{
		Level:  logging.ParseLevel(cfg.Log.Level),
		Pretty: cfg.Log.Pretty,
	})

	return cfg, nil
}
