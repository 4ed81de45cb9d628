// Package cmd contains the gamelore command-line interface. Following the
// pattern used by kubectl, hugo, and other standard Go CLI tools, all
// application logic is contained here, leaving main.go as a minimal entry
// point.
package cmd

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/gamelore/gamelore/internal/log"
)

var rootCmd = &cobra.Command{
	Use:   "gamelore",
	Short: "Gamelore - game knowledge ingestion and search",
	Long: `Gamelore builds a searchable knowledge base for games from per-game
CSV manifests of wiki pages, YouTube videos, and forum threads.

Ingestion fetches and cleans the listed pages, chunks their text, embeds
the chunks with Gemini, and stores them in an embedded vector database.
Search then retrieves the chunks nearest to a natural-language query.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// newLogger builds the CLI logger. DEBUG in the environment lowers the
// level; logs go to stderr so stdout stays clean for command output.
func newLogger() log.Logger {
	level := slog.LevelInfo
	if os.Getenv("DEBUG") != "" {
		level = slog.LevelDebug
	}
	return log.New(log.Config{Level: level})
}
