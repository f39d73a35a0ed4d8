// Command mclog aggregates Minecraft server logs into typed events.
package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

// version is set at build time via -ldflags "-X main.version=...".
var version = "dev"

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "mclog",
	Short: "Aggregate Minecraft server logs into typed events",
	Long: `mclog reads a Minecraft server's log directory (latest.log plus the
rotated .log.gz archive), merges the files chronologically, and extracts
typed events: joins and leaves, advancements, deaths, and chat.

Events can be exported as per-kind CSV files, streamed as JSON Lines,
filtered with expressions, and extended with custom matchers defined in
YAML pattern files or WebAssembly plugins.`,
	Version:      version,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"Enable debug logging to stderr")
}

// newLogger builds the CLI logger. Diagnostics go to stderr so stdout
// stays clean for event output.
func newLogger() *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
