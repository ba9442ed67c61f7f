// Command promptscope analyzes local AI-assistant conversation logs for
// prompt anti-patterns, health scoring and exemplar prompts.
package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// version is set at build time via -ldflags.
var version = "dev"

var (
	flagDebug bool
)

var rootCmd = &cobra.Command{
	Use:   "promptscope",
	Short: "Analyze your AI-assistant prompting habits",
	Long: `Promptscope reads locally stored conversation logs, detects prompting
anti-patterns, scores overall prompt health and surfaces exemplar prompts.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		setupLogging(flagDebug)
	},
}

func setupLogging(debug bool) {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&flagDebug, "debug", false, "enable debug logging")
	rootCmd.AddCommand(serveCmd, reportCmd, versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
