package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/thebtf/promptscope/internal/config"
	"github.com/thebtf/promptscope/internal/watcher"
	"github.com/thebtf/promptscope/internal/worker"
)

var (
	flagPort        int
	flagDaysDefault int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the local analysis HTTP service",
	RunE: func(cmd *cobra.Command, args []string) error {
		settings, err := config.LoadSettings(config.SettingsPath())
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("port") {
			settings.Port = flagPort
		}
		if cmd.Flags().Changed("days-default") {
			settings.Days = flagDaysDefault
		}

		svc := worker.NewService(version, settings, config.DefaultAnalysis())

		w, err := watcher.New(settings.SourcePaths(), svc.NotifySourcesChanged)
		if err != nil {
			return err
		}
		if err := w.Start(); err != nil {
			return err
		}
		defer func() {
			if err := w.Stop(); err != nil {
				log.Warn().Err(err).Msg("failed to stop watcher")
			}
		}()

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		return svc.Run(ctx)
	},
}

func init() {
	serveCmd.Flags().IntVar(&flagPort, "port", config.DefaultPort, "port to listen on")
	serveCmd.Flags().IntVar(&flagDaysDefault, "days-default", config.DefaultDays, "default lookback window in days")
}
