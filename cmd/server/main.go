package main

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jobtrack-ai/jobtrack-api/internal/config"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	v := viper.New()

	root := &cobra.Command{
		Use:          "jobtrack",
		Short:        "JobTrack API: job application tracking with resume matching",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), v)
		},
	}

	root.PersistentFlags().String("port", "", "HTTP port (overrides PORT)")
	root.PersistentFlags().String("env", "", "environment: development, staging, production (overrides ENV)")
	_ = v.BindPFlag("port", root.PersistentFlags().Lookup("port"))
	_ = v.BindPFlag("env", root.PersistentFlags().Lookup("env"))

	root.AddCommand(newServeCmd(v), newMigrateCmd(v))
	return root
}

// loadConfig loads config and switches to console logging in development
func loadConfig(v *viper.Viper) (*config.Config, error) {
	cfg, err := config.Load(v)
	if err != nil {
		log.Error().Err(err).Msg("Failed to load config")
		return nil, err
	}
	if cfg.IsDevelopment() {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
	return cfg, nil
}
