package main

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jobtrack-ai/jobtrack-api/internal/repository"
)

func newMigrateCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema and exit",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(v)
			if err != nil {
				return err
			}

			pool, err := repository.Connect(cmd.Context(), cfg.DatabaseURL)
			if err != nil {
				log.Error().Err(err).Msg("Failed to connect to database")
				return err
			}
			defer pool.Close()

			if err := repository.Migrate(cmd.Context(), pool); err != nil {
				log.Error().Err(err).Msg("Migration failed")
				return err
			}

			log.Info().Msg("Schema is up to date")
			return nil
		},
	}
}
