package main

import (
	"auth-service/config"
	"auth-service/internal/logging"
	"auth-service/internal/migrations"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newMigrateCommand(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Применить миграции схемы БД",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.LoadConfig(*configPath)
			if err != nil {
				return fmt.Errorf("ошибка загрузки конфигурации: %w", err)
			}
			log := logging.New(os.Stdout, cfg.Log.Level, cfg.Log.Format)

			db, err := config.SetupDatabase(&cfg.Database)
			if err != nil {
				return err
			}
			defer func() {
				if err := db.Close(); err != nil {
					log.Error(cmd.Context(), "ошибка при закрытии БД", "error", err)
				}
			}()

			if err := migrations.Up(cmd.Context(), db.DB.DB, cfg.Database.MigrationsTable); err != nil {
				return err
			}
			log.Info(cmd.Context(), "миграции применены")
			return nil
		},
	}
}
