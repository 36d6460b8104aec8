package main

import (
	"context"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var migrateCommand = &cobra.Command{
	Use:   "migrate",
	Short: "migrate",
	Long:  "",
	RunE: func(cmd *cobra.Command, args []string) error {
		return migrateCommandImpl(cmd.Context())
	},
}

func migrateCommandImpl(ctx context.Context) error {
	loadEnv()

	logger, err := newLogger()
	if err != nil {
		return err
	}
	defer logger.Sync()

	client, err := newPostgresClient(logger)
	if err != nil {
		logger.Error("error connecting to database", zap.Error(err))
		return err
	}
	defer client.Close()

	ctx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	err = client.Migrate(ctx)
	if err != nil {
		logger.Error("error migrating database", zap.Error(err))
		return err
	}

	logger.Info("database migrated")
	return nil
}

func init() {
	rootCommand.AddCommand(migrateCommand)
}
