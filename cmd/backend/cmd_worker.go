package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/fx"
	"go.uber.org/zap"

	clientpkg "github.com/stormhead-org/comments/internal/client"
	eventpkg "github.com/stormhead-org/comments/internal/event"
	workerpkg "github.com/stormhead-org/comments/internal/worker"
)

var workerCommand = &cobra.Command{
	Use:   "worker",
	Short: "worker",
	Long:  "",
	RunE: func(cmd *cobra.Command, args []string) error {
		return workerCommandImpl()
	},
}

func workerCommandImpl() error {
	loadEnv()

	// Application
	application := fx.New(
		fx.NopLogger,
		fx.Provide(
			newLogger,

			// Kafka client
			provideKafkaClient,

			// S3 client
			provideS3Client,

			// Application
			func(
				lifecycle fx.Lifecycle,
				logger *zap.Logger,
				kafkaClient *eventpkg.KafkaClient,
				s3Client *clientpkg.S3Client,
			) (*workerpkg.Worker, error) {
				worker := workerpkg.NewWorker(logger, kafkaClient, s3Client)

				lifecycle.Append(fx.Hook{
					OnStart: func(ctx context.Context) error {
						return worker.Start()
					},
					OnStop: func(ctx context.Context) error {
						return worker.Stop()
					},
				})

				return worker, nil
			},
		),
		fx.Invoke(
			func(*workerpkg.Worker) {},
		),
	)
	application.Run()

	err := application.Err()
	if err != nil {
		os.Exit(1)
	}

	return nil
}

func init() {
	rootCommand.AddCommand(workerCommand)
}
