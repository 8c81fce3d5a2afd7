package main

import (
	"context"
	"os"
	"time"

	"github.com/tabflow/tabflow/pkg/cmd"
	"github.com/tabflow/tabflow/pkg/log"
	cli "github.com/urfave/cli/v3"
)

const defaultPort = 9091

func main() {
	logger := log.WithModule("api")

	command := &cli.Command{
		Name:                  "tabflow-api",
		Usage:                 "Manage table schemas, rows and transformation flows",
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Port to run the API server on",
				Value:   defaultPort,
				Sources: cli.EnvVars("PORT"),
			},
			&cli.StringFlag{
				Name:    "database-url",
				Usage:   "Storage URL (file://<dir>, redis://..., postgres://... or memory://)",
				Value:   "file://./data",
				Sources: cli.EnvVars("DATABASE_URL"),
			},
			&cli.IntFlag{
				Name:    "history-limit",
				Usage:   "Maximum number of undo snapshots kept per flow tab",
				Value:   50,
				Sources: cli.EnvVars("HISTORY_LIMIT"),
			},
			&cli.IntFlag{
				Name:    "history-debounce-ms",
				Usage:   "Quiescence window in milliseconds before a snapshot is recorded",
				Value:   300,
				Sources: cli.EnvVars("HISTORY_DEBOUNCE_MS"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "info",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			log.Setup(command.String("log-level"))

			logger.InfoContext(ctx, "Initializing TabFlow API")

			persistence, err := cmd.NewPersistence(ctx, logger, command.String("database-url"))
			if err != nil {
				return err
			}

			defer func() {
				if err := persistence.Close(ctx); err != nil {
					logger.ErrorContext(ctx, "Failed to close persistence", "error", err)
				}
			}()

			api := NewAPI(
				logger,
				persistence,
				int(command.Int("history-limit")),
				time.Duration(command.Int("history-debounce-ms"))*time.Millisecond,
			)

			if err := api.Start(ctx, int(command.Int("port"))); err != nil {
				logger.ErrorContext(ctx, "Failed to start API server", "error", err)
			}

			return nil
		},
	}

	if err := command.Run(context.Background(), os.Args); err != nil {
		panic(err)
	}
}
