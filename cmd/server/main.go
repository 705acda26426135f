package main

import (
	"context"
	"log"
	"os"

	"github.com/Silas-Hakuzwimana/streamforge/internal/server"
	"github.com/Silas-Hakuzwimana/streamforge/internal/server/config"
	gfshutdown "github.com/gelmium/graceful-shutdown"
)

func main() {

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Printf("config error: %v", err)
		os.Exit(2)
	}

	ctx, cancel := context.WithCancel(context.Background())

	app, err := server.NewApp(ctx, cfg)
	if err != nil {
		log.Printf("%v", err)
		os.Exit(1)
	}

	runErr := make(chan error, 1)
	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		if err := app.Run(ctx); err != nil {
			runErr <- err
		}
	}()

	wait := gfshutdown.GracefulShutdown(
		context.Background(),
		cfg.ShutdownTimeout,
		map[string]gfshutdown.Operation{
			"streamforge": func(ctx context.Context) error {
				app.Logger().Info(ctx, "Graceful shutdown initiated...")
				cancel()
				select {
				case <-stopped:
				case <-ctx.Done():
					return ctx.Err()
				}
				return app.Close()
			},
		},
	)

	select {
	case exitCode := <-wait:
		os.Exit(exitCode)
	case err := <-runErr:
		app.Logger().Error(ctx, "app stopped", "error", err)
		cancel()
		_ = app.Close()
		os.Exit(1)
	}
}
