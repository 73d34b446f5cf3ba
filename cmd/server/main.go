package main

import (
	"context"
	"log"
	"os"

	"github.com/dmitrijs2005/filesmanager/internal/buildinfo"
	"github.com/dmitrijs2005/filesmanager/internal/logging"
	"github.com/dmitrijs2005/filesmanager/internal/server"
	"github.com/dmitrijs2005/filesmanager/internal/server/config"
	gfshutdown "github.com/gelmium/graceful-shutdown"
)

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	cfg := config.LoadConfig()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("%v", err)
	}

	logger := logging.New(os.Stdout, cfg.LogLevel, cfg.LogFormat)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	app, err := server.NewApp(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("%v", err)
	}

	var runErr error
	stopped := make(chan struct{})
	go func() {
		runErr = app.RunAPI(ctx)
		close(stopped)
	}()

	wait := gfshutdown.GracefulShutdown(context.Background(), cfg.ShutdownTimeout,
		map[string]gfshutdown.Operation{
			"api": func(ctx context.Context) error {
				cancel()
				<-stopped
				if runErr != nil {
					return runErr
				}
				return app.Close(ctx)
			},
		},
	)

	select {
	case exitCode := <-wait:
		os.Exit(exitCode)
	case <-stopped:
		if ctx.Err() != nil {
			// stopping because of a signal
			os.Exit(<-wait)
		}
		logger.Error(ctx, "api stopped", "error", runErr)
		_ = app.Close(context.Background())
		os.Exit(1)
	}
}
