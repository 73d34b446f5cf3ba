// Package server wires the configured backends into the API process and
// the background worker process.
package server

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/filesmanager/internal/logging"
	"github.com/dmitrijs2005/filesmanager/internal/server/auth"
	"github.com/dmitrijs2005/filesmanager/internal/server/config"
	"github.com/dmitrijs2005/filesmanager/internal/server/content"
	"github.com/dmitrijs2005/filesmanager/internal/server/httpapi"
	"github.com/dmitrijs2005/filesmanager/internal/server/queue"
	"github.com/dmitrijs2005/filesmanager/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/filesmanager/internal/server/services"
	"github.com/dmitrijs2005/filesmanager/internal/server/session"
	"github.com/dmitrijs2005/filesmanager/internal/server/worker"
	"golang.org/x/sync/errgroup"

	gs "github.com/dmitrijs2005/filesmanager/internal/server/grpc"
)

type App struct {
	config   *config.Config
	logger   logging.Logger
	repos    repomanager.RepositoryManager
	sessions session.Store
	content  content.Store
	queue    queue.Queue
}

// NewApp opens every backend selected by c. Backends opened before a
// failure are closed again.
func NewApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {
	app := &App{config: c, logger: logger}

	var err error
	if app.repos, err = openRepositories(ctx, c); err != nil {
		return nil, fmt.Errorf("metadata store init error: %w", err)
	}
	if app.sessions, err = openSessions(ctx, c); err != nil {
		_ = app.Close(ctx)
		return nil, fmt.Errorf("session store init error: %w", err)
	}
	if app.content, err = openContent(ctx, c); err != nil {
		_ = app.Close(ctx)
		return nil, fmt.Errorf("content store init error: %w", err)
	}
	if app.queue, err = openQueue(ctx, c, logger); err != nil {
		_ = app.Close(ctx)
		return nil, fmt.Errorf("queue init error: %w", err)
	}

	logger.Info(ctx, "backends ready",
		"metadata", c.MetadataBackend, "sessions", c.SessionBackend,
		"content", c.ContentBackend, "queue", c.QueueBackend)

	return app, nil
}

func (app *App) systemService() *services.SystemService {
	probes := map[string]services.Pinger{
		"metadata": app.repos,
		"sessions": app.sessions,
		"content":  app.content,
		"queue":    app.queue,
	}
	return services.NewSystemService(app.repos, probes, app.logger)
}

func (app *App) workerPool() *worker.Pool {
	pool := worker.NewPool(app.queue, app.config.WorkerConcurrency, app.logger)
	pool.Handle(queue.FilesQueue, worker.NewDerivativeProcessor(app.repos.Files(), app.content, app.logger).Handle)
	pool.Handle(queue.UsersQueue, worker.NewWelcomeProcessor(app.repos.Users(), app.logger).Handle)
	return pool
}

// RunAPI serves HTTP and gRPC health until ctx is cancelled. With the
// in-memory queue the workers run in this process too, since no other
// process can reach it.
func (app *App) RunAPI(ctx context.Context) error {
	app.logger.Info(ctx, "Starting app...")

	guard := auth.NewGuard(app.sessions, app.repos.Users())
	us := services.NewUserService(app.repos, app.sessions, app.queue, app.config.SessionTTL, app.logger)
	fs := services.NewFileService(app.repos, app.content, app.queue, app.config.PageSize, app.logger)
	ss := app.systemService()

	handler := httpapi.NewHandler(us, fs, ss, guard, app.config.MaxUploadBytes, app.logger)
	httpServer := httpapi.NewServer(app.config.EndpointAddrHTTP, httpapi.NewRouter(handler, app.logger),
		app.config.ShutdownTimeout, app.logger)
	grpcServer := gs.NewGRPCServer(app.config.EndpointAddrGRPC, app.logger, ss, app.config.HealthCheckInterval)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return httpServer.Run(gctx) })
	g.Go(func() error { return grpcServer.Run(gctx) })

	if app.config.QueueBackend == "memory" {
		pool := app.workerPool()
		g.Go(func() error { return pool.Run(gctx) })
	}

	err := g.Wait()
	app.logger.Info(ctx, "App stopped")
	return err
}

// RunWorker consumes both job queues until ctx is cancelled.
func (app *App) RunWorker(ctx context.Context) error {
	app.logger.Info(ctx, "Starting worker...")
	return app.workerPool().Run(ctx)
}

// Close releases every opened backend.
func (app *App) Close(ctx context.Context) error {
	var errs []error
	if app.queue != nil {
		errs = append(errs, app.queue.Close())
	}
	if app.sessions != nil {
		errs = append(errs, app.sessions.Close())
	}
	if app.repos != nil {
		errs = append(errs, app.repos.Close(ctx))
	}
	return errors.Join(errs...)
}
