package worker

import (
	"context"

	"github.com/dmitrijs2005/filesmanager/internal/logging"
	"github.com/dmitrijs2005/filesmanager/internal/server/queue"
	"golang.org/x/sync/errgroup"
)

// Pool consumes every registered queue with a fixed number of goroutines.
type Pool struct {
	consumer    queue.Consumer
	concurrency int
	handlers    map[string]queue.Handler
	logger      logging.Logger
}

func NewPool(consumer queue.Consumer, concurrency int, logger logging.Logger) *Pool {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Pool{
		consumer:    consumer,
		concurrency: concurrency,
		handlers:    make(map[string]queue.Handler),
		logger:      logger.With("component", "worker_pool"),
	}
}

// Handle registers h for jobs of queue. It must be called before Run.
func (p *Pool) Handle(queue string, h queue.Handler) {
	p.handlers[queue] = h
}

// Run blocks until ctx is cancelled and every consumer has returned. The
// first consumer error cancels the others.
func (p *Pool) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	for name, h := range p.handlers {
		for i := 0; i < p.concurrency; i++ {
			g.Go(func() error {
				return p.consumer.Consume(gctx, name, h)
			})
		}
		p.logger.Info(ctx, "consuming", "queue", name, "workers", p.concurrency)
	}

	err := g.Wait()
	p.logger.Info(ctx, "worker pool stopped")
	return err
}
