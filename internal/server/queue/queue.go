// Package queue carries background jobs between the API and the workers.
// Delivery is at-least-once: handlers must be idempotent.
package queue

import (
	"context"
	"errors"
	"strconv"

	"github.com/dmitrijs2005/filesmanager/internal/logging"
	"github.com/dmitrijs2005/filesmanager/internal/server/metrics"
)

// Logical queue names.
const (
	FilesQueue = "files"
	UsersQueue = "users"
)

// DefaultMaxDeliver bounds redeliveries of a failing job.
const DefaultMaxDeliver = 5

// Handler processes one job payload. A nil result acknowledges the job, an
// error wrapped with Terminal drops it to the dead-letter queue, and any other
// error requests redelivery.
type Handler func(ctx context.Context, data []byte) error

type Publisher interface {
	// Publish JSON-encodes payload and enqueues it.
	Publish(ctx context.Context, queue string, payload any) error
}

type Consumer interface {
	// Consume feeds jobs of queue to h until ctx is cancelled.
	Consume(ctx context.Context, queue string, h Handler) error
}

type Queue interface {
	Publisher
	Consumer
	Ping(ctx context.Context) error
	Close() error
}

type terminalError struct {
	err error
}

func (e *terminalError) Error() string { return e.err.Error() }
func (e *terminalError) Unwrap() error { return e.err }

// Terminal marks err as not worth retrying.
func Terminal(err error) error {
	if err == nil {
		return nil
	}
	return &terminalError{err: err}
}

// IsTerminal reports whether err was marked with Terminal.
func IsTerminal(err error) bool {
	var t *terminalError
	return errors.As(err, &t)
}

type delivery interface {
	Data() []byte
	NumDelivered() uint64
	Ack() error
	Nak() error
	Term() error
}

type deadLetterer interface {
	deadLetter(ctx context.Context, queue string, data []byte, reason string) error
}

// settle runs h on d and acknowledges according to the outcome.
func settle(ctx context.Context, logger logging.Logger, dl deadLetterer, queue string, maxDeliver int, d delivery, h Handler) {
	err := h(ctx, d.Data())
	if err == nil {
		if ackErr := d.Ack(); ackErr != nil {
			logger.Error(ctx, "ack failed", "queue", queue, "error", ackErr)
		}
		metrics.JobsTotal.WithLabelValues(queue, "ack").Inc()
		return
	}

	exhausted := maxDeliver > 0 && d.NumDelivered() >= uint64(maxDeliver)
	if IsTerminal(err) || exhausted {
		logger.Error(ctx, "job failed permanently", "queue", queue,
			"deliveries", strconv.FormatUint(d.NumDelivered(), 10), "error", err)
		if dlErr := dl.deadLetter(ctx, queue, d.Data(), err.Error()); dlErr != nil {
			logger.Error(ctx, "dead-letter publish failed", "queue", queue, "error", dlErr)
		}
		if termErr := d.Term(); termErr != nil {
			logger.Error(ctx, "term failed", "queue", queue, "error", termErr)
		}
		metrics.JobsTotal.WithLabelValues(queue, "term").Inc()
		return
	}

	logger.Warn(ctx, "job failed, will retry", "queue", queue, "error", err)
	if nakErr := d.Nak(); nakErr != nil {
		logger.Error(ctx, "nak failed", "queue", queue, "error", nakErr)
	}
	metrics.JobsTotal.WithLabelValues(queue, "nak").Inc()
}
