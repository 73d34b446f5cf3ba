package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/filesmanager/internal/logging"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

const (
	// StreamName is the JetStream stream holding every job subject.
	StreamName = "FILESMANAGER_JOBS"
	// SubjectPrefix prefixes each logical queue subject.
	SubjectPrefix = "jobs."
	// DeadLetterPrefix prefixes the per-queue dead-letter subject.
	DeadLetterPrefix = "jobs.dead."
)

// NATSOptions configures the JetStream backend.
type NATSOptions struct {
	URL        string
	MaxDeliver int
	AckWait    time.Duration
}

// NATSQueue implements Queue on a JetStream work-queue stream with one
// durable consumer per logical queue.
type NATSQueue struct {
	nc     *nats.Conn
	js     jetstream.JetStream
	stream jetstream.Stream
	opts   NATSOptions
	logger logging.Logger
}

// Subject returns the subject jobs of queue are published on.
func Subject(queue string) string {
	return SubjectPrefix + queue
}

// DeadLetterSubject returns the subject failed jobs of queue are copied to.
func DeadLetterSubject(queue string) string {
	return DeadLetterPrefix + queue
}

// OpenNATS connects to NATS and creates or updates the job stream.
func OpenNATS(ctx context.Context, opts NATSOptions, logger logging.Logger) (*NATSQueue, error) {
	nc, err := nats.Connect(opts.URL,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	stream, err := js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:        StreamName,
		Description: "File manager background jobs",
		Subjects:    []string{SubjectPrefix + ">"},
		Retention:   jetstream.WorkQueuePolicy,
		MaxAge:      7 * 24 * time.Hour,
		Storage:     jetstream.FileStorage,
		Replicas:    1,
	})
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("failed to create stream: %w", err)
	}

	q := &NATSQueue{
		nc:     nc,
		js:     js,
		stream: stream,
		opts:   opts,
		logger: logger.With("component", "nats_queue"),
	}
	q.logger.Info(ctx, "connected to NATS", "url", opts.URL, "stream", StreamName)
	return q, nil
}

func (q *NATSQueue) Publish(ctx context.Context, queue string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal job: %w", err)
	}

	ack, err := q.js.Publish(ctx, Subject(queue), data)
	if err != nil {
		return fmt.Errorf("failed to publish job: %w", err)
	}

	q.logger.Debug(ctx, "job published", "queue", queue, "sequence", ack.Sequence)
	return nil
}

func (q *NATSQueue) deadLetter(ctx context.Context, queue string, data []byte, reason string) error {
	msg := nats.NewMsg(DeadLetterSubject(queue))
	msg.Data = data
	msg.Header.Set("X-Failure-Reason", reason)

	if _, err := q.js.PublishMsg(ctx, msg); err != nil {
		return fmt.Errorf("failed to publish to dead-letter: %w", err)
	}
	return nil
}

// Consume creates (or reuses) the durable consumer "<queue>-workers" and
// processes messages until ctx is done. Several goroutines may consume the
// same queue; JetStream spreads messages between them.
func (q *NATSQueue) Consume(ctx context.Context, queue string, h Handler) error {
	name := queue + "-workers"
	consumer, err := q.stream.CreateOrUpdateConsumer(ctx, jetstream.ConsumerConfig{
		Name:          name,
		Durable:       name,
		AckPolicy:     jetstream.AckExplicitPolicy,
		AckWait:       q.opts.AckWait,
		MaxDeliver:    q.opts.MaxDeliver,
		FilterSubject: Subject(queue),
	})
	if err != nil {
		return fmt.Errorf("failed to create consumer: %w", err)
	}

	iter, err := consumer.Messages()
	if err != nil {
		return fmt.Errorf("failed to create message iterator: %w", err)
	}

	stop := context.AfterFunc(ctx, iter.Stop)
	defer stop()

	for {
		msg, err := iter.Next()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, jetstream.ErrMsgIteratorClosed) {
				return nil
			}
			q.logger.Warn(ctx, "error fetching message", "queue", queue, "error", err)
			continue
		}
		settle(ctx, q.logger, q, queue, q.opts.MaxDeliver, natsDelivery{msg}, h)
	}
}

func (q *NATSQueue) Ping(context.Context) error {
	if !q.nc.IsConnected() {
		return fmt.Errorf("nats: %s", q.nc.Status())
	}
	return nil
}

func (q *NATSQueue) Close() error {
	if err := q.nc.Drain(); err != nil {
		q.nc.Close()
		return err
	}
	return nil
}

type natsDelivery struct {
	jetstream.Msg
}

func (d natsDelivery) NumDelivered() uint64 {
	md, err := d.Metadata()
	if err != nil || md == nil {
		return 1
	}
	return md.NumDelivered
}
