package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/filesmanager/internal/common"
	"github.com/dmitrijs2005/filesmanager/internal/logging"
)

// DeadLetter is a job that was given up on.
type DeadLetter struct {
	Data   []byte
	Reason string
}

// MemoryQueue is an in-process Queue backed by buffered channels. It keeps
// the redelivery and dead-letter semantics of the NATS backend.
type MemoryQueue struct {
	mu         sync.Mutex
	chans      map[string]chan *memoryMsg
	dead       map[string][]DeadLetter
	closed     bool
	done       chan struct{}
	inflight   sync.WaitGroup
	size       int
	maxDeliver int
	logger     logging.Logger
}

func NewMemoryQueue(size, maxDeliver int, logger logging.Logger) *MemoryQueue {
	return &MemoryQueue{
		chans:      make(map[string]chan *memoryMsg),
		dead:       make(map[string][]DeadLetter),
		done:       make(chan struct{}),
		size:       size,
		maxDeliver: maxDeliver,
		logger:     logger.With("component", "memory_queue"),
	}
}

func (q *MemoryQueue) channel(queue string) (chan *memoryMsg, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil, common.ErrQueueClosed
	}
	ch, ok := q.chans[queue]
	if !ok {
		ch = make(chan *memoryMsg, q.size)
		q.chans[queue] = ch
	}
	return ch, nil
}

func (q *MemoryQueue) Publish(ctx context.Context, queue string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal job: %w", err)
	}
	return q.enqueue(ctx, &memoryMsg{q: q, queue: queue, data: data})
}

func (q *MemoryQueue) enqueue(ctx context.Context, m *memoryMsg) error {
	ch, err := q.channel(m.queue)
	if err != nil {
		return err
	}
	m.delivered++
	select {
	case ch <- m:
		return nil
	case <-q.done:
		return common.ErrQueueClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (q *MemoryQueue) Consume(ctx context.Context, queue string, h Handler) error {
	ch, err := q.channel(queue)
	if err != nil {
		return err
	}
	for {
		select {
		case <-ctx.Done():
			return nil
		case m := <-ch:
			settle(ctx, q.logger, q, queue, q.maxDeliver, m, h)
		}
	}
}

func (q *MemoryQueue) deadLetter(_ context.Context, queue string, data []byte, reason string) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.dead[queue] = append(q.dead[queue], DeadLetter{Data: data, Reason: reason})
	return nil
}

// DeadLetters returns the jobs of queue that were given up on.
func (q *MemoryQueue) DeadLetters(queue string) []DeadLetter {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]DeadLetter(nil), q.dead[queue]...)
}

// Pending returns the number of jobs waiting in queue.
func (q *MemoryQueue) Pending(queue string) int {
	ch, err := q.channel(queue)
	if err != nil {
		return 0
	}
	return len(ch)
}

func (q *MemoryQueue) Ping(context.Context) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return common.ErrQueueClosed
	}
	return nil
}

// Close stops accepting jobs and waits for pending redeliveries to give up.
func (q *MemoryQueue) Close() error {
	q.mu.Lock()
	if !q.closed {
		q.closed = true
		close(q.done)
	}
	q.mu.Unlock()

	q.inflight.Wait()
	return nil
}

type memoryMsg struct {
	q         *MemoryQueue
	queue     string
	data      []byte
	delivered uint64
}

func (m *memoryMsg) Data() []byte         { return m.data }
func (m *memoryMsg) NumDelivered() uint64 { return m.delivered }
func (m *memoryMsg) Ack() error           { return nil }
func (m *memoryMsg) Term() error          { return nil }

// Nak puts the job back without blocking the consumer loop. The redelivery
// is dropped once the queue is closed.
func (m *memoryMsg) Nak() error {
	m.q.mu.Lock()
	if m.q.closed {
		m.q.mu.Unlock()
		return nil
	}
	m.q.inflight.Add(1)
	m.q.mu.Unlock()

	go func() {
		defer m.q.inflight.Done()
		if err := m.q.enqueue(context.Background(), m); err != nil {
			m.q.logger.Warn(context.Background(), "redelivery dropped", "queue", m.queue, "error", err)
		}
	}()
	return nil
}
