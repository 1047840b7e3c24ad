package queue

import (
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"brownstone/server/internal/models"
)

var (
	ErrQueueFull   = errors.New("queue is full")
	ErrQueueClosed = errors.New("queue is closed")
)

// Batch is one unit of enrichment work. RefDate anchors every comp-age window
// in the batch so a rerun over identical inputs is byte-identical.
type Batch struct {
	RunID      string
	RefDate    time.Time
	Properties []*models.Property
}

// EnrichmentQueue is an in-memory queue of enrichment batches
type EnrichmentQueue struct {
	items    chan *Batch
	done     chan struct{}
	maxSize  int
	closed   bool
	mu       sync.RWMutex
	logger   *logrus.Logger
	handlers []func(*Batch) error
}

// NewEnrichmentQueue creates a new queue with the specified buffer size
func NewEnrichmentQueue(bufferSize int, logger *logrus.Logger) *EnrichmentQueue {
	return &EnrichmentQueue{
		items:    make(chan *Batch, bufferSize),
		done:     make(chan struct{}),
		maxSize:  bufferSize,
		logger:   logger,
		handlers: make([]func(*Batch) error, 0),
	}
}

// Push adds a batch of properties to the queue
func (q *EnrichmentQueue) Push(batch *Batch) error {
	q.mu.RLock()
	if q.closed {
		q.mu.RUnlock()
		return ErrQueueClosed
	}
	q.mu.RUnlock()

	// Non-blocking send to prevent deadlocks
	select {
	case q.items <- batch:
		q.logger.WithFields(logrus.Fields{
			"run_id":     batch.RunID,
			"batch_size": len(batch.Properties),
		}).Debug("Pushed batch to queue")
		return nil
	default:
		return ErrQueueFull
	}
}

// Subscribe adds a handler function that will be called for each batch
func (q *EnrichmentQueue) Subscribe(handler func(*Batch) error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.handlers = append(q.handlers, handler)
}

// Start begins processing items in the queue
func (q *EnrichmentQueue) Start() {
	go q.process()
}

// process handles the queue processing loop
func (q *EnrichmentQueue) process() {
	for {
		select {
		case <-q.done:
			return
		case batch, ok := <-q.items:
			// Close() closes the items channel; a receive after that yields
			// a nil batch that must never reach the handlers.
			if !ok || batch == nil {
				return
			}
			q.processBatch(batch)
		}
	}
}

// processBatch sends the batch to all subscribed handlers
func (q *EnrichmentQueue) processBatch(batch *Batch) {
	q.mu.RLock()
	handlers := q.handlers
	q.mu.RUnlock()

	for _, handler := range handlers {
		if err := handler(batch); err != nil {
			q.logger.WithError(err).WithField("run_id", batch.RunID).Error("Handler failed to process batch")
		}
	}
}

// Close stops the queue and prevents new items from being added
func (q *EnrichmentQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}

	q.closed = true
	close(q.done)
	close(q.items)
	return nil
}

// Len returns the current number of batches in the queue
func (q *EnrichmentQueue) Len() int {
	return len(q.items)
}

// IsClosed returns whether the queue has been closed
func (q *EnrichmentQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}
