package processor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"brownstone/server/config"
	"brownstone/server/internal/database"
	"brownstone/server/internal/engine"
	"brownstone/server/internal/models"
	"brownstone/server/internal/queue"
)

// Notifier receives enrichment results worth alerting on. Implemented by the
// Telegram service; nil disables alerting.
type Notifier interface {
	NotifyOpportunity(ep *models.EnrichedProperty) error
}

// BatchProcessor runs the enrichment pipeline over property batches pulled
// from the queue. Batches are independent of each other and each batch is
// handed to exactly one worker; the sale index inside the enricher is
// read-only and shared.
type BatchProcessor struct {
	db        *gorm.DB
	enricher  *engine.Enricher
	logger    *logrus.Logger
	config    *config.Config
	queue     *queue.EnrichmentQueue
	notifier  Notifier
	work      chan *queue.Batch
	waitGroup sync.WaitGroup
	ctx       context.Context
	cancel    context.CancelFunc
}

// NewBatchProcessor creates a new batch processor instance
func NewBatchProcessor(db *gorm.DB, enricher *engine.Enricher, q *queue.EnrichmentQueue, cfg *config.Config, logger *logrus.Logger) *BatchProcessor {
	ctx, cancel := context.WithCancel(context.Background())
	return &BatchProcessor{
		db:       db,
		enricher: enricher,
		queue:    q,
		config:   cfg,
		logger:   logger,
		work:     make(chan *queue.Batch),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// SetNotifier wires an opportunity alerter into the processing path.
func (p *BatchProcessor) SetNotifier(n Notifier) {
	p.notifier = n
}

// Start registers a single handler on the queue and launches the worker
// goroutines. The queue invokes every subscribed handler per batch, so the
// subscription must happen once here, not once per worker; workers then
// compete for batches over the internal work channel.
func (p *BatchProcessor) Start() {
	p.queue.Subscribe(p.dispatch)

	workers := p.config.Enrichment.WorkerCount
	if workers <= 0 {
		workers = 1
	}
	for i := 0; i < workers; i++ {
		p.waitGroup.Add(1)
		go p.worker()
	}
}

// Stop gracefully shuts down the processor
func (p *BatchProcessor) Stop() {
	p.cancel()
	p.waitGroup.Wait()
}

// dispatch hands a batch from the queue to exactly one worker.
func (p *BatchProcessor) dispatch(batch *queue.Batch) error {
	select {
	case p.work <- batch:
		return nil
	case <-p.ctx.Done():
		return p.ctx.Err()
	}
}

// worker pulls batches from the work channel until the processor stops.
func (p *BatchProcessor) worker() {
	defer p.waitGroup.Done()

	for {
		select {
		case <-p.ctx.Done():
			return
		case batch := <-p.work:
			if err := p.processBatch(batch); err != nil {
				p.logger.WithError(err).WithField("run_id", batch.RunID).Error("Failed to process enrichment batch")
			}
		}
	}
}

// processBatch enriches a single batch and persists the results with
// transaction and retry logic.
func (p *BatchProcessor) processBatch(batch *queue.Batch) error {
	enriched := p.enrichBatch(batch)
	if len(enriched) == 0 {
		p.logger.WithField("run_id", batch.RunID).Warn("Batch produced no enrichable properties")
		return nil
	}

	var err error
	for attempt := 0; attempt <= p.config.Enrichment.MaxRetries; attempt++ {
		if attempt > 0 {
			p.logger.Infof("Retrying batch persistence, attempt %d of %d", attempt, p.config.Enrichment.MaxRetries)
			time.Sleep(time.Duration(p.config.Enrichment.RetryDelay) * time.Second)
		}

		err = p.db.Transaction(func(tx *gorm.DB) error {
			if err := database.UpsertEnrichments(tx, batch.RunID, enriched); err != nil {
				return fmt.Errorf("failed to upsert enrichment batch: %w", err)
			}
			return nil
		})

		if err == nil {
			p.logger.WithFields(logrus.Fields{
				"run_id": batch.RunID,
				"count":  len(enriched),
			}).Info("Successfully processed enrichment batch")
			p.notifyOpportunities(enriched)
			return nil
		}

		p.logger.Errorf("Batch persistence failed: %v", err)
	}

	return fmt.Errorf("failed to process batch after %d attempts: %w", p.config.Enrichment.MaxRetries, err)
}

// enrichBatch runs the pipeline over the batch with its fixed reference date.
// Invalid records are logged and skipped, never fatal to the batch.
func (p *BatchProcessor) enrichBatch(batch *queue.Batch) []*models.EnrichedProperty {
	enriched := make([]*models.EnrichedProperty, 0, len(batch.Properties))
	for _, prop := range batch.Properties {
		select {
		case <-p.ctx.Done():
			return enriched
		default:
		}

		ep, err := p.enricher.Enrich(prop, batch.RefDate)
		if err != nil {
			p.logger.WithError(err).WithFields(logrus.Fields{
				"run_id":      batch.RunID,
				"property_id": prop.ID,
			}).Error("Skipping property that failed validation")
			continue
		}
		enriched = append(enriched, ep)
	}
	return enriched
}

// notifyOpportunities alerts on listings that are both highly distressed and
// priced under their comp set.
func (p *BatchProcessor) notifyOpportunities(enriched []*models.EnrichedProperty) {
	if p.notifier == nil {
		return
	}
	for _, ep := range enriched {
		if ep.DistressFlag != models.DistressHigh || ep.Trend.ValueVsComps != models.ValueUnderpriced {
			continue
		}
		if err := p.notifier.NotifyOpportunity(ep); err != nil {
			p.logger.WithError(err).WithField("property_id", ep.Property.ID).Error("Failed to send opportunity alert")
		}
	}
}
