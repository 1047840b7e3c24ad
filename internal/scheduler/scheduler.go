package scheduler

import (
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"brownstone/server/config"
	"brownstone/server/internal/database"
	"brownstone/server/internal/queue"
)

// refreshHour is when the nightly full re-enrichment runs (after the sales
// feed updates). Enrichment is idempotent, so an extra run is harmless.
const refreshHour = 2

// Scheduler triggers periodic re-enrichment of the whole catalog.
type Scheduler struct {
	db       *database.Database
	queue    *queue.EnrichmentQueue
	config   *config.Config
	logger   *logrus.Logger
	stopChan chan struct{}
	wg       sync.WaitGroup
	jobMutex sync.Mutex // Ensures sequential job execution
}

// NewScheduler creates a new scheduler
func NewScheduler(db *database.Database, q *queue.EnrichmentQueue, cfg *config.Config, logger *logrus.Logger) *Scheduler {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
		logger.SetOutput(os.Stdout)
		logger.SetLevel(logrus.InfoLevel)
	}

	return &Scheduler{
		db:       db,
		queue:    q,
		config:   cfg,
		logger:   logger,
		stopChan: make(chan struct{}),
	}
}

// Start begins the scheduled tasks
func (s *Scheduler) Start() {
	s.wg.Add(1)
	go s.runScheduler()
}

// Stop gracefully stops the scheduler
func (s *Scheduler) Stop() {
	close(s.stopChan)
	s.wg.Wait()
}

// runScheduler handles all scheduled tasks
func (s *Scheduler) runScheduler() {
	defer s.wg.Done()

	// Run an initial enrichment pass on startup
	go func() {
		s.jobMutex.Lock()
		defer s.jobMutex.Unlock()
		s.logger.Info("Running startup enrichment")
		s.TriggerRefresh()
		s.logger.Info("Startup enrichment queued")
	}()

	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case t := <-ticker.C:
			if t.Hour() == refreshHour && t.Minute() == 0 {
				s.jobMutex.Lock()
				s.logger.Info("Starting nightly re-enrichment")
				s.TriggerRefresh()
				s.jobMutex.Unlock()
			}
		}
	}
}

// TriggerRefresh loads the catalog and queues it for enrichment in batches.
// Every batch in a run shares one reference date, so the run's outputs are
// reproducible.
func (s *Scheduler) TriggerRefresh() {
	runID := uuid.NewString()
	refDate := time.Now()

	properties, err := s.db.GetAllProperties("", "")
	if err != nil {
		s.logger.WithError(err).Error("Failed to load properties for refresh")
		return
	}

	batchSize := s.config.Enrichment.MaxBatchSize
	if batchSize <= 0 {
		batchSize = 100
	}

	queued := 0
	for start := 0; start < len(properties); start += batchSize {
		end := start + batchSize
		if end > len(properties) {
			end = len(properties)
		}

		batch := &queue.Batch{
			RunID:   runID,
			RefDate: refDate,
		}
		for i := start; i < end; i++ {
			batch.Properties = append(batch.Properties, &properties[i])
		}

		if err := s.queue.Push(batch); err != nil {
			s.logger.WithError(err).WithFields(logrus.Fields{
				"run_id": runID,
				"offset": start,
			}).Error("Failed to queue enrichment batch")
			return
		}
		queued += len(batch.Properties)
	}

	s.logger.WithFields(logrus.Fields{
		"run_id":     runID,
		"properties": queued,
	}).Info("Queued catalog for enrichment")
}
