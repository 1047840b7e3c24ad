package main

import (
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"brownstone/server/config"
	"brownstone/server/internal/api"
	"brownstone/server/internal/database"
	"brownstone/server/internal/engine"
	"brownstone/server/internal/notify"
	"brownstone/server/internal/processor"
	"brownstone/server/internal/queue"
	"brownstone/server/internal/scheduler"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.WithError(err).Fatal("Failed to load configuration")
	}

	// Get the current working directory
	currentDir, err := os.Getwd()
	if err != nil {
		logger.WithError(err).Fatal("Failed to get current directory")
	}

	dbPath := filepath.Join(currentDir, "database", "brownstone.db")
	logger.Infof("Using database at: %s", dbPath)

	// Initialize database
	db, err := database.NewDatabase(dbPath)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize database")
	}
	defer db.Close()

	logger.Info("Running database migrations...")
	if err := db.RunMigrations(); err != nil {
		logger.WithError(err).Fatal("Failed to run database migrations")
	}

	// Build the read-only sale index before any matching starts
	sales, err := db.GetAllComparableSales(engine.IndexLookbackMonths)
	if err != nil {
		logger.WithError(err).Fatal("Failed to load comparable sales")
	}
	index := engine.NewSaleIndex(sales)
	logger.Infof("Indexed %d comparable sales (%d in raw pool)", index.Len(), len(sales))

	hoods, err := db.GetNeighborhoods()
	if err != nil {
		logger.WithError(err).Fatal("Failed to load neighborhoods")
	}

	enricher := engine.NewEnricher(index, hoods, logger)
	scorer := engine.NewScorer(config.NewStationIndex())

	// Enrichment write path: queue -> workers -> gorm upsert
	enrichStore, err := database.OpenEnrichmentStore(dbPath)
	if err != nil {
		logger.WithError(err).Fatal("Failed to open enrichment store")
	}

	enrichQueue := queue.NewEnrichmentQueue(cfg.Enrichment.QueueSize, logger)
	batchProcessor := processor.NewBatchProcessor(enrichStore, enricher, enrichQueue, cfg, logger)

	telegramService := notify.NewService(logger, cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Telegram.Enabled)
	batchProcessor.SetNotifier(telegramService)

	enrichQueue.Start()
	batchProcessor.Start()
	defer batchProcessor.Stop()

	refreshScheduler := scheduler.NewScheduler(db, enrichQueue, cfg, logger)
	refreshScheduler.Start()
	defer refreshScheduler.Stop()

	// API
	handler := api.NewHandler(db, enricher, scorer, logger)
	router := gin.Default()
	api.SetupRoutes(router, handler)

	const port = "5250"
	logger.Infof("Starting server on port %s", port)
	if err := router.Run(":" + port); err != nil {
		logger.WithError(err).Fatal("Server failed to start")
	}
}
