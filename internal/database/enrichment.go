package database

import (
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"brownstone/server/internal/models"
)

// EnrichmentRecord is the persisted form of an EnrichedProperty: a handful of
// queryable columns for the presentation layer plus the full payload as JSON.
type EnrichmentRecord struct {
	PropertyID    int64  `gorm:"primaryKey"`
	RunID         string `gorm:"index"`
	DistressFlag  string
	TrendFlag     string
	ValueVsComps  string
	CapRate       float64
	PricePerSQFT  float64
	CompCount     int
	PriceVariance float64
	HistoryValid  bool
	Payload       string `gorm:"type:text"`
	ComputedAt    time.Time
}

func (EnrichmentRecord) TableName() string {
	return "enrichments"
}

// OpenEnrichmentStore opens the gorm handle used by the batch processor's
// write path and migrates the enrichments table.
func OpenEnrichmentStore(dbPath string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open enrichment store: %w", err)
	}
	if err := db.AutoMigrate(&EnrichmentRecord{}); err != nil {
		return nil, fmt.Errorf("failed to migrate enrichments table: %w", err)
	}
	return db, nil
}

// UpsertEnrichments persists a batch of enrichment results inside the given
// transaction, replacing any previous result for the same property.
func UpsertEnrichments(tx *gorm.DB, runID string, batch []*models.EnrichedProperty) error {
	if len(batch) == 0 {
		return nil
	}

	records := make([]EnrichmentRecord, 0, len(batch))
	for _, ep := range batch {
		payload, err := json.Marshal(ep)
		if err != nil {
			return fmt.Errorf("failed to marshal enrichment for property %d: %w", ep.Property.ID, err)
		}
		records = append(records, EnrichmentRecord{
			PropertyID:    ep.Property.ID,
			RunID:         runID,
			DistressFlag:  string(ep.DistressFlag),
			TrendFlag:     string(ep.Trend.Flag),
			ValueVsComps:  string(ep.Trend.ValueVsComps),
			CapRate:       ep.Metrics.CapRate,
			PricePerSQFT:  ep.Metrics.PricePerSQFT,
			CompCount:     ep.Trend.CompCount,
			PriceVariance: ep.Trend.PriceVariance,
			HistoryValid:  ep.HistoryValid,
			Payload:       string(payload),
			ComputedAt:    ep.ComputedAt,
		})
	}

	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "property_id"}},
		UpdateAll: true,
	}).Create(&records).Error
}
