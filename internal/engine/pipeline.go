package engine

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"brownstone/server/internal/models"
)

// ErrInvalidProperty marks records rejected at the boundary (non-positive
// price or area). Distinct from the zero-denominator policy: a structurally
// broken record is refused rather than silently enriched with zeros.
var ErrInvalidProperty = errors.New("structurally invalid property record")

// Enricher runs the full valuation pipeline for one listing at a time. It is
// safe for concurrent use: the sale index and neighborhood table are read-only
// after construction and every Enrich call is a pure function of its inputs.
type Enricher struct {
	index         *SaleIndex
	neighborhoods map[string]*models.Neighborhood
	logger        *logrus.Logger
	validate      *validator.Validate
}

// NewEnricher builds an enricher over a pre-indexed sale pool.
func NewEnricher(index *SaleIndex, hoods []models.Neighborhood, logger *logrus.Logger) *Enricher {
	byName := make(map[string]*models.Neighborhood, len(hoods))
	for i := range hoods {
		byName[hoods[i].Name] = &hoods[i]
	}
	return &Enricher{
		index:         index,
		neighborhoods: byName,
		logger:        logger,
		validate:      validator.New(),
	}
}

// Enrich derives all metrics, flags and trend signals for a listing. refDate
// anchors comp-age windows and is stamped on the output; a batch passes one
// refDate to every call so reruns on identical inputs are byte-identical.
func (e *Enricher) Enrich(p *models.Property, refDate time.Time) (*models.EnrichedProperty, error) {
	if err := e.validate.Struct(p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidProperty, err)
	}

	historyValid := e.checkPriceHistory(p)
	cutCount := 0
	if historyValid {
		cutCount = PriceCutCount(len(p.PriceHistory))
	}
	totalCut := TotalCutPercent(p.OriginalPrice, p.CurrentPrice)

	comps := e.index.MatchComparables(p, refDate)
	trend := e.index.AnalyzeTrend(p, comps, e.neighborhoods[p.Neighborhood])

	return &models.EnrichedProperty{
		Property:        *p,
		Metrics:         CalculateMetrics(p),
		DistressFlag:    ClassifyDistress(totalCut, cutCount, p.DaysOnMarket),
		PriceCutCount:   cutCount,
		TotalCutPercent: totalCut,
		HistoryValid:    historyValid,
		Comps:           comps,
		Trend:           trend,
		ComputedAt:      refDate,
	}, nil
}

// checkPriceHistory reports whether the history sequence can be interpreted:
// non-empty, chronologically non-decreasing, last entry matching the current
// price. A malformed history is logged and flagged, and the price-cut count
// degrades to 0; the engine never invents a corrected sequence.
func (e *Enricher) checkPriceHistory(p *models.Property) bool {
	if len(p.PriceHistory) == 0 {
		return false
	}
	for i := 1; i < len(p.PriceHistory); i++ {
		if p.PriceHistory[i].Date.Before(p.PriceHistory[i-1].Date) {
			e.logger.WithFields(logrus.Fields{
				"property_id": p.ID,
				"entry":       i,
			}).Warn("Price history is not chronological")
			return false
		}
	}
	if last := p.PriceHistory[len(p.PriceHistory)-1].Price; last != p.CurrentPrice {
		e.logger.WithFields(logrus.Fields{
			"property_id":   p.ID,
			"last_entry":    last,
			"current_price": p.CurrentPrice,
		}).Warn("Price history does not end at the current price")
		return false
	}
	return true
}

// EnrichAll runs the pipeline over a catalog sequentially, skipping invalid
// records. The batch processor is the concurrent path; this is the simple one
// for tools and tests.
func (e *Enricher) EnrichAll(properties []*models.Property, refDate time.Time) []*models.EnrichedProperty {
	enriched := make([]*models.EnrichedProperty, 0, len(properties))
	for _, p := range properties {
		ep, err := e.Enrich(p, refDate)
		if err != nil {
			e.logger.WithError(err).WithField("property_id", p.ID).Error("Skipping invalid property")
			continue
		}
		enriched = append(enriched, ep)
	}
	return enriched
}
