package api

import (
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"brownstone/server/internal/database"
	"brownstone/server/internal/engine"
	"brownstone/server/internal/models"
)

type Handler struct {
	db       *database.Database
	logger   *logrus.Logger
	enricher *engine.Enricher
	scorer   *engine.Scorer
}

// SearchRequest carries the parsed buyer criteria plus paging controls.
type SearchRequest struct {
	Criteria models.SearchCriteria `json:"criteria"`
	Limit    int                   `json:"limit"`
}

// MarketStats is the aggregate summary for the current listing set.
type MarketStats struct {
	TotalProperties int     `json:"total_properties"`
	AveragePrice    float64 `json:"average_price"`
	AveragePPSF     float64 `json:"average_ppsf"`
	AvgDaysOnMarket float64 `json:"avg_days_on_market"`
	AvgCapRate      float64 `json:"avg_cap_rate"`
	HighDistress    int     `json:"high_distress"`
	MediumDistress  int     `json:"medium_distress"`
	Underpriced     int     `json:"underpriced"`
}

func NewHandler(db *database.Database, enricher *engine.Enricher, scorer *engine.Scorer, logger *logrus.Logger) *Handler {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
		logger.SetOutput(os.Stdout)
	}

	return &Handler{
		db:       db,
		logger:   logger,
		enricher: enricher,
		scorer:   scorer,
	}
}

// loadEnriched reads listings from storage and runs the pipeline over them.
func (h *Handler) loadEnriched(neighborhood, status string) ([]*models.EnrichedProperty, error) {
	properties, err := h.db.GetAllProperties(neighborhood, status)
	if err != nil {
		return nil, err
	}

	refs := make([]*models.Property, len(properties))
	for i := range properties {
		refs[i] = &properties[i]
	}
	return h.enricher.EnrichAll(refs, time.Now()), nil
}

// GetAllProperties returns every listing with its derived metrics and flags.
func (h *Handler) GetAllProperties(c *gin.Context) {
	neighborhood := c.Query("neighborhood")
	status := c.Query("status")

	enriched, err := h.loadEnriched(neighborhood, status)
	if err != nil {
		h.logger.WithError(err).Error("Failed to get properties")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get properties"})
		return
	}

	c.JSON(http.StatusOK, enriched)
}

// GetPropertyComps returns the matched comparable set and trend signal for
// one listing.
func (h *Handler) GetPropertyComps(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid property id"})
		return
	}

	property, err := h.db.GetPropertyByID(id)
	if err != nil {
		h.logger.WithError(err).Error("Failed to get property")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get property"})
		return
	}
	if property == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Property not found"})
		return
	}

	enriched, err := h.enricher.Enrich(property, time.Now())
	if err != nil {
		h.logger.WithError(err).WithField("property_id", id).Error("Failed to enrich property")
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"property_id": id,
		"comps":       enriched.Comps,
		"trend":       enriched.Trend,
	})
}

// SearchProperties ranks the catalog against parsed buyer criteria.
func (h *Handler) SearchProperties(c *gin.Context) {
	var req SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.WithError(err).Error("Failed to parse search request")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid search request"})
		return
	}

	// Criteria may scope the search to specific neighborhoods; the rest of
	// the preferences are weighted by the scorer, not filtered here.
	neighborhood := ""
	if len(req.Criteria.Neighborhoods) == 1 {
		neighborhood = req.Criteria.Neighborhoods[0]
	}

	enriched, err := h.loadEnriched(neighborhood, "")
	if err != nil {
		h.logger.WithError(err).Error("Failed to load properties for search")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to run search"})
		return
	}

	h.scorer.Rank(enriched, &req.Criteria)

	limit := req.Limit
	if limit <= 0 || limit > len(enriched) {
		limit = len(enriched)
	}

	c.JSON(http.StatusOK, gin.H{
		"total":   len(enriched),
		"results": enriched[:limit],
	})
}

// GetMarketStats returns the aggregate summary across current listings.
func (h *Handler) GetMarketStats(c *gin.Context) {
	enriched, err := h.loadEnriched(c.Query("neighborhood"), "")
	if err != nil {
		h.logger.WithError(err).Error("Failed to get market stats")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get market stats"})
		return
	}

	c.JSON(http.StatusOK, summarize(enriched))
}

func summarize(enriched []*models.EnrichedProperty) MarketStats {
	stats := MarketStats{TotalProperties: len(enriched)}
	if len(enriched) == 0 {
		return stats
	}

	var priceSum, ppsfSum, domSum, capSum float64
	var ppsfCount, capCount int
	for _, ep := range enriched {
		priceSum += ep.Property.CurrentPrice
		domSum += float64(ep.Property.DaysOnMarket)
		if ep.Metrics.PricePerSQFT > 0 {
			ppsfSum += ep.Metrics.PricePerSQFT
			ppsfCount++
		}
		if ep.Metrics.CapRate > 0 {
			capSum += ep.Metrics.CapRate
			capCount++
		}
		switch ep.DistressFlag {
		case models.DistressHigh:
			stats.HighDistress++
		case models.DistressMedium:
			stats.MediumDistress++
		}
		if ep.Trend.ValueVsComps == models.ValueUnderpriced {
			stats.Underpriced++
		}
	}

	n := float64(len(enriched))
	stats.AveragePrice = priceSum / n
	stats.AvgDaysOnMarket = domSum / n
	if ppsfCount > 0 {
		stats.AveragePPSF = ppsfSum / float64(ppsfCount)
	}
	if capCount > 0 {
		stats.AvgCapRate = capSum / float64(capCount)
	}
	return stats
}
