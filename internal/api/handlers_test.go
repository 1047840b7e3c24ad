package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"brownstone/server/internal/database"
	"brownstone/server/internal/engine"
	"brownstone/server/internal/models"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testRouter(t *testing.T) (*gin.Engine, *database.Database) {
	t.Helper()

	db, err := database.NewDatabase(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, db.RunMigrations())

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	enricher := engine.NewEnricher(engine.NewSaleIndex(nil), nil, logger)
	scorer := engine.NewScorer(nil)
	handler := NewHandler(db, enricher, scorer, logger)

	router := gin.New()
	SetupRoutes(router, handler)
	return router, db
}

func seedProperty(t *testing.T, db *database.Database, neighborhood string, price float64) int64 {
	t.Helper()
	res, err := db.GetDB().Exec(`
		INSERT INTO properties (
			bbl, address, neighborhood, borough, zip_code,
			current_price, original_price, days_on_market,
			bedrooms, bathrooms, sqft, monthly_hoa, estimated_monthly_rent, status
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		"1012340001", "123 W 23rd St", neighborhood, "Manhattan", "10001",
		price, price, 30,
		2, 2.0, 1000, 800, 4500, "Active",
	)
	require.NoError(t, err)
	id, err := res.LastInsertId()
	require.NoError(t, err)
	return id
}

func TestGetAllProperties(t *testing.T) {
	router, db := testRouter(t)
	seedProperty(t, db, "Chelsea", 1_000_000)
	seedProperty(t, db, "Astoria", 750_000)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/properties", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var enriched []models.EnrichedProperty
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &enriched))
	assert.Len(t, enriched, 2)
	assert.NotZero(t, enriched[0].Metrics.PricePerSQFT)
}

func TestGetAllProperties_NeighborhoodFilter(t *testing.T) {
	router, db := testRouter(t)
	seedProperty(t, db, "Chelsea", 1_000_000)
	seedProperty(t, db, "Astoria", 750_000)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/properties?neighborhood=Chelsea", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var enriched []models.EnrichedProperty
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &enriched))
	require.Len(t, enriched, 1)
	assert.Equal(t, "Chelsea", enriched[0].Property.Neighborhood)
}

func TestGetPropertyComps(t *testing.T) {
	router, db := testRouter(t)
	id := seedProperty(t, db, "Chelsea", 1_000_000)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/api/properties/%d/comps", id), nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		PropertyID int64              `json:"property_id"`
		Trend      models.TrendSummary `json:"trend"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, id, body.PropertyID)
	// Empty sale pool: insufficiency is explicit.
	assert.Equal(t, models.TrendInsufficientData, body.Trend.Flag)
}

func TestGetPropertyComps_Errors(t *testing.T) {
	router, db := testRouter(t)
	seedProperty(t, db, "Chelsea", 1_000_000)

	t.Run("bad id", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/properties/abc/comps", nil)
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("not found", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/properties/9999/comps", nil)
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestSearchProperties(t *testing.T) {
	router, db := testRouter(t)
	seedProperty(t, db, "Chelsea", 800_000)
	seedProperty(t, db, "Chelsea", 1_500_000)

	maxPrice := 1_000_000.0
	body, err := json.Marshal(SearchRequest{
		Criteria: models.SearchCriteria{PriceMax: &maxPrice},
	})
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/search", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Total   int                        `json:"total"`
		Results []models.EnrichedProperty `json:"results"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, 2, resp.Total)
	require.Len(t, resp.Results, 2)

	// The in-budget listing ranks first; the over-budget one loses the whole
	// price component.
	assert.Equal(t, 800_000.0, resp.Results[0].Property.CurrentPrice)
	require.NotNil(t, resp.Results[0].Score)
	assert.Greater(t, resp.Results[0].Score.Total, resp.Results[1].Score.Total)
}

func TestSearchProperties_Limit(t *testing.T) {
	router, db := testRouter(t)
	seedProperty(t, db, "Chelsea", 800_000)
	seedProperty(t, db, "Chelsea", 900_000)
	seedProperty(t, db, "Chelsea", 950_000)

	body, err := json.Marshal(SearchRequest{Limit: 2})
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/search", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Total   int               `json:"total"`
		Results []json.RawMessage `json:"results"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 3, resp.Total)
	assert.Len(t, resp.Results, 2)
}

func TestSearchProperties_BadRequest(t *testing.T) {
	router, _ := testRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/search", bytes.NewReader([]byte("{not json")))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetMarketStats(t *testing.T) {
	router, db := testRouter(t)
	seedProperty(t, db, "Chelsea", 1_000_000)
	seedProperty(t, db, "Chelsea", 2_000_000)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/stats", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var stats MarketStats
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	assert.Equal(t, 2, stats.TotalProperties)
	assert.Equal(t, 1_500_000.0, stats.AveragePrice)
}

func TestSummarize(t *testing.T) {
	assert.Equal(t, MarketStats{}, summarize(nil))

	enriched := []*models.EnrichedProperty{
		{
			Property:     models.Property{CurrentPrice: 1_000_000, DaysOnMarket: 20},
			Metrics:      models.Metrics{PricePerSQFT: 1000, CapRate: 3},
			DistressFlag: models.DistressHigh,
			Trend:        models.TrendSummary{ValueVsComps: models.ValueUnderpriced},
		},
		{
			Property:     models.Property{CurrentPrice: 2_000_000, DaysOnMarket: 40},
			Metrics:      models.Metrics{PricePerSQFT: 0, CapRate: 0}, // unknown, excluded from averages
			DistressFlag: models.DistressMedium,
		},
	}

	stats := summarize(enriched)
	assert.Equal(t, 2, stats.TotalProperties)
	assert.Equal(t, 1_500_000.0, stats.AveragePrice)
	assert.Equal(t, 30.0, stats.AvgDaysOnMarket)
	assert.Equal(t, 1000.0, stats.AveragePPSF)
	assert.Equal(t, 3.0, stats.AvgCapRate)
	assert.Equal(t, 1, stats.HighDistress)
	assert.Equal(t, 1, stats.MediumDistress)
	assert.Equal(t, 1, stats.Underpriced)
}
