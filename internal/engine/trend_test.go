package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"brownstone/server/internal/models"
)

// Comps with a known prior-year sale: yoy changes of 6.4, 5.1, 7.2, 4.8 and
// 3.9 percent over a $1000/sqft baseline.
func risingMatches() []models.CompMatch {
	prices := []float64{1_064_000, 1_051_000, 1_072_000, 1_048_000, 1_039_000}

	var matches []models.CompMatch
	for i, price := range prices {
		matches = append(matches, models.CompMatch{
			Quality: models.QualityGood,
			Sale: models.ComparableSale{
				ID:                 int64(i + 1),
				BBL:                "1012340012",
				SQFT:               1000,
				SalePrice:          price,
				PriorYearSalePrice: 1_000_000,
				SaleDate:           time.Date(2025, 10, 1, 0, 0, 0, 0, time.UTC),
			},
		})
	}
	return matches
}

func TestAnalyzeTrend_Rising(t *testing.T) {
	idx := NewSaleIndex(nil)
	target := &models.Property{CurrentPrice: 1_000_000, SQFT: floatPtr(1000)}

	summary := idx.AnalyzeTrend(target, risingMatches(), nil)

	assert.Equal(t, 5.48, summary.AvgYoYChange)
	assert.Equal(t, models.TrendRising, summary.Flag)
	assert.Equal(t, models.BaselineSameUnit, summary.BaselineTier)
	assert.Equal(t, 5, summary.CompCount)
	// Median of 1064, 1051, 1072, 1048, 1039.
	assert.Equal(t, 1051.0, summary.MedianCompPPSF)
	assert.Equal(t, -4.85, summary.PriceVariance)
	assert.Equal(t, models.ValueFair, summary.ValueVsComps)
}

func TestAnalyzeTrend_ValueLabels(t *testing.T) {
	idx := NewSaleIndex(nil)

	tests := []struct {
		name         string
		price        float64
		wantVariance float64
		wantLabel    models.ValueLabel
	}{
		{"underpriced", 900_000, -14.37, models.ValueUnderpriced},
		{"fair", 1_000_000, -4.85, models.ValueFair},
		{"overpriced", 1_200_000, 14.18, models.ValueOverpriced},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			target := &models.Property{CurrentPrice: tt.price, SQFT: floatPtr(1000)}
			summary := idx.AnalyzeTrend(target, risingMatches(), nil)
			assert.Equal(t, tt.wantVariance, summary.PriceVariance)
			assert.Equal(t, tt.wantLabel, summary.ValueVsComps)
		})
	}
}

func TestAnalyzeTrend_InsufficientComps(t *testing.T) {
	idx := NewSaleIndex(nil)
	target := &models.Property{CurrentPrice: 1_000_000, SQFT: floatPtr(1000)}

	summary := idx.AnalyzeTrend(target, risingMatches()[:2], nil)

	assert.Equal(t, models.TrendInsufficientData, summary.Flag)
	assert.Equal(t, models.ValueInsufficientData, summary.ValueVsComps)
	assert.Equal(t, 2, summary.CompCount)
	assert.NotEqual(t, models.TrendStable, summary.Flag)
}

func TestAnalyzeTrend_NoBaselines(t *testing.T) {
	// Enough comps but no resolvable prior-year baseline for any of them:
	// the trend is Stable with no yoy evidence, not insufficient.
	matches := risingMatches()
	for i := range matches {
		matches[i].Sale.PriorYearSalePrice = 0
		matches[i].Sale.BBL = ""
	}

	idx := NewSaleIndex(nil)
	target := &models.Property{CurrentPrice: 1_000_000, SQFT: floatPtr(1000)}

	summary := idx.AnalyzeTrend(target, matches, nil)

	assert.Equal(t, models.TrendStable, summary.Flag)
	assert.Equal(t, 0.0, summary.AvgYoYChange)
	assert.Equal(t, models.BaselineNone, summary.BaselineTier)
	// The comp median is still computable, so the value label is too.
	assert.Equal(t, models.ValueFair, summary.ValueVsComps)
}

func TestAnalyzeTrend_NeighborhoodBaseline(t *testing.T) {
	matches := risingMatches()
	for i := range matches {
		matches[i].Sale.PriorYearSalePrice = 0
		matches[i].Sale.BBL = ""
	}

	idx := NewSaleIndex(nil)
	target := &models.Property{CurrentPrice: 1_000_000, SQFT: floatPtr(1000)}
	hood := &models.Neighborhood{Name: "Chelsea", MedianPricePerSQFT: 1000}

	summary := idx.AnalyzeTrend(target, matches, hood)

	assert.Equal(t, models.BaselineNeighborhood, summary.BaselineTier)
	assert.Equal(t, 5.48, summary.AvgYoYChange)
	assert.Equal(t, models.TrendRising, summary.Flag)
}

func TestBaselinePPSF_Priority(t *testing.T) {
	saleDate := time.Date(2025, 10, 1, 0, 0, 0, 0, time.UTC)
	hood := &models.Neighborhood{Name: "Chelsea", MedianPricePerSQFT: 950}

	// Two same-building, same-bedroom sales inside the 12-18-month window
	// before saleDate, at $1000/sqft.
	idx := NewSaleIndex([]models.ComparableSale{
		{ID: 10, BBL: "1055550002", Bedrooms: intPtr(2), SQFT: 1000,
			SalePrice: 1_000_000, SaleDate: saleDate.AddDate(0, -14, 0), SaleType: models.SaleTypeArmsLength},
		{ID: 11, BBL: "1055550003", Bedrooms: intPtr(2), SQFT: 1000,
			SalePrice: 1_000_000, SaleDate: saleDate.AddDate(0, -16, 0), SaleType: models.SaleTypeArmsLength},
	})

	t.Run("same unit wins", func(t *testing.T) {
		sale := &models.ComparableSale{ID: 1, BBL: "1055550001", SQFT: 1000,
			PriorYearSalePrice: 1_100_000, SaleDate: saleDate, Bedrooms: intPtr(2)}
		ppsf, tier := idx.baselinePPSF(sale, hood)
		assert.Equal(t, 1100.0, ppsf)
		assert.Equal(t, models.BaselineSameUnit, tier)
	})

	t.Run("building median next", func(t *testing.T) {
		sale := &models.ComparableSale{ID: 1, BBL: "1055550001", SQFT: 1000,
			SaleDate: saleDate, Bedrooms: intPtr(2)}
		ppsf, tier := idx.baselinePPSF(sale, hood)
		assert.Equal(t, 1000.0, ppsf)
		assert.Equal(t, models.BaselineBuilding, tier)
	})

	t.Run("neighborhood median last", func(t *testing.T) {
		sale := &models.ComparableSale{ID: 1, BBL: "1099990001", SQFT: 1000,
			SaleDate: saleDate, Bedrooms: intPtr(2)}
		ppsf, tier := idx.baselinePPSF(sale, hood)
		assert.Equal(t, 950.0, ppsf)
		assert.Equal(t, models.BaselineNeighborhood, tier)
	})

	t.Run("nothing resolvable", func(t *testing.T) {
		sale := &models.ComparableSale{ID: 1, BBL: "1099990001", SQFT: 1000,
			SaleDate: saleDate, Bedrooms: intPtr(2)}
		ppsf, tier := idx.baselinePPSF(sale, nil)
		assert.Equal(t, 0.0, ppsf)
		assert.Equal(t, models.BaselineNone, tier)
	})
}

func TestBuildingMedianPPSF_WindowBounds(t *testing.T) {
	saleDate := time.Date(2025, 10, 1, 0, 0, 0, 0, time.UTC)

	idx := NewSaleIndex([]models.ComparableSale{
		// Inside the window.
		{ID: 1, BBL: "1055550002", Bedrooms: intPtr(2), SQFT: 1000,
			SalePrice: 1_000_000, SaleDate: saleDate.AddDate(0, -13, 0), SaleType: models.SaleTypeArmsLength},
		// Too recent (under 12 months prior).
		{ID: 2, BBL: "1055550003", Bedrooms: intPtr(2), SQFT: 1000,
			SalePrice: 2_000_000, SaleDate: saleDate.AddDate(0, -6, 0), SaleType: models.SaleTypeArmsLength},
		// Too old (over 18 months prior).
		{ID: 3, BBL: "1055550004", Bedrooms: intPtr(2), SQFT: 1000,
			SalePrice: 3_000_000, SaleDate: saleDate.AddDate(0, -20, 0), SaleType: models.SaleTypeArmsLength},
		// In the window but different bedroom count.
		{ID: 4, BBL: "1055550005", Bedrooms: intPtr(3), SQFT: 1000,
			SalePrice: 4_000_000, SaleDate: saleDate.AddDate(0, -14, 0), SaleType: models.SaleTypeArmsLength},
	})

	m := idx.buildingMedianPPSF("1055550", intPtr(2), saleDate, 99)
	assert.Equal(t, 1000.0, m)
}
