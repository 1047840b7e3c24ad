package engine

import (
	"brownstone/server/internal/models"
)

// Trend classification thresholds, in percent.
const (
	risingThreshold    = 5.0
	decliningThreshold = -5.0

	underpricedThreshold = -10.0
	overpricedThreshold  = 10.0
)

// AnalyzeTrend aggregates a matched comp set into a year-over-year trend flag
// and a listing-vs-market variance label. With fewer than MinViableComps
// matches the result is an explicit insufficient-data state, never "Stable".
// hood may be nil when the listing's neighborhood has no aggregate record.
func (idx *SaleIndex) AnalyzeTrend(target *models.Property, matches []models.CompMatch, hood *models.Neighborhood) models.TrendSummary {
	summary := models.TrendSummary{
		CompCount:    len(matches),
		BaselineTier: models.BaselineNone,
	}

	if len(matches) < MinViableComps {
		summary.Flag = models.TrendInsufficientData
		summary.ValueVsComps = models.ValueInsufficientData
		return summary
	}

	var (
		ppsfs       []float64
		yoySum      float64
		yoyCount    int
		weakestTier models.BaselineTier
	)

	for i := range matches {
		sale := &matches[i].Sale
		ppsf := sale.PricePerSQFT()
		if ppsf <= 0 {
			continue
		}
		ppsfs = append(ppsfs, ppsf)

		priorPPSF, tier := idx.baselinePPSF(sale, hood)
		if priorPPSF <= 0 {
			continue
		}
		yoySum += (ppsf - priorPPSF) / priorPPSF * 100
		yoyCount++
		if tier > weakestTier {
			weakestTier = tier
		}
	}

	if yoyCount > 0 {
		summary.AvgYoYChange = round2(yoySum / float64(yoyCount))
		summary.BaselineTier = weakestTier
	}

	switch {
	case yoyCount == 0:
		summary.Flag = models.TrendStable
	case summary.AvgYoYChange > risingThreshold:
		summary.Flag = models.TrendRising
	case summary.AvgYoYChange < decliningThreshold:
		summary.Flag = models.TrendDeclining
	default:
		summary.Flag = models.TrendStable
	}

	summary.MedianCompPPSF = round2(median(ppsfs))

	listingPPSF := safeRatio(target.CurrentPrice, target.Area())
	if summary.MedianCompPPSF > 0 && listingPPSF > 0 {
		summary.PriceVariance = round2((listingPPSF - summary.MedianCompPPSF) / summary.MedianCompPPSF * 100)
		switch {
		case summary.PriceVariance < underpricedThreshold:
			summary.ValueVsComps = models.ValueUnderpriced
		case summary.PriceVariance > overpricedThreshold:
			summary.ValueVsComps = models.ValueOverpriced
		default:
			summary.ValueVsComps = models.ValueFair
		}
	} else {
		summary.ValueVsComps = models.ValueInsufficientData
	}

	return summary
}

// baselinePPSF resolves a comp's prior-year per-area price. Priority: the
// unit's own prior-year sale, then the building median from the prior
// 12-18-month window, then the neighborhood median. The tier affects
// confidence reporting, not the YoY formula.
func (idx *SaleIndex) baselinePPSF(sale *models.ComparableSale, hood *models.Neighborhood) (float64, models.BaselineTier) {
	if sale.PriorYearSalePrice > 0 && sale.SQFT > 0 {
		return sale.PriorYearSalePrice / sale.SQFT, models.BaselineSameUnit
	}

	if m := idx.buildingMedianPPSF(models.ParcelPrefix(sale.BBL), sale.Bedrooms, sale.SaleDate, sale.ID); m > 0 {
		return m, models.BaselineBuilding
	}

	if hood != nil && hood.MedianPricePerSQFT > 0 {
		return hood.MedianPricePerSQFT, models.BaselineNeighborhood
	}

	return 0, models.BaselineNone
}
