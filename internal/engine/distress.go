package engine

import "brownstone/server/internal/models"

// Distress thresholds from the documented listing-analysis policy. High
// requires all three signals while Medium needs only one; the asymmetry is
// intentional, so a deep cut with a single reduction still reads as Medium.
const (
	highCutPercent   = 10.0
	highCutCount     = 2
	highDaysOnMarket = 60

	mediumCutPercent   = 5.0
	mediumCutCount     = 1
	mediumDaysOnMarket = 45
)

// TotalCutPercent returns the percentage reduction from the original list
// price, or 0 when either price is non-positive.
func TotalCutPercent(originalPrice, currentPrice float64) float64 {
	if originalPrice <= 0 || currentPrice <= 0 {
		return 0
	}
	return round2((originalPrice - currentPrice) / originalPrice * 100)
}

// PriceCutCount derives the number of reductions from the history length.
// The initial list entry is not a cut.
func PriceCutCount(historyLen int) int {
	if historyLen <= 1 {
		return 0
	}
	return historyLen - 1
}

// ClassifyDistress maps price-cut depth, cut count and days on market to a
// seller-motivation level.
func ClassifyDistress(totalCutPercent float64, priceCutCount, daysOnMarket int) models.DistressLevel {
	if totalCutPercent >= highCutPercent && priceCutCount >= highCutCount && daysOnMarket >= highDaysOnMarket {
		return models.DistressHigh
	}
	if totalCutPercent >= mediumCutPercent || priceCutCount >= mediumCutCount || daysOnMarket >= mediumDaysOnMarket {
		return models.DistressMedium
	}
	return models.DistressLow
}
