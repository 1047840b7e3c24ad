package engine

import (
	"sort"
	"time"

	"brownstone/server/internal/models"
)

// Comp matching policy. A sale lands in the first tier it satisfies and is
// never double-counted; anything older than the Excellent window is out
// regardless of other attributes.
const (
	excellentMaxAgeMonths = 24
	goodMaxAgeMonths      = 18
	fairMaxAgeMonths      = 12

	excellentAreaTolerance = 0.20
	goodAreaTolerance      = 0.15
	fairAreaTolerance      = 0.25

	// MaxCompAgeMonths is the hard age ceiling: no sale older than this is
	// ever matched, so the pool can be pre-filtered to it.
	MaxCompAgeMonths = excellentMaxAgeMonths

	// IndexLookbackMonths is how far back the indexed pool must reach: the
	// matching ceiling plus the 18-month baseline window behind the oldest
	// matchable sale.
	IndexLookbackMonths = MaxCompAgeMonths + 18

	// MaxComps caps the matched set at the most relevant sales.
	MaxComps = 10

	// MinViableComps is the smallest comp set a trend can be computed from.
	MinViableComps = 3
)

// Data-quality screens applied before tiering. Price bounds follow the
// rolling-sales ingest filter; the per-area band catches mispunched deeds.
const (
	minSalePrice = 100_000
	maxSalePrice = 50_000_000
	minSanePPSF  = 100
	maxSanePPSF  = 10_000
)

// SaleIndex is a read-only attribute index over the comparable-sale pool.
// Build it once before matching begins; concurrent readers need no locking.
type SaleIndex struct {
	sales          []models.ComparableSale
	byParcelPrefix map[string][]int
	byZip          map[string][]int
	byNeighborhood map[string][]int
}

// NewSaleIndex screens the pool for data quality and indexes the survivors
// by parcel prefix, zip code and neighborhood.
func NewSaleIndex(pool []models.ComparableSale) *SaleIndex {
	idx := &SaleIndex{
		byParcelPrefix: make(map[string][]int),
		byZip:          make(map[string][]int),
		byNeighborhood: make(map[string][]int),
	}

	for _, sale := range pool {
		if !saleUsable(&sale) {
			continue
		}
		i := len(idx.sales)
		idx.sales = append(idx.sales, sale)

		if prefix := models.ParcelPrefix(sale.BBL); prefix != "" {
			idx.byParcelPrefix[prefix] = append(idx.byParcelPrefix[prefix], i)
		}
		if sale.ZipCode != "" {
			idx.byZip[sale.ZipCode] = append(idx.byZip[sale.ZipCode], i)
		}
		if sale.Neighborhood != "" {
			idx.byNeighborhood[sale.Neighborhood] = append(idx.byNeighborhood[sale.Neighborhood], i)
		}
	}

	return idx
}

// Len returns the number of sales that survived the data-quality screen.
func (idx *SaleIndex) Len() int {
	return len(idx.sales)
}

// saleUsable applies the pre-tiering data-quality exclusions.
func saleUsable(s *models.ComparableSale) bool {
	if s.SalePrice < minSalePrice || s.SalePrice > maxSalePrice {
		return false
	}
	if s.SaleType != "" && s.SaleType != models.SaleTypeArmsLength {
		return false
	}
	if s.SQFT > 0 {
		ppsf := s.SalePrice / s.SQFT
		if ppsf < minSanePPSF || ppsf > maxSanePPSF {
			return false
		}
	}
	return true
}

// MatchComparables selects the quality-tiered comp set for a target listing,
// ordered best quality first, then most recent. refDate anchors the sale-age
// windows (normally time.Now() at batch start, fixed for the whole batch).
func (idx *SaleIndex) MatchComparables(target *models.Property, refDate time.Time) []models.CompMatch {
	area := target.Area()
	if area <= 0 {
		return nil
	}

	seen := make(map[int]bool)
	var candidates []int
	for _, bucket := range [][]int{
		idx.byParcelPrefix[target.ParcelPrefix()],
		idx.byZip[target.ZipCode],
		idx.byNeighborhood[target.Neighborhood],
	} {
		for _, i := range bucket {
			if !seen[i] {
				seen[i] = true
				candidates = append(candidates, i)
			}
		}
	}

	var matches []models.CompMatch
	for _, i := range candidates {
		sale := idx.sales[i]
		quality, ok := classifySale(target, &sale, refDate)
		if !ok {
			continue
		}
		matches = append(matches, models.CompMatch{Sale: sale, Quality: quality})
	}

	sort.Slice(matches, func(a, b int) bool {
		if matches[a].Quality != matches[b].Quality {
			return matches[a].Quality < matches[b].Quality
		}
		if !matches[a].Sale.SaleDate.Equal(matches[b].Sale.SaleDate) {
			return matches[a].Sale.SaleDate.After(matches[b].Sale.SaleDate)
		}
		return matches[a].Sale.ID < matches[b].Sale.ID
	})

	if len(matches) > MaxComps {
		matches = matches[:MaxComps]
	}
	return matches
}

// classifySale assigns the first matching tier, checked Excellent to Fair.
func classifySale(target *models.Property, sale *models.ComparableSale, refDate time.Time) (models.CompQuality, bool) {
	if sale.SQFT <= 0 || sale.SaleDate.After(refDate) {
		return 0, false
	}

	area := target.Area()
	prefix := target.ParcelPrefix()

	if prefix != "" && models.ParcelPrefix(sale.BBL) == prefix &&
		withinMonths(sale.SaleDate, refDate, excellentMaxAgeMonths) &&
		bedsWithin(target.Bedrooms, sale.Bedrooms, 1) &&
		areaWithin(area, sale.SQFT, excellentAreaTolerance) {
		return models.QualityExcellent, true
	}

	if target.ZipCode != "" && sale.ZipCode == target.ZipCode &&
		withinMonths(sale.SaleDate, refDate, goodMaxAgeMonths) &&
		bedsWithin(target.Bedrooms, sale.Bedrooms, 0) &&
		areaWithin(area, sale.SQFT, goodAreaTolerance) {
		return models.QualityGood, true
	}

	if target.Neighborhood != "" && sale.Neighborhood == target.Neighborhood &&
		withinMonths(sale.SaleDate, refDate, fairMaxAgeMonths) &&
		bedsWithin(target.Bedrooms, sale.Bedrooms, 1) &&
		areaWithin(area, sale.SQFT, fairAreaTolerance) {
		return models.QualityFair, true
	}

	return 0, false
}

func withinMonths(saleDate, refDate time.Time, months int) bool {
	cutoff := refDate.AddDate(0, -months, 0)
	return !saleDate.Before(cutoff)
}

// bedsWithin compares bedroom counts with the given slack. Sales from feeds
// that omit bedroom counts are not penalized for it.
func bedsWithin(targetBeds int, saleBeds *int, slack int) bool {
	if saleBeds == nil {
		return true
	}
	diff := targetBeds - *saleBeds
	if diff < 0 {
		diff = -diff
	}
	return diff <= slack
}

func areaWithin(targetArea, saleArea, tolerance float64) bool {
	if targetArea <= 0 || saleArea <= 0 {
		return false
	}
	diff := targetArea - saleArea
	if diff < 0 {
		diff = -diff
	}
	return diff/targetArea <= tolerance
}

// buildingMedianPPSF computes the median per-area price of same-bedroom
// sales in the building from the 12-18-month window before saleDate. Used as
// the second-tier YoY baseline. Returns 0 when no such sales exist.
func (idx *SaleIndex) buildingMedianPPSF(parcelPrefix string, beds *int, saleDate time.Time, excludeID int64) float64 {
	if parcelPrefix == "" {
		return 0
	}
	windowStart := saleDate.AddDate(0, -18, 0)
	windowEnd := saleDate.AddDate(0, -12, 0)

	var ppsfs []float64
	for _, i := range idx.byParcelPrefix[parcelPrefix] {
		sale := idx.sales[i]
		if sale.ID == excludeID || sale.SQFT <= 0 {
			continue
		}
		if sale.SaleDate.Before(windowStart) || sale.SaleDate.After(windowEnd) {
			continue
		}
		if beds != nil && sale.Bedrooms != nil && *beds != *sale.Bedrooms {
			continue
		}
		ppsfs = append(ppsfs, sale.SalePrice/sale.SQFT)
	}

	return median(ppsfs)
}

// median returns the middle value (mean of the middle two for even counts),
// or 0 for an empty slice.
func median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}
