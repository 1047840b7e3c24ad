package models

import "time"

// CompQuality is the tier assigned to a matched comparable sale.
type CompQuality int

const (
	QualityExcellent CompQuality = iota // same building
	QualityGood                         // same zip, exact beds
	QualityFair                         // same neighborhood
)

func (q CompQuality) String() string {
	switch q {
	case QualityExcellent:
		return "Excellent"
	case QualityGood:
		return "Good"
	case QualityFair:
		return "Fair"
	default:
		return "Unknown"
	}
}

// SaleType categories recorded by the ingest side. Anything other than an
// arms-length transfer is screened out before comp matching.
const (
	SaleTypeArmsLength     = "Arms Length"
	SaleTypeFamilyTransfer = "Family Transfer"
	SaleTypeBulk           = "Bulk Transaction"
)

// ComparableSale is a closed transaction from the rolling-sales feed.
type ComparableSale struct {
	ID           int64     `json:"id"`
	BBL          string    `json:"bbl"`
	Address      string    `json:"address"`
	UnitNumber   string    `json:"unit_number"`
	Bedrooms     *int      `json:"bedrooms"`
	SQFT         float64   `json:"sqft"`
	SaleDate     time.Time `json:"sale_date"`
	SalePrice    float64   `json:"sale_price"`
	ZipCode      string    `json:"zip_code"`
	Neighborhood string    `json:"neighborhood"`
	Borough      string    `json:"borough"`
	SaleType     string    `json:"sale_type"`

	// PriorYearSalePrice is the same unit's sale from roughly a year before,
	// when the deeds record one. Zero when unknown.
	PriorYearSalePrice float64 `json:"prior_year_sale_price"`
}

// PricePerSQFT returns the sale's per-area price, or 0 when area is unknown.
func (s *ComparableSale) PricePerSQFT() float64 {
	if s.SQFT <= 0 {
		return 0
	}
	return s.SalePrice / s.SQFT
}

// CompMatch is a comparable sale matched to a target listing, with its
// assigned quality tier. The association is derived per computation and is
// never persisted.
type CompMatch struct {
	Sale    ComparableSale `json:"sale"`
	Quality CompQuality    `json:"quality"`
}

// BaselineTier records which fallback produced a comp's prior-year baseline.
type BaselineTier int

const (
	BaselineNone         BaselineTier = iota
	BaselineSameUnit                  // prior-year sale of the same unit
	BaselineBuilding                  // median of same-bed sales in the building
	BaselineNeighborhood              // neighborhood median for the period
)

func (b BaselineTier) String() string {
	switch b {
	case BaselineSameUnit:
		return "same_unit"
	case BaselineBuilding:
		return "building_median"
	case BaselineNeighborhood:
		return "neighborhood_median"
	default:
		return "none"
	}
}

// TrendFlag classifies the year-over-year direction of comp prices.
type TrendFlag string

const (
	TrendRising           TrendFlag = "Rising"
	TrendDeclining        TrendFlag = "Declining"
	TrendStable           TrendFlag = "Stable"
	TrendInsufficientData TrendFlag = "Insufficient Data"
)

// ValueLabel positions the listing price against the comp median.
type ValueLabel string

const (
	ValueUnderpriced      ValueLabel = "Underpriced"
	ValueOverpriced       ValueLabel = "Overpriced"
	ValueFair             ValueLabel = "Fair"
	ValueInsufficientData ValueLabel = "Insufficient Data"
)

// TrendSummary is the TrendAnalyzer output for one listing.
type TrendSummary struct {
	Flag           TrendFlag    `json:"trend_flag"`
	AvgYoYChange   float64      `json:"avg_yoy_change"`
	MedianCompPPSF float64      `json:"median_comp_ppsf"`
	PriceVariance  float64      `json:"price_variance"`
	ValueVsComps   ValueLabel   `json:"value_vs_comps"`
	BaselineTier   BaselineTier `json:"baseline_tier"`
	CompCount      int          `json:"comp_count"`
}
