package models

import "time"

// DistressLevel is the seller-motivation flag derived from price cuts and
// time on market.
type DistressLevel string

const (
	DistressHigh   DistressLevel = "High"
	DistressMedium DistressLevel = "Medium"
	DistressLow    DistressLevel = "Low"
)

// Metrics holds the derived per-listing financial metrics. All percentage
// fields are stored already multiplied by 100 and rounded to 2 decimals
// (GRM to 1 decimal).
type Metrics struct {
	AnnualRent            float64 `json:"annual_rent"`
	TotalAnnualExpenses   float64 `json:"total_annual_expenses"`
	NetOperatingIncome    float64 `json:"net_operating_income"`
	PricePerSQFT          float64 `json:"price_per_sqft"`
	CapRate               float64 `json:"cap_rate"`
	GrossRentMultiplier   float64 `json:"gross_rent_multiplier"`
	RentToPriceRatio      float64 `json:"rent_to_price_ratio"`
	FeeRatio              float64 `json:"fee_ratio"`
	AppreciationSinceSale float64 `json:"appreciation_since_last_sale"`

	// Financing-dependent metrics; zero when no financing assumptions exist.
	LoanAmount         float64 `json:"loan_amount"`
	MonthlyDebtService float64 `json:"monthly_debt_service"`
	AnnualCashFlow     float64 `json:"annual_cash_flow"`
	CashOnCash         float64 `json:"cash_on_cash"`
	DSCR               float64 `json:"debt_service_coverage_ratio"`
}

// ScoreBreakdown is the per-component decomposition of a fit score.
type ScoreBreakdown struct {
	Price    float64 `json:"price"`    // max 40
	Fee      float64 `json:"fee"`      // max 20
	Commute  float64 `json:"commute"`  // max 15
	Amenity  float64 `json:"amenity"`  // max 15
	Distress float64 `json:"distress"` // max 10
	Exposure float64 `json:"exposure"` // max 5
}

// FitScore is the composite 0-100 buyer-fit ranking for one listing.
type FitScore struct {
	Total     int            `json:"total"`
	Breakdown ScoreBreakdown `json:"breakdown"`
}

// EnrichedProperty is the engine's output value: the raw listing plus every
// derived signal. Recomputed whenever inputs change; never mutated in place.
type EnrichedProperty struct {
	Property Property `json:"property"`

	Metrics      Metrics       `json:"metrics"`
	DistressFlag DistressLevel `json:"distress_flag"`

	// Price-cut derivation inputs, surfaced for display.
	PriceCutCount   int     `json:"price_cut_count"`
	TotalCutPercent float64 `json:"total_cut_percent"`
	HistoryValid    bool    `json:"history_valid"`

	Comps []CompMatch  `json:"comps"`
	Trend TrendSummary `json:"trend"`

	// Score is present only when a search is active.
	Score *FitScore `json:"fit_score,omitempty"`

	ComputedAt time.Time `json:"computed_at"`
}
