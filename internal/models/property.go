package models

import "time"

// PricePoint is a single entry in a listing's price history. The first entry
// is the initial list price; the last entry must match the current price.
type PricePoint struct {
	Date  time.Time `json:"date"`
	Price float64   `json:"price"`
}

// Financing holds the buyer's loan assumptions. Optional; only used for
// cash-on-cash and DSCR.
type Financing struct {
	DownPayment  float64 `json:"down_payment"`
	InterestRate float64 `json:"interest_rate"` // annual, percent
	TermYears    int     `json:"term_years"`
}

// Property is a raw listing as ingested. The engine never mutates it.
type Property struct {
	ID            int64        `json:"id"`
	BBL           string       `json:"bbl"` // borough-block-lot parcel identifier
	Address       string       `json:"address"`
	UnitNumber    string       `json:"unit_number"`
	Neighborhood  string       `json:"neighborhood"`
	Borough       string       `json:"borough"`
	ZipCode       string       `json:"zip_code"`
	CurrentPrice  float64      `json:"current_price" validate:"gt=0"`
	OriginalPrice float64      `json:"original_price"`
	PriceHistory  []PricePoint `json:"price_history"`
	DaysOnMarket  int          `json:"days_on_market" validate:"gte=0"`
	Bedrooms      int          `json:"bedrooms"`
	Bathrooms     float64      `json:"bathrooms"`
	SQFT          *float64     `json:"sqft" validate:"omitempty,gt=0"`
	MonthlyHOA    float64      `json:"monthly_hoa"`
	MonthlyRent   float64      `json:"estimated_monthly_rent"`

	// Annual expense components, each optional (zero when unknown).
	AnnualTax        float64 `json:"annual_tax"`
	AnnualInsurance  float64 `json:"annual_insurance"`
	AnnualUtilities  float64 `json:"annual_utilities"`
	AnnualManagement float64 `json:"annual_management"`

	HasElevator bool `json:"has_elevator"`
	HasDoorman  bool `json:"has_doorman"`
	HasGym      bool `json:"has_gym"`
	HasParking  bool `json:"has_parking"`
	HasRoofDeck bool `json:"has_roof_deck"`
	PetFriendly bool `json:"pet_friendly"`

	Exposure      string `json:"exposure"`    // e.g. "South", "Corner", "Multiple"
	FloorLevel    string `json:"floor_level"` // e.g. "High", "Middle", "Ground"
	YearBuilt     int    `json:"year_built"`
	SubwayMinutes *int   `json:"subway_minutes"` // walk time to nearest station, when known

	LastSaleDate  *time.Time `json:"last_sale_date"`
	LastSalePrice float64    `json:"last_sale_price"`

	Financing *Financing `json:"financing,omitempty"`

	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`

	ListingURL string    `json:"listing_url"`
	Status     string    `json:"status"`
	ScrapedAt  time.Time `json:"scraped_at"`
	CreatedAt  time.Time `json:"created_at"`
}

// Area returns the listing's square footage, or 0 when unknown.
func (p *Property) Area() float64 {
	if p.SQFT == nil {
		return 0
	}
	return *p.SQFT
}

// ParcelPrefix returns the building-level portion of the listing's BBL.
func (p *Property) ParcelPrefix() string {
	return ParcelPrefix(p.BBL)
}

// ParcelPrefix truncates a BBL to its first 7 digits, which identify the
// building/lot without the condo unit suffix. Empty when the BBL is too short.
func ParcelPrefix(bbl string) string {
	if len(bbl) < 7 {
		return ""
	}
	return bbl[:7]
}

// Neighborhood is read-only aggregate context for an area.
type Neighborhood struct {
	Name               string  `json:"neighborhood_name"`
	Borough            string  `json:"borough"`
	MedianPrice        float64 `json:"median_price"`
	MedianRent         float64 `json:"median_rent"`
	MedianPricePerSQFT float64 `json:"median_price_per_sqft"`
	AvgDaysOnMarket    float64 `json:"avg_days_on_market"`
}
