package models

// SearchCriteria is the structured output of the preference parser, consumed
// verbatim by the fit scorer. Nil bounds mean "no constraint".
type SearchCriteria struct {
	MinBedrooms  *int     `json:"min_bedrooms"`
	MaxBedrooms  *int     `json:"max_bedrooms"`
	MinBathrooms *float64 `json:"min_bathrooms"`
	PriceMin     *float64 `json:"price_min"`
	PriceMax     *float64 `json:"price_max" validate:"omitempty,gt=0"`

	// RequiredAmenities and DesiredAmenities use the amenity keys defined in
	// the engine package (elevator, doorman, parking, gym, roof_deck, pets).
	RequiredAmenities []string `json:"required_amenities"`
	DesiredAmenities  []string `json:"desired_amenities"`

	MaxMonthlyFee      *float64 `json:"max_monthly_fee"`
	MaxCommuteMin      *int     `json:"max_commute_minutes"`
	PreferredExposures []string `json:"preferred_exposures"`
	PreferredFloors    []string `json:"preferred_floors"`

	Neighborhoods []string `json:"neighborhoods"`
}

// HasAmenityRequirement reports whether the criteria name the given amenity
// key as required.
func (c *SearchCriteria) HasAmenityRequirement(key string) bool {
	for _, a := range c.RequiredAmenities {
		if a == key {
			return true
		}
	}
	return false
}

// PrefersExposure reports whether the exposure category is in the preferred set.
func (c *SearchCriteria) PrefersExposure(exposure string) bool {
	for _, e := range c.PreferredExposures {
		if e == exposure {
			return true
		}
	}
	return false
}
