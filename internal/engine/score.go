package engine

import (
	"math"
	"sort"

	"brownstone/server/internal/geo"
	"brownstone/server/internal/models"
)

// Amenity keys as they appear in parsed search criteria.
const (
	AmenityElevator = "elevator"
	AmenityDoorman  = "doorman"
	AmenityParking  = "parking"
	AmenityGym      = "gym"
	AmenityRoofDeck = "roof_deck"
	AmenityPets     = "pets"
)

// Per-amenity weights; the amenity component is capped at maxAmenityScore.
var amenityWeights = map[string]float64{
	AmenityElevator: 7.5,
	AmenityDoorman:  7.5,
	AmenityParking:  5,
	AmenityGym:      3,
	AmenityRoofDeck: 2,
	AmenityPets:     3,
}

const (
	maxPriceScore    = 40.0
	maxFeeScore      = 20.0
	maxCommuteScore  = 15.0
	maxAmenityScore  = 15.0
	maxDistressBonus = 10.0
	maxExposureBonus = 5.0

	// Listings at or below 85% of the buyer's ceiling get the full price score.
	priceComfortRatio = 0.85
)

// Scorer computes buyer-fit scores. The optional station index supplies a
// commute estimate for listings with coordinates but no stored subway time.
type Scorer struct {
	stations *geo.StationIndex
}

func NewScorer(stations *geo.StationIndex) *Scorer {
	return &Scorer{stations: stations}
}

// Score combines a listing's attributes, derived metrics and the buyer's
// criteria into a 0-100 fit score with a per-component breakdown. Pure and
// order-independent across components.
func (s *Scorer) Score(ep *models.EnrichedProperty, criteria *models.SearchCriteria) models.FitScore {
	b := models.ScoreBreakdown{
		Price:    s.priceScore(ep.Property.CurrentPrice, criteria),
		Fee:      feeScore(ep.Metrics.FeeRatio),
		Commute:  s.commuteScore(&ep.Property),
		Amenity:  amenityScore(&ep.Property, criteria),
		Distress: distressBonus(ep.DistressFlag),
		Exposure: exposureBonus(&ep.Property, criteria),
	}

	total := b.Price + b.Fee + b.Commute + b.Amenity + b.Distress + b.Exposure
	return models.FitScore{
		Total:     clampScore(int(math.Round(total))),
		Breakdown: b,
	}
}

func (s *Scorer) priceScore(price float64, criteria *models.SearchCriteria) float64 {
	if criteria.PriceMax == nil {
		return maxPriceScore
	}
	max := *criteria.PriceMax
	if price > max {
		return 0
	}
	ratio := price / max
	if ratio <= priceComfortRatio {
		return maxPriceScore
	}
	return round2(maxPriceScore * (1 - ratio))
}

func feeScore(feeRatio float64) float64 {
	switch {
	case feeRatio <= 1.5:
		return maxFeeScore
	case feeRatio <= 2.5:
		return 15
	case feeRatio <= 3.5:
		return 10
	default:
		return 5
	}
}

func (s *Scorer) commuteScore(p *models.Property) float64 {
	minutes, known := s.commuteMinutes(p)
	if !known {
		return 0
	}
	switch {
	case minutes <= 5:
		return maxCommuteScore
	case minutes <= 10:
		return 10
	case minutes <= 15:
		return 5
	default:
		return 0
	}
}

// commuteMinutes prefers the listing's stored walk time; otherwise it falls
// back to a nearest-station estimate from coordinates.
func (s *Scorer) commuteMinutes(p *models.Property) (int, bool) {
	if p.SubwayMinutes != nil {
		return *p.SubwayMinutes, true
	}
	if s.stations != nil && p.Latitude != nil && p.Longitude != nil {
		return s.stations.WalkMinutes(*p.Latitude, *p.Longitude)
	}
	return 0, false
}

// amenityScore sums the weights of amenities the buyer requires and the
// listing actually has, capped at maxAmenityScore.
func amenityScore(p *models.Property, criteria *models.SearchCriteria) float64 {
	has := map[string]bool{
		AmenityElevator: p.HasElevator,
		AmenityDoorman:  p.HasDoorman,
		AmenityParking:  p.HasParking,
		AmenityGym:      p.HasGym,
		AmenityRoofDeck: p.HasRoofDeck,
		AmenityPets:     p.PetFriendly,
	}

	var score float64
	for _, key := range criteria.RequiredAmenities {
		if has[key] {
			score += amenityWeights[key]
		}
	}
	if score > maxAmenityScore {
		score = maxAmenityScore
	}
	return score
}

func distressBonus(level models.DistressLevel) float64 {
	switch level {
	case models.DistressHigh:
		return maxDistressBonus
	case models.DistressMedium:
		return 5
	default:
		return 0
	}
}

func exposureBonus(p *models.Property, criteria *models.SearchCriteria) float64 {
	if p.Exposure != "" && criteria.PrefersExposure(p.Exposure) {
		return maxExposureBonus
	}
	return 0
}

func clampScore(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// Rank scores every listing against the criteria and orders the slice best
// first. Ties break on higher price component, then lower fee component
// (cheaper carrying cost), then listing ID, so the ordering is stable and
// deterministic across runs.
func (s *Scorer) Rank(enriched []*models.EnrichedProperty, criteria *models.SearchCriteria) {
	for _, ep := range enriched {
		score := s.Score(ep, criteria)
		ep.Score = &score
	}

	sort.SliceStable(enriched, func(i, j int) bool {
		a, b := enriched[i].Score, enriched[j].Score
		if a.Total != b.Total {
			return a.Total > b.Total
		}
		if a.Breakdown.Price != b.Breakdown.Price {
			return a.Breakdown.Price > b.Breakdown.Price
		}
		if a.Breakdown.Fee != b.Breakdown.Fee {
			return a.Breakdown.Fee < b.Breakdown.Fee
		}
		return enriched[i].Property.ID < enriched[j].Property.ID
	})
}
