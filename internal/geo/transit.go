package geo

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
)

// Station is a subway station with its platform entrance coordinates.
type Station struct {
	Name  string
	Lines string
	Point orb.Point // lon, lat
}

// Walking pace used to turn straight-line distance into minutes. Street grids
// are not straight lines, so the distance is padded before converting.
const (
	walkMetersPerMinute = 80.0
	gridDetourFactor    = 1.3
)

// StationIndex answers nearest-station queries for listings that carry
// coordinates but no stored subway walk time. Read-only after construction.
type StationIndex struct {
	stations []Station
}

func NewStationIndex(stations []Station) *StationIndex {
	return &StationIndex{stations: stations}
}

// Len returns the number of indexed stations.
func (si *StationIndex) Len() int {
	return len(si.stations)
}

// Nearest returns the closest station to the point and the distance to it in
// meters. ok is false when the index is empty.
func (si *StationIndex) Nearest(lat, lon float64) (station Station, meters float64, ok bool) {
	if len(si.stations) == 0 {
		return Station{}, 0, false
	}

	point := orb.Point{lon, lat}
	best := -1
	bestDist := math.MaxFloat64
	for i, s := range si.stations {
		d := geo.DistanceHaversine(point, s.Point)
		if d < bestDist {
			best = i
			bestDist = d
		}
	}
	return si.stations[best], bestDist, true
}

// WalkMinutes estimates the walking time from the point to the nearest
// station, rounded up to whole minutes. ok is false when no station is known.
func (si *StationIndex) WalkMinutes(lat, lon float64) (minutes int, ok bool) {
	_, meters, ok := si.Nearest(lat, lon)
	if !ok {
		return 0, false
	}
	return int(math.Ceil(meters * gridDetourFactor / walkMetersPerMinute)), true
}
