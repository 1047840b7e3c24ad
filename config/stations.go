package config

import (
	"github.com/paulmach/orb"

	"brownstone/server/internal/geo"
)

// SubwayStations is the static station table used to estimate walk times for
// listings that carry coordinates but no stored subway distance. Points are
// (lon, lat).
var SubwayStations = []geo.Station{
	{Name: "Court Sq", Lines: "7/E/M/G", Point: orb.Point{-73.9454, 40.7470}},
	{Name: "Vernon Blvd-Jackson Av", Lines: "7", Point: orb.Point{-73.9536, 40.7426}},
	{Name: "50 St", Lines: "C/E", Point: orb.Point{-73.9857, 40.7625}},
	{Name: "42 St-Port Authority", Lines: "A/C/E", Point: orb.Point{-73.9899, 40.7573}},
	{Name: "York St", Lines: "F", Point: orb.Point{-73.9866, 40.7014}},
	{Name: "High St", Lines: "A/C", Point: orb.Point{-73.9906, 40.6993}},
	{Name: "Fulton St", Lines: "2/3/4/5/A/C/J/Z", Point: orb.Point{-74.0076, 40.7101}},
	{Name: "Wall St", Lines: "4/5", Point: orb.Point{-74.0091, 40.7069}},
	{Name: "72 St", Lines: "1/2/3", Point: orb.Point{-73.9818, 40.7785}},
	{Name: "86 St", Lines: "1", Point: orb.Point{-73.9761, 40.7886}},
	{Name: "7 Av", Lines: "F/G", Point: orb.Point{-73.9798, 40.6663}},
	{Name: "Grand Army Plaza", Lines: "2/3", Point: orb.Point{-73.9708, 40.6751}},
	// Add more stations here as coverage grows
}

// NewStationIndex builds the shared read-only station index.
func NewStationIndex() *geo.StationIndex {
	return geo.NewStationIndex(SubwayStations)
}
