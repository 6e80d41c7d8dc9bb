package model

import "time"

// MapMarker mirrors a row of the `map_markers` table.  Markers flag hotspot
// coordinates on the public map and are placed by managers and admins.
type MapMarker struct {
	ID        uint64
	Longitude float64
	Latitude  float64
	CreatedAt time.Time
}
