package spatial

import (
	"github.com/golang/geo/s2"

	"github.com/jengzang/bikeshare-go/internal/models"
)

// EarthRadiusMeters is Earth's mean radius in meters
const EarthRadiusMeters = 6371000.0

// HaversineDistance calculates the great-circle distance between two points in meters
func HaversineDistance(lat1, lon1, lat2, lon2 float64) float64 {
	p1 := s2.LatLngFromDegrees(lat1, lon1)
	p2 := s2.LatLngFromDegrees(lat2, lon2)
	return p1.Distance(p2).Radians() * EarthRadiusMeters
}

// TripDistance returns the straight-line distance between a trip's start and
// end points. ok is false when the trip has no coordinates or they are out
// of range.
func TripDistance(c *models.Coordinates) (float64, bool) {
	if c == nil {
		return 0, false
	}
	if !s2.LatLngFromDegrees(c.StartLat, c.StartLon).IsValid() ||
		!s2.LatLngFromDegrees(c.EndLat, c.EndLon).IsValid() {
		return 0, false
	}
	return HaversineDistance(c.StartLat, c.StartLon, c.EndLat, c.EndLon), true
}
