package util

import (
	"github.com/golang/geo/s1"
	"github.com/golang/geo/s2"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
	"github.com/paulmach/orb/planar"
)

const earthRadiusMeters = 6371000.0

// SanitizeRing converts raw boundary coordinates into an orb ring, stripping
// any altitude component and dropping malformed vertices. Returns nil when
// fewer than 3 usable vertices remain, so callers can exclude the plot
// instead of rendering a degenerate polygon.
func SanitizeRing(coords [][]float64) orb.Ring {
	ring := make(orb.Ring, 0, len(coords))
	for _, c := range coords {
		if len(c) < 2 {
			continue
		}
		// Keep lng/lat only; boundary exports sometimes carry altitude
		ring = append(ring, orb.Point{c[0], c[1]})
	}
	if len(ring) < 3 {
		return nil
	}
	// Close the ring if the source left it open
	if ring[0] != ring[len(ring)-1] {
		ring = append(ring, ring[0])
	}
	return ring
}

// PlanarCentroid returns the area-weighted planar centroid of a polygon's
// outer ring. Degenerate input yields the zero point.
func PlanarCentroid(ring orb.Ring) orb.Point {
	if len(ring) < 3 {
		return orb.Point{}
	}
	centroid, _ := planar.CentroidArea(orb.Polygon{ring})
	return centroid
}

// SphericalAreaSqM returns the approximate area of a polygon's outer ring on
// the sphere, in square meters. Degenerate input yields zero.
func SphericalAreaSqM(ring orb.Ring) float64 {
	if len(ring) < 3 {
		return 0
	}
	area := geo.Area(orb.Polygon{ring})
	if area < 0 {
		area = -area
	}
	return area
}

// HaversineDistance returns the great-circle distance in meters between two
// lat/lng coordinates.
func HaversineDistance(lat1, lng1, lat2, lng2 float64) float64 {
	point1 := s2.PointFromLatLng(s2.LatLngFromDegrees(lat1, lng1))
	point2 := s2.PointFromLatLng(s2.LatLngFromDegrees(lat2, lng2))

	// Angle between the points converted to surface distance
	angle := s1.Angle(s2.ChordAngleBetweenPoints(point1, point2).Angle())

	return angle.Radians() * earthRadiusMeters
}

// RingBound returns the bounding box of a set of polygon vertices. The
// second return is false when the list is empty.
func RingBound(points []orb.Point) (orb.Bound, bool) {
	if len(points) == 0 {
		return orb.Bound{}, false
	}
	bound := orb.MultiPoint(points).Bound()
	return bound, true
}
