// geo/model.go
// Copyright(c) 2025 fixcalc contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package geo

import (
	gomath "math"

	"github.com/tidwall/geodesic"
)

// Model solves the direct and inverse geodesic problems. The projection
// and intersection code is written against this interface rather than a
// particular geodesic implementation so the underlying solver can be
// swapped without touching them.
type Model interface {
	// Direct returns the point reached by traveling the given distance
	// in meters from origin along the given true bearing.
	Direct(origin Coordinate, trueBearing float64, meters float64) (Coordinate, error)

	// Inverse returns the geodesic distance in meters between a and b
	// and the true bearings of the geodesic at each endpoint (a toward
	// b, and b toward a). Exactly antipodal points have no unique
	// geodesic; that case returns ErrAntipodal rather than an arbitrary
	// bearing.
	Inverse(a, b Coordinate) (meters, bearingAB, bearingBA float64, err error)
}

// WGS84 is the Model used for all operational calculations: Karney's
// GeographicLib algorithms on the WGS84 ellipsoid, accurate to
// sub-millimeter out to antipodal distances.
var WGS84 Model = &ellipsoidModel{e: geodesic.WGS84}

type ellipsoidModel struct {
	e *geodesic.Ellipsoid
}

func (m *ellipsoidModel) Direct(origin Coordinate, trueBearing float64, meters float64) (Coordinate, error) {
	var lat, long float64
	m.e.Direct(origin.Latitude, origin.Longitude, trueBearing, meters, &lat, &long, nil)
	return MakeCoordinate(lat, clampLongitude(long))
}

func (m *ellipsoidModel) Inverse(a, b Coordinate) (float64, float64, float64, error) {
	if antipodal(a, b) {
		return 0, 0, 0, ErrAntipodal
	}

	var s12, azi1, azi2 float64
	m.e.Inverse(a.Latitude, a.Longitude, b.Latitude, b.Longitude, &s12, &azi1, &azi2)

	// azi2 is the forward azimuth of the geodesic at b; flip it so both
	// returned bearings point back along the path toward the other
	// endpoint.
	return s12, NormalizeHeading(azi1), OppositeHeading(azi2), nil
}

// antipodal reports whether a and b are exactly diametrically opposite,
// where the inverse problem has infinitely many solutions.
func antipodal(a, b Coordinate) bool {
	if a.Latitude != -b.Latitude {
		return false
	}
	if a.Latitude == 90 || a.Latitude == -90 {
		return true // pole to pole, longitude irrelevant
	}
	dlong := gomath.Abs(a.Longitude - b.Longitude)
	return dlong == 180
}

// The geodesic library returns longitudes in [-180, 180] but can hand
// back values a hair outside from floating point roundoff.
func clampLongitude(long float64) float64 {
	if long > 180 {
		long -= 360
	} else if long < -180 {
		long += 360
	}
	return gomath.Min(180, gomath.Max(-180, long))
}
