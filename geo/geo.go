// geo/geo.go
// Copyright(c) 2025 fixcalc contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package geo

import (
	gomath "math"
	"strconv"
	"strings"
)

const (
	// Meters per nautical mile, exact by definition.
	MetersPerNM = 1852.0

	NMPerLatitude = 60
)

// Coordinate is a position on the WGS84 ellipsoid in signed decimal
// degrees. Construct via MakeCoordinate or ParseCoordinate so that the
// range invariants hold; a zero Coordinate is the Gulf of Guinea, not an
// error value.
type Coordinate struct {
	Latitude  float64
	Longitude float64
}

func MakeCoordinate(lat, long float64) (Coordinate, error) {
	if gomath.IsNaN(lat) || gomath.IsInf(lat, 0) || lat < -90 || lat > 90 {
		return Coordinate{}, &InvalidInputError{
			Field:      "latitude",
			Value:      strconv.FormatFloat(lat, 'f', -1, 64),
			Constraint: "must be in [-90, 90] degrees",
		}
	}
	if gomath.IsNaN(long) || gomath.IsInf(long, 0) || long < -180 || long > 180 {
		return Coordinate{}, &InvalidInputError{
			Field:      "longitude",
			Value:      strconv.FormatFloat(long, 'f', -1, 64),
			Constraint: "must be in [-180, 180] degrees",
		}
	}
	return Coordinate{Latitude: lat, Longitude: long}, nil
}

// ParseCoordinate parses a "lat lon" pair of signed decimal degrees,
// e.g. "40.638022 -73.762272".
func ParseCoordinate(s string) (Coordinate, error) {
	f := strings.Fields(s)
	if len(f) != 2 {
		return Coordinate{}, &InvalidInputError{
			Field:      "coordinates",
			Value:      s,
			Constraint: "must be two numbers: latitude and longitude",
		}
	}

	lat, err := strconv.ParseFloat(f[0], 64)
	if err != nil {
		return Coordinate{}, &InvalidInputError{
			Field:      "latitude",
			Value:      f[0],
			Constraint: "must be a decimal number",
		}
	}
	long, err := strconv.ParseFloat(f[1], 64)
	if err != nil {
		return Coordinate{}, &InvalidInputError{
			Field:      "longitude",
			Value:      f[1],
			Constraint: "must be a decimal number",
		}
	}

	return MakeCoordinate(lat, long)
}

// String gives the full-precision form used in the generated waypoint
// and FIX lines.
func (c Coordinate) String() string {
	return strconv.FormatFloat(c.Latitude, 'f', 9, 64) + " " +
		strconv.FormatFloat(c.Longitude, 'f', 9, 64)
}

///////////////////////////////////////////////////////////////////////////
// Bearing

type BearingReference int

const (
	TrueBearing BearingReference = iota
	MagneticBearing
)

func (r BearingReference) String() string {
	if r == MagneticBearing {
		return "magnetic"
	}
	return "true"
}

// Bearing is a direction in degrees in [0, 360), always tagged with
// whether it is referenced to true or magnetic north.
type Bearing struct {
	Degrees   float64
	Reference BearingReference
}

func MakeBearing(deg float64, ref BearingReference) (Bearing, error) {
	if gomath.IsNaN(deg) || gomath.IsInf(deg, 0) || deg < 0 || deg >= 360 {
		return Bearing{}, &InvalidInputError{
			Field:      "bearing",
			Value:      strconv.FormatFloat(deg, 'f', -1, 64),
			Constraint: "must be in [0, 360) degrees",
		}
	}
	return Bearing{Degrees: deg, Reference: ref}, nil
}

func ParseBearing(s string, ref BearingReference) (Bearing, error) {
	deg, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return Bearing{}, &InvalidInputError{
			Field:      "bearing",
			Value:      s,
			Constraint: "must be a number of degrees in [0, 360)",
		}
	}
	return MakeBearing(deg, ref)
}

// ToTrue converts a magnetic bearing to true given the local magnetic
// declination (signed, east-positive). True bearings pass through
// unchanged.
func (b Bearing) ToTrue(declination float64) Bearing {
	if b.Reference == TrueBearing {
		return b
	}
	return Bearing{Degrees: NormalizeHeading(b.Degrees + declination), Reference: TrueBearing}
}

// ToMagnetic is the inverse of ToTrue.
func (b Bearing) ToMagnetic(declination float64) Bearing {
	if b.Reference == MagneticBearing {
		return b
	}
	return Bearing{Degrees: NormalizeHeading(b.Degrees - declination), Reference: MagneticBearing}
}

///////////////////////////////////////////////////////////////////////////
// Distance

// Distance is a non-negative distance in nautical miles.
type Distance float64

func MakeDistance(nm float64) (Distance, error) {
	if gomath.IsNaN(nm) || gomath.IsInf(nm, 0) || nm < 0 {
		return 0, &InvalidInputError{
			Field:      "distance",
			Value:      strconv.FormatFloat(nm, 'f', -1, 64),
			Constraint: "must be a non-negative number of nautical miles",
		}
	}
	return Distance(nm), nil
}

func ParseDistance(s string) (Distance, error) {
	nm, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, &InvalidInputError{
			Field:      "distance",
			Value:      s,
			Constraint: "must be a number of nautical miles",
		}
	}
	return MakeDistance(nm)
}

func (d Distance) NM() float64     { return float64(d) }
func (d Distance) Meters() float64 { return float64(d) * MetersPerNM }

///////////////////////////////////////////////////////////////////////////
// headings

// NormalizeHeading reduces a heading to [0,360).
func NormalizeHeading(h float64) float64 {
	if h < 0 {
		return NormalizeHeading(h + 360)
	}
	if h >= 360 {
		return NormalizeHeading(h - 360)
	}
	return h
}

// HeadingDifference returns the minimum difference between two headings;
// the result is always in [0,180].
func HeadingDifference(a, b float64) float64 {
	d := gomath.Abs(a - b)
	if d > 180 {
		d = 360 - d
	}
	return d
}

// HeadingSignedDifference returns a-b wrapped into (-180, 180], so
// positive results mean a is clockwise of b.
func HeadingSignedDifference(a, b float64) float64 {
	d := gomath.Mod(a-b, 360)
	if d > 180 {
		d -= 360
	} else if d <= -180 {
		d += 360
	}
	return d
}

func OppositeHeading(h float64) float64 {
	return NormalizeHeading(h + 180)
}

///////////////////////////////////////////////////////////////////////////
// local nautical-mile plane

// nmPerLongitude gives the east-west scale at the given latitude; with
// NMPerLatitude it defines the flat-earth nm coordinate system used to
// seed the intersection solver.
func nmPerLongitude(lat float64) float64 {
	return NMPerLatitude * gomath.Cos(radians(lat))
}

// ll2nm converts a coordinate to nautical-mile coordinates in the plane
// tangent near refLat; both axes then have the same measure.
func ll2nm(c Coordinate, refLat float64) [2]float64 {
	return [2]float64{c.Longitude * nmPerLongitude(refLat), c.Latitude * NMPerLatitude}
}

func nm2ll(p [2]float64, refLat float64) Coordinate {
	return Coordinate{Latitude: p[1] / NMPerLatitude, Longitude: p[0] / nmPerLongitude(refLat)}
}

func radians(d float64) float64 { return d / 180 * gomath.Pi }
func degrees(r float64) float64 { return r * 180 / gomath.Pi }
