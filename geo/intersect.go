// geo/intersect.go
// Copyright(c) 2025 fixcalc contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package geo

import (
	gomath "math"

	"github.com/mmp/fixcalc/util"
)

// A Constraint pins the solution point with respect to one reference
// coordinate: either the point lies on a radial (a fixed true bearing
// out of the reference), or it lies at a fixed distance from it.
type ConstraintKind int

const (
	RadialConstraint ConstraintKind = iota
	DistanceConstraint
)

type Constraint struct {
	Reference Coordinate
	Kind      ConstraintKind
	Bearing   Bearing  // radial constraints
	Distance  Distance // distance constraints
}

func RadialFrom(ref Coordinate, b Bearing) Constraint {
	return Constraint{Reference: ref, Kind: RadialConstraint, Bearing: b}
}

func DistanceFrom(ref Coordinate, d Distance) Constraint {
	return Constraint{Reference: ref, Kind: DistanceConstraint, Distance: d}
}

const (
	// Linearizing on a plane is only locally valid, so correction steps
	// are clamped to this length.
	maxCorrectionM = 500e3

	// A correction this small with residuals still above tolerance
	// means the constraint geometry is singular, not that more
	// iterations will help.
	minCorrectionM = 1e-4

	// Scale factor applied to each correction step. Full Newton steps
	// can overshoot when the planar linearization is poor far from the
	// solution; the damped step still converges well inside the
	// iteration budget.
	correctionDamping = 0.9
)

// Intersect finds the coordinate satisfying both constraints to within
// LinearToleranceM and AngularToleranceDeg. There is no closed form on
// the ellipsoid, so the solution is found iteratively: a flat-earth
// triangulation of the two constraints seeds the candidate, then each
// iteration measures both constraint residuals with Inverse against the
// references, solves the local 2x2 linearization for the correction
// that reduces both jointly, and applies it with Direct as the move
// operator.
//
// Singular configurations (coincident references with same-kind
// constraints, parallel constraint gradients, a candidate collapsing
// onto a radial's reference) are reported as DegenerateGeometryError
// rather than burning through the iteration cap. An exhausted budget
// returns a ConvergenceError; both failure modes carry the best
// candidate found and its residuals.
func Intersect(model Model, c1, c2 Constraint) (Result, error) {
	for _, c := range [2]Constraint{c1, c2} {
		if c.Kind == RadialConstraint && c.Bearing.Reference != TrueBearing {
			return Result{}, &InvalidInputError{
				Field:      "radial",
				Value:      c.Bearing.Reference.String(),
				Constraint: "intersection requires true radials",
			}
		}
	}

	result := Result{
		Mode:                IntersectionMode,
		LinearToleranceM:    LinearToleranceM,
		AngularToleranceDeg: AngularToleranceDeg,
	}

	refSepM, _, _, err := model.Inverse(c1.Reference, c2.Reference)
	if err != nil {
		return result, err
	}
	if refSepM < LinearToleranceM && c1.Kind == c2.Kind {
		// Two radials out of the same point either coincide everywhere
		// or intersect only at the point itself; two distance circles
		// around the same point never cross transversally.
		result.Coordinate = c1.Reference
		return result, &DegenerateGeometryError{
			Reason: "coincident references with same-kind constraints",
			Best:   result,
		}
	}

	p, err := planarSeed(c1, c2)
	if err != nil {
		if e, ok := err.(*DegenerateGeometryError); ok {
			e.Best = result
		}
		return result, err
	}

	best := result
	best.LinearResidualM = gomath.Inf(1)
	best.AngularResidualDeg = gomath.Inf(1)

	for iter := 0; iter < MaxIterations; iter++ {
		result.Iterations = iter + 1

		r1, err := evalConstraint(model, c1, p)
		if err != nil {
			return best, attachBest(err, withCandidate(best, p))
		}
		r2, err := evalConstraint(model, c2, p)
		if err != nil {
			return best, attachBest(err, withCandidate(best, p))
		}

		linRes := gomath.Max(r1.linearM, r2.linearM)
		angRes := gomath.Max(r1.angularDeg, r2.angularDeg)

		if score(linRes, angRes) < score(best.LinearResidualM, best.AngularResidualDeg) {
			best.Coordinate = p
			best.LinearResidualM = linRes
			best.AngularResidualDeg = angRes
			best.Iterations = result.Iterations
		}

		if linRes <= LinearToleranceM && angRes <= AngularToleranceDeg {
			best.Converged = true
			best.Coordinate = p
			best.LinearResidualM = linRes
			best.AngularResidualDeg = angRes
			best.Iterations = result.Iterations
			return best, nil
		}

		// Solve n1·d = -f1, n2·d = -f2 for the correction d in the
		// local east/north plane, in meters.
		det := r1.normal[0]*r2.normal[1] - r1.normal[1]*r2.normal[0]
		if gomath.Abs(det) < 1e-9 {
			return best, &DegenerateGeometryError{
				Reason: "parallel constraint gradients",
				Best:   best,
			}
		}
		dx := (-r1.signedM*r2.normal[1] + r2.signedM*r1.normal[1]) / det
		dy := (r1.signedM*r2.normal[0] - r2.signedM*r1.normal[0]) / det

		stepM := gomath.Hypot(dx, dy) * correctionDamping
		if stepM > maxCorrectionM {
			stepM = maxCorrectionM
		}
		if stepM < minCorrectionM {
			return best, &DegenerateGeometryError{
				Reason: "correction step vanished before tolerances were met",
				Best:   best,
			}
		}

		hdg := NormalizeHeading(degrees(gomath.Atan2(dx, dy)))
		if p, err = model.Direct(p, hdg, stepM); err != nil {
			return best, err
		}
	}

	return best, &ConvergenceError{Best: best}
}

func withCandidate(r Result, p Coordinate) Result {
	if gomath.IsInf(r.LinearResidualM, 1) {
		r.Coordinate = p
	}
	return r
}

func attachBest(err error, best Result) error {
	if e, ok := err.(*DegenerateGeometryError); ok {
		e.Best = best
	}
	return err
}

func score(linM, angDeg float64) float64 {
	// One degree of radial error at typical DME ranges dwarfs a meter
	// of distance error; weight accordingly when picking the best
	// candidate to report.
	return linM + angDeg*1e4
}

// residual of one constraint at a candidate point: the signed violation
// in meters, the unit direction (east, north) along which the violation
// grows, and the per-kind residuals used for the tolerance check.
type residual struct {
	signedM    float64
	normal     [2]float64
	linearM    float64
	angularDeg float64
}

func evalConstraint(model Model, c Constraint, p Coordinate) (residual, error) {
	sM, brg, _, err := model.Inverse(c.Reference, p)
	if err != nil {
		return residual{}, err
	}

	switch c.Kind {
	case DistanceConstraint:
		f := sM - c.Distance.Meters()
		b := radians(brg)
		return residual{
			signedM: f,
			normal:  [2]float64{gomath.Sin(b), gomath.Cos(b)},
			linearM: gomath.Abs(f),
		}, nil

	default: // RadialConstraint
		if sM < minCorrectionM {
			return residual{}, &DegenerateGeometryError{
				Reason: "candidate coincides with the radial reference",
			}
		}
		deltaDeg := HeadingSignedDifference(brg, c.Bearing.Degrees)
		crossM := gomath.Sin(radians(deltaDeg)) * sM
		t := radians(c.Bearing.Degrees)
		return residual{
			signedM:    crossM,
			normal:     [2]float64{gomath.Cos(t), -gomath.Sin(t)}, // right of the radial
			angularDeg: gomath.Abs(deltaDeg),
		}, nil
	}
}

///////////////////////////////////////////////////////////////////////////
// planar seed

// planarSeed triangulates the two constraints on a locally flat earth
// to produce the starting candidate for the iteration. The plane uses
// nautical-mile coordinates scaled about the references' mean latitude
// so both axes carry the same measure.
func planarSeed(c1, c2 Constraint) (Coordinate, error) {
	refLat := (c1.Reference.Latitude + c2.Reference.Latitude) / 2
	p1 := ll2nm(c1.Reference, refLat)
	p2 := ll2nm(c2.Reference, refLat)

	var seed [2]float64
	switch {
	case c1.Kind == RadialConstraint && c2.Kind == RadialConstraint:
		s, err := intersectLines(p1, c1.Bearing.Degrees, p2, c2.Bearing.Degrees)
		if err != nil {
			return Coordinate{}, err
		}
		seed = s

	case c1.Kind == DistanceConstraint && c2.Kind == DistanceConstraint:
		seed = intersectCircles(p1, c1.Distance.NM(), p2, c2.Distance.NM())

	case c1.Kind == RadialConstraint:
		seed = intersectRayCircle(p1, c1.Bearing.Degrees, p2, c2.Distance.NM())

	default:
		seed = intersectRayCircle(p2, c2.Bearing.Degrees, p1, c1.Distance.NM())
	}

	c := nm2ll(seed, refLat)
	return MakeCoordinate(clampLatitude(c.Latitude), wrapLongitude(c.Longitude))
}

func wrapLongitude(long float64) float64 {
	long = gomath.Mod(long, 360)
	if long > 180 {
		long -= 360
	} else if long < -180 {
		long += 360
	}
	return long
}

func headingVector(deg float64) [2]float64 {
	r := radians(deg)
	return [2]float64{gomath.Sin(r), gomath.Cos(r)}
}

func intersectLines(p1 [2]float64, hdg1 float64, p2 [2]float64, hdg2 float64) ([2]float64, error) {
	t1, t2 := headingVector(hdg1), headingVector(hdg2)
	det := t1[0]*-t2[1] - t1[1]*-t2[0]
	if gomath.Abs(det) < 1e-9 {
		return [2]float64{}, &DegenerateGeometryError{Reason: "parallel radials"}
	}
	w := [2]float64{p2[0] - p1[0], p2[1] - p1[1]}
	s := (w[0]*-t2[1] - w[1]*-t2[0]) / det
	return [2]float64{p1[0] + s*t1[0], p1[1] + s*t1[1]}, nil
}

// intersectRayCircle intersects the ray from p at heading hdg with the
// circle of the given radius around center, returning the nearest
// intersection along the ray, or the ray's closest approach to the
// circle when they miss. The iteration recovers the exact point either
// way.
func intersectRayCircle(p [2]float64, hdg float64, center [2]float64, radiusNM float64) [2]float64 {
	t := headingVector(hdg)
	w := [2]float64{p[0] - center[0], p[1] - center[1]}
	b := w[0]*t[0] + w[1]*t[1]
	c := w[0]*w[0] + w[1]*w[1] - radiusNM*radiusNM

	s := -b // closest approach
	if disc := b*b - c; disc >= 0 {
		root := gomath.Sqrt(disc)
		if s0 := -b - root; s0 >= 0 {
			s = s0
		} else if s1 := -b + root; s1 >= 0 {
			s = s1
		}
	}
	if s < 1 {
		// Never seed on top of the radial reference itself; start a
		// little way up the ray and let the iteration sort it out.
		s = 1
	}
	return [2]float64{p[0] + s*t[0], p[1] + s*t[1]}
}

// intersectCircles picks the left-of-baseline intersection of the two
// circles (see DESIGN.md for the tie-break), or the point between the
// centers proportional to the radii when the circles do not cross.
func intersectCircles(p1 [2]float64, r1 float64, p2 [2]float64, r2 float64) [2]float64 {
	dx, dy := p2[0]-p1[0], p2[1]-p1[1]
	d := gomath.Hypot(dx, dy)
	if d == 0 {
		return p1
	}
	ux, uy := dx/d, dy/d

	a := (r1*r1 - r2*r2 + d*d) / (2 * d)
	foot := [2]float64{p1[0] + a*ux, p1[1] + a*uy}

	h2 := r1*r1 - a*a
	if h2 <= 0 {
		return foot
	}
	h := gomath.Sqrt(h2)
	// Left perpendicular of the p1->p2 baseline.
	return [2]float64{foot[0] - h*uy, foot[1] + h*ux}
}

func clampLatitude(lat float64) float64 {
	return util.Clamp(lat, -90, 90)
}
