// geo/project.go
// Copyright(c) 2025 fixcalc contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package geo

import (
	gomath "math"
)

const (
	// Convergence tolerances shared by projection verification and the
	// intersection solver: 1 meter and about 0.36 arcseconds.
	LinearToleranceM    = 1.0
	AngularToleranceDeg = 0.0001

	MaxIterations = 200

	// Segment length for the subdivided fallback projection.
	subdivisionStepNM = 500.0

	// Each verification failure doubles the segment count, up to this
	// many attempts after the initial single-step one.
	maxSubdivisionRetries = 4
)

// Mode records which operation produced a Result.
type Mode int

const (
	ProjectionMode Mode = iota
	IntersectionMode
)

func (m Mode) String() string {
	if m == IntersectionMode {
		return "intersection"
	}
	return "projection"
}

// Result is an immutable record of a solved coordinate along with the
// residual error achieved and how hard the solver had to work for it.
type Result struct {
	Coordinate         Coordinate
	LinearResidualM    float64
	AngularResidualDeg float64
	Converged          bool
	Iterations         int
	Mode               Mode

	// Tolerances the calculation was run with, for display and history.
	LinearToleranceM    float64
	AngularToleranceDeg float64
}

// Project computes the destination reached from origin along the given
// true bearing at the given distance. Every projection is verified by
// running Inverse from the origin to the computed destination and
// checking the recovered distance and bearing against what was asked
// for. If a single Direct evaluation misses tolerance, the distance is
// subdivided into constant-true-bearing segments (the operational
// convention holds the entered bearing at each step rather than
// following the turning geodesic) and retried with progressively finer
// subdivisions, keeping the most accurate candidate. Running out of
// retries surfaces a ConvergenceError carrying that candidate.
func Project(model Model, origin Coordinate, trueBearing Bearing, dist Distance) (Result, error) {
	if trueBearing.Reference != TrueBearing {
		return Result{}, &InvalidInputError{
			Field:      "bearing",
			Value:      trueBearing.Reference.String(),
			Constraint: "projection requires a true bearing",
		}
	}

	result := Result{
		Mode:                ProjectionMode,
		LinearToleranceM:    LinearToleranceM,
		AngularToleranceDeg: AngularToleranceDeg,
	}

	if dist == 0 {
		result.Coordinate = origin
		result.Converged = true
		return result, nil
	}

	best := result
	best.LinearResidualM = gomath.Inf(1)
	best.AngularResidualDeg = gomath.Inf(1)

	steps := 1
	iterations := 0
	for attempt := 0; attempt <= maxSubdivisionRetries; attempt++ {
		p, err := projectSteps(model, origin, trueBearing.Degrees, dist.Meters(), steps)
		if err != nil {
			return Result{}, err
		}
		iterations += steps

		distErrM, brgErrDeg, err := verify(model, origin, p, trueBearing.Degrees, dist.Meters())
		if err != nil {
			return Result{}, err
		}

		if distErrM < best.LinearResidualM {
			best.Coordinate = p
			best.LinearResidualM = distErrM
			best.AngularResidualDeg = brgErrDeg
		}

		if distErrM <= LinearToleranceM && brgErrDeg <= AngularToleranceDeg {
			best.Converged = true
			best.Iterations = iterations
			return best, nil
		}

		if steps == 1 {
			steps = max(2, int(gomath.Ceil(dist.NM()/subdivisionStepNM)))
		} else {
			steps *= 2
		}
	}

	best.Iterations = iterations
	return best, &ConvergenceError{Best: best}
}

func projectSteps(model Model, origin Coordinate, trueBearing, meters float64, steps int) (Coordinate, error) {
	p := origin
	stepM := meters / float64(steps)
	for i := 0; i < steps; i++ {
		var err error
		if p, err = model.Direct(p, trueBearing, stepM); err != nil {
			return Coordinate{}, err
		}
	}
	return p, nil
}

// verify recovers distance and initial bearing from origin to p and
// returns how far each is from what was asked for. Very short
// projections have numerically meaningless recovered bearings, so the
// bearing error is suppressed below a tenth of the linear tolerance.
func verify(model Model, origin, p Coordinate, trueBearing, meters float64) (distErrM, brgErrDeg float64, err error) {
	actualM, actualBrg, _, err := model.Inverse(origin, p)
	if err != nil {
		return 0, 0, err
	}

	distErrM = gomath.Abs(actualM - meters)
	if actualM > LinearToleranceM/10 {
		brgErrDeg = HeadingDifference(actualBrg, trueBearing)
	}
	return distErrM, brgErrDeg, nil
}
