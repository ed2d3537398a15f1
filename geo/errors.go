// geo/errors.go
// Copyright(c) 2025 fixcalc contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package geo

import (
	"errors"
	"fmt"
)

var (
	ErrAntipodal          = errors.New("Inverse geodesic is degenerate for antipodal points")
	ErrDegenerateGeometry = errors.New("Constraint geometry is singular")
)

// InvalidInputError reports an out of range or malformed input value
// along with the constraint it violated, so hosts can point the user at
// the offending field.
type InvalidInputError struct {
	Field      string
	Value      string
	Constraint string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("%s: invalid value %q: %s", e.Field, e.Value, e.Constraint)
}

// ConvergenceError reports that an iterative calculation ran out of its
// iteration budget before meeting tolerances. It carries the best
// candidate found so a caller can decide whether a near-miss is
// acceptable.
type ConvergenceError struct {
	Best Result
}

func (e *ConvergenceError) Error() string {
	return fmt.Sprintf("failed to converge after %d iterations: residual %.3f m / %.6f deg",
		e.Best.Iterations, e.Best.LinearResidualM, e.Best.AngularResidualDeg)
}

// DegenerateGeometryError wraps ErrDegenerateGeometry with the best
// candidate at the point the singularity was detected.
type DegenerateGeometryError struct {
	Reason string
	Best   Result
}

func (e *DegenerateGeometryError) Error() string {
	return ErrDegenerateGeometry.Error() + ": " + e.Reason
}

func (e *DegenerateGeometryError) Unwrap() error { return ErrDegenerateGeometry }
