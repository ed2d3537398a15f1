// nav/nav.go
// Copyright(c) 2025 fixcalc contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// Package nav ties the geodesic solvers to the aviation data layers: it
// resolves navaid and fix identifiers, converts magnetic radials to true
// using whichever declination source is configured, runs the projection
// or intersection solve, and renders the operational codes.
package nav

import (
	"github.com/mmp/fixcalc/aviation"
	"github.com/mmp/fixcalc/geo"
	"github.com/mmp/fixcalc/log"
	"github.com/mmp/fixcalc/util"
)

type Calculator struct {
	Model       geo.Model
	Declination aviation.DeclinationSource // may be nil
	DB          *aviation.NavDatabase      // may be nil
	Log         *log.Logger
}

// TrueBearing converts b to a true bearing using the declination at p.
// Magnetic input with no declination source configured is an error, never
// a silent zero-declination guess.
func (c *Calculator) TrueBearing(b geo.Bearing, p geo.Coordinate) (geo.Bearing, float64, error) {
	if b.Reference == geo.TrueBearing {
		return b, 0, nil
	}
	if c.Declination == nil {
		return geo.Bearing{}, 0, aviation.ErrDeclinationUnavailable
	}
	decl, err := c.Declination.Declination(p)
	if err != nil {
		return geo.Bearing{}, 0, err
	}
	return b.ToTrue(decl), decl, nil
}

// ResolveReference turns a user-entered reference into a coordinate: a
// "lat long" pair is used directly, anything else is looked up as a
// navaid and then as a fix.
func (c *Calculator) ResolveReference(s string, e *util.ErrorLogger) (geo.Coordinate, error) {
	if p, err := geo.ParseCoordinate(s); err == nil {
		return p, nil
	}
	if c.DB == nil {
		return geo.Coordinate{}, aviation.ErrNoNavFile
	}
	if p, err := c.DB.Navaid(s, e); err == nil {
		return p, nil
	} else if c.DB.FixFile == "" {
		return geo.Coordinate{}, err
	}
	return c.DB.Fix(s, e)
}

type WaypointRequest struct {
	Reference geo.Coordinate
	Bearing   geo.Bearing // as entered, magnetic or true
	Distance  geo.Distance
	Airport   string
	VORIdent  string
	Operation aviation.Operation
}

type WaypointResult struct {
	geo.Result
	Code           string
	TrueBearing    geo.Bearing
	DeclinationDeg float64
}

// Waypoint projects the requested bearing/distance from the reference and
// renders the waypoint code. The code carries the bearing as entered; the
// solved coordinate always reflects the true bearing.
func (c *Calculator) Waypoint(req WaypointRequest) (WaypointResult, error) {
	tb, decl, err := c.TrueBearing(req.Bearing, req.Reference)
	if err != nil {
		return WaypointResult{}, err
	}

	r, err := geo.Project(c.Model, req.Reference, tb, req.Distance)
	if err != nil {
		return WaypointResult{}, err
	}

	c.Log.Debug("projected waypoint", "reference", req.Reference, "true_bearing",
		tb.Degrees, "distance_nm", req.Distance.NM(), "result", r.Coordinate,
		"iterations", r.Iterations)

	wp := aviation.Waypoint{
		Coordinate: r.Coordinate,
		Bearing:    req.Bearing,
		Distance:   req.Distance,
		Airport:    req.Airport,
		VORIdent:   req.VORIdent,
		Operation:  req.Operation,
	}
	code, err := wp.Code()
	if err != nil {
		return WaypointResult{}, err
	}

	return WaypointResult{Result: r, Code: code, TrueBearing: tb, DeclinationDeg: decl}, nil
}

// Intersection normalizes any magnetic radials in the two constraints and
// solves for the point satisfying both.
func (c *Calculator) Intersection(c1, c2 geo.Constraint) (geo.Result, error) {
	c1, err := c.normalize(c1)
	if err != nil {
		return geo.Result{}, err
	}
	c2, err = c.normalize(c2)
	if err != nil {
		return geo.Result{}, err
	}

	r, err := geo.Intersect(c.Model, c1, c2)
	if err != nil {
		return r, err
	}
	c.Log.Debug("solved intersection", "result", r.Coordinate,
		"iterations", r.Iterations, "linear_residual_m", r.LinearResidualM)
	return r, nil
}

func (c *Calculator) normalize(con geo.Constraint) (geo.Constraint, error) {
	if con.Kind == geo.RadialConstraint && con.Bearing.Reference == geo.MagneticBearing {
		tb, _, err := c.TrueBearing(con.Bearing, con.Reference)
		if err != nil {
			return con, err
		}
		con.Bearing = tb
	}
	return con, nil
}

type FixRequest struct {
	Constraint1 geo.Constraint
	Constraint2 geo.Constraint
	Type        aviation.FixType
	Usage       aviation.FixUsage
	Runway      int
	Airport     string
	Operation   aviation.Operation
}

type FixResult struct {
	geo.Result
	Code string
}

// Fix solves the intersection the fix is defined by and renders its code.
func (c *Calculator) Fix(req FixRequest) (FixResult, error) {
	r, err := c.Intersection(req.Constraint1, req.Constraint2)
	if err != nil {
		return FixResult{}, err
	}

	fx := aviation.Fix{
		Coordinate: r.Coordinate,
		Type:       req.Type,
		Usage:      req.Usage,
		Runway:     req.Runway,
		Airport:    req.Airport,
		Operation:  req.Operation,
	}
	code, err := fx.Code()
	if err != nil {
		return FixResult{}, err
	}

	return FixResult{Result: r, Code: code}, nil
}
