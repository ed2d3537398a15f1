// nav/nav_test.go
// Copyright(c) 2025 fixcalc contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package nav

import (
	"errors"
	gomath "math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mmp/fixcalc/aviation"
	"github.com/mmp/fixcalc/geo"
	"github.com/mmp/fixcalc/util"
)

func mustCoordinate(t *testing.T, lat, long float64) geo.Coordinate {
	t.Helper()
	c, err := geo.MakeCoordinate(lat, long)
	if err != nil {
		t.Fatalf("MakeCoordinate(%v, %v): %v", lat, long, err)
	}
	return c
}

func TestTrueBearingConversion(t *testing.T) {
	c := &Calculator{Model: geo.WGS84, Declination: aviation.ManualDeclination(-13)}
	p := mustCoordinate(t, 40.638022, -73.762272)

	b, _ := geo.MakeBearing(90, geo.MagneticBearing)
	tb, decl, err := c.TrueBearing(b, p)
	if err != nil {
		t.Fatalf("TrueBearing: %v", err)
	}
	if decl != -13 {
		t.Errorf("declination %v", decl)
	}
	if tb.Reference != geo.TrueBearing || gomath.Abs(tb.Degrees-77) > 1e-9 {
		t.Errorf("true bearing %+v, expected 77 true", tb)
	}

	// True input passes through untouched, even with no declination
	// source configured.
	c.Declination = nil
	b, _ = geo.MakeBearing(45, geo.TrueBearing)
	tb, _, err = c.TrueBearing(b, p)
	if err != nil || tb != b {
		t.Errorf("true bearing passthrough: %+v, %v", tb, err)
	}
}

func TestTrueBearingUnavailable(t *testing.T) {
	c := &Calculator{Model: geo.WGS84}
	b, _ := geo.MakeBearing(90, geo.MagneticBearing)
	_, _, err := c.TrueBearing(b, mustCoordinate(t, 40, -73))
	if !errors.Is(err, aviation.ErrDeclinationUnavailable) {
		t.Errorf("expected ErrDeclinationUnavailable, got %v", err)
	}
}

func TestWaypoint(t *testing.T) {
	c := &Calculator{Model: geo.WGS84, Declination: aviation.ManualDeclination(-13)}

	ref := mustCoordinate(t, 40.638022, -73.762272)
	b, _ := geo.MakeBearing(90, geo.MagneticBearing)
	d, _ := geo.MakeDistance(10)

	res, err := c.Waypoint(WaypointRequest{
		Reference: ref,
		Bearing:   b,
		Distance:  d,
		Airport:   "KJFK",
		VORIdent:  "JFK",
		Operation: aviation.Departure,
	})
	if err != nil {
		t.Fatalf("Waypoint: %v", err)
	}
	if !res.Converged {
		t.Fatalf("not converged: %+v", res.Result)
	}

	// The solve is along the true bearing (090M - 13E of west declination
	// = 077T), so the point ends up north of the reference.
	distM, brg, _, err := geo.WGS84.Inverse(ref, res.Coordinate)
	if err != nil {
		t.Fatalf("Inverse: %v", err)
	}
	if e := gomath.Abs(distM - 10*geo.MetersPerNM); e > geo.LinearToleranceM {
		t.Errorf("distance error %v m", e)
	}
	if e := geo.HeadingDifference(brg, 77); e > geo.AngularToleranceDeg {
		t.Errorf("bearing error %v deg", e)
	}

	// But the code carries the entered magnetic bearing.
	if !strings.Contains(res.Code, " D090J ") {
		t.Errorf("code %q should carry the entered bearing", res.Code)
	}
	if !strings.HasSuffix(res.Code, " JFK090010") {
		t.Errorf("code %q missing VOR suffix", res.Code)
	}
}

func TestWaypointRequiresDeclination(t *testing.T) {
	c := &Calculator{Model: geo.WGS84}
	b, _ := geo.MakeBearing(90, geo.MagneticBearing)
	d, _ := geo.MakeDistance(10)
	_, err := c.Waypoint(WaypointRequest{
		Reference: mustCoordinate(t, 40, -73),
		Bearing:   b,
		Distance:  d,
		Airport:   "KJFK",
		Operation: aviation.Departure,
	})
	if !errors.Is(err, aviation.ErrDeclinationUnavailable) {
		t.Errorf("expected ErrDeclinationUnavailable, got %v", err)
	}
}

func TestIntersectionNormalizesMagneticRadials(t *testing.T) {
	c := &Calculator{Model: geo.WGS84, Declination: aviation.ManualDeclination(-13)}

	r1 := mustCoordinate(t, 40.638022, -73.762272)
	r2 := mustCoordinate(t, 40.2, -72.9)

	truth, err := geo.WGS84.Direct(r1, 95, 40*geo.MetersPerNM)
	if err != nil {
		t.Fatalf("Direct: %v", err)
	}
	_, b1True, _, err := geo.WGS84.Inverse(r1, truth)
	if err != nil {
		t.Fatalf("Inverse: %v", err)
	}
	_, b2True, _, err := geo.WGS84.Inverse(r2, truth)
	if err != nil {
		t.Fatalf("Inverse: %v", err)
	}

	// Enter both radials as magnetic; the calculator must convert them
	// back to the same true radials before solving.
	b1 := geo.Bearing{Degrees: geo.NormalizeHeading(b1True - (-13)), Reference: geo.MagneticBearing}
	b2 := geo.Bearing{Degrees: geo.NormalizeHeading(b2True - (-13)), Reference: geo.MagneticBearing}

	res, err := c.Intersection(geo.RadialFrom(r1, b1), geo.RadialFrom(r2, b2))
	if err != nil {
		t.Fatalf("Intersection: %v", err)
	}
	if !res.Converged {
		t.Fatalf("not converged: %+v", res)
	}
	errM, _, _, err := geo.WGS84.Inverse(truth, res.Coordinate)
	if err != nil {
		t.Fatalf("Inverse: %v", err)
	}
	if errM > 5 {
		t.Errorf("solution %v m from the known intersection", errM)
	}
}

func TestIntersectionMagneticWithoutDeclination(t *testing.T) {
	c := &Calculator{Model: geo.WGS84}
	r1 := mustCoordinate(t, 40, -73)
	r2 := mustCoordinate(t, 41, -72)
	b, _ := geo.MakeBearing(90, geo.MagneticBearing)
	d, _ := geo.MakeDistance(10)

	_, err := c.Intersection(geo.RadialFrom(r1, b), geo.DistanceFrom(r2, d))
	if !errors.Is(err, aviation.ErrDeclinationUnavailable) {
		t.Errorf("expected ErrDeclinationUnavailable, got %v", err)
	}
}

func TestFix(t *testing.T) {
	c := &Calculator{Model: geo.WGS84, Declination: aviation.ManualDeclination(-13)}

	r1 := mustCoordinate(t, 40.638022, -73.762272)
	r2 := mustCoordinate(t, 41.066, -72.524)

	truth, err := geo.WGS84.Direct(r1, 57, 25*geo.MetersPerNM)
	if err != nil {
		t.Fatalf("Direct: %v", err)
	}
	_, radial, _, err := geo.WGS84.Inverse(r1, truth)
	if err != nil {
		t.Fatalf("Inverse: %v", err)
	}
	dmeM, _, _, err := geo.WGS84.Inverse(r2, truth)
	if err != nil {
		t.Fatalf("Inverse: %v", err)
	}

	res, err := c.Fix(FixRequest{
		Constraint1: geo.RadialFrom(r1, geo.Bearing{Degrees: radial, Reference: geo.TrueBearing}),
		Constraint2: geo.DistanceFrom(r2, geo.Distance(dmeM/geo.MetersPerNM)),
		Type:        aviation.FixVORDME,
		Usage:       aviation.FinalApproachFix,
		Runway:      4,
		Airport:     "KJFK",
		Operation:   aviation.Approach,
	})
	if err != nil {
		t.Fatalf("Fix: %v", err)
	}
	if !res.Converged {
		t.Fatalf("not converged: %+v", res.Result)
	}
	if !strings.Contains(res.Code, " FD04 KJFK KJ 4595785") {
		t.Errorf("fix code %q", res.Code)
	}
}

func TestResolveReference(t *testing.T) {
	navData := "3  40.638022 -73.762272      12 11330  130 -12.952  JFK ENRT K1 KENNEDY VOR/DME\n"
	fixData := " 40.858611  -72.745833 CCC45 ENRT K6\n"
	dir := t.TempDir()
	navFile := filepath.Join(dir, "earth_nav.dat")
	fixFile := filepath.Join(dir, "earth_fix.dat")
	if err := os.WriteFile(navFile, []byte(navData), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(fixFile, []byte(fixData), 0o644); err != nil {
		t.Fatal(err)
	}

	db, err := aviation.NewNavDatabase(navFile, fixFile)
	if err != nil {
		t.Fatalf("NewNavDatabase: %v", err)
	}
	c := &Calculator{Model: geo.WGS84, DB: db}

	var e util.ErrorLogger

	// Explicit coordinates skip the database.
	p, err := c.ResolveReference("40.5 -73.25", &e)
	if err != nil || p.Latitude != 40.5 || p.Longitude != -73.25 {
		t.Errorf("ResolveReference(coordinates) = %v, %v", p, err)
	}

	// Navaid idents come from the NAV file.
	if p, err = c.ResolveReference("JFK", &e); err != nil {
		t.Errorf("ResolveReference(JFK): %v", err)
	} else if gomath.Abs(p.Latitude-40.638022) > 1e-9 {
		t.Errorf("JFK at %v", p)
	}

	// Unknown navaids fall through to the FIX file.
	if p, err = c.ResolveReference("CCC45", &e); err != nil {
		t.Errorf("ResolveReference(CCC45): %v", err)
	} else if gomath.Abs(p.Longitude-(-72.745833)) > 1e-9 {
		t.Errorf("CCC45 at %v", p)
	}

	if _, err := c.ResolveReference("NOPE1", &e); !errors.Is(err, aviation.ErrFixNotFound) {
		t.Errorf("expected ErrFixNotFound, got %v", err)
	}
}
