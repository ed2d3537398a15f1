// geo/geo_test.go
// Copyright(c) 2025 fixcalc contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package geo

import (
	"errors"
	gomath "math"
	"testing"
)

func TestMakeCoordinate(t *testing.T) {
	type tc struct {
		lat, long float64
		ok        bool
	}
	for _, c := range []tc{
		{0, 0, true}, {90, 180, true}, {-90, -180, true}, {40.638, -73.762, true},
		{90.0001, 0, false}, {-91, 0, false}, {0, 180.5, false}, {0, -181, false},
		{gomath.NaN(), 0, false}, {0, gomath.Inf(1), false},
	} {
		_, err := MakeCoordinate(c.lat, c.long)
		if (err == nil) != c.ok {
			t.Errorf("MakeCoordinate(%v, %v): got err %v, expected ok=%v", c.lat, c.long, err, c.ok)
		}
	}
}

func TestParseCoordinate(t *testing.T) {
	p, err := ParseCoordinate("40.638022 -73.762272")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Latitude != 40.638022 || p.Longitude != -73.762272 {
		t.Errorf("got %v", p)
	}

	for _, s := range []string{"", "40.1", "40.1 -73.1 5", "forty -73", "40.1 west"} {
		if _, err := ParseCoordinate(s); err == nil {
			t.Errorf("%q: expected error", s)
		} else {
			var inv *InvalidInputError
			if !errors.As(err, &inv) {
				t.Errorf("%q: expected InvalidInputError, got %T", s, err)
			}
		}
	}
}

func TestCoordinateString(t *testing.T) {
	p, _ := MakeCoordinate(40.5, -73.25)
	if s := p.String(); s != "40.500000000 -73.250000000" {
		t.Errorf("got %q", s)
	}
}

func TestMakeBearing(t *testing.T) {
	for _, deg := range []float64{0, 359.999, 123.4} {
		if _, err := MakeBearing(deg, TrueBearing); err != nil {
			t.Errorf("MakeBearing(%v): unexpected error %v", deg, err)
		}
	}
	for _, deg := range []float64{-0.1, 360, 720, gomath.NaN()} {
		if _, err := MakeBearing(deg, TrueBearing); err == nil {
			t.Errorf("MakeBearing(%v): expected error", deg)
		}
	}
}

func TestBearingConversion(t *testing.T) {
	type tc struct {
		mag, decl, tru float64
	}
	for _, c := range []tc{
		{90, 13, 103}, {355, 10, 5}, {5, -10, 355}, {0, 0, 0}, {180, -4.5, 175.5},
	} {
		b, _ := MakeBearing(c.mag, MagneticBearing)
		tb := b.ToTrue(c.decl)
		if tb.Reference != TrueBearing {
			t.Errorf("ToTrue did not retag bearing")
		}
		if gomath.Abs(tb.Degrees-c.tru) > 1e-9 {
			t.Errorf("ToTrue(%v, %v) = %v, expected %v", c.mag, c.decl, tb.Degrees, c.tru)
		}

		back := tb.ToMagnetic(c.decl)
		if gomath.Abs(back.Degrees-c.mag) > 1e-9 || back.Reference != MagneticBearing {
			t.Errorf("ToMagnetic round trip gave %v, expected %v", back.Degrees, c.mag)
		}
	}

	// Already-true bearings pass through conversion unchanged.
	b, _ := MakeBearing(42, TrueBearing)
	if tb := b.ToTrue(10); tb.Degrees != 42 {
		t.Errorf("ToTrue on true bearing changed it: %v", tb.Degrees)
	}
}

func TestMakeDistance(t *testing.T) {
	if d, err := MakeDistance(12.5); err != nil || d.NM() != 12.5 || d.Meters() != 12.5*1852 {
		t.Errorf("MakeDistance(12.5): %v %v", d, err)
	}
	for _, nm := range []float64{-1, gomath.NaN(), gomath.Inf(1)} {
		if _, err := MakeDistance(nm); err == nil {
			t.Errorf("MakeDistance(%v): expected error", nm)
		}
	}
}

func TestNormalizeHeading(t *testing.T) {
	type tc struct{ h, n float64 }
	for _, c := range []tc{{0, 0}, {360, 0}, {-90, 270}, {725, 5}, {180, 180}} {
		if got := NormalizeHeading(c.h); gomath.Abs(got-c.n) > 1e-9 {
			t.Errorf("NormalizeHeading(%v) = %v, expected %v", c.h, got, c.n)
		}
	}
}

func TestHeadingDifference(t *testing.T) {
	type tc struct{ a, b, d float64 }
	for _, c := range []tc{{10, 90, 80}, {350, 12, 22}, {340, 120, 140}, {0, 180, 180}} {
		if got := HeadingDifference(c.a, c.b); gomath.Abs(got-c.d) > 1e-9 {
			t.Errorf("HeadingDifference(%v, %v) = %v, expected %v", c.a, c.b, got, c.d)
		}
		if got := HeadingDifference(c.b, c.a); gomath.Abs(got-c.d) > 1e-9 {
			t.Errorf("HeadingDifference(%v, %v) = %v, expected %v", c.b, c.a, got, c.d)
		}
	}
}

func TestHeadingSignedDifference(t *testing.T) {
	type tc struct{ a, b, d float64 }
	for _, c := range []tc{{10, 350, 20}, {350, 10, -20}, {90, 45, 45}, {45, 90, -45}} {
		if got := HeadingSignedDifference(c.a, c.b); gomath.Abs(got-c.d) > 1e-9 {
			t.Errorf("HeadingSignedDifference(%v, %v) = %v, expected %v", c.a, c.b, got, c.d)
		}
	}
}

func TestInverseSymmetry(t *testing.T) {
	a, _ := MakeCoordinate(40.638022, -73.762272)
	b, _ := MakeCoordinate(51.4775, -0.461389)

	dab, brgAB, backAB, err := WGS84.Inverse(a, b)
	if err != nil {
		t.Fatalf("Inverse: %v", err)
	}
	dba, brgBA, backBA, err := WGS84.Inverse(b, a)
	if err != nil {
		t.Fatalf("Inverse: %v", err)
	}

	if gomath.Abs(dab-dba) > 0.001 {
		t.Errorf("asymmetric distances: %v vs %v", dab, dba)
	}
	// The bearing at b back toward a is the bearing Inverse(b,a) reports
	// at b outbound, and vice versa.
	if HeadingDifference(backAB, brgBA) > 1e-6 {
		t.Errorf("back bearing at b %v != forward bearing b->a %v", backAB, brgBA)
	}
	if HeadingDifference(backBA, brgAB) > 1e-6 {
		t.Errorf("back bearing at a %v != forward bearing a->b %v", backBA, brgAB)
	}
}

func TestInverseAntipodal(t *testing.T) {
	a, _ := MakeCoordinate(40, -73)
	b, _ := MakeCoordinate(-40, 107)
	if _, _, _, err := WGS84.Inverse(a, b); !errors.Is(err, ErrAntipodal) {
		t.Errorf("expected ErrAntipodal, got %v", err)
	}

	np, _ := MakeCoordinate(90, 0)
	sp, _ := MakeCoordinate(-90, 120)
	if _, _, _, err := WGS84.Inverse(np, sp); !errors.Is(err, ErrAntipodal) {
		t.Errorf("pole to pole: expected ErrAntipodal, got %v", err)
	}

	if _, _, _, err := WGS84.Inverse(a, a); err != nil {
		t.Errorf("coincident points are not antipodal: %v", err)
	}
}
