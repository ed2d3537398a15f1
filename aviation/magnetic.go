// aviation/magnetic.go
// Copyright(c) 2025 fixcalc contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package aviation

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/mmp/fixcalc/geo"
	"github.com/mmp/fixcalc/util"
)

// DeclinationSource provides the magnetic declination (signed degrees,
// east positive) at a coordinate. The two implementations are a
// WMM-sampled grid and a fixed manually-entered value; a caller with
// neither must get an explicit ErrDeclinationUnavailable from the layer
// above, never a silent zero.
type DeclinationSource interface {
	Declination(p geo.Coordinate) (float64, error)
}

// ManualDeclination is a caller-supplied declination used for every
// coordinate.
type ManualDeclination float64

func (m ManualDeclination) Declination(geo.Coordinate) (float64, error) {
	return float64(m), nil
}

// MagneticGrid holds World Magnetic Model declination sampled on a
// regular latitude/longitude grid.
//
// To build a grid file:
//  1. Download software and coefficients from
//     https://www.ncei.noaa.gov/products/world-magnetic-model
//  2. Build wmm_grid, run it over the region of interest at altitude 0,
//     selecting "declination" for output.
//  3. Emit a header line "minlat maxlat minlong maxlong step" followed
//     by one declination sample per line, longitude varying fastest;
//     optionally zstd it: zstd -19 grid.txt -o magnetic_grid.txt.zst
type MagneticGrid struct {
	MinLatitude, MaxLatitude   float64
	MinLongitude, MaxLongitude float64
	LatLongStep                float64
	Samples                    []float64
}

func LoadMagneticGrid(path string) (*MagneticGrid, error) {
	r, err := util.OpenDataFile(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	mg, err := ParseMagneticGrid(r)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return mg, nil
}

func ParseMagneticGrid(r io.Reader) (*MagneticGrid, error) {
	sc := bufio.NewScanner(r)

	if !sc.Scan() {
		return nil, fmt.Errorf("missing grid header line")
	}
	hdr := strings.Fields(sc.Text())
	if len(hdr) != 5 {
		return nil, fmt.Errorf("grid header must be \"minlat maxlat minlong maxlong step\"")
	}
	var hv [5]float64
	for i, s := range hdr {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, fmt.Errorf("grid header %q: %w", s, err)
		}
		hv[i] = v
	}

	mg := &MagneticGrid{
		MinLatitude:  hv[0],
		MaxLatitude:  hv[1],
		MinLongitude: hv[2],
		MaxLongitude: hv[3],
		LatLongStep:  hv[4],
	}
	if mg.LatLongStep <= 0 || mg.MaxLatitude <= mg.MinLatitude || mg.MaxLongitude <= mg.MinLongitude {
		return nil, fmt.Errorf("degenerate grid bounds in header")
	}

	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		v, err := strconv.ParseFloat(line, 64)
		if err != nil {
			return nil, fmt.Errorf("%q: parsing error: %w", line, err)
		}
		mg.Samples = append(mg.Samples, v)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}

	nlat, nlong := mg.dims()
	if len(mg.Samples) != nlat*nlong {
		return nil, fmt.Errorf("found %d magnetic grid samples, expected %d x %d = %d",
			len(mg.Samples), nlat, nlong, nlat*nlong)
	}

	return mg, nil
}

func (mg *MagneticGrid) dims() (nlat, nlong int) {
	nlat = int(1 + (mg.MaxLatitude-mg.MinLatitude)/mg.LatLongStep)
	nlong = int(1 + (mg.MaxLongitude-mg.MinLongitude)/mg.LatLongStep)
	return
}

// Declination returns the sampled declination nearest p, east positive.
func (mg *MagneticGrid) Declination(p geo.Coordinate) (float64, error) {
	if p.Latitude < mg.MinLatitude || p.Latitude > mg.MaxLatitude ||
		p.Longitude < mg.MinLongitude || p.Longitude > mg.MaxLongitude {
		return 0, fmt.Errorf("%v: lookup point outside sampled magnetic grid", p)
	}

	nlat, nlong := mg.dims()

	// Round to nearest sample.
	lat := min(int((p.Latitude-mg.MinLatitude)/mg.LatLongStep+0.5), nlat-1)
	long := min(int((p.Longitude-mg.MinLongitude)/mg.LatLongStep+0.5), nlong-1)

	return mg.Samples[long+nlong*lat], nil
}
