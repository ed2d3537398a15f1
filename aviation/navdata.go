// aviation/navdata.go
// Copyright(c) 2025 fixcalc contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package aviation

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/mmp/fixcalc/geo"
	"github.com/mmp/fixcalc/util"
)

// NavDatabase resolves navaid and FIX identifiers to coordinates by
// searching X-Plane format earth_nav.dat / earth_fix.dat files (plain or
// zstd compressed). Files are scanned on demand; resolved identifiers are
// kept in an LRU cache so repeated lookups in a batch run don't rescan.
type NavDatabase struct {
	NavFile string
	FixFile string
	cache   *lru.Cache[navKey, geo.Coordinate]
}

type navKey struct {
	fix   bool
	ident string
}

const navCacheSize = 128

func NewNavDatabase(navFile, fixFile string) (*NavDatabase, error) {
	cache, err := lru.New[navKey, geo.Coordinate](navCacheSize)
	if err != nil {
		return nil, err
	}
	return &NavDatabase{NavFile: navFile, FixFile: fixFile, cache: cache}, nil
}

// Navaid returns the coordinate of the named VOR/NDB station. Rows for
// paired DMEs (row codes 12 and 13) repeat the station identifier and are
// skipped so that the navaid's own position wins. Malformed rows are
// recorded in e and scanning continues.
func (db *NavDatabase) Navaid(ident string, e *util.ErrorLogger) (geo.Coordinate, error) {
	if db.NavFile == "" {
		return geo.Coordinate{}, ErrNoNavFile
	}
	ident = strings.ToUpper(strings.TrimSpace(ident))

	if p, ok := db.cache.Get(navKey{ident: ident}); ok {
		return p, nil
	}

	e.Push("NAV file " + db.NavFile)
	defer e.Pop()

	r, err := util.OpenDataFile(db.NavFile)
	if err != nil {
		return geo.Coordinate{}, err
	}
	defer r.Close()

	sc := bufio.NewScanner(r)
	for line := 1; sc.Scan(); line++ {
		f := strings.Fields(sc.Text())
		if len(f) < 8 {
			continue
		}
		if f[0] == "12" || f[0] == "13" {
			continue
		}
		if f[7] != ident {
			continue
		}

		p, perr := parseRowCoordinate(f[1], f[2])
		if perr != nil {
			e.ErrorString("line %d: %v", line, perr)
			continue
		}
		db.cache.Add(navKey{ident: ident}, p)
		return p, nil
	}
	if err := sc.Err(); err != nil {
		return geo.Coordinate{}, err
	}

	return geo.Coordinate{}, fmt.Errorf("%s: %w", ident, ErrNavaidNotFound)
}

// Fix returns the coordinate of the named en route or terminal fix.
func (db *NavDatabase) Fix(ident string, e *util.ErrorLogger) (geo.Coordinate, error) {
	if db.FixFile == "" {
		return geo.Coordinate{}, ErrNoFixFile
	}
	ident = strings.ToUpper(strings.TrimSpace(ident))

	if p, ok := db.cache.Get(navKey{fix: true, ident: ident}); ok {
		return p, nil
	}

	e.Push("FIX file " + db.FixFile)
	defer e.Pop()

	r, err := util.OpenDataFile(db.FixFile)
	if err != nil {
		return geo.Coordinate{}, err
	}
	defer r.Close()

	sc := bufio.NewScanner(r)
	for line := 1; sc.Scan(); line++ {
		f := strings.Fields(sc.Text())
		if len(f) < 3 {
			continue
		}
		if f[2] != ident {
			continue
		}

		p, perr := parseRowCoordinate(f[0], f[1])
		if perr != nil {
			e.ErrorString("line %d: %v", line, perr)
			continue
		}
		db.cache.Add(navKey{fix: true, ident: ident}, p)
		return p, nil
	}
	if err := sc.Err(); err != nil {
		return geo.Coordinate{}, err
	}

	return geo.Coordinate{}, fmt.Errorf("%s: %w", ident, ErrFixNotFound)
}

func parseRowCoordinate(slat, slong string) (geo.Coordinate, error) {
	lat, err := strconv.ParseFloat(slat, 64)
	if err != nil {
		return geo.Coordinate{}, fmt.Errorf("latitude %q: %w", slat, err)
	}
	long, err := strconv.ParseFloat(slong, 64)
	if err != nil {
		return geo.Coordinate{}, fmt.Errorf("longitude %q: %w", slong, err)
	}
	return geo.MakeCoordinate(lat, long)
}
