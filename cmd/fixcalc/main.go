// cmd/fixcalc/main.go
// Copyright(c) 2025 fixcalc contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// fixcalc computes waypoint and fix positions from VOR radials, DME
// distances, and their intersections, and prints the corresponding
// operational codes.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/mmp/fixcalc/aviation"
	"github.com/mmp/fixcalc/geo"
	"github.com/mmp/fixcalc/history"
	"github.com/mmp/fixcalc/log"
	"github.com/mmp/fixcalc/nav"
	"github.com/mmp/fixcalc/util"
)

var (
	logLevel    = flag.String("loglevel", "info", "logging level: debug, info, warn, error")
	logDir      = flag.String("logdir", "", "log file directory")
	navFile     = flag.String("nav", "", "path to earth_nav.dat format navaid file (may be .zst)")
	fixFile     = flag.String("fixdata", "", "path to earth_fix.dat format fix file (may be .zst)")
	gridFile    = flag.String("grid", "", "path to sampled magnetic declination grid (may be .zst)")
	declination = flag.String("declination", "", "manual magnetic declination, degrees east positive")
	historyFile = flag.String("history", "", "path to calculation history file")
	clearHist   = flag.Bool("clearhistory", false, "discard saved calculation history")

	airport   = flag.String("airport", "", "4-letter airport code")
	vorIdent  = flag.String("vor", "", "VOR identifier for the waypoint code (1-3 letters)")
	operation = flag.String("operation", "Departure", "operation type: Departure, Arrival, or Approach")

	reference = flag.String("ref", "", "reference: navaid/fix identifier or \"lat long\"")
	bearing   = flag.String("bearing", "", "bearing in degrees; M or T suffix selects magnetic or true (default magnetic)")
	distance  = flag.String("distance", "", "distance in nautical miles")
	batchFile = flag.String("batch", "", "file of \"ref bearing distance\" waypoint requests, one per line")
	nWorkers  = flag.Int("nworkers", 8, "number of worker goroutines for batch requests")

	ref1    = flag.String("ref1", "", "first constraint reference: identifier or \"lat long\"")
	radial1 = flag.String("radial1", "", "first constraint radial, degrees")
	dme1    = flag.String("dme1", "", "first constraint DME distance, nautical miles")
	ref2    = flag.String("ref2", "", "second constraint reference: identifier or \"lat long\"")
	radial2 = flag.String("radial2", "", "second constraint radial, degrees")
	dme2    = flag.String("dme2", "", "second constraint DME distance, nautical miles")

	fixType  = flag.String("type", "RNP", "fix type: VORDME, VOR, NDBDME, NDB, ILS, or RNP")
	fixUsage = flag.String("usage", "F", "fix usage: full name or letter code (F, A, I, C, M)")
	runway   = flag.Int("runway", 0, "runway number the fix serves, 0-99")
)

func usage() {
	fmt.Fprintf(os.Stderr, "usage: fixcalc [flags] waypoint|fix|intersect|history\nwhere [flags] may be:\n")
	flag.PrintDefaults()
	os.Exit(1)
}

func main() {
	flag.Parse()

	lg := log.New(*logLevel, *logDir)
	defer lg.CatchAndLogCrash()

	if len(flag.Args()) != 1 {
		usage()
	}

	calc, err := makeCalculator(lg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "fixcalc: %v\n", err)
		os.Exit(1)
	}

	var hist *history.Store
	if *historyFile != "" {
		hist, err = history.Load(*historyFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "fixcalc: %v\n", err)
			os.Exit(1)
		}
		if *clearHist {
			hist.Clear()
		}
	}

	var e util.ErrorLogger
	switch strings.ToLower(flag.Arg(0)) {
	case "waypoint":
		if *batchFile != "" {
			err = runBatch(calc, hist, &e)
		} else {
			err = runWaypoint(calc, hist, &e)
		}
	case "intersect":
		err = runIntersect(calc, hist, &e)
	case "fix":
		err = runFix(calc, hist, &e)
	case "history":
		err = runHistory(hist)
	default:
		usage()
	}

	if e.HaveErrors() {
		e.PrintErrors(lg)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "fixcalc: %v\n", err)
		os.Exit(1)
	}

	if hist != nil {
		if err := hist.Save(); err != nil {
			fmt.Fprintf(os.Stderr, "fixcalc: saving history: %v\n", err)
			os.Exit(1)
		}
	}
}

func makeCalculator(lg *log.Logger) (*nav.Calculator, error) {
	c := &nav.Calculator{Model: geo.WGS84, Log: lg}

	if *navFile != "" || *fixFile != "" {
		db, err := aviation.NewNavDatabase(*navFile, *fixFile)
		if err != nil {
			return nil, err
		}
		c.DB = db
	}

	switch {
	case *declination != "":
		d, err := strconv.ParseFloat(*declination, 64)
		if err != nil {
			return nil, fmt.Errorf("-declination %q: %w", *declination, err)
		}
		c.Declination = aviation.ManualDeclination(d)
	case *gridFile != "":
		mg, err := aviation.LoadMagneticGrid(*gridFile)
		if err != nil {
			return nil, err
		}
		c.Declination = mg
	}

	return c, nil
}

// parseBearingArg handles an optional M or T suffix; plain numbers are
// taken as magnetic, which is how radials and headings are given
// operationally.
func parseBearingArg(s string) (geo.Bearing, error) {
	ref := geo.MagneticBearing
	if n := len(s); n > 0 {
		switch s[n-1] {
		case 'M', 'm':
			s = s[:n-1]
		case 'T', 't':
			ref = geo.TrueBearing
			s = s[:n-1]
		}
	}
	return geo.ParseBearing(s, ref)
}

func parseOperationFlag() (aviation.Operation, error) {
	return aviation.ParseOperation(*operation)
}

func waypointRequest(calc *nav.Calculator, ref, brg, dist string, e *util.ErrorLogger) (nav.WaypointRequest, error) {
	var req nav.WaypointRequest
	var err error

	if req.Reference, err = calc.ResolveReference(ref, e); err != nil {
		return req, err
	}
	if req.Bearing, err = parseBearingArg(brg); err != nil {
		return req, err
	}
	if req.Distance, err = geo.ParseDistance(dist); err != nil {
		return req, err
	}
	if req.Operation, err = parseOperationFlag(); err != nil {
		return req, err
	}
	req.Airport = *airport
	req.VORIdent = *vorIdent
	return req, nil
}

func recordHistory(hist *history.Store, kind, input, code string) {
	if hist != nil {
		hist.Add(history.Entry{Kind: kind, Input: input, Code: code})
	}
}

func runWaypoint(calc *nav.Calculator, hist *history.Store, e *util.ErrorLogger) error {
	if *reference == "" || *bearing == "" || *distance == "" {
		return fmt.Errorf("waypoint requires -ref, -bearing, and -distance")
	}

	req, err := waypointRequest(calc, *reference, *bearing, *distance, e)
	if err != nil {
		return err
	}
	res, err := calc.Waypoint(req)
	if err != nil {
		return err
	}

	fmt.Println(res.Code)
	recordHistory(hist, "waypoint", *reference+" "+*bearing+" "+*distance, res.Code)
	return nil
}

// runBatch computes one waypoint per input line, concurrently, and prints
// the codes in input order.
func runBatch(calc *nav.Calculator, hist *history.Store, e *util.ErrorLogger) error {
	f, err := os.Open(*batchFile)
	if err != nil {
		return err
	}
	defer f.Close()

	var lines []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		if l := strings.TrimSpace(sc.Text()); l != "" && !strings.HasPrefix(l, "#") {
			lines = append(lines, l)
		}
	}
	if err := sc.Err(); err != nil {
		return err
	}

	// Resolve references serially so parse and lookup failures can be
	// reported with their line numbers; only the solves run concurrently.
	reqs := make([]nav.WaypointRequest, len(lines))
	for i, l := range lines {
		fields := strings.Fields(l)
		if len(fields) != 3 {
			return fmt.Errorf("%s line %d: expected \"ref bearing distance\"", *batchFile, i+1)
		}
		if reqs[i], err = waypointRequest(calc, fields[0], fields[1], fields[2], e); err != nil {
			return fmt.Errorf("%s line %d: %w", *batchFile, i+1, err)
		}
	}

	results := make([]nav.WaypointResult, len(reqs))
	var eg errgroup.Group
	eg.SetLimit(*nWorkers)
	for i, req := range reqs {
		i, req := i, req
		eg.Go(func() error {
			var err error
			results[i], err = calc.Waypoint(req)
			return err
		})
	}
	if err := eg.Wait(); err != nil {
		return err
	}

	for i, code := range util.MapSlice(results, func(r nav.WaypointResult) string { return r.Code }) {
		fmt.Println(code)
		recordHistory(hist, "waypoint", lines[i], code)
	}
	return nil
}

func constraints(calc *nav.Calculator, e *util.ErrorLogger) (geo.Constraint, geo.Constraint, error) {
	c1, err := constraint(calc, *ref1, *radial1, *dme1, e)
	if err != nil {
		return geo.Constraint{}, geo.Constraint{}, fmt.Errorf("first constraint: %w", err)
	}
	c2, err := constraint(calc, *ref2, *radial2, *dme2, e)
	if err != nil {
		return geo.Constraint{}, geo.Constraint{}, fmt.Errorf("second constraint: %w", err)
	}
	return c1, c2, nil
}

func constraint(calc *nav.Calculator, ref, radial, dme string, e *util.ErrorLogger) (geo.Constraint, error) {
	if ref == "" {
		return geo.Constraint{}, fmt.Errorf("missing reference")
	}
	p, err := calc.ResolveReference(ref, e)
	if err != nil {
		return geo.Constraint{}, err
	}

	switch {
	case radial != "" && dme != "":
		return geo.Constraint{}, fmt.Errorf("give a radial or a DME distance, not both")
	case radial != "":
		b, err := parseBearingArg(radial)
		if err != nil {
			return geo.Constraint{}, err
		}
		return geo.RadialFrom(p, b), nil
	case dme != "":
		d, err := geo.ParseDistance(dme)
		if err != nil {
			return geo.Constraint{}, err
		}
		return geo.DistanceFrom(p, d), nil
	default:
		return geo.Constraint{}, fmt.Errorf("missing radial or DME distance")
	}
}

func runIntersect(calc *nav.Calculator, hist *history.Store, e *util.ErrorLogger) error {
	c1, c2, err := constraints(calc, e)
	if err != nil {
		return err
	}

	r, err := calc.Intersection(c1, c2)
	if err != nil {
		return err
	}

	fmt.Println(r.Coordinate)
	recordHistory(hist, "intersection", constraintInput(), r.Coordinate.String())
	return nil
}

func runFix(calc *nav.Calculator, hist *history.Store, e *util.ErrorLogger) error {
	c1, c2, err := constraints(calc, e)
	if err != nil {
		return err
	}

	req := nav.FixRequest{Constraint1: c1, Constraint2: c2, Runway: *runway, Airport: *airport}
	if req.Type, err = aviation.ParseFixType(*fixType); err != nil {
		return err
	}
	if req.Usage, err = aviation.ParseFixUsage(*fixUsage); err != nil {
		return err
	}
	if req.Operation, err = parseOperationFlag(); err != nil {
		return err
	}

	res, err := calc.Fix(req)
	if err != nil {
		return err
	}

	fmt.Println(res.Code)
	recordHistory(hist, "fix", constraintInput(), res.Code)
	return nil
}

func constraintInput() string {
	c := func(ref, radial, dme string) string {
		if radial != "" {
			return ref + " R" + radial
		}
		return ref + " D" + dme
	}
	return c(*ref1, *radial1, *dme1) + " / " + c(*ref2, *radial2, *dme2)
}

func runHistory(hist *history.Store) error {
	if hist == nil {
		return fmt.Errorf("no -history file given")
	}
	for _, e := range hist.Entries() {
		fmt.Printf("%s  %-12s %-30s %s\n", e.Time.Format("2006-01-02 15:04"), e.Kind, e.Input, e.Code)
	}
	return nil
}
