// aviation/codec.go
// Copyright(c) 2025 fixcalc contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package aviation

import (
	"fmt"
	gomath "math"
	"strings"

	"github.com/mmp/fixcalc/geo"
)

// The waypoint and FIX code grammars are operational conventions; the
// letter bandings and code tables below are data, validated at parse
// time, so they can be extended without touching the geometry engine.

///////////////////////////////////////////////////////////////////////////
// operations

type Operation int

const (
	Departure Operation = iota
	Arrival
	Approach
)

var operationCodes = [...]string{
	Departure: "4464713",
	Arrival:   "4530249",
	Approach:  "4595785",
}

var operationNames = [...]string{
	Departure: "Departure",
	Arrival:   "Arrival",
	Approach:  "Approach",
}

func (o Operation) Code() (string, error) {
	if o < 0 || int(o) >= len(operationCodes) {
		return "", ErrUnknownOperation
	}
	return operationCodes[o], nil
}

func (o Operation) String() string {
	if o < 0 || int(o) >= len(operationNames) {
		return "unknown"
	}
	return operationNames[o]
}

func ParseOperation(s string) (Operation, error) {
	for op, name := range operationNames {
		if strings.EqualFold(s, name) {
			return Operation(op), nil
		}
	}
	return 0, fmt.Errorf("%q: %w", s, ErrUnknownOperation)
}

///////////////////////////////////////////////////////////////////////////
// FIX type and usage codes

type FixType int

const (
	FixVORDME FixType = iota
	FixVOR
	FixNDBDME
	FixNDB
	FixILS
	FixRNP
)

var fixTypeCodes = [...]struct {
	name string
	code byte
}{
	FixVORDME: {"VORDME", 'D'},
	FixVOR:    {"VOR", 'V'},
	FixNDBDME: {"NDBDME", 'Q'},
	FixNDB:    {"NDB", 'N'},
	FixILS:    {"ILS", 'I'},
	FixRNP:    {"RNP", 'R'},
}

func (t FixType) Code() (byte, error) {
	if t < 0 || int(t) >= len(fixTypeCodes) {
		return 0, ErrUnknownFixType
	}
	return fixTypeCodes[t].code, nil
}

func (t FixType) String() string {
	if t < 0 || int(t) >= len(fixTypeCodes) {
		return "unknown"
	}
	return fixTypeCodes[t].name
}

func ParseFixType(s string) (FixType, error) {
	for ft, tc := range fixTypeCodes {
		if strings.EqualFold(s, tc.name) {
			return FixType(ft), nil
		}
	}
	return 0, fmt.Errorf("%q: %w", s, ErrUnknownFixType)
}

type FixUsage int

const (
	FinalApproachFix FixUsage = iota
	InitialApproachFix
	IntermediateApproachFix
	FinalApproachCourseFix
	MissedApproachPointFix
)

var fixUsageCodes = [...]struct {
	name string
	code byte
}{
	FinalApproachFix:        {"Final approach fix", 'F'},
	InitialApproachFix:      {"Initial approach fix", 'A'},
	IntermediateApproachFix: {"Intermediate approach fix", 'I'},
	FinalApproachCourseFix:  {"Final approach course fix", 'C'},
	MissedApproachPointFix:  {"Missed approach point fix", 'M'},
}

func (u FixUsage) Code() (byte, error) {
	if u < 0 || int(u) >= len(fixUsageCodes) {
		return 0, ErrUnknownFixUsage
	}
	return fixUsageCodes[u].code, nil
}

func (u FixUsage) String() string {
	if u < 0 || int(u) >= len(fixUsageCodes) {
		return "unknown"
	}
	return fixUsageCodes[u].name
}

// ParseFixUsage accepts either the full usage name or its single-letter
// code.
func ParseFixUsage(s string) (FixUsage, error) {
	for fu, uc := range fixUsageCodes {
		if strings.EqualFold(s, uc.name) || (len(s) == 1 && s[0] == uc.code) {
			return FixUsage(fu), nil
		}
	}
	return 0, fmt.Errorf("%q: %w", s, ErrUnknownFixUsage)
}

///////////////////////////////////////////////////////////////////////////
// radius letters

// Distances up to the grammar boundary are encoded as a single letter:
// A covers up to 1.5 NM, then one letter per nautical mile band through
// Z at 26.5.
const ShortDistanceMaxNM = 26.5

var radiusBands = [...]struct {
	low, high float64
	letter    byte
}{
	{0.1, 1.5, 'A'}, {1.5, 2.5, 'B'}, {2.5, 3.5, 'C'}, {3.5, 4.5, 'D'},
	{4.5, 5.5, 'E'}, {5.5, 6.5, 'F'}, {6.5, 7.5, 'G'}, {7.5, 8.5, 'H'},
	{8.5, 9.5, 'I'}, {9.5, 10.5, 'J'}, {10.5, 11.5, 'K'}, {11.5, 12.5, 'L'},
	{12.5, 13.5, 'M'}, {13.5, 14.5, 'N'}, {14.5, 15.5, 'O'}, {15.5, 16.5, 'P'},
	{16.5, 17.5, 'Q'}, {17.5, 18.5, 'R'}, {18.5, 19.5, 'S'}, {19.5, 20.5, 'T'},
	{20.5, 21.5, 'U'}, {21.5, 22.5, 'V'}, {22.5, 23.5, 'W'}, {23.5, 24.5, 'X'},
	{24.5, 25.5, 'Y'}, {25.5, 26.5, 'Z'},
}

func RadiusLetter(distanceNM float64) byte {
	for _, b := range radiusBands {
		if distanceNM >= b.low && distanceNM < b.high {
			return b.letter
		}
	}
	if distanceNM < radiusBands[0].low {
		return radiusBands[0].letter
	}
	return radiusBands[len(radiusBands)-1].letter
}

///////////////////////////////////////////////////////////////////////////
// validators

func ValidateAirportCode(s string) (string, error) {
	code := strings.ToUpper(strings.TrimSpace(s))
	if len(code) != 4 || !isAlpha(code) {
		return "", &geo.InvalidInputError{
			Field:      "airport code",
			Value:      s,
			Constraint: "must be 4 letters",
		}
	}
	return code, nil
}

// ValidateVORIdent accepts an empty ident; the waypoint grammar treats
// the VOR station as optional.
func ValidateVORIdent(s string) (string, error) {
	code := strings.ToUpper(strings.TrimSpace(s))
	if code == "" {
		return "", nil
	}
	if len(code) > 3 || !isAlpha(code) {
		return "", &geo.InvalidInputError{
			Field:      "VOR identifier",
			Value:      s,
			Constraint: "must be 1-3 letters",
		}
	}
	return code, nil
}

func ValidateRunway(runway int) error {
	if runway < 0 || runway > 99 {
		return &geo.InvalidInputError{
			Field:      "runway code",
			Value:      fmt.Sprintf("%d", runway),
			Constraint: "must be between 0 and 99",
		}
	}
	return nil
}

func isAlpha(s string) bool {
	for _, ch := range s {
		if ch < 'A' || ch > 'Z' {
			return false
		}
	}
	return true
}

///////////////////////////////////////////////////////////////////////////
// waypoint codes

// Waypoint describes a computed waypoint for encoding. Bearing is the
// bearing as entered (magnetic or true), which is what the operational
// code carries; the solved Coordinate already reflects the true
// bearing.
type Waypoint struct {
	Coordinate geo.Coordinate
	Bearing    geo.Bearing
	Distance   geo.Distance
	Airport    string
	VORIdent   string
	Operation  Operation
}

// Code renders the full operational waypoint line. Distances within
// ShortDistanceMaxNM use the bearing-and-radius-letter form
// ("D090J"); beyond it the code names the station and whole-mile
// distance instead.
func (w Waypoint) Code() (string, error) {
	airport, err := ValidateAirportCode(w.Airport)
	if err != nil {
		return "", err
	}
	vor, err := ValidateVORIdent(w.VORIdent)
	if err != nil {
		return "", err
	}
	opCode, err := w.Operation.Code()
	if err != nil {
		return "", err
	}

	brgInt := int(w.Bearing.Degrees)
	distInt := int(gomath.Round(w.Distance.NM()))

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s ", w.Coordinate)
	if w.Distance.NM() > ShortDistanceMaxNM {
		fmt.Fprintf(&sb, "%s%d", vor, distInt)
	} else {
		fmt.Fprintf(&sb, "D%03d%c", brgInt, RadiusLetter(w.Distance.NM()))
	}
	fmt.Fprintf(&sb, " %s %s %s", airport, airport[:2], opCode)
	if vor != "" {
		fmt.Fprintf(&sb, " %s%03d%03d", vor, brgInt, distInt)
	}

	return sb.String(), nil
}

///////////////////////////////////////////////////////////////////////////
// FIX codes

type Fix struct {
	Coordinate geo.Coordinate
	Type       FixType
	Usage      FixUsage
	Runway     int
	Airport    string
	Operation  Operation
}

func (f Fix) Code() (string, error) {
	airport, err := ValidateAirportCode(f.Airport)
	if err != nil {
		return "", err
	}
	if err := ValidateRunway(f.Runway); err != nil {
		return "", err
	}
	usage, err := f.Usage.Code()
	if err != nil {
		return "", err
	}
	typ, err := f.Type.Code()
	if err != nil {
		return "", err
	}
	opCode, err := f.Operation.Code()
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("%s %c%c%02d %s %s %s",
		f.Coordinate, usage, typ, f.Runway, airport, airport[:2], opCode), nil
}
