// aviation/errors.go
// Copyright(c) 2025 fixcalc contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package aviation

import (
	"errors"
)

var (
	ErrDeclinationUnavailable = errors.New("No magnetic model available and no manual declination given")
	ErrNoNavFile              = errors.New("No NAV data file has been configured")
	ErrNoFixFile              = errors.New("No FIX data file has been configured")
	ErrNavaidNotFound         = errors.New("Navaid not found in NAV data file")
	ErrFixNotFound            = errors.New("Fix not found in FIX data file")
	ErrUnknownOperation       = errors.New("Unknown operation type")
	ErrUnknownFixType         = errors.New("Unknown FIX type")
	ErrUnknownFixUsage        = errors.New("Unknown FIX usage")
)
