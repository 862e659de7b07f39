package mapping

import "errors"

var (
	ErrEmptyRamp     = errors.New("mapping: empty color ramp")
	ErrDuplicateStop = errors.New("mapping: duplicate ramp stop name")
	ErrBadScale      = errors.New("mapping: invalid color scale")
	ErrBadMode       = errors.New("mapping: unknown coordinate mode")
	ErrBadField      = errors.New("mapping: invalid field expression")
	ErrNotANumber    = errors.New("mapping: expression did not produce a number")
	ErrMissingAxis   = errors.New("mapping: position field not set")
)
