package starmesh

import "errors"

var (
	ErrExists     = errors.New("starmesh: object already exists")
	ErrNoName     = errors.New("starmesh: empty object name")
	ErrBadMode    = errors.New("starmesh: unknown build mode")
	ErrColorIndex = errors.New("starmesh: color index outside ramp")

	ErrDuplicatePart = errors.New("starmesh: two parts share an object name")
)
