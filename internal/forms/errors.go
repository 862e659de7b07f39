package forms

import "errors"

var (
	// ErrPointCount indicates a form whose point count differs from the mesh.
	ErrPointCount = errors.New("forms: point count does not match mesh")

	// ErrUnknownForm indicates a form type with no generator.
	ErrUnknownForm = errors.New("forms: unknown form type")

	// ErrNoBasis indicates a mesh without recorded forms.
	ErrNoBasis = errors.New("forms: mesh has no basis form")
)
