package scene

import "errors"

// Lookup and validation errors for document operations.
var (
	// ErrObjectNotFound indicates no object carries the requested name.
	ErrObjectNotFound = errors.New("scene: object not found")

	// ErrMeshNotFound indicates an object refers to a missing mesh datablock.
	ErrMeshNotFound = errors.New("scene: mesh not found")

	// ErrCurveNotFound indicates an object refers to a missing curve datablock.
	ErrCurveNotFound = errors.New("scene: curve not found")

	// ErrMaterialNotFound indicates a missing material datablock.
	ErrMaterialNotFound = errors.New("scene: material not found")

	// ErrShapeKeyNotFound indicates a mesh has no shape key with the given name.
	ErrShapeKeyNotFound = errors.New("scene: shape key not found")

	// ErrWrongType indicates an object of an unexpected type.
	ErrWrongType = errors.New("scene: wrong object type")

	// ErrDuplicateName indicates a name that is already taken.
	ErrDuplicateName = errors.New("scene: duplicate name")

	// ErrBadPattern indicates a malformed name pattern.
	ErrBadPattern = errors.New("scene: malformed name pattern")
)
