// Package scene models the document that every starstage operation mutates.
//
// A [Document] holds objects and the datablocks they refer to by name:
//
//   - [Object]: a named scene entity (mesh, camera, curve or empty)
//   - [Mesh]: vertex positions, per-vertex color layers and shape keys
//   - [Material]: surface or halo shading parameters
//   - [Curve]: path data used by follow-path constraints
//   - [Action]: animation data made of [FCurve]s and their [Keyframe]s
//
// Datablocks are shared by name, so removing an object leaves its mesh or
// material behind until one of the DeleteUnused* helpers collects it.
//
// # Thread Safety
//
// Documents are NOT safe for concurrent mutation. Operations run to
// completion on a single goroutine; readers may share a document only while
// nothing mutates it.
package scene
