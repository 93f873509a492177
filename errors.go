package matext

import "errors"

var (
	// ErrDanglingBaseReference is recorded, never returned, when an entity
	// holds a base reference the material store cannot resolve.
	ErrDanglingBaseReference = errors.New("matext: dangling base material reference")

	// ErrNotReady is returned by AugmentHandle while the load is Requested
	// or Pending.
	ErrNotReady = errors.New("matext: asset not ready")

	// ErrLayoutMismatch is returned when the engine layout does not declare
	// a slot that composites bind, or declares it with another kind.
	ErrLayoutMismatch = errors.New("matext: layout does not match composite bindings")

	// ErrUnknownPolicy is returned by ParsePolicy.
	ErrUnknownPolicy = errors.New("matext: unknown trigger policy")
)
