// Package asset tracks asynchronous loads of composite scene assets.
//
// A load moves through Requested → Pending → {Ready | Failed}. Resolution
// runs on background workers; instantiation into the scene graph and the
// one-shot ready event happen only inside Server.Update, on the caller's
// logic tick. Terminal states are sticky.
package asset

import (
	"errors"
	"fmt"

	"github.com/gogpu/matext/scenegraph"
)

// Errors reported through Poll and the Server API.
var (
	ErrLoadFailed         = errors.New("asset: load failed")
	ErrNotFound           = errors.New("asset: not found")
	ErrInvalidManifest    = errors.New("asset: invalid manifest")
	ErrUnknownMaterial    = errors.New("asset: node references unknown material")
	ErrUnknownHandle      = errors.New("asset: unknown handle")
	ErrListenerRegistered = errors.New("asset: ready listener already registered")
	ErrEventConsumed      = errors.New("asset: ready event already consumed")
	ErrClosed             = errors.New("asset: server closed")
)

// State is the load state of a handle.
type State uint8

const (
	StateRequested State = iota
	StatePending
	StateReady
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateRequested:
		return "requested"
	case StatePending:
		return "pending"
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	}
	return fmt.Sprintf("State(%d)", uint8(s))
}

// Terminal reports whether s is Ready or Failed.
func (s State) Terminal() bool {
	return s == StateReady || s == StateFailed
}

// Status is the result of Server.Poll.
type Status struct {
	State State

	// Err is set when State is StateFailed. It wraps ErrLoadFailed and the
	// underlying reason.
	Err error
}

// Handle is an opaque, copyable reference to a requested load.
type Handle struct {
	id uint64
}

// IsZero reports whether h is the zero handle.
func (h Handle) IsZero() bool { return h.id == 0 }

func (h Handle) String() string {
	return fmt.Sprintf("load#%d", h.id)
}

// ReadyEvent is delivered once per successful load.
type ReadyEvent struct {
	Handle Handle
	Name   string

	// Root is the instantiated root entity. Its subtree is complete.
	Root scenegraph.Entity

	// Entities is the number of entities spawned under Root.
	Entities int
}
