package layout

import (
	"sort"
	"sync"
)

// Registry state - protected by mutex for thread-safe access.
var (
	registryMu sync.RWMutex
	layouts    = make(map[string]*Layout)
)

// Register makes a layout available by name.
// It is typically called from init() in packages that define materials:
//
//	var outline = layout.MustDeclare("outline", baseParams, outlineParams)
//
//	func init() {
//	    layout.Register(outline)
//	}
//
// Register panics if l is nil, if its ranges are not disjoint, or if a
// layout with the same name is already registered, so that a bad layout is
// caught at program initialization rather than as a silent binding collision.
func Register(l *Layout) {
	registryMu.Lock()
	defer registryMu.Unlock()

	if l == nil {
		panic("layout: Register layout is nil")
	}
	if !l.Disjoint() {
		panic("layout: Register called with overlapping ranges for " + l.name)
	}
	if _, dup := layouts[l.name]; dup {
		panic("layout: Register called twice for " + l.name)
	}
	layouts[l.name] = l
}

// Unregister removes a layout from the registry.
// This is primarily useful for testing. Unknown names are a no-op.
func Unregister(name string) {
	registryMu.Lock()
	defer registryMu.Unlock()
	delete(layouts, name)
}

// Lookup returns the registered layout with the given name.
func Lookup(name string) (*Layout, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	l, ok := layouts[name]
	return l, ok
}

// IsRegistered reports whether a layout with the given name is registered.
func IsRegistered(name string) bool {
	_, ok := Lookup(name)
	return ok
}

// Names returns the registered layout names, sorted alphabetically.
func Names() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(layouts))
	for name := range layouts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
