// Package scenegraph holds the entity tree instantiated from loaded assets,
// together with each entity's material reference.
package scenegraph

import (
	"fmt"
	"slices"
	"sync"

	"github.com/gogpu/matext/material"
)

// Entity identifies a node in a Graph. The zero Entity is invalid.
type Entity uint64

// Invalid is the zero entity.
const Invalid Entity = 0

func (e Entity) String() string {
	return fmt.Sprintf("entity#%d", uint64(e))
}

type node struct {
	name     string
	parent   Entity
	children []Entity
	material material.Ref
}

// Graph is a parent/child entity table.
//
// Graph is safe for concurrent use. Material references are replaced under
// the write lock, so readers observe either the old or the new reference.
type Graph struct {
	mu    sync.RWMutex
	next  Entity
	nodes map[Entity]*node
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{nodes: make(map[Entity]*node)}
}

// Spawn creates an entity under parent. Pass Invalid for a top-level entity.
// Spawning under an unknown parent creates a top-level entity.
func (g *Graph) Spawn(parent Entity, name string) Entity {
	return g.SpawnWithMaterial(parent, name, material.Ref{})
}

// SpawnWithMaterial is Spawn followed by SetMaterial, done under one lock so
// the entity is never visible without its material.
func (g *Graph) SpawnWithMaterial(parent Entity, name string, ref material.Ref) Entity {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.next++
	e := g.next
	n := &node{name: name, material: ref}
	if p, ok := g.nodes[parent]; ok {
		n.parent = parent
		p.children = append(p.children, e)
	}
	g.nodes[e] = n
	return e
}

// Exists reports whether e is in the graph.
func (g *Graph) Exists(e Entity) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	_, ok := g.nodes[e]
	return ok
}

// Len returns the number of entities.
func (g *Graph) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.nodes)
}

// Name returns the entity name.
func (g *Graph) Name(e Entity) string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if n, ok := g.nodes[e]; ok {
		return n.name
	}
	return ""
}

// Parent returns the parent of e, or Invalid for top-level and unknown entities.
func (g *Graph) Parent(e Entity) Entity {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if n, ok := g.nodes[e]; ok {
		return n.parent
	}
	return Invalid
}

// Children returns a copy of the direct children of e.
func (g *Graph) Children(e Entity) []Entity {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if n, ok := g.nodes[e]; ok {
		return slices.Clone(n.children)
	}
	return nil
}

// Material returns the material reference held by e.
// The bool is false when e does not exist.
func (g *Graph) Material(e Entity) (material.Ref, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	n, ok := g.nodes[e]
	if !ok {
		return material.Ref{}, false
	}
	return n.material, true
}

// SetMaterial replaces the material reference of e.
func (g *Graph) SetMaterial(e Entity, ref material.Ref) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	n, ok := g.nodes[e]
	if !ok {
		return false
	}
	n.material = ref
	return true
}

// CompareAndSwapMaterial replaces the material reference of e with new only
// if it currently equals old.
func (g *Graph) CompareAndSwapMaterial(e Entity, old, new material.Ref) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	n, ok := g.nodes[e]
	if !ok || n.material != old {
		return false
	}
	n.material = new
	return true
}
