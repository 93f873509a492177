package scenegraph

import "iter"

// Walk is a single-pass depth-first traversal of an entity's descendants.
// Children are read when their parent is visited, so the walk reflects the
// tree as it is while being consumed. A Walk cannot be restarted; call
// Descendants again for a new pass.
type Walk struct {
	g     *Graph
	stack []Entity
	done  bool
}

// Descendants returns a walk over every transitive child of root. The root
// itself is not included. An unknown root, or one without children, yields
// an empty walk.
func (g *Graph) Descendants(root Entity) *Walk {
	w := &Walk{g: g}
	w.push(g.Children(root))
	return w
}

// Next returns the next descendant. The bool is false once the walk is done.
func (w *Walk) Next() (Entity, bool) {
	if w.done {
		return Invalid, false
	}
	for len(w.stack) > 0 {
		e := w.stack[len(w.stack)-1]
		w.stack = w.stack[:len(w.stack)-1]
		if !w.g.Exists(e) {
			continue
		}
		w.push(w.g.Children(e))
		return e, true
	}
	w.done = true
	return Invalid, false
}

// All returns the remaining descendants as a sequence. Ranging over it
// consumes the walk; ranging a second time yields nothing.
func (w *Walk) All() iter.Seq[Entity] {
	return func(yield func(Entity) bool) {
		for {
			e, ok := w.Next()
			if !ok || !yield(e) {
				return
			}
		}
	}
}

// Done reports whether the walk is exhausted.
func (w *Walk) Done() bool { return w.done }

// push adds children so that the first child is visited first.
func (w *Walk) push(children []Entity) {
	for i := len(children) - 1; i >= 0; i-- {
		w.stack = append(w.stack, children[i])
	}
}
