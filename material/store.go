package material

import (
	"fmt"
	"maps"
	"sync"
)

// Kind tags what a Ref points at.
type Kind uint8

const (
	// KindNone is the zero Ref: the entity has no material.
	KindNone Kind = iota
	KindBase
	KindComposite
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindBase:
		return "base"
	case KindComposite:
		return "composite"
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// ID identifies an entry in a Store.
type ID uint64

// Ref is a tagged reference to a stored material. The tag is part of the
// value, so callers switch on Kind instead of asserting a stored type.
type Ref struct {
	kind Kind
	id   ID
}

// BaseRef returns a reference to a base material entry.
func BaseRef(id ID) Ref { return Ref{kind: KindBase, id: id} }

// CompositeRef returns a reference to a composite material entry.
func CompositeRef(id ID) Ref { return Ref{kind: KindComposite, id: id} }

// Kind returns the reference tag.
func (r Ref) Kind() Kind { return r.kind }

// ID returns the store id.
func (r Ref) ID() ID { return r.id }

// IsBase reports whether r refers to a base material.
func (r Ref) IsBase() bool { return r.kind == KindBase }

// IsComposite reports whether r refers to a composite material.
func (r Ref) IsComposite() bool { return r.kind == KindComposite }

// IsZero reports whether r is the empty reference.
func (r Ref) IsZero() bool { return r.kind == KindNone }

func (r Ref) String() string {
	if r.kind == KindNone {
		return "none"
	}
	return fmt.Sprintf("%s#%d", r.kind, r.id)
}

// Store is the shared material table. Entries are added and looked up by
// Ref. The augmentation path only inserts; existing entries are replaced
// only by host code through SetBase.
//
// Store is safe for concurrent use.
type Store struct {
	mu         sync.RWMutex
	next       ID
	bases      map[ID]Base
	composites map[ID]Composite
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		bases:      make(map[ID]Base),
		composites: make(map[ID]Composite),
	}
}

// AddBase stores a deep copy of b and returns its reference.
func (s *Store) AddBase(b Base) (Ref, error) {
	c, err := b.Clone()
	if err != nil {
		return Ref{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next++
	s.bases[s.next] = c
	return BaseRef(s.next), nil
}

// AddComposite stores a copy of c and returns a fresh composite reference.
func (s *Store) AddComposite(c Composite) Ref {
	c.Base.Textures = maps.Clone(c.Base.Textures)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next++
	s.composites[s.next] = c
	return CompositeRef(s.next)
}

// Base resolves a base reference. The result is a copy; editing it does
// not change the store.
func (s *Store) Base(r Ref) (Base, bool) {
	if !r.IsBase() {
		return Base{}, false
	}
	s.mu.RLock()
	b, ok := s.bases[r.id]
	s.mu.RUnlock()
	b.Textures = maps.Clone(b.Textures)
	return b, ok
}

// Composite resolves a composite reference. Like Base, it returns a copy.
func (s *Store) Composite(r Ref) (Composite, bool) {
	if !r.IsComposite() {
		return Composite{}, false
	}
	s.mu.RLock()
	c, ok := s.composites[r.id]
	s.mu.RUnlock()
	c.Base.Textures = maps.Clone(c.Base.Textures)
	return c, ok
}

// SetBase replaces the stored value of an existing base entry. It models a
// host-side material edit and never touches composites built earlier.
func (s *Store) SetBase(r Ref, b Base) (bool, error) {
	if !r.IsBase() {
		return false, nil
	}
	c, err := b.Clone()
	if err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.bases[r.id]; !ok {
		return false, nil
	}
	s.bases[r.id] = c
	return true, nil
}

// RemoveBase deletes a base entry. References to it become dangling.
func (s *Store) RemoveBase(r Ref) bool {
	if !r.IsBase() {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.bases[r.id]; !ok {
		return false
	}
	delete(s.bases, r.id)
	return true
}

// Len returns the number of base and composite entries.
func (s *Store) Len() (bases, composites int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.bases), len(s.composites)
}
