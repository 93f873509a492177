package matext

import (
	"fmt"
	"log/slog"

	"github.com/gogpu/matext/asset"
	"github.com/gogpu/matext/internal/logging"
	"github.com/gogpu/matext/layout"
	"github.com/gogpu/matext/material"
	"github.com/gogpu/matext/scenegraph"
)

// Warning is a per-entity problem that did not stop augmentation.
type Warning struct {
	Entity scenegraph.Entity
	Err    error
}

func (w Warning) Error() string {
	return fmt.Sprintf("%v: %v", w.Entity, w.Err)
}

func (w Warning) Unwrap() error { return w.Err }

// Report summarizes one Augment pass.
type Report struct {
	// Visited counts every descendant produced by the walk.
	Visited int

	// Augmented counts entities swapped from a base to a composite reference.
	Augmented int

	// Skipped counts entities with no material, an existing composite, or a
	// reference changed by someone else during the pass.
	Skipped int

	// Created holds the composite references inserted, one per augmented
	// entity, in walk order.
	Created []material.Ref

	// Warnings holds entities left untouched because their base reference
	// did not resolve.
	Warnings []Warning
}

// Engine converts base material references into composite references.
//
// All dependencies are explicit. Augment is meant to run on the logic thread;
// concurrent readers of the graph and store are safe.
type Engine struct {
	graph     *scenegraph.Graph
	store     *material.Store
	layout    *layout.Layout
	layoutErr error
	logger    *slog.Logger
}

// NewEngine creates an engine over graph and store.
func NewEngine(graph *scenegraph.Graph, store *material.Store, opts ...EngineOption) *Engine {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Engine{
		graph:     graph,
		store:     store,
		layout:    o.layout,
		layoutErr: checkLayout(o.layout),
		logger:    o.logger,
	}
}

// Layout returns the layout the engine validates against.
func (e *Engine) Layout() *layout.Layout { return e.layout }

func (e *Engine) log() *slog.Logger { return logging.Or(e.logger) }

// Augment gives every descendant of root that holds a base material its own
// composite of that base and defaults. Root itself is not augmented.
//
// Entities that already hold a composite, or no material, are skipped, so
// calling Augment again over the same root only touches entities added or
// reverted since. A base reference that does not resolve is recorded in
// Report.Warnings and the walk continues.
//
// The only error is a layout that cannot bind composites; in that case
// nothing is changed.
func (e *Engine) Augment(root scenegraph.Entity, defaults material.Extension) (Report, error) {
	if e.layoutErr != nil {
		return Report{}, e.layoutErr
	}

	var r Report
	log := e.log()
	for ent := range e.graph.Descendants(root).All() {
		r.Visited++

		ref, ok := e.graph.Material(ent)
		if !ok || !ref.IsBase() {
			r.Skipped++
			continue
		}

		base, ok := e.store.Base(ref)
		if !ok {
			w := Warning{Entity: ent, Err: fmt.Errorf("%w: %v", ErrDanglingBaseReference, ref)}
			r.Warnings = append(r.Warnings, w)
			log.Warn("matext: dangling base material", "entity", ent, "name", e.graph.Name(ent), "ref", ref)
			continue
		}

		c, err := material.NewComposite(base, defaults)
		if err != nil {
			r.Warnings = append(r.Warnings, Warning{Entity: ent, Err: err})
			log.Warn("matext: composite copy failed", "entity", ent, "err", err)
			continue
		}
		cref := e.store.AddComposite(c)

		// Material never goes missing: the reference flips in one step.
		if !e.graph.CompareAndSwapMaterial(ent, ref, cref) {
			r.Skipped++
			log.Debug("matext: material changed during augmentation", "entity", ent, "ref", ref)
			continue
		}
		r.Augmented++
		r.Created = append(r.Created, cref)
		log.Debug("matext: swapped material", "entity", ent, "from", ref, "to", cref)
	}

	if r.Augmented > 0 || len(r.Warnings) > 0 {
		log.Info("matext: augmented", "root", root, "visited", r.Visited,
			"augmented", r.Augmented, "warnings", len(r.Warnings))
	}
	return r, nil
}

// AugmentHandle augments the root of a load tracked by server. It returns
// ErrNotReady while the load is Requested or Pending and the load error once
// it has Failed.
func (e *Engine) AugmentHandle(server *asset.Server, h asset.Handle, defaults material.Extension) (Report, error) {
	st := server.Poll(h)
	switch st.State {
	case asset.StateReady:
	case asset.StateFailed:
		return Report{}, st.Err
	default:
		return Report{}, fmt.Errorf("%w: %v is %v", ErrNotReady, h, st.State)
	}
	root, ok := server.Root(h)
	if !ok {
		return Report{}, fmt.Errorf("%w: %v has no root", ErrNotReady, h)
	}
	return e.Augment(root, defaults)
}

// checkLayout verifies that l keeps its ranges apart and declares every slot
// a composite binds with the same kind and at least the same size.
func checkLayout(l *layout.Layout) error {
	if !l.Disjoint() {
		return fmt.Errorf("%w: %s: base %v, extension %v",
			layout.ErrExtensionSlotOutOfRange, l.Name(), l.BaseRange(), l.ExtensionRange())
	}
	declared := make(map[layout.Slot]layout.Param)
	for _, p := range l.Params() {
		declared[p.Slot] = p
	}
	for _, want := range material.OutlineLayout.Params() {
		got, ok := declared[want.Slot]
		switch {
		case !ok:
			return fmt.Errorf("%w: %s: slot %d (%s) not declared", ErrLayoutMismatch, l.Name(), want.Slot, want.Name)
		case got.Kind != want.Kind:
			return fmt.Errorf("%w: %s: slot %d is %v, want %v", ErrLayoutMismatch, l.Name(), want.Slot, got.Kind, want.Kind)
		case got.Size < want.Size:
			return fmt.Errorf("%w: %s: slot %d size %d, want %d", ErrLayoutMismatch, l.Name(), want.Slot, got.Size, want.Size)
		}
	}
	return nil
}
