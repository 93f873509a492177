// Package matext augments the materials of an asynchronously loaded scene
// asset with extension shading parameters.
//
// # Overview
//
// A composite asset (a model with many meshes) is requested from an
// [asset.Server] and instantiated into a [scenegraph.Graph] some ticks later.
// Once the load is Ready, [Engine.Augment] walks every descendant of the
// asset root and replaces each base material reference with a reference to
// a new composite material: a private copy of the base parameters plus the
// outline, tint and quantization parameters of [material.Extension].
//
// # Quick Start
//
//	graph := scenegraph.New()
//	store := material.NewStore()
//	server := asset.NewServer(asset.NewFSSource(os.DirFS("assets"), 0), graph, store)
//	defer server.Close()
//
//	engine := matext.NewEngine(graph, store)
//	sched := matext.NewScheduler(engine, server, matext.PolicyOnce, material.DefaultExtension())
//	sched.Watch(server.RequestLoad("models/ship.toml"))
//
//	for !sched.Done() {
//	    sched.Tick()
//	}
//
// # Slot Layout
//
// Composite materials bind base parameters at slots 0..99 and extension
// parameters at 100 and above, as declared by [material.OutlineLayout].
// Layouts whose ranges overlap are rejected by [layout.Declare]; the engine
// also refuses to run with a layout that does not declare every slot a
// composite binds.
//
// # Guarantees
//
//   - Augment is idempotent: entities already holding a composite are skipped.
//   - Every eligible entity gets its own composite. There is no deduplication.
//   - The base parameters of a composite equal those of its base material
//     bit for bit at the time of augmentation.
//   - An entity is never observed without a material reference; the swap is
//     a single compare-and-swap on the graph.
//   - A dangling base reference skips that entity with a warning and does not
//     stop the walk.
//
// # Logging
//
// matext logs through [log/slog]. It is silent by default; see [SetLogger].
package matext
