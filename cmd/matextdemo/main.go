// Command matextdemo loads a composite asset, waits for it on a tick loop
// and augments every mesh material with the outline extension.
package main

import (
	"embed"
	"flag"
	"fmt"
	"io/fs"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/gogpu/matext"
	"github.com/gogpu/matext/asset"
	"github.com/gogpu/matext/config"
	"github.com/gogpu/matext/material"
	"github.com/gogpu/matext/scenegraph"
	"github.com/gogpu/matext/shader"
)

//go:embed assets
var builtin embed.FS

func main() {
	var (
		cfgPath = flag.String("config", "", "scene settings file (TOML)")
		name    = flag.String("asset", "", "asset to load, overrides the config")
		policy  = flag.String("policy", "", "trigger policy: once or every_tick")
		frame   = flag.Duration("frame", 16*time.Millisecond, "tick interval")
	)
	flag.Parse()

	cfg := config.Default()
	if *cfgPath != "" {
		c, err := config.Load(*cfgPath)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
		cfg = c
	}
	if *name != "" {
		cfg.Asset.Name = *name
	}
	if *policy != "" {
		p, err := matext.ParsePolicy(*policy)
		if err != nil {
			log.Fatal(err)
		}
		cfg.Policy = p
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel}))
	matext.SetLogger(logger)

	if err := shader.Check(shader.Outline, material.OutlineLayout); err != nil {
		log.Fatalf("Outline shader does not match layout: %v", err)
	}

	graph := scenegraph.New()
	store := material.NewStore()
	if err := spawnStage(graph, store, cfg); err != nil {
		log.Fatalf("Failed to build stage: %v", err)
	}

	server := asset.NewServer(source(cfg.Asset), graph, store,
		asset.WithWorkers(cfg.Asset.Workers), asset.WithLogger(logger))
	defer server.Close()

	engine := matext.NewEngine(graph, store)
	sched := matext.NewScheduler(engine, server, cfg.Policy, cfg.Extension)

	h := server.RequestLoad(cfg.Asset.Name)
	if err := sched.Watch(h); err != nil {
		log.Fatalf("Failed to watch %s: %v", cfg.Asset.Name, err)
	}

	ticks := 0
	for ; ticks < cfg.MaxTicks && !sched.Done(); ticks++ {
		sched.Tick()
		time.Sleep(*frame)
	}

	st, _ := sched.Status(h)
	switch {
	case st.Err != nil:
		log.Fatalf("Asset %s failed after %d ticks: %v", cfg.Asset.Name, ticks, st.Err)
	case !st.Augmented:
		log.Fatalf("Asset %s not ready after %d ticks (%v)", cfg.Asset.Name, ticks, st.Load)
	}

	root, _ := server.Root(h)
	printSummary(graph, store, root, st.Report, ticks)
}

// source resolves manifests from the configured root directory, or from the
// built-in assets when that directory does not exist.
func source(a config.Asset) asset.Source {
	if fi, err := os.Stat(a.Root); err == nil && fi.IsDir() {
		return asset.NewFSSource(os.DirFS(a.Root), a.CacheSize)
	}
	sub, err := fs.Sub(builtin, "assets")
	if err != nil {
		log.Fatal(err)
	}
	return asset.NewFSSource(sub, a.CacheSize)
}

// spawnStage adds the camera, light, ground and a hand-built composite
// cuboid. None of them sit under the asset root.
func spawnStage(g *scenegraph.Graph, store *material.Store, cfg config.Config) error {
	g.Spawn(scenegraph.Invalid, "camera")
	g.Spawn(scenegraph.Invalid, "light")

	ground := material.DefaultBase()
	ground.BaseColor = material.MustParseColor("darkolivegreen")
	ground.Roughness = 0.9
	ref, err := store.AddBase(ground)
	if err != nil {
		return err
	}
	g.SpawnWithMaterial(scenegraph.Invalid, "ground", ref)

	red := material.DefaultBase()
	red.BaseColor = material.Red
	ext := cfg.Extension
	ext.QuantizeSteps = 3
	c, err := material.NewComposite(red, ext)
	if err != nil {
		return err
	}
	g.SpawnWithMaterial(scenegraph.Invalid, "cuboid", store.AddComposite(c))

	d := cfg.Light.Direction()
	fmt.Printf("camera at %v looking at %v\n", cfg.Camera.Position, cfg.Camera.Target)
	fmt.Printf("light %.0f lx, shadows %v, direction (%.3f, %.3f, %.3f)\n",
		cfg.Light.Illuminance, cfg.Light.Shadows, d[0], d[1], d[2])
	return nil
}

func printSummary(g *scenegraph.Graph, store *material.Store, root scenegraph.Entity, r matext.Report, ticks int) {
	fmt.Printf("%s augmented after %d ticks: %d visited, %d augmented, %d skipped, %d warnings\n",
		g.Name(root), ticks, r.Visited, r.Augmented, r.Skipped, len(r.Warnings))
	for e := range g.Descendants(root).All() {
		ref, ok := g.Material(e)
		if !ok || !ref.IsComposite() {
			fmt.Printf("  %-14s %v\n", g.Name(e), ref)
			continue
		}
		c, _ := store.Composite(ref)
		fmt.Printf("  %-14s %-12v base %v tint %v@%.2f steps %d\n",
			g.Name(e), ref, c.Base.BaseColor, c.Extension.Tint, c.Extension.TintStrength, c.Extension.QuantizeSteps)
	}
	for _, w := range r.Warnings {
		fmt.Printf("  warning: %v\n", w)
	}
	bases, composites := store.Len()
	fmt.Printf("store: %d base, %d composite materials\n", bases, composites)
}
