package matext

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gogpu/matext/asset"
	"github.com/gogpu/matext/material"
	"github.com/gogpu/matext/scenegraph"
)

// sourceFunc adapts a function to asset.Source.
type sourceFunc func(name string) (*asset.Manifest, error)

func (f sourceFunc) Open(_ context.Context, name string) (*asset.Manifest, error) {
	return f(name)
}

func tickUntilDone(t *testing.T, s *Scheduler) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for !s.Done() {
		if time.Now().After(deadline) {
			t.Fatal("scheduler did not finish")
		}
		s.Tick()
		time.Sleep(time.Millisecond)
	}
}

type scene struct {
	graph  *scenegraph.Graph
	store  *material.Store
	server *asset.Server
	sched  *Scheduler
}

func newScene(t *testing.T, policy Policy, src asset.Source) *scene {
	t.Helper()
	g := scenegraph.New()
	store := material.NewStore()
	server := asset.NewServer(src, g, store, asset.WithWorkers(2))
	t.Cleanup(server.Close)
	return &scene{
		graph:  g,
		store:  store,
		server: server,
		sched:  NewScheduler(NewEngine(g, store), server, policy, testDefaults()),
	}
}

// composites returns the composite of every descendant of root keyed by name.
func (s *scene) composites(t *testing.T, root scenegraph.Entity) map[string]material.Composite {
	t.Helper()
	out := make(map[string]material.Composite)
	for e := range s.graph.Descendants(root).All() {
		ref, _ := s.graph.Material(e)
		c, ok := s.store.Composite(ref)
		if !ok {
			t.Fatalf("%s material = %v, want composite", s.graph.Name(e), ref)
		}
		out[s.graph.Name(e)] = c
	}
	return out
}

func TestPoliciesConverge(t *testing.T) {
	results := make(map[Policy]map[string]material.Composite)
	for _, p := range []Policy{PolicyOnce, PolicyEveryTick} {
		t.Run(p.String(), func(t *testing.T) {
			s := newScene(t, p, asset.NewMapSource(grayManifest("ship")))
			h := s.server.RequestLoad("ship")
			if err := s.sched.Watch(h); err != nil {
				t.Fatal(err)
			}
			tickUntilDone(t, s.sched)

			st, ok := s.sched.Status(h)
			if !ok || st.Err != nil || !st.Augmented || st.Load != asset.StateReady {
				t.Fatalf("Status() = %+v, %v", st, ok)
			}
			if st.Report.Augmented != 4 || len(st.Report.Created) != 4 {
				t.Errorf("report = %+v, want 4 augmented", st.Report)
			}

			// Extra ticks change nothing.
			for range 3 {
				if n := s.sched.Tick(); n != 0 {
					t.Errorf("Tick() after done = %d, want 0", n)
				}
			}
			root, _ := s.server.Root(h)
			results[p] = s.composites(t, root)
		})
	}

	once, every := results[PolicyOnce], results[PolicyEveryTick]
	if len(once) != 4 || len(once) != len(every) {
		t.Fatalf("entities: once %d, every tick %d", len(once), len(every))
	}
	for name, c := range once {
		d, ok := every[name]
		if !ok {
			t.Errorf("%s missing under every_tick", name)
			continue
		}
		if !c.Base.Equal(d.Base) || c.Extension != d.Extension {
			t.Errorf("%s: policies diverge: %+v vs %+v", name, c, d)
		}
	}
}

func TestSchedulerFailedLoad(t *testing.T) {
	for _, p := range []Policy{PolicyOnce, PolicyEveryTick} {
		t.Run(p.String(), func(t *testing.T) {
			s := newScene(t, p, asset.NewMapSource())
			h := s.server.RequestLoad("missing")
			if err := s.sched.Watch(h); err != nil {
				t.Fatal(err)
			}
			tickUntilDone(t, s.sched)

			st, _ := s.sched.Status(h)
			if st.Load != asset.StateFailed || !errors.Is(st.Err, asset.ErrLoadFailed) {
				t.Errorf("Status() = %+v, want Failed/ErrLoadFailed", st)
			}
			if st.Augmented {
				t.Error("failed load was augmented")
			}
			if _, n := s.store.Len(); n != 0 {
				t.Errorf("composites = %d, want 0", n)
			}
		})
	}
}

func TestEveryTickPicksUpLateBases(t *testing.T) {
	s := newScene(t, PolicyEveryTick, asset.NewMapSource(grayManifest("ship")))
	h := s.server.RequestLoad("ship")
	if err := s.sched.Watch(h); err != nil {
		t.Fatal(err)
	}
	tickUntilDone(t, s.sched)

	root, _ := s.server.Root(h)
	ref, err := s.store.AddBase(grayBase())
	if err != nil {
		t.Fatal(err)
	}
	late := s.graph.SpawnWithMaterial(root, "late", ref)

	if n := s.sched.Tick(); n != 1 {
		t.Errorf("Tick() = %d, want 1", n)
	}
	if got, _ := s.graph.Material(late); !got.IsComposite() {
		t.Errorf("late material = %v, want composite", got)
	}
	st, _ := s.sched.Status(h)
	if st.Report.Augmented != 5 {
		t.Errorf("accumulated Augmented = %d, want 5", st.Report.Augmented)
	}
}

func TestWatchOnceAfterReady(t *testing.T) {
	s := newScene(t, PolicyOnce, asset.NewMapSource(grayManifest("ship")))
	h := s.server.RequestLoad("ship")
	pumpServer(t, s.server, h)

	if err := s.sched.Watch(h); err != nil {
		t.Fatal(err)
	}
	if !s.sched.Done() {
		t.Error("Done() = false after watching an already ready load")
	}
}

func TestWatchOnceConsumedEvent(t *testing.T) {
	s := newScene(t, PolicyOnce, asset.NewMapSource(grayManifest("ship")))
	h := s.server.RequestLoad("ship")
	pumpServer(t, s.server, h)
	if _, ok := s.server.TakeReady(h); !ok {
		t.Fatal("TakeReady() = false")
	}

	if err := s.sched.Watch(h); !errors.Is(err, asset.ErrEventConsumed) {
		t.Errorf("Watch() = %v, want ErrEventConsumed", err)
	}
	if !s.sched.Done() {
		t.Error("Done() = false for a job that cannot proceed")
	}
}

func TestParsePolicy(t *testing.T) {
	tests := []struct {
		in      string
		want    Policy
		wantErr bool
	}{
		{"once", PolicyOnce, false},
		{"", PolicyOnce, false},
		{"every_tick", PolicyEveryTick, false},
		{" Every-Tick ", PolicyEveryTick, false},
		{"sometimes", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParsePolicy(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParsePolicy(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if err != nil {
				if !errors.Is(err, ErrUnknownPolicy) {
					t.Errorf("error = %v, want ErrUnknownPolicy", err)
				}
				return
			}
			if got != tt.want {
				t.Errorf("ParsePolicy(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestPolicyText(t *testing.T) {
	var p Policy
	if err := p.UnmarshalText([]byte("every_tick")); err != nil || p != PolicyEveryTick {
		t.Errorf("UnmarshalText() = %v, %v", p, err)
	}
	b, _ := p.MarshalText()
	if string(b) != "every_tick" {
		t.Errorf("MarshalText() = %q, want every_tick", b)
	}
}
