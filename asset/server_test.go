package asset

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gogpu/matext/material"
	"github.com/gogpu/matext/scenegraph"
)

func crateManifest() *Manifest {
	return &Manifest{
		Name:      "crate",
		Materials: map[string]material.Base{"wood": material.DefaultBase()},
		Nodes: []Node{
			{Name: "lid", Material: "wood"},
			{Name: "body", Material: "wood", Children: []Node{{Name: "latch", Material: "wood"}}},
		},
	}
}

func newTestServer(t *testing.T, src Source) (*Server, *scenegraph.Graph, *material.Store) {
	t.Helper()
	g := scenegraph.New()
	store := material.NewStore()
	s := NewServer(src, g, store, WithWorkers(2))
	t.Cleanup(s.Close)
	return s, g, store
}

// pump runs Update until h reaches a terminal state.
func pump(t *testing.T, s *Server, h Handle) Status {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		s.Update()
		if st := s.Poll(h); st.State.Terminal() {
			return st
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("load %v did not reach a terminal state", h)
	return Status{}
}

// gateSource blocks Open until release is closed.
type gateSource struct {
	inner   Source
	release chan struct{}
}

func (g *gateSource) Open(ctx context.Context, name string) (*Manifest, error) {
	select {
	case <-g.release:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return g.inner.Open(ctx, name)
}

func TestLoadReady(t *testing.T) {
	s, g, store := newTestServer(t, NewMapSource(crateManifest()))

	h := s.RequestLoad("crate")
	if h.IsZero() {
		t.Fatal("RequestLoad returned zero handle")
	}
	st := pump(t, s, h)
	if st.State != StateReady || st.Err != nil {
		t.Fatalf("Poll() = %+v, want Ready", st)
	}

	root, ok := s.Root(h)
	if !ok || g.Name(root) != "crate" {
		t.Fatalf("Root() = %v, %v", root, ok)
	}
	count := 0
	for e := range g.Descendants(root).All() {
		ref, _ := g.Material(e)
		if !ref.IsBase() {
			t.Errorf("%s material = %v, want base ref", g.Name(e), ref)
		}
		count++
	}
	if count != 3 {
		t.Errorf("descendants = %d, want 3", count)
	}
	if bases, _ := store.Len(); bases != 1 {
		t.Errorf("base materials = %d, want 1", bases)
	}

	ev, ok := s.TakeReady(h)
	if !ok || ev.Root != root || ev.Entities != 3 || ev.Name != "crate" {
		t.Errorf("TakeReady() = %+v, %v", ev, ok)
	}
	if _, ok := s.TakeReady(h); ok {
		t.Error("second TakeReady() = true, want false")
	}

	s.Update()
	if st := s.Poll(h); st.State != StateReady {
		t.Errorf("Ready not sticky: %v", st.State)
	}
}

func TestLoadFailedIsSticky(t *testing.T) {
	s, _, _ := newTestServer(t, NewMapSource())

	h := s.RequestLoad("missing")
	called := false
	if err := s.OnReady(h, func(ReadyEvent) { called = true }); err != nil {
		t.Fatalf("OnReady() error = %v", err)
	}

	st := pump(t, s, h)
	if st.State != StateFailed {
		t.Fatalf("Poll() = %v, want Failed", st.State)
	}
	if !errors.Is(st.Err, ErrLoadFailed) || !errors.Is(st.Err, ErrNotFound) {
		t.Errorf("Err = %v, want ErrLoadFailed wrapping ErrNotFound", st.Err)
	}

	for range 3 {
		s.Update()
		if got := s.Poll(h); got.State != StateFailed {
			t.Fatalf("Failed not sticky: %v", got.State)
		}
	}
	if called {
		t.Error("ready listener called for failed load")
	}
	if _, ok := s.TakeReady(h); ok {
		t.Error("TakeReady() = true for failed load")
	}
	if _, ok := s.Root(h); ok {
		t.Error("Root() = true for failed load")
	}
}

func TestReadyOnlyAfterUpdate(t *testing.T) {
	gate := &gateSource{inner: NewMapSource(crateManifest()), release: make(chan struct{})}
	s, g, _ := newTestServer(t, gate)

	h := s.RequestLoad("crate")
	if st := s.Poll(h); st.State != StateRequested && st.State != StatePending {
		t.Fatalf("Poll() before resolution = %v", st.State)
	}
	s.Update()
	if st := s.Poll(h); st.State.Terminal() {
		t.Fatalf("terminal before release: %v", st.State)
	}

	close(gate.release)
	time.Sleep(20 * time.Millisecond)
	if st := s.Poll(h); st.State == StateReady {
		t.Fatal("Ready without Update")
	}
	if g.Len() != 0 {
		t.Errorf("entities spawned without Update: %d", g.Len())
	}

	if st := pump(t, s, h); st.State != StateReady {
		t.Fatalf("Poll() = %v, want Ready", st.State)
	}
}

func TestOnReadyDeliveredOnce(t *testing.T) {
	s, _, _ := newTestServer(t, NewMapSource(crateManifest()))

	h := s.RequestLoad("crate")
	calls := 0
	var got ReadyEvent
	if err := s.OnReady(h, func(ev ReadyEvent) {
		calls++
		got = ev
	}); err != nil {
		t.Fatal(err)
	}
	if err := s.OnReady(h, func(ReadyEvent) {}); !errors.Is(err, ErrListenerRegistered) {
		t.Errorf("second OnReady() = %v, want ErrListenerRegistered", err)
	}

	pump(t, s, h)
	s.Update()
	s.Update()

	if calls != 1 {
		t.Errorf("listener called %d times, want 1", calls)
	}
	if got.Handle != h || got.Entities != 3 {
		t.Errorf("event = %+v", got)
	}
	if _, ok := s.TakeReady(h); ok {
		t.Error("TakeReady() = true after listener consumed the event")
	}
}

func TestOnReadyAfterReady(t *testing.T) {
	s, _, _ := newTestServer(t, NewMapSource(crateManifest()))

	h := s.RequestLoad("crate")
	pump(t, s, h)

	calls := 0
	if err := s.OnReady(h, func(ReadyEvent) { calls++ }); err != nil {
		t.Fatal(err)
	}
	if calls != 1 {
		t.Errorf("late listener called %d times, want 1", calls)
	}

	h2 := s.RequestLoad("crate")
	pump(t, s, h2)
	if _, ok := s.TakeReady(h2); !ok {
		t.Fatal("TakeReady() = false")
	}
	if err := s.OnReady(h2, func(ReadyEvent) {}); !errors.Is(err, ErrEventConsumed) {
		t.Errorf("OnReady() after TakeReady = %v, want ErrEventConsumed", err)
	}
}

func TestUnknownHandle(t *testing.T) {
	s, _, _ := newTestServer(t, NewMapSource())

	var h Handle
	st := s.Poll(h)
	if st.State != StateFailed || !errors.Is(st.Err, ErrUnknownHandle) {
		t.Errorf("Poll(zero) = %+v, want Failed/ErrUnknownHandle", st)
	}
	if err := s.OnReady(h, func(ReadyEvent) {}); !errors.Is(err, ErrUnknownHandle) {
		t.Errorf("OnReady(zero) = %v, want ErrUnknownHandle", err)
	}
}

func TestRequestAfterClose(t *testing.T) {
	s, _, _ := newTestServer(t, NewMapSource(crateManifest()))
	s.Close()

	h := s.RequestLoad("crate")
	st := pump(t, s, h)
	if st.State != StateFailed || !errors.Is(st.Err, ErrClosed) {
		t.Errorf("Poll() = %+v, want Failed/ErrClosed", st)
	}
}

func TestCloseFailsBlockedLoad(t *testing.T) {
	gate := &gateSource{inner: NewMapSource(crateManifest()), release: make(chan struct{})}
	s, _, _ := newTestServer(t, gate)

	h := s.RequestLoad("crate")
	s.Close()

	st := pump(t, s, h)
	if st.State != StateFailed || !errors.Is(st.Err, context.Canceled) {
		t.Errorf("Poll() = %+v, want Failed/context.Canceled", st)
	}
}

func TestStateString(t *testing.T) {
	for s, want := range map[State]string{
		StateRequested: "requested",
		StatePending:   "pending",
		StateReady:     "ready",
		StateFailed:    "failed",
	} {
		if got := s.String(); got != want {
			t.Errorf("%d.String() = %q, want %q", s, got, want)
		}
	}
}
