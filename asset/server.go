package asset

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/gogpu/matext/internal/logging"
	"github.com/gogpu/matext/internal/workers"
	"github.com/gogpu/matext/material"
	"github.com/gogpu/matext/scenegraph"
)

// ServerOption configures a Server.
type ServerOption func(*serverOptions)

type serverOptions struct {
	workers int
	logger  *slog.Logger
}

// WithWorkers sets the number of background resolution workers.
// Zero or negative means GOMAXPROCS.
func WithWorkers(n int) ServerOption {
	return func(o *serverOptions) {
		o.workers = n
	}
}

// WithLogger sets the server logger. Defaults to the shared matext logger.
func WithLogger(l *slog.Logger) ServerOption {
	return func(o *serverOptions) {
		o.logger = l
	}
}

type load struct {
	name     string
	state    State
	err      error
	root     scenegraph.Entity
	entities int
	consumed bool
	listener func(ReadyEvent)
}

func (l *load) event(h Handle) ReadyEvent {
	return ReadyEvent{Handle: h, Name: l.name, Root: l.root, Entities: l.entities}
}

type completion struct {
	h   Handle
	m   *Manifest
	err error
}

// Server issues loads against a Source and instantiates finished loads into a
// scene graph and material store.
//
// RequestLoad, Poll, TakeReady and OnReady are safe to call from any
// goroutine. Update must be called from the logic thread once per tick.
type Server struct {
	src    Source
	graph  *scenegraph.Graph
	store  *material.Store
	pool   *workers.Pool
	logger *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc

	mu        sync.Mutex
	next      uint64
	loads     map[Handle]*load
	completed []completion
}

// NewServer creates a server resolving names through src and instantiating
// into graph and store.
func NewServer(src Source, graph *scenegraph.Graph, store *material.Store, opts ...ServerOption) *Server {
	var o serverOptions
	for _, opt := range opts {
		opt(&o)
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Server{
		src:    src,
		graph:  graph,
		store:  store,
		pool:   workers.New(o.workers),
		logger: logging.Or(o.logger),
		ctx:    ctx,
		cancel: cancel,
		loads:  make(map[Handle]*load),
	}
}

// RequestLoad starts a non-blocking load of name. Resolution failures are
// reported later through Poll, never here.
func (s *Server) RequestLoad(name string) Handle {
	s.mu.Lock()
	s.next++
	h := Handle{id: s.next}
	s.loads[h] = &load{name: name, state: StateRequested}
	s.mu.Unlock()

	s.logger.Debug("asset: load requested", "handle", h, "name", name)
	if !s.pool.Submit(func() { s.resolve(h, name) }) {
		s.complete(completion{h: h, err: ErrClosed})
	}
	return h
}

// resolve runs on a worker.
func (s *Server) resolve(h Handle, name string) {
	s.mu.Lock()
	if l := s.loads[h]; l != nil && l.state == StateRequested {
		l.state = StatePending
	}
	s.mu.Unlock()

	m, err := s.src.Open(s.ctx, name)
	s.complete(completion{h: h, m: m, err: err})
}

func (s *Server) complete(c completion) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.completed = append(s.completed, c)
}

// Poll returns the current status of h. It never blocks.
// An unknown handle reports StateFailed with ErrUnknownHandle.
func (s *Server) Poll(h Handle) Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.loads[h]
	if !ok {
		return Status{State: StateFailed, Err: ErrUnknownHandle}
	}
	return Status{State: l.state, Err: l.err}
}

// Root returns the instantiated root entity of a Ready load.
func (s *Server) Root(h Handle) (scenegraph.Entity, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.loads[h]
	if !ok || l.state != StateReady {
		return scenegraph.Invalid, false
	}
	return l.root, true
}

// TakeReady consumes the ready event of h. It returns true at most once per
// successful load, and never when a listener is registered.
func (s *Server) TakeReady(h Handle) (ReadyEvent, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.loads[h]
	if !ok || l.state != StateReady || l.consumed || l.listener != nil {
		return ReadyEvent{}, false
	}
	l.consumed = true
	return l.event(h), true
}

// OnReady registers fn as the single listener for the ready event of h.
// If the load is already Ready and unconsumed, fn runs before OnReady
// returns; otherwise it runs from Update. A failed load never calls fn.
func (s *Server) OnReady(h Handle, fn func(ReadyEvent)) error {
	s.mu.Lock()
	l, ok := s.loads[h]
	switch {
	case !ok:
		s.mu.Unlock()
		return fmt.Errorf("%w: %v", ErrUnknownHandle, h)
	case l.listener != nil:
		s.mu.Unlock()
		return fmt.Errorf("%w: %v", ErrListenerRegistered, h)
	case l.consumed:
		s.mu.Unlock()
		return fmt.Errorf("%w: %v", ErrEventConsumed, h)
	}
	l.listener = fn
	if l.state != StateReady {
		s.mu.Unlock()
		return nil
	}
	l.consumed = true
	ev := l.event(h)
	s.mu.Unlock()

	fn(ev)
	return nil
}

// Update instantiates every load that finished resolving since the last
// call, then delivers ready events to registered listeners. It returns the
// number of loads that reached a terminal state.
func (s *Server) Update() int {
	s.mu.Lock()
	batch := s.completed
	s.completed = nil
	s.mu.Unlock()

	type delivery struct {
		fn func(ReadyEvent)
		ev ReadyEvent
	}
	var deliveries []delivery

	for _, c := range batch {
		s.mu.Lock()
		l := s.loads[c.h]
		s.mu.Unlock()
		if l == nil {
			continue
		}

		var root scenegraph.Entity
		var n int
		err := c.err
		if err == nil {
			root, n, err = s.instantiate(c.m)
		}

		s.mu.Lock()
		if l.state.Terminal() {
			s.mu.Unlock()
			continue
		}
		if err != nil {
			l.state = StateFailed
			l.err = fmt.Errorf("%w: %q: %w", ErrLoadFailed, l.name, err)
			s.mu.Unlock()
			s.logger.Warn("asset: load failed", "handle", c.h, "name", l.name, "err", err)
			continue
		}
		l.state = StateReady
		l.root = root
		l.entities = n
		if l.listener != nil && !l.consumed {
			l.consumed = true
			deliveries = append(deliveries, delivery{fn: l.listener, ev: l.event(c.h)})
		}
		s.mu.Unlock()
		s.logger.Info("asset: load ready", "handle", c.h, "name", l.name, "root", root, "entities", n)
	}

	for _, d := range deliveries {
		d.fn(d.ev)
	}
	return len(batch)
}

// instantiate inserts the manifest's base materials, then spawns the root
// and its subtree. Materials go first so that entity spawning cannot fail
// halfway.
func (s *Server) instantiate(m *Manifest) (scenegraph.Entity, int, error) {
	if m == nil {
		return scenegraph.Invalid, 0, ErrInvalidManifest
	}
	if err := m.Validate(); err != nil {
		return scenegraph.Invalid, 0, err
	}
	refs := make(map[string]material.Ref, len(m.Materials))
	for name, b := range m.Materials {
		ref, err := s.store.AddBase(b)
		if err != nil {
			return scenegraph.Invalid, 0, fmt.Errorf("material %q: %w", name, err)
		}
		refs[name] = ref
	}

	root := s.graph.Spawn(scenegraph.Invalid, m.Name)
	count := 0
	var spawn func(parent scenegraph.Entity, nodes []Node)
	spawn = func(parent scenegraph.Entity, nodes []Node) {
		for _, n := range nodes {
			e := s.graph.SpawnWithMaterial(parent, n.Name, refs[n.Material])
			count++
			spawn(e, n.Children)
		}
	}
	spawn(root, m.Nodes)
	return root, count, nil
}

// Close cancels in-flight resolutions and stops the workers. Loads that
// have not reached a terminal state fail on the next Update.
func (s *Server) Close() {
	s.cancel()
	s.pool.Close()
}
