package matext

import (
	"fmt"
	"strings"

	"github.com/gogpu/matext/asset"
	"github.com/gogpu/matext/material"
	"github.com/gogpu/matext/scenegraph"
)

// Policy selects when a Scheduler runs augmentation for a watched load.
// Both policies reach the same final state.
type Policy uint8

const (
	// PolicyOnce augments once, from the ready event of the load.
	PolicyOnce Policy = iota

	// PolicyEveryTick augments on every tick while the load is Ready.
	// Passes after the first are no-ops unless new base materials appear.
	PolicyEveryTick
)

func (p Policy) String() string {
	switch p {
	case PolicyOnce:
		return "once"
	case PolicyEveryTick:
		return "every_tick"
	}
	return fmt.Sprintf("Policy(%d)", uint8(p))
}

// ParsePolicy parses "once" or "every_tick".
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "once":
		return PolicyOnce, nil
	case "every_tick", "every-tick", "everytick":
		return PolicyEveryTick, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownPolicy, s)
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *Policy) UnmarshalText(text []byte) error {
	v, err := ParsePolicy(string(text))
	if err != nil {
		return err
	}
	*p = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (p Policy) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// JobStatus is the scheduler's view of one watched load.
type JobStatus struct {
	Load asset.State

	// Augmented is set once an augmentation pass has run over the root.
	Augmented bool

	// Report accumulates Augmented, Created and Warnings across passes.
	// Visited and Skipped are those of the latest pass.
	Report Report

	// Err is the load error or an augmentation error.
	Err error
}

// Done reports whether the job needs no further ticks.
func (s JobStatus) Done() bool {
	return s.Err != nil || s.Augmented
}

type job struct {
	h      asset.Handle
	status JobStatus
}

// Scheduler drives loads and augmentation from a host tick loop. It is not
// safe for concurrent use; call it from the logic thread.
type Scheduler struct {
	engine   *Engine
	server   *asset.Server
	policy   Policy
	defaults material.Extension

	jobs  []*job
	index map[asset.Handle]*job

	augmentedThisTick int
}

// NewScheduler creates a scheduler applying policy with defaults.
func NewScheduler(engine *Engine, server *asset.Server, policy Policy, defaults material.Extension) *Scheduler {
	return &Scheduler{
		engine:   engine,
		server:   server,
		policy:   policy,
		defaults: defaults,
		index:    make(map[asset.Handle]*job),
	}
}

// Policy returns the trigger policy.
func (s *Scheduler) Policy() Policy { return s.policy }

// Watch starts tracking h. Under PolicyOnce it registers the ready listener,
// so h must not have its ready event consumed elsewhere.
func (s *Scheduler) Watch(h asset.Handle) error {
	if _, ok := s.index[h]; ok {
		return nil
	}
	j := &job{h: h}
	j.status.Load = s.server.Poll(h).State
	s.jobs = append(s.jobs, j)
	s.index[h] = j

	if s.policy == PolicyOnce {
		if err := s.server.OnReady(h, func(ev asset.ReadyEvent) {
			s.run(j, ev.Root)
		}); err != nil {
			j.status.Err = err
			return err
		}
	}
	return nil
}

// Tick advances the loads and applies the policy. It returns the number of
// entities augmented during this tick.
func (s *Scheduler) Tick() int {
	s.augmentedThisTick = 0
	s.server.Update()

	for _, j := range s.jobs {
		if j.status.Err != nil {
			continue
		}
		st := s.server.Poll(j.h)
		j.status.Load = st.State
		switch st.State {
		case asset.StateFailed:
			j.status.Err = st.Err
		case asset.StateReady:
			if s.policy != PolicyEveryTick {
				continue
			}
			if root, ok := s.server.Root(j.h); ok {
				s.run(j, root)
			}
		}
	}
	return s.augmentedThisTick
}

func (s *Scheduler) run(j *job, root scenegraph.Entity) {
	j.status.Load = asset.StateReady
	r, err := s.engine.Augment(root, s.defaults)
	if err != nil {
		j.status.Err = err
		return
	}
	acc := &j.status.Report
	acc.Visited = r.Visited
	acc.Skipped = r.Skipped
	acc.Augmented += r.Augmented
	acc.Created = append(acc.Created, r.Created...)
	acc.Warnings = append(acc.Warnings, r.Warnings...)
	j.status.Augmented = true
	s.augmentedThisTick += r.Augmented
}

// Status returns the status of a watched load.
func (s *Scheduler) Status(h asset.Handle) (JobStatus, bool) {
	j, ok := s.index[h]
	if !ok {
		return JobStatus{}, false
	}
	return j.status, true
}

// Done reports whether every watched load has been augmented or has failed.
func (s *Scheduler) Done() bool {
	for _, j := range s.jobs {
		if !j.status.Done() {
			return false
		}
	}
	return true
}
