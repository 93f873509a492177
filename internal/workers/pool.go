// Package workers runs background jobs off the logic thread.
package workers

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// Pool is a fixed set of goroutines draining per-worker job queues.
// An idle worker steals from the other queues before blocking on its own.
//
// Thread safety: Pool is safe for concurrent use.
type Pool struct {
	workers int
	queues  []chan func()
	done    chan struct{}
	wg      sync.WaitGroup
	running atomic.Bool
}

// New creates a pool with the given number of workers and starts it.
// If workers is 0 or negative, GOMAXPROCS is used.
func New(workers int) *Pool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	queueSize := max(workers*4, 8)

	p := &Pool{
		workers: workers,
		queues:  make([]chan func(), workers),
		done:    make(chan struct{}),
	}
	for i := range workers {
		p.queues[i] = make(chan func(), queueSize)
	}
	p.running.Store(true)

	p.wg.Add(workers)
	for i := range workers {
		go p.worker(i)
	}
	return p
}

func (p *Pool) worker(id int) {
	defer p.wg.Done()
	own := p.queues[id]

	for {
		select {
		case <-p.done:
			drain(own)
			return
		case job := <-own:
			run(job)
		default:
			if stolen := p.steal(id); stolen != nil {
				run(stolen)
				continue
			}
			select {
			case <-p.done:
				drain(own)
				return
			case job := <-own:
				run(job)
			}
		}
	}
}

func (p *Pool) steal(id int) func() {
	for i := range p.workers {
		if i == id {
			continue
		}
		select {
		case job := <-p.queues[i]:
			return job
		default:
		}
	}
	return nil
}

func drain(q chan func()) {
	for {
		select {
		case job := <-q:
			run(job)
		default:
			return
		}
	}
}

func run(job func()) {
	if job != nil {
		job()
	}
}

// Submit queues fn on the worker with the shortest queue.
// It reports false if the pool is closed and fn was not queued. A job
// accepted while Close is in progress always runs, on the calling
// goroutine if the workers have already exited.
func (p *Pool) Submit(fn func()) bool {
	if fn == nil || !p.running.Load() {
		return false
	}

	idx := 0
	for i := 1; i < p.workers; i++ {
		if len(p.queues[i]) < len(p.queues[idx]) {
			idx = i
		}
	}

	select {
	case p.queues[idx] <- fn:
	case <-p.done:
		return false
	}
	if !p.running.Load() {
		// Close may have finished draining before the send landed.
		drain(p.queues[idx])
	}
	return true
}

// Close stops accepting work, runs whatever is still queued and waits for
// the workers to exit. Close is safe to call multiple times.
func (p *Pool) Close() {
	if !p.running.CompareAndSwap(true, false) {
		return
	}
	close(p.done)
	p.wg.Wait()
}

// Workers returns the number of workers.
func (p *Pool) Workers() int { return p.workers }

// IsRunning reports whether the pool accepts work.
func (p *Pool) IsRunning() bool { return p.running.Load() }
