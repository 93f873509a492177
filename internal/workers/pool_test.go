package workers

import (
	"sync"
	"sync/atomic"
	"testing"
)

func TestNewDefaultsWorkers(t *testing.T) {
	p := New(0)
	defer p.Close()
	if p.Workers() <= 0 {
		t.Errorf("Workers() = %d, want > 0", p.Workers())
	}
	if !p.IsRunning() {
		t.Error("IsRunning() = false for new pool")
	}
}

func TestSubmitRunsAll(t *testing.T) {
	p := New(4)
	defer p.Close()

	const n = 200
	var count atomic.Int32
	var wg sync.WaitGroup
	wg.Add(n)
	for range n {
		if !p.Submit(func() {
			count.Add(1)
			wg.Done()
		}) {
			t.Fatal("Submit() = false on running pool")
		}
	}
	wg.Wait()
	if got := count.Load(); got != n {
		t.Errorf("ran %d jobs, want %d", got, n)
	}
}

func TestCloseDrainsQueued(t *testing.T) {
	p := New(1)
	var count atomic.Int32
	for range 5 {
		p.Submit(func() { count.Add(1) })
	}
	p.Close()
	if got := count.Load(); got != 5 {
		t.Errorf("ran %d jobs before close returned, want 5", got)
	}
}

func TestSubmitAfterClose(t *testing.T) {
	p := New(2)
	p.Close()
	p.Close()

	if p.Submit(func() {}) {
		t.Error("Submit() = true after Close")
	}
	if p.Submit(nil) {
		t.Error("Submit(nil) = true")
	}
	if p.IsRunning() {
		t.Error("IsRunning() = true after Close")
	}
}

func TestSubmitDuringCloseNeverDropsAccepted(t *testing.T) {
	for range 50 {
		p := New(2)
		var accepted, ran atomic.Int32
		var wg sync.WaitGroup
		for range 8 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for range 50 {
					if p.Submit(func() { ran.Add(1) }) {
						accepted.Add(1)
					}
				}
			}()
		}
		p.Close()
		wg.Wait()
		if a, r := accepted.Load(), ran.Load(); a != r {
			t.Fatalf("ran %d jobs, want %d accepted", r, a)
		}
	}
}
