package resilience

import "sync"

// Group collapses concurrent calls that share a key into a single execution.
// The zero value is ready to use.
type Group[T any] struct {
	mu       sync.Mutex
	inflight map[string]*flight[T]
}

type flight[T any] struct {
	done chan struct{}
	val  T
	err  error
	dups int
}

// Do runs fn once per key at a time. Callers arriving while fn is running
// wait for it and receive the same result; shared reports whether that happened.
func (g *Group[T]) Do(key string, fn func() (T, error)) (val T, shared bool, err error) {
	g.mu.Lock()
	if g.inflight == nil {
		g.inflight = make(map[string]*flight[T])
	}
	if f, ok := g.inflight[key]; ok {
		f.dups++
		g.mu.Unlock()
		<-f.done
		return f.val, true, f.err
	}

	f := &flight[T]{done: make(chan struct{})}
	g.inflight[key] = f
	g.mu.Unlock()

	// dups is only read under mu; late joiners may still bump it while fn runs.
	defer func() {
		g.mu.Lock()
		delete(g.inflight, key)
		shared = f.dups > 0
		g.mu.Unlock()
		close(f.done)
	}()

	f.val, f.err = fn()
	return f.val, false, f.err
}
