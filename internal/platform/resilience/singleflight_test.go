package resilience

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestGroup_DoCollapsesConcurrentCalls(t *testing.T) {
	var g Group[string]
	var calls int32

	const workers = 20
	start := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(workers)

	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			<-start
			got, _, err := g.Do("round:r-1:games", func() (string, error) {
				atomic.AddInt32(&calls, 1)
				time.Sleep(20 * time.Millisecond)
				return "ok", nil
			})
			if err != nil {
				t.Errorf("do: %v", err)
			}
			if got != "ok" {
				t.Errorf("unexpected value %q", got)
			}
		}()
	}

	close(start)
	wg.Wait()

	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Fatalf("expected function to run once, got %d", got)
	}
}

func TestGroup_DoRunsAgainAfterCompletion(t *testing.T) {
	var g Group[int]
	boom := errors.New("boom")

	if _, _, err := g.Do("k", func() (int, error) { return 0, boom }); !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	got, shared, err := g.Do("k", func() (int, error) { return 7, nil })
	if err != nil {
		t.Fatalf("second do: %v", err)
	}
	if got != 7 || shared {
		t.Fatalf("expected fresh result 7, got %d shared=%v", got, shared)
	}
}

func TestGroup_DoLeaderSeesLateJoiner(t *testing.T) {
	var g Group[string]
	release := make(chan struct{})
	type result struct {
		val    string
		shared bool
	}
	leader := make(chan result, 1)

	go func() {
		val, shared, _ := g.Do("k", func() (string, error) {
			<-release
			return "v", nil
		})
		leader <- result{val: val, shared: shared}
	}()
	waitFor(t, func() bool {
		g.mu.Lock()
		defer g.mu.Unlock()
		return g.inflight["k"] != nil
	})

	follower := make(chan result, 1)
	go func() {
		val, shared, _ := g.Do("k", func() (string, error) { return "other", nil })
		follower <- result{val: val, shared: shared}
	}()
	waitFor(t, func() bool {
		g.mu.Lock()
		defer g.mu.Unlock()
		f := g.inflight["k"]
		return f != nil && f.dups == 1
	})
	close(release)

	if got := <-leader; got.val != "v" || !got.shared {
		t.Fatalf("leader: got %+v, want shared v", got)
	}
	if got := <-follower; got.val != "v" || !got.shared {
		t.Fatalf("follower: got %+v, want shared v", got)
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("condition not met in time")
		}
		time.Sleep(time.Millisecond)
	}
}
