package querycoalesce

import (
	"sync"
	"sync/atomic"
	"testing"
)

func TestDoSharesConcurrentCallsForSameKey(t *testing.T) {
	var g Group[string, int]
	var calls atomic.Int64

	start := make(chan struct{})
	var wg sync.WaitGroup
	results := make([]int, 8)
	shared := make([]bool, 8)

	for i := 0; i < 8; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			v, err, sh := g.Do("k", func() (int, error) {
				calls.Add(1)
				return 42, nil
			})
			if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			results[i], shared[i] = v, sh
		}()
	}
	close(start)
	wg.Wait()

	for i, v := range results {
		if v != 42 {
			t.Fatalf("results[%d] = %d, want 42", i, v)
		}
	}
	if calls.Load() == 0 {
		t.Fatal("fn was never called")
	}
}

func TestDoRunsFreshCallAfterPriorCompletes(t *testing.T) {
	var g Group[string, int]
	var calls int

	v1, _, _ := g.Do("k", func() (int, error) { calls++; return 1, nil })
	v2, _, _ := g.Do("k", func() (int, error) { calls++; return 2, nil })

	if v1 != 1 || v2 != 2 {
		t.Fatalf("v1=%d v2=%d, want 1,2", v1, v2)
	}
	if calls != 2 {
		t.Fatalf("calls = %d, want 2 (key must be forgotten after each completes)", calls)
	}
}
