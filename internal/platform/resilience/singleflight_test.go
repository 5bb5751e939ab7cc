package resilience

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestSingleFlight_DeduplicatesConcurrentCardFetches(t *testing.T) {
	var (
		g     SingleFlight
		calls atomic.Int32
		wg    sync.WaitGroup
	)

	release := make(chan struct{})
	results := make(chan any, 8)
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err, _ := g.Do("card:slice-and-dice", func() (any, error) {
				calls.Add(1)
				<-release
				return "Slice and Dice", nil
			})
			if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			results <- v
		}()
	}

	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()
	close(results)

	if got := calls.Load(); got != 1 {
		t.Fatalf("expected one upstream call, got=%d", got)
	}
	for v := range results {
		if v != "Slice and Dice" {
			t.Fatalf("expected shared value, got=%v", v)
		}
	}
}

func TestSingleFlight_ErrorsAreNotRemembered(t *testing.T) {
	t.Parallel()

	var g SingleFlight
	if _, err, _ := g.Do("card:firebolt", func() (any, error) { return nil, errors.New("catalog down") }); err == nil {
		t.Fatalf("expected first call error")
	}

	v, err, _ := g.Do("card:firebolt", func() (any, error) { return "Firebolt", nil })
	if err != nil || v != "Firebolt" {
		t.Fatalf("expected fresh call after failure, got v=%v err=%v", v, err)
	}
}

func TestSingleFlight_Forget(t *testing.T) {
	t.Parallel()

	var g SingleFlight
	g.Forget("card:never-seen")

	v, _, shared := g.Do("card:lorraine", func() (any, error) { return 1, nil })
	if v != 1 || shared {
		t.Fatalf("expected unshared single call, got v=%v shared=%v", v, shared)
	}
}
