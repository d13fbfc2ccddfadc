package ratelimit

import (
	"sort"
	"sync"
	"testing"
	"time"
)

func TestExecuteSpacesRequests(t *testing.T) {
	interval := 50 * time.Millisecond
	l := New(interval)
	defer l.Close()

	var mu sync.Mutex
	var starts []time.Time

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = l.Execute(func() error {
				mu.Lock()
				starts = append(starts, time.Now())
				mu.Unlock()
				return nil
			})
		}()
	}
	wg.Wait()

	sort.Slice(starts, func(i, j int) bool { return starts[i].Before(starts[j]) })
	if len(starts) != 4 {
		t.Fatalf("recorded %d starts, want 4", len(starts))
	}
	// Small tolerance for timer granularity.
	minGap := interval - 5*time.Millisecond
	for i := 1; i < len(starts); i++ {
		if gap := starts[i].Sub(starts[i-1]); gap < minGap {
			t.Errorf("gap between request %d and %d = %v, want >= %v", i-1, i, gap, interval)
		}
	}
}

func TestExecuteReturnsError(t *testing.T) {
	l := New(time.Millisecond)
	defer l.Close()

	want := "boom"
	err := l.Execute(func() error { return errString(want) })
	if err == nil || err.Error() != want {
		t.Errorf("Execute error = %v, want %q", err, want)
	}
}

func TestExecuteGeneric(t *testing.T) {
	l := New(time.Millisecond)
	defer l.Close()

	got, err := Execute(l, func() (int, error) { return 42, nil })
	if err != nil || got != 42 {
		t.Errorf("Execute = (%d, %v), want (42, nil)", got, err)
	}
}

func TestCloseUnblocksQueuedCallers(t *testing.T) {
	l := New(time.Hour)

	release := make(chan struct{})
	started := make(chan struct{})
	go func() {
		_ = l.Execute(func() error {
			close(started)
			<-release
			return nil
		})
	}()
	<-started

	// These land in the queue behind the in-flight call and cannot start
	// for an hour. Close must fail them instead of leaving them blocked.
	errs := make(chan error, 3)
	var wg sync.WaitGroup
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- l.Execute(func() error { return nil })
		}()
	}

	time.Sleep(20 * time.Millisecond)
	l.Close()
	close(release)

	done := make(chan struct{})
	go func() { wg.Wait(); close(done) }()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("queued callers still blocked after Close")
	}

	close(errs)
	for err := range errs {
		if err != ErrClosed {
			t.Errorf("queued Execute error = %v, want ErrClosed", err)
		}
	}
}

func TestExecuteAfterClose(t *testing.T) {
	l := New(time.Millisecond)
	l.Close()

	if err := l.Execute(func() error { return nil }); err != ErrClosed {
		t.Errorf("Execute after Close = %v, want ErrClosed", err)
	}
}

type errString string

func (e errString) Error() string { return string(e) }
