// Package ratelimit serializes outbound calls to the content-source API so
// that at most one request starts per interval, however many callers are
// queued. Under load latency grows but throughput stays at 1/interval.
package ratelimit

import (
	"errors"
	"sync"
	"time"
)

// ErrClosed is returned to callers whose request was still queued when the
// limiter shut down.
var ErrClosed = errors.New("ratelimit: limiter closed")

type job struct {
	fn    func() error
	errCh chan error
}

// Limiter queues requests and drains them one at a time, spacing request
// start times by at least the configured interval. Every enqueued call gets
// a reply: either its own result, or ErrClosed if the limiter shuts down
// before the call runs.
type Limiter struct {
	interval time.Duration
	queue    chan job
	done     chan struct{}

	mu     sync.Mutex
	closed bool
}

// New starts a limiter with the given minimum interval between requests.
func New(interval time.Duration) *Limiter {
	l := &Limiter{
		interval: interval,
		queue:    make(chan job, 1024),
		done:     make(chan struct{}),
	}
	go l.drain()
	return l
}

// Execute enqueues fn and blocks until it has run, returning its error.
// After Close it returns ErrClosed without running fn.
func (l *Limiter) Execute(fn func() error) error {
	j := job{fn: fn, errCh: make(chan error, 1)}

	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return ErrClosed
	}
	l.queue <- j
	l.mu.Unlock()

	return <-j.errCh
}

// Close stops the drain loop and fails any still-queued requests with
// ErrClosed.
func (l *Limiter) Close() {
	l.mu.Lock()
	if !l.closed {
		l.closed = true
		close(l.done)
	}
	l.mu.Unlock()
}

func (l *Limiter) drain() {
	var lastRequest time.Time
	for {
		select {
		case <-l.done:
			l.reject()
			return
		case j := <-l.queue:
			select {
			case <-l.done:
				j.errCh <- ErrClosed
				l.reject()
				return
			default:
			}
			if wait := l.interval - time.Since(lastRequest); wait > 0 {
				time.Sleep(wait)
			}
			lastRequest = time.Now()
			j.errCh <- j.fn()
		}
	}
}

// reject empties the queue so callers blocked on a reply unblock. No new
// jobs can arrive here: Close flips the closed flag before the done channel
// signals, and Execute checks the flag under the same lock.
func (l *Limiter) reject() {
	for {
		select {
		case j := <-l.queue:
			j.errCh <- ErrClosed
		default:
			return
		}
	}
}

// Execute runs fn through the limiter and returns its value and error.
func Execute[T any](l *Limiter, fn func() (T, error)) (T, error) {
	var result T
	err := l.Execute(func() error {
		var innerErr error
		result, innerErr = fn()
		return innerErr
	})
	return result, err
}
