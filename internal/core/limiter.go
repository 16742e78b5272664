package core

// limiter.go bounds how many workbooks are validated at once.
//
// Loading and checking a workbook holds all of it in memory, so the service
// runs at most maxConcurrent validations. Callers that find every slot taken
// wait up to maxWait and then get ErrTooManyValidations. WaitForDrain lets
// shutdown block until in-flight validations have recorded their runs.

import (
	"context"
	"errors"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"
)

// ErrTooManyValidations is returned when all slots are occupied and the wait
// timeout expires. Clients should retry after a short delay.
var ErrTooManyValidations = errors.New("too many concurrent validations, please try again later")

const (
	// DefaultMaxConcurrent is the default limit for parallel validations.
	DefaultMaxConcurrent = 5

	// DefaultMaxWaitTime is how long to wait for a slot before rejecting.
	DefaultMaxWaitTime = 30 * time.Second
)

// Limiter is a weighted semaphore with an active count and a drain signal.
type Limiter struct {
	sem     *semaphore.Weighted
	size    int
	maxWait time.Duration

	mu     sync.Mutex
	active int
	idle   chan struct{} // closed while active == 0
}

// NewLimiter creates a limiter with maxConcurrent slots. Non-positive
// arguments select the defaults.
func NewLimiter(maxConcurrent int, maxWait time.Duration) *Limiter {
	if maxConcurrent <= 0 {
		maxConcurrent = DefaultMaxConcurrent
	}
	if maxWait <= 0 {
		maxWait = DefaultMaxWaitTime
	}

	idle := make(chan struct{})
	close(idle)
	return &Limiter{
		sem:     semaphore.NewWeighted(int64(maxConcurrent)),
		size:    maxConcurrent,
		maxWait: maxWait,
		idle:    idle,
	}
}

// Acquire takes a slot, waiting at most the limiter's maxWait. It returns
// ctx's error if the caller gives up first. Every successful Acquire must be
// paired with a Release.
func (l *Limiter) Acquire(ctx context.Context) error {
	waitCtx, cancel := context.WithTimeout(ctx, l.maxWait)
	defer cancel()

	if err := l.sem.Acquire(waitCtx, 1); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return ErrTooManyValidations
	}
	l.enter()
	return nil
}

// TryAcquire takes a slot only if one is free right now.
func (l *Limiter) TryAcquire() bool {
	if !l.sem.TryAcquire(1) {
		return false
	}
	l.enter()
	return true
}

// Release returns a slot taken by Acquire or TryAcquire.
func (l *Limiter) Release() {
	l.mu.Lock()
	l.active--
	if l.active == 0 {
		close(l.idle)
	}
	l.mu.Unlock()

	l.sem.Release(1)
}

func (l *Limiter) enter() {
	l.mu.Lock()
	if l.active == 0 {
		l.idle = make(chan struct{})
	}
	l.active++
	l.mu.Unlock()
}

// ActiveCount returns the number of validations holding a slot.
func (l *Limiter) ActiveCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.active
}

// MaxConcurrent returns the number of slots.
func (l *Limiter) MaxConcurrent() int {
	return l.size
}

// Available returns the number of free slots.
func (l *Limiter) Available() int {
	return l.size - l.ActiveCount()
}

// WaitForDrain blocks until no validation holds a slot or ctx is done.
func (l *Limiter) WaitForDrain(ctx context.Context) error {
	l.mu.Lock()
	idle := l.idle
	l.mu.Unlock()

	select {
	case <-idle:
		return nil
	default:
	}
	select {
	case <-idle:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// LimiterStatus is a snapshot of the limiter's state.
type LimiterStatus struct {
	Active        int `json:"active"`
	Available     int `json:"available"`
	MaxConcurrent int `json:"max_concurrent"`
}

// Status returns the current limiter state for monitoring.
func (l *Limiter) Status() LimiterStatus {
	active := l.ActiveCount()
	return LimiterStatus{
		Active:        active,
		Available:     l.size - active,
		MaxConcurrent: l.size,
	}
}
