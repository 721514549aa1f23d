// Package stopwatch measures elapsed time across one or more start/stop
// intervals using the monotonic clock.
//
//	sw := stopwatch.StartNew()
//	doWork()
//	log.Info("work done", "duration_ms", sw.ElapsedMilliseconds())
package stopwatch

import (
	"sync"
	"time"
)

// Clock returns the current time. time.Now is the default; tests inject
// a fake.
type Clock func() time.Time

// Stopwatch accumulates elapsed time while running. The zero value is a
// stopped stopwatch using time.Now.
//
// All methods are thread-safe.
type Stopwatch struct {
	mu      sync.Mutex
	clock   Clock
	start   time.Time
	elapsed time.Duration
	running bool
}

// New returns a stopped stopwatch.
func New() *Stopwatch {
	return &Stopwatch{clock: time.Now}
}

// NewWithClock returns a stopped stopwatch reading time from clock.
func NewWithClock(clock Clock) *Stopwatch {
	if clock == nil {
		clock = time.Now
	}
	return &Stopwatch{clock: clock}
}

// StartNew returns a running stopwatch.
func StartNew() *Stopwatch {
	sw := New()
	sw.Start()
	return sw
}

func (s *Stopwatch) now() time.Time {
	if s.clock == nil {
		return time.Now()
	}
	return s.clock()
}

// Start begins or resumes measuring. Starting a running stopwatch has no
// effect.
func (s *Stopwatch) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		s.start = s.now()
		s.running = true
	}
}

// Stop pauses measuring, keeping the accumulated time.
func (s *Stopwatch) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		s.elapsed += s.now().Sub(s.start)
		s.running = false
	}
}

// Reset stops the stopwatch and clears the accumulated time.
func (s *Stopwatch) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.elapsed = 0
	s.running = false
}

// Restart clears the accumulated time and starts measuring again.
func (s *Stopwatch) Restart() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.elapsed = 0
	s.start = s.now()
	s.running = true
}

// Elapsed returns the total measured time, including the current interval
// when running.
func (s *Stopwatch) Elapsed() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return s.elapsed + s.now().Sub(s.start)
	}
	return s.elapsed
}

// ElapsedMilliseconds returns Elapsed in whole milliseconds.
func (s *Stopwatch) ElapsedMilliseconds() int64 {
	return s.Elapsed().Milliseconds()
}

// IsRunning reports whether the stopwatch is measuring.
func (s *Stopwatch) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}
