package compile

import (
	"sync"
	"time"

	"github.com/gogpu/malioc/backend"
	"github.com/gogpu/malioc/capability"
	"github.com/gogpu/malioc/internal/logging"
	"github.com/gogpu/malioc/material"
)

// DefaultPollInterval is how often FinishAll checks the running job.
const DefaultPollInterval = 10 * time.Millisecond

// Scheduler runs compile jobs one at a time in FIFO order. The backend is
// not reentrant, so a second job never starts before the first finishes.
//
// State only advances in Tick. Enqueue and the accessors are safe from any
// goroutine; Tick and FinishAll are meant for a single driver goroutine.
type Scheduler struct {
	backend backend.Backend
	adapter Adapter
	poll    time.Duration

	mu      sync.Mutex
	queue   []*Job
	current *Job
	nextID  uint64
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithAdapter replaces the default GLSLAdapter.
func WithAdapter(a Adapter) Option {
	return func(s *Scheduler) {
		if a != nil {
			s.adapter = a
		}
	}
}

// WithPollInterval sets the FinishAll poll interval.
func WithPollInterval(d time.Duration) Option {
	return func(s *Scheduler) {
		if d > 0 {
			s.poll = d
		}
	}
}

// NewScheduler returns an idle scheduler compiling with b.
func NewScheduler(b backend.Backend, opts ...Option) *Scheduler {
	s := &Scheduler{
		backend: b,
		adapter: GLSLAdapter{},
		poll:    DefaultPollInterval,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Enqueue queues a job compiling shaders for p. The shader slice is copied.
// The job starts on a later Tick.
func (s *Scheduler) Enqueue(shaders []material.Shader, p capability.Platform) *Job {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	j := &Job{
		id:       s.nextID,
		shaders:  append([]material.Shader(nil), shaders...),
		platform: p,
		backend:  s.backend,
		adapter:  s.adapter,
	}
	s.queue = append(s.queue, j)
	logging.Logger().Debug("compile: job queued", "job", j.id, "pending", len(s.queue))
	return j
}

// Tick releases the current job once it has finished and starts the next
// queued job when none is running.
func (s *Scheduler) Tick() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current != nil && s.current.IsFinished() {
		s.current = nil
	}
	if s.current == nil && len(s.queue) > 0 {
		s.current = s.queue[0]
		s.queue[0] = nil
		s.queue = s.queue[1:]
		s.current.start()
	}
}

// FinishAll blocks until every queued job has run to completion. It must
// be called before the backend is released.
func (s *Scheduler) FinishAll() {
	s.Tick()
	for s.Current() != nil {
		time.Sleep(s.poll)
		s.Tick()
	}
}

// Pending returns the number of queued jobs not yet started.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queue)
}

// Current returns the running job, or nil.
func (s *Scheduler) Current() *Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}
