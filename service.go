package malioc

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gogpu/malioc/backend"
	"github.com/gogpu/malioc/capability"
	"github.com/gogpu/malioc/compile"
	"github.com/gogpu/malioc/material"
	"github.com/gogpu/malioc/report"
)

var (
	// ErrUnavailable is returned when the compiler manager cannot be loaded.
	ErrUnavailable = errors.New("malioc: offline compiler unavailable")

	// ErrNoCores is returned when the compiler manager reports no usable
	// GLSL ES compilers.
	ErrNoCores = errors.New("malioc: offline compiler supports no cores")
)

// Service owns the compiler backend, its capability catalog and the compile
// job scheduler.
//
// Only one Service that loads the compiler manager may exist at a time.
type Service struct {
	lib       *backend.Library // nil when the backend was injected
	backend   backend.Backend
	catalog   *capability.Catalog
	sched     *compile.Scheduler
	materials material.System
	closed    bool
}

// New loads the compiler manager and discovers its capabilities.
//
// It returns ErrUnavailable when the library is missing or unusable and
// ErrNoCores when it supports nothing this package can compile for.
func New(opts ...Option) (*Service, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	s := &Service{backend: o.backend, materials: o.materials}
	if s.backend == nil {
		lib, ok := backend.Initialize(o.config, o.silent)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnavailable, o.config.LibraryPath())
		}
		s.lib = lib
		s.backend = lib
	}

	s.catalog = capability.Discover(s.backend)
	if s.catalog.Empty() {
		s.lib.Deinitialize()
		return nil, ErrNoCores
	}

	if s.materials == nil {
		s.materials = material.NewNagaSystem()
	}
	schedOpts := []compile.Option{compile.WithPollInterval(o.poll)}
	if o.adapter != nil {
		schedOpts = append(schedOpts, compile.WithAdapter(o.adapter))
	}
	s.sched = compile.NewScheduler(s.backend, schedOpts...)

	Logger().Info("malioc: service ready", "cores", len(s.catalog.Cores()), "platforms", len(s.catalog.Platforms()))
	return s, nil
}

// WaitAvailable calls New every interval until the compiler manager can be
// loaded, so a running application picks up a compiler installed after it
// started. It returns early on any error other than ErrUnavailable and
// returns ctx.Err() when ctx is done first.
func WaitAvailable(ctx context.Context, interval time.Duration, opts ...Option) (*Service, error) {
	// Only the first attempt may log a load failure.
	quiet := append(append([]Option(nil), opts...), WithSilent(true))

	s, err := New(opts...)
	t := time.NewTicker(interval)
	defer t.Stop()
	for errors.Is(err, ErrUnavailable) {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-t.C:
		}
		s, err = New(quiet...)
	}
	return s, err
}

// Catalog returns the discovered capabilities.
func (s *Service) Catalog() *capability.Catalog { return s.catalog }

// Materials returns the material system used by Analyze.
func (s *Service) Materials() material.System { return s.materials }

// Scheduler returns the compile job scheduler.
func (s *Service) Scheduler() *compile.Scheduler { return s.sched }

// Analyze starts a report session for m on p.
func (s *Service) Analyze(m material.Material, p capability.Platform) *report.Session {
	if s.closed {
		panic("malioc: Analyze called on a closed Service")
	}
	return report.NewSession(s.materials.NewResource(m), p, s.sched)
}

// Tick advances the compile job scheduler. Call it regularly, together with
// report.Session.Tick, from the goroutine that drives the sessions.
func (s *Service) Tick() { s.sched.Tick() }

// Close waits for every queued compile job and releases the compiler
// manager. It is safe to call more than once.
func (s *Service) Close() {
	if s == nil || s.closed {
		return
	}
	s.closed = true
	s.sched.FinishAll()
	s.lib.Deinitialize()
	Logger().Info("malioc: service closed")
}
