package report

import (
	"fmt"

	"github.com/gogpu/malioc/capability"
	"github.com/gogpu/malioc/compile"
	"github.com/gogpu/malioc/internal/logging"
	"github.com/gogpu/malioc/material"
)

// Progress is the state of a Session.
type Progress uint8

const (
	// CrossCompiling waits for the material system to produce a shader map.
	CrossCompiling Progress = iota

	// BackendCompiling waits for the compile job.
	BackendCompiling

	// Complete is terminal. The report is available.
	Complete
)

// String returns the progress name.
func (p Progress) String() string {
	switch p {
	case CrossCompiling:
		return "CrossCompiling"
	case BackendCompiling:
		return "BackendCompiling"
	case Complete:
		return "Complete"
	default:
		return fmt.Sprintf("Progress(%d)", p)
	}
}

// CompilationProgress counts processed shaders of the compile job.
type CompilationProgress struct {
	Completed int
	Total     int
}

// Scheduler queues compile jobs. *compile.Scheduler implements it.
type Scheduler interface {
	Enqueue(shaders []material.Shader, p capability.Platform) *compile.Job
	FinishAll()
}

// maxCrossCompileRetries bounds silent re-requests of a cross-compilation
// that failed without reporting errors.
const maxCrossCompileRetries = 1

// Session generates the report of one material on one platform.
//
// A Session is driven from a single goroutine by calling Tick until
// Progress returns Complete, or by calling FinishReportGeneration.
type Session struct {
	res      material.Resource
	platform capability.Platform
	sched    Scheduler

	progress Progress
	retries  int
	failed   bool
	job      *compile.Job
	report   *Report
}

// NewSession starts cross-compiling res for the target of p.
func NewSession(res material.Resource, p capability.Platform, sched Scheduler) *Session {
	s := &Session{res: res, platform: p, sched: sched}
	if !res.CacheShaders(p.Target()) {
		logging.Logger().Warn("malioc: cross-compilation request rejected", "platform", p.String())
		s.fail()
	}
	return s
}

// Platform returns the platform the session compiles for.
func (s *Session) Platform() capability.Platform { return s.platform }

// Progress returns the current state.
func (s *Session) Progress() Progress { return s.progress }

// Tick advances the state machine without blocking.
func (s *Session) Tick() {
	switch s.progress {
	case CrossCompiling:
		if !s.res.IsCompilationFinished() {
			return
		}
		s.res.FinishCompilation()

		sm := s.res.ShaderMap()
		if sm == nil {
			if len(s.res.CompileErrors()) == 0 && s.retries < maxCrossCompileRetries {
				s.retries++
				logging.Logger().Warn("malioc: cross-compilation produced no shaders, retrying",
					"platform", s.platform.String(), "attempt", s.retries+1)
				if s.res.CacheShaders(s.platform.Target()) {
					return
				}
			}
			s.fail()
			return
		}

		s.job = s.sched.Enqueue(sm.Shaders, s.platform)
		s.progress = BackendCompiling
		logging.Logger().Debug("malioc: compile job queued",
			"job", s.job.ID(), "material", sm.Material, "shaders", sm.Len())

	case BackendCompiling:
		if s.job.IsFinished() {
			s.progress = Complete
		}
	}
}

// FinishReportGeneration blocks until the session is Complete.
func (s *Session) FinishReportGeneration() {
	for s.progress == CrossCompiling {
		s.res.FinishCompilation()
		s.Tick()
	}
	if s.progress == BackendCompiling {
		s.sched.FinishAll()
		s.Tick()
	}
	if s.progress != Complete {
		panic("report: FinishReportGeneration did not complete the session")
	}
}

// CompilationProgress returns the compile job's progress. It panics while
// the session is still cross-compiling.
func (s *Session) CompilationProgress() CompilationProgress {
	if s.progress == CrossCompiling {
		panic("report: CompilationProgress called before backend compilation")
	}
	if s.job == nil {
		return CompilationProgress{}
	}
	return CompilationProgress{Completed: s.job.Compiled(), Total: s.job.Total()}
}

// Report returns the report, building it on the first call. It panics
// unless the session is Complete.
func (s *Session) Report() *Report {
	if s.progress != Complete {
		panic("report: Report called before the session completed")
	}
	if s.report == nil {
		if s.failed {
			s.report = crossCompilationReport(s.res.CompileErrors())
		} else {
			s.report = build(s.job.Outputs(), s.res.ShaderDescriptions())
		}
	}
	return s.report
}

func (s *Session) fail() {
	s.failed = true
	s.progress = Complete
}
