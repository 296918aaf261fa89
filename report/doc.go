// Package report drives a material through cross-compilation and the
// offline compiler, then assembles the per-shader statistics.
//
// A Session moves through CrossCompiling, BackendCompiling and Complete.
// Failures never leave the Session stuck: a rejected or failed
// cross-compilation completes the session with a single "Cross
// Compilation Errors" group. A cross-compilation that finishes without
// shaders and without errors is requested once more before it is
// reported.
//
//	s := report.NewSession(res, platform, scheduler)
//	for s.Progress() != report.Complete {
//		scheduler.Tick()
//		s.Tick()
//	}
//	r := s.Report()
package report
