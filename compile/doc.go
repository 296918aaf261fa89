// Package compile runs cross-compiled shaders through the offline compiler
// and turns its flexible key/value output into typed statistics.
//
// # Jobs
//
// A Job compiles every shader of a shader map for one capability.Platform.
// Shaders whose stage is neither vertex nor fragment are recorded as
// errors without calling the backend. Every other shader is specialized
// for the device by an Adapter, compiled, and classified into one of:
//
//   - *ErrorOutput: the compiler did not run, reported errors, produced no
//     flexible output or an unrecognized architecture
//   - *MidgardOutput: one RenderTarget per flexible-output block
//   - *UtgardOutput: a single block of whole-shader cycle counts
//
// # Scheduling
//
// The offline compiler is not reentrant. Scheduler therefore runs at most
// one Job at a time, in enqueue order, each on its own goroutine:
//
//	s := compile.NewScheduler(lib)
//	job := s.Enqueue(shaderMap.Shaders, platform)
//	for !job.IsFinished() {
//		s.Tick()
//	}
//	outputs := job.Outputs()
//
// There is no cancellation. Call FinishAll before releasing the backend.
package compile
