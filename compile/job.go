package compile

import (
	"sync/atomic"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/malioc/backend"
	"github.com/gogpu/malioc/capability"
	"github.com/gogpu/malioc/internal/logging"
	"github.com/gogpu/malioc/material"
)

// Job compiles one shader collection for one platform on its own
// goroutine. It is created queued by Scheduler.Enqueue and started by
// Scheduler.Tick.
//
// Thread safety: the progress accessors may be called from any goroutine.
// Outputs may only be read after IsFinished reports true.
type Job struct {
	id       uint64
	shaders  []material.Shader
	platform capability.Platform
	backend  backend.Backend
	adapter  Adapter

	// outputs is written only by the job goroutine.
	outputs []Output

	started  atomic.Bool
	compiled atomic.Uint32
	finished atomic.Bool
}

// ID returns the job's sequence number, starting at 1.
func (j *Job) ID() uint64 { return j.id }

// Platform returns the target platform.
func (j *Job) Platform() capability.Platform { return j.platform }

// Total returns the number of shaders in the job.
func (j *Job) Total() int { return len(j.shaders) }

// Compiled returns the number of shaders processed so far.
func (j *Job) Compiled() int { return int(j.compiled.Load()) }

// IsStarted reports whether the job has left the queue.
func (j *Job) IsStarted() bool { return j.started.Load() }

// IsFinished reports whether every shader has been processed.
func (j *Job) IsFinished() bool { return j.finished.Load() }

// Outputs returns one Output per shader, in shader order. It panics if the
// job has not finished.
func (j *Job) Outputs() []Output {
	if !j.finished.Load() {
		panic("compile: Outputs called before the job finished")
	}
	return j.outputs
}

func (j *Job) start() {
	j.started.Store(true)
	go j.run()
}

func (j *Job) run() {
	log := logging.Logger()
	log.Debug("compile: job started", "job", j.id, "platform", j.platform.String(), "shaders", len(j.shaders))

	caps := CapabilitiesFor(j.platform)
	outputs := make([]Output, 0, len(j.shaders))
	for _, s := range j.shaders {
		outputs = append(outputs, j.compileShader(s, caps))
		j.compiled.Add(1)
	}
	j.outputs = outputs
	j.finished.Store(true)

	log.Debug("compile: job finished", "job", j.id)
}

func (j *Job) compileShader(s material.Shader, caps DeviceCapabilities) Output {
	common := CommonOutput{
		ShaderName:    s.Name,
		Stage:         s.Stage,
		VertexFactory: VertexFactoryName(s.VertexFactory),
	}

	var tag string
	switch s.Stage {
	case gputypes.ShaderStageVertex:
		tag = backend.StageVertex
	case gputypes.ShaderStageFragment:
		tag = backend.StageFragment
	default:
		return errorOutput(common, MsgInvalidOutput, MsgUnsupportedStage)
	}

	common.Source = j.adapter.Adapt(s.Source, s.Stage, caps)
	out, ran := j.backend.Compile(backend.CompileRequest{
		Source:   common.Source,
		Stage:    tag,
		Compiler: j.platform.Driver().Compiler(),
	})
	o := Classify(common, out, ran)

	if e, ok := o.(*ErrorOutput); ok {
		logging.Logger().Debug("compile: shader failed", "job", j.id, "shader", s.Name, "errors", len(e.Errors))
	}
	return o
}
