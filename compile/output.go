package compile

import (
	"fmt"

	"github.com/gogpu/gputypes"
)

// Arch is a GPU architecture family as reported in the "architecture"
// flexible-output key.
type Arch uint8

const (
	// ArchUnknown marks a missing or unrecognized architecture tag.
	ArchUnknown Arch = iota

	// ArchUtgard is the single-output family (Mali-400 series).
	ArchUtgard

	// ArchMidgard is the multi-output family (Mali-T600 series and later),
	// one output block per render target.
	ArchMidgard
)

// String returns the architecture tag.
func (a Arch) String() string {
	switch a {
	case ArchUtgard:
		return "utgard"
	case ArchMidgard:
		return "midgard"
	default:
		return fmt.Sprintf("Arch(%d)", uint8(a))
	}
}

// CommonOutput is shared by every output variant.
type CommonOutput struct {
	ShaderName string
	Stage      gputypes.ShaderStage

	// VertexFactory is the human-readable vertex factory name.
	VertexFactory string

	// Source is the GLSL passed to the compiler.
	Source string

	Warnings []string
}

// Output is the result of compiling one shader. It is one of
// *ErrorOutput, *MidgardOutput or *UtgardOutput.
type Output interface {
	Common() *CommonOutput
	isOutput()
}

// ErrorOutput records a shader that produced no statistics.
type ErrorOutput struct {
	CommonOutput
	Errors []string
}

// MidgardOutput holds per-render-target statistics.
type MidgardOutput struct {
	CommonOutput
	RenderTargets []RenderTarget
}

// UtgardOutput holds whole-shader statistics.
type UtgardOutput struct {
	CommonOutput
	MinCycles        int
	MaxCycles        int
	InstructionWords int
}

// Common implements Output.
func (o *ErrorOutput) Common() *CommonOutput { return &o.CommonOutput }

// Common implements Output.
func (o *MidgardOutput) Common() *CommonOutput { return &o.CommonOutput }

// Common implements Output.
func (o *UtgardOutput) Common() *CommonOutput { return &o.CommonOutput }

func (*ErrorOutput) isOutput()   {}
func (*MidgardOutput) isOutput() {}
func (*UtgardOutput) isOutput()  {}

// PipeCycles are the cycle counts of one execution pipe.
type PipeCycles struct {
	Shortest float32 // shortest path
	Longest  float32 // longest path
	Emitted  float32 // total instructions emitted
}

// RenderTarget is the statistics record of one Midgard output block.
type RenderTarget struct {
	Index                int
	WorkRegistersUsed    int
	UniformRegistersUsed int
	Arithmetic           PipeCycles
	LoadStore            PipeCycles
	Texture              PipeCycles
	SpillingUsed         bool
}

// Pipe names an execution pipe.
type Pipe uint8

const (
	PipeArithmetic Pipe = iota
	PipeLoadStore
	PipeTexture
)

// String returns the pipe's display name.
func (p Pipe) String() string {
	switch p {
	case PipeArithmetic:
		return "Arithmetic"
	case PipeLoadStore:
		return "Load/Store"
	case PipeTexture:
		return "Texture"
	default:
		return fmt.Sprintf("Pipe(%d)", uint8(p))
	}
}

// boundPipe returns the pipe with the most cycles. Ties go to the earlier
// pipe in Arithmetic, Load/Store, Texture order.
func boundPipe(a, ls, t float32) Pipe {
	switch m := max(a, ls, t); m {
	case a:
		return PipeArithmetic
	case ls:
		return PipeLoadStore
	default:
		return PipeTexture
	}
}

// ShortestBound returns the limiting pipe on the shortest path.
func (rt RenderTarget) ShortestBound() Pipe {
	return boundPipe(rt.Arithmetic.Shortest, rt.LoadStore.Shortest, rt.Texture.Shortest)
}

// LongestBound returns the limiting pipe on the longest path.
func (rt RenderTarget) LongestBound() Pipe {
	return boundPipe(rt.Arithmetic.Longest, rt.LoadStore.Longest, rt.Texture.Longest)
}
