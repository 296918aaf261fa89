package compile

import (
	"strconv"
	"strings"

	"github.com/gogpu/malioc/backend"
)

// Messages recorded in ErrorOutput.Errors.
const (
	MsgInvalidOutput    = "Cross compiler produced invalid output"
	MsgUnsupportedStage = "The shader type is neither fragment nor vertex"
	MsgCompilerNotRun   = "Compiler could not be run"
	MsgNoVerboseOutput  = "No verbose output from compiler"
	MsgUnknownFormat    = "Unknown verbose output format from compiler"
)

const architectureKey = "architecture"

// archParser turns the flexible outputs of one compiler run into a
// statistics record.
type archParser func(common CommonOutput, blocks []backend.FlexibleOutput) Output

var archTags = map[string]Arch{
	"midgard": ArchMidgard,
	"utgard":  ArchUtgard,
}

var archParsers = map[Arch]archParser{
	ArchMidgard: parseMidgard,
	ArchUtgard:  parseUtgard,
}

// ArchOf returns the architecture named by the first flexible-output
// block, or ArchUnknown.
func ArchOf(out backend.Outputs) Arch {
	if len(out.Flexible) == 0 {
		return ArchUnknown
	}
	tag, ok := out.Flexible[0].Lookup(architectureKey)
	if !ok {
		return ArchUnknown
	}
	if arch, ok := archTags[tag]; ok {
		return arch
	}
	return ArchUnknown
}

// Classify converts the result of one compiler invocation into an Output.
// ran reports whether the compiler ran at all; out is ignored otherwise.
//
// Classify is pure: the same inputs always give equal outputs.
func Classify(common CommonOutput, out backend.Outputs, ran bool) Output {
	if !ran {
		return errorOutput(common, MsgCompilerNotRun)
	}

	common.Warnings = append([]string(nil), out.Warnings...)

	if len(out.Errors) > 0 {
		return &ErrorOutput{CommonOutput: common, Errors: append([]string(nil), out.Errors...)}
	}
	if len(out.Flexible) == 0 {
		return errorOutput(common, MsgNoVerboseOutput)
	}

	parse, ok := archParsers[ArchOf(out)]
	if !ok {
		return errorOutput(common, MsgUnknownFormat)
	}
	return parse(common, out.Flexible)
}

func errorOutput(common CommonOutput, msgs ...string) *ErrorOutput {
	return &ErrorOutput{CommonOutput: common, Errors: msgs}
}

func parseMidgard(common CommonOutput, blocks []backend.FlexibleOutput) Output {
	o := &MidgardOutput{CommonOutput: common, RenderTargets: make([]RenderTarget, 0, len(blocks))}
	for _, block := range blocks {
		var rt RenderTarget
		for _, kv := range block {
			switch kv.Key {
			case "render_target":
				rt.Index = atoi(kv.Value)
			case "work_registers_used":
				rt.WorkRegistersUsed = atoi(kv.Value)
			case "uniform_registers_used":
				rt.UniformRegistersUsed = atoi(kv.Value)
			case "arithmetic_cycles":
				rt.Arithmetic.Emitted = atof(kv.Value)
			case "arithmetic_shortest_path":
				rt.Arithmetic.Shortest = atof(kv.Value)
			case "arithmetic_longest_path":
				rt.Arithmetic.Longest = atof(kv.Value)
			case "load_store_cycles":
				rt.LoadStore.Emitted = atof(kv.Value)
			case "load_store_shortest_path":
				rt.LoadStore.Shortest = atof(kv.Value)
			case "load_store_longest_path":
				rt.LoadStore.Longest = atof(kv.Value)
			case "texture_cycles":
				rt.Texture.Emitted = atof(kv.Value)
			case "texture_shortest_path":
				rt.Texture.Shortest = atof(kv.Value)
			case "texture_longest_path":
				rt.Texture.Longest = atof(kv.Value)
			case "spilling_used":
				rt.SpillingUsed = kv.Value == "true"
			}
		}
		o.RenderTargets = append(o.RenderTargets, rt)
	}
	return o
}

func parseUtgard(common CommonOutput, blocks []backend.FlexibleOutput) Output {
	if len(blocks) != 1 {
		return errorOutput(common, MsgUnknownFormat)
	}
	o := &UtgardOutput{CommonOutput: common}
	for _, kv := range blocks[0] {
		switch kv.Key {
		case "min_number_of_cycles":
			o.MinCycles = atoi(kv.Value)
		case "max_number_of_cycles":
			o.MaxCycles = atoi(kv.Value)
		case "n_instruction_words":
			o.InstructionWords = atoi(kv.Value)
		}
	}
	return o
}

// atoi parses a decimal integer, yielding 0 for malformed input.
func atoi(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return n
}

// atof parses a float, yielding 0 for malformed input.
func atof(s string) float32 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 32)
	if err != nil {
		return 0
	}
	return float32(f)
}
