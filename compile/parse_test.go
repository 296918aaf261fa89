package compile

import (
	"reflect"
	"testing"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/malioc/backend"
	"github.com/gogpu/malioc/backend/backendtest"
)

func kv(pairs ...string) backend.FlexibleOutput {
	out := make(backend.FlexibleOutput, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		out = append(out, backend.KeyValue{Key: pairs[i], Value: pairs[i+1]})
	}
	return out
}

var testCommon = CommonOutput{
	ShaderName:    "fs_main",
	Stage:         gputypes.ShaderStageFragment,
	VertexFactory: "Default Usage",
	Source:        "#version 100\nvoid main() {}",
}

func TestClassifyErrors(t *testing.T) {
	tests := []struct {
		name string
		out  backend.Outputs
		ran  bool
		want []string
	}{
		{"not run", backend.Outputs{Errors: []string{"ignored"}}, false, []string{MsgCompilerNotRun}},
		{"compiler errors", backend.Outputs{Errors: []string{"0:3: undeclared identifier", "0:4: syntax error"}}, true,
			[]string{"0:3: undeclared identifier", "0:4: syntax error"}},
		{"no flexible output", backend.Outputs{}, true, []string{MsgNoVerboseOutput}},
		{"missing architecture", backend.Outputs{Flexible: []backend.FlexibleOutput{kv("render_target", "0")}}, true,
			[]string{MsgUnknownFormat}},
		{"unknown architecture", backend.Outputs{Flexible: []backend.FlexibleOutput{kv("architecture", "bifrost")}}, true,
			[]string{MsgUnknownFormat}},
		{"utgard with two blocks", backend.Outputs{Flexible: []backend.FlexibleOutput{
			kv("architecture", "utgard"), kv("min_number_of_cycles", "1"),
		}}, true, []string{MsgUnknownFormat}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := Classify(testCommon, tt.out, tt.ran)
			e, ok := o.(*ErrorOutput)
			if !ok {
				t.Fatalf("Classify() = %T, want *ErrorOutput", o)
			}
			if !reflect.DeepEqual(e.Errors, tt.want) {
				t.Errorf("Errors = %q, want %q", e.Errors, tt.want)
			}
			if e.ShaderName != testCommon.ShaderName || e.Source != testCommon.Source {
				t.Errorf("common output not preserved: %+v", e.CommonOutput)
			}
		})
	}
}

func TestClassifyKeepsWarnings(t *testing.T) {
	out := backend.Outputs{Errors: []string{"e"}, Warnings: []string{"w1", "w2"}}
	o := Classify(testCommon, out, true)
	if got := o.Common().Warnings; !reflect.DeepEqual(got, []string{"w1", "w2"}) {
		t.Errorf("Warnings = %q, want [w1 w2]", got)
	}

	// Warnings are not available when the compiler did not run.
	o = Classify(testCommon, out, false)
	if got := o.Common().Warnings; len(got) != 0 {
		t.Errorf("Warnings = %q for a compiler that did not run", got)
	}
}

func TestClassifyMidgard(t *testing.T) {
	out := backendtest.Midgard(
		kv("render_target", "0",
			"work_registers_used", "4",
			"uniform_registers_used", "2",
			"arithmetic_cycles", "12",
			"arithmetic_shortest_path", "10.0",
			"arithmetic_longest_path", "11.5",
			"load_store_cycles", "4",
			"load_store_shortest_path", "3.0",
			"load_store_longest_path", "3",
			"texture_cycles", "1",
			"texture_shortest_path", "1.0",
			"texture_longest_path", "1",
			"spilling_used", "false"),
		kv("render_target", "1", "texture_longest_path", "20", "spilling_used", "true", "unknown_key", "x"),
	)

	o, ok := Classify(testCommon, out, true).(*MidgardOutput)
	if !ok {
		t.Fatal("Classify() is not *MidgardOutput")
	}
	want := []RenderTarget{
		{
			Index:                0,
			WorkRegistersUsed:    4,
			UniformRegistersUsed: 2,
			Arithmetic:           PipeCycles{Shortest: 10, Longest: 11.5, Emitted: 12},
			LoadStore:            PipeCycles{Shortest: 3, Longest: 3, Emitted: 4},
			Texture:              PipeCycles{Shortest: 1, Longest: 1, Emitted: 1},
		},
		{Index: 1, Texture: PipeCycles{Longest: 20}, SpillingUsed: true},
	}
	if !reflect.DeepEqual(o.RenderTargets, want) {
		t.Errorf("RenderTargets = %+v, want %+v", o.RenderTargets, want)
	}
	if got := o.RenderTargets[0].ShortestBound(); got != PipeArithmetic {
		t.Errorf("ShortestBound() = %v, want Arithmetic", got)
	}
	if got := o.RenderTargets[1].LongestBound(); got != PipeTexture {
		t.Errorf("LongestBound() = %v, want Texture", got)
	}
	if ArchOf(out) != ArchMidgard {
		t.Errorf("ArchOf() = %v, want midgard", ArchOf(out))
	}
}

func TestClassifyUtgard(t *testing.T) {
	out := backendtest.Utgard(kv("min_number_of_cycles", "3", "max_number_of_cycles", "-1", "n_instruction_words", "7"))

	o, ok := Classify(testCommon, out, true).(*UtgardOutput)
	if !ok {
		t.Fatal("Classify() is not *UtgardOutput")
	}
	if o.MinCycles != 3 || o.MaxCycles != -1 || o.InstructionWords != 7 {
		t.Errorf("UtgardOutput = %+v, want {3 -1 7}", o)
	}
	if ArchOf(out) != ArchUtgard {
		t.Errorf("ArchOf() = %v, want utgard", ArchOf(out))
	}
}

func TestClassifyMalformedNumbers(t *testing.T) {
	out := backendtest.Midgard(kv("render_target", "x", "arithmetic_shortest_path", "fast"))
	o := Classify(testCommon, out, true).(*MidgardOutput)
	if rt := o.RenderTargets[0]; rt.Index != 0 || rt.Arithmetic.Shortest != 0 {
		t.Errorf("malformed values parsed as %+v, want zeros", rt)
	}
}

func TestClassifyIsPure(t *testing.T) {
	out := backendtest.Midgard(
		kv("render_target", "0", "arithmetic_shortest_path", "2.25", "work_registers_used", "3"),
		kv("render_target", "1", "load_store_longest_path", "7"),
	)
	a := Classify(testCommon, out, true)
	b := Classify(testCommon, out, true)
	if a == b {
		t.Fatal("Classify() returned the same pointer twice")
	}
	if !reflect.DeepEqual(a, b) {
		t.Errorf("Classify() not deterministic:\n%+v\n%+v", a, b)
	}
}

func TestBoundPipeTies(t *testing.T) {
	tests := []struct {
		a, ls, tex float32
		want       Pipe
	}{
		{10, 3, 1, PipeArithmetic},
		{1, 3, 2, PipeLoadStore},
		{1, 2, 3, PipeTexture},
		{2, 2, 2, PipeArithmetic},
		{1, 2, 2, PipeLoadStore},
		{0, 0, 0, PipeArithmetic},
	}
	for _, tt := range tests {
		if got := boundPipe(tt.a, tt.ls, tt.tex); got != tt.want {
			t.Errorf("boundPipe(%v, %v, %v) = %v, want %v", tt.a, tt.ls, tt.tex, got, tt.want)
		}
	}
}

func TestVertexFactoryName(t *testing.T) {
	tests := []struct{ in, want string }{
		{"FLocalVertexFactory", "Default Usage"},
		{"TGPUSkinMorphVertexFactorytrue", "Used with Skeletal Mesh and Morph Targets"},
		{"", NoVertexFactory},
		{"FCustomVertexFactory", "FCustomVertexFactory"},
	}
	for _, tt := range tests {
		if got := VertexFactoryName(tt.in); got != tt.want {
			t.Errorf("VertexFactoryName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestArchString(t *testing.T) {
	if ArchMidgard.String() != "midgard" || ArchUtgard.String() != "utgard" {
		t.Error("Arch.String() does not match the architecture tag")
	}
	if PipeLoadStore.String() != "Load/Store" {
		t.Errorf("PipeLoadStore.String() = %q", PipeLoadStore.String())
	}
}

func TestArchOfSelectsParser(t *testing.T) {
	tests := []struct {
		name string
		out  backend.Outputs
		want Arch
	}{
		{"midgard", backendtest.Midgard(kv("render_target", "0")), ArchMidgard},
		{"utgard", backendtest.Utgard(kv("min_number_of_cycles", "1")), ArchUtgard},
		{"unknown tag", backend.Outputs{Flexible: []backend.FlexibleOutput{kv("architecture", "bifrost")}}, ArchUnknown},
		{"no tag", backend.Outputs{Flexible: []backend.FlexibleOutput{kv("render_target", "0")}}, ArchUnknown},
		{"no blocks", backend.Outputs{}, ArchUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ArchOf(tt.out); got != tt.want {
				t.Errorf("ArchOf() = %v, want %v", got, tt.want)
			}
			if len(tt.out.Flexible) == 0 {
				return
			}
			var got Arch
			switch o := Classify(testCommon, tt.out, true).(type) {
			case *MidgardOutput:
				got = ArchMidgard
			case *UtgardOutput:
				got = ArchUtgard
			case *ErrorOutput:
				if len(o.Errors) != 1 || o.Errors[0] != MsgUnknownFormat {
					t.Errorf("Classify() errors = %q, want [%q]", o.Errors, MsgUnknownFormat)
				}
			}
			if got != tt.want {
				t.Errorf("Classify() architecture = %v, want %v", got, tt.want)
			}
		})
	}
}
