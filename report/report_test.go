package report

import (
	"reflect"
	"testing"
	"time"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/malioc/backend"
	"github.com/gogpu/malioc/backend/backendtest"
	"github.com/gogpu/malioc/capability"
	"github.com/gogpu/malioc/compile"
	"github.com/gogpu/malioc/material"
)

// result is the outcome of one cross-compilation request.
type result struct {
	shaders []material.Shader
	errs    []string
}

// fakeResource replays scripted cross-compilation results, one per request.
type fakeResource struct {
	results []result
	descs   map[string]string
	reject  bool
	hold    bool // results stay pending until FinishCompilation

	requests int
	finished bool
	current  result
}

func (r *fakeResource) CacheShaders(capability.TargetAPI) bool {
	if r.reject {
		return false
	}
	i := min(r.requests, len(r.results)-1)
	r.requests++
	r.current = r.results[i]
	r.finished = !r.hold
	return true
}

func (r *fakeResource) IsCompilationFinished() bool { return r.finished }
func (r *fakeResource) FinishCompilation()          { r.finished = true }

func (r *fakeResource) ShaderMap() *material.ShaderMap {
	if !r.finished || r.current.shaders == nil {
		return nil
	}
	return &material.ShaderMap{Material: "M_Test", Target: capability.TargetES2, Shaders: r.current.shaders}
}

func (r *fakeResource) CompileErrors() []string              { return r.current.errs }
func (r *fakeResource) ShaderDescriptions() map[string]string { return r.descs }

func kv(pairs ...string) backend.FlexibleOutput {
	out := make(backend.FlexibleOutput, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		out = append(out, backend.KeyValue{Key: pairs[i], Value: pairs[i+1]})
	}
	return out
}

func newEnv(t *testing.T, compileFunc func(backend.CompileRequest) (backend.Outputs, bool)) (*compile.Scheduler, capability.Platform, *backendtest.Fake) {
	t.Helper()
	fake := backendtest.New(backendtest.Compiler{Core: "Mali-T760", Revision: "r1p0", Driver: "drv", MaxAPI: 310})
	fake.CompileFunc = compileFunc
	ps := capability.Discover(fake).Platforms()
	if len(ps) == 0 {
		t.Fatal("no platforms discovered")
	}
	return compile.NewScheduler(fake, compile.WithPollInterval(time.Millisecond)), ps[0], fake
}

func fragment(name, vf string) material.Shader {
	return material.Shader{Name: name, Stage: gputypes.ShaderStageFragment, VertexFactory: vf, Source: "#version 300 es\nvoid main() {}\n"}
}

func midgardResult(backend.CompileRequest) (backend.Outputs, bool) {
	return backendtest.Midgard(kv(
		"render_target", "0",
		"work_registers_used", "4",
		"arithmetic_shortest_path", "10.0",
		"load_store_shortest_path", "3.0",
		"texture_shortest_path", "1.0",
	)), true
}

func TestSessionMidgardReport(t *testing.T) {
	sched, p, _ := newEnv(t, midgardResult)
	res := &fakeResource{
		results: []result{{shaders: []material.Shader{fragment("fs_main", "FLocalVertexFactory")}}},
		descs:   map[string]string{"fs_main": "Base pass"},
	}

	s := NewSession(res, p, sched)
	s.FinishReportGeneration()
	r := s.Report()

	if len(r.Errors) != 0 {
		t.Fatalf("Errors = %+v, want none", r.Errors)
	}
	if len(r.Midgard) != 1 || len(r.Utgard) != 0 {
		t.Fatalf("len(Midgard), len(Utgard) = %d, %d, want 1, 0", len(r.Midgard), len(r.Utgard))
	}
	g := r.Midgard[0]
	if g.Title != "fs_main" || g.VertexFactory != "Default Usage" {
		t.Errorf("group header = %q / %q", g.Title, g.VertexFactory)
	}
	rt := g.RenderTargets[0]
	if rt.ShortestBound != compile.PipeArithmetic {
		t.Errorf("ShortestBound = %v, want Arithmetic", rt.ShortestBound)
	}
	if want := []string{"4 work registers used", "0 uniform registers used", "Register spilling not used"}; !reflect.DeepEqual(rt.Details, want) {
		t.Errorf("Details = %q, want %q", rt.Details, want)
	}
	if want := []string{NotePipes, NoteCacheMisses, NoteLoops}; !reflect.DeepEqual(r.Notes, want) {
		t.Errorf("Notes = %q, want %q", r.Notes, want)
	}

	if len(r.MidgardSummary) != 1 {
		t.Fatalf("len(MidgardSummary) = %d, want 1", len(r.MidgardSummary))
	}
	if want := []string{"Fragment Shader", "Default Usage", "Base pass"}; !reflect.DeepEqual(r.MidgardSummary[0].Details, want) {
		t.Errorf("summary Details = %q, want %q", r.MidgardSummary[0].Details, want)
	}
	if want := []string{"Fragment Shader"}; !reflect.DeepEqual(g.Details, want) {
		t.Errorf("group Details = %q, want %q", g.Details, want)
	}
	if len(r.Categories) != 1 || r.Categories[0].VertexFactory != "Default Usage" || len(r.Categories[0].Midgard) != 1 {
		t.Errorf("Categories = %+v", r.Categories)
	}
	if !r.HasStatistics() {
		t.Error("HasStatistics() = false")
	}
}

func TestSessionCompilerErrorReport(t *testing.T) {
	sched, p, _ := newEnv(t, func(backend.CompileRequest) (backend.Outputs, bool) {
		return backend.Outputs{Errors: []string{"undeclared identifier"}}, true
	})
	res := &fakeResource{results: []result{{shaders: []material.Shader{fragment("fs_main", "")}}}}

	s := NewSession(res, p, sched)
	s.FinishReportGeneration()
	r := s.Report()

	if len(r.Errors) != 1 || r.HasStatistics() {
		t.Fatalf("report = %+v, want one error group and no statistics", r)
	}
	if got := r.Errors[0].Errors; !reflect.DeepEqual(got, []string{"undeclared identifier"}) {
		t.Errorf("Errors = %q, want [undeclared identifier]", got)
	}
	if r.Errors[0].VertexFactory != compile.NoVertexFactory {
		t.Errorf("VertexFactory = %q, want %q", r.Errors[0].VertexFactory, compile.NoVertexFactory)
	}
}

func TestSessionCrossCompileRetry(t *testing.T) {
	tests := []struct {
		name       string
		results    []result
		wantErrors []string
		wantStats  bool
	}{
		{
			name:      "retry succeeds",
			results:   []result{{}, {shaders: []material.Shader{fragment("fs_main", "")}}},
			wantStats: true,
		},
		{
			name:       "retry fails",
			results:    []result{{}, {}},
			wantErrors: []string{UnknownErrorMessage},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sched, p, _ := newEnv(t, midgardResult)
			res := &fakeResource{results: tt.results}

			s := NewSession(res, p, sched)
			s.FinishReportGeneration()
			r := s.Report()

			if res.requests != 2 {
				t.Errorf("cross-compilation requested %d times, want 2", res.requests)
			}
			if r.HasStatistics() != tt.wantStats {
				t.Errorf("HasStatistics() = %v, want %v", r.HasStatistics(), tt.wantStats)
			}
			if tt.wantErrors == nil {
				if len(r.Errors) != 0 {
					t.Errorf("Errors = %+v, want none", r.Errors)
				}
				return
			}
			if len(r.Errors) != 1 || r.Errors[0].Title != CrossCompilationTitle {
				t.Fatalf("Errors = %+v, want one %q group", r.Errors, CrossCompilationTitle)
			}
			if !reflect.DeepEqual(r.Errors[0].Errors, tt.wantErrors) {
				t.Errorf("Errors = %q, want %q", r.Errors[0].Errors, tt.wantErrors)
			}
		})
	}
}

func TestSessionCrossCompileErrorsNotRetried(t *testing.T) {
	sched, p, fake := newEnv(t, midgardResult)
	res := &fakeResource{results: []result{{errs: []string{"unknown identifier 'foo'"}}}}

	s := NewSession(res, p, sched)
	s.FinishReportGeneration()
	r := s.Report()

	if res.requests != 1 {
		t.Errorf("cross-compilation requested %d times, want 1", res.requests)
	}
	if len(r.Errors) != 1 || !reflect.DeepEqual(r.Errors[0].Errors, []string{"unknown identifier 'foo'"}) {
		t.Errorf("Errors = %+v", r.Errors)
	}
	if len(r.Notes) != 0 {
		t.Errorf("Notes = %q, want none for a failed cross-compilation", r.Notes)
	}
	if n := len(fake.Requests()); n != 0 {
		t.Errorf("backend called %d times, want 0", n)
	}
}

func TestSessionRejectedRequest(t *testing.T) {
	sched, p, _ := newEnv(t, midgardResult)
	s := NewSession(&fakeResource{reject: true}, p, sched)

	if s.Progress() != Complete {
		t.Fatalf("Progress() = %v, want Complete", s.Progress())
	}
	if got := s.CompilationProgress(); got != (CompilationProgress{}) {
		t.Errorf("CompilationProgress() = %+v, want zero", got)
	}
	r := s.Report()
	if len(r.Errors) != 1 || r.Errors[0].Errors[0] != UnknownErrorMessage {
		t.Errorf("Errors = %+v", r.Errors)
	}
}

func TestSessionTickDriven(t *testing.T) {
	sched, p, _ := newEnv(t, midgardResult)
	res := &fakeResource{
		results: []result{{shaders: []material.Shader{fragment("a", ""), fragment("b", "")}}},
		hold:    true,
	}
	s := NewSession(res, p, sched)

	s.Tick()
	if s.Progress() != CrossCompiling {
		t.Fatalf("Progress() = %v, want CrossCompiling while the cross-compiler runs", s.Progress())
	}

	res.finished = true
	s.Tick()
	if s.Progress() != BackendCompiling {
		t.Fatalf("Progress() = %v, want BackendCompiling", s.Progress())
	}
	if got := s.CompilationProgress().Total; got != 2 {
		t.Errorf("CompilationProgress().Total = %d, want 2", got)
	}

	deadline := time.Now().Add(5 * time.Second)
	for s.Progress() != Complete {
		if time.Now().After(deadline) {
			t.Fatal("session did not complete")
		}
		sched.Tick()
		s.Tick()
		time.Sleep(time.Millisecond)
	}
	if got := s.CompilationProgress(); got != (CompilationProgress{Completed: 2, Total: 2}) {
		t.Errorf("CompilationProgress() = %+v, want {2 2}", got)
	}

	s.Tick()
	if s.Progress() != Complete {
		t.Errorf("Progress() = %v after Tick in Complete", s.Progress())
	}
}

func TestSessionReportCached(t *testing.T) {
	sched, p, _ := newEnv(t, midgardResult)
	s := NewSession(&fakeResource{results: []result{{shaders: []material.Shader{fragment("fs_main", "")}}}}, p, sched)
	s.FinishReportGeneration()

	if s.Report() != s.Report() {
		t.Error("Report() rebuilt the report")
	}
	// A second finish on a complete session is a no-op.
	s.FinishReportGeneration()
	if s.Progress() != Complete {
		t.Errorf("Progress() = %v, want Complete", s.Progress())
	}
}

func TestSessionPanicsOutsideState(t *testing.T) {
	sched, p, _ := newEnv(t, midgardResult)
	s := NewSession(&fakeResource{results: []result{{}}, hold: true}, p, sched)

	for name, f := range map[string]func(){
		"Report":              func() { s.Report() },
		"CompilationProgress": func() { s.CompilationProgress() },
	} {
		t.Run(name, func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Errorf("%s() did not panic while cross-compiling", name)
				}
			}()
			f()
		})
	}
}

func TestBuildSortsAndCategorizes(t *testing.T) {
	out := func(name, vf string) compile.Output {
		return &compile.MidgardOutput{
			CommonOutput:  compile.CommonOutput{ShaderName: name, VertexFactory: vf, Stage: gputypes.ShaderStageFragment},
			RenderTargets: []compile.RenderTarget{{}},
		}
	}
	outputs := []compile.Output{
		out("beta", "Default Usage"),
		out("Alpha", "Used with Skeletal Meshes"),
		out("alpha", "Default Usage"),
		out("gamma", "Used with Landscapes"),
		&compile.ErrorOutput{CommonOutput: compile.CommonOutput{ShaderName: "zeta"}, Errors: []string{"x"}},
		&compile.ErrorOutput{CommonOutput: compile.CommonOutput{ShaderName: "Eta"}, Errors: []string{"y"}},
	}

	r := build(outputs, nil)

	var titles []string
	for _, g := range r.Midgard {
		titles = append(titles, g.Title)
	}
	if want := []string{"Alpha", "alpha", "beta", "gamma"}; !reflect.DeepEqual(titles, want) {
		t.Errorf("Midgard order = %q, want %q", titles, want)
	}
	if r.Errors[0].Title != "Eta" || r.Errors[1].Title != "zeta" {
		t.Errorf("Errors order = %q, %q", r.Errors[0].Title, r.Errors[1].Title)
	}

	var cats []string
	for _, c := range r.Categories {
		cats = append(cats, c.VertexFactory)
	}
	if want := []string{"Default Usage", "Used with Landscapes", "Used with Skeletal Meshes"}; !reflect.DeepEqual(cats, want) {
		t.Errorf("Categories = %q, want %q", cats, want)
	}
	if n := len(r.Categories[0].Midgard); n != 2 {
		t.Errorf("len(Categories[0].Midgard) = %d, want 2", n)
	}
	if len(r.MidgardSummary) != 0 {
		t.Errorf("MidgardSummary = %+v, want none without descriptions", r.MidgardSummary)
	}
}

func TestBuildUtgard(t *testing.T) {
	outputs := []compile.Output{&compile.UtgardOutput{
		CommonOutput:     compile.CommonOutput{ShaderName: "vs_main", VertexFactory: "Default Usage", Stage: gputypes.ShaderStageVertex},
		MinCycles:        3,
		MaxCycles:        -1,
		InstructionWords: 7,
	}}

	r := build(outputs, map[string]string{"vs_main": "Depth only"})

	if len(r.Utgard) != 1 {
		t.Fatalf("len(Utgard) = %d, want 1", len(r.Utgard))
	}
	want := []string{
		"Number of instruction words emitted: 7",
		"Number of cycles for shortest code path: 3",
		"Number of cycles for longest code path: -1",
	}
	if !reflect.DeepEqual(r.Utgard[0].Details, want) {
		t.Errorf("Details = %q, want %q", r.Utgard[0].Details, want)
	}
	if !reflect.DeepEqual(r.Notes, []string{NoteCacheMisses, NoteLoops}) {
		t.Errorf("Notes = %q, want no pipe legend", r.Notes)
	}
	if len(r.UtgardSummary) != 1 {
		t.Fatalf("len(UtgardSummary) = %d, want 1", len(r.UtgardSummary))
	}
	if got := r.UtgardSummary[0].Group.Details; !reflect.DeepEqual(got, []string{"Vertex Shader", "Default Usage", "Depth only"}) {
		t.Errorf("summary Details = %q", got)
	}
	if got := r.Utgard[0].Group.Details; !reflect.DeepEqual(got, []string{"Vertex Shader"}) {
		t.Errorf("group Details = %q, summary leaked into group", got)
	}
}

func TestProgressString(t *testing.T) {
	tests := []struct {
		p    Progress
		want string
	}{
		{CrossCompiling, "CrossCompiling"},
		{BackendCompiling, "BackendCompiling"},
		{Complete, "Complete"},
		{Progress(9), "Progress(9)"},
	}
	for _, tt := range tests {
		if got := tt.p.String(); got != tt.want {
			t.Errorf("Progress(%d).String() = %q, want %q", tt.p, got, tt.want)
		}
	}
}
