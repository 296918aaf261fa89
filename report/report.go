package report

import (
	"fmt"
	"slices"
	"strings"

	"github.com/gogpu/gputypes"
	"golang.org/x/text/cases"

	"github.com/gogpu/malioc/compile"
)

// Report titles, messages and notes.
const (
	CrossCompilationTitle = "Cross Compilation Errors"
	UnknownErrorMessage   = "An unknown error occurred. Try again."

	NotePipes       = "A = Arithmetic, L/S = Load/Store, T = Texture"
	NoteCacheMisses = "The cycle counts do not include possible stalls due to cache misses."
	NoteLoops       = `Shaders with loops may return " - 1" for cycle counts if the number of cycles cannot be statically determined.`
)

// Report is the final result of a Session.
type Report struct {
	// Errors lists shaders that produced no statistics, sorted by title.
	Errors []ErrorGroup

	// Midgard and Utgard hold per-shader statistics sorted by title. At
	// most one of them is non-empty for a given platform.
	Midgard []MidgardGroup
	Utgard  []UtgardGroup

	// MidgardSummary and UtgardSummary repeat the groups of shaders the
	// material describes, labelled with vertex factory and usage, in
	// compile order.
	MidgardSummary []MidgardGroup
	UtgardSummary  []UtgardGroup

	// Notes explain the statistics.
	Notes []string

	// Categories buckets the statistic groups by vertex factory, sorted
	// by name.
	Categories []Category
}

// HasStatistics reports whether any shader produced statistics.
func (r *Report) HasStatistics() bool { return len(r.Midgard)+len(r.Utgard) > 0 }

// Group is the header shared by every report group.
type Group struct {
	// Title is the shader name, or CrossCompilationTitle.
	Title         string
	VertexFactory string
	Stage         gputypes.ShaderStage
	Details       []string
	Source        string
	Warnings      []string
}

// ErrorGroup reports a shader that failed.
type ErrorGroup struct {
	Group
	Errors []string
}

// MidgardGroup reports a shader compiled for a multi-output core.
type MidgardGroup struct {
	Group
	RenderTargets []RenderTargetStats
}

// RenderTargetStats is one render target's statistics with the limiting
// pipe of each path.
type RenderTargetStats struct {
	compile.RenderTarget
	ShortestBound compile.Pipe
	LongestBound  compile.Pipe
	Details       []string
}

// UtgardGroup reports a shader compiled for a single-output core.
type UtgardGroup struct {
	Group
	MinCycles        int
	MaxCycles        int
	InstructionWords int
	Details          []string
}

// Category holds the statistic groups of one vertex factory.
type Category struct {
	VertexFactory string
	Midgard       []MidgardGroup
	Utgard        []UtgardGroup
}

// crossCompilationReport is the report of a material that never reached
// the offline compiler.
func crossCompilationReport(errs []string) *Report {
	if len(errs) == 0 {
		errs = []string{UnknownErrorMessage}
	}
	return &Report{
		Errors: []ErrorGroup{{
			Group:  Group{Title: CrossCompilationTitle},
			Errors: append([]string(nil), errs...),
		}},
	}
}

// build assembles the report of a finished compile job. descriptions maps
// shader names to their usage.
func build(outputs []compile.Output, descriptions map[string]string) *Report {
	r := &Report{}
	for _, o := range outputs {
		switch o := o.(type) {
		case *compile.ErrorOutput:
			r.Errors = append(r.Errors, ErrorGroup{
				Group:  newGroup(&o.CommonOutput),
				Errors: append([]string(nil), o.Errors...),
			})

		case *compile.MidgardOutput:
			g := MidgardGroup{Group: newGroup(&o.CommonOutput)}
			for _, rt := range o.RenderTargets {
				g.RenderTargets = append(g.RenderTargets, renderTargetStats(rt))
			}
			r.Midgard = append(r.Midgard, g)
			if desc, ok := descriptions[g.Title]; ok {
				s := g
				s.Details = summaryDetails(g.Group, desc)
				r.MidgardSummary = append(r.MidgardSummary, s)
			}

		case *compile.UtgardOutput:
			g := UtgardGroup{
				Group:            newGroup(&o.CommonOutput),
				MinCycles:        o.MinCycles,
				MaxCycles:        o.MaxCycles,
				InstructionWords: o.InstructionWords,
				Details: []string{
					fmt.Sprintf("Number of instruction words emitted: %d", o.InstructionWords),
					fmt.Sprintf("Number of cycles for shortest code path: %d", o.MinCycles),
					fmt.Sprintf("Number of cycles for longest code path: %d", o.MaxCycles),
				},
			}
			r.Utgard = append(r.Utgard, g)
			if desc, ok := descriptions[g.Title]; ok {
				s := g
				s.Group.Details = summaryDetails(g.Group, desc)
				r.UtgardSummary = append(r.UtgardSummary, s)
			}
		}
	}

	if len(r.Midgard) > 0 {
		r.Notes = append(r.Notes, NotePipes)
	}
	r.Notes = append(r.Notes, NoteCacheMisses, NoteLoops)

	slices.SortStableFunc(r.Errors, func(a, b ErrorGroup) int { return compareGroups(&a.Group, &b.Group) })
	slices.SortStableFunc(r.Midgard, func(a, b MidgardGroup) int { return compareGroups(&a.Group, &b.Group) })
	slices.SortStableFunc(r.Utgard, func(a, b UtgardGroup) int { return compareGroups(&a.Group, &b.Group) })

	r.Categories = categorize(r.Midgard, r.Utgard)
	return r
}

func newGroup(c *compile.CommonOutput) Group {
	g := Group{
		Title:         c.ShaderName,
		VertexFactory: c.VertexFactory,
		Stage:         c.Stage,
		Source:        c.Source,
		Warnings:      append([]string(nil), c.Warnings...),
	}
	if d := stageDetail(c.Stage); d != "" {
		g.Details = []string{d}
	}
	return g
}

func stageDetail(s gputypes.ShaderStage) string {
	switch s {
	case gputypes.ShaderStageFragment:
		return "Fragment Shader"
	case gputypes.ShaderStageVertex:
		return "Vertex Shader"
	default:
		return ""
	}
}

// summaryDetails returns a fresh detail list so summaries never share
// backing arrays with the per-shader groups.
func summaryDetails(g Group, description string) []string {
	out := make([]string, 0, len(g.Details)+2)
	out = append(out, g.Details...)
	return append(out, g.VertexFactory, description)
}

func renderTargetStats(rt compile.RenderTarget) RenderTargetStats {
	spill := "Register spilling not used"
	if rt.SpillingUsed {
		spill = "Register spilling used"
	}
	return RenderTargetStats{
		RenderTarget:  rt,
		ShortestBound: rt.ShortestBound(),
		LongestBound:  rt.LongestBound(),
		Details: []string{
			fmt.Sprintf("%d work registers used", rt.WorkRegistersUsed),
			fmt.Sprintf("%d uniform registers used", rt.UniformRegistersUsed),
			spill,
		},
	}
}

// sortKey folds case so "alpha" sorts next to "Alpha".
func sortKey(s string) string { return cases.Fold().String(s) }

func compareGroups(a, b *Group) int {
	if c := strings.Compare(sortKey(a.Title), sortKey(b.Title)); c != 0 {
		return c
	}
	if c := strings.Compare(a.Title, b.Title); c != 0 {
		return c
	}
	return strings.Compare(sortKey(a.VertexFactory), sortKey(b.VertexFactory))
}

func categorize(midgard []MidgardGroup, utgard []UtgardGroup) []Category {
	index := make(map[string]int)
	var cats []Category
	get := func(vf string) *Category {
		i, ok := index[vf]
		if !ok {
			i = len(cats)
			index[vf] = i
			cats = append(cats, Category{VertexFactory: vf})
		}
		return &cats[i]
	}
	for _, g := range midgard {
		c := get(g.VertexFactory)
		c.Midgard = append(c.Midgard, g)
	}
	for _, g := range utgard {
		c := get(g.VertexFactory)
		c.Utgard = append(c.Utgard, g)
	}
	slices.SortStableFunc(cats, func(a, b Category) int {
		return strings.Compare(sortKey(a.VertexFactory), sortKey(b.VertexFactory))
	})
	return cats
}
