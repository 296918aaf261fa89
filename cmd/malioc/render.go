package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/gogpu/malioc/compile"
	"github.com/gogpu/malioc/report"
)

// pipeAbbrev matches the pipe legend of report.NotePipes.
var pipeAbbrev = map[compile.Pipe]string{
	compile.PipeArithmetic: "A",
	compile.PipeLoadStore:  "L/S",
	compile.PipeTexture:    "T",
}

// writeReport prints r as plain text.
func writeReport(w io.Writer, r *report.Report, withSource bool) error {
	ew := &errWriter{w: w}

	for _, g := range r.Errors {
		writeHeader(ew, &g.Group, "ERROR")
		for _, e := range g.Errors {
			ew.printf("    %s\n", e)
		}
		writeTail(ew, &g.Group, withSource)
	}

	for _, c := range r.Categories {
		ew.printf("## %s\n\n", c.VertexFactory)
		for _, g := range c.Midgard {
			writeHeader(ew, &g.Group, "")
			for _, rt := range g.RenderTargets {
				writeRenderTarget(ew, rt)
			}
			writeTail(ew, &g.Group, withSource)
		}
		for _, g := range c.Utgard {
			writeHeader(ew, &g.Group, "")
			for _, d := range g.Details {
				ew.printf("    %s\n", d)
			}
			writeTail(ew, &g.Group, withSource)
		}
	}

	if len(r.Notes) > 0 {
		ew.printf("Notes:\n")
		for _, n := range r.Notes {
			ew.printf("  %s\n", n)
		}
	}
	return ew.err
}

func writeHeader(ew *errWriter, g *report.Group, tag string) {
	if tag != "" {
		ew.printf("%s [%s]\n", g.Title, tag)
	} else {
		ew.printf("%s\n", g.Title)
	}
	for _, d := range g.Details {
		ew.printf("  %s\n", d)
	}
}

func writeTail(ew *errWriter, g *report.Group, withSource bool) {
	for _, w := range g.Warnings {
		ew.printf("  warning: %s\n", w)
	}
	if withSource && g.Source != "" {
		ew.printf("\n")
		for _, line := range strings.Split(strings.TrimRight(g.Source, "\n"), "\n") {
			ew.printf("    | %s\n", line)
		}
	}
	ew.printf("\n")
}

func writeRenderTarget(ew *errWriter, rt report.RenderTargetStats) {
	ew.printf("  Render target %d\n", rt.Index)
	for _, d := range rt.Details {
		ew.printf("    %s\n", d)
	}

	tw := tabwriter.NewWriter(ew, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintf(tw, "\t\tA\tL/S\tT\tBound\t\n")
	fmt.Fprintf(tw, "\tShortest Path (Cycles)\t%.4g\t%.4g\t%.4g\t%s\t\n",
		rt.Arithmetic.Shortest, rt.LoadStore.Shortest, rt.Texture.Shortest, pipeAbbrev[rt.ShortestBound])
	fmt.Fprintf(tw, "\tLongest Path (Cycles)\t%.4g\t%.4g\t%.4g\t%s\t\n",
		rt.Arithmetic.Longest, rt.LoadStore.Longest, rt.Texture.Longest, pipeAbbrev[rt.LongestBound])
	fmt.Fprintf(tw, "\tInstructions Emitted\t%.4g\t%.4g\t%.4g\t\t\n",
		rt.Arithmetic.Emitted, rt.LoadStore.Emitted, rt.Texture.Emitted)
	_ = tw.Flush()
}

// errWriter keeps the first write error and drops later writes.
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) Write(p []byte) (int, error) {
	if e.err != nil {
		return 0, e.err
	}
	n, err := e.w.Write(p)
	e.err = err
	return n, err
}

func (e *errWriter) printf(format string, args ...any) {
	fmt.Fprintf(e, format, args...)
}
