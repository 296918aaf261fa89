// Command malioc reports Mali shader statistics for a WGSL material.
//
// Usage:
//
//	malioc [options] <material.wgsl>
//
// Examples:
//
//	malioc -list                                  # List compile targets
//	malioc shader.wgsl                            # Analyze on the first target
//	malioc -core Mali-400 shader.wgsl             # Analyze on a Mali-400
//	malioc -vf FLocalVertexFactory shader.wgsl    # Label shaders by vertex factory
package main

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/gogpu/malioc"
	"github.com/gogpu/malioc/backend"
	"github.com/gogpu/malioc/capability"
	"github.com/gogpu/malioc/material"
)

var (
	dir       = flag.String("dir", "", "offline compiler directory (default: $"+backend.EnvCompilerDir+" or next to the executable)")
	list      = flag.Bool("list", false, "list compile targets and exit")
	core      = flag.String("core", "", "target core, e.g. Mali-T760")
	revision  = flag.String("revision", "", "target core revision, e.g. r1p0")
	driver    = flag.String("driver", "", "target driver")
	platform  = flag.String("platform", "", "target API, e.g. \"OpenGL ES 2.0\"")
	factories = flag.String("vf", "", "comma-separated vertex factory types")
	source    = flag.Bool("source", false, "print the compiled source of each shader")
	verbose   = flag.Bool("v", false, "enable debug logging")
	version   = flag.Bool("version", false, "print version")
)

func main() {
	flag.Usage = usage
	flag.Parse()
	os.Exit(run())
}

func run() int {
	if *version {
		fmt.Printf("malioc version %s (compiler manager %s)\n", malioc.Version, backend.ExpectedVersion)
		return 0
	}
	if *verbose {
		malioc.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})))
	}

	cfg := backend.DefaultConfig()
	if *dir != "" {
		cfg = backend.Config{Dir: *dir}
	}

	svc, err := malioc.New(malioc.WithConfig(cfg), malioc.WithSilent(!*verbose))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if errors.Is(err, malioc.ErrUnavailable) {
			printInstallHelp(cfg)
		}
		return 1
	}
	defer svc.Close()

	if *list {
		printTargets(svc.Catalog())
		return 0
	}

	args := flag.Args()
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Error: no input file specified")
		usage()
		return 1
	}

	src, err := os.ReadFile(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading file: %v\n", err)
		return 1
	}

	p, ok := selectPlatform(svc.Catalog(), *core, *revision, *driver, *platform)
	if !ok {
		fmt.Fprintln(os.Stderr, "Error: no compile target matches; run with -list")
		return 1
	}

	m := material.Material{
		Name:            strings.TrimSuffix(filepath.Base(args[0]), filepath.Ext(args[0])),
		Source:          string(src),
		VertexFactories: splitList(*factories),
	}
	s := svc.Analyze(m, p)
	s.FinishReportGeneration()

	fmt.Printf("%s on %s\n\n", m.Name, p)
	if err := writeReport(os.Stdout, s.Report(), *source); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing report: %v\n", err)
		return 1
	}
	return 0
}

// selectPlatform returns the first platform matching every non-empty
// filter, compared case-insensitively.
func selectPlatform(cat *capability.Catalog, core, revision, driver, api string) (capability.Platform, bool) {
	match := func(filter, name string) bool { return filter == "" || strings.EqualFold(filter, name) }
	for _, p := range cat.Platforms() {
		d := p.Driver()
		r := d.Revision()
		if match(core, r.Core().Name()) && match(revision, r.Name()) && match(driver, d.Name()) && match(api, p.Name()) {
			return p, true
		}
	}
	return capability.Platform{}, false
}

func printTargets(cat *capability.Catalog) {
	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "CORE\tREVISION\tDRIVER\tPLATFORM\tMAX API")
	for _, p := range cat.Platforms() {
		d := p.Driver()
		r := d.Revision()
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\n", r.Core().Name(), r.Name(), d.Name(), p.Name(), d.MaxAPI())
	}
	_ = tw.Flush()
}

func printInstallHelp(cfg backend.Config) {
	fmt.Fprintf(os.Stderr, "\nThe Mali offline compiler was not found at %s.\n", cfg.LibraryPath())
	if url := backend.DownloadURL(); url != "" {
		fmt.Fprintf(os.Stderr, "Download it from %s\n", url)
		fmt.Fprintf(os.Stderr, "(license: %s)\n", backend.EULAURL)
	}
	fmt.Fprintf(os.Stderr, "and extract %s next to malioc, or set %s.\n", backend.CompilerFolder, backend.EnvCompilerDir)
}

func splitList(s string) []string {
	var out []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: malioc [options] <material.wgsl>\n\n")
	fmt.Fprintf(os.Stderr, "Options:\n")
	flag.PrintDefaults()
	fmt.Fprintf(os.Stderr, "\nExamples:\n")
	fmt.Fprintf(os.Stderr, "  malioc -list                      List compile targets\n")
	fmt.Fprintf(os.Stderr, "  malioc shader.wgsl                Analyze on the first target\n")
	fmt.Fprintf(os.Stderr, "  malioc -core Mali-400 shader.wgsl Analyze on a Mali-400\n")
}
