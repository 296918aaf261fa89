// Package malioc analyzes shader performance with the Mali offline compiler.
//
// # Overview
//
// A material's WGSL source is cross-compiled to GLSL ES, specialized for
// the selected device, compiled by the vendor's offline compiler and
// reported as per-shader cycle and register statistics.
//
// # Quick Start
//
//	import "github.com/gogpu/malioc"
//
//	svc, err := malioc.New()
//	if errors.Is(err, malioc.ErrUnavailable) {
//		fmt.Println("download the offline compiler from", backend.DownloadURL())
//		return
//	}
//	defer svc.Close()
//
//	p := svc.Catalog().Platforms()[0]
//	s := svc.Analyze(material.Material{Name: "M_Base", Source: wgsl}, p)
//	s.FinishReportGeneration()
//	r := s.Report()
//
// # Architecture
//
// The library is organized into:
//   - backend: dynamic binding to the compiler manager library
//   - capability: the Core / Revision / Driver / Platform catalog
//   - material: cross-compilation of WGSL materials via naga
//   - compile: compile jobs, output parsing and the job scheduler
//   - report: the per-material session and its report
//
// # Threading
//
// Service.Tick and report.Session.Tick are called from one goroutine,
// typically once per frame. Compile jobs run on their own goroutines, one
// at a time, because the offline compiler is not reentrant.
package malioc

// Version information
const (
	// Version is the current version of the library
	Version = "0.1.0"

	// VersionMajor is the major version
	VersionMajor = 0

	// VersionMinor is the minor version
	VersionMinor = 1

	// VersionPatch is the patch version
	VersionPatch = 0
)
