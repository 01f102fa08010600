// Package gobinary reconstructs module and package dependency information
// from compiled Go ELF executables: the main module identity, the
// transitive module list with versions, and the source packages compiled
// into the binary.
//
// The information is recovered from two structures the Go linker embeds in
// every binary: the build-info blob (module graph, compiler version) and
// the pclntab (source file paths).
package gobinary

import (
	"debug/elf"
	"fmt"

	"github.com/gobindep/gobindep/pkg/logflags"
	"github.com/gobindep/gobindep/pkg/pclntab"
)

// Options control the parts of an analysis with more than one reasonable
// policy.
type Options struct {
	// LenientClassification skips files the classifier cannot attribute
	// instead of failing the whole analysis.
	LenientClassification bool
}

// Analyze extracts module and package information from f with default
// options.
func Analyze(f *elf.File) (*GoBinary, error) {
	return AnalyzeWithOptions(f, Options{})
}

// AnalyzeWithOptions extracts module and package information from f.
// Analyses either run to completion or fail; partial results are never
// returned.
func AnalyzeWithOptions(f *elf.File, opts Options) (*GoBinary, error) {
	img, err := NewImage(f)
	if err != nil {
		return nil, err
	}
	return analyzeImage(img, opts)
}

func analyzeImage(img *Image, opts Options) (*GoBinary, error) {
	log := logflags.BinaryLogger()

	hdr, err := findBuildInfo(img)
	if err != nil {
		return nil, err
	}
	vers, modinfo, err := decodeBuildInfo(img, hdr)
	if err != nil {
		return nil, err
	}
	if modinfo == "" {
		return nil, ErrEmptyModuleInfo
	}
	name, modules := parseModuleInfo(modinfo)
	log.Debugf("binary %s built with %s, %d modules", name, vers, len(modules))

	pcln := img.Section(".gopclntab")
	if pcln == nil {
		return nil, ErrNoPclnTab
	}
	lt, err := pclntab.NewLineTable(pcln.Data)
	if err != nil {
		return nil, fmt.Errorf("decoding pclntab: %w", err)
	}
	files, err := lt.Files()
	if err != nil {
		return nil, fmt.Errorf("decoding pclntab: %w", err)
	}
	log.Debugf("pclntab lists %d source files", len(files))

	if err := classify(modules, files, opts.LenientClassification); err != nil {
		return nil, err
	}
	return &GoBinary{Name: name, GoVersion: vers, Modules: modules}, nil
}
