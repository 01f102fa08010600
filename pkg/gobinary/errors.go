package gobinary

import (
	"errors"
	"fmt"
)

var (
	// ErrNotGoExecutable is returned when the build-info magic cannot be
	// found in the data region.
	ErrNotGoExecutable = errors.New("not a Go executable")

	// ErrNoVersion is returned when the embedded Go version string reads
	// empty.
	ErrNoVersion = errors.New("no version found")

	// ErrNoModuleSupport is returned for binaries built before module
	// support, whose module-info blob fails the sentinel check.
	ErrNoModuleSupport = errors.New("binary is not built with go module support")

	// ErrNoPclnTab is returned when the binary carries no .gopclntab
	// section, so packages cannot be recovered.
	ErrNoPclnTab = errors.New("no pcln table present in Go binary")

	// ErrEmptyModuleInfo is returned when the build-info decoder yields an
	// empty module-info blob.
	ErrEmptyModuleInfo = errors.New("empty module info in Go binary")
)

// ClassificationError reports a file path that embeds a module key at a
// non-zero offset, which the classifier cannot attribute safely.
type ClassificationError struct {
	File   string
	Module string
}

func (e *ClassificationError) Error() string {
	return fmt.Sprintf("cannot classify file %q against module %q", e.File, e.Module)
}
