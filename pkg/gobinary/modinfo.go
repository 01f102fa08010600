package gobinary

import (
	"strings"
)

// Module identifies a Go module compiled into a binary, together with the
// package paths attributed to it. The package set is populated once, during
// classification, and read-only afterwards.
type Module struct {
	Name    string
	Version string
	Main    bool

	pkgs    []string
	pkgSeen map[string]struct{}
}

// FullName returns the name@version form used in module cache paths.
func (m *Module) FullName() string {
	return m.Name + "@" + m.Version
}

// Packages returns the package import paths attributed to this module, in
// insertion order.
func (m *Module) Packages() []string {
	return m.pkgs
}

func (m *Module) addPackage(pkg string) {
	if m.pkgSeen == nil {
		m.pkgSeen = make(map[string]struct{})
	}
	if _, ok := m.pkgSeen[pkg]; ok {
		return
	}
	m.pkgSeen[pkg] = struct{}{}
	m.pkgs = append(m.pkgs, pkg)
}

// GoBinary is the result of analyzing one executable.
type GoBinary struct {
	// Name is the main module path or, for a command shipped with the Go
	// toolchain, "go-distribution@" plus its path directive.
	Name      string
	GoVersion string
	Modules   []*Module
}

// MainModule returns the main module, or nil for Go distribution binaries.
func (b *GoBinary) MainModule() *Module {
	for _, m := range b.Modules {
		if m.Main {
			return m
		}
	}
	return nil
}

// distributionPrefix marks binaries built from the Go distribution itself.
// "@" cannot occur in a module path, so the synthesized name cannot collide
// with a real module.
const distributionPrefix = "go-distribution@"

// parseModuleInfo splits the textual module-info blob into the binary name
// and its module records. The blob is newline-separated with tab-separated
// fields:
//
//	path	<import-path>
//	mod	<name>	<version>	[hash]
//	dep	<name>	<version>	[hash]
//	=>	<name>	<version>	<hash>
func parseModuleInfo(blob string) (string, []*Module) {
	lines := strings.Split(strings.Trim(blob, "\n"), "\n")

	pathDirective := ""
	if len(lines) > 0 {
		if f := strings.Split(lines[0], "\t"); len(f) >= 2 && f[0] == "path" {
			pathDirective = f[1]
		}
	}

	name := ""
	var modules []*Module
	if len(lines) > 1 {
		if f := strings.Split(lines[1], "\t"); len(f) >= 3 && f[0] == "mod" {
			name = f[1]
			modules = append(modules, &Module{Name: f[1], Version: f[2], Main: true})
		}
	}
	if name == "" {
		name = distributionPrefix + pathDirective
	}

	if len(lines) > 2 {
		for _, line := range lines[2:] {
			f := strings.Split(line, "\t")
			if len(f) < 3 || f[1] == "" || f[2] == "" {
				continue
			}
			modules = append(modules, &Module{Name: f[1], Version: f[2]})
		}
	}
	return name, modules
}
