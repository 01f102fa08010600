package gobinary

import (
	"runtime"

	"github.com/gobindep/gobindep/pkg/depgraph"
)

// pkgManagerName is the package-manager descriptor carried by every graph
// this engine emits.
const pkgManagerName = "gomodules"

// yieldEvery bounds how many packages are emitted between scheduler
// yields.
const yieldEvery = 1024

// DepGraph flattens the analyzed modules into a dependency graph rooted at
// the binary: one node per (package, version), each connected directly to
// the root. Nodes appear in (module declaration, package insertion) order.
func (b *GoBinary) DepGraph() *depgraph.Graph {
	rootVersion := b.GoVersion
	if m := b.MainModule(); m != nil {
		rootVersion = m.Version
	}
	builder := depgraph.NewBuilder(
		depgraph.PkgManager{Name: pkgManagerName},
		depgraph.PkgInfo{Name: b.Name, Version: rootVersion},
	)

	n := 0
	for _, mod := range b.Modules {
		for _, pkg := range mod.Packages() {
			id := pkg + "@" + mod.Version
			builder.AddPkgNode(depgraph.PkgInfo{Name: pkg, Version: mod.Version}, id)
			builder.ConnectDep(builder.RootNodeID(), id)
			n++
			if n%yieldEvery == 0 {
				// Images can carry tens of thousands of packages; give
				// other goroutines a turn.
				runtime.Gosched()
			}
		}
	}
	return builder.Build()
}
