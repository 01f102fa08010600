package gobinary

import (
	"fmt"
	"testing"
)

func TestDepGraph(t *testing.T) {
	a := &Module{Name: "example.com/a", Version: "v1.0.0", Main: true}
	b := &Module{Name: "example.com/b", Version: "v2.1.0"}
	b.addPackage("example.com/b/x")
	b.addPackage("example.com/b")
	bin := &GoBinary{Name: "example.com/a", GoVersion: "go1.18.5", Modules: []*Module{a, b}}

	g := bin.DepGraph()

	if g.PkgManager.Name != "gomodules" {
		t.Errorf("PkgManager = %q, want gomodules", g.PkgManager.Name)
	}
	root := g.Root()
	if root.Info.Name != "example.com/a" || root.Info.Version != "v1.0.0" {
		t.Errorf("root = %+v", root.Info)
	}

	wantIDs := []string{"example.com/b/x@v2.1.0", "example.com/b@v2.1.0"}
	if len(g.Nodes) != 1+len(wantIDs) {
		t.Fatalf("got %d nodes, want %d", len(g.Nodes), 1+len(wantIDs))
	}
	for i, id := range wantIDs {
		n := g.Nodes[i+1]
		if n.ID != id {
			t.Errorf("node %d = %q, want %q", i+1, n.ID, id)
		}
		if n.Info.Version != "v2.1.0" {
			t.Errorf("node %q version = %q", n.ID, n.Info.Version)
		}
	}
	if len(root.Deps) != len(wantIDs) {
		t.Fatalf("root has %d edges, want %d", len(root.Deps), len(wantIDs))
	}
	for i, id := range wantIDs {
		if root.Deps[i] != id {
			t.Errorf("edge %d = %q, want %q", i, root.Deps[i], id)
		}
	}
}

func TestDepGraphDistributionRoot(t *testing.T) {
	bin := &GoBinary{Name: "go-distribution@cmd/vet", GoVersion: "go1.18.5"}
	g := bin.DepGraph()
	root := g.Root()
	if root.Info.Name != "go-distribution@cmd/vet" {
		t.Errorf("root name = %q", root.Info.Name)
	}
	// Without a main module the root carries the compiler version.
	if root.Info.Version != "go1.18.5" {
		t.Errorf("root version = %q", root.Info.Version)
	}
}

func TestDepGraphLargePackageSet(t *testing.T) {
	// Emission yields to the scheduler periodically; make sure a set
	// larger than the yield interval comes through intact and ordered.
	m := &Module{Name: "example.com/big", Version: "v1.0.0"}
	const n = 3 * yieldEvery
	for i := 0; i < n; i++ {
		m.addPackage(pkgName(i))
	}
	bin := &GoBinary{Name: "example.com/big", Modules: []*Module{m}}
	g := bin.DepGraph()
	if len(g.Nodes) != n+1 {
		t.Fatalf("got %d nodes, want %d", len(g.Nodes), n+1)
	}
	for i := 0; i < n; i++ {
		want := pkgName(i) + "@v1.0.0"
		if g.Nodes[i+1].ID != want {
			t.Fatalf("node %d = %q, want %q", i+1, g.Nodes[i+1].ID, want)
		}
	}
}

func pkgName(i int) string {
	return fmt.Sprintf("example.com/big/p%d", i)
}
