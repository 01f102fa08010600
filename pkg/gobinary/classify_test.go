package gobinary

import (
	"errors"
	"reflect"
	"testing"
)

func testModules() (*Module, *Module) {
	a := &Module{Name: "example.com/a", Version: "v1.0.0", Main: true}
	b := &Module{Name: "example.com/b", Version: "v2.1.0"}
	return a, b
}

func mustClassify(t *testing.T, modules []*Module, files []string) {
	t.Helper()
	if err := classify(modules, files, false); err != nil {
		t.Fatalf("classify: %v", err)
	}
}

func checkPackages(t *testing.T, m *Module, want []string) {
	t.Helper()
	got := m.Packages()
	if len(got) == 0 && len(want) == 0 {
		return
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("%s packages = %v, want %v", m.Name, got, want)
	}
}

func TestClassifyModuleCache(t *testing.T) {
	a, b := testModules()
	files := []string{
		"/usr/local/go/src/runtime/proc.go",
		"/root/pkg/mod/example.com/b@v2.1.0/x/y.go",
		"/root/pkg/mod/example.com/b@v2.1.0/x/asm.s",
		"/root/pkg/mod/example.com/b@v2.1.0/top.go",
		"<autogenerated>",
	}
	mustClassify(t, []*Module{a, b}, files)
	checkPackages(t, a, nil)
	checkPackages(t, b, []string{"example.com/b/x", "example.com/b"})
}

func TestClassifyTrimpath(t *testing.T) {
	a, b := testModules()
	files := []string{
		"example.com/b@v2.1.0/x/y.go",
		"example.com/a@v1.0.0/main.go",
		"runtime/proc.go",
	}
	mustClassify(t, []*Module{a, b}, files)
	checkPackages(t, a, []string{"example.com/a"})
	checkPackages(t, b, []string{"example.com/b/x"})
}

func TestClassifyVendored(t *testing.T) {
	a, b := testModules()
	files := []string{
		"/app/main.go",
		"/app/vendor/example.com/b/x/y.go",
	}
	mustClassify(t, []*Module{a, b}, files)
	checkPackages(t, b, []string{"example.com/b/x"})
}

func TestClassifyVendorUnconfirmed(t *testing.T) {
	// A lone vendor-shaped path with no sibling outside the vendor tree
	// must not establish a vendor prefix.
	_, b := testModules()
	files := []string{
		"/app/vendor/example.com/b/x/y.go",
	}
	mustClassify(t, []*Module{b}, files)
	checkPackages(t, b, nil)
}

func TestClassifyLongestPrefixWins(t *testing.T) {
	parent := &Module{Name: "example.com/a", Version: "v1.0.0"}
	sub := &Module{Name: "example.com/a/sub", Version: "v0.2.0"}
	files := []string{
		"/app/main.go",
		"/app/vendor/example.com/a/y/z.go",
		"/app/vendor/example.com/a/sub/x.go",
	}
	mustClassify(t, []*Module{parent, sub}, files)
	checkPackages(t, parent, []string{"example.com/a/y"})
	checkPackages(t, sub, []string{"example.com/a/sub"})
}

func TestClassifySegmentBoundary(t *testing.T) {
	// example.com/b must not claim example.com/bb.
	b := &Module{Name: "example.com/b", Version: "v2.1.0"}
	files := []string{
		"/app/main.go",
		"/app/vendor/example.com/bb/x/y.go",
		"/app/vendor/example.com/b/z.go",
	}
	mustClassify(t, []*Module{b}, files)
	checkPackages(t, b, []string{"example.com/b"})
}

func TestClassifyEmbeddedKeyStrict(t *testing.T) {
	_, b := testModules()
	files := []string{
		"/root/pkg/mod/example.com/b@v2.1.0/x/y.go",
		"/root/pkg/mod/mirror/example.com/b@v2.1.0/x/y.go",
	}
	err := classify([]*Module{b}, files, false)
	var cerr *ClassificationError
	if !errors.As(err, &cerr) {
		t.Fatalf("classify error = %v, want *ClassificationError", err)
	}
	if cerr.File != "/root/pkg/mod/mirror/example.com/b@v2.1.0/x/y.go" || cerr.Module != "example.com/b" {
		t.Errorf("ClassificationError = %+v", cerr)
	}
}

func TestClassifyEmbeddedKeyLenient(t *testing.T) {
	_, b := testModules()
	files := []string{
		"/root/pkg/mod/example.com/b@v2.1.0/x/y.go",
		"/root/pkg/mod/mirror/example.com/b@v2.1.0/x/y.go",
	}
	if err := classify([]*Module{b}, files, true); err != nil {
		t.Fatalf("lenient classify: %v", err)
	}
	checkPackages(t, b, []string{"example.com/b/x"})
}

func TestClassifyInvariants(t *testing.T) {
	a, b := testModules()
	files := []string{
		"/root/pkg/mod/example.com/b@v2.1.0/x/y.go",
		"/root/pkg/mod/example.com/b@v2.1.0/p/q/r.go",
		"/root/pkg/mod/example.com/a@v1.0.0/cmd/x/main.go",
	}
	mustClassify(t, []*Module{a, b}, files)
	for _, m := range []*Module{a, b} {
		for _, pkg := range m.Packages() {
			if len(pkg) < len(m.Name) || pkg[:len(m.Name)] != m.Name {
				t.Errorf("package %q does not start with module name %q", pkg, m.Name)
			}
			if pkg[len(pkg)-1] == '/' {
				t.Errorf("package %q ends with /", pkg)
			}
		}
	}
}

func TestIsTrimmed(t *testing.T) {
	if !isTrimmed([]string{"a/b.go", "<autogenerated>"}) {
		t.Error("relative paths reported as non-trimmed")
	}
	if isTrimmed([]string{"a/b.go", "/abs/c.go"}) {
		t.Error("absolute path reported as trimmed")
	}
	if !isTrimmed(nil) {
		t.Error("empty list reported as non-trimmed")
	}
}

func TestModuleCachePrefix(t *testing.T) {
	_, b := testModules()
	files := []string{
		"/usr/local/go/src/fmt/print.go",
		"/home/u/go/pkg/mod/example.com/b@v2.1.0/x/y.go",
	}
	if got := moduleCachePrefix([]*Module{b}, files); got != "/home/u/go/pkg/mod/" {
		t.Errorf("moduleCachePrefix = %q", got)
	}
	if got := moduleCachePrefix([]*Module{b}, files[:1]); got != "" {
		t.Errorf("moduleCachePrefix without match = %q", got)
	}
}

func TestVendorDirPrefix(t *testing.T) {
	_, b := testModules()
	files := []string{
		"/app/main.go",
		"/app/vendor/example.com/b/x/y.go",
	}
	if got := vendorDirPrefix([]*Module{b}, files); got != "/app/vendor/" {
		t.Errorf("vendorDirPrefix = %q", got)
	}
}
