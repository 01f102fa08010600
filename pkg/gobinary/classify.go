package gobinary

import (
	"path"
	"strings"

	"github.com/derekparker/trie"

	"github.com/gobindep/gobindep/pkg/logflags"
)

// autogeneratedPath is the sentinel the compiler records for synthesized
// code; it belongs to no module.
const autogeneratedPath = "<autogenerated>"

// classify attributes every source file recovered from the pclntab to the
// module it was compiled from and records the resulting package paths on
// the modules.
//
// Three build modes leave three different path shapes behind:
//
//	module cache:  /home/u/go/pkg/mod/example.com/b@v2.1.0/x/y.go
//	vendored:      /app/vendor/example.com/b/x/y.go
//	trimpath:      example.com/b@v2.1.0/x/y.go
//
// The mode is inferred from the file list itself; ground truth is erased
// from the binary.
func classify(modules []*Module, files []string, lenient bool) error {
	log := logflags.ClassifierLogger()

	trimmed := isTrimmed(files)
	var cachePrefix, vendorPrefix string
	if !trimmed {
		cachePrefix = moduleCachePrefix(modules, files)
		vendorPrefix = vendorDirPrefix(modules, files)
	}
	log.Debugf("trimmed=%v cachePrefix=%q vendorPrefix=%q", trimmed, cachePrefix, vendorPrefix)

	// Module keys are matched longest-first on path boundaries, so a module
	// whose path extends another's (example.com/a and example.com/a/sub)
	// claims only its own files.
	byName := trie.New()
	byFullName := trie.New()
	for _, mod := range modules {
		byName.Add(mod.Name, mod)
		byFullName.Add(mod.FullName(), mod)
	}

	for _, file := range files {
		if file == autogeneratedPath {
			continue
		}
		if !strings.HasSuffix(file, ".go") {
			continue
		}

		var rest string
		var keys *trie.Trie
		useFullName := true
		switch {
		case vendorPrefix != "" && strings.HasPrefix(file, vendorPrefix):
			rest, keys, useFullName = file[len(vendorPrefix):], byName, false
		case cachePrefix != "" && strings.HasPrefix(file, cachePrefix):
			rest, keys = file[len(cachePrefix):], byFullName
		case trimmed:
			rest, keys = file, byFullName
		default:
			// No prefix applies; GOROOT source.
			continue
		}

		mod, key := longestPrefixModule(keys, rest)
		if mod == nil {
			if embedded := findEmbeddedKey(modules, rest, useFullName); embedded != nil {
				err := &ClassificationError{File: file, Module: embedded.Name}
				if !lenient {
					return err
				}
				log.Warnf("skipping unclassifiable file: %v", err)
			}
			continue
		}

		rel := rest[len(key):]
		dir := path.Dir(rel)
		pkg := mod.Name
		if dir != "/" && dir != "." && dir != "" {
			pkg += dir
		}
		mod.addPackage(pkg)
	}
	return nil
}

// isTrimmed reports whether the binary was built with -trimpath, leaving
// only module-relative paths behind. Adding any absolute path makes the
// file list non-trimmed.
func isTrimmed(files []string) bool {
	for _, f := range files {
		if strings.HasPrefix(f, "/") {
			return false
		}
	}
	return true
}

// moduleCachePrefix derives the module cache root from the first file
// containing "/<name@version>" for any module.
func moduleCachePrefix(modules []*Module, files []string) string {
	for _, mod := range modules {
		needle := "/" + mod.FullName()
		for _, file := range files {
			if i := strings.Index(file, needle); i >= 0 {
				return file[:i+1]
			}
		}
	}
	return ""
}

// vendorDirPrefix derives the vendor directory root. A candidate root is
// only accepted when a second file lives under the root but outside the
// vendor subtree of the matched module, ruling out module-cache paths that
// merely contain a vendor component.
func vendorDirPrefix(modules []*Module, files []string) string {
	for _, mod := range modules {
		needle := "vendor/" + mod.Name + "/"
		for _, file := range files {
			i := strings.Index(file, needle)
			if i < 0 {
				continue
			}
			root := file[:i]
			for _, other := range files {
				if other == file {
					continue
				}
				if strings.HasPrefix(other, root) && !strings.HasPrefix(other, root+needle) {
					return root + "vendor/"
				}
			}
		}
	}
	return ""
}

// longestPrefixModule finds the longest module key that is a prefix of rest
// on a path-segment boundary.
func longestPrefixModule(keys *trie.Trie, rest string) (*Module, string) {
	for cut := rest; ; {
		if node, ok := keys.Find(cut); ok {
			return node.Meta().(*Module), cut
		}
		i := strings.LastIndexByte(cut, '/')
		if i < 0 {
			return nil, ""
		}
		cut = cut[:i]
	}
}

// findEmbeddedKey reports a module whose key occurs in rest at a non-zero
// offset. Such a file cannot be attributed safely: the leading component
// contradicts the derived prefix.
func findEmbeddedKey(modules []*Module, rest string, useFullName bool) *Module {
	for _, mod := range modules {
		key := mod.Name
		if useFullName {
			key = mod.FullName()
		}
		if i := strings.Index(rest, key); i > 0 {
			return mod
		}
	}
	return nil
}
