// Package scan locates and analyzes Go ELF executables on disk. Results
// are cached by content digest, so rescanning identical binaries (common
// across container image layers) is free.
package scan

import (
	"bytes"
	"crypto/sha256"
	"debug/elf"
	"fmt"
	"io"
	"os"
	"path/filepath"

	lru "github.com/hashicorp/golang-lru"

	"github.com/gobindep/gobindep/pkg/gobinary"
	"github.com/gobindep/gobindep/pkg/logflags"
)

// DefaultCacheSize is the number of analysis results retained when no
// cache size is configured.
const DefaultCacheSize = 128

var elfMagic = []byte("\x7fELF")

// Result pairs a scanned path with its analysis outcome.
type Result struct {
	Path   string
	Binary *gobinary.GoBinary
	Err    error
}

// Scanner analyzes Go ELF executables with an LRU result cache keyed by
// file digest.
type Scanner struct {
	cache *lru.Cache
	opts  gobinary.Options
}

// New returns a Scanner retaining up to cacheSize analysis results.
func New(cacheSize int, opts gobinary.Options) (*Scanner, error) {
	if cacheSize <= 0 {
		cacheSize = DefaultCacheSize
	}
	cache, err := lru.New(cacheSize)
	if err != nil {
		return nil, err
	}
	return &Scanner{cache: cache, opts: opts}, nil
}

// ScanFile analyzes a single executable, consulting the result cache
// first.
func (s *Scanner) ScanFile(path string) (*gobinary.GoBinary, error) {
	log := logflags.ScanLogger()

	digest, err := fileDigest(path)
	if err != nil {
		return nil, err
	}
	if cached, ok := s.cache.Get(digest); ok {
		log.Debugf("cache hit for %s", path)
		return cached.(*gobinary.GoBinary), nil
	}

	f, err := elf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	bin, err := gobinary.AnalyzeWithOptions(f, s.opts)
	if err != nil {
		return nil, err
	}
	s.cache.Add(digest, bin)
	return bin, nil
}

// ScanDir walks root and analyzes every ELF executable found. Files that
// are not ELF images are skipped; ELF images that fail analysis contribute
// a Result carrying the error.
func (s *Scanner) ScanDir(root string) ([]Result, error) {
	log := logflags.ScanLogger()

	var results []Result
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.Mode().IsRegular() {
			return nil
		}
		isELF, err := hasELFMagic(path)
		if err != nil {
			return err
		}
		if !isELF {
			return nil
		}
		log.Debugf("analyzing %s", path)
		bin, err := s.ScanFile(path)
		results = append(results, Result{Path: path, Binary: bin, Err: err})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return results, nil
}

func hasELFMagic(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer f.Close()

	var magic [4]byte
	if _, err := io.ReadFull(f, magic[:]); err != nil {
		// Too short to be an ELF image.
		return false, nil
	}
	return bytes.Equal(magic[:], elfMagic), nil
}

func fileDigest(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return fmt.Sprintf("%x", h.Sum(nil)), nil
}
