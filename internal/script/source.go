package script

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ErrScriptNotFound is returned by a Source when a script name does not resolve.
var ErrScriptNotFound = errors.New("script not found")

// Source resolves script names to readable sources.
type Source interface {
	Open(name string) (io.ReadCloser, error)
}

// Load opens and parses the named script from src.
func Load(src Source, name string) (*Result, error) {
	rc, err := src.Open(name)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	resolved := name
	if named, ok := rc.(interface{ Name() string }); ok {
		resolved = named.Name()
	}
	opts := ParseOptions{}
	if strings.EqualFold(filepath.Ext(resolved), ".tsv") {
		opts.Comma = '\t'
	}
	return Parse(name, rc, opts)
}

// DirSource resolves names relative to a directory. A name without an
// extension is tried as name.csv then name.tsv.
type DirSource struct {
	Dir string
}

// Open implements Source.
func (d DirSource) Open(name string) (io.ReadCloser, error) {
	if name == "" {
		return nil, fmt.Errorf("open script: %w: empty name", ErrScriptNotFound)
	}
	candidates := []string{name}
	if filepath.Ext(name) == "" {
		candidates = []string{name + ".csv", name + ".tsv"}
	}
	for _, c := range candidates {
		path := c
		if !filepath.IsAbs(path) {
			path = filepath.Join(d.Dir, c)
		}
		f, err := os.Open(path)
		if err == nil {
			return f, nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("open script %s: %w", name, err)
		}
	}
	return nil, fmt.Errorf("open script %s: %w", name, ErrScriptNotFound)
}

// MapSource serves scripts from memory. Used by the harness and tests.
type MapSource map[string]string

// Open implements Source.
func (m MapSource) Open(name string) (io.ReadCloser, error) {
	src, ok := m[name]
	if !ok {
		return nil, fmt.Errorf("open script %s: %w", name, ErrScriptNotFound)
	}
	return io.NopCloser(strings.NewReader(src)), nil
}
