package derive

import (
	"fmt"
	"go/ast"
	"go/build"
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"strings"
)

// Load parses the buildable, non-test, non-generated Go files in dir and
// analyzes them.
func Load(dir string, cfg Config) (*Package, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	fset := token.NewFileSet()
	var files []*ast.File

	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".go") || strings.HasSuffix(name, "_test.go") {
			continue
		}

		ok, err := build.Default.MatchFile(dir, name)
		if err != nil {
			return nil, fmt.Errorf("match %s: %w", name, err)
		}
		if !ok {
			continue
		}

		f, err := parser.ParseFile(fset, filepath.Join(dir, name), nil, parser.ParseComments)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
		if ast.IsGenerated(f) {
			continue
		}
		files = append(files, f)
	}

	if len(files) == 0 {
		return nil, fmt.Errorf("%s: %w", dir, ErrNoGoFiles)
	}

	return Analyze(fset, files, cfg)
}

// ParseSource analyzes a single in-memory file.
func ParseSource(filename string, src []byte, cfg Config) (*Package, error) {
	fset := token.NewFileSet()
	f, err := parser.ParseFile(fset, filename, src, parser.ParseComments)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", filename, err)
	}
	return Analyze(fset, []*ast.File{f}, cfg)
}
