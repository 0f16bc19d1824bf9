// Package gen drives one generation pass: it loads annotated source files,
// hands marked declarations to the synthesizer, and writes the sibling
// generated files. Each file is processed independently; identical input
// bytes always produce identical output bytes.
package gen

import (
	"crypto/sha256"
	"encoding/hex"
	"go/ast"
	"go/build/constraint"
	"go/parser"
	"go/token"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// defTag is the build constraint that marks a handler definition file. Files
// carrying it never reach normal builds; their declarations only exist
// through the generated sibling.
const defTag = "ascolt"

// contractImport is the import path of the contract package generated
// bindings compile against.
const contractImport = "ascolt"

const defaultSuffix = "_gen.go"

// DefaultHeader is the first line of every generated file.
const DefaultHeader = "// Code generated by ascolt. DO NOT EDIT."

// Manifest records generated outputs so unchanged inputs can be skipped.
// A nil Manifest disables skipping.
type Manifest interface {
	UpToDate(path, sum string) (bool, error)
	Record(path, sum, output string) error
}

// Options configures a Generator.
type Options struct {
	Suffix   string // generated file suffix, "_gen.go" when empty
	Header   string // generated file header line, DefaultHeader when empty
	Manifest Manifest
}

// Generator is a single-pass source-to-source transformer. It holds no state
// across files beyond the optional manifest.
type Generator struct {
	suffix   string
	header   string
	manifest Manifest
}

func New(opts Options) *Generator {
	g := &Generator{
		suffix:   opts.Suffix,
		header:   opts.Header,
		manifest: opts.Manifest,
	}
	if g.suffix == "" {
		g.suffix = defaultSuffix
	}
	if g.header == "" {
		g.header = DefaultHeader
	}
	return g
}

// Process runs generation over a file or directory tree. It returns the
// generated file paths in a deterministic order. The first failing
// declaration aborts its file with no partial output; the error carries the
// offending position.
func (g *Generator) Process(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		out, err := g.ProcessFile(path)
		if err != nil || out == "" {
			return nil, err
		}
		return []string{out}, nil
	}

	var written []string
	err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			name := d.Name()
			if p != path && (strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_") ||
				name == "vendor" || name == "testdata") {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(p, ".go") || strings.HasSuffix(p, "_test.go") || strings.HasSuffix(p, g.suffix) {
			return nil
		}
		out, err := g.ProcessFile(p)
		if err != nil {
			return err
		}
		if out != "" {
			written = append(written, out)
		}
		return nil
	})
	return written, err
}

// ProcessFile generates for a single source file. The returned path is empty
// when the file needs no generated sibling or the manifest marked it current.
func (g *Generator) ProcessFile(path string) (string, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(src)
	digest := hex.EncodeToString(sum[:])

	outPath := strings.TrimSuffix(path, ".go") + g.suffix
	if g.manifest != nil {
		current, err := g.manifest.UpToDate(path, digest)
		if err != nil {
			return "", err
		}
		if current {
			if _, err := os.Stat(outPath); err == nil {
				slog.Debug("up to date", slog.String("path", path))
				return "", nil
			}
		}
	}

	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, path, src, parser.ParseComments)
	if err != nil {
		return "", err
	}

	var content string
	switch {
	case isDefinitionFile(file):
		content, err = g.renderDefinitions(fset, src, file)
	default:
		content, err = g.renderMarkers(fset, src, file)
	}
	if err != nil {
		return "", err
	}
	if content == "" {
		return "", nil
	}

	if err := os.WriteFile(outPath, []byte(content), 0o644); err != nil {
		return "", err
	}
	slog.Info("generated", slog.String("from", path), slog.String("to", outPath))

	if g.manifest != nil {
		if err := g.manifest.Record(path, digest, outPath); err != nil {
			return "", err
		}
	}
	return outPath, nil
}

// isDefinitionFile reports whether the file carries the ascolt build
// constraint above its package clause.
func isDefinitionFile(file *ast.File) bool {
	for _, cg := range file.Comments {
		if cg.Pos() >= file.Package {
			break
		}
		for _, c := range cg.List {
			if !constraint.IsGoBuild(c.Text) {
				continue
			}
			expr, err := constraint.Parse(c.Text)
			if err != nil {
				continue
			}
			if expr.Eval(func(tag string) bool { return tag == defTag }) {
				return true
			}
		}
	}
	return false
}

// contractAlias returns the name under which the contract package is
// addressable in the file: the import alias, "ascolt" for a plain import, or
// "" inside the contract package itself or under a dot import.
func contractAlias(file *ast.File) string {
	if file.Name.Name == contractImport {
		return ""
	}
	for _, imp := range file.Imports {
		if strings.Trim(imp.Path.Value, `"`) != contractImport {
			continue
		}
		if imp.Name == nil {
			return contractImport
		}
		if imp.Name.Name == "." {
			return ""
		}
		return imp.Name.Name
	}
	return contractImport
}
