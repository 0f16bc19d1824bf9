package gen

import (
	"fmt"
	"go/ast"
	"go/token"
	"sort"
	"strings"

	"ascolt/internal/directive"
	"ascolt/internal/synth"
)

// renderDefinitions rebuilds a handler definition file as its compiled
// sibling: every declaration in source order, unmarked ones verbatim, marked
// handlers replaced by their synthesized form. Marked types inside a
// definition file keep their declaration and gain the capability marker.
func (g *Generator) renderDefinitions(fset *token.FileSet, src []byte, file *ast.File) (string, error) {
	in := synth.Input{Fset: fset, Src: src, Alias: contractAlias(file)}

	var parts []string
	for _, decl := range file.Decls {
		switch d := decl.(type) {
		case *ast.FuncDecl:
			dir, found, err := directive.Find(d.Doc)
			if err != nil {
				return "", posErr(fset, d.Pos(), err)
			}
			if !found {
				parts = append(parts, synth.Verbatim(in, d.Doc, d))
				continue
			}
			if dir.Kind == directive.ActorMarker {
				return "", posErr(fset, d.Pos(), fmt.Errorf("actor marker on function %s; it belongs on a type declaration", d.Name.Name))
			}
			code, err := synth.Handler(in, d, dir)
			if err != nil {
				return "", posErr(fset, d.Pos(), err)
			}
			parts = append(parts, code)
		case *ast.GenDecl:
			chunk, _, err := g.renderGenDecl(fset, in, d, true)
			if err != nil {
				return "", err
			}
			parts = append(parts, chunk...)
		}
	}

	var b strings.Builder
	b.WriteString(g.header + "\n\n")
	b.WriteString("package " + file.Name.Name + "\n\n")
	b.WriteString(strings.Join(parts, "\n\n"))
	b.WriteString("\n")
	return b.String(), nil
}

// renderMarkers scans a regular source file for actor markers and produces a
// sibling file holding only the derived capability code. Handler markers are
// rejected here: a handler's declaration must live in a definition file, or
// it would compile twice.
func (g *Generator) renderMarkers(fset *token.FileSet, src []byte, file *ast.File) (string, error) {
	in := synth.Input{Fset: fset, Src: src, Alias: contractAlias(file)}

	var markers []synth.ActorMarker
	for _, decl := range file.Decls {
		switch d := decl.(type) {
		case *ast.FuncDecl:
			dir, found, err := directive.Find(d.Doc)
			if err != nil {
				return "", posErr(fset, d.Pos(), err)
			}
			if found && dir.Kind != directive.ActorMarker {
				return "", posErr(fset, d.Pos(), fmt.Errorf("%s marker outside a definition file; move %s into a file tagged //go:build %s", dir.Kind, d.Name.Name, defTag))
			}
			if found {
				return "", posErr(fset, d.Pos(), fmt.Errorf("actor marker on function %s; it belongs on a type declaration", d.Name.Name))
			}
		case *ast.GenDecl:
			_, ms, err := g.renderGenDecl(fset, in, d, false)
			if err != nil {
				return "", err
			}
			markers = append(markers, ms...)
		}
	}
	if len(markers) == 0 {
		return "", nil
	}

	var b strings.Builder
	b.WriteString(g.header + "\n\n")
	b.WriteString("package " + file.Name.Name + "\n\n")
	b.WriteString(markerImports(file, in.Alias, markers))

	for i, m := range markers {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(m.Code)
	}
	b.WriteString("\n")
	return b.String(), nil
}

// renderGenDecl handles one const/type/var declaration. In definition files
// (emitDecl true) the declaration itself is re-emitted ahead of any derived
// marker; in regular files only the markers are collected.
func (g *Generator) renderGenDecl(fset *token.FileSet, in synth.Input, d *ast.GenDecl, emitDecl bool) ([]string, []synth.ActorMarker, error) {
	var parts []string
	var markers []synth.ActorMarker

	docs := []*ast.CommentGroup{d.Doc}
	for _, spec := range d.Specs {
		if ts, ok := spec.(*ast.TypeSpec); ok && ts.Doc != nil {
			docs = append(docs, ts.Doc)
		}
	}

	for _, doc := range docs {
		dir, found, err := directive.Find(doc)
		if err != nil {
			return nil, nil, posErr(fset, d.Pos(), err)
		}
		if !found {
			continue
		}
		if dir.Kind != directive.ActorMarker {
			return nil, nil, posErr(fset, d.Pos(), fmt.Errorf("%s marker on a type declaration; it belongs on a method", dir.Kind))
		}
		name, err := markedTypeName(d, doc)
		if err != nil {
			return nil, nil, posErr(fset, d.Pos(), err)
		}
		m, err := synth.DeriveActor(in, name, dir)
		if err != nil {
			return nil, nil, posErr(fset, d.Pos(), err)
		}
		markers = append(markers, m)
	}

	if emitDecl {
		parts = append(parts, synth.Verbatim(in, d.Doc, d))
		for _, m := range markers {
			parts = append(parts, m.Code)
		}
	}
	return parts, markers, nil
}

// markedTypeName resolves which type a directive marks: the spec carrying the
// doc, or the sole spec of the declaration.
func markedTypeName(d *ast.GenDecl, doc *ast.CommentGroup) (string, error) {
	for _, spec := range d.Specs {
		ts, ok := spec.(*ast.TypeSpec)
		if !ok {
			return "", fmt.Errorf("actor marker on a %s declaration; it belongs on a type", d.Tok)
		}
		if ts.Doc == doc || (doc == d.Doc && len(d.Specs) == 1) {
			return ts.Name.Name, nil
		}
	}
	return "", fmt.Errorf("actor marker on a grouped declaration must sit on the type it marks")
}

// markerImports assembles the import block of a markers-only file: the
// contract package plus whatever packages the error types select into,
// spelled the way the source file imports them.
func markerImports(file *ast.File, alias string, markers []synth.ActorMarker) string {
	var lines []string
	if alias != "" {
		line := fmt.Sprintf("%q", contractImport)
		if alias != contractImport {
			line = alias + " " + line
		}
		lines = append(lines, line)
	}

	needed := map[string]bool{}
	for _, m := range markers {
		for _, q := range m.Qualifiers {
			needed[q] = true
		}
	}
	for _, imp := range file.Imports {
		path := strings.Trim(imp.Path.Value, `"`)
		name := path[strings.LastIndex(path, "/")+1:]
		if imp.Name != nil {
			name = imp.Name.Name
		}
		if !needed[name] || path == contractImport {
			continue
		}
		line := imp.Path.Value
		if imp.Name != nil {
			line = imp.Name.Name + " " + line
		}
		lines = append(lines, line)
	}

	if len(lines) == 0 {
		return ""
	}
	if len(lines) == 1 {
		return "import " + lines[0] + "\n\n"
	}
	sort.Strings(lines[1:])
	return "import (\n\t" + strings.Join(lines, "\n\t") + "\n)\n\n"
}

func posErr(fset *token.FileSet, pos token.Pos, err error) error {
	return fmt.Errorf("%s: %w", fset.Position(pos), err)
}
