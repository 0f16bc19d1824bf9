package synth

import (
	"errors"
	"fmt"
	"go/ast"
	"go/parser"
	"sort"
	"strings"

	"ascolt/internal/directive"
)

// ErrMissingErrorAttribute indicates an actor marker without a well-formed
// "error" binding.
var ErrMissingErrorAttribute = errors.New(`actor marker requires an "error" attribute`)

// ActorMarker is the derived capability marker for one actor type.
type ActorMarker struct {
	Code string
	// Qualifiers lists the package names the error type refers to, so the
	// emitting file can carry the matching imports.
	Qualifiers []string
}

// DeriveActor emits the capability marker for one marked type: a tag method
// naming the actor's error type and the conformance assertion the runtime's
// type-level routing relies on. Nothing else is generated; the marker carries
// no behavior.
func DeriveActor(in Input, typeName string, dir directive.Directive) (ActorMarker, error) {
	errText, ok := dir.Attrs["error"]
	if !ok {
		return ActorMarker{}, fmt.Errorf("type %s: %w", typeName, ErrMissingErrorAttribute)
	}
	for key := range dir.Attrs {
		if key != "error" {
			return ActorMarker{}, fmt.Errorf("type %s: unsupported attribute %q: %w", typeName, key, ErrMissingErrorAttribute)
		}
	}

	expr, err := parser.ParseExpr(errText)
	if err != nil {
		return ActorMarker{}, fmt.Errorf("type %s: malformed error type %q: %w", typeName, errText, ErrMissingErrorAttribute)
	}
	// Normalized spelling, stable regardless of how the attribute was written.
	errType := in.exprTextStandalone(expr)

	var b strings.Builder
	fmt.Fprintf(&b, "func (%s) ActorError() (err %s) { return }\n", typeName, errType)
	b.WriteString("\n")
	fmt.Fprintf(&b, "var _ %s[%s] = (*%s)(nil)", in.qualify("Actor"), errType, typeName)

	return ActorMarker{Code: b.String(), Qualifiers: qualifiers(expr)}, nil
}

// qualifiers collects the package names a type expression selects into.
func qualifiers(expr ast.Expr) []string {
	seen := map[string]bool{}
	ast.Inspect(expr, func(n ast.Node) bool {
		if sel, ok := n.(*ast.SelectorExpr); ok {
			if pkg, ok := sel.X.(*ast.Ident); ok {
				seen[pkg.Name] = true
			}
		}
		return true
	})
	out := make([]string, 0, len(seen))
	for name := range seen {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
