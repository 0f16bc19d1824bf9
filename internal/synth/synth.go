// Package synth assembles replacement declarations for marked handlers and
// actor types. The user-written method is re-emitted byte-for-byte from the
// original source; only the binding that registers it with the routing table
// is synthesized, parameterized by the normalized types the inspect package
// resolved.
package synth

import (
	"bytes"
	"fmt"
	"go/ast"
	"go/printer"
	"go/token"
	"strings"

	"ascolt/internal/directive"
	"ascolt/internal/inspect"
)

// Input carries the per-file context synthesis needs: the file set and raw
// source for verbatim slicing, and the name under which the contract package
// is imported. An empty Alias means the declarations live in the contract
// package itself.
type Input struct {
	Fset  *token.FileSet
	Src   []byte
	Alias string
}

func (in Input) qualify(name string) string {
	if in.Alias == "" {
		return name
	}
	return in.Alias + "." + name
}

// slice returns the source text between two positions, verbatim.
func (in Input) slice(from, to token.Pos) string {
	f := in.Fset.File(from)
	return string(in.Src[f.Offset(from):f.Offset(to)])
}

func (in Input) exprText(expr ast.Expr) string {
	var buf bytes.Buffer
	if err := printer.Fprint(&buf, in.Fset, expr); err != nil {
		// Printing a parsed expression to a buffer cannot fail.
		panic(err)
	}
	return buf.String()
}

// exprTextStandalone prints an expression that was parsed outside the input
// file, e.g. from a directive attribute.
func (in Input) exprTextStandalone(expr ast.Expr) string {
	var buf bytes.Buffer
	if err := printer.Fprint(&buf, token.NewFileSet(), expr); err != nil {
		panic(err)
	}
	return buf.String()
}

// Handler emits the replacement declaration for one marked handler method:
// the method itself, unchanged, followed by an init function that binds it
// into the routing table. Doc comment lines other than the directive are kept.
func Handler(in Input, decl *ast.FuncDecl, dir directive.Directive) (string, error) {
	conv := inspect.Stateless
	if dir.Stateful {
		conv = inspect.StatefulExternal
	}

	types, roles, err := inspect.Resolve(decl, conv)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString(docWithoutDirective(decl.Doc))
	b.WriteString(in.slice(decl.Pos(), decl.End()))
	b.WriteString("\n\n")
	b.WriteString(in.registration(decl, dir, types, roles))
	return b.String(), nil
}

// registration builds the init block binding the method under its normalized
// type parameters. The adapter closure receives the canonical parameter forms
// and bridges back to whatever reference forms the method declares.
func (in Input) registration(decl *ast.FuncDecl, dir directive.Directive, types inspect.HandlerTypes, roles inspect.Roles) string {
	actorName := adapterActorName(roles)

	// Canonical adapter parameters: actor, then state when stateful, then msg.
	params := []string{fmt.Sprintf("%s *%s", actorName, in.exprText(types.Actor))}
	if types.State != nil {
		params = append(params, fmt.Sprintf("state *%s", in.exprText(types.State)))
	}
	params = append(params, fmt.Sprintf("msg %s", in.exprText(types.Message)))

	var register, retType string
	switch {
	case dir.Kind == directive.AskHandler && types.State == nil:
		register = "RegisterAsk"
		retType = in.slice(decl.Type.Results.List[0].Type.Pos(), decl.Type.Results.List[0].Type.End())
	case dir.Kind == directive.AskHandler:
		register = "RegisterAskStateful"
		retType = in.slice(decl.Type.Results.List[0].Type.Pos(), decl.Type.Results.List[0].Type.End())
	case types.State == nil:
		register = "RegisterTell"
		retType = fmt.Sprintf("%s[%s, %s]", in.qualify("Result"), in.qualify("Unit"), in.exprText(types.Err))
	default:
		register = "RegisterTellStateful"
		retType = fmt.Sprintf("%s[%s, %s]", in.qualify("Result"), in.qualify("Unit"), in.exprText(types.Err))
	}

	setup, args := in.callArguments(roles, actorName, types.State != nil)

	call := fmt.Sprintf("%s.%s(%s)", actorName, decl.Name.Name, strings.Join(args, ", "))
	if dir.Kind == directive.TellHandler {
		call += ".Discard()"
	}

	var b strings.Builder
	b.WriteString("func init() {\n")
	fmt.Fprintf(&b, "\t%s(func(%s) %s {\n", in.qualify(register), strings.Join(params, ", "), retType)
	for _, line := range setup {
		b.WriteString("\t\t" + line + "\n")
	}
	b.WriteString("\t\treturn " + call + "\n")
	b.WriteString("\t})\n")
	b.WriteString("}")
	return b.String()
}

// Verbatim re-emits a declaration unchanged, keeping doc lines other than
// directives.
func Verbatim(in Input, doc *ast.CommentGroup, node ast.Node) string {
	return docWithoutDirective(doc) + in.slice(node.Pos(), node.End())
}

// callArguments maps the canonical adapter parameters onto the method's
// declared parameter list, in declaration order. Classified parameters are
// re-referenced to the depth the method declares; unclassified parameters are
// passed as zero values. A parameter named "state" is only classified when
// the convention binds it; otherwise it is unclassified like any other name.
func (in Input) callArguments(roles inspect.Roles, actorName string, stateful bool) (setup, args []string) {
	for i := range roles.All {
		p := &roles.All[i]
		switch {
		case roles.Msg != nil && p.Name == roles.Msg.Name && p.Name != "":
			lines, arg := bridge("msg", inspect.RefDepth(p.Type))
			setup = append(setup, lines...)
			args = append(args, arg)
		case stateful && roles.State != nil && p.Name == roles.State.Name && p.Name != "":
			// Canonical state is already one reference deep.
			lines, arg := bridgeFrom("state", 1, inspect.RefDepth(p.Type))
			setup = append(setup, lines...)
			args = append(args, arg)
		default:
			name := zeroName(p.Name, i, actorName)
			setup = append(setup, fmt.Sprintf("var %s %s", name, in.exprText(p.Type)))
			args = append(args, name)
		}
	}
	return setup, args
}

// bridge converts a canonical by-value parameter to the declared reference depth.
func bridge(name string, depth int) (setup []string, arg string) {
	return bridgeFrom(name, 0, depth)
}

// bridgeFrom converts a parameter held at reference depth have to depth want.
// Deepening past one level needs addressable temporaries.
func bridgeFrom(name string, have, want int) (setup []string, arg string) {
	switch {
	case want == have:
		return nil, name
	case want == have-1:
		return nil, "*" + name
	case want == have+1:
		return nil, "&" + name
	}
	// want > have+1: chain temporaries so each level stays addressable.
	cur := name
	for i := have + 1; i < want; i++ {
		next := fmt.Sprintf("%s%d", name, i)
		setup = append(setup, fmt.Sprintf("%s := &%s", next, cur))
		cur = next
	}
	return setup, "&" + cur
}

// zeroName picks the variable name for an unclassified parameter's zero value,
// avoiding the adapter's own parameter names.
func zeroName(name string, index int, actorName string) string {
	if name == "" || name == "_" || name == "msg" || name == "state" || name == actorName {
		return fmt.Sprintf("arg%d", index)
	}
	return name
}

// adapterActorName returns a name for the adapter's actor parameter that no
// declared parameter shadows.
func adapterActorName(roles inspect.Roles) string {
	name := "a"
	for taken(roles, name) {
		name += "a"
	}
	return name
}

func taken(roles inspect.Roles, name string) bool {
	for _, p := range roles.All {
		if p.Name == name {
			return true
		}
	}
	return false
}

// docWithoutDirective re-emits a doc comment minus its marker line. The
// trailing newline keeps the comment attached to the declaration.
func docWithoutDirective(doc *ast.CommentGroup) string {
	if doc == nil {
		return ""
	}
	var b strings.Builder
	for _, c := range doc.List {
		if directive.IsDirective(c.Text) {
			continue
		}
		b.WriteString(c.Text)
		b.WriteString("\n")
	}
	return b.String()
}
