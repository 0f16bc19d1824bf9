// Package directive recognizes ascolt generator directives in doc comments.
//
// A directive is a single comment line of the form
//
//	//ascolt:ask_handler [stateful]
//	//ascolt:tell_handler [stateful]
//	//ascolt:actor error=<Type>
//
// attached to the declaration it marks. Exactly one directive is allowed per
// declaration.
package directive

import (
	"errors"
	"fmt"
	"go/ast"
	"go/token"
	"strings"
)

const prefix = "//ascolt:"

var (
	// ErrUnknownDirective indicates an ascolt comment naming no known marker.
	ErrUnknownDirective = errors.New("unknown ascolt directive")
	// ErrMalformedDirective indicates a recognized marker with arguments that
	// do not parse.
	ErrMalformedDirective = errors.New("malformed ascolt directive")
)

// Kind identifies the marker attached to a declaration.
type Kind int

const (
	AskHandler Kind = iota
	TellHandler
	ActorMarker
)

func (k Kind) String() string {
	switch k {
	case AskHandler:
		return "ask_handler"
	case TellHandler:
		return "tell_handler"
	case ActorMarker:
		return "actor"
	}
	return "unknown"
}

// Directive is one parsed marker.
type Directive struct {
	Kind     Kind
	Stateful bool              // handler markers only
	Attrs    map[string]string // key=value arguments, e.g. error=WorkerError
	Pos      token.Pos
}

// Find scans a doc comment group for an ascolt directive. The boolean reports
// whether one was present; malformed or unknown markers are errors, ordinary
// comment lines are ignored.
func Find(doc *ast.CommentGroup) (Directive, bool, error) {
	if doc == nil {
		return Directive{}, false, nil
	}
	for _, c := range doc.List {
		if !strings.HasPrefix(c.Text, prefix) {
			continue
		}
		d, err := parse(strings.TrimPrefix(c.Text, prefix))
		if err != nil {
			return Directive{}, true, err
		}
		d.Pos = c.Pos()
		return d, true, nil
	}
	return Directive{}, false, nil
}

// IsDirective reports whether a comment line is an ascolt marker.
func IsDirective(text string) bool {
	return strings.HasPrefix(text, prefix)
}

func parse(text string) (Directive, error) {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return Directive{}, fmt.Errorf("%w: empty marker", ErrMalformedDirective)
	}

	var d Directive
	switch fields[0] {
	case "ask_handler":
		d.Kind = AskHandler
	case "tell_handler":
		d.Kind = TellHandler
	case "actor":
		d.Kind = ActorMarker
	default:
		return Directive{}, fmt.Errorf("%w: %q", ErrUnknownDirective, fields[0])
	}

	for _, arg := range fields[1:] {
		if arg == "stateful" {
			if d.Kind == ActorMarker {
				return Directive{}, fmt.Errorf("%w: %q does not take %q", ErrMalformedDirective, fields[0], arg)
			}
			d.Stateful = true
			continue
		}
		key, value, found := strings.Cut(arg, "=")
		if !found || key == "" || value == "" {
			return Directive{}, fmt.Errorf("%w: argument %q", ErrMalformedDirective, arg)
		}
		if d.Attrs == nil {
			d.Attrs = map[string]string{}
		}
		if _, dup := d.Attrs[key]; dup {
			return Directive{}, fmt.Errorf("%w: duplicate argument %q", ErrMalformedDirective, key)
		}
		d.Attrs[key] = value
	}
	return d, nil
}
