// Package inspect classifies handler signatures and decomposes their return
// types into the facts the synthesizer needs: who receives the message, what
// state is threaded in, what the message is, and what the handler answers.
package inspect

import (
	"errors"
	"fmt"
	"go/ast"
)

const (
	stateParam = "state"
	msgParam   = "msg"
)

var (
	// ErrMissingReceiver indicates a handler marker on a plain function; every
	// handler acts on an actor instance.
	ErrMissingReceiver = errors.New("missing receiver")
	// ErrMissingMessageParameter indicates that no parameter named "msg" was found.
	ErrMissingMessageParameter = errors.New(`missing parameter named "msg"`)
	// ErrMissingStateParameter indicates a stateful handler with no parameter
	// named "state".
	ErrMissingStateParameter = errors.New(`missing parameter named "state"`)
	// ErrMissingReturnType indicates a handler that declares no return type.
	ErrMissingReturnType = errors.New("missing return type")
	// ErrInvalidReturnType indicates a return type that is not a two-argument
	// Result instantiation.
	ErrInvalidReturnType = errors.New("return type must be ascolt.Result[R, E]")
)

// Convention selects how a handler receives mutable state.
type Convention int

const (
	// Stateless handlers keep state inside the actor instance.
	Stateless Convention = iota
	// StatefulExternal handlers receive state as an explicit parameter on
	// every invocation.
	StatefulExternal
)

func (c Convention) String() string {
	if c == StatefulExternal {
		return "stateful"
	}
	return "stateless"
}

// Param is one classified parameter: its declared name and its type exactly
// as written.
type Param struct {
	Name string
	Type ast.Expr
}

// Roles is the role assignment over a handler's parameter list. Receiver is
// the method receiver type as written; State is set whenever a parameter named
// "state" exists, whether or not the convention binds it. All carries every
// declared parameter in order, classified ones included, so callers can
// reconstruct the original call shape.
type Roles struct {
	Receiver ast.Expr
	State    *Param
	Msg      *Param
	All      []Param
}

// ExtractRoles walks a function declaration's parameter list and assigns
// roles. The receiver is recognized structurally; "state" and "msg" are
// matched by their declared names. Other parameter names are inspected but not
// bound: extra parameters are permitted, only the required roles are enforced
// for the requested convention.
func ExtractRoles(decl *ast.FuncDecl, conv Convention) (Roles, error) {
	var roles Roles

	if decl.Recv == nil || len(decl.Recv.List) == 0 {
		return Roles{}, ErrMissingReceiver
	}
	roles.Receiver = decl.Recv.List[0].Type

	if decl.Type.Params != nil {
		for _, field := range decl.Type.Params.List {
			if len(field.Names) == 0 {
				roles.All = append(roles.All, Param{Type: field.Type})
				continue
			}
			for _, name := range field.Names {
				p := Param{Name: name.Name, Type: field.Type}
				roles.All = append(roles.All, p)
				switch name.Name {
				case stateParam:
					if roles.State == nil {
						roles.State = &roles.All[len(roles.All)-1]
					}
				case msgParam:
					if roles.Msg == nil {
						roles.Msg = &roles.All[len(roles.All)-1]
					}
				}
			}
		}
	}

	if roles.Msg == nil {
		return Roles{}, ErrMissingMessageParameter
	}
	if conv == StatefulExternal && roles.State == nil {
		return Roles{}, ErrMissingStateParameter
	}
	return roles, nil
}

// HandlerTypes is the fully resolved type record of one handler: every field
// normalized, State present iff the convention is stateful. Success is always
// resolved, even for tell handlers that go on to discard it.
type HandlerTypes struct {
	Actor   ast.Expr
	State   ast.Expr
	Message ast.Expr
	Success ast.Expr
	Err     ast.Expr
}

// Resolve runs role extraction and return-type decomposition over a handler
// declaration. It either produces a complete record or fails; partial results
// are never returned.
func Resolve(decl *ast.FuncDecl, conv Convention) (HandlerTypes, Roles, error) {
	roles, err := ExtractRoles(decl, conv)
	if err != nil {
		return HandlerTypes{}, Roles{}, fmt.Errorf("handler %s: %w", decl.Name.Name, err)
	}

	success, errType, err := DecomposeResult(decl.Type.Results)
	if err != nil {
		return HandlerTypes{}, Roles{}, fmt.Errorf("handler %s: %w", decl.Name.Name, err)
	}

	types := HandlerTypes{
		Actor:   Normalize(roles.Receiver),
		Message: Normalize(roles.Msg.Type),
		Success: success,
		Err:     errType,
	}
	if roles.State != nil && conv == StatefulExternal {
		types.State = Normalize(roles.State.Type)
	}
	return types, roles, nil
}
