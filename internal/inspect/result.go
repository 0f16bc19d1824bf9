package inspect

import (
	"fmt"
	"go/ast"
)

const resultName = "Result"

// DecomposeResult splits a handler's declared return type into its success and
// error types. The return type must be a single value whose type is a named
// generic Result with exactly two type arguments, read positionally as
// (success, error).
func DecomposeResult(results *ast.FieldList) (success, errType ast.Expr, err error) {
	if results == nil || len(results.List) == 0 {
		return nil, nil, ErrMissingReturnType
	}
	if len(results.List) > 1 || len(results.List[0].Names) > 1 {
		return nil, nil, fmt.Errorf("%w, not a multi-value return", ErrInvalidReturnType)
	}

	switch rt := results.List[0].Type.(type) {
	case *ast.IndexListExpr:
		if !isResult(rt.X) {
			return nil, nil, fmt.Errorf("%w, got %s", ErrInvalidReturnType, typeName(rt.X))
		}
		if len(rt.Indices) != 2 {
			return nil, nil, fmt.Errorf("%w, expected 2 type arguments, got %d", ErrInvalidReturnType, len(rt.Indices))
		}
		return rt.Indices[0], rt.Indices[1], nil
	case *ast.IndexExpr:
		// One type argument: Result[R] is missing its error type.
		if !isResult(rt.X) {
			return nil, nil, fmt.Errorf("%w, got %s", ErrInvalidReturnType, typeName(rt.X))
		}
		return nil, nil, fmt.Errorf("%w, missing error type argument", ErrInvalidReturnType)
	default:
		return nil, nil, fmt.Errorf("%w, got %s", ErrInvalidReturnType, typeName(results.List[0].Type))
	}
}

// isResult accepts the bare and package-qualified spellings of the Result
// type name.
func isResult(x ast.Expr) bool {
	switch n := x.(type) {
	case *ast.Ident:
		return n.Name == resultName
	case *ast.SelectorExpr:
		return n.Sel.Name == resultName
	}
	return false
}

func typeName(x ast.Expr) string {
	switch n := x.(type) {
	case *ast.Ident:
		return n.Name
	case *ast.SelectorExpr:
		if pkg, ok := n.X.(*ast.Ident); ok {
			return pkg.Name + "." + n.Sel.Name
		}
		return n.Sel.Name
	}
	return fmt.Sprintf("%T", x)
}
