package inspect

import "go/ast"

// Normalize strips reference wrappers from a type expression, returning the
// innermost type. Pointer stars and grouping parens nest arbitrarily; a type
// with no wrapper is returned unchanged. Normalization never fails and is
// idempotent.
func Normalize(expr ast.Expr) ast.Expr {
	for {
		switch t := expr.(type) {
		case *ast.StarExpr:
			expr = t.X
		case *ast.ParenExpr:
			expr = t.X
		default:
			return expr
		}
	}
}

// RefDepth counts the pointer wrappers around a type expression. Grouping
// parens are transparent.
func RefDepth(expr ast.Expr) int {
	depth := 0
	for {
		switch t := expr.(type) {
		case *ast.StarExpr:
			depth++
			expr = t.X
		case *ast.ParenExpr:
			expr = t.X
		default:
			return depth
		}
	}
}
