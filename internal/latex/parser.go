package latex

import (
	"errors"
	"fmt"

	"github.com/expr-lang/expr/ast"
	"github.com/expr-lang/expr/parser"
)

// SymbolicParser turns one side of an expression into a syntax tree.
// Implementations must not simplify or evaluate.
type SymbolicParser interface {
	Parse(s string) (ast.Node, error)
}

// ExprParser parses with the expr-lang grammar. Only the parser runs; no
// program is compiled and nothing is evaluated.
type ExprParser struct{}

var errEmptyExpression = errors.New("empty expression")

// Parse implements SymbolicParser.
func (ExprParser) Parse(s string) (ast.Node, error) {
	if s == "" {
		return nil, errEmptyExpression
	}
	tree, err := parser.Parse(s)
	if err != nil {
		return nil, fmt.Errorf("parse %q: %w", s, err)
	}
	return tree.Node, nil
}
