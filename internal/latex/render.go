package latex

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/expr-lang/expr/ast"
)

// Binding strength of a rendered fragment, loosest first.
const (
	precRelation = iota + 1
	precAdd
	precMul
	precNeg
	precPow
	precAtom
)

var relations = map[string]string{
	"==": "=",
	"!=": `\neq`,
	"<":  "<",
	">":  ">",
	"<=": `\leq`,
	">=": `\geq`,
}

// UnsupportedError reports a syntax node the renderer cannot typeset.
type UnsupportedError struct {
	What string
}

func (e *UnsupportedError) Error() string {
	return "unsupported " + e.What
}

func unsupported(format string, args ...interface{}) error {
	return &UnsupportedError{What: fmt.Sprintf(format, args...)}
}

func paren(s string) string {
	return `\left(` + s + `\right)`
}

// render typesets n and returns the fragment with its binding strength.
func render(n ast.Node) (string, int, error) {
	switch n := n.(type) {
	case *ast.IntegerNode:
		if n.Value < 0 {
			return "- " + strconv.Itoa(-n.Value), precNeg, nil
		}
		return strconv.Itoa(n.Value), precAtom, nil

	case *ast.FloatNode:
		if n.Value < 0 {
			return "- " + formatFloat(-n.Value), precNeg, nil
		}
		return formatFloat(n.Value), precAtom, nil

	case *ast.IdentifierNode:
		s, ok := symbol(n.Value)
		if !ok {
			return "", 0, unsupported("identifier %q", n.Value)
		}
		return s, precAtom, nil

	case *ast.UnaryNode:
		return renderUnary(n)

	case *ast.BinaryNode:
		return renderBinary(n)

	case *ast.CallNode:
		callee, ok := n.Callee.(*ast.IdentifierNode)
		if !ok {
			return "", 0, unsupported("call on %T", n.Callee)
		}
		return renderFunction(callee.Value, n.Arguments)

	case *ast.BuiltinNode:
		return renderFunction(n.Name, n.Arguments)

	default:
		return "", 0, unsupported("node %T", n)
	}
}

func formatFloat(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

func renderUnary(n *ast.UnaryNode) (string, int, error) {
	s, p, err := render(n.Node)
	if err != nil {
		return "", 0, err
	}
	switch n.Operator {
	case "+":
		return s, p, nil
	case "-":
		if p < precMul || p == precNeg {
			s = paren(s)
		}
		return "- " + s, precNeg, nil
	default:
		return "", 0, unsupported("unary operator %q", n.Operator)
	}
}

func renderBinary(n *ast.BinaryNode) (string, int, error) {
	l, lp, err := render(n.Left)
	if err != nil {
		return "", 0, err
	}
	r, rp, err := render(n.Right)
	if err != nil {
		return "", 0, err
	}

	switch op := n.Operator; op {
	case "+", "-":
		if lp < precAdd {
			l = paren(l)
		}
		if rp < precAdd || rp == precNeg || (op == "-" && rp == precAdd) {
			r = paren(r)
		}
		return l + " " + op + " " + r, precAdd, nil

	case "*":
		if lp < precMul {
			l = paren(l)
		}
		if rp < precMul || rp == precNeg {
			r = paren(r)
		}
		sep := " "
		if startsWithDigit(r) {
			sep = ` \cdot `
		}
		return l + sep + r, precMul, nil

	case "/":
		return `\frac{` + l + `}{` + r + `}`, precMul, nil

	case "%":
		if lp < precMul {
			l = paren(l)
		}
		if rp <= precMul || rp == precNeg {
			r = paren(r)
		}
		return l + ` \bmod ` + r, precMul, nil

	case "**", "^":
		if lp < precAtom {
			l = paren(l)
		}
		return l + "^{" + r + "}", precPow, nil

	default:
		rel, ok := relations[op]
		if !ok {
			return "", 0, unsupported("binary operator %q", op)
		}
		if lp <= precRelation {
			l = paren(l)
		}
		if rp <= precRelation {
			r = paren(r)
		}
		return l + " " + rel + " " + r, precRelation, nil
	}
}

func startsWithDigit(s string) bool {
	return s != "" && s[0] >= '0' && s[0] <= '9'
}

func renderFunction(name string, args []ast.Node) (string, int, error) {
	rendered := make([]string, len(args))
	for i, a := range args {
		s, _, err := render(a)
		if err != nil {
			return "", 0, err
		}
		rendered[i] = s
	}

	if len(rendered) == 1 {
		a := rendered[0]
		switch name {
		case "sqrt":
			return `\sqrt{` + a + `}`, precAtom, nil
		case "abs", "Abs":
			return `\left|{` + a + `}\right|`, precAtom, nil
		case "floor":
			return `\left\lfloor{` + a + `}\right\rfloor`, precAtom, nil
		case "ceil", "ceiling":
			return `\left\lceil{` + a + `}\right\rceil`, precAtom, nil
		case "exp":
			return "e^{" + a + "}", precPow, nil
		}
	}

	switch name {
	case "max", "Max", "min", "Min":
		if len(rendered) == 0 {
			return "", 0, unsupported("%s without arguments", name)
		}
		return `\` + strings.ToLower(name) + `\left(` + strings.Join(rendered, ", ") + `\right)`, precAtom, nil
	}

	head, ok := functionHead(name)
	if !ok {
		return "", 0, unsupported("function %q", name)
	}
	return head + `{\left(` + strings.Join(rendered, ", ") + ` \right)}`, precAtom, nil
}
