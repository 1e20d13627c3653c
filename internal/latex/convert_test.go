package latex

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/expr-lang/expr/ast"

	"github.com/ironsheep/math-ocr-mcp/internal/config"
)

func newTestConverter() *Converter {
	return NewConverter(Options{ImplicitMultiplication: true})
}

func TestConvert(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"2+2", `$2 + 2$`},
		{"y = 2x + 3", `$y = 2 x + 3$`},
		{"2 + 2 = 4", `$2 + 2 = 4$`},
		{"x^2 + 1", `$x^{2} + 1$`},
		{"x**2", `$x^{2}$`},
		{"(a+b)^2", `$\left(a + b\right)^{2}$`},
		{"x^(n+1)", `$x^{n + 1}$`},
		{"a/b", `$\frac{a}{b}$`},
		{"(a+b)/2", `$\frac{a + b}{2}$`},
		{"10 / 2", `$\frac{10}{2}$`},
		{"7 % 3", `$7 \bmod 3$`},
		{"2*3", `$2 \cdot 3$`},
		{"2(x+1)", `$2 \left(x + 1\right)$`},
		{"(x+1)(x-1)", `$\left(x + 1\right) \left(x - 1\right)$`},
		{"a - (b + c)", `$a - \left(b + c\right)$`},
		{"a + (b - c)", `$a + b - c$`},
		{"1.5x", `$1.5 x$`},
		{"sin(x)", `$\sin{\left(x \right)}$`},
		{"2sin(x)", `$2 \sin{\left(x \right)}$`},
		{"sqrt(16)", `$\sqrt{16}$`},
		{"f(x) = x^2", `$f{\left(x \right)} = x^{2}$`},
		{"alpha + beta", `$\alpha + \beta$`},
		{"theta1 + x_2", `$\theta_{1} + x_{2}$`},
		{"x <= 3", `$x \leq 3$`},
		{"x != y", `$x \neq y$`},
		{"x == 3", `$x = 3$`},
		{"total = a + b", `$total = a + b$`},
	}
	c := newTestConverter()
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := c.Convert(context.Background(), tt.in)
			if got.LaTeX != tt.want {
				t.Errorf("got %s, want %s", got.LaTeX, tt.want)
			}
			if got.Fallback {
				t.Error("unexpected fallback")
			}
			if got.Source != tt.in {
				t.Errorf("source: got %q", got.Source)
			}
		})
	}
}

func TestConvert_NeverEvaluates(t *testing.T) {
	got := newTestConverter().Convert(context.Background(), "2+2")
	if strings.Contains(got.LaTeX, "4") {
		t.Errorf("expression was evaluated: %s", got.LaTeX)
	}
}

func TestConvert_Fallback(t *testing.T) {
	tests := []string{
		"3 =+= x",
		"x = 1 = 2",
		"hello world",
		"x =",
		"",
		"a and b",
		`"quoted"`,
	}
	c := newTestConverter()
	for _, in := range tests {
		t.Run(in, func(t *testing.T) {
			got := c.Convert(context.Background(), in)
			if got.LaTeX != "$"+in+"$" {
				t.Errorf("got %s, want literal wrap", got.LaTeX)
			}
			if !got.Fallback {
				t.Error("expected Fallback to be set")
			}
		})
	}
}

func TestConvert_FallbackIsNotEscaped(t *testing.T) {
	got := newTestConverter().Convert(context.Background(), "$x$")
	if got.LaTeX != "$$x$$" {
		t.Errorf("got %s, want $$x$$", got.LaTeX)
	}
	if !got.Fallback {
		t.Error("expected Fallback to be set")
	}
}

func TestConvert_Delimited(t *testing.T) {
	inputs := []string{"2+2", "3 =+= x", "", "$", "y = 2x + 3", "((((", "ư = 5"}
	c := newTestConverter()
	for _, in := range inputs {
		got := c.Convert(context.Background(), in).LaTeX
		if len(got) < 2 || !strings.HasPrefix(got, "$") || !strings.HasSuffix(got, "$") {
			t.Errorf("%q: result %q is not delimited", in, got)
		}
	}
}

func TestConvert_Idempotent(t *testing.T) {
	c := newTestConverter()
	for _, in := range []string{"y = 2x + 3", "3 =+= x", "sin(x)/2"} {
		a := c.Convert(context.Background(), in)
		b := c.Convert(context.Background(), in)
		if a != b {
			t.Errorf("%q: %+v != %+v", in, a, b)
		}
	}
}

func TestConvert_WithoutImplicitMultiplication(t *testing.T) {
	c := NewConverter(Options{})
	got := c.Convert(context.Background(), "2x")
	if got.LaTeX != "$2x$" || !got.Fallback {
		t.Errorf("got %+v, want literal fallback", got)
	}
}

type slowParser struct {
	delay time.Duration
}

func (p slowParser) Parse(s string) (ast.Node, error) {
	time.Sleep(p.delay)
	return &ast.IdentifierNode{Value: "x"}, nil
}

type panickingParser struct{}

func (panickingParser) Parse(string) (ast.Node, error) {
	panic("boom")
}

type nodeParser struct {
	node ast.Node
}

func (p nodeParser) Parse(string) (ast.Node, error) {
	return p.node, nil
}

func TestConvert_Timeout(t *testing.T) {
	c := NewConverter(Options{Parser: slowParser{delay: 500 * time.Millisecond}, Timeout: 10 * time.Millisecond})

	start := time.Now()
	got := c.Convert(context.Background(), "x")
	if time.Since(start) > 400*time.Millisecond {
		t.Error("Convert did not return at the timeout")
	}
	if got.LaTeX != "$x$" || !got.Fallback {
		t.Errorf("got %+v, want fallback", got)
	}
}

func TestConvert_ParserPanic(t *testing.T) {
	c := NewConverter(Options{Parser: panickingParser{}})
	got := c.Convert(context.Background(), "a+b")
	if got.LaTeX != "$a+b$" || !got.Fallback {
		t.Errorf("got %+v, want fallback", got)
	}
}

func TestConvert_UnsupportedNode(t *testing.T) {
	c := NewConverter(Options{Parser: nodeParser{node: &ast.StringNode{Value: "s"}}})
	got := c.Convert(context.Background(), "whatever")
	if got.LaTeX != "$whatever$" || !got.Fallback {
		t.Errorf("got %+v, want fallback", got)
	}
}

func TestConvertAll_PreservesOrder(t *testing.T) {
	exprs := []string{"a+b", "3 =+= x", "x^2", "y = 2x + 3", "", "c/d"}
	c := NewConverter(Options{ImplicitMultiplication: true, Workers: 3})

	results := c.ConvertAll(context.Background(), exprs)
	if len(results) != len(exprs) {
		t.Fatalf("got %d results, want %d", len(results), len(exprs))
	}
	for i, r := range results {
		if r.Source != exprs[i] {
			t.Errorf("result %d: source %q, want %q", i, r.Source, exprs[i])
		}
		if want := c.Convert(context.Background(), exprs[i]); r != want {
			t.Errorf("result %d: got %+v, want %+v", i, r, want)
		}
	}
}

func TestConvertAll_Empty(t *testing.T) {
	results := newTestConverter().ConvertAll(context.Background(), nil)
	if results == nil || len(results) != 0 {
		t.Errorf("expected empty non-nil slice, got %#v", results)
	}
}

func TestJoined(t *testing.T) {
	results := []Result{{LaTeX: "$a$"}, {LaTeX: "$b + c$"}}
	if got := Joined(results); got != "$a$\n$b + c$" {
		t.Errorf("got %q", got)
	}
	if got := Joined(nil); got != "" {
		t.Errorf("empty: got %q", got)
	}
}

func TestFromConfig(t *testing.T) {
	cfg := config.Default()
	cfg.ConvertTimeout = 750 * time.Millisecond
	cfg.ConvertWorkers = 2
	cfg.ImplicitMultiplication = false

	c := FromConfig(cfg)
	if c.timeout != 750*time.Millisecond || c.workers != 2 || c.implicitMul {
		t.Errorf("unexpected converter: %+v", c)
	}
	if _, ok := c.parser.(ExprParser); !ok {
		t.Errorf("parser: got %T", c.parser)
	}
}
