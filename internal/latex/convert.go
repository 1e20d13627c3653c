package latex

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ironsheep/math-ocr-mcp/internal/config"
	"github.com/ironsheep/math-ocr-mcp/internal/logger"
)

// Delimiter wraps inline math.
const Delimiter = "$"

// Default conversion limits.
const (
	DefaultTimeout = 2 * time.Second
	DefaultWorkers = 4
)

// Result is the LaTeX for one source expression.
type Result struct {
	Source string `json:"source"`
	LaTeX  string `json:"latex"`
	// Fallback is set when LaTeX is the source wrapped verbatim.
	Fallback bool `json:"fallback"`
}

// Options tunes a Converter. Zero values pick the defaults.
type Options struct {
	Parser                 SymbolicParser
	Timeout                time.Duration
	Workers                int
	ImplicitMultiplication bool
}

// Converter turns expression strings into inline LaTeX. It holds no
// per-call state and is safe for concurrent use.
type Converter struct {
	parser      SymbolicParser
	timeout     time.Duration
	workers     int
	implicitMul bool
}

// NewConverter builds a Converter from opts.
func NewConverter(opts Options) *Converter {
	c := &Converter{
		parser:      opts.Parser,
		timeout:     opts.Timeout,
		workers:     opts.Workers,
		implicitMul: opts.ImplicitMultiplication,
	}
	if c.parser == nil {
		c.parser = ExprParser{}
	}
	if c.timeout <= 0 {
		c.timeout = DefaultTimeout
	}
	if c.workers <= 0 {
		c.workers = DefaultWorkers
	}
	return c
}

// FromConfig builds a Converter with the expr-lang parser and the
// configured limits.
func FromConfig(cfg *config.Config) *Converter {
	return NewConverter(Options{
		Timeout:                cfg.ConvertTimeout,
		Workers:                cfg.ConvertWorkers,
		ImplicitMultiplication: cfg.ImplicitMultiplication,
	})
}

// Wrap puts s between inline-math delimiters.
func Wrap(s string) string {
	return Delimiter + s + Delimiter
}

// Convert returns the LaTeX for expr. It always returns a result: parse
// failures, panics and timeouts all yield the wrapped original string.
func (c *Converter) Convert(ctx context.Context, expr string) Result {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	type outcome struct {
		latex string
		err   error
	}
	done := make(chan outcome, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- outcome{err: fmt.Errorf("panic: %v", r)}
			}
		}()
		s, err := c.typeset(expr)
		done <- outcome{latex: s, err: err}
	}()

	select {
	case o := <-done:
		if o.err != nil {
			return c.fallback(expr, o.err)
		}
		return Result{Source: expr, LaTeX: Wrap(o.latex)}
	case <-ctx.Done():
		return c.fallback(expr, ctx.Err())
	}
}

func (c *Converter) fallback(expr string, err error) Result {
	logger.WithFields(map[string]interface{}{
		"expression": expr,
		"error":      err.Error(),
	}).Debug("LaTeX conversion fell back to literal text")
	return Result{Source: expr, LaTeX: Wrap(expr), Fallback: true}
}

// typeset parses expr and renders it without delimiters.
func (c *Converter) typeset(expr string) (string, error) {
	sides := splitEquation(spaceEquals(expr))
	if len(sides) > 2 {
		return "", fmt.Errorf("expected at most one '=', found %d", len(sides)-1)
	}

	rendered := make([]string, len(sides))
	for i, side := range sides {
		side = strings.ReplaceAll(side, "^", "**")
		if c.implicitMul {
			side = insertImplicitMul(side)
		}
		node, err := c.parser.Parse(side)
		if err != nil {
			return "", err
		}
		s, _, err := render(node)
		if err != nil {
			return "", err
		}
		rendered[i] = s
	}
	return strings.Join(rendered, " = "), nil
}

// ConvertAll converts every expression concurrently. Result i belongs to
// exprs[i]; nothing is dropped.
func (c *Converter) ConvertAll(ctx context.Context, exprs []string) []Result {
	results := make([]Result, len(exprs))

	g := new(errgroup.Group)
	g.SetLimit(c.workers)
	for i, expr := range exprs {
		i, expr := i, expr
		g.Go(func() error {
			results[i] = c.Convert(ctx, expr)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

// Joined returns the LaTeX strings of results separated by newlines.
func Joined(results []Result) string {
	lines := make([]string, len(results))
	for i, r := range results {
		lines[i] = r.LaTeX
	}
	return strings.Join(lines, "\n")
}
