// Package latex converts expression strings into inline LaTeX.
//
// Conversion parses the expression into a syntax tree without evaluating
// it, so "2+2" renders as "2 + 2" and never as "4". The tree is typeset in
// the usual computer-algebra conventions: products as juxtaposition,
// quotients as \frac, powers with braced exponents and parentheses only
// where precedence needs them.
//
// Convert never fails. Anything the parser cannot read, a panic, or a
// conversion that runs past its timeout falls back to the original string
// wrapped in $...$.
//
// The fallback wraps the source unchanged. Nothing is escaped, so "$x$"
// comes back as "$$x$$" and %, # or & reach the LaTeX output raw.
package latex
