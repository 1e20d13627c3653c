package latex

import (
	"strings"
	"unicode"
)

// spaceEquals surrounds every standalone "=" with spaces. "==", "<=", ">="
// and "!=" are relations and stay as written.
func spaceEquals(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '=' && isStandaloneEquals(s, i) {
			b.WriteString(" = ")
			continue
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

func isStandaloneEquals(s string, i int) bool {
	if i > 0 && strings.IndexByte("=<>!", s[i-1]) >= 0 {
		return false
	}
	if i+1 < len(s) && s[i+1] == '=' {
		return false
	}
	return true
}

// splitEquation splits a spaced expression into its sides. A plain
// expression has one side and an equation two.
func splitEquation(spaced string) []string {
	parts := strings.Split(spaced, " = ")
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return parts
}

type tokenState int

const (
	inNone tokenState = iota
	inNumber
	inIdent
)

// insertImplicitMul writes the "*" that handwritten math leaves out:
// "2x" becomes "2*x", "3(x+1)" becomes "3*(x+1)" and ")(" becomes ")*(".
// Identifiers keep their digits ("x2") and a name before "(" stays a call.
// Exponent literals such as 1e5 are left alone.
func insertImplicitMul(s string) string {
	runes := []rune(s)
	var b strings.Builder
	state := inNone
	var prev rune

	for i := 0; i < len(runes); i++ {
		r := runes[i]

		if state == inNumber && isIdentStart(r) {
			if n := exponentLen(runes, i); n > 0 {
				b.WriteString(string(runes[i : i+n]))
				i += n - 1
				prev = runes[i]
				continue
			}
			b.WriteByte('*')
		} else if state == inNumber && r == '(' {
			b.WriteByte('*')
		} else if prev == ')' && (isIdentStart(r) || unicode.IsDigit(r) || r == '(') {
			b.WriteByte('*')
		}
		b.WriteRune(r)

		switch {
		case state == inIdent && (isIdentStart(r) || unicode.IsDigit(r)):
		case unicode.IsDigit(r) || (r == '.' && state == inNumber):
			state = inNumber
		case isIdentStart(r):
			state = inIdent
		default:
			state = inNone
		}
		prev = r
	}
	return b.String()
}

// exponentLen returns how many runes starting at i form the exponent part
// of a number ("e5", "E-3"), or 0 when runes[i] does not start one.
func exponentLen(runes []rune, i int) int {
	if runes[i] != 'e' && runes[i] != 'E' {
		return 0
	}
	j := i + 1
	if j < len(runes) && (runes[j] == '+' || runes[j] == '-') {
		j++
	}
	if j < len(runes) && unicode.IsDigit(runes[j]) {
		return j - i + 1
	}
	return 0
}

func isIdentStart(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}
