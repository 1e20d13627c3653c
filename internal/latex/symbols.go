package latex

import (
	"strings"
	"unicode"
)

var greek = map[string]string{
	"alpha": `\alpha`, "beta": `\beta`, "gamma": `\gamma`, "delta": `\delta`,
	"epsilon": `\epsilon`, "zeta": `\zeta`, "eta": `\eta`, "theta": `\theta`,
	"iota": `\iota`, "kappa": `\kappa`, "lambda": `\lambda`, "lamda": `\lambda`,
	"mu": `\mu`, "nu": `\nu`, "xi": `\xi`, "omicron": `o`, "pi": `\pi`,
	"rho": `\rho`, "sigma": `\sigma`, "tau": `\tau`, "upsilon": `\upsilon`,
	"phi": `\phi`, "chi": `\chi`, "psi": `\psi`, "omega": `\omega`,

	"Alpha": `A`, "Beta": `B`, "Gamma": `\Gamma`, "Delta": `\Delta`,
	"Epsilon": `E`, "Zeta": `Z`, "Eta": `H`, "Theta": `\Theta`, "Iota": `I`,
	"Kappa": `K`, "Lambda": `\Lambda`, "Mu": `M`, "Nu": `N`, "Xi": `\Xi`,
	"Omicron": `O`, "Pi": `\Pi`, "Rho": `P`, "Sigma": `\Sigma`, "Tau": `T`,
	"Upsilon": `\Upsilon`, "Phi": `\Phi`, "Chi": `X`, "Psi": `\Psi`,
	"Omega": `\Omega`,

	"oo": `\infty`,
}

// Functions with their own LaTeX operator.
var namedFunctions = map[string]string{
	"sin": `\sin`, "cos": `\cos`, "tan": `\tan`, "cot": `\cot`,
	"sec": `\sec`, "csc": `\csc`,
	"sinh": `\sinh`, "cosh": `\cosh`, "tanh": `\tanh`, "coth": `\coth`,
	"log": `\log`, "ln": `\log`,
}

// symbol renders an identifier. Trailing digits and "_" parts become a
// subscript ("x2" is x_{2}, "a_max" is a_{max}) and Greek letter names
// become their LaTeX commands.
func symbol(name string) (string, bool) {
	for _, r := range name {
		if r != '_' && !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return "", false
		}
	}

	parts := strings.Split(name, "_")
	base, subs := parts[0], parts[1:]

	if trimmed := strings.TrimRightFunc(base, unicode.IsDigit); trimmed != base && trimmed != "" {
		subs = append([]string{base[len(trimmed):]}, subs...)
		base = trimmed
	}
	if base == "" || !unicode.IsLetter([]rune(base)[0]) {
		return "", false
	}
	if g, ok := greek[base]; ok {
		base = g
	}

	var nonEmpty []string
	for _, s := range subs {
		if s == "" {
			continue
		}
		if g, ok := greek[s]; ok {
			s = g
		}
		nonEmpty = append(nonEmpty, s)
	}
	if len(nonEmpty) == 0 {
		return base, true
	}
	return base + "_{" + strings.Join(nonEmpty, " ") + "}", true
}

// functionHead renders the name part of a function application.
func functionHead(name string) (string, bool) {
	if head, ok := namedFunctions[name]; ok {
		return head, true
	}
	if len([]rune(name)) == 1 {
		return symbol(name)
	}
	for _, r := range name {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return "", false
		}
	}
	return `\operatorname{` + name + `}`, true
}
