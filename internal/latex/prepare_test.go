package latex

import (
	"reflect"
	"testing"
)

func TestSpaceEquals(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"y=2", "y = 2"},
		{"y = 2", "y  =  2"},
		{"a==b", "a==b"},
		{"a<=b", "a<=b"},
		{"a>=b", "a>=b"},
		{"a!=b", "a!=b"},
		{"3 =+= x", "3  = + =  x"},
	}
	for _, tt := range tests {
		if got := spaceEquals(tt.in); got != tt.want {
			t.Errorf("spaceEquals(%q): got %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSplitEquation(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"y=2x+3", []string{"y", "2x+3"}},
		{"2+2", []string{"2+2"}},
		{"a==b", []string{"a==b"}},
		{"a=b=c", []string{"a", "b", "c"}},
		{"x=", []string{"x", ""}},
	}
	for _, tt := range tests {
		if got := splitEquation(spaceEquals(tt.in)); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("%q: got %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestInsertImplicitMul(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"2x", "2*x"},
		{"2x + 3", "2*x + 3"},
		{"3(x+1)", "3*(x+1)"},
		{"(a+b)(a-b)", "(a+b)*(a-b)"},
		{"(a+b)c", "(a+b)*c"},
		{"(a+b)2", "(a+b)*2"},
		{"x2", "x2"},
		{"x2y", "x2y"},
		{"sin(x)", "sin(x)"},
		{"2sin(x)", "2*sin(x)"},
		{"1.5x", "1.5*x"},
		{"1e5", "1e5"},
		{"2e-3x", "2e-3*x"},
		{"2e", "2*e"},
		{"2 x", "2 x"},
		{"2đ", "2*đ"},
	}
	for _, tt := range tests {
		if got := insertImplicitMul(tt.in); got != tt.want {
			t.Errorf("insertImplicitMul(%q): got %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSymbol(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"x", "x", true},
		{"x2", "x_{2}", true},
		{"x_1", "x_{1}", true},
		{"a_max", "a_{max}", true},
		{"alpha", `\alpha`, true},
		{"Delta", `\Delta`, true},
		{"theta12", `\theta_{12}`, true},
		{"total", "total", true},
		{"oo", `\infty`, true},
		{"12", "", false},
		{"_1", "", false},
		{"$env", "", false},
	}
	for _, tt := range tests {
		got, ok := symbol(tt.in)
		if ok != tt.ok || got != tt.want {
			t.Errorf("symbol(%q): got (%q, %v), want (%q, %v)", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}
