package sanitize_test

import (
	"errors"
	"testing"

	"github.com/njchilds90/integral/internal/sanitize"
	"github.com/njchilds90/integral/internal/symbolic"
)

var (
	x     = symbolic.S("x")
	table = symbolic.NewTable(x)
)

func TestRewrite_Ln(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"ln(x)", "log(x)"},
		{"x*ln(x)+ln(2)", "x*log(x)+log(2)"},
		{"kln(x)", "klog(x)"},
		{"ln x", "ln x"},
		{"sin(x)", "sin(x)"},
	}
	for _, c := range cases {
		if got := sanitize.Rewrite(c.in); got != c.want {
			t.Errorf("Rewrite(%q): want %q, got %q", c.in, c.want, got)
		}
	}
}

func TestParse_Empty(t *testing.T) {
	for _, in := range []string{"", "  ", "\n"} {
		_, err := sanitize.Parse(in, table)
		if !errors.Is(err, sanitize.ErrEmpty) {
			t.Errorf("Parse(%q): want ErrEmpty, got %v", in, err)
		}
	}
}

func TestParse_NotUnderstood(t *testing.T) {
	for _, in := range []string{"x^^2", "sin(", "foo(x)", "x $ 1", "sin x"} {
		_, err := sanitize.Parse(in, table)
		if !errors.Is(err, sanitize.ErrNotUnderstood) {
			t.Errorf("Parse(%q): want ErrNotUnderstood, got %v", in, err)
		}
		if errors.Is(err, sanitize.ErrEmpty) {
			t.Errorf("Parse(%q): unexpected ErrEmpty", in)
		}
	}
}

func TestParse_ImplicitMultiplication(t *testing.T) {
	cases := []struct {
		in   string
		want symbolic.Expr
	}{
		{"2x", symbolic.MulOf(symbolic.N(2), x)},
		{"x sin(x)", symbolic.MulOf(x, symbolic.SinOf(x))},
		{"(x+1)(x-1)", symbolic.MulOf(symbolic.AddOf(x, symbolic.N(1)), symbolic.AddOf(x, symbolic.N(-1)))},
		{"ln(x)", symbolic.LogOf(x)},
		{"x**3", symbolic.PowOf(x, symbolic.N(3))},
	}
	for _, c := range cases {
		got, err := sanitize.Parse(c.in, table)
		if err != nil {
			t.Errorf("Parse(%q): %v", c.in, err)
			continue
		}
		if !got.Equal(c.want) {
			t.Errorf("Parse(%q): want %s, got %s", c.in, c.want, got)
		}
	}
}
