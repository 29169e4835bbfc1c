package render_test

import (
	"strings"
	"testing"

	"github.com/njchilds90/integral/internal/render"
	"github.com/njchilds90/integral/internal/symbolic"
)

func TestRender(t *testing.T) {
	x := symbolic.S("x")
	cases := []struct {
		e    symbolic.Expr
		want string
	}{
		{symbolic.LogOf(x), `\ln{\left(x \right)}`},
		{symbolic.LogOf(symbolic.AbsOf(x)), `\ln{\left(\left|{x}\right| \right)}`},
		{symbolic.SinOf(x), `\sin{\left(x \right)}`},
		{symbolic.PowOf(x, symbolic.N(2)), `x^{2}`},
		{symbolic.Infinity(), `\infty`},
	}
	for _, c := range cases {
		if got := render.Render(c.e); got != c.want {
			t.Errorf("Render(%s): want %s, got %s", c.e, c.want, got)
		}
	}
}

func TestRender_EveryLog(t *testing.T) {
	x := symbolic.S("x")
	e := symbolic.AddOf(symbolic.LogOf(x), symbolic.LogOf(symbolic.AddOf(x, symbolic.N(1))))
	got := render.Render(e)
	if strings.Contains(got, `\log`) {
		t.Errorf("want no \\log in %s", got)
	}
	if strings.Count(got, `\ln`) != 2 {
		t.Errorf("want two \\ln in %s", got)
	}
}
