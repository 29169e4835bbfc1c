package classify_test

import (
	"reflect"
	"testing"

	"github.com/njchilds90/integral/internal/classify"
)

func TestMethods(t *testing.T) {
	cases := []struct {
		in   string
		want []classify.Method
	}{
		{"sin(x)*cos(x)", []classify.Method{classify.TrigIdentities, classify.USubstitution}},
		{"x*sin(x)", []classify.Method{classify.ByParts}},
		{"x*log(x)", []classify.Method{classify.ByParts, classify.USubstitution}},
		{"1/(x^2+1)", []classify.Method{classify.PartialFractions}},
		{"sqrt(1-x^2)", []classify.Method{classify.USubstitution}},
		{"sqrt(1-sin(x)^2)", []classify.Method{classify.TrigSubstitution, classify.USubstitution}},
		{"exp(x)", []classify.Method{classify.USubstitution}},
		{"tan(x)*sec(x)", []classify.Method{classify.TrigIdentities}},
		{"sin(x)", []classify.Method{classify.USubstitution}},
		{"SIN(X)*COS(X)", []classify.Method{classify.TrigIdentities, classify.USubstitution}},
		{"x^2", []classify.Method{}},
		{"", []classify.Method{}},
	}
	for _, c := range cases {
		got := classify.Methods(c.in)
		if !reflect.DeepEqual(got, c.want) {
			t.Errorf("Methods(%q): want %v, got %v", c.in, c.want, got)
		}
	}
}

func TestMethods_DeterministicNoDuplicates(t *testing.T) {
	for _, in := range []string{"x*log(x)/(x^2+1)", "sin(x)*cos(x)*exp(x)", "x*exp(x)*sin(x)", "sqrt(x+1)/x"} {
		first := classify.Methods(in)
		second := classify.Methods(in)
		if !reflect.DeepEqual(first, second) {
			t.Errorf("%q: %v then %v", in, first, second)
		}
		seen := map[classify.Method]bool{}
		for _, m := range first {
			if seen[m] {
				t.Errorf("%q: duplicate %s in %v", in, m, first)
			}
			seen[m] = true
		}
	}
}

func ruleByName(t *testing.T, name string) classify.Rule {
	t.Helper()
	for _, r := range classify.Rules {
		if r.Name == name {
			return r
		}
	}
	t.Fatalf("no rule %q", name)
	return classify.Rule{}
}

func TestRule_Trigonometric(t *testing.T) {
	r := ruleByName(t, "trigonometric")
	cases := []struct {
		in   string
		want classify.Method
		ok   bool
	}{
		{"sqrt(1+tan(x))", classify.TrigSubstitution, true},
		{"sin(x)*cos(x)", classify.TrigIdentities, true},
		{"sin(x)", "", false},
		{"sqrt(x+1)", "", false},
	}
	for _, c := range cases {
		got, ok := r.Match(c.in, nil)
		if got != c.want || ok != c.ok {
			t.Errorf("%q: want (%q, %v), got (%q, %v)", c.in, c.want, c.ok, got, ok)
		}
	}
}

func TestRule_ByParts(t *testing.T) {
	r := ruleByName(t, "by-parts")
	for in, want := range map[string]bool{
		"log(x)":     true,
		"x*exp(x)":   true,
		"x*e^x":      true,
		"exp(x)*x":   false,
		"sin(x)":     false,
		"log(2)":     false,
		"x^2*cos(x)": false,
	} {
		if _, ok := r.Match(in, nil); ok != want {
			t.Errorf("%q: want %v, got %v", in, want, ok)
		}
	}
}

func TestRule_PartialFractions(t *testing.T) {
	r := ruleByName(t, "partial-fractions")
	for in, want := range map[string]bool{
		"1/(x+1)":     true,
		"1/x^2":       true,
		"1/x**2":      true,
		"1/x":         false,
		"1/(x+1)/x":   false,
		"(x+1)/x":     false,
		"x^2":         false,
	} {
		if _, ok := r.Match(in, nil); ok != want {
			t.Errorf("%q: want %v, got %v", in, want, ok)
		}
	}
}

func TestRule_CallParenthesisYields(t *testing.T) {
	r := ruleByName(t, "call-parenthesis")
	if _, ok := r.Match("sin(x)", nil); !ok {
		t.Error("want match for sin(x)")
	}
	if _, ok := r.Match("sin(x)", []classify.Method{classify.ByParts}); ok {
		t.Error("want no match after Integration by Parts")
	}
	if _, ok := r.Match("sin(2)", nil); ok {
		t.Error("want no match without x")
	}
}
