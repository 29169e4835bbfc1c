package bound_test

import (
	"testing"

	"github.com/njchilds90/integral/internal/bound"
	"github.com/njchilds90/integral/internal/symbolic"
)

var table = symbolic.NewTable(symbolic.S("x"))

func TestParse_InfinitySpellings(t *testing.T) {
	for _, text := range []string{"oo", "+oo", "infinity", "Infinity", "INFINITY", "∞", "+∞", " oo ", "inf"} {
		b := bound.Parse(text, table)
		if b.Kind != bound.PosInf {
			t.Errorf("%q: want +oo, got %s", text, b.Kind)
		}
		if b.Value.String() != "oo" {
			t.Errorf("%q: want value oo, got %s", text, b.Value)
		}
	}
	for _, text := range []string{"-oo", "-infinity", "-∞", "-inf"} {
		b := bound.Parse(text, table)
		if b.Kind != bound.NegInf {
			t.Errorf("%q: want -oo, got %s", text, b.Kind)
		}
		if b.Value.String() != "-oo" {
			t.Errorf("%q: want value -oo, got %s", text, b.Value)
		}
	}
}

func TestParse_Absent(t *testing.T) {
	for _, text := range []string{"", "   ", "\t\n"} {
		if b := bound.Parse(text, table); b.Kind != bound.Absent {
			t.Errorf("%q: want absent, got %s", text, b.Kind)
		}
	}
}

func TestParse_Finite(t *testing.T) {
	cases := []struct {
		text, want string
	}{
		{"1", "1"},
		{"-3.5", "-7/2"},
		{"e", "E"},
		{"E", "E"},
		{"pi", "pi"},
		{"PI", "pi"},
		{"2*pi", "2*pi"},
		{"2pi", "2*pi"},
		{"sqrt(4)", "2"},
		{"1/3", "1/3"},
		{"1e3", "1000"},
	}
	for _, c := range cases {
		b := bound.Parse(c.text, table)
		if b.Kind != bound.Finite {
			t.Errorf("%q: want finite, got %s", c.text, b.Kind)
			continue
		}
		if b.Value.String() != c.want {
			t.Errorf("%q: want %s, got %s", c.text, c.want, b.Value)
		}
	}
}

func TestParse_Unparsable(t *testing.T) {
	for _, text := range []string{"x^^2", "abc", "nan", "1/0", "foo(1)", "x", "(("} {
		if b := bound.Parse(text, table); b.Kind != bound.Unparsable {
			t.Errorf("%q: want unparsable, got %s", text, b.Kind)
		}
	}
}

func TestBound_Predicates(t *testing.T) {
	cases := []struct {
		kind             bound.Kind
		usable, infinite bool
	}{
		{bound.Absent, false, false},
		{bound.Finite, true, false},
		{bound.PosInf, true, true},
		{bound.NegInf, true, true},
		{bound.Unparsable, false, false},
	}
	for _, c := range cases {
		b := bound.Bound{Kind: c.kind}
		if b.Usable() != c.usable {
			t.Errorf("%s: want usable=%v", c.kind, c.usable)
		}
		if b.Infinite() != c.infinite {
			t.Errorf("%s: want infinite=%v", c.kind, c.infinite)
		}
	}
}
