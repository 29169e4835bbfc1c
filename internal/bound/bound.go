// Package bound turns the raw text of an integration limit into a value.
//
// Parse never fails: text that cannot be read as a limit comes back as an
// Unparsable bound, and empty text as an Absent one.
package bound

import (
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/njchilds90/integral/internal/symbolic"
)

// Kind classifies a parsed limit.
type Kind int

const (
	Absent Kind = iota
	Finite
	PosInf
	NegInf
	Unparsable
)

func (k Kind) String() string {
	switch k {
	case Absent:
		return "absent"
	case Finite:
		return "finite"
	case PosInf:
		return "+oo"
	case NegInf:
		return "-oo"
	}
	return "unparsable"
}

// Bound is one endpoint of an integration range. Value is set for
// Finite, PosInf and NegInf.
type Bound struct {
	Kind  Kind
	Value symbolic.Expr
}

// Usable reports whether the bound carries a value.
func (b Bound) Usable() bool {
	return b.Kind == Finite || b.Kind == PosInf || b.Kind == NegInf
}

// Infinite reports whether the bound is ±oo.
func (b Bound) Infinite() bool {
	return b.Kind == PosInf || b.Kind == NegInf
}

var (
	posSpellings = map[string]bool{"oo": true, "+oo": true, "∞": true, "+∞": true, "infinity": true, "+infinity": true}
	negSpellings = map[string]bool{"-oo": true, "-∞": true, "-infinity": true}
)

func infinite(sign int) Bound {
	if sign < 0 {
		return Bound{Kind: NegInf, Value: symbolic.NegInfinity()}
	}
	return Bound{Kind: PosInf, Value: symbolic.Infinity()}
}

// Parse reads a limit using the integrand's symbol table. Recognised
// infinity spellings and the constants e and pi are matched before the
// expression parser; a plain float literal is tried last.
func Parse(text string, table *symbolic.Table) (b Bound) {
	defer func() {
		if r := recover(); r != nil {
			b = Bound{Kind: Unparsable}
		}
	}()

	text = strings.TrimSpace(norm.NFC.String(text))
	if text == "" {
		return Bound{Kind: Absent}
	}
	lower := strings.ToLower(text)
	switch {
	case posSpellings[lower]:
		return infinite(1)
	case negSpellings[lower]:
		return infinite(-1)
	case lower == "e":
		return Bound{Kind: Finite, Value: symbolic.E()}
	case lower == "pi":
		return Bound{Kind: Finite, Value: symbolic.Pi()}
	}

	if e, err := symbolic.Parse(text, table); err == nil {
		e = symbolic.Simplify(e)
		if sign, ok := symbolic.IsInfinite(e); ok {
			return infinite(sign)
		}
		if !symbolic.IsUndefined(e) && len(symbolic.FreeSymbols(e)) == 0 {
			return Bound{Kind: Finite, Value: e}
		}
	}

	f, err := strconv.ParseFloat(text, 64)
	if err != nil || math.IsNaN(f) {
		return Bound{Kind: Unparsable}
	}
	if math.IsInf(f, 0) {
		return infinite(int(math.Copysign(1, f)))
	}
	return Bound{Kind: Finite, Value: symbolic.NFloat(f)}
}
