// Package symbolic is a deterministic, rule-based symbolic math kernel.
//
// Design goals:
//   - Exact rational arithmetic (math/big.Rat)
//   - Deterministic simplification and stable output
//   - Extended reals: signed infinities usable as integration bounds
//   - LaTeX rendering for display, plain rendering for keys and tests
//
// Every constructor returns a simplified tree; trees are never mutated
// after construction, so they are safe to share between goroutines.
package symbolic

import (
	"fmt"
	"math"
	"math/big"
	"strconv"
)

// ============================================================
// Core Interface
// ============================================================

type Expr interface {
	Simplify() Expr
	String() string
	LaTeX() string
	Sub(varName string, value Expr) Expr
	Diff(varName string) Expr
	Float() (float64, bool)
	Equal(other Expr) bool
}

// ============================================================
// Num — exact rational number
// ============================================================

type Num struct{ val *big.Rat }

func N(n int64) *Num { return &Num{val: new(big.Rat).SetInt64(n)} }
func F(p, q int64) *Num {
	if q == 0 {
		panic("symbolic: denominator is zero")
	}
	return &Num{val: new(big.Rat).SetFrac(big.NewInt(p), big.NewInt(q))}
}

// NRat wraps a copy of r.
func NRat(r *big.Rat) *Num { return &Num{val: new(big.Rat).Set(r)} }

// NFloat converts f through its shortest decimal form, so 0.1 becomes 1/10
// rather than the exact binary fraction.
func NFloat(f float64) *Num {
	r, ok := new(big.Rat).SetString(strconv.FormatFloat(f, 'g', -1, 64))
	if !ok {
		r = new(big.Rat).SetFloat64(f)
	}
	return &Num{val: r}
}

func (n *Num) Simplify() Expr        { return n }
func (n *Num) Sub(string, Expr) Expr { return n }
func (n *Num) Diff(string) Expr      { return N(0) }
func (n *Num) Float() (float64, bool) {
	f, _ := n.val.Float64()
	return f, true
}
func (n *Num) Equal(other Expr) bool { o, ok := other.(*Num); return ok && n.val.Cmp(o.val) == 0 }
func (n *Num) IsZero() bool          { return n.val.Sign() == 0 }
func (n *Num) IsOne() bool           { return n.val.Cmp(big.NewRat(1, 1)) == 0 }
func (n *Num) IsNegOne() bool        { return n.val.Cmp(big.NewRat(-1, 1)) == 0 }
func (n *Num) IsInteger() bool       { return n.val.IsInt() }
func (n *Num) IsPositive() bool      { return n.val.Sign() > 0 }
func (n *Num) IsNegative() bool      { return n.val.Sign() < 0 }
func (n *Num) Rat() *big.Rat         { return new(big.Rat).Set(n.val) }

func (n *Num) String() string {
	if n.val.IsInt() {
		return n.val.Num().String()
	}
	return n.val.RatString()
}

func (n *Num) LaTeX() string {
	if n.val.IsInt() {
		return n.val.Num().String()
	}
	sign := ""
	v := new(big.Rat).Set(n.val)
	if v.Sign() < 0 {
		sign = "-"
		v.Neg(v)
	}
	return fmt.Sprintf("%s\\frac{%s}{%s}", sign, v.Num().String(), v.Denom().String())
}

// int64Value reports the value of an integral Num that fits in an int64.
func (n *Num) int64Value() (int64, bool) {
	if !n.val.IsInt() || !n.val.Num().IsInt64() {
		return 0, false
	}
	return n.val.Num().Int64(), true
}

func numAdd(a, b *Num) *Num { return &Num{val: new(big.Rat).Add(a.val, b.val)} }
func numSub(a, b *Num) *Num { return &Num{val: new(big.Rat).Sub(a.val, b.val)} }
func numMul(a, b *Num) *Num { return &Num{val: new(big.Rat).Mul(a.val, b.val)} }
func numNeg(a *Num) *Num    { return &Num{val: new(big.Rat).Neg(a.val)} }
func numRecip(a *Num) *Num {
	if a.IsZero() {
		panic("symbolic: division by zero")
	}
	return &Num{val: new(big.Rat).Inv(a.val)}
}
func numDiv(a, b *Num) *Num { return numMul(a, numRecip(b)) }
func numAbs(a *Num) *Num {
	r := new(big.Rat).Set(a.val)
	if r.Sign() < 0 {
		r.Neg(r)
	}
	return &Num{val: r}
}
func numCmp(a, b *Num) int { return a.val.Cmp(b.val) }

// ============================================================
// Sym — symbolic variable
// ============================================================

type Sym struct{ name string }

func S(name string) *Sym      { return &Sym{name: name} }
func (s *Sym) Simplify() Expr { return s }
func (s *Sym) String() string { return s.name }
func (s *Sym) LaTeX() string  { return s.name }
func (s *Sym) Float() (float64, bool) {
	return 0, false
}
func (s *Sym) Equal(other Expr) bool { o, ok := other.(*Sym); return ok && s.name == o.name }
func (s *Sym) Name() string          { return s.name }
func (s *Sym) Sub(varName string, value Expr) Expr {
	if s.name == varName {
		return value
	}
	return s
}
func (s *Sym) Diff(varName string) Expr {
	if s.name == varName {
		return N(1)
	}
	return N(0)
}

// ============================================================
// Const — named real constants (pi, E)
// ============================================================

type Const struct{ name string }

var (
	piConst = &Const{name: "pi"}
	eConst  = &Const{name: "E"}
)

func Pi() *Const { return piConst }
func E() *Const  { return eConst }

func (c *Const) Simplify() Expr        { return c }
func (c *Const) String() string        { return c.name }
func (c *Const) Sub(string, Expr) Expr { return c }
func (c *Const) Diff(string) Expr      { return N(0) }
func (c *Const) Equal(other Expr) bool { o, ok := other.(*Const); return ok && c.name == o.name }

func (c *Const) LaTeX() string {
	if c.name == "pi" {
		return `\pi`
	}
	return "e"
}

func (c *Const) Float() (float64, bool) {
	if c.name == "pi" {
		return math.Pi, true
	}
	return math.E, true
}

// ============================================================
// Inf — signed infinity
// ============================================================

type Inf struct{ sign int }

var (
	posInf = &Inf{sign: 1}
	negInf = &Inf{sign: -1}
)

func Infinity() *Inf    { return posInf }
func NegInfinity() *Inf { return negInf }

func infOf(sign int) *Inf {
	if sign < 0 {
		return negInf
	}
	return posInf
}

func (i *Inf) Simplify() Expr        { return i }
func (i *Inf) Sub(string, Expr) Expr { return i }
func (i *Inf) Diff(string) Expr      { return N(0) }
func (i *Inf) Sign() int             { return i.sign }
func (i *Inf) Equal(other Expr) bool { o, ok := other.(*Inf); return ok && i.sign == o.sign }
func (i *Inf) Float() (float64, bool) {
	return math.Inf(i.sign), true
}

func (i *Inf) String() string {
	if i.sign < 0 {
		return "-oo"
	}
	return "oo"
}

func (i *Inf) LaTeX() string {
	if i.sign < 0 {
		return `-\infty`
	}
	return `\infty`
}

// ============================================================
// Undefined — indeterminate result (oo - oo, 0*oo, 0^-1, ...)
// ============================================================

type Undefined struct{}

var undefined = &Undefined{}

func NaN() *Undefined { return undefined }

func (u *Undefined) Simplify() Expr         { return u }
func (u *Undefined) String() string         { return "nan" }
func (u *Undefined) LaTeX() string          { return `\text{NaN}` }
func (u *Undefined) Sub(string, Expr) Expr  { return u }
func (u *Undefined) Diff(string) Expr       { return u }
func (u *Undefined) Float() (float64, bool) { return math.NaN(), false }
func (u *Undefined) Equal(other Expr) bool  { _, ok := other.(*Undefined); return ok }

// IsUndefined reports whether e contains an indeterminate sub-expression.
func IsUndefined(e Expr) bool {
	found := false
	walk(e, func(n Expr) bool {
		if _, ok := n.(*Undefined); ok {
			found = true
		}
		return !found
	})
	return found
}

// IsInfinite reports the sign of e when e is a signed infinity.
func IsInfinite(e Expr) (int, bool) {
	if i, ok := e.(*Inf); ok {
		return i.sign, true
	}
	return 0, false
}

func isNumEqual(e Expr, v int64) bool {
	n, ok := e.(*Num)
	return ok && n.val.Cmp(big.NewRat(v, 1)) == 0
}

func isNumRat(e Expr, p, q int64) bool {
	n, ok := e.(*Num)
	return ok && n.val.Cmp(big.NewRat(p, q)) == 0
}
