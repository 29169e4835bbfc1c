package symbolic

import (
	"math"
	"math/big"
)

// ============================================================
// Func — named function applications
// ============================================================

type Func struct {
	name string
	arg  Expr
}

func funcOf(name string, arg Expr) *Func { return &Func{name: name, arg: arg} }

func SinOf(arg Expr) Expr  { return funcOf("sin", arg).Simplify() }
func CosOf(arg Expr) Expr  { return funcOf("cos", arg).Simplify() }
func TanOf(arg Expr) Expr  { return funcOf("tan", arg).Simplify() }
func ExpOf(arg Expr) Expr  { return funcOf("exp", arg).Simplify() }
func LogOf(arg Expr) Expr  { return funcOf("log", arg).Simplify() }
func SqrtOf(arg Expr) Expr { return PowOf(arg, F(1, 2)) }
func AbsOf(arg Expr) Expr  { return funcOf("abs", arg).Simplify() }
func AsinOf(arg Expr) Expr { return funcOf("asin", arg).Simplify() }
func AcosOf(arg Expr) Expr { return funcOf("acos", arg).Simplify() }
func AtanOf(arg Expr) Expr { return funcOf("atan", arg).Simplify() }
func SinhOf(arg Expr) Expr { return funcOf("sinh", arg).Simplify() }
func CoshOf(arg Expr) Expr { return funcOf("cosh", arg).Simplify() }
func TanhOf(arg Expr) Expr { return funcOf("tanh", arg).Simplify() }

// SecOf, CscOf and CotOf have no node of their own.
func SecOf(arg Expr) Expr { return PowOf(CosOf(arg), N(-1)) }
func CscOf(arg Expr) Expr { return PowOf(SinOf(arg), N(-1)) }
func CotOf(arg Expr) Expr { return MulOf(CosOf(arg), PowOf(SinOf(arg), N(-1))) }

var (
	oddFuncs  = map[string]bool{"sin": true, "tan": true, "asin": true, "atan": true, "sinh": true, "tanh": true}
	evenFuncs = map[string]bool{"cos": true, "cosh": true}
)

func (f *Func) Simplify() Expr {
	arg := f.arg.Simplify()
	if _, ok := arg.(*Undefined); ok {
		return undefined
	}
	if i, ok := arg.(*Inf); ok {
		return funcAtInfinity(f.name, i.sign)
	}
	if oddFuncs[f.name] || evenFuncs[f.name] {
		if pos, ok := negated(arg); ok {
			if oddFuncs[f.name] {
				return MulOf(N(-1), funcOf(f.name, pos).Simplify())
			}
			return funcOf(f.name, pos).Simplify()
		}
	}
	if v, ok := specialValue(f.name, arg); ok {
		return v
	}
	return &Func{name: f.name, arg: arg}
}

// negated returns -arg when arg carries a negative numeric coefficient.
func negated(arg Expr) (Expr, bool) {
	if n, ok := arg.(*Num); ok {
		if n.IsNegative() {
			return numNeg(n), true
		}
		return nil, false
	}
	if c, rest := extractCoefficient(arg); c.IsNegative() {
		return MulOf(numNeg(c), rest), true
	}
	return nil, false
}

func funcAtInfinity(name string, sign int) Expr {
	switch name {
	case "exp":
		if sign > 0 {
			return posInf
		}
		return N(0)
	case "log":
		if sign > 0 {
			return posInf
		}
	case "atan":
		return MulOf(F(int64(sign), 2), piConst)
	case "sinh":
		return infOf(sign)
	case "cosh", "abs":
		return posInf
	case "tanh":
		return N(int64(sign))
	}
	return undefined
}

func specialValue(name string, arg Expr) (Expr, bool) {
	switch name {
	case "sin", "cos", "tan":
		c, ok := piMultiple(arg)
		if !ok {
			return nil, false
		}
		switch name {
		case "sin":
			return sinOfPiMultiple(c)
		case "cos":
			return sinOfPiMultiple(numAdd(c, F(1, 2)))
		default:
			if c.IsInteger() {
				return N(0), true
			}
			s, ok1 := sinOfPiMultiple(c)
			co, ok2 := sinOfPiMultiple(numAdd(c, F(1, 2)))
			if ok1 && ok2 && !isNumEqual(co, 0) {
				return Divide(s, co), true
			}
		}
	case "exp":
		if isNumEqual(arg, 0) {
			return N(1), true
		}
		if isNumEqual(arg, 1) {
			return eConst, true
		}
		if inner, ok := arg.(*Func); ok && inner.name == "log" {
			return inner.arg, true
		}
		if m, ok := arg.(*Mul); ok && len(m.factors) == 2 {
			if c, ok1 := m.factors[0].(*Num); ok1 {
				if inner, ok2 := m.factors[1].(*Func); ok2 && inner.name == "log" {
					return PowOf(inner.arg, c), true
				}
			}
		}
	case "log":
		if isNumEqual(arg, 1) {
			return N(0), true
		}
		if isNumEqual(arg, 0) {
			return negInf, true
		}
		if c, ok := arg.(*Const); ok && c == eConst {
			return N(1), true
		}
		if inner, ok := arg.(*Func); ok && inner.name == "exp" {
			return inner.arg, true
		}
		if p, ok := arg.(*Pow); ok {
			if c, ok1 := p.base.(*Const); ok1 && c == eConst {
				return p.exp, true
			}
		}
	case "abs":
		switch a := arg.(type) {
		case *Num:
			return numAbs(a), true
		case *Const:
			return a, true
		case *Func:
			if a.name == "exp" || a.name == "abs" || a.name == "cosh" {
				return a, true
			}
		case *Mul:
			if c, rest := extractCoefficient(a); !c.IsOne() {
				return MulOf(numAbs(c), AbsOf(rest)), true
			}
		}
	case "asin":
		switch {
		case isNumEqual(arg, 0):
			return N(0), true
		case isNumEqual(arg, 1):
			return MulOf(F(1, 2), piConst), true
		case isNumRat(arg, 1, 2):
			return MulOf(F(1, 6), piConst), true
		}
	case "acos":
		switch {
		case isNumEqual(arg, 1):
			return N(0), true
		case isNumEqual(arg, 0):
			return MulOf(F(1, 2), piConst), true
		case isNumEqual(arg, -1):
			return piConst, true
		case isNumRat(arg, 1, 2):
			return MulOf(F(1, 3), piConst), true
		case isNumRat(arg, -1, 2):
			return MulOf(F(2, 3), piConst), true
		}
	case "atan":
		switch {
		case isNumEqual(arg, 0):
			return N(0), true
		case isNumEqual(arg, 1):
			return MulOf(F(1, 4), piConst), true
		}
	case "sinh", "tanh":
		if isNumEqual(arg, 0) {
			return N(0), true
		}
	case "cosh":
		if isNumEqual(arg, 0) {
			return N(1), true
		}
	}
	return nil, false
}

// piMultiple reports c when arg is exactly c*pi.
func piMultiple(arg Expr) (*Num, bool) {
	switch a := arg.(type) {
	case *Num:
		if a.IsZero() {
			return N(0), true
		}
	case *Const:
		if a == piConst {
			return N(1), true
		}
	case *Mul:
		if len(a.factors) == 2 {
			c, ok1 := a.factors[0].(*Num)
			k, ok2 := a.factors[1].(*Const)
			if ok1 && ok2 && k == piConst {
				return c, true
			}
		}
	}
	return nil, false
}

// sinOfPiMultiple evaluates sin(c*pi) for c a multiple of 1/6 or 1/4.
func sinOfPiMultiple(c *Num) (Expr, bool) {
	half3 := MulOf(F(1, 2), SqrtOf(N(3)))
	half2 := MulOf(F(1, 2), SqrtOf(N(2)))
	if k, ok := numMul(c, N(6)).int64Value(); ok {
		table := [12]Expr{N(0), F(1, 2), half3, N(1), half3, F(1, 2), N(0), F(-1, 2), MulOf(N(-1), half3), N(-1), MulOf(N(-1), half3), F(-1, 2)}
		return table[mod(k, 12)], true
	}
	if k, ok := numMul(c, N(4)).int64Value(); ok {
		switch mod(k, 8) {
		case 1, 3:
			return half2, true
		case 5, 7:
			return MulOf(N(-1), half2), true
		}
	}
	return nil, false
}

func mod(a, m int64) int64 {
	r := a % m
	if r < 0 {
		r += m
	}
	return r
}

func (f *Func) String() string { return f.name + "(" + f.arg.String() + ")" }

func (f *Func) latexHead() string {
	switch f.name {
	case "sin", "cos", "tan", "sinh", "cosh", "tanh", "log":
		return "\\" + f.name
	}
	return `\operatorname{` + f.name + `}`
}

func (f *Func) latexArg() string { return `{\left(` + f.arg.LaTeX() + ` \right)}` }

func (f *Func) LaTeX() string {
	switch f.name {
	case "exp":
		return "e^{" + f.arg.LaTeX() + "}"
	case "abs":
		return `\left|{` + f.arg.LaTeX() + `}\right|`
	}
	return f.latexHead() + f.latexArg()
}

func (f *Func) Sub(varName string, value Expr) Expr {
	return funcOf(f.name, f.arg.Sub(varName, value)).Simplify()
}

func (f *Func) Diff(varName string) Expr {
	du := f.arg.Diff(varName)
	var outer Expr
	switch f.name {
	case "sin":
		outer = CosOf(f.arg)
	case "cos":
		outer = MulOf(N(-1), SinOf(f.arg))
	case "tan":
		outer = AddOf(N(1), PowOf(TanOf(f.arg), N(2)))
	case "exp":
		outer = ExpOf(f.arg)
	case "log":
		outer = PowOf(f.arg, N(-1))
	case "abs":
		outer = MulOf(f.arg, PowOf(AbsOf(f.arg), N(-1)))
	case "asin":
		outer = PowOf(Subtract(N(1), PowOf(f.arg, N(2))), F(-1, 2))
	case "acos":
		outer = MulOf(N(-1), PowOf(Subtract(N(1), PowOf(f.arg, N(2))), F(-1, 2)))
	case "atan":
		outer = PowOf(AddOf(N(1), PowOf(f.arg, N(2))), N(-1))
	case "sinh":
		outer = CoshOf(f.arg)
	case "cosh":
		outer = SinhOf(f.arg)
	case "tanh":
		outer = Subtract(N(1), PowOf(TanhOf(f.arg), N(2)))
	default:
		return undefined
	}
	return MulOf(outer, du)
}

func (f *Func) Float() (float64, bool) {
	v, ok := f.arg.Float()
	if !ok {
		return 0, false
	}
	return evalFunc(f.name, v)
}

func evalFunc(name string, v float64) (float64, bool) {
	var r float64
	switch name {
	case "sin":
		r = math.Sin(v)
	case "cos":
		r = math.Cos(v)
	case "tan":
		r = math.Tan(v)
	case "exp":
		r = math.Exp(v)
	case "log":
		if v < 0 {
			return 0, false
		}
		r = math.Log(v)
	case "abs":
		r = math.Abs(v)
	case "asin":
		r = math.Asin(v)
	case "acos":
		r = math.Acos(v)
	case "atan":
		r = math.Atan(v)
	case "sinh":
		r = math.Sinh(v)
	case "cosh":
		r = math.Cosh(v)
	case "tanh":
		r = math.Tanh(v)
	default:
		return 0, false
	}
	return r, !math.IsNaN(r)
}

func (f *Func) Equal(other Expr) bool {
	o, ok := other.(*Func)
	return ok && f.name == o.name && f.arg.Equal(o.arg)
}

func (f *Func) FuncName() string { return f.name }
func (f *Func) Arg() Expr        { return f.arg }

// exactInt returns the integer value of a Num whose magnitude fits in an int.
func exactInt(e Expr) (int, bool) {
	n, ok := e.(*Num)
	if !ok || !n.val.IsInt() {
		return 0, false
	}
	z := n.val.Num()
	if z.CmpAbs(big.NewInt(1<<20)) > 0 {
		return 0, false
	}
	return int(z.Int64()), true
}
