package symbolic

import (
	"math"
)

// ============================================================
// Top-level helpers
// ============================================================

func Simplify(e Expr) Expr { return e.Simplify() }
func String(e Expr) string { return e.String() }
func LaTeX(e Expr) string  { return e.LaTeX() }

func Sub(expr Expr, varName string, value Expr) Expr {
	return expr.Sub(varName, value).Simplify()
}

func Diff(expr Expr, varName string) Expr {
	return expr.Diff(varName).Simplify()
}

func DiffN(expr Expr, varName string, n int) Expr {
	result := expr
	for i := 0; i < n; i++ {
		result = Diff(result, varName)
	}
	return result
}

// walk visits e in preorder; fn returning false skips the node's children.
func walk(e Expr, fn func(Expr) bool) {
	if !fn(e) {
		return
	}
	for _, c := range children(e) {
		walk(c, fn)
	}
}

func children(e Expr) []Expr {
	switch v := e.(type) {
	case *Add:
		return v.terms
	case *Mul:
		return v.factors
	case *Pow:
		return []Expr{v.base, v.exp}
	case *Func:
		return []Expr{v.arg}
	}
	return nil
}

// ============================================================
// Free Symbols
// ============================================================

func FreeSymbols(e Expr) map[string]struct{} {
	result := map[string]struct{}{}
	walk(e, func(n Expr) bool {
		if s, ok := n.(*Sym); ok {
			result[s.name] = struct{}{}
		}
		return true
	})
	return result
}

func dependsOn(e Expr, varName string) bool {
	found := false
	walk(e, func(n Expr) bool {
		if s, ok := n.(*Sym); ok && s.name == varName {
			found = true
		}
		return !found
	})
	return found
}

// ============================================================
// Expansion
// ============================================================

func Expand(e Expr) Expr { return expandExpr(e).Simplify() }

func expandExpr(e Expr) Expr {
	switch v := e.(type) {
	case *Mul:
		expanded := make([]Expr, len(v.factors))
		for i, f := range v.factors {
			expanded[i] = expandExpr(f)
		}
		for i, f := range expanded {
			if a, ok := f.(*Add); ok {
				rest := make([]Expr, 0, len(expanded)-1)
				for j, ef := range expanded {
					if j != i {
						rest = append(rest, ef)
					}
				}
				terms := make([]Expr, len(a.terms))
				for k, t := range a.terms {
					terms[k] = expandExpr(MulOf(append([]Expr{t}, rest...)...))
				}
				return expandExpr(AddOf(terms...))
			}
		}
		return MulOf(expanded...)
	case *Add:
		newTerms := make([]Expr, len(v.terms))
		for i, t := range v.terms {
			newTerms[i] = expandExpr(t)
		}
		return AddOf(newTerms...)
	case *Pow:
		base := expandExpr(v.base)
		if _, sum := base.(*Add); sum {
			if n, ok := exactInt(v.exp); ok && n >= 0 && n <= 10 {
				result := Expr(N(1))
				for i := 0; i < n; i++ {
					result = distribute(result, base)
				}
				return result
			}
		}
		return PowOf(base, v.exp)
	case *Func:
		return funcOf(v.name, expandExpr(v.arg)).Simplify()
	}
	return e
}

// distribute multiplies two expanded expressions term by term. Products
// are formed pairwise so a sum is never squared through MulOf.
func distribute(a, b Expr) Expr {
	at, bt := termsOf(a), termsOf(b)
	out := make([]Expr, 0, len(at)*len(bt))
	for _, x := range at {
		for _, y := range bt {
			out = append(out, expandExpr(MulOf(x, y)))
		}
	}
	return AddOf(out...)
}

func termsOf(e Expr) []Expr {
	if a, ok := e.(*Add); ok {
		return a.terms
	}
	return []Expr{e}
}

// ============================================================
// Deep Simplification and Trig Identities
// ============================================================

// TrigSimplify applies c*sin(u)^2 + c*cos(u)^2 = c.
func TrigSimplify(e Expr) Expr {
	return trigSimplifyExpr(e.Simplify()).Simplify()
}

func trigSimplifyExpr(e Expr) Expr {
	switch v := e.(type) {
	case *Add:
		newTerms := make([]Expr, len(v.terms))
		for i, t := range v.terms {
			newTerms[i] = trigSimplifyExpr(t)
		}
		return trigFindPythagorean(AddOf(newTerms...))
	case *Mul:
		newFactors := make([]Expr, len(v.factors))
		for i, f := range v.factors {
			newFactors[i] = trigSimplifyExpr(f)
		}
		return MulOf(newFactors...)
	case *Pow:
		return PowOf(trigSimplifyExpr(v.base), v.exp)
	case *Func:
		return funcOf(v.name, trigSimplifyExpr(v.arg)).Simplify()
	}
	return e
}

func trigFindPythagorean(e Expr) Expr {
	add, ok := e.(*Add)
	if !ok {
		return e
	}
	type trigTerm struct {
		funcName string
		argStr   string
		coeff    *Num
		idx      int
	}
	var trigTerms []trigTerm
	for idx, t := range add.terms {
		coeff, inner := extractCoefficient(t)
		p, ok := inner.(*Pow)
		if !ok || !isNumEqual(p.exp, 2) {
			continue
		}
		if fn, ok := p.base.(*Func); ok && (fn.name == "sin" || fn.name == "cos") {
			trigTerms = append(trigTerms, trigTerm{fn.name, fn.arg.String(), coeff, idx})
		}
	}
	for i := 0; i < len(trigTerms); i++ {
		for j := i + 1; j < len(trigTerms); j++ {
			ti, tj := trigTerms[i], trigTerms[j]
			if ti.argStr == tj.argStr && ti.funcName != tj.funcName && numCmp(ti.coeff, tj.coeff) == 0 {
				newTerms := []Expr{}
				for idx, t := range add.terms {
					if idx != ti.idx && idx != tj.idx {
						newTerms = append(newTerms, t)
					}
				}
				newTerms = append(newTerms, ti.coeff)
				return AddOf(newTerms...)
			}
		}
	}
	return e
}

// DeepSimplify applies repeated simplification and trig passes until
// stable, and prefers the expanded form when it prints shorter.
func DeepSimplify(e Expr) Expr {
	prev := ""
	curr := e.Simplify()
	for i := 0; i < 10; i++ {
		str := curr.String()
		if str == prev {
			break
		}
		prev = str
		curr = TrigSimplify(curr)
		if expanded := TrigSimplify(Expand(curr)); len(expanded.String()) < len(curr.String()) {
			curr = expanded
		}
	}
	return curr
}

// ============================================================
// Numeric evaluation
// ============================================================

// FloatAt evaluates e numerically with varName bound to x. The result may
// be ±Inf; NaN and unbound symbols report false.
func FloatAt(e Expr, varName string, x float64) (float64, bool) {
	switch v := e.(type) {
	case *Sym:
		if v.name == varName {
			return x, true
		}
		return 0, false
	case *Add:
		acc := 0.0
		for _, t := range v.terms {
			f, ok := FloatAt(t, varName, x)
			if !ok {
				return 0, false
			}
			acc += f
		}
		return acc, !math.IsNaN(acc)
	case *Mul:
		acc := 1.0
		for _, t := range v.factors {
			f, ok := FloatAt(t, varName, x)
			if !ok {
				return 0, false
			}
			acc *= f
		}
		return acc, !math.IsNaN(acc)
	case *Pow:
		b, ok1 := FloatAt(v.base, varName, x)
		p, ok2 := FloatAt(v.exp, varName, x)
		if !ok1 || !ok2 {
			return 0, false
		}
		r := math.Pow(b, p)
		return r, !math.IsNaN(r)
	case *Func:
		a, ok := FloatAt(v.arg, varName, x)
		if !ok {
			return 0, false
		}
		return evalFunc(v.name, a)
	}
	return e.Float()
}
