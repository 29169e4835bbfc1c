package symbolic

import "fmt"

// ============================================================
// Integration (rule-based symbolic)
// ============================================================

// maxIntegrateDepth bounds rule recursion (substitution, parts, rewrites).
const maxIntegrateDepth = 8

type integrator struct{ v *Sym }

type integrationRule func(in *integrator, e Expr, depth int) (Expr, bool)

// integrationRules run in order after linearity; the first success wins.
// The rules recurse through integrate, so the list is filled in init.
var integrationRules []integrationRule

func init() {
	integrationRules = []integrationRule{
		(*integrator).table,
		(*integrator).rational,
		(*integrator).trigPowers,
		(*integrator).expTrig,
		(*integrator).substitution,
		(*integrator).expanded,
		(*integrator).byParts,
	}
}

// Integrate returns an antiderivative of expr with respect to varName, or
// false when no rule produces a closed form.
func Integrate(expr Expr, varName string) (Expr, bool) {
	in := &integrator{v: S(varName)}
	r, ok := in.integrate(expr.Simplify(), 0)
	if !ok || IsUndefined(r) {
		return nil, false
	}
	return r, true
}

func (in *integrator) integrate(e Expr, depth int) (Expr, bool) {
	if depth > maxIntegrateDepth || IsUndefined(e) {
		return nil, false
	}
	if _, inf := IsInfinite(e); inf {
		return nil, false
	}
	if !dependsOn(e, in.v.name) {
		return MulOf(e, in.v), true
	}
	switch t := e.(type) {
	case *Add:
		terms := make([]Expr, len(t.terms))
		for i, term := range t.terms {
			r, ok := in.integrate(term, depth)
			if !ok {
				return nil, false
			}
			terms[i] = r
		}
		return AddOf(terms...), true
	case *Mul:
		var consts, rest []Expr
		for _, f := range t.factors {
			if dependsOn(f, in.v.name) {
				rest = append(rest, f)
			} else {
				consts = append(consts, f)
			}
		}
		if len(consts) > 0 {
			r, ok := in.integrate(MulOf(rest...), depth)
			if !ok {
				return nil, false
			}
			return MulOf(append(consts, r)...), true
		}
	}
	for _, rule := range integrationRules {
		if r, ok := rule(in, e, depth); ok {
			return r, true
		}
	}
	return nil, false
}

// linearCoeffs reports a and b with u = a*v + b, a non-zero and both free
// of v.
func (in *integrator) linearCoeffs(u Expr) (a, b Expr, ok bool) {
	if !dependsOn(u, in.v.name) {
		return nil, nil, false
	}
	a = Diff(u, in.v.name)
	if dependsOn(a, in.v.name) || isNumEqual(a, 0) || IsUndefined(a) {
		return nil, nil, false
	}
	b = Subtract(u, MulOf(a, in.v))
	if dependsOn(b, in.v.name) {
		return nil, nil, false
	}
	return a, b, true
}

// ============================================================
// Table of elementary antiderivatives with linear arguments
// ============================================================

func (in *integrator) table(e Expr, _ int) (Expr, bool) {
	v := in.v
	switch t := e.(type) {
	case *Sym:
		return MulOf(F(1, 2), PowOf(v, N(2))), true
	case *Pow:
		return in.tablePow(t)
	case *Func:
		a, _, ok := in.linearCoeffs(t.arg)
		if !ok {
			return nil, false
		}
		u := t.arg
		inv := PowOf(a, N(-1))
		var r Expr
		switch t.name {
		case "sin":
			r = MulOf(N(-1), CosOf(u))
		case "cos":
			r = SinOf(u)
		case "tan":
			r = MulOf(N(-1), LogOf(AbsOf(CosOf(u))))
		case "exp":
			r = ExpOf(u)
		case "log":
			r = Subtract(MulOf(u, LogOf(u)), u)
		case "sinh":
			r = CoshOf(u)
		case "cosh":
			r = SinhOf(u)
		case "tanh":
			r = LogOf(CoshOf(u))
		case "asin":
			r = AddOf(MulOf(u, AsinOf(u)), SqrtOf(Subtract(N(1), PowOf(u, N(2)))))
		case "acos":
			r = Subtract(MulOf(u, AcosOf(u)), SqrtOf(Subtract(N(1), PowOf(u, N(2)))))
		case "atan":
			r = Subtract(MulOf(u, AtanOf(u)), MulOf(F(1, 2), LogOf(AddOf(N(1), PowOf(u, N(2))))))
		case "abs":
			r = MulOf(F(1, 2), u, AbsOf(u))
		default:
			return nil, false
		}
		return MulOf(inv, r), true
	}
	return nil, false
}

func (in *integrator) tablePow(p *Pow) (Expr, bool) {
	// c^u
	if !dependsOn(p.base, in.v.name) {
		a, _, ok := in.linearCoeffs(p.exp)
		if !ok {
			return nil, false
		}
		return MulOf(p, PowOf(MulOf(a, LogOf(p.base)), N(-1))), true
	}
	if dependsOn(p.exp, in.v.name) {
		return nil, false
	}
	if a, _, ok := in.linearCoeffs(p.base); ok {
		u := p.base
		if isNumEqual(p.exp, -1) {
			return MulOf(PowOf(a, N(-1)), LogOf(AbsOf(u))), true
		}
		n1 := AddOf(p.exp, N(1))
		return MulOf(PowOf(MulOf(a, n1), N(-1)), PowOf(u, n1)), true
	}
	if f, ok := p.base.(*Func); ok {
		a, _, lin := in.linearCoeffs(f.arg)
		if !lin {
			return nil, false
		}
		inv := PowOf(a, N(-1))
		u := f.arg
		switch {
		case f.name == "cos" && isNumEqual(p.exp, -2):
			return MulOf(inv, TanOf(u)), true
		case f.name == "sin" && isNumEqual(p.exp, -2):
			return MulOf(N(-1), inv, CotOf(u)), true
		case f.name == "cos" && isNumEqual(p.exp, -1):
			return MulOf(inv, LogOf(AbsOf(AddOf(TanOf(u), SecOf(u))))), true
		case f.name == "sin" && isNumEqual(p.exp, -1):
			return MulOf(inv, LogOf(AbsOf(TanOf(MulOf(F(1, 2), u))))), true
		case f.name == "tan" && isNumEqual(p.exp, 2):
			return Subtract(MulOf(inv, TanOf(u)), in.v), true
		}
		return nil, false
	}
	if isNumRat(p.exp, -1, 2) {
		return in.inverseSqrtQuadratic(p.base)
	}
	return nil, false
}

// inverseSqrtQuadratic integrates 1/sqrt(a x^2 + b x + c).
func (in *integrator) inverseSqrtQuadratic(q Expr) (Expr, bool) {
	pq, ok := polyFrom(q, in.v.name)
	if !ok || pq.deg() != 2 {
		return nil, false
	}
	a, b, c := NRat(pq[2]), NRat(pq[1]), NRat(pq[0])
	lin := AddOf(MulOf(N(2), a, in.v), b)
	if a.IsPositive() {
		root := SqrtOf(a)
		inner := AddOf(MulOf(N(2), root, SqrtOf(q)), lin)
		return MulOf(PowOf(root, N(-1)), LogOf(AbsOf(inner))), true
	}
	// b^2 - 4ac
	disc := numSub(numMul(b, b), numMul(N(4), numMul(a, c)))
	if !disc.IsPositive() {
		return nil, false
	}
	arg := MulOf(N(-1), lin, PowOf(SqrtOf(disc), N(-1)))
	return MulOf(PowOf(SqrtOf(numNeg(a)), N(-1)), AsinOf(arg)), true
}

// ============================================================
// Rational functions
// ============================================================

func (in *integrator) rational(e Expr, _ int) (Expr, bool) {
	return integrateRational(e, in.v)
}

// ============================================================
// Trigonometric powers and products
// ============================================================

// trigFactor is sin(u)^n or cos(u)^n with n a non-negative integer.
type trigFactor struct {
	name string
	arg  Expr
	n    int
}

func asTrigFactor(e Expr) (trigFactor, bool) {
	n := 1
	base := e
	if p, ok := e.(*Pow); ok {
		k, ok2 := exactInt(p.exp)
		if !ok2 || k < 1 {
			return trigFactor{}, false
		}
		n, base = k, p.base
	}
	f, ok := base.(*Func)
	if !ok || (f.name != "sin" && f.name != "cos") {
		return trigFactor{}, false
	}
	return trigFactor{name: f.name, arg: f.arg, n: n}, true
}

func (in *integrator) trigPowers(e Expr, depth int) (Expr, bool) {
	factors := []Expr{e}
	if m, ok := e.(*Mul); ok {
		factors = m.factors
	}
	var tf []trigFactor
	for _, f := range factors {
		t, ok := asTrigFactor(f)
		if !ok {
			return nil, false
		}
		if _, _, lin := in.linearCoeffs(t.arg); !lin {
			return nil, false
		}
		tf = append(tf, t)
	}
	var rewritten Expr
	switch len(tf) {
	case 1:
		rewritten = reduceTrigPower(tf[0], trigFactor{name: "cos", arg: tf[0].arg, n: 0})
	case 2:
		s, c := tf[0], tf[1]
		if s.name == c.name && s.arg.Equal(c.arg) {
			return nil, false
		}
		if s.name == "cos" {
			s, c = c, s
		}
		if s.arg.Equal(c.arg) && s.name != c.name {
			rewritten = reduceTrigPower(s, c)
		} else if s.n == 1 && c.n == 1 {
			rewritten = productToSum(tf[0], tf[1])
		}
	}
	if rewritten == nil {
		return nil, false
	}
	return in.integrate(Expand(rewritten), depth+1)
}

// reduceTrigPower rewrites sin(u)^m cos(u)^n into a sum whose terms are
// either lower powers of cos(2u) or a single odd factor times a power of
// the other function. Nil means no useful rewrite exists.
func reduceTrigPower(s, c trigFactor) Expr {
	if s.name != "sin" {
		s, c = c, s
	}
	u := s.arg
	m, n := s.n, c.n
	switch {
	case m >= 3 && m%2 == 1:
		// sin^m = sin * (1 - cos^2)^((m-1)/2)
		return MulOf(SinOf(u), PowOf(Subtract(N(1), PowOf(CosOf(u), N(2))), N(int64((m-1)/2))), PowOf(CosOf(u), N(int64(n))))
	case n >= 3 && n%2 == 1:
		return MulOf(CosOf(u), PowOf(Subtract(N(1), PowOf(SinOf(u), N(2))), N(int64((n-1)/2))), PowOf(SinOf(u), N(int64(m))))
	case m%2 == 0 && n%2 == 0 && m+n >= 2:
		two := MulOf(N(2), u)
		sin2 := MulOf(F(1, 2), Subtract(N(1), CosOf(two)))
		cos2 := MulOf(F(1, 2), AddOf(N(1), CosOf(two)))
		return MulOf(PowOf(sin2, N(int64(m/2))), PowOf(cos2, N(int64(n/2))))
	}
	return nil
}

func productToSum(f, g trigFactor) Expr {
	sum := AddOf(f.arg, g.arg)
	diff := Subtract(f.arg, g.arg)
	half := F(1, 2)
	switch {
	case f.name == "sin" && g.name == "cos":
		return MulOf(half, AddOf(SinOf(sum), SinOf(diff)))
	case f.name == "cos" && g.name == "sin":
		return MulOf(half, Subtract(SinOf(sum), SinOf(diff)))
	case f.name == "sin" && g.name == "sin":
		return MulOf(half, Subtract(CosOf(diff), CosOf(sum)))
	default:
		return MulOf(half, AddOf(CosOf(diff), CosOf(sum)))
	}
}

// ============================================================
// exp(A) * sin(B), exp(A) * cos(B) with linear A, B
// ============================================================

func (in *integrator) expTrig(e Expr, _ int) (Expr, bool) {
	m, ok := e.(*Mul)
	if !ok || len(m.factors) != 2 {
		return nil, false
	}
	var ex, tr *Func
	for _, f := range m.factors {
		fn, ok := f.(*Func)
		if !ok {
			return nil, false
		}
		switch fn.name {
		case "exp":
			ex = fn
		case "sin", "cos":
			tr = fn
		}
	}
	if ex == nil || tr == nil {
		return nil, false
	}
	p, _, ok1 := in.linearCoeffs(ex.arg)
	q, _, ok2 := in.linearCoeffs(tr.arg)
	if !ok1 || !ok2 {
		return nil, false
	}
	den := PowOf(AddOf(PowOf(p, N(2)), PowOf(q, N(2))), N(-1))
	var inner Expr
	if tr.name == "sin" {
		inner = Subtract(MulOf(p, SinOf(tr.arg)), MulOf(q, CosOf(tr.arg)))
	} else {
		inner = AddOf(MulOf(p, CosOf(tr.arg)), MulOf(q, SinOf(tr.arg)))
	}
	return MulOf(ex, inner, den), true
}

// ============================================================
// U-substitution
// ============================================================

func (in *integrator) substitution(e Expr, depth int) (Expr, bool) {
	w := S(fmt.Sprintf("u'%d", depth))
	for _, g := range in.candidates(e) {
		dg := Diff(g, in.v.name)
		if isNumEqual(dg, 0) || IsUndefined(dg) {
			continue
		}
		ratio := Divide(e, dg)
		h := replaceSub(ratio, g, w)
		if dependsOn(h, in.v.name) || IsUndefined(h) {
			continue
		}
		sub := &integrator{v: w}
		r, ok := sub.integrate(h, depth+1)
		if !ok {
			continue
		}
		return r.Sub(w.name, g), true
	}
	return nil, false
}

// candidates lists the non-linear sub-expressions of e in preorder.
func (in *integrator) candidates(e Expr) []Expr {
	var out []Expr
	seen := map[string]bool{}
	walk(e, func(n Expr) bool {
		if n == e {
			return true
		}
		switch n.(type) {
		case *Num, *Sym, *Const, *Inf:
			return true
		}
		key := n.String()
		if seen[key] || !dependsOn(n, in.v.name) {
			return true
		}
		seen[key] = true
		if _, _, lin := in.linearCoeffs(n); !lin {
			out = append(out, n)
		}
		return true
	})
	return out
}

// replaceSub replaces every occurrence of g in e with w, matching powers
// of g (x^4 against x^2, exp(2x) against exp(x)) as powers of w.
func replaceSub(e, g, w Expr) Expr {
	if e.Equal(g) {
		return w
	}
	if gp, ok := g.(*Pow); ok {
		if ep, ok2 := e.(*Pow); ok2 && ep.base.Equal(gp.base) {
			if k, ok3 := Divide(ep.exp, gp.exp).(*Num); ok3 {
				return PowOf(w, k)
			}
		}
	}
	if gf, ok := g.(*Func); ok && gf.name == "exp" {
		if ef, ok2 := e.(*Func); ok2 && ef.name == "exp" {
			if k, ok3 := Divide(ef.arg, gf.arg).(*Num); ok3 {
				return PowOf(w, k)
			}
		}
	}
	switch t := e.(type) {
	case *Add:
		terms := make([]Expr, len(t.terms))
		for i, x := range t.terms {
			terms[i] = replaceSub(x, g, w)
		}
		return AddOf(terms...)
	case *Mul:
		factors := make([]Expr, len(t.factors))
		for i, x := range t.factors {
			factors[i] = replaceSub(x, g, w)
		}
		return MulOf(factors...)
	case *Pow:
		return PowOf(replaceSub(t.base, g, w), replaceSub(t.exp, g, w))
	case *Func:
		return funcOf(t.name, replaceSub(t.arg, g, w)).Simplify()
	}
	return e
}

// ============================================================
// Expansion fallback
// ============================================================

func (in *integrator) expanded(e Expr, depth int) (Expr, bool) {
	ex := Expand(e)
	if ex.String() == e.String() {
		return nil, false
	}
	return in.integrate(ex, depth+1)
}

// ============================================================
// Integration by parts
// ============================================================

// liateRank orders candidate u factors: logarithms, inverse trig, then
// algebraic powers of the variable.
func (in *integrator) liateRank(f Expr) int {
	switch t := f.(type) {
	case *Func:
		switch t.name {
		case "log":
			return 0
		case "asin", "acos", "atan":
			return 1
		}
	case *Sym:
		if t.name == in.v.name {
			return 2
		}
	case *Pow:
		if s, ok := t.base.(*Sym); ok && s.name == in.v.name {
			if k, ok2 := exactInt(t.exp); ok2 && k > 0 {
				return 2
			}
		}
	}
	return -1
}

func (in *integrator) byParts(e Expr, depth int) (Expr, bool) {
	factors := []Expr{e}
	if m, ok := e.(*Mul); ok {
		factors = m.factors
	}
	best, bestRank := -1, 3
	for i, f := range factors {
		if r := in.liateRank(f); r >= 0 && r < bestRank {
			best, bestRank = i, r
		}
	}
	if best < 0 {
		return nil, false
	}
	u := factors[best]
	rest := make([]Expr, 0, len(factors))
	rest = append(rest, N(1))
	for i, f := range factors {
		if i != best {
			rest = append(rest, f)
		}
	}
	dv := MulOf(rest...)
	if bestRank == 2 && isNumEqual(dv, 1) {
		return nil, false
	}
	vInt, ok := in.integrate(dv, depth+1)
	if !ok {
		return nil, false
	}
	du := Diff(u, in.v.name)
	remaining, ok := in.integrate(MulOf(vInt, du), depth+1)
	if !ok {
		return nil, false
	}
	return Subtract(MulOf(u, vInt), remaining), true
}
