package symbolic

import (
	"math"
	"math/big"
	"sort"
	"strings"
)

// ============================================================
// Add — sum of terms
// ============================================================

type Add struct{ terms []Expr }

func AddOf(terms ...Expr) Expr { return (&Add{terms: terms}).Simplify() }

// Subtract returns a - b.
func Subtract(a, b Expr) Expr { return AddOf(a, MulOf(N(-1), b)) }

func (a *Add) Simplify() Expr {
	flat := make([]Expr, 0, len(a.terms))
	for _, t := range a.terms {
		s := t.Simplify()
		if inner, ok := s.(*Add); ok {
			flat = append(flat, inner.terms...)
		} else {
			flat = append(flat, s)
		}
	}
	numAccum := N(0)
	infSeen := 0
	coeffs := map[string]*Num{}
	rests := map[string]Expr{}
	order := []string{}
	for _, t := range flat {
		switch v := t.(type) {
		case *Undefined:
			return undefined
		case *Num:
			numAccum = numAdd(numAccum, v)
		case *Inf:
			if v.sign > 0 {
				infSeen |= 1
			} else {
				infSeen |= 2
			}
		default:
			coeff, rest := extractCoefficient(t)
			key := rest.String()
			if _, seen := coeffs[key]; !seen {
				order = append(order, key)
				coeffs[key] = N(0)
				rests[key] = rest
			}
			coeffs[key] = numAdd(coeffs[key], coeff)
		}
	}
	switch infSeen {
	case 1:
		return posInf
	case 2:
		return negInf
	case 3:
		return undefined
	}
	result := make([]Expr, 0, len(order)+1)
	for _, key := range order {
		c := coeffs[key]
		if c.IsZero() {
			continue
		}
		result = append(result, MulOf(c, rests[key]))
	}
	sortTerms(result)
	if !numAccum.IsZero() {
		result = append(result, numAccum)
	}
	if len(result) == 0 {
		return N(0)
	}
	if len(result) == 1 {
		return result[0]
	}
	return &Add{terms: result}
}

// sortTerms orders terms by descending degree, then lexically.
func sortTerms(terms []Expr) {
	type keyed struct {
		e   Expr
		deg float64
		key string
	}
	ks := make([]keyed, len(terms))
	for i, t := range terms {
		ks[i] = keyed{e: t, deg: degreeHint(t), key: t.String()}
	}
	sort.SliceStable(ks, func(i, j int) bool {
		if ks[i].deg != ks[j].deg {
			return ks[i].deg > ks[j].deg
		}
		return ks[i].key < ks[j].key
	})
	for i := range ks {
		terms[i] = ks[i].e
	}
}

func degreeHint(e Expr) float64 {
	switch v := e.(type) {
	case *Sym:
		return 1
	case *Pow:
		if n, ok := v.exp.(*Num); ok {
			f, _ := n.Float()
			return degreeHint(v.base) * f
		}
	case *Mul:
		total := 0.0
		for _, f := range v.factors {
			total += degreeHint(f)
		}
		return total
	}
	return 0
}

func (a *Add) String() string {
	if len(a.terms) == 0 {
		return "0"
	}
	var sb strings.Builder
	for i, t := range a.terms {
		s := t.String()
		switch {
		case i == 0:
			sb.WriteString(s)
		case strings.HasPrefix(s, "-"):
			sb.WriteString(" - ")
			sb.WriteString(s[1:])
		default:
			sb.WriteString(" + ")
			sb.WriteString(s)
		}
	}
	return sb.String()
}

func (a *Add) LaTeX() string {
	var sb strings.Builder
	for i, t := range a.terms {
		s := t.LaTeX()
		switch {
		case i == 0:
			sb.WriteString(s)
		case strings.HasPrefix(s, "-"):
			sb.WriteString(" - ")
			sb.WriteString(s[1:])
		default:
			sb.WriteString(" + ")
			sb.WriteString(s)
		}
	}
	return sb.String()
}

func (a *Add) Sub(varName string, value Expr) Expr {
	newTerms := make([]Expr, len(a.terms))
	for i, t := range a.terms {
		newTerms[i] = t.Sub(varName, value)
	}
	return AddOf(newTerms...)
}

func (a *Add) Diff(varName string) Expr {
	dTerms := make([]Expr, len(a.terms))
	for i, t := range a.terms {
		dTerms[i] = t.Diff(varName)
	}
	return AddOf(dTerms...)
}

func (a *Add) Float() (float64, bool) {
	acc := 0.0
	for _, t := range a.terms {
		v, ok := t.Float()
		if !ok {
			return 0, false
		}
		acc += v
	}
	return acc, !math.IsNaN(acc)
}

func (a *Add) Equal(other Expr) bool {
	o, ok := other.(*Add)
	if !ok || len(a.terms) != len(o.terms) {
		return false
	}
	for i := range a.terms {
		if !a.terms[i].Equal(o.terms[i]) {
			return false
		}
	}
	return true
}

func (a *Add) Terms() []Expr { return a.terms }

// ============================================================
// Mul — product of factors
// ============================================================

type Mul struct{ factors []Expr }

func MulOf(factors ...Expr) Expr { return (&Mul{factors: factors}).Simplify() }

// Divide returns a / b.
func Divide(a, b Expr) Expr { return MulOf(a, PowOf(b, N(-1))) }

type powerGroup struct {
	base Expr
	exp  Expr
}

func (m *Mul) Simplify() Expr {
	flat := make([]Expr, 0, len(m.factors))
	for _, f := range m.factors {
		s := f.Simplify()
		if inner, ok := s.(*Mul); ok {
			flat = append(flat, inner.factors...)
		} else {
			flat = append(flat, s)
		}
	}
	coeff := N(1)
	infSign, hasInf := 1, false
	groups := map[string]*powerGroup{}
	order := []string{}
	for _, f := range flat {
		switch v := f.(type) {
		case *Undefined:
			return undefined
		case *Num:
			coeff = numMul(coeff, v)
		case *Inf:
			hasInf = true
			infSign *= v.sign
		default:
			base, exp := asPower(f)
			key := base.String()
			if g, ok := groups[key]; ok {
				g.exp = AddOf(g.exp, exp)
			} else {
				groups[key] = &powerGroup{base: base, exp: exp}
				order = append(order, key)
			}
		}
	}
	if hasInf {
		return mulInfinity(coeff, infSign, groups)
	}
	if coeff.IsZero() {
		return N(0)
	}

	others := make([]Expr, 0, len(order))
	reprocess := false
	for _, key := range order {
		g := groups[key]
		p := PowOf(g.base, g.exp)
		switch pv := p.(type) {
		case *Num:
			coeff = numMul(coeff, pv)
		case *Mul:
			others = append(others, pv.factors...)
			reprocess = true
		case *Inf, *Undefined:
			others = append(others, p)
			reprocess = true
		default:
			// abs(u)^2 becomes u^2 and must merge with other powers of u.
			if b, _ := asPower(p); b.String() != key {
				reprocess = true
			}
			others = append(others, p)
		}
	}
	if reprocess {
		return (&Mul{factors: append([]Expr{coeff}, others...)}).Simplify()
	}
	if coeff.IsZero() {
		return N(0)
	}
	if len(others) == 0 {
		return coeff
	}

	// Precompute sort keys to avoid repeated String() calls in comparator.
	type keyed struct {
		e   Expr
		key string
	}
	ks := make([]keyed, len(others))
	for i, e := range others {
		ks[i] = keyed{e: e, key: e.String()}
	}
	sort.Slice(ks, func(i, j int) bool { return ks[i].key < ks[j].key })
	sorted := make([]Expr, len(ks))
	for i := range ks {
		sorted[i] = ks[i].e
	}

	if coeff.IsOne() {
		if len(sorted) == 1 {
			return sorted[0]
		}
		return &Mul{factors: sorted}
	}
	return &Mul{factors: append([]Expr{coeff}, sorted...)}
}

// mulInfinity folds finite factors into a signed infinity. A factor whose
// sign cannot be decided numerically makes the product undefined.
func mulInfinity(coeff *Num, sign int, groups map[string]*powerGroup) Expr {
	if coeff.IsZero() {
		return undefined
	}
	if coeff.IsNegative() {
		sign = -sign
	}
	for _, g := range groups {
		v, ok := PowOf(g.base, g.exp).Float()
		if !ok || v == 0 || math.IsNaN(v) {
			return undefined
		}
		if v < 0 {
			sign = -sign
		}
	}
	return infOf(sign)
}

// asPower splits a factor into base and exponent; exp(u) is treated as E^u
// so that exponentials combine like any other power.
func asPower(e Expr) (Expr, Expr) {
	switch v := e.(type) {
	case *Pow:
		return v.base, v.exp
	case *Func:
		if v.name == "exp" {
			return eConst, v.arg
		}
	}
	return e, N(1)
}

func (m *Mul) String() string {
	if len(m.factors) == 0 {
		return "1"
	}
	prefix := ""
	factors := m.factors
	if c, ok := factors[0].(*Num); ok && c.IsNegOne() && len(factors) > 1 {
		prefix = "-"
		factors = factors[1:]
	}
	parts := make([]string, len(factors))
	for i, f := range factors {
		if _, isAdd := f.(*Add); isAdd {
			parts[i] = "(" + f.String() + ")"
		} else {
			parts[i] = f.String()
		}
	}
	return prefix + strings.Join(parts, "*")
}

func (m *Mul) LaTeX() string {
	coeff := N(1)
	var num, den []Expr
	for _, f := range m.factors {
		switch v := f.(type) {
		case *Num:
			coeff = numMul(coeff, v)
		case *Pow:
			if en, ok := v.exp.(*Num); ok && en.IsNegative() {
				den = append(den, PowOf(v.base, numNeg(en)))
				continue
			}
			num = append(num, f)
		default:
			num = append(num, f)
		}
	}
	sign := ""
	if coeff.IsNegative() {
		sign = "-"
		coeff = numNeg(coeff)
	}
	var numParts, denParts []string
	if p := coeff.val.Num(); !p.IsInt64() || p.Int64() != 1 {
		numParts = append(numParts, p.String())
	}
	numParts = append(numParts, latexFactors(num)...)
	if q := coeff.val.Denom(); !q.IsInt64() || q.Int64() != 1 {
		denParts = append(denParts, q.String())
	}
	denParts = append(denParts, latexFactors(den)...)

	numStr := strings.Join(numParts, " ")
	if numStr == "" {
		numStr = "1"
	}
	if len(denParts) == 0 {
		return sign + numStr
	}
	return sign + `\frac{` + numStr + `}{` + strings.Join(denParts, " ") + `}`
}

func latexFactors(fs []Expr) []string {
	out := make([]string, len(fs))
	for i, f := range fs {
		if _, isAdd := f.(*Add); isAdd && len(fs) > 1 {
			out[i] = `\left(` + f.LaTeX() + `\right)`
		} else {
			out[i] = f.LaTeX()
		}
	}
	return out
}

func (m *Mul) Sub(varName string, value Expr) Expr {
	newFactors := make([]Expr, len(m.factors))
	for i, f := range m.factors {
		newFactors[i] = f.Sub(varName, value)
	}
	return MulOf(newFactors...)
}

func (m *Mul) Diff(varName string) Expr {
	terms := make([]Expr, len(m.factors))
	for i, fi := range m.factors {
		dfi := fi.Diff(varName)
		others := make([]Expr, 0, len(m.factors)-1)
		for j, fj := range m.factors {
			if j != i {
				others = append(others, fj)
			}
		}
		terms[i] = MulOf(append([]Expr{dfi}, others...)...)
	}
	return AddOf(terms...)
}

func (m *Mul) Float() (float64, bool) {
	acc := 1.0
	for _, f := range m.factors {
		v, ok := f.Float()
		if !ok {
			return 0, false
		}
		acc *= v
	}
	return acc, !math.IsNaN(acc)
}

func (m *Mul) Equal(other Expr) bool {
	o, ok := other.(*Mul)
	if !ok || len(m.factors) != len(o.factors) {
		return false
	}
	for i := range m.factors {
		if !m.factors[i].Equal(o.factors[i]) {
			return false
		}
	}
	return true
}

func (m *Mul) Factors() []Expr { return m.factors }

// ============================================================
// Pow — base^exponent
// ============================================================

type Pow struct{ base, exp Expr }

func PowOf(base, exp Expr) Expr { return (&Pow{base: base, exp: exp}).Simplify() }

// maxExactPowerBits bounds the size of exactly computed numeric powers.
const maxExactPowerBits = 4096

func (p *Pow) Simplify() Expr {
	base := p.base.Simplify()
	exp := p.exp.Simplify()

	if IsUndefined(base) || IsUndefined(exp) {
		return undefined
	}
	if en, ok := exp.(*Num); ok && en.IsZero() {
		return N(1)
	}
	if en, ok := exp.(*Num); ok && en.IsOne() {
		return base
	}
	if bn, ok := base.(*Num); ok && bn.IsOne() {
		return N(1)
	}
	if bi, ok := base.(*Inf); ok {
		return powInfBase(bi, exp)
	}
	if ei, ok := exp.(*Inf); ok {
		return powInfExp(base, ei)
	}

	// Handle 0^exp carefully.
	if bn, ok := base.(*Num); ok && bn.IsZero() {
		if en, ok2 := exp.(*Num); ok2 {
			if en.IsNegative() {
				return undefined
			}
			return N(0)
		}
		return &Pow{base: base, exp: exp}
	}

	if c, ok := base.(*Const); ok && c == eConst {
		return ExpOf(exp)
	}
	if bn, ok := base.(*Num); ok {
		if en, ok2 := exp.(*Num); ok2 {
			if r, exact := numPow(bn, en); exact {
				return r
			}
		}
	}
	if inner, ok := base.(*Pow); ok {
		if en, ok2 := exp.(*Num); ok2 && en.IsInteger() {
			return PowOf(inner.base, MulOf(inner.exp, exp))
		}
	}
	if m, ok := base.(*Mul); ok {
		if en, ok2 := exp.(*Num); ok2 && en.IsInteger() {
			factors := make([]Expr, len(m.factors))
			for i, f := range m.factors {
				factors[i] = PowOf(f, en)
			}
			return MulOf(factors...)
		}
	}
	if f, ok := base.(*Func); ok {
		switch {
		case f.name == "exp":
			return ExpOf(MulOf(f.arg, exp))
		case f.name == "abs" && isEvenInt(exp):
			return PowOf(f.arg, exp)
		}
	}
	return &Pow{base: base, exp: exp}
}

func isEvenInt(e Expr) bool {
	n, ok := e.(*Num)
	return ok && n.IsInteger() && n.val.Num().Bit(0) == 0
}

func powInfBase(b *Inf, exp Expr) Expr {
	en, ok := exp.(*Num)
	if !ok {
		if ei, ok2 := exp.(*Inf); ok2 && b.sign > 0 {
			if ei.sign > 0 {
				return posInf
			}
			return N(0)
		}
		return undefined
	}
	if en.IsNegative() {
		return N(0)
	}
	if b.sign > 0 {
		return posInf
	}
	if !en.IsInteger() {
		return undefined
	}
	if isEvenInt(en) {
		return posInf
	}
	return negInf
}

func powInfExp(base Expr, e *Inf) Expr {
	v, ok := base.Float()
	if !ok || v < 0 {
		return undefined
	}
	switch {
	case v > 1:
		if e.sign > 0 {
			return posInf
		}
		return N(0)
	case v < 1:
		if e.sign > 0 {
			return N(0)
		}
		return posInf
	}
	return N(1)
}

// numPow evaluates b^e exactly when the result is rational.
func numPow(b, e *Num) (Expr, bool) {
	if e.IsInteger() {
		k := new(big.Int).Abs(e.val.Num())
		if !k.IsInt64() || int64(b.val.Num().BitLen()+b.val.Denom().BitLen())*k.Int64() > maxExactPowerBits {
			return nil, false
		}
		num := new(big.Int).Exp(b.val.Num(), k, nil)
		den := new(big.Int).Exp(b.val.Denom(), k, nil)
		r := new(big.Rat).SetFrac(num, den)
		if e.IsNegative() {
			if r.Sign() == 0 {
				return undefined, true
			}
			r.Inv(r)
		}
		return &Num{val: r}, true
	}
	if b.IsNegative() {
		return nil, false
	}
	q := e.val.Denom()
	if !q.IsInt64() {
		return nil, false
	}
	rootNum, ok1 := intRoot(b.val.Num(), q.Int64())
	rootDen, ok2 := intRoot(b.val.Denom(), q.Int64())
	if !ok1 || !ok2 {
		return nil, false
	}
	root := &Num{val: new(big.Rat).SetFrac(rootNum, rootDen)}
	return numPow(root, &Num{val: new(big.Rat).SetInt(e.val.Num())})
}

// intRoot returns the exact k-th root of a non-negative integer, if any.
func intRoot(n *big.Int, k int64) (*big.Int, bool) {
	if n.Sign() < 0 || k < 2 || n.BitLen() > 512 {
		return nil, false
	}
	if k == 2 {
		r := new(big.Int).Sqrt(n)
		return r, new(big.Int).Mul(r, r).Cmp(n) == 0
	}
	f, _ := new(big.Float).SetInt(n).Float64()
	guess := int64(math.Round(math.Pow(f, 1/float64(k))))
	for c := guess - 1; c <= guess+1; c++ {
		if c < 0 {
			continue
		}
		cand := big.NewInt(c)
		if new(big.Int).Exp(cand, big.NewInt(k), nil).Cmp(n) == 0 {
			return cand, true
		}
	}
	return nil, false
}

func (p *Pow) String() string {
	baseStr := p.base.String()
	switch b := p.base.(type) {
	case *Add, *Mul, *Pow, *Inf:
		baseStr = "(" + baseStr + ")"
	case *Num:
		if !b.IsInteger() || b.IsNegative() {
			baseStr = "(" + baseStr + ")"
		}
	}
	expStr := p.exp.String()
	switch e := p.exp.(type) {
	case *Sym, *Const:
	case *Num:
		if !e.IsInteger() || e.IsNegative() {
			expStr = "(" + expStr + ")"
		}
	default:
		expStr = "(" + expStr + ")"
	}
	return baseStr + "^" + expStr
}

func (p *Pow) LaTeX() string {
	if en, ok := p.exp.(*Num); ok {
		if en.IsNegative() {
			return `\frac{1}{` + PowOf(p.base, numNeg(en)).LaTeX() + `}`
		}
		if isNumRat(en, 1, 2) {
			return `\sqrt{` + p.base.LaTeX() + `}`
		}
	}
	if f, ok := p.base.(*Func); ok && f.name != "exp" && f.name != "abs" {
		return f.latexHead() + "^{" + p.exp.LaTeX() + "}" + f.latexArg()
	}
	baseStr := p.base.LaTeX()
	switch b := p.base.(type) {
	case *Add, *Mul, *Pow, *Func:
		baseStr = `\left(` + baseStr + `\right)`
	case *Num:
		if !b.IsInteger() || b.IsNegative() {
			baseStr = `\left(` + baseStr + `\right)`
		}
	}
	return baseStr + "^{" + p.exp.LaTeX() + "}"
}

func (p *Pow) Sub(varName string, value Expr) Expr {
	return PowOf(p.base.Sub(varName, value), p.exp.Sub(varName, value))
}

func (p *Pow) Diff(varName string) Expr {
	du := p.base.Diff(varName)
	dv := p.exp.Diff(varName)
	if !dependsOn(p.exp, varName) {
		newExp := AddOf(p.exp, N(-1))
		return MulOf(p.exp, PowOf(p.base, newExp), du)
	}
	if !dependsOn(p.base, varName) {
		return MulOf(PowOf(p.base, p.exp), LogOf(p.base), dv)
	}
	logTerm := MulOf(dv, LogOf(p.base))
	divTerm := MulOf(p.exp, du, PowOf(p.base, N(-1)))
	return MulOf(PowOf(p.base, p.exp), AddOf(logTerm, divTerm))
}

func (p *Pow) Float() (float64, bool) {
	b, ok1 := p.base.Float()
	e, ok2 := p.exp.Float()
	if !ok1 || !ok2 {
		return 0, false
	}
	pf := math.Pow(b, e)
	if math.IsNaN(pf) {
		return 0, false
	}
	return pf, true
}

func (p *Pow) Equal(other Expr) bool {
	o, ok := other.(*Pow)
	return ok && p.base.Equal(o.base) && p.exp.Equal(o.exp)
}

func (p *Pow) Base() Expr    { return p.base }
func (p *Pow) ExpExpr() Expr { return p.exp }

// extractCoefficient splits c*rest into its numeric coefficient and rest.
func extractCoefficient(e Expr) (*Num, Expr) {
	if m, ok := e.(*Mul); ok && len(m.factors) >= 2 {
		if coeff, ok2 := m.factors[0].(*Num); ok2 {
			rest := m.factors[1:]
			if len(rest) == 1 {
				return coeff, rest[0]
			}
			return coeff, &Mul{factors: rest}
		}
	}
	return N(1), e
}
