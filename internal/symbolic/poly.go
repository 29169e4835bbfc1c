package symbolic

import (
	"math/big"
)

// ============================================================
// Dense univariate polynomials over the rationals
// ============================================================

// poly holds coefficients indexed by degree.
type poly []*big.Rat

const maxPolyDegree = 64

func zeroPoly(n int) poly {
	p := make(poly, n)
	for i := range p {
		p[i] = new(big.Rat)
	}
	return p
}

func (p poly) deg() int {
	for i := len(p) - 1; i >= 0; i-- {
		if p[i].Sign() != 0 {
			return i
		}
	}
	return -1
}

func (p poly) trim() poly { return p[:p.deg()+1] }

func (p poly) lead() *big.Rat { return p[p.deg()] }

func (p poly) add(q poly) poly {
	n := len(p)
	if len(q) > n {
		n = len(q)
	}
	out := zeroPoly(n)
	for i := range p {
		out[i].Add(out[i], p[i])
	}
	for i := range q {
		out[i].Add(out[i], q[i])
	}
	return out.trim()
}

func (p poly) scale(c *big.Rat) poly {
	out := zeroPoly(len(p))
	for i := range p {
		out[i].Mul(p[i], c)
	}
	return out.trim()
}

func (p poly) mul(q poly) poly {
	if len(p) == 0 || len(q) == 0 {
		return poly{}
	}
	out := zeroPoly(len(p) + len(q) - 1)
	t := new(big.Rat)
	for i := range p {
		for j := range q {
			out[i+j].Add(out[i+j], t.Mul(p[i], q[j]))
		}
	}
	return out.trim()
}

// divmod returns quotient and remainder of p / d; d must be non-zero.
func (p poly) divmod(d poly) (poly, poly) {
	d = d.trim()
	r := p.add(poly{})
	dd := d.deg()
	if r.deg() < dd {
		return poly{}, r
	}
	q := zeroPoly(r.deg() - dd + 1)
	for r.deg() >= dd {
		k := r.deg() - dd
		c := new(big.Rat).Quo(r.lead(), d.lead())
		q[k].Set(c)
		shifted := zeroPoly(k + len(d))
		for i := range d {
			shifted[i+k].Mul(d[i], c)
		}
		r = r.add(shifted.scale(big.NewRat(-1, 1)))
	}
	return q.trim(), r
}

func (p poly) eval(x *big.Rat) *big.Rat {
	acc := new(big.Rat)
	for i := len(p) - 1; i >= 0; i-- {
		acc.Mul(acc, x)
		acc.Add(acc, p[i])
	}
	return acc
}

func (p poly) expr(v Expr) Expr {
	terms := make([]Expr, 0, len(p))
	for i, c := range p {
		if c.Sign() == 0 {
			continue
		}
		terms = append(terms, MulOf(NRat(c), PowOf(v, N(int64(i)))))
	}
	return AddOf(terms...)
}

// integral returns the antiderivative with zero constant term.
func (p poly) integral() poly {
	out := zeroPoly(len(p) + 1)
	for i, c := range p {
		out[i+1].Quo(c, big.NewRat(int64(i+1), 1))
	}
	return out.trim()
}

func linearPoly(root *big.Rat) poly {
	return poly{new(big.Rat).Neg(root), big.NewRat(1, 1)}
}

// polyFrom reads e as a polynomial in varName with rational coefficients.
func polyFrom(e Expr, varName string) (poly, bool) {
	e = Expand(e)
	terms := []Expr{e}
	if a, ok := e.(*Add); ok {
		terms = a.terms
	}
	p := poly{}
	for _, t := range terms {
		c, rest := extractCoefficient(t)
		k := 0
		switch r := rest.(type) {
		case *Num:
			c = numMul(c, r)
		case *Sym:
			if r.name != varName {
				return nil, false
			}
			k = 1
		case *Pow:
			s, ok := r.base.(*Sym)
			n, ok2 := exactInt(r.exp)
			if !ok || s.name != varName || !ok2 || n < 0 || n > maxPolyDegree {
				return nil, false
			}
			k = n
		default:
			return nil, false
		}
		for len(p) <= k {
			p = append(p, new(big.Rat))
		}
		p[k].Add(p[k], c.val)
	}
	return p.trim(), true
}

// ============================================================
// Rational roots
// ============================================================

const maxRootSearch = 1 << 20

// rationalRoot finds one rational root of p by the rational root theorem.
func rationalRoot(p poly) (*big.Rat, bool) {
	p = p.trim()
	if p.deg() < 1 {
		return nil, false
	}
	if p[0].Sign() == 0 {
		return new(big.Rat), true
	}
	ints := integerCoeffs(p)
	a0 := new(big.Int).Abs(ints[0])
	an := new(big.Int).Abs(ints[len(ints)-1])
	if a0.Cmp(big.NewInt(maxRootSearch)) > 0 || an.Cmp(big.NewInt(maxRootSearch)) > 0 {
		return nil, false
	}
	for _, num := range divisors(a0.Int64()) {
		for _, den := range divisors(an.Int64()) {
			for _, sign := range []int64{1, -1} {
				r := big.NewRat(sign*num, den)
				if p.eval(r).Sign() == 0 {
					return r, true
				}
			}
		}
	}
	return nil, false
}

// integerCoeffs scales p by the lcm of its denominators.
func integerCoeffs(p poly) []*big.Int {
	l := big.NewInt(1)
	for _, c := range p {
		d := c.Denom()
		g := new(big.Int).GCD(nil, nil, l, d)
		l.Mul(l, new(big.Int).Quo(d, g))
	}
	out := make([]*big.Int, len(p))
	for i, c := range p {
		v := new(big.Rat).Mul(c, new(big.Rat).SetInt(l))
		out[i] = new(big.Int).Set(v.Num())
	}
	return out
}

func divisors(n int64) []int64 {
	var small, large []int64
	for d := int64(1); d*d <= n; d++ {
		if n%d == 0 {
			small = append(small, d)
			if d != n/d {
				large = append(large, n/d)
			}
		}
	}
	for i := len(large) - 1; i >= 0; i-- {
		small = append(small, large[i])
	}
	return small
}

type rootMult struct {
	root *big.Rat
	mult int
}

// splitRoots divides out every rational root of d, returning the roots
// with multiplicity and the root-free residual.
func splitRoots(d poly) ([]rootMult, poly) {
	var roots []rootMult
	for d.deg() >= 1 {
		r, ok := rationalRoot(d)
		if !ok {
			break
		}
		m := 0
		for d.deg() >= 1 && d.eval(r).Sign() == 0 {
			d, _ = d.divmod(linearPoly(r))
			m++
		}
		roots = append(roots, rootMult{root: r, mult: m})
	}
	return roots, d
}

// ============================================================
// Linear systems
// ============================================================

// solveLinear solves a square system by Gaussian elimination.
func solveLinear(a [][]*big.Rat, b []*big.Rat) ([]*big.Rat, bool) {
	n := len(b)
	for col := 0; col < n; col++ {
		pivot := -1
		for row := col; row < n; row++ {
			if a[row][col].Sign() != 0 {
				pivot = row
				break
			}
		}
		if pivot < 0 {
			return nil, false
		}
		a[col], a[pivot] = a[pivot], a[col]
		b[col], b[pivot] = b[pivot], b[col]
		for row := 0; row < n; row++ {
			if row == col || a[row][col].Sign() == 0 {
				continue
			}
			f := new(big.Rat).Quo(a[row][col], a[col][col])
			for k := col; k < n; k++ {
				a[row][k] = new(big.Rat).Sub(a[row][k], new(big.Rat).Mul(f, a[col][k]))
			}
			b[row] = new(big.Rat).Sub(b[row], new(big.Rat).Mul(f, b[col]))
		}
	}
	x := make([]*big.Rat, n)
	for i := range x {
		x[i] = new(big.Rat).Quo(b[i], a[i][i])
	}
	return x, true
}

// ============================================================
// Rational function integration
// ============================================================

// splitFraction separates factors with negative integer exponents.
func splitFraction(e Expr) (num, den Expr) {
	factors := []Expr{e}
	if m, ok := e.(*Mul); ok {
		factors = m.factors
	}
	var nf, df []Expr
	for _, f := range factors {
		if p, ok := f.(*Pow); ok {
			if n, ok2 := exactInt(p.exp); ok2 && n < 0 {
				df = append(df, PowOf(p.base, N(int64(-n))))
				continue
			}
		}
		nf = append(nf, f)
	}
	return MulOf(append([]Expr{N(1)}, nf...)...), MulOf(append([]Expr{N(1)}, df...)...)
}

// integrateRational integrates P/Q with rational coefficients using
// polynomial division and partial fractions over rational linear factors
// and at most one irreducible quadratic.
func integrateRational(e Expr, v *Sym) (Expr, bool) {
	numE, denE := splitFraction(e)
	num, ok1 := polyFrom(numE, v.name)
	den, ok2 := polyFrom(denE, v.name)
	if !ok1 || !ok2 || den.deg() < 0 || den.deg() > maxPolyDegree {
		return nil, false
	}
	if den.deg() == 0 {
		return num.scale(new(big.Rat).Inv(den[0])).integral().expr(v), true
	}
	quot, rem := num.divmod(den)
	result := []Expr{quot.integral().expr(v)}
	if rem.deg() < 0 {
		return AddOf(result...), true
	}

	roots, residual := splitRoots(den)
	if residual.deg() != 0 && residual.deg() != 2 {
		return nil, false
	}

	type piece struct {
		basis poly
		build func(c *big.Rat) Expr
	}
	var pieces []piece
	for _, rm := range roots {
		r := rm.root
		shift := Subtract(v, NRat(r))
		lin := linearPoly(r)
		power := poly{big.NewRat(1, 1)}
		for j := 1; j <= rm.mult; j++ {
			power = power.mul(lin)
			basis, _ := den.divmod(power)
			j := j
			pieces = append(pieces, piece{basis: basis, build: func(c *big.Rat) Expr {
				if j == 1 {
					return MulOf(NRat(c), LogOf(AbsOf(shift)))
				}
				return MulOf(NRat(c), F(1, int64(1-j)), PowOf(shift, N(int64(1-j))))
			}})
		}
	}
	var quadB, quadC *big.Rat
	if residual.deg() == 2 {
		basis, _ := den.divmod(residual)
		pieces = append(pieces,
			piece{basis: basis.mul(poly{new(big.Rat), big.NewRat(1, 1)}), build: func(c *big.Rat) Expr { quadB = c; return nil }},
			piece{basis: basis, build: func(c *big.Rat) Expr { quadC = c; return nil }},
		)
	}

	n := den.deg()
	if len(pieces) != n {
		return nil, false
	}
	a := make([][]*big.Rat, n)
	b := make([]*big.Rat, n)
	for row := 0; row < n; row++ {
		a[row] = make([]*big.Rat, n)
		for col, pc := range pieces {
			a[row][col] = coeffAt(pc.basis, row)
		}
		b[row] = coeffAt(rem, row)
	}
	coeffs, ok := solveLinear(a, b)
	if !ok {
		return nil, false
	}
	for i, pc := range pieces {
		if coeffs[i].Sign() == 0 {
			pc.build(coeffs[i])
			continue
		}
		if term := pc.build(coeffs[i]); term != nil {
			result = append(result, term)
		}
	}
	if residual.deg() == 2 {
		result = append(result, integrateQuadraticFraction(quadB, quadC, residual, v))
	}
	return AddOf(result...), true
}

func coeffAt(p poly, i int) *big.Rat {
	if i < len(p) {
		return new(big.Rat).Set(p[i])
	}
	return new(big.Rat)
}

// integrateQuadraticFraction integrates (B x + C) / (a x^2 + b x + c) for
// a quadratic with no rational roots.
func integrateQuadraticFraction(bCoef, cCoef *big.Rat, q poly, v *Sym) Expr {
	a, b, c := q[2], q[1], q[0]
	qe := q.expr(v)
	twoA := new(big.Rat).Mul(big.NewRat(2, 1), a)
	// B x + C = (B / 2a)(2a x + b) + (C - B b / 2a)
	k1 := new(big.Rat).Quo(bCoef, twoA)
	k2 := new(big.Rat).Sub(cCoef, new(big.Rat).Mul(k1, b))

	// disc = 4ac - b^2; positive means q keeps the sign of a.
	disc := new(big.Rat).Sub(new(big.Rat).Mul(big.NewRat(4, 1), new(big.Rat).Mul(a, c)), new(big.Rat).Mul(b, b))
	var logPart Expr
	switch {
	case disc.Sign() <= 0:
		logPart = LogOf(AbsOf(qe))
	case a.Sign() > 0:
		logPart = LogOf(qe)
	default:
		logPart = LogOf(MulOf(N(-1), qe))
	}
	terms := []Expr{MulOf(NRat(k1), logPart)}
	if k2.Sign() == 0 {
		return AddOf(terms...)
	}

	lin := AddOf(MulOf(NRat(twoA), v), NRat(b))
	if disc.Sign() > 0 {
		s := SqrtOf(NRat(disc))
		terms = append(terms, MulOf(NRat(k2), N(2), PowOf(s, N(-1)), AtanOf(MulOf(lin, PowOf(s, N(-1))))))
	} else {
		s := SqrtOf(NRat(new(big.Rat).Neg(disc)))
		ratio := MulOf(Subtract(lin, s), PowOf(AddOf(lin, s), N(-1)))
		terms = append(terms, MulOf(NRat(k2), PowOf(s, N(-1)), LogOf(AbsOf(ratio))))
	}
	return AddOf(terms...)
}
