package symbolic

import (
	"math"
	"math/big"
)

// ============================================================
// Limits
// ============================================================

// LimitResult holds the result of a limit computation.
type LimitResult struct {
	Value   Expr
	Success bool
	Error   string
}

// Limit computes lim_{varName -> point} expr.
// Tries direct substitution, L'Hôpital (0/0), then Taylor expansion.
func Limit(expr Expr, varName string, point Expr) LimitResult {
	if sign, ok := IsInfinite(point); ok {
		return LimitAtInfinity(expr, varName, sign)
	}
	return limitRecursive(expr, varName, point, 5)
}

func limitRecursive(expr Expr, varName string, point Expr, maxLhopital int) LimitResult {
	expr = expr.Simplify()
	subbed := Sub(expr, varName, point)
	if !IsUndefined(subbed) {
		if v, ok := subbed.Float(); ok && !math.IsInf(v, 0) {
			return LimitResult{Value: subbed, Success: true}
		}
		if len(FreeSymbols(subbed)) > 0 {
			return LimitResult{Value: subbed, Success: true}
		}
	}
	if maxLhopital > 0 {
		if num, denom, ok := extractQuotient(expr); ok {
			numAtPoint := Sub(num, varName, point)
			denAtPoint := Sub(denom, varName, point)
			if isNumEqual(numAtPoint, 0) && isNumEqual(denAtPoint, 0) {
				dNum := Diff(num, varName)
				dDen := Diff(denom, varName)
				return limitRecursive(Divide(dNum, dDen), varName, point, maxLhopital-1)
			}
		}
	}
	if _, ok := point.Float(); ok {
		series := TaylorSeries(expr, varName, point, 4)
		if !IsUndefined(series) {
			subSeries := Sub(series, varName, point)
			if v, ok2 := subSeries.Float(); ok2 && !math.IsInf(v, 0) {
				return LimitResult{Value: subSeries, Success: true}
			}
		}
	}
	return LimitResult{
		Error:   "limit could not be determined: " + expr.String() + " as " + varName + " -> " + point.String(),
		Success: false,
	}
}

func extractQuotient(e Expr) (num, denom Expr, ok bool) {
	m, isMul := e.(*Mul)
	if !isMul {
		return nil, nil, false
	}
	var numFactors, denomFactors []Expr
	for _, f := range m.factors {
		if p, isPow := f.(*Pow); isPow {
			if en, isNum := p.exp.(*Num); isNum && en.IsNegative() {
				denomFactors = append(denomFactors, PowOf(p.base, numNeg(en)))
				continue
			}
		}
		numFactors = append(numFactors, f)
	}
	if len(denomFactors) == 0 {
		return nil, nil, false
	}
	return MulOf(append([]Expr{N(1)}, numFactors...)...), MulOf(denomFactors...), true
}

// LimitAtInfinity computes the limit of expr as varName tends to sign*oo.
// Extended-real substitution is tried first; an indeterminate form falls
// back to numeric probing along growing magnitudes.
func LimitAtInfinity(expr Expr, varName string, sign int) LimitResult {
	subbed := Sub(expr, varName, infOf(sign))
	if !IsUndefined(subbed) {
		return LimitResult{Value: subbed, Success: true}
	}
	var samples []float64
	for k := 1; k <= 15; k++ {
		x := float64(sign) * math.Pow(10, float64(k))
		v, ok := FloatAt(expr, varName, x)
		if !ok {
			return LimitResult{Error: "limit could not be determined: " + expr.String()}
		}
		samples = append(samples, v)
	}
	if v, ok := probeLimit(samples); ok {
		return LimitResult{Value: v, Success: true}
	}
	return LimitResult{Error: "limit could not be determined: " + expr.String()}
}

// oneSidedLimit probes expr at point + dir*10^-k.
func oneSidedLimit(expr Expr, varName string, point float64, dir int) (Expr, bool) {
	var samples []float64
	for k := 2; k <= 14; k++ {
		x := point + float64(dir)*math.Pow(10, -float64(k))
		v, ok := FloatAt(expr, varName, x)
		if !ok {
			return nil, false
		}
		samples = append(samples, v)
	}
	return probeLimit(samples)
}

// probeLimit reads a sequence of samples approaching a limit point.
func probeLimit(samples []float64) (Expr, bool) {
	n := len(samples)
	last, prev, prev2 := samples[n-1], samples[n-2], samples[n-3]
	if math.IsInf(last, 0) {
		return infOf(int(math.Copysign(1, last))), true
	}
	if math.Abs(last) > 1e10 && math.Abs(last) > math.Abs(prev) && math.Abs(prev) > math.Abs(prev2) &&
		math.Signbit(last) == math.Signbit(prev) {
		return infOf(int(math.Copysign(1, last))), true
	}
	scale := 1 + math.Abs(last)
	if math.Abs(last-prev) > 1e-6*scale || math.Abs(prev-prev2) > 1e-5*scale {
		return nil, false
	}
	return snapFloat(last)
}

// snapFloat recognises small rationals and rational multiples of pi.
func snapFloat(v float64) (Expr, bool) {
	if math.Abs(v) < 1e-9 {
		return N(0), true
	}
	if r, ok := snapRational(v, 64); ok {
		return NRat(r), true
	}
	if r, ok := snapRational(v/math.Pi, 12); ok {
		return MulOf(NRat(r), piConst), true
	}
	return nil, false
}

func snapRational(v float64, maxDen int64) (*big.Rat, bool) {
	for q := int64(1); q <= maxDen; q++ {
		p := math.Round(v * float64(q))
		if math.Abs(p) > 1e12 {
			return nil, false
		}
		if math.Abs(v-p/float64(q)) <= 1e-7*(1+math.Abs(v)) {
			return big.NewRat(int64(p), q), true
		}
	}
	return nil, false
}

// ============================================================
// Taylor series
// ============================================================

func TaylorSeries(expr Expr, varName string, a Expr, order int) Expr {
	terms := []Expr{}
	current := expr
	factorial := N(1)
	for k := 0; k <= order; k++ {
		if k > 0 {
			factorial = numMul(factorial, N(int64(k)))
		}
		coeff := MulOf(Sub(current, varName, a), numRecip(factorial))
		if isNumEqual(coeff, 0) {
			current = Diff(current, varName)
			continue
		}
		terms = append(terms, MulOf(coeff, PowOf(Subtract(S(varName), a), N(int64(k)))))
		current = Diff(current, varName)
	}
	return AddOf(terms...)
}

// ============================================================
// Definite integration
// ============================================================

// singularitySamples is the number of interior points scanned for poles.
const singularitySamples = 256

// DefiniteIntegrate evaluates the integral of expr over [lo, hi]. Bounds
// may be infinite. The antiderivative is evaluated at each bound, taking a
// limit where plain substitution is indeterminate; interior poles and
// undefined results report false. A divergent integral yields ±oo.
func DefiniteIntegrate(expr Expr, varName string, lo, hi Expr) (Expr, bool) {
	expr = expr.Simplify()
	anti, ok := Integrate(expr, varName)
	if !ok {
		return nil, false
	}
	if hasInteriorSingularity(expr, varName, lo, hi) {
		return nil, false
	}
	upper, ok := boundValue(anti, varName, hi, -1)
	if !ok {
		return nil, false
	}
	lower, ok := boundValue(anti, varName, lo, 1)
	if !ok {
		return nil, false
	}
	r := DeepSimplify(Subtract(upper, lower))
	if IsUndefined(r) {
		return nil, false
	}
	if _, inf := IsInfinite(r); !inf && len(FreeSymbols(r)) == 0 {
		if _, isReal := r.Float(); !isReal {
			return nil, false
		}
	}
	return r, true
}

// boundValue evaluates anti at bound; dir is the side the interval lies on.
func boundValue(anti Expr, varName string, bound Expr, dir int) (Expr, bool) {
	if sign, ok := IsInfinite(bound); ok {
		res := LimitAtInfinity(anti, varName, sign)
		return res.Value, res.Success
	}
	v := Sub(anti, varName, bound)
	if !IsUndefined(v) {
		return v, true
	}
	if res := limitRecursive(anti, varName, bound, 5); res.Success {
		return res.Value, true
	}
	b, ok := bound.Float()
	if !ok {
		return nil, false
	}
	return oneSidedLimit(anti, varName, b, dir)
}

// sampleMap maps s in (0, 1) onto the open interval (lo, hi).
func sampleMap(lo, hi Expr) (func(s float64) float64, bool) {
	ls, loInf := IsInfinite(lo)
	hs, hiInf := IsInfinite(hi)
	a, aok := lo.Float()
	b, bok := hi.Float()
	switch {
	case loInf && hiInf:
		if ls == hs {
			return nil, false
		}
		return func(s float64) float64 { return float64(hs) * math.Tan(math.Pi*(s-0.5)) }, true
	case hiInf && aok:
		return func(s float64) float64 { return a + float64(hs)*s/(1-s) }, true
	case loInf && bok:
		return func(s float64) float64 { return b + float64(ls)*(1-s)/s }, true
	case aok && bok:
		return func(s float64) float64 { return a + (b-a)*s }, true
	}
	return nil, false
}

// hasInteriorSingularity scans the open interval for points where the
// integrand is undefined: a denominator that vanishes or changes sign, a
// rational root of a polynomial denominator, or a failed evaluation.
func hasInteriorSingularity(expr Expr, varName string, lo, hi Expr) bool {
	at, ok := sampleMap(lo, hi)
	if !ok {
		return false
	}
	dens := denominators(expr, varName)
	prev := make([]float64, len(dens))
	for k := 1; k < singularitySamples; k++ {
		x := at(float64(k) / singularitySamples)
		if v, ok := FloatAt(expr, varName, x); !ok || math.IsInf(v, 0) {
			return true
		}
		for i, d := range dens {
			dv, ok := FloatAt(d, varName, x)
			if !ok || dv == 0 {
				return true
			}
			if k > 1 && math.Signbit(dv) != math.Signbit(prev[i]) {
				return true
			}
			prev[i] = dv
		}
	}
	a, aok := lo.Float()
	b, bok := hi.Float()
	if a > b {
		a, b = b, a
	}
	for _, d := range dens {
		p, ok := polyFrom(d, varName)
		if !ok {
			continue
		}
		roots, _ := splitRoots(p)
		for _, rm := range roots {
			r, _ := rm.root.Float64()
			if aok && bok && r > a && r < b {
				return true
			}
		}
	}
	return false
}

// denominators collects bases raised to negative powers, arguments of log
// and the cosine behind each tan.
func denominators(e Expr, varName string) []Expr {
	var out []Expr
	walk(e, func(n Expr) bool {
		if !dependsOn(n, varName) {
			return false
		}
		switch t := n.(type) {
		case *Pow:
			if en, ok := t.exp.(*Num); ok && en.IsNegative() {
				out = append(out, t.base)
			}
		case *Func:
			switch t.name {
			case "log":
				out = append(out, t.arg)
			case "tan":
				out = append(out, CosOf(t.arg))
			}
		}
		return true
	})
	return out
}
