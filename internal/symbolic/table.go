package symbolic

import "sort"

// Table is the fixed name environment the parser resolves identifiers
// against. It is built once and only read afterwards.
type Table struct {
	variable *Sym
	names    map[string]Expr
	funcs    map[string]func(Expr) Expr
}

// NewTable returns the standard table over the given variable: the
// constants pi, e, E and oo plus the elementary functions. ln is an alias
// of log; sec, csc and cot expand to cos and sin.
func NewTable(variable *Sym) *Table {
	return &Table{
		variable: variable,
		names: map[string]Expr{
			variable.name: variable,
			"pi":          piConst,
			"e":           eConst,
			"E":           eConst,
			"oo":          posInf,
		},
		funcs: map[string]func(Expr) Expr{
			"sin":  SinOf,
			"cos":  CosOf,
			"tan":  TanOf,
			"sec":  SecOf,
			"csc":  CscOf,
			"cot":  CotOf,
			"asin": AsinOf,
			"acos": AcosOf,
			"atan": AtanOf,
			"sinh": SinhOf,
			"cosh": CoshOf,
			"tanh": TanhOf,
			"exp":  ExpOf,
			"log":  LogOf,
			"ln":   LogOf,
			"sqrt": SqrtOf,
			"abs":  AbsOf,
		},
	}
}

func (t *Table) Variable() *Sym { return t.variable }

// Symbol resolves a bare identifier. Names outside the table become free
// symbols, which the integrator treats as constants.
func (t *Table) Symbol(name string) Expr {
	if e, ok := t.names[name]; ok {
		return e
	}
	return S(name)
}

// Known reports whether name is a constant or the variable.
func (t *Table) Known(name string) bool {
	_, ok := t.names[name]
	return ok
}

func (t *Table) Func(name string) (func(Expr) Expr, bool) {
	f, ok := t.funcs[name]
	return f, ok
}

// Funcs lists the function names in sorted order.
func (t *Table) Funcs() []string {
	out := make([]string, 0, len(t.funcs))
	for name := range t.funcs {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
