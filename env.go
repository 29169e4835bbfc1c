package integral

import "github.com/njchilds90/integral/internal/symbolic"

// Variable is the name of the single real variable of integration.
const Variable = "x"

// Options configures an Env.
type Options struct {
	// StrictBounds fails a request whose limit text cannot be read instead
	// of treating that limit as absent.
	StrictBounds bool
}

// Env is the environment shared by every request: the variable of
// integration and the symbol table built around it. It is created once
// and never modified.
type Env struct {
	x     *symbolic.Sym
	table *symbolic.Table
	opts  Options
}

// NewEnv builds the process environment.
func NewEnv(opts Options) *Env {
	x := symbolic.S(Variable)
	return &Env{x: x, table: symbolic.NewTable(x), opts: opts}
}

func (e *Env) Variable() *symbolic.Sym { return e.x }
func (e *Env) Table() *symbolic.Table  { return e.table }
func (e *Env) Options() Options        { return e.opts }
