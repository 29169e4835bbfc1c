package integral

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// ============================================================
// Request / Result
// ============================================================

// Request is one integration request as received over the wire.
type Request struct {
	Function   string `json:"function" desc:"Integrand in x, e.g. sin(x)*cos(x) or 1/x"`
	LowerLimit string `json:"lower_limit,omitempty" desc:"Lower limit: a number, an expression such as 2*pi, or oo / -oo"`
	UpperLimit string `json:"upper_limit,omitempty" desc:"Upper limit: a number, an expression such as 2*pi, or oo / -oo"`
}

// Result is the outcome of one request. Result is set on success and
// Error on failure; Steps holds the derivation trace either way.
type Result struct {
	Success    bool     `json:"success" desc:"Whether an antiderivative or value was found"`
	Result     string   `json:"result,omitempty" desc:"LaTeX of the antiderivative or definite value"`
	Error      string   `json:"error,omitempty" desc:"Fixed failure reason"`
	Steps      []string `json:"steps" desc:"Ordered derivation steps"`
	Methods    []string `json:"methods" desc:"Techniques suggested by the integrand text"`
	IsDefinite bool     `json:"is_definite" desc:"Both limits were supplied and used"`
	IsImproper bool     `json:"is_improper" desc:"A limit is infinite"`

	Kind      Kind   `json:"-"`
	RequestID string `json:"-"`
}

// ============================================================
// Failures
// ============================================================

// Kind classifies a failed request.
type Kind int

const (
	KindNone Kind = iota
	KindInput
	KindNoSolution
	KindInternal
)

func (k Kind) String() string {
	switch k {
	case KindInput:
		return "input"
	case KindNoSolution:
		return "no_solution"
	case KindInternal:
		return "internal"
	}
	return "none"
}

// Fixed failure reasons.
const (
	ReasonEmpty          = "empty"
	ReasonNotUnderstood  = "not understood"
	ReasonInvalidLimit   = "invalid limit"
	ReasonNoSolution     = "no analytical solution"
	ReasonDefiniteFailed = "definite integral failed"
	ReasonServerError    = "server error"
)

// Failure is the typed error a stage returns. Reason is safe to show to
// callers; Err carries the diagnostic detail and is only logged.
type Failure struct {
	Kind   Kind
	Reason string
	Err    error
}

func (f *Failure) Error() string { return f.Reason }
func (f *Failure) Unwrap() error { return f.Err }

// maxShortLen caps the description attached to a server error.
const maxShortLen = 80

func short(v any) string {
	s := fmt.Sprint(v)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	if len(s) <= maxShortLen {
		return s
	}
	cut := 0
	for cut < len(s) {
		_, size := utf8.DecodeRuneInString(s[cut:])
		if cut+size > maxShortLen {
			break
		}
		cut += size
	}
	return s[:cut]
}

// internalFailure turns a recovered panic or unexpected error into a
// failure whose reason carries only a one-line description.
func internalFailure(v any, stack []byte) *Failure {
	return &Failure{
		Kind:   KindInternal,
		Reason: ReasonServerError + ": " + short(v),
		Err:    fmt.Errorf("%v\n%s", v, stack),
	}
}
