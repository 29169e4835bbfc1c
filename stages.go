package integral

import (
	"context"
	"errors"
	"runtime/debug"
	"time"

	"github.com/zoobzio/capitan"
	"github.com/zoobzio/pipz"

	"github.com/njchilds90/integral/internal/bound"
	"github.com/njchilds90/integral/internal/classify"
	"github.com/njchilds90/integral/internal/render"
	"github.com/njchilds90/integral/internal/sanitize"
	"github.com/njchilds90/integral/internal/symbolic"
)

// Stage names, in pipeline order.
const (
	stageSanitize   = "sanitize"
	stageSimplify   = "simplify"
	stageIndefinite = "indefinite"
	stageDefinite   = "definite"
	stageClassify   = "classify"
)

// run carries one request through the pipeline. Steps accumulate in
// place so a failed run still holds its partial trace.
type run struct {
	id  string
	req Request

	lower, upper bound.Bound
	parsed       symbolic.Expr
	simplified   symbolic.Expr
	anti         symbolic.Expr
	value        symbolic.Expr

	definite bool
	improper bool
	result   string
	steps    []string
	methods  []string
}

func (r *run) step(s string) { r.steps = append(r.steps, s) }

func (r *run) mode() string {
	if r.definite {
		return "definite"
	}
	return "indefinite"
}

// stageFunc is one transition of the pipeline. A non-nil Failure moves
// the run to its failed state.
type stageFunc func(ctx context.Context, r *run) *Failure

// guard adapts a stage for pipz: it times the stage, converts a panic
// into an internal failure and reports failures as events.
func guard(name string, fn stageFunc) func(context.Context, *run) (*run, error) {
	return func(ctx context.Context, r *run) (out *run, err error) {
		start := time.Now()
		var f *Failure
		defer func() {
			out = r
			if p := recover(); p != nil {
				f = internalFailure(p, debug.Stack())
			}
			observeStage(name, time.Since(start), f)
			if f != nil {
				capitan.Error(ctx, StageFailed,
					RequestIDKey.Field(r.id),
					StageKey.Field(name),
					KindKey.Field(f.Kind.String()),
					ReasonKey.Field(f.Reason),
					ErrorKey.Field(diagnostic(f)),
				)
				err = f
			}
		}()
		f = fn(ctx, r)
		return r, nil
	}
}

func diagnostic(f *Failure) string {
	if f.Err != nil {
		return f.Err.Error()
	}
	return f.Reason
}

// newPipeline assembles the stages in order.
func (s *Service) newPipeline() pipz.Chainable[*run] {
	return pipz.NewSequence("integrate",
		pipz.Apply(stageSanitize, guard(stageSanitize, s.sanitize)),
		pipz.Apply(stageSimplify, guard(stageSimplify, s.simplify)),
		pipz.Apply(stageIndefinite, guard(stageIndefinite, s.indefinite)),
		pipz.Apply(stageDefinite, guard(stageDefinite, s.definite)),
		pipz.Apply(stageClassify, guard(stageClassify, s.classify)),
	)
}

// ============================================================
// Stages
// ============================================================

// sanitize parses the integrand and both limits.
func (s *Service) sanitize(_ context.Context, r *run) *Failure {
	e, err := sanitize.Parse(r.req.Function, s.env.table)
	switch {
	case errors.Is(err, sanitize.ErrEmpty):
		return &Failure{Kind: KindInput, Reason: ReasonEmpty, Err: err}
	case err != nil:
		return &Failure{Kind: KindInput, Reason: ReasonNotUnderstood, Err: err}
	}
	r.lower = bound.Parse(r.req.LowerLimit, s.env.table)
	r.upper = bound.Parse(r.req.UpperLimit, s.env.table)
	if s.env.opts.StrictBounds && (r.lower.Kind == bound.Unparsable || r.upper.Kind == bound.Unparsable) {
		return &Failure{Kind: KindInput, Reason: ReasonInvalidLimit}
	}
	r.parsed = e
	r.step("Integrand: " + render.Render(e))
	return nil
}

func (s *Service) simplify(_ context.Context, r *run) *Failure {
	r.simplified = symbolic.DeepSimplify(r.parsed)
	r.step("Simplified integrand: " + render.Render(r.simplified))
	return nil
}

// indefinite treats an engine panic as a missing closed form.
func (s *Service) indefinite(_ context.Context, r *run) (f *Failure) {
	fail := func(err error) *Failure {
		r.step("The indefinite integral could not be solved analytically.")
		return &Failure{Kind: KindNoSolution, Reason: ReasonNoSolution, Err: err}
	}
	defer func() {
		if p := recover(); p != nil {
			f = fail(internalFailure(p, debug.Stack()).Err)
		}
	}()
	anti, ok := symbolic.Integrate(r.simplified, s.env.x.Name())
	if !ok {
		return fail(nil)
	}
	r.anti = symbolic.DeepSimplify(anti)
	return nil
}

// definite evaluates the integral over the limits when both are usable;
// otherwise the indefinite result is returned.
func (s *Service) definite(_ context.Context, r *run) (f *Failure) {
	if !r.lower.Usable() || !r.upper.Usable() {
		r.result = render.Render(r.anti)
		r.step("Indefinite integral: " + r.result + " + C")
		return nil
	}
	r.definite = true
	r.improper = r.lower.Infinite() || r.upper.Infinite()
	r.step(`Definite integral: \int_{` + render.Render(r.lower.Value) + `}^{` + render.Render(r.upper.Value) + `} ` +
		render.Render(r.simplified) + ` \, dx`)

	fail := func(err error) *Failure {
		r.step("The definite integral could not be calculated.")
		return &Failure{Kind: KindNoSolution, Reason: ReasonDefiniteFailed, Err: err}
	}
	defer func() {
		if p := recover(); p != nil {
			f = fail(internalFailure(p, debug.Stack()).Err)
		}
	}()
	v, ok := symbolic.DefiniteIntegrate(r.parsed, s.env.x.Name(), r.lower.Value, r.upper.Value)
	if !ok {
		return fail(nil)
	}
	r.value = symbolic.DeepSimplify(v)
	r.result = render.Render(r.value)
	r.step("Result: " + r.result)
	return nil
}

// classify labels the ln-rewritten input text, never the parsed tree.
func (s *Service) classify(_ context.Context, r *run) *Failure {
	for _, m := range classify.Methods(sanitize.Rewrite(r.req.Function)) {
		r.methods = append(r.methods, string(m))
	}
	return nil
}
