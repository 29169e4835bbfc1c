// Package integral computes symbolic antiderivatives and definite integrals
// of user-supplied expressions in one real variable.
//
// A Service runs each request through a fixed pipeline:
//
//	sanitize → simplify → indefinite → definite → classify
//
// and returns a Result holding the rendered answer, the derivation steps
// and the integration techniques suggested by the input text. Failures are
// values: Integrate never panics and never returns an error.
//
// Usage:
//
//	svc := integral.NewService(integral.NewEnv(integral.Options{}))
//	res := svc.Integrate(ctx, integral.Request{Function: "x*exp(x)"})
//	if res.Success {
//		fmt.Println(res.Result)
//	}
package integral

import (
	"context"
	"errors"
	"runtime/debug"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/zoobzio/capitan"
	"github.com/zoobzio/pipz"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Service runs integration requests. It holds no per-request state and is
// safe for concurrent use.
type Service struct {
	env      *Env
	pipeline pipz.Chainable[*run]
}

// NewService builds a Service over env.
func NewService(env *Env) *Service {
	s := &Service{env: env}
	s.pipeline = s.newPipeline()
	return s
}

// Env returns the environment the service was built with.
func (s *Service) Env() *Env { return s.env }

type requestIDKey struct{}

// WithRequestID attaches a request id that Integrate reuses instead of
// generating one.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestID returns the id attached by WithRequestID, if any.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// Integrate runs one request to completion.
func (s *Service) Integrate(ctx context.Context, req Request) (res Result) {
	start := time.Now()
	r := &run{id: RequestID(ctx), req: req}
	if r.id == "" {
		r.id = uuid.New().String()
	}

	ctx, span := tracer.Start(ctx, "integral.Service.Integrate",
		trace.WithAttributes(
			attribute.String("request_id", r.id),
			attribute.String("function", req.Function),
			attribute.String("lower_limit", req.LowerLimit),
			attribute.String("upper_limit", req.UpperLimit),
		),
	)
	defer span.End()

	capitan.Info(ctx, RequestStarted,
		RequestIDKey.Field(r.id),
		FunctionKey.Field(req.Function),
		LowerKey.Field(req.LowerLimit),
		UpperKey.Field(req.UpperLimit),
	)

	var failure *Failure
	defer func() {
		if p := recover(); p != nil {
			failure = internalFailure(p, debug.Stack())
		}
		if failure != nil {
			res = failed(r, failure)
		} else {
			res = succeeded(r)
		}
		s.finish(ctx, span, r, failure, time.Since(start))
	}()

	if _, err := s.pipeline.Process(ctx, r); err != nil {
		failure = asFailure(err)
	}
	return res
}

// asFailure recovers the stage failure from the pipeline's error chain.
func asFailure(err error) *Failure {
	var f *Failure
	if errors.As(err, &f) {
		return f
	}
	return &Failure{Kind: KindInternal, Reason: ReasonServerError + ": " + short(err), Err: err}
}

func succeeded(r *run) Result {
	return Result{
		Success:    true,
		Result:     r.result,
		Steps:      nonNil(r.steps),
		Methods:    nonNil(r.methods),
		IsDefinite: r.definite,
		IsImproper: r.definite && r.improper,
		RequestID:  r.id,
	}
}

func failed(r *run, f *Failure) Result {
	steps := r.steps
	if f.Kind == KindInput {
		steps = nil
	}
	return Result{
		Error:      f.Reason,
		Steps:      nonNil(steps),
		Methods:    []string{},
		IsDefinite: r.definite,
		IsImproper: r.definite && r.improper,
		Kind:       f.Kind,
		RequestID:  r.id,
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// finish records the outcome on the span, the metrics and the event bus.
func (s *Service) finish(ctx context.Context, span trace.Span, r *run, f *Failure, d time.Duration) {
	kind := KindNone
	if f != nil {
		kind = f.Kind
	}
	observeRequest(r.mode(), kind, d)
	span.SetAttributes(
		attribute.Bool("definite", r.definite),
		attribute.Bool("improper", r.improper),
		attribute.Int("steps", len(r.steps)),
	)

	if f != nil {
		span.RecordError(f)
		span.SetStatus(codes.Error, f.Reason)
		capitan.Error(ctx, RequestFailed,
			RequestIDKey.Field(r.id),
			FunctionKey.Field(r.req.Function),
			KindKey.Field(f.Kind.String()),
			ReasonKey.Field(f.Reason),
			ErrorKey.Field(diagnostic(f)),
			StepsKey.Field(len(r.steps)),
			DurationKey.Field(int(d.Milliseconds())),
		)
		return
	}
	span.SetStatus(codes.Ok, "")
	capitan.Info(ctx, RequestCompleted,
		RequestIDKey.Field(r.id),
		FunctionKey.Field(r.req.Function),
		ResultKey.Field(r.result),
		ModeKey.Field(r.mode()),
		StepsKey.Field(len(r.steps)),
		MethodsKey.Field(strings.Join(r.methods, ",")),
		DurationKey.Field(int(d.Milliseconds())),
	)
}
