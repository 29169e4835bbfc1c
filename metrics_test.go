package integral

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetrics_RequestOutcomes(t *testing.T) {
	svc := NewService(NewEnv(Options{}))
	cases := []struct {
		req           Request
		outcome, mode string
	}{
		{Request{Function: "x"}, "success", "indefinite"},
		{Request{Function: "x", LowerLimit: "0", UpperLimit: "1"}, "success", "definite"},
		{Request{Function: ""}, "input", "indefinite"},
		{Request{Function: "exp(x^2)"}, "no_solution", "indefinite"},
	}
	for _, c := range cases {
		counter := requestsTotal.WithLabelValues(c.outcome, c.mode)
		before := testutil.ToFloat64(counter)
		svc.Integrate(context.Background(), c.req)
		if got := testutil.ToFloat64(counter) - before; got != 1 {
			t.Errorf("%+v: want counter +1, got %+v", c.req, got)
		}
	}
}

func TestMetrics_StageFailures(t *testing.T) {
	svc := NewService(NewEnv(Options{}))
	counter := stageFailures.WithLabelValues(stageIndefinite, KindNoSolution.String())
	before := testutil.ToFloat64(counter)
	svc.Integrate(context.Background(), Request{Function: "exp(x^2)"})
	if got := testutil.ToFloat64(counter) - before; got != 1 {
		t.Errorf("want +1, got %v", got)
	}
}

func TestGuard_RecoversPanic(t *testing.T) {
	fn := guard("boom", func(context.Context, *run) *Failure {
		panic("engine exploded\nwith detail")
	})
	r := &run{id: "guard-test"}
	out, err := fn(context.Background(), r)
	if out != r {
		t.Error("want the run returned after a panic")
	}
	var f *Failure
	if !errors.As(err, &f) {
		t.Fatalf("want *Failure, got %v", err)
	}
	if f.Kind != KindInternal {
		t.Errorf("want internal, got %s", f.Kind)
	}
	if f.Reason != "server error: engine exploded" {
		t.Errorf("want short reason, got %q", f.Reason)
	}
}

func TestAsFailure_Foreign(t *testing.T) {
	f := asFailure(errors.New("deadline"))
	if f.Kind != KindInternal || f.Reason != "server error: deadline" {
		t.Errorf("unexpected %+v", f)
	}
}

func TestShort_RuneBoundary(t *testing.T) {
	got := short(strings.Repeat("a", maxShortLen-1) + "∫dx")
	if !utf8.ValidString(got) {
		t.Fatalf("want valid UTF-8, got %q", got)
	}
	if got != strings.Repeat("a", maxShortLen-1) {
		t.Errorf("want cut before the multibyte rune, got %q", got)
	}
	if got := short("≈ first line\nsecond"); got != "≈ first line" {
		t.Errorf("want first line, got %q", got)
	}
}
