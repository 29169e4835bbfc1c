package integral_test

import (
	"context"
	"reflect"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/zoobzio/capitan"

	"github.com/njchilds90/integral"
)

var svc = integral.NewService(integral.NewEnv(integral.Options{}))

func integrate(t *testing.T, fn, lo, hi string) integral.Result {
	t.Helper()
	return svc.Integrate(context.Background(), integral.Request{Function: fn, LowerLimit: lo, UpperLimit: hi})
}

// ============================================================
// End-to-end scenarios
// ============================================================

func TestIntegrate_SinCos(t *testing.T) {
	res := integrate(t, "sin(x)*cos(x)", "", "")
	if !res.Success {
		t.Fatalf("want success, got %q", res.Error)
	}
	if res.IsDefinite {
		t.Error("want indefinite result")
	}
	if !slices.Contains(res.Methods, "Trigonometric Identities") {
		t.Errorf("want Trigonometric Identities in %v", res.Methods)
	}
	if res.Result == "" {
		t.Error("want rendered result")
	}
	last := res.Steps[len(res.Steps)-1]
	if !strings.HasPrefix(last, "Indefinite integral: ") || !strings.HasSuffix(last, " + C") {
		t.Errorf("want indefinite step last, got %q", last)
	}
}

func TestIntegrate_ImproperReciprocal(t *testing.T) {
	res := integrate(t, "1/x", "1", "oo")
	if !res.Success {
		t.Fatalf("want success, got %q (steps %v)", res.Error, res.Steps)
	}
	if !res.IsDefinite || !res.IsImproper {
		t.Errorf("want definite and improper, got definite=%v improper=%v", res.IsDefinite, res.IsImproper)
	}
	if res.Result != `\infty` {
		t.Errorf("want \\infty, got %s", res.Result)
	}
	want := []string{
		`Integrand: \frac{1}{x}`,
		`Simplified integrand: \frac{1}{x}`,
		`Definite integral: \int_{1}^{\infty} \frac{1}{x} \, dx`,
		`Result: \infty`,
	}
	if !reflect.DeepEqual(res.Steps, want) {
		t.Errorf("want steps %q, got %q", want, res.Steps)
	}
}

func TestIntegrate_Empty(t *testing.T) {
	res := integrate(t, "", "", "")
	if res.Success {
		t.Fatal("want failure")
	}
	if res.Error != integral.ReasonEmpty {
		t.Errorf("want %q, got %q", integral.ReasonEmpty, res.Error)
	}
	if res.Steps == nil || len(res.Steps) != 0 {
		t.Errorf("want empty steps, got %v", res.Steps)
	}
	if res.Kind != integral.KindInput {
		t.Errorf("want input kind, got %s", res.Kind)
	}
}

func TestIntegrate_Malformed(t *testing.T) {
	res := integrate(t, "x^^2", "", "")
	if res.Success {
		t.Fatal("want failure")
	}
	if res.Error != integral.ReasonNotUnderstood {
		t.Errorf("want %q, got %q", integral.ReasonNotUnderstood, res.Error)
	}
	if len(res.Steps) != 0 {
		t.Errorf("want no steps, got %v", res.Steps)
	}
}

func TestIntegrate_NoClosedForm(t *testing.T) {
	res := integrate(t, "exp(x^2)", "", "")
	if res.Success {
		t.Fatalf("want failure, got %s", res.Result)
	}
	if res.Error != integral.ReasonNoSolution {
		t.Errorf("want %q, got %q", integral.ReasonNoSolution, res.Error)
	}
	if res.Kind != integral.KindNoSolution {
		t.Errorf("want no_solution kind, got %s", res.Kind)
	}
	var simplified bool
	for _, s := range res.Steps {
		if strings.HasPrefix(s, "Simplified integrand: ") {
			simplified = true
		}
		if strings.HasPrefix(s, "Result: ") || strings.HasPrefix(s, "Indefinite integral: ") {
			t.Errorf("unexpected result step %q", s)
		}
	}
	if !simplified {
		t.Errorf("want simplified step in %v", res.Steps)
	}
	if last := res.Steps[len(res.Steps)-1]; last != "The indefinite integral could not be solved analytically." {
		t.Errorf("unexpected last step %q", last)
	}
}

// ============================================================
// Bounds
// ============================================================

func TestIntegrate_PartialBoundsFallBack(t *testing.T) {
	none := integrate(t, "x^2", "", "")
	for _, lim := range [][2]string{{"0", ""}, {"", "1"}, {"0", "nonsense!"}, {"$", "1"}} {
		got := integrate(t, "x^2", lim[0], lim[1])
		if got.Result != none.Result || !reflect.DeepEqual(got.Steps, none.Steps) || !reflect.DeepEqual(got.Methods, none.Methods) {
			t.Errorf("limits %q: want %+v, got %+v", lim, none, got)
		}
		if got.IsDefinite {
			t.Errorf("limits %q: want indefinite", lim)
		}
	}
}

func TestIntegrate_StrictBounds(t *testing.T) {
	strict := integral.NewService(integral.NewEnv(integral.Options{StrictBounds: true}))
	res := strict.Integrate(context.Background(), integral.Request{Function: "x", LowerLimit: "0", UpperLimit: "nonsense!"})
	if res.Success || res.Error != integral.ReasonInvalidLimit {
		t.Errorf("want %q, got %+v", integral.ReasonInvalidLimit, res)
	}
	res = strict.Integrate(context.Background(), integral.Request{Function: "x", UpperLimit: "1"})
	if !res.Success || res.IsDefinite {
		t.Errorf("want indefinite success for one absent limit, got %+v", res)
	}
}

func TestIntegrate_Definite(t *testing.T) {
	cases := []struct {
		fn, lo, hi, want string
		improper         bool
	}{
		{"x", "0", "1", `\frac{1}{2}`, false},
		{"sin(x)", "0", "pi", "2", false},
		{"exp(-x)", "0", "oo", "1", true},
		{"1/(1+x^2)", "-oo", "+oo", `\pi`, true},
		{"x^2", "-1", "1", `\frac{2}{3}`, false},
		{"ln(x)", "1", "e", "1", false},
	}
	for _, c := range cases {
		res := integrate(t, c.fn, c.lo, c.hi)
		if !res.Success {
			t.Errorf("%s over [%s, %s]: %s (steps %v)", c.fn, c.lo, c.hi, res.Error, res.Steps)
			continue
		}
		if res.Result != c.want {
			t.Errorf("%s over [%s, %s]: want %s, got %s", c.fn, c.lo, c.hi, c.want, res.Result)
		}
		if !res.IsDefinite || res.IsImproper != c.improper {
			t.Errorf("%s over [%s, %s]: definite=%v improper=%v", c.fn, c.lo, c.hi, res.IsDefinite, res.IsImproper)
		}
	}
}

func TestIntegrate_DefiniteFailure(t *testing.T) {
	res := integrate(t, "1/x^2", "-1", "1")
	if res.Success {
		t.Fatalf("want failure, got %s", res.Result)
	}
	if res.Error != integral.ReasonDefiniteFailed {
		t.Errorf("want %q, got %q", integral.ReasonDefiniteFailed, res.Error)
	}
	if last := res.Steps[len(res.Steps)-1]; last != "The definite integral could not be calculated." {
		t.Errorf("unexpected last step %q", last)
	}
	if !res.IsDefinite || res.IsImproper {
		t.Errorf("want definite, not improper, got definite=%v improper=%v", res.IsDefinite, res.IsImproper)
	}
}

func TestIntegrate_LnRendering(t *testing.T) {
	res := integrate(t, "1/x", "", "")
	if !res.Success {
		t.Fatalf("want success, got %q", res.Error)
	}
	if strings.Contains(res.Result, `\log`) || !strings.Contains(res.Result, `\ln`) {
		t.Errorf("want natural log rendered as \\ln, got %s", res.Result)
	}
}

// ============================================================
// Concurrency and events
// ============================================================

func TestIntegrate_Concurrent(t *testing.T) {
	want := integrate(t, "x*exp(x)", "", "")
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got := svc.Integrate(context.Background(), integral.Request{Function: "x*exp(x)"})
			if got.Result != want.Result {
				t.Errorf("want %s, got %s", want.Result, got.Result)
			}
		}()
	}
	wg.Wait()
}

func TestIntegrate_RequestFailedHook(t *testing.T) {
	const id = "req-failed-hook"
	var wg sync.WaitGroup
	var once sync.Once
	var reason, kind, requestID string

	wg.Add(1)
	listener := capitan.Hook(integral.RequestFailed, func(_ context.Context, e *capitan.Event) {
		got, _ := integral.RequestIDKey.From(e)
		if got != id {
			return
		}
		once.Do(func() {
			defer wg.Done()
			requestID = got
			reason, _ = integral.ReasonKey.From(e)
			kind, _ = integral.KindKey.From(e)
		})
	})
	defer listener.Close()

	res := svc.Integrate(integral.WithRequestID(context.Background(), id), integral.Request{Function: "exp(x^2)"})
	if res.RequestID != id {
		t.Errorf("want request id %s, got %s", id, res.RequestID)
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("timeout waiting for hook")
	}

	if requestID != id {
		t.Errorf("want %s, got %s", id, requestID)
	}
	if reason != integral.ReasonNoSolution {
		t.Errorf("want %q, got %q", integral.ReasonNoSolution, reason)
	}
	if kind != "no_solution" {
		t.Errorf("want no_solution, got %q", kind)
	}
}

func TestIntegrate_RequestCompletedHook(t *testing.T) {
	const id = "req-completed-hook"
	var wg sync.WaitGroup
	var once sync.Once
	var mode, result string

	wg.Add(1)
	listener := capitan.Hook(integral.RequestCompleted, func(_ context.Context, e *capitan.Event) {
		if got, _ := integral.RequestIDKey.From(e); got != id {
			return
		}
		once.Do(func() {
			defer wg.Done()
			mode, _ = integral.ModeKey.From(e)
			result, _ = integral.ResultKey.From(e)
		})
	})
	defer listener.Close()

	res := svc.Integrate(integral.WithRequestID(context.Background(), id), integral.Request{Function: "x", LowerLimit: "0", UpperLimit: "2"})

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("timeout waiting for hook")
	}

	if mode != "definite" {
		t.Errorf("want definite, got %q", mode)
	}
	if result != res.Result || result != "2" {
		t.Errorf("want 2, got %q", result)
	}
}
