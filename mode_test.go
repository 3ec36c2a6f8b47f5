package formval_test

import (
	"sync/atomic"
	"testing"

	formval "github.com/reoring/formval"
	"github.com/reoring/formval/dsl"
)

func newCountingForm(t *testing.T, mode formval.Mode, fail func(v any) formval.Issues) (*formval.Form, *atomic.Int32) {
	t.Helper()
	var calls atomic.Int32
	s := dsl.Schema().Field("name", captureRule(&calls, nil, fail)).MustBuild()
	f, err := formval.New(s, map[string]any{"name": ""}, formval.FormOpt{Mode: mode})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	return f, &calls
}

func TestMode_Lazy_NeverTriggersOnEvents(t *testing.T) {
	f, calls := newCountingForm(t, formval.ModeLazy, nil)
	f.Set("name", "a")
	f.Set("name", "ab")
	f.Blur("name")
	if n := calls.Load(); n != 0 {
		t.Fatalf("lazy mode validated %d times on events", n)
	}
}

func TestMode_Aggressive_TriggersOnEveryChangeAndBlur(t *testing.T) {
	f, calls := newCountingForm(t, formval.ModeAggressive, nil)
	f.Set("name", "a")
	f.Set("name", "ab")
	f.Blur("name")
	if n := calls.Load(); n != 3 {
		t.Fatalf("expected 3 invocations, got %d", n)
	}
}

// Eager trace per the engine contract: no validation before the first blur,
// exactly one on the first blur, then every change validates.
func TestMode_Eager_QuietUntilFirstBlur(t *testing.T) {
	f, calls := newCountingForm(t, formval.ModeEager, nil)

	f.Set("name", "a")
	f.Set("name", "ab")
	f.Set("name", "abc")
	if n := calls.Load(); n != 0 {
		t.Fatalf("eager validated before blur: %d", n)
	}

	f.Blur("name")
	if n := calls.Load(); n != 1 {
		t.Fatalf("first blur should trigger exactly one invocation, got %d", n)
	}

	f.Set("name", "abcd")
	f.Set("name", "abcde")
	if n := calls.Load(); n != 3 {
		t.Fatalf("changes after first blur should each validate, got %d", n)
	}
}

func TestMode_Blur_ChangesNeverTrigger(t *testing.T) {
	f, calls := newCountingForm(t, formval.ModeBlur, nil)
	f.Set("name", "a")
	f.Set("name", "ab")
	if n := calls.Load(); n != 0 {
		t.Fatalf("blur mode validated on change: %d", n)
	}
	f.Blur("name")
	if n := calls.Load(); n != 1 {
		t.Fatalf("expected one invocation on blur, got %d", n)
	}
}

// Progressive: change-driven validation runs only until the field passes
// once; afterwards only blur re-validates.
func TestMode_Progressive_SuppressesAfterFirstSuccess(t *testing.T) {
	fail := func(v any) formval.Issues {
		if s, _ := v.(string); len(s) < 3 {
			return formval.Issues{{Code: formval.CodeTooShort, Message: "too short"}}
		}
		return nil
	}
	f, calls := newCountingForm(t, formval.ModeProgressive, fail)

	f.Set("name", "ab") // invalid, validates
	if n := calls.Load(); n != 1 {
		t.Fatalf("expected validation while never valid, got %d", n)
	}
	f.Set("name", "abc") // valid for the first time
	if n := calls.Load(); n != 2 {
		t.Fatalf("expected second validation, got %d", n)
	}

	f.Set("name", "x") // suppressed: field has been valid once
	if n := calls.Load(); n != 2 {
		t.Fatalf("change after first success must not validate, got %d", n)
	}
	st, _ := f.Field("name")
	if len(st.Issues) != 0 {
		t.Fatalf("suppressed change must not rewrite issues: %v", st.Issues)
	}

	f.Blur("name") // blur always re-validates
	if n := calls.Load(); n != 3 {
		t.Fatalf("blur should re-validate, got %d", n)
	}
	st, _ = f.Field("name")
	if len(st.Issues) == 0 {
		t.Fatalf("blur validation should have caught the short value")
	}
}

func TestMode_PerFieldOverride(t *testing.T) {
	var lazyCalls, aggCalls atomic.Int32
	s := dsl.Schema().
		Field("a", captureRule(&lazyCalls, nil, nil)).Mode(formval.ModeLazy).
		Field("b", captureRule(&aggCalls, nil, nil)).Mode(formval.ModeAggressive).
		MustBuild()
	f, err := formval.New(s, nil, formval.FormOpt{Mode: formval.ModeEager})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	f.Set("a", "x")
	f.Set("b", "y")
	if lazyCalls.Load() != 0 || aggCalls.Load() != 1 {
		t.Fatalf("per-field override ignored: lazy=%d agg=%d", lazyCalls.Load(), aggCalls.Load())
	}
}

func TestParseMode(t *testing.T) {
	m, err := formval.ParseMode("progressive")
	if err != nil || m != formval.ModeProgressive {
		t.Fatalf("expected progressive, got %v err=%v", m, err)
	}
	if _, err := formval.ParseMode("bogus"); err == nil {
		t.Fatalf("expected error for unknown mode")
	}
}
