package formval_test

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	formval "github.com/reoring/formval"
	"github.com/reoring/formval/rules"
)

// captureRule counts invocations, remembers the last value it saw, and
// optionally fails via fn.
func captureRule(calls *atomic.Int32, last *atomic.Value, fn func(v any) formval.Issues) formval.Rule {
	return rules.Func("capture", func(ctx context.Context, v any, fc formval.FieldContext) formval.Issues {
		if calls != nil {
			calls.Add(1)
		}
		if last != nil {
			last.Store(fmt.Sprintf("%v", v))
		}
		if fn != nil {
			return fn(v)
		}
		return nil
	})
}

// waitSettled polls until no validation is in flight for the field.
func waitSettled(t *testing.T, f *formval.Form, path string) formval.FieldState {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		st, ok := f.Field(path)
		if !ok {
			t.Fatalf("unknown field %s", path)
		}
		if !st.IsValidating {
			return st
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("field %s did not settle", path)
	return formval.FieldState{}
}
