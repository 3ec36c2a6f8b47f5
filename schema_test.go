package formval_test

import (
	"context"
	"errors"
	"testing"

	formval "github.com/reoring/formval"
	"github.com/reoring/formval/dsl"
	"github.com/reoring/formval/rules"
)

func TestSchema_FlattensNestedFields(t *testing.T) {
	s := dsl.Schema().
		Field("email", rules.Required()).
		Nested("profile", dsl.Schema().
			Field("age", rules.Min(18)).
			Nested("address", dsl.Schema().
				Field("city", rules.Required()))).
		MustBuild()

	want := []string{"email", "profile.age", "profile.address.city"}
	got := s.Paths()
	if len(got) != len(want) {
		t.Fatalf("expected paths %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected paths %v in declaration order, got %v", want, got)
		}
	}
	if _, ok := s.Pipeline("profile.address.city"); !ok {
		t.Fatalf("flattened pipeline missing")
	}
}

func TestSchema_DuplicatePathIsConfigError(t *testing.T) {
	_, err := dsl.Schema().
		Field("email", rules.Required()).
		Field("email", rules.Email()).
		Build()
	var ce *formval.ConfigError
	if !errors.As(err, &ce) {
		t.Fatalf("expected ConfigError for duplicate path, got %v", err)
	}
}

func TestSchema_BadPatternSurfacesAtCompileTime(t *testing.T) {
	_, err := dsl.Schema().
		Field("code", rules.Pattern("([")).
		Build()
	var ce *formval.ConfigError
	if !errors.As(err, &ce) {
		t.Fatalf("expected ConfigError for bad regexp, got %v", err)
	}
	if ce.Err == nil {
		t.Fatalf("expected underlying regexp error")
	}
}

func TestSchema_DebounceAndThrottleAreExclusive(t *testing.T) {
	_, err := formval.NewSchema(formval.FieldSpec{
		Path:     "f",
		Steps:    []formval.Step{{Rule: rules.Required()}},
		Debounce: 100,
		Throttle: 100,
	})
	if _, ok := err.(*formval.ConfigError); !ok {
		t.Fatalf("expected ConfigError, got %v", err)
	}
}

func TestSchema_EmptySchemaRejected(t *testing.T) {
	if _, err := dsl.Schema().Build(); err == nil {
		t.Fatalf("expected error for empty schema")
	}
}

func TestSchema_MustBuildPanicsOnBadConfig(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic")
		}
	}()
	dsl.Schema().MustBuild()
}

// A compiled schema is pure and reusable: two forms bound to it validate
// independently.
func TestSchema_SharedAcrossFormInstances(t *testing.T) {
	ctx := context.Background()
	s := dsl.Schema().Field("email", rules.Required(), rules.Email()).MustBuild()

	f1, err := formval.New(s, map[string]any{"email": "a@b.com"}, formval.FormOpt{})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	f2, err := formval.New(s, map[string]any{"email": ""}, formval.FormOpt{})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	if ok := f1.ValidateForm(ctx, true); !ok {
		t.Fatalf("f1 should be valid")
	}
	if ok := f2.ValidateForm(ctx, true); ok {
		t.Fatalf("f2 should be invalid")
	}
	if st, _ := f1.Field("email"); len(st.Issues) != 0 {
		t.Fatalf("f2 validation leaked into f1: %v", st.Issues)
	}
}
