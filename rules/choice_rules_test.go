package rules_test

import (
	"context"
	"testing"

	formval "github.com/reoring/formval"
	"github.com/reoring/formval/rules"
)

func TestOneOf(t *testing.T) {
	r := rules.OneOf("red", "green", "blue")
	if iss := run(t, r, "green"); len(iss) != 0 {
		t.Fatalf("expected pass, got %v", iss)
	}
	iss := run(t, r, "yellow")
	if len(iss) != 1 || iss[0].Code != formval.CodeInvalidEnum {
		t.Fatalf("expected invalid_enum, got %v", iss)
	}
	if iss := run(t, r, nil); len(iss) != 0 {
		t.Fatalf("absent value must pass, got %v", iss)
	}
}

func TestEqualsField(t *testing.T) {
	r := rules.EqualsField("password")
	fc := formval.FieldContext{Path: "confirm", Siblings: map[string]any{"password": "hunter2"}}

	if iss := r.Validate(context.Background(), "hunter2", fc); len(iss) != 0 {
		t.Fatalf("expected match, got %v", iss)
	}
	iss := r.Validate(context.Background(), "other", fc)
	if len(iss) != 1 || iss[0].Code != formval.CodeMismatch {
		t.Fatalf("expected mismatch, got %v", iss)
	}
	// Both sides absent counts as matching: the required rule owns presence.
	empty := formval.FieldContext{Path: "confirm", Siblings: map[string]any{}}
	if iss := r.Validate(context.Background(), "", empty); len(iss) != 0 {
		t.Fatalf("expected pass for both absent, got %v", iss)
	}
}
