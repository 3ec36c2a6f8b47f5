package rules

import (
	"context"
	"fmt"
	"reflect"

	formval "github.com/reoring/formval"
)

// OneOf requires the value to equal one of the allowed values.
func OneOf(allowed ...any) formval.Rule {
	return Func("one_of", func(ctx context.Context, value any, fc formval.FieldContext) formval.Issues {
		if isAbsent(value) {
			return nil
		}
		for _, a := range allowed {
			if reflect.DeepEqual(value, a) {
				return nil
			}
		}
		return fail(formval.CodeInvalidEnum, fmt.Sprintf("must be one of %v", allowed), map[string]any{"allowed": allowed})
	})
}

// EqualsField requires the value to equal the sibling field at otherPath
// (password/confirm pairs). Reads through FieldContext.Siblings, so the
// comparison sees the model as of request time.
func EqualsField(otherPath string) formval.Rule {
	return Func("equals_field", func(ctx context.Context, value any, fc formval.FieldContext) formval.Issues {
		other := fc.Siblings[otherPath]
		if isAbsent(value) && isAbsent(other) {
			return nil
		}
		if !reflect.DeepEqual(value, other) {
			return fail(formval.CodeMismatch, fmt.Sprintf("must match %s", otherPath), map[string]any{"other": otherPath})
		}
		return nil
	})
}
