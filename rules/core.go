// Package rules provides the built-in rule library for formval pipelines.
//
// Every rule follows the same contract: failures come back as Issues, never
// as panics or errors. Rules other than Required pass on absent values, so
// optional fields stay quiet until the user enters something.
package rules

import (
	"context"
	"fmt"
	"reflect"

	formval "github.com/reoring/formval"
)

// named wraps a validate func with the rule name stamped into every issue.
type named struct {
	name string
	fn   func(ctx context.Context, value any, fc formval.FieldContext) formval.Issues
}

func (r named) Validate(ctx context.Context, value any, fc formval.FieldContext) formval.Issues {
	iss := r.fn(ctx, value, fc)
	for i := range iss {
		if iss[i].Rule == "" {
			iss[i].Rule = r.name
		}
	}
	return iss
}

// Func adapts a custom validation function into a named rule.
func Func(name string, fn func(ctx context.Context, value any, fc formval.FieldContext) formval.Issues) formval.Rule {
	return named{name: name, fn: fn}
}

// fail builds the single-issue result most rules produce.
func fail(code, msg string, params map[string]any) formval.Issues {
	return formval.Issues{{Code: code, Message: msg, Params: params}}
}

// WithMessage overrides the message of every issue the wrapped rule produces.
// Config checks of the wrapped rule still apply.
type withMessage struct {
	inner formval.Rule
	msg   string
}

func WithMessage(r formval.Rule, msg string) formval.Rule {
	return withMessage{inner: r, msg: msg}
}

func (w withMessage) Validate(ctx context.Context, value any, fc formval.FieldContext) formval.Issues {
	iss := w.inner.Validate(ctx, value, fc)
	for i := range iss {
		iss[i].Message = w.msg
	}
	return iss
}

func (w withMessage) CheckConfig() error {
	if cc, ok := w.inner.(formval.ConfigChecker); ok {
		return cc.CheckConfig()
	}
	return nil
}

// isAbsent reports whether a value counts as "not provided": nil, empty
// string, or an empty slice/map.
func isAbsent(v any) bool {
	if v == nil {
		return true
	}
	switch rv := reflect.ValueOf(v); rv.Kind() {
	case reflect.String, reflect.Slice, reflect.Map, reflect.Array:
		return rv.Len() == 0
	default:
		return false
	}
}

// lengthOf returns the element/rune count for strings, slices, arrays and
// maps, or ok=false for anything else.
func lengthOf(v any) (int, bool) {
	switch rv := reflect.ValueOf(v); rv.Kind() {
	case reflect.String:
		return len([]rune(rv.String())), true
	case reflect.Slice, reflect.Map, reflect.Array:
		return rv.Len(), true
	default:
		return 0, false
	}
}

func typeFail(got any) formval.Issues {
	return fail(formval.CodeInvalidType, fmt.Sprintf("unexpected value type %T", got), map[string]any{"got": fmt.Sprintf("%T", got)})
}
