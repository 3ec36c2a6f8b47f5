package formval

import "context"

// FieldContext is passed to every rule invocation. Rules must treat it as
// read-only: Siblings is a snapshot of the form model taken when the
// validation request was issued, so cross-field rules observe a consistent
// view even while the user keeps typing.
type FieldContext struct {
	// Path is the dot-separated path of the field under validation.
	Path string
	// Siblings maps every schema field path to its value at request time.
	Siblings map[string]any
}

// Rule validates a single value. A rule reports failures as Issues; it never
// returns them as a panic or an error. Slow rules (network-backed uniqueness
// checks and the like) use the same contract and simply block; the engine
// runs async pipeline steps off the caller goroutine and fences their results
// against staleness.
//
// Rules must not mutate value or fc.
type Rule interface {
	Validate(ctx context.Context, value any, fc FieldContext) Issues
}

// RuleFunc adapts a plain function to the Rule interface.
type RuleFunc func(ctx context.Context, value any, fc FieldContext) Issues

func (f RuleFunc) Validate(ctx context.Context, value any, fc FieldContext) Issues {
	return f(ctx, value, fc)
}

// ConfigChecker is an optional interface for rules whose construction can
// fail (for example a rule built around a regular expression). Schema
// compilation calls CheckConfig on every step implementing it and surfaces a
// failure as a *ConfigError at bind time instead of a per-submission issue.
type ConfigChecker interface {
	CheckConfig() error
}
