// Package dsl provides the fluent builder for formval schemas.
//
// A schema declares, per field, the ordered rule pipeline plus optional
// scheduling (debounce/throttle) and a per-field mode override. Build
// compiles it into an immutable formval.Schema that may be shared across any
// number of form instances.
//
//	s := dsl.Schema().
//		Field("email", rules.Required(), rules.Email()).
//			Async(uniqueEmail).Debounce(300*time.Millisecond).
//		Field("password", rules.Required(), rules.MinLen(8)).
//		Field("confirm", rules.EqualsField("password")).
//		Nested("profile", dsl.Schema().
//			Field("age", rules.Min(18))).
//		MustBuild()
package dsl

import (
	"time"

	formval "github.com/reoring/formval"
)

type schemaBuilder struct {
	specs []formval.FieldSpec
}

// fieldStep scopes chained configuration to the most recently added field.
type fieldStep struct {
	b *schemaBuilder
}

// SubSchema is any builder value usable as a nested sub-schema: both the
// builder returned by Schema and the step value returned by Field chaining
// satisfy it.
type SubSchema interface {
	specsList() []formval.FieldSpec
}

func (b *schemaBuilder) specsList() []formval.FieldSpec { return b.specs }
func (f *fieldStep) specsList() []formval.FieldSpec     { return f.b.specs }

// Schema creates a new, empty schema builder.
func Schema() *schemaBuilder {
	return &schemaBuilder{}
}

// Field appends a field whose pipeline starts with the given synchronous
// rules, declared in order.
func (b *schemaBuilder) Field(name string, rs ...formval.Rule) *fieldStep {
	spec := formval.FieldSpec{Path: name}
	for _, r := range rs {
		spec.Steps = append(spec.Steps, formval.Step{Rule: r})
	}
	b.specs = append(b.specs, spec)
	return &fieldStep{b: b}
}

// Nested appends an object field; sub's fields flatten under name with
// dot-notation paths. Array-valued fields are not expanded: a rule attached
// to an array field validates the whole array value.
func (b *schemaBuilder) Nested(name string, sub SubSchema) *schemaBuilder {
	b.specs = append(b.specs, formval.FieldSpec{Path: name, Nested: sub.specsList()})
	return b
}

// Build compiles the declared fields. Malformed declarations come back as a
// *formval.ConfigError.
func (b *schemaBuilder) Build() (*formval.Schema, error) {
	return formval.NewSchema(b.specs...)
}

// MustBuild is like Build but panics on error.
func (b *schemaBuilder) MustBuild() *formval.Schema {
	s, err := b.Build()
	if err != nil {
		panic(err)
	}
	return s
}

func (f *fieldStep) last() *formval.FieldSpec {
	return &f.b.specs[len(f.b.specs)-1]
}

// Async appends asynchronous steps to the current field's pipeline. They run
// off the caller goroutine and only after the synchronous steps pass.
func (f *fieldStep) Async(rs ...formval.Rule) *fieldStep {
	spec := f.last()
	for _, r := range rs {
		spec.Steps = append(spec.Steps, formval.Step{Rule: r, Async: true})
	}
	return f
}

// Debounce delays the current field's validation until d of quiescence; each
// new change restarts the timer.
func (f *fieldStep) Debounce(d time.Duration) *fieldStep {
	f.last().Debounce = d
	return f
}

// Throttle allows at most one validation start per window; changes inside
// the window defer to its end with the latest value winning. A non-positive
// d selects formval.DefaultThrottleWindow.
func (f *fieldStep) Throttle(d time.Duration) *fieldStep {
	if d <= 0 {
		d = formval.DefaultThrottleWindow
	}
	f.last().Throttle = d
	return f
}

// Mode overrides the form-level mode for the current field.
func (f *fieldStep) Mode(m formval.Mode) *fieldStep {
	f.last().Mode = m
	return f
}

// Field starts the next field, ending configuration of the current one.
func (f *fieldStep) Field(name string, rs ...formval.Rule) *fieldStep {
	return f.b.Field(name, rs...)
}

// Nested delegates to the builder-level Nested.
func (f *fieldStep) Nested(name string, sub SubSchema) *schemaBuilder {
	return f.b.Nested(name, sub)
}

func (f *fieldStep) Build() (*formval.Schema, error) { return f.b.Build() }
func (f *fieldStep) MustBuild() *formval.Schema      { return f.b.MustBuild() }
