// Package formval provides:
//
// - A schema-driven form-validation engine: compiled field pipelines, per-field
//   and form-level validation state, and a typed read model (issues, dirty,
//   validating, submission flags)
// - A stable error model via Issues (field path, code, message)
// - Five validation-trigger modes (lazy, aggressive, eager, blur, progressive)
// - Debounced/throttled scheduling of validators with stale-result fencing,
//   so out-of-order async completions never overwrite newer state
//
// Design policy:
// - Keep only public APIs in the root package; put detailed implementations under internal/.
// - Place the schema builder under dsl/, built-in rules under rules/, and
//   declarative schema documents under loader/.
// - Prefer black-box testing against public APIs.
//
// Typical usage:
//
//	s := dsl.Schema().
//		Field("email", rules.Required(), rules.Email()).
//		MustBuild()
//	f, err := formval.New(s, map[string]any{"email": ""}, formval.FormOpt{})
//	f.Set("email", "a@b.com")
//	submit := f.HandleSubmit(func(snapshot map[string]any) error { return save(snapshot) })
//	err = submit(ctx)
package formval
