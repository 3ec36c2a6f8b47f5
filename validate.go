package formval

import (
	"context"

	"github.com/reoring/formval/internal/future"
)

// FormState is the aggregate read model, derived from field states on every
// read. IsValid requires both zero issues and no in-flight validation: a
// form with pending async checks is indeterminate, not valid.
type FormState struct {
	IsValid      bool
	IsDirty      bool
	IsSubmitting bool
	IsSubmitted  bool
}

// State recomputes and returns the aggregate form state.
func (f *Form) State() FormState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stateLocked()
}

func (f *Form) stateLocked() FormState {
	st := FormState{IsValid: true, IsSubmitting: f.submitting, IsSubmitted: f.submitted}
	for _, fs := range f.fields {
		if len(fs.issues) > 0 || fs.validating {
			st.IsValid = false
		}
		if fs.dirty {
			st.IsDirty = true
		}
	}
	return st
}

// Field returns the read model snapshot for one field path.
func (f *Form) Field(path string) (FieldState, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fs, ok := f.fields[path]
	if !ok {
		return FieldState{}, false
	}
	return fs.snapshot(path), true
}

// Errors returns the current issues per field path, omitting clean fields.
func (f *Form) Errors() map[string]Issues {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := map[string]Issues{}
	for path, fs := range f.fields {
		if len(fs.issues) > 0 {
			out[path] = append(Issues(nil), fs.issues...)
		}
	}
	return out
}

// ErrorMessages returns the first issue's message per failing field, for
// simple display.
func (f *Form) ErrorMessages() map[string]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := map[string]string{}
	for path, fs := range f.fields {
		if len(fs.issues) > 0 {
			out[path] = fs.issues[0].Message
		}
	}
	return out
}

// ValidateForm triggers every field's pipeline regardless of mode, awaits
// all of them, and reports whether the run produced zero issues. With
// setErrors false the issues are computed but not written into field state
// (a dry-run check).
func (f *Form) ValidateForm(ctx context.Context, setErrors bool) bool {
	results, _, ok := f.runAll(ctx, setErrors)
	if !ok {
		return false
	}
	for _, iss := range results {
		if len(iss) > 0 {
			return false
		}
	}
	return true
}

// runAll is the fan-out/fan-in barrier behind ValidateForm and HandleSubmit:
// every pipeline launches concurrently against the same model snapshot, the
// caller joins on all of them. Each field gets a fresh token first, so any
// previously scheduled or in-flight validation is superseded.
func (f *Form) runAll(ctx context.Context, setErrors bool) (map[string]Issues, map[string]any, bool) {
	type item struct {
		path  string
		pipe  *Pipeline
		value any
		token uint64
	}

	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return nil, nil, false
	}
	siblings := f.valuesLocked()
	items := make([]item, 0, len(f.schema.order))
	for _, path := range f.schema.order {
		fs := f.fields[path]
		var token uint64
		if setErrors {
			// Supersede any scheduled or in-flight event-driven run; a dry
			// run computes detached and must not disturb those.
			token = f.runner.Supersede(path)
			fs.validating = true
		}
		items = append(items, item{path: path, pipe: fs.pipeline, value: fs.value, token: token})
	}
	f.mu.Unlock()
	if setErrors {
		f.changed()
	}

	futures := make([]*future.Future[Issues], len(items))
	for i, it := range items {
		pipe, value := it.pipe, it.value
		futures[i] = future.Go(ctx, func(ctx context.Context) Issues {
			return pipe.run(ctx, value, siblings)
		})
	}
	collected := future.AwaitAll(futures)

	results := make(map[string]Issues, len(items))
	for i, it := range items {
		results[it.path] = collected[i]
		if setErrors {
			f.applyResult(it.path, it.token, collected[i])
		}
	}
	return results, siblings, true
}

// HandleSubmit returns a submit handler around the caller-supplied callback.
// The handler validates the whole form; when invalid it returns the
// collected Issues without invoking cb. When valid, cb receives a frozen
// deep-copy snapshot of the model taken at validation time, immune to
// concurrent input. IsSubmitting is cleared and IsSubmitted set on every
// path, including a panicking or failing callback, and a cb error propagates
// unchanged.
func (f *Form) HandleSubmit(cb func(snapshot map[string]any) error) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		f.mu.Lock()
		if f.closed {
			f.mu.Unlock()
			return ErrClosed
		}
		f.submitting = true
		f.mu.Unlock()
		f.changed()

		defer func() {
			f.mu.Lock()
			f.submitting = false
			f.submitted = true
			f.mu.Unlock()
			f.changed()
		}()

		results, model, ok := f.runAll(ctx, true)
		if !ok {
			return ErrClosed
		}
		var iss Issues
		for _, path := range f.schema.order {
			iss = append(iss, results[path]...)
		}
		if len(iss) > 0 {
			return iss
		}
		return cb(freezeModel(model))
	}
}
