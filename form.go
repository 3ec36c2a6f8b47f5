package formval

import (
	"context"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/reoring/formval/internal/sched"
)

// DefaultThrottleWindow applies when throttling is enabled without an
// explicit window.
const DefaultThrottleWindow = time.Second

// FormOpt bundles form construction options.
type FormOpt struct {
	// ID distinguishes concurrently active form instances in a Registry.
	// Generated when empty.
	ID string
	// Mode is the form-level validation mode, overridable per field in the
	// schema. Defaults to ModeEager.
	Mode Mode
	// BaseContext is the parent context for validations triggered by field
	// events (Set/Blur). Defaults to context.Background(). Submit-driven
	// validation uses the submit handler's context instead.
	BaseContext context.Context
}

// Form is one bound validation session: a compiled schema plus an exclusively
// owned form model and per-field state. Forms are safe for concurrent use;
// asynchronous validator completions are fenced by per-field tokens so they
// apply in request order, never completion order.
type Form struct {
	id     string
	schema *Schema
	mode   Mode
	base   context.Context

	mu         sync.Mutex
	fields     map[string]*fieldState
	runner     *sched.Runner
	watchers   map[uint64]func(FormState)
	watchSeq   uint64
	submitting bool
	submitted  bool
	closed     bool
}

// New binds a compiled schema to an initial model and returns a live form
// instance. The initial model may be flat (keys are dot paths) or nested;
// fields absent from it start as nil. The schema is read-only and may be
// shared with other forms.
func New(schema *Schema, initial map[string]any, opt FormOpt) (*Form, error) {
	if schema == nil {
		return nil, &ConfigError{Reason: "nil schema"}
	}
	mode := opt.Mode
	if mode == ModeUnset {
		mode = ModeEager
	}
	id := opt.ID
	if id == "" {
		id = uuid.NewString()
	}
	base := opt.BaseContext
	if base == nil {
		base = context.Background()
	}
	f := &Form{
		id:       id,
		schema:   schema,
		mode:     mode,
		base:     base,
		fields:   map[string]*fieldState{},
		runner:   sched.New(),
		watchers: map[uint64]func(FormState){},
	}
	for _, path := range schema.order {
		p := schema.pipelines[path]
		v := lookupInitial(initial, path)
		f.fields[path] = &fieldState{pipeline: p, value: v, initial: v}
		pol := sched.Policy{Debounce: p.debounce, Throttle: p.throttle}
		if pol.Debounce > 0 || pol.Throttle > 0 {
			f.runner.SetPolicy(path, pol)
		}
	}
	return f, nil
}

// lookupInitial resolves a dot path against the caller-supplied initial
// model, accepting either a flat key ("profile.age") or nested maps.
func lookupInitial(m map[string]any, path string) any {
	if m == nil {
		return nil
	}
	if v, ok := m[path]; ok {
		return v
	}
	cur := any(m)
	for _, seg := range strings.Split(path, ".") {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		cur, ok = obj[seg]
		if !ok {
			return nil
		}
	}
	return cur
}

// ID returns the opaque identifier distinguishing this instance.
func (f *Form) ID() string { return f.id }

// Schema returns the bound compiled schema.
func (f *Form) Schema() *Schema { return f.schema }

// modeFor resolves the effective mode for a pipeline.
func (f *Form) modeFor(p *Pipeline) Mode {
	if p.mode != ModeUnset {
		return p.mode
	}
	return f.mode
}

// Get returns the current value for a field path.
func (f *Form) Get(path string) (any, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fs, ok := f.fields[path]
	if !ok {
		return nil, false
	}
	return fs.value, true
}

// Values returns a flat copy (path -> value) of the form model.
func (f *Form) Values() map[string]any {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.valuesLocked()
}

func (f *Form) valuesLocked() map[string]any {
	out := make(map[string]any, len(f.fields))
	for path, fs := range f.fields {
		out[path] = fs.value
	}
	return out
}

// Set writes a field value, tracks dirtiness, and forwards the change event
// to the mode policy, which decides whether the field's pipeline is
// scheduled.
func (f *Form) Set(path string, value any) error {
	return f.event(path, triggerChange, func(fs *fieldState) {
		fs.value = value
		if !fs.dirty && !reflect.DeepEqual(value, fs.initial) {
			fs.dirty = true
		}
	})
}

// Blur marks the field touched and forwards the blur event to the mode
// policy. Wire it to the UI's focus-loss callback (see FieldHandle.Bindings).
func (f *Form) Blur(path string) error {
	return f.event(path, triggerBlur, func(fs *fieldState) {
		fs.touched = true
	})
}

func (f *Form) event(path string, tr trigger, mutate func(*fieldState)) error {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return ErrClosed
	}
	fs, ok := f.fields[path]
	if !ok {
		f.mu.Unlock()
		return ErrUnknownField
	}
	mutate(fs)
	run := f.modeFor(fs.pipeline).shouldValidate(tr, fs.touched, fs.everValid)
	var (
		pipe     *Pipeline
		value    any
		siblings map[string]any
		token    uint64
	)
	if run {
		fs.validating = true
		pipe = fs.pipeline
		value = fs.value
		siblings = f.valuesLocked()
		// Reserved in the same critical section as the value capture, so the
		// token order matches the value order under concurrent events.
		token = f.runner.Reserve(path)
	}
	f.mu.Unlock()
	f.changed()
	if run {
		f.dispatch(path, token, pipe, value, siblings)
	}
	return nil
}

// dispatch hands one validation request to the scheduler under its reserved
// token. The pipeline runs with the value and sibling snapshot captured at
// request time; pipelines containing async steps run on their own goroutine
// so UI events never block on a network-backed rule.
func (f *Form) dispatch(path string, token uint64, pipe *Pipeline, value any, siblings map[string]any) {
	f.runner.Schedule(path, token, func(token uint64) {
		run := func() {
			iss := pipe.run(f.base, value, siblings)
			f.applyResult(path, token, iss)
		}
		if pipe.hasAsync {
			go run()
		} else {
			run()
		}
	})
}

// applyResult is the only mutator of a field's issues/validating flags. It
// discards results whose token is no longer the latest for the path, so a
// slow early request can never overwrite the result of a newer one
// (last write wins by request identity, not completion time).
func (f *Form) applyResult(path string, token uint64, iss Issues) {
	f.mu.Lock()
	if f.closed || !f.runner.IsLatest(path, token) {
		f.mu.Unlock()
		return
	}
	fs, ok := f.fields[path]
	if !ok {
		f.mu.Unlock()
		return
	}
	fs.issues = iss
	fs.validating = false
	if len(iss) == 0 {
		fs.everValid = true
	}
	f.mu.Unlock()
	f.changed()
}

// Reset reinitializes the form to its original model: values restored,
// dirty/touched/issues cleared, submission flags cleared, and every
// outstanding validation token invalidated so late results are no-ops.
func (f *Form) Reset() {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return
	}
	for path, fs := range f.fields {
		f.runner.Supersede(path)
		fs.reset()
	}
	f.submitting = false
	f.submitted = false
	f.mu.Unlock()
	f.changed()
}

// Close disposes the form: all outstanding tokens are invalidated and
// further mutations are rejected with ErrClosed. Reads stay usable.
func (f *Form) Close() {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return
	}
	f.closed = true
	f.runner.Close()
	f.watchers = map[uint64]func(FormState){}
	f.mu.Unlock()
}

// Watch registers fn to be called with the recomputed FormState after every
// state change. The returned cancel removes the watcher. Callbacks run
// outside the form's lock; they may freely read the form.
func (f *Form) Watch(fn func(FormState)) (cancel func()) {
	f.mu.Lock()
	f.watchSeq++
	id := f.watchSeq
	f.watchers[id] = fn
	f.mu.Unlock()
	return func() {
		f.mu.Lock()
		delete(f.watchers, id)
		f.mu.Unlock()
	}
}

// changed recomputes the aggregate state and notifies watchers. Must be
// called without holding the lock.
func (f *Form) changed() {
	f.mu.Lock()
	if len(f.watchers) == 0 {
		f.mu.Unlock()
		return
	}
	st := f.stateLocked()
	fns := make([]func(FormState), 0, len(f.watchers))
	for _, fn := range f.watchers {
		fns = append(fns, fn)
	}
	f.mu.Unlock()
	for _, fn := range fns {
		fn(st)
	}
}
