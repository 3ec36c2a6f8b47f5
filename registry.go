package formval

import "sync"

// Bindings is the plain callback bundle a UI layer spreads onto an input
// element. This is the only framework-shaped thing the engine emits, and it
// stays a plain struct of callbacks.
type Bindings struct {
	OnBlur func()
}

// FieldHandle is the secondary, field-level accessor resolved by form
// identifier plus path. It reads through to the owning form instance; it
// never resolves through ambient/global state.
type FieldHandle struct {
	form *Form
	path string
}

// Path returns the field path this handle resolves.
func (h FieldHandle) Path() string { return h.path }

// Value returns the field's current value.
func (h FieldHandle) Value() any {
	v, _ := h.form.Get(h.path)
	return v
}

// Set writes the field's value through the owning form.
func (h FieldHandle) Set(v any) error { return h.form.Set(h.path, v) }

// ErrorMessage returns the first issue's message, or "" when clean.
func (h FieldHandle) ErrorMessage() string {
	st, _ := h.form.Field(h.path)
	if len(st.Issues) == 0 {
		return ""
	}
	return st.Issues[0].Message
}

// HasError reports whether the field currently has issues.
func (h FieldHandle) HasError() bool {
	st, _ := h.form.Field(h.path)
	return len(st.Issues) > 0
}

// IsValid reports zero issues with no validation in flight.
func (h FieldHandle) IsValid() bool {
	st, _ := h.form.Field(h.path)
	return len(st.Issues) == 0 && !st.IsValidating
}

// IsDirty reports whether the field moved away from its initial value.
func (h FieldHandle) IsDirty() bool {
	st, _ := h.form.Field(h.path)
	return st.IsDirty
}

// IsValidating reports whether a validation request is pending or in flight.
func (h FieldHandle) IsValidating() bool {
	st, _ := h.form.Field(h.path)
	return st.IsValidating
}

// Bindings returns the event callbacks to wire onto the input element.
func (h FieldHandle) Bindings() Bindings {
	return Bindings{OnBlur: func() { _ = h.form.Blur(h.path) }}
}

// FieldHandle resolves a handle against this form instance.
func (f *Form) FieldHandle(path string) (FieldHandle, bool) {
	if _, ok := f.schema.pipelines[path]; !ok {
		return FieldHandle{}, false
	}
	return FieldHandle{form: f, path: path}, true
}

// Registry keys concurrently active form instances by their opaque
// identifier. Lookups always go through an explicit registry value, never a
// package-level singleton, so ownership stays explicit and testable.
type Registry struct {
	mu    sync.RWMutex
	forms map[string]*Form
}

func NewRegistry() *Registry {
	return &Registry{forms: map[string]*Form{}}
}

// Add registers a form under its ID. Registering a second form with the same
// ID is a configuration error.
func (r *Registry) Add(f *Form) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, dup := r.forms[f.ID()]; dup {
		return &ConfigError{Reason: "duplicate form id " + f.ID()}
	}
	r.forms[f.ID()] = f
	return nil
}

// Remove unregisters the form with the given ID. The form itself is not
// closed; disposal stays the owner's call.
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.forms, id)
}

// Form returns the registered form for an ID.
func (r *Registry) Form(id string) (*Form, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.forms[id]
	return f, ok
}

// Field resolves a field-level handle by form identifier and path.
func (r *Registry) Field(id, path string) (FieldHandle, bool) {
	f, ok := r.Form(id)
	if !ok {
		return FieldHandle{}, false
	}
	return f.FieldHandle(path)
}
