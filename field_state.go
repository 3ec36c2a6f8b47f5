package formval

// FieldState is the read model for one field. It is a value snapshot: reading
// it never races with in-flight validation, and mutating it has no effect on
// the form.
type FieldState struct {
	Path  string
	Value any
	// Issues recorded by the most recently applied validation result.
	// Empty issues are necessary but not sufficient for "confirmed valid":
	// a field with IsValidating true is indeterminate.
	Issues Issues
	// IsDirty becomes true on the first mutation away from the initial value
	// and stays true until Reset.
	IsDirty bool
	// IsTouched becomes true after the field loses focus for the first time.
	IsTouched bool
	// IsValidating is true from the moment a validation request is scheduled
	// for the field's current value until its result is applied or superseded.
	IsValidating bool
	// HasEverBeenValid records whether any applied result had zero issues.
	// Drives the progressive mode's suppression rule.
	HasEverBeenValid bool
}

// fieldState is the mutable per-field store, guarded by the owning form's
// mutex. issues and validating are written only through applyResult, which
// fences against stale tokens.
type fieldState struct {
	pipeline   *Pipeline
	value      any
	initial    any
	issues     Issues
	dirty      bool
	touched    bool
	validating bool
	everValid  bool
}

func (fs *fieldState) snapshot(path string) FieldState {
	return FieldState{
		Path:             path,
		Value:            fs.value,
		Issues:           append(Issues(nil), fs.issues...),
		IsDirty:          fs.dirty,
		IsTouched:        fs.touched,
		IsValidating:     fs.validating,
		HasEverBeenValid: fs.everValid,
	}
}

func (fs *fieldState) reset() {
	fs.value = fs.initial
	fs.issues = nil
	fs.dirty = false
	fs.touched = false
	fs.validating = false
	fs.everValid = false
}
