package formval

import "fmt"

// Mode is the policy deciding when a field's pipeline is triggered.
type Mode int

const (
	// ModeUnset on a field means "inherit the form-level mode".
	ModeUnset Mode = iota
	// ModeLazy validates only when the whole form is validated (submit time).
	ModeLazy
	// ModeAggressive validates on every value change and on blur.
	ModeAggressive
	// ModeEager stays quiet until the field has blurred once, then validates
	// on every change. Blur always validates and marks the field touched.
	ModeEager
	// ModeBlur validates on blur only; value changes never trigger.
	ModeBlur
	// ModeProgressive validates on every change until the field passes once,
	// then change-driven validation is suppressed until the next blur.
	ModeProgressive
)

var modeNames = map[Mode]string{
	ModeUnset:       "unset",
	ModeLazy:        "lazy",
	ModeAggressive:  "aggressive",
	ModeEager:       "eager",
	ModeBlur:        "blur",
	ModeProgressive: "progressive",
}

func (m Mode) String() string {
	if s, ok := modeNames[m]; ok {
		return s
	}
	return fmt.Sprintf("mode(%d)", int(m))
}

// ParseMode resolves a mode name ("lazy", "aggressive", "eager", "blur",
// "progressive") to a Mode. Used by loader documents.
func ParseMode(s string) (Mode, error) {
	for m, name := range modeNames {
		if m != ModeUnset && name == s {
			return m, nil
		}
	}
	return ModeUnset, fmt.Errorf("formval: unknown mode %q", s)
}

// trigger identifies the UI event a mode decision is being made for.
type trigger int

const (
	triggerChange trigger = iota
	triggerBlur
)

// shouldValidate reports whether the given trigger forwards to the scheduler.
// It reads only the touched/everValid sub-state, never mutates it.
func (m Mode) shouldValidate(tr trigger, touched, everValid bool) bool {
	switch m {
	case ModeLazy:
		return false
	case ModeAggressive:
		return true
	case ModeEager:
		if tr == triggerBlur {
			return true
		}
		return touched
	case ModeBlur:
		return tr == triggerBlur
	case ModeProgressive:
		if tr == triggerBlur {
			return true
		}
		return !everValid
	default:
		return false
	}
}
