package formval

import (
	"errors"
	"fmt"
	"strings"
)

// Issue codes (exported consts for IDE completion and type safety by convention)
const (
	CodeInvalidType   = "invalid_type"
	CodeRequired      = "required"
	CodeTooSmall      = "too_small"
	CodeTooBig        = "too_big"
	CodeTooShort      = "too_short"
	CodeTooLong       = "too_long"
	CodePattern       = "pattern"
	CodeInvalidEnum   = "invalid_enum"
	CodeInvalidFormat = "invalid_format"
	CodeMismatch      = "mismatch"
	CodeCustom        = "custom"
	// Dependency temporary/unavailable errors (async validators hitting a
	// timeout or a broken backend)
	CodeDependencyUnavailable = "dependency_unavailable"
)

// Issue represents a single validation entry. Issues are normal, expected
// data: a failing rule reports issues, it never throws.
type Issue struct {
	Path    string // Dot-separated field path (for example: profile.age).
	Code    string // One of the codes listed above.
	Message string
	// Params carries structured parameters (e.g., {"min":1, "max":10, "got":42})
	// for observability and message templating.
	Params map[string]any
	// Rule optionally records the rule name that produced this issue.
	Rule string
}

// Issues is a collection of validation entries that implements error.
type Issues []Issue

// Error summarizes the first few issues.
func (iss Issues) Error() string {
	if len(iss) == 0 {
		return ""
	}
	const maxShown = 3
	b := &strings.Builder{}
	n := len(iss)
	lim := n
	if lim > maxShown {
		lim = maxShown
	}
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		it := iss[i]
		// e.g. required at email
		fmt.Fprintf(b, "%s at %s", it.Code, it.Path)
	}
	if n > lim {
		fmt.Fprintf(b, "; ... (total %d)", n)
	}
	return b.String()
}

// AppendIssues appends issues to the destination, initializing the slice when
// needed.
func AppendIssues(dst Issues, more ...Issue) Issues {
	if dst == nil {
		dst = Issues{}
	}
	dst = append(dst, more...)
	return dst
}

// AsIssues extracts Issues from an error using errors.As internally.
func AsIssues(err error) (Issues, bool) {
	if err == nil {
		return nil, false
	}
	var iss Issues
	if errors.As(err, &iss) {
		return iss, true
	}
	return nil, false
}

// ConfigError reports a malformed schema or rule configuration. It is raised
// at compile/bind time, never deferred into field state: a bad schema is a
// programmer error, not a validation outcome.
type ConfigError struct {
	Path   string // Field path the problem was detected at ("" for schema-level).
	Reason string
	Err    error // Optional underlying error (e.g. regexp compile failure).
}

func (e *ConfigError) Error() string {
	at := e.Path
	if at == "" {
		at = "<schema>"
	}
	if e.Err != nil {
		return fmt.Sprintf("formval: invalid config at %s: %s: %v", at, e.Reason, e.Err)
	}
	return fmt.Sprintf("formval: invalid config at %s: %s", at, e.Reason)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// ErrUnknownField is returned when a field path does not exist in the bound schema.
var ErrUnknownField = errors.New("formval: unknown field path")

// ErrClosed is returned when a form instance has been disposed.
var ErrClosed = errors.New("formval: form is closed")
