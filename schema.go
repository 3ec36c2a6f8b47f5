package formval

import (
	"context"
	"strings"
	"time"
)

// Step is one element of a field's pipeline. Async steps run off the caller
// goroutine and are skipped while earlier synchronous steps are failing, so a
// network-backed check never fires for a value that is already locally invalid.
type Step struct {
	Rule  Rule
	Async bool
}

// FieldSpec is the compiler input for one field. Nested specs describe object
// fields and are flattened into dot-notation paths; a FieldSpec carries either
// Steps or Nested, never both.
type FieldSpec struct {
	Path     string
	Steps    []Step
	Mode     Mode // ModeUnset inherits the form-level mode.
	Debounce time.Duration
	Throttle time.Duration
	Nested   []FieldSpec
}

// Pipeline is the compiled validator sequence for a single field path.
type Pipeline struct {
	path     string
	steps    []Step
	mode     Mode
	debounce time.Duration
	throttle time.Duration
	hasAsync bool
}

// Path returns the flattened field path this pipeline validates.
func (p *Pipeline) Path() string { return p.path }

// Mode returns the per-field mode override (ModeUnset when inheriting).
func (p *Pipeline) Mode() Mode { return p.mode }

// Debounce returns the configured debounce interval (0 when disabled).
func (p *Pipeline) Debounce() time.Duration { return p.debounce }

// Throttle returns the configured throttle window (0 when disabled).
func (p *Pipeline) Throttle() time.Duration { return p.throttle }

// HasAsync reports whether any step is asynchronous.
func (p *Pipeline) HasAsync() bool { return p.hasAsync }

// run executes the pipeline for one value. Sync steps run in order and their
// issues are collected; async steps run only when the sync steps all passed.
// Every produced issue is stamped with the field path.
func (p *Pipeline) run(ctx context.Context, value any, siblings map[string]any) Issues {
	fc := FieldContext{Path: p.path, Siblings: siblings}
	var iss Issues
	for _, st := range p.steps {
		if st.Async {
			continue
		}
		iss = AppendIssues(iss, st.Rule.Validate(ctx, value, fc)...)
	}
	if len(iss) == 0 {
		for _, st := range p.steps {
			if !st.Async {
				continue
			}
			iss = AppendIssues(iss, st.Rule.Validate(ctx, value, fc)...)
		}
	}
	for i := range iss {
		iss[i].Path = p.path
	}
	if iss == nil {
		iss = Issues{}
	}
	return iss
}

// Schema is the compiled, immutable flat registry of per-field pipelines.
// Compilation is pure: a Schema carries no per-form state and may be shared
// read-only across any number of concurrent form instances.
type Schema struct {
	pipelines map[string]*Pipeline
	order     []string
}

// Paths returns the field paths in declaration order.
func (s *Schema) Paths() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// Pipeline returns the compiled pipeline for a path.
func (s *Schema) Pipeline(path string) (*Pipeline, bool) {
	p, ok := s.pipelines[path]
	return p, ok
}

// NewSchema compiles field specs into a Schema, flattening nested specs into
// dot-notation paths. Malformed specs (empty paths, duplicate paths, nil
// rules, negative intervals, rules failing CheckConfig) are reported as a
// *ConfigError.
func NewSchema(specs ...FieldSpec) (*Schema, error) {
	s := &Schema{pipelines: map[string]*Pipeline{}}
	if err := compileInto(s, "", specs); err != nil {
		return nil, err
	}
	if len(s.order) == 0 {
		return nil, &ConfigError{Reason: "schema has no fields"}
	}
	return s, nil
}

// MustSchema is like NewSchema but panics on error.
func MustSchema(specs ...FieldSpec) *Schema {
	s, err := NewSchema(specs...)
	if err != nil {
		panic(err)
	}
	return s
}

func compileInto(s *Schema, prefix string, specs []FieldSpec) error {
	for _, spec := range specs {
		if spec.Path == "" || strings.Contains(spec.Path, "..") ||
			strings.HasPrefix(spec.Path, ".") || strings.HasSuffix(spec.Path, ".") {
			return &ConfigError{Path: joinPath(prefix, spec.Path), Reason: "invalid field path"}
		}
		full := joinPath(prefix, spec.Path)
		if len(spec.Nested) > 0 {
			if len(spec.Steps) > 0 {
				return &ConfigError{Path: full, Reason: "field carries both steps and nested fields"}
			}
			if err := compileInto(s, full, spec.Nested); err != nil {
				return err
			}
			continue
		}
		if _, dup := s.pipelines[full]; dup {
			return &ConfigError{Path: full, Reason: "duplicate field path"}
		}
		if len(spec.Steps) == 0 {
			return &ConfigError{Path: full, Reason: "field has no rules"}
		}
		if spec.Debounce < 0 || spec.Throttle < 0 {
			return &ConfigError{Path: full, Reason: "negative debounce/throttle interval"}
		}
		if spec.Debounce > 0 && spec.Throttle > 0 {
			return &ConfigError{Path: full, Reason: "debounce and throttle are mutually exclusive"}
		}
		p := &Pipeline{
			path:     full,
			steps:    append([]Step(nil), spec.Steps...),
			mode:     spec.Mode,
			debounce: spec.Debounce,
			throttle: spec.Throttle,
		}
		for _, st := range p.steps {
			if st.Rule == nil {
				return &ConfigError{Path: full, Reason: "nil rule in pipeline"}
			}
			if cc, ok := st.Rule.(ConfigChecker); ok {
				if err := cc.CheckConfig(); err != nil {
					return &ConfigError{Path: full, Reason: "rule configuration rejected", Err: err}
				}
			}
			if st.Async {
				p.hasAsync = true
			}
		}
		s.pipelines[full] = p
		s.order = append(s.order, full)
	}
	return nil
}

func joinPath(prefix, name string) string {
	if prefix == "" {
		return name
	}
	if name == "" {
		return prefix
	}
	return prefix + "." + name
}
