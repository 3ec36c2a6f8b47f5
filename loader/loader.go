// Package loader builds compiled schemas from declarative documents.
//
// A document names fields (dot paths for nested objects) and, per field, the
// rule pipeline plus optional mode/debounce/throttle settings:
//
//	mode: eager
//	fields:
//	  email:
//	    rules: [required, email]
//	    async: [unique_email]
//	    debounce: 300ms
//	  profile.age:
//	    rules: [{min: 18}]
//
// Rule names resolve through an explicit RuleSet, preloaded with the
// built-ins from the rules package and open for caller registration (that is
// how async rules such as unique_email get in).
package loader

import (
	"fmt"
	"sort"
	"time"

	gojson "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	formval "github.com/reoring/formval"
	"github.com/reoring/formval/rules"
)

// Doc is the decoded document shape, shared by the YAML and JSON paths.
type Doc struct {
	Mode   string              `json:"mode" yaml:"mode"`
	Fields map[string]FieldDoc `json:"fields" yaml:"fields"`
}

// FieldDoc declares one field. Rule references are either a bare name
// ("required") or a single-key mapping carrying the rule argument
// ({min: 18}, {pattern: "^[a-z]+$"}).
type FieldDoc struct {
	Rules    []any  `json:"rules" yaml:"rules"`
	Async    []any  `json:"async" yaml:"async"`
	Mode     string `json:"mode" yaml:"mode"`
	Debounce string `json:"debounce" yaml:"debounce"`
	Throttle string `json:"throttle" yaml:"throttle"`
}

// Factory builds a rule from the document-supplied argument (nil for bare
// names).
type Factory func(arg any) (formval.Rule, error)

// RuleSet maps document rule names to factories.
type RuleSet struct {
	factories map[string]Factory
}

// NewRuleSet returns a RuleSet preloaded with the built-in rules.
func NewRuleSet() *RuleSet {
	rs := &RuleSet{factories: map[string]Factory{}}
	rs.Register("required", noArg(rules.Required))
	rs.Register("email", noArg(rules.Email))
	rs.Register("url", noArg(rules.URL))
	rs.Register("min", func(arg any) (formval.Rule, error) {
		f, ok := toFloat(arg)
		if !ok {
			return nil, fmt.Errorf("min: numeric argument required, got %T", arg)
		}
		return rules.Min(f), nil
	})
	rs.Register("max", func(arg any) (formval.Rule, error) {
		f, ok := toFloat(arg)
		if !ok {
			return nil, fmt.Errorf("max: numeric argument required, got %T", arg)
		}
		return rules.Max(f), nil
	})
	rs.Register("min_len", func(arg any) (formval.Rule, error) {
		n, ok := toInt(arg)
		if !ok {
			return nil, fmt.Errorf("min_len: integer argument required, got %T", arg)
		}
		return rules.MinLen(n), nil
	})
	rs.Register("max_len", func(arg any) (formval.Rule, error) {
		n, ok := toInt(arg)
		if !ok {
			return nil, fmt.Errorf("max_len: integer argument required, got %T", arg)
		}
		return rules.MaxLen(n), nil
	})
	rs.Register("pattern", func(arg any) (formval.Rule, error) {
		s, ok := arg.(string)
		if !ok {
			return nil, fmt.Errorf("pattern: string argument required, got %T", arg)
		}
		return rules.Pattern(s), nil
	})
	rs.Register("one_of", func(arg any) (formval.Rule, error) {
		vs, ok := arg.([]any)
		if !ok {
			return nil, fmt.Errorf("one_of: list argument required, got %T", arg)
		}
		return rules.OneOf(vs...), nil
	})
	rs.Register("equals_field", func(arg any) (formval.Rule, error) {
		s, ok := arg.(string)
		if !ok {
			return nil, fmt.Errorf("equals_field: string argument required, got %T", arg)
		}
		return rules.EqualsField(s), nil
	})
	return rs
}

// Register adds or replaces a factory under name.
func (rs *RuleSet) Register(name string, f Factory) {
	rs.factories[name] = f
}

func noArg(ctor func() formval.Rule) Factory {
	return func(arg any) (formval.Rule, error) {
		if arg != nil {
			return nil, fmt.Errorf("rule takes no argument, got %v", arg)
		}
		return ctor(), nil
	}
}

// FromYAML decodes a YAML document and compiles it.
func FromYAML(data []byte, rs *RuleSet) (*formval.Schema, formval.Mode, error) {
	var doc Doc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, formval.ModeUnset, fmt.Errorf("loader: decode yaml: %w", err)
	}
	return compile(doc, rs)
}

// FromJSON decodes a JSON document and compiles it.
func FromJSON(data []byte, rs *RuleSet) (*formval.Schema, formval.Mode, error) {
	var doc Doc
	if err := gojson.Unmarshal(data, &doc); err != nil {
		return nil, formval.ModeUnset, fmt.Errorf("loader: decode json: %w", err)
	}
	return compile(doc, rs)
}

// compile resolves rule references and builds the schema. Document field
// order is not preserved by map decoding, so fields compile in sorted path
// order for determinism.
func compile(doc Doc, rs *RuleSet) (*formval.Schema, formval.Mode, error) {
	mode := formval.ModeUnset
	if doc.Mode != "" {
		m, err := formval.ParseMode(doc.Mode)
		if err != nil {
			return nil, formval.ModeUnset, err
		}
		mode = m
	}

	paths := make([]string, 0, len(doc.Fields))
	for p := range doc.Fields {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	specs := make([]formval.FieldSpec, 0, len(paths))
	for _, path := range paths {
		fd := doc.Fields[path]
		spec := formval.FieldSpec{Path: path}
		if fd.Mode != "" {
			m, err := formval.ParseMode(fd.Mode)
			if err != nil {
				return nil, formval.ModeUnset, &formval.ConfigError{Path: path, Reason: "bad mode", Err: err}
			}
			spec.Mode = m
		}
		if fd.Debounce != "" {
			d, err := time.ParseDuration(fd.Debounce)
			if err != nil {
				return nil, formval.ModeUnset, &formval.ConfigError{Path: path, Reason: "bad debounce", Err: err}
			}
			spec.Debounce = d
		}
		if fd.Throttle != "" {
			d, err := parseThrottle(fd.Throttle)
			if err != nil {
				return nil, formval.ModeUnset, &formval.ConfigError{Path: path, Reason: "bad throttle", Err: err}
			}
			spec.Throttle = d
		}
		for _, ref := range fd.Rules {
			r, err := rs.build(ref)
			if err != nil {
				return nil, formval.ModeUnset, &formval.ConfigError{Path: path, Reason: "bad rule reference", Err: err}
			}
			spec.Steps = append(spec.Steps, formval.Step{Rule: r})
		}
		for _, ref := range fd.Async {
			r, err := rs.build(ref)
			if err != nil {
				return nil, formval.ModeUnset, &formval.ConfigError{Path: path, Reason: "bad async rule reference", Err: err}
			}
			spec.Steps = append(spec.Steps, formval.Step{Rule: r, Async: true})
		}
		specs = append(specs, spec)
	}

	s, err := formval.NewSchema(specs...)
	if err != nil {
		return nil, formval.ModeUnset, err
	}
	return s, mode, nil
}

// parseThrottle accepts "on"/"true" for the default window or a duration.
func parseThrottle(s string) (time.Duration, error) {
	if s == "on" || s == "true" {
		return formval.DefaultThrottleWindow, nil
	}
	return time.ParseDuration(s)
}

// build resolves one rule reference: a bare name or a {name: arg} mapping.
func (rs *RuleSet) build(ref any) (formval.Rule, error) {
	var (
		name string
		arg  any
	)
	switch r := ref.(type) {
	case string:
		name = r
	case map[string]any:
		if len(r) != 1 {
			return nil, fmt.Errorf("rule mapping must have exactly one key, got %d", len(r))
		}
		for k, v := range r {
			name, arg = k, v
		}
	default:
		return nil, fmt.Errorf("rule reference must be a name or a single-key mapping, got %T", ref)
	}
	f, ok := rs.factories[name]
	if !ok {
		return nil, fmt.Errorf("unknown rule %q", name)
	}
	return f(arg)
}
