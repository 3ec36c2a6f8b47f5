package rules

import (
	"context"
	"fmt"
	"net/url"
	"regexp"

	formval "github.com/reoring/formval"
)

// Required fails on absent values: nil, "", empty slices/maps.
func Required() formval.Rule {
	return Func("required", func(ctx context.Context, value any, fc formval.FieldContext) formval.Issues {
		if isAbsent(value) {
			return fail(formval.CodeRequired, "this field is required", nil)
		}
		return nil
	})
}

// MinLen requires at least n runes (strings) or elements (collections).
func MinLen(n int) formval.Rule {
	return Func("min_len", func(ctx context.Context, value any, fc formval.FieldContext) formval.Issues {
		if isAbsent(value) {
			return nil
		}
		l, ok := lengthOf(value)
		if !ok {
			return typeFail(value)
		}
		if l < n {
			return fail(formval.CodeTooShort, fmt.Sprintf("must be at least %d characters", n), map[string]any{"min": n, "got": l})
		}
		return nil
	})
}

// MaxLen allows at most n runes (strings) or elements (collections).
func MaxLen(n int) formval.Rule {
	return Func("max_len", func(ctx context.Context, value any, fc formval.FieldContext) formval.Issues {
		if isAbsent(value) {
			return nil
		}
		l, ok := lengthOf(value)
		if !ok {
			return typeFail(value)
		}
		if l > n {
			return fail(formval.CodeTooLong, fmt.Sprintf("must be at most %d characters", n), map[string]any{"max": n, "got": l})
		}
		return nil
	})
}

// patternRule matches a string against a regular expression compiled at
// construction. A bad expression surfaces from CheckConfig at schema compile
// time, never as a per-value issue.
type patternRule struct {
	name   string
	code   string
	msg    string
	re     *regexp.Regexp
	reErr  error
	params map[string]any
}

func (p *patternRule) CheckConfig() error { return p.reErr }

func (p *patternRule) Validate(ctx context.Context, value any, fc formval.FieldContext) formval.Issues {
	if isAbsent(value) || p.re == nil {
		return nil
	}
	s, ok := value.(string)
	if !ok {
		iss := typeFail(value)
		iss[0].Rule = p.name
		return iss
	}
	if !p.re.MatchString(s) {
		return formval.Issues{{Code: p.code, Message: p.msg, Rule: p.name, Params: p.params}}
	}
	return nil
}

// Pattern requires the string to match expr.
func Pattern(expr string) formval.Rule {
	re, err := regexp.Compile(expr)
	return &patternRule{
		name:   "pattern",
		code:   formval.CodePattern,
		msg:    "invalid format",
		re:     re,
		reErr:  err,
		params: map[string]any{"pattern": expr},
	}
}

var emailRe = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// Email requires a plausible email shape (local@domain.tld).
func Email() formval.Rule {
	return &patternRule{
		name: "email",
		code: formval.CodeInvalidFormat,
		msg:  "must be a valid email address",
		re:   emailRe,
	}
}

// URL requires an absolute http(s) URL.
func URL() formval.Rule {
	return Func("url", func(ctx context.Context, value any, fc formval.FieldContext) formval.Issues {
		if isAbsent(value) {
			return nil
		}
		s, ok := value.(string)
		if !ok {
			return typeFail(value)
		}
		u, err := url.Parse(s)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fail(formval.CodeInvalidFormat, "must be a valid URL", nil)
		}
		return nil
	})
}
