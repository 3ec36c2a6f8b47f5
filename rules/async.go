package rules

import (
	"context"
	"time"

	formval "github.com/reoring/formval"
)

// WithTimeout bounds a slow (typically network-backed) rule. The engine
// itself never imposes validation deadlines; bounded latency is the
// adapter's job, and this wrapper is the standard way to get it. On timeout
// or context cancellation the rule reports a dependency_unavailable issue
// instead of hanging the field in IsValidating forever.
type withTimeout struct {
	inner formval.Rule
	d     time.Duration
}

func WithTimeout(r formval.Rule, d time.Duration) formval.Rule {
	return withTimeout{inner: r, d: d}
}

func (w withTimeout) CheckConfig() error {
	if cc, ok := w.inner.(formval.ConfigChecker); ok {
		return cc.CheckConfig()
	}
	return nil
}

func (w withTimeout) Validate(ctx context.Context, value any, fc formval.FieldContext) formval.Issues {
	ctx, cancel := context.WithTimeout(ctx, w.d)
	defer cancel()

	done := make(chan formval.Issues, 1)
	go func() { done <- w.inner.Validate(ctx, value, fc) }()

	select {
	case iss := <-done:
		return iss
	case <-ctx.Done():
		return formval.Issues{{
			Code:    formval.CodeDependencyUnavailable,
			Message: "validation service did not respond",
			Rule:    "with_timeout",
		}}
	}
}
