package rules

import (
	"context"
	"encoding/json"
	"fmt"

	formval "github.com/reoring/formval"
)

// toFloat normalizes the numeric types a UI model realistically carries.
func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

// Min requires a numeric value >= min.
func Min(min float64) formval.Rule {
	return Func("min", func(ctx context.Context, value any, fc formval.FieldContext) formval.Issues {
		if value == nil {
			return nil
		}
		f, ok := toFloat(value)
		if !ok {
			return typeFail(value)
		}
		if f < min {
			return fail(formval.CodeTooSmall, fmt.Sprintf("must be at least %v", min), map[string]any{"min": min, "got": f})
		}
		return nil
	})
}

// Max requires a numeric value <= max.
func Max(max float64) formval.Rule {
	return Func("max", func(ctx context.Context, value any, fc formval.FieldContext) formval.Issues {
		if value == nil {
			return nil
		}
		f, ok := toFloat(value)
		if !ok {
			return typeFail(value)
		}
		if f > max {
			return fail(formval.CodeTooBig, fmt.Sprintf("must be at most %v", max), map[string]any{"max": max, "got": f})
		}
		return nil
	})
}
