package decompose

import (
	"fmt"
	"strings"

	compasserrors "github.com/mrz1836/compass/internal/errors"
)

// textSeparators are tried in order when splitting goal text into steps.
// Earlier separators express clearer sequencing intent.
var textSeparators = []string{
	" then ",
	"; ",
	", and ",
	" and ",
	",",
	".",
}

// steps resolves the ordered step descriptions for a goal: the explicit
// "steps" context key when present, otherwise the goal text split on
// separators. A goal that yields no steps at all is unparseable.
func steps(goal string, goalCtx map[string]any) ([]string, error) {
	if explicit, ok := stringSlice(goalCtx[ContextSteps]); ok {
		explicit = trimAll(explicit)
		if len(explicit) == 0 {
			return nil, fmt.Errorf("%w: context steps are empty", compasserrors.ErrDecomposition)
		}
		return explicit, nil
	}
	return splitText(goal), nil
}

// phases resolves phase structure for the hybrid strategy: the explicit
// "phases" context key when present, otherwise each step becomes its own
// single-task phase.
func phases(goal string, goalCtx map[string]any) ([][]string, error) {
	if raw, ok := goalCtx[ContextPhases]; ok {
		explicit, ok := phaseSlice(raw)
		if !ok || len(explicit) == 0 {
			return nil, fmt.Errorf("%w: context phases are malformed", compasserrors.ErrDecomposition)
		}
		return explicit, nil
	}

	flat, err := steps(goal, goalCtx)
	if err != nil {
		return nil, err
	}
	out := make([][]string, len(flat))
	for i, s := range flat {
		out[i] = []string{s}
	}
	return out, nil
}

// splitText breaks goal text into step descriptions using the first
// separator that actually splits it. Unsplittable text is a single step.
func splitText(goal string) []string {
	for _, sep := range textSeparators {
		parts := trimAll(strings.Split(goal, sep))
		if len(parts) > 1 {
			return parts
		}
	}
	return []string{goal}
}

// trimAll trims whitespace and drops empty entries.
func trimAll(parts []string) []string {
	out := parts[:0:0]
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// stringSlice coerces []string or []any-of-strings, the shapes YAML and
// JSON context files produce.
func stringSlice(v any) ([]string, bool) {
	switch vals := v.(type) {
	case []string:
		return vals, true
	case []any:
		out := make([]string, 0, len(vals))
		for _, item := range vals {
			s, ok := item.(string)
			if !ok {
				return nil, false
			}
			out = append(out, s)
		}
		return out, true
	default:
		return nil, false
	}
}

// phaseSlice coerces [][]string or []any-of-slices.
func phaseSlice(v any) ([][]string, bool) {
	switch vals := v.(type) {
	case [][]string:
		return vals, true
	case []any:
		out := make([][]string, 0, len(vals))
		for _, item := range vals {
			phase, ok := stringSlice(item)
			if !ok {
				return nil, false
			}
			phase = trimAll(phase)
			if len(phase) == 0 {
				return nil, false
			}
			out = append(out, phase)
		}
		return out, true
	default:
		return nil, false
	}
}
