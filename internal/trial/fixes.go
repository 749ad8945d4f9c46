package trial

import (
	"time"

	"github.com/mrz1836/compass/internal/constants"
)

// Fix adjusts task parameters after a classified failure so the next
// attempt tries something different instead of repeating the same call.
// Apply returns the adjusted parameters and whether anything changed; a fix
// that changes nothing does not count as a known fix and the engine falls
// back to plain backoff.
type Fix interface {
	Apply(params map[string]any) (map[string]any, bool)
}

// FixFunc adapts a function to the Fix interface.
type FixFunc func(params map[string]any) (map[string]any, bool)

// Apply implements Fix.
func (f FixFunc) Apply(params map[string]any) (map[string]any, bool) {
	return f(params)
}

// Well-known parameter names the default fixes operate on.
const (
	paramBatchSize = "batch_size"
	paramTimeout   = "timeout"
	paramEndpoint  = "endpoint"
	paramFallback  = "fallback_endpoint"
)

// DefaultFixes returns the built-in signature-to-fix table.
// Resource exhaustion halves the batch size; transient failures extend the
// timeout and fail over to a fallback endpoint when one is named.
// Invalid-input and permission failures have no fix: they are never retried.
func DefaultFixes() map[constants.ErrorSignature]Fix {
	return map[constants.ErrorSignature]Fix{
		constants.SignatureResourceExhaustion: FixFunc(halveBatchSize),
		constants.SignatureTransient:          FixFunc(extendTimeoutAndFailover),
	}
}

// halveBatchSize halves an integer batch_size parameter, bottoming out at 1.
func halveBatchSize(params map[string]any) (map[string]any, bool) {
	size, ok := intParam(params, paramBatchSize)
	if !ok || size <= 1 {
		return params, false
	}
	out := cloneParams(params)
	out[paramBatchSize] = size / 2
	return out, true
}

// extendTimeoutAndFailover doubles a duration timeout parameter and swaps
// in a fallback endpoint when one is configured.
func extendTimeoutAndFailover(params map[string]any) (map[string]any, bool) {
	out := cloneParams(params)
	changed := false

	if d, ok := durationParam(params, paramTimeout); ok {
		out[paramTimeout] = d * 2
		changed = true
	}

	if fallback, ok := params[paramFallback].(string); ok && fallback != "" {
		if current, _ := params[paramEndpoint].(string); current != fallback {
			out[paramEndpoint] = fallback
			changed = true
		}
	}

	if !changed {
		return params, false
	}
	return out, true
}

func cloneParams(params map[string]any) map[string]any {
	out := make(map[string]any, len(params))
	for k, v := range params {
		out[k] = v
	}
	return out
}

// intParam reads an integer parameter tolerating the types JSON and YAML
// decoding produce.
func intParam(params map[string]any, key string) (int, bool) {
	switch v := params[key].(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}

// durationParam reads a duration parameter as a time.Duration or a parseable
// string.
func durationParam(params map[string]any, key string) (time.Duration, bool) {
	switch v := params[key].(type) {
	case time.Duration:
		return v, true
	case string:
		d, err := time.ParseDuration(v)
		if err != nil {
			return 0, false
		}
		return d, true
	default:
		return 0, false
	}
}
