package model

import "math"

// JSON has no literal for NaN or infinity. Such numbers are written as
// these strings, and the decoder reads them back as numbers wherever a
// number or tensor element is expected.
const (
	nanText    = "NaN"
	posInfText = "+Inf"
	negInfText = "-Inf"
)

// JSONNumber returns f, or its string form when f is NaN or infinite.
func JSONNumber(f float64) any {
	switch {
	case math.IsNaN(f):
		return nanText
	case math.IsInf(f, 1):
		return posInfText
	case math.IsInf(f, -1):
		return negInfText
	}
	return f
}

// parseNonFinite reads a string written by JSONNumber.
func parseNonFinite(s string) (float64, bool) {
	switch s {
	case nanText:
		return math.NaN(), true
	case posInfText:
		return math.Inf(1), true
	case negInfText:
		return math.Inf(-1), true
	}
	return 0, false
}

// jsonFloats returns data unchanged when every element is finite, and a
// copy with JSONNumber applied otherwise.
func jsonFloats(data []float64) any {
	for i, f := range data {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			out := make([]any, len(data))
			for j, g := range data[:i] {
				out[j] = g
			}
			for j := i; j < len(data); j++ {
				out[j] = JSONNumber(data[j])
			}
			return out
		}
	}
	return data
}

// jsonSafe applies JSONNumber to every float inside a decoded generic value.
func jsonSafe(v any) any {
	switch x := v.(type) {
	case float64:
		return JSONNumber(x)
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = jsonSafe(e)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, e := range x {
			out[k] = jsonSafe(e)
		}
		return out
	}
	return v
}
