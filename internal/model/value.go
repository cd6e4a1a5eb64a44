package model

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Kind identifies what a feature value holds.
//
// Design decision: We use iota-based constants rather than string constants
// so that switches over kinds are exhaustive-friendly and cheap. The String()
// method provides the label used in tables and logs.
type Kind int

const (
	// KindNull is an explicit null in the input (e.g. a detector that
	// produced no value for a layer).
	KindNull Kind = iota

	// KindNumber is a plain scalar number.
	KindNumber

	// KindBool is a boolean flag such as a detector recommendation.
	KindBool

	// KindText is a free-form string.
	KindText

	// KindTensor is an array-like numeric value. Only tensors are plottable.
	KindTensor

	// KindObject is any other structured value (mappings, mixed sequences).
	KindObject
)

// String returns a human-readable label for the kind.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	case KindText:
		return "text"
	case KindTensor:
		return "tensor"
	case KindObject:
		return "object"
	default:
		return "unknown"
	}
}

// Value is a single feature value attached to a layer.
// Exactly one of the payload fields is meaningful, selected by Kind.
type Value struct {
	// Kind selects the payload field.
	Kind Kind

	// Number is set for KindNumber.
	Number float64

	// Bool is set for KindBool.
	Bool bool

	// Text is set for KindText.
	Text string

	// Tensor is set for KindTensor.
	Tensor *Tensor

	// Object is set for KindObject. It holds the decoded generic value
	// (map[string]any or []any).
	Object any
}

// NumberValue returns a scalar number value.
func NumberValue(v float64) Value {
	return Value{Kind: KindNumber, Number: v}
}

// BoolValue returns a boolean value.
func BoolValue(v bool) Value {
	return Value{Kind: KindBool, Bool: v}
}

// TextValue returns a string value.
func TextValue(v string) Value {
	return Value{Kind: KindText, Text: v}
}

// TensorValue returns a tensor value.
func TensorValue(t *Tensor) Value {
	return Value{Kind: KindTensor, Tensor: t}
}

// ObjectValue returns a structured value.
func ObjectValue(v any) Value {
	return Value{Kind: KindObject, Object: v}
}

// NullValue returns an explicit null.
func NullValue() Value {
	return Value{Kind: KindNull}
}

// IsPlottable reports whether the value can be drawn in a plot or histogram.
func (v Value) IsPlottable() bool {
	return v.Kind == KindTensor && v.Tensor != nil
}

// String renders the value for table cells.
// Numbers use %.4g; one-element tensors render as their number and longer
// tensors as a short preview.
func (v Value) String() string {
	switch v.Kind {
	case KindNull:
		return "null"
	case KindNumber:
		return FormatNumber(v.Number)
	case KindBool:
		return strconv.FormatBool(v.Bool)
	case KindText:
		return v.Text
	case KindTensor:
		return v.Tensor.Preview(tensorPreviewLen)
	case KindObject:
		data, err := json.Marshal(jsonSafe(v.Object))
		if err != nil {
			return fmt.Sprintf("%v", v.Object)
		}
		return string(data)
	default:
		return "?"
	}
}

// MarshalJSON encodes the value in the canonical input form, so that a
// marshalled report decodes back to the same values. NaN and infinite
// numbers are written as the strings "NaN", "+Inf" and "-Inf".
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.Kind {
	case KindNull:
		return []byte("null"), nil
	case KindNumber:
		return json.Marshal(JSONNumber(v.Number))
	case KindBool:
		return json.Marshal(v.Bool)
	case KindText:
		return json.Marshal(v.Text)
	case KindTensor:
		if v.Tensor == nil {
			return []byte("null"), nil
		}
		return json.Marshal(struct {
			Shape []int `json:"shape"`
			Data  any   `json:"data"`
		}{Shape: v.Tensor.Shape, Data: jsonFloats(v.Tensor.Data)})
	case KindObject:
		return json.Marshal(jsonSafe(v.Object))
	default:
		return nil, fmt.Errorf("cannot marshal value of kind %d", v.Kind)
	}
}

// tensorPreviewLen is the number of leading elements shown for long tensors.
const tensorPreviewLen = 4

// FormatNumber formats a float for display.
func FormatNumber(f float64) string {
	return strconv.FormatFloat(f, 'g', 4, 64)
}

// FormatShape formats a tensor shape as "[d0, d1, ...]".
func FormatShape(shape []int) string {
	parts := make([]string, len(shape))
	for i, d := range shape {
		parts[i] = strconv.Itoa(d)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
